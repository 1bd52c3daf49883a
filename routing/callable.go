package routing

import (
	"net/http"
)

// CallableHandler invokes an action as a RequestHandler. It captures text
// the action emits through the request's OutputBuffer and normalizes the
// action result, the default response and the captured text into one
// response.
type CallableHandler struct {
	action  Action
	factory ResponseFactory
	invoker Invoker
	args    map[string]string
}

// NewCallableHandler returns a handler for action. A nil factory uses
// NewResponse and a nil invoker calls the action directly.
func NewCallableHandler(action Action, factory ResponseFactory, invoker Invoker, args map[string]string) *CallableHandler {
	if factory == nil {
		factory = NewResponse
	}
	if invoker == nil {
		invoker = directInvoker
	}

	return &CallableHandler{
		action:  action,
		factory: factory,
		invoker: invoker,
		args:    args,
	}
}

// Handle implements RequestHandler. A request that carries no OutputBuffer
// gets a fresh one for the duration of the call.
func (h *CallableHandler) Handle(r *http.Request) (*Response, error) {
	buf, ok := r.Context().Value(outputContextKey{}).(*OutputBuffer)
	if !ok {
		buf = NewOutputBuffer(nil)
		r = WithOutput(r, buf)
	}
	level := buf.Level()
	buf.Start()

	res := h.factory().WithHeader("Content-Type", ContentTypeHTML)

	result, err := h.invoke(r, res, buf, level)
	if err != nil {
		buf.Truncate(level)
		return nil, err
	}

	var output string
	for buf.Level() > level+1 {
		output = buf.Clean() + output
	}
	if buf.Level() > level {
		output = buf.Clean() + output
	}

	return wrapResponse(res, result, output)
}

// invoke calls the action and restores the capture depth if it panics.
func (h *CallableHandler) invoke(r *http.Request, res *Response, buf *OutputBuffer, level int) (any, error) {
	defer func() {
		if rec := recover(); rec != nil {
			buf.Truncate(level)
			panic(rec)
		}
	}()

	return h.invoker.Invoke(h.action, r, res, h.args)
}
