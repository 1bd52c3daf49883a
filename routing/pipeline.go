package routing

import (
	"fmt"
	"net/http"
)

// PipelineState is the lifecycle state of a Pipeline.
type PipelineState int

const (
	// StatePending means Handle was not called yet.
	StatePending PipelineState = iota
	// StateRunning means the chain is executing.
	StateRunning
	// StateCompleted means the terminal handler produced the response.
	StateCompleted
	// StateShortCircuited means a middleware answered without reaching the
	// terminal handler.
	StateShortCircuited
	// StateFailed means a link returned an error or panicked.
	StateFailed
)

var pipelineStateNames = [...]string{
	StatePending:        "pending",
	StateRunning:        "running",
	StateCompleted:      "completed",
	StateShortCircuited: "short-circuited",
	StateFailed:         "failed",
}

func (s PipelineState) String() string {
	if int(s) < len(pipelineStateNames) {
		return pipelineStateNames[s]
	}
	return fmt.Sprintf("PipelineState(%d)", int(s))
}

// Pipeline runs an ordered middleware chain ending in a terminal handler.
// A pipeline serves a single dispatch.
type Pipeline struct {
	middlewares []Middleware
	terminal    RequestHandler
	state       PipelineState
	reached     bool
}

// NewPipeline returns a pending pipeline.
func NewPipeline(terminal RequestHandler, middlewares ...Middleware) *Pipeline {
	return &Pipeline{
		middlewares: middlewares,
		terminal:    terminal,
	}
}

// State returns the current state.
func (p *Pipeline) State() PipelineState {
	return p.state
}

// Handle runs the chain. Errors and panics from any link propagate
// unchanged.
func (p *Pipeline) Handle(r *http.Request) (res *Response, err error) {
	p.state = StateRunning

	defer func() {
		if rec := recover(); rec != nil {
			p.state = StateFailed
			panic(rec)
		}

		switch {
		case err != nil:
			p.state = StateFailed
		case p.reached:
			p.state = StateCompleted
		default:
			p.state = StateShortCircuited
		}
	}()

	return p.link(0).Handle(r)
}

// link returns the handler that runs the chain from position i.
func (p *Pipeline) link(i int) RequestHandler {
	if i >= len(p.middlewares) {
		return RequestHandlerFunc(func(r *http.Request) (*Response, error) {
			p.reached = true
			return p.terminal.Handle(r)
		})
	}

	return RequestHandlerFunc(func(r *http.Request) (*Response, error) {
		return p.middlewares[i].Process(r, p.link(i+1))
	})
}
