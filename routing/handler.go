package routing

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"
)

// Action is the normalized invocation strategy every handler shape is
// resolved to at registration time. args holds the matched path
// parameters merged with the route defaults.
type Action func(r *http.Request, res *Response, args map[string]string) (any, error)

// ControllerFunc is a handler that does not need the route arguments.
type ControllerFunc func(r *http.Request, res *Response) (any, error)

// Serve implements Controller.
func (f ControllerFunc) Serve(r *http.Request, res *Response) (any, error) {
	return f(r, res)
}

// Controller is an object handler.
type Controller interface {
	Serve(r *http.Request, res *Response) (any, error)
}

// ActionRef references a method of a registered controller.
type ActionRef struct {
	Controller string
	Method     string
}

// Act returns a reference to method of the controller registered under
// name.
func Act(controller, method string) ActionRef {
	return ActionRef{Controller: controller, Method: method}
}

// Invoker calls a resolved action. It is the hook for dependency
// resolution; the default invoker calls the action directly.
type Invoker interface {
	Invoke(action Action, r *http.Request, res *Response, args map[string]string) (any, error)
}

// InvokerFunc allows a function to act as an Invoker.
type InvokerFunc func(action Action, r *http.Request, res *Response, args map[string]string) (any, error)

// Invoke implements Invoker.
func (f InvokerFunc) Invoke(action Action, r *http.Request, res *Response, args map[string]string) (any, error) {
	return f(action, r, res, args)
}

var directInvoker = InvokerFunc(func(action Action, r *http.Request, res *Response, args map[string]string) (any, error) {
	return action(r, res, args)
})

var (
	actionType         = reflect.TypeOf((*Action)(nil)).Elem()
	controllerFuncType = reflect.TypeOf((*ControllerFunc)(nil)).Elem()
)

// resolveHandler turns any supported handler shape into an Action.
// Strings and ActionRef values are looked up in controllers, qualified by
// namespace when needed.
func resolveHandler(handler any, namespace string, controllers map[string]any) (Action, error) {
	switch h := handler.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil handler", ErrInvalidHandler)
	case Action:
		return h, nil
	case func(*http.Request, *Response, map[string]string) (any, error):
		return h, nil
	case ControllerFunc:
		return controllerAction(h), nil
	case func(*http.Request, *Response) (any, error):
		return controllerAction(ControllerFunc(h)), nil
	case Controller:
		return controllerAction(h), nil
	case http.Handler:
		return httpHandlerAction(h), nil
	case func(http.ResponseWriter, *http.Request):
		return httpHandlerAction(http.HandlerFunc(h)), nil
	case string:
		return resolveString(h, namespace, controllers)
	case ActionRef:
		return resolveRef(h, namespace, controllers)
	}

	return nil, fmt.Errorf("%w: unsupported handler type %T", ErrInvalidHandler, handler)
}

func controllerAction(c Controller) Action {
	return func(r *http.Request, res *Response, _ map[string]string) (any, error) {
		return c.Serve(r, res)
	}
}

func httpHandlerAction(h http.Handler) Action {
	return func(r *http.Request, res *Response, _ map[string]string) (any, error) {
		h.ServeHTTP(res, r)
		return nil, nil
	}
}

// resolveString resolves "Name" or "Name@Method". The namespace is
// prefixed unless the reference already starts with it.
func resolveString(ref, namespace string, controllers map[string]any) (Action, error) {
	name, method, _ := strings.Cut(ref, "@")
	if namespace != "" && !strings.HasPrefix(name, namespace) {
		name = namespace + name
	}

	c, ok := controllers[name]
	if !ok {
		return nil, fmt.Errorf("%w: controller %q is not registered", ErrInvalidHandler, name)
	}

	if method == "" {
		return resolveHandler(c, "", nil)
	}

	return methodAction(c, name, method)
}

// resolveRef resolves a controller method reference. The namespace is
// prefixed only when the bare controller name is unknown.
func resolveRef(ref ActionRef, namespace string, controllers map[string]any) (Action, error) {
	name := ref.Controller
	c, ok := controllers[name]
	if !ok && namespace != "" {
		name = namespace + ref.Controller
		c, ok = controllers[name]
	}
	if !ok {
		return nil, fmt.Errorf("%w: controller %q is not registered", ErrInvalidHandler, ref.Controller)
	}

	if ref.Method == "" {
		return resolveHandler(c, "", nil)
	}

	return methodAction(c, name, ref.Method)
}

// methodAction binds the exported method of controller c once.
func methodAction(c any, name, method string) (Action, error) {
	m := reflect.ValueOf(c).MethodByName(method)
	if !m.IsValid() {
		return nil, fmt.Errorf("%w: controller %q has no method %q", ErrInvalidHandler, name, method)
	}

	switch {
	case m.Type().ConvertibleTo(actionType):
		return m.Convert(actionType).Interface().(Action), nil
	case m.Type().ConvertibleTo(controllerFuncType):
		return controllerAction(m.Convert(controllerFuncType).Interface().(ControllerFunc)), nil
	}

	return nil, fmt.Errorf("%w: method %s.%s has signature %s", ErrInvalidHandler, name, method, m.Type())
}
