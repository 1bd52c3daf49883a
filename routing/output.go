package routing

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// OutputBuffer captures text a handler emits outside of its response.
// Scopes nest in LIFO order: Start opens a scope, Clean closes the
// innermost one and returns what it captured. Writes go to the innermost
// open scope, or to the sink when no scope is open.
type OutputBuffer struct {
	mu     sync.Mutex
	scopes []*bytes.Buffer
	sink   io.Writer
}

// NewOutputBuffer returns a buffer with no open scope. Text written while
// no scope is open goes to sink, or is discarded when sink is nil.
func NewOutputBuffer(sink io.Writer) *OutputBuffer {
	return &OutputBuffer{sink: sink}
}

// Start opens a new capture scope.
func (b *OutputBuffer) Start() {
	b.mu.Lock()
	b.scopes = append(b.scopes, new(bytes.Buffer))
	b.mu.Unlock()
}

// Level returns the number of open scopes.
func (b *OutputBuffer) Level() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.scopes)
}

// Clean closes the innermost scope and returns its contents. It returns an
// empty string when no scope is open.
func (b *OutputBuffer) Clean() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.scopes)
	if n == 0 {
		return ""
	}

	out := b.scopes[n-1].String()
	b.scopes[n-1] = nil
	b.scopes = b.scopes[:n-1]

	return out
}

// Truncate closes scopes until at most level remain, discarding their
// contents.
func (b *OutputBuffer) Truncate(level int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if level < 0 {
		level = 0
	}
	for i := level; i < len(b.scopes); i++ {
		b.scopes[i] = nil
	}
	if level < len(b.scopes) {
		b.scopes = b.scopes[:level]
	}
}

// Write writes p to the innermost scope.
func (b *OutputBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n := len(b.scopes); n > 0 {
		return b.scopes[n-1].Write(p)
	}
	if b.sink != nil {
		return b.sink.Write(p)
	}

	return len(p), nil
}

type outputContextKey struct{}

// Output returns the capture buffer of the dispatch serving r. Outside a
// dispatch it returns a buffer that discards everything.
func Output(r *http.Request) *OutputBuffer {
	if b, ok := r.Context().Value(outputContextKey{}).(*OutputBuffer); ok {
		return b
	}

	return NewOutputBuffer(nil)
}

// WithOutput returns a shallow copy of r whose dispatch captures text into
// b. Dispatch installs a fresh buffer when the request carries none.
func WithOutput(r *http.Request, b *OutputBuffer) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), outputContextKey{}, b))
}

// Echo writes the operands to the capture buffer of the dispatch serving
// r, formatted as fmt.Fprint does.
func Echo(r *http.Request, a ...any) {
	fmt.Fprint(Output(r), a...)
}
