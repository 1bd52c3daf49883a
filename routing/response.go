package routing

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"io"
	"net/http"
)

// Content types set by the response normalizer.
const (
	ContentTypeHTML  = "text/html; charset=utf-8"
	ContentTypePlain = "text/plain; charset=utf-8"
	ContentTypeJSON  = "application/json"
	ContentTypeXML   = "application/xml; charset=utf-8"
)

// Response is the outgoing message produced by a dispatch. It implements
// http.ResponseWriter so plain net/http handlers can write into it.
type Response struct {
	status int
	header http.Header
	body   Stream
}

// ResponseFactory creates the default response handed to each handler.
type ResponseFactory func() *Response

// NewResponse returns an empty 200 OK response with a writable body.
func NewResponse() *Response {
	return &Response{
		status: http.StatusOK,
		header: make(http.Header),
		body:   NewStream(""),
	}
}

// NewResponseWithBody returns a response with the given status and body.
func NewResponseWithBody(code int, body Stream) *Response {
	if body == nil {
		body = NewStream("")
	}

	return &Response{
		status: code,
		header: make(http.Header),
		body:   body,
	}
}

// JSONResponse encodes v as JSON into a new response with the given status
// code. The Content-Type header is set to "application/json".
func JSONResponse(code int, v any) (*Response, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}

	res := NewResponseWithBody(code, NewStream(buf.String()))
	res.header.Set("Content-Type", ContentTypeJSON)

	return res, nil
}

// XMLResponse encodes v as XML into a new response with the given status
// code. The Content-Type header is set to "application/xml".
func XMLResponse(code int, v any) (*Response, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}

	res := NewResponseWithBody(code, NewStream(buf.String()))
	res.header.Set("Content-Type", ContentTypeXML)

	return res, nil
}

// RedirectResponse returns an empty response redirecting to location.
func RedirectResponse(location string, code int) *Response {
	res := NewResponseWithBody(code, nil)
	res.header.Set("Location", location)

	return res
}

// Header returns the response header map.
func (r *Response) Header() http.Header {
	return r.header
}

// Write appends p to the body.
func (r *Response) Write(p []byte) (int, error) {
	return r.body.Write(p)
}

// WriteHeader sets the status code.
func (r *Response) WriteHeader(code int) {
	r.status = code
}

// StatusCode returns the status code.
func (r *Response) StatusCode() int {
	return r.status
}

// Body returns the body stream.
func (r *Response) Body() Stream {
	return r.body
}

// SetBody replaces the body stream.
func (r *Response) SetBody(body Stream) *Response {
	r.body = body
	return r
}

// WithHeader sets a header value and returns the response.
func (r *Response) WithHeader(key, value string) *Response {
	r.header.Set(key, value)
	return r
}

// WithStatus sets the status code and returns the response.
func (r *Response) WithStatus(code int) *Response {
	r.status = code
	return r
}

// WriteTo flushes the response to the transport.
func (r *Response) WriteTo(w http.ResponseWriter) error {
	dst := w.Header()
	for k, v := range r.header {
		dst[k] = append([]string(nil), v...)
	}

	status := r.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	_, err := io.WriteString(w, r.body.String())

	return err
}
