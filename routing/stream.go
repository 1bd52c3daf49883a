package routing

import (
	"errors"
	"io"
)

// ErrStreamNotWritable is returned when writing to a read-only stream.
var ErrStreamNotWritable = errors.New("routing: stream is not writable")

// Stream is a response body that can be written, rewound and re-read.
type Stream interface {
	io.Reader
	io.Writer

	// Rewind moves the read position back to the start.
	Rewind() error

	// Contents returns the remaining contents from the read position and
	// moves the read position to the end.
	Contents() (string, error)

	// Writable reports whether Write accepts data.
	Writable() bool

	// String returns the whole body regardless of the read position.
	String() string
}

// memoryStream is an in-memory Stream. Writes always append.
type memoryStream struct {
	data     []byte
	pos      int
	readOnly bool
}

// NewStream returns a writable in-memory stream holding s.
func NewStream(s string) Stream {
	return &memoryStream{data: []byte(s)}
}

// NewReadOnlyStream returns an in-memory stream holding s that rejects
// writes.
func NewReadOnlyStream(s string) Stream {
	return &memoryStream{data: []byte(s), readOnly: true}
}

func (s *memoryStream) Read(p []byte) (int, error) {
	if s.pos >= len(s.data) {
		return 0, io.EOF
	}

	n := copy(p, s.data[s.pos:])
	s.pos += n

	return n, nil
}

func (s *memoryStream) Write(p []byte) (int, error) {
	if s.readOnly {
		return 0, ErrStreamNotWritable
	}

	s.data = append(s.data, p...)

	return len(p), nil
}

func (s *memoryStream) Rewind() error {
	s.pos = 0
	return nil
}

func (s *memoryStream) Contents() (string, error) {
	if s.pos >= len(s.data) {
		return "", nil
	}

	out := string(s.data[s.pos:])
	s.pos = len(s.data)

	return out, nil
}

func (s *memoryStream) Writable() bool {
	return !s.readOnly
}

func (s *memoryStream) String() string {
	return string(s.data)
}
