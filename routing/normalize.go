package routing

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"

	"golang.org/x/net/html/charset"
)

var htmlCloseTag = regexp.MustCompile(`(?is)</html[^>]*>`)

// wrapResponse converts a handler result and the captured output into the
// final response. A *Response result wins over the pipeline default res.
func wrapResponse(res *Response, result any, output string) (*Response, error) {
	if r, ok := result.(*Response); ok && r != nil {
		if output != "" && r.body.Writable() {
			if _, err := io.WriteString(r.body, output); err != nil {
				return nil, err
			}
		}

		return r, nil
	}

	if isStructured(result) {
		data, err := json.Marshal(result)
		if err != nil {
			return nil, err
		}
		if _, err := res.body.Write(data); err != nil {
			return nil, err
		}
	} else {
		text, err := textOf(result)
		if err != nil {
			return nil, err
		}
		if _, err := io.WriteString(res.body, text); err != nil {
			return nil, err
		}
	}

	return detectResponse(res, output)
}

// detectResponse glues the captured output to the body and infers the
// content type from the result.
func detectResponse(res *Response, output string) (*Response, error) {
	if _, err := io.WriteString(res.body, output); err != nil {
		return nil, err
	}

	if err := res.body.Rewind(); err != nil {
		return nil, err
	}
	contents, err := res.body.Contents()
	if err != nil {
		return nil, err
	}
	if err := res.body.Rewind(); err != nil {
		return nil, err
	}

	if ct := DetectContentType([]byte(contents)); ct != "" {
		res.header.Set("Content-Type", ct)
	}

	return res, nil
}

// DetectContentType infers the content type of a handler body. The first
// matching rule wins: valid JSON, well-formed XML carrying an XML
// declaration, then plain text when the body has no closing html tag. It
// returns an empty string when the body looks like HTML.
func DetectContentType(body []byte) string {
	if json.Valid(body) {
		return ContentTypeJSON
	}

	if bytes.Contains(body, []byte("<?xml")) && isWellFormedXML(body) {
		return ContentTypeXML
	}

	if !htmlCloseTag.Match(body) {
		return ContentTypePlain
	}

	return ""
}

// isWellFormedXML reports whether body holds exactly one root element and
// nothing but whitespace, comments and processing instructions around it.
func isWellFormedXML(body []byte) bool {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.Strict = true
	dec.CharsetReader = charset.NewReaderLabel

	var depth, roots int
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return roots == 1 && depth == 0
		}
		if err != nil {
			return false
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
				if roots > 1 {
					return false
				}
			}
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				return false
			}
		}
	}
}

// isStructured reports whether result is serialized as JSON.
func isStructured(result any) bool {
	if result == nil {
		return false
	}

	switch result.(type) {
	case json.Marshaler:
		return true
	case []byte, string, fmt.Stringer, error, io.Reader:
		return false
	}

	t := reflect.TypeOf(result)
	if t.Kind() == reflect.Pointer {
		if reflect.ValueOf(result).IsNil() {
			return false
		}
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return true
	default:
		return false
	}
}

// textOf coerces a non structured result to text.
func textOf(result any) (string, error) {
	if result == nil {
		return "", nil
	}
	if rv := reflect.ValueOf(result); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return "", nil
	}

	switch v := result.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case io.Reader:
		var sb strings.Builder
		if _, err := io.Copy(&sb, v); err != nil {
			return "", err
		}
		return sb.String(), nil
	case fmt.Stringer:
		return v.String(), nil
	case error:
		return v.Error(), nil
	}

	return fmt.Sprint(result), nil
}
