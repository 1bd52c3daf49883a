package routing

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

// ErrUnsupportedMediaType is returned by Bind for bodies that are neither
// JSON nor XML.
var ErrUnsupportedMediaType = errors.New("routing: unsupported media type")

// Bind decodes the request body into v according to its Content-Type:
// application/json and +json types with BindJSON, application/xml,
// text/xml and +xml types with BindXML.
func Bind(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedMediaType, err)
	}

	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		return BindJSON(r, v)
	case mediaType == "application/xml" || mediaType == "text/xml" || strings.HasSuffix(mediaType, "+xml"):
		return BindXML(r, v)
	}

	return fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mediaType)
}

// BindJSON decodes the request body as JSON into v. Unknown fields are
// rejected unless allowUnknownFields is true. Exactly one JSON value must
// be present in the body.
func BindJSON(r *http.Request, v any, allowUnknownFields ...bool) error {
	dec := json.NewDecoder(r.Body)
	if len(allowUnknownFields) == 0 || !allowUnknownFields[0] {
		dec.DisallowUnknownFields()
	}

	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("routing: unexpected trailing data after JSON value")
	}

	return nil
}

// BindXML decodes the request body as XML into v. Exactly one XML element
// must be present in the body.
func BindXML(r *http.Request, v any) error {
	dec := xml.NewDecoder(r.Body)

	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("routing: unexpected trailing data after XML value")
	}

	return nil
}
