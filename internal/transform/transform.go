// Package transform serializes an assembled document into a response body:
// raw XML, a pre-encoded JSON payload or an HTML page rendered through a
// stylesheet template.
package transform

import (
	"net/http"
	"strconv"

	"github.com/conduit-lang/recordtree/internal/document"
)

// Content types set by the transformers
const (
	ContentTypeXML  = "application/xml"
	ContentTypeJSON = "application/json; charset=utf-8"
	ContentTypeHTML = "text/html; charset=utf-8"
)

// Output is a transformed response body
type Output struct {
	ContentType string
	Body        []byte
}

// Transformer turns a document into a response body
type Transformer interface {
	Transform(doc *document.Document) (*Output, error)
}

// Write sends out with status. Headers already present on w are replaced.
func Write(w http.ResponseWriter, status int, out *Output) error {
	h := w.Header()
	h.Set("Content-Type", out.ContentType)
	h.Set("Content-Length", strconv.Itoa(len(out.Body)))
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, err := w.Write(out.Body)
	return err
}
