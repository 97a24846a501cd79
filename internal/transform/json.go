package transform

import (
	"bytes"
	"encoding/json"

	"github.com/conduit-lang/recordtree/internal/apperror"
	"github.com/conduit-lang/recordtree/internal/document"
)

var bom = []byte("\xef\xbb\xbf")

// JSONTransformer emits the JSON payload a builder placed in the document
type JSONTransformer struct {
	pretty bool
}

// NewJSON creates a JSON transformer. pretty re-indents the payload.
func NewJSON(pretty bool) *JSONTransformer {
	return &JSONTransformer{pretty: pretty}
}

// Transform extracts and validates the payload
func (j *JSONTransformer) Transform(doc *document.Document) (*Output, error) {
	payload, err := doc.JSON()
	if err != nil {
		return nil, err
	}

	body := bytes.TrimSpace(bytes.TrimPrefix([]byte(payload), bom))
	if len(body) == 0 {
		return nil, apperror.Critical(CodeEmptyJSON, "JSON payload is empty")
	}
	if !json.Valid(body) {
		return nil, apperror.Critical(CodeInvalidJSON, "JSON payload is not valid JSON").
			WithDetail("payload", truncate(string(body), 256))
	}

	if j.pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, body, "", "  "); err != nil {
			return nil, apperror.Critical(CodeInvalidJSON, "cannot indent JSON payload").Wrap(err)
		}
		body = buf.Bytes()
	}
	return &Output{ContentType: ContentTypeJSON, Body: body}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
