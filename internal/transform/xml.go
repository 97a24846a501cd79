package transform

import (
	"github.com/conduit-lang/recordtree/internal/apperror"
	"github.com/conduit-lang/recordtree/internal/document"
)

// XMLConfig configures the XML transformer
type XMLConfig struct {
	// ContentType defaults to application/xml
	ContentType string
	PrettyPrint bool
	// Debug implies PrettyPrint and exposes serialization errors verbatim
	Debug bool
}

// XMLTransformer writes the document tree as is
type XMLTransformer struct {
	contentType string
	pretty      bool
	debug       bool
}

// NewXML creates an XML transformer
func NewXML(cfg XMLConfig) *XMLTransformer {
	ct := cfg.ContentType
	if ct == "" {
		ct = ContentTypeXML
	}
	return &XMLTransformer{contentType: ct, pretty: cfg.PrettyPrint || cfg.Debug, debug: cfg.Debug}
}

// Transform serializes the document
func (x *XMLTransformer) Transform(doc *document.Document) (*Output, error) {
	tree := doc.Tree()
	if x.pretty {
		tree = tree.Copy()
		tree.Indent(2)
	}

	body, err := tree.WriteToBytes()
	if err != nil {
		if x.debug {
			return nil, apperror.Critical(CodeXMLSerialize, "%v", err).Wrap(err)
		}
		return nil, apperror.Critical(CodeXMLSerialize, "cannot serialize document").Wrap(err)
	}
	return &Output{ContentType: x.contentType, Body: body}, nil
}
