// Package controller is the front controller of the render pipeline. It
// resolves the view mode of a request, assembles the document, turns errors
// and structure escapes into their documents and writes the transformed
// body.
package controller

import (
	"context"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/conduit-lang/recordtree/internal/apperror"
	"github.com/conduit-lang/recordtree/internal/builder"
	"github.com/conduit-lang/recordtree/internal/document"
	"github.com/conduit-lang/recordtree/internal/i18n"
	"github.com/conduit-lang/recordtree/internal/logging"
	"github.com/conduit-lang/recordtree/internal/transform"
)

// Layout creates the components of a request
type Layout interface {
	Components(ctx context.Context, req *document.Request) ([]document.Component, error)
}

// LayoutFunc adapts a function to the Layout interface
type LayoutFunc func(ctx context.Context, req *document.Request) ([]document.Component, error)

// Components calls f
func (f LayoutFunc) Components(ctx context.Context, req *document.Request) ([]document.Component, error) {
	return f(ctx, req)
}

// Response is the outcome of one request
type Response struct {
	Status int
	Mode   transform.ViewMode
	Output *transform.Output
}

// DocumentController renders documents for requests. It holds no
// per-request state and is safe for concurrent use.
type DocumentController struct {
	layout       Layout
	selector     Selector
	fallback     transform.Transformer
	translations *i18n.Service
	language     language.Tag
	debug        bool
	asXML        bool
	logger       *zap.Logger
}

// Option configures a DocumentController
type Option func(*DocumentController)

// WithTranslations sets the translation service used for documents
func WithTranslations(s *i18n.Service) Option {
	return func(c *DocumentController) { c.translations = s }
}

// WithLanguage sets the language used when the request names none
func WithLanguage(tag language.Tag) Option {
	return func(c *DocumentController) { c.language = tag }
}

// WithDebug enables the debug flag and detailed error documents
func WithDebug(debug bool) Option {
	return func(c *DocumentController) { c.debug = debug }
}

// WithAsXML forces raw XML output for every request
func WithAsXML(asXML bool) Option {
	return func(c *DocumentController) { c.asXML = asXML }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *DocumentController) { c.logger = logger }
}

// WithFallback sets the transformer used when the selected one fails
func WithFallback(t transform.Transformer) Option {
	return func(c *DocumentController) { c.fallback = t }
}

// New creates a controller
func New(layout Layout, selector Selector, opts ...Option) *DocumentController {
	c := &DocumentController{
		layout:   layout,
		selector: selector,
		fallback: transform.NewXML(transform.XMLConfig{}),
		language: language.English,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run renders the document of req. It always produces a response; errors
// become error documents with the status of their kind.
func (c *DocumentController) Run(ctx context.Context, req *document.Request) *Response {
	state := NewRequestState(req, c.selector, c.debug, c.asXML)
	lang := c.resolveLanguage(req)
	tr := c.translator(ctx, lang)
	req.SetLanguage(lang.String())

	doc := document.New(lang)
	doc.SetTranslator(tr)
	status := http.StatusOK

	outcome, err := c.assemble(ctx, req, doc)
	if err != nil {
		logging.Error(c.logger, "document assembly failed", err,
			zap.Strings("path", req.Segments()),
			zap.String("mode", state.Mode().String()))
		status = apperror.HTTPStatus(err)
		doc = c.errorDocument(err, lang, tr, state.Mode())
	} else if sc, ok := outcome.(document.ShortCircuit); ok {
		c.logger.Debug("structure escape", zap.Strings("path", req.Segments()))
		doc.ApplyStructure(sc)
		doc.Finalize()
	}

	out, err := state.Transformer().Transform(doc)
	if err != nil {
		logging.Error(c.logger, "document transform failed", err,
			zap.String("mode", state.Mode().String()))
		status = apperror.HTTPStatus(err)
		out = c.fallbackOutput(err, lang, tr)
	}
	return &Response{Status: status, Mode: state.Mode(), Output: out}
}

func (c *DocumentController) assemble(ctx context.Context, req *document.Request, doc *document.Document) (document.Outcome, error) {
	if c.layout == nil {
		return nil, apperror.Developer(CodeNoLayout, "controller has no layout")
	}
	components, err := c.layout.Components(ctx, req)
	if err != nil {
		return nil, err
	}
	return document.Assemble(ctx, req, doc, components)
}

func (c *DocumentController) resolveLanguage(req *document.Request) language.Tag {
	if c.translations != nil {
		return c.translations.Tag(req.Language())
	}
	if tag, err := language.Parse(req.Language()); err == nil {
		return tag
	}
	return c.language
}

func (c *DocumentController) translator(ctx context.Context, lang language.Tag) i18n.Translator {
	if c.translations == nil {
		return i18n.Identity
	}
	return c.translations.For(ctx, lang)
}

// errorDocument builds the error document. JSON clients get the error as a
// {result: false} payload as well.
func (c *DocumentController) errorDocument(err error, lang language.Tag, tr i18n.Translator, mode transform.ViewMode) *document.Document {
	doc := document.NewErrorDocument(err, lang, tr, c.debug)
	if mode != transform.ModeJSON {
		return doc
	}

	b := builder.NewJSONCustom().
		SetProperty("result", false).
		SetProperty("errors", []map[string]string{{
			"code":    document.PublicCode(err),
			"kind":    apperror.KindOf(err).String(),
			"message": tr.Translate(document.PublicMessage(err, c.debug)),
		}})
	if berr := b.Build(); berr != nil {
		c.logger.Error("cannot encode error payload", zap.Error(berr))
		return doc
	}
	doc.SetJSON(b.Result())
	return doc
}

func (c *DocumentController) fallbackOutput(err error, lang language.Tag, tr i18n.Translator) *transform.Output {
	out, ferr := c.fallback.Transform(document.NewErrorDocument(err, lang, tr, c.debug))
	if ferr != nil {
		c.logger.Error("fallback transform failed", zap.Error(ferr))
		return &transform.Output{
			ContentType: "text/plain; charset=utf-8",
			Body:        []byte(http.StatusText(http.StatusInternalServerError)),
		}
	}
	return out
}

// ServeHTTP renders the request path
func (c *DocumentController) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	res := c.Run(r.Context(), document.FromHTTP(r))
	if err := transform.WriteConditional(w, r, res.Status, res.Output); err != nil {
		c.logger.Warn("failed to write response", zap.Error(err))
	}
}
