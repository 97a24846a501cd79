package controller

import (
	"strings"

	"github.com/conduit-lang/recordtree/internal/document"
	"github.com/conduit-lang/recordtree/internal/transform"
)

// Query flags and the marker header consulted by Resolve
const (
	FlagDebug     = "debug"
	FlagHTML      = "html"
	FlagStructure = "struct"
	FlagJSON      = "json"
	HeaderRequest = "X-Request"
)

// Resolve picks the view mode of a request. The first match wins: debug XML
// (debug flag with debug configured, or always-XML configured), the html
// flag, the struct flag, the json flag or a json marker header, then HTML.
func Resolve(req *document.Request, debug, asXML bool) transform.ViewMode {
	switch {
	case (req.Flag(FlagDebug) && debug) || asXML:
		return transform.ModeDebugXML
	case req.Flag(FlagHTML):
		return transform.ModeHTML
	case req.Flag(FlagStructure):
		return transform.ModeStructureXML
	case req.Flag(FlagJSON) || strings.EqualFold(req.Header(HeaderRequest), "json"):
		return transform.ModeJSON
	default:
		return transform.ModeHTML
	}
}

// Selector returns the transformer of a view mode
type Selector interface {
	ForMode(m transform.ViewMode) transform.Transformer
}

// RequestState memoizes the view mode and transformer of one request
type RequestState struct {
	req      *document.Request
	debug    bool
	asXML    bool
	selector Selector

	resolved    bool
	mode        transform.ViewMode
	transformer transform.Transformer
}

// NewRequestState creates the state of one request
func NewRequestState(req *document.Request, selector Selector, debug, asXML bool) *RequestState {
	return &RequestState{req: req, selector: selector, debug: debug, asXML: asXML}
}

func (s *RequestState) resolve() {
	if s.resolved {
		return
	}
	s.mode = Resolve(s.req, s.debug, s.asXML)
	s.transformer = s.selector.ForMode(s.mode)
	s.resolved = true
}

// Mode returns the view mode, resolving it on first use
func (s *RequestState) Mode() transform.ViewMode {
	s.resolve()
	return s.mode
}

// Transformer returns the transformer of the view mode. Every call within
// one request returns the same instance.
func (s *RequestState) Transformer() transform.Transformer {
	s.resolve()
	return s.transformer
}
