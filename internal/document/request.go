package document

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/conduit-lang/recordtree/internal/apperror"
)

// Request is the part of the incoming request the pipeline reads: path
// segments consumed by component routing, query flags, marker headers and
// the language hint.
type Request struct {
	segments []string
	consumed int
	query    url.Values
	header   http.Header
	language string
}

// NewRequest splits path into segments. Empty segments are dropped.
func NewRequest(path string, query url.Values, header http.Header) *Request {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if query == nil {
		query = url.Values{}
	}
	if header == nil {
		header = http.Header{}
	}
	return &Request{segments: segments, query: query, header: header}
}

// FromHTTP wraps an http.Request
func FromHTTP(r *http.Request) *Request {
	req := NewRequest(r.URL.Path, r.URL.Query(), r.Header)
	req.language = req.query.Get("lang")
	if req.language == "" {
		req.language = firstLanguage(r.Header.Get("Accept-Language"))
	}
	return req
}

func firstLanguage(accept string) string {
	first, _, _ := strings.Cut(accept, ",")
	tag, _, _ := strings.Cut(first, ";")
	return strings.TrimSpace(tag)
}

// Segments returns every path segment
func (r *Request) Segments() []string {
	return append([]string(nil), r.segments...)
}

// Consumed returns the number of segments claimed by components
func (r *Request) Consumed() int { return r.consumed }

// Remaining returns the segments no component has claimed yet
func (r *Request) Remaining() []string {
	return append([]string(nil), r.segments[r.consumed:]...)
}

// Consume claims the next n segments
func (r *Request) Consume(n int) error {
	if n < 0 || r.consumed+n > len(r.segments) {
		return apperror.NotFound(CodeNotFound, "cannot consume %d of %d remaining path segments",
			n, len(r.segments)-r.consumed)
	}
	r.consumed += n
	return nil
}

// Language returns the language hint, empty when the client sent none
func (r *Request) Language() string { return r.language }

// SetLanguage overrides the language hint
func (r *Request) SetLanguage(lang string) { r.language = lang }

// Flag reports whether the query carries the named parameter
func (r *Request) Flag(name string) bool {
	_, ok := r.query[name]
	return ok
}

// Param returns a query parameter
func (r *Request) Param(name string) string { return r.query.Get(name) }

// Header returns a request header
func (r *Request) Header(name string) string { return r.header.Get(name) }
