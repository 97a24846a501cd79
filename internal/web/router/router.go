// Package router mounts document controllers and service endpoints on a chi
// router behind the boundary middleware chain.
package router

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/conduit-lang/recordtree/internal/web/middleware"
)

// RouteInfo describes a registered route for introspection
type RouteInfo struct {
	Method  string
	Pattern string
	Name    string
}

// Router manages HTTP routing using chi
type Router struct {
	mux     chi.Router
	handler http.Handler
	names   map[string]string
}

// New creates a router. Every request passes through chain before routing.
func New(chain *middleware.Chain) *Router {
	if chain == nil {
		chain = middleware.NewChain()
	}
	mux := chi.NewRouter()
	return &Router{
		mux:     mux,
		handler: chain.Then(mux),
		names:   make(map[string]string),
	}
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

// documentMethods are the methods a document controller answers
var documentMethods = []string{http.MethodGet, http.MethodHead, http.MethodPost}

// Documents mounts h for every path under prefix. The prefix is stripped so
// the controller sees only the segments its components consume.
func (r *Router) Documents(prefix, name string, h http.Handler) {
	prefix = "/" + strings.Trim(prefix, "/")
	handler := h
	if prefix != "/" {
		handler = http.StripPrefix(prefix, h)
	}

	patterns := []string{"/*"}
	if prefix != "/" {
		patterns = []string{prefix, prefix + "/*"}
	}
	for _, pattern := range patterns {
		for _, method := range documentMethods {
			r.mux.Method(method, pattern, handler)
		}
		r.names[pattern] = name
	}
}

// Get registers a GET route
func (r *Router) Get(pattern, name string, h http.HandlerFunc) {
	r.mux.Get(pattern, h)
	r.names[pattern] = name
}

// Health registers a liveness endpoint answering 200 "ok"
func (r *Router) Health(pattern string) {
	r.Get(pattern, "health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
}

// NotFound sets the handler for unmatched paths
func (r *Router) NotFound(h http.HandlerFunc) {
	r.mux.NotFound(h)
}

// Routes lists the registered routes sorted by pattern and method
func (r *Router) Routes() []RouteInfo {
	var routes []RouteInfo
	_ = chi.Walk(r.mux, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, RouteInfo{Method: method, Pattern: route, Name: r.names[route]})
		return nil
	})
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Pattern != routes[j].Pattern {
			return routes[i].Pattern < routes[j].Pattern
		}
		return routes[i].Method < routes[j].Method
	})
	return routes
}
