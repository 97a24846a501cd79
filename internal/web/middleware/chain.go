// Package middleware wraps document handlers with the request boundary:
// request ids, panic recovery and access logging.
package middleware

import (
	"net/http"
)

// Middleware is a function that wraps an http.Handler
type Middleware func(http.Handler) http.Handler

// Chain is an ordered list of middleware
type Chain struct {
	middlewares []Middleware
}

// NewChain creates a chain. The first middleware runs first.
func NewChain(middlewares ...Middleware) *Chain {
	return &Chain{middlewares: middlewares}
}

// Use adds a middleware to the end of the chain
func (c *Chain) Use(m Middleware) *Chain {
	c.middlewares = append(c.middlewares, m)
	return c
}

// Then wraps handler with every middleware of the chain
func (c *Chain) Then(handler http.Handler) http.Handler {
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		handler = c.middlewares[i](handler)
	}
	return handler
}

// Append returns a new chain extended with middlewares, leaving c unchanged
func (c *Chain) Append(middlewares ...Middleware) *Chain {
	combined := make([]Middleware, 0, len(c.middlewares)+len(middlewares))
	combined = append(combined, c.middlewares...)
	combined = append(combined, middlewares...)
	return &Chain{middlewares: combined}
}

// Standard is the chain mounted in front of document controllers
func Standard(logger *Logger, debug bool) *Chain {
	return NewChain(RequestID(), Logging(logger), Recovery(logger, debug))
}
