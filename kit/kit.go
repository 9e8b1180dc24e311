// CLAUDE:SUMMARY Transport-agnostic endpoint type with middleware chaining, shared by the HTTP and MCP surfaces.
// Package kit holds the small transport layer shared by the HTTP API and the
// MCP server: a uniform Endpoint shape, middleware chaining, and per-request
// context values.
package kit

import "context"

// Endpoint is one operation exposed over any transport. Requests and
// responses are plain structs; transports handle the encoding.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares left to right: the first argument is the
// outermost wrapper.
func Chain(mws ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
