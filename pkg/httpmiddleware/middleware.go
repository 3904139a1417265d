// Package httpmiddleware contains net/http middlewares shared by the API
// server.
package httpmiddleware

import "net/http"

// Middleware wraps an http.Handler.
type Middleware = func(http.Handler) http.Handler

// Wrap applies middlewares to h. The first middleware is the outermost.
func Wrap(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
