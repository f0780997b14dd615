package server

import "context"

// Handler processes one parsed connection and returns a Result.
//
// Handlers run on their own goroutine; ctx is cancelled when the server
// force-cancels in-flight work during shutdown. A handler that has nothing
// to serve returns NotFound() and the server sends its fixed 404.
type Handler func(ctx context.Context, conn *Connection) Result

// Middleware wraps a Handler.
type Middleware func(Handler) Handler

// Router resolves a request to a registered handler. Implemented by
// the router package; the server only needs lookup.
type Router interface {
	Resolve(hostname, path, method string) (Handler, bool)
}

type resultKind int

const (
	kindBody resultKind = iota
	kindBodyWithStatus
	kindNotFound
)

// Result is the tagged return value of a Handler: a plain body (sent with
// status 200), a body with an explicit status, or not-found.
type Result struct {
	kind   resultKind
	status int
	body   []byte
}

// Body returns a Result carrying body with an implicit 200 status.
func Body(body []byte) Result {
	return Result{kind: kindBody, status: 200, body: body}
}

// BodyWithStatus returns a Result carrying body with an explicit status.
func BodyWithStatus(status int, body []byte) Result {
	return Result{kind: kindBodyWithStatus, status: status, body: body}
}

// NotFound returns the Result that maps to the server's fixed 404
// response.
func NotFound() Result {
	return Result{kind: kindNotFound}
}

// Status returns the response status the Result resolves to.
func (r Result) Status() int {
	if r.kind == kindNotFound {
		return 404
	}
	return r.status
}

// Bytes returns the response body the Result resolves to.
func (r Result) Bytes() []byte {
	if r.kind == kindNotFound {
		return notFoundBody
	}
	return r.body
}

// IsNotFound reports whether the Result is the not-found variant.
func (r Result) IsNotFound() bool {
	return r.kind == kindNotFound
}

var notFoundBody = []byte("Not Found.")
