// Package router implements Strand's hostname and path routing: Domains
// keyed by hostname matchers, each holding Routes that pair a path
// matcher with a method set and a handler.
//
// Matching is deterministic: domains and routes are consulted in
// registration order and the first match wins. Duplicate registrations
// are permitted; the earlier one shadows the later.
package router

import (
	"strings"
	"sync"

	"github.com/strand-dev/strand/internal/errors"
	"github.com/strand-dev/strand/pkg/server"
)

// Route is a single endpoint within a domain: a path matcher, a set of
// allowed methods, and a handler.
type Route struct {
	path    Matcher
	methods map[string]struct{}
	handler server.Handler
	label   string
}

// NewRoute builds a Route. Methods defaults to GET when empty would be
// an error; an empty matcher is also an error.
func NewRoute(path Matcher, methods []string, handler server.Handler) (*Route, error) {
	if path.empty() {
		return nil, errors.New("E201")
	}
	if len(methods) == 0 {
		return nil, errors.New("E202").WithDetailf("route %s", path)
	}
	set := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		set[strings.ToUpper(m)] = struct{}{}
	}
	return &Route{
		path:    path,
		methods: set,
		handler: handler,
		label:   strings.Join(methods, "/") + " " + path.String(),
	}, nil
}

// Matches reports whether the route accepts the given path and method.
func (r *Route) Matches(path, method string) bool {
	if _, ok := r.methods[method]; !ok {
		return false
	}
	return r.path.Match(path)
}

// Handler returns the route's handler.
func (r *Route) Handler() server.Handler {
	return r.handler
}

// String returns "METHOD/METHOD path" for logging.
func (r *Route) String() string {
	return r.label
}

// RouteMap is an ordered collection of routes.
type RouteMap struct {
	routes []*Route
}

// NewRouteMap returns an empty RouteMap.
func NewRouteMap() *RouteMap {
	return &RouteMap{}
}

// Handle registers a handler for the given path matcher and methods.
func (rm *RouteMap) Handle(path Matcher, methods []string, handler server.Handler) error {
	route, err := NewRoute(path, methods, handler)
	if err != nil {
		return err
	}
	rm.routes = append(rm.routes, route)
	return nil
}

// HandleFunc registers a handler for an exact path, defaulting to GET
// when methods is empty.
func (rm *RouteMap) HandleFunc(path string, handler server.Handler, methods ...string) error {
	if len(methods) == 0 {
		methods = []string{"GET"}
	}
	return rm.Handle(Exact(path), methods, handler)
}

// FindRoute returns the first route matching path and method in
// registration order, or nil.
func (rm *RouteMap) FindRoute(path, method string) *Route {
	for _, route := range rm.routes {
		if route.Matches(path, method) {
			return route
		}
	}
	return nil
}

// Routes returns the registered routes in registration order.
func (rm *RouteMap) Routes() []*Route {
	return rm.routes
}

// Domain is a routing scope keyed by requested hostname.
type Domain struct {
	RouteMap
	hostname Matcher
}

// NewDomain returns a Domain for the given hostname matcher.
func NewDomain(hostname Matcher) *Domain {
	return &Domain{hostname: hostname}
}

// Matches reports whether the domain accepts the hostname.
func (d *Domain) Matches(hostname string) bool {
	return d.hostname.Match(hostname)
}

// AddMap merges an existing routemap's routes into the domain,
// preserving their registration order after the domain's own routes.
func (d *Domain) AddMap(rm *RouteMap) {
	d.routes = append(d.routes, rm.routes...)
}

// String returns the hostname matcher's form.
func (d *Domain) String() string {
	return d.hostname.String()
}

// Router holds the registered domains and implements server.Router.
//
// Domains are matched in registration order; within a domain, routes
// are matched in registration order. Registration is guarded so the
// embedding application may add or remove domains between requests,
// though the common pattern is to register everything before Run.
type Router struct {
	mu         sync.RWMutex
	domains    []*Domain
	middleware []server.Middleware
}

// NewRouter returns an empty Router.
func NewRouter() *Router {
	return &Router{}
}

// Use appends middleware applied around every resolved handler, in
// registration order (the first Use wraps outermost).
func (r *Router) Use(mw server.Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, mw)
}

// AddDomain registers a domain.
func (r *Router) AddDomain(d *Domain) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.domains = append(r.domains, d)
}

// AddDomains registers multiple domains in order.
func (r *Router) AddDomains(ds ...*Domain) {
	for _, d := range ds {
		r.AddDomain(d)
	}
}

// RemoveDomain removes a previously registered domain.
func (r *Router) RemoveDomain(d *Domain) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.domains {
		if existing == d {
			r.domains = append(r.domains[:i], r.domains[i+1:]...)
			return
		}
	}
}

// RemoveDomains removes multiple domains.
func (r *Router) RemoveDomains(ds ...*Domain) {
	for _, d := range ds {
		r.RemoveDomain(d)
	}
}

// FindDomain returns the first domain matching hostname in registration
// order, or nil.
func (r *Router) FindDomain(hostname string) *Domain {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.domains {
		if d.Matches(hostname) {
			return d
		}
	}
	return nil
}

// Resolve implements server.Router: first matching domain, then first
// matching route within it, with the middleware chain applied.
func (r *Router) Resolve(hostname, path, method string) (server.Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.domains {
		if !d.Matches(hostname) {
			continue
		}
		route := d.FindRoute(path, method)
		if route == nil {
			return nil, false
		}
		handler := route.handler
		for i := len(r.middleware) - 1; i >= 0; i-- {
			handler = r.middleware[i](handler)
		}
		return handler, true
	}
	return nil, false
}
