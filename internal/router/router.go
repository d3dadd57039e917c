// Package router implements exact and longest-prefix route tables.
// Exact matches are tried first; a miss falls through to a linear scan
// of prefix routes kept sorted by descending prefix length, which is
// simple and fast enough at the handful-of-routes scale this framework
// targets.
package router

import (
	"github.com/minum-go/minum/internal/request"
	"github.com/minum-go/minum/internal/response"
	"github.com/minum-go/minum/internal/startline"
)

// Handler is a pure function from Request to Response.
type Handler func(req *request.Request) *response.Response

// DispatchingHandler receives the StartLine first and returns a
// Handler, enabling dispatch-time decisions before the full request
// has even been parsed.
type DispatchingHandler func(sl startline.StartLine) Handler

type exactKey struct {
	verb startline.Verb
	path string
}

type partialRoute struct {
	verb    startline.Verb
	prefix  string
	handler Handler
}

// Router holds the exact and partial route tables. It is safe to read
// concurrently once registration is finished: route tables outlive
// requests and are mutated only at configuration time.
type Router struct {
	exact   map[exactKey]Handler
	partial []partialRoute
}

// New returns an empty Router.
func New() *Router {
	return &Router{exact: map[exactKey]Handler{}}
}

// Register adds an exact verb+path route. Configuration-time only.
func (r *Router) Register(verb startline.Verb, path string, h Handler) {
	r.exact[exactKey{verb: verb, path: path}] = h
}

// RegisterPartialPath adds a longest-prefix route. Configuration-time
// only. Routes are kept sorted by descending prefix length so Find is
// a single linear scan that returns the first (longest) match; ties
// (equal prefix length) resolve to whichever was registered first.
func (r *Router) RegisterPartialPath(verb startline.Verb, prefix string, h Handler) {
	entry := partialRoute{verb: verb, prefix: prefix, handler: h}
	i := 0
	for i < len(r.partial) && len(r.partial[i].prefix) >= len(prefix) {
		i++
	}
	r.partial = append(r.partial, partialRoute{})
	copy(r.partial[i+1:], r.partial[i:])
	r.partial[i] = entry
}

// Find looks up the handler for sl: the exact table first, then the
// partial table (longest matching prefix, same verb). Returns nil on a
// total miss, which the connection handler renders as 404.
func (r *Router) Find(sl startline.StartLine) Handler {
	path := sl.Path.IsolatedPath
	if h, ok := r.exact[exactKey{verb: sl.Verb, path: path}]; ok {
		return h
	}
	for _, p := range r.partial {
		if p.verb != sl.Verb {
			continue
		}
		if p.prefix == path || (len(path) >= len(p.prefix) && path[:len(p.prefix)] == p.prefix) {
			return p.handler
		}
	}
	return nil
}
