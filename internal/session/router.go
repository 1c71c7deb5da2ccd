package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownOption is returned for menu keys nothing is registered under.
var ErrUnknownOption = errors.New("unavailable option")

// Request is one menu command invocation.
type Request struct {
	Session *Session
	Option  Option
}

// Handler runs a menu command.
type Handler func(ctx context.Context, req *Request) error

// Middleware wraps a handler.
type Middleware func(next Handler) Handler

// Option is a menu entry.
type Option struct {
	Key   string
	Label string
	Admin bool
}

type route struct {
	option  Option
	handler Handler
}

// Router maps menu keys to handlers.
type Router struct {
	routes     map[string]route
	middleware []Middleware
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{routes: map[string]route{}}
}

// Use appends middleware. The first one registered is the outermost.
func (r *Router) Use(mw ...Middleware) {
	r.middleware = append(r.middleware, mw...)
}

// Handle registers h under opt.Key. Keys are case-insensitive.
func (r *Router) Handle(opt Option, h Handler) {
	opt.Key = strings.ToUpper(opt.Key)
	if _, ok := r.routes[opt.Key]; ok {
		panic(fmt.Sprintf("session: duplicate menu option %s", opt.Key))
	}
	r.routes[opt.Key] = route{option: opt, handler: h}
}

// Options returns the options visible to s ordered by key.
func (r *Router) Options(s *Session) []Option {
	opts := make([]Option, 0, len(r.routes))
	for _, rt := range r.routes {
		if rt.option.Admin && !s.IsAdmin() {
			continue
		}
		opts = append(opts, rt.option)
	}
	sort.Slice(opts, func(i, j int) bool { return opts[i].Key < opts[j].Key })
	return opts
}

// Dispatch runs the handler registered under key through the middleware
// chain.
func (r *Router) Dispatch(ctx context.Context, s *Session, key string) error {
	rt, ok := r.routes[strings.ToUpper(strings.TrimSpace(key))]
	if !ok {
		return ErrUnknownOption
	}

	h := rt.handler
	for i := len(r.middleware) - 1; i >= 0; i-- {
		h = r.middleware[i](h)
	}
	return h(ctx, &Request{Session: s, Option: rt.option})
}
