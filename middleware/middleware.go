package middleware

import (
	"fmt"

	"github.com/hupe1980/dalmesh/core"
)

// Handler is one composed link of the dispatch chain: the remainder of the
// pipeline from an interceptor's point of view, or the terminal handler at
// the innermost position.
type Handler func(req *core.Request) (any, error)

// Interceptor wraps one dispatch. Implementations must call next(req) to
// continue the chain and may decline to, short-circuiting the call. Errors
// returned from next must be passed through (or replaced deliberately);
// the pipeline itself never wraps them.
type Interceptor interface {
	Intercept(req *core.Request, next Handler) (any, error)
}

// Func adapts a bare function to the Interceptor interface.
type Func func(req *core.Request, next Handler) (any, error)

// Intercept calls the wrapped function.
func (f Func) Intercept(req *core.Request, next Handler) (any, error) {
	return f(req, next)
}

// Factory produces an Interceptor. Factories handed to NewPipeline are
// instantiated exactly once, at construction time.
type Factory func() Interceptor

// ConfigError reports a supplied middleware value that does not satisfy the
// interceptor contract. It is returned from NewPipeline and never surfaces
// per call.
type ConfigError struct {
	// Position is the index of the offending value in the combined
	// (user + default) interceptor list.
	Position int
	// Value is the offending value as supplied.
	Value any
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("dalmesh: middleware at position %d (%T) does not satisfy the interceptor contract", e.Position, e.Value)
}

// Options configures pipeline construction.
type Options struct {
	// Interceptors are the user-supplied interceptors, outermost first.
	// Accepted shapes: Interceptor, Func (or a bare function of that
	// signature), and Factory (or func() Interceptor).
	Interceptors []any

	// Defaults are appended after the user interceptors. The façade places
	// the path resolver here.
	Defaults []any
}

// Pipeline is the composed dispatch chain. It is built once and read-only
// afterwards; concurrent dispatches need no coordination because each call
// owns its Request exclusively.
type Pipeline struct {
	entry Handler
	size  int
}

// NewPipeline validates and composes (user interceptors + defaults) around
// the terminal handler. A nil terminal falls back to DefaultHandler. The
// fold runs over the reversed list so the first supplied interceptor ends up
// outermost.
func NewPipeline(terminal Handler, optFns ...func(o *Options)) (*Pipeline, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if terminal == nil {
		terminal = DefaultHandler
	}

	supplied := make([]any, 0, len(opts.Interceptors)+len(opts.Defaults))
	supplied = append(supplied, opts.Interceptors...)
	supplied = append(supplied, opts.Defaults...)

	chain := make([]Interceptor, len(supplied))
	for i, v := range supplied {
		interceptor, err := coerce(i, v)
		if err != nil {
			return nil, err
		}
		chain[i] = interceptor
	}

	entry := terminal
	for i := len(chain) - 1; i >= 0; i-- {
		interceptor, next := chain[i], entry
		entry = func(req *core.Request) (any, error) {
			return interceptor.Intercept(req, next)
		}
	}

	return &Pipeline{entry: entry, size: len(chain)}, nil
}

// coerce checks one supplied value against the accepted interceptor shapes.
func coerce(position int, v any) (Interceptor, error) {
	switch m := v.(type) {
	case nil:
		return nil, &ConfigError{Position: position, Value: v}
	case Interceptor:
		return m, nil
	case func(*core.Request, Handler) (any, error):
		return Func(m), nil
	case Factory:
		return instantiate(position, m)
	case func() Interceptor:
		return instantiate(position, m)
	default:
		return nil, &ConfigError{Position: position, Value: v}
	}
}

func instantiate(position int, f func() Interceptor) (Interceptor, error) {
	interceptor := f()
	if interceptor == nil {
		return nil, &ConfigError{Position: position, Value: interceptor}
	}
	return interceptor, nil
}

// Invoke runs req through the composed chain.
func (p *Pipeline) Invoke(req *core.Request) (any, error) {
	return p.entry(req)
}

// Len returns the number of composed interceptors.
func (p *Pipeline) Len() int { return p.size }

// DefaultHandler is the terminal link of the chain: it requires a resolved
// target on the request and invokes it with the request's context and
// arguments.
func DefaultHandler(req *core.Request) (any, error) {
	if req.Resolved == nil {
		return nil, fmt.Errorf("dalmesh: method not resolved for path %q", req.PathString())
	}
	return req.Resolved.Invoke(req.Context, req.Args, req.Kwargs)
}
