package core

import "errors"

// Handler is the entry point a Builder hands the accumulated path to when it
// is finally invoked. The façade binds this to the middleware pipeline.
type Handler func(path []PathSegment, args Args, kwargs Kwargs) (any, error)

// ErrNoHandler is returned when a zero-value Builder is invoked.
var ErrNoHandler = errors.New("dalmesh: builder has no bound handler")

// Builder accumulates a call path lazily. Every Extend returns a new Builder
// with the name appended; the original is never mutated, so two builders
// derived from a common ancestor can be extended independently. Nothing is
// resolved and no side effect runs until Call or CallKw.
//
// Builders are cheap value objects: extending a path of depth d costs d
// small allocations and nothing else.
type Builder struct {
	handler Handler
	path    []PathSegment
}

// NewBuilder binds handler to an initial path.
func NewBuilder(handler Handler, path ...PathSegment) Builder {
	return Builder{handler: handler, path: clonePath(path)}
}

// Extend returns a new Builder with name appended to the path.
func (b Builder) Extend(name string) Builder {
	return b.ExtendMeta(name, nil)
}

// ExtendMeta is Extend with segment metadata attached.
func (b Builder) ExtendMeta(name string, meta map[string]any) Builder {
	next := make([]PathSegment, len(b.path), len(b.path)+1)
	copy(next, b.path)
	next = append(next, NewPathSegment(name, meta))
	return Builder{handler: b.handler, path: next}
}

// Walk extends the builder by several names at once.
func (b Builder) Walk(names ...string) Builder {
	out := b
	for _, name := range names {
		out = out.Extend(name)
	}
	return out
}

// Call invokes the bound handler with the accumulated path and positional
// arguments only.
func (b Builder) Call(args ...any) (any, error) {
	return b.CallKw(args, nil)
}

// CallKw invokes the bound handler with positional and keyword arguments.
// The handler's result and error pass through unchanged.
func (b Builder) CallKw(args Args, kwargs Kwargs) (any, error) {
	if b.handler == nil {
		return nil, ErrNoHandler
	}
	return b.handler(b.path, args, kwargs)
}

// Path returns a copy of the accumulated path.
func (b Builder) Path() []PathSegment { return clonePath(b.path) }

// Depth returns the number of accumulated segments.
func (b Builder) Depth() int { return len(b.path) }
