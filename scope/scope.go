// Package scope marks units of work that are allowed to dispatch calls
// through a dalmesh DataManager. A Scope is carried as a context.Context
// value: Begin derives a context with a fresh scope attached, Active reads
// the innermost one back. Nesting works the way contexts do: beginning a
// scope on a context that already carries one records the outer scope as the
// parent, and the outer context keeps referring to the outer scope on every
// exit path, error or not.
package scope

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotActive is returned when a caller tries to start a call path without
// an open scope. This is a usage contract violation, not a runtime condition
// worth retrying.
var ErrNotActive = errors.New("dalmesh: no active scope; begin one with scope.Begin or DataManager.Begin")

type ctxKey struct{}

// Scope is the ambient marker for one unit of data access work. It carries a
// unique identifier, optional caller-supplied metadata and a reference to the
// scope that was active when it was begun (nil at the top level).
type Scope struct {
	id     string
	meta   map[string]any
	parent *Scope
}

// Begin opens a new scope and returns a derived context carrying it. The
// metadata map is copied; later mutation of the caller's map does not affect
// the scope. If ctx already carries a scope it becomes the parent of the new
// one.
func Begin(ctx context.Context, meta map[string]any) (context.Context, *Scope) {
	parent, _ := Active(ctx)
	s := &Scope{id: uuid.NewString(), parent: parent}
	if len(meta) > 0 {
		s.meta = make(map[string]any, len(meta))
		for k, v := range meta {
			s.meta[k] = v
		}
	}
	return context.WithValue(ctx, ctxKey{}, s), s
}

// Active returns the innermost open scope on ctx, if any.
func Active(ctx context.Context) (*Scope, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Scope)
	return s, ok && s != nil
}

// ID returns the unique identifier assigned when the scope was begun.
func (s *Scope) ID() string { return s.id }

// Parent returns the scope that was active when this one was begun, or nil.
func (s *Scope) Parent() *Scope { return s.parent }

// Meta returns a single metadata value by key.
func (s *Scope) Meta(key string) (any, bool) {
	v, ok := s.meta[key]
	return v, ok
}

// MetaMap returns a copy of the scope metadata.
func (s *Scope) MetaMap() map[string]any {
	out := make(map[string]any, len(s.meta))
	for k, v := range s.meta {
		out[k] = v
	}
	return out
}
