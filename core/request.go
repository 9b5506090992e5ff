package core

import (
	"context"

	"github.com/google/uuid"

	"github.com/hupe1980/dalmesh/scope"
)

// Request is the mutable record of one in-flight call. It is created once
// per invocation, owned exclusively by the pipeline invocation that created
// it, and discarded when the call returns. Path, Args and Kwargs are fixed at
// construction; Resolved is the single field that changes afterwards, set
// exactly once by the resolver before the terminal handler runs.
type Request struct {
	// ID uniquely identifies this dispatch for logs and metrics.
	ID string

	// Context is the caller's context, carrying cancellation and the
	// active scope.
	Context context.Context

	// Scope is the data access scope that was active when the call began.
	Scope *scope.Scope

	// Path is the accumulated call path, in call order. Treat as read-only.
	Path []PathSegment

	// Args and Kwargs are the invocation arguments.
	Args   Args
	Kwargs Kwargs

	// Resolved is the target found by the resolver, nil until then.
	Resolved *MethodNode
}

// NewRequest builds a Request for one dispatch. The path is copied so the
// request stays stable even if the caller keeps extending a builder.
func NewRequest(ctx context.Context, sc *scope.Scope, path []PathSegment, args Args, kwargs Kwargs) *Request {
	return &Request{
		ID:      uuid.NewString(),
		Context: ctx,
		Scope:   sc,
		Path:    clonePath(path),
		Args:    args,
		Kwargs:  kwargs,
	}
}

// PathString renders the request path in dotted form.
func (r *Request) PathString() string { return JoinPath(r.Path) }
