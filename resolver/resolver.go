// Package resolver implements the always-present interceptor that turns an
// accumulated call path into a concrete invocable target by walking the
// registered service tree one segment at a time.
package resolver

import (
	"errors"
	"fmt"

	"github.com/hupe1980/dalmesh/core"
	"github.com/hupe1980/dalmesh/middleware"
)

// Tree is the resolver's read-only view of the registry root: a mapping from
// top-level service names to nodes. registry.Registry satisfies it.
type Tree interface {
	Child(name string) (core.Node, bool)
}

// ErrEmptyPath is returned for a request with no path segments. An empty
// path can never resolve, so the walk is not attempted at all.
var ErrEmptyPath = errors.New("dalmesh: cannot resolve an empty call path")

// Error reports a path that did not reach an invocable target. Matched is
// the longest successfully matched prefix; Missing names the first segment
// that failed, or is empty when the full path matched but ended on a service
// rather than a method. Together they let callers report exactly which hop
// went wrong.
type Error struct {
	Request *core.Request
	Matched []core.PathSegment
	Missing string
}

// Error implements the error interface.
func (e *Error) Error() string {
	matched := core.JoinPath(e.Matched)
	switch {
	case e.Missing == "":
		return fmt.Sprintf("dalmesh: cannot resolve %q: it is a service, not a method", matched)
	case matched == "":
		return fmt.Sprintf("dalmesh: cannot resolve %q: no service registered under that name", e.Missing)
	default:
		return fmt.Sprintf("dalmesh: cannot resolve %q: %q has no member %q", e.Request.PathString(), matched, e.Missing)
	}
}

// Resolver walks the service tree for each dispatched request. It is
// stateless apart from the tree reference and safe for concurrent dispatch.
type Resolver struct {
	tree Tree
}

// New creates a Resolver over tree.
func New(tree Tree) *Resolver {
	return &Resolver{tree: tree}
}

// Intercept implements middleware.Interceptor. On success it stores the
// resolved target in req.Resolved and continues the chain; on failure the
// call is aborted with an *Error and the terminal handler never runs.
func (r *Resolver) Intercept(req *core.Request, next middleware.Handler) (any, error) {
	target, err := r.resolve(req)
	if err != nil {
		return nil, err
	}
	req.Resolved = target
	return next(req)
}

// resolve walks the path segment by segment, stopping eagerly at the first
// miss: once a segment fails, no suffix can turn the failure into a success.
func (r *Resolver) resolve(req *core.Request) (*core.MethodNode, error) {
	if len(req.Path) == 0 {
		return nil, ErrEmptyPath
	}

	var (
		matched []core.PathSegment
		current core.Node
	)
	for i, seg := range req.Path {
		var (
			child core.Node
			ok    bool
		)
		if i == 0 {
			child, ok = r.tree.Child(seg.Name())
		} else if svc, isService := current.(*core.ServiceNode); isService {
			child, ok = svc.Child(seg.Name())
		}
		// A method node mid-path has no members, so ok stays false.
		if !ok {
			return nil, &Error{Request: req, Matched: matched, Missing: seg.Name()}
		}
		matched = append(matched, seg)
		current = child
	}

	target, ok := current.(*core.MethodNode)
	if !ok {
		return nil, &Error{Request: req, Matched: matched}
	}
	return target, nil
}
