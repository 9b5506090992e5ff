package resolver

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dalmesh/core"
	"github.com/hupe1980/dalmesh/middleware"
)

// mapTree is a minimal Tree over plain nodes.
type mapTree map[string]core.Node

func (m mapTree) Child(name string) (core.Node, bool) {
	n, ok := m[name]
	return n, ok
}

func method(result any) *core.MethodNode {
	return core.NewMethodNode(func(context.Context, core.Args, core.Kwargs) (any, error) {
		return result, nil
	})
}

// fixtureTree builds users → profile → sample → example → demo, each level
// exposing a "get" method returning the level's name.
func fixtureTree() mapTree {
	demo := core.NewServiceNode(map[string]core.Node{"get": method("demo")})
	example := core.NewServiceNode(map[string]core.Node{"get": method("example"), "demo": demo})
	sample := core.NewServiceNode(map[string]core.Node{"get": method("sample"), "example": example})
	profile := core.NewServiceNode(map[string]core.Node{"get": method("profile"), "sample": sample})
	users := core.NewServiceNode(map[string]core.Node{"get": method("users"), "profile": profile})
	return mapTree{"users": users}
}

func newRequest(names ...string) *core.Request {
	path := make([]core.PathSegment, len(names))
	for i, name := range names {
		path[i] = core.NewPathSegment(name, nil)
	}
	return core.NewRequest(context.Background(), nil, path, nil, nil)
}

func matchedNames(e *Error) []string {
	names := make([]string, len(e.Matched))
	for i, seg := range e.Matched {
		names[i] = seg.Name()
	}
	return names
}

func TestResolveSuccessAtEveryDepth(t *testing.T) {
	r := New(fixtureTree())
	services := []string{"users", "profile", "sample", "example", "demo"}

	for depth := 1; depth <= len(services); depth++ {
		t.Run(fmt.Sprintf("depth_%d", depth), func(t *testing.T) {
			path := append(append([]string{}, services[:depth]...), "get")
			req := newRequest(path...)

			result, err := r.Intercept(req, middleware.DefaultHandler)
			require.NoError(t, err)
			// The method's result comes back unmodified.
			assert.Equal(t, services[depth-1], result)
			require.NotNil(t, req.Resolved)
		})
	}
}

func TestResolveFailureAtDeepSegment(t *testing.T) {
	r := New(fixtureTree())
	req := newRequest("users", "profile", "sample", "example", "demo", "invalid_method")

	_, err := r.Intercept(req, middleware.DefaultHandler)
	var resErr *Error
	require.ErrorAs(t, err, &resErr)

	assert.Equal(t, []string{"users", "profile", "sample", "example", "demo"}, matchedNames(resErr))
	assert.Equal(t, "invalid_method", resErr.Missing)
	assert.Same(t, req, resErr.Request)
}

func TestResolveFailureAtShallowSegment(t *testing.T) {
	r := New(fixtureTree())
	req := newRequest("users", "invalid_service", "invalid_method")

	_, err := r.Intercept(req, middleware.DefaultHandler)
	var resErr *Error
	require.ErrorAs(t, err, &resErr)

	// Failure is reported at the first unmatched segment, not the root and
	// not the leaf.
	assert.Equal(t, []string{"users"}, matchedNames(resErr))
	assert.Equal(t, "invalid_service", resErr.Missing)
}

func TestResolveFailureUnknownRoot(t *testing.T) {
	r := New(fixtureTree())
	req := newRequest("bogus", "get")

	_, err := r.Intercept(req, middleware.DefaultHandler)
	var resErr *Error
	require.ErrorAs(t, err, &resErr)

	assert.Empty(t, resErr.Matched)
	assert.Equal(t, "bogus", resErr.Missing)
}

func TestResolveServiceIsNotInvocable(t *testing.T) {
	r := New(fixtureTree())
	req := newRequest("users", "profile")

	_, err := r.Intercept(req, middleware.DefaultHandler)
	var resErr *Error
	require.ErrorAs(t, err, &resErr)

	// The full path matched but ended on a service, not a method.
	assert.Equal(t, []string{"users", "profile"}, matchedNames(resErr))
	assert.Equal(t, "", resErr.Missing)
	assert.Contains(t, resErr.Error(), "service, not a method")
}

func TestResolveMethodHasNoMembers(t *testing.T) {
	r := New(fixtureTree())
	req := newRequest("users", "get", "deeper")

	_, err := r.Intercept(req, middleware.DefaultHandler)
	var resErr *Error
	require.ErrorAs(t, err, &resErr)

	assert.Equal(t, []string{"users", "get"}, matchedNames(resErr))
	assert.Equal(t, "deeper", resErr.Missing)
}

func TestResolveEmptyPathFailsFast(t *testing.T) {
	walked := false
	tree := mapTree{}
	r := New(tracingTree{tree, &walked})

	req := core.NewRequest(context.Background(), nil, nil, nil, nil)
	_, err := r.Intercept(req, middleware.DefaultHandler)

	assert.ErrorIs(t, err, ErrEmptyPath)
	assert.False(t, walked)
}

// tracingTree flags whether the root was ever consulted.
type tracingTree struct {
	mapTree
	walked *bool
}

func (tr tracingTree) Child(name string) (core.Node, bool) {
	*tr.walked = true
	return tr.mapTree.Child(name)
}

func TestResolverFailureSkipsDownstream(t *testing.T) {
	r := New(fixtureTree())
	req := newRequest("users", "bogus")
	nextRan := false

	_, err := r.Intercept(req, func(*core.Request) (any, error) {
		nextRan = true
		return nil, nil
	})

	require.Error(t, err)
	assert.False(t, nextRan)
	assert.Nil(t, req.Resolved)
}

func TestResolverInsidePipeline(t *testing.T) {
	p, err := middleware.NewPipeline(nil, func(o *middleware.Options) {
		o.Defaults = []any{New(fixtureTree())}
	})
	require.NoError(t, err)

	result, err := p.Invoke(newRequest("users", "profile", "get"))
	require.NoError(t, err)
	assert.Equal(t, "profile", result)
}

func TestErrorMessages(t *testing.T) {
	r := New(fixtureTree())

	_, err := r.Intercept(newRequest("users", "profile", "bogus"), middleware.DefaultHandler)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"users.profile"`)
	assert.Contains(t, err.Error(), `"bogus"`)

	_, err = r.Intercept(newRequest("nope"), middleware.DefaultHandler)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no service registered")
}
