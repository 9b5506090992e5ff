package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dalmesh/logging"
)

type nodeTestHost struct{}

func (nodeTestHost) Logger() logging.Logger { return logging.NoOpLogger{} }

func TestServiceNodeChild(t *testing.T) {
	leaf := NewMethodNode(func(context.Context, Args, Kwargs) (any, error) { return 1, nil })
	svc := NewServiceNode(map[string]Node{"get": leaf})

	got, ok := svc.Child("get")
	require.True(t, ok)
	assert.Same(t, leaf, got)

	_, ok = svc.Child("missing")
	assert.False(t, ok)
}

func TestServiceNodeNamesSorted(t *testing.T) {
	svc := NewServiceNode(map[string]Node{
		"zeta":  NewMethodNode(func(context.Context, Args, Kwargs) (any, error) { return nil, nil }),
		"alpha": NewMethodNode(func(context.Context, Args, Kwargs) (any, error) { return nil, nil }),
	})
	assert.Equal(t, []string{"alpha", "zeta"}, svc.Names())
}

func TestServiceNodeCopiesChildren(t *testing.T) {
	children := map[string]Node{}
	svc := NewServiceNode(children)

	children["late"] = NewMethodNode(func(context.Context, Args, Kwargs) (any, error) { return nil, nil })

	_, ok := svc.Child("late")
	assert.False(t, ok)
}

func TestMethodNodeInvoke(t *testing.T) {
	leaf := NewMethodNode(func(_ context.Context, args Args, kwargs Kwargs) (any, error) {
		return []any{args[0], kwargs["k"]}, nil
	})

	result, err := leaf.Invoke(context.Background(), Args{"a"}, Kwargs{"k": "v"})
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "v"}, result)
}

func TestMethodNodeRequiresFn(t *testing.T) {
	assert.Panics(t, func() { NewMethodNode(nil) })
}

func TestBaseServiceDescribe(t *testing.T) {
	inner := NewBaseService().AddMethod("get", func(context.Context, Args, Kwargs) (any, error) {
		return "inner", nil
	})
	outer := NewBaseService().
		AddMethod("ping", func(context.Context, Args, Kwargs) (any, error) { return "pong", nil }).
		AddService("inner", inner)

	root, ok := outer.Describe().(*ServiceNode)
	require.True(t, ok)
	assert.Equal(t, []string{"inner", "ping"}, root.Names())

	node, ok := root.Child("inner")
	require.True(t, ok)
	innerNode, ok := node.(*ServiceNode)
	require.True(t, ok)

	leaf, ok := innerNode.Child("get")
	require.True(t, ok)
	result, err := leaf.(*MethodNode).Invoke(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "inner", result)
}

type setupRecorder struct {
	*BaseService
	setups int
}

func newSetupRecorder() *setupRecorder {
	return &setupRecorder{BaseService: NewBaseService()}
}

func (s *setupRecorder) Setup(host Host) error {
	s.setups++
	return s.BaseService.Setup(host)
}

func TestBaseServiceSetupCascades(t *testing.T) {
	sub := newSetupRecorder()
	root := NewBaseService().AddService("sub", sub)

	require.NoError(t, root.Setup(nodeTestHost{}))
	assert.Equal(t, 1, sub.setups)
}

type failingService struct{ *BaseService }

func (failingService) Setup(Host) error { return errors.New("boom") }

func TestBaseServiceSetupAbortsOnFailure(t *testing.T) {
	after := newSetupRecorder()
	root := NewBaseService().
		AddService("a", failingService{NewBaseService()}).
		AddService("b", after)

	err := root.Setup(nodeTestHost{})
	require.Error(t, err)
	// Sub-services are set up in sorted order, so "b" never ran.
	assert.Equal(t, 0, after.setups)
}
