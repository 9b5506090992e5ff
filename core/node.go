package core

import (
	"context"
	"sort"
)

// Args holds the positional arguments of a call.
type Args []any

// Kwargs holds the keyword arguments of a call.
type Kwargs map[string]any

// Method is a terminal invocable in the service tree. The context is the one
// carried by the dispatched Request, so methods can honor cancellation and
// read the active scope.
type Method func(ctx context.Context, args Args, kwargs Kwargs) (any, error)

// Node is a tagged variant in the service tree: either a ServiceNode with
// named children or a MethodNode wrapping an invocable. The set of variants
// is sealed so the resolver never has to guess what "present but not
// invocable" means.
type Node interface {
	node()
}

// ServiceNode is the branch variant: a mapping of names to child nodes.
type ServiceNode struct {
	children map[string]Node
}

// NewServiceNode constructs a branch node. The children map is copied.
func NewServiceNode(children map[string]Node) *ServiceNode {
	cp := make(map[string]Node, len(children))
	for k, v := range children {
		cp[k] = v
	}
	return &ServiceNode{children: cp}
}

// Child looks up a named member.
func (n *ServiceNode) Child(name string) (Node, bool) {
	c, ok := n.children[name]
	return c, ok
}

// Names returns the member names in sorted order.
func (n *ServiceNode) Names() []string {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (*ServiceNode) node() {}

// MethodNode is the leaf variant: a concrete invocable target.
type MethodNode struct {
	fn Method
}

// NewMethodNode wraps fn as a leaf node. A nil fn is a programmer error.
func NewMethodNode(fn Method) *MethodNode {
	if fn == nil {
		panic("dalmesh: method node requires a non-nil method")
	}
	return &MethodNode{fn: fn}
}

// Invoke calls the wrapped method.
func (n *MethodNode) Invoke(ctx context.Context, args Args, kwargs Kwargs) (any, error) {
	return n.fn(ctx, args, kwargs)
}

func (*MethodNode) node() {}
