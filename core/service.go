package core

import (
	"sort"

	"github.com/hupe1980/dalmesh/logging"
)

// Host is the owning manager handed to a Service during its one-time setup.
// It is intentionally narrow; services that need more should capture it at
// construction time instead.
type Host interface {
	Logger() logging.Logger
}

// Service is the registration contract. Setup runs exactly once, when the
// service is registered (or replaced); Describe returns the navigable node
// tree the resolver walks. Describe is called after Setup and its result is
// treated as read-only for the lifetime of the registration.
type Service interface {
	Setup(host Host) error
	Describe() Node
}

// BaseService is a map-backed Service for the common case: a flat or nested
// set of named methods and sub-services assembled with AddMethod/AddService.
// Setup cascades to sub-services in sorted-name order.
type BaseService struct {
	methods  map[string]Method
	services map[string]Service
}

// NewBaseService creates an empty BaseService.
func NewBaseService() *BaseService {
	return &BaseService{
		methods:  make(map[string]Method),
		services: make(map[string]Service),
	}
}

// AddMethod exposes fn under name. Returns the receiver for chaining.
func (s *BaseService) AddMethod(name string, fn Method) *BaseService {
	s.methods[name] = fn
	return s
}

// AddService nests sub under name. Returns the receiver for chaining.
func (s *BaseService) AddService(name string, sub Service) *BaseService {
	s.services[name] = sub
	return s
}

// Setup sets up nested sub-services. The first failure aborts the cascade.
func (s *BaseService) Setup(host Host) error {
	names := make([]string, 0, len(s.services))
	for name := range s.services {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := s.services[name].Setup(host); err != nil {
			return err
		}
	}
	return nil
}

// Describe builds the node tree: methods become leaves, sub-services
// contribute their own trees.
func (s *BaseService) Describe() Node {
	children := make(map[string]Node, len(s.methods)+len(s.services))
	for name, fn := range s.methods {
		children[name] = NewMethodNode(fn)
	}
	for name, sub := range s.services {
		children[name] = sub.Describe()
	}
	return NewServiceNode(children)
}
