// Package registry maps top-level service names to registered service
// instances and their described node trees. Registration is a setup-time
// operation; dispatch only reads, so a single RWMutex keeps concurrent
// setup safe without slowing down concurrent calls.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/dalmesh/core"
)

// AlreadyRegisteredError is returned when a registration collides with an
// existing name. The registry is left unchanged.
type AlreadyRegisteredError struct {
	Name string
}

// Error implements the error interface.
func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("dalmesh: a service named %q is already registered", e.Name)
}

type entry struct {
	svc  core.Service
	node core.Node
}

// Registry holds the registered service tree. Construct it once per
// DataManager; after setup completes it is effectively read-only.
type Registry struct {
	mu       sync.RWMutex
	host     core.Host
	services map[string]entry
}

// New creates an empty Registry. The host is handed to every service's
// Setup.
func New(host core.Host) *Registry {
	return &Registry{
		host:     host,
		services: make(map[string]entry),
	}
}

// Register adds svc under name, running its one-time setup first. A
// duplicate name is rejected with *AlreadyRegisteredError and no state is
// touched.
func (r *Registry) Register(name string, svc core.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		return fmt.Errorf("dalmesh: service name must be non-empty")
	}
	if _, exists := r.services[name]; exists {
		return &AlreadyRegisteredError{Name: name}
	}
	return r.install(name, svc)
}

// RegisterAll registers a batch of services. Duplicate names, including
// clashes with existing registrations, are checked for the whole batch
// before any setup runs, so a rejected batch registers nothing. Setup runs
// in sorted-name order for determinism.
func (r *Registry) RegisterAll(services map[string]core.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(services))
	for name := range services {
		if name == "" {
			return fmt.Errorf("dalmesh: service name must be non-empty")
		}
		if _, exists := r.services[name]; exists {
			return &AlreadyRegisteredError{Name: name}
		}
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := r.install(name, services[name]); err != nil {
			return err
		}
	}
	return nil
}

// Replace installs svc under name unconditionally, bypassing the duplicate
// guard. Setup still runs. Meant for tests and framework overrides.
func (r *Registry) Replace(name string, svc core.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		return fmt.Errorf("dalmesh: service name must be non-empty")
	}
	return r.install(name, svc)
}

// install runs setup and stores the described tree. Callers hold the lock.
func (r *Registry) install(name string, svc core.Service) error {
	if svc == nil {
		return fmt.Errorf("dalmesh: service %q is nil", name)
	}
	if err := svc.Setup(r.host); err != nil {
		return fmt.Errorf("dalmesh: setting up service %q: %w", name, err)
	}
	r.services[name] = entry{svc: svc, node: svc.Describe()}
	return nil
}

// Child returns the node tree registered under name. It makes the Registry
// the root the resolver walks.
func (r *Registry) Child(name string) (core.Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.services[name]
	if !ok {
		return nil, false
	}
	return e.node, true
}

// Service returns the registered service instance under name.
func (r *Registry) Service(name string) (core.Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.services[name]
	if !ok {
		return nil, false
	}
	return e.svc, true
}

// Names returns the registered top-level names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered services.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.services)
}
