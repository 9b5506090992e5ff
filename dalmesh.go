// Package dalmesh provides a method-dispatch pipeline over a nested tree of
// registered services. Callers express a call as a dotted path of names,
// built lazily one segment at a time; invoking the built path routes the
// call through an ordered chain of interceptors (middleware) that may
// observe, modify, short-circuit or reject it before and after the resolved
// method executes. Most applications interact with this package by:
//  1. Creating a DataManager via New() (optionally supplying middleware and a logger)
//  2. Registering one or more services (RegisterServices)
//  3. Beginning a scope and dispatching calls through the DAL
//
// Example:
//
//	dm, err := dalmesh.New()
//	if err != nil { ... }
//	if err := dm.RegisterServices(map[string]core.Service{"users": usersService}); err != nil { ... }
//
//	ctx, _ := dm.Begin(context.Background(), nil)
//	b, err := dm.DAL().Service(ctx, "users")
//	if err != nil { ... }
//	result, err := b.Walk("profile", "get").Call(userID)
//
// Dispatch is synchronous call-and-return. The registry and pipeline are
// built at setup time and read-only afterwards, so concurrent dispatches
// need no locking: each call owns its Request exclusively.
package dalmesh

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/dalmesh/config"
	"github.com/hupe1980/dalmesh/core"
	"github.com/hupe1980/dalmesh/logging"
	"github.com/hupe1980/dalmesh/metrics"
	"github.com/hupe1980/dalmesh/middleware"
	"github.com/hupe1980/dalmesh/registry"
	"github.com/hupe1980/dalmesh/resolver"
	"github.com/hupe1980/dalmesh/scope"
)

// RootToken is the conventional leading path token ignored by DAL.Lookup,
// so serialized paths may be written either "users.get" or "dal.users.get".
const RootToken = "dal"

// Options configures the DataManager.
type Options struct {
	// Middleware are user-supplied interceptors, outermost first. Accepted
	// shapes are middleware.Interceptor, middleware.Func (or a bare
	// function of that signature) and middleware.Factory; anything else is
	// rejected by New with a *middleware.ConfigError.
	Middleware []any

	// DisableDefaultMiddleware drops the default interceptors (normally
	// just the path resolver) from the end of the chain. Only set this
	// when Middleware contains a replacement resolver.
	DisableDefaultMiddleware bool

	// Handler is the terminal handler at the innermost position of the
	// chain. Defaults to middleware.DefaultHandler, which invokes the
	// resolved method with the request's arguments.
	Handler middleware.Handler

	// Logger receives structured dispatch and registration logs.
	// Defaults to a no-op logger if nil.
	Logger logging.Logger
}

// DataManager binds the service registry, the middleware pipeline and the
// DAL call surface. Construct once at setup time; registration is not
// designed for mutation concurrent with dispatch.
type DataManager struct {
	opts     Options
	logger   logging.Logger
	registry *registry.Registry
	dal      *DAL
}

// New creates a DataManager with optional overrides. The middleware
// pipeline is composed here; supplying a value that does not satisfy the
// interceptor contract fails now, not at call time.
func New(optFns ...func(o *Options)) (*DataManager, error) {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	dm := &DataManager{opts: opts, logger: logging.OrNoOp(opts.Logger)}
	dm.registry = registry.New(dm)

	var defaults []any
	if !opts.DisableDefaultMiddleware {
		defaults = []any{resolver.New(dm.registry)}
	}

	pipeline, err := middleware.NewPipeline(opts.Handler, func(o *middleware.Options) {
		o.Interceptors = opts.Middleware
		o.Defaults = defaults
	})
	if err != nil {
		return nil, err
	}

	dm.dal = &DAL{dm: dm, pipeline: pipeline}
	return dm, nil
}

// FromConfig builds a DataManager from a loaded configuration: logger per
// the logging section, default middleware per the pipeline section and,
// when enabled, a Prometheus metrics interceptor. Additional option
// functions run after the config-derived ones and may override them.
func FromConfig(cfg *config.Config, optFns ...func(o *Options)) (*DataManager, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var mw []any
	if cfg.Metrics.Enabled {
		mi, err := metrics.New(func(o *metrics.Options) {
			o.Namespace = cfg.Metrics.Namespace
		})
		if err != nil {
			return nil, err
		}
		mw = append(mw, mi)
	}

	logger := logging.New(cfg.LoggerConfig())
	all := append([]func(o *Options){func(o *Options) {
		o.Logger = logger
		o.DisableDefaultMiddleware = cfg.Pipeline.DisableDefaults
		o.Middleware = mw
	}}, optFns...)

	return New(all...)
}

// Logger returns the manager's logger. Together with the rest of the
// DataManager surface this satisfies core.Host for service setup.
func (dm *DataManager) Logger() logging.Logger { return dm.logger }

// RegisterServices registers a batch of services by name. Each service
// receives a one-time Setup(dm) before being stored. A duplicate name
// rejects the whole batch with *registry.AlreadyRegisteredError and
// registers nothing.
func (dm *DataManager) RegisterServices(services map[string]core.Service) error {
	if err := dm.registry.RegisterAll(services); err != nil {
		return err
	}
	dm.logger.Info("services registered", "count", len(services))
	return nil
}

// RegisterService registers a single service by name.
func (dm *DataManager) RegisterService(name string, svc core.Service) error {
	return dm.registry.Register(name, svc)
}

// ReplaceService swaps a single registered service, bypassing the duplicate
// guard. Usually a bad idea outside tests and framework overrides; the
// replacement still receives its one-time setup.
func (dm *DataManager) ReplaceService(name string, svc core.Service) error {
	if err := dm.registry.Replace(name, svc); err != nil {
		return err
	}
	dm.logger.Info("service replaced", "name", name)
	return nil
}

// Registry exposes the underlying service registry for introspection.
func (dm *DataManager) Registry() *registry.Registry { return dm.registry }

// DAL returns the call surface.
func (dm *DataManager) DAL() *DAL { return dm.dal }

// Begin opens a data access scope on ctx. Calls through the DAL are only
// permitted while the returned context is in use; the previous scope (or
// none) stays attached to the original ctx.
func (dm *DataManager) Begin(ctx context.Context, meta map[string]any) (context.Context, *scope.Scope) {
	sctx, sc := scope.Begin(ctx, meta)
	dm.logger.Debug("scope begun", "scope_id", sc.ID())
	return sctx, sc
}

// WithScope runs fn inside a fresh scope. The scope ends when fn returns,
// on every exit path, because the scoped context does not escape.
func (dm *DataManager) WithScope(ctx context.Context, meta map[string]any, fn func(ctx context.Context, dal *DAL) error) error {
	sctx, _ := dm.Begin(ctx, meta)
	return fn(sctx, dm.dal)
}

// DAL is the data access layer: the entry point callers use to express and
// dispatch nested service calls.
type DAL struct {
	dm       *DataManager
	pipeline *middleware.Pipeline
}

// Service starts a dotted call path rooted at a registered service name.
// It requires an open scope on ctx and fails with scope.ErrNotActive before
// any path building otherwise. The returned builder dispatches through the
// middleware pipeline when invoked.
func (d *DAL) Service(ctx context.Context, name string) (core.Builder, error) {
	sc, ok := scope.Active(ctx)
	if !ok {
		return core.Builder{}, scope.ErrNotActive
	}
	if name == "" {
		return core.Builder{}, fmt.Errorf("dalmesh: service name must be non-empty")
	}

	handler := func(path []core.PathSegment, args core.Args, kwargs core.Kwargs) (any, error) {
		req := core.NewRequest(ctx, sc, path, args, kwargs)
		return d.pipeline.Invoke(req)
	}
	return core.NewBuilder(handler, core.NewPathSegment(name, nil)), nil
}

// Lookup resolves a dot-delimited path directly against the registry and
// returns the node found there. A leading RootToken is ignored. This is a
// convenience accessor for serialized paths: it never builds a request and
// never applies interceptors.
func (d *DAL) Lookup(path string) (core.Node, error) {
	parts := strings.Split(path, ".")
	if len(parts) > 0 && parts[0] == RootToken {
		parts = parts[1:]
	}
	if len(parts) == 0 || parts[0] == "" {
		return nil, fmt.Errorf("dalmesh: invalid lookup path %q", path)
	}

	node, ok := d.dm.registry.Child(parts[0])
	if !ok {
		return nil, fmt.Errorf("dalmesh: lookup %q: no service registered as %q", path, parts[0])
	}
	for _, name := range parts[1:] {
		svc, isService := node.(*core.ServiceNode)
		if !isService {
			return nil, fmt.Errorf("dalmesh: lookup %q: cannot descend into a method to reach %q", path, name)
		}
		child, ok := svc.Child(name)
		if !ok {
			return nil, fmt.Errorf("dalmesh: lookup %q: no member %q", path, name)
		}
		node = child
	}
	return node, nil
}

// Pipeline exposes the composed middleware pipeline, mainly for
// introspection and direct dispatch in advanced scenarios.
func (d *DAL) Pipeline() *middleware.Pipeline { return d.pipeline }
