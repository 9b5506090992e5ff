// Package core defines the value types the dispatch pipeline is built from:
// path segments, the lazy request builder, the per-call Request, and the
// tagged node variants (service / method) that registered services describe
// themselves with. Everything here is cheap to construct and immutable with
// one exception, Request.Resolved, which the resolver sets exactly once
// before the terminal handler runs.
package core
