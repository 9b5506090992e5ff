// Package middleware composes an ordered list of interceptors around a
// terminal handler into a single dispatch chain. The first supplied
// interceptor is the outermost: it runs first on the way in and last on the
// way out. Interceptors may observe, modify, short-circuit or reject a call;
// errors propagate back out unchanged through every interceptor already
// entered. Supplied values are validated when the pipeline is built, never
// at call time.
package middleware
