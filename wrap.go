package reqctx

import "context"

// Wrap captures the caller's current context and returns a function that runs
// fn with that context installed, restoring the executing goroutine's own
// context afterwards. This packages the save-before-enqueue /
// install-after-dequeue contract for worker pools and queues:
//
//	task := reqctx.Wrap(process)
//	queue <- task // the worker just calls task()
func Wrap(fn func()) func() {
	saved := Save()

	return func() {
		prev := SetCurrent(saved)
		defer SetCurrent(prev)

		fn()
	}
}

// WrapErr is Wrap for functions that return an error, for use with errgroup
// and similar.
func WrapErr(fn func() error) func() error {
	saved := Save()

	return func() error {
		prev := SetCurrent(saved)
		defer SetCurrent(prev)

		return fn()
	}
}

// Go runs fn on a new goroutine with the caller's current context installed.
func Go(fn func()) {
	go Wrap(fn)()
}

// stdCtxKey carries a *Context through a context.Context.
type stdCtxKey struct{}

// NewStdContext returns a std context carrying rc, so the request context can
// ride along API boundaries that speak context.Context (HTTP middleware,
// errgroup). Pair with FromStdContext on the receiving side.
func NewStdContext(parent context.Context, rc *Context) context.Context {
	return context.WithValue(parent, stdCtxKey{}, rc)
}

// FromStdContext extracts the carried *Context, or nil if ctx carries none.
func FromStdContext(ctx context.Context) *Context {
	if ctx == nil {
		return nil
	}

	if rc, ok := ctx.Value(stdCtxKey{}).(*Context); ok {
		return rc
	}

	return nil
}
