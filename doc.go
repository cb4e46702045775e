// Package reqctx carries request-scoped data across goroutine and queue
// boundaries as an asynchronous operation advances, without threading it
// through every function signature.
//
// Each logical operation owns one current [Context] per goroutine; code
// anywhere in the call graph reads it with [Get], and the context travels
// when the operation hops goroutines or forks into sub-operations.
//
// # Installing a context
//
// Scope guards install a context for the duration of a scope and restore the
// previous one on every exit path:
//
//	s := reqctx.NewScope() // fresh context becomes current
//	defer s.Restore()
//
//	reqctx.Get().SetData("request-id", &idData{id: rid})
//
// # Crossing goroutines
//
// The async runtime (or any hand-off point) saves before enqueuing and
// installs after dequeuing; [Wrap] and [Go] package that contract:
//
//	reqctx.Go(func() {
//	    // same current context as the spawning goroutine
//	    d := reqctx.Get().GetData("request-id")
//	    ...
//	})
//
// # Forking a sub-scope
//
// A shallow copy shares all parent entries by reference and lets the
// sub-scope override individual keys without touching the parent:
//
//	s := reqctx.NewShallowScopeOverride("deadline-class", &batchClass{})
//	defer s.Restore()
//
// Payload types implement [Data] by embedding [DataCore]; payloads that
// declare HasCallback() == true get OnSet/OnUnset invoked whenever a context
// holding them is installed or replaced.
package reqctx
