package reqctx

import (
	"io"
	"sync/atomic"
)

// Data is the interface request-scoped payloads implement. Implementations
// must embed DataCore, which supplies the intrusive reference counter and
// no-op defaults for the lifecycle callbacks.
//
// OnSet and OnUnset run every time a context holding the payload is installed
// or replaced as the current context, but only when HasCallback reports true.
// Callbacks must never call SetData, SetDataIfAbsent, or ClearData on the
// same context (or any context whose lock is held); doing so deadlocks.
// Guarding against that would cost every caller dearly, so it is a documented
// obligation instead.
type Data interface {
	// HasCallback reports whether OnSet/OnUnset do anything. It must return
	// true for the callbacks to ever be invoked.
	HasCallback() bool

	// OnSet is invoked when a context holding this payload becomes current.
	OnSet()

	// OnUnset is invoked when a context holding this payload stops being
	// current.
	OnUnset()

	// refs exposes the intrusive reference counter. Provided by DataCore so
	// shallow copies can share one payload across contexts without a
	// separate control block per entry.
	refs() *atomic.Int32
}

// DataCore provides the reference counter and default no-op callbacks for
// Data implementations. Embed it by value:
//
//	type traceToken struct {
//	    reqctx.DataCore
//	    id string
//	}
//
// Override HasCallback (and OnSet/OnUnset) only when callbacks are needed.
type DataCore struct {
	refCount atomic.Int32
}

// HasCallback reports false; payloads with callbacks shadow this.
func (*DataCore) HasCallback() bool { return false }

// OnSet is a no-op by default.
func (*DataCore) OnSet() {}

// OnUnset is a no-op by default.
func (*DataCore) OnUnset() {}

func (c *DataCore) refs() *atomic.Int32 { return &c.refCount }

// retain adds one owning context to the payload's count.
func retain(d Data) {
	d.refs().Add(1)
}

// release drops one owning context. The payload is finalized when the last
// owner lets go, never earlier.
func release(d Data) {
	if d.refs().Add(-1) > 0 {
		return
	}
	finalize(d)
}

// discard finalizes a payload that was rejected before installation. A
// payload still owned by another context keeps its count and stays alive.
func discard(d Data) {
	if d.refs().Load() == 0 {
		finalize(d)
	}
}

// finalize runs the payload's cleanup, if it has any. Close errors have no
// caller to report to and are dropped.
func finalize(d Data) {
	if c, ok := d.(io.Closer); ok {
		_ = c.Close()
	}
}
