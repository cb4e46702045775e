package reqctx

import (
	"sync"

	"github.com/petermattis/goid"
)

// currents maps goroutine ID to that goroutine's current Context. Each
// goroutine reads and writes only its own entry, so there is no contention on
// a single slot; the sync.Map only mediates the registry itself.
var currents sync.Map // int64 -> *Context

// defaultContext is returned by Get when the calling goroutine never
// installed a context. It is shared by all such goroutines and is never
// handed across queue boundaries by this package.
var defaultContext = New()

// Create installs a brand-new, empty Context as current for the calling
// goroutine and returns it. Whatever was current before is dropped without a
// copy; its OnUnset callbacks run as for any replacement. A slot left
// installed when its goroutine exits retains the context until process exit,
// so pair Create with a guard or SetCurrent(nil) on goroutines you own.
func Create() *Context {
	ctx := New()
	SetCurrent(ctx)

	return ctx
}

// Get returns the Context current for the calling goroutine. Callers never
// receive nil: when no context was installed, the shared default context is
// returned.
func Get() *Context {
	if ctx := loadSlot(goid.Get()); ctx != nil {
		return ctx
	}

	return defaultContext
}

// Save returns the calling goroutine's current slot value without altering
// it, for carrying across a goroutine or queue hop to be installed later via
// SetCurrent. The result may be nil, meaning "never installed"; passing nil
// back to SetCurrent restores that state. Prefer Wrap, or the scope guards,
// over manual Save/SetCurrent pairs.
func Save() *Context {
	return loadSlot(goid.Get())
}

// SetCurrent replaces the calling goroutine's current Context with ctx and
// returns the previous value so it can be restored later. The outgoing
// context's OnUnset callbacks run first, then the incoming context's OnSet
// callbacks. Passing the context that is already current does nothing.
// Passing nil clears the slot entirely, leaving no per-goroutine state
// behind. Goroutine IDs are never reused, so a slot that is still installed
// when its goroutine exits is retained for the life of the process; clear it
// (or use a scope guard) before the goroutine returns.
func SetCurrent(ctx *Context) *Context {
	gid := goid.Get()

	prev := loadSlot(gid)
	if prev == ctx {
		return prev
	}

	if prev != nil {
		prev.onUnset()
	}

	if ctx != nil {
		ctx.onSet()
	}

	storeSlot(gid, ctx)

	return prev
}

// setShallowCopy installs a shallow copy of the current context as current
// and returns the previous slot value. Shared entries are not reactivated:
// no OnSet/OnUnset pass runs, because the copy is a lifetime-sharing
// structural fork, not a new activation. Exposed only through ShallowScope.
func setShallowCopy() *Context {
	gid := goid.Get()

	prev := loadSlot(gid)

	src := prev
	if src == nil {
		src = defaultContext
	}

	storeSlot(gid, src.shallowCopy())

	return prev
}

func loadSlot(gid int64) *Context {
	if v, ok := currents.Load(gid); ok {
		return v.(*Context)
	}

	return nil
}

func storeSlot(gid int64, ctx *Context) {
	if ctx == nil {
		currents.Delete(gid)

		return
	}

	currents.Store(gid, ctx)
}
