package reqctx

import (
	"log/slog"
	"runtime"
	"slices"
	"sync"
)

// Context is the per-logical-operation store of request-scoped data. One
// instance follows an operation across goroutine and queue boundaries; all
// methods are safe for concurrent use.
//
// A Context is created empty by New (or installed directly via Create) and
// forked cheaply via shallow copy, which shares existing entries by reference
// instead of duplicating them.
type Context struct {
	st *contextState
}

// contextState is split from Context so the GC cleanup hook can release the
// entries without keeping the Context itself reachable.
type contextState struct {
	mu sync.Mutex

	// data maps key to payload. Keys are opaque caller-chosen identifiers;
	// callers should namespace them to avoid accidental collisions.
	data map[string]Data

	// cbKeys holds the keys of entries with HasCallback() == true, sorted,
	// so callback invocation order is deterministic and independent of
	// insertion order.
	cbKeys []string

	// warned tracks keys already reported under the per-key collision
	// policy. Lazily allocated; collisions are the exception.
	warned map[string]struct{}
}

// New creates a fresh, empty Context. It is not installed as current; use
// Create for that, or SetCurrent / NewScopeWith to install it explicitly.
func New() *Context {
	ctx := &Context{st: &contextState{data: make(map[string]Data)}}

	// Stand-in for a destructor: when the Context becomes unreachable, drop
	// its hold on every entry so shared payloads can reach zero.
	runtime.AddCleanup(ctx, func(st *contextState) { st.releaseAll() }, ctx.st)

	contextsCreated.Add(1)

	return ctx
}

type setBehavior int

const (
	behaviorSet setBehavior = iota
	behaviorSetIfAbsent
	behaviorOverwrite
)

// SetData installs data under key. If key is already present, the existing
// entry is cleared, data is NOT installed (it is discarded), and a diagnostic
// is logged according to the configured collision policy. This lossy policy
// is deliberate; callers that need a race-free "exactly one installer wins"
// guarantee must use SetDataIfAbsent.
func (c *Context) SetData(key string, data Data) {
	c.doSetData(key, data, behaviorSet)
}

// SetDataIfAbsent installs data under key and returns true, unless key is
// already present, in which case nothing changes and it returns false. Of N
// concurrent callers racing on the same fresh key, exactly one observes true.
func (c *Context) SetDataIfAbsent(key string, data Data) bool {
	return c.doSetData(key, data, behaviorSetIfAbsent)
}

// overwriteData unconditionally replaces any existing entry for key. It runs
// no callback pass and emits no collision diagnostic; shallow scope guards
// use it to override a single entry in a forked context.
func (c *Context) overwriteData(key string, data Data) {
	c.doSetData(key, data, behaviorOverwrite)
}

func (c *Context) doSetData(key string, data Data, behavior setBehavior) bool {
	st := c.st

	st.mu.Lock()
	defer st.mu.Unlock()

	if prev, ok := st.data[key]; ok {
		switch behavior {
		case behaviorSetIfAbsent:
			return false

		case behaviorSet:
			keyCollisions.Add(1)
			st.warnCollisionLocked(key)
			st.removeLocked(key, prev)
			discard(data)

			return false

		case behaviorOverwrite:
			st.removeLocked(key, prev)
		}
	}

	retain(data)
	st.data[key] = data

	if data.HasCallback() {
		st.insertCallbackKeyLocked(key)
	}

	dataInstalls.Add(1)

	return true
}

// ClearData removes the entry for key, if present. No-op otherwise.
func (c *Context) ClearData(key string) {
	st := c.st

	st.mu.Lock()
	defer st.mu.Unlock()

	if d, ok := st.data[key]; ok {
		st.removeLocked(key, d)
	}
}

// HasData reports whether an entry exists for key.
func (c *Context) HasData(key string) bool {
	st := c.st

	st.mu.Lock()
	defer st.mu.Unlock()

	_, ok := st.data[key]

	return ok
}

// GetData returns the payload for key, or nil if absent. The returned value
// is an owned reference: it stays valid even if another goroutine clears the
// entry concurrently, though a payload with a Close method may be finalized
// once every context holding it has released it.
func (c *Context) GetData(key string) Data {
	st := c.st

	st.mu.Lock()
	defer st.mu.Unlock()

	return st.data[key]
}

// onSet invokes OnSet on every callback-declaring entry, in key order.
// Called by the current-context installer, once per activation.
func (c *Context) onSet() {
	st := c.st

	st.mu.Lock()
	defer st.mu.Unlock()

	for _, k := range st.cbKeys {
		st.data[k].OnSet()
	}
}

// onUnset invokes OnUnset on every callback-declaring entry, in key order.
// Called by the current-context installer, once per deactivation.
func (c *Context) onUnset() {
	st := c.st

	st.mu.Lock()
	defer st.mu.Unlock()

	for _, k := range st.cbKeys {
		st.data[k].OnUnset()
	}
}

// shallowCopy builds a new Context sharing every entry of c by reference.
// Reference counts are bumped; no payload is duplicated and no callbacks run.
func (c *Context) shallowCopy() *Context {
	child := New()
	st := c.st

	st.mu.Lock()
	defer st.mu.Unlock()

	// The child is not yet visible to any other goroutine; its lock is not
	// needed here.
	for k, d := range st.data {
		retain(d)
		child.st.data[k] = d
	}

	child.st.cbKeys = slices.Clone(st.cbKeys)

	shallowCopies.Add(1)

	return child
}

// removeLocked deletes the entry and drops the store's hold on the payload.
func (s *contextState) removeLocked(key string, d Data) {
	delete(s.data, key)

	if i, ok := slices.BinarySearch(s.cbKeys, key); ok {
		s.cbKeys = slices.Delete(s.cbKeys, i, i+1)
	}

	release(d)
}

func (s *contextState) insertCallbackKeyLocked(key string) {
	i, ok := slices.BinarySearch(s.cbKeys, key)
	if !ok {
		s.cbKeys = slices.Insert(s.cbKeys, i, key)
	}
}

// warnCollisionLocked emits the lossy-collision diagnostic, throttled by the
// configured policy.
func (s *contextState) warnCollisionLocked(key string) {
	switch CurrentCollisionPolicy() {
	case WarnOncePerKey:
		if s.warned == nil {
			s.warned = make(map[string]struct{})
		}

		if _, seen := s.warned[key]; seen {
			return
		}

		s.warned[key] = struct{}{}

	case WarnOncePerProcess:
		if _, seen := processWarned.LoadOrStore(key, struct{}{}); seen {
			return
		}

	case WarnAlways:
	}

	logger().Warn("request data key collision: existing entry cleared, new value dropped",
		slog.String("key", key),
	)
}

// releaseAll drops the store's hold on every remaining entry. Runs from the
// GC cleanup hook once the owning Context is unreachable.
func (s *contextState) releaseAll() {
	s.mu.Lock()
	data := s.data
	s.data = nil
	s.cbKeys = nil
	s.mu.Unlock()

	for _, d := range data {
		release(d)
	}
}
