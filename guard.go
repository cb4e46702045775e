package reqctx

// noCopy triggers `go vet -copylocks` on guards passed by value.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Scope is a full scope guard: it installs a new current context on
// construction and restores the previous one on Restore. Guards are single
// use, must not be copied, and must be restored in LIFO order with respect to
// other guards on the same goroutine:
//
//	s := reqctx.NewScope()
//	defer s.Restore()
//
// Restore must run on every exit path; pair every constructor with an
// immediate defer, or use RunScope / RunWith which do it for you.
type Scope struct {
	noCopy noCopy

	prev     *Context
	restored bool
}

// NewScope saves the current context and installs a fresh, empty one.
func NewScope() *Scope {
	return &Scope{prev: SetCurrent(New())}
}

// NewScopeWith saves the current context and installs ctx, previously
// captured via Save (nil reverts to the never-installed state).
func NewScopeWith(ctx *Context) *Scope {
	return &Scope{prev: SetCurrent(ctx)}
}

// Restore reinstates the context that was current when the guard was
// constructed. Calling it a second time panics: a guard that restores twice
// would clobber contexts installed after it.
func (s *Scope) Restore() {
	if s.restored {
		panic("reqctx: Scope restored twice")
	}

	s.restored = true
	SetCurrent(s.prev)
}

// ShallowScope installs a shallow copy of the current context, sharing all
// parent entries by reference, so a sub-scope can override a handful of keys
// while leaving the rest untouched in the parent. Same usage discipline as
// Scope.
type ShallowScope struct {
	noCopy noCopy

	prev     *Context
	restored bool
}

// NewShallowScope forks the current context and installs the fork. Shared
// entries do not get an extra OnSet pass.
func NewShallowScope() *ShallowScope {
	return &ShallowScope{prev: setShallowCopy()}
}

// NewShallowScopeOverride forks the current context, installs the fork, and
// overwrites one entry in it. Equivalent to clearing and re-setting key after
// the fork, minus the collision diagnostic and the extra callback pass.
func NewShallowScopeOverride(key string, data Data) *ShallowScope {
	s := NewShallowScope()
	Get().overwriteData(key, data)

	return s
}

// Restore reinstates the pre-fork context. Panics on second use.
func (s *ShallowScope) Restore() {
	if s.restored {
		panic("reqctx: ShallowScope restored twice")
	}

	s.restored = true
	SetCurrent(s.prev)
}

// RunScope runs fn with a fresh current context, restoring the previous one
// afterwards, on normal return and panic alike.
func RunScope(fn func()) {
	s := NewScope()
	defer s.Restore()

	fn()
}

// RunWith runs fn with ctx installed as current, restoring afterwards.
func RunWith(ctx *Context, fn func()) {
	s := NewScopeWith(ctx)
	defer s.Restore()

	fn()
}

// RunShallow runs fn with a shallow copy of the current context installed,
// restoring afterwards.
func RunShallow(fn func()) {
	s := NewShallowScope()
	defer s.Restore()

	fn()
}

// RunShallowOverride runs fn with a shallow copy in which key is overwritten
// with data, restoring afterwards.
func RunShallowOverride(key string, data Data, fn func()) {
	s := NewShallowScopeOverride(key, data)
	defer s.Restore()

	fn()
}
