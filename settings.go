package reqctx

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// CollisionPolicy controls how often the lossy-collision diagnostic in
// SetData is emitted. The collision behavior itself (clear existing, drop
// new) is fixed; only the warning cadence is configurable.
type CollisionPolicy int32

const (
	// WarnOncePerKey warns the first time each key collides within a given
	// Context. The default.
	WarnOncePerKey CollisionPolicy = iota

	// WarnOncePerProcess warns the first time each key collides anywhere in
	// the process.
	WarnOncePerProcess

	// WarnAlways warns on every collision.
	WarnAlways
)

var (
	collisionPolicy atomic.Int32

	// processWarned backs WarnOncePerProcess.
	processWarned sync.Map

	packageLogger atomic.Pointer[slog.Logger]
)

// SetCollisionPolicy selects the warning cadence for SetData key collisions.
// Safe to call at any time; affects subsequent collisions process-wide.
func SetCollisionPolicy(p CollisionPolicy) {
	collisionPolicy.Store(int32(p))
}

// CurrentCollisionPolicy returns the active collision warning policy.
func CurrentCollisionPolicy() CollisionPolicy {
	return CollisionPolicy(collisionPolicy.Load())
}

// SetLogger replaces the logger used for collision diagnostics. When unset,
// slog.Default() is used.
func SetLogger(l *slog.Logger) {
	packageLogger.Store(l)
}

func logger() *slog.Logger {
	if l := packageLogger.Load(); l != nil {
		return l
	}

	return slog.Default()
}
