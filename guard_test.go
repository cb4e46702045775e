package reqctx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope_RestoresPreviousContext(t *testing.T) {
	before := Get()

	s := NewScope()
	inside := Get()
	assert.NotSame(t, before, inside)

	s.Restore()
	assert.Same(t, before, Get())
}

func TestScope_WithSavedContext(t *testing.T) {
	saved := New()
	saved.SetData("k", &testData{value: "carried"})

	before := Get()

	s := NewScopeWith(saved)
	assert.Same(t, saved, Get())
	assert.True(t, Get().HasData("k"))

	s.Restore()
	assert.Same(t, before, Get())
}

func TestScope_DoubleRestorePanics(t *testing.T) {
	s := NewScope()
	s.Restore()

	assert.PanicsWithValue(t, "reqctx: Scope restored twice", func() {
		s.Restore()
	})
}

func TestScope_NestingIsLIFO(t *testing.T) {
	before := Get()

	outer := NewScope()
	outerCtx := Get()

	inner := NewScope()
	assert.NotSame(t, outerCtx, Get())

	inner.Restore()
	assert.Same(t, outerCtx, Get())

	outer.Restore()
	assert.Same(t, before, Get())
}

func TestRunScope_RestoresOnPanic(t *testing.T) {
	before := Get()

	assert.Panics(t, func() {
		RunScope(func() {
			Get().SetData("k", &testData{})
			panic("boom")
		})
	})

	assert.Same(t, before, Get())
}

func TestRunScope_RestoresOnEarlyReturn(t *testing.T) {
	before := Get()

	err := func() error {
		s := NewScope()
		defer s.Restore()

		if true {
			return errors.New("early exit")
		}

		return nil
	}()

	require.Error(t, err)
	assert.Same(t, before, Get())
}

func TestShallowScope_SharesUntouchedEntries(t *testing.T) {
	s := NewScope()
	defer s.Restore()

	shared := &testData{value: "shared"}
	Get().SetData("k2", shared)

	ss := NewShallowScope()
	assert.Same(t, shared, Get().GetData("k2"), "untouched entries are identity-shared")

	ss.Restore()
}

func TestShallowScope_OverrideAndRestore(t *testing.T) {
	s := NewScope()
	defer s.Restore()

	x := &testData{value: "X"}
	Get().SetData("a", x)

	y := &testData{value: "Y"}

	ss := NewShallowScopeOverride("a", y)
	assert.Same(t, y, Get().GetData("a"))

	ss.Restore()
	assert.Same(t, x, Get().GetData("a"), "parent sees the original after restore")
}

func TestShallowScope_ClearDoesNotAffectParent(t *testing.T) {
	s := NewScope()
	defer s.Restore()

	parent := Get()
	parent.SetData("k", &testData{value: "v"})

	RunShallow(func() {
		Get().ClearData("k")
		assert.False(t, Get().HasData("k"))
	})

	assert.True(t, parent.HasData("k"))
}

func TestShallowScope_NoCallbackReplayForSharedEntries(t *testing.T) {
	log := &callbackLog{}

	ctx := New()
	ctx.SetData("cb", &callbackData{name: "cb", log: log})

	s := NewScopeWith(ctx)
	defer s.Restore()

	installed := log.snapshot()

	ss := NewShallowScope()
	assert.Equal(t, installed, log.snapshot(), "forking must not re-run OnSet for shared entries")

	ss.Restore()
}

func TestShallowScope_DoubleRestorePanics(t *testing.T) {
	ss := NewShallowScope()
	ss.Restore()

	assert.PanicsWithValue(t, "reqctx: ShallowScope restored twice", func() {
		ss.Restore()
	})
}

func TestRunShallowOverride_EndToEnd(t *testing.T) {
	s := NewScope()
	defer s.Restore()

	Get().SetData("deadline-class", &testData{value: "interactive"})

	RunShallowOverride("deadline-class", &testData{value: "batch"}, func() {
		assert.Equal(t, "batch", Get().GetData("deadline-class").(*testData).value)
	})

	assert.Equal(t, "interactive", Get().GetData("deadline-class").(*testData).value)
}
