package benchmark

import (
	"fmt"
	"sync"
	"testing"

	"github.com/jsamuelsen/reqctx"
)

// benchData is a minimal payload for benchmarking the context store.
type benchData struct {
	reqctx.DataCore

	value string
}

// BenchmarkContextGet measures reading the calling goroutine's current
// context. This is the hot path for every propagation-aware call site.
func BenchmarkContextGet(b *testing.B) {
	scope := reqctx.NewScope()
	defer scope.Restore()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = reqctx.Get()
	}
}

// BenchmarkSetData measures storing a payload under a fresh key.
func BenchmarkSetData(b *testing.B) {
	scope := reqctx.NewScope()
	defer scope.Restore()

	rc := reqctx.Get()
	keys := make([]string, b.N)
	for i := range keys {
		keys[i] = fmt.Sprintf("key-%d", i)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		rc.SetData(keys[i], &benchData{value: "v"})
	}
}

// BenchmarkGetData measures reading a payload back from the store.
func BenchmarkGetData(b *testing.B) {
	scope := reqctx.NewScope()
	defer scope.Restore()

	rc := reqctx.Get()
	rc.SetData("bench", &benchData{value: "v"})

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = rc.GetData("bench")
	}
}

// BenchmarkScope measures installing and restoring a fresh context, the
// per-request cost of the server middleware.
func BenchmarkScope(b *testing.B) {
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		scope := reqctx.NewScope()
		scope.Restore()
	}
}

// BenchmarkShallowScope measures forking the current context, sharing its
// entries, and restoring the original.
func BenchmarkShallowScope(b *testing.B) {
	scope := reqctx.NewScope()
	defer scope.Restore()

	rc := reqctx.Get()
	for i := range 8 {
		rc.SetData(fmt.Sprintf("key-%d", i), &benchData{value: "v"})
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		fork := reqctx.NewShallowScope()
		fork.Restore()
	}
}

// BenchmarkWrap measures capturing the current context into a closure.
// The wrapped function runs on the same goroutine here, so this isolates
// capture and install cost from goroutine scheduling.
func BenchmarkWrap(b *testing.B) {
	scope := reqctx.NewScope()
	defer scope.Restore()

	fn := func() {}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		reqctx.Wrap(fn)()
	}
}

// BenchmarkGo measures propagating the current context to a new goroutine.
func BenchmarkGo(b *testing.B) {
	scope := reqctx.NewScope()
	defer scope.Restore()

	b.ResetTimer()
	b.ReportAllocs()

	var wg sync.WaitGroup
	for i := 0; i < b.N; i++ {
		wg.Add(1)
		reqctx.Go(func() {
			wg.Done()
		})
	}
	wg.Wait()
}
