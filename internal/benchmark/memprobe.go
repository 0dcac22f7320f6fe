package benchmark

import "runtime"

// AllocCounter is a cumulative snapshot of process heap allocations.
type AllocCounter struct {
	Bytes   uint64
	Objects uint64
}

// Delta returns after-before for bytes and objects.
func Delta(before, after AllocCounter) (bytes, objects int64) {
	return int64(after.Bytes - before.Bytes), int64(after.Objects - before.Objects)
}

// MemoryProbe captures allocation counters around a batch.
type MemoryProbe interface {
	Snapshot() AllocCounter
	// Available reports whether Snapshot returns real counters.
	Available() bool
}

// RuntimeProbe reads TotalAlloc and Mallocs from runtime.ReadMemStats, the same
// counters the testing package uses for allocs/op. ReadMemStats stops the world,
// so snapshots must stay outside the timed region.
type RuntimeProbe struct{}

func (RuntimeProbe) Available() bool { return true }

func (RuntimeProbe) Snapshot() AllocCounter {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return AllocCounter{Bytes: ms.TotalAlloc, Objects: ms.Mallocs}
}

// NullProbe reports no allocations and is never available. It is used when
// memory diagnostics are switched off.
type NullProbe struct{}

func (NullProbe) Snapshot() AllocCounter { return AllocCounter{} }
func (NullProbe) Available() bool        { return false }
