package metrics

import "runtime"

// MemorySnapshot holds a point-in-time reading of the coordinator's memory.
type MemorySnapshot struct {
	HeapAlloc uint64 // bytes in use by the coordinator
	Sys       uint64 // total bytes obtained from the OS
	NumGC     uint32 // completed GC cycles
}

// MemoryCollector reads runtime memory statistics.
type MemoryCollector struct {
	read func(*runtime.MemStats)
}

// NewMemoryCollector creates a collector backed by runtime.ReadMemStats.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{read: runtime.ReadMemStats}
}

// Snapshot reads current memory statistics.
func (mc *MemoryCollector) Snapshot() MemorySnapshot {
	var m runtime.MemStats
	mc.read(&m)
	return MemorySnapshot{
		HeapAlloc: m.HeapAlloc,
		Sys:       m.Sys,
		NumGC:     m.NumGC,
	}
}
