// Package tuner sizes a hunt for the machine it runs on. It detects CPU cores
// and memory, then derives the number of directory readers for the walk and
// the block cache size for the listing cache.
package tuner

import "runtime"

const (
	// minWorkers keeps a little read parallelism on single-core machines.
	minWorkers = 2

	// maxWorkers caps directory readers. Beyond this the walk is bound by
	// the filesystem, not by goroutines.
	maxWorkers = 32

	minCacheBytes = 8 << 20
	maxCacheBytes = 256 << 20

	// The listing cache gets 1/64 of free memory.
	cacheShare = 64
)

// Resources is what Detect found on the host. Memory figures are in bytes;
// FreeMemory may be an estimate.
type Resources struct {
	Cores       int
	TotalMemory int64
	FreeMemory  int64
}

// Plan holds the tuned settings for a hunt.
type Plan struct {
	// Workers is the number of concurrent directory readers in the walk.
	Workers int

	// CacheBlockBytes is the block cache size handed to the listing cache.
	CacheBlockBytes int64
}

// PlanFor derives settings from res. Directory reads are I/O bound, so one
// reader per core keeps the disk busy without flooding it with syscalls.
//
// A positive workers value pins the reader count. It is capped at maxWorkers
// but may go below minWorkers, so 1 gives a sequential walk.
func PlanFor(res Resources, workers int) Plan {
	p := Plan{
		Workers:         max(minWorkers, min(res.Cores, maxWorkers)),
		CacheBlockBytes: max(minCacheBytes, min(res.FreeMemory/cacheShare, maxCacheBytes)),
	}
	if workers > 0 {
		p.Workers = min(workers, maxWorkers)
	}
	return p
}

// Fallback is the plan used when Detect fails: cores from the runtime and
// the smallest cache.
func Fallback(workers int) Plan {
	return PlanFor(Resources{Cores: runtime.NumCPU()}, workers)
}
