package profiler

import (
	"fmt"
	"log"
	"runtime"
	"sync/atomic"
	"time"
)

// Profiler measures scene loads and reports duration and memory statistics to the log.
// A Profiler is safe for concurrent use; each Track call owns its own snapshot.
type Profiler struct {
	tracked atomic.Uint64
	logf    func(format string, args ...any)
}

// Sample is the measurement of one tracked span.
type Sample struct {
	Label      string
	Duration   time.Duration
	AllocBytes uint64
	HeapBytes  uint64
	GCCycles   uint32
	MaxPauseUs uint64
}

// String formats the sample the way it is logged.
func (s Sample) String() string {
	return fmt.Sprintf("%s | Time: %s | Alloc: %.2f MB | Heap: %.2f MB | GC: %d (max: %d µs)",
		s.Label, s.Duration, float64(s.AllocBytes)/1024/1024, float64(s.HeapBytes)/1024/1024, s.GCCycles, s.MaxPauseUs)
}

// NewProfiler creates a new Profiler that writes through the standard logger.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{logf: log.Printf}
}

// Track starts measuring a span and returns the function that ends it.
// Typical use is `defer p.Track("load crate.glb")()`.
//
// Parameters:
//   - label: the name logged with the measurement
//
// Returns:
//   - func(): ends the span and logs its Sample
func (p *Profiler) Track(label string) func() {
	stop := p.Measure(label)
	return func() {
		p.logf("[Profiler] %s", stop())
	}
}

// Measure starts measuring a span and returns the function that ends it and yields the Sample
// without logging it.
//
// Parameters:
//   - label: the name recorded in the Sample
//
// Returns:
//   - func() Sample: ends the span and returns its measurement
func (p *Profiler) Measure(label string) func() Sample {
	var before runtime.MemStats
	runtime.ReadMemStats(&before)
	start := time.Now()

	return func() Sample {
		elapsed := time.Since(start)
		var after runtime.MemStats
		runtime.ReadMemStats(&after)
		p.tracked.Add(1)

		sample := Sample{
			Label:     label,
			Duration:  elapsed,
			HeapBytes: after.HeapAlloc,
			GCCycles:  after.NumGC - before.NumGC,
		}
		if after.TotalAlloc > before.TotalAlloc {
			sample.AllocBytes = after.TotalAlloc - before.TotalAlloc
		}

		// PauseNs is a circular buffer of the last 256 GC pauses
		startIdx := before.NumGC
		if after.NumGC-startIdx > 256 {
			startIdx = after.NumGC - 256
		}
		for i := startIdx; i < after.NumGC; i++ {
			pause := after.PauseNs[i%256] / 1000
			if pause > sample.MaxPauseUs {
				sample.MaxPauseUs = pause
			}
		}
		return sample
	}
}

// Tracked returns how many spans have completed.
//
// Returns:
//   - uint64: the completed span count
func (p *Profiler) Tracked() uint64 {
	return p.tracked.Load()
}
