package main

import (
	"runtime"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/farxc/dados-abertos/internal/logger"
)

type ProfilerStats struct {
	PeakGoroutines int
	PeakHeapBytes  uint64
}

func (s ProfilerStats) PeakHeap() string {
	return humanize.Bytes(s.PeakHeapBytes)
}

// MemoryMonitor samples the runtime while an import runs. Company chunks
// are the memory-heavy part, so the peak is reported at the end.
type MemoryMonitor struct {
	mu    sync.Mutex
	stats ProfilerStats
	stop  chan struct{}
	done  chan struct{}
}

func NewMonitor() *MemoryMonitor {
	return &MemoryMonitor{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func (m *MemoryMonitor) Start(interval time.Duration, appLogger *logger.Logger) {
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.update(appLogger)
			case <-m.stop:
				return
			}
		}
	}()
}

func (m *MemoryMonitor) update(appLogger *logger.Logger) {
	const component = "Monitor"

	var mStats runtime.MemStats
	runtime.ReadMemStats(&mStats)
	goroutines := runtime.NumGoroutine()

	m.mu.Lock()
	defer m.mu.Unlock()

	if goroutines > m.stats.PeakGoroutines {
		m.stats.PeakGoroutines = goroutines
	}
	if mStats.HeapAlloc > m.stats.PeakHeapBytes {
		m.stats.PeakHeapBytes = mStats.HeapAlloc
	}

	appLogger.Debug(component, "goroutines=%d heap=%s peakHeap=%s",
		goroutines, humanize.Bytes(mStats.HeapAlloc), humanize.Bytes(m.stats.PeakHeapBytes))
}

// Stop ends sampling and returns the peaks observed. It must be called once.
func (m *MemoryMonitor) Stop() ProfilerStats {
	close(m.stop)
	<-m.done
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}
