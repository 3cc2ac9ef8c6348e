package internal

import (
	"sync/atomic"
	"time"
)

// RunStats is the totals of a finished run.
type RunStats struct {
	FilesFound   int64
	FilesScanned int64
	Matches      int64
	Diagnostics  int64
	Elapsed      time.Duration
}

// runCounters atomic counters for totals
type runCounters struct {
	start        time.Time
	FilesFound   atomic.Int64
	FilesScanned atomic.Int64
	Matches      atomic.Int64
	Diagnostics  atomic.Int64
}

func (s *runCounters) Start() {
	s.start = time.Now()
}

func (s *runCounters) Elapsed() time.Duration {
	return time.Since(s.start)
}

func (s *runCounters) Snapshot() RunStats {
	return RunStats{
		FilesFound:   s.FilesFound.Load(),
		FilesScanned: s.FilesScanned.Load(),
		Matches:      s.Matches.Load(),
		Diagnostics:  s.Diagnostics.Load(),
		Elapsed:      s.Elapsed(),
	}
}
