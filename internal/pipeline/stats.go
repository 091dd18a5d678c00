package pipeline

import "time"

// RunStats tracks aggregate counters and byte totals across a batch run.
type RunStats struct {
	Files      int
	Assets     int
	Materials  int
	Unassigned int
	Warnings   int

	Jobs      int
	Converted int
	Skipped   int
	Failed    int

	TotalInputBytes  int64
	TotalOutputBytes int64
	Elapsed          time.Duration
}

// SizeDelta returns output minus input bytes over converted files. Tiled
// mipmapped outputs are usually larger than their sources.
func (s *RunStats) SizeDelta() int64 {
	return s.TotalOutputBytes - s.TotalInputBytes
}

// OK reports whether every job succeeded or was skipped.
func (s *RunStats) OK() bool { return s.Failed == 0 }
