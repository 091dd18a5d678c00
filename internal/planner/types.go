package planner

import "time"

// ConversionJob is one source file to convert. It is an immutable value:
// the scheduler consumes each job exactly once.
type ConversionJob struct {
	SourcePath string
	TargetPath string

	// SourceMTime is zero when the source could not be stat'ed; such jobs
	// are never skipped as up to date.
	SourceMTime time.Time
	// TargetMTime is nil when the target does not exist yet.
	TargetMTime *time.Time

	// Force bypasses the staleness check for this job.
	Force bool

	// AssetKey is the canonical path of the asset the source belongs to.
	AssetKey string
}

// UpToDate reports whether the target exists and is not older than the
// source. Force is not considered here.
func (j ConversionJob) UpToDate() bool {
	if j.TargetMTime == nil || j.SourceMTime.IsZero() {
		return false
	}
	return !j.TargetMTime.Before(j.SourceMTime)
}

// Plan is the outcome of BuildJobs.
type Plan struct {
	Jobs []ConversionJob
	// Native counts sources already in the target format.
	Native int
	// ProbeErrors holds stat failures; the affected jobs are still planned.
	ProbeErrors []error
	// Collisions lists sources skipped because their target was taken.
	Collisions []Collision
}
