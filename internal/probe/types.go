package probe

import "time"

// FileInfo holds what planning needs to know about one file.
type FileInfo struct {
	Path    string
	Exists  bool
	Size    int64
	ModTime time.Time // Zero when !Exists.
}

// ModTimePtr returns a pointer to a copy of ModTime, or nil if the file is
// absent. ConversionJob.TargetMTime uses nil for "no target".
func (fi FileInfo) ModTimePtr() *time.Time {
	if !fi.Exists {
		return nil
	}
	t := fi.ModTime
	return &t
}
