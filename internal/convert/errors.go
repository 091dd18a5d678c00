package convert

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind classifies why a conversion failed.
type Kind string

const (
	KindMissingInput      Kind = "missing-input"
	KindPermission        Kind = "permission"
	KindUnsupportedFormat Kind = "unsupported-format"
	KindToolNotFound      Kind = "tool-not-found"
	KindTimeout           Kind = "timeout"
	KindOther             Kind = "other"
)

// Error is a failed conversion. ExitCode is -1 when the tool never ran or
// was killed.
type Error struct {
	Path     string
	ExitCode int
	Kind     Kind
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("convert %s: %s", e.Path, e.Kind)
	if e.ExitCode >= 0 {
		msg += fmt.Sprintf(" (exit %d)", e.ExitCode)
	}
	if line := lastLine(e.Stderr); line != "" {
		msg += ": " + line
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Pre-compiled regexes for classifying converter output. Checked in order
// by [classifyOutput]; first match wins.
var (
	reMissingInput = regexp.MustCompile(
		`(?i)no such file|does not exist|could not find|file not found`)

	rePermission = regexp.MustCompile(
		`(?i)permission denied|access is denied|read-only file system|not permitted`)

	reUnsupported = regexp.MustCompile(
		`(?i)unsupported|not a supported|unknown file format|no (image )?(reader|plugin)|` +
			`could not open|invalid (image|file)|corrupt|bad magic`)
)

// classifyOutput maps captured tool output to a Kind.
func classifyOutput(stderr string) Kind {
	switch {
	case reMissingInput.MatchString(stderr):
		return KindMissingInput
	case rePermission.MatchString(stderr):
		return KindPermission
	case reUnsupported.MatchString(stderr):
		return KindUnsupportedFormat
	default:
		return KindOther
	}
}

// lastLine returns the last non-blank line of s, trimmed.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
