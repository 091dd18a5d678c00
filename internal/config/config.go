// Package config holds runtime configuration: defaults, the optional YAML
// config file, the optional dotenv file, CLI flag parsing, and validation.
// Precedence is defaults < config file < flags.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-shellwords"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Placeholders substituted into ConverterCommand for every job.
const (
	PlaceholderSource = "{src}"
	PlaceholderTarget = "{dst}"
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// optionally overlaid by [LoadFile], and then mutated by [ParseFlags] before
// being passed (by pointer) to packages that need it.
type Config struct {
	// Inputs (set from positional args).
	InputDirs []string `yaml:"inputs"`

	// ProjectRoot is the $JOB root used for path normalization. Defaults to
	// the JOB environment variable when left empty.
	ProjectRoot string `yaml:"job"`

	// Scheduling.
	WorkerBudget float64       `yaml:"worker_budget"` // Default: 0.5 (half the cores).
	CPUs         int           `yaml:"cpus"`          // Default: 0 (runtime.NumCPU()).
	ForceNewer   bool          `yaml:"force"`         // Bypass staleness checks.
	JobTimeout   time.Duration `yaml:"job_timeout"`   // Default: 0 (no timeout).

	// Conversion.
	ConvertTX        bool   `yaml:"convert_tx"` // Default: true. Cleared by --no-tx.
	ConverterCommand string `yaml:"converter"`  // Default: "imaketx {src} {dst}".
	TargetExt        string `yaml:"target_ext"` // Default: ".tx".

	// Discovery.
	Recursive bool     `yaml:"recursive"` // Default: true. Cleared by --no-recursive.
	Excludes  []string `yaml:"exclude"`   // Glob patterns matched against base names and relative paths.

	// Output.
	ReportFile string `yaml:"report"` // Optional .json/.yaml export of the batch report.
	DryRun     bool   `yaml:"dry_run"`

	// Display and logging.
	Verbose   bool      `yaml:"verbose"`
	ColorMode ColorMode `yaml:"color"`
	LogFile   string    `yaml:"log"`
	CheckOnly bool      `yaml:"-"`

	// Files loaded before flags are applied.
	ConfigFile string `yaml:"-"`
	EnvFile    string `yaml:"-"`
}

// DefaultConfig returns a Config with the stock defaults. Used as the base
// before [LoadFile] and [ParseFlags] apply overrides.
func DefaultConfig() Config {
	return Config{
		WorkerBudget:     0.5,
		CPUs:             0,
		ForceNewer:       false,
		JobTimeout:       0,
		ConvertTX:        true,
		ConverterCommand: "imaketx " + PlaceholderSource + " " + PlaceholderTarget,
		TargetExt:        ".tx",
		Recursive:        true,
		DryRun:           false,
		Verbose:          false,
		ColorMode:        ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum fields, the worker budget, the target extension and
// the converter template. When not in CheckOnly mode it also requires at
// least one input directory.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if math.IsNaN(c.WorkerBudget) || c.WorkerBudget <= 0 || c.WorkerBudget > 1 {
		return fmt.Errorf("invalid worker budget %v (use a fraction in (0, 1])", c.WorkerBudget)
	}
	if c.CPUs < 0 {
		return fmt.Errorf("invalid cpu count %d", c.CPUs)
	}
	if c.JobTimeout < 0 {
		return fmt.Errorf("invalid job timeout %s", c.JobTimeout)
	}

	if !strings.HasPrefix(c.TargetExt, ".") || len(c.TargetExt) < 2 {
		return fmt.Errorf("invalid target extension %q (must start with '.')", c.TargetExt)
	}
	c.TargetExt = strings.ToLower(c.TargetExt)

	if c.ConvertTX {
		if err := validateConverter(c.ConverterCommand); err != nil {
			return err
		}
	}

	if c.CheckOnly {
		return nil
	}
	if len(c.InputDirs) == 0 {
		return errors.New("need at least one input directory")
	}
	return nil
}

// validateConverter requires a parseable command line that references both
// the source and target placeholders.
func validateConverter(cmd string) error {
	args, err := shellwords.Parse(cmd)
	if err != nil {
		return fmt.Errorf("invalid converter command %q: %w", cmd, err)
	}
	if len(args) == 0 {
		return errors.New("converter command must not be empty")
	}
	if !strings.Contains(cmd, PlaceholderSource) || !strings.Contains(cmd, PlaceholderTarget) {
		return fmt.Errorf("converter command %q must reference %s and %s", cmd, PlaceholderSource, PlaceholderTarget)
	}
	return nil
}
