package config

// This file implements CLI flag parsing and help text.
// Flags are grouped into scheduling, conversion, discovery, display, and utility.
// Negated flags (e.g. --no-tx) are applied after Parse so config values hold unless set.

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

// ErrExit is returned by ParseFlags after --help or --version has been
// printed; the caller should exit successfully.
var ErrExit = errors.New("exit requested")

// ParseFlags parses args (without the program name) into cfg. It runs in two
// passes: the first only looks for --config and --env-file so those files can
// be loaded before the full flag set overrides their values.
func ParseFlags(cfg *Config, args []string, version string) error {
	if err := loadFiles(cfg, args); err != nil {
		return err
	}

	fs := pflag.NewFlagSet("texmtlx", pflag.ContinueOnError)
	fs.SortFlags = false
	fs.SetOutput(io.Discard)
	fs.Usage = func() { printUsage(version) }

	var negated negatedFlags

	defineFileFlags(fs, cfg)
	defineSchedulingFlags(fs, cfg)
	defineConversionFlags(fs, cfg, &negated)
	defineDiscoveryFlags(fs, cfg, &negated)
	defineDisplayFlags(fs, cfg, &negated)
	defineUtilityFlags(fs, &negated)

	if err := fs.Parse(args); err != nil {
		return err
	}

	applyNegatedFlags(cfg, &negated)

	if negated.showHelp {
		printUsage(version)
		return ErrExit
	}
	if negated.showVersion {
		fmt.Fprintln(os.Stdout, "texmtlx v"+version)
		return ErrExit
	}

	parsePositionalArgs(fs, cfg)
	cfg.ResolveProjectRoot()
	return nil
}

// loadFiles is the first pass: it extracts --env-file and --config, ignoring
// every other flag, and applies both files to cfg.
func loadFiles(cfg *Config, args []string) error {
	pre := pflag.NewFlagSet("texmtlx-files", pflag.ContinueOnError)
	pre.SetOutput(io.Discard)
	pre.ParseErrorsWhitelist.UnknownFlags = true
	pre.Usage = func() {}
	pre.BoolP("help", "h", false, "")
	defineFileFlags(pre, cfg)

	if err := pre.Parse(args); err != nil && !errors.Is(err, pflag.ErrHelp) {
		return err
	}

	if err := LoadEnvFile(cfg.EnvFile, cfg.EnvFile != ""); err != nil {
		return err
	}
	if cfg.ConfigFile != "" {
		if err := LoadFile(cfg.ConfigFile, cfg); err != nil {
			return err
		}
	}
	return nil
}

// negatedFlags holds boolean flags that are applied after Parse.
// These either invert a default (e.g. noTX -> ConvertTX=false) or trigger exit (showHelp, showVersion).
type negatedFlags struct {
	noTX        bool
	noRecursive bool
	forceColor  bool
	noColor     bool
	showVersion bool
	showHelp    bool
}

// defineFileFlags registers --config and --env-file.
func defineFileFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "YAML config file")
	fs.StringVar(&cfg.EnvFile, "env-file", cfg.EnvFile, "dotenv file loaded before $JOB is resolved")
}

// defineSchedulingFlags registers --job, -w/--workers, --cpus, -f/--force, --timeout.
func defineSchedulingFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.ProjectRoot, "job", cfg.ProjectRoot, "Project root rewritten to $JOB (default: $JOB)")
	fs.Float64VarP(&cfg.WorkerBudget, "workers", "w", cfg.WorkerBudget, "Fraction of CPU cores used for conversion")
	fs.IntVar(&cfg.CPUs, "cpus", cfg.CPUs, "CPU count to budget against (0 = all)")
	fs.BoolVarP(&cfg.ForceNewer, "force", "f", cfg.ForceNewer, "Convert even when the target is up to date")
	fs.DurationVar(&cfg.JobTimeout, "timeout", cfg.JobTimeout, "Per-job conversion timeout (0 = none)")
}

// defineConversionFlags registers --converter, --target-ext, --no-tx, -d/--dry-run, -r/--report.
func defineConversionFlags(fs *pflag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.StringVar(&cfg.ConverterCommand, "converter", cfg.ConverterCommand, "Converter command template")
	fs.StringVar(&cfg.TargetExt, "target-ext", cfg.TargetExt, "Extension of converted textures")
	fs.BoolVar(&n.noTX, "no-tx", false, "Classify only; do not convert")
	fs.BoolVarP(&cfg.DryRun, "dry-run", "d", cfg.DryRun, "Plan and report without running the converter")
	fs.StringVarP(&cfg.ReportFile, "report", "r", cfg.ReportFile, "Write the batch report to a .json or .yaml file")
}

// defineDiscoveryFlags registers --no-recursive and -x/--exclude.
func defineDiscoveryFlags(fs *pflag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.noRecursive, "no-recursive", false, "Only scan the top level of each input directory")
	fs.StringArrayVarP(&cfg.Excludes, "exclude", "x", cfg.Excludes, "Glob of files or directories to skip (repeatable)")
}

// defineDisplayFlags registers --color, --no-color, verbose, --check, --log.
func defineDisplayFlags(fs *pflag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")
	fs.BoolVarP(&cfg.CheckOnly, "check", "c", false, "Run system diagnostics and exit")
	fs.StringVarP(&cfg.LogFile, "log", "l", cfg.LogFile, "Append logs to file")
}

// defineUtilityFlags registers --version and --help.
func defineUtilityFlags(fs *pflag.FlagSet, n *negatedFlags) {
	fs.BoolVarP(&n.showVersion, "version", "V", false, "Print version and exit")
	fs.BoolVarP(&n.showHelp, "help", "h", false, "Show this help and exit")
}

// applyNegatedFlags copies negated and override flag values into cfg.
func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.noTX {
		cfg.ConvertTX = false
	}
	if n.noRecursive {
		cfg.Recursive = false
	}
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
}

// parsePositionalArgs sets InputDirs from the positional args. Inputs listed
// in a config file are kept when no positional args are given.
func parsePositionalArgs(fs *pflag.FlagSet, cfg *Config) {
	args := fs.Args()
	if len(args) == 0 {
		return
	}
	dirs := make([]string, 0, len(args))
	for _, a := range args {
		dirs = append(dirs, NormalizeDirArg(a))
	}
	cfg.InputDirs = dirs
}

// printUsage writes the help text to stderr. Column-aligned for readability.
func printUsage(version string) {
	const col1 = 30
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "texmtlx v" + version + " - texture classification and .tx conversion"},
		{"", ""},
		{"  texmtlx [OPTIONS] <texture_dir> [texture_dir...]", ""},
		{"", ""},
		{"Scheduling", ""},
		{"  --job <path>", "Project root rewritten to $JOB (default: $JOB)"},
		{"  -w, --workers <fraction>", "Fraction of cores for conversion (default: 0.5)"},
		{"  --cpus <n>", "CPU count to budget against (default: all)"},
		{"  -f, --force", "Convert even when the target is up to date"},
		{"  --timeout <duration>", "Per-job timeout, e.g. 5m (default: none)"},
		{"", ""},
		{"Conversion", ""},
		{"  --converter <cmd>", "Command template (default: imaketx {src} {dst})"},
		{"  --target-ext <ext>", "Converted extension (default: .tx)"},
		{"  --no-tx", "Classify only; do not convert"},
		{"  -d, --dry-run", "Plan and report without converting"},
		{"  -r, --report <path>", "Export report as .json or .yaml"},
		{"", ""},
		{"Discovery", ""},
		{"  --no-recursive", "Only scan the top level of each directory"},
		{"  -x, --exclude <glob>", "Skip matching files/directories (repeatable)"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Verbose output"},
		{"", ""},
		{"Utility", ""},
		{"  --config <path>", "YAML config file"},
		{"  --env-file <path>", "dotenv file loaded before $JOB is resolved"},
		{"  -l, --log <path>", "Append logs to file"},
		{"  -c, --check", "System diagnostics (converter, CPU budget)"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		switch {
		case l.flags == "" && l.desc == "":
			fmt.Fprintln(os.Stderr)
		case l.desc == "":
			fmt.Fprintln(os.Stderr, l.flags)
		case l.flags == "":
			fmt.Fprintln(os.Stderr, l.desc)
		default:
			padding := max(col1-len(l.flags), 1)
			fmt.Fprintf(os.Stderr, "%s%s%s\n", l.flags, strings.Repeat(" ", padding), l.desc)
		}
	}
}
