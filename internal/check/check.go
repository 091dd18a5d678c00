// Package check provides system diagnostics (--check mode) and pre-pipeline
// dependency validation (CheckDeps) for the texture converter and the
// worker pool.
package check

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/backmassage/texmtlx/internal/config"
	"github.com/backmassage/texmtlx/internal/convert"
	"github.com/backmassage/texmtlx/internal/scheduler"
)

// Sentinel errors returned by CheckDeps.
var (
	ErrConverterNotFound = errors.New("converter not found on PATH")
	ErrInputNotFound     = errors.New("input directory not found")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...any)
	Success(string, ...any)
	Warn(string, ...any)
	Error(string, ...any)
	Debug(string, ...any)
}

// RunCheck runs the interactive --check flow: converter availability, CPU
// count, worker pool size and project root. It reports every problem and
// returns false if any check failed.
func RunCheck(cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")

	ok := checkConverter(cfg, log)
	ok = checkPool(cfg, log) && ok
	checkProjectRoot(cfg, log)
	return ok
}

// checkConverter verifies the converter template parses and its tool is on PATH.
func checkConverter(cfg *config.Config, log Logger) bool {
	tmpl, err := convert.ParseTemplate(cfg.ConverterCommand)
	if err != nil {
		log.Error("Converter: %v", err)
		return false
	}
	path, err := exec.LookPath(tmpl.Tool())
	if err != nil {
		log.Error("Converter %s not found", tmpl.Tool())
		return false
	}
	log.Success("Converter: %s", path)
	log.Debug("Template: %s", tmpl)
	return true
}

// checkPool logs the CPU count and the resulting worker pool size.
func checkPool(cfg *config.Config, log Logger) bool {
	cpus := cfg.CPUs
	if cpus == 0 {
		cpus = runtime.NumCPU()
	}
	size, err := scheduler.PoolSize(cfg.CPUs, cfg.WorkerBudget)
	if err != nil {
		log.Error("Worker pool: %v", err)
		return false
	}
	log.Success("Worker pool: %d of %d CPUs (budget %.2f)", size, cpus, cfg.WorkerBudget)
	return true
}

// checkProjectRoot reports the $JOB root; a missing root is only a warning.
func checkProjectRoot(cfg *config.Config, log Logger) {
	if cfg.ProjectRoot == "" {
		log.Warn("Project root not set ($JOB empty, no --job); paths stay absolute")
		return
	}
	if st, err := os.Stat(cfg.ProjectRoot); err != nil || !st.IsDir() {
		log.Warn("Project root %s is not a directory", cfg.ProjectRoot)
		return
	}
	log.Success("Project root: %s", cfg.ProjectRoot)
}

// CheckDeps is the pre-pipeline validation: input directories must exist
// and, when conversion will actually run, the converter must be on PATH.
// Returns a wrapped sentinel error on failure.
func CheckDeps(cfg *config.Config) error {
	for _, dir := range cfg.InputDirs {
		st, err := os.Stat(dir)
		if err != nil || !st.IsDir() {
			return fmt.Errorf("%w: %s", ErrInputNotFound, dir)
		}
	}

	if !cfg.ConvertTX || cfg.DryRun {
		return nil
	}
	tmpl, err := convert.ParseTemplate(cfg.ConverterCommand)
	if err != nil {
		return err
	}
	if _, err := exec.LookPath(tmpl.Tool()); err != nil {
		return fmt.Errorf("%w: %s", ErrConverterNotFound, tmpl.Tool())
	}
	return nil
}
