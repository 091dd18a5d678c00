// Package pipeline orchestrates one texture batch: discovery, UDIM
// resolution and classification, material building, conversion planning,
// scheduling, and the batch report.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/backmassage/texmtlx/internal/config"
	"github.com/backmassage/texmtlx/internal/convert"
	"github.com/backmassage/texmtlx/internal/display"
	"github.com/backmassage/texmtlx/internal/logging"
	"github.com/backmassage/texmtlx/internal/material"
	"github.com/backmassage/texmtlx/internal/planner"
	"github.com/backmassage/texmtlx/internal/probe"
	"github.com/backmassage/texmtlx/internal/report"
	"github.com/backmassage/texmtlx/internal/scheduler"
	"github.com/backmassage/texmtlx/internal/udim"
)

// Outcome is everything one batch produced.
type Outcome struct {
	Stats     RunStats
	Materials []material.MaterialSpec
	Report    report.BatchReport
}

// Run is the top-level batch entry point. It discovers textures, builds
// materials, converts what is stale (unless conversion is disabled), renders
// the report and optionally exports it. Converter failures are counted in
// the stats, not returned; an error means the batch itself could not run.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger) (Outcome, error) {
	return run(ctx, cfg, log, nil)
}

// run lets tests supply the converter.
func run(ctx context.Context, cfg *config.Config, log *logging.Logger, conv scheduler.Converter) (Outcome, error) {
	var out Outcome
	start := time.Now()

	files, err := Discover(cfg.InputDirs, DiscoverOptions{Recursive: cfg.Recursive, Excludes: cfg.Excludes})
	if err != nil {
		return out, fmt.Errorf("discover: %w", err)
	}
	files = DropShadowed(files, cfg.TargetExt)
	out.Stats.Files = len(files)

	resolver := udim.NewResolver(cfg.ProjectRoot)
	logBatchHeader(cfg, log, resolver, len(files))

	built := material.Build(resolver.Group(files))
	out.Materials = built.Materials
	out.Stats.Assets = len(built.Assets)
	out.Stats.Materials = len(built.Materials)
	out.Stats.Unassigned = len(built.Unassigned)

	warnings := built.Warnings
	var results []scheduler.Result
	if cfg.ConvertTX {
		batch, err := convertAll(ctx, cfg, log, built.Assets, conv)
		if err != nil {
			return out, err
		}
		results = batch.results
		warnings = append(slices.Clone(warnings), batch.warnings...)
		tallyResults(&out.Stats, results)
	}
	out.Stats.Warnings = len(warnings)

	out.Report = report.Build(report.Input{
		Materials:  built.Materials,
		Unassigned: built.Unassigned,
		Warnings:   warnings,
		Results:    results,
	})
	report.Render(log, out.Report)

	if cfg.ReportFile != "" {
		if err := report.Export(cfg.ReportFile, out.Report); err != nil {
			return out, err
		}
		log.Info("Report written to %s", cfg.ReportFile)
	}

	out.Stats.Elapsed = time.Since(start)
	logSummary(cfg, log, &out.Stats)
	return out, nil
}

// conversion is what convertAll hands back to the batch: results in job
// order plus warnings for sources that were never planned.
type conversion struct {
	results  []scheduler.Result
	warnings []material.Warning
}

// convertAll plans and runs the conversions for assets.
func convertAll(
	ctx context.Context,
	cfg *config.Config,
	log *logging.Logger,
	assets []material.TextureAsset,
	conv scheduler.Converter,
) (conversion, error) {
	var out conversion
	plan := planner.BuildJobs(cfg, assets)
	for _, err := range plan.ProbeErrors {
		log.Warn("Probe: %v", err)
	}
	for _, c := range plan.Collisions {
		log.Warn("Target collision: %s", c)
		out.warnings = append(out.warnings, c.Warning())
	}
	if plan.Native > 0 {
		log.Debug("%d %s already %s", plan.Native, display.Plural(plan.Native, "texture"), cfg.TargetExt)
	}
	if len(plan.Jobs) == 0 {
		return out, nil
	}

	if conv == nil {
		c, err := newConverter(cfg, log)
		if err != nil {
			return out, err
		}
		conv = c
	}

	pool, err := scheduler.PoolSize(cfg.CPUs, cfg.WorkerBudget)
	if err != nil {
		return out, err
	}
	log.Info("Converting %d %s with %d %s", len(plan.Jobs), display.Plural(len(plan.Jobs), "file"),
		pool, display.Plural(pool, "worker"))

	done := 0
	results, err := scheduler.RunBatch(ctx, plan.Jobs, conv, scheduler.Options{
		WorkerBudget: cfg.WorkerBudget,
		ForceNewer:   cfg.ForceNewer,
		CPUs:         cfg.CPUs,
		JobTimeout:   cfg.JobTimeout,
		OnResult: func(r scheduler.Result) {
			done++
			logProgress(cfg, log, done, len(plan.Jobs), r)
		},
	})
	if err != nil {
		return out, fmt.Errorf("schedule: %w", err)
	}
	out.results = results
	return out, nil
}

// newConverter returns the dry-run converter or an executor for the
// configured command template.
func newConverter(cfg *config.Config, log *logging.Logger) (scheduler.Converter, error) {
	if cfg.DryRun {
		return convert.Noop{}, nil
	}
	tmpl, err := convert.ParseTemplate(cfg.ConverterCommand)
	if err != nil {
		return nil, err
	}
	ex := convert.NewExecutor(tmpl)
	if log.Verbose() {
		ex.Tee = logWriter{log}
	}
	return ex, nil
}

// tallyResults counts results by status and sums source and target sizes
// of the conversions that ran.
func tallyResults(stats *RunStats, results []scheduler.Result) {
	stats.Jobs = len(results)
	var sources, targets []string
	for _, r := range results {
		switch r.Status {
		case scheduler.StatusSucceeded:
			stats.Converted++
			sources = append(sources, r.Job.SourcePath)
			targets = append(targets, r.Job.TargetPath)
		case scheduler.StatusSkipped:
			stats.Skipped++
		case scheduler.StatusFailed:
			stats.Failed++
		}
	}
	in, _ := probe.StatAll(sources)
	out, _ := probe.StatAll(targets)
	stats.TotalInputBytes = probe.TotalSize(in)
	stats.TotalOutputBytes = probe.TotalSize(out)
}

// --- Logging helpers ---

func logBatchHeader(cfg *config.Config, log *logging.Logger, resolver *udim.Resolver, files int) {
	log.Info("Found %d %s", files, display.Plural(files, "texture"))
	if root := resolver.Root(); root != "" {
		log.Info("Project root: %s -> %s", root, udim.JobVar)
	}
	switch {
	case !cfg.ConvertTX:
		log.Info("Conversion: disabled")
	case cfg.DryRun:
		log.Info("Conversion: dry run (%s)", cfg.ConverterCommand)
	default:
		log.Info("Conversion: %s", cfg.ConverterCommand)
	}
	if cfg.ForceNewer {
		log.Info("Staleness check: off (--force)")
	}
}

func logProgress(cfg *config.Config, log *logging.Logger, n, total int, r scheduler.Result) {
	name := filepath.Base(r.Job.SourcePath)
	switch r.Status {
	case scheduler.StatusSucceeded:
		if cfg.DryRun {
			log.Success("[%d/%d] [DRY] Would convert %s", n, total, name)
		} else {
			log.Success("[%d/%d] Converted %s in %s", n, total, name, display.FormatDuration(r.Duration))
		}
	case scheduler.StatusSkipped:
		log.Debug("[%d/%d] Up to date: %s", n, total, name)
	case scheduler.StatusFailed:
		log.Error("[%d/%d] %s", n, total, r.Err)
	}
}

func logSummary(cfg *config.Config, log *logging.Logger, s *RunStats) {
	if s.Converted > 0 && !cfg.DryRun {
		delta := s.SizeDelta()
		sign := "+"
		if delta < 0 {
			sign, delta = "-", -delta
		}
		log.Info("Converted %s -> %s (%s%s)", display.FormatBytes(s.TotalInputBytes),
			display.FormatBytes(s.TotalOutputBytes), sign, display.FormatBytes(delta))
	}
	log.Info("Elapsed: %s", display.FormatDuration(s.Elapsed))
}

// logWriter forwards converter output to the debug log, one line per write.
type logWriter struct{ log *logging.Logger }

func (w logWriter) Write(p []byte) (int, error) {
	w.log.Debug("  %s", strings.TrimRight(string(p), "\r\n"))
	return len(p), nil
}
