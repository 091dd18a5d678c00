// Command texmtlx classifies production texture files into material slots,
// groups UDIM tile sequences and converts stale sources to .tx in parallel.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/backmassage/texmtlx/internal/check"
	"github.com/backmassage/texmtlx/internal/config"
	"github.com/backmassage/texmtlx/internal/display"
	"github.com/backmassage/texmtlx/internal/logging"
	"github.com/backmassage/texmtlx/internal/pipeline"
)

// Set via ldflags: -X main.version=... -X main.commit=...
var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: bootstrap (config, flags, logger).
	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg, os.Args[1:], version); err != nil {
		if errors.Is(err, config.ErrExit) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "texmtlx: %v\n", err)
		fmt.Fprintln(os.Stderr, "Try 'texmtlx --help' for usage.")
		return 2
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "texmtlx: %v\n", err)
		return 2
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "texmtlx: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: banner, diagnostics, dependency checks.
	display.PrintBanner(os.Stdout)

	if cfg.CheckOnly {
		if !check.RunCheck(&cfg, log) {
			return 1
		}
		return 0
	}

	log.Info("=== texmtlx v%s (%s) ===", version, commit)
	if cfg.DryRun {
		log.Warn("DRY RUN - no textures will be converted")
	}

	if err := check.CheckDeps(&cfg); err != nil {
		log.Error("%v", err)
		return 1
	}

	// Phase 3: cancel in-flight conversions on SIGINT/SIGTERM. Jobs that
	// have not started are reported as failed.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn("Received interrupt, stopping conversions...")
		cancel()
	}()

	// Phase 4: run the batch.
	out, err := pipeline.Run(ctx, &cfg, log)
	if err != nil {
		log.Error("%v", err)
		return 1
	}
	if !out.Stats.OK() {
		return 1
	}
	return 0
}
