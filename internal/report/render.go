package report

import (
	"path"
	"strconv"
	"strings"

	"github.com/backmassage/texmtlx/internal/display"
	"github.com/backmassage/texmtlx/internal/logging"
	"github.com/backmassage/texmtlx/internal/scheduler"
)

// Render writes rep through log: one block per material, then unassigned
// assets, then the totals line. Failed jobs are logged as errors.
func Render(log *logging.Logger, rep BatchReport) {
	for _, sec := range rep.Materials {
		log.Info("Material %s (%s)", sec.Name, sec.Folder)
		for _, e := range sec.Entries {
			renderEntry(log, string(e.Slot), e)
		}
	}
	if len(rep.Unassigned) > 0 {
		log.Warn("Unassigned textures: %d", len(rep.Unassigned))
		for _, e := range rep.Unassigned {
			renderEntry(log, "?", e)
		}
	}

	t := rep.Totals
	summary := strings.Join([]string{
		plural(t.Materials, "material"),
		plural(t.Assets, "texture"),
		plural(t.Tiles, "file"),
		plural(t.Succeeded, "conversion"),
		itoa(t.Skipped) + " up to date",
		itoa(t.Failed) + " failed",
		plural(t.Warnings, "warning"),
	}, ", ")
	if rep.OK() {
		log.Success("Batch %s: %s", shortID(rep.ID), summary)
	} else {
		log.Error("Batch %s: %s", shortID(rep.ID), summary)
	}
}

func renderEntry(log *logging.Logger, slot string, e Entry) {
	a := e.Asset
	detail := string(a.Colorspace)
	if a.IsUDIM {
		detail += ", tiles " + display.FormatTileRange(a.TileIDs)
	}
	if a.Resolution != "" {
		detail += ", " + a.Resolution
	}
	log.Info("  %-18s %s [%s]", slot, path.Base(a.CanonicalPath), detail)

	for _, w := range e.Warnings {
		log.Warn("    %s: %s", w.Kind, w.Message)
	}
	for _, r := range e.Results {
		switch r.Status {
		case scheduler.StatusFailed:
			log.Error("    failed %s: %s", path.Base(r.Source), r.Error)
		case scheduler.StatusSucceeded:
			log.Debug("    converted %s -> %s", path.Base(r.Source), path.Base(r.Target))
		case scheduler.StatusSkipped:
			log.Debug("    up to date %s", path.Base(r.Target))
		}
	}
}

func plural(n int, noun string) string {
	return itoa(n) + " " + display.Plural(n, noun)
}

// shortID returns the first block of a UUID for log lines.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

func itoa(n int) string { return strconv.Itoa(n) }
