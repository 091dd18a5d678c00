// Package report aggregates one batch into an immutable BatchReport.
//
// [Build] is pure aggregation over already-ordered inputs: materials in
// discovery order, entries in slot order, conversion results in job order,
// unassigned assets last. Completion order of conversions never shows up in
// the report. Presentation lives in [Render] (console) and [Export] (JSON
// or YAML file).
package report

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/backmassage/texmtlx/internal/material"
	"github.com/backmassage/texmtlx/internal/scheduler"
)

// Input is everything a report is built from.
type Input struct {
	Materials  []material.MaterialSpec
	Unassigned []material.TextureAsset
	Warnings   []material.Warning
	Results    []scheduler.Result
}

// BatchReport is the outcome of one batch. Built once, never mutated.
type BatchReport struct {
	ID         string             `json:"id" yaml:"id"`
	CreatedAt  time.Time          `json:"created_at" yaml:"created_at"`
	Materials  []Section          `json:"materials" yaml:"materials"`
	Unassigned []Entry            `json:"unassigned,omitempty" yaml:"unassigned,omitempty"`
	Warnings   []material.Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Totals     Totals             `json:"totals" yaml:"totals"`
}

// Section is one material.
type Section struct {
	Name    string  `json:"name" yaml:"name"`
	Folder  string  `json:"folder" yaml:"folder"`
	Entries []Entry `json:"entries" yaml:"entries"`
}

// Entry is one asset with its warnings and conversion results.
type Entry struct {
	Slot     material.Slot         `json:"slot,omitempty" yaml:"slot,omitempty"`
	Asset    material.TextureAsset `json:"asset" yaml:"asset"`
	Tiles    int                   `json:"tiles" yaml:"tiles"`
	Warnings []material.Warning    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Results  []JobResult           `json:"results,omitempty" yaml:"results,omitempty"`
}

// JobResult is the reported form of a scheduler.Result.
type JobResult struct {
	Source     string           `json:"source" yaml:"source"`
	Target     string           `json:"target" yaml:"target"`
	Status     scheduler.Status `json:"status" yaml:"status"`
	Error      string           `json:"error,omitempty" yaml:"error,omitempty"`
	DurationMS int64            `json:"duration_ms" yaml:"duration_ms"`
}

// Totals summarize the batch.
type Totals struct {
	Materials  int `json:"materials" yaml:"materials"`
	Assets     int `json:"assets" yaml:"assets"`
	Unassigned int `json:"unassigned" yaml:"unassigned"`
	Tiles      int `json:"tiles" yaml:"tiles"`
	Jobs       int `json:"jobs" yaml:"jobs"`
	Succeeded  int `json:"succeeded" yaml:"succeeded"`
	Skipped    int `json:"skipped" yaml:"skipped"`
	Failed     int `json:"failed" yaml:"failed"`
	Warnings   int `json:"warnings" yaml:"warnings"`
}

// OK reports whether no job failed.
func (r BatchReport) OK() bool { return r.Totals.Failed == 0 }

// Build aggregates in into a BatchReport with a fresh ID and timestamp.
func Build(in Input) BatchReport {
	results := make(map[string][]JobResult)
	for _, r := range in.Results {
		key := r.Job.AssetKey
		results[key] = append(results[key], JobResult{
			Source:     r.Job.SourcePath,
			Target:     r.Job.TargetPath,
			Status:     r.Status,
			Error:      r.Err,
			DurationMS: r.Duration.Milliseconds(),
		})
	}

	warnings := make(map[string][]material.Warning)
	for _, w := range in.Warnings {
		warnings[w.Asset] = append(warnings[w.Asset], w)
	}

	entry := func(slot material.Slot, a material.TextureAsset) Entry {
		return Entry{
			Slot:     slot,
			Asset:    cloneAsset(a),
			Tiles:    a.TileCount(),
			Warnings: slices.Clone(warnings[a.Key()]),
			Results:  slices.Clone(results[a.Key()]),
		}
	}

	rep := BatchReport{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Warnings:  slices.Clone(in.Warnings),
	}

	for _, m := range in.Materials {
		sec := Section{Name: m.Name, Folder: m.Folder}
		for _, ms := range m.Bound() {
			sec.Entries = append(sec.Entries, entry(ms.Slot, *ms.Asset))
		}
		rep.Materials = append(rep.Materials, sec)
	}
	for _, a := range in.Unassigned {
		rep.Unassigned = append(rep.Unassigned, entry("", a))
	}

	rep.Totals = totals(rep, in)
	return rep
}

func totals(rep BatchReport, in Input) Totals {
	t := Totals{
		Materials:  len(rep.Materials),
		Unassigned: len(rep.Unassigned),
		Jobs:       len(in.Results),
		Warnings:   len(in.Warnings),
	}
	count := func(e Entry) {
		t.Assets++
		t.Tiles += e.Tiles
	}
	for _, s := range rep.Materials {
		for _, e := range s.Entries {
			count(e)
		}
	}
	for _, e := range rep.Unassigned {
		count(e)
	}
	c := scheduler.Tally(in.Results)
	t.Succeeded, t.Skipped, t.Failed = c.Succeeded, c.Skipped, c.Failed
	return t
}

func cloneAsset(a material.TextureAsset) material.TextureAsset {
	a.RawPaths = slices.Clone(a.RawPaths)
	a.TileIDs = slices.Clone(a.TileIDs)
	return a
}
