package planner

import (
	"path/filepath"
	"strings"

	"github.com/backmassage/texmtlx/internal/config"
	"github.com/backmassage/texmtlx/internal/material"
	"github.com/backmassage/texmtlx/internal/probe"
)

// BuildJobs plans one ConversionJob per source file of assets, in asset
// order and, within an asset, in discovery order. It stats each source and
// its target so the scheduler can skip up-to-date work. The first source
// mapping to a target claims it; later ones are recorded as collisions.
func BuildJobs(cfg *config.Config, assets []material.TextureAsset) Plan {
	var plan Plan
	claims := targetClaims{}
	for _, a := range assets {
		for _, src := range a.RawPaths {
			if IsNative(src, cfg.TargetExt) {
				plan.Native++
				continue
			}
			job := ConversionJob{
				SourcePath: src,
				TargetPath: TargetPath(src, cfg.TargetExt),
				Force:      cfg.ForceNewer,
				AssetKey:   a.Key(),
			}
			if owner, ok := claims.claim(src, job.TargetPath); !ok {
				plan.Collisions = append(plan.Collisions, Collision{
					Source:   src,
					Target:   job.TargetPath,
					Owner:    owner,
					AssetKey: job.AssetKey,
				})
				continue
			}

			si, err := probe.Stat(job.SourcePath)
			if err != nil {
				plan.ProbeErrors = append(plan.ProbeErrors, err)
			} else if si.Exists {
				job.SourceMTime = si.ModTime
			}

			ti, err := probe.Stat(job.TargetPath)
			if err != nil {
				plan.ProbeErrors = append(plan.ProbeErrors, err)
			} else {
				job.TargetMTime = ti.ModTimePtr()
			}

			plan.Jobs = append(plan.Jobs, job)
		}
	}
	return plan
}

// TargetPath replaces the extension of src with ext, keeping the directory.
//
//	"/tex/brick_col_1001.exr", ".tx" -> "/tex/brick_col_1001.tx"
func TargetPath(src, ext string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + ext
}

// IsNative reports whether src already has the target extension.
func IsNative(src, ext string) bool {
	return strings.EqualFold(filepath.Ext(src), ext)
}
