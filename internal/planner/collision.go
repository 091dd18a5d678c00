package planner

import (
	"fmt"

	"github.com/backmassage/texmtlx/internal/material"
)

// Collision records a source whose target path was already claimed by an
// earlier source, e.g. brick_col.png and brick_col.exr both mapping to
// brick_col.tx. The later source is not planned.
type Collision struct {
	Source string
	Target string
	Owner  string
	// AssetKey is the canonical path of the asset Source belongs to.
	AssetKey string
}

func (c Collision) String() string {
	return fmt.Sprintf("%s: target %s already produced by %s", c.Source, c.Target, c.Owner)
}

// Warning returns the collision as a report warning on the losing asset.
func (c Collision) Warning() material.Warning {
	return material.Warning{
		Kind:    material.WarnTargetCollision,
		Asset:   c.AssetKey,
		Message: fmt.Sprintf("not converted: target %s already produced by %s", c.Target, c.Owner),
	}
}

// targetClaims tracks which source owns each target path within one plan.
type targetClaims map[string]string

// claim registers src as the producer of target. It returns the current
// owner and false when another source got there first.
func (tc targetClaims) claim(src, target string) (string, bool) {
	owner, exists := tc[target]
	if !exists || owner == src {
		tc[target] = src
		return src, true
	}
	return owner, false
}
