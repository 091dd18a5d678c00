package material

import (
	"fmt"
	"strconv"

	"github.com/backmassage/texmtlx/internal/classify"
	"github.com/backmassage/texmtlx/internal/udim"
)

// WarningKind identifies a non-fatal problem found while building materials.
type WarningKind string

const (
	// WarnRoleUnknown: no role keyword matched; the asset is unassigned.
	WarnRoleUnknown WarningKind = "role_unknown"
	// WarnUDIMAmbiguous: several tile tokens in one name; the rightmost was used.
	WarnUDIMAmbiguous WarningKind = "udim_ambiguous"
	// WarnUnsafeColorspaceTag: a color tag on a data map was ignored.
	WarnUnsafeColorspaceTag WarningKind = "unsafe_colorspace_tag"
	// WarnSlotConflict: the slot already had an asset; this one was dropped.
	WarnSlotConflict WarningKind = "slot_conflict"
	// WarnTargetCollision: another source already produces this file's
	// conversion target; the file was not converted.
	WarnTargetCollision WarningKind = "target_collision"
)

// Warning is keyed to the asset it concerns by canonical path.
type Warning struct {
	Kind    WarningKind `json:"kind" yaml:"kind"`
	Asset   string      `json:"asset" yaml:"asset"`
	Message string      `json:"message" yaml:"message"`
}

func (w Warning) String() string {
	return string(w.Kind) + ": " + w.Asset + ": " + w.Message
}

func unknownRoleWarning(a TextureAsset) Warning {
	return Warning{
		Kind:    WarnRoleUnknown,
		Asset:   a.Key(),
		Message: "no role keyword in filename; colorspace defaults to " + string(classify.ColorspaceRaw),
	}
}

func ambiguousWarning(a TextureAsset, g udim.Group) Warning {
	var cands []int
	for _, s := range g.Stubs {
		if s.Ambiguous() {
			cands = s.Candidates
			break
		}
	}
	return Warning{
		Kind:    WarnUDIMAmbiguous,
		Asset:   a.Key(),
		Message: fmt.Sprintf("several tile tokens %v; using the rightmost", cands),
	}
}

func unsafeTagWarning(a TextureAsset, c classify.Classification) Warning {
	return Warning{
		Kind:    WarnUnsafeColorspaceTag,
		Asset:   a.Key(),
		Message: strconv.Quote(c.Tag) + " tag ignored on " + string(c.Role) + " map; using " + string(c.Colorspace),
	}
}

func conflictWarning(a, kept TextureAsset, slot Slot) Warning {
	return Warning{
		Kind:    WarnSlotConflict,
		Asset:   a.Key(),
		Message: fmt.Sprintf("slot %s of material %q already bound to %s", slot, a.Material, kept.Key()),
	}
}
