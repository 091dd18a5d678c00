// Package material turns resolved texture groups into TextureAssets and
// binds them to the shading slots of MaterialSpecs.
//
// Assets are keyed by canonical path; all tiles of a UDIM sequence share one
// asset. Materials are keyed by (folder, material name) and kept in the order
// their first asset was seen. Each slot holds at most one asset; the first
// asset wins and later ones are listed as unassigned with a WarnSlotConflict.
package material

import (
	"path"
	"slices"

	"github.com/backmassage/texmtlx/internal/classify"
	"github.com/backmassage/texmtlx/internal/udim"
)

// Slot is a shading input of a MaterialSpec.
type Slot string

const (
	SlotBaseColor         Slot = "base_color"
	SlotMetalness         Slot = "metalness"
	SlotSpecularRoughness Slot = "specular_roughness"
	SlotNormal            Slot = "normal"
	SlotDisplacement      Slot = "displacement"
	SlotEmission          Slot = "emission"
	SlotOpacity           Slot = "opacity"
)

// Slots lists every slot in presentation order.
var Slots = []Slot{
	SlotBaseColor,
	SlotMetalness,
	SlotSpecularRoughness,
	SlotNormal,
	SlotDisplacement,
	SlotEmission,
	SlotOpacity,
}

// roleSlots maps every known role to exactly one slot.
var roleSlots = map[classify.Role]Slot{
	classify.RoleBaseColor:    SlotBaseColor,
	classify.RoleMetallic:     SlotMetalness,
	classify.RoleRoughness:    SlotSpecularRoughness,
	classify.RoleNormal:       SlotNormal,
	classify.RoleDisplacement: SlotDisplacement,
	classify.RoleEmission:     SlotEmission,
	classify.RoleOpacity:      SlotOpacity,
}

// SlotFor returns the slot for role; ok is false for RoleUnknown.
func SlotFor(role classify.Role) (Slot, bool) {
	s, ok := roleSlots[role]
	return s, ok
}

// Order returns the position of s in Slots, or len(Slots) if unknown.
func (s Slot) Order() int {
	if i := slices.Index(Slots, s); i >= 0 {
		return i
	}
	return len(Slots)
}

// TextureAsset is one texture file or one UDIM tile sequence.
type TextureAsset struct {
	RawPath       string              `json:"raw_path" yaml:"raw_path"`
	RawPaths      []string            `json:"raw_paths" yaml:"raw_paths"`
	CanonicalPath string              `json:"canonical_path" yaml:"canonical_path"`
	Role          classify.Role       `json:"role" yaml:"role"`
	Colorspace    classify.Colorspace `json:"colorspace" yaml:"colorspace"`
	IsUDIM        bool                `json:"is_udim" yaml:"is_udim"`
	TileIDs       []int               `json:"tile_ids,omitempty" yaml:"tile_ids,omitempty"`
	Material      string              `json:"material" yaml:"material"`
	Resolution    string              `json:"resolution,omitempty" yaml:"resolution,omitempty"`
}

// Key is the asset identity.
func (a TextureAsset) Key() string { return a.CanonicalPath }

// TileCount is the number of files in the asset.
func (a TextureAsset) TileCount() int {
	if !a.IsUDIM {
		return 1
	}
	return len(a.TileIDs)
}

// MaterialSlot binds zero or one asset to a slot.
type MaterialSlot struct {
	Slot  Slot
	Asset *TextureAsset
}

// MaterialSpec is one material and its bound textures.
type MaterialSpec struct {
	Name   string
	Folder string
	Slots  map[Slot]MaterialSlot
}

// Bound returns the occupied slots in Slots order.
func (m MaterialSpec) Bound() []MaterialSlot {
	var out []MaterialSlot
	for _, s := range Slots {
		if ms, ok := m.Slots[s]; ok && ms.Asset != nil {
			out = append(out, ms)
		}
	}
	return out
}

// Result is everything Build derives from one set of groups.
type Result struct {
	// Assets in discovery order, unknown roles included.
	Assets    []TextureAsset
	Materials []MaterialSpec
	// Unassigned holds unknown roles and slot-conflict losers, in order.
	Unassigned []TextureAsset
	Warnings   []Warning
}

// NewAsset classifies a resolved group.
func NewAsset(g udim.Group) (TextureAsset, classify.Classification) {
	raw := g.RawPaths[0]
	c := classify.Classify(raw)
	a := TextureAsset{
		RawPath:       raw,
		RawPaths:      slices.Clone(g.RawPaths),
		CanonicalPath: g.CanonicalPath,
		Role:          c.Role,
		Colorspace:    c.Colorspace,
		IsUDIM:        g.IsUDIM,
		TileIDs:       slices.Clone(g.Tiles),
		Material:      classify.MaterialName(raw),
		Resolution:    classify.SizeTag(raw),
	}
	return a, c
}

// Build classifies every group and assembles materials. Groups without a
// raw path are ignored.
func Build(groups []udim.Group) Result {
	var res Result
	index := make(map[materialKey]int)

	for _, g := range groups {
		if len(g.RawPaths) == 0 {
			continue
		}
		asset, c := NewAsset(g)
		res.Assets = append(res.Assets, asset)

		if g.Ambiguous {
			res.Warnings = append(res.Warnings, ambiguousWarning(asset, g))
		}
		if c.UnsafeTag {
			res.Warnings = append(res.Warnings, unsafeTagWarning(asset, c))
		}

		slot, ok := SlotFor(asset.Role)
		if !ok {
			res.Unassigned = append(res.Unassigned, asset)
			res.Warnings = append(res.Warnings, unknownRoleWarning(asset))
			continue
		}

		key := materialKey{folder: path.Dir(asset.CanonicalPath), name: asset.Material}
		i, seen := index[key]
		if !seen {
			i = len(res.Materials)
			index[key] = i
			res.Materials = append(res.Materials, MaterialSpec{
				Name:   key.name,
				Folder: key.folder,
				Slots:  make(map[Slot]MaterialSlot),
			})
		}
		spec := &res.Materials[i]
		if existing, taken := spec.Slots[slot]; taken {
			res.Unassigned = append(res.Unassigned, asset)
			res.Warnings = append(res.Warnings, conflictWarning(asset, *existing.Asset, slot))
			continue
		}
		a := asset
		spec.Slots[slot] = MaterialSlot{Slot: slot, Asset: &a}
	}
	return res
}

type materialKey struct {
	folder string
	name   string
}
