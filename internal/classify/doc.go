// Package classify infers a texture's shading role and default colorspace
// from its filename alone.
//
// Filenames are split into lower-cased tokens on '_', '-', '.' and space
// (extension removed). [Rules] is an ordered keyword table evaluated by
// [Classify]; the first rule with a keyword equal to any token wins. The
// leading token of a multi-token name is the material name and is never
// matched, so "metal_rough.png" is a roughness map of material "metal".
// Colorspace comes from a per-role table, refined by the file extension
// (HDR containers hold linear color) and by explicit tags such as "srgb"
// or "acescg". A color tag on a data map is ignored and reported as unsafe.
//
// [MaterialName] and [SizeTag] derive the grouping name and resolution tag
// from the same tokens. Everything here is pure and deterministic.
package classify
