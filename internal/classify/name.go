package classify

import (
	"regexp"
	"strings"
)

// DefaultMaterialName is used when nothing usable precedes the role token.
const DefaultMaterialName = "material"

var (
	reSizeTag   = regexp.MustCompile(`^([1-9]|1[0-6])k$`)
	reVersion   = regexp.MustCompile(`^v[0-9]+$`)
	reDigits    = regexp.MustCompile(`^[0-9]+$`)
	reNonSlug   = regexp.MustCompile(`[^a-z0-9_]+`)
	reMultiUnds = regexp.MustCompile(`_+`)
)

// MaterialName derives the material a texture belongs to: the tokens before
// the first role keyword (the leading token of a multi-token name always
// belongs to the material), minus colorspace tags, size tags, version tags and
// long digit runs (UDIM tiles, pixel sizes), slugified to [a-z0-9_].
//
//	"Tires_Alb_1001.exr"      -> "tires"
//	"rock_cliff_4k_rough.png" -> "rock_cliff"
//	"albedo.png"              -> "material"
//	"metal_rough.png"         -> "metal"
func MaterialName(filename string) string {
	tokens := Tokens(filename)

	var kept []string
	for i, tok := range tokens {
		if (i > 0 || len(tokens) == 1) && isRoleToken(tok) {
			break
		}
		if isNameNoise(tok) {
			continue
		}
		kept = append(kept, tok)
	}

	name := reNonSlug.ReplaceAllString(strings.Join(kept, "_"), "_")
	name = reMultiUnds.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if name == "" {
		return DefaultMaterialName
	}
	return name
}

func isNameNoise(tok string) bool {
	if _, ok := colorspaceTags[tok]; ok {
		return true
	}
	if nameNoise[tok] || reSizeTag.MatchString(tok) || reVersion.MatchString(tok) {
		return true
	}
	return reDigits.MatchString(tok) && len(tok) >= 3
}

// SizeTag returns the resolution token ("1k" through "16k") in filename, or
// "" when there is none. The first match wins.
func SizeTag(filename string) string {
	for _, tok := range Tokens(filename) {
		if reSizeTag.MatchString(tok) {
			return tok
		}
	}
	return ""
}
