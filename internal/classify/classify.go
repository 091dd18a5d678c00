package classify

import (
	"path"
	"slices"
	"strings"
)

// Classification is the result of classifying one filename.
type Classification struct {
	Role       Role
	Colorspace Colorspace
	// Keyword is the table keyword that matched; empty for RoleUnknown.
	Keyword string
	// Tag is the explicit colorspace token found in the name, if any.
	Tag string
	// UnsafeTag is set when a color tag was found on a data map and ignored.
	UnsafeTag bool
}

// Classify returns the role and colorspace for filename. Only the base name
// is inspected; directories are ignored. In multi-token names the first
// token is the material name and never selects a role.
func Classify(filename string) Classification {
	tokens := Tokens(filename)
	role, keyword := matchRole(roleTokens(tokens))

	c := Classification{
		Role:       role,
		Colorspace: ColorspaceFor(role),
		Keyword:    keyword,
	}

	if isColorRole(role) && hdrExtensions[strings.ToLower(path.Ext(baseName(filename)))] {
		c.Colorspace = ColorspaceSceneLinear
	}

	// Only the first colorspace tag counts.
	for _, tok := range tokens {
		cs, ok := colorspaceTags[tok]
		if !ok {
			continue
		}
		c.Tag = tok
		if isColorRole(role) {
			c.Colorspace = cs
		} else if cs != ColorspaceRaw {
			c.UnsafeTag = true
		}
		return c
	}
	return c
}

// ColorspaceFor returns the default colorspace for role. Total: unknown roles are raw.
func ColorspaceFor(role Role) Colorspace {
	if cs, ok := colorspaceTable[role]; ok {
		return cs
	}
	return ColorspaceRaw
}

// Tokens splits the extension-less base name of filename into lower-cased
// tokens on '_', '-', '.' and space.
func Tokens(filename string) []string {
	base := baseName(filename)
	stem := strings.TrimSuffix(base, path.Ext(base))
	return strings.FieldsFunc(strings.ToLower(stem), isSeparator)
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == '.' || r == ' '
}

func isColorRole(role Role) bool {
	return role == RoleBaseColor || role == RoleEmission
}

// roleTokens drops the leading material-name token when there is more
// than one token.
func roleTokens(tokens []string) []string {
	if len(tokens) > 1 {
		return tokens[1:]
	}
	return tokens
}

// matchRole walks Rules in priority order and returns the first role with a
// keyword equal to any token.
func matchRole(tokens []string) (Role, string) {
	for _, rule := range Rules {
		for _, kw := range rule.Keywords {
			if slices.Contains(tokens, kw) {
				return rule.Role, kw
			}
		}
	}
	return RoleUnknown, ""
}

// isRoleToken reports whether tok is a keyword of any rule.
func isRoleToken(tok string) bool {
	for _, rule := range Rules {
		if slices.Contains(rule.Keywords, tok) {
			return true
		}
	}
	return false
}

// baseName returns the last element of p, accepting both '/' and '\' as
// separators so Windows paths classify the same as POSIX ones.
func baseName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}
