// Package udim detects UDIM tile numbers in texture filenames and collapses
// tile sequences into one canonical path per sequence.
//
// A tile token is exactly four digits in [MinTile, MaxTile], delimited on
// both sides by the start or end of the filename stem or by '_', '.', '-'
// or space. Only the base name is scanned. When several tokens qualify the
// rightmost one is the tile and the stub is marked ambiguous.
//
// Before tokenization the path is normalized: separators become '/', and a
// leading project root (compared case-insensitively, ending on a segment
// boundary) is rewritten to [JobVar].
package udim

import (
	"path"
	"slices"
	"strconv"
	"strings"
)

const (
	// Placeholder replaces the tile token in canonical paths.
	Placeholder = "<UDIM>"
	// JobVar replaces the project root prefix.
	JobVar = "$JOB"

	MinTile = 1001
	MaxTile = 2999
)

// Stub is the resolution of one raw path.
type Stub struct {
	RawPath string
	// NormalizedPath is RawPath after separator and $JOB normalization.
	NormalizedPath string
	// CanonicalPath is NormalizedPath with the tile token replaced by Placeholder.
	CanonicalPath string
	IsUDIM        bool
	Tile          int // 0 when not UDIM.
	// Candidates lists every qualifying token, left to right.
	Candidates []int
}

// Ambiguous reports whether more than one tile token was found.
func (s Stub) Ambiguous() bool { return len(s.Candidates) > 1 }

// Resolver resolves paths against a fixed project root.
type Resolver struct {
	root string
}

// NewResolver returns a resolver that rewrites projectRoot to $JOB. An
// empty root disables the rewrite.
func NewResolver(projectRoot string) *Resolver {
	root := strings.TrimRight(toSlash(projectRoot), "/")
	return &Resolver{root: root}
}

// Root returns the normalized project root ("" when unset).
func (r *Resolver) Root() string { return r.root }

// Normalize converts separators to '/' and rewrites the project root prefix.
func (r *Resolver) Normalize(p string) string {
	p = toSlash(p)
	n := len(r.root)
	if n == 0 || len(p) < n || !strings.EqualFold(p[:n], r.root) {
		return p
	}
	if len(p) > n && p[n] != '/' {
		return p
	}
	return JobVar + p[n:]
}

// Resolve normalizes p and replaces its tile token, if any, with Placeholder.
func (r *Resolver) Resolve(p string) Stub {
	norm := r.Normalize(p)
	stub := Stub{RawPath: p, NormalizedPath: norm, CanonicalPath: norm}

	dir, base := path.Split(norm)
	stem := strings.TrimSuffix(base, path.Ext(base))

	spans := findTokens(stem)
	if len(spans) == 0 {
		return stub
	}
	for _, sp := range spans {
		stub.Candidates = append(stub.Candidates, sp.tile)
	}
	last := spans[len(spans)-1]
	stub.IsUDIM = true
	stub.Tile = last.tile
	stub.CanonicalPath = dir + base[:last.start] + Placeholder + base[last.end:]
	return stub
}

// Group is one texture: a single file or a whole tile sequence.
type Group struct {
	CanonicalPath string
	// RawPaths are the member paths in the order first seen.
	RawPaths []string
	// Tiles are the distinct tile numbers, ascending. Empty iff !IsUDIM.
	Tiles     []int
	IsUDIM    bool
	Ambiguous bool
	// Stubs holds each member's resolution, parallel to RawPaths.
	Stubs []Stub
}

// Group resolves paths and merges those sharing a canonical path. Groups are
// returned in order of first appearance.
func (r *Resolver) Group(paths []string) []Group {
	var groups []Group
	index := make(map[string]int)

	for _, p := range paths {
		stub := r.Resolve(p)
		i, ok := index[stub.CanonicalPath]
		if !ok {
			i = len(groups)
			index[stub.CanonicalPath] = i
			groups = append(groups, Group{CanonicalPath: stub.CanonicalPath})
		}
		g := &groups[i]
		g.RawPaths = append(g.RawPaths, p)
		g.Stubs = append(g.Stubs, stub)
		if stub.Ambiguous() {
			g.Ambiguous = true
		}
		if stub.IsUDIM {
			g.IsUDIM = true
			if !slices.Contains(g.Tiles, stub.Tile) {
				g.Tiles = append(g.Tiles, stub.Tile)
			}
		}
	}

	for i := range groups {
		slices.Sort(groups[i].Tiles)
	}
	return groups
}

// IsTile reports whether n is inside the UDIM tile range.
func IsTile(n int) bool { return n >= MinTile && n <= MaxTile }

type span struct {
	start, end int
	tile       int
}

// findTokens returns every delimited in-range four-digit run in stem.
func findTokens(stem string) []span {
	var out []span
	i := 0
	for i < len(stem) {
		if !isDigit(stem[i]) {
			i++
			continue
		}
		j := i
		for j < len(stem) && isDigit(stem[j]) {
			j++
		}
		if j-i == 4 && delimitedAt(stem, i-1) && delimitedAt(stem, j) {
			n, _ := strconv.Atoi(stem[i:j])
			if IsTile(n) {
				out = append(out, span{start: i, end: j, tile: n})
			}
		}
		i = j
	}
	return out
}

// delimitedAt reports whether position i is outside stem or holds a delimiter.
func delimitedAt(stem string, i int) bool {
	if i < 0 || i >= len(stem) {
		return true
	}
	switch stem[i] {
	case '_', '.', '-', ' ':
		return true
	}
	return false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func toSlash(p string) string { return strings.ReplaceAll(p, `\`, "/") }
