package pipeline

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// Supported texture file extensions (lowercase, with leading dot).
var textureExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".tga":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
	".exr":  true,
	".hdr":  true,
	".hdri": true,
	".dpx":  true,
	".pic":  true,
	".rat":  true,
	".tx":   true,
}

// IsTexture reports whether path has a supported texture extension.
func IsTexture(path string) bool {
	return textureExtensions[strings.ToLower(filepath.Ext(path))]
}

// DiscoverOptions controls Discover.
type DiscoverOptions struct {
	Recursive bool
	// Excludes are glob patterns matched against each entry's base name and
	// its slash-separated path relative to the input directory. A matching
	// directory is pruned.
	Excludes []string
}

// Discover walks each input directory, collects texture files, skips hidden
// entries and exclusions, and returns the paths of each directory sorted
// lexicographically, directories in argument order. A path reachable from
// two inputs is returned once.
func Discover(dirs []string, opts DiscoverOptions) ([]string, error) {
	excludes, err := compileExcludes(opts.Excludes)
	if err != nil {
		return nil, err
	}

	var all []string
	seen := make(map[string]bool)
	for _, dir := range dirs {
		files, err := discoverDir(dir, opts.Recursive, excludes)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if !seen[f] {
				seen[f] = true
				all = append(all, f)
			}
		}
	}
	return all, nil
}

func discoverDir(root string, recursive bool, excludes []glob.Glob) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, _ := filepath.Rel(root, path)
		skip := strings.HasPrefix(d.Name(), ".") || excluded(excludes, d.Name(), filepath.ToSlash(rel))
		if d.IsDir() {
			if skip || !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !skip && IsTexture(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

func compileExcludes(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func excluded(globs []glob.Glob, name, rel string) bool {
	for _, g := range globs {
		if g.Match(name) || g.Match(rel) {
			return true
		}
	}
	return false
}

// DropShadowed removes files in the target format whose source (same
// directory and stem, another extension) is also present: those are
// conversion outputs, not independent textures. Order is preserved.
func DropShadowed(paths []string, targetExt string) []string {
	sources := make(map[string]bool)
	for _, p := range paths {
		if !strings.EqualFold(filepath.Ext(p), targetExt) {
			sources[stem(p)] = true
		}
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if strings.EqualFold(filepath.Ext(p), targetExt) && sources[stem(p)] {
			continue
		}
		out = append(out, p)
	}
	return out
}

func stem(p string) string { return strings.TrimSuffix(p, filepath.Ext(p)) }
