package generate

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Collect resolves Go-style patterns relative to cwd into absolute source
// paths, in first-seen order:
//
//	./...         recurse from cwd
//	./dir         only that directory
//	./dir/...     recurse from dir
//	./page.astro  only that file
func (g *Generator) Collect(cwd string, patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string

	add := func(p string) error {
		abs, err := absFrom(cwd, p)
		if err != nil {
			return err
		}
		if !seen[abs] {
			seen[abs] = true
			out = append(out, abs)
		}
		return nil
	}

	for _, raw := range patterns {
		pat := strings.TrimSpace(raw)
		if pat == "" {
			continue
		}

		if strings.HasSuffix(pat, "/...") || pat == "..." {
			base := strings.TrimSuffix(strings.TrimSuffix(pat, "..."), "/")
			if base == "" {
				base = "."
			}
			dir, err := absFrom(cwd, base)
			if err != nil {
				return nil, err
			}
			if err := g.walk(dir, add); err != nil {
				return nil, err
			}
			continue
		}

		target, err := absFrom(cwd, pat)
		if err != nil {
			return nil, err
		}
		st, err := os.Stat(target)
		if err != nil {
			return nil, err
		}
		if st.IsDir() {
			entries, err := os.ReadDir(target)
			if err != nil {
				return nil, err
			}
			for _, e := range entries {
				if e.IsDir() || !g.IsSource(e.Name()) {
					continue
				}
				if err := add(filepath.Join(target, e.Name())); err != nil {
					return nil, err
				}
			}
			continue
		}
		if !g.IsSource(target) {
			return nil, fmt.Errorf("directify: not a source file: %s", target)
		}
		if err := add(target); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// IsSource reports whether path has one of the configured extensions and is
// not itself a generated file.
func (g *Generator) IsSource(path string) bool {
	base := filepath.Base(path)
	for _, ext := range g.extensions {
		if !strings.HasSuffix(base, ext) {
			continue
		}
		stem := strings.TrimSuffix(base, ext)
		return stem != "" && !strings.HasSuffix(stem, g.suffix)
	}
	return false
}

// OutputPath maps a source path to its generated file: page.astro becomes
// page.gen.astro, mirrored under the output dir when one is set.
func (g *Generator) OutputPath(src string) (string, error) {
	ext := filepath.Ext(src)
	for _, e := range g.extensions {
		if strings.HasSuffix(src, e) {
			ext = e
			break
		}
	}
	name := strings.TrimSuffix(filepath.Base(src), ext) + g.suffix + ext
	if g.outDir == "" {
		return filepath.Join(filepath.Dir(src), name), nil
	}
	rel, err := filepath.Rel(g.root, filepath.Dir(src))
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("directify: %s is outside %s", src, g.root)
	}
	return filepath.Join(g.outDir, rel, name), nil
}

func (g *Generator) walk(root string, add func(string) error) error {
	return filepath.WalkDir(root, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() {
			if path != root && SkipDir(de.Name()) {
				return filepath.SkipDir
			}
			if g.outDir != "" && path == g.outDir {
				return filepath.SkipDir
			}
			return nil
		}
		if g.IsSource(de.Name()) {
			return add(path)
		}
		return nil
	})
}

// SkipDir reports directories never searched for sources.
func SkipDir(name string) bool {
	return name == "vendor" || name == "node_modules" || name == "dist" || strings.HasPrefix(name, ".")
}

func absFrom(cwd, p string) (string, error) {
	if !filepath.IsAbs(p) {
		p = filepath.Join(cwd, p)
	}
	return filepath.Abs(p)
}
