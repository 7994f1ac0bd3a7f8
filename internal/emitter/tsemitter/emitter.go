// Package tsemitter persists generated validator modules and request
// templates as a TypeScript project tree: schemas/ for named validators,
// requests/ mirroring the API's path structure, plus minimal project
// scaffolding so the output typechecks out of the box.
package tsemitter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/zodwire/zodwire/internal/gen"
)

// Options controls how the emitter renders a project.
type Options struct {
	OutDir      string // required; target directory to write the project
	PackageName string // npm package name; derived from the spec title when empty
	Title       string // spec title, used to derive PackageName
	Force       bool   // overwrite existing files
	DryRun      bool   // don't write, only plan
	Verbose     bool
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

// Result returns the planned files and final resolved names.
type Result struct {
	PackageName string
	Planned     []PlannedFile
}

// Emit writes one file per schema module under schemas/, one per template
// under requests/, and the project scaffold. The plan is sorted so output
// listing is deterministic; writes go through a temp file and rename.
func Emit(ctx context.Context, modules []gen.SchemaModule, templates []gen.Template, opts Options) (*Result, error) {
	_ = ctx
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("tsemitter: OutDir is required")
	}
	pkgName := sanitizePackageName(opts.PackageName)
	if pkgName == "" {
		pkgName = sanitizePackageName(opts.Title)
	}
	if pkgName == "" {
		pkgName = "generated-client"
	}

	files := map[string][]byte{}
	files["package.json"] = []byte(renderPackageJSON(pkgName))
	files["tsconfig.json"] = []byte(renderTSConfig())
	files[".prettierrc.json"] = []byte(renderPrettierRC())

	for _, m := range modules {
		files[filepath.Join("schemas", m.FileName)] = []byte(m.Source)
	}
	if len(modules) == 0 {
		files[filepath.Join("schemas", ".gitkeep")] = []byte{}
	}
	for _, t := range templates {
		files[filepath.Join("requests", filepath.FromSlash(t.FilePath))] = []byte(t.Source)
	}
	if len(templates) == 0 {
		files[filepath.Join("requests", ".gitkeep")] = []byte{}
	}

	rels := make([]string, 0, len(files))
	for p := range files {
		rels = append(rels, filepath.ToSlash(p))
	}
	sort.Strings(rels)

	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		planned = append(planned, PlannedFile{RelPath: rel, Size: len(files[filepath.FromSlash(rel)]), Mode: 0o644})
	}

	if !opts.DryRun {
		if err := writeFiles(opts.OutDir, files, opts.Force); err != nil {
			return nil, err
		}
	}

	return &Result{PackageName: pkgName, Planned: planned}, nil
}

func writeFiles(outDir string, files map[string][]byte, force bool) error {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	// Pre-flight: refuse to write into a non-empty directory without force.
	if st, err := os.Stat(abs); err == nil && st.IsDir() && !force {
		entries, rerr := os.ReadDir(abs)
		if rerr == nil && len(entries) > 0 {
			return fmt.Errorf("tsemitter: output directory %q is not empty (use --force to overwrite)", abs)
		}
	}
	for rel, content := range files {
		p := filepath.Join(abs, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
		// atomic write via temp file + rename
		tmp := p + ".tmp-" + time.Now().Format("20060102150405")
		if err := os.WriteFile(tmp, content, 0o644); err != nil {
			return fmt.Errorf("write temp %s: %w", rel, err)
		}
		if err := os.Rename(tmp, p); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("rename %s: %w", rel, err)
		}
	}
	return nil
}

func sanitizePackageName(name string) string {
	// Simplified npm name sanitizer; keeps lowercase, digit, dash,
	// underscore and dot.
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.ReplaceAll(name, "/", "-")
	b := strings.Builder{}
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	out = strings.Trim(out, "-.")
	return out
}
