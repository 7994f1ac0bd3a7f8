package tsemitter

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zodwire/zodwire/internal/gen"
)

func sampleUnits() ([]gen.SchemaModule, []gen.Template) {
	modules := []gen.SchemaModule{
		{
			Name:     "User",
			FileName: "User.ts",
			Source:   "import { z } from \"zod\";\n\nexport const UserValidator = z.object({});\nexport type User = z.infer<typeof UserValidator>;\n",
		},
	}
	templates := []gen.Template{
		{
			Method:   "GET",
			Path:     "/users/{id}",
			FilePath: "users/{id}/get.ts",
			Source:   "import { z } from \"zod\";\n\nexport const method = \"GET\";\n",
		},
	}
	return modules, templates
}

func TestEmit_DryRun_Plan(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	modules, templates := sampleUnits()
	res, err := Emit(ctx, modules, templates, Options{
		OutDir: dir,
		Title:  "Sample API",
		DryRun: true,
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if res.PackageName != "sample-api" {
		t.Fatalf("package name = %q", res.PackageName)
	}

	want := []string{
		"package.json",
		"tsconfig.json",
		".prettierrc.json",
		"schemas/User.ts",
		"requests/users/{id}/get.ts",
	}
	have := make(map[string]bool, len(res.Planned))
	for _, pf := range res.Planned {
		have[pf.RelPath] = true
	}
	for _, p := range want {
		if !have[p] {
			t.Fatalf("planned missing %s (plan: %+v)", p, res.Planned)
		}
	}

	// The plan is sorted.
	for i := 1; i < len(res.Planned); i++ {
		if res.Planned[i-1].RelPath >= res.Planned[i].RelPath {
			t.Fatalf("plan not sorted at %d: %+v", i, res.Planned)
		}
	}

	// Dry-run should not have written files.
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Fatalf("expected no files written on dry-run")
	}
}

func TestEmit_WriteAndContents(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	modules, templates := sampleUnits()
	_, err := Emit(ctx, modules, templates, Options{
		OutDir:      dir,
		PackageName: "My Client",
		Force:       true,
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "schemas", "User.ts"))
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if !strings.Contains(string(data), "export const UserValidator") {
		t.Fatalf("schema content: %s", string(data))
	}

	tpl, err := os.ReadFile(filepath.Join(dir, "requests", "users", "{id}", "get.ts"))
	if err != nil {
		t.Fatalf("read template: %v", err)
	}
	if !strings.Contains(string(tpl), `export const method = "GET";`) {
		t.Fatalf("template content: %s", string(tpl))
	}

	// package.json is valid JSON and carries the sanitized name.
	pkg, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		t.Fatalf("read package.json: %v", err)
	}
	var v map[string]any
	if err := json.Unmarshal(pkg, &v); err != nil {
		t.Fatalf("package.json invalid: %v", err)
	}
	if v["name"] != "my-client" {
		t.Fatalf("package name = %v", v["name"])
	}
}

func TestEmit_NoForce_NonEmptyDir(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "existing.txt"), []byte("x"), 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}
	modules, templates := sampleUnits()
	_, err := Emit(ctx, modules, templates, Options{OutDir: dir, Title: "t"})
	if err == nil {
		t.Fatalf("expected error on non-empty dir without force")
	}
}

func TestEmit_GitkeepForEmptySets(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	res, err := Emit(ctx, nil, nil, Options{OutDir: dir, Title: "empty"})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	have := make(map[string]bool, len(res.Planned))
	for _, pf := range res.Planned {
		have[pf.RelPath] = true
	}
	if !have["schemas/.gitkeep"] || !have["requests/.gitkeep"] {
		t.Fatalf("placeholders missing from plan: %+v", res.Planned)
	}
	if _, err := os.Stat(filepath.Join(dir, "schemas", ".gitkeep")); err != nil {
		t.Fatalf("schemas/.gitkeep: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "requests", ".gitkeep")); err != nil {
		t.Fatalf("requests/.gitkeep: %v", err)
	}
}

func TestEmit_RequiresOutDir(t *testing.T) {
	t.Parallel()
	if _, err := Emit(context.Background(), nil, nil, Options{}); err == nil {
		t.Fatalf("expected error for missing OutDir")
	}
}
