package gen

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zodwire/zodwire/internal/spec"
)

func TestCompileFilter_Empty(t *testing.T) {
	t.Parallel()
	f, err := CompileFilter("")
	if err != nil {
		t.Fatalf("empty filter: %v", err)
	}
	if f != nil {
		t.Fatalf("empty filter must be nil")
	}
	ok, err := f.Match(spec.PathEntry{Path: "/x"}, spec.Operation{Method: "GET"})
	if err != nil || !ok {
		t.Fatalf("nil filter must match everything, got %v %v", ok, err)
	}
}

func TestCompileFilter_Invalid(t *testing.T) {
	t.Parallel()
	if _, err := CompileFilter("method =="); err == nil {
		t.Fatalf("expected compile error")
	}
}

func TestFilter_MethodAndPath(t *testing.T) {
	t.Parallel()
	f, err := CompileFilter(`method == "GET" && path contains "/users"`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	ok, err := f.Match(spec.PathEntry{Path: "/users/{id}"}, spec.Operation{Method: "GET"})
	if err != nil || !ok {
		t.Fatalf("expected match, got %v %v", ok, err)
	}
	ok, err = f.Match(spec.PathEntry{Path: "/users/{id}"}, spec.Operation{Method: "POST"})
	if err != nil || ok {
		t.Fatalf("expected no match, got %v %v", ok, err)
	}
}

func TestFilter_Tags(t *testing.T) {
	t.Parallel()
	f, err := CompileFilter(`"admin" in tags`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	ok, err := f.Match(spec.PathEntry{}, spec.Operation{Tags: []string{"admin", "users"}})
	if err != nil || !ok {
		t.Fatalf("expected tag match, got %v %v", ok, err)
	}
	// Operations without tags still evaluate, they just never contain one.
	ok, err = f.Match(spec.PathEntry{}, spec.Operation{})
	if err != nil || ok {
		t.Fatalf("expected no match on missing tags, got %v %v", ok, err)
	}
}

func TestFilterDocument(t *testing.T) {
	t.Parallel()
	doc := &spec.Document{
		Schemas: []spec.NamedSchema{{Name: "User", Schema: &spec.SchemaNode{Type: []string{"object"}}}},
		Paths: []spec.PathEntry{
			{Path: "/users", Operations: []spec.Operation{
				{Method: "GET"},
				{Method: "POST"},
			}},
			{Path: "/admin", Operations: []spec.Operation{
				{Method: "POST"},
			}},
		},
	}
	f, err := CompileFilter(`method == "GET"`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	got, err := FilterDocument(doc, f)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}

	// /admin lost its only operation and drops out entirely.
	var kept []string
	for _, entry := range got.Paths {
		for _, op := range entry.Operations {
			kept = append(kept, op.Method+" "+entry.Path)
		}
	}
	if diff := cmp.Diff([]string{"GET /users"}, kept); diff != "" {
		t.Fatalf("kept operations (-want +got):\n%s", diff)
	}

	// Named schemas are never filtered.
	if len(got.Schemas) != 1 {
		t.Fatalf("schemas = %d, want 1", len(got.Schemas))
	}

	// The input document is untouched.
	if len(doc.Paths) != 2 || len(doc.Paths[0].Operations) != 2 {
		t.Fatalf("source document mutated: %+v", doc.Paths)
	}
}

func TestFilterDocument_NilFilterPassesThrough(t *testing.T) {
	t.Parallel()
	doc := &spec.Document{Paths: []spec.PathEntry{{Path: "/a", Operations: []spec.Operation{{Method: "GET"}}}}}
	got, err := FilterDocument(doc, nil)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if got != doc {
		t.Fatalf("nil filter must return the same document")
	}
}

func TestFilter_SummaryField(t *testing.T) {
	t.Parallel()
	f, err := CompileFilter(`not (summary contains "deprecated")`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	ok, err := f.Match(spec.PathEntry{}, spec.Operation{Summary: "List users"})
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if !ok {
		t.Fatalf("expected match")
	}
	ok, err = f.Match(spec.PathEntry{}, spec.Operation{Summary: "List users (deprecated)"})
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if ok {
		t.Fatalf("expected no match for deprecated summary")
	}
	if !strings.Contains(f.src, "deprecated") {
		t.Fatalf("filter source lost")
	}
}
