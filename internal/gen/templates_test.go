package gen

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zodwire/zodwire/internal/spec"
)

func TestCleanPath(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want string
	}{
		{"/users/{user_id}/profile", "users/{user_id}/profile"},
		{"/", "root"},
		{"", "root"},
		{"//pets//toys/", "pets/toys"},
		{"plain", "plain"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			if got := cleanPath(tc.in); got != tc.want {
				t.Fatalf("cleanPath(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestBuildTemplates_FilePathDerivation(t *testing.T) {
	t.Parallel()
	doc := &spec.Document{
		Paths: []spec.PathEntry{
			{Path: "/users/{user_id}/profile", Operations: []spec.Operation{{Method: "GET"}}},
			{Path: "/", Operations: []spec.Operation{{Method: "POST"}}},
		},
	}
	templates := BuildTemplates(doc)
	if len(templates) != 2 {
		t.Fatalf("templates = %d, want 2", len(templates))
	}
	if templates[0].FilePath != "users/{user_id}/profile/get.ts" {
		t.Fatalf("file path = %q", templates[0].FilePath)
	}
	if templates[1].FilePath != "root/post.ts" {
		t.Fatalf("root file path = %q", templates[1].FilePath)
	}
}

func TestBuildTemplates_NoRequestBodyIsNever(t *testing.T) {
	t.Parallel()
	doc := &spec.Document{
		Paths: []spec.PathEntry{{
			Path:       "/things",
			Operations: []spec.Operation{{Method: "GET"}},
		}},
	}
	tpl := BuildTemplates(doc)[0]
	if !strings.Contains(tpl.Source, "export const inputSchema = z.never();") {
		t.Fatalf("input must be never:\n%s", tpl.Source)
	}
	// Under a never input, render reports the absent-input marker instead of
	// validating body fields.
	if !strings.Contains(tpl.Source, "return { input: null, query: querySchema.parse(query) };") {
		t.Fatalf("render must return the absent-input marker:\n%s", tpl.Source)
	}
	if strings.Contains(tpl.Source, "inputSchema.parse") {
		t.Fatalf("render must not validate against a never input:\n%s", tpl.Source)
	}
}

func TestBuildTemplates_EmptyBodyContentIsNever(t *testing.T) {
	t.Parallel()
	doc := &spec.Document{
		Paths: []spec.PathEntry{{
			Path: "/things",
			Operations: []spec.Operation{{
				Method:      "POST",
				RequestBody: &spec.RequestBody{Required: true},
			}},
		}},
	}
	tpl := BuildTemplates(doc)[0]
	if !strings.Contains(tpl.Source, "export const inputSchema = z.never();") {
		t.Fatalf("bodyless content must compile to never:\n%s", tpl.Source)
	}
}

func TestBuildTemplates_OnlyErrorResponseIsNever(t *testing.T) {
	t.Parallel()
	doc := &spec.Document{
		Paths: []spec.PathEntry{{
			Path: "/missing",
			Operations: []spec.Operation{{
				Method: "GET",
				Responses: []spec.Response{
					{Status: "404", Description: "not found"},
				},
			}},
		}},
	}
	tpl := BuildTemplates(doc)[0]
	if !strings.Contains(tpl.Source, "export const outputSchema = z.never();") {
		t.Fatalf("404-only responses must compile output to never:\n%s", tpl.Source)
	}
}

func TestSuccessResponse_Priority(t *testing.T) {
	t.Parallel()
	// 200 wins even when declared after 201 and 202.
	responses := []spec.Response{
		{Status: "202", Description: "accepted"},
		{Status: "201", Description: "created"},
		{Status: "200", Description: "ok"},
	}
	got, ok := successResponse(responses)
	if !ok || got.Status != "200" {
		t.Fatalf("got %v %v, want 200", got.Status, ok)
	}

	// Without a numeric match, the first description containing "success"
	// (any case) is picked.
	responses = []spec.Response{
		{Status: "404", Description: "not found"},
		{Status: "299", Description: "Partial Success"},
		{Status: "298", Description: "also successful"},
	}
	got, ok = successResponse(responses)
	if !ok || got.Status != "299" {
		t.Fatalf("got %v %v, want 299", got.Status, ok)
	}

	if _, ok := successResponse([]spec.Response{{Status: "500", Description: "boom"}}); ok {
		t.Fatalf("expected no success response")
	}
}

func TestPreferredMedia(t *testing.T) {
	t.Parallel()
	strSchema := &spec.SchemaNode{Type: []string{"string"}}
	intSchema := &spec.SchemaNode{Type: []string{"integer"}}

	// application/json wins over earlier declarations.
	m, ok := preferredMedia([]spec.Media{
		{Mime: "text/plain", Schema: strSchema},
		{Mime: "application/json", Schema: intSchema},
	})
	if !ok || m.Mime != "application/json" {
		t.Fatalf("got %v %v", m.Mime, ok)
	}

	// A charset parameter still counts as JSON.
	m, ok = preferredMedia([]spec.Media{
		{Mime: "text/plain", Schema: strSchema},
		{Mime: "application/json; charset=utf-8", Schema: intSchema},
	})
	if !ok || !isJSONMime(m.Mime) {
		t.Fatalf("charset variant not preferred: %v %v", m.Mime, ok)
	}

	// No JSON: first declared wins.
	m, ok = preferredMedia([]spec.Media{
		{Mime: "application/xml", Schema: strSchema},
		{Mime: "text/csv", Schema: intSchema},
	})
	if !ok || m.Mime != "application/xml" {
		t.Fatalf("got %v %v, want first declared", m.Mime, ok)
	}

	if _, ok := preferredMedia(nil); ok {
		t.Fatalf("empty content must not match")
	}
}

func TestBuildTemplates_QueryKeysAndQuoting(t *testing.T) {
	t.Parallel()
	doc := &spec.Document{
		Paths: []spec.PathEntry{{
			Path: "/search",
			Operations: []spec.Operation{{
				Method: "GET",
				Parameters: []spec.Parameter{
					{Name: "status", In: "query", Required: true, Schema: &spec.SchemaNode{Type: []string{"string"}}},
					{Name: "filter[status]", In: "query", Schema: &spec.SchemaNode{Type: []string{"string"}}},
					{Name: "X-Trace", In: "header", Schema: &spec.SchemaNode{Type: []string{"string"}}},
				},
			}},
		}},
	}
	tpl := BuildTemplates(doc)[0]
	want := `export const querySchema = z.object({ status: z.string(), "filter[status]": z.string().optional() });`
	if !strings.Contains(tpl.Source, want) {
		t.Fatalf("query schema mismatch, want %s in:\n%s", want, tpl.Source)
	}
	if !strings.Contains(tpl.Source, `const queryKeys = ["status", "filter[status]"];`) {
		t.Fatalf("query keys mismatch:\n%s", tpl.Source)
	}
	if strings.Contains(tpl.Source, "X-Trace") {
		t.Fatalf("header parameters must not leak into the query schema:\n%s", tpl.Source)
	}
}

func TestBuildTemplates_EmptyQueryStillValidates(t *testing.T) {
	t.Parallel()
	doc := &spec.Document{
		Paths: []spec.PathEntry{{
			Path:       "/ping",
			Operations: []spec.Operation{{Method: "GET"}},
		}},
	}
	tpl := BuildTemplates(doc)[0]
	if !strings.Contains(tpl.Source, "export const querySchema = z.object({});") {
		t.Fatalf("empty query must be an empty object:\n%s", tpl.Source)
	}
	if !strings.Contains(tpl.Source, "querySchema.parse(query)") {
		t.Fatalf("query must always be validated:\n%s", tpl.Source)
	}
}

func TestBuildTemplates_PathLevelParametersMerge(t *testing.T) {
	t.Parallel()
	doc := &spec.Document{
		Paths: []spec.PathEntry{{
			Path: "/users/{id}/posts",
			Parameters: []spec.Parameter{
				{Name: "lang", In: "query", Schema: &spec.SchemaNode{Type: []string{"string"}}},
				{Name: "limit", In: "query", Schema: &spec.SchemaNode{Type: []string{"integer"}}},
			},
			Operations: []spec.Operation{{
				Method: "GET",
				Parameters: []spec.Parameter{
					// Overrides the path-level declaration of the same name.
					{Name: "limit", In: "query", Required: true, Schema: &spec.SchemaNode{Type: []string{"integer"}, Maximum: fptr(100)}},
					{Name: "after", In: "query", Schema: &spec.SchemaNode{Type: []string{"string"}}},
				},
			}},
		}},
	}
	tpl := BuildTemplates(doc)[0]
	want := "export const querySchema = z.object({ lang: z.string().optional(), limit: z.number().int().lte(100), after: z.string().optional() });"
	if !strings.Contains(tpl.Source, want) {
		t.Fatalf("merged query mismatch, want %s in:\n%s", want, tpl.Source)
	}
}

func TestBuildTemplates_ImportOrderAndDepth(t *testing.T) {
	t.Parallel()
	doc := &spec.Document{
		Paths: []spec.PathEntry{{
			Path: "/users/{user_id}/orders",
			Operations: []spec.Operation{{
				Method: "POST",
				Parameters: []spec.Parameter{
					{Name: "dryRun", In: "query", Schema: &spec.SchemaNode{Ref: "#/components/schemas/Flag"}},
				},
				RequestBody: &spec.RequestBody{Content: []spec.Media{
					{Mime: "application/json", Schema: &spec.SchemaNode{Ref: "#/components/schemas/OrderDraft"}},
				}},
				Responses: []spec.Response{{
					Status:      "201",
					Description: "created",
					Content: []spec.Media{
						{Mime: "application/json", Schema: &spec.SchemaNode{Ref: "#/components/schemas/Order"}},
					},
				}},
			}},
		}},
	}
	tpl := BuildTemplates(doc)[0]

	// First-seen order across input, query, output.
	if diff := cmp.Diff([]string{"OrderDraft", "Flag", "Order"}, tpl.Refs); diff != "" {
		t.Fatalf("refs (-want +got):\n%s", diff)
	}

	// users/{user_id}/orders/post.ts sits four directories below the output
	// root, so imports climb four levels.
	wantImport := `import { OrderDraftValidator } from "../../../../schemas/OrderDraft";`
	if !strings.Contains(tpl.Source, wantImport) {
		t.Fatalf("missing import %s in:\n%s", wantImport, tpl.Source)
	}

	idxDraft := strings.Index(tpl.Source, "schemas/OrderDraft")
	idxFlag := strings.Index(tpl.Source, "schemas/Flag")
	idxOrder := strings.Index(tpl.Source, "schemas/Order\"")
	if !(idxDraft < idxFlag && idxFlag < idxOrder) {
		t.Fatalf("import order wrong:\n%s", tpl.Source)
	}
}

func TestBuildTemplates_RefDedupAcrossSections(t *testing.T) {
	t.Parallel()
	ref := &spec.SchemaNode{Ref: "#/components/schemas/User"}
	doc := &spec.Document{
		Paths: []spec.PathEntry{{
			Path: "/users",
			Operations: []spec.Operation{{
				Method:      "PUT",
				RequestBody: &spec.RequestBody{Content: []spec.Media{{Mime: "application/json", Schema: ref}}},
				Responses: []spec.Response{{
					Status:  "200",
					Content: []spec.Media{{Mime: "application/json", Schema: ref}},
				}},
			}},
		}},
	}
	tpl := BuildTemplates(doc)[0]
	if diff := cmp.Diff([]string{"User"}, tpl.Refs); diff != "" {
		t.Fatalf("refs must de-duplicate (-want +got):\n%s", diff)
	}
	if strings.Count(tpl.Source, `from "../../schemas/User"`) != 1 {
		t.Fatalf("duplicate import emitted:\n%s", tpl.Source)
	}
}

func TestBuildTemplates_GoldenSource(t *testing.T) {
	t.Parallel()
	doc := &spec.Document{
		Paths: []spec.PathEntry{{
			Path: "/users/{user_id}",
			Operations: []spec.Operation{{
				Method: "PATCH",
				Parameters: []spec.Parameter{
					{Name: "notify", In: "query", Schema: &spec.SchemaNode{Type: []string{"boolean"}}},
				},
				RequestBody: &spec.RequestBody{Content: []spec.Media{{
					Mime:   "application/json",
					Schema: &spec.SchemaNode{Ref: "#/components/schemas/UserPatch"},
				}}},
				Responses: []spec.Response{{
					Status: "200",
					Content: []spec.Media{{
						Mime:   "application/json",
						Schema: &spec.SchemaNode{Ref: "#/components/schemas/User"},
					}},
				}},
			}},
		}},
	}
	tpl := BuildTemplates(doc)[0]

	want := `import { z } from "zod";
import { UserPatchValidator } from "../../../schemas/UserPatch";
import { UserValidator } from "../../../schemas/User";

export const method = "PATCH";
export const path = "/users/{user_id}";

export const inputSchema = UserPatchValidator;
export const querySchema = z.object({ notify: z.boolean().optional() });
export const outputSchema = UserValidator;

const queryKeys = ["notify"];

export function render(data: Record<string, unknown>) {
  const query: Record<string, unknown> = {};
  const body: Record<string, unknown> = {};
  for (const [key, value] of Object.entries(data ?? {})) {
    if (queryKeys.includes(key)) {
      query[key] = value;
    } else {
      body[key] = value;
    }
  }
  return { input: inputSchema.parse(body), query: querySchema.parse(query) };
}
`
	if diff := cmp.Diff(want, tpl.Source); diff != "" {
		t.Fatalf("template source (-want +got):\n%s", diff)
	}
}

func TestBuildTemplates_Deterministic(t *testing.T) {
	t.Parallel()
	doc := &spec.Document{
		Paths: []spec.PathEntry{
			{Path: "/b", Operations: []spec.Operation{{Method: "GET"}, {Method: "DELETE"}}},
			{Path: "/a", Operations: []spec.Operation{{Method: "POST"}}},
		},
	}
	first := BuildTemplates(doc)
	second := BuildTemplates(doc)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("non-deterministic build (-first +second):\n%s", diff)
	}
	// Declaration order, not alphabetical.
	order := make([]string, 0, len(first))
	for _, tpl := range first {
		order = append(order, tpl.FilePath)
	}
	if diff := cmp.Diff([]string{"b/get.ts", "b/delete.ts", "a/post.ts"}, order); diff != "" {
		t.Fatalf("template order (-want +got):\n%s", diff)
	}
}

func fptr(v float64) *float64 { return &v }
