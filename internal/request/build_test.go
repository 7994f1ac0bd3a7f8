package request

import (
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuild_DefaultsScheme(t *testing.T) {
	t.Parallel()

	req, err := Build("GET", "example.com/users", nil)
	if err != nil {
		t.Fatalf("Build: unexpected error: %v", err)
	}
	if req.URL != "http://example.com/users" {
		t.Fatalf("URL = %q, want http scheme prefixed", req.URL)
	}
}

func TestBuild_KeepsExplicitScheme(t *testing.T) {
	t.Parallel()

	req, err := Build("GET", "https://example.com/users", nil)
	if err != nil {
		t.Fatalf("Build: unexpected error: %v", err)
	}
	if req.URL != "https://example.com/users" {
		t.Fatalf("URL = %q, want https preserved", req.URL)
	}
}

func TestBuild_RejectsNonHTTPScheme(t *testing.T) {
	t.Parallel()

	if _, err := Build("GET", "ftp://example.com/file", nil); err == nil {
		t.Fatal("expected error for ftp scheme")
	}
}

func TestBuild_EmptyTarget(t *testing.T) {
	t.Parallel()

	if _, err := Build("GET", "   ", nil); err == nil {
		t.Fatal("expected error for empty target")
	}
}

func TestBuild_MergesQueryItems(t *testing.T) {
	t.Parallel()

	items := []Item{
		{Kind: ItemQuery, Name: "page", Value: "2"},
		{Kind: ItemQuery, Name: "sort", Value: "name desc"},
	}
	req, err := Build("GET", "example.com/search?q=go", items)
	if err != nil {
		t.Fatalf("Build: unexpected error: %v", err)
	}
	u, err := url.Parse(req.URL)
	if err != nil {
		t.Fatalf("parse built URL: %v", err)
	}
	q := u.Query()
	if got := q.Get("q"); got != "go" {
		t.Errorf("existing query param q = %q, want %q", got, "go")
	}
	if got := q.Get("page"); got != "2" {
		t.Errorf("query param page = %q, want %q", got, "2")
	}
	if got := q.Get("sort"); got != "name desc" {
		t.Errorf("query param sort = %q, want %q", got, "name desc")
	}
}

func TestBuild_MethodDefaulting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		items  []Item
		want   string
	}{
		{name: "no body defaults to GET", method: "", want: "GET"},
		{
			name:   "body defaults to POST",
			method: "",
			items:  []Item{{Kind: ItemField, Name: "name", Value: "go"}},
			want:   "POST",
		},
		{name: "explicit method uppercased", method: "put", want: "PUT"},
		{
			name:   "explicit method beats body default",
			method: "patch",
			items:  []Item{{Kind: ItemField, Name: "name", Value: "go"}},
			want:   "PATCH",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req, err := Build(tt.method, "example.com", tt.items)
			if err != nil {
				t.Fatalf("Build: unexpected error: %v", err)
			}
			if req.Method != tt.want {
				t.Fatalf("Method = %q, want %q", req.Method, tt.want)
			}
		})
	}
}

func TestBuild_BodyFields(t *testing.T) {
	t.Parallel()

	items := []Item{
		{Kind: ItemField, Name: "name", Value: "Alice"},
		{Kind: ItemRawField, Name: "age", Value: "30"},
		{Kind: ItemRawField, Name: "active", Value: "true"},
		{Kind: ItemRawField, Name: "tags", Value: `["a","b"]`},
	}
	req, err := Build("", "example.com/users", items)
	if err != nil {
		t.Fatalf("Build: unexpected error: %v", err)
	}
	want := map[string]any{
		"name":   "Alice",
		"age":    float64(30),
		"active": true,
		"tags":   []any{"a", "b"},
	}
	if diff := cmp.Diff(want, req.Body); diff != "" {
		t.Fatalf("Body mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_RawFieldRejectsBadJSON(t *testing.T) {
	t.Parallel()

	items := []Item{{Kind: ItemRawField, Name: "payload", Value: "{broken"}}
	_, err := Build("POST", "example.com", items)
	if err == nil {
		t.Fatal("expected error for invalid raw JSON field")
	}
	if !strings.Contains(err.Error(), "payload") {
		t.Fatalf("error should name the field, got: %v", err)
	}
}

func TestBuild_Headers(t *testing.T) {
	t.Parallel()

	items := []Item{
		{Kind: ItemHeader, Name: "X-One", Value: "1"},
		{Kind: ItemHeader, Name: "X-One", Value: "2"},
		{Kind: ItemHeader, Name: "Authorization", Value: " Bearer token "},
	}
	req, err := Build("GET", "example.com", items)
	if err != nil {
		t.Fatalf("Build: unexpected error: %v", err)
	}
	if got := req.Header.Values("X-One"); len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Fatalf("X-One values = %v, want [1 2]", got)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer token" {
		t.Fatalf("Authorization = %q, want trimmed value", got)
	}
}

func TestBuild_NoBodyStaysNil(t *testing.T) {
	t.Parallel()

	req, err := Build("GET", "example.com", []Item{
		{Kind: ItemHeader, Name: "X-Token", Value: "abc"},
		{Kind: ItemQuery, Name: "page", Value: "1"},
	})
	if err != nil {
		t.Fatalf("Build: unexpected error: %v", err)
	}
	if req.Body != nil {
		t.Fatalf("Body = %v, want nil when no body fields were given", req.Body)
	}
}
