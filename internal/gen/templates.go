package gen

import (
	"strings"

	"github.com/zodwire/zodwire/internal/spec"
	"github.com/zodwire/zodwire/internal/zod"
)

// Template is the generated artifact for one (path, method) operation: the
// derived file path, the input/query/output validator triple, literal method
// and path declarations, and a render function that splits a flat data bag
// into validated body and query parts.
type Template struct {
	Method   string // upper-case HTTP method
	Path     string // URL path as declared
	FilePath string // e.g. "users/{user_id}/profile/get.ts"
	Refs     []string
	Source   string
}

// BuildTemplates walks the document's path/method matrix in declaration
// order and produces one template per operation. Path-item level parameters
// apply to every operation under the path; an operation-level parameter with
// the same (in, name) wins. Named references resolve to validator symbols by
// name alone, so templates never need the referenced bodies.
func BuildTemplates(doc *spec.Document) []Template {
	var templates []Template
	for _, entry := range doc.Paths {
		for _, op := range entry.Operations {
			templates = append(templates, buildTemplate(entry, op))
		}
	}
	return templates
}

func buildTemplate(entry spec.PathEntry, op spec.Operation) Template {
	cleaned := cleanPath(entry.Path)
	filePath := cleaned + "/" + strings.ToLower(op.Method) + ".ts"

	// One reference set across all three compiles gives the import list its
	// first-seen order: input, then query, then output.
	refs := zod.NewReferenceSet()
	input := compileInput(op, refs)
	query := compileQuery(mergeParameters(entry.Parameters, op.Parameters), refs)
	output := compileOutput(op, refs)

	depth := strings.Count(cleaned, "/") + 2 // requests/ plus the cleaned segments
	prefix := strings.Repeat("../", depth)

	var b strings.Builder
	b.WriteString(`import { z } from "zod";` + "\n")
	for _, ref := range refs.Names() {
		b.WriteString("import { " + zod.ValidatorSymbol(ref) + ` } from "` + prefix + "schemas/" + ref + `";` + "\n")
	}
	b.WriteString("\n")
	b.WriteString("export const method = " + zod.QuoteString(op.Method) + ";\n")
	b.WriteString("export const path = " + zod.QuoteString(entry.Path) + ";\n")
	b.WriteString("\n")
	b.WriteString("export const inputSchema = " + input.Code + ";\n")
	b.WriteString("export const querySchema = " + query.Code + ";\n")
	b.WriteString("export const outputSchema = " + output.Code + ";\n")
	b.WriteString("\n")
	writeRender(&b, queryKeys(mergeParameters(entry.Parameters, op.Parameters)), input.IsNever())

	return Template{
		Method:   op.Method,
		Path:     entry.Path,
		FilePath: filePath,
		Refs:     refs.Names(),
		Source:   b.String(),
	}
}

// cleanPath strips leading and trailing slashes and collapses repeats;
// an empty result becomes the literal segment "root". Path parameter braces
// stay verbatim as directory text.
func cleanPath(path string) string {
	var segments []string
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		segments = append(segments, seg)
	}
	if len(segments) == 0 {
		return "root"
	}
	return strings.Join(segments, "/")
}

// mergeParameters overlays operation parameters onto path-item parameters.
// The operation's declaration wins on an (in, name) collision; otherwise
// path-item parameters come first in their declared order.
func mergeParameters(pathLevel, opLevel []spec.Parameter) []spec.Parameter {
	if len(pathLevel) == 0 {
		return opLevel
	}
	key := func(p spec.Parameter) string { return p.In + ":" + p.Name }
	override := make(map[string]spec.Parameter, len(opLevel))
	for _, p := range opLevel {
		override[key(p)] = p
	}
	merged := make([]spec.Parameter, 0, len(pathLevel)+len(opLevel))
	seen := make(map[string]struct{}, len(pathLevel))
	for _, p := range pathLevel {
		k := key(p)
		seen[k] = struct{}{}
		if o, ok := override[k]; ok {
			merged = append(merged, o)
			continue
		}
		merged = append(merged, p)
	}
	for _, p := range opLevel {
		if _, ok := seen[key(p)]; ok {
			continue
		}
		merged = append(merged, p)
	}
	return merged
}

// compileInput selects the request-body schema. No declared body means the
// operation accepts none: the input validator is never, and render reports
// an absent input instead of validating against it.
func compileInput(op spec.Operation, refs *zod.ReferenceSet) zod.Expr {
	if op.RequestBody == nil {
		return zod.Never()
	}
	media, ok := preferredMedia(op.RequestBody.Content)
	if !ok {
		return zod.Never()
	}
	return zod.Compile(media.Schema, refs)
}

// compileQuery builds the query object from query-bound parameters only.
func compileQuery(params []spec.Parameter, refs *zod.ReferenceSet) zod.Expr {
	var fields []string
	for _, p := range params {
		if p.In != "query" {
			continue
		}
		e := zod.Compile(p.Schema, refs)
		if !p.Required {
			e = e.Optional()
		}
		fields = append(fields, zod.PropKey(p.Name)+": "+e.Code)
	}
	if len(fields) == 0 {
		return zod.Expr{Kind: zod.KindObject, Code: "z.object({})"}
	}
	return zod.Expr{Kind: zod.KindObject, Code: "z.object({ " + strings.Join(fields, ", ") + " })"}
}

// compileOutput picks the success response: status 200, then 201, then 202;
// failing those, the first response whose description mentions "success".
// No match, or a match with no content, compiles to never.
func compileOutput(op spec.Operation, refs *zod.ReferenceSet) zod.Expr {
	resp, ok := successResponse(op.Responses)
	if !ok {
		return zod.Never()
	}
	media, ok := preferredMedia(resp.Content)
	if !ok {
		return zod.Never()
	}
	return zod.Compile(media.Schema, refs)
}

func successResponse(responses []spec.Response) (spec.Response, bool) {
	for _, code := range []string{"200", "201", "202"} {
		for _, r := range responses {
			if r.Status == code {
				return r, true
			}
		}
	}
	for _, r := range responses {
		if strings.Contains(strings.ToLower(r.Description), "success") {
			return r, true
		}
	}
	return spec.Response{}, false
}

// preferredMedia picks application/json (parameters like charset are fine)
// over whatever was declared first.
func preferredMedia(content []spec.Media) (spec.Media, bool) {
	if len(content) == 0 {
		return spec.Media{}, false
	}
	for _, m := range content {
		if isJSONMime(m.Mime) {
			return m, true
		}
	}
	return content[0], true
}

func isJSONMime(mime string) bool {
	mime = strings.ToLower(strings.TrimSpace(mime))
	return mime == "application/json" || strings.HasPrefix(mime, "application/json;")
}

func queryKeys(params []spec.Parameter) []string {
	var keys []string
	for _, p := range params {
		if p.In == "query" {
			keys = append(keys, p.Name)
		}
	}
	return keys
}

// writeRender emits the render function: the flat data bag splits into query
// fields (by declared name) and body fields (everything else). Under a never
// input the body is not validated, it cannot pass; render returns null for
// input instead. Query always validates, even when empty.
func writeRender(b *strings.Builder, keys []string, neverInput bool) {
	quoted := make([]string, 0, len(keys))
	for _, k := range keys {
		quoted = append(quoted, zod.QuoteString(k))
	}
	b.WriteString("const queryKeys = [" + strings.Join(quoted, ", ") + "];\n")
	b.WriteString("\n")
	b.WriteString("export function render(data: Record<string, unknown>) {\n")
	b.WriteString("  const query: Record<string, unknown> = {};\n")
	if neverInput {
		b.WriteString("  for (const [key, value] of Object.entries(data ?? {})) {\n")
		b.WriteString("    if (queryKeys.includes(key)) {\n")
		b.WriteString("      query[key] = value;\n")
		b.WriteString("    }\n")
		b.WriteString("  }\n")
		b.WriteString("  return { input: null, query: querySchema.parse(query) };\n")
	} else {
		b.WriteString("  const body: Record<string, unknown> = {};\n")
		b.WriteString("  for (const [key, value] of Object.entries(data ?? {})) {\n")
		b.WriteString("    if (queryKeys.includes(key)) {\n")
		b.WriteString("      query[key] = value;\n")
		b.WriteString("    } else {\n")
		b.WriteString("      body[key] = value;\n")
		b.WriteString("    }\n")
		b.WriteString("  }\n")
		b.WriteString("  return { input: inputSchema.parse(body), query: querySchema.parse(query) };\n")
	}
	b.WriteString("}\n")
}
