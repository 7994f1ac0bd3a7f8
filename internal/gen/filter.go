package gen

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"github.com/zodwire/zodwire/internal/spec"
)

// Filter selects operations by an expression over their metadata. The
// expression sees method, path, tags and summary, e.g.
//
//	method == "GET" && path contains "/users"
//	"admin" in tags
type Filter struct {
	src     string
	program *exprvm.Program
}

// CompileFilter compiles the expression once; Match runs it per operation.
// An empty expression returns a nil filter that matches everything.
func CompileFilter(src string) (*Filter, error) {
	if src == "" {
		return nil, nil
	}
	program, err := exprlang.Compile(src,
		exprlang.Env(filterEnv(spec.PathEntry{}, spec.Operation{})),
		exprlang.AsBool(),
		exprlang.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", src, err)
	}
	return &Filter{src: src, program: program}, nil
}

// Match reports whether the operation passes the filter. A nil filter
// matches everything.
func (f *Filter) Match(entry spec.PathEntry, op spec.Operation) (bool, error) {
	if f == nil {
		return true, nil
	}
	out, err := exprlang.Run(f.program, filterEnv(entry, op))
	if err != nil {
		return false, fmt.Errorf("run filter %q: %w", f.src, err)
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, fmt.Errorf("filter %q: expected boolean result, got %T", f.src, out)
	}
	return ok, nil
}

func filterEnv(entry spec.PathEntry, op spec.Operation) map[string]any {
	tags := op.Tags
	if tags == nil {
		tags = []string{}
	}
	return map[string]any{
		"method":  op.Method,
		"path":    entry.Path,
		"tags":    tags,
		"summary": op.Summary,
	}
}

// FilterDocument returns a copy of the document keeping only the operations
// the filter matches. Paths left with no operations drop out entirely; named
// schemas always survive, the filter scopes templates, not the schema set.
func FilterDocument(doc *spec.Document, f *Filter) (*spec.Document, error) {
	if f == nil {
		return doc, nil
	}
	out := *doc
	out.Paths = nil
	for _, entry := range doc.Paths {
		kept := entry
		kept.Operations = nil
		for _, op := range entry.Operations {
			ok, err := f.Match(entry, op)
			if err != nil {
				return nil, err
			}
			if ok {
				kept.Operations = append(kept.Operations, op)
			}
		}
		if len(kept.Operations) > 0 {
			out.Paths = append(out.Paths, kept)
		}
	}
	return &out, nil
}
