package gen

import (
	"strings"

	"github.com/zodwire/zodwire/internal/zod"
)

// SchemaModule is one generated validator file for a named schema: an import
// block covering every cross-referenced schema (self-references excluded, the
// symbol is already in scope), the validator constant, and the inferred type.
type SchemaModule struct {
	Name     string
	FileName string // e.g. "User.ts"
	Refs     []string
	Source   string
}

// BuildSchemaModules compiles every registered schema into its module, in
// declaration order.
func BuildSchemaModules(reg *Registry) []SchemaModule {
	modules := make([]SchemaModule, 0, reg.Len())
	for _, name := range reg.Names() {
		modules = append(modules, buildSchemaModule(reg, name))
	}
	return modules
}

func buildSchemaModule(reg *Registry, name string) SchemaModule {
	refs := zod.NewReferenceSet()
	expr := zod.Compile(reg.Node(name), refs)

	var imports []string
	for _, ref := range refs.Names() {
		if ref == name {
			continue
		}
		imports = append(imports, ref)
	}

	var b strings.Builder
	b.WriteString(`import { z } from "zod";` + "\n")
	for _, ref := range imports {
		b.WriteString("import { " + zod.ValidatorSymbol(ref) + ` } from "./` + ref + `";` + "\n")
	}
	b.WriteString("\n")
	b.WriteString("export const " + zod.ValidatorSymbol(name) + " = " + expr.Code + ";\n")
	b.WriteString("export type " + name + " = z.infer<typeof " + zod.ValidatorSymbol(name) + ">;\n")

	return SchemaModule{
		Name:     name,
		FileName: name + ".ts",
		Refs:     imports,
		Source:   b.String(),
	}
}
