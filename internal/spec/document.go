package spec

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is the order-preserving view of an OpenAPI v3 document used by the
// generator. Unlike map-based models, paths, schema names, properties, media
// types and responses keep their declaration order so that repeated runs over
// the same input produce byte-identical output.
type Document struct {
	OpenAPI string
	Title   string
	Version string
	Paths   []PathEntry
	Schemas []NamedSchema
}

// NamedSchema is one components.schemas entry.
type NamedSchema struct {
	Name   string
	Schema *SchemaNode
}

// PathEntry groups the operations declared under one URL path.
type PathEntry struct {
	Path       string
	Parameters []Parameter // path-item level, merged into each operation
	Operations []Operation
}

// Operation is one (path, method) pair. Method is upper-cased; only
// recognized HTTP methods become operations, other path-item keys are
// skipped during decoding.
type Operation struct {
	Method      string
	Summary     string
	Tags        []string
	Parameters  []Parameter
	RequestBody *RequestBody
	Responses   []Response
}

// Parameter is a request parameter declaration.
type Parameter struct {
	Name     string
	In       string // path|query|header|cookie
	Required bool
	Schema   *SchemaNode
}

// RequestBody holds the declared request content in declaration order.
type RequestBody struct {
	Required bool
	Content  []Media
}

// Media is one content entry keyed by MIME type.
type Media struct {
	Mime   string
	Schema *SchemaNode
}

// Response is one responses entry keyed by status code (or "default").
type Response struct {
	Status      string
	Description string
	Content     []Media
}

// Property is one ordered object property.
type Property struct {
	Name   string
	Schema *SchemaNode
}

// AdditionalProps models the boolean-or-schema forms of additionalProperties.
// A nil *AdditionalProps on SchemaNode means the keyword was absent.
type AdditionalProps struct {
	Allowed *bool
	Schema  *SchemaNode
}

// SchemaNode is a single JSON-Schema fragment. Type carries zero, one or many
// type names: `type: string` decodes to one entry, the bare type array form
// (`type: [string, "null"]`) keeps all entries. Ref is mutually exclusive with
// the rest by convention; the compiler short-circuits on it.
type SchemaNode struct {
	Ref string

	Type     []string
	Format   string
	Nullable bool
	Enum     []any

	Minimum      *float64
	Maximum      *float64
	ExclusiveMin bool
	ExclusiveMax bool
	MultipleOf   *float64

	MinLength *int
	MaxLength *int
	Pattern   string

	MinItems    *int
	MaxItems    *int
	UniqueItems bool
	Items       *SchemaNode

	Properties []Property
	Required   []string
	Additional *AdditionalProps

	OneOf []*SchemaNode
	AnyOf []*SchemaNode
	AllOf []*SchemaNode
}

// ParseDocument decodes raw YAML or JSON bytes into the ordered Document
// model. It assumes the bytes were already shape-checked by Load; decoding is
// permissive and skips anything it does not recognize rather than failing.
func ParseDocument(raw []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	body := documentRoot(&root)
	if body == nil || body.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse document: top level is not a mapping")
	}

	doc := &Document{}
	for _, kv := range mappingPairs(body) {
		switch kv.key {
		case "openapi", "swagger":
			doc.OpenAPI = scalarString(kv.val)
		case "info":
			for _, ikv := range mappingPairs(kv.val) {
				switch ikv.key {
				case "title":
					doc.Title = scalarString(ikv.val)
				case "version":
					doc.Version = scalarString(ikv.val)
				}
			}
		case "paths":
			doc.Paths = decodePaths(kv.val)
		case "components":
			for _, ckv := range mappingPairs(kv.val) {
				if ckv.key == "schemas" {
					doc.Schemas = decodeNamedSchemas(ckv.val)
				}
			}
		}
	}
	return doc, nil
}

// httpMethods lists the path-item keys treated as operations. Everything else
// under a path item (parameters, summary, vendor extensions) is not a method.
var httpMethods = map[string]string{
	"get":     "GET",
	"post":    "POST",
	"put":     "PUT",
	"delete":  "DELETE",
	"patch":   "PATCH",
	"head":    "HEAD",
	"options": "OPTIONS",
}

func decodePaths(n *yaml.Node) []PathEntry {
	var out []PathEntry
	for _, kv := range mappingPairs(n) {
		entry := PathEntry{Path: kv.key}
		for _, item := range mappingPairs(kv.val) {
			if method, ok := httpMethods[strings.ToLower(item.key)]; ok {
				op := decodeOperation(item.val)
				op.Method = method
				entry.Operations = append(entry.Operations, op)
				continue
			}
			if item.key == "parameters" {
				entry.Parameters = decodeParameters(item.val)
			}
		}
		out = append(out, entry)
	}
	return out
}

func decodeOperation(n *yaml.Node) Operation {
	var op Operation
	for _, kv := range mappingPairs(n) {
		switch kv.key {
		case "summary":
			op.Summary = scalarString(kv.val)
		case "tags":
			for _, item := range sequenceItems(kv.val) {
				if s := scalarString(item); s != "" {
					op.Tags = append(op.Tags, s)
				}
			}
		case "parameters":
			op.Parameters = decodeParameters(kv.val)
		case "requestBody":
			op.RequestBody = decodeRequestBody(kv.val)
		case "responses":
			op.Responses = decodeResponses(kv.val)
		}
	}
	return op
}

func decodeParameters(n *yaml.Node) []Parameter {
	var out []Parameter
	for _, item := range sequenceItems(n) {
		var p Parameter
		for _, kv := range mappingPairs(item) {
			switch kv.key {
			case "name":
				p.Name = scalarString(kv.val)
			case "in":
				p.In = scalarString(kv.val)
			case "required":
				p.Required = scalarBool(kv.val)
			case "schema":
				p.Schema = DecodeSchema(kv.val)
			}
		}
		if p.Name != "" {
			out = append(out, p)
		}
	}
	return out
}

func decodeRequestBody(n *yaml.Node) *RequestBody {
	n = resolved(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	rb := &RequestBody{}
	for _, kv := range mappingPairs(n) {
		switch kv.key {
		case "required":
			rb.Required = scalarBool(kv.val)
		case "content":
			rb.Content = decodeContent(kv.val)
		}
	}
	return rb
}

func decodeContent(n *yaml.Node) []Media {
	var out []Media
	for _, kv := range mappingPairs(n) {
		m := Media{Mime: kv.key}
		for _, sub := range mappingPairs(kv.val) {
			if sub.key == "schema" {
				m.Schema = DecodeSchema(sub.val)
			}
		}
		out = append(out, m)
	}
	return out
}

func decodeResponses(n *yaml.Node) []Response {
	var out []Response
	for _, kv := range mappingPairs(n) {
		r := Response{Status: kv.key}
		for _, sub := range mappingPairs(kv.val) {
			switch sub.key {
			case "description":
				r.Description = scalarString(sub.val)
			case "content":
				r.Content = decodeContent(sub.val)
			}
		}
		out = append(out, r)
	}
	return out
}

func decodeNamedSchemas(n *yaml.Node) []NamedSchema {
	var out []NamedSchema
	for _, kv := range mappingPairs(n) {
		out = append(out, NamedSchema{Name: kv.key, Schema: DecodeSchema(kv.val)})
	}
	return out
}

// DecodeSchema converts one schema mapping node into a SchemaNode. Unknown
// keywords are ignored; structurally surprising values (e.g. a scalar where a
// mapping is expected) leave the corresponding field unset, which the
// compiler later degrades to the accept-anything expression.
func DecodeSchema(n *yaml.Node) *SchemaNode {
	n = resolved(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	s := &SchemaNode{}
	for _, kv := range mappingPairs(n) {
		switch kv.key {
		case "$ref":
			s.Ref = scalarString(kv.val)
		case "type":
			s.Type = decodeTypeSet(kv.val)
		case "format":
			s.Format = scalarString(kv.val)
		case "nullable":
			s.Nullable = scalarBool(kv.val)
		case "enum":
			for _, item := range sequenceItems(kv.val) {
				s.Enum = append(s.Enum, scalarValue(item))
			}
		case "minimum":
			s.Minimum = scalarFloat(kv.val)
		case "maximum":
			s.Maximum = scalarFloat(kv.val)
		case "exclusiveMinimum":
			// Draft-4 boolean form flags the adjacent minimum; the 2020-12
			// numeric form carries the bound itself.
			if isBoolScalar(kv.val) {
				s.ExclusiveMin = scalarBool(kv.val)
			} else if f := scalarFloat(kv.val); f != nil {
				s.Minimum = f
				s.ExclusiveMin = true
			}
		case "exclusiveMaximum":
			if isBoolScalar(kv.val) {
				s.ExclusiveMax = scalarBool(kv.val)
			} else if f := scalarFloat(kv.val); f != nil {
				s.Maximum = f
				s.ExclusiveMax = true
			}
		case "multipleOf":
			s.MultipleOf = scalarFloat(kv.val)
		case "minLength":
			s.MinLength = scalarInt(kv.val)
		case "maxLength":
			s.MaxLength = scalarInt(kv.val)
		case "pattern":
			s.Pattern = scalarString(kv.val)
		case "minItems":
			s.MinItems = scalarInt(kv.val)
		case "maxItems":
			s.MaxItems = scalarInt(kv.val)
		case "uniqueItems":
			s.UniqueItems = scalarBool(kv.val)
		case "items":
			s.Items = DecodeSchema(kv.val)
		case "properties":
			for _, sub := range mappingPairs(kv.val) {
				s.Properties = append(s.Properties, Property{Name: sub.key, Schema: DecodeSchema(sub.val)})
			}
		case "required":
			for _, item := range sequenceItems(kv.val) {
				if name := scalarString(item); name != "" {
					s.Required = append(s.Required, name)
				}
			}
		case "additionalProperties":
			s.Additional = decodeAdditional(kv.val)
		case "oneOf":
			s.OneOf = decodeSchemaList(kv.val)
		case "anyOf":
			s.AnyOf = decodeSchemaList(kv.val)
		case "allOf":
			s.AllOf = decodeSchemaList(kv.val)
		}
	}
	return s
}

func decodeTypeSet(n *yaml.Node) []string {
	n = resolved(n)
	if n == nil {
		return nil
	}
	if n.Kind == yaml.ScalarNode {
		if s := scalarString(n); s != "" {
			return []string{s}
		}
		return nil
	}
	var out []string
	for _, item := range sequenceItems(n) {
		if s := scalarString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func decodeAdditional(n *yaml.Node) *AdditionalProps {
	n = resolved(n)
	if n == nil {
		return nil
	}
	if n.Kind == yaml.ScalarNode {
		b := scalarBool(n)
		return &AdditionalProps{Allowed: &b}
	}
	if n.Kind == yaml.MappingNode {
		return &AdditionalProps{Schema: DecodeSchema(n)}
	}
	return nil
}

func decodeSchemaList(n *yaml.Node) []*SchemaNode {
	var out []*SchemaNode
	for _, item := range sequenceItems(n) {
		out = append(out, DecodeSchema(item))
	}
	return out
}

// --- yaml.Node walking helpers ---

type nodePair struct {
	key string
	val *yaml.Node
}

func documentRoot(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		return resolved(n.Content[0])
	}
	return resolved(n)
}

// resolved follows alias nodes so anchors behave like their targets.
func resolved(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// mappingPairs returns a mapping node's key/value pairs in declaration order.
// Non-mapping nodes yield nothing.
func mappingPairs(n *yaml.Node) []nodePair {
	n = resolved(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	out := make([]nodePair, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i]
		if key == nil || key.Kind != yaml.ScalarNode {
			continue
		}
		out = append(out, nodePair{key: key.Value, val: resolved(n.Content[i+1])})
	}
	return out
}

func sequenceItems(n *yaml.Node) []*yaml.Node {
	n = resolved(n)
	if n == nil || n.Kind != yaml.SequenceNode {
		return nil
	}
	out := make([]*yaml.Node, 0, len(n.Content))
	for _, item := range n.Content {
		out = append(out, resolved(item))
	}
	return out
}

func scalarString(n *yaml.Node) string {
	n = resolved(n)
	if n == nil || n.Kind != yaml.ScalarNode {
		return ""
	}
	return n.Value
}

func scalarBool(n *yaml.Node) bool {
	n = resolved(n)
	if n == nil || n.Kind != yaml.ScalarNode {
		return false
	}
	var b bool
	if err := n.Decode(&b); err != nil {
		return false
	}
	return b
}

func scalarInt(n *yaml.Node) *int {
	n = resolved(n)
	if n == nil || n.Kind != yaml.ScalarNode {
		return nil
	}
	var i int
	if err := n.Decode(&i); err != nil {
		return nil
	}
	return &i
}

func scalarFloat(n *yaml.Node) *float64 {
	n = resolved(n)
	if n == nil || n.Kind != yaml.ScalarNode {
		return nil
	}
	var f float64
	if err := n.Decode(&f); err != nil {
		return nil
	}
	return &f
}

func isBoolScalar(n *yaml.Node) bool {
	n = resolved(n)
	if n == nil || n.Kind != yaml.ScalarNode {
		return false
	}
	var b bool
	return n.Decode(&b) == nil
}

// scalarValue decodes a scalar node into its natural Go value (string, bool,
// int, float64 or nil). Non-scalar nodes decode to nil.
func scalarValue(n *yaml.Node) any {
	n = resolved(n)
	if n == nil || n.Kind != yaml.ScalarNode {
		return nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return n.Value
	}
	return v
}
