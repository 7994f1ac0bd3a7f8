// Package request turns command-line request items into an HTTP call:
// tokenizing the httpie-style item syntax, assembling method, URL, headers,
// query and JSON body, and dispatching the request.
package request

import (
	"fmt"
	"strings"
)

// ItemKind classifies a request item by its separator.
type ItemKind int

const (
	// ItemHeader is "Name:value".
	ItemHeader ItemKind = iota
	// ItemQuery is "name==value".
	ItemQuery
	// ItemField is "name=value", a string body field.
	ItemField
	// ItemRawField is "name:=value", a body field whose value is raw JSON.
	ItemRawField
)

func (k ItemKind) String() string {
	switch k {
	case ItemHeader:
		return "header"
	case ItemQuery:
		return "query"
	case ItemField:
		return "field"
	case ItemRawField:
		return "raw field"
	}
	return "unknown"
}

// Item is one parsed request item.
type Item struct {
	Kind  ItemKind
	Name  string
	Value string
}

// ParseItem classifies one argument by its earliest separator. At the same
// position the longer separator wins, so "a:=1" is a raw field, not a header
// named "a" with value "=1", and "q==x" is a query, not a field.
func ParseItem(arg string) (Item, error) {
	for i := 0; i < len(arg); i++ {
		rest := arg[i:]
		switch {
		case strings.HasPrefix(rest, ":="):
			return makeItem(ItemRawField, arg[:i], arg[i+2:])
		case strings.HasPrefix(rest, "=="):
			return makeItem(ItemQuery, arg[:i], arg[i+2:])
		case rest[0] == '=':
			return makeItem(ItemField, arg[:i], arg[i+1:])
		case rest[0] == ':':
			return makeItem(ItemHeader, arg[:i], arg[i+1:])
		}
	}
	return Item{}, fmt.Errorf("request: %q is not a request item (expected name:value, name==value, name=value or name:=json)", arg)
}

func makeItem(kind ItemKind, name, value string) (Item, error) {
	if name == "" {
		return Item{}, fmt.Errorf("request: %s item is missing a name", kind)
	}
	return Item{Kind: kind, Name: name, Value: value}, nil
}

// ParseItems parses every argument, failing on the first bad one.
func ParseItems(args []string) ([]Item, error) {
	items := make([]Item, 0, len(args))
	for _, arg := range args {
		item, err := ParseItem(arg)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
