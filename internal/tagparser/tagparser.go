// Package tagparser reads the graphql struct tags that describe a selection:
// field names, aliases, arguments and inline fragments.
package tagparser

import (
	"strings"
	"unicode"

	"github.com/llehouerou/go-graphql-catalog/types"
)

// Tag is a parsed graphql struct tag.
type Tag struct {
	// Name is the schema field name. It is empty for fragments.
	Name string
	// Alias is the response key requested for the field, if any.
	Alias string
	// Arguments is the text between the parentheses, if any.
	Arguments string
	// Fragment is set for inline fragments ("... on Cake").
	Fragment bool
	// On is the type condition of an inline fragment.
	On string
	// Skip is set for "-": the field takes no part in the selection.
	Skip bool
}

// Parse parses a tag value. Examples:
//   - "name" -> {Name: "name"}
//   - "product(id: $id)" -> {Name: "product", Arguments: "id: $id"}
//   - "cake: product(id: $id)" -> {Name: "product", Alias: "cake", Arguments: "id: $id"}
//   - "... on Cake" -> {Fragment: true, On: "Cake"}
func Parse(tag string) Tag {
	tag = strings.TrimSpace(tag)
	if tag == "-" {
		return Tag{Skip: true}
	}
	if strings.HasPrefix(tag, types.FragmentPrefix) {
		rest := strings.TrimSpace(strings.TrimPrefix(tag, types.FragmentPrefix))
		t := Tag{Fragment: true}
		if strings.HasPrefix(rest, "on ") {
			t.On = strings.TrimSpace(rest[len("on "):])
		}
		return t
	}

	var t Tag
	head := tag
	if open := strings.IndexByte(tag, '('); open >= 0 {
		head = tag[:open]
		if end := strings.LastIndexByte(tag, ')'); end > open {
			t.Arguments = tag[open+1 : end]
		}
	}
	// Only the part before the arguments can hold an alias, so colons in
	// arguments are left alone.
	if colon := strings.IndexByte(head, ':'); colon >= 0 {
		t.Alias = strings.TrimSpace(head[:colon])
		head = head[colon+1:]
	}
	t.Name = strings.TrimSpace(head)
	return t
}

// ResponseKey is the key the field is returned under.
func (t Tag) ResponseKey() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}

// FieldName converts an exported Go field name to the lowerCamelCase name
// used by the schema: "ID" -> "id", "LastUpdated" -> "lastUpdated",
// "URLPath" -> "urlPath".
func FieldName(goName string) string {
	runes := []rune(goName)
	upper := 0
	for upper < len(runes) && unicode.IsUpper(runes[upper]) {
		upper++
	}
	switch {
	case upper == 0:
		return goName
	case upper > 1 && upper < len(runes):
		// The last capital starts the next word.
		upper--
	}
	for i := 0; i < upper; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}
