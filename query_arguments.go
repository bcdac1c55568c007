package catalog

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// queryArguments writes the variable definitions of an operation, sorted by
// name. The GraphQL type of a variable is derived from its Go type: pointers
// make it nullable, named types keep their name.
//
// E.g., map[string]any{"id": ID("1"), "input": (*ProductsFilter)(nil)} ->
// "$id:ID!$input:ProductsFilter".
func queryArguments(variables map[string]any) (string, error) {
	names := make([]string, 0, len(variables))
	for name := range variables {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		t := reflect.TypeOf(variables[name])
		if t == nil {
			return "", fmt.Errorf("variable $%s: untyped nil has no GraphQL type, use a typed nil pointer", name)
		}
		b.WriteString("$")
		b.WriteString(name)
		b.WriteString(":")
		if err := writeArgumentType(&b, t, true); err != nil {
			return "", fmt.Errorf("variable $%s: %w", name, err)
		}
	}
	return b.String(), nil
}

func writeArgumentType(b *strings.Builder, t reflect.Type, nonNull bool) error {
	if t.Kind() == reflect.Ptr {
		return writeArgumentType(b, t.Elem(), false)
	}

	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		b.WriteString("[")
		if err := writeArgumentType(b, t.Elem(), true); err != nil {
			return err
		}
		b.WriteString("]")
	case reflect.Bool:
		b.WriteString("Boolean")
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		b.WriteString("Int")
	case reflect.Float32, reflect.Float64:
		b.WriteString("Float")
	case reflect.String:
		if t.Name() == "string" {
			b.WriteString("String")
		} else {
			b.WriteString(t.Name())
		}
	default:
		if t.Name() == "" {
			return fmt.Errorf("%v has no GraphQL type name", t)
		}
		b.WriteString(t.Name())
	}

	if nonNull {
		b.WriteString("!")
	}
	return nil
}
