package catalog

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"github.com/llehouerou/go-graphql-catalog/internal/reflectutil"
	"github.com/llehouerou/go-graphql-catalog/internal/tagparser"
	"github.com/llehouerou/go-graphql-catalog/types"
)

type operationType string

const (
	queryOperation        operationType = "query"
	mutationOperation     operationType = "mutation"
	subscriptionOperation operationType = "subscription"
)

// Option changes how an operation document is written.
type Option func(*operationOptions)

type operationOptions struct {
	name string
}

// OperationName names the operation, as in "query AllProducts{...}".
func OperationName(name string) Option {
	return func(o *operationOptions) {
		o.name = name
	}
}

// ConstructQuery writes the query selecting the fields of v, with one
// variable definition per entry of variables.
func ConstructQuery(v any, variables map[string]any, options ...Option) (string, error) {
	return constructOperation(queryOperation, v, variables, options)
}

// ConstructMutation is ConstructQuery for mutations.
func ConstructMutation(v any, variables map[string]any, options ...Option) (string, error) {
	return constructOperation(mutationOperation, v, variables, options)
}

// ConstructSubscription is ConstructQuery for subscriptions.
func ConstructSubscription(v any, variables map[string]any, options ...Option) (string, error) {
	return constructOperation(subscriptionOperation, v, variables, options)
}

func constructOperation(op operationType, v any, variables map[string]any, options []Option) (string, error) {
	var opts operationOptions
	for _, o := range options {
		o(&opts)
	}
	selection, err := selectionOf(v)
	if err != nil {
		return "", err
	}
	if op == queryOperation && opts.name == "" && len(variables) == 0 {
		return selection, nil
	}

	var b strings.Builder
	b.WriteString(string(op))
	if opts.name != "" {
		b.WriteString(" ")
		b.WriteString(opts.name)
	}
	if len(variables) > 0 {
		args, err := queryArguments(variables)
		if err != nil {
			return "", err
		}
		b.WriteString("(")
		b.WriteString(args)
		b.WriteString(")")
	}
	b.WriteString(selection)
	return b.String(), nil
}

// selectionOf writes the minified selection set described by v.
//
// E.g., struct{ID string; Stock struct{Quantity float64}} ->
// "{id,stock{quantity}}".
func selectionOf(v any) (string, error) {
	if v == nil {
		return "", fmt.Errorf("no selection: nil value")
	}
	var buf bytes.Buffer
	if err := writeSelection(&buf, reflect.TypeOf(v), reflect.ValueOf(v), false); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// writeSelection writes the selection set of t, if it has one. v is an
// instance of t used to look into non-empty slices; it may be the zero Value.
// inline writes the fields without braces, for embedded structs.
func writeSelection(w *bytes.Buffer, t reflect.Type, v reflect.Value, inline bool) error {
	switch t.Kind() {
	case reflect.Ptr:
		return writeSelection(w, t.Elem(), reflectutil.Indirect(v), inline)
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return nil // raw JSON
		}
		return writeSelection(w, t.Elem(), reflectutil.First(v), false)
	case reflect.Map, reflect.Interface:
		return fmt.Errorf("cannot select fields of %v: describe them with a struct or tag the field scalar", t)
	case reflect.Struct:
		if reflectutil.IsScalar(t) {
			return nil
		}
		return writeStructSelection(w, t, v, inline)
	}
	return nil
}

func writeStructSelection(w *bytes.Buffer, t reflect.Type, v reflect.Value, inline bool) error {
	if !inline {
		w.WriteByte('{')
	}
	written := 0
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, embedded, ok := selectedField(f)
		if !ok {
			continue
		}
		if written > 0 {
			w.WriteByte(',')
		}
		written++
		w.WriteString(name)
		if reflectutil.IsTrue(f.Tag.Get(types.ScalarTag)) {
			continue
		}
		if err := writeSelection(w, f.Type, reflectutil.Field(v, i), embedded); err != nil {
			return fmt.Errorf("%s.%s: %w", t.Name(), f.Name, err)
		}
	}
	if !inline {
		w.WriteByte('}')
	}
	return nil
}

// selectedField returns what f writes before its own selection set: the tag
// for tagged fields, the lowerCamelCase name otherwise, and nothing for
// untagged embedded structs, which are written inline.
func selectedField(f reflect.StructField) (name string, embedded, ok bool) {
	tag, tagged := f.Tag.Lookup(types.GraphQLTag)
	switch {
	case tagged && tagparser.Parse(tag).Skip:
		return "", false, false
	case tagged:
		return strings.TrimSpace(tag), false, true
	case f.Anonymous:
		return "", true, true
	case f.PkgPath != "":
		return "", false, false
	}
	return tagparser.FieldName(f.Name), false, true
}
