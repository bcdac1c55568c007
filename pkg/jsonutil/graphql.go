// Package jsonutil decodes the data member of a GraphQL response into the
// selection struct the operation was built from.
package jsonutil

import (
	"bytes"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/llehouerou/go-graphql-catalog/internal/reflectutil"
	"github.com/llehouerou/go-graphql-catalog/internal/tagparser"
	"github.com/llehouerou/go-graphql-catalog/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var rawMessageType = reflect.TypeOf(stdjson.RawMessage{})

// UnmarshalGraphQL decodes data into v, which must be a non-nil pointer to
// a struct.
//
// Keys match a field's graphql tag (its alias when it has one) or, for
// untagged fields, the Go field name case-insensitively. Embedded structs
// share the fields of the object that holds them. An inline fragment field
// ("... on Cake") is filled only when the object's __typename names its
// type; a field found in no place at all is an error.
func UnmarshalGraphQL(data []byte, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("cannot decode into %T: want a non-nil pointer", v)
	}

	tokenizer := stdjson.NewDecoder(bytes.NewReader(data))
	tokenizer.UseNumber()
	d := &decoder{
		tokenizer: tokenizer,
		targets:   []*target{{stack: []reflect.Value{rv.Elem()}}},
	}
	if err := d.decode(); err != nil {
		return err
	}
	switch tok, err := tokenizer.Token(); {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return err
	default:
		return fmt.Errorf("invalid token '%v' after top-level value", tok)
	}
}

// target is one place the current value is written to. Besides the root
// there is one per embedded struct and inline fragment of an open object.
type target struct {
	stack []reflect.Value
	// on is the fragment type condition this place was reached through.
	on string
}

func (t *target) top() reflect.Value { return t.stack[len(t.stack)-1] }

func (t *target) push(v reflect.Value) { t.stack = append(t.stack, v) }

// accepts reports whether values of an object typed typename belong here.
func (t *target) accepts(typename string) bool {
	return t.on == "" || typename == "" || t.on == typename
}

type decoder struct {
	tokenizer *stdjson.Decoder
	targets   []*target

	// delims holds the open '{' and '[' delimiters, innermost last.
	delims []stdjson.Delim
	// typenames holds the __typename of each open object, once seen.
	typenames []string
	// key is the object key whose value is being read.
	key string
}

func (d *decoder) decode() error {
	for len(d.targets) > 0 {
		tok, err := d.tokenizer.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return io.ErrUnexpectedEOF
			}
			return err
		}

		switch {
		case d.in('{') && tok != stdjson.Delim('}'):
			key, ok := tok.(string)
			if !ok {
				return fmt.Errorf("unexpected object key %v", tok)
			}
			if tok, err = d.enterField(key); err != nil {
				return err
			}
		case d.in('[') && tok != stdjson.Delim(']'):
			if err := d.enterElement(); err != nil {
				return err
			}
		}

		switch tok := tok.(type) {
		case stdjson.Delim:
			switch tok {
			case '{':
				d.objectStart()
			case '[':
				d.arrayStart()
			case '}':
				d.typenames = d.typenames[:len(d.typenames)-1]
				d.delims = d.delims[:len(d.delims)-1]
				d.pop()
			case ']':
				d.delims = d.delims[:len(d.delims)-1]
				d.pop()
			}
		case string, stdjson.Number, bool, nil, stdjson.RawMessage:
			if err := d.value(tok); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unexpected token %v", tok)
		}
	}
	return nil
}

func (d *decoder) in(delim stdjson.Delim) bool {
	return len(d.delims) > 0 && d.delims[len(d.delims)-1] == delim
}

func (d *decoder) typename() string {
	if len(d.typenames) == 0 {
		return ""
	}
	return d.typenames[len(d.typenames)-1]
}

// enterField pushes, on every target, the field named key (or the zero Value
// where there is none) and returns the field's first token. Fields typed as
// scalars come back whole as a RawMessage.
func (d *decoder) enterField(key string) (stdjson.Token, error) {
	typename := d.typename()
	fields := make([]reflect.Value, len(d.targets))
	var found, accepted, whole bool
	for i, t := range d.targets {
		f, scalar := fieldByKey(reflectutil.Indirect(t.top()), key)
		if !f.IsValid() {
			continue
		}
		fields[i] = f
		found = true
		whole = whole || scalar
		if t.on != "" && t.accepts(typename) {
			accepted = true
		}
	}
	if !found {
		return nil, fmt.Errorf("struct field for %q doesn't exist in any of %d places to unmarshal", key, len(d.targets))
	}
	for i, t := range d.targets {
		f := fields[i]
		// A fragment of another type keeps its zero value as long as the
		// matching fragment takes the field.
		if f.IsValid() && accepted && !t.accepts(typename) {
			f = reflect.Value{}
		}
		t.push(f)
	}

	d.key = key
	if whole {
		var raw stdjson.RawMessage
		err := d.tokenizer.Decode(&raw)
		return raw, err
	}
	return d.tokenizer.Token()
}

// enterElement appends a zero element to every slice on top of a target and
// pushes it.
func (d *decoder) enterElement() error {
	d.key = ""
	found := false
	for _, t := range d.targets {
		v := reflectutil.Indirect(t.top())
		var elem reflect.Value
		if v.Kind() == reflect.Slice {
			v.Set(reflect.Append(v, reflect.Zero(v.Type().Elem())))
			elem = v.Index(v.Len() - 1)
			found = true
		}
		t.push(elem)
	}
	if !found {
		return fmt.Errorf("slice doesn't exist in any of %d places to unmarshal", len(d.targets))
	}
	return nil
}

func (d *decoder) objectStart() {
	d.delims = append(d.delims, '{')
	d.typenames = append(d.typenames, "")
	for _, t := range d.targets {
		d.expand(allocate(t.top()), t.on)
	}
}

// expand adds a target for every embedded struct and inline fragment of v.
// Embedded structs inherit the type condition of their parent.
func (d *decoder) expand(v reflect.Value, on string) {
	if v.Kind() != reflect.Struct || reflectutil.IsScalar(v.Type()) {
		return
	}
	for i := 0; i < v.NumField(); i++ {
		f := v.Type().Field(i)
		cond := on
		if tag, ok := f.Tag.Lookup(types.GraphQLTag); ok {
			parsed := tagparser.Parse(tag)
			if !parsed.Fragment {
				continue
			}
			if parsed.On != "" {
				cond = parsed.On
			}
		} else if !f.Anonymous {
			continue
		}
		field := v.Field(i)
		d.targets = append(d.targets, &target{stack: []reflect.Value{field}, on: cond})
		d.expand(reflectutil.Indirect(field), cond)
	}
}

func (d *decoder) arrayStart() {
	d.delims = append(d.delims, '[')
	for _, t := range d.targets {
		if v := allocate(t.top()); v.Kind() == reflect.Slice {
			v.Set(reflect.MakeSlice(v.Type(), 0, 0))
		}
	}
}

// value stores a scalar token in every target and pops them.
func (d *decoder) value(tok stdjson.Token) error {
	if s, ok := tok.(string); ok && d.key == types.TypenameField && d.in('{') {
		d.typenames[len(d.typenames)-1] = s
	}
	for _, t := range d.targets {
		v := t.top()
		if !v.IsValid() {
			continue
		}
		if err := unmarshalValue(tok, v); err != nil {
			return fmt.Errorf("decode %q: %w", d.key, err)
		}
	}
	d.pop()
	return nil
}

// pop drops the top of every target, forgetting targets left empty.
func (d *decoder) pop() {
	kept := d.targets[:0]
	for _, t := range d.targets {
		t.stack = t.stack[:len(t.stack)-1]
		if len(t.stack) > 0 {
			kept = append(kept, t)
		}
	}
	d.targets = kept
}

// allocate points a nil pointer at a fresh value and returns the value it
// points to.
func allocate(v reflect.Value) reflect.Value {
	if v.IsValid() && v.Kind() == reflect.Ptr && v.IsNil() && v.CanSet() {
		v.Set(reflect.New(v.Type().Elem()))
	}
	return reflectutil.Indirect(v)
}

// fieldByKey finds the field of struct v returned under key. scalar reports
// whether its value must be decoded whole.
func fieldByKey(v reflect.Value, key string) (field reflect.Value, scalar bool) {
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	for i := 0; i < v.NumField(); i++ {
		f := v.Type().Field(i)
		if f.PkgPath != "" || !hasKey(f, key) {
			continue
		}
		scalar = reflectutil.IsTrue(f.Tag.Get(types.ScalarTag)) ||
			f.Type == rawMessageType ||
			reflectutil.IsScalar(f.Type)
		return v.Field(i), scalar
	}
	return reflect.Value{}, false
}

func hasKey(f reflect.StructField, key string) bool {
	tag, ok := f.Tag.Lookup(types.GraphQLTag)
	if !ok {
		return !f.Anonymous && strings.EqualFold(f.Name, key)
	}
	parsed := tagparser.Parse(tag)
	if parsed.Fragment || parsed.Skip {
		return false
	}
	return parsed.ResponseKey() == key
}

// unmarshalValue stores a scalar token in v.
func unmarshalValue(tok stdjson.Token, v reflect.Value) error {
	b, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	n := reflect.New(v.Type())
	if err := json.Unmarshal(b, n.Interface()); err != nil {
		return err
	}
	v.Set(n.Elem())
	return nil
}
