// Package reflectutil holds the reflection helpers shared by the query
// builder and the response decoder. All of them tolerate the zero Value so a
// selection can be walked from a type alone.
package reflectutil

import (
	"encoding/json"
	"reflect"
	"strconv"
)

var unmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()

// Field returns field i of v, or the zero Value when v is invalid.
func Field(v reflect.Value, i int) reflect.Value {
	if !v.IsValid() {
		return reflect.Value{}
	}
	return v.Field(i)
}

// First returns the first element of the slice v, or the zero Value when v
// is invalid or empty.
func First(v reflect.Value) reflect.Value {
	if !v.IsValid() || v.Len() == 0 {
		return reflect.Value{}
	}
	return v.Index(0)
}

// Indirect follows pointers and interfaces down to a concrete value. A nil
// anywhere on the way gives the zero Value.
func Indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// IsScalar reports whether values of t are decoded whole rather than field by
// field, as is the case for any json.Unmarshaler (Datetime, time.Time).
func IsScalar(t reflect.Type) bool {
	return t.Implements(unmarshalerType) || reflect.PointerTo(t).Implements(unmarshalerType)
}

// IsTrue reports whether a tag value reads as true.
func IsTrue(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}
