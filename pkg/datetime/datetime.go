// Package datetime implements the Datetime GraphQL scalar: an ISO-8601
// date-time exchanged as a JSON string.
package datetime

import (
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TypeName is the name of the scalar in the GraphQL schema.
const TypeName = "Datetime"

// layouts accepted by Parse, tried in order. Values without an offset are
// read as UTC.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseError reports a value that is not a recognised ISO-8601 date-time.
type ParseError struct {
	Value any
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid %s value %v", TypeName, e.Value)
	}
	return fmt.Sprintf("invalid %s value %v: %v", TypeName, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Format serializes t to its textual exchange representation.
func Format(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// Parse converts the textual representation back to a time value.
// Parse(Format(t)) is equal to t.
func Parse(s string) (time.Time, error) {
	value := strings.TrimSpace(s)
	if value == "" {
		return time.Time{}, &ParseError{Value: s}
	}

	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, &ParseError{Value: s, Err: lastErr}
}

// Datetime wraps time.Time so it can be used as the Datetime scalar by
// graphql-go resolvers and decoded from GraphQL responses.
type Datetime struct {
	time.Time
}

// New wraps t.
func New(t time.Time) Datetime {
	return Datetime{Time: t}
}

// ImplementsGraphQLType maps this custom Go type to the graphql scalar type
// in the schema.
func (Datetime) ImplementsGraphQLType(name string) bool {
	return name == TypeName
}

// UnmarshalGraphQL is a custom unmarshaler for Datetime.
func (d *Datetime) UnmarshalGraphQL(input any) error {
	switch input := input.(type) {
	case string:
		t, err := Parse(input)
		if err != nil {
			return err
		}
		d.Time = t
		return nil
	case time.Time:
		d.Time = input
		return nil
	default:
		return &ParseError{Value: input, Err: fmt.Errorf("wrong type %T", input)}
	}
}

// Input is a Datetime argument. It keeps the raw value and is parsed by the
// resolver reading it, so a malformed value fails that field only instead
// of the whole operation.
type Input struct {
	Raw string
}

// ImplementsGraphQLType maps Input to the Datetime scalar.
func (Input) ImplementsGraphQLType(name string) bool {
	return name == TypeName
}

// UnmarshalGraphQL records the argument without parsing it.
func (in *Input) UnmarshalGraphQL(input any) error {
	switch input := input.(type) {
	case string:
		in.Raw = input
	case time.Time:
		in.Raw = Format(input)
	default:
		in.Raw = fmt.Sprint(input)
	}
	return nil
}

// Time parses the recorded value.
func (in Input) Time() (time.Time, error) {
	return Parse(in.Raw)
}

// MarshalJSON is a custom marshaler for Datetime.
func (d Datetime) MarshalJSON() ([]byte, error) {
	return json.Marshal(Format(d.Time))
}

// UnmarshalJSON decodes the string form produced by MarshalJSON.
func (d *Datetime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return &ParseError{Value: string(b), Err: err}
	}
	return d.UnmarshalGraphQL(s)
}
