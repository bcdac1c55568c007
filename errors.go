package catalog

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/llehouerou/go-graphql-catalog/types"
)

// Codes the catalog server reports in extensions.code.
const (
	CodeInvalidInput   = types.CodeInvalidInput
	CodeUnknownSortKey = types.CodeUnknownSortKey
	CodeInternal       = types.CodeInternal
)

// Codes the client reports for failures on its side of the exchange.
const (
	ErrRequestError  = "request_error"
	ErrGraphQLEncode = "graphql_encode_error"
	ErrJsonDecode    = "json_decode_error"
	ErrGraphQLDecode = "graphql_decode_error"
)

const internalExtension = "internal"

// Errors is the "errors" member of a response. Returned as an error it holds
// at least one element.
type Errors []Error

// Error is one GraphQL error, from the server or raised by the client.
type Error struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions"`
	Path       []any          `json:"path"`
	Locations  []Location     `json:"locations"`
}

// Location is a position in the operation document.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// HTTPInfo is one side of an HTTP exchange.
type HTTPInfo struct {
	Headers http.Header
	Body    string
}

// InternalExtensions is the exchange a failure happened in, attached under
// extensions.internal when the client runs in debug mode.
type InternalExtensions struct {
	Request  *HTTPInfo
	Response *HTTPInfo
}

func (e Error) Error() string {
	return fmt.Sprintf("Message: %s, Locations: %+v", e.Message, e.Locations)
}

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// GetCode returns extensions.code, or "" when there is none.
func (e Error) GetCode() string {
	code, _ := e.Extensions["code"].(string)
	return code
}

// Field returns the name of the top-level field the error belongs to, or ""
// for errors outside any field.
func (e Error) Field() string {
	if len(e.Path) == 0 {
		return ""
	}
	name, _ := e.Path[0].(string)
	return name
}

// GetInternalExtensions returns the debug information of the error, or nil.
func (e Error) GetInternalExtensions() *InternalExtensions {
	internal, _ := e.Extensions[internalExtension].(*InternalExtensions)
	return internal
}

func (e Error) withInternal(internal *InternalExtensions) Error {
	ext := make(map[string]any, len(e.Extensions)+1)
	for k, v := range e.Extensions {
		ext[k] = v
	}
	ext[internalExtension] = internal
	e.Extensions = ext
	return e
}

// HasCode reports whether any error carries code.
func (e Errors) HasCode(code string) bool {
	for _, err := range e {
		if err.GetCode() == code {
			return true
		}
	}
	return false
}

// IsCode reports whether err holds a GraphQL error with code, for example
// CodeUnknownSortKey after an unsupported sortBy.
func IsCode(err error, code string) bool {
	var errs Errors
	return errors.As(err, &errs) && errs.HasCode(code)
}

func newError(code string, err error) Error {
	return Error{
		Message:    err.Error(),
		Extensions: map[string]any{"code": code},
	}
}
