package resolver

import (
	"fmt"

	"github.com/llehouerou/go-graphql-catalog/types"
)

// Error codes reported in the extensions of GraphQL errors.
const (
	CodeInvalidInput   = types.CodeInvalidInput
	CodeUnknownSortKey = types.CodeUnknownSortKey
	CodeInternal       = types.CodeInternal
)

// Error is a resolver error carrying a machine readable code. graphql-go
// copies Extensions into the response error.
type Error struct {
	Code    string
	Message string
	Err     error
}

func newError(code string, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Extensions implements the graphql-go extensions interface.
func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.Code}
}
