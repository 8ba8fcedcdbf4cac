package ingest

import (
	"errors"
	"fmt"

	"github.com/tendant/receipt-ingestion/pkg/pipeline"
)

// Error is a classified submission failure
type Error struct {
	Code    pipeline.Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus is the status the gateway answers with
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// NewError builds an Error without a cause
func NewError(code pipeline.Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap builds an Error around a collaborator failure
func Wrap(code pipeline.Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// AsError classifies any error, treating unclassified ones as INTERNAL
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(pipeline.CodeInternal, "Internal Server Error", err)
}
