package civic

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/civic-lens/civic-backend/pkg/blobstore"
	"github.com/civic-lens/civic-backend/pkg/validation"
)

type ErrorKind string

const (
	KIND_VALIDATION              ErrorKind = "ValidationError"
	KIND_INVALID_IDENTIFIER      ErrorKind = "InvalidIdentifier"
	KIND_NOT_FOUND               ErrorKind = "NotFound"
	KIND_SPAM_REJECTED           ErrorKind = "SpamRejected"
	KIND_INVALID_QUERY_PARAMETER ErrorKind = "InvalidQueryParameter"
	KIND_STORAGE                 ErrorKind = "StorageError"
	KIND_INTERNAL                ErrorKind = "InternalError"
)

// HTTPStatus maps an error kind to the status code the API answers with.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KIND_VALIDATION, KIND_INVALID_IDENTIFIER, KIND_SPAM_REJECTED, KIND_INVALID_QUERY_PARAMETER:
		return http.StatusBadRequest
	case KIND_NOT_FOUND:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is the single error type leaving the pipeline. Err holds the underlying cause for
// logging and is never rendered to clients.
type Error struct {
	Kind    ErrorKind
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// SpamDetails is attached to SpamRejected errors.
type SpamDetails struct {
	Text string `json:"text"`
}

// QueryParamDetails is attached to InvalidQueryParameter errors.
type QueryParamDetails struct {
	Param string `json:"param"`
	Value string `json:"value"`
}

func NotFound(message string) *Error {
	return &Error{Kind: KIND_NOT_FOUND, Message: message}
}

func SpamRejected(text string) *Error {
	return &Error{Kind: KIND_SPAM_REJECTED, Message: "spam detected", Details: SpamDetails{Text: text}}
}

func InvalidQueryParameter(param string, value string, message string) *Error {
	return &Error{
		Kind:    KIND_INVALID_QUERY_PARAMETER,
		Message: message,
		Details: QueryParamDetails{Param: param, Value: value},
	}
}

func StorageFailure(message string, err error) *Error {
	return &Error{Kind: KIND_STORAGE, Message: message, Err: err}
}

func Internal(message string, err error) *Error {
	return &Error{Kind: KIND_INTERNAL, Message: message, Err: err}
}

// AsError classifies any error returned by the pipeline or by the boundary validators.
// Unknown errors become InternalError.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}

	var cErr *Error
	if errors.As(err, &cErr) {
		return cErr
	}

	var verr *validation.ValidationError
	if errors.As(err, &verr) {
		return &Error{Kind: KIND_VALIDATION, Message: "invalid request body", Details: verr.Violations, Err: err}
	}

	var idErr *validation.InvalidIdentifierError
	if errors.As(err, &idErr) {
		return &Error{Kind: KIND_INVALID_IDENTIFIER, Message: "invalid id parameter", Details: idErr, Err: err}
	}

	var sErr *blobstore.StorageError
	if errors.As(err, &sErr) {
		return StorageFailure("blob storage failure", err)
	}

	return Internal("unexpected error", err)
}
