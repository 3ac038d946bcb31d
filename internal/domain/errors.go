package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error the service layer returns unwraps to one of these.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInternal     = errors.New("internal error")
)

// Code is a stable, client-facing error identifier.
type Code string

const (
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeInvalidID         Code = "INVALID_ID"
	CodeInvalidPosition   Code = "INVALID_POSITION"
	CodeMissingFields     Code = "MISSING_FIELDS"
	CodeTypeMismatch      Code = "TYPE_MISMATCH"
	CodeBadRequest        Code = "BAD_REQUEST"
	CodeInvalidJSON       Code = "INVALID_JSON"
	CodeInternal          Code = "INTERNAL_ERROR"
	CodeListNotFound      Code = "LIST_NOT_FOUND"
	CodeListTitleRequired Code = "LIST_TITLE_REQUIRED"
	CodeListAlreadyExists Code = "LIST_ALREADY_EXISTS"
	CodeTaskNotFound      Code = "TASK_NOT_FOUND"
	CodeTaskTitleRequired Code = "TASK_TITLE_REQUIRED"
	CodeTaskAlreadyExists Code = "TASK_ALREADY_EXISTS"
)

var messages = map[Code]string{
	CodeUnauthorized:      "Unauthorized access",
	CodeInvalidID:         "Invalid ID",
	CodeInvalidPosition:   "Position is invalid. It must be a non-negative integer.",
	CodeMissingFields:     "Required fields missing",
	CodeTypeMismatch:      "Request field has the wrong type",
	CodeBadRequest:        "Bad request",
	CodeInvalidJSON:       "Invalid JSON payload",
	CodeInternal:          "Internal server error",
	CodeListNotFound:      "This list no longer exists or you don't have permission to access it.",
	CodeListTitleRequired: "Add a title before adding or editing the list.",
	CodeListAlreadyExists: "A list with this title already exists in your account.",
	CodeTaskNotFound:      "This task no longer exists or you don't have permission to access it.",
	CodeTaskTitleRequired: "Add a title before adding or editing the task.",
	CodeTaskAlreadyExists: "A task with this title already exists in your account.",
}

// Message returns the default client-facing message for the code.
func (c Code) Message() string {
	if msg, ok := messages[c]; ok {
		return msg
	}
	return string(c)
}

// Error carries a kind, a stable code and an optional message override.
// Internal errors keep their cause in Err; it is never shown to clients.
type Error struct {
	Kind error
	Code Code
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Code, e.Message())
}

// Message is the text safe to return to a client.
func (e *Error) Message() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Code.Message()
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func Validation(code Code) *Error {
	return &Error{Kind: ErrValidation, Code: code}
}

func Validationf(code Code, format string, args ...any) *Error {
	return &Error{Kind: ErrValidation, Code: code, Msg: fmt.Sprintf(format, args...)}
}

func Unauthorized() *Error {
	return &Error{Kind: ErrUnauthorized, Code: CodeUnauthorized}
}

func NotFound(code Code) *Error {
	return &Error{Kind: ErrNotFound, Code: code}
}

func Conflict(code Code) *Error {
	return &Error{Kind: ErrConflict, Code: code}
}

func Internal(err error) *Error {
	return &Error{Kind: ErrInternal, Code: CodeInternal, Err: err}
}
