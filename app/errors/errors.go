package errors

import (
	"errors"
	"fmt"
	"net/http"

	goerrors "github.com/go-errors/errors"
)

type ErrorType string

const (
	ErrTypeNotFound           ErrorType = "NOT_FOUND"
	ErrTypeInvalidInput       ErrorType = "INVALID_INPUT"
	ErrTypeUnauthenticated    ErrorType = "UNAUTHENTICATED"
	ErrTypeInvalidCredentials ErrorType = "INVALID_CREDENTIALS"
	ErrTypeForbidden          ErrorType = "FORBIDDEN"
	ErrTypeConflict           ErrorType = "CONFLICT"
	ErrTypeInternal           ErrorType = "INTERNAL"
	ErrTypeUnavailable        ErrorType = "UNAVAILABLE"
)

type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Stack   []byte
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) StackTrace() []byte {
	return e.Stack
}

func New(errType ErrorType, message string, err error) *DomainError {
	var stack []byte
	if err != nil {
		if stackErr, ok := err.(*goerrors.Error); ok {
			stack = stackErr.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}

	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

func NotFound(message string, err error) *DomainError {
	return New(ErrTypeNotFound, message, err)
}

func InvalidInput(message string, err error) *DomainError {
	return New(ErrTypeInvalidInput, message, err)
}

// Unauthenticated is reported when no identity cookie accompanies the request.
func Unauthenticated(message string, err error) *DomainError {
	return New(ErrTypeUnauthenticated, message, err)
}

// InvalidCredentials is reported when the identity cookie fails verification.
func InvalidCredentials(message string, err error) *DomainError {
	return New(ErrTypeInvalidCredentials, message, err)
}

// Forbidden is reported when a verified identity does not own the resource.
func Forbidden(message string, err error) *DomainError {
	return New(ErrTypeForbidden, message, err)
}

func Conflict(message string, err error) *DomainError {
	return New(ErrTypeConflict, message, err)
}

func Internal(message string, err error) *DomainError {
	return New(ErrTypeInternal, message, err)
}

func Unavailable(message string, err error) *DomainError {
	return New(ErrTypeUnavailable, message, err)
}

// TypeOf returns the type of the first DomainError in err's chain, or
// ErrTypeInternal when there is none.
func TypeOf(err error) ErrorType {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type
	}
	return ErrTypeInternal
}

// Is reports whether err carries a DomainError of the given type.
func Is(err error, errType ErrorType) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Type == errType
}

// HTTPStatus maps an error to the status code reported to clients.
func HTTPStatus(err error) int {
	switch TypeOf(err) {
	case ErrTypeNotFound:
		return http.StatusNotFound
	case ErrTypeInvalidInput:
		return http.StatusBadRequest
	case ErrTypeUnauthenticated, ErrTypeInvalidCredentials:
		return http.StatusUnauthorized
	case ErrTypeForbidden:
		return http.StatusForbidden
	case ErrTypeConflict:
		return http.StatusConflict
	case ErrTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message safe to send to clients. Internal errors
// never leak their cause.
func PublicMessage(err error) string {
	var de *DomainError
	if !errors.As(err, &de) {
		return "internal server error"
	}
	if de.Type == ErrTypeInternal {
		return de.Message
	}
	if de.Err != nil && de.Type == ErrTypeInvalidInput {
		return fmt.Sprintf("%s: %v", de.Message, de.Err)
	}
	return de.Message
}
