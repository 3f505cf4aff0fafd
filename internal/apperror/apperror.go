package apperror

import (
	"errors"
	"net/http"
)

type Code string

const (
	BadRequest Code = "BAD_REQUEST"
	NotFound   Code = "NOT_FOUND"
	Internal   Code = "INTERNAL"
	Upstream   Code = "UPSTREAM"
)

type AppError struct {
	code    Code
	message string
	cause   error
}

func New(code Code, message string) *AppError {
	return &AppError{code: code, message: message}
}

// Wrap attaches cause to a new AppError; the cause stays reachable through
// errors.Is/As but is not shown to clients.
func Wrap(code Code, message string, cause error) *AppError {
	return &AppError{code: code, message: message, cause: cause}
}

func (e *AppError) Error() string   { return e.message }
func (e *AppError) Unwrap() error   { return e.cause }
func (e *AppError) Code() Code      { return e.code }
func (e *AppError) Message() string { return e.message }

func (e *AppError) HTTPStatus() int {
	switch e.code {
	case BadRequest:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Upstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// As returns the AppError in err's chain, if any.
func As(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
