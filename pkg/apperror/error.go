package apperror

import (
	"errors"
	"net/http"

	"flowrk-backend/internal/domain"
)

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message, nil)
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, message, nil)
}

func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, message, nil)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message, nil)
}

func Conflict(message string) *AppError {
	return New(http.StatusConflict, message, nil)
}

func Unavailable(err error) *AppError {
	return New(http.StatusServiceUnavailable, "Data store temporarily unavailable. Please try again.", err)
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, "Internal Server Error", err)
}

// FromStore maps store and collection errors to API errors. what names the missing thing ("Job").
func FromStore(err error, what string) error {
	var appErr *AppError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, domain.ErrNotFound):
		return NotFound(what + " not found")
	case errors.Is(err, domain.ErrStoreUnavailable):
		return Unavailable(err)
	case errors.Is(err, domain.ErrInvalidPath):
		return BadRequest("Invalid identifier")
	default:
		return Internal(err)
	}
}
