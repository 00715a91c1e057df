package columns

import (
	"errors"
	"net/http"
)

// Domain errors for column operations.
var (
	ErrNotFound    = errors.New("column not found")
	ErrDuplicate   = errors.New("column already exists")
	ErrInvalidType = errors.New("invalid column type")
	ErrEmptyName   = errors.New("column name must not be empty")
	ErrEmptyPrompt = errors.New("column prompt must not be empty")
)

// MapHTTPStatus maps column domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidType) || errors.Is(err, ErrEmptyName) || errors.Is(err, ErrEmptyPrompt) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
