package collections

import (
	"errors"
	"net/http"
)

// Domain errors for collection operations.
var (
	ErrNotFound        = errors.New("collection not found")
	ErrDuplicate       = errors.New("collection already exists")
	ErrEmptyName       = errors.New("collection name cannot be empty")
	ErrInvalidSettings = errors.New("aggregation order and hidden documents must be collection members")
	ErrNotMember       = errors.New("document is not a collection member")
	ErrColumnNotFound  = errors.New("column not found")
)

// MapHTTPStatus maps collection domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrColumnNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrEmptyName) ||
		errors.Is(err, ErrInvalidSettings) ||
		errors.Is(err, ErrNotMember) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
