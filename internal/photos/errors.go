package photos

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidPhoto = errors.New("invalid photo")
	ErrTooLarge     = errors.New("photo exceeds maximum upload size")
	ErrUpload       = errors.New("photo upload failed")
)

// MapHTTPStatus maps photo errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidPhoto):
		return http.StatusBadRequest
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
