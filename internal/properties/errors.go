package properties

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/estate/internal/photos"
)

// Domain errors for property operations.
var (
	ErrNotFound     = errors.New("property not found")
	ErrUserNotFound = errors.New("user not found")
	ErrDuplicate    = errors.New("property already exists")
	ErrInvalid      = errors.New("invalid property")
)

// MapHTTPStatus maps property domain errors to HTTP status codes. Photo
// errors keep their own mapping; anything unrecognized is a 500.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	default:
		return photos.MapHTTPStatus(err)
	}
}
