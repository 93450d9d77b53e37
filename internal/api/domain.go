package api

import (
	"github.com/JaimeStill/estate/internal/photos"
	"github.com/JaimeStill/estate/internal/properties"
	"github.com/JaimeStill/estate/internal/users"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Users      users.System
	Photos     photos.System
	Properties properties.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	usersSystem := users.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	photosSystem := photos.New(
		runtime.Storage,
		runtime.MaxUploadSize,
		runtime.Logger,
	)

	propertiesSystem := properties.New(
		runtime.Database.Connection(),
		photosSystem,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Users:      usersSystem,
		Photos:     photosSystem,
		Properties: propertiesSystem,
	}
}
