// Package properties implements the listing domain: property records, the
// workflows that keep each property linked to its creator's property list,
// and drift reconciliation for that link.
package properties

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/estate/internal/users"
)

// Property is a listing. Creator is fixed at creation.
type Property struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	PropertyType string    `json:"propertyType"`
	Location     string    `json:"location"`
	Price        float64   `json:"price"`
	Photo        string    `json:"photo"`
	Creator      uuid.UUID `json:"creator"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Detail is a property with its creator expanded into the full user record.
type Detail struct {
	Property
	Creator users.User `json:"creator"`
}

// Fields holds the mutable listing attributes.
type Fields struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	PropertyType string  `json:"propertyType"`
	Location     string  `json:"location"`
	Price        float64 `json:"price"`
}

// CreateCommand carries a new listing, its owner's email, and the photo as
// a base64 data URI or an already hosted http(s) URL.
type CreateCommand struct {
	Fields
	Email string `json:"email"`
	Photo string `json:"photo"`
}

// UpdateCommand replaces a listing's fields. A Photo data URI is uploaded and
// replaces the stored image, an http(s) URL is stored as given, and an empty
// value keeps the current photo.
type UpdateCommand struct {
	Fields
	Photo string `json:"photo"`
}

// Stats summarizes listings for the dashboard.
type Stats struct {
	Total  int         `json:"total"`
	ByType []TypeCount `json:"byType"`
}

// TypeCount is the number of listings of one property type.
type TypeCount struct {
	PropertyType string `json:"propertyType"`
	Count        int    `json:"count"`
}

// Link is one creator reference between a user and a property.
type Link struct {
	UserID     uuid.UUID `json:"userId"`
	PropertyID uuid.UUID `json:"propertyId"`
}

// Report lists the creator links that disagree between the two tables.
// Dangling entries sit in a user's list without a matching property created
// by that user; Missing entries are properties absent from their creator's list.
type Report struct {
	Dangling []Link `json:"dangling"`
	Missing  []Link `json:"missing"`
	Fixed    bool   `json:"fixed"`
}

// Consistent reports whether no drift was found.
func (r *Report) Consistent() bool {
	return len(r.Dangling) == 0 && len(r.Missing) == 0
}

func (f *Fields) normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.PropertyType = strings.TrimSpace(f.PropertyType)
	f.Location = strings.TrimSpace(f.Location)
}

func (f *Fields) validate() error {
	f.normalize()

	var missing []string
	if f.Title == "" {
		missing = append(missing, "title")
	}
	if f.Description == "" {
		missing = append(missing, "description")
	}
	if f.PropertyType == "" {
		missing = append(missing, "propertyType")
	}
	if f.Location == "" {
		missing = append(missing, "location")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", ErrInvalid, strings.Join(missing, ", "))
	}
	if f.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrInvalid)
	}
	return nil
}
