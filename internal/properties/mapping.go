package properties

import (
	"net/url"

	"github.com/google/uuid"

	"github.com/JaimeStill/estate/pkg/query"
	"github.com/JaimeStill/estate/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "properties", "p").
	Project("id", "id").
	Project("title", "title").
	Project("description", "description").
	Project("property_type", "propertyType").
	Project("location", "location").
	Project("price", "price").
	Project("photo", "photo").
	Project("creator", "creator").
	Project("created_at", "createdAt").
	Project("updated_at", "updatedAt")

var defaultSort = query.SortField{Field: "createdAt", Descending: true}

// Filters narrows property listings. PropertyType and Creator match exactly;
// Title matches case-insensitively by substring.
type Filters struct {
	PropertyType *string    `json:"propertyType,omitempty"`
	Title        *string    `json:"title_like,omitempty"`
	Creator      *uuid.UUID `json:"creator,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("propertyType", f.PropertyType).
		WhereContains("title", f.Title).
		WhereEquals("creator", f.Creator)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// A creator that is not a valid id is ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if pt := values.Get("propertyType"); pt != "" {
		f.PropertyType = &pt
	}

	if t := values.Get("title_like"); t != "" {
		f.Title = &t
	}

	if c := values.Get("creator"); c != "" {
		if id, err := uuid.Parse(c); err == nil {
			f.Creator = &id
		}
	}

	return f
}

func (p *Property) dest() []any {
	return []any{
		&p.ID,
		&p.Title,
		&p.Description,
		&p.PropertyType,
		&p.Location,
		&p.Price,
		&p.Photo,
		&p.Creator,
		&p.CreatedAt,
		&p.UpdatedAt,
	}
}

func scanProperty(s repository.Scanner) (Property, error) {
	var p Property
	err := s.Scan(p.dest()...)
	return p, err
}

func scanDetail(s repository.Scanner) (Detail, error) {
	var d Detail
	err := s.Scan(append(d.Property.dest(), d.Creator.Dest()...)...)
	return d, err
}
