package users

import (
	"fmt"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JaimeStill/estate/pkg/query"
	"github.com/JaimeStill/estate/pkg/repository"
)

// Projection maps the users table. Other domains join against it to expand
// a creator reference, so it is exported along with Scan.
var Projection = query.
	NewProjectionMap("public", "users", "u").
	Project("id", "id").
	Project("name", "name").
	Project("email", "email").
	Project("avatar", "avatar").
	Project("all_properties", "allProperties").
	Project("created_at", "createdAt")

var defaultSort = query.SortField{Field: "createdAt", Descending: true}

// pgtype.Map caches scan plans and is not safe for concurrent use.
var typeMaps = sync.Pool{New: func() any { return pgtype.NewMap() }}

// Filters narrows user listings. Name matches case-insensitively by substring.
type Filters struct {
	Name  *string `json:"name_like,omitempty"`
	Email *string `json:"email,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("name", f.Name).
		WhereEquals("email", f.Email)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if n := values.Get("name_like"); n != "" {
		f.Name = &n
	}
	if e := values.Get("email"); e != "" {
		f.Email = &e
	}

	return f
}

// Scan reads a row laid out in Projection column order.
func Scan(s repository.Scanner) (User, error) {
	var u User
	err := s.Scan(u.Dest()...)
	return u, err
}

// Dest returns scan destinations for u in Projection column order, for
// callers scanning a user out of a wider joined row.
func (u *User) Dest() []any {
	return []any{
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Avatar,
		(*idList)(&u.AllProperties),
		&u.CreatedAt,
	}
}

// idList scans a PostgreSQL uuid[] delivered in text form.
type idList []uuid.UUID

func (l *idList) Scan(src any) error {
	m := typeMaps.Get().(*pgtype.Map)
	defer typeMaps.Put(m)

	var raw []string
	if err := m.SQLScanner(&raw).Scan(src); err != nil {
		return fmt.Errorf("scan uuid array: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return fmt.Errorf("scan uuid array: %w", err)
		}
		ids = append(ids, id)
	}

	*l = ids
	return nil
}
