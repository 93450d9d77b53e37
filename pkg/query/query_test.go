package query_test

import (
	"testing"

	"github.com/JaimeStill/estate/pkg/query"
)

func testProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "properties", "p").
		Project("id", "id").
		Project("title", "title").
		Project("property_type", "propertyType").
		Project("price", "price").
		Project("created_at", "createdAt")
}

func ptr(s string) *string { return &s }

func TestProjectionMapFrom(t *testing.T) {
	if got := testProjection().From(); got != "public.properties p" {
		t.Errorf("From() = %q, want %q", got, "public.properties p")
	}
}

func TestProjectionMapColumns(t *testing.T) {
	got := testProjection().Columns()
	want := "p.id, p.title, p.property_type, p.price, p.created_at"
	if got != want {
		t.Errorf("Columns() = %q, want %q", got, want)
	}
}

func TestProjectionMapHas(t *testing.T) {
	p := testProjection()
	if !p.Has("propertyType") {
		t.Error("Has(propertyType) = false, want true")
	}
	if p.Has("property_type") {
		t.Error("Has(property_type) = true, want false")
	}
}

func TestProjectionMapReproject(t *testing.T) {
	p := testProjection().Project("listed_at", "createdAt")

	if got := p.Column("createdAt"); got != "p.listed_at" {
		t.Errorf("Column(createdAt) = %q, want p.listed_at", got)
	}
	if got := p.Columns(); got != "p.id, p.title, p.property_type, p.price, p.listed_at" {
		t.Errorf("Columns() = %q", got)
	}
}

func TestProjectionMapJoinOn(t *testing.T) {
	users := query.NewProjectionMap("public", "users", "u").Project("id", "id")
	props := testProjection().Project("creator", "creator")

	want := "public.users u ON u.id = p.creator"
	if got := props.JoinOn(users, "id", "creator"); got != want {
		t.Errorf("JoinOn() = %q, want %q", got, want)
	}
}

func TestParseSortFields(t *testing.T) {
	tests := []struct {
		name   string
		fields string
		orders string
		want   []query.SortField
	}{
		{"empty", "", "asc", nil},
		{"single asc", "price", "asc", []query.SortField{{Field: "price"}}},
		{"single desc", "price", "DESC", []query.SortField{{Field: "price", Descending: true}}},
		{"missing order", "title", "", []query.SortField{{Field: "title"}}},
		{
			"paired lists", "price, title", "desc,asc",
			[]query.SortField{{Field: "price", Descending: true}, {Field: "title"}},
		},
		{
			"fewer orders than fields", "price,title", "desc",
			[]query.SortField{{Field: "price", Descending: true}, {Field: "title"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := query.ParseSortFields(tt.fields, tt.orders)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d (%v)", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBuilderCount(t *testing.T) {
	sql, args := query.NewBuilder(testProjection()).
		WhereEquals("propertyType", ptr("Apartment")).
		WhereContains("title", ptr("lake")).
		BuildCount()

	want := "SELECT COUNT(*) FROM public.properties p WHERE p.property_type = $1 AND p.title ILIKE $2"
	if sql != want {
		t.Errorf("sql = %q\nwant  %q", sql, want)
	}
	if len(args) != 2 || *(args[0].(*string)) != "Apartment" || args[1] != "%lake%" {
		t.Errorf("args = %v", args)
	}
}

func TestBuilderSkipsNilFilters(t *testing.T) {
	var nilType *string
	sql, args := query.NewBuilder(testProjection()).
		WhereEquals("propertyType", nilType).
		WhereContains("title", ptr("")).
		BuildCount()

	if sql != "SELECT COUNT(*) FROM public.properties p" {
		t.Errorf("sql = %q", sql)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want none", args)
	}
}

func TestBuilderContainsEscapesWildcards(t *testing.T) {
	_, args := query.NewBuilder(testProjection()).
		WhereContains("title", ptr("50%_off")).
		BuildCount()

	if args[0] != `%50\%\_off%` {
		t.Errorf("arg = %q", args[0])
	}
}

func TestBuilderRange(t *testing.T) {
	def := query.SortField{Field: "createdAt", Descending: true}

	t.Run("default sort", func(t *testing.T) {
		sql, _ := query.NewBuilder(testProjection(), def).BuildRange(10, 5)
		want := "SELECT p.id, p.title, p.property_type, p.price, p.created_at FROM public.properties p ORDER BY p.created_at DESC LIMIT 5 OFFSET 10"
		if sql != want {
			t.Errorf("sql = %q\nwant  %q", sql, want)
		}
	})

	t.Run("explicit sort", func(t *testing.T) {
		sql, _ := query.NewBuilder(testProjection(), def).
			OrderByFields([]query.SortField{{Field: "price"}}).
			BuildRange(0, 2)
		want := "SELECT p.id, p.title, p.property_type, p.price, p.created_at FROM public.properties p ORDER BY p.price ASC LIMIT 2 OFFSET 0"
		if sql != want {
			t.Errorf("sql = %q\nwant  %q", sql, want)
		}
	})

	t.Run("unknown sort field falls back to default", func(t *testing.T) {
		sql, _ := query.NewBuilder(testProjection(), def).
			OrderByFields([]query.SortField{{Field: "price; DROP TABLE users"}}).
			BuildRange(0, 2)
		want := "SELECT p.id, p.title, p.property_type, p.price, p.created_at FROM public.properties p ORDER BY p.created_at DESC LIMIT 2 OFFSET 0"
		if sql != want {
			t.Errorf("sql = %q\nwant  %q", sql, want)
		}
	})
}

func TestBuilderSingle(t *testing.T) {
	sql, args := query.NewBuilder(testProjection()).BuildSingle("id", "abc")
	want := "SELECT p.id, p.title, p.property_type, p.price, p.created_at FROM public.properties p WHERE p.id = $1"
	if sql != want {
		t.Errorf("sql = %q\nwant  %q", sql, want)
	}
	if len(args) != 1 || args[0] != "abc" {
		t.Errorf("args = %v", args)
	}
}
