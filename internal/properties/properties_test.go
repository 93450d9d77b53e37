package properties_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/estate/internal/photos"
	"github.com/JaimeStill/estate/internal/properties"
	"github.com/JaimeStill/estate/pkg/lifecycle"
	"github.com/JaimeStill/estate/pkg/pagination"
	"github.com/JaimeStill/estate/pkg/storage"
)

const mediaURL = "https://media.test/photos/"

var (
	userID  = uuid.MustParse("7f9c24e8-3b12-4f6a-9d2e-1a2b3c4d5e6f")
	propID  = uuid.MustParse("0b6c1f3e-5a2d-4c8e-9f01-23456789abcd")
	otherID = uuid.MustParse("1c7d2a4f-6b3e-4d9f-8a12-3456789abcde")
	created = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

var (
	userColumns     = []string{"id", "name", "email", "avatar", "all_properties", "created_at"}
	propertyColumns = []string{
		"id", "title", "description", "property_type", "location",
		"price", "photo", "creator", "created_at", "updated_at",
	}
)

const payload = "data:image/png;base64,iVBORw0KGgo="

// fakePhotos hosts everything under mediaURL.
type fakePhotos struct {
	mu        sync.Mutex
	uploads   int
	removed   []string
	uploadErr error
}

func (f *fakePhotos) Upload(ctx context.Context, payload string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads++
	return mediaURL + "properties/new.png", nil
}

func (f *fakePhotos) Remove(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if strings.HasPrefix(url, mediaURL) {
		f.removed = append(f.removed, url)
	}
	return nil
}

func (f *fakePhotos) Hosts(url string) bool {
	return strings.HasPrefix(url, mediaURL)
}

func userRow() *sqlmock.Rows {
	return sqlmock.NewRows(userColumns).
		AddRow(userID.String(), "Ada Agent", "ada@example.com", "", "{}", created)
}

func propertyRow(photo string) *sqlmock.Rows {
	return sqlmock.NewRows(propertyColumns).
		AddRow(propID.String(), "Harbor Loft", "Two floors over the water", "apartment",
			"Lisbon", 450000.0, photo, userID.String(), created, created)
}

func newSystem(t *testing.T) (properties.System, sqlmock.Sqlmock, *fakePhotos) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ph := &fakePhotos{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sys := properties.New(db, ph, logger, pagination.Config{DefaultPageSize: 10, MaxPageSize: 100})
	return sys, mock, ph
}

func fields() properties.Fields {
	return properties.Fields{
		Title:        " Harbor Loft ",
		Description:  "Two floors over the water",
		PropertyType: " apartment",
		Location:     "Lisbon",
		Price:        450000,
	}
}

func TestCreateLinksCreator(t *testing.T) {
	sys, mock, ph := newSystem(t)

	mock.ExpectQuery(`FROM public.users u WHERE u.email = \$1`).
		WithArgs("ada@example.com").
		WillReturnRows(userRow())
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM public.users WHERE id = \$1 FOR UPDATE`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(userID.String()))
	mock.ExpectQuery(`INSERT INTO public.properties AS p`).
		WithArgs("Harbor Loft", "Two floors over the water", "apartment", "Lisbon", 450000.0,
			mediaURL+"properties/new.png", userID).
		WillReturnRows(propertyRow(mediaURL + "properties/new.png"))
	mock.ExpectExec(`array_append\(all_properties, \$2\) WHERE id = \$1`).
		WithArgs(userID, propID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p, err := sys.Create(context.Background(), properties.CreateCommand{
		Fields: fields(),
		Email:  "ada@example.com",
		Photo:  payload,
	})
	require.NoError(t, err)
	require.Equal(t, propID, p.ID)
	require.Equal(t, userID, p.Creator)
	require.Equal(t, 1, ph.uploads)
	require.Empty(t, ph.removed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateKeepsRemotePhoto(t *testing.T) {
	sys, mock, ph := newSystem(t)
	remote := "https://cdn.example.com/loft.jpg"

	mock.ExpectQuery(`WHERE u.email = \$1`).WillReturnRows(userRow())
	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(userID.String()))
	mock.ExpectQuery(`INSERT INTO public.properties`).
		WithArgs("Harbor Loft", "Two floors over the water", "apartment", "Lisbon", 450000.0, remote, userID).
		WillReturnRows(propertyRow(remote))
	mock.ExpectExec(`array_append`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := sys.Create(context.Background(), properties.CreateCommand{
		Fields: fields(),
		Email:  "ada@example.com",
		Photo:  remote,
	})
	require.NoError(t, err)
	require.Zero(t, ph.uploads)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRollsBackWhenLinkFails(t *testing.T) {
	sys, mock, ph := newSystem(t)

	mock.ExpectQuery(`WHERE u.email = \$1`).WillReturnRows(userRow())
	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(userID.String()))
	mock.ExpectQuery(`INSERT INTO public.properties`).
		WillReturnRows(propertyRow(mediaURL + "properties/new.png"))
	mock.ExpectExec(`array_append`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := sys.Create(context.Background(), properties.CreateCommand{
		Fields: fields(),
		Email:  "ada@example.com",
		Photo:  payload,
	})
	require.ErrorContains(t, err, "connection reset")
	require.Equal(t, []string{mediaURL + "properties/new.png"}, ph.removed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserDeletedMidFlight(t *testing.T) {
	sys, mock, ph := newSystem(t)

	mock.ExpectQuery(`WHERE u.email = \$1`).WillReturnRows(userRow())
	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := sys.Create(context.Background(), properties.CreateCommand{
		Fields: fields(),
		Email:  "ada@example.com",
		Photo:  payload,
	})
	require.ErrorIs(t, err, properties.ErrUserNotFound)
	require.Len(t, ph.removed, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUnknownEmail(t *testing.T) {
	sys, mock, ph := newSystem(t)

	mock.ExpectQuery(`WHERE u.email = \$1`).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := sys.Create(context.Background(), properties.CreateCommand{
		Fields: fields(),
		Email:  "nobody@example.com",
		Photo:  payload,
	})
	require.ErrorIs(t, err, properties.ErrUserNotFound)
	require.Equal(t, 404, properties.MapHTTPStatus(err))
	require.Zero(t, ph.uploads)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		cmd  func() properties.CreateCommand
	}{
		{
			name: "missing title",
			cmd: func() properties.CreateCommand {
				f := fields()
				f.Title = "  "
				return properties.CreateCommand{Fields: f, Email: "ada@example.com", Photo: payload}
			},
		},
		{
			name: "zero price",
			cmd: func() properties.CreateCommand {
				f := fields()
				f.Price = 0
				return properties.CreateCommand{Fields: f, Email: "ada@example.com", Photo: payload}
			},
		},
		{
			name: "missing email",
			cmd: func() properties.CreateCommand {
				return properties.CreateCommand{Fields: fields(), Photo: payload}
			},
		},
		{
			name: "missing photo",
			cmd: func() properties.CreateCommand {
				return properties.CreateCommand{Fields: fields(), Email: "ada@example.com"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys, mock, _ := newSystem(t)

			_, err := sys.Create(context.Background(), tt.cmd())
			require.ErrorIs(t, err, properties.ErrInvalid)
			require.Equal(t, 400, properties.MapHTTPStatus(err))
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreateRejectsUnknownPhotoFormat(t *testing.T) {
	sys, mock, ph := newSystem(t)

	mock.ExpectQuery(`WHERE u.email = \$1`).WillReturnRows(userRow())

	_, err := sys.Create(context.Background(), properties.CreateCommand{
		Fields: fields(),
		Email:  "ada@example.com",
		Photo:  "ftp://files.example.com/loft.jpg",
	})
	require.ErrorIs(t, err, photos.ErrInvalidPhoto)
	require.Equal(t, 400, properties.MapHTTPStatus(err))
	require.Zero(t, ph.uploads)
}

func TestUpdateKeepsPhoto(t *testing.T) {
	sys, mock, ph := newSystem(t)
	stored := mediaURL + "properties/old.png"

	mock.ExpectQuery(`WITH prev AS`).
		WithArgs(propID, "Harbor Loft", "Two floors over the water", "apartment", "Lisbon", 450000.0, nil).
		WillReturnRows(sqlmock.NewRows(append(propertyColumns, "prev_photo")).
			AddRow(propID.String(), "Harbor Loft", "Two floors over the water", "apartment",
				"Lisbon", 450000.0, stored, userID.String(), created, created, stored))

	p, err := sys.Update(context.Background(), propID, properties.UpdateCommand{Fields: fields()})
	require.NoError(t, err)
	require.Equal(t, stored, p.Photo)
	require.Zero(t, ph.uploads)
	require.Empty(t, ph.removed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateReplacesPhoto(t *testing.T) {
	sys, mock, ph := newSystem(t)
	old := mediaURL + "properties/old.png"
	fresh := mediaURL + "properties/new.png"

	mock.ExpectQuery(`WITH prev AS`).
		WithArgs(propID, "Harbor Loft", "Two floors over the water", "apartment", "Lisbon", 450000.0, fresh).
		WillReturnRows(sqlmock.NewRows(append(propertyColumns, "prev_photo")).
			AddRow(propID.String(), "Harbor Loft", "Two floors over the water", "apartment",
				"Lisbon", 450000.0, fresh, userID.String(), created, created, old))

	p, err := sys.Update(context.Background(), propID, properties.UpdateCommand{
		Fields: fields(),
		Photo:  payload,
	})
	require.NoError(t, err)
	require.Equal(t, fresh, p.Photo)
	require.Equal(t, []string{old}, ph.removed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateNotFoundDiscardsUpload(t *testing.T) {
	sys, mock, ph := newSystem(t)

	mock.ExpectQuery(`WITH prev AS`).
		WillReturnRows(sqlmock.NewRows(append(propertyColumns, "prev_photo")))

	_, err := sys.Update(context.Background(), propID, properties.UpdateCommand{
		Fields: fields(),
		Photo:  payload,
	})
	require.ErrorIs(t, err, properties.ErrNotFound)
	require.Equal(t, []string{mediaURL + "properties/new.png"}, ph.removed)
}

func updatedRow(photo, prev string) *sqlmock.Rows {
	return sqlmock.NewRows(append(propertyColumns, "prev_photo")).
		AddRow(propID.String(), "Harbor Loft", "Two floors over the water", "apartment",
			"Lisbon", 450000.0, photo, userID.String(), created, created, prev)
}

func TestCreateRejectsHostedPhoto(t *testing.T) {
	sys, mock, ph := newSystem(t)

	mock.ExpectQuery(`WHERE u.email = \$1`).WillReturnRows(userRow())

	_, err := sys.Create(context.Background(), properties.CreateCommand{
		Fields: fields(),
		Email:  "ada@example.com",
		Photo:  mediaURL + "properties/a.png",
	})
	require.ErrorIs(t, err, photos.ErrInvalidPhoto)
	require.Equal(t, 400, properties.MapHTTPStatus(err))
	require.Zero(t, ph.uploads)
	require.Empty(t, ph.removed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRejectsAnotherListingsPhoto(t *testing.T) {
	sys, mock, ph := newSystem(t)

	mock.ExpectQuery(`SELECT photo FROM public.properties WHERE id = \$1`).
		WithArgs(propID).
		WillReturnRows(sqlmock.NewRows([]string{"photo"}).AddRow(mediaURL + "properties/b.png"))

	_, err := sys.Update(context.Background(), propID, properties.UpdateCommand{
		Fields: fields(),
		Photo:  mediaURL + "properties/a.png",
	})
	require.ErrorIs(t, err, photos.ErrInvalidPhoto)
	require.Empty(t, ph.removed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateKeepsOwnHostedPhoto(t *testing.T) {
	sys, mock, ph := newSystem(t)
	own := mediaURL + "properties/b.png"

	mock.ExpectQuery(`SELECT photo FROM public.properties WHERE id = \$1`).
		WithArgs(propID).
		WillReturnRows(sqlmock.NewRows([]string{"photo"}).AddRow(own))
	mock.ExpectQuery(`WITH prev AS`).
		WithArgs(propID, "Harbor Loft", "Two floors over the water", "apartment", "Lisbon", 450000.0, nil).
		WillReturnRows(updatedRow(own, own))

	p, err := sys.Update(context.Background(), propID, properties.UpdateCommand{
		Fields: fields(),
		Photo:  own,
	})
	require.NoError(t, err)
	require.Equal(t, own, p.Photo)
	require.Zero(t, ph.uploads)
	require.Empty(t, ph.removed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateHostedPhotoOfMissingProperty(t *testing.T) {
	sys, mock, _ := newSystem(t)

	mock.ExpectQuery(`SELECT photo FROM public.properties WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"photo"}))

	_, err := sys.Update(context.Background(), propID, properties.UpdateCommand{
		Fields: fields(),
		Photo:  mediaURL + "properties/a.png",
	})
	require.ErrorIs(t, err, properties.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateToExternalPhotoDiscardsHosted(t *testing.T) {
	sys, mock, ph := newSystem(t)
	old := mediaURL + "properties/old.png"
	remote := "https://cdn.example.com/loft.jpg"

	mock.ExpectQuery(`WITH prev AS`).
		WithArgs(propID, "Harbor Loft", "Two floors over the water", "apartment", "Lisbon", 450000.0, remote).
		WillReturnRows(updatedRow(remote, old))

	p, err := sys.Update(context.Background(), propID, properties.UpdateCommand{
		Fields: fields(),
		Photo:  remote,
	})
	require.NoError(t, err)
	require.Equal(t, remote, p.Photo)
	require.Zero(t, ph.uploads)
	require.Equal(t, []string{old}, ph.removed)
	require.NoError(t, mock.ExpectationsWereMet())
}

// blobStore is an in-memory storage.System rooted at mediaURL.
type blobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func (b *blobStore) Start(*lifecycle.Coordinator) error { return nil }

func (b *blobStore) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[key] = data
	return mediaURL + key, nil
}

func (b *blobStore) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.blobs[key]; !ok {
		return storage.ErrNotFound
	}
	delete(b.blobs, key)
	return nil
}

func (b *blobStore) KeyFromURL(url string) (string, bool) {
	return storage.KeyFromURL(mediaURL, url)
}

func (b *blobStore) has(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.blobs[key]
	return ok
}

func TestHostedPhotoStaysWithItsListing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := &blobStore{blobs: map[string][]byte{"properties/a.png": []byte("listing a")}}
	sys := properties.New(db, photos.New(store, 1<<20, logger), logger,
		pagination.Config{DefaultPageSize: 10, MaxPageSize: 100})

	shared := mediaURL + "properties/a.png"
	ctx := context.Background()

	mock.ExpectQuery(`WHERE u.email = \$1`).WillReturnRows(userRow())
	_, err = sys.Create(ctx, properties.CreateCommand{Fields: fields(), Email: "ada@example.com", Photo: shared})
	require.ErrorIs(t, err, photos.ErrInvalidPhoto)

	mock.ExpectQuery(`SELECT photo FROM public.properties WHERE id = \$1`).
		WithArgs(otherID).
		WillReturnRows(sqlmock.NewRows([]string{"photo"}).AddRow("https://cdn.example.com/b.jpg"))
	_, err = sys.Update(ctx, otherID, properties.UpdateCommand{Fields: fields(), Photo: shared})
	require.ErrorIs(t, err, photos.ErrInvalidPhoto)

	require.True(t, store.has("properties/a.png"), "listing a photo must survive")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUnlinksCreator(t *testing.T) {
	sys, mock, ph := newSystem(t)
	stored := mediaURL + "properties/old.png"

	mock.ExpectBegin()
	mock.ExpectQuery(`DELETE FROM public.properties AS p WHERE p.id = \$1 RETURNING`).
		WithArgs(propID).
		WillReturnRows(propertyRow(stored))
	mock.ExpectExec(`array_remove\(all_properties, \$2\) WHERE id = \$1`).
		WithArgs(userID, propID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, sys.Delete(context.Background(), propID))
	require.Equal(t, []string{stored}, ph.removed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteNotFound(t *testing.T) {
	sys, mock, ph := newSystem(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`DELETE FROM public.properties`).
		WithArgs(propID).
		WillReturnRows(sqlmock.NewRows(propertyColumns))
	mock.ExpectRollback()

	err := sys.Delete(context.Background(), propID)
	require.ErrorIs(t, err, properties.ErrNotFound)
	require.Equal(t, 404, properties.MapHTTPStatus(err))
	require.Empty(t, ph.removed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindExpandsCreator(t *testing.T) {
	sys, mock, _ := newSystem(t)

	mock.ExpectQuery(`FROM public.properties p JOIN public.users u ON u.id = p.creator WHERE p.id = \$1`).
		WithArgs(propID).
		WillReturnRows(sqlmock.NewRows(append(append([]string{}, propertyColumns...), userColumns...)).
			AddRow(propID.String(), "Harbor Loft", "Two floors over the water", "apartment",
				"Lisbon", 450000.0, "https://cdn.example.com/loft.jpg", userID.String(), created, created,
				userID.String(), "Ada Agent", "ada@example.com", "", "{"+propID.String()+"}", created))

	d, err := sys.Find(context.Background(), propID)
	require.NoError(t, err)
	require.Equal(t, "Harbor Loft", d.Title)
	require.Equal(t, "ada@example.com", d.Creator.Email)
	require.Equal(t, []uuid.UUID{propID}, d.Creator.AllProperties)
}

func TestList(t *testing.T) {
	sys, mock, _ := newSystem(t)
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM public.properties p WHERE p.property_type = \$1 AND p.title ILIKE \$2`).
		WithArgs("villa", "%sea%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery(`WHERE p.property_type = \$1 AND p.title ILIKE \$2 ORDER BY p.price ASC LIMIT 5 OFFSET 5`).
		WithArgs("villa", "%sea%").
		WillReturnRows(propertyRow("https://cdn.example.com/loft.jpg"))

	pt, title := "villa", "sea"
	result, err := sys.List(
		context.Background(),
		pagination.RangeFromQuery(map[string][]string{
			"_start": {"5"}, "_end": {"10"}, "_sort": {"price"}, "_order": {"asc"},
		}, pagination.Config{DefaultPageSize: 10, MaxPageSize: 100}),
		properties.Filters{PropertyType: &pt, Title: &title},
	)
	require.NoError(t, err)
	require.Equal(t, 7, result.Total)
	require.Len(t, result.Data, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStats(t *testing.T) {
	sys, mock, _ := newSystem(t)

	mock.ExpectQuery(`GROUP BY p.property_type`).
		WillReturnRows(sqlmock.NewRows([]string{"property_type", "count"}).
			AddRow("apartment", 3).
			AddRow("villa", 1))

	stats, err := sys.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, stats.Total)
	require.Equal(t, []properties.TypeCount{
		{PropertyType: "apartment", Count: 3},
		{PropertyType: "villa", Count: 1},
	}, stats.ByType)
}

func expectDrift(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`unnest\(u.all_properties\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "ref"}).AddRow(userID.String(), otherID.String()))
	mock.ExpectQuery(`NOT \(p.id = ANY\(u.all_properties\)\)`).
		WillReturnRows(sqlmock.NewRows([]string{"creator", "id"}).AddRow(userID.String(), propID.String()))
}

func TestReconcileReportsDrift(t *testing.T) {
	sys, mock, _ := newSystem(t)
	mock.MatchExpectationsInOrder(false)
	expectDrift(mock)

	report, err := sys.Reconcile(context.Background(), false)
	require.NoError(t, err)
	require.False(t, report.Consistent())
	require.False(t, report.Fixed)
	require.Equal(t, []properties.Link{{UserID: userID, PropertyID: otherID}}, report.Dangling)
	require.Equal(t, []properties.Link{{UserID: userID, PropertyID: propID}}, report.Missing)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileFixes(t *testing.T) {
	sys, mock, _ := newSystem(t)
	mock.MatchExpectationsInOrder(false)
	expectDrift(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`array_remove\(all_properties, \$2\)\s+WHERE id = \$1\s+AND NOT EXISTS`).
		WithArgs(userID, otherID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`array_append\(all_properties, \$2\)\s+WHERE id = \$1 AND NOT`).
		WithArgs(userID, propID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	report, err := sys.Reconcile(context.Background(), true)
	require.NoError(t, err)
	require.True(t, report.Fixed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReconcileConsistentSkipsFix(t *testing.T) {
	sys, mock, _ := newSystem(t)
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery(`unnest`).WillReturnRows(sqlmock.NewRows([]string{"id", "ref"}))
	mock.ExpectQuery(`ANY`).WillReturnRows(sqlmock.NewRows([]string{"creator", "id"}))

	report, err := sys.Reconcile(context.Background(), true)
	require.NoError(t, err)
	require.True(t, report.Consistent())
	require.False(t, report.Fixed)
	require.NoError(t, mock.ExpectationsWereMet())
}
