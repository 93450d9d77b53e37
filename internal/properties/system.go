package properties

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/estate/internal/photos"
	"github.com/JaimeStill/estate/internal/users"
	"github.com/JaimeStill/estate/pkg/pagination"
	"github.com/JaimeStill/estate/pkg/query"
	"github.com/JaimeStill/estate/pkg/repository"
)

var tracer = otel.Tracer("github.com/JaimeStill/estate/internal/properties")

// System defines the public contract for property domain operations.
//
// Create and Delete change a property and its creator's property list in one
// transaction, so a committed state never holds one side of the link without
// the other.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(ctx context.Context, rng pagination.Range, filters Filters) (*pagination.Result[Property], error)
	Find(ctx context.Context, id uuid.UUID) (*Detail, error)
	Stats(ctx context.Context) (*Stats, error)

	Create(ctx context.Context, cmd CreateCommand) (*Property, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Property, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Reconcile reports creator links that disagree between properties and
	// user property lists, repairing them in one transaction when fix is set.
	Reconcile(ctx context.Context, fix bool) (*Report, error)
}

type repo struct {
	db         *sql.DB
	photos     photos.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a property repository implementing the System interface.
func New(
	db *sql.DB,
	photos photos.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		photos:     photos,
		logger:     logger.With("system", "properties"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(ctx context.Context, rng pagination.Range, filters Filters) (*pagination.Result[Property], error) {
	rng.Normalize(r.pagination)

	qb := query.NewBuilder(projection, defaultSort).OrderByFields(rng.Sort)
	filters.Apply(qb)

	countSQL, countArgs := qb.BuildCount()
	rangeSQL, rangeArgs := qb.BuildRange(rng.Offset(), rng.Limit())

	var (
		total int
		items []Property
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := r.db.QueryRowContext(gctx, countSQL, countArgs...).Scan(&total); err != nil {
			return fmt.Errorf("count properties: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		found, err := repository.QueryMany(gctx, r.db, rangeSQL, rangeArgs, scanProperty)
		if err != nil {
			return fmt.Errorf("query properties: %w", err)
		}
		items = found
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := pagination.NewResult(items, total)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Detail, error) {
	d, err := findDetail(ctx, r.db, id)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &d, nil
}

func (r *repo) Stats(ctx context.Context) (*Stats, error) {
	counts, err := typeCounts(ctx, r.db)
	if err != nil {
		return nil, fmt.Errorf("count property types: %w", err)
	}

	stats := &Stats{ByType: counts}
	for _, c := range counts {
		stats.Total += c.Count
	}
	return stats, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Property, error) {
	ctx, span := tracer.Start(ctx, "properties.Create")
	defer span.End()

	if err := cmd.Fields.validate(); err != nil {
		return nil, fail(span, err)
	}

	email := strings.TrimSpace(cmd.Email)
	if email == "" {
		return nil, fail(span, fmt.Errorf("%w: email required", ErrInvalid))
	}
	if strings.TrimSpace(cmd.Photo) == "" {
		return nil, fail(span, fmt.Errorf("%w: photo required", ErrInvalid))
	}

	owner, err := users.FindByEmail(ctx, r.db, email)
	if err != nil {
		return nil, fail(span, mapUserError(err))
	}
	span.SetAttributes(attribute.String("user.id", owner.ID.String()))

	photoURL, uploaded, err := r.resolvePhoto(ctx, cmd.Photo)
	if err != nil {
		return nil, fail(span, err)
	}

	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Property, error) {
		if err := users.Lock(ctx, tx, owner.ID); err != nil {
			return Property{}, err
		}

		p, err := insert(ctx, tx, cmd.Fields, photoURL, owner.ID)
		if err != nil {
			return Property{}, fmt.Errorf("insert property: %w", err)
		}

		if err := users.AppendProperty(ctx, tx, owner.ID, p.ID); err != nil {
			return Property{}, fmt.Errorf("link property to user: %w", err)
		}

		return p, nil
	})

	if err != nil {
		if uploaded {
			r.discardPhoto(ctx, photoURL)
		}
		return nil, fail(span, mapUserError(err))
	}

	span.SetAttributes(attribute.String("property.id", p.ID.String()))
	r.logger.Info("property created", "id", p.ID, "creator", owner.ID, "title", p.Title)
	return &p, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Property, error) {
	ctx, span := tracer.Start(ctx, "properties.Update",
		trace.WithAttributes(attribute.String("property.id", id.String())))
	defer span.End()

	if err := cmd.Fields.validate(); err != nil {
		return nil, fail(span, err)
	}

	var (
		photo    *string
		uploaded bool
	)
	switch input := strings.TrimSpace(cmd.Photo); {
	case input == "":
	case photos.IsRemote(input) && r.photos.Hosts(input):
		// A hosted URL is only accepted as the listing's own photo, which it keeps.
		current, err := storedPhoto(ctx, r.db, id)
		if err != nil {
			return nil, fail(span, repository.MapError(err, ErrNotFound, ErrDuplicate))
		}
		if current != input {
			return nil, fail(span, errHostedPhoto)
		}
	default:
		url, isNew, err := r.resolvePhoto(ctx, input)
		if err != nil {
			return nil, fail(span, err)
		}
		photo, uploaded = &url, isNew
	}

	p, prev, err := update(ctx, r.db, id, cmd.Fields, photo)
	if err != nil {
		if uploaded {
			r.discardPhoto(ctx, *photo)
		}
		return nil, fail(span, repository.MapError(err, ErrNotFound, ErrDuplicate))
	}

	replaced := prev != "" && prev != p.Photo
	if replaced {
		r.discardPhoto(ctx, prev)
	}

	r.logger.Info("property updated", "id", p.ID, "photo_replaced", replaced)
	return &p, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "properties.Delete",
		trace.WithAttributes(attribute.String("property.id", id.String())))
	defer span.End()

	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Property, error) {
		p, err := remove(ctx, tx, id)
		if err != nil {
			return Property{}, err
		}

		if err := users.RemoveProperty(ctx, tx, p.Creator, p.ID); err != nil {
			return Property{}, fmt.Errorf("unlink property from user: %w", err)
		}

		return p, nil
	})

	if err != nil {
		return fail(span, repository.MapError(err, ErrNotFound, ErrDuplicate))
	}

	r.discardPhoto(ctx, p.Photo)

	r.logger.Info("property deleted", "id", id, "creator", p.Creator)
	return nil
}

func (r *repo) Reconcile(ctx context.Context, fix bool) (*Report, error) {
	ctx, span := tracer.Start(ctx, "properties.Reconcile",
		trace.WithAttributes(attribute.Bool("reconcile.fix", fix)))
	defer span.End()

	report := &Report{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		found, err := links(gctx, r.db, danglingSQL)
		if err != nil {
			return fmt.Errorf("find dangling references: %w", err)
		}
		report.Dangling = found
		return nil
	})

	g.Go(func() error {
		found, err := links(gctx, r.db, missingSQL)
		if err != nil {
			return fmt.Errorf("find missing references: %w", err)
		}
		report.Missing = found
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fail(span, err)
	}

	span.SetAttributes(
		attribute.Int("reconcile.dangling", len(report.Dangling)),
		attribute.Int("reconcile.missing", len(report.Missing)),
	)

	if !fix || report.Consistent() {
		return report, nil
	}

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		for _, l := range report.Dangling {
			if err := prune(ctx, tx, l); err != nil {
				return struct{}{}, fmt.Errorf("prune %s from user %s: %w", l.PropertyID, l.UserID, err)
			}
		}
		for _, l := range report.Missing {
			if err := users.EnsureProperty(ctx, tx, l.UserID, l.PropertyID); err != nil {
				return struct{}{}, fmt.Errorf("link %s to user %s: %w", l.PropertyID, l.UserID, err)
			}
		}
		return struct{}{}, nil
	})
	if err != nil {
		return nil, fail(span, err)
	}

	report.Fixed = true
	r.logger.Info("creator links reconciled",
		"dangling", len(report.Dangling),
		"missing", len(report.Missing),
	)
	return report, nil
}

// errHostedPhoto rejects a media store URL the listing did not upload itself.
// A hosted blob belongs to exactly one listing.
var errHostedPhoto = fmt.Errorf("%w: media store URLs cannot be reused; upload the image instead", photos.ErrInvalidPhoto)

// resolvePhoto uploads a data URI payload or accepts an external http(s) URL
// as is. The boolean reports whether an upload happened.
func (r *repo) resolvePhoto(ctx context.Context, input string) (string, bool, error) {
	input = strings.TrimSpace(input)

	switch {
	case photos.IsPayload(input):
		url, err := r.photos.Upload(ctx, input)
		if err != nil {
			return "", false, err
		}
		return url, true, nil
	case photos.IsRemote(input):
		if r.photos.Hosts(input) {
			return "", false, errHostedPhoto
		}
		return input, false, nil
	default:
		return "", false, fmt.Errorf("%w: expected a data URI or http(s) URL", photos.ErrInvalidPhoto)
	}
}

// discardPhoto removes a hosted photo the store no longer references.
// Failures leave an orphaned blob and are only logged.
func (r *repo) discardPhoto(ctx context.Context, url string) {
	if err := r.photos.Remove(context.WithoutCancel(ctx), url); err != nil {
		r.logger.Warn("photo cleanup failed", "url", url, "error", err)
	}
}

// mapUserError resolves a missing owner, whether reported by a lookup, a
// row lock, or a foreign key check, to ErrUserNotFound.
func mapUserError(err error) error {
	switch {
	case errors.Is(err, users.ErrNotFound), repository.IsForeignKeyViolation(err):
		return ErrUserNotFound
	default:
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
