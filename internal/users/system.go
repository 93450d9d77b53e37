package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/estate/pkg/pagination"
	"github.com/JaimeStill/estate/pkg/query"
	"github.com/JaimeStill/estate/pkg/repository"
)

// System defines the public contract for user domain operations.
type System interface {
	Handler() *Handler

	List(ctx context.Context, rng pagination.Range, filters Filters) (*pagination.Result[User], error)
	Find(ctx context.Context, id uuid.UUID) (*User, error)

	// Register returns the user registered under cmd.Email, creating it
	// first when absent. The boolean reports whether a user was created.
	Register(ctx context.Context, cmd RegisterCommand) (*User, bool, error)
}

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a user repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "users"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(ctx context.Context, rng pagination.Range, filters Filters) (*pagination.Result[User], error) {
	rng.Normalize(r.pagination)

	qb := query.NewBuilder(Projection, defaultSort).OrderByFields(rng.Sort)
	filters.Apply(qb)

	countSQL, countArgs := qb.BuildCount()
	rangeSQL, rangeArgs := qb.BuildRange(rng.Offset(), rng.Limit())

	var (
		total int
		items []User
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := r.db.QueryRowContext(gctx, countSQL, countArgs...).Scan(&total); err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		found, err := repository.QueryMany(gctx, r.db, rangeSQL, rangeArgs, Scan)
		if err != nil {
			return fmt.Errorf("query users: %w", err)
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

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := FindByID(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repo) Register(ctx context.Context, cmd RegisterCommand) (*User, bool, error) {
	cmd.Email = strings.TrimSpace(cmd.Email)
	cmd.Name = strings.TrimSpace(cmd.Name)

	if _, err := mail.ParseAddress(cmd.Email); err != nil {
		return nil, false, fmt.Errorf("%w: email %q", ErrInvalid, cmd.Email)
	}
	if cmd.Name == "" {
		return nil, false, fmt.Errorf("%w: name required", ErrInvalid)
	}

	q := fmt.Sprintf(`
		INSERT INTO public.users AS u (name, email, avatar)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO NOTHING
		RETURNING %s`, Projection.Columns())

	u, err := repository.QueryOne(ctx, r.db, q, []any{cmd.Name, cmd.Email, cmd.Avatar}, Scan)
	if err == nil {
		r.logger.Info("user registered", "id", u.ID, "email", u.Email)
		return &u, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("register user: %w", err)
	}

	existing, err := FindByEmail(ctx, r.db, cmd.Email)
	if err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}
