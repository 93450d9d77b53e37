package users

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/estate/pkg/query"
	"github.com/JaimeStill/estate/pkg/repository"
)

// The functions below take a repository.DBTX so the property workflow can run
// them on the pool or inside its own transaction.

// FindByEmail returns the user registered under email or ErrNotFound.
func FindByEmail(ctx context.Context, q repository.Querier, email string) (User, error) {
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1",
		Projection.Columns(), Projection.From(), Projection.Column("email"))

	u, err := repository.QueryOne(ctx, q, sql, []any{email}, Scan)
	if err != nil {
		return User{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return u, nil
}

// FindByID returns the user with id or ErrNotFound.
func FindByID(ctx context.Context, q repository.Querier, id uuid.UUID) (User, error) {
	sql, args := query.NewBuilder(Projection).BuildSingle("id", id)

	u, err := repository.QueryOne(ctx, q, sql, args, Scan)
	if err != nil {
		return User{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return u, nil
}

// Lock takes a row lock on the user for the rest of the enclosing
// transaction. Returns ErrNotFound when the user no longer exists.
func Lock(ctx context.Context, q repository.Querier, id uuid.UUID) error {
	var locked uuid.UUID
	err := q.QueryRowContext(ctx,
		"SELECT id FROM public.users WHERE id = $1 FOR UPDATE", id,
	).Scan(&locked)
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

// AppendProperty adds propertyID to the end of the user's property list.
// Appending an id already present duplicates it.
func AppendProperty(ctx context.Context, e repository.Executor, userID, propertyID uuid.UUID) error {
	err := repository.ExecExpectOne(ctx, e,
		"UPDATE public.users SET all_properties = array_append(all_properties, $2) WHERE id = $1",
		userID, propertyID,
	)
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

// RemoveProperty removes propertyID from the user's property list. Removing
// an id the list does not hold, or from a user that does not exist, is a no-op.
func RemoveProperty(ctx context.Context, e repository.Executor, userID, propertyID uuid.UUID) error {
	_, err := repository.ExecAffected(ctx, e,
		"UPDATE public.users SET all_properties = array_remove(all_properties, $2) WHERE id = $1",
		userID, propertyID,
	)
	return err
}

// EnsureProperty appends propertyID to the user's list unless already present.
func EnsureProperty(ctx context.Context, e repository.Executor, userID, propertyID uuid.UUID) error {
	_, err := repository.ExecAffected(ctx, e,
		`UPDATE public.users SET all_properties = array_append(all_properties, $2)
		WHERE id = $1 AND NOT ($2 = ANY(all_properties))`,
		userID, propertyID,
	)
	return err
}
