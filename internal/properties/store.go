package properties

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/estate/internal/users"
	"github.com/JaimeStill/estate/pkg/repository"
)

var (
	detailSQL = fmt.Sprintf(
		"SELECT %s, %s FROM %s JOIN %s WHERE %s = $1",
		projection.Columns(),
		users.Projection.Columns(),
		projection.From(),
		projection.JoinOn(users.Projection, "id", "creator"),
		projection.Column("id"),
	)

	insertSQL = fmt.Sprintf(`
		INSERT INTO public.properties AS p (title, description, property_type, location, price, photo, creator)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s`, projection.Columns())

	// $7 NULL keeps the stored photo. prev exposes the photo being replaced.
	updateSQL = fmt.Sprintf(`
		WITH prev AS (SELECT id, photo FROM public.properties WHERE id = $1 FOR UPDATE)
		UPDATE public.properties AS p
		SET title = $2, description = $3, property_type = $4, location = $5, price = $6,
			photo = COALESCE($7, p.photo), updated_at = now()
		FROM prev
		WHERE p.id = prev.id
		RETURNING %s, prev.photo`, projection.Columns())

	deleteSQL = fmt.Sprintf(
		"DELETE FROM public.properties AS p WHERE p.id = $1 RETURNING %s",
		projection.Columns(),
	)

	statsSQL = `
		SELECT p.property_type, COUNT(*)
		FROM public.properties p
		GROUP BY p.property_type
		ORDER BY COUNT(*) DESC, p.property_type`

	danglingSQL = `
		SELECT u.id, ref
		FROM public.users u
		CROSS JOIN LATERAL unnest(u.all_properties) AS ref
		LEFT JOIN public.properties p ON p.id = ref AND p.creator = u.id
		WHERE p.id IS NULL
		ORDER BY u.id`

	missingSQL = `
		SELECT p.creator, p.id
		FROM public.properties p
		JOIN public.users u ON u.id = p.creator
		WHERE NOT (p.id = ANY(u.all_properties))
		ORDER BY p.created_at`

	// Removes a reference only while it is still dangling.
	pruneSQL = `
		UPDATE public.users SET all_properties = array_remove(all_properties, $2)
		WHERE id = $1
		AND NOT EXISTS (SELECT 1 FROM public.properties WHERE id = $2 AND creator = $1)`
)

func findDetail(ctx context.Context, q repository.Querier, id uuid.UUID) (Detail, error) {
	return repository.QueryOne(ctx, q, detailSQL, []any{id}, scanDetail)
}

func insert(ctx context.Context, q repository.Querier, f Fields, photo string, creator uuid.UUID) (Property, error) {
	args := []any{f.Title, f.Description, f.PropertyType, f.Location, f.Price, photo, creator}
	return repository.QueryOne(ctx, q, insertSQL, args, scanProperty)
}

// update replaces the mutable fields of id. A nil photo keeps the stored one.
// Returns the updated row and the photo URL held before the update.
func update(ctx context.Context, q repository.Querier, id uuid.UUID, f Fields, photo *string) (Property, string, error) {
	var photoArg any
	if photo != nil {
		photoArg = *photo
	}

	var (
		p    Property
		prev string
	)
	args := []any{id, f.Title, f.Description, f.PropertyType, f.Location, f.Price, photoArg}
	err := q.QueryRowContext(ctx, updateSQL, args...).Scan(append(p.dest(), &prev)...)
	return p, prev, err
}

func storedPhoto(ctx context.Context, q repository.Querier, id uuid.UUID) (string, error) {
	var photo string
	err := q.QueryRowContext(ctx, "SELECT photo FROM public.properties WHERE id = $1", id).Scan(&photo)
	return photo, err
}

func remove(ctx context.Context, q repository.Querier, id uuid.UUID) (Property, error) {
	return repository.QueryOne(ctx, q, deleteSQL, []any{id}, scanProperty)
}

func typeCounts(ctx context.Context, q repository.Querier) ([]TypeCount, error) {
	return repository.QueryMany(ctx, q, statsSQL, nil, func(s repository.Scanner) (TypeCount, error) {
		var tc TypeCount
		err := s.Scan(&tc.PropertyType, &tc.Count)
		return tc, err
	})
}

func links(ctx context.Context, q repository.Querier, stmt string) ([]Link, error) {
	return repository.QueryMany(ctx, q, stmt, nil, func(s repository.Scanner) (Link, error) {
		var l Link
		err := s.Scan(&l.UserID, &l.PropertyID)
		return l, err
	})
}

func prune(ctx context.Context, e repository.Executor, l Link) error {
	_, err := repository.ExecAffected(ctx, e, pruneSQL, l.UserID, l.PropertyID)
	return err
}
