package recommendations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// PGRepo stores recommendations in Postgres. Every mutation is a single
// statement so row locks keep concurrent writers on one id serialized.
type PGRepo struct {
	DB *sql.DB
}

const recommendationColumns = `id, product_origin, product_target, relation, dislike, is_deleted, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, fields Fields) (Recommendation, error) {
	const query = `
INSERT INTO recommendations (product_origin, product_target, relation, dislike, is_deleted, created_at, updated_at)
VALUES ($1, $2, $3, 0, FALSE, now(), now())
RETURNING ` + recommendationColumns
	row := r.DB.QueryRowContext(ctx, query, fields.ProductOrigin, fields.ProductTarget, int(fields.Relation))
	return scanRecommendation(row)
}

func (r *PGRepo) GetByID(ctx context.Context, id int64) (Recommendation, error) {
	const query = `
SELECT ` + recommendationColumns + `
FROM recommendations
WHERE id = $1 AND NOT is_deleted
LIMIT 1`
	rec, err := scanRecommendation(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Recommendation{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return rec, err
}

func (r *PGRepo) Update(ctx context.Context, id int64, fields Fields) (Recommendation, error) {
	const query = `
UPDATE recommendations
SET product_origin = $2, product_target = $3, relation = $4, updated_at = now()
WHERE id = $1 AND NOT is_deleted
RETURNING ` + recommendationColumns
	rec, err := scanRecommendation(r.DB.QueryRowContext(ctx, query, id, fields.ProductOrigin, fields.ProductTarget, int(fields.Relation)))
	if errors.Is(err, sql.ErrNoRows) {
		return Recommendation{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return rec, err
}

func (r *PGRepo) SoftDelete(ctx context.Context, id int64) error {
	const query = `
UPDATE recommendations
SET is_deleted = TRUE, updated_at = now()
WHERE id = $1 AND NOT is_deleted`
	_, err := r.DB.ExecContext(ctx, query, id)
	return err
}

func (r *PGRepo) IncrementDislike(ctx context.Context, id int64) (Recommendation, error) {
	const query = `
UPDATE recommendations
SET dislike = dislike + 1, updated_at = now()
WHERE id = $1 AND NOT is_deleted
RETURNING ` + recommendationColumns
	rec, err := scanRecommendation(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Recommendation{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return rec, err
}

func (r *PGRepo) Search(ctx context.Context, filter Filter) ([]Recommendation, error) {
	var (
		where = []string{"NOT is_deleted"}
		args  []any
	)
	if filter.ProductOrigin != nil {
		args = append(args, *filter.ProductOrigin)
		where = append(where, fmt.Sprintf("product_origin = $%d", len(args)))
	}
	if filter.Relation != nil {
		args = append(args, int(*filter.Relation))
		where = append(where, fmt.Sprintf("relation = $%d", len(args)))
	}
	query := `
SELECT ` + recommendationColumns + `
FROM recommendations
WHERE ` + strings.Join(where, " AND ") + `
ORDER BY id ASC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Recommendation{}
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PGRepo) Reset(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, `TRUNCATE TABLE recommendations RESTART IDENTITY`)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecommendation(row rowScanner) (Recommendation, error) {
	var (
		rec      Recommendation
		relation int
		deleted  bool
	)
	if err := row.Scan(
		&rec.ID,
		&rec.ProductOrigin,
		&rec.ProductTarget,
		&relation,
		&rec.Dislike,
		&deleted,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return Recommendation{}, err
	}
	rec.Relation = Relation(relation)
	if deleted {
		rec.State = StateDeleted
	}
	return rec, nil
}
