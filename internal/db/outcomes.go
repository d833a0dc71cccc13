package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"autoreply/internal/models"
)

// outcomeColumns is the standard column list for outcome queries.
const outcomeColumns = `review_id, status, template_key, lang, stars, period, message_hash, created_at`

func scanOutcome(row pgx.Row) (*models.Outcome, error) {
	var o models.Outcome
	err := row.Scan(
		&o.ReviewID,
		&o.Status,
		&o.TemplateKey,
		&o.Lang,
		&o.Stars,
		&o.Period,
		&o.MessageHash,
		&o.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOutcomeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// HasOutcome reports whether an outcome has been recorded for the review.
func (d *DB) HasOutcome(ctx context.Context, reviewID string) (bool, error) {
	var exists bool
	err := d.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM outcomes WHERE review_id = $1)`, reviewID,
	).Scan(&exists)
	return exists, err
}

// GetOutcome returns the outcome recorded for the review.
func (d *DB) GetOutcome(ctx context.Context, reviewID string) (*models.Outcome, error) {
	return scanOutcome(d.Pool.QueryRow(ctx,
		`SELECT `+outcomeColumns+` FROM outcomes WHERE review_id = $1`, reviewID))
}

// SaveOutcome inserts the outcome, replacing any earlier record for the same
// review. This is the only write path to the table. CreatedAt is set to the
// write time when zero.
func (d *DB) SaveOutcome(ctx context.Context, o *models.Outcome) error {
	if o.ReviewID == "" || o.Status == "" {
		return ErrInvalidOutcome
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}

	_, err := d.Pool.Exec(ctx, `
		INSERT INTO outcomes (`+outcomeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (review_id) DO UPDATE SET
			status = EXCLUDED.status,
			template_key = EXCLUDED.template_key,
			lang = EXCLUDED.lang,
			stars = EXCLUDED.stars,
			period = EXCLUDED.period,
			message_hash = EXCLUDED.message_hash,
			created_at = EXCLUDED.created_at
	`, o.ReviewID, o.Status, o.TemplateKey, o.Lang, o.Stars, o.Period, o.MessageHash, o.CreatedAt)
	return err
}

// CountOutcomesByStatus returns the number of recorded outcomes per status.
func (d *DB) CountOutcomesByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := d.Pool.Query(ctx, `SELECT status, COUNT(*) FROM outcomes GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// ListOutcomesCreatedBetween returns outcomes with the given status written
// before to, ordered by (created_at, review_id) and starting strictly after the
// key (from, afterID). An empty afterID includes every record written at from.
func (d *DB) ListOutcomesCreatedBetween(ctx context.Context, status string, from time.Time, afterID string, to time.Time, limit int) ([]models.Outcome, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT `+outcomeColumns+`
		FROM outcomes
		WHERE status = $1 AND (created_at, review_id) > ($2, $3) AND created_at < $4
		ORDER BY created_at, review_id
		LIMIT $5
	`, status, from, afterID, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outcomes []models.Outcome
	for rows.Next() {
		o, err := scanOutcome(rows)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, *o)
	}
	return outcomes, rows.Err()
}
