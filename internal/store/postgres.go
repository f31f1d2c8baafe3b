package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ykvlv/report-bot/internal/domain"
	"github.com/ykvlv/report-bot/internal/metrics"
)

// PostgresRepo implements Repo on a pgx connection pool.
type PostgresRepo struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn, verifies the connection and runs migrations.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresRepo, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := runPgMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return &PostgresRepo{pool: pool}, nil
}

// Close releases the pool.
func (r *PostgresRepo) Close() error {
	r.pool.Close()
	return nil
}

// GetPreferences returns the stored preferences or ErrNotFound.
func (r *PostgresRepo) GetPreferences(ctx context.Context, userID int64) (*domain.Preferences, error) {
	defer metrics.ObserveStore("get", time.Now())

	var (
		tz         string
		start, end pgtype.Int4
		dnd        bool
	)
	err := r.pool.QueryRow(ctx, `
		SELECT tz, unavail_start, unavail_end, dnd
		FROM preferences
		WHERE user_id = $1`, userID,
	).Scan(&tz, &start, &end, &dnd)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &domain.Preferences{TZ: tz, Interval: intervalFromPg(start, end), DND: dnd}, nil
}

// SavePreferences upserts the whole record.
func (r *PostgresRepo) SavePreferences(ctx context.Context, userID int64, p *domain.Preferences) error {
	if err := validate(p); err != nil {
		return err
	}
	defer metrics.ObserveStore("save", time.Now())

	start, end := intervalToPg(p.Interval)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO preferences (user_id, tz, unavail_start, unavail_end, dnd, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (user_id) DO UPDATE SET
			tz            = EXCLUDED.tz,
			unavail_start = EXCLUDED.unavail_start,
			unavail_end   = EXCLUDED.unavail_end,
			dnd           = EXCLUDED.dnd,
			updated_at    = EXCLUDED.updated_at`,
		userID, p.TZ, start, end, p.DND,
	)
	return err
}
