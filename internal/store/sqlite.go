package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/ykvlv/report-bot/internal/domain"
	"github.com/ykvlv/report-bot/internal/metrics"
)

var errNilPreferences = errors.New("nil preferences")

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// SQLite is a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// GetPreferences returns the stored preferences or ErrNotFound.
func (r *SQLiteRepo) GetPreferences(ctx context.Context, userID int64) (*domain.Preferences, error) {
	defer metrics.ObserveStore("get", time.Now())

	row := r.db.QueryRowContext(ctx, `
		SELECT tz, unavail_start, unavail_end, dnd
		FROM preferences
		WHERE user_id = ?`,
		userID,
	)

	var (
		tz         string
		start, end sql.NullInt64
		dndInt     int
	)
	if err := row.Scan(&tz, &start, &end, &dndInt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &domain.Preferences{
		TZ:       tz,
		Interval: intervalFromNull(start, end),
		DND:      dndInt != 0,
	}, nil
}

// SavePreferences inserts or replaces a user's preferences in a single statement.
func (r *SQLiteRepo) SavePreferences(ctx context.Context, userID int64, p *domain.Preferences) error {
	if err := validate(p); err != nil {
		return err
	}
	defer metrics.ObserveStore("save", time.Now())

	start, end := intervalToNull(p.Interval)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO preferences (user_id, tz, unavail_start, unavail_end, dnd, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			tz            = excluded.tz,
			unavail_start = excluded.unavail_start,
			unavail_end   = excluded.unavail_end,
			dnd           = excluded.dnd,
			updated_at    = excluded.updated_at`,
		userID, p.TZ, start, end, boolToInt(p.DND), time.Now().UTC().Unix(),
	)
	return err
}
