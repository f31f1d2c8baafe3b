package store

import (
	"context"
	"errors"

	"github.com/ykvlv/report-bot/internal/domain"
)

// ErrNotFound is returned when a user has never saved preferences.
var ErrNotFound = errors.New("preferences not found")

// Repo persists per-user preferences. Every write replaces the whole record.
type Repo interface {
	GetPreferences(ctx context.Context, userID int64) (*domain.Preferences, error)
	SavePreferences(ctx context.Context, userID int64, p *domain.Preferences) error
	Close() error
}
