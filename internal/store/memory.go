package store

import (
	"context"
	"sync"

	"github.com/ykvlv/report-bot/internal/domain"
)

// MemoryRepo keeps preferences in process memory. Used with DB_DRIVER=memory
// and in tests; contents are lost on restart.
type MemoryRepo struct {
	mu    sync.RWMutex
	prefs map[int64]domain.Preferences
}

// NewMemory returns an empty MemoryRepo.
func NewMemory() *MemoryRepo {
	return &MemoryRepo{prefs: make(map[int64]domain.Preferences)}
}

// GetPreferences returns a copy of the stored record or ErrNotFound.
func (r *MemoryRepo) GetPreferences(_ context.Context, userID int64) (*domain.Preferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.prefs[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePrefs(&p), nil
}

// SavePreferences replaces the user's record.
func (r *MemoryRepo) SavePreferences(_ context.Context, userID int64, p *domain.Preferences) error {
	if err := validate(p); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs[userID] = *clonePrefs(p)
	return nil
}

// Close is a no-op.
func (r *MemoryRepo) Close() error { return nil }

func clonePrefs(p *domain.Preferences) *domain.Preferences {
	cp := *p
	if p.Interval != nil {
		iv := *p.Interval
		cp.Interval = &iv
	}
	return &cp
}
