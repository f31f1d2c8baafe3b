// Package settings implements the per-user configuration commands: timezone,
// do-not-disturb, the unavailability window and the availability self-check.
package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/report-bot/internal/domain"
	"github.com/ykvlv/report-bot/internal/metrics"
	"github.com/ykvlv/report-bot/internal/store"
	"github.com/ykvlv/report-bot/internal/timezone"
	"github.com/ykvlv/report-bot/internal/tzdb"
)

// PreferenceStore is the storage the commands read and write.
type PreferenceStore interface {
	GetPreferences(ctx context.Context, userID int64) (*domain.Preferences, error)
	SavePreferences(ctx context.Context, userID int64, p *domain.Preferences) error
}

// Service runs configuration commands against a PreferenceStore.
type Service struct {
	store    PreferenceStore
	resolver *timezone.Resolver
	catalog  tzdb.Catalog
	log      *zap.Logger
	now      func() time.Time
}

// New creates a Service.
func New(s PreferenceStore, resolver *timezone.Resolver, catalog tzdb.Catalog, log *zap.Logger) *Service {
	return &Service{store: s, resolver: resolver, catalog: catalog, log: log, now: time.Now}
}

// TimezoneResult is either a committed zone or a list to choose from.
type TimezoneResult struct {
	Zone       *tzdb.Zone
	LocalTime  time.Time
	Candidates []timezone.Candidate
}

// Preferences returns the user's settings; a user without a record gets defaults.
func (s *Service) Preferences(ctx context.Context, userID int64) (*domain.Preferences, error) {
	return s.load(ctx, userID)
}

// SetTimezone resolves query and saves it when it names a zone exactly.
// Otherwise the candidates are returned and nothing is written.
func (s *Service) SetTimezone(ctx context.Context, userID int64, query string) (TimezoneResult, error) {
	zones := s.catalog.All()
	res, err := s.resolver.Resolve(query, zones)
	if err != nil {
		if errors.Is(err, domain.ErrResolutionInconsistency) {
			s.log.Error("timezone resolution inconsistent", zap.Error(err), zap.String("query", query))
		}
		return TimezoneResult{}, err
	}

	switch res.Kind {
	case timezone.Exact:
		return s.apply(ctx, userID, res.Zone)
	case timezone.Candidates:
		return TimezoneResult{Candidates: res.Candidates}, nil
	default:
		return TimezoneResult{}, domain.ErrNoMatch
	}
}

// SelectTimezone commits a candidate picked from a previous SetTimezone.
func (s *Service) SelectTimezone(ctx context.Context, userID int64, token string) (TimezoneResult, error) {
	z, ok := tzdb.Find(s.catalog.All(), token)
	if !ok {
		return TimezoneResult{}, domain.ErrNoMatch
	}
	return s.apply(ctx, userID, z)
}

func (s *Service) apply(ctx context.Context, userID int64, z tzdb.Zone) (TimezoneResult, error) {
	p, err := s.load(ctx, userID)
	if err != nil {
		return TimezoneResult{}, err
	}
	p.TZ = z.Name
	if p.Interval == nil {
		iv := domain.DefaultInterval
		p.Interval = &iv
	}
	if err := s.save(ctx, userID, p); err != nil {
		return TimezoneResult{}, err
	}
	return TimezoneResult{Zone: &z, LocalTime: domain.LocalTime(s.now(), z.OffsetMinutes)}, nil
}

// ClearTimezone removes the timezone and the window with it.
func (s *Service) ClearTimezone(ctx context.Context, userID int64) error {
	p, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	p.ClearTZ()
	return s.save(ctx, userID, p)
}

// ToggleDND flips do-not-disturb and returns the new value.
func (s *Service) ToggleDND(ctx context.Context, userID int64) (bool, error) {
	p, err := s.load(ctx, userID)
	if err != nil {
		return false, err
	}
	p.DND = !p.DND
	if err := s.save(ctx, userID, p); err != nil {
		return false, err
	}
	return p.DND, nil
}

// DisableInterval turns the unavailability window off. It reports false when
// the window was already disabled.
func (s *Service) DisableInterval(ctx context.Context, userID int64) (bool, error) {
	p, err := s.load(ctx, userID)
	if err != nil {
		return false, err
	}
	if p.Interval == nil {
		return false, nil
	}
	p.Interval = nil
	if err := s.save(ctx, userID, p); err != nil {
		return false, err
	}
	return true, nil
}

// Status is what /am_i_available reports.
type Status struct {
	Preferences domain.Preferences
	// Available is the window check alone; DND is reported separately.
	Available bool
}

// Status evaluates the user's availability right now.
func (s *Service) Status(ctx context.Context, userID int64) (Status, error) {
	p, err := s.load(ctx, userID)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Preferences: *p,
		Available:   domain.IsAvailable(p, s.now(), s.catalog.All()),
	}, nil
}

func (s *Service) load(ctx context.Context, userID int64) (*domain.Preferences, error) {
	p, err := s.store.GetPreferences(ctx, userID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return &domain.Preferences{}, nil
	case err != nil:
		s.log.Error("load preferences failed", zap.Error(err), zap.Int64("userID", userID))
		return nil, fmt.Errorf("%w: %v", domain.ErrPreferenceReadFailed, err)
	}
	return p, nil
}

func (s *Service) save(ctx context.Context, userID int64, p *domain.Preferences) error {
	err := s.store.SavePreferences(ctx, userID, p)
	metrics.ObservePreferenceWrite(err)
	if err != nil {
		s.log.Error("save preferences failed", zap.Error(err), zap.Int64("userID", userID))
		return fmt.Errorf("%w: %v", domain.ErrPreferenceWriteFailed, err)
	}
	return nil
}
