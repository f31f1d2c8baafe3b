package wizard

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ykvlv/report-bot/internal/domain"
	"github.com/ykvlv/report-bot/internal/metrics"
	"github.com/ykvlv/report-bot/internal/store"
)

// PreferenceStore is the storage the wizard reads the guard from and commits to.
type PreferenceStore interface {
	GetPreferences(ctx context.Context, userID int64) (*domain.Preferences, error)
	SavePreferences(ctx context.Context, userID int64, p *domain.Preferences) error
}

// Step is the outcome of one interaction. Committed is set only by the final step.
type Step struct {
	State     State
	Choices   []Choice
	Committed *domain.Interval
}

// Wizard drives the two-stage unavailability flow.
type Wizard struct {
	store PreferenceStore
	log   *zap.Logger
}

// New creates a Wizard.
func New(s PreferenceStore, log *zap.Logger) *Wizard {
	return &Wizard{store: s, log: log}
}

// Handle decodes callback data and runs the matching transition.
func (w *Wizard) Handle(ctx context.Context, userID int64, data string) (Step, error) {
	act, err := Decode(data)
	if err != nil {
		return Step{}, err
	}
	if act.Begin {
		return w.Begin(ctx, userID)
	}
	return w.Advance(ctx, userID, act.State, act.Hour)
}

// Begin starts (or restarts) the flow. Any selection in flight is discarded.
func (w *Wizard) Begin(ctx context.Context, userID int64) (Step, error) {
	if _, err := w.guard(ctx, userID); err != nil {
		return Step{}, err
	}
	return Step{State: AwaitingStart{}, Choices: StartChoices()}, nil
}

// Advance applies the selected hour to st. Only the transition out of
// AwaitingEnd writes to storage.
func (w *Wizard) Advance(ctx context.Context, userID int64, st State, hour int) (Step, error) {
	if !domain.ValidHour(hour) {
		return Step{}, domain.ErrInvalidHour
	}
	p, err := w.guard(ctx, userID)
	if err != nil {
		return Step{}, err
	}

	switch s := st.(type) {
	case AwaitingStart:
		return Step{State: AwaitingEnd{Start: hour}, Choices: EndChoices(hour)}, nil

	case AwaitingEnd:
		if !domain.ValidHour(s.Start) || s.Start == hour {
			return Step{}, domain.ErrInvalidHour
		}
		iv := domain.Interval{Start: s.Start, End: hour}
		p.Interval = &iv
		err := w.store.SavePreferences(ctx, userID, p)
		metrics.ObservePreferenceWrite(err)
		if err != nil {
			w.log.Error("save unavailability window failed", zap.Error(err), zap.Int64("userID", userID))
			return Step{}, fmt.Errorf("%w: %v", domain.ErrPreferenceWriteFailed, err)
		}
		w.log.Debug("unavailability window set",
			zap.Int64("userID", userID), zap.Int("start", iv.Start), zap.Int("end", iv.End))
		return Step{Committed: &iv}, nil
	}
	return Step{}, fmt.Errorf("%w: unknown stage %T", ErrMalformedCallback, st)
}

// guard loads the user's preferences and requires a timezone.
func (w *Wizard) guard(ctx context.Context, userID int64) (*domain.Preferences, error) {
	p, err := w.store.GetPreferences(ctx, userID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, domain.ErrTimezoneRequired
	case err != nil:
		return nil, fmt.Errorf("%w: %v", domain.ErrPreferenceReadFailed, err)
	}
	if !p.HasTZ() {
		return nil, domain.ErrTimezoneRequired
	}
	return p, nil
}
