// Package report decides which moderators a report should mention.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ykvlv/report-bot/internal/domain"
	"github.com/ykvlv/report-bot/internal/metrics"
	"github.com/ykvlv/report-bot/internal/store"
	"github.com/ykvlv/report-bot/internal/tzdb"
)

// Role of a chat member.
type Role string

const (
	RoleCreator       Role = "creator"
	RoleAdministrator Role = "administrator"
	RoleMember        Role = "member"
)

// IsModerator reports whether r can moderate the chat.
func (r Role) IsModerator() bool {
	return r == RoleCreator || r == RoleAdministrator
}

// Moderator is one roster entry.
type Moderator struct {
	ID        int64
	FirstName string
	Username  string
	Anonymous bool
	Bot       bool
	Role      Role
}

// Target is the author of the reported message. SenderChat is set when the
// message was posted on behalf of a chat or channel rather than a user.
type Target struct {
	ID         int64
	SenderChat bool
}

// Report is a single "user flagged message M in chat C" event.
type Report struct {
	ChatID           int64
	Target           *Target // nil when the report does not reply to a message
	AutomaticForward bool    // forwarded automatically from the linked channel
}

// Outcome of routing.
type Outcome int

const (
	Routed Outcome = iota
	NoTarget
	Ignored
	SelfReportDeflected
	Suppressed
)

func (o Outcome) String() string {
	switch o {
	case Routed:
		return "routed"
	case NoTarget:
		return "no_target"
	case Ignored:
		return "ignored"
	case SelfReportDeflected:
		return "self_report"
	case Suppressed:
		return "suppressed"
	default:
		return "unknown"
	}
}

// Result of Route. Available counts moderators found available before the
// creator fallback; Notify may be empty when there is nobody to mention.
type Result struct {
	Outcome         Outcome
	Notify          []Moderator
	Available       int
	FallbackApplied bool
}

// Roster reads chat membership at call time.
type Roster interface {
	Administrators(ctx context.Context, chatID int64) ([]Moderator, error)
	Role(ctx context.Context, chatID, userID int64) (Role, error)
}

// PreferenceReader loads a moderator's preferences.
type PreferenceReader interface {
	GetPreferences(ctx context.Context, userID int64) (*domain.Preferences, error)
}

// Router routes reports. It holds no per-user state between calls.
type Router struct {
	botID   int64
	roster  Roster
	prefs   PreferenceReader
	catalog tzdb.Catalog
	log     *zap.Logger
}

// NewRouter creates a Router for the bot with id botID.
func NewRouter(botID int64, roster Roster, prefs PreferenceReader, catalog tzdb.Catalog, log *zap.Logger) *Router {
	return &Router{botID: botID, roster: roster, prefs: prefs, catalog: catalog, log: log}
}

// Route decides who to notify about rep at instant now.
func (r *Router) Route(ctx context.Context, rep Report, now time.Time) (Result, error) {
	res, err := r.route(ctx, rep, now)
	if err != nil {
		return res, err
	}
	metrics.ObserveReport(res.Outcome.String())
	if res.Outcome == Routed {
		metrics.ObserveRouting(len(res.Notify), res.FallbackApplied)
	}
	return res, nil
}

func (r *Router) route(ctx context.Context, rep Report, now time.Time) (Result, error) {
	switch {
	case rep.Target == nil:
		return Result{Outcome: NoTarget}, nil
	case rep.AutomaticForward:
		return Result{Outcome: Ignored}, nil
	case rep.Target.ID == r.botID:
		return Result{Outcome: SelfReportDeflected}, nil
	}
	if r.targetIsModerator(ctx, rep) {
		return Result{Outcome: Suppressed}, nil
	}

	mods, err := r.roster.Administrators(ctx, rep.ChatID)
	if err != nil {
		return Result{}, fmt.Errorf("get administrators: %w", err)
	}

	available := r.availability(ctx, mods, now)

	res := Result{Outcome: Routed}
	for i, m := range mods {
		if available[i] {
			res.Notify = append(res.Notify, m)
		}
	}
	res.Available = len(res.Notify)

	if res.Available == 0 {
		for _, m := range mods {
			if m.Role == RoleCreator && !m.Anonymous {
				res.Notify = append(res.Notify, m)
				res.FallbackApplied = true
				break
			}
		}
	}
	return res, nil
}

// targetIsModerator reports whether the reported author moderates the chat.
// A message sent as the group itself comes from an anonymous administrator.
func (r *Router) targetIsModerator(ctx context.Context, rep Report) bool {
	if rep.Target.SenderChat {
		return rep.Target.ID == rep.ChatID
	}
	role, err := r.roster.Role(ctx, rep.ChatID, rep.Target.ID)
	if err != nil {
		r.log.Warn("get chat member failed", zap.Error(err),
			zap.Int64("chatID", rep.ChatID), zap.Int64("userID", rep.Target.ID))
		return false
	}
	return role.IsModerator()
}

// availability evaluates every eligible moderator against one catalog snapshot.
// Preference reads run concurrently; a failed read counts as no preferences.
func (r *Router) availability(ctx context.Context, mods []Moderator, now time.Time) []bool {
	zones := r.catalog.All()
	out := make([]bool, len(mods))

	var g errgroup.Group
	for i, m := range mods {
		if m.Anonymous || m.Bot {
			continue
		}
		g.Go(func() error {
			p, err := r.prefs.GetPreferences(ctx, m.ID)
			if err != nil {
				if !errors.Is(err, store.ErrNotFound) {
					r.log.Warn("read preferences failed; assuming defaults", zap.Error(err), zap.Int64("userID", m.ID))
				}
				p = nil
			}
			out[i] = p == nil || (!p.DND && domain.IsAvailable(p, now, zones))
			return nil
		})
	}
	_ = g.Wait()
	return out
}
