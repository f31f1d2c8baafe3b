package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ykvlv/report-bot/assets"
	"github.com/ykvlv/report-bot/internal/domain"
	"github.com/ykvlv/report-bot/internal/store"
	"github.com/ykvlv/report-bot/internal/tzdb"
)

const (
	botID  int64 = 999
	chatID int64 = -100123
)

// 13:00 in Berlin, 21:00 in Tokyo.
var winterNoon = time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)

type fakeRoster struct {
	admins     []Moderator
	roles      map[int64]Role
	adminsErr  error
	roleErr    error
	adminCalls int
	roleCalls  int
}

func (f *fakeRoster) Administrators(context.Context, int64) ([]Moderator, error) {
	f.adminCalls++
	return f.admins, f.adminsErr
}

func (f *fakeRoster) Role(_ context.Context, _ int64, userID int64) (Role, error) {
	f.roleCalls++
	if f.roleErr != nil {
		return "", f.roleErr
	}
	if r, ok := f.roles[userID]; ok {
		return r, nil
	}
	return RoleMember, nil
}

type failingReads struct{}

func (failingReads) GetPreferences(context.Context, int64) (*domain.Preferences, error) {
	return nil, errors.New("database is locked")
}

func newRouter(t *testing.T, roster Roster, prefs PreferenceReader) *Router {
	t.Helper()
	c, err := tzdb.Parse(assets.ZonesYAML)
	require.NoError(t, err)
	c = c.WithClock(func() time.Time { return winterNoon })
	return NewRouter(botID, roster, prefs, c, zap.NewNop())
}

func save(t *testing.T, repo *store.MemoryRepo, id int64, p domain.Preferences) {
	t.Helper()
	require.NoError(t, repo.SavePreferences(context.Background(), id, &p))
}

func ids(mods []Moderator) []int64 {
	out := make([]int64, 0, len(mods))
	for _, m := range mods {
		out = append(out, m.ID)
	}
	return out
}

func TestRoute_PreconditionsSkipRoster(t *testing.T) {
	tests := []struct {
		name      string
		rep       Report
		want      Outcome
		roleCalls int
	}{
		{"no target", Report{ChatID: chatID}, NoTarget, 0},
		{"automatic forward", Report{ChatID: chatID, Target: &Target{ID: -100777, SenderChat: true}, AutomaticForward: true}, Ignored, 0},
		{"target is the bot", Report{ChatID: chatID, Target: &Target{ID: botID}}, SelfReportDeflected, 0},
		{"anonymous admin", Report{ChatID: chatID, Target: &Target{ID: chatID, SenderChat: true}}, Suppressed, 0},
		{"administrator", Report{ChatID: chatID, Target: &Target{ID: 10}}, Suppressed, 1},
		{"creator", Report{ChatID: chatID, Target: &Target{ID: 11}}, Suppressed, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roster := &fakeRoster{
				admins: []Moderator{{ID: 10, Role: RoleAdministrator}},
				roles:  map[int64]Role{10: RoleAdministrator, 11: RoleCreator},
			}
			r := newRouter(t, roster, store.NewMemory())

			res, err := r.Route(context.Background(), tt.rep, winterNoon)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Outcome)
			assert.Empty(t, res.Notify)
			assert.Zero(t, roster.adminCalls)
			assert.Equal(t, tt.roleCalls, roster.roleCalls)
		})
	}
}

func TestRoute_FiltersByAvailability(t *testing.T) {
	repo := store.NewMemory()
	save(t, repo, 1, domain.Preferences{TZ: "Europe/Berlin", Interval: &domain.Interval{Start: 12, End: 14}})
	save(t, repo, 3, domain.Preferences{DND: true})
	save(t, repo, 6, domain.Preferences{TZ: "Asia/Tokyo", Interval: &domain.Interval{Start: 22, End: 6}})
	save(t, repo, 7, domain.Preferences{TZ: "Mars/Olympus_Mons", Interval: &domain.Interval{Start: 0, End: 0}})

	roster := &fakeRoster{admins: []Moderator{
		{ID: 1, Role: RoleCreator},
		{ID: 2, Role: RoleAdministrator},
		{ID: 3, Role: RoleAdministrator},
		{ID: 4, Role: RoleAdministrator, Anonymous: true},
		{ID: 5, Role: RoleAdministrator, Bot: true},
		{ID: 6, Role: RoleAdministrator},
		{ID: 7, Role: RoleAdministrator},
	}}
	r := newRouter(t, roster, repo)

	res, err := r.Route(context.Background(), Report{ChatID: chatID, Target: &Target{ID: 42}}, winterNoon)
	require.NoError(t, err)
	assert.Equal(t, Routed, res.Outcome)
	assert.Equal(t, []int64{2, 6, 7}, ids(res.Notify))
	assert.Equal(t, 3, res.Available)
	assert.False(t, res.FallbackApplied)
	assert.Equal(t, 1, roster.adminCalls)
}

func TestRoute_CreatorFallback(t *testing.T) {
	repo := store.NewMemory()
	save(t, repo, 1, domain.Preferences{DND: true})
	save(t, repo, 2, domain.Preferences{TZ: "Europe/Berlin", Interval: &domain.Interval{Start: 9, End: 18}})

	roster := &fakeRoster{admins: []Moderator{
		{ID: 2, Role: RoleAdministrator},
		{ID: 1, Role: RoleCreator},
	}}
	r := newRouter(t, roster, repo)

	res, err := r.Route(context.Background(), Report{ChatID: chatID, Target: &Target{ID: 42}}, winterNoon)
	require.NoError(t, err)
	assert.Equal(t, Routed, res.Outcome)
	assert.Equal(t, []int64{1}, ids(res.Notify))
	assert.Zero(t, res.Available)
	assert.True(t, res.FallbackApplied)
}

func TestRoute_AnonymousCreatorIsNotAFallback(t *testing.T) {
	repo := store.NewMemory()
	save(t, repo, 2, domain.Preferences{DND: true})

	roster := &fakeRoster{admins: []Moderator{
		{ID: 1, Role: RoleCreator, Anonymous: true},
		{ID: 2, Role: RoleAdministrator},
	}}
	r := newRouter(t, roster, repo)

	res, err := r.Route(context.Background(), Report{ChatID: chatID, Target: &Target{ID: 42}}, winterNoon)
	require.NoError(t, err)
	assert.Equal(t, Routed, res.Outcome)
	assert.Empty(t, res.Notify)
	assert.False(t, res.FallbackApplied)
}

func TestRoute_ReadFailureCountsAsAvailable(t *testing.T) {
	roster := &fakeRoster{admins: []Moderator{
		{ID: 1, Role: RoleCreator},
		{ID: 2, Role: RoleAdministrator},
	}}
	r := newRouter(t, roster, failingReads{})

	res, err := r.Route(context.Background(), Report{ChatID: chatID, Target: &Target{ID: 42}}, winterNoon)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids(res.Notify))
	assert.False(t, res.FallbackApplied)
}

func TestRoute_RoleLookupFailureStillRoutes(t *testing.T) {
	roster := &fakeRoster{
		admins:  []Moderator{{ID: 1, Role: RoleCreator}},
		roleErr: errors.New("Bad Request: user not found"),
	}
	r := newRouter(t, roster, store.NewMemory())

	res, err := r.Route(context.Background(), Report{ChatID: chatID, Target: &Target{ID: 42}}, winterNoon)
	require.NoError(t, err)
	assert.Equal(t, Routed, res.Outcome)
	assert.Equal(t, []int64{1}, ids(res.Notify))
}

func TestRoute_RosterFailure(t *testing.T) {
	roster := &fakeRoster{adminsErr: errors.New("Forbidden: bot was kicked")}
	r := newRouter(t, roster, store.NewMemory())

	_, err := r.Route(context.Background(), Report{ChatID: chatID, Target: &Target{ID: 42}}, winterNoon)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot was kicked")
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "routed", Routed.String())
	assert.Equal(t, "self_report", SelfReportDeflected.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}
