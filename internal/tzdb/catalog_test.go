package tzdb

import (
	"testing"
	"time"

	"github.com/ykvlv/report-bot/assets"
)

func TestParse_BundledCatalog(t *testing.T) {
	c, err := Parse(assets.ZonesYAML)
	if err != nil {
		t.Fatalf("parse bundled catalog: %v", err)
	}
	zones := c.All()
	if len(zones) < 400 {
		t.Fatalf("want a reasonably sized catalog, got %d zones", len(zones))
	}
	seen := map[string]bool{}
	for _, name := range c.Names() {
		if seen[name] {
			t.Fatalf("zone name %q listed twice", name)
		}
		seen[name] = true
	}
}

func TestAll_OffsetFollowsDaylightSaving(t *testing.T) {
	c, err := Parse([]byte(`
- name: Europe/Berlin
  group: [Europe/Berlin]
  countryName: Germany
  mainCities: [Berlin]
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	winter := c.WithClock(func() time.Time { return time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC) })
	summer := c.WithClock(func() time.Time { return time.Date(2025, time.July, 15, 12, 0, 0, 0, time.UTC) })

	if got := winter.All()[0].OffsetMinutes; got != 60 {
		t.Fatalf("winter offset: want 60, got %d", got)
	}
	if got := summer.All()[0].OffsetMinutes; got != 120 {
		t.Fatalf("summer offset: want 120, got %d", got)
	}
}

func TestParse_RejectsUnknownZone(t *testing.T) {
	_, err := Parse([]byte(`
- name: Mars/Olympus_Mons
  group: [Mars/Olympus_Mons]
`))
	if err == nil {
		t.Fatalf("want error for unknown zone")
	}
}

func TestFind_MatchesAliases(t *testing.T) {
	zones := []Zone{{Name: "Europe/Kyiv", Group: []string{"Europe/Kyiv", "Europe/Kiev"}}}
	z, ok := Find(zones, "Europe/Kiev")
	if !ok || z.Name != "Europe/Kyiv" {
		t.Fatalf("want Europe/Kyiv, got %+v (found=%v)", z, ok)
	}
	if _, ok := Find(zones, "europe/kiev"); ok {
		t.Fatalf("lookup must be case-sensitive")
	}
}
