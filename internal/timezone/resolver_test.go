package timezone

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ykvlv/report-bot/assets"
	"github.com/ykvlv/report-bot/internal/domain"
	"github.com/ykvlv/report-bot/internal/tzdb"
)

func bundled(t *testing.T) (*Resolver, []tzdb.Zone) {
	t.Helper()
	c, err := tzdb.Parse(assets.ZonesYAML)
	if err != nil {
		t.Fatalf("parse catalog: %v", err)
	}
	return NewResolver(c.Names()), c.All()
}

func TestResolve_ExactName(t *testing.T) {
	r, zones := bundled(t)
	for _, q := range []string{"Europe/Berlin", "  Europe/Berlin ", "Europe/Kiev", "UTC"} {
		res, err := r.Resolve(q, zones)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", q, err)
		}
		if res.Kind != Exact {
			t.Fatalf("%q: want Exact, got %v", q, res.Kind)
		}
		if len(res.Candidates) != 0 {
			t.Fatalf("%q: exact result must not carry candidates", q)
		}
	}

	res, _ := r.Resolve("Europe/Kiev", zones)
	if res.Zone.Name != "Europe/Kyiv" {
		t.Fatalf("alias must resolve to the canonical zone, got %s", res.Zone.Name)
	}
}

func TestResolve_ExactIsCaseSensitive(t *testing.T) {
	r, zones := bundled(t)
	res, err := r.Resolve("europe/berlin", zones)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Kind != Candidates {
		t.Fatalf("want fuzzy candidates, got %v", res.Kind)
	}
	if res.Candidates[0].Token != "Europe/Berlin" {
		t.Fatalf("want Europe/Berlin first, got %s", res.Candidates[0].Token)
	}
}

func TestResolve_TooShort(t *testing.T) {
	r, zones := bundled(t)
	for _, q := range []string{"", "b", " b ", "é"} {
		if _, err := r.Resolve(q, zones); !errors.Is(err, domain.ErrInvalidQuery) {
			t.Fatalf("%q: want ErrInvalidQuery, got %v", q, err)
		}
	}
}

func TestResolve_FuzzyRanksBestFirst(t *testing.T) {
	r, zones := bundled(t)
	tests := []struct {
		query string
		want  string
	}{
		{"berlin", "Europe/Berlin"},
		{"berl", "Europe/Berlin"},
		{"Berlni", "Europe/Berlin"},
		{"tokyo", "Asia/Tokyo"},
		{"germany", "Europe/Berlin"},
		{"mumbai", "Asia/Kolkata"},
		{"kolkata", "Asia/Kolkata"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res, err := r.Resolve(tt.query, zones)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Kind != Candidates || len(res.Candidates) == 0 {
				t.Fatalf("want candidates, got %+v", res)
			}
			if got := res.Candidates[0].Token; got != tt.want {
				t.Fatalf("want %s first, got %s", tt.want, got)
			}
			for i := 1; i < len(res.Candidates); i++ {
				if res.Candidates[i].Score < res.Candidates[i-1].Score {
					t.Fatalf("candidates not sorted at %d", i)
				}
			}
		})
	}
}

func TestResolve_CoversWholeDatabase(t *testing.T) {
	r, zones := bundled(t)
	for _, q := range []string{
		"Asia/Yekaterinburg",
		"Africa/Addis_Ababa",
		"Europe/Minsk",
		"America/Puerto_Rico",
		"Asia/Baghdad",
		"Pacific/Kiritimati",
		"Asia/Calcutta",
	} {
		res, err := r.Resolve(q, zones)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", q, err)
		}
		if res.Kind != Exact {
			t.Fatalf("%q: want Exact, got %v", q, res.Kind)
		}
	}

	tests := []struct {
		query string
		want  string
	}{
		{"ethiopia", "Africa/Addis_Ababa"},
		{"belarus", "Europe/Minsk"},
		{"iraq", "Asia/Baghdad"},
		{"yekaterinburg", "Asia/Yekaterinburg"},
	}
	for _, tt := range tests {
		res, err := r.Resolve(tt.query, zones)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.query, err)
		}
		if res.Kind != Candidates || res.Candidates[0].Token != tt.want {
			t.Fatalf("%q: want %s first, got %+v", tt.query, tt.want, res)
		}
	}
}

func TestResolve_NoMatch(t *testing.T) {
	r, zones := bundled(t)
	res, err := r.Resolve("##@@##@@", zones)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Kind != NoMatch || len(res.Candidates) != 0 {
		t.Fatalf("want NoMatch, got %+v", res)
	}
}

func TestResolve_Inconsistency(t *testing.T) {
	r := NewResolver([]string{"Europe/Berlin"})
	_, err := r.Resolve("Europe/Berlin", []tzdb.Zone{{Name: "Asia/Tokyo", Group: []string{"Asia/Tokyo"}}})
	if !errors.Is(err, domain.ErrResolutionInconsistency) {
		t.Fatalf("want ErrResolutionInconsistency, got %v", err)
	}
}

func TestResolve_CapsCandidates(t *testing.T) {
	var zones []tzdb.Zone
	for i := 0; i < 150; i++ {
		name := fmt.Sprintf("Test/Zone_%03d", i)
		zones = append(zones, tzdb.Zone{Name: name, Group: []string{name}})
	}
	res, err := NewResolver(nil).Resolve("zone", zones)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Candidates) != MaxCandidates {
		t.Fatalf("want %d candidates, got %d", MaxCandidates, len(res.Candidates))
	}
}

func TestMatchScore(t *testing.T) {
	tests := []struct {
		pattern, text string
		ok            bool
		score         float64
	}{
		{"berlin", "berlin", true, 0},
		{"berl", "europe/berlin", true, 0.07},
		{"brlin", "berlin", true, 0.2},
		{"berlin", "ber", false, 0},
		{"xyz", "berlin", false, 0},
	}
	for _, tt := range tests {
		score, ok := matchScore(fold(tt.pattern), fold(tt.text))
		if ok != tt.ok {
			t.Fatalf("matchScore(%q, %q) ok = %v, want %v", tt.pattern, tt.text, ok, tt.ok)
		}
		if ok && (score < tt.score-1e-9 || score > tt.score+1e-9) {
			t.Fatalf("matchScore(%q, %q) = %v, want %v", tt.pattern, tt.text, score, tt.score)
		}
	}
}
