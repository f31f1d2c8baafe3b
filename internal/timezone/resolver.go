// Package timezone turns what a user types into a canonical zone from the catalog.
package timezone

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ykvlv/report-bot/internal/domain"
	"github.com/ykvlv/report-bot/internal/tzdb"
)

// MaxCandidates caps the disambiguation list.
const MaxCandidates = 100

// Kind tells how a query resolved.
type Kind int

const (
	NoMatch Kind = iota
	Exact
	Candidates
)

// Candidate is one fuzzy hit. Token is the canonical name and is what a
// selection sends back.
type Candidate struct {
	Zone  tzdb.Zone
	Token string
	Score float64
}

// Result of Resolve. Zone is set for Exact, Candidates for Candidates.
type Result struct {
	Kind       Kind
	Zone       tzdb.Zone
	Candidates []Candidate
}

// Resolver knows the fixed set of zone names; offsets come from the snapshot passed to Resolve.
type Resolver struct {
	names map[string]struct{}
}

// NewResolver indexes the names that resolve exactly.
func NewResolver(names []string) *Resolver {
	idx := make(map[string]struct{}, len(names))
	for _, n := range names {
		idx[n] = struct{}{}
	}
	return &Resolver{names: idx}
}

// Resolve maps query to a zone of the given snapshot.
func (r *Resolver) Resolve(query string, zones []tzdb.Zone) (Result, error) {
	q := strings.TrimSpace(query)
	if utf8.RuneCountInString(q) < 2 {
		return Result{}, domain.ErrInvalidQuery
	}

	if _, ok := r.names[q]; ok {
		z, found := tzdb.Find(zones, q)
		if !found {
			return Result{}, fmt.Errorf("%w: %s", domain.ErrResolutionInconsistency, q)
		}
		return Result{Kind: Exact, Zone: z}, nil
	}

	cands := search(fold(q), zones)
	if len(cands) == 0 {
		return Result{Kind: NoMatch}, nil
	}
	return Result{Kind: Candidates, Candidates: cands}, nil
}

func search(pattern []rune, zones []tzdb.Zone) []Candidate {
	var out []Candidate
	for _, z := range zones {
		if score, ok := bestLabel(pattern, z); ok {
			out = append(out, Candidate{Zone: z, Token: z.Name, Score: score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score < out[j].Score })
	if len(out) > MaxCandidates {
		out = out[:MaxCandidates]
	}
	return out
}

func bestLabel(pattern []rune, z tzdb.Zone) (float64, bool) {
	labels := make([]string, 0, len(z.Group)+len(z.MainCities)+1)
	labels = append(labels, z.Group...)
	labels = append(labels, z.CountryName)
	labels = append(labels, z.MainCities...)

	best, found := 0.0, false
	for _, l := range labels {
		if s, ok := matchScore(pattern, fold(l)); ok && (!found || s < best) {
			best, found = s, true
		}
	}
	return best, found
}
