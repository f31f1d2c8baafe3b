// Package tzdb provides the timezone catalog: canonical zones, the labels users
// search by and their current UTC offsets.
package tzdb

import (
	"fmt"
	"slices"
	"time"
	_ "time/tzdata" // offsets must not depend on the host zoneinfo

	"gopkg.in/yaml.v3"
)

// Zone is a catalog entry as of the moment it was produced.
type Zone struct {
	Name          string   `yaml:"name"`
	Group         []string `yaml:"group"`
	CountryName   string   `yaml:"countryName"`
	MainCities    []string `yaml:"mainCities"`
	OffsetMinutes int      `yaml:"-"`
}

// Catalog yields a fresh snapshot of all zones. Offsets change with daylight saving,
// so callers must not keep a snapshot beyond a single operation.
type Catalog interface {
	All() []Zone
}

// Static is a Catalog over a fixed zone list whose offsets are computed on every call.
type Static struct {
	zones []Zone
	locs  []*time.Location
	now   func() time.Time
}

// Parse decodes a YAML zone list and checks every canonical name against the IANA database.
func Parse(data []byte) (*Static, error) {
	var zones []Zone
	if err := yaml.Unmarshal(data, &zones); err != nil {
		return nil, fmt.Errorf("decode zones: %w", err)
	}
	if len(zones) == 0 {
		return nil, fmt.Errorf("decode zones: empty catalog")
	}
	locs := make([]*time.Location, len(zones))
	for i, z := range zones {
		loc, err := time.LoadLocation(z.Name)
		if err != nil {
			return nil, fmt.Errorf("zone %q: %w", z.Name, err)
		}
		if !slices.Contains(z.Group, z.Name) {
			zones[i].Group = append([]string{z.Name}, z.Group...)
		}
		locs[i] = loc
	}
	return &Static{zones: zones, locs: locs, now: time.Now}, nil
}

// WithClock returns a copy of the catalog that computes offsets at now().
func (s *Static) WithClock(now func() time.Time) *Static {
	cp := *s
	cp.now = now
	return &cp
}

// All returns every zone with its offset at the current instant.
func (s *Static) All() []Zone {
	at := s.now()
	out := make([]Zone, len(s.zones))
	for i, z := range s.zones {
		_, off := at.In(s.locs[i]).Zone()
		z.OffsetMinutes = off / 60
		out[i] = z
	}
	return out
}

// Names returns every identifier that names a zone in the catalog, aliases included.
func (s *Static) Names() []string {
	var names []string
	for _, z := range s.zones {
		names = append(names, z.Group...)
	}
	return names
}

// Find returns the zone whose group contains name.
func Find(zones []Zone, name string) (Zone, bool) {
	for _, z := range zones {
		if slices.Contains(z.Group, name) {
			return z, true
		}
	}
	return Zone{}, false
}
