package indexermap

import (
	"math/rand/v2"
	"slices"
)

const DefaultJitter = 0.5

// ExcludeOrganizations drops records whose resolved organization is listed.
func ExcludeOrganizations(records []Record, orgs []string) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Org != "" && slices.Contains(orgs, r.Org) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Jitter offsets every record's latitude and longitude independently by a
// uniform amount in [-magnitude, +magnitude] degrees so co-located markers
// do not hide each other.
func Jitter(records []Record, rng *rand.Rand, magnitude float64) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		r.Latitude += magnitude * (2*rng.Float64() - 1)
		r.Longitude += magnitude * (2*rng.Float64() - 1)
		out[i] = r
	}
	return out
}
