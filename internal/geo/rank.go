package geo

import (
	"sort"
	"strings"
)

// Locatable is anything that can be ranked by distance and filtered by
// specialization and spoken language.
type Locatable interface {
	Position() *Point
	Specialty() string
	SpokenLanguages() []string
}

// Filter narrows a ranking. Zero values disable each criterion.
type Filter struct {
	MaxDistanceKm  float64
	Specialization string
	Languages      []string
}

// Ranked pairs a candidate with its distance from the origin. DistanceKm is
// nil when the ranking had no origin.
type Ranked[T Locatable] struct {
	Item       T
	DistanceKm *float64
}

// Rank orders candidates by ascending distance from origin. With a nil origin
// every candidate is returned unranked in its original order. Otherwise
// candidates without a position, beyond MaxDistanceKm, or failing the
// specialization or language filters are dropped. Ties keep input order.
func Rank[T Locatable](origin *Point, candidates []T, f Filter) []Ranked[T] {
	if origin == nil {
		out := make([]Ranked[T], 0, len(candidates))
		for _, c := range candidates {
			out = append(out, Ranked[T]{Item: c})
		}
		return out
	}

	out := make([]Ranked[T], 0, len(candidates))
	for _, c := range candidates {
		pos := c.Position()
		if pos == nil {
			continue
		}
		d := Distance(*origin, *pos)
		if f.MaxDistanceKm > 0 && d > f.MaxDistanceKm {
			continue
		}
		if !matchesSpecialization(c.Specialty(), f.Specialization) {
			continue
		}
		if !sharesLanguage(c.SpokenLanguages(), f.Languages) {
			continue
		}
		out = append(out, Ranked[T]{Item: c, DistanceKm: &d})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].DistanceKm < *out[j].DistanceKm
	})
	return out
}

// SplitLanguages parses a comma-separated language list such as "English, Swahili".
func SplitLanguages(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func matchesSpecialization(have, want string) bool {
	want = strings.ToLower(strings.TrimSpace(want))
	if want == "" {
		return true
	}
	return strings.Contains(strings.ToLower(have), want)
}

func sharesLanguage(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		w = strings.TrimSpace(w)
		for _, h := range have {
			if strings.EqualFold(strings.TrimSpace(h), w) {
				return true
			}
		}
	}
	return false
}
