package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clinic struct {
	name      string
	pos       *Point
	specialty string
	languages string
}

func (c clinic) Position() *Point          { return c.pos }
func (c clinic) Specialty() string         { return c.specialty }
func (c clinic) SpokenLanguages() []string { return SplitLanguages(c.languages) }

func at(p Point) *Point { return &p }

func kenyanClinics() []clinic {
	return []clinic{
		{name: "mombasa", pos: at(mombasa), specialty: "Pediatrics", languages: "English, Swahili"},
		{name: "kisumu", pos: at(kisumu), specialty: "Cardiology", languages: "English, Swahili, Arabic"},
		{name: "nairobi", pos: at(nairobi), specialty: "General Medicine", languages: "English, Swahili"},
		{name: "unknown", pos: nil, specialty: "General Medicine", languages: "English"},
		{name: "nakuru", pos: at(nakuru), specialty: "Obstetrics & Gynecology", languages: "English, Swahili, Luo"},
		{name: "eldoret", pos: at(eldoret), specialty: "General Medicine", languages: "English, Swahili, Kamba"},
	}
}

func names(ranked []Ranked[clinic]) []string {
	out := make([]string, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.Item.name)
	}
	return out
}

func TestRankOrdersByDistance(t *testing.T) {
	origin := Point{Lat: -1.2864, Lon: 36.8172}
	ranked := Rank(&origin, kenyanClinics(), Filter{MaxDistanceKm: 1000})

	require.Len(t, ranked, 5)
	assert.Equal(t, "nairobi", ranked[0].Item.name)
	for i := 1; i < len(ranked); i++ {
		assert.LessOrEqual(t, *ranked[i-1].DistanceKm, *ranked[i].DistanceKm)
	}
	assert.NotContains(t, names(ranked), "unknown")
}

func TestRankNilOriginReturnsAllUnranked(t *testing.T) {
	ranked := Rank[clinic](nil, kenyanClinics(), Filter{MaxDistanceKm: 1})
	require.Len(t, ranked, 6)
	assert.Equal(t, []string{"mombasa", "kisumu", "nairobi", "unknown", "nakuru", "eldoret"}, names(ranked))
	for _, r := range ranked {
		assert.Nil(t, r.DistanceKm)
	}
}

func TestRankMaxDistance(t *testing.T) {
	ranked := Rank(at(nairobi), kenyanClinics(), Filter{MaxDistanceKm: 200})
	assert.Equal(t, []string{"nairobi", "nakuru"}, names(ranked))
}

func TestRankSpecializationFilter(t *testing.T) {
	ranked := Rank(at(nairobi), kenyanClinics(), Filter{Specialization: "general"})
	assert.Equal(t, []string{"nairobi", "eldoret"}, names(ranked))
}

func TestRankLanguageFilter(t *testing.T) {
	ranked := Rank(at(nairobi), kenyanClinics(), Filter{Languages: []string{"luo", "arabic"}})
	assert.Equal(t, []string{"nakuru", "kisumu"}, names(ranked))

	ranked = Rank(at(nairobi), kenyanClinics(), Filter{Languages: []string{"Somali"}})
	assert.Empty(t, ranked)
}

func TestRankStableOnTies(t *testing.T) {
	a := clinic{name: "a", pos: at(nakuru)}
	b := clinic{name: "b", pos: at(nakuru)}
	c := clinic{name: "c", pos: at(nakuru)}
	ranked := Rank(at(nairobi), []clinic{b, a, c}, Filter{})
	assert.Equal(t, []string{"b", "a", "c"}, names(ranked))
}
