package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(stops []Stop) []string {
	out := make([]string, len(stops))
	for i, s := range stops {
		out[i] = s.ID
	}
	return out
}

func TestHaversine(t *testing.T) {
	assert.InDelta(t, 0, Haversine(Point{10, 10}, Point{10, 10}), 1e-9)

	// One degree of latitude is ~111.19 km on a 6371 km sphere.
	assert.InDelta(t, 111.195, Haversine(Point{0, 0}, Point{1, 0}), 0.01)

	// Lahore to Islamabad, roughly 270 km.
	d := Haversine(Point{31.5204, 74.3587}, Point{33.6844, 73.0479})
	assert.InDelta(t, 270, d, 10)

	assert.InDelta(t, Haversine(Point{1, 2}, Point{3, 4}), Haversine(Point{3, 4}, Point{1, 2}), 1e-9)
}

func TestNearestNeighbor_VisitsClosestFirst(t *testing.T) {
	stops := []Stop{
		{ID: "C", Point: Point{0, 3}},
		{ID: "A", Point: Point{0, 0}},
		{ID: "B", Point: Point{0, 1}},
	}

	got := NearestNeighbor(Point{0, -1}, stops)

	assert.Equal(t, []string{"A", "B", "C"}, ids(got))
	// input untouched
	assert.Equal(t, []string{"C", "A", "B"}, ids(stops))
}

func TestNearestNeighbor_TieBreaksOnInputOrder(t *testing.T) {
	stops := []Stop{
		{ID: "east", Point: Point{0, 1}},
		{ID: "west", Point: Point{0, -1}},
	}
	got := NearestNeighbor(Point{0, 0}, stops)
	assert.Equal(t, []string{"east", "west"}, ids(got))

	swapped := []Stop{stops[1], stops[0]}
	got = NearestNeighbor(Point{0, 0}, swapped)
	assert.Equal(t, []string{"west", "east"}, ids(got))
}

func TestNearestNeighbor_DeterministicAndComplete(t *testing.T) {
	stops := []Stop{
		{ID: "1", Point: Point{31.52, 74.35}},
		{ID: "2", Point: Point{31.55, 74.30}},
		{ID: "3", Point: Point{31.48, 74.40}},
		{ID: "4", Point: Point{31.50, 74.36}},
		{ID: "5", Point: Point{31.60, 74.20}},
		{ID: "6", Point: Point{31.52, 74.35}}, // same spot as 1
	}
	start := Point{31.5204, 74.3587}

	first := NearestNeighbor(start, stops)
	for i := 0; i < 10; i++ {
		require.Equal(t, ids(first), ids(NearestNeighbor(start, stops)))
	}

	require.Len(t, first, len(stops))
	seen := map[string]bool{}
	for _, s := range first {
		assert.False(t, seen[s.ID], "stop %s visited twice", s.ID)
		seen[s.ID] = true
	}
}

func TestNearestNeighbor_Empty(t *testing.T) {
	assert.Empty(t, NearestNeighbor(Point{}, nil))
}
