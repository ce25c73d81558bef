// Package sequence orders delivery stops with a greedy nearest-neighbor walk.
//
// Routes hold tens of stops, so the O(n²) walk is fine and keeps the result
// easy to predict for drivers.
package sequence

import "math"

const EarthRadiusKm = 6371.0

type Point struct {
	Lat float64
	Lng float64
}

type Stop struct {
	ID string
	Point
}

// Haversine returns the great-circle distance between a and b in kilometres.
func Haversine(a, b Point) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// NearestNeighbor returns stops in visiting order starting from start. On equal
// distances the stop that comes first in the input wins, so the same input
// always yields the same order. The input slice is not modified.
func NearestNeighbor(start Point, stops []Stop) []Stop {
	unvisited := make([]Stop, len(stops))
	copy(unvisited, stops)

	ordered := make([]Stop, 0, len(stops))
	current := start
	for len(unvisited) > 0 {
		nearestIndex := 0
		nearestDistance := math.Inf(1)
		for i, s := range unvisited {
			if d := Haversine(current, s.Point); d < nearestDistance {
				nearestDistance = d
				nearestIndex = i
			}
		}

		nearest := unvisited[nearestIndex]
		ordered = append(ordered, nearest)
		current = nearest.Point
		unvisited = append(unvisited[:nearestIndex], unvisited[nearestIndex+1:]...)
	}
	return ordered
}
