package geo

import (
	"math"
	"testing"
)

var square = []Point{
	{Lon: 0, Lat: 0},
	{Lon: 10, Lat: 0},
	{Lon: 10, Lat: 10},
	{Lon: 0, Lat: 10},
}

func TestPointInPolygon_Inside(t *testing.T) {
	if !PointInPolygon(Point{Lon: 5, Lat: 5}, square) {
		t.Errorf("Expected point inside the square to be admitted")
	}
}

func TestPointInPolygon_Outside(t *testing.T) {
	if PointInPolygon(Point{Lon: 15, Lat: 5}, square) {
		t.Errorf("Expected point outside the square to be rejected")
	}
	if PointInPolygon(Point{Lon: -1, Lat: -1}, square) {
		t.Errorf("Expected point below the square to be rejected")
	}
}

func TestPointInPolygon_BoundaryCountsInside(t *testing.T) {
	cases := []Point{
		{Lon: 0, Lat: 5},   // on an edge
		{Lon: 5, Lat: 0},   // on an edge
		{Lon: 0, Lat: 0},   // on a vertex
		{Lon: 10, Lat: 10}, // on a vertex
	}
	for _, p := range cases {
		if !PointInPolygon(p, square) {
			t.Errorf("Expected boundary point (%v, %v) to count as inside", p.Lon, p.Lat)
		}
	}
}

func TestPointInPolygon_Concave(t *testing.T) {
	// U shape: the notch between the arms is outside
	u := []Point{
		{Lon: 0, Lat: 0},
		{Lon: 10, Lat: 0},
		{Lon: 10, Lat: 10},
		{Lon: 7, Lat: 10},
		{Lon: 7, Lat: 3},
		{Lon: 3, Lat: 3},
		{Lon: 3, Lat: 10},
		{Lon: 0, Lat: 10},
	}
	if PointInPolygon(Point{Lon: 5, Lat: 7}, u) {
		t.Errorf("Expected point in the notch to be outside")
	}
	if !PointInPolygon(Point{Lon: 5, Lat: 1}, u) {
		t.Errorf("Expected point in the base to be inside")
	}
}

func TestNMDistance_KnownPairs(t *testing.T) {
	// One degree of latitude is 60 nautical miles
	a := Point{Lon: 0, Lat: 0}
	b := Point{Lon: 0, Lat: 1}
	got := NMDistance(a, b)
	if math.Abs(got-60) > 0.2 {
		t.Errorf("Expected ~60 NM for one degree of latitude, got %.3f", got)
	}
}

func TestNMDistance_Zero(t *testing.T) {
	p := Point{Lon: -122.3, Lat: 47.4}
	if d := NMDistance(p, p); d != 0 {
		t.Errorf("Expected zero distance for identical points, got %f", d)
	}
}

func TestMetersToFeet(t *testing.T) {
	if got := MetersToFeet(1000); math.Abs(got-3280.84) > 0.01 {
		t.Errorf("Expected 1000 m to be 3280.84 ft, got %f", got)
	}
}
