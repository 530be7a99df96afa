package geo

import "math"

// Point is a position on the Earth in decimal degrees
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// PointInPolygon checks whether the given point is inside the given polygon
// by ray crossing; it assumes that the last vertex does not repeat the first
// one, and so includes the edge from pts[len(pts)-1] to pts[0] in its test.
// A point exactly on the boundary counts as inside.
func PointInPolygon(p Point, pts []Point) bool {
	inside := false
	for i := 0; i < len(pts); i++ {
		p0, p1 := pts[i], pts[(i+1)%len(pts)]
		if onSegment(p, p0, p1) {
			return true
		}
		if (p0.Lat <= p.Lat && p.Lat < p1.Lat) || (p1.Lat <= p.Lat && p.Lat < p0.Lat) {
			x := p0.Lon + (p.Lat-p0.Lat)*(p1.Lon-p0.Lon)/(p1.Lat-p0.Lat)
			if x > p.Lon {
				inside = !inside
			}
		}
	}
	return inside
}

func onSegment(p, a, b Point) bool {
	const eps = 1e-9
	cross := (b.Lon-a.Lon)*(p.Lat-a.Lat) - (b.Lat-a.Lat)*(p.Lon-a.Lon)
	if math.Abs(cross) > eps {
		return false
	}
	if p.Lon < math.Min(a.Lon, b.Lon)-eps || p.Lon > math.Max(a.Lon, b.Lon)+eps {
		return false
	}
	if p.Lat < math.Min(a.Lat, b.Lat)-eps || p.Lat > math.Max(a.Lat, b.Lat)+eps {
		return false
	}
	return true
}

// NMDistance returns the great-circle distance between two points in
// nautical miles.
func NMDistance(a, b Point) float64 {
	const earthRadiusNM = 3440.065

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	s := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusNM * math.Atan2(math.Sqrt(s), math.Sqrt(1-s))
}

// MetersToFeet converts a height in meters to feet
func MetersToFeet(m float64) float64 {
	return m * 3.28084
}
