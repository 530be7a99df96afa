package geo

import (
	"encoding/json"
	"fmt"
	"os"
)

// SectorDef is one named airspace sector polygon with an optional altitude
// band. Floor/ceiling of zero means unbounded on that side.
type SectorDef struct {
	Name      string  `json:"name"`
	FloorFt   int     `json:"floor_ft"`
	CeilingFt int     `json:"ceiling_ft"`
	Boundary  []Point `json:"boundary"`
}

// SectorIndex answers point-to-sector lookups against the loaded definitions.
// Definitions never change after startup, so lookups need no locking.
type SectorIndex struct {
	sectors []SectorDef
	// per-sector bounding boxes, checked before the polygon test
	boxes []boundingBox
}

type boundingBox struct {
	minLon, minLat, maxLon, maxLat float64
}

// NewSectorIndex builds an index over the given definitions
func NewSectorIndex(sectors []SectorDef) *SectorIndex {
	idx := &SectorIndex{sectors: sectors}
	for _, s := range sectors {
		box := boundingBox{minLon: 180, minLat: 90, maxLon: -180, maxLat: -90}
		for _, p := range s.Boundary {
			if p.Lon < box.minLon {
				box.minLon = p.Lon
			}
			if p.Lon > box.maxLon {
				box.maxLon = p.Lon
			}
			if p.Lat < box.minLat {
				box.minLat = p.Lat
			}
			if p.Lat > box.maxLat {
				box.maxLat = p.Lat
			}
		}
		idx.boxes = append(idx.boxes, box)
	}
	return idx
}

// Locate returns the name of the sector containing the given position, or ""
// when no sector matches. The first definition wins on overlap.
func (idx *SectorIndex) Locate(lat, lon float64, altitudeFt int) string {
	p := Point{Lon: lon, Lat: lat}
	for i, s := range idx.sectors {
		box := idx.boxes[i]
		if lon < box.minLon || lon > box.maxLon || lat < box.minLat || lat > box.maxLat {
			continue
		}
		if s.FloorFt != 0 && altitudeFt < s.FloorFt {
			continue
		}
		if s.CeilingFt != 0 && altitudeFt > s.CeilingFt {
			continue
		}
		if PointInPolygon(p, s.Boundary) {
			return s.Name
		}
	}
	return ""
}

// Sectors returns the loaded definitions
func (idx *SectorIndex) Sectors() []SectorDef {
	return idx.sectors
}

// LoadSectorFile reads sector definitions from a JSON file
func LoadSectorFile(path string) ([]SectorDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sector file: %w", err)
	}
	var defs []SectorDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return nil, fmt.Errorf("parse sector file %s: %w", path, err)
	}
	for _, d := range defs {
		if d.Name == "" {
			return nil, fmt.Errorf("sector file %s: sector with empty name", path)
		}
		if len(d.Boundary) < 3 {
			return nil, fmt.Errorf("sector %s: boundary needs at least 3 vertices", d.Name)
		}
	}
	return defs, nil
}

// LoadPolygonFile reads the geographic boundary polygons used by the filter
// chain. The file holds a JSON array of rings, each a list of points.
func LoadPolygonFile(path string) ([][]Point, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read polygon file: %w", err)
	}
	var rings [][]Point
	if err := json.Unmarshal(raw, &rings); err != nil {
		return nil, fmt.Errorf("parse polygon file %s: %w", path, err)
	}
	for i, r := range rings {
		if len(r) < 3 {
			return nil, fmt.Errorf("polygon file %s: ring %d needs at least 3 vertices", path, i)
		}
	}
	return rings, nil
}
