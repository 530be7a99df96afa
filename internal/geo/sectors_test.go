package geo

import (
	"os"
	"path/filepath"
	"testing"
)

func testIndex() *SectorIndex {
	return NewSectorIndex([]SectorDef{
		{
			Name:      "LOW",
			CeilingFt: 10000,
			Boundary: []Point{
				{Lon: 0, Lat: 0}, {Lon: 10, Lat: 0}, {Lon: 10, Lat: 10}, {Lon: 0, Lat: 10},
			},
		},
		{
			Name:    "HIGH",
			FloorFt: 10001,
			Boundary: []Point{
				{Lon: 0, Lat: 0}, {Lon: 10, Lat: 0}, {Lon: 10, Lat: 10}, {Lon: 0, Lat: 10},
			},
		},
		{
			Name: "EAST",
			Boundary: []Point{
				{Lon: 20, Lat: 0}, {Lon: 30, Lat: 0}, {Lon: 30, Lat: 10}, {Lon: 20, Lat: 10},
			},
		},
	})
}

func TestLocate_AltitudeBands(t *testing.T) {
	idx := testIndex()

	if got := idx.Locate(5, 5, 5000); got != "LOW" {
		t.Errorf("Expected LOW at 5000 ft, got %q", got)
	}
	if got := idx.Locate(5, 5, 35000); got != "HIGH" {
		t.Errorf("Expected HIGH at 35000 ft, got %q", got)
	}
	// exactly at the LOW ceiling
	if got := idx.Locate(5, 5, 10000); got != "LOW" {
		t.Errorf("Expected LOW at its ceiling, got %q", got)
	}
}

func TestLocate_UnboundedSector(t *testing.T) {
	idx := testIndex()
	if got := idx.Locate(5, 25, 45000); got != "EAST" {
		t.Errorf("Expected EAST regardless of altitude, got %q", got)
	}
	if got := idx.Locate(5, 25, 0); got != "EAST" {
		t.Errorf("Expected EAST on the ground, got %q", got)
	}
}

func TestLocate_NoSector(t *testing.T) {
	idx := testIndex()
	if got := idx.Locate(5, 15, 5000); got != "" {
		t.Errorf("Expected no sector between the polygons, got %q", got)
	}
}

func TestLocate_FirstDefinitionWinsOnOverlap(t *testing.T) {
	idx := NewSectorIndex([]SectorDef{
		{Name: "A", Boundary: []Point{{Lon: 0, Lat: 0}, {Lon: 10, Lat: 0}, {Lon: 10, Lat: 10}, {Lon: 0, Lat: 10}}},
		{Name: "B", Boundary: []Point{{Lon: 0, Lat: 0}, {Lon: 10, Lat: 0}, {Lon: 10, Lat: 10}, {Lon: 0, Lat: 10}}},
	})
	if got := idx.Locate(5, 5, 1000); got != "A" {
		t.Errorf("Expected first definition to win, got %q", got)
	}
}

func TestLoadSectorFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sectors.json")
	content := `[{"name":"ZSE-46","floor_ft":24000,"ceiling_ft":60000,` +
		`"boundary":[{"lon":-122,"lat":45},{"lon":-120,"lat":45},{"lon":-121,"lat":47}]}]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	defs, err := LoadSectorFile(path)
	if err != nil {
		t.Fatalf("LoadSectorFile failed: %v", err)
	}
	if len(defs) != 1 || defs[0].Name != "ZSE-46" || len(defs[0].Boundary) != 3 {
		t.Errorf("Unexpected definitions: %+v", defs)
	}
}

func TestLoadSectorFile_RejectsDegenerate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	content := `[{"name":"TINY","boundary":[{"lon":0,"lat":0},{"lon":1,"lat":1}]}]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSectorFile(path); err == nil {
		t.Errorf("Expected error for a two-vertex boundary")
	}
}

func TestLoadPolygonFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "polys.json")
	content := `[[{"lon":0,"lat":0},{"lon":5,"lat":0},{"lon":5,"lat":5}]]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rings, err := LoadPolygonFile(path)
	if err != nil {
		t.Fatalf("LoadPolygonFile failed: %v", err)
	}
	if len(rings) != 1 || len(rings[0]) != 3 {
		t.Errorf("Unexpected rings: %+v", rings)
	}
}
