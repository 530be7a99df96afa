package repositories

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"vatwatch/internal/geo"
	"vatwatch/internal/models/entities"
)

func testGormDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	if err := gdb.AutoMigrate(&entities.Sector{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return gdb
}

func sampleDefs() []geo.SectorDef {
	return []geo.SectorDef{
		{
			Name:      "ZSE-46",
			FloorFt:   24000,
			CeilingFt: 60000,
			Boundary:  []geo.Point{{Lon: -122, Lat: 45}, {Lon: -120, Lat: 45}, {Lon: -121, Lat: 47}},
		},
		{
			Name:     "ZSE-01",
			Boundary: []geo.Point{{Lon: -124, Lat: 46}, {Lon: -123, Lat: 46}, {Lon: -123.5, Lat: 48}},
		},
	}
}

func TestSectorDefRepository_SeedAndList(t *testing.T) {
	repo := NewSectorDefRepository(testGormDB(t))
	ctx := context.Background()

	if err := repo.Seed(ctx, sampleDefs()); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	sectors, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(sectors) != 2 {
		t.Fatalf("Expected 2 sectors, got %d", len(sectors))
	}
	// List orders by name
	if sectors[0].Name != "ZSE-01" || sectors[1].Name != "ZSE-46" {
		t.Errorf("Unexpected order: %s, %s", sectors[0].Name, sectors[1].Name)
	}
	if sectors[1].FloorFt != 24000 || sectors[1].CeilingFt != 60000 {
		t.Errorf("Altitude band not persisted: %+v", sectors[1])
	}
	if sectors[0].Boundary == "" {
		t.Errorf("Expected boundary JSON persisted")
	}
}

func TestSectorDefRepository_SeedUpdatesExisting(t *testing.T) {
	repo := NewSectorDefRepository(testGormDB(t))
	ctx := context.Background()

	defs := sampleDefs()
	if err := repo.Seed(ctx, defs); err != nil {
		t.Fatalf("Initial seed failed: %v", err)
	}

	// a redrawn boundary file raises the ceiling
	defs[0].CeilingFt = 99999
	if err := repo.Seed(ctx, defs); err != nil {
		t.Fatalf("Re-seed failed: %v", err)
	}

	sectors, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(sectors) != 2 {
		t.Fatalf("Expected re-seed to upsert, got %d rows", len(sectors))
	}
	for _, s := range sectors {
		if s.Name == "ZSE-46" && s.CeilingFt != 99999 {
			t.Errorf("Expected updated ceiling, got %d", s.CeilingFt)
		}
	}
}
