package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vatwatch/internal/geo"
	"vatwatch/internal/models/entities"
)

// SectorDefRepository persists the static sector definitions so the dashboard
// and ad-hoc SQL can see the same polygons the engine runs on.
type SectorDefRepository struct {
	db *gorm.DB
}

func NewSectorDefRepository(db *gorm.DB) *SectorDefRepository {
	return &SectorDefRepository{db: db}
}

// Seed replaces the stored definitions with the ones loaded from file
func (r *SectorDefRepository) Seed(ctx context.Context, defs []geo.SectorDef) error {
	for _, d := range defs {
		boundary, err := json.Marshal(d.Boundary)
		if err != nil {
			return fmt.Errorf("encode boundary for sector %s: %w", d.Name, err)
		}
		row := entities.Sector{
			Name:      d.Name,
			FloorFt:   d.FloorFt,
			CeilingFt: d.CeilingFt,
			Boundary:  string(boundary),
		}
		err = r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				UpdateAll: true,
			}).
			Create(&row).Error
		if err != nil {
			return fmt.Errorf("seed sector %s: %w", d.Name, err)
		}
	}
	return nil
}

// List returns the stored sector definitions
func (r *SectorDefRepository) List(ctx context.Context) ([]entities.Sector, error) {
	var sectors []entities.Sector
	err := r.db.WithContext(ctx).Order("name").Find(&sectors).Error
	return sectors, err
}
