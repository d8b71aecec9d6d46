package db

import (
	"fmt"

	"github.com/shopfloor/toolcrib/internal/catalog"
	"github.com/shopfloor/toolcrib/internal/config"
	"github.com/shopfloor/toolcrib/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllModels returns the singly-tabled GORM models for migration. The
// seven category tables share one struct and are migrated separately in
// AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&models.Stamp{},
		&models.CompatibilityLink{},
		&models.Drawing{},
	}
}

// AutoMigrate creates or updates all tables, including one table per part
// category off the shared Part struct.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	for _, table := range catalog.TableNames() {
		if err := db.Table(table).AutoMigrate(&models.Part{}); err != nil {
			return fmt.Errorf("db: auto-migrate %s: %w", table, err)
		}
	}
	return nil
}

// SeedStamps upserts Stamp rows from configuration, keyed by name.
func SeedStamps(db *gorm.DB, stamps []config.StampConfig) error {
	for _, sc := range stamps {
		stamp := models.Stamp{Name: sc.Name}
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&stamp)
		if result.Error != nil {
			return fmt.Errorf("db: seed stamp %q: %w", sc.Name, result.Error)
		}
	}
	return nil
}
