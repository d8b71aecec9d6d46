package models

import "time"

// CompatibilityLink records that a part type fits two stamps. Links are
// stored as reciprocal row pairs: inserting one logical link creates two
// rows with source and target swapped, so a lookup from either stamp finds
// it. Notes edits and deletes must always touch both rows.
type CompatibilityLink struct {
	ID            uint   `gorm:"primaryKey;autoIncrement"`
	SourceStampID uint   `gorm:"not null;index"`
	TargetStampID uint   `gorm:"not null;index"`
	PartType      string `gorm:"size:150;not null"`
	Notes         string `gorm:"size:500"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName maps CompatibilityLink onto the legacy Parts_Compatibility table.
func (CompatibilityLink) TableName() string { return "Parts_Compatibility" }
