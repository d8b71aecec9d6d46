package models

import "time"

// Stamp is a die/tool-set tracked by the shop. All inventory hangs off a stamp.
type Stamp struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"size:100;uniqueIndex;not null"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName maps Stamp onto the legacy Stamps table.
func (Stamp) TableName() string { return "Stamps" }
