package models

import "time"

// Part is a single inventory row. The same struct backs all seven category
// tables (Punches, Inserts, Knives, Clamps, Disc_Parts, Pushers, Parts);
// callers select the table with db.Table(...). Columns a category does not
// carry simply stay empty in that table.
type Part struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	StampID      uint   `gorm:"not null;index"`
	Name         string `gorm:"size:100;not null"`
	Type         string `gorm:"size:50"`
	Size         string `gorm:"size:50"`
	Quantity     int    `gorm:"default:0"`
	ImageURL     string `gorm:"size:2000"`
	Description  string `gorm:"size:500"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastModified *time.Time
}
