package models

import "time"

// Drawing is an engineering drawing attached to a stamp. The file itself
// lives on local disk at FilePath; only metadata is stored here.
type Drawing struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	StampID     uint   `gorm:"not null;index"`
	Name        string `gorm:"size:255;not null"`
	FileType    string `gorm:"size:16"`
	FilePath    string `gorm:"size:512;not null"`
	Description string `gorm:"size:500"`
	Version     int    `gorm:"default:1"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName maps Drawing onto the legacy Drawings table.
func (Drawing) TableName() string { return "Drawings" }
