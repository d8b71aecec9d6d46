package main

import (
	"gorm.io/gorm"

	"github.com/shopfloor/toolcrib/internal/config"
	"github.com/shopfloor/toolcrib/internal/db"
)

// connectFromConfig loads the config file and opens the configured database.
func connectFromConfig(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return cfg, gormDB, nil
}
