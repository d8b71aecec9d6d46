// Package config provides YAML-based configuration loading for Toolcrib.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// stampRefPattern is the shape the text command decoder can parse back
// out of action ids: a leading digit, then word characters, dots or
// dashes.
var stampRefPattern = regexp.MustCompile(`^\d[\w.-]*$`)

// digestScheduleParser accepts the same 5-field cron specs the digest
// scheduler runs on.
var digestScheduleParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Config is the top-level Toolcrib configuration, loaded from config.yaml.
type Config struct {
	Platform  string          `yaml:"platform"` // "discord" or "slack"
	ChannelID string          `yaml:"channel_id"`
	Database  DatabaseConfig  `yaml:"database"`
	Drawings  DrawingsConfig  `yaml:"drawings"`
	Limits    LimitsConfig    `yaml:"limits"`
	Report    ReportConfig    `yaml:"report"`
	Digest    DigestConfig    `yaml:"digest"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Stamps    []StampConfig   `yaml:"stamps"`
}

// DatabaseConfig selects the storage backend. SQLite is the default; MySQL
// is available for shared deployments.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "mysql"
	Path   string `yaml:"path"`   // sqlite file path
	DSN    string `yaml:"dsn"`    // mysql DSN
}

// DrawingsConfig holds on-disk storage settings for drawing files.
type DrawingsConfig struct {
	Dir string `yaml:"dir"`
}

// LimitsConfig bounds user-supplied values.
type LimitsConfig struct {
	MaxQuantity int `yaml:"max_quantity"`
}

// ReportConfig tunes balance report rendering.
type ReportConfig struct {
	// ClockOffsetHours shifts stored UTC timestamps for display, matching
	// the shop's wall clock.
	ClockOffsetHours int `yaml:"clock_offset_hours"`
}

// DigestConfig schedules the low-stock digest. Disabled when Schedule is
// empty.
type DigestConfig struct {
	Schedule  string `yaml:"schedule"` // 5-field cron spec
	Threshold int    `yaml:"threshold"`
}

// DashboardConfig holds the read-only web dashboard listen address.
type DashboardConfig struct {
	Addr string `yaml:"addr"`
}

// StampConfig declares a stamp the bot should know about. Ref is the
// stable identifier embedded in action ids ("13_3_dwb_new"); Name is the
// human label ("13.3 dwb new").
type StampConfig struct {
	Ref  string `yaml:"ref"`
	Name string `yaml:"name"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Platform == "" {
		c.Platform = "discord"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		c.Database.Path = "toolcrib.db"
	}
	if c.Drawings.Dir == "" {
		c.Drawings.Dir = "drawings"
	}
	if c.Limits.MaxQuantity == 0 {
		c.Limits.MaxQuantity = 10000
	}
	if c.Report.ClockOffsetHours == 0 {
		c.Report.ClockOffsetHours = 3
	}
	if c.Digest.Threshold == 0 {
		c.Digest.Threshold = 2
	}
	if c.Dashboard.Addr == "" {
		c.Dashboard.Addr = "127.0.0.1:8090"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Platform != "discord" && c.Platform != "slack" {
		errs = append(errs, fmt.Sprintf("platform must be discord or slack, got %q", c.Platform))
	}
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			errs = append(errs, "database.path is required for sqlite")
		}
	case "mysql":
		if c.Database.DSN == "" {
			errs = append(errs, "database.dsn is required for mysql")
		}
	default:
		errs = append(errs, fmt.Sprintf("database.driver must be sqlite or mysql, got %q", c.Database.Driver))
	}
	if c.Digest.Schedule != "" {
		if _, err := digestScheduleParser.Parse(c.Digest.Schedule); err != nil {
			errs = append(errs, fmt.Sprintf("digest.schedule %q: %v", c.Digest.Schedule, err))
		}
	}
	if len(c.Stamps) == 0 {
		errs = append(errs, "at least one stamp is required")
	}
	seen := make(map[string]bool)
	for i, s := range c.Stamps {
		if s.Ref == "" {
			errs = append(errs, fmt.Sprintf("stamps[%d].ref is required", i))
		} else if !stampRefPattern.MatchString(s.Ref) {
			errs = append(errs, fmt.Sprintf("stamps[%d].ref %q must start with a digit and use only letters, digits, dots or dashes", i, s.Ref))
		}
		if s.Name == "" {
			errs = append(errs, fmt.Sprintf("stamps[%d].name is required", i))
		}
		if seen[s.Ref] {
			errs = append(errs, fmt.Sprintf("stamps[%d].ref %q is duplicated", i, s.Ref))
		}
		seen[s.Ref] = true
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
