package events

import (
	"time"
)

// Source kinds.
const (
	SourceKindOpenData = "opendata"
	SourceKindRSS      = "rss"
)

// SourceConfig describes one configured event source. Files live in the
// sources directory as <name>.yml.
type SourceConfig struct {
	Name     string         // Derived from filename (without .yml extension)
	Kind     string         `yaml:"kind"` // opendata or rss
	URL      string         `yaml:"url"`
	Settings SourceSettings `yaml:"settings"`
}

type SourceSettings struct {
	Enabled         bool   `yaml:"enabled"`
	RefreshInterval int    `yaml:"refresh_interval"` // seconds
	Limit           int    `yaml:"limit"`
	FreeOnly        bool   `yaml:"free_only"` // opendata kind only
	Category        string `yaml:"category"`  // opendata kind only
	ExtractDetails  bool   `yaml:"extract_details"`
}

// GetRefreshInterval returns the refresh interval as time.Duration.
func (s *SourceSettings) GetRefreshInterval() time.Duration {
	if s.RefreshInterval <= 0 {
		return 3600 * time.Second
	}
	return time.Duration(s.RefreshInterval) * time.Second
}
