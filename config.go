// CLAUDE:SUMMARY Service configuration: watch-list, run cadence, per-stage tunables, YAML loading with defaults.
package presswatch

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/presswatch/internal/collect"
	"github.com/hazyhaar/presswatch/internal/fetch"
	"github.com/hazyhaar/presswatch/internal/scrape"
	"github.com/hazyhaar/presswatch/internal/search"
	"github.com/hazyhaar/presswatch/internal/summarize"
	"github.com/hazyhaar/presswatch/internal/textmodel"
)

// Config configures the presswatch service.
type Config struct {
	// Watchlist is the fixed set of entities each run reports on.
	Watchlist []Entity `yaml:"watchlist"`

	// Blacklist lists domains never scraped (press-release wires, SEO farms).
	Blacklist []string `yaml:"blacklist"`

	// LookbackDays sets the collection window. Default: 7.
	LookbackDays int `yaml:"lookback_days"`

	// Interval between scheduled runs when Start is used. Default: 24h.
	// Set programmatically; from YAML use interval_minutes.
	Interval time.Duration `yaml:"-"`

	// IntervalMinutes sets Interval from a config file.
	IntervalMinutes int `yaml:"interval_minutes"`

	// DBPath is the SQLite database location. Default: presswatch.db.
	DBPath string `yaml:"db_path"`

	// ExtractConcurrency bounds parallel page extractions. Default: 3.
	ExtractConcurrency int64 `yaml:"extract_concurrency"`

	// DisableBrowser turns off the rendered-page fallback tier; pages that
	// fail the static tier are then dropped instead of rendered.
	DisableBrowser bool `yaml:"disable_browser"`

	// Stage settings. Zero values take each stage's defaults.
	Search  search.Config        `yaml:"search"`
	Fetch   fetch.Config         `yaml:"fetch"`
	Scrape  scrape.Config        `yaml:"scrape"`
	Browser scrape.BrowserConfig `yaml:"browser"`
	Collect collect.Config       `yaml:"collect"`
	Analyze summarize.Config     `yaml:"analyze"`
	Model   textmodel.Config     `yaml:"model"`
}

func (c *Config) defaults() {
	if c.LookbackDays <= 0 {
		c.LookbackDays = 7
	}
	if c.Interval <= 0 && c.IntervalMinutes > 0 {
		c.Interval = time.Duration(c.IntervalMinutes) * time.Minute
	}
	if c.Interval <= 0 {
		c.Interval = 24 * time.Hour
	}
	if c.DBPath == "" {
		c.DBPath = "presswatch.db"
	}
	if c.ExtractConcurrency <= 0 {
		c.ExtractConcurrency = 3
	}
	if len(c.Collect.Blacklist) == 0 {
		c.Collect.Blacklist = c.Blacklist
	}
	if c.Collect.Delay <= 0 {
		c.Collect.Delay = 2 * time.Second
	}
}

// LoadConfig reads a YAML config file. Fields left unset fall back to
// defaults at service construction.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("presswatch: read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("presswatch: parse config: %w", err)
	}
	return &cfg, nil
}
