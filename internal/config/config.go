package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures everything required to run the scraper.
type Config struct {
	Scrape  ScrapeConfig  `yaml:"scrape"`
	Robots  RobotsConfig  `yaml:"robots"`
	Logging LoggingConfig `yaml:"logging"`
}

// ScrapeConfig controls the crawl: where it starts, how hard it pushes,
// and where the results go. It is read-only once the crawl starts.
type ScrapeConfig struct {
	BaseURL          string          `yaml:"base_url"`
	MaxConcurrent    int             `yaml:"max_concurrent"`
	RequestDelay     Duration        `yaml:"request_delay"`
	RequestTimeout   Duration        `yaml:"request_timeout"`
	UserAgent        string          `yaml:"user_agent"`
	OutputFormat     string          `yaml:"output_format"`
	OutputStem       string          `yaml:"output_stem"`
	MaxPages         int             `yaml:"max_pages"`
	MaxBodyBytes     int64           `yaml:"max_body_bytes"`
	RateLimitPerHost RateLimitConfig `yaml:"rate_limit_per_host"`
}

// RateLimitConfig applies a token bucket per host on top of the fixed
// request delay.
type RateLimitConfig struct {
	Requests int      `yaml:"requests"`
	Window   Duration `yaml:"window"`
}

// Enabled reports whether per-host rate limiting is active.
func (r RateLimitConfig) Enabled() bool {
	return r.Requests > 0 && !r.Window.IsZero()
}

// RobotsConfig configures robots.txt handling.
type RobotsConfig struct {
	Respect   bool     `yaml:"respect"`
	Overrides []string `yaml:"overrides"`
	UserAgent string   `yaml:"user_agent"`
	CacheTTL  Duration `yaml:"cache_ttl"`
}

// LoggingConfig selects log verbosity and format.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Structured bool   `yaml:"structured"`
}

// OutputFormats enumerates the accepted values for scrape.output_format.
var OutputFormats = []string{"json", "csv", "xlsx"}

// Default returns a Config populated with sensible defaults.
func Default() Config {
	return Config{
		Scrape: ScrapeConfig{
			MaxConcurrent:  10,
			RequestDelay:   DurationFrom(time.Second),
			RequestTimeout: DurationFrom(30 * time.Second),
			UserAgent:      "autoscripts-bot/1.0",
			OutputFormat:   "json",
			OutputStem:     "scraped_data",
			MaxPages:       50,
			MaxBodyBytes:   6 * 1024 * 1024,
		},
		Robots: RobotsConfig{
			Respect:   false,
			Overrides: []string{},
			UserAgent: "autoscripts-bot/1.0",
			CacheTTL:  DurationFrom(6 * time.Hour),
		},
		Logging: LoggingConfig{
			Level:      "info",
			Structured: false,
		},
	}
}

// Load reads, merges, and validates configuration from a YAML file.
func Load(path string) (*Config, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer fh.Close()
	return LoadFromReader(fh)
}

// LoadFromReader decodes configuration from an arbitrary reader.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalise()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate enforces the invariants the scraper depends on. It runs before
// any network activity so a bad config never starts a crawl.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Scrape.BaseURL) == "" {
		return errors.New("scrape.base_url must be set")
	}
	parsed, err := url.Parse(c.Scrape.BaseURL)
	if err != nil {
		return fmt.Errorf("scrape.base_url is not a valid URL: %w", err)
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return fmt.Errorf("scrape.base_url %q must be absolute with a host", c.Scrape.BaseURL)
	}
	if c.Scrape.MaxConcurrent < 1 {
		return fmt.Errorf("scrape.max_concurrent must be >= 1 (got %d)", c.Scrape.MaxConcurrent)
	}
	if c.Scrape.RequestDelay.Duration < 0 {
		return fmt.Errorf("scrape.request_delay must be >= 0 (got %s)", c.Scrape.RequestDelay)
	}
	if c.Scrape.RequestTimeout.Duration <= 0 {
		return fmt.Errorf("scrape.request_timeout must be > 0 (got %s)", c.Scrape.RequestTimeout)
	}
	if c.Scrape.MaxPages <= 0 {
		return fmt.Errorf("scrape.max_pages must be > 0 (got %d)", c.Scrape.MaxPages)
	}
	if c.Scrape.MaxBodyBytes <= 0 {
		return fmt.Errorf("scrape.max_body_bytes must be > 0 (got %d)", c.Scrape.MaxBodyBytes)
	}
	if strings.TrimSpace(c.Scrape.UserAgent) == "" {
		return errors.New("scrape.user_agent must be set")
	}
	if !validFormat(c.Scrape.OutputFormat) {
		return fmt.Errorf("scrape.output_format %q is not one of %s",
			c.Scrape.OutputFormat, strings.Join(OutputFormats, ", "))
	}
	if strings.TrimSpace(c.Scrape.OutputStem) == "" {
		return errors.New("scrape.output_stem must be set")
	}
	if rl := c.Scrape.RateLimitPerHost; rl.Requests < 0 {
		return fmt.Errorf("scrape.rate_limit_per_host.requests must be >= 0 (got %d)", rl.Requests)
	}
	if c.Robots.Respect && strings.TrimSpace(c.Robots.UserAgent) == "" {
		return errors.New("robots.user_agent must be set when robots.respect is true")
	}
	return nil
}

func validFormat(format string) bool {
	for _, f := range OutputFormats {
		if format == f {
			return true
		}
	}
	return false
}

func (c *Config) normalise() {
	c.Scrape.BaseURL = strings.TrimSpace(c.Scrape.BaseURL)
	c.Scrape.UserAgent = strings.TrimSpace(c.Scrape.UserAgent)
	c.Scrape.OutputFormat = strings.ToLower(strings.TrimSpace(c.Scrape.OutputFormat))
	c.Scrape.OutputStem = strings.TrimSpace(c.Scrape.OutputStem)
	c.Robots.UserAgent = strings.TrimSpace(c.Robots.UserAgent)

	if len(c.Robots.Overrides) > 0 {
		unique := make(map[string]struct{}, len(c.Robots.Overrides))
		cleaned := make([]string, 0, len(c.Robots.Overrides))
		for _, raw := range c.Robots.Overrides {
			host := strings.ToLower(strings.TrimSpace(raw))
			if host == "" {
				continue
			}
			if _, exists := unique[host]; exists {
				continue
			}
			unique[host] = struct{}{}
			cleaned = append(cleaned, host)
		}
		sort.Strings(cleaned)
		c.Robots.Overrides = cleaned
	}
}
