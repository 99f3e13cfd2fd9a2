// Package config loads and validates sitecrawler configuration via Viper.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ExtractMode selects what, if anything, is written to the text/ directory.
type ExtractMode string

// Supported extraction modes.
const (
	ExtractNone ExtractMode = "none"
	ExtractText ExtractMode = "text"
	ExtractHTML ExtractMode = "html"
)

// Config captures every knob loaded via Viper. One value is built at startup
// and passed into each component at construction; nothing reads Viper later.
type Config struct {
	Crawl   CrawlConfig   `mapstructure:"crawl"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CrawlConfig governs the traversal itself.
type CrawlConfig struct {
	SeedURL           string        `mapstructure:"seed_url"`
	OutputDir         string        `mapstructure:"output_dir"`
	MaxPages          int           `mapstructure:"max_pages"`
	MaxDepth          int           `mapstructure:"max_depth"`
	UserAgent         string        `mapstructure:"user_agent"`
	IncludeSubdomains bool          `mapstructure:"include_subdomains"`
	Extract           ExtractMode   `mapstructure:"extract"`
	IgnoreRobots      bool          `mapstructure:"ignore_robots"`
	Delay             time.Duration `mapstructure:"delay"`
}

// HTTPConfig configures the fetch session shared by all requests.
type HTTPConfig struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	RobotsTimeout  time.Duration `mapstructure:"robots_timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	BackoffInitial time.Duration `mapstructure:"backoff_initial"`
	BackoffMax     time.Duration `mapstructure:"backoff_max"`
	MaxPageBytes   int64         `mapstructure:"max_page_bytes"`
}

// ServerConfig controls the optional status endpoint served while crawling.
type ServerConfig struct {
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from the given Viper instance.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults registers defaults for every key so a bare invocation works.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("crawl.max_pages", 50)
	v.SetDefault("crawl.max_depth", 3)
	v.SetDefault("crawl.user_agent", "sitecrawler-bot/1.0 (+https://github.com/corpusbot/sitecrawler)")
	v.SetDefault("crawl.include_subdomains", false)
	v.SetDefault("crawl.extract", string(ExtractNone))
	v.SetDefault("crawl.ignore_robots", false)
	v.SetDefault("crawl.delay", 500*time.Millisecond)
	v.SetDefault("http.timeout", 15*time.Second)
	v.SetDefault("http.robots_timeout", 5*time.Second)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.backoff_initial", 500*time.Millisecond)
	v.SetDefault("http.backoff_max", 8*time.Second)
	v.SetDefault("http.max_page_bytes", 10<<20)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits. Seed validation is
// a fatal precondition: it must fail before any network activity starts.
func (c Config) Validate() error {
	if c.Crawl.SeedURL == "" {
		return fmt.Errorf("crawl.seed_url must be set")
	}
	u, err := url.Parse(c.Crawl.SeedURL)
	if err != nil {
		return fmt.Errorf("crawl.seed_url invalid: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("crawl.seed_url must be an absolute http(s) URL, got %q", c.Crawl.SeedURL)
	}
	if c.Crawl.OutputDir == "" {
		return fmt.Errorf("crawl.output_dir must be set")
	}
	if c.Crawl.MaxPages <= 0 {
		return fmt.Errorf("crawl.max_pages must be > 0")
	}
	if c.Crawl.MaxDepth < 0 {
		return fmt.Errorf("crawl.max_depth must be >= 0")
	}
	if c.Crawl.UserAgent == "" {
		return fmt.Errorf("crawl.user_agent must be set")
	}
	switch c.Crawl.Extract {
	case ExtractNone, ExtractText, ExtractHTML:
	default:
		return fmt.Errorf("crawl.extract must be one of none|text|html, got %q", c.Crawl.Extract)
	}
	if c.Crawl.Delay < 0 {
		return fmt.Errorf("crawl.delay must be >= 0")
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be > 0")
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must be >= 0")
	}
	if c.HTTP.MaxPageBytes <= 0 {
		return fmt.Errorf("http.max_page_bytes must be > 0")
	}
	return nil
}

// InitViper prepares a Viper instance with env binding and an optional file.
func InitViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("SITECRAWLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}
