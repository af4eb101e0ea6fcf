// Package config loads and validates crawlsched configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/frontierkit/crawlsched/internal/frontier"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Crawler   CrawlerConfig   `mapstructure:"crawler"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	// Frontier is passed to the frontier implementation unmodified; its
	// schema is the frontier's concern, not ours.
	Frontier map[string]any `mapstructure:"frontier"`
}

// SchedulerConfig governs admission behavior.
type SchedulerConfig struct {
	RedirectEnabled bool `mapstructure:"redirect_enabled"`
}

// CrawlerConfig governs the host fetch loop.
type CrawlerConfig struct {
	Concurrency    int      `mapstructure:"concurrency"`
	UserAgent      string   `mapstructure:"user_agent"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
	MaxBodyBytes   int64    `mapstructure:"max_body_bytes"`
	PollIntervalMs int      `mapstructure:"poll_interval_ms"`
	Seeds          []string `mapstructure:"seeds"`
}

// ServerConfig controls the metrics listener.
type ServerConfig struct {
	MetricsPort int `mapstructure:"metrics_port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment. An empty path loads
// defaults and environment variables only.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CRAWLSCHED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scheduler.redirect_enabled", true)
	v.SetDefault("crawler.concurrency", 8)
	v.SetDefault("crawler.user_agent", "crawlsched/0.1")
	v.SetDefault("crawler.timeout_seconds", 15)
	v.SetDefault("crawler.max_body_bytes", 1<<20)
	v.SetDefault("crawler.poll_interval_ms", 100)
	v.SetDefault("server.metrics_port", 9100)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Crawler.Concurrency <= 0 {
		return fmt.Errorf("crawler.concurrency must be > 0")
	}
	if c.Crawler.TimeoutSeconds <= 0 {
		return fmt.Errorf("crawler.timeout_seconds must be > 0")
	}
	if c.Crawler.MaxBodyBytes <= 0 {
		return fmt.Errorf("crawler.max_body_bytes must be > 0")
	}
	if c.Server.MetricsPort <= 0 {
		return fmt.Errorf("server.metrics_port must be > 0")
	}
	return nil
}

// FrontierSettings exposes the opaque frontier bundle.
func (c Config) FrontierSettings() frontier.Settings {
	return frontier.Settings(c.Frontier)
}

// FetchTimeout converts the crawler timeout into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Crawler.TimeoutSeconds) * time.Second
}

// PollInterval converts the idle poll interval into a duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Crawler.PollIntervalMs) * time.Millisecond
}
