package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/umputun/pushscope/pkg/domain"
	"github.com/umputun/pushscope/pkg/scoring"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Database struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:pushscope.db?cache=shared&mode=rwc,description=Database connection string"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"database" json:"database" jsonschema:"description=Database configuration"`

	Schedule ScheduleConfig `yaml:"schedule" json:"schedule" jsonschema:"description=Scheduler configuration"`

	Scoring scoring.Weights `yaml:"scoring" json:"scoring" jsonschema:"description=Engagement score weights, omitted keys use defaults"`

	Matching struct {
		QualityGate bool `yaml:"quality_gate" json:"quality_gate" jsonschema:"default=false,description=Skip low quality items before matching"`
	} `yaml:"matching" json:"matching" jsonschema:"description=Matching configuration"`

	Delivery DeliveryConfig `yaml:"delivery" json:"delivery" jsonschema:"description=Delivery and retry configuration"`

	Sources []string `yaml:"sources" json:"sources" jsonschema:"description=RSS or Atom feed URLs to ingest"`

	Telegram TelegramConfig `yaml:"telegram" json:"telegram" jsonschema:"description=Telegram channel configuration"`
}

// ScheduleConfig holds intervals of the pipeline loops
type ScheduleConfig struct {
	IngestInterval   time.Duration `yaml:"ingest_interval" json:"ingest_interval" jsonschema:"default=5m,description=Feed fetch interval"`
	DispatchInterval time.Duration `yaml:"dispatch_interval" json:"dispatch_interval" jsonschema:"default=5s,description=Due attempts polling interval"`
	RescoreInterval  time.Duration `yaml:"rescore_interval" json:"rescore_interval" jsonschema:"default=15m,description=Recent items rescoring interval"`
	RescoreWindow    time.Duration `yaml:"rescore_window" json:"rescore_window" jsonschema:"default=48h,description=Age of items to rescore"`
	StaleAfter       time.Duration `yaml:"stale_after" json:"stale_after" jsonschema:"default=10m,description=Sending attempts older than this are reset on start"`
	MaxWorkers       int           `yaml:"max_workers" json:"max_workers" jsonschema:"default=5,description=Maximum concurrent workers"`
	BatchSize        int           `yaml:"batch_size" json:"batch_size" jsonschema:"default=100,minimum=1,description=Maximum sources or attempts handled per run"`
}

// DeliveryConfig holds retry and per-channel delivery settings
type DeliveryConfig struct {
	MaxRetries     int                `yaml:"max_retries" json:"max_retries" jsonschema:"default=3,minimum=0,description=Maximum delivery retries per attempt"`
	RetryBaseDelay time.Duration      `yaml:"retry_base_delay" json:"retry_base_delay" jsonschema:"default=5s,description=Base delay of exponential backoff"`
	MaxJitter      time.Duration      `yaml:"max_jitter" json:"max_jitter" jsonschema:"default=1s,description=Maximum random jitter added to backoff"`
	SendTimeout    time.Duration      `yaml:"send_timeout" json:"send_timeout" jsonschema:"default=30s,description=Timeout of a single send"`
	MaxWorkers     int                `yaml:"max_workers" json:"max_workers" jsonschema:"default=5,description=Maximum concurrent sends"`
	RateLimits     map[string]float64 `yaml:"rate_limits" json:"rate_limits" jsonschema:"description=Messages per second by channel name"`
}

// TelegramConfig holds telegram bot settings
type TelegramConfig struct {
	Token      string           `yaml:"token" json:"token" jsonschema:"description=Bot token (can use environment variable)"`
	Timeout    time.Duration    `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Bot API request timeout"`
	Recipients map[string]int64 `yaml:"recipients" json:"recipients" jsonschema:"description=Chat id by subscription owner"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	// scoring weights are prefilled, omitted keys keep defaults and an explicit zero stays zero
	cfg := Config{Scoring: scoring.DefaultWeights}
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		return nil, fmt.Errorf("verify config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	// server
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}

	// database
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file:pushscope.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 3600
	}

	// schedule
	if cfg.Schedule.IngestInterval == 0 {
		cfg.Schedule.IngestInterval = 5 * time.Minute
	}
	if cfg.Schedule.DispatchInterval == 0 {
		cfg.Schedule.DispatchInterval = 5 * time.Second
	}
	if cfg.Schedule.RescoreInterval == 0 {
		cfg.Schedule.RescoreInterval = 15 * time.Minute
	}
	if cfg.Schedule.RescoreWindow == 0 {
		cfg.Schedule.RescoreWindow = 48 * time.Hour
	}
	if cfg.Schedule.StaleAfter == 0 {
		cfg.Schedule.StaleAfter = 10 * time.Minute
	}
	if cfg.Schedule.MaxWorkers == 0 {
		cfg.Schedule.MaxWorkers = 5
	}
	if cfg.Schedule.BatchSize == 0 {
		cfg.Schedule.BatchSize = 100
	}

	// delivery, max_retries of zero is a valid "never retry" setting
	if cfg.Delivery.RetryBaseDelay == 0 {
		cfg.Delivery.RetryBaseDelay = 5 * time.Second
	}
	if cfg.Delivery.MaxJitter == 0 {
		cfg.Delivery.MaxJitter = time.Second
	}
	if cfg.Delivery.SendTimeout == 0 {
		cfg.Delivery.SendTimeout = 30 * time.Second
	}
	if cfg.Delivery.MaxWorkers == 0 {
		cfg.Delivery.MaxWorkers = 5
	}

	if cfg.Telegram.Timeout == 0 {
		cfg.Telegram.Timeout = 30 * time.Second
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}
	if cfg.Schedule.DispatchInterval < 100*time.Millisecond {
		return fmt.Errorf("schedule.dispatch_interval must be at least 100ms")
	}
	if cfg.Schedule.IngestInterval < time.Second || cfg.Schedule.RescoreInterval < time.Second {
		return fmt.Errorf("schedule ingest and rescore intervals must be at least 1 second")
	}
	if cfg.Schedule.BatchSize < 1 {
		return fmt.Errorf("schedule.batch_size must be at least 1")
	}
	if cfg.Delivery.MaxRetries < 0 {
		return fmt.Errorf("delivery.max_retries must be non-negative")
	}
	if cfg.Delivery.RetryBaseDelay < 0 || cfg.Delivery.MaxJitter < 0 {
		return fmt.Errorf("delivery delays must be non-negative")
	}
	for name, perSec := range cfg.Delivery.RateLimits {
		if !domain.Channel(name).Valid() {
			return fmt.Errorf("delivery.rate_limits: unknown channel %q", name)
		}
		if perSec < 0 {
			return fmt.Errorf("delivery.rate_limits.%s must be non-negative", name)
		}
	}
	w := cfg.Scoring
	for _, v := range []float64{w.Like, w.Retweet, w.Reply, w.Quote, w.FollowersUnit, w.InfluenceStep,
		w.MaxInfluenceStep, w.VerifiedBoost, w.DecayHours} {
		if v < 0 {
			return fmt.Errorf("scoring weights must be non-negative")
		}
	}
	if len(cfg.Telegram.Recipients) > 0 && cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required when recipients are set")
	}
	return nil
}

// RateLimits returns per-channel rate limits keyed by channel
func (c *Config) RateLimits() map[domain.Channel]float64 {
	res := make(map[domain.Channel]float64, len(c.Delivery.RateLimits))
	for name, perSec := range c.Delivery.RateLimits {
		res[domain.Channel(name)] = perSec
	}
	return res
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}
