package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Billing    BillingConfig    `yaml:"billing"`
	Business   BusinessConfig   `yaml:"business"`
	Relay      RelayConfig      `yaml:"relay"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Display    DisplayConfig    `yaml:"display"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	RateLimitPerSec float64       `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	CacheTTLSeconds int           `yaml:"cache_ttl_seconds"`
	CacheTTL        time.Duration `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // postgres, mysql or sqlite
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// BillingConfig holds the process-wide tax rate and the tip presets offered to guests.
type BillingConfig struct {
	TaxRateRaw string          `yaml:"tax_rate"`
	TaxRate    decimal.Decimal `yaml:"-"`
	TipPresets []int           `yaml:"tip_presets"`
}

// BusinessConfig describes the venue's calendar.
type BusinessConfig struct {
	Timezone string         `yaml:"timezone"`
	Location *time.Location `yaml:"-"`
}

// RelayConfig holds the event relay (RabbitMQ) settings.
type RelayConfig struct {
	Enabled               bool          `yaml:"enabled"`
	URL                   string        `yaml:"url"`
	Exchange              string        `yaml:"exchange"`
	PublishTimeoutSeconds int           `yaml:"publish_timeout_seconds"`
	PublishTimeout        time.Duration `yaml:"-"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the push notification worker pool.
type WorkerPoolConfig struct {
	Size  int `yaml:"size"`
	Queue int `yaml:"queue"`
}

// DisplayConfig controls the reconciliation polling advertised to station displays.
type DisplayConfig struct {
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
}

// CatalogConfig holds the settings of the catalog snapshot poller.
type CatalogConfig struct {
	Enabled         bool              `yaml:"enabled"`
	URL             string            `yaml:"url"`
	Headers         map[string]string `yaml:"headers"`
	PageSize        int               `yaml:"page_size"`
	IntervalSeconds int               `yaml:"interval_seconds"`
	Interval        time.Duration     `yaml:"-"` // Ignored by YAML parser
}

// LogConfig selects the zap encoder and level.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied, suitable for tests and tools.
func Default() *Config {
	cfg := &Config{}
	if err := cfg.applyDefaults(); err != nil {
		// defaults are constants; this cannot fail
		panic(err)
	}
	return cfg
}

func (cfg *Config) applyDefaults() error {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 20
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 10
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}
	cfg.Server.CacheTTL = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}

	if cfg.Billing.TaxRateRaw == "" {
		cfg.Billing.TaxRateRaw = "0.16"
	}
	rate, err := decimal.NewFromString(cfg.Billing.TaxRateRaw)
	if err != nil {
		return fmt.Errorf("invalid billing.tax_rate %q: %w", cfg.Billing.TaxRateRaw, err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("billing.tax_rate must be in [0, 1), got %s", rate)
	}
	cfg.Billing.TaxRate = rate
	if len(cfg.Billing.TipPresets) == 0 {
		cfg.Billing.TipPresets = []int{10, 15, 20}
	}

	if cfg.Business.Timezone == "" {
		cfg.Business.Timezone = "UTC"
	}
	loc, err := time.LoadLocation(cfg.Business.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone %q: %w", cfg.Business.Timezone, err)
	}
	cfg.Business.Location = loc

	if cfg.Relay.Exchange == "" {
		cfg.Relay.Exchange = "floor.events"
	}
	if cfg.Relay.PublishTimeoutSeconds <= 0 {
		cfg.Relay.PublishTimeoutSeconds = 5
	}
	cfg.Relay.PublishTimeout = time.Duration(cfg.Relay.PublishTimeoutSeconds) * time.Second

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
	if cfg.WorkerPool.Queue <= 0 {
		cfg.WorkerPool.Queue = 64
	}

	if cfg.Display.PollIntervalSeconds <= 0 {
		cfg.Display.PollIntervalSeconds = 5
	}

	if cfg.Catalog.IntervalSeconds <= 0 {
		cfg.Catalog.IntervalSeconds = 300
	}
	cfg.Catalog.Interval = time.Duration(cfg.Catalog.IntervalSeconds) * time.Second
	if cfg.Catalog.PageSize <= 0 {
		cfg.Catalog.PageSize = 100
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	return nil
}
