package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// SentinelDate is the "unset" date encoding used by ServiceM8. It must be
// treated as absent, never parsed or forwarded.
const SentinelDate = "0000-00-00 00:00:00"

// Config holds the application configuration
type Config struct {
	// Server
	ServerPort string `yaml:"server_port"`

	// ServiceM8
	ServiceM8APIKey  string `yaml:"servicem8_api_key"`
	ServiceM8BaseURL string `yaml:"servicem8_base_url"`

	// HubSpot
	HubSpotToken   string `yaml:"hubspot_token"`
	HubSpotBaseURL string `yaml:"hubspot_base_url"`

	// HTTP client timeout for both platforms
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// Dispatch queue. Capacity is a pre-allocation hint only; the queue is
	// unbounded and non-durable, events in flight at shutdown are lost.
	QueueCapacityHint int `yaml:"queue_capacity_hint"`

	// Proposal poller. The window must exceed the interval so consecutive
	// sweeps overlap; the viewed-flag guard makes the overlap safe.
	PollInterval    time.Duration `yaml:"poll_interval"`
	PollWindow      time.Duration `yaml:"poll_window"`
	SearchChunkSize int           `yaml:"search_chunk_size"`

	Stages   StageConfig  `yaml:"stages"`
	Statuses StatusConfig `yaml:"statuses"`

	Logging LoggingConfig `yaml:"logging"`
}

// StageConfig names the CRM pipeline stage IDs the handlers guard on and
// write. These are business configuration, not engineering contracts; the
// defaults match the production pipeline.
type StageConfig struct {
	JobCreationRequired  string `yaml:"job_creation_required"`
	OnSiteQuoteScheduled string `yaml:"on_site_quote_scheduled"`
	QuoteSentUnopened    string `yaml:"quote_sent_unopened"`
	QuoteViewed          string `yaml:"quote_viewed"`
	QuoteAccepted        string `yaml:"quote_accepted"`
	DepositPaid          string `yaml:"deposit_paid"`
	ClosedWon            string `yaml:"closed_won"`
}

// StatusConfig names the field-service job statuses the handlers compare
// against and write.
type StatusConfig struct {
	Quote        string `yaml:"quote"`
	WorkOrder    string `yaml:"work_order"`
	Unsuccessful string `yaml:"unsuccessful"`
}

// LoggingConfig controls the slog setup.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json

	// Optional rotating file output; empty disables it.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Load loads configuration: defaults, then an optional YAML file named by
// FIELDSYNC_CONFIG (or ./config.yml), then environment variables on top.
// A .env file is honored if present.
func Load() *Config {
	_ = godotenv.Load()

	cfg := defaults()

	path := os.Getenv("FIELDSYNC_CONFIG")
	if path == "" {
		path = "config.yml"
	}
	loadFile(path, cfg)

	applyEnv(cfg)
	return cfg
}

func defaults() *Config {
	return &Config{
		ServerPort:        "8080",
		ServiceM8BaseURL:  "https://api.servicem8.com/api_1.0",
		HubSpotBaseURL:    "https://api.hubapi.com",
		HTTPTimeout:       15 * time.Second,
		QueueCapacityHint: 64,
		PollInterval:      5 * time.Minute,
		PollWindow:        6 * time.Minute,
		SearchChunkSize:   99,
		Stages: StageConfig{
			JobCreationRequired:  "953048614",
			OnSiteQuoteScheduled: "953048615",
			QuoteSentUnopened:    "953048616",
			QuoteViewed:          "953048617",
			QuoteAccepted:        "953048618",
			DepositPaid:          "1793082865",
			ClosedWon:            "953048620",
		},
		Statuses: StatusConfig{
			Quote:        "Quote",
			WorkOrder:    "Work Order",
			Unsuccessful: "Unsuccessful",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
	}
}

func loadFile(filename string, cfg *Config) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Error reading config file", "file", filename, "error", err)
		}
		return
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		slog.Warn("Error parsing config file", "file", filename, "error", err)
	}
}

func applyEnv(cfg *Config) {
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.ServiceM8APIKey = getEnv("SERVICEM8_API_KEY", cfg.ServiceM8APIKey)
	cfg.ServiceM8BaseURL = getEnv("SERVICEM8_BASE_URL", cfg.ServiceM8BaseURL)
	cfg.HubSpotToken = getEnv("HUBSPOT_API_TOKEN", cfg.HubSpotToken)
	cfg.HubSpotBaseURL = getEnv("HUBSPOT_BASE_URL", cfg.HubSpotBaseURL)
	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)
	cfg.Logging.File = getEnv("LOG_FILE", cfg.Logging.File)

	cfg.PollInterval = getEnvDuration("POLL_INTERVAL", cfg.PollInterval)
	cfg.PollWindow = getEnvDuration("POLL_WINDOW", cfg.PollWindow)
	cfg.HTTPTimeout = getEnvDuration("HTTP_TIMEOUT", cfg.HTTPTimeout)
	cfg.SearchChunkSize = getEnvInt("SEARCH_CHUNK_SIZE", cfg.SearchChunkSize)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
