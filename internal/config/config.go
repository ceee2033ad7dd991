package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// Config keeps runtime settings for the tracker, its bot and scheduled jobs.
type Config struct {
	DatabaseURL string `yaml:"database_url"`

	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`

	Reports struct {
		IntervalHours int    `yaml:"interval_hours"`
		DailyAt       string `yaml:"daily_at"`
		ExportDir     string `yaml:"export_dir"`
		UpcomingDays  int    `yaml:"upcoming_days"`
	} `yaml:"reports"`

	BcryptCost int    `yaml:"bcrypt_cost"`
	LogLevel   string `yaml:"log_level"`

	Telemetry struct {
		OTLPEndpoint string `yaml:"otlp_endpoint"`
		ServiceName  string `yaml:"service_name"`
		Environment  string `yaml:"environment"`
	} `yaml:"telemetry"`
}

var configLocations = []string{"task-tracker.yaml", "task-tracker.yml", ".task-tracker.yaml"}

// Default returns the built-in settings.
func Default() Config {
	var cfg Config
	cfg.DatabaseURL = "task_tracker.db"
	cfg.Reports.IntervalHours = 5
	cfg.Reports.ExportDir = "reports"
	cfg.Reports.UpcomingDays = 7
	cfg.BcryptCost = 12
	cfg.LogLevel = "info"
	cfg.Telemetry.ServiceName = "task-tracker"
	cfg.Telemetry.Environment = "development"
	return cfg
}

// Load builds the configuration from defaults, then the YAML file at path,
// then environment variables. An empty path falls back to TASK_TRACKER_CONFIG
// and the usual file names; it is not an error when none of them exist.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func findConfigFile() string {
	if path := os.Getenv("TASK_TRACKER_CONFIG"); path != "" {
		return path
	}
	for _, loc := range configLocations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}

	setString("DATABASE_URL", &cfg.DatabaseURL)
	setString("TELEGRAM_TOKEN", &cfg.Telegram.Token)
	setString("REPORT_DAILY_AT", &cfg.Reports.DailyAt)
	setString("REPORT_EXPORT_DIR", &cfg.Reports.ExportDir)
	setString("LOG_LEVEL", &cfg.LogLevel)
	setString("OTEL_EXPORTER_OTLP_ENDPOINT", &cfg.Telemetry.OTLPEndpoint)
	setString("OTEL_SERVICE_NAME", &cfg.Telemetry.ServiceName)
	setString("ENVIRONMENT", &cfg.Telemetry.Environment)

	if v := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.Telegram.ChatID = id
	}

	return errors.Join(
		setInt("REPORT_INTERVAL_HOURS", &cfg.Reports.IntervalHours),
		setInt("UPCOMING_DAYS", &cfg.Reports.UpcomingDays),
		setInt("BCRYPT_COST", &cfg.BcryptCost),
	)
}

// Validate rejects settings the services cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Reports.IntervalHours < 0 {
		errs = append(errs, fmt.Errorf("report interval cannot be negative: %d", c.Reports.IntervalHours))
	}
	if c.Reports.UpcomingDays < 0 {
		errs = append(errs, fmt.Errorf("upcoming days cannot be negative: %d", c.Reports.UpcomingDays))
	}
	if c.Reports.DailyAt != "" {
		if _, err := time.Parse("15:04", c.Reports.DailyAt); err != nil {
			errs = append(errs, fmt.Errorf("invalid daily report time %q, expected HH:MM", c.Reports.DailyAt))
		}
	}
	if c.BcryptCost != 0 && (c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost) {
		errs = append(errs, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", c.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ReportInterval is zero when periodic reports are disabled.
func (c Config) ReportInterval() time.Duration {
	return time.Duration(c.Reports.IntervalHours) * time.Hour
}

func (c Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if raw == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", raw)
	}
	return level, nil
}
