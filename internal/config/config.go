package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/teambition/rrule-go"
	"github.com/ulule/limiter/v3"
	"gopkg.in/yaml.v3"
)

const (
	defaultHTTPAddr   = ":8080"
	defaultRateLimit  = "100-M"
	defaultMetricsTTL = 10 * time.Minute
	defaultTimezone   = "UTC"
)

// RedisConfig configures the metrics cache. An empty Addr disables caching.
type RedisConfig struct {
	Addr       string        `yaml:"addr,omitempty"`
	Password   string        `yaml:"password,omitempty"`
	DB         int           `yaml:"db,omitempty" validate:"min=0"`
	MetricsTTL time.Duration `yaml:"metricsTTL,omitempty" validate:"min=0"`
}

// HTTPConfig configures the JSON API
type HTTPConfig struct {
	Addr string `yaml:"addr,omitempty"`
	// RateLimit uses the limiter format, e.g. "100-M" for 100 requests per minute
	RateLimit string `yaml:"rateLimit,omitempty"`
}

// NotificationsConfig configures schedule notification emails
type NotificationsConfig struct {
	Enabled         bool   `yaml:"enabled"`
	CredentialsFile string `yaml:"credentialsFile,omitempty" validate:"required_if=Enabled true"`
	Sender          string `yaml:"sender,omitempty" validate:"required_if=Enabled true"`
}

// RecurringRequest is a template for manpower requests raised on a schedule
type RecurringRequest struct {
	Name            string `yaml:"name" validate:"required"`
	RRule           string `yaml:"rrule" validate:"required"`
	SubSectionID    int64  `yaml:"subSectionID" validate:"required,gt=0"`
	ShiftID         int64  `yaml:"shiftID" validate:"required,gt=0"`
	RequestedAmount int    `yaml:"requestedAmount" validate:"required,min=1"`
	MaleCount       int    `yaml:"maleCount,omitempty" validate:"min=0"`
	FemaleCount     int    `yaml:"femaleCount,omitempty" validate:"min=0"`
}

// Rule parses the template's rrule. A rule whose occurrences depend on where
// it starts (INTERVAL > 1, COUNT, or a period without a BY* day selector) must
// carry a DTSTART, either inline or as a leading "DTSTART:..." line, so that
// every expansion lands on the same days whatever range it covers.
func (r RecurringRequest) Rule() (*rrule.ROption, error) {
	opt, err := rrule.StrToROption(r.RRule)
	if err != nil {
		return nil, err
	}
	if opt.Dtstart.IsZero() && dependsOnStart(opt) {
		return nil, fmt.Errorf("rule %q needs a DTSTART to anchor its occurrences", r.RRule)
	}
	return opt, nil
}

func dependsOnStart(opt *rrule.ROption) bool {
	if opt.Interval > 1 || opt.Count > 0 {
		return true
	}

	switch opt.Freq {
	case rrule.WEEKLY:
		return len(opt.Byweekday) == 0
	case rrule.MONTHLY:
		return len(opt.Byweekday) == 0 && len(opt.Bymonthday) == 0 && len(opt.Byyearday) == 0
	case rrule.YEARLY:
		if len(opt.Byyearday) > 0 || len(opt.Byweekno) > 0 {
			return false
		}
		return len(opt.Bymonth) == 0 || (len(opt.Bymonthday) == 0 && len(opt.Byweekday) == 0)
	}
	return false
}

// Config represents the application configuration
type Config struct {
	DatabaseURL       string              `yaml:"databaseURL" validate:"required"`
	Timezone          string              `yaml:"timezone,omitempty"`
	Redis             RedisConfig         `yaml:"redis,omitempty"`
	HTTP              HTTPConfig          `yaml:"http,omitempty"`
	Notifications     NotificationsConfig `yaml:"notifications,omitempty"`
	RecurringRequests []RecurringRequest  `yaml:"recurringRequests,omitempty" validate:"dive"`
}

// Location returns the configured timezone, used to decide what "today" is
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Today returns the current calendar day in the configured timezone
func (c *Config) Today() time.Time {
	now := time.Now().In(c.Location())
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from manpower_config.<env>.yaml.
// It looks for the config file in the current directory first, then in the user's home directory.
// A .env file in the current directory, if present, is loaded into the environment first.
func Load(env string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	configPath, err := findConfigFile(configFileName(env))
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnvOverrides lets secrets live outside the config file
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("GMAIL_CREDENTIALS_FILE"); v != "" {
		cfg.Notifications.CredentialsFile = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Timezone == "" {
		cfg.Timezone = defaultTimezone
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = defaultHTTPAddr
	}
	if cfg.HTTP.RateLimit == "" {
		cfg.HTTP.RateLimit = defaultRateLimit
	}
	if cfg.Redis.MetricsTTL == 0 {
		cfg.Redis.MetricsTTL = defaultMetricsTTL
	}
}

// Validate validates the configuration struct and the fields that need parsing
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
		}
	}

	if cfg.HTTP.RateLimit != "" {
		if _, err := limiter.NewRateFromFormatted(cfg.HTTP.RateLimit); err != nil {
			return fmt.Errorf("invalid http.rateLimit %q: %w", cfg.HTTP.RateLimit, err)
		}
	}

	for i, rr := range cfg.RecurringRequests {
		if _, err := rr.Rule(); err != nil {
			return fmt.Errorf("invalid rrule in recurringRequests[%d]: %w", i, err)
		}
		if rr.MaleCount+rr.FemaleCount > rr.RequestedAmount {
			return fmt.Errorf("recurringRequests[%d]: maleCount + femaleCount (%d) exceeds requestedAmount (%d)",
				i, rr.MaleCount+rr.FemaleCount, rr.RequestedAmount)
		}
	}

	return nil
}

func configFileName(env string) string {
	return fmt.Sprintf("manpower_config.%s.yaml", env)
}

// findConfigFile searches for the config file in current directory and home directory
func findConfigFile(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, name)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", name)
}
