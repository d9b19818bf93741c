package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		DatabaseURL: "postgres://localhost:5432/manpower",
		Timezone:    "Asia/Jakarta",
		HTTP:        HTTPConfig{Addr: ":8080", RateLimit: "100-M"},
		RecurringRequests: []RecurringRequest{
			{
				Name:            "weekday packing",
				RRule:           "FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR",
				SubSectionID:    3,
				ShiftID:         1,
				RequestedAmount: 4,
				MaleCount:       2,
				FemaleCount:     1,
			},
		},
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manpower_config.test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// clearEnvOverrides keeps the caller's environment from leaking into a test
func clearEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_PASSWORD", "")
	t.Setenv("GMAIL_CREDENTIALS_FILE", "")
}

func TestValidate_ValidConfig(t *testing.T) {
	err := Validate(validConfig())
	assert.NoError(t, err)
}

func TestValidate_MinimalConfig(t *testing.T) {
	cfg := &Config{DatabaseURL: "postgres://localhost/manpower"}

	err := Validate(cfg)
	assert.NoError(t, err)
}

func TestValidate_MissingDatabaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.DatabaseURL = ""

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_InvalidRRule(t *testing.T) {
	cfg := validConfig()
	cfg.RecurringRequests[0].RRule = "INVALID_RRULE_SYNTAX"

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rrule in recurringRequests[0]")
}

func TestValidate_ComplexValidRRule(t *testing.T) {
	cfg := validConfig()
	cfg.RecurringRequests[0].RRule = "FREQ=MONTHLY;BYDAY=1SA,3SA;INTERVAL=1"

	err := Validate(cfg)
	assert.NoError(t, err)
}

func TestValidate_UnanchoredRuleRejected(t *testing.T) {
	for _, rule := range []string{
		"FREQ=WEEKLY;INTERVAL=2;BYDAY=MO",
		"FREQ=WEEKLY",
		"FREQ=DAILY;COUNT=3",
		"FREQ=MONTHLY",
	} {
		t.Run(rule, func(t *testing.T) {
			cfg := validConfig()
			cfg.RecurringRequests[0].RRule = rule

			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid rrule in recurringRequests[0]")
			assert.Contains(t, err.Error(), "needs a DTSTART")
		})
	}
}

func TestValidate_AnchoredRuleAccepted(t *testing.T) {
	for _, rule := range []string{
		"DTSTART:20250303T000000Z\nRRULE:FREQ=WEEKLY;INTERVAL=2",
		"FREQ=WEEKLY;INTERVAL=2;BYDAY=MO;DTSTART=20250303T000000Z",
		"FREQ=DAILY",
		"FREQ=MONTHLY;BYMONTHDAY=1",
	} {
		t.Run(rule, func(t *testing.T) {
			cfg := validConfig()
			cfg.RecurringRequests[0].RRule = rule

			assert.NoError(t, Validate(cfg))
		})
	}
}

func TestRecurringRequest_RuleKeepsDTStart(t *testing.T) {
	rr := RecurringRequest{RRule: "FREQ=WEEKLY;INTERVAL=2;DTSTART=20250303T000000Z"}

	opt, err := rr.Rule()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), opt.Dtstart.UTC())
	assert.Equal(t, 2, opt.Interval)
}

func TestValidate_QuotasExceedHeadcount(t *testing.T) {
	cfg := validConfig()
	cfg.RecurringRequests[0].MaleCount = 3
	cfg.RecurringRequests[0].FemaleCount = 2

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds requestedAmount")
}

func TestValidate_RecurringRequestFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(rr *RecurringRequest)
	}{
		{"missing name", func(rr *RecurringRequest) { rr.Name = "" }},
		{"missing rrule", func(rr *RecurringRequest) { rr.RRule = "" }},
		{"zero sub-section", func(rr *RecurringRequest) { rr.SubSectionID = 0 }},
		{"zero shift", func(rr *RecurringRequest) { rr.ShiftID = 0 }},
		{"zero headcount", func(rr *RecurringRequest) { rr.RequestedAmount = 0 }},
		{"negative male count", func(rr *RecurringRequest) { rr.MaleCount = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg.RecurringRequests[0])

			err := Validate(cfg)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "validation failed")
		})
	}
}

func TestValidate_InvalidTimezone(t *testing.T) {
	cfg := validConfig()
	cfg.Timezone = "Mars/Olympus_Mons"

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timezone")
}

func TestValidate_InvalidRateLimit(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.RateLimit = "lots"

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid http.rateLimit")
}

func TestValidate_NotificationsRequireCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Notifications = NotificationsConfig{Enabled: true, Sender: "hr@example.com"}

	err := Validate(cfg)
	assert.Error(t, err)

	cfg.Notifications.CredentialsFile = "/secrets/gmail.json"
	assert.NoError(t, Validate(cfg))
}

func TestLoadFromPath_ValidConfig(t *testing.T) {
	clearEnvOverrides(t)

	path := writeConfig(t, `
databaseURL: "postgres://localhost:5432/manpower"
timezone: "Asia/Jakarta"
redis:
  addr: "localhost:6379"
  db: 2
  metricsTTL: 5m
http:
  addr: ":9000"
  rateLimit: "20-S"
notifications:
  enabled: true
  credentialsFile: "/secrets/gmail.json"
  sender: "hr@example.com"
recurringRequests:
  - name: "saturday loading"
    rrule: "FREQ=WEEKLY;BYDAY=SA"
    subSectionID: 7
    shiftID: 2
    requestedAmount: 6
    maleCount: 4
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost:5432/manpower", cfg.DatabaseURL)
	assert.Equal(t, "Asia/Jakarta", cfg.Timezone)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 5*time.Minute, cfg.Redis.MetricsTTL)
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.Equal(t, "20-S", cfg.HTTP.RateLimit)
	assert.True(t, cfg.Notifications.Enabled)
	assert.Equal(t, "hr@example.com", cfg.Notifications.Sender)

	require.Len(t, cfg.RecurringRequests, 1)
	rr := cfg.RecurringRequests[0]
	assert.Equal(t, "saturday loading", rr.Name)
	assert.Equal(t, "FREQ=WEEKLY;BYDAY=SA", rr.RRule)
	assert.Equal(t, int64(7), rr.SubSectionID)
	assert.Equal(t, int64(2), rr.ShiftID)
	assert.Equal(t, 6, rr.RequestedAmount)
	assert.Equal(t, 4, rr.MaleCount)
	assert.Equal(t, 0, rr.FemaleCount)
}

func TestLoadFromPath_MinimalConfigAppliesDefaults(t *testing.T) {
	clearEnvOverrides(t)

	path := writeConfig(t, `databaseURL: "postgres://localhost/manpower"`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "100-M", cfg.HTTP.RateLimit)
	assert.Equal(t, 10*time.Minute, cfg.Redis.MetricsTTL)
	assert.Empty(t, cfg.Redis.Addr)
	assert.False(t, cfg.Notifications.Enabled)
	assert.Empty(t, cfg.RecurringRequests)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoadFromPath_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://from-env/manpower")
	t.Setenv("REDIS_PASSWORD", "s3cret")
	t.Setenv("GMAIL_CREDENTIALS_FILE", "/env/gmail.json")

	path := writeConfig(t, `
databaseURL: "postgres://from-file/manpower"
redis:
  addr: "localhost:6379"
  password: "file-password"
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://from-env/manpower", cfg.DatabaseURL)
	assert.Equal(t, "s3cret", cfg.Redis.Password)
	assert.Equal(t, "/env/gmail.json", cfg.Notifications.CredentialsFile)
}

func TestLoadFromPath_DatabaseURLFromEnvOnly(t *testing.T) {
	clearEnvOverrides(t)
	t.Setenv("DATABASE_URL", "postgres://from-env/manpower")

	path := writeConfig(t, `timezone: "UTC"`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://from-env/manpower", cfg.DatabaseURL)
}

func TestLoadFromPath_InvalidRRule(t *testing.T) {
	clearEnvOverrides(t)

	path := writeConfig(t, `
databaseURL: "postgres://localhost/manpower"
recurringRequests:
  - name: "broken"
    rrule: "INVALID_RRULE_SYNTAX"
    subSectionID: 1
    shiftID: 1
    requestedAmount: 1
`)

	_, err := LoadFromPath(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rrule")
}

func TestLoadFromPath_MissingRequiredField(t *testing.T) {
	clearEnvOverrides(t)

	path := writeConfig(t, `
# Missing databaseURL
timezone: "UTC"
`)

	_, err := LoadFromPath(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadFromPath_InvalidYAML(t *testing.T) {
	path := writeConfig(t, `
databaseURL: "postgres://localhost/manpower"
  invalid indentation
timezone: "UTC"
`)

	_, err := LoadFromPath(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadFromPath_FileNotFound(t *testing.T) {
	_, err := LoadFromPath("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestConfigFileName(t *testing.T) {
	assert.Equal(t, "manpower_config.prod.yaml", configFileName("prod"))
	assert.Equal(t, "manpower_config.dev.yaml", configFileName("dev"))
}
