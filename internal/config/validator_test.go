// Package config provides configuration management for the inventory tool.
package config

import (
	"strings"
	"testing"
	"time"
)

// newValidConfig creates a valid configuration for testing.
func newValidConfig() *Config {
	return &Config{
		Source: SourceConfig{
			CSVFile:           "hosts.csv",
			InventoryKey:      "hostname",
			BackupDir:         "backups",
			LockTimeout:       10 * time.Second,
			LockRetryInterval: 100 * time.Millisecond,
		},
		Inventory: InventoryConfig{
			OutputDir:    "inventory",
			HostVarsDir:  "inventory/host_vars",
			GroupVarsDir: "inventory/group_vars",
			Environments: []string{"production", "development", "test", "acceptance"},
		},
		Lifecycle: LifecycleConfig{
			GracePeriods: map[string]int{
				"production":  90,
				"acceptance":  30,
				"test":        14,
				"development": 7,
			},
			DefaultGraceDays: 30,
		},
		Health: HealthConfig{
			Threshold:    70,
			Concurrency:  8,
			ProbeTimeout: 5 * time.Second,
		},
		CMDB: CMDBConfig{
			Endpoint:   "http://cmdb.example.com:8080",
			Token:      "test-token",
			ExportPath: "/api/v1/hosts/export",
			Timeout:    30 * time.Second,
			Retry: RetryConfig{
				MaxRetries: 3,
				BaseDelay:  1 * time.Second,
			},
		},
		Report: ReportConfig{
			OutputDir:        "./reports",
			Formats:          []string{"excel", "html"},
			FilenameTemplate: "inventory_report_{{.Date}}",
			Timezone:         "UTC",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := newValidConfig()

	err := Validate(cfg)
	if err != nil {
		t.Errorf("Validate() error = %v, want nil for valid config", err)
	}
}

func TestValidate_MissingCSVFile(t *testing.T) {
	cfg := newValidConfig()
	cfg.Source.CSVFile = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for missing CSV file")
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "source.csvfile") {
		t.Errorf("error should mention field 'source.csvfile', got: %s", errStr)
	}
	if !strings.Contains(errStr, "required") {
		t.Errorf("error should mention 'required', got: %s", errStr)
	}
}

func TestValidate_InvalidInventoryKey(t *testing.T) {
	cfg := newValidConfig()
	cfg.Source.InventoryKey = "ip_address"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for invalid inventory key")
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "source.inventorykey") {
		t.Errorf("error should mention field 'source.inventorykey', got: %s", errStr)
	}
	if !strings.Contains(errStr, "hostname cname") {
		t.Errorf("error should list the allowed values, got: %s", errStr)
	}
}

func TestValidate_MissingOutputDir(t *testing.T) {
	cfg := newValidConfig()
	cfg.Inventory.OutputDir = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for missing output dir")
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "inventory.outputdir") {
		t.Errorf("error should mention field 'inventory.outputdir', got: %s", errStr)
	}
}

func TestValidate_UnknownEnvironmentInList(t *testing.T) {
	cfg := newValidConfig()
	cfg.Inventory.Environments = []string{"production", "staging"}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for unknown environment")
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "inventory.environments") {
		t.Errorf("error should mention field 'inventory.environments', got: %s", errStr)
	}
}

func TestValidate_EmptyEnvironmentList(t *testing.T) {
	cfg := newValidConfig()
	cfg.Inventory.Environments = nil

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for empty environment list")
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "inventory.environments") {
		t.Errorf("error should mention field 'inventory.environments', got: %s", errStr)
	}
}

func TestValidate_InvalidCMDBEndpoint(t *testing.T) {
	cfg := newValidConfig()
	cfg.CMDB.Endpoint = "not-a-valid-url"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for invalid URL format")
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "cmdb.endpoint") {
		t.Errorf("error should mention field 'cmdb.endpoint', got: %s", errStr)
	}
	if !strings.Contains(errStr, "URL") {
		t.Errorf("error should mention 'URL', got: %s", errStr)
	}
}

func TestValidate_EmptyCMDBEndpoint(t *testing.T) {
	// The fetch command is optional: an unset endpoint is valid.
	cfg := newValidConfig()
	cfg.CMDB.Endpoint = ""

	err := Validate(cfg)
	if err != nil {
		t.Errorf("Validate() should allow empty CMDB endpoint, got error: %v", err)
	}
}

func TestValidate_HealthThresholdRange(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		wantErr   bool
	}{
		{"zero threshold", 0, false},
		{"mid threshold", 70, false},
		{"max threshold", 100, false},
		{"above range", 101, true},
		{"negative", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newValidConfig()
			cfg.Health.Threshold = tt.threshold

			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ConcurrencyTooLow(t *testing.T) {
	cfg := newValidConfig()
	cfg.Health.Concurrency = 0

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for concurrency = 0")
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "health.concurrency") {
		t.Errorf("error should mention field 'health.concurrency', got: %s", errStr)
	}
}

func TestValidate_ConcurrencyTooHigh(t *testing.T) {
	cfg := newValidConfig()
	cfg.Health.Concurrency = 101

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for concurrency = 101")
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "health.concurrency") {
		t.Errorf("error should mention field 'health.concurrency', got: %s", errStr)
	}
}

func TestValidate_InvalidReportFormat(t *testing.T) {
	cfg := newValidConfig()
	cfg.Report.Formats = []string{"excel", "pdf"} // pdf is not valid

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for invalid report format")
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "report.formats") {
		t.Errorf("error should mention field 'report.formats', got: %s", errStr)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := newValidConfig()
	cfg.Logging.Level = "verbose" // not valid

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for invalid log level")
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "logging.level") {
		t.Errorf("error should mention field 'logging.level', got: %s", errStr)
	}
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := newValidConfig()
	cfg.Logging.Format = "text" // not valid, should be json or console

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for invalid log format")
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "logging.format") {
		t.Errorf("error should mention field 'logging.format', got: %s", errStr)
	}
}

func TestValidate_UnknownGracePeriodEnvironment(t *testing.T) {
	cfg := newValidConfig()
	cfg.Lifecycle.GracePeriods["staging"] = 10

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for unknown grace period environment")
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "lifecycle.grace_periods.staging") {
		t.Errorf("error should mention field 'lifecycle.grace_periods.staging', got: %s", errStr)
	}
	if !strings.Contains(errStr, "unknown environment") {
		t.Errorf("error should mention 'unknown environment', got: %s", errStr)
	}
}

func TestValidate_NegativeGracePeriod(t *testing.T) {
	cfg := newValidConfig()
	cfg.Lifecycle.GracePeriods["production"] = -1

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for negative grace period")
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "lifecycle.grace_periods.production") {
		t.Errorf("error should mention field 'lifecycle.grace_periods.production', got: %s", errStr)
	}
	if !strings.Contains(errStr, "negative") {
		t.Errorf("error should mention 'negative', got: %s", errStr)
	}
}

func TestValidate_LockTimeoutNotPositive(t *testing.T) {
	cfg := newValidConfig()
	cfg.Source.LockTimeout = 0

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for zero lock timeout")
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "source.lock_timeout") {
		t.Errorf("error should mention field 'source.lock_timeout', got: %s", errStr)
	}
}

func TestValidate_LockRetryIntervalNotBelowTimeout(t *testing.T) {
	cfg := newValidConfig()
	cfg.Source.LockTimeout = 1 * time.Second
	cfg.Source.LockRetryInterval = 2 * time.Second

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error when retry interval >= timeout")
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "source.lock_retry_interval") {
		t.Errorf("error should mention field 'source.lock_retry_interval', got: %s", errStr)
	}
	if !strings.Contains(errStr, "less than lock timeout") {
		t.Errorf("error should mention 'less than lock timeout', got: %s", errStr)
	}
}

func TestValidate_InvalidTimezone(t *testing.T) {
	cfg := newValidConfig()
	cfg.Report.Timezone = "Invalid/Timezone"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for invalid timezone")
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "report.timezone") {
		t.Errorf("error should mention field 'report.timezone', got: %s", errStr)
	}
	if !strings.Contains(errStr, "timezone") {
		t.Errorf("error should mention 'timezone', got: %s", errStr)
	}
}

func TestValidate_EmptyTimezone(t *testing.T) {
	cfg := newValidConfig()
	cfg.Report.Timezone = "" // Empty is allowed (will use default)

	err := Validate(cfg)
	if err != nil {
		t.Errorf("Validate() should allow empty timezone, got error: %v", err)
	}
}

func TestValidate_ValidTimezones(t *testing.T) {
	validTimezones := []string{
		"UTC",
		"Europe/Amsterdam",
		"America/New_York",
		"Asia/Shanghai",
	}

	for _, tz := range validTimezones {
		cfg := newValidConfig()
		cfg.Report.Timezone = tz

		err := Validate(cfg)
		if err != nil {
			t.Errorf("Validate() should allow timezone '%s', got error: %v", tz, err)
		}
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := newValidConfig()
	cfg.Source.CSVFile = ""                      // Error 1
	cfg.Source.InventoryKey = "ip_address"       // Error 2
	cfg.Lifecycle.GracePeriods["staging"] = -5   // Error 3 and 4
	cfg.Report.Timezone = "Nowhere/Special"      // Error 5

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should return error for multiple validation failures")
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "source.csvfile") {
		t.Errorf("error should mention 'source.csvfile', got: %s", errStr)
	}
	if !strings.Contains(errStr, "source.inventorykey") {
		t.Errorf("error should mention 'source.inventorykey', got: %s", errStr)
	}
	if !strings.Contains(errStr, "lifecycle.grace_periods.staging") {
		t.Errorf("error should mention 'lifecycle.grace_periods.staging', got: %s", errStr)
	}
	if !strings.Contains(errStr, "report.timezone") {
		t.Errorf("error should mention 'report.timezone', got: %s", errStr)
	}
}

func TestValidate_RetryMaxRetriesRange(t *testing.T) {
	tests := []struct {
		name       string
		maxRetries int
		wantErr    bool
	}{
		{"zero retries", 0, false},
		{"valid retries", 5, false},
		{"max retries", 10, false},
		{"too many retries", 11, true},
		{"negative retries", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newValidConfig()
			cfg.CMDB.Retry.MaxRetries = tt.maxRetries

			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Field:   "test.field",
		Tag:     "required",
		Value:   "",
		Message: "this field is required",
	}

	expected := "this field is required"
	if err.Error() != expected {
		t.Errorf("ValidationError.Error() = %v, want %v", err.Error(), expected)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errors := ValidationErrors{
		{Field: "field1", Message: "error1"},
		{Field: "field2", Message: "error2"},
	}

	errStr := errors.Error()
	if !strings.Contains(errStr, "config validation failed") {
		t.Errorf("ValidationErrors.Error() should contain header, got: %s", errStr)
	}
	if !strings.Contains(errStr, "field1") || !strings.Contains(errStr, "error1") {
		t.Errorf("ValidationErrors.Error() should contain first error, got: %s", errStr)
	}
	if !strings.Contains(errStr, "field2") || !strings.Contains(errStr, "error2") {
		t.Errorf("ValidationErrors.Error() should contain second error, got: %s", errStr)
	}
}

func TestValidationErrors_Empty(t *testing.T) {
	errors := ValidationErrors{}
	if errors.Error() != "" {
		t.Errorf("Empty ValidationErrors.Error() should return empty string, got: %s", errors.Error())
	}
}
