// Package config provides configuration management for the inventory tool.
package config

import "time"

// Config is the root configuration structure for the inventory tool.
type Config struct {
	Source    SourceConfig    `mapstructure:"source" validate:"required"`
	Inventory InventoryConfig `mapstructure:"inventory"`
	Lifecycle LifecycleConfig `mapstructure:"lifecycle"`
	Health    HealthConfig    `mapstructure:"health"`
	CMDB      CMDBConfig      `mapstructure:"cmdb"`
	Report    ReportConfig    `mapstructure:"report"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// SourceConfig contains configuration for the CSV source of truth.
type SourceConfig struct {
	CSVFile           string        `mapstructure:"csv_file" validate:"required"`
	InventoryKey      string        `mapstructure:"inventory_key" validate:"oneof=hostname cname"`
	BackupDir         string        `mapstructure:"backup_dir" validate:"required"`
	LockTimeout       time.Duration `mapstructure:"lock_timeout"`
	LockRetryInterval time.Duration `mapstructure:"lock_retry_interval"`
}

// InventoryConfig contains configuration for generated inventory artifacts.
type InventoryConfig struct {
	OutputDir    string   `mapstructure:"output_dir" validate:"required"`
	HostVarsDir  string   `mapstructure:"host_vars_dir" validate:"required"`
	GroupVarsDir string   `mapstructure:"group_vars_dir"`
	Environments []string `mapstructure:"environments" validate:"min=1,dive,oneof=production development test acceptance"`
}

// LifecycleConfig contains configuration for host decommissioning and cleanup.
type LifecycleConfig struct {
	// GracePeriods maps environment name to retention days after decommissioning.
	GracePeriods     map[string]int `mapstructure:"grace_periods"`
	DefaultGraceDays int            `mapstructure:"default_grace_days" validate:"gte=0"`
	PolicyFile       string         `mapstructure:"policy_file"`
}

// HealthConfig contains configuration for the health/validation reporter.
type HealthConfig struct {
	Threshold    float64       `mapstructure:"threshold" validate:"gte=0,lte=100"`
	Concurrency  int           `mapstructure:"concurrency" validate:"gte=1,lte=100"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
}

// CMDBConfig contains configuration for the remote CSV export endpoint and
// the CMDB-sourced defaults stamped into host variables. The fetch command
// stays disabled unless Endpoint is set.
type CMDBConfig struct {
	Endpoint            string        `mapstructure:"endpoint" validate:"omitempty,url"`
	Token               string        `mapstructure:"token"`
	ExportPath          string        `mapstructure:"export_path"`
	DefaultSupportGroup string        `mapstructure:"default_support_group"`
	Timeout             time.Duration `mapstructure:"timeout"`
	Retry               RetryConfig   `mapstructure:"retry"`
}

// RetryConfig defines retry behavior for HTTP requests.
type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
}

// ReportConfig contains configurations for report generation.
type ReportConfig struct {
	OutputDir        string   `mapstructure:"output_dir"`
	Formats          []string `mapstructure:"formats" validate:"dive,oneof=excel html"`
	FilenameTemplate string   `mapstructure:"filename_template"`
	HTMLTemplate     string   `mapstructure:"html_template"`
	Timezone         string   `mapstructure:"timezone"`
}

// LoggingConfig contains configurations for logging.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}
