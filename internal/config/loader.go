// Package config provides configuration management for the inventory tool.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load reads configuration from the specified YAML file and environment variables.
// Environment variables take precedence over file values.
// Environment variable format: INVENTORY_<SECTION>_<KEY> (e.g., INVENTORY_SOURCE_CSV_FILE)
//
// A missing config file is not an error: defaults plus environment variables
// apply. A present but malformed file is.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults first
	setDefaults(v)

	// Configure environment variable binding
	v.SetEnvPrefix("INVENTORY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			v.SetConfigType("yaml")

			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	// Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default values for all configuration options.
func setDefaults(v *viper.Viper) {
	// Source defaults
	v.SetDefault("source.csv_file", "hosts.csv")
	v.SetDefault("source.inventory_key", "hostname")
	v.SetDefault("source.backup_dir", "backups")
	v.SetDefault("source.lock_timeout", 10*time.Second)
	v.SetDefault("source.lock_retry_interval", 100*time.Millisecond)

	// Inventory defaults
	v.SetDefault("inventory.output_dir", "inventory")
	v.SetDefault("inventory.host_vars_dir", "inventory/host_vars")
	v.SetDefault("inventory.group_vars_dir", "inventory/group_vars")
	v.SetDefault("inventory.environments", []string{"production", "development", "test", "acceptance"})

	// Lifecycle defaults - retention days per environment
	v.SetDefault("lifecycle.grace_periods.production", 90)
	v.SetDefault("lifecycle.grace_periods.acceptance", 30)
	v.SetDefault("lifecycle.grace_periods.test", 14)
	v.SetDefault("lifecycle.grace_periods.development", 7)
	v.SetDefault("lifecycle.default_grace_days", 30)

	// Health defaults
	v.SetDefault("health.threshold", 70.0)
	v.SetDefault("health.concurrency", 8)
	v.SetDefault("health.probe_timeout", 5*time.Second)

	// CMDB defaults
	v.SetDefault("cmdb.export_path", "/api/v1/hosts/export")
	v.SetDefault("cmdb.default_support_group", "")
	v.SetDefault("cmdb.timeout", 30*time.Second)
	v.SetDefault("cmdb.retry.max_retries", 3)
	v.SetDefault("cmdb.retry.base_delay", 1*time.Second)

	// Report defaults
	v.SetDefault("report.output_dir", "./reports")
	v.SetDefault("report.formats", []string{"excel", "html"})
	v.SetDefault("report.filename_template", "inventory_report_{{.Date}}")
	v.SetDefault("report.timezone", "UTC")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}
