// Package cmd provides CLI commands for the inventory tool.
package cmd

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"inventory-tool/internal/config"
)

// loadConfig loads the configuration, applies the global --csv-file override,
// and initializes the logger. Any failure is fatal.
func loadConfig() (*config.Config, zerolog.Logger) {
	configPath := GetConfigFile()
	cfg, err := config.Load(configPath)
	if err != nil {
		fail("failed to load config", err)
	}

	if csvFile != "" {
		cfg.Source.CSVFile = csvFile
	}

	// Command line --log-level overrides the config file setting.
	level := cfg.Logging.Level
	if GetLogLevel() != "info" {
		level = GetLogLevel()
	}
	logger := setupLogger(level, cfg.Logging.Format)
	logger.Debug().
		Str("config_path", configPath).
		Str("csv_file", cfg.Source.CSVFile).
		Str("log_level", level).
		Str("log_format", cfg.Logging.Format).
		Msg("configuration loaded")

	return cfg, logger
}

// setupLogger creates a zerolog logger with the specified level and format.
// Quiet mode raises the level to warn so informational logs stay silent.
func setupLogger(level string, format string) zerolog.Logger {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	if quiet && logLevel < zerolog.WarnLevel {
		logLevel = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	// Logs always go to stderr: stdout is reserved for command output and
	// the JSON envelope.
	var output io.Writer
	if format == "json" {
		output = os.Stderr
	} else {
		output = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05",
			NoColor:    false,
		}
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// loadPolicy resolves the effective lifecycle policy for the configuration.
// Any failure is fatal.
func loadPolicy(cfg *config.Config) *config.Policy {
	policy, err := config.PolicyFromConfig(cfg)
	if err != nil {
		fail("invalid lifecycle policy", err)
	}
	return policy
}
