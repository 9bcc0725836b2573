// Package config provides configuration management for the inventory tool.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"inventory-tool/internal/model"
)

// ValidationError represents a single validation error with user-friendly message.
type ValidationError struct {
	Field   string      // Field path (e.g., "source.csv_file")
	Tag     string      // Validation tag that failed (e.g., "required", "oneof")
	Value   interface{} // Actual value that failed validation
	Message string      // User-friendly error message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []*ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("config validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  - %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

// validate is the package-level validator instance.
var validate *validator.Validate

// init initializes the validator with custom validations.
func init() {
	validate = validator.New()

	// Register custom validation for timezone
	validate.RegisterValidation("timezone", validateTimezone)
}

// Validate validates the configuration and returns user-friendly error messages.
func Validate(cfg *Config) error {
	var validationErrors ValidationErrors

	// Run struct validation
	if err := validate.Struct(cfg); err != nil {
		if fieldErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrors {
				validationErrors = append(validationErrors, &ValidationError{
					Field:   formatFieldName(fe.Namespace()),
					Tag:     fe.Tag(),
					Value:   fe.Value(),
					Message: translateError(fe),
				})
			}
		}
	}

	// Run custom business logic validations
	if errs := validateGracePeriods(cfg); len(errs) > 0 {
		validationErrors = append(validationErrors, errs...)
	}

	if errs := validateLockSettings(cfg); len(errs) > 0 {
		validationErrors = append(validationErrors, errs...)
	}

	if errs := validateTimezoneConfig(cfg); len(errs) > 0 {
		validationErrors = append(validationErrors, errs...)
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}

	return nil
}

// validateTimezone is a custom validator for timezone strings.
func validateTimezone(fl validator.FieldLevel) bool {
	tz := fl.Field().String()
	if tz == "" {
		return true // Empty is allowed, will use default
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// validateGracePeriods validates the per-environment grace period table.
func validateGracePeriods(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	for env, days := range cfg.Lifecycle.GracePeriods {
		if !model.ValidEnvironment(env) {
			errors = append(errors, &ValidationError{
				Field:   fmt.Sprintf("lifecycle.grace_periods.%s", env),
				Tag:     "environment",
				Value:   env,
				Message: fmt.Sprintf("unknown environment %q, must be one of: %s", env, strings.Join(model.EnvironmentNames(), ", ")),
			})
		}
		if days < 0 {
			errors = append(errors, &ValidationError{
				Field:   fmt.Sprintf("lifecycle.grace_periods.%s", env),
				Tag:     "gte",
				Value:   days,
				Message: fmt.Sprintf("grace period must not be negative, got %d", days),
			})
		}
	}

	return errors
}

// validateLockSettings validates the source lock timing configuration.
func validateLockSettings(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	if cfg.Source.LockTimeout <= 0 {
		errors = append(errors, &ValidationError{
			Field:   "source.lock_timeout",
			Tag:     "gt",
			Value:   cfg.Source.LockTimeout,
			Message: "lock timeout must be positive",
		})
	}

	if cfg.Source.LockRetryInterval <= 0 {
		errors = append(errors, &ValidationError{
			Field:   "source.lock_retry_interval",
			Tag:     "gt",
			Value:   cfg.Source.LockRetryInterval,
			Message: "lock retry interval must be positive",
		})
	} else if cfg.Source.LockTimeout > 0 && cfg.Source.LockRetryInterval >= cfg.Source.LockTimeout {
		errors = append(errors, &ValidationError{
			Field:   "source.lock_retry_interval",
			Tag:     "lock_order",
			Value:   fmt.Sprintf("interval=%v, timeout=%v", cfg.Source.LockRetryInterval, cfg.Source.LockTimeout),
			Message: fmt.Sprintf("lock retry interval (%v) must be less than lock timeout (%v)", cfg.Source.LockRetryInterval, cfg.Source.LockTimeout),
		})
	}

	return errors
}

// validateTimezoneConfig validates the timezone configuration.
func validateTimezoneConfig(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	if cfg.Report.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Report.Timezone); err != nil {
			errors = append(errors, &ValidationError{
				Field:   "report.timezone",
				Tag:     "timezone",
				Value:   cfg.Report.Timezone,
				Message: fmt.Sprintf("invalid timezone: %s", cfg.Report.Timezone),
			})
		}
	}

	return errors
}

// formatFieldName converts the validator field namespace to a user-friendly format.
// Example: "Config.Source.CSVFile" -> "source.csvfile"
func formatFieldName(namespace string) string {
	// Remove the root struct name (e.g., "Config.")
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:] // Remove "Config"
	}

	// Convert to lowercase and join
	for i, part := range parts {
		parts[i] = strings.ToLower(part)
	}

	return strings.Join(parts, ".")
}

// translateError converts a validator.FieldError to a user-friendly message.
func translateError(fe validator.FieldError) string {
	field := formatFieldName(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "url":
		return fmt.Sprintf("invalid URL format: %v", fe.Value())
	case "gte":
		return fmt.Sprintf("value must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("value must be less than or equal to %s", fe.Param())
	case "min":
		return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
	case "oneof":
		return fmt.Sprintf("value must be one of: %s", fe.Param())
	case "dive":
		return fmt.Sprintf("invalid value in list: %v", fe.Value())
	case "timezone":
		return fmt.Sprintf("invalid timezone: %v", fe.Value())
	default:
		return fmt.Sprintf("validation failed on '%s' tag for field '%s'", fe.Tag(), field)
	}
}
