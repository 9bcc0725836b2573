// Package config provides configuration management for the inventory tool.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"inventory-tool/internal/model"
)

// Policy holds the operational policy: per-environment grace periods, patch
// window schedules, and short environment codes. DefaultPolicy covers the
// standard four environments; an optional YAML policy file overrides
// individual entries.
type Policy struct {
	Environments       []string          `yaml:"environments"`
	EnvironmentCodes   map[string]string `yaml:"environment_codes"`
	GracePeriods       map[string]int    `yaml:"grace_periods"`
	DefaultGraceDays   int               `yaml:"default_grace_days"`
	PatchWindows       map[string]string `yaml:"patch_windows"`
	DefaultPatchWindow string            `yaml:"default_patch_window"`
}

// policyFile mirrors Policy with pointer fields so that an omitted key can be
// told apart from an explicit zero when merging over the defaults.
type policyFile struct {
	Environments       []string          `yaml:"environments"`
	EnvironmentCodes   map[string]string `yaml:"environment_codes"`
	GracePeriods       map[string]int    `yaml:"grace_periods"`
	DefaultGraceDays   *int              `yaml:"default_grace_days"`
	PatchWindows       map[string]string `yaml:"patch_windows"`
	DefaultPatchWindow string            `yaml:"default_patch_window"`
}

// DefaultPolicy returns the built-in operational policy.
func DefaultPolicy() *Policy {
	return &Policy{
		Environments: []string{"production", "development", "test", "acceptance"},
		EnvironmentCodes: map[string]string{
			"production":  "prd",
			"development": "dev",
			"test":        "tst",
			"acceptance":  "acc",
		},
		GracePeriods: map[string]int{
			"production":  90,
			"acceptance":  30,
			"test":        14,
			"development": 7,
		},
		DefaultGraceDays: 30,
		PatchWindows: map[string]string{
			"batch_1": "Saturday 02:00-04:00 UTC",
			"batch_2": "Saturday 04:00-06:00 UTC",
			"batch_3": "Saturday 06:00-08:00 UTC",
		},
		DefaultPatchWindow: "TBD",
	}
}

// LoadPolicy reads policy overrides from the specified YAML file and merges
// them over the built-in defaults. An empty path returns the defaults; an
// explicitly configured path must exist.
func LoadPolicy(policyPath string) (*Policy, error) {
	policy := DefaultPolicy()

	if policyPath == "" {
		return policy, nil
	}

	if _, err := os.Stat(policyPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("policy file not found: %s", policyPath)
	}

	data, err := os.ReadFile(policyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	var overrides policyFile
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}

	policy.merge(&overrides)

	if err := policy.validate(); err != nil {
		return nil, fmt.Errorf("invalid policy file %s: %w", policyPath, err)
	}

	return policy, nil
}

// PolicyFromConfig builds the effective policy for a loaded configuration:
// built-in defaults, then the optional policy file, then inline
// lifecycle.grace_periods overrides from the config itself.
func PolicyFromConfig(cfg *Config) (*Policy, error) {
	policy, err := LoadPolicy(cfg.Lifecycle.PolicyFile)
	if err != nil {
		return nil, err
	}

	for env, days := range cfg.Lifecycle.GracePeriods {
		policy.GracePeriods[env] = days
	}
	if cfg.Lifecycle.DefaultGraceDays > 0 {
		policy.DefaultGraceDays = cfg.Lifecycle.DefaultGraceDays
	}

	if err := policy.validate(); err != nil {
		return nil, err
	}

	return policy, nil
}

// merge applies non-empty override entries on top of the receiver.
func (p *Policy) merge(overrides *policyFile) {
	if len(overrides.Environments) > 0 {
		p.Environments = overrides.Environments
	}
	for env, code := range overrides.EnvironmentCodes {
		p.EnvironmentCodes[env] = code
	}
	for env, days := range overrides.GracePeriods {
		p.GracePeriods[env] = days
	}
	if overrides.DefaultGraceDays != nil {
		p.DefaultGraceDays = *overrides.DefaultGraceDays
	}
	for batch, window := range overrides.PatchWindows {
		p.PatchWindows[batch] = window
	}
	if overrides.DefaultPatchWindow != "" {
		p.DefaultPatchWindow = overrides.DefaultPatchWindow
	}
}

// validate checks the policy invariants.
func (p *Policy) validate() error {
	if len(p.Environments) == 0 {
		return fmt.Errorf("policy defines no environments")
	}
	for env, days := range p.GracePeriods {
		if days < 0 {
			return fmt.Errorf("grace period for %q must not be negative, got %d", env, days)
		}
	}
	if p.DefaultGraceDays < 0 {
		return fmt.Errorf("default grace period must not be negative, got %d", p.DefaultGraceDays)
	}
	for batch, window := range p.PatchWindows {
		if window == "" {
			return fmt.Errorf("patch window for %q must not be empty", batch)
		}
	}
	if p.DefaultPatchWindow == "" {
		return fmt.Errorf("default patch window must not be empty")
	}
	return nil
}

// GraceDays returns the retention period in days for the given environment,
// falling back to the default for environments without an explicit entry.
func (p *Policy) GraceDays(env model.Environment) int {
	if days, ok := p.GracePeriods[string(env)]; ok {
		return days
	}
	return p.DefaultGraceDays
}

// PatchWindow resolves a batch number (e.g., "2") to its maintenance window.
// Hosts without a batch number, or with an unscheduled batch, get the default.
func (p *Policy) PatchWindow(batchNumber string) string {
	if batchNumber == "" {
		return p.DefaultPatchWindow
	}
	if window, ok := p.PatchWindows["batch_"+batchNumber]; ok {
		return window
	}
	return p.DefaultPatchWindow
}

// EnvironmentCode returns the short code for an environment (e.g.,
// production -> prd), falling back to the full name when unmapped.
func (p *Policy) EnvironmentCode(env model.Environment) string {
	if code, ok := p.EnvironmentCodes[string(env)]; ok {
		return code
	}
	return string(env)
}
