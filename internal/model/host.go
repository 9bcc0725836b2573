// Package model provides data models for the inventory tool.
package model

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DateFormat is the layout for decommission dates in the CSV (ISO 8601 date).
const DateFormat = "2006-01-02"

// Environment identifies the deployment environment of a host.
type Environment string

const (
	EnvProduction  Environment = "production"
	EnvDevelopment Environment = "development"
	EnvTest        Environment = "test"
	EnvAcceptance  Environment = "acceptance"
)

// Environments lists all valid environment values in canonical order.
var Environments = []Environment{EnvProduction, EnvDevelopment, EnvTest, EnvAcceptance}

// ValidEnvironment reports whether s is a known environment value.
func ValidEnvironment(s string) bool {
	for _, env := range Environments {
		if string(env) == s {
			return true
		}
	}
	return false
}

// EnvironmentNames returns all valid environment values as plain strings.
func EnvironmentNames() []string {
	names := make([]string, len(Environments))
	for i, env := range Environments {
		names[i] = string(env)
	}
	return names
}

// Status represents the lifecycle state of a host record.
type Status string

const (
	StatusActive         Status = "active"
	StatusDecommissioned Status = "decommissioned"
)

// PatchMode controls how a host participates in patch windows.
type PatchMode string

const (
	PatchModeAuto   PatchMode = "auto"
	PatchModeManual PatchMode = "manual"
)

// InventoryKey selects which name field serves as the host identity.
type InventoryKey string

const (
	KeyHostname InventoryKey = "hostname"
	KeyCNAME    InventoryKey = "cname"
)

// ValidInventoryKey reports whether s names a supported inventory key.
func ValidInventoryKey(s string) bool {
	return s == string(KeyHostname) || s == string(KeyCNAME)
}

// ErrAlreadyDecommissioned is returned when a decommission is requested for a
// host whose status is already decommissioned.
var ErrAlreadyDecommissioned = errors.New("host is already decommissioned")

// FieldError describes a validation failure attributed to a single CSV field.
type FieldError struct {
	Field   string `json:"field"`   // CSV column name
	Value   string `json:"value"`   // offending value
	Message string `json:"message"` // human-readable description
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return e.Message
}

func fieldErrorf(field, value, format string, args ...interface{}) *FieldError {
	return &FieldError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)}
}

// ProductEntry is one product membership taken from a numbered product column.
type ProductEntry struct {
	Column string `json:"column"` // source column name, e.g. "product_1"
	Index  int    `json:"index"`  // numeric suffix of the column
	Value  string `json:"value"`  // trimmed product identifier
}

var (
	hostnamePattern   = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	instancePattern   = regexp.MustCompile(`^(0|[1-9][0-9]*)$`)
	integerPattern    = regexp.MustCompile(`^-?(0|[1-9][0-9]*)$`)
	portPattern       = regexp.MustCompile(`^[1-9][0-9]*$`)
	productColPattern = regexp.MustCompile(`^product_([0-9]+)$`)
)

// Host is one validated inventory record. A Host is immutable once parsed;
// lifecycle transitions produce a new record via Decommission rather than
// mutating in place.
type Host struct {
	Hostname           string         `json:"hostname,omitempty"`
	CNAME              string         `json:"cname,omitempty"`
	Environment        Environment    `json:"environment"`
	Status             Status         `json:"status"`
	ApplicationService string         `json:"application_service,omitempty"`
	SiteCode           string         `json:"site_code,omitempty"`
	Instance           string         `json:"instance,omitempty"`
	BatchNumber        string         `json:"batch_number,omitempty"`
	PatchMode          PatchMode      `json:"patch_mode,omitempty"`
	SSLPort            string         `json:"ssl_port,omitempty"`
	DecommissionDate   string         `json:"decommission_date,omitempty"`
	DashboardGroup     string         `json:"dashboard_group,omitempty"`
	PrimaryApplication string         `json:"primary_application,omitempty"`
	Function           string         `json:"function,omitempty"`
	AnsibleTags        string         `json:"ansible_tags,omitempty"`
	Products           []ProductEntry `json:"products,omitempty"`

	// Metadata holds unmodeled CSV columns, preserved verbatim on round-trip.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// modeledColumns are the CSV columns interpreted by ParseHost. Everything
// else (apart from product_N columns) passes through as metadata.
var modeledColumns = map[string]bool{
	"hostname":            true,
	"cname":               true,
	"environment":         true,
	"status":              true,
	"application_service": true,
	"site_code":           true,
	"instance":            true,
	"batch_number":        true,
	"patch_mode":          true,
	"ssl_port":            true,
	"decommission_date":   true,
	"dashboard_group":     true,
	"primary_application": true,
	"function":            true,
	"ansible_tags":        true,
}

// ParseHost validates and normalizes one CSV row into a Host. It is a pure
// function: the input map is not modified and no defaults leak back into it.
// Validation runs in order: identity, name format, environment, status,
// patch mode, numeric fields, decommission date, product columns. The first
// failure is returned as a *FieldError naming the offending column.
func ParseHost(row map[string]string, key InventoryKey) (*Host, error) {
	get := func(col string) string {
		return strings.TrimSpace(row[col])
	}

	h := &Host{
		Hostname:           get("hostname"),
		CNAME:              get("cname"),
		Environment:        Environment(get("environment")),
		Status:             Status(get("status")),
		ApplicationService: get("application_service"),
		SiteCode:           get("site_code"),
		Instance:           get("instance"),
		BatchNumber:        get("batch_number"),
		PatchMode:          PatchMode(get("patch_mode")),
		SSLPort:            get("ssl_port"),
		DecommissionDate:   get("decommission_date"),
		DashboardGroup:     get("dashboard_group"),
		PrimaryApplication: get("primary_application"),
		Function:           get("function"),
		AnsibleTags:        get("ansible_tags"),
	}

	if h.Hostname == "" && h.CNAME == "" {
		return nil, fieldErrorf(string(key), "", "either hostname or cname is required")
	}
	if h.Hostname != "" {
		if err := ValidateHostname(h.Hostname); err != nil {
			return nil, fieldErrorf("hostname", h.Hostname, "invalid hostname %q: %v", h.Hostname, err)
		}
	}
	if h.CNAME != "" {
		if err := ValidateHostname(h.CNAME); err != nil {
			return nil, fieldErrorf("cname", h.CNAME, "invalid cname %q: %v", h.CNAME, err)
		}
	}

	if h.Environment == "" {
		return nil, fieldErrorf("environment", "", "environment is required")
	}
	if !ValidEnvironment(string(h.Environment)) {
		return nil, fieldErrorf("environment", string(h.Environment),
			"invalid environment %q: must be one of %s", h.Environment, strings.Join(EnvironmentNames(), ", "))
	}

	if h.Status == "" {
		h.Status = StatusActive
	}
	if h.Status != StatusActive && h.Status != StatusDecommissioned {
		return nil, fieldErrorf("status", string(h.Status),
			"invalid status %q: must be %s or %s", h.Status, StatusActive, StatusDecommissioned)
	}

	if h.PatchMode != "" && h.PatchMode != PatchModeAuto && h.PatchMode != PatchModeManual {
		return nil, fieldErrorf("patch_mode", string(h.PatchMode),
			"invalid patch_mode %q: must be %s or %s", h.PatchMode, PatchModeAuto, PatchModeManual)
	}

	if h.Instance != "" && !instancePattern.MatchString(h.Instance) {
		return nil, fieldErrorf("instance", h.Instance,
			"invalid instance %q: must be a non-negative integer without leading zeros", h.Instance)
	}
	if h.BatchNumber != "" && !integerPattern.MatchString(h.BatchNumber) {
		return nil, fieldErrorf("batch_number", h.BatchNumber,
			"invalid batch_number %q: must be an integer", h.BatchNumber)
	}
	if h.SSLPort != "" {
		if !portPattern.MatchString(h.SSLPort) {
			return nil, fieldErrorf("ssl_port", h.SSLPort,
				"invalid ssl_port %q: must be a positive integer", h.SSLPort)
		}
		if _, err := strconv.Atoi(h.SSLPort); err != nil {
			return nil, fieldErrorf("ssl_port", h.SSLPort, "invalid ssl_port %q: %v", h.SSLPort, err)
		}
	}

	if h.DecommissionDate != "" {
		if _, err := time.Parse(DateFormat, h.DecommissionDate); err != nil {
			return nil, fieldErrorf("decommission_date", h.DecommissionDate,
				"invalid decommission_date %q: must be in YYYY-MM-DD format", h.DecommissionDate)
		}
	}
	if h.Status == StatusDecommissioned && h.DecommissionDate == "" {
		return nil, fieldErrorf("decommission_date", "",
			"decommission_date is required when status is decommissioned")
	}

	products, metadata, err := extractProducts(row)
	if err != nil {
		return nil, err
	}
	h.Products = products
	h.Metadata = metadata

	return h, nil
}

// extractProducts pulls product_N columns out of the row in numeric order and
// collects every unmodeled column into the metadata map.
func extractProducts(row map[string]string) ([]ProductEntry, map[string]string, error) {
	var products []ProductEntry
	metadata := make(map[string]string)

	for col, raw := range row {
		if modeledColumns[col] {
			continue
		}
		if m := productColPattern.FindStringSubmatch(col); m != nil {
			idx, err := strconv.Atoi(m[1])
			if err != nil || idx < 1 {
				return nil, nil, fieldErrorf(col, raw,
					"invalid product column %q: numbering must start at 1", col)
			}
			value := strings.TrimSpace(raw)
			if value == "" {
				continue
			}
			products = append(products, ProductEntry{Column: col, Index: idx, Value: value})
			continue
		}
		metadata[col] = strings.TrimSpace(raw)
	}

	sort.Slice(products, func(i, j int) bool { return products[i].Index < products[j].Index })
	if len(metadata) == 0 {
		metadata = nil
	}
	return products, metadata, nil
}

// ValidateHostname checks the hostname character set and length rules:
// 1-63 characters, letters/digits/underscore/hyphen, no leading or trailing
// hyphen.
func ValidateHostname(name string) error {
	if name == "" {
		return errors.New("hostname is empty")
	}
	if len(name) > 63 {
		return fmt.Errorf("exceeds 63 characters (got %d)", len(name))
	}
	if !hostnamePattern.MatchString(name) {
		return errors.New("contains characters outside [a-zA-Z0-9_-]")
	}
	if strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-") {
		return errors.New("must not start or end with a hyphen")
	}
	return nil
}

// Identity returns the inventory key value for this host: the preferred name
// field when set, otherwise the other one.
func (h *Host) Identity(key InventoryKey) string {
	if key == KeyCNAME {
		if h.CNAME != "" {
			return h.CNAME
		}
		return h.Hostname
	}
	if h.Hostname != "" {
		return h.Hostname
	}
	return h.CNAME
}

// VarsFileName returns the host_vars file name for this host under the given
// inventory key.
func (h *Host) VarsFileName(key InventoryKey) string {
	return h.Identity(key) + ".yml"
}

// IsActive reports whether the host is in the active state.
func (h *Host) IsActive() bool {
	return h.Status == StatusActive
}

// IsDecommissioned reports whether the host has been decommissioned.
func (h *Host) IsDecommissioned() bool {
	return h.Status == StatusDecommissioned
}

// IsProduction reports whether the host belongs to the production environment.
func (h *Host) IsProduction() bool {
	return h.Environment == EnvProduction
}

// Tags splits the comma-separated ansible_tags field into a trimmed list.
func (h *Host) Tags() []string {
	if h.AnsibleTags == "" {
		return nil
	}
	var tags []string
	for _, tag := range strings.Split(h.AnsibleTags, ",") {
		if t := strings.TrimSpace(tag); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// ProductValues returns the distinct product identifiers in column order.
func (h *Host) ProductValues() []string {
	if len(h.Products) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(h.Products))
	var values []string
	for _, p := range h.Products {
		if seen[p.Value] {
			continue
		}
		seen[p.Value] = true
		values = append(values, p.Value)
	}
	return values
}

// ParsedDecommissionDate returns the decommission date as a time value, or
// the zero time when unset.
func (h *Host) ParsedDecommissionDate() time.Time {
	if h.DecommissionDate == "" {
		return time.Time{}
	}
	t, err := time.Parse(DateFormat, h.DecommissionDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Lint returns advisory warnings that do not invalidate the record: product
// column numbering gaps, a decommission date in the future, and a
// decommission date on a host that is still active.
func (h *Host) Lint(now time.Time) []string {
	var warnings []string

	for i, p := range h.Products {
		if p.Index != i+1 {
			warnings = append(warnings, fmt.Sprintf(
				"host %s: product columns are not contiguous (expected product_%d, found %s)",
				h.Identity(KeyHostname), i+1, p.Column))
			break
		}
	}

	if h.DecommissionDate != "" {
		if d := h.ParsedDecommissionDate(); d.After(now) {
			warnings = append(warnings, fmt.Sprintf(
				"host %s: decommission_date %s is in the future",
				h.Identity(KeyHostname), h.DecommissionDate))
		}
		if h.Status == StatusActive {
			warnings = append(warnings, fmt.Sprintf(
				"host %s: decommission_date is set but status is active",
				h.Identity(KeyHostname)))
		}
	}

	return warnings
}

// Row converts the host back into CSV cell values. Every modeled column is
// present (empty string when unset); product columns keep their original
// names; metadata passes through unchanged.
func (h *Host) Row() map[string]string {
	row := map[string]string{
		"hostname":            h.Hostname,
		"cname":               h.CNAME,
		"environment":         string(h.Environment),
		"status":              string(h.Status),
		"application_service": h.ApplicationService,
		"site_code":           h.SiteCode,
		"instance":            h.Instance,
		"batch_number":        h.BatchNumber,
		"patch_mode":          string(h.PatchMode),
		"ssl_port":            h.SSLPort,
		"decommission_date":   h.DecommissionDate,
		"dashboard_group":     h.DashboardGroup,
		"primary_application": h.PrimaryApplication,
		"function":            h.Function,
		"ansible_tags":        h.AnsibleTags,
	}
	for _, p := range h.Products {
		row[p.Column] = p.Value
	}
	for k, v := range h.Metadata {
		row[k] = v
	}
	return row
}

// Decommission returns a copy of the host transitioned to the decommissioned
// state with the given date stamped. It fails if the host is already
// decommissioned or the date is not a valid YYYY-MM-DD value.
func (h *Host) Decommission(date string) (*Host, error) {
	if h.IsDecommissioned() {
		return nil, ErrAlreadyDecommissioned
	}
	if _, err := time.Parse(DateFormat, date); err != nil {
		return nil, fieldErrorf("decommission_date", date,
			"invalid decommission date %q: must be in YYYY-MM-DD format", date)
	}
	out := *h
	out.Status = StatusDecommissioned
	out.DecommissionDate = date
	out.Products = append([]ProductEntry(nil), h.Products...)
	if h.Metadata != nil {
		out.Metadata = make(map[string]string, len(h.Metadata))
		for k, v := range h.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out, nil
}

// MatchesIdentity reports whether the given name equals the host's hostname
// or cname. Lifecycle operations accept either name.
func (h *Host) MatchesIdentity(name string) bool {
	return name != "" && (h.Hostname == name || h.CNAME == name)
}
