package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRow() map[string]string {
	return map[string]string{
		"hostname":            "prd-web-use1-01",
		"cname":               "web01",
		"environment":         "production",
		"status":              "active",
		"application_service": "web",
		"site_code":           "use1",
		"instance":            "1",
		"batch_number":        "1",
		"patch_mode":          "auto",
		"ssl_port":            "443",
		"dashboard_group":     "Web",
		"primary_application": "WebApp",
		"function":            "frontend",
		"ansible_tags":        "web, frontend",
		"product_1":           "cache",
		"product_2":           "cdn",
	}
}

// ============================================================================
// ParseHost Tests
// ============================================================================

func TestParseHostValidRow(t *testing.T) {
	h, err := ParseHost(validRow(), KeyHostname)
	require.NoError(t, err)

	assert.Equal(t, "prd-web-use1-01", h.Hostname)
	assert.Equal(t, "web01", h.CNAME)
	assert.Equal(t, EnvProduction, h.Environment)
	assert.Equal(t, StatusActive, h.Status)
	assert.Equal(t, "web", h.ApplicationService)
	assert.Equal(t, "use1", h.SiteCode)
	assert.Equal(t, "1", h.Instance)
	assert.Equal(t, PatchModeAuto, h.PatchMode)
	assert.Equal(t, "443", h.SSLPort)
	assert.True(t, h.IsActive())
	assert.True(t, h.IsProduction())
	assert.Equal(t, []string{"web", "frontend"}, h.Tags())
}

func TestParseHostTrimsWhitespace(t *testing.T) {
	row := validRow()
	row["hostname"] = "  prd-web-use1-01  "
	row["application_service"] = " web "

	h, err := ParseHost(row, KeyHostname)
	require.NoError(t, err)
	assert.Equal(t, "prd-web-use1-01", h.Hostname)
	assert.Equal(t, "web", h.ApplicationService)
}

func TestParseHostRequiresIdentity(t *testing.T) {
	row := validRow()
	row["hostname"] = ""
	row["cname"] = "   "

	_, err := ParseHost(row, KeyHostname)
	require.Error(t, err)

	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Contains(t, fieldErr.Message, "hostname or cname is required")
}

func TestParseHostCNAMEOnly(t *testing.T) {
	row := validRow()
	row["hostname"] = ""

	h, err := ParseHost(row, KeyHostname)
	require.NoError(t, err)
	assert.Equal(t, "web01", h.Identity(KeyHostname))
	assert.Equal(t, "web01", h.Identity(KeyCNAME))
}

func TestParseHostStatusDefaultsToActive(t *testing.T) {
	row := validRow()
	row["status"] = ""

	h, err := ParseHost(row, KeyHostname)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, h.Status)
}

func TestParseHostFieldValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(map[string]string)
		field   string
		message string
	}{
		{
			name:    "unknown environment",
			mutate:  func(r map[string]string) { r["environment"] = "staging" },
			field:   "environment",
			message: "invalid environment",
		},
		{
			name:    "missing environment",
			mutate:  func(r map[string]string) { r["environment"] = "" },
			field:   "environment",
			message: "environment is required",
		},
		{
			name:    "unknown status",
			mutate:  func(r map[string]string) { r["status"] = "retired" },
			field:   "status",
			message: "invalid status",
		},
		{
			name:    "unknown patch mode",
			mutate:  func(r map[string]string) { r["patch_mode"] = "sometimes" },
			field:   "patch_mode",
			message: "invalid patch_mode",
		},
		{
			name:    "hostname with illegal characters",
			mutate:  func(r map[string]string) { r["hostname"] = "web.example.com" },
			field:   "hostname",
			message: "invalid hostname",
		},
		{
			name:    "hostname with leading hyphen",
			mutate:  func(r map[string]string) { r["hostname"] = "-web01" },
			field:   "hostname",
			message: "invalid hostname",
		},
		{
			name:    "cname with trailing hyphen",
			mutate:  func(r map[string]string) { r["cname"] = "web01-" },
			field:   "cname",
			message: "invalid cname",
		},
		{
			name:    "non-integer ssl port",
			mutate:  func(r map[string]string) { r["ssl_port"] = "https" },
			field:   "ssl_port",
			message: "invalid ssl_port",
		},
		{
			name:    "zero ssl port",
			mutate:  func(r map[string]string) { r["ssl_port"] = "0" },
			field:   "ssl_port",
			message: "invalid ssl_port",
		},
		{
			name:    "non-integer batch number",
			mutate:  func(r map[string]string) { r["batch_number"] = "one" },
			field:   "batch_number",
			message: "invalid batch_number",
		},
		{
			name:    "malformed decommission date",
			mutate:  func(r map[string]string) { r["decommission_date"] = "01-02-2025" },
			field:   "decommission_date",
			message: "YYYY-MM-DD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := validRow()
			tt.mutate(row)

			_, err := ParseHost(row, KeyHostname)
			require.Error(t, err)

			var fieldErr *FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tt.field, fieldErr.Field)
			assert.Contains(t, fieldErr.Message, tt.message)
		})
	}
}

func TestParseHostInstanceCanonicalForm(t *testing.T) {
	tests := []struct {
		value string
		valid bool
	}{
		{"0", true},
		{"1", true},
		{"42", true},
		{"100", true},
		{"01", false},
		{"007", false},
		{"1a", false},
		{"1.0", false},
		{"-1", false},
		{"", true},
	}

	for _, tt := range tests {
		t.Run("instance "+tt.value, func(t *testing.T) {
			row := validRow()
			row["instance"] = tt.value

			_, err := ParseHost(row, KeyHostname)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				var fieldErr *FieldError
				require.ErrorAs(t, err, &fieldErr)
				assert.Equal(t, "instance", fieldErr.Field)
			}
		})
	}
}

func TestParseHostDecommissionDateRequiredWhenDecommissioned(t *testing.T) {
	row := validRow()
	row["status"] = "decommissioned"
	row["decommission_date"] = ""

	_, err := ParseHost(row, KeyHostname)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decommission_date is required")

	row["decommission_date"] = "2025-01-15"
	h, err := ParseHost(row, KeyHostname)
	require.NoError(t, err)
	assert.True(t, h.IsDecommissioned())
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), h.ParsedDecommissionDate())
}

// ============================================================================
// Product Column Tests
// ============================================================================

func TestParseHostProductColumns(t *testing.T) {
	row := validRow()
	row["product_1"] = " cache "
	row["product_2"] = "cdn"
	row["product_3"] = "cache" // duplicate value

	h, err := ParseHost(row, KeyHostname)
	require.NoError(t, err)

	require.Len(t, h.Products, 3)
	assert.Equal(t, "product_1", h.Products[0].Column)
	assert.Equal(t, "cache", h.Products[0].Value)
	assert.Equal(t, "cdn", h.Products[1].Value)

	// de-duplicated on group derivation, column order preserved
	assert.Equal(t, []string{"cache", "cdn"}, h.ProductValues())
}

func TestParseHostProductEmptyValuesDropped(t *testing.T) {
	row := validRow()
	row["product_1"] = "cache"
	row["product_2"] = "   "

	h, err := ParseHost(row, KeyHostname)
	require.NoError(t, err)
	require.Len(t, h.Products, 1)
	assert.Equal(t, "cache", h.Products[0].Value)
}

func TestParseHostProductGapIsWarningNotError(t *testing.T) {
	row := validRow()
	delete(row, "product_1")
	delete(row, "product_2")
	row["product_2"] = "cdn"
	row["product_5"] = "cache"

	h, err := ParseHost(row, KeyHostname)
	require.NoError(t, err)
	require.Len(t, h.Products, 2)
	assert.Equal(t, 2, h.Products[0].Index)

	warnings := h.Lint(time.Now())
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0], "not contiguous")
}

func TestParseHostLegacyProductIDGoesToMetadata(t *testing.T) {
	row := validRow()
	row["product_id"] = "webapp,postgres"

	h, err := ParseHost(row, KeyHostname)
	require.NoError(t, err)
	assert.Equal(t, "webapp,postgres", h.Metadata["product_id"])
	assert.Equal(t, []string{"cache", "cdn"}, h.ProductValues())
}

func TestParseHostMetadataPassthrough(t *testing.T) {
	row := validRow()
	row["rack"] = "A12"
	row["owner_team"] = "platform"

	h, err := ParseHost(row, KeyHostname)
	require.NoError(t, err)
	assert.Equal(t, "A12", h.Metadata["rack"])
	assert.Equal(t, "platform", h.Metadata["owner_team"])
}

// ============================================================================
// Lint Tests
// ============================================================================

func TestLintFutureDecommissionDate(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	row := validRow()
	row["status"] = "decommissioned"
	row["decommission_date"] = "2025-12-31"

	h, err := ParseHost(row, KeyHostname)
	require.NoError(t, err)

	warnings := h.Lint(now)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "in the future")
}

func TestLintDecommissionDateOnActiveHost(t *testing.T) {
	row := validRow()
	row["decommission_date"] = "2024-01-01"

	h, err := ParseHost(row, KeyHostname)
	require.NoError(t, err)

	warnings := h.Lint(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "status is active")
}

func TestLintCleanRecord(t *testing.T) {
	h, err := ParseHost(validRow(), KeyHostname)
	require.NoError(t, err)
	assert.Empty(t, h.Lint(time.Now()))
}

// ============================================================================
// Round-Trip Tests
// ============================================================================

func TestRowRoundTrip(t *testing.T) {
	row := validRow()
	row["rack"] = "A12"
	row["decommission_date"] = ""

	h, err := ParseHost(row, KeyHostname)
	require.NoError(t, err)

	out := h.Row()
	for col, want := range row {
		assert.Equal(t, want, out[col], "column %s", col)
	}
}

func TestRowEmitsAllModeledColumns(t *testing.T) {
	row := map[string]string{
		"hostname":    "db01",
		"environment": "test",
	}

	h, err := ParseHost(row, KeyHostname)
	require.NoError(t, err)

	out := h.Row()
	assert.Equal(t, "db01", out["hostname"])
	assert.Equal(t, "test", out["environment"])
	assert.Equal(t, "active", out["status"])
	assert.Equal(t, "", out["cname"])
	assert.Equal(t, "", out["ssl_port"])
}

// ============================================================================
// Decommission Tests
// ============================================================================

func TestDecommissionProducesNewRecord(t *testing.T) {
	h, err := ParseHost(validRow(), KeyHostname)
	require.NoError(t, err)

	d, err := h.Decommission("2025-01-15")
	require.NoError(t, err)

	assert.Equal(t, StatusDecommissioned, d.Status)
	assert.Equal(t, "2025-01-15", d.DecommissionDate)

	// the original record is untouched
	assert.Equal(t, StatusActive, h.Status)
	assert.Empty(t, h.DecommissionDate)
}

func TestDecommissionTwiceFails(t *testing.T) {
	h, err := ParseHost(validRow(), KeyHostname)
	require.NoError(t, err)

	d, err := h.Decommission("2025-01-15")
	require.NoError(t, err)

	_, err = d.Decommission("2025-02-01")
	assert.ErrorIs(t, err, ErrAlreadyDecommissioned)
}

func TestDecommissionRejectsBadDate(t *testing.T) {
	h, err := ParseHost(validRow(), KeyHostname)
	require.NoError(t, err)

	_, err = h.Decommission("15-01-2025")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")
}

// ============================================================================
// Identity Tests
// ============================================================================

func TestIdentityFallback(t *testing.T) {
	tests := []struct {
		name     string
		hostname string
		cname    string
		key      InventoryKey
		want     string
	}{
		{"hostname key prefers hostname", "web01", "alias01", KeyHostname, "web01"},
		{"hostname key falls back to cname", "", "alias01", KeyHostname, "alias01"},
		{"cname key prefers cname", "web01", "alias01", KeyCNAME, "alias01"},
		{"cname key falls back to hostname", "web01", "", KeyCNAME, "web01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &Host{Hostname: tt.hostname, CNAME: tt.cname}
			assert.Equal(t, tt.want, h.Identity(tt.key))
		})
	}
}

func TestMatchesIdentity(t *testing.T) {
	h := &Host{Hostname: "web01", CNAME: "alias01"}
	assert.True(t, h.MatchesIdentity("web01"))
	assert.True(t, h.MatchesIdentity("alias01"))
	assert.False(t, h.MatchesIdentity("db01"))
	assert.False(t, h.MatchesIdentity(""))
}

func TestVarsFileName(t *testing.T) {
	h := &Host{Hostname: "web01", CNAME: "alias01"}
	assert.Equal(t, "web01.yml", h.VarsFileName(KeyHostname))
	assert.Equal(t, "alias01.yml", h.VarsFileName(KeyCNAME))
}

// ============================================================================
// Hostname Validation Tests
// ============================================================================

func TestValidateHostname(t *testing.T) {
	long := make([]byte, 64)
	for i := range long {
		long[i] = 'a'
	}

	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"simple", "web01", true},
		{"with hyphens", "prd-web-use1-01", true},
		{"with underscore", "web_01", true},
		{"max length", string(long[:63]), true},
		{"too long", string(long), false},
		{"empty", "", false},
		{"dots", "web.example.com", false},
		{"leading hyphen", "-web", false},
		{"trailing hyphen", "web-", false},
		{"space", "web 01", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHostname(tt.value)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
