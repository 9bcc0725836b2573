package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-tool/internal/model"
)

// ==================== Hierarchy Construction Tests ====================

func TestBuildHierarchy_FullFanout(t *testing.T) {
	hierarchy := BuildHierarchy([]*model.Host{webHost(), dbHost()}, model.KeyHostname)

	env := hierarchy.Lookup("env_production")
	require.NotNil(t, env)
	assert.Equal(t, []string{"prd-db-use1-01", "prd-web-use1-01"}, env.Hosts)
	assert.Equal(t, []string{"app_web_frontend", "site_use1"}, env.Children)

	app := hierarchy.Lookup("app_web_frontend")
	require.NotNil(t, app)
	assert.Equal(t, []string{"prd-db-use1-01", "prd-web-use1-01"}, app.Hosts)
	assert.Equal(t, []string{"product_nginx", "product_postgresql", "product_varnish"}, app.Children)

	nginx := hierarchy.Lookup("product_nginx")
	require.NotNil(t, nginx)
	assert.Equal(t, []string{"prd-web-use1-01"}, nginx.Hosts)

	postgres := hierarchy.Lookup("product_postgresql")
	require.NotNil(t, postgres)
	assert.Equal(t, []string{"prd-db-use1-01"}, postgres.Hosts)

	site := hierarchy.Lookup("site_use1")
	require.NotNil(t, site)
	assert.Equal(t, []string{"prd-db-use1-01", "prd-web-use1-01"}, site.Hosts)
	assert.Empty(t, site.Children)
}

func TestBuildHierarchy_DecommissionedHostsStayFlat(t *testing.T) {
	hierarchy := BuildHierarchy([]*model.Host{retiredHost()}, model.KeyHostname)

	decom := hierarchy.Lookup(model.DecommissionedGroup)
	require.NotNil(t, decom)
	assert.Equal(t, []string{"prd-old-use1-01"}, decom.Hosts)
	assert.Empty(t, decom.Children)

	assert.Nil(t, hierarchy.Lookup("env_production"))
	assert.Equal(t, 1, hierarchy.Len())
}

func TestBuildHierarchy_ProductNestsUnderEnvWithoutApp(t *testing.T) {
	h := &model.Host{
		Hostname:    "tst-cache-use1-01",
		Environment: model.EnvTest,
		Status:      model.StatusActive,
		Products: []model.ProductEntry{
			{Column: "product_1", Index: 1, Value: "redis"},
		},
	}
	hierarchy := BuildHierarchy([]*model.Host{h}, model.KeyHostname)

	env := hierarchy.Lookup("env_test")
	require.NotNil(t, env)
	assert.Equal(t, []string{"product_redis"}, env.Children)
}

func TestBuildHierarchy_SkipsHostsWithoutIdentity(t *testing.T) {
	hosts := []*model.Host{
		{Environment: model.EnvTest, Status: model.StatusActive},
		webHost(),
	}
	hierarchy := BuildHierarchy(hosts, model.KeyHostname)

	assert.Nil(t, hierarchy.Lookup("env_test"))
	require.NotNil(t, hierarchy.Lookup("env_production"))
}

func TestBuildHierarchy_CNAMEKey(t *testing.T) {
	hierarchy := BuildHierarchy([]*model.Host{webHost()}, model.KeyCNAME)

	env := hierarchy.Lookup("env_production")
	require.NotNil(t, env)
	assert.Equal(t, []string{"web01.example.com"}, env.Hosts)
}

func TestBuildHierarchy_NormalizesGroupNames(t *testing.T) {
	h := &model.Host{
		Hostname:           "acc-app-euw1-01",
		Environment:        model.EnvAcceptance,
		Status:             model.StatusActive,
		ApplicationService: "Order & Billing",
		SiteCode:           "EU-W1",
	}
	hierarchy := BuildHierarchy([]*model.Host{h}, model.KeyHostname)

	require.NotNil(t, hierarchy.Lookup("app_order___billing"))
	require.NotNil(t, hierarchy.Lookup("site_eu_w1"))
}

func TestBuildHierarchy_Empty(t *testing.T) {
	hierarchy := BuildHierarchy(nil, model.KeyHostname)
	assert.Equal(t, 0, hierarchy.Len())
}
