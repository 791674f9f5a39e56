package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/contract-engine/config"
	"github.com/warp/contract-engine/schedule"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := config.FromEnv(env(nil))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, schedule.DefaultPolicy(), cfg.Policy())
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := config.FromEnv(env(map[string]string{
		"PORT":            "9090",
		"DB_PATH":         "/tmp/c.db",
		"TEMPLATE_PATH":   "/srv/t.docx",
		"CATALOG":         "flat",
		"DAY_POLICY":      "anchored",
		"RELOAD_SCHEDULE": "@hourly",
		"ALLOWED_ORIGINS": "http://a.test, http://b.test,",
	}))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/tmp/c.db", cfg.DBPath)
	assert.Equal(t, "/srv/t.docx", cfg.TemplatePath)
	assert.Equal(t, "flat", cfg.Catalog)
	assert.Equal(t, schedule.DayAnchored, cfg.DayPolicy)
	assert.Equal(t, "@hourly", cfg.ReloadSchedule)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, schedule.AnchoredPolicy(), cfg.Policy())
}

func TestFromEnv_Invalid(t *testing.T) {
	_, err := config.FromEnv(env(map[string]string{"PORT": "eighty"}))
	assert.Error(t, err)

	_, err = config.FromEnv(env(map[string]string{"DAY_POLICY": "weekly"}))
	assert.Error(t, err)

	_, err = config.FromEnv(env(map[string]string{"FIXED_DAY": "x"}))
	assert.Error(t, err)
}

func TestParseFlags_OverrideEnv(t *testing.T) {
	cfg, err := config.FromEnv(env(map[string]string{"PORT": "9090", "DAY_POLICY": "anchored"}))
	require.NoError(t, err)

	cfg, err = cfg.ParseFlags([]string{"-port=3000", "-day-policy=fixed", "-fixed-day=15", "-catalog-file=c.json"})
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, schedule.DayFixed, cfg.DayPolicy)
	assert.Equal(t, 15, cfg.Policy().FixedDay)
	assert.Equal(t, "c.json", cfg.CatalogFile)
}

func TestParseFlags_Validation(t *testing.T) {
	_, err := config.Default().ParseFlags([]string{"-fixed-day=40"})
	assert.Error(t, err)

	_, err = config.Default().ParseFlags([]string{"-port=0"})
	assert.Error(t, err)

	_, err = config.Default().ParseFlags([]string{"-catalog="})
	assert.Error(t, err)
}
