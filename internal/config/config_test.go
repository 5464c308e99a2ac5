package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("REPORTS_FOLDER", "")
	t.Setenv("ADMIN_EMAILS", " ops@example.com, ,lead@example.com ")
	t.Setenv("REPORTS_RETENTION_DAYS", "not-a-number")
	t.Setenv("REPORTS_RATE_LIMIT_RPS", "2.5")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "", cfg.ReportsFolder)
	assert.Equal(t, []string{"ops@example.com", "lead@example.com"}, cfg.AdminEmails)
	assert.Equal(t, 30, cfg.ReportsRetentionDays)
	assert.Equal(t, 2.5, cfg.ReportsRateLimitRPS)
	assert.Equal(t, "local", cfg.StorageMode)
	assert.Equal(t, "inline", cfg.ReportsBroker)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"a"}, splitList("a,"))
}
