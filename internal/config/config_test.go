package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("LIMS_API_URL", "https://lims.example.com/api/")
	t.Setenv("LIMS_API_TOKEN", "lims-secret")
	t.Setenv("API_TOKEN", "front-token")
}

func TestLoadFrom_EnvironmentOnly(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("QC_REQUIRED_BATCH_TYPES", " environmental, ,clinical,environmental ")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "https://lims.example.com/api", cfg.LIMSURL)
	assert.Equal(t, "lims-secret", cfg.LIMSToken)
	assert.Equal(t, DefaultAPIHost, cfg.APIHost)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultEligibleSamplePageSize, cfg.EligibleSamplePageSize)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, DefaultSessionIdleTimeout, cfg.SessionIdleTimeout)
	assert.Equal(t, []string{"environmental", "clinical"}, cfg.QCRequiredBatchTypes)
	assert.Empty(t, cfg.ReadOnlyAPIToken)
}

func TestLoadFrom_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "LIMS_API_URL=http://localhost:8000\n" +
		"LIMS_API_TOKEN=file-token\n" +
		"API_TOKEN=api\n" +
		"READONLY_API_TOKEN=viewer\n" +
		"PORT=6001\n" +
		"LIMS_REQUEST_TIMEOUT=10s\n" +
		"ELIGIBLE_SAMPLE_PAGE_SIZE=250\n" +
		"SESSION_IDLE_TIMEOUT=2h\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	cfg, err := LoadFrom(envFile)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.LIMSURL)
	assert.Equal(t, 6001, cfg.Port)
	assert.Equal(t, "viewer", cfg.ReadOnlyAPIToken)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 250, cfg.EligibleSamplePageSize)
	assert.Equal(t, 2*time.Hour, cfg.SessionIdleTimeout)
	assert.Nil(t, cfg.QCRequiredBatchTypes)
}

func TestLoadFrom_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "Missing LIMS URL", env: map[string]string{"LIMS_API_URL": ""}},
		{name: "Invalid LIMS URL", env: map[string]string{"LIMS_API_URL": "not a url"}},
		{name: "Missing API token", env: map[string]string{"API_TOKEN": ""}},
		{name: "Read-only token equals API token", env: map[string]string{"READONLY_API_TOKEN": "front-token"}},
		{name: "Page size too large", env: map[string]string{"ELIGIBLE_SAMPLE_PAGE_SIZE": "10000"}},
		{name: "Port out of range", env: map[string]string{"PORT": "70000"}},
		{name: "Idle timeout too short", env: map[string]string{"SESSION_IDLE_TIMEOUT": "10s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}

func TestParseList(t *testing.T) {
	assert.Nil(t, parseList(""))
	assert.Nil(t, parseList("   "))
	assert.Equal(t, []string{"a", "b"}, parseList("a,b,,a"))
}
