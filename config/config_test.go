package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "api", cfg.SearchTerm)
	require.Equal(t, 2*time.Second, cfg.MinDelay)
	require.Equal(t, 5*time.Second, cfg.MaxDelay)
	require.Equal(t, 500*time.Millisecond, cfg.ScrollSettle)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PYPI_SCRAPER_SEARCH_TERM", "http client")
	t.Setenv("PYPI_SCRAPER_MAX_PAGES", "3")
	t.Setenv("PYPI_SCRAPER_MIN_DELAY", "100ms")
	t.Setenv("PYPI_SCRAPER_MAX_DELAY", "1s")
	t.Setenv("PYPI_SCRAPER_HEADLESS", "false")
	t.Setenv("PYPI_SCRAPER_BACKEND", BackendRod)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Equal(t, "http client", cfg.SearchTerm)
	require.Equal(t, 3, cfg.MaxPages)
	require.Equal(t, 100*time.Millisecond, cfg.MinDelay)
	require.Equal(t, time.Second, cfg.MaxDelay)
	require.False(t, cfg.Headless)
	require.Equal(t, BackendRod, cfg.Backend)
	require.NoError(t, cfg.Validate())
}

func TestLoadDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("PYPI_SCRAPER_CSV_PATH=out/from-dotenv.csv\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("PYPI_SCRAPER_CSV_PATH") })

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "out/from-dotenv.csv", cfg.CSVPath)
}

func TestLoadRejectsMalformedEnv(t *testing.T) {
	t.Setenv("PYPI_SCRAPER_WAIT_TIMEOUT", "ten seconds")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.ErrorContains(t, err, "PYPI_SCRAPER_WAIT_TIMEOUT")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty term", func(c *Config) { c.SearchTerm = "  " }},
		{"empty csv path", func(c *Config) { c.CSVPath = "" }},
		{"unknown backend", func(c *Config) { c.Backend = "selenium" }},
		{"inverted delays", func(c *Config) { c.MinDelay, c.MaxDelay = 5*time.Second, time.Second }},
		{"zero wait", func(c *Config) { c.WaitTimeout = 0 }},
		{"negative pages", func(c *Config) { c.MaxPages = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
