package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "PYPI_SCRAPER_"

type Config struct {
	SearchTerm string
	BaseURL    string
	CSVPath    string

	Backend   string
	Headless  bool
	Stealth   bool
	UserAgent string

	NavigationTimeout time.Duration
	WaitTimeout       time.Duration
	ConsentTimeout    time.Duration

	// Politeness: a random pause in [MinDelay, MaxDelay] before each page turn,
	// plus a fixed settle after scrolling to the bottom.
	MinDelay     time.Duration
	MaxDelay     time.Duration
	ScrollSettle time.Duration

	// MaxPages caps the number of result pages scraped. Zero means no cap.
	MaxPages   int
	NavRetries int

	Debug bool
}

const (
	BackendChromedp = "chromedp"
	BackendRod      = "rod"
)

func DefaultConfig() *Config {
	return &Config{
		SearchTerm:        "api",
		BaseURL:           "https://pypi.org/search/",
		CSVPath:           "pypi_packages.csv",
		Backend:           BackendChromedp,
		Headless:          true,
		Stealth:           true,
		NavigationTimeout: 60 * time.Second,
		WaitTimeout:       10 * time.Second,
		ConsentTimeout:    5 * time.Second,
		MinDelay:          2 * time.Second,
		MaxDelay:          5 * time.Second,
		ScrollSettle:      500 * time.Millisecond,
		MaxPages:          0,
		NavRetries:        0,
	}
}

// Load returns the defaults overridden by a .env file (when present) and
// PYPI_SCRAPER_* environment variables.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := DefaultConfig()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.SearchTerm = getEnv("SEARCH_TERM", c.SearchTerm)
	c.BaseURL = getEnv("BASE_URL", c.BaseURL)
	c.CSVPath = getEnv("CSV_PATH", c.CSVPath)
	c.Backend = getEnv("BACKEND", c.Backend)
	c.UserAgent = getEnv("USER_AGENT", c.UserAgent)

	var err error
	if c.Headless, err = getEnvBool("HEADLESS", c.Headless); err != nil {
		return err
	}
	if c.Stealth, err = getEnvBool("STEALTH", c.Stealth); err != nil {
		return err
	}
	if c.Debug, err = getEnvBool("DEBUG", c.Debug); err != nil {
		return err
	}
	if c.MaxPages, err = getEnvInt("MAX_PAGES", c.MaxPages); err != nil {
		return err
	}
	if c.NavRetries, err = getEnvInt("NAV_RETRIES", c.NavRetries); err != nil {
		return err
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"NAVIGATION_TIMEOUT", &c.NavigationTimeout},
		{"WAIT_TIMEOUT", &c.WaitTimeout},
		{"CONSENT_TIMEOUT", &c.ConsentTimeout},
		{"MIN_DELAY", &c.MinDelay},
		{"MAX_DELAY", &c.MaxDelay},
		{"SCROLL_SETTLE", &c.ScrollSettle},
	}
	for _, d := range durations {
		if *d.dst, err = getEnvDuration(d.key, *d.dst); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.SearchTerm) == "" {
		errs = append(errs, errors.New("search term is empty"))
	}
	if c.BaseURL == "" {
		errs = append(errs, errors.New("base url is empty"))
	}
	if c.CSVPath == "" {
		errs = append(errs, errors.New("csv path is empty"))
	}
	switch c.Backend {
	case BackendChromedp, BackendRod:
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q", c.Backend))
	}
	if c.NavigationTimeout <= 0 || c.WaitTimeout <= 0 || c.ConsentTimeout <= 0 {
		errs = append(errs, errors.New("timeouts must be positive"))
	}
	if c.MinDelay < 0 || c.MaxDelay < c.MinDelay {
		errs = append(errs, fmt.Errorf("invalid delay range %v-%v", c.MinDelay, c.MaxDelay))
	}
	if c.ScrollSettle < 0 {
		errs = append(errs, errors.New("scroll settle must not be negative"))
	}
	if c.MaxPages < 0 {
		errs = append(errs, errors.New("max pages must not be negative"))
	}
	if c.NavRetries < 0 {
		errs = append(errs, errors.New("nav retries must not be negative"))
	}
	return errors.Join(errs...)
}

func getEnv(key string, fallback string) string {
	if v := os.Getenv(envPrefix + key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(envPrefix + key)
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback, fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	return parsed, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(envPrefix + key)
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	return parsed, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(envPrefix + key)
	if v == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback, fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	return parsed, nil
}
