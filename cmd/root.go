// Package cmd is the pypi-scraper command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pypi-scraper/browser"
	"pypi-scraper/config"
	"pypi-scraper/scraper/pypi"
	"pypi-scraper/services"
	"pypi-scraper/storage"
	"pypi-scraper/utils"
)

type (
	openFunc func(cfg *config.Config) (browser.Session, error)
	runFunc  func(ctx context.Context, cfg *config.Config, out io.Writer, open openFunc) error
)

func newRootCmd(open openFunc, run runFunc) *cobra.Command {
	flags := config.DefaultConfig()
	envFile := ".env"

	cmd := &cobra.Command{
		Use:   "pypi-scraper [search term]",
		Short: "Scrapes package names, descriptions and links from PyPI search results into a CSV file.",
		Args:  cobra.MaximumNArgs(1),

		SilenceUsage:  true,
		SilenceErrors: true,

		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, flags, envFile, args)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, cmd.OutOrStdout(), open)
		},
	}

	f := cmd.Flags()
	f.StringVar(&envFile, "env-file", envFile, "dotenv file to read before the environment")
	f.StringVarP(&flags.SearchTerm, "term", "q", flags.SearchTerm, "search term")
	f.StringVar(&flags.BaseURL, "base-url", flags.BaseURL, "search page url")
	f.StringVarP(&flags.CSVPath, "output", "o", flags.CSVPath, "csv file to write")
	f.StringVar(&flags.Backend, "backend", flags.Backend, "browser driver: chromedp or rod")
	f.BoolVar(&flags.Headless, "headless", flags.Headless, "run the browser without a window")
	f.BoolVar(&flags.Stealth, "stealth", flags.Stealth, "apply the fingerprint profile")
	f.StringVar(&flags.UserAgent, "user-agent", flags.UserAgent, "user agent (random when empty)")
	f.DurationVar(&flags.NavigationTimeout, "nav-timeout", flags.NavigationTimeout, "initial page load timeout")
	f.DurationVar(&flags.WaitTimeout, "wait-timeout", flags.WaitTimeout, "timeout for result cards and the next button")
	f.DurationVar(&flags.ConsentTimeout, "consent-timeout", flags.ConsentTimeout, "how long to look for the cookie banner")
	f.DurationVar(&flags.MinDelay, "min-delay", flags.MinDelay, "shortest pause between pages")
	f.DurationVar(&flags.MaxDelay, "max-delay", flags.MaxDelay, "longest pause between pages")
	f.DurationVar(&flags.ScrollSettle, "scroll-settle", flags.ScrollSettle, "pause after scrolling to the bottom")
	f.IntVar(&flags.MaxPages, "max-pages", flags.MaxPages, "stop after this many pages (0 = all)")
	f.IntVar(&flags.NavRetries, "nav-retries", flags.NavRetries, "extra attempts when a page turn fails")
	f.BoolVar(&flags.Debug, "debug", flags.Debug, "log every scraped package")

	return cmd
}

// resolveConfig layers defaults, the dotenv file, the environment, explicitly
// set flags and finally the positional search term.
func resolveConfig(cmd *cobra.Command, flags *config.Config, envFile string, args []string) (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	fs := cmd.Flags()
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("term", func() { cfg.SearchTerm = flags.SearchTerm })
	set("base-url", func() { cfg.BaseURL = flags.BaseURL })
	set("output", func() { cfg.CSVPath = flags.CSVPath })
	set("backend", func() { cfg.Backend = flags.Backend })
	set("headless", func() { cfg.Headless = flags.Headless })
	set("stealth", func() { cfg.Stealth = flags.Stealth })
	set("user-agent", func() { cfg.UserAgent = flags.UserAgent })
	set("nav-timeout", func() { cfg.NavigationTimeout = flags.NavigationTimeout })
	set("wait-timeout", func() { cfg.WaitTimeout = flags.WaitTimeout })
	set("consent-timeout", func() { cfg.ConsentTimeout = flags.ConsentTimeout })
	set("min-delay", func() { cfg.MinDelay = flags.MinDelay })
	set("max-delay", func() { cfg.MaxDelay = flags.MaxDelay })
	set("scroll-settle", func() { cfg.ScrollSettle = flags.ScrollSettle })
	set("max-pages", func() { cfg.MaxPages = flags.MaxPages })
	set("nav-retries", func() { cfg.NavRetries = flags.NavRetries })
	set("debug", func() { cfg.Debug = flags.Debug })

	if len(args) == 1 {
		cfg.SearchTerm = args[0]
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// run scrapes with a session from open. The session is closed on every path
// once it has been opened.
func run(ctx context.Context, cfg *config.Config, out io.Writer, open openFunc) error {
	utils.SetDebug(cfg.Debug)
	utils.Info("Scraper starting | term=%q backend=%s delay=%v-%v max-pages=%d",
		cfg.SearchTerm, cfg.Backend, cfg.MinDelay, cfg.MaxDelay, cfg.MaxPages)

	session, err := open(cfg)
	if err != nil {
		return fmt.Errorf("could not start browser: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			utils.Warn("Closing browser: %v", err)
		}
		utils.Info("Browser closed")
	}()

	scraper := pypi.NewScraper(cfg, session)
	report, err := services.Scrape(ctx, cfg.SearchTerm, scraper, storage.NewCSVWriter(cfg.CSVPath))
	if err != nil {
		return err
	}
	services.PrintReport(out, report)
	return nil
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(browser.Open, run).ExecuteContext(ctx)
	stop()
	if err != nil {
		utils.Error("%v", err)
		os.Exit(1)
	}
}
