// Package pypi drives a browser session through the pypi.org search results
// and collects one Listing per result card.
package pypi

import (
	"context"
	"fmt"
	"time"

	"pypi-scraper/browser"
	"pypi-scraper/config"
	"pypi-scraper/models"
	"pypi-scraper/utils"
)

const defaultRetryBackoff = 2 * time.Second

type Scraper struct {
	cfg          *config.Config
	session      browser.Session
	retryBackoff time.Duration
}

// NewScraper does not take ownership of session; the caller closes it.
func NewScraper(cfg *config.Config, session browser.Session) *Scraper {
	return &Scraper{cfg: cfg, session: session, retryBackoff: defaultRetryBackoff}
}

// Run opens the search and alternates extraction and pagination until the
// results run out or a step fails. Only a failed initial navigation is
// returned as an error; every other stop is recorded in the result alongside
// whatever was collected.
func (s *Scraper) Run(ctx context.Context) (*models.RunResult, error) {
	utils.Info("Starting PyPI package scraper for search term: %q", s.cfg.SearchTerm)

	result := &models.RunResult{}
	if err := s.OpenSearch(ctx); err != nil {
		return result, err
	}

	page := 1
	for {
		if err := ctx.Err(); err != nil {
			result.Stop, result.Err = models.StopCancelled, err
			break
		}

		utils.Section(fmt.Sprintf("Scraping Page %d", page))
		pr, err := s.ExtractPage(ctx, page)
		if err != nil {
			if ctx.Err() != nil {
				result.Stop, result.Err = models.StopCancelled, ctx.Err()
				break
			}
			utils.Error("Error scraping page %d: %v", page, err)
			result.Stop, result.Err = models.StopExtractFailed, err
			break
		}
		if len(pr.Listings) == 0 && pr.Skipped == 0 {
			utils.Info("No packages found on this page. Ending scrape.")
			result.Stop = models.StopEndOfResults
			break
		}
		result.Add(pr)

		if s.cfg.MaxPages > 0 && page >= s.cfg.MaxPages {
			utils.Info("Reached page limit (%d)", s.cfg.MaxPages)
			result.Stop = models.StopPageLimit
			break
		}

		step := s.nextPage(ctx, page)
		if step.Outcome == Advanced {
			page = step.Page
			continue
		}
		if ctx.Err() != nil {
			result.Stop, result.Err = models.StopCancelled, ctx.Err()
			break
		}
		if step.Outcome == NoMorePages {
			utils.Info("No further result pages after page %d", page)
			result.Stop = models.StopNoMorePages
			break
		}
		utils.Error("Pagination failed after page %d: %v", page, step.Err)
		result.Stop, result.Err = models.StopNavigationFailed, step.Err
		break
	}

	utils.Success("Scraping complete. Total packages found: %d", len(result.Listings))
	return result, nil
}
