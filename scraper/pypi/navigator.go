package pypi

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"pypi-scraper/browser"
	"pypi-scraper/utils"
)

// ErrNavigation marks a failed initial search navigation. It is the only
// error that aborts a run before anything is collected.
var ErrNavigation = errors.New("search navigation failed")

// SearchURL percent-encodes term into the q parameter of base. Spaces become
// '+', as in an HTML form submission.
func SearchURL(base, term string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	u.RawQuery = "q=" + url.QueryEscape(term)
	return u.String(), nil
}

// OpenSearch loads the search results for the configured term and dismisses
// the cookie banner if one shows up.
func (s *Scraper) OpenSearch(ctx context.Context) error {
	searchURL, err := SearchURL(s.cfg.BaseURL, s.cfg.SearchTerm)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNavigation, err)
	}

	utils.Info("Navigating to PyPI search: %s", searchURL)
	if err := s.session.Navigate(ctx, searchURL); err != nil {
		return fmt.Errorf("%w: %w", ErrNavigation, err)
	}
	utils.Success("Search page loaded")

	s.dismissConsent(ctx)
	return nil
}

func (s *Scraper) dismissConsent(ctx context.Context) {
	err := s.session.Click(ctx, consentSelector, s.cfg.ConsentTimeout)
	switch {
	case err == nil:
		utils.Success("Cookie banner accepted")
	case errors.Is(err, browser.ErrTimeout):
		utils.Info("Cookie banner not found or already accepted")
	default:
		utils.Warn("Could not dismiss cookie banner: %v", err)
	}
}
