package services

import (
	"context"
	"fmt"

	"pypi-scraper/models"
)

// Runner produces the listings for one search.
type Runner interface {
	Run(ctx context.Context) (*models.RunResult, error)
}

// Sink persists the listings of a finished run.
type Sink interface {
	Write(listings []models.Listing) error
	Path() string
}

// Scrape runs the search for term through r and hands whatever it collected
// to sink, exactly once, no matter how the run stopped. Only a fatal run error
// skips the sink.
func Scrape(ctx context.Context, term string, r Runner, sink Sink) (Report, error) {
	result, err := r.Run(ctx)
	if err != nil {
		return BuildReport(term, result, ""), err
	}

	if err := sink.Write(result.Listings); err != nil {
		return BuildReport(term, result, ""), fmt.Errorf("save results: %w", err)
	}

	path := ""
	if len(result.Listings) > 0 {
		path = sink.Path()
	}
	return BuildReport(term, result, path), nil
}
