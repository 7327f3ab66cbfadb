package models

// Listing is one package entry scraped from a search results page.
type Listing struct {
	Name        string
	Description string
	URL         string
}

// Row returns the listing as a CSV record in header order.
func (l Listing) Row() []string {
	return []string{l.Name, l.Description, l.URL}
}

// PageResult is the outcome of extracting a single results page.
type PageResult struct {
	Page     int
	Listings []Listing
	Skipped  int
}

type StopReason string

const (
	StopEndOfResults     StopReason = "end-of-results"
	StopNoMorePages      StopReason = "no-more-pages"
	StopExtractFailed    StopReason = "extract-failed"
	StopNavigationFailed StopReason = "navigation-failed"
	StopPageLimit        StopReason = "page-limit"
	StopCancelled        StopReason = "cancelled"
)

// RunResult accumulates everything a scrape produced, in discovery order.
type RunResult struct {
	Listings []Listing
	Pages    int
	Skipped  int
	Stop     StopReason
	// Err is the cause behind a non-normal stop, if any.
	Err error
}

func (r *RunResult) Add(page PageResult) {
	r.Listings = append(r.Listings, page.Listings...)
	r.Skipped += page.Skipped
	r.Pages++
}
