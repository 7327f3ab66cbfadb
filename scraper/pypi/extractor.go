package pypi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pypi-scraper/models"
	"pypi-scraper/utils"
)

var (
	errNoHref       = errors.New("card has no href")
	errMissingField = errors.New("card is missing an expected element")
)

// ExtractPage waits for the result cards of the current page and parses every
// card present at that instant. A wait timeout is returned as an error; an
// empty snapshot is a normal, empty result.
func (s *Scraper) ExtractPage(ctx context.Context, page int) (models.PageResult, error) {
	result := models.PageResult{Page: page}

	if err := s.session.WaitVisible(ctx, cardSelector, s.cfg.WaitTimeout); err != nil {
		return result, fmt.Errorf("page %d: %w", page, err)
	}

	cards, err := s.session.OuterHTML(ctx, cardSelector)
	if err != nil {
		return result, fmt.Errorf("page %d: %w", page, err)
	}
	if len(cards) == 0 {
		return result, nil
	}
	utils.Info("Found %d packages on page %d", len(cards), page)

	loc, err := s.session.Location(ctx)
	if err != nil {
		return result, fmt.Errorf("page %d: %w", page, err)
	}
	base, err := url.Parse(loc)
	if err != nil {
		return result, fmt.Errorf("page %d: parse location %q: %w", page, loc, err)
	}

	for i, card := range cards {
		listing, err := ParseCard(card, base)
		if err != nil {
			utils.Warn("Skipping card %d on page %d: %v", i+1, page, err)
			result.Skipped++
			continue
		}
		utils.Debug("Scraped: %s", listing.Name)
		result.Listings = append(result.Listings, listing)
	}

	utils.Success("Page %d: %d scraped, %d skipped", page, len(result.Listings), result.Skipped)
	return result, nil
}

// ParseCard reads one result card's outer HTML. The card element itself is
// the link to the package page; relative links are resolved against base.
func ParseCard(cardHTML string, base *url.URL) (models.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cardHTML))
	if err != nil {
		return models.Listing{}, fmt.Errorf("parse card: %w", err)
	}
	card := doc.Find("body").Children().First()

	name := card.Find(nameSelector).First()
	if name.Length() == 0 {
		return models.Listing{}, fmt.Errorf("%w: %s", errMissingField, nameSelector)
	}
	desc := card.Find(descriptionSelector).First()
	if desc.Length() == 0 {
		return models.Listing{}, fmt.Errorf("%w: %s", errMissingField, descriptionSelector)
	}

	href, ok := card.Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return models.Listing{}, errNoHref
	}
	link, err := base.Parse(href)
	if err != nil {
		return models.Listing{}, fmt.Errorf("resolve href %q: %w", href, err)
	}

	return models.Listing{
		Name:        cleanText(name.Text()),
		Description: cleanText(desc.Text()),
		URL:         link.String(),
	}, nil
}

// cleanText trims and collapses whitespace the way rendered text reads.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
