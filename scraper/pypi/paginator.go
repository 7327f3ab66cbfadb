package pypi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pypi-scraper/browser"
	"pypi-scraper/utils"
)

type Outcome int

const (
	// Advanced means the next page replaced the previous results.
	Advanced Outcome = iota
	// NoMorePages is the expected terminal state: there is no usable Next control.
	NoMorePages
	// NavigationFailed means a Next control existed but moving past it broke.
	NavigationFailed
)

func (o Outcome) String() string {
	switch o {
	case Advanced:
		return "advanced"
	case NoMorePages:
		return "no-more-pages"
	case NavigationFailed:
		return "navigation-failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Step is the result of one page turn.
type Step struct {
	Outcome Outcome
	// Page is the page now displayed when Outcome is Advanced.
	Page int
	Err  error

	// clickedFrom is the first card of the page Next was clicked on, set
	// when the click went through but the page did not visibly change.
	clickedFrom browser.Ref
}

// Advance turns from page to page+1: politeness pause, scroll to the bottom,
// capture the first card, click Next and wait for that card to go stale.
func (s *Scraper) Advance(ctx context.Context, page int) Step {
	failed := func(err error) Step {
		return Step{Outcome: NavigationFailed, Page: page, Err: err}
	}

	d, err := utils.RandomDelay(ctx, s.cfg.MinDelay, s.cfg.MaxDelay)
	if err != nil {
		return failed(err)
	}
	utils.Debug("Paused %v before leaving page %d", d.Round(time.Millisecond), page)

	if err := s.session.ScrollToBottom(ctx); err != nil {
		return failed(err)
	}
	if err := utils.Sleep(ctx, s.cfg.ScrollSettle); err != nil {
		return failed(err)
	}

	ref, err := s.session.Mark(ctx, cardSelector)
	if err != nil {
		return failed(fmt.Errorf("capture first card: %w", err))
	}

	if n, err := s.session.Count(ctx, disabledNextSelector); err == nil && n > 0 {
		return Step{Outcome: NoMorePages, Page: page}
	}

	if err := s.session.Click(ctx, nextSelector, s.cfg.WaitTimeout); err != nil {
		if errors.Is(err, browser.ErrTimeout) {
			return Step{Outcome: NoMorePages, Page: page}
		}
		return failed(err)
	}

	utils.Info("Going to page %d, waiting for new packages to load...", page+1)
	if err := s.session.WaitStale(ctx, ref, s.cfg.WaitTimeout); err != nil {
		step := failed(fmt.Errorf("results did not change after clicking next: %w", err))
		step.clickedFrom = ref
		return step
	}

	return Step{Outcome: Advanced, Page: page + 1}
}

// nextPage is Advance with up to cfg.NavRetries extra attempts on
// NavigationFailed. A click from an earlier attempt that has since landed
// counts as Advanced; clicking Next again would skip a page.
func (s *Scraper) nextPage(ctx context.Context, page int) Step {
	var (
		step    Step
		pending browser.Ref
	)
	err := utils.Retry(ctx, s.cfg.NavRetries+1, s.retryBackoff, func(int) error {
		if pending != "" {
			stale, err := s.session.Stale(ctx, pending)
			if err != nil {
				return fmt.Errorf("check previous click: %w", err)
			}
			if stale {
				utils.Info("Page %d finished loading after the wait ran out", page+1)
				step = Step{Outcome: Advanced, Page: page + 1}
				return nil
			}
		}

		step = s.Advance(ctx, page)
		if step.Outcome == NavigationFailed {
			pending = step.clickedFrom
			return step.Err
		}
		return nil
	})
	if err != nil && step.Outcome == NavigationFailed {
		step.Err = err
	}
	return step
}
