// Package browser wraps a single controllable browser tab behind a small
// interface so the scraping flow does not depend on one automation library.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pypi-scraper/config"
)

var (
	ErrTimeout  = errors.New("timed out")
	ErrNotFound = errors.New("element not found")
)

// Selector addresses elements either by CSS query or by XPath expression.
type Selector struct {
	Query string
	XPath bool
}

func CSS(query string) Selector   { return Selector{Query: query} }
func XPath(query string) Selector { return Selector{Query: query, XPath: true} }

func (s Selector) String() string {
	if s.XPath {
		return "xpath:" + s.Query
	}
	return s.Query
}

// Ref identifies an element captured by Mark. It stays valid until the
// element is detached from the live document.
type Ref string

// Session is one browser tab. All waits are bounded by the given timeout;
// a wait that runs out reports ErrTimeout.
type Session interface {
	Navigate(ctx context.Context, url string) error
	Location(ctx context.Context) (string, error)

	WaitVisible(ctx context.Context, sel Selector, timeout time.Duration) error
	// Click waits for sel to be visible and enabled, then clicks it.
	Click(ctx context.Context, sel Selector, timeout time.Duration) error
	Count(ctx context.Context, sel Selector) (int, error)
	// OuterHTML returns a snapshot of the outer HTML of every element
	// matching sel, in document order.
	OuterHTML(ctx context.Context, sel Selector) ([]string, error)
	ScrollToBottom(ctx context.Context) error

	// Mark captures the first element matching sel.
	Mark(ctx context.Context, sel Selector) (Ref, error)
	// Stale reports whether the marked element is already detached.
	Stale(ctx context.Context, ref Ref) (bool, error)
	// WaitStale blocks until the marked element is no longer attached to
	// the page.
	WaitStale(ctx context.Context, ref Ref, timeout time.Duration) error

	Close() error
}

// Open launches the browser selected by cfg.Backend. The caller owns the
// session and must Close it on every path.
func Open(cfg *config.Config) (Session, error) {
	switch cfg.Backend {
	case config.BackendChromedp:
		return newChromedpSession(cfg)
	case config.BackendRod:
		return newRodSession(cfg)
	default:
		return nil, fmt.Errorf("unknown browser backend %q", cfg.Backend)
	}
}

const pollInterval = 100 * time.Millisecond

// pollUntil calls check until it reports true or ctx is done. Errors from
// check are treated as "not yet": the page may be mid-navigation.
func pollUntil(ctx context.Context, check func(ctx context.Context) (bool, error)) error {
	t := time.NewTicker(pollInterval)
	defer t.Stop()

	var lastErr error
	for {
		ok, err := check(ctx)
		if err == nil && ok {
			return nil
		}
		if err != nil {
			lastErr = err
		}
		select {
		case <-ctx.Done():
			if lastErr != nil {
				return fmt.Errorf("%w (last error: %v)", ctx.Err(), lastErr)
			}
			return ctx.Err()
		case <-t.C:
		}
	}
}

// classify maps an error from a bounded operation onto the package errors.
// Caller cancellation wins over the operation's own deadline.
func classify(parent context.Context, err error, what string, timeout time.Duration) error {
	if err == nil {
		return nil
	}
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w after %v", what, ErrTimeout, timeout)
	}
	return fmt.Errorf("%s: %w", what, err)
}
