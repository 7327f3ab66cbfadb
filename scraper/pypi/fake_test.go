package pypi

import (
	"context"
	"fmt"
	"time"

	"pypi-scraper/browser"
)

// fakePage is one rendered search results page.
type fakePage struct {
	url          string
	cards        []string
	hasNext      bool
	nextDisabled bool
	// clickIgnored makes a Next click succeed without changing the page.
	clickIgnored bool
	// emptySnapshot lets the visibility wait pass while the card snapshot
	// comes back empty, as when results vanish between the two calls.
	emptySnapshot bool
}

// fakeSession plays a fixed sequence of pages.
type fakeSession struct {
	pages       []fakePage
	navigateErr error
	consent     bool
	// slowStale is how many WaitStale calls time out even though the page
	// already changed.
	slowStale int

	current        int
	navigatedTo    string
	consentClicked bool
	nextClicks     int
	scrolls        int
	marks          map[browser.Ref]int
	closed         bool
}

func newFakeSession(pages ...fakePage) *fakeSession {
	return &fakeSession{pages: pages, marks: map[browser.Ref]int{}}
}

func (f *fakeSession) page() fakePage { return f.pages[f.current] }

func (f *fakeSession) Navigate(_ context.Context, url string) error {
	f.navigatedTo = url
	if f.navigateErr != nil {
		return f.navigateErr
	}
	f.current = 0
	return nil
}

func (f *fakeSession) Location(context.Context) (string, error) {
	return f.page().url, nil
}

func (f *fakeSession) WaitVisible(_ context.Context, sel browser.Selector, _ time.Duration) error {
	if sel == cardSelector && (len(f.page().cards) > 0 || f.page().emptySnapshot) {
		return nil
	}
	return fmt.Errorf("wait visible %s: %w", sel, browser.ErrTimeout)
}

func (f *fakeSession) Click(_ context.Context, sel browser.Selector, _ time.Duration) error {
	switch sel {
	case consentSelector:
		if f.consent {
			f.consentClicked = true
			return nil
		}
	case nextSelector:
		p := f.page()
		if p.hasNext && !p.nextDisabled {
			f.nextClicks++
			if !p.clickIgnored {
				f.current++
			}
			return nil
		}
	}
	return fmt.Errorf("click %s: %w", sel, browser.ErrTimeout)
}

func (f *fakeSession) Count(_ context.Context, sel browser.Selector) (int, error) {
	switch sel {
	case cardSelector:
		return len(f.page().cards), nil
	case disabledNextSelector:
		if f.page().nextDisabled {
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeSession) OuterHTML(_ context.Context, sel browser.Selector) ([]string, error) {
	if sel != cardSelector {
		return nil, nil
	}
	return append([]string(nil), f.page().cards...), nil
}

func (f *fakeSession) ScrollToBottom(context.Context) error {
	f.scrolls++
	return nil
}

func (f *fakeSession) Mark(_ context.Context, sel browser.Selector) (browser.Ref, error) {
	if sel != cardSelector || len(f.page().cards) == 0 {
		return "", fmt.Errorf("mark %s: %w", sel, browser.ErrNotFound)
	}
	ref := browser.Ref(fmt.Sprintf("ref-%d", len(f.marks)))
	f.marks[ref] = f.current
	return ref, nil
}

func (f *fakeSession) Stale(_ context.Context, ref browser.Ref) (bool, error) {
	at, ok := f.marks[ref]
	return !ok || at != f.current, nil
}

func (f *fakeSession) WaitStale(_ context.Context, ref browser.Ref, _ time.Duration) error {
	if f.slowStale > 0 {
		f.slowStale--
		return fmt.Errorf("wait stale: %w", browser.ErrTimeout)
	}
	if at, ok := f.marks[ref]; ok && at != f.current {
		return nil
	}
	return fmt.Errorf("wait stale: %w", browser.ErrTimeout)
}

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

func card(name, description, href string) string {
	return fmt.Sprintf(`<a class="package-snippet" href="%s">
  <h3 class="package-snippet__title">
    <span class="package-snippet__name">  %s </span>
    <span class="package-snippet__version">1.0.0</span>
  </h3>
  <p class="package-snippet__description">
    %s
  </p>
</a>`, href, name, description)
}

func cardWithoutDescription(name, href string) string {
	return fmt.Sprintf(`<a class="package-snippet" href="%s">
  <h3 class="package-snippet__title"><span class="package-snippet__name">%s</span></h3>
</a>`, href, name)
}
