package browser

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/stretchr/testify/require"

	"pypi-scraper/config"
)

const resultsHTML = `<html><body>
<a class="package-snippet" href="/project/foo-api/"><span class="package-snippet__name">foo-api</span></a>
<a class="package-snippet" href="/project/bar/"><span class="package-snippet__name">bar</span></a>
</body></html>`

func openRod(t *testing.T) *rodSession {
	t.Helper()
	if testing.Short() {
		t.Skip("needs a local Chrome")
	}
	if _, ok := launcher.LookPath(); !ok {
		t.Skip("no Chrome found")
	}

	cfg := config.DefaultConfig()
	cfg.Backend = config.BackendRod
	cfg.NavigationTimeout = 20 * time.Second
	cfg.WaitTimeout = 2 * time.Second
	s, err := newRodSession(cfg)
	require.NoError(t, err)
	return s
}

func TestRodSession(t *testing.T) {
	s := openRod(t)
	defer s.Close()
	ctx := context.Background()
	cards := CSS("a.package-snippet")

	require.NoError(t, s.Navigate(ctx, "data:text/html,"+url.PathEscape(resultsHTML)))
	require.NoError(t, s.WaitVisible(ctx, cards, time.Second))

	n, err := s.Count(ctx, cards)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	html, err := s.OuterHTML(ctx, XPath("//a[contains(@class, 'package-snippet')]"))
	require.NoError(t, err)
	require.Len(t, html, 2)
	require.Contains(t, html[0], "foo-api")

	ref, err := s.Mark(ctx, cards)
	require.NoError(t, err)
	stale, err := s.Stale(ctx, ref)
	require.NoError(t, err)
	require.False(t, stale)

	require.NoError(t, s.Navigate(ctx, "data:text/html,"+url.PathEscape("<p>next</p>")))
	require.NoError(t, s.WaitStale(ctx, ref, time.Second))
}

func TestRodSessionWaitsAreBounded(t *testing.T) {
	s := openRod(t)
	defer s.Close()
	ctx := context.Background()
	require.NoError(t, s.Navigate(ctx, "data:text/html,"+url.PathEscape("<p>empty</p>")))

	start := time.Now()
	err := s.WaitVisible(ctx, CSS("a.package-snippet"), 200*time.Millisecond)
	require.ErrorIs(t, err, ErrTimeout)
	require.Less(t, time.Since(start), 5*time.Second)

	// the bounded call above must not leave the page itself timed out
	n, err := s.Count(ctx, CSS("p"))
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestRodSessionCloseTwiceReturns(t *testing.T) {
	s := openRod(t)
	require.NoError(t, s.Close())

	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(15 * time.Second):
		t.Fatal("second Close blocked")
	}
}
