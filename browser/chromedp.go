package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"

	"pypi-scraper/config"
	"pypi-scraper/utils"
)

type chromedpSession struct {
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
	navTimeout  time.Duration
	evalTimeout time.Duration
}

func newChromedpSession(cfg *config.Config) (*chromedpSession, error) {
	utils.Info("Launching Chrome (chromedp, headless=%v, stealth=%v)...", cfg.Headless, cfg.Stealth)

	opts := utils.StealthOpts(cfg.Headless, cfg.UserAgent)
	if !cfg.Stealth {
		opts = append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Flag("headless", cfg.Headless))
		if cfg.UserAgent != "" {
			opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
		}
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	s := &chromedpSession{
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		navTimeout:  cfg.NavigationTimeout,
		evalTimeout: cfg.WaitTimeout,
	}

	// The first Run starts the browser; it must use the tab context itself so
	// later per-call timeouts do not tear the browser down.
	var startup []chromedp.Action
	if cfg.Stealth {
		startup = append(startup, chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(utils.FingerprintScript).Do(ctx)
			return err
		}))
	}
	if err := chromedp.Run(tabCtx, startup...); err != nil {
		s.Close()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	utils.Success("Browser ready")
	return s, nil
}

// run executes actions on the tab, bounded by timeout and by ctx.
func (s *chromedpSession) run(ctx context.Context, timeout time.Duration, what string, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.tabCtx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return classify(ctx, chromedp.Run(runCtx, actions...), what, timeout)
}

func by(sel Selector) chromedp.QueryOption {
	if sel.XPath {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

func (s *chromedpSession) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, s.navTimeout, "navigate "+url, chromedp.Navigate(url))
}

func (s *chromedpSession) Location(ctx context.Context) (string, error) {
	var loc string
	err := s.run(ctx, s.evalTimeout, "location", chromedp.Location(&loc))
	return loc, err
}

func (s *chromedpSession) WaitVisible(ctx context.Context, sel Selector, timeout time.Duration) error {
	return s.run(ctx, timeout, "wait visible "+sel.String(), chromedp.WaitVisible(sel.Query, by(sel)))
}

func (s *chromedpSession) Click(ctx context.Context, sel Selector, timeout time.Duration) error {
	return s.run(ctx, timeout, "click "+sel.String(),
		chromedp.WaitVisible(sel.Query, by(sel)),
		chromedp.WaitEnabled(sel.Query, by(sel)),
		chromedp.Click(sel.Query, by(sel)),
	)
}

// eval runs fn with args on the page and decodes the result into out.
func (s *chromedpSession) eval(ctx context.Context, what string, out any, fn string, args ...any) error {
	expr, err := invoke(fn, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return s.run(ctx, s.evalTimeout, what, chromedp.Evaluate(expr, out))
}

func (s *chromedpSession) Count(ctx context.Context, sel Selector) (int, error) {
	var n int
	err := s.eval(ctx, "count "+sel.String(), &n, countScript, sel.Query, sel.XPath)
	return n, err
}

func (s *chromedpSession) OuterHTML(ctx context.Context, sel Selector) ([]string, error) {
	var html []string
	err := s.eval(ctx, "snapshot "+sel.String(), &html, outerHTMLScript, sel.Query, sel.XPath)
	return html, err
}

func (s *chromedpSession) ScrollToBottom(ctx context.Context) error {
	return s.eval(ctx, "scroll", nil, scrollBottomScript)
}

func (s *chromedpSession) Mark(ctx context.Context, sel Selector) (Ref, error) {
	token := uuid.NewString()
	var found bool
	err := s.eval(ctx, "mark "+sel.String(), &found, markScript, sel.Query, sel.XPath, token)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("mark %s: %w", sel, ErrNotFound)
	}
	return Ref(token), nil
}

func (s *chromedpSession) Stale(ctx context.Context, ref Ref) (bool, error) {
	var detached bool
	err := s.eval(ctx, "stale check", &detached, detachedScript, string(ref))
	return detached, err
}

func (s *chromedpSession) WaitStale(ctx context.Context, ref Ref, timeout time.Duration) error {
	runCtx, cancel := context.WithTimeout(s.tabCtx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	expr, err := invoke(detachedScript, string(ref))
	if err != nil {
		return fmt.Errorf("wait stale: %w", err)
	}
	err = pollUntil(runCtx, func(ctx context.Context) (bool, error) {
		var detached bool
		err := chromedp.Run(ctx, chromedp.Evaluate(expr, &detached))
		return detached, err
	})
	return classify(ctx, err, "wait stale", timeout)
}

func (s *chromedpSession) Close() error {
	utils.Info("Closing browser...")
	s.tabCancel()
	s.allocCancel()
	return nil
}
