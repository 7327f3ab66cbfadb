package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/google/uuid"

	"pypi-scraper/config"
	"pypi-scraper/utils"
)

type rodSession struct {
	launcher    *launcher.Launcher
	browser     *rod.Browser
	page        *rod.Page
	navTimeout  time.Duration
	evalTimeout time.Duration
}

func newRodSession(cfg *config.Config) (*rodSession, error) {
	utils.Info("Launching Chrome (rod, headless=%v, stealth=%v)...", cfg.Headless, cfg.Stealth)

	l := launcher.New().
		Headless(cfg.Headless).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-dev-shm-usage").
		NoSandbox(true)

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect chrome: %w", err)
	}

	s := &rodSession{
		launcher:    l,
		browser:     b,
		navTimeout:  cfg.NavigationTimeout,
		evalTimeout: cfg.WaitTimeout,
	}

	if cfg.Stealth {
		s.page, err = stealth.Page(b)
	} else {
		s.page, err = b.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open page: %w", err)
	}

	if cfg.Stealth {
		ua := cfg.UserAgent
		if ua == "" {
			ua = utils.RandomUserAgent()
		}
		if err := s.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent:      ua,
			AcceptLanguage: "en-US,en",
			Platform:       "Win32",
		}); err != nil {
			s.Close()
			return nil, fmt.Errorf("set user agent: %w", err)
		}
		if _, err := s.page.EvalOnNewDocument(utils.FingerprintScript); err != nil {
			s.Close()
			return nil, fmt.Errorf("install fingerprint: %w", err)
		}
	} else if cfg.UserAgent != "" {
		if err := s.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: cfg.UserAgent}); err != nil {
			s.Close()
			return nil, fmt.Errorf("set user agent: %w", err)
		}
	}

	utils.Success("Browser ready")
	return s, nil
}

// bounded returns the page limited by timeout and by ctx. The caller must
// call cancel once the operation is done.
func (s *rodSession) bounded(ctx context.Context, timeout time.Duration) (*rod.Page, context.CancelFunc) {
	boundCtx, cancel := context.WithTimeout(ctx, timeout)
	return s.page.Context(boundCtx), cancel
}

func find(p *rod.Page, sel Selector) (*rod.Element, error) {
	if sel.XPath {
		return p.ElementX(sel.Query)
	}
	return p.Element(sel.Query)
}

func (s *rodSession) Navigate(ctx context.Context, url string) error {
	p, cancel := s.bounded(ctx, s.navTimeout)
	defer cancel()

	err := p.Navigate(url)
	if err == nil {
		err = p.WaitLoad()
	}
	return classify(ctx, err, "navigate "+url, s.navTimeout)
}

func (s *rodSession) Location(ctx context.Context) (string, error) {
	p, cancel := s.bounded(ctx, s.evalTimeout)
	defer cancel()

	info, err := p.Info()
	if err != nil {
		return "", classify(ctx, err, "location", s.evalTimeout)
	}
	return info.URL, nil
}

func (s *rodSession) WaitVisible(ctx context.Context, sel Selector, timeout time.Duration) error {
	p, cancel := s.bounded(ctx, timeout)
	defer cancel()

	el, err := find(p, sel)
	if err == nil {
		err = el.WaitVisible()
	}
	return classify(ctx, err, "wait visible "+sel.String(), timeout)
}

func (s *rodSession) Click(ctx context.Context, sel Selector, timeout time.Duration) error {
	p, cancel := s.bounded(ctx, timeout)
	defer cancel()

	el, err := find(p, sel)
	if err == nil {
		err = el.WaitVisible()
	}
	if err == nil {
		err = el.WaitEnabled()
	}
	if err == nil {
		err = el.Click(proto.InputMouseButtonLeft, 1)
	}
	return classify(ctx, err, "click "+sel.String(), timeout)
}

func (s *rodSession) eval(ctx context.Context, what, js string, args ...interface{}) (*proto.RuntimeRemoteObject, error) {
	p, cancel := s.bounded(ctx, s.evalTimeout)
	defer cancel()

	res, err := p.Eval(js, args...)
	return res, classify(ctx, err, what, s.evalTimeout)
}

func (s *rodSession) Count(ctx context.Context, sel Selector) (int, error) {
	res, err := s.eval(ctx, "count "+sel.String(), countScript, sel.Query, sel.XPath)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}

func (s *rodSession) OuterHTML(ctx context.Context, sel Selector) ([]string, error) {
	res, err := s.eval(ctx, "snapshot "+sel.String(), outerHTMLScript, sel.Query, sel.XPath)
	if err != nil {
		return nil, err
	}
	items := res.Value.Arr()
	html := make([]string, 0, len(items))
	for _, item := range items {
		html = append(html, item.Str())
	}
	return html, nil
}

func (s *rodSession) ScrollToBottom(ctx context.Context) error {
	_, err := s.eval(ctx, "scroll", scrollBottomScript)
	return err
}

func (s *rodSession) Mark(ctx context.Context, sel Selector) (Ref, error) {
	token := uuid.NewString()
	res, err := s.eval(ctx, "mark "+sel.String(), markScript, sel.Query, sel.XPath, token)
	if err != nil {
		return "", err
	}
	if !res.Value.Bool() {
		return "", fmt.Errorf("mark %s: %w", sel, ErrNotFound)
	}
	return Ref(token), nil
}

func (s *rodSession) Stale(ctx context.Context, ref Ref) (bool, error) {
	res, err := s.eval(ctx, "stale check", detachedScript, string(ref))
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

func (s *rodSession) WaitStale(ctx context.Context, ref Ref, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := pollUntil(waitCtx, func(ctx context.Context) (bool, error) {
		res, err := s.page.Context(ctx).Eval(detachedScript, string(ref))
		if err != nil {
			return false, err
		}
		return res.Value.Bool(), nil
	})
	return classify(ctx, err, "wait stale", timeout)
}

func (s *rodSession) Close() error {
	utils.Info("Closing browser...")
	var err error
	if s.browser != nil {
		err = s.browser.Close()
	}
	if err != nil {
		// Cleanup waits for the process to exit, which a failed close never does.
		s.launcher.Kill()
	}
	s.launcher.Cleanup()
	return err
}
