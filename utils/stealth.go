package utils

import (
	"math/rand"

	"github.com/chromedp/chromedp"
)

// userAgents are real desktop Chrome strings; one is picked per session when
// no user agent is configured.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
}

func RandomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}

// StealthOpts returns chromedp launch options that hide the most obvious
// automation markers.
//
//   - disable-blink-features=AutomationControlled removes navigator.webdriver
//   - headless=new is Chrome's newer headless mode
//   - a normal desktop window size
func StealthOpts(headless bool, userAgent string) []chromedp.ExecAllocatorOption {
	if userAgent == "" {
		userAgent = RandomUserAgent()
	}

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("excludeSwitches", "enable-automation"),
		chromedp.Flag("useAutomationExtension", false),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(userAgent),
	}

	if headless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	}

	return opts
}

// FingerprintScript runs before any page script on every document. It masks
// the webdriver flag and presents a consistent en-US / Win32 / Intel WebGL
// fingerprint.
const FingerprintScript = `(() => {
	const define = (obj, prop, value) => {
		try { Object.defineProperty(obj, prop, { get: () => value, configurable: true }); } catch (e) {}
	};
	define(navigator, 'webdriver', undefined);
	define(navigator, 'languages', ['en-US', 'en']);
	define(navigator, 'vendor', 'Google Inc.');
	define(navigator, 'platform', 'Win32');
	define(navigator, 'plugins', [1, 2, 3, 4, 5]);
	if (!window.chrome) { window.chrome = { runtime: {} }; }

	const patchWebGL = (proto) => {
		if (!proto) return;
		const getParameter = proto.getParameter;
		proto.getParameter = function (p) {
			if (p === 37445) return 'Intel Inc.';
			if (p === 37446) return 'Intel Iris OpenGL Engine';
			return getParameter.call(this, p);
		};
	};
	patchWebGL(window.WebGLRenderingContext && WebGLRenderingContext.prototype);
	patchWebGL(window.WebGL2RenderingContext && WebGL2RenderingContext.prototype);

	// Headless Chrome reports a zero offsetHeight for the Modernizr hairline check.
	const offsetHeight = Object.getOwnPropertyDescriptor(HTMLElement.prototype, 'offsetHeight');
	if (offsetHeight && offsetHeight.get) {
		Object.defineProperty(HTMLDivElement.prototype, 'offsetHeight', {
			get: function () {
				if (this.id === 'modernizr') return 1;
				return offsetHeight.get.call(this);
			},
		});
	}
})();`
