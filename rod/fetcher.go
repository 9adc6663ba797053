// Package rod provides a headless-browser PageFetcher using Chrome
// automation via go-rod. It handles basic bot-detection countermeasures
// and scroll-triggered lazy content.
package rod

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rivalhq/rival"
	"golang.org/x/time/rate"
)

// Ensure Fetcher implements rival.PageFetcher at compile time.
var _ rival.PageFetcher = (*Fetcher)(nil)

// Realistic desktop browser signatures. One is drawn at random per fetch
// so repeated fetches in a session do not share a fingerprint.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:121.0) Gecko/20100101 Firefox/121.0",
}

// stealthScript hides the automation flag most bot detectors probe first.
const stealthScript = `Object.defineProperty(navigator, 'webdriver', {
	get: () => undefined
});`

const (
	// DefaultNavigationTimeout bounds navigation only, not the scroll or
	// settle phases that follow it.
	DefaultNavigationTimeout = 30 * time.Second

	maxScrolls   = 10
	scrollPause  = 1 * time.Second
	topPause     = 500 * time.Millisecond
	settleDelay  = 2 * time.Second
	viewportW    = 1920
	viewportH    = 1080
	pageLocale   = "en-US"
	pageTimezone = "America/New_York"
)

// Fetcher retrieves rendered page content using a shared headless Chrome
// process. The browser launches lazily on first use. Each fetch runs in a
// fresh incognito browsing context that supersedes the previous one, so
// concurrent fetches on one Fetcher interfere with each other's context
// state; run fetches sequentially or use one Fetcher per concurrency unit.
type Fetcher struct {
	converter rival.Converter
	logger    *slog.Logger
	logsDir   string
	timeout   time.Duration
	headless  bool
	limiter   *rate.Limiter

	mu         sync.Mutex
	launcher   *launcher.Launcher
	browser    *rod.Browser
	browserCtx *rod.Browser
	closed     atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithNavigationTimeout sets the upper bound on page navigation.
func WithNavigationTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.timeout = d }
}

// WithHeadless controls whether the browser runs headless. Defaults to true.
func WithHeadless(headless bool) Option {
	return func(f *Fetcher) { f.headless = headless }
}

// WithLogsDir sets the directory for diagnostic screenshots.
func WithLogsDir(dir string) Option {
	return func(f *Fetcher) { f.logsDir = dir }
}

// WithRateLimiter throttles navigations. Useful to keep a long-running
// process from hammering hosts across many sequential analyses.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(f *Fetcher) { f.limiter = l }
}

// WithLogger sets the logger used for non-fatal diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = logger }
}

// NewFetcher creates a Fetcher that converts captured markup with the
// given converter. The browser is not launched until the first fetch or
// an explicit Start call. Close must be called when the Fetcher is no
// longer needed.
func NewFetcher(converter rival.Converter, opts ...Option) *Fetcher {
	f := &Fetcher{
		converter: converter,
		logger:    slog.Default(),
		logsDir:   "logs",
		timeout:   DefaultNavigationTimeout,
		headless:  true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Start launches the browser process if it is not already running.
// Calling Start on a started Fetcher is a no-op.
func (f *Fetcher) Start() error {
	if f.closed.Load() {
		return rival.Errorf(rival.EINVALID, "fetcher is closed")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser != nil {
		return nil
	}

	l := launcher.New().
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-dev-shm-usage").
		NoSandbox(true).
		Leakless(true).
		Headless(f.headless)

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill() // Clean up launched process on connection failure
		return fmt.Errorf("connecting to browser: %w", err)
	}

	f.launcher = l
	f.browser = browser
	f.logger.Info("browser started", "headless", f.headless)
	return nil
}

// FetchPage navigates to the URL and returns the captured content.
// Navigation is bounded by the configured timeout; the scroll and settle
// phases that follow are bounded only by ctx.
func (f *Fetcher) FetchPage(ctx context.Context, url string) (*rival.ScrapeResult, error) {
	if f.closed.Load() {
		return nil, rival.Errorf(rival.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Throttle before launching the browser so the first fetch of a
	// long-running process is subject to the same pacing as the rest.
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if err := f.Start(); err != nil {
		return nil, err
	}

	browserCtx, err := f.newContext()
	if err != nil {
		return nil, fmt.Errorf("creating browsing context: %w", err)
	}

	page, err := browserCtx.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("creating page for %s: %w", url, err)
	}
	// The page is closed on every exit path; a leaked handle per failed
	// run would accumulate across a long-lived process.
	defer func() { _ = page.Close() }()

	page = page.Context(ctx)

	if err := f.preparePage(page); err != nil {
		return nil, fmt.Errorf("preparing page for %s: %w", url, err)
	}

	if err := f.navigate(ctx, page, url); err != nil {
		return nil, err
	}

	if err := f.revealLazyContent(ctx, page); err != nil {
		f.errorScreenshot(page, url)
		return nil, rival.Errorf(rival.EUNAVAILABLE, "revealing content on %s: %v", url, err)
	}

	// Absorb any remaining asynchronous rendering not triggered by scroll.
	if err := sleep(ctx, settleDelay); err != nil {
		return nil, err
	}

	rawHTML, err := page.HTML()
	if err != nil {
		f.errorScreenshot(page, url)
		return nil, rival.Errorf(rival.EUNAVAILABLE, "capturing markup from %s: %v", url, err)
	}

	markdown, err := f.converter.Convert(rawHTML)
	if err != nil {
		f.errorScreenshot(page, url)
		return nil, fmt.Errorf("converting markup from %s: %w", url, err)
	}

	screenshotPath, err := f.capture(page, url, "success")
	if err != nil {
		// Diagnostics must never fail the fetch.
		f.logger.Warn("screenshot capture failed", "url", url, "err", err)
		screenshotPath = ""
	}

	return &rival.ScrapeResult{
		RawHTML:        rawHTML,
		Markdown:       markdown,
		ScreenshotPath: screenshotPath,
	}, nil
}

// Close releases the browsing context, browser process, and launcher, in
// that order. Close is safe to call multiple times and tolerates partially
// initialized state.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	var err error
	if f.browserCtx != nil && f.browser != nil {
		_ = proto.TargetDisposeBrowserContext{
			BrowserContextID: f.browserCtx.BrowserContextID,
		}.Call(f.browser)
		f.browserCtx = nil
	}
	if f.browser != nil {
		err = f.browser.Close()
		f.browser = nil
	}
	if f.launcher != nil {
		f.launcher.Kill()
		f.launcher = nil
	}
	return err
}

// newContext creates a fresh incognito browsing context and disposes the
// previous one. One context is active per Fetcher at a time.
func (f *Fetcher) newContext() (*rod.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser == nil {
		return nil, rival.Errorf(rival.EINVALID, "fetcher is closed")
	}

	inc, err := f.browser.Incognito()
	if err != nil {
		return nil, err
	}
	if f.browserCtx != nil {
		_ = proto.TargetDisposeBrowserContext{
			BrowserContextID: f.browserCtx.BrowserContextID,
		}.Call(f.browser)
	}
	f.browserCtx = inc
	return inc, nil
}

// preparePage applies the per-fetch anti-detection profile: a random
// desktop User-Agent, a fixed viewport, a fixed locale/timezone pairing,
// and the webdriver-flag suppression script.
func (f *Fetcher) preparePage(page *rod.Page) error {
	ua := userAgents[rand.IntN(len(userAgents))]
	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua}); err != nil {
		return err
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             viewportW,
		Height:            viewportH,
		DeviceScaleFactor: 1,
	}); err != nil {
		return err
	}
	if err := (proto.EmulationSetLocaleOverride{Locale: pageLocale}).Call(page); err != nil {
		return err
	}
	if err := (proto.EmulationSetTimezoneOverride{TimezoneID: pageTimezone}).Call(page); err != nil {
		return err
	}
	if _, err := page.EvalOnNewDocument(stealthScript); err != nil {
		return err
	}
	f.logger.Debug("browsing context prepared", "user_agent", ua)
	return nil
}

// navigate loads the URL and waits for network-idle quiescence or the
// navigation timeout, whichever comes first.
func (f *Fetcher) navigate(ctx context.Context, page *rod.Page, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	nav := page.Context(navCtx)
	wait := nav.WaitNavigation(proto.PageLifecycleEventNameNetworkIdle)
	if err := nav.Navigate(url); err != nil {
		f.errorScreenshot(page, url)
		return rival.Errorf(rival.EUNAVAILABLE, "fetching %s: %v", url, err)
	}
	wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	if navCtx.Err() != nil {
		f.errorScreenshot(page, url)
		return rival.Errorf(rival.ETIMEOUT, "timeout fetching %s after %s", url, f.timeout)
	}
	return nil
}

// revealLazyContent scrolls to the bottom repeatedly until the document
// height stabilizes or maxScrolls is reached, then returns to the top.
// Many pricing pages lazy-load sections on scroll; a single-shot capture
// would miss them.
func (f *Fetcher) revealLazyContent(ctx context.Context, page *rod.Page) error {
	prevHeight := -1
	for i := 0; i < maxScrolls; i++ {
		res, err := page.Eval(`() => document.body.scrollHeight`)
		if err != nil {
			return err
		}
		height := res.Value.Int()
		if height == prevHeight {
			f.logger.Debug("page height stable", "scrolls", i)
			break
		}
		prevHeight = height

		if _, err := page.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`); err != nil {
			return err
		}
		if err := sleep(ctx, scrollPause); err != nil {
			return err
		}
	}

	if _, err := page.Eval(`() => window.scrollTo(0, 0)`); err != nil {
		return err
	}
	return sleep(ctx, topPause)
}

// capture writes a full-page screenshot to the logs directory and returns
// its path.
func (f *Fetcher) capture(page *rod.Page, url, prefix string) (string, error) {
	if err := os.MkdirAll(f.logsDir, 0o755); err != nil {
		return "", err
	}

	data, err := page.Screenshot(true, nil)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s_%s_%s.png", prefix, safeURLName(url), time.Now().Format("20060102_150405"))
	path := filepath.Join(f.logsDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// errorScreenshot captures the failed page state on a best-effort basis.
// Any secondary failure is logged and swallowed so diagnostics never
// replace the primary error.
func (f *Fetcher) errorScreenshot(page *rod.Page, url string) {
	path, err := f.capture(page, url, "error")
	if err != nil {
		f.logger.Warn("error screenshot failed", "url", url, "err", err)
		return
	}
	f.logger.Info("error screenshot saved", "url", url, "path", path)
}

// safeURLName turns a URL into a short filesystem-safe name.
func safeURLName(url string) string {
	s := strings.TrimPrefix(url, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.ReplaceAll(s, "/", "_")
	if len(s) > 50 {
		s = s[:50]
	}
	return s
}

// sleep waits for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
