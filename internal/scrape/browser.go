// CLAUDE:SUMMARY Rendered tier: stealth Chrome page, bounded navigation, settle delay, scroll cycles, DOM serialisation.
package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

// Renderer serialises the fully rendered DOM of a page. The engine degrades
// to it when static extraction yields nothing usable.
type Renderer interface {
	Render(ctx context.Context, pageURL string) (string, error)
	Close() error
}

// BrowserConfig configures the stealth browser renderer.
type BrowserConfig struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string

	// NavTimeout bounds navigation plus load wait. Default: 25s.
	NavTimeout time.Duration

	// SettleDelay is a fixed wait after load so challenge pages can resolve.
	// Default: 5s.
	SettleDelay time.Duration

	// ScrollCycles and ScrollDelay drive lazy-loaded content. Defaults: 3, 1.5s.
	ScrollCycles int
	ScrollDelay  time.Duration

	Logger *slog.Logger
}

func (c *BrowserConfig) defaults() {
	if c.NavTimeout <= 0 {
		c.NavTimeout = 25 * time.Second
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = 5 * time.Second
	}
	if c.ScrollCycles <= 0 {
		c.ScrollCycles = 3
	}
	if c.ScrollDelay <= 0 {
		c.ScrollDelay = 1500 * time.Millisecond
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Browser is a Renderer backed by stealth Chrome. Chrome is launched lazily
// on first Render and reused until Close.
type Browser struct {
	cfg     BrowserConfig
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

// NewBrowser creates a Browser renderer. No Chrome is started yet.
func NewBrowser(cfg BrowserConfig) *Browser {
	cfg.defaults()
	return &Browser{cfg: cfg}
}

// connect returns the shared Rod browser handle, launching Chrome if needed.
func (b *Browser) connect() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, fmt.Errorf("browser: closed")
	}
	if b.browser != nil {
		return b.browser, nil
	}

	wsURL := b.cfg.RemoteURL
	if wsURL == "" {
		l := launcher.New().
			Headless(true).
			Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		b.lnch = l
		wsURL = u
		b.cfg.Logger.Info("scrape: launched stealth chrome")
	}

	br := rod.New().ControlURL(wsURL)
	if err := br.Connect(); err != nil {
		if b.lnch != nil {
			b.lnch.Cleanup()
			b.lnch = nil
		}
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	b.browser = br
	return br, nil
}

// Render navigates to pageURL in an isolated stealth page, waits for
// challenge pages to settle, scrolls to trigger lazy loading, and returns
// the serialised DOM. Every error is a soft failure for that URL.
func (b *Browser) Render(ctx context.Context, pageURL string) (string, error) {
	br, err := b.connect()
	if err != nil {
		return "", err
	}

	// stealth.Page spoofs webdriver, plugins, languages and UA signals
	// before any site script runs.
	page, err := stealth.Page(br)
	if err != nil {
		return "", fmt.Errorf("browser: stealth page: %w", err)
	}
	defer page.Close()

	navCtx, cancel := context.WithTimeout(ctx, b.cfg.NavTimeout)
	defer cancel()
	p := page.Context(navCtx)

	if err := p.Navigate(pageURL); err != nil {
		return "", fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := p.WaitLoad(); err != nil {
		// Slow pages often still carry usable DOM; keep going.
		b.cfg.Logger.Warn("scrape: wait load timeout", "url", pageURL, "error", err)
	}

	if !sleepCtx(ctx, b.cfg.SettleDelay) {
		return "", ctx.Err()
	}

	for i := 0; i < b.cfg.ScrollCycles; i++ {
		if _, err := page.Context(ctx).Eval(`() => window.scrollBy(0, 3000)`); err != nil {
			b.cfg.Logger.Debug("scrape: scroll failed", "url", pageURL, "error", err)
			break
		}
		if !sleepCtx(ctx, b.cfg.ScrollDelay) {
			return "", ctx.Err()
		}
	}

	res, err := page.Context(ctx).Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		return "", fmt.Errorf("browser: serialise DOM: %w", err)
	}
	return res.Value.Str(), nil
}

// Close shuts down Chrome.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	if b.browser != nil {
		b.browser.Close()
		b.browser = nil
	}
	if b.lnch != nil {
		b.lnch.Cleanup()
		b.lnch = nil
	}
	return nil
}

// sleepCtx sleeps d unless ctx is cancelled first. Returns false on cancel.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
