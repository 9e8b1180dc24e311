// CLAUDE:SUMMARY Two-tier extraction engine: static fetch+strip first, stealth-rendered fallback, gate before accept.
// Package scrape turns a URL into clean article markdown.
//
// Tier 1 fetches the page body and strips boilerplate: cheap, no
// JavaScript. Tier 2 renders the page in stealth Chrome and re-runs the
// same stripping, and is attempted only when Tier 1 comes back empty, short
// or blocked. Whatever tier produced the text, it must pass the quality
// gate before an Article materialises; everything else is an error the
// caller treats as "skip this URL".
package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"

	"github.com/hazyhaar/presswatch/internal/fetch"
)

// ErrRejected marks content that is structurally present but failed the
// quality gate (too short, paywalled, navigation dump).
var ErrRejected = errors.New("scrape: content rejected")

// Article is extracted content that passed the quality gate. Failed
// extractions never materialise this type.
type Article struct {
	URL         string
	Title       string
	PublishedAt time.Time // zero when the page carried no parseable date
	Text        string
	Truncated   bool
}

// Config configures the extraction engine.
type Config struct {
	// MinChars below which content forces the rendered tier (and fails the
	// gate). Default: 600.
	MinChars int
	// MaxChars above which content is truncated with a marker. Default: 20000.
	MaxChars int
	// MinParagraphChars and MinParagraphs define the article-structure
	// check: at least MinParagraphs lines of MinParagraphChars+. Defaults: 150, 2.
	MinParagraphChars int
	MinParagraphs     int

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.MinChars <= 0 {
		c.MinChars = 600
	}
	if c.MaxChars <= 0 {
		c.MaxChars = 20000
	}
	if c.MinParagraphChars <= 0 {
		c.MinParagraphChars = 150
	}
	if c.MinParagraphs <= 0 {
		c.MinParagraphs = 2
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Engine extracts article text from URLs.
type Engine struct {
	fetcher   *fetch.Fetcher
	renderer  Renderer
	converter *converter.Converter
	sanitizer *bluemonday.Policy
	config    Config
	logger    *slog.Logger
}

// New creates an Engine. renderer may be nil, in which case the rendered
// tier is unavailable and blocked pages simply fail.
func New(fetcher *fetch.Fetcher, renderer Renderer, cfg Config) *Engine {
	cfg.defaults()
	return &Engine{
		fetcher:  fetcher,
		renderer: renderer,
		converter: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
		sanitizer: bluemonday.UGCPolicy(),
		config:    cfg,
		logger:    cfg.Logger,
	}
}

// Extract runs the two-tier strategy for one URL. On success the returned
// Article has non-empty gated text; on failure the error explains which
// tier gave up, and the caller drops the URL.
func (e *Engine) Extract(ctx context.Context, pageURL string) (*Article, error) {
	log := e.logger.With("url", pageURL)

	var text string
	var meta pageMeta

	body, err := e.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		log.Debug("scrape: static fetch failed", "error", err)
	} else {
		text, meta = e.extractHTML(body, pageURL)
	}

	// Decide whether the static result is good enough on its own.
	staticErr := e.gate(text)
	if staticErr != nil {
		if e.renderer == nil {
			return nil, fmt.Errorf("static tier: %w (no renderer)", staticErr)
		}
		log.Debug("scrape: degrading to rendered tier", "reason", staticErr)

		html, rerr := e.renderer.Render(ctx, pageURL)
		if rerr != nil {
			return nil, fmt.Errorf("rendered tier: %w (static: %v)", rerr, staticErr)
		}
		renderedText, renderedMeta := e.extractHTML([]byte(html), pageURL)
		if gerr := e.gate(renderedText); gerr != nil {
			return nil, fmt.Errorf("rendered tier: %w", gerr)
		}
		text = renderedText
		if meta.Title == "" {
			meta.Title = renderedMeta.Title
		}
		if meta.PublishedAt == "" {
			meta.PublishedAt = renderedMeta.PublishedAt
		}
	}

	text, truncated := e.truncate(text)
	log.Debug("scrape: extracted", "chars", len(text), "truncated", truncated)

	return &Article{
		URL:         pageURL,
		Title:       meta.Title,
		PublishedAt: parseMetaDate(meta.PublishedAt),
		Text:        text,
		Truncated:   truncated,
	}, nil
}

// metaDateLayouts cover the datetime formats head metadata actually carries.
var metaDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// parseMetaDate returns the zero time when the raw value is empty or in a
// format nothing emits in practice.
func parseMetaDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range metaDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
