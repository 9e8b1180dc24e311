// CLAUDE:SUMMARY Main Service orchestrator: collect, extract, analyze, aggregate, persist, plus the interval scheduler.
// Package presswatch assembles the news-watch pipeline: per-entity search
// collection, two-tier page extraction, structured per-article analysis,
// and entity-grouped report synthesis, with seen-URL and report persistence.
package presswatch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/presswatch/dbopen"
	"github.com/hazyhaar/presswatch/internal/collect"
	"github.com/hazyhaar/presswatch/internal/fetch"
	"github.com/hazyhaar/presswatch/internal/pool"
	"github.com/hazyhaar/presswatch/internal/report"
	"github.com/hazyhaar/presswatch/internal/scrape"
	"github.com/hazyhaar/presswatch/internal/search"
	"github.com/hazyhaar/presswatch/internal/store"
	"github.com/hazyhaar/presswatch/internal/summarize"
	"github.com/hazyhaar/presswatch/internal/textmodel"
)

// Extractor abstracts the page extraction engine for testability.
type Extractor interface {
	Extract(ctx context.Context, pageURL string) (*Article, error)
}

// Service is the main presswatch orchestrator.
type Service struct {
	config     *Config
	logger     *slog.Logger
	searcher   search.Provider
	model      textmodel.Model
	extractor  Extractor
	renderer   scrape.Renderer
	collector  *collect.Collector
	summarizer *summarize.Stage
	builder    *report.Builder
	store      *store.Store
	db         *sql.DB // owned when opened internally
	now        func() time.Time
}

// ServiceOption configures a Service during creation.
type ServiceOption func(*Service)

// WithSearcher replaces the default search client.
func WithSearcher(p search.Provider) ServiceOption {
	return func(s *Service) { s.searcher = p }
}

// WithModel replaces the default Gemini text model.
func WithModel(m textmodel.Model) ServiceOption {
	return func(s *Service) { s.model = m }
}

// WithExtractor replaces the default two-tier extraction engine.
func WithExtractor(e Extractor) ServiceOption {
	return func(s *Service) { s.extractor = e }
}

// WithDB uses an already-opened database instead of opening Config.DBPath.
// The caller keeps ownership; Close will not close it.
func WithDB(db *sql.DB) ServiceOption {
	return func(s *Service) { s.store = store.New(db) }
}

// New creates a presswatch Service. Collaborators not overridden by options
// are built from the config: the Tavily search client, the Gemini model,
// the rod-backed browser renderer, and an SQLite store at Config.DBPath.
func New(ctx context.Context, cfg *Config, logger *slog.Logger, opts ...ServiceOption) (*Service, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	svc := &Service{
		config: cfg,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}

	if svc.searcher == nil {
		svc.searcher = search.NewClient(cfg.Search, nil)
	}
	if svc.model == nil {
		modelCfg := cfg.Model
		modelCfg.Logger = logger
		model, err := textmodel.NewGemini(ctx, modelCfg)
		if err != nil {
			return nil, err
		}
		svc.model = model
	}
	if svc.extractor == nil {
		fetchCfg := cfg.Fetch
		if fetchCfg.URLValidator == nil {
			fetchCfg.URLValidator = fetch.ValidateURL
		}
		if !cfg.DisableBrowser {
			browserCfg := cfg.Browser
			browserCfg.Logger = logger
			svc.renderer = scrape.NewBrowser(browserCfg)
		}
		scrapeCfg := cfg.Scrape
		scrapeCfg.Logger = logger
		svc.extractor = scrape.New(fetch.New(fetchCfg), svc.renderer, scrapeCfg)
	}
	if svc.store == nil {
		db, err := dbopen.Open(cfg.DBPath, dbopen.WithMkdirAll(), dbopen.WithSchema(store.Schema))
		if err != nil {
			return nil, fmt.Errorf("presswatch: open database: %w", err)
		}
		svc.db = db
		svc.store = store.New(db)
	}

	collectCfg := cfg.Collect
	collectCfg.Logger = logger
	svc.collector = collect.New(svc.searcher, collectCfg)

	analyzeCfg := cfg.Analyze
	analyzeCfg.Logger = logger
	svc.summarizer = summarize.New(svc.model, analyzeCfg)

	svc.builder = report.New(svc.model, report.Config{Logger: logger})

	return svc, nil
}

// Run executes one full pipeline pass and returns the generated report.
// Zero fresh candidates is not a failure: the run still produces and
// persists a placeholder report.
func (svc *Service) Run(ctx context.Context) (*Report, error) {
	if len(svc.config.Watchlist) == 0 {
		return nil, ErrEmptyWatchlist
	}
	started := svc.now()
	log := svc.logger.With("entities", len(svc.config.Watchlist))
	log.Info("run: starting")

	seenURLs, err := svc.store.LoadSeenURLs(ctx)
	if err != nil {
		log.Warn("run: loading seen urls failed, starting empty", "error", err)
	}
	seen := collect.NewSeenSet(seenURLs)

	cutoff := svc.now().AddDate(0, 0, -svc.config.LookbackDays)
	candidates, newURLs, err := svc.collector.Collect(ctx, svc.config.Watchlist, seen, cutoff)
	if err != nil && !errors.Is(err, collect.ErrNoCandidates) {
		return nil, err
	}
	if err := svc.store.AddSeenURLs(ctx, newURLs); err != nil {
		log.Warn("run: persisting seen urls failed", "error", err)
	}

	articles := svc.extract(ctx, candidates)
	summaries := svc.summarizer.Run(ctx, articles, entityNames(svc.config.Watchlist))

	rep, err := svc.builder.Build(ctx, summaries, svc.config.Watchlist)
	if err != nil {
		return nil, err
	}
	if err := svc.store.SaveReport(ctx, rep); err != nil {
		log.Warn("run: persisting report failed", "id", rep.ID, "error", err)
	}

	log.Info("run: done",
		"id", rep.ID,
		"candidates", len(candidates),
		"articles", len(articles),
		"summaries", len(summaries),
		"sections", len(rep.Sections),
		"elapsed", svc.now().Sub(started))
	return rep, nil
}

// extract fans candidates out over the extraction engine and merges search
// metadata into the articles. Failed extractions shrink the output.
func (svc *Service) extract(ctx context.Context, candidates []collect.Candidate) []*Article {
	tasks := make([]pool.Task[scrape.Article], len(candidates))
	for i, cand := range candidates {
		tasks[i] = func(ctx context.Context) (*scrape.Article, error) {
			article, err := svc.extractor.Extract(ctx, cand.URL)
			if err != nil {
				svc.logger.Warn("run: extraction dropped", "candidate", cand.String(), "error", err)
				return nil, err
			}
			if article.Title == "" {
				article.Title = cand.Title
			}
			if article.PublishedAt.IsZero() {
				article.PublishedAt = cand.PublishedAt
			}
			return article, nil
		}
	}

	results := pool.Run(ctx, pool.Config{
		MaxConcurrency: svc.config.ExtractConcurrency,
		JitterMin:      500 * time.Millisecond,
		JitterMax:      2 * time.Second,
		Logger:         svc.logger,
	}, tasks)

	articles := make([]*Article, 0, len(results))
	for _, a := range results {
		if a != nil {
			articles = append(articles, a)
		}
	}
	return articles
}

// Start runs the pipeline immediately, then on every Config.Interval tick
// until the context is cancelled. Run failures are logged, never fatal to
// the loop.
func (svc *Service) Start(ctx context.Context) {
	svc.logger.Info("scheduler: starting", "interval", svc.config.Interval)
	ticker := time.NewTicker(svc.config.Interval)
	defer ticker.Stop()

	for {
		if _, err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			svc.logger.Error("scheduler: run failed", "error", err)
		}
		select {
		case <-ctx.Done():
			svc.logger.Info("scheduler: stopping")
			return
		case <-ticker.C:
		}
	}
}

// ListReports returns stored report metadata, newest first.
func (svc *Service) ListReports(ctx context.Context, limit int) ([]ReportMeta, error) {
	return svc.store.ListReports(ctx, limit)
}

// GetReport loads one stored report by id.
func (svc *Service) GetReport(ctx context.Context, id string) (*Report, error) {
	return svc.store.GetReport(ctx, id)
}

// GetReportMarkdown loads one stored report's rendered markdown.
func (svc *Service) GetReportMarkdown(ctx context.Context, id string) (string, error) {
	return svc.store.GetReportMarkdown(ctx, id)
}

// Watchlist returns the configured entities.
func (svc *Service) Watchlist() []Entity {
	return svc.config.Watchlist
}

// Close releases the browser and, when owned, the database.
func (svc *Service) Close() error {
	var errs []error
	if svc.renderer != nil {
		if err := svc.renderer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if svc.db != nil {
		if err := svc.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func entityNames(entities []Entity) []string {
	names := make([]string, len(entities))
	for i, e := range entities {
		names[i] = e.Name
	}
	return names
}
