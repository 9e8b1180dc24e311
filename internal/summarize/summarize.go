// CLAUDE:SUMMARY Per-article analysis stage: schema-constrained model call, relevance floor, bounded fan-out.
// Package summarize turns extracted articles into structured Summary records
// via the text model, one call per article under a bounded worker pool.
package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/hazyhaar/presswatch/internal/pool"
	"github.com/hazyhaar/presswatch/internal/scrape"
	"github.com/hazyhaar/presswatch/internal/textmodel"
)

// Summary is the structured analysis of one article. Immutable once created.
type Summary struct {
	Title          string   `json:"title"`
	PrimaryEntity  string   `json:"primary_entity"`
	RelevanceScore int      `json:"relevance_score"`
	KeyPoints      []string `json:"key_points"`
	SourceURL      string   `json:"source_url"`
	PublishedAt    string   `json:"published_at,omitempty"`
}

// Config configures the stage.
type Config struct {
	// RelevanceFloor drops summaries scored below it. Default: 4. This is
	// the only content-quality filter past extraction gating.
	RelevanceFloor int
	// Concurrency bounds parallel model calls. Default: 3.
	Concurrency int64
	// JitterMin/JitterMax delay each task's model call. Defaults: 500ms/2s.
	JitterMin time.Duration
	JitterMax time.Duration

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.RelevanceFloor <= 0 {
		c.RelevanceFloor = 4
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 3
	}
	if c.JitterMin <= 0 {
		c.JitterMin = 500 * time.Millisecond
	}
	if c.JitterMax <= c.JitterMin {
		c.JitterMax = c.JitterMin + 1500*time.Millisecond
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Stage fans article analysis out over the model.
type Stage struct {
	model  textmodel.Model
	config Config
	logger *slog.Logger
}

// New creates a Stage.
func New(model textmodel.Model, cfg Config) *Stage {
	cfg.defaults()
	return &Stage{model: model, config: cfg, logger: cfg.Logger}
}

// analysisResult is what the model is constrained to emit.
type analysisResult struct {
	Title          string   `json:"title"`
	KeyPoints      []string `json:"key_points"`
	RelevanceScore int      `json:"relevance_score"`
	PrimaryEntity  string   `json:"primary_entity"`
}

var analysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":           {Type: genai.TypeString, Description: "Concise factual headline"},
		"key_points":      {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "3 to 5 specific factual bullet points"},
		"relevance_score": {Type: genai.TypeInteger, Description: "Relevance from 1 to 10"},
		"primary_entity":  {Type: genai.TypeString, Description: "The one main subject, or Industry"},
	},
	Required: []string{"title", "key_points", "relevance_score", "primary_entity"},
}

// Run analyzes each article and returns the summaries that cleared the
// relevance floor. A failed or malformed model call drops that article only.
// Output order is not defined; callers group downstream.
func (s *Stage) Run(ctx context.Context, articles []*scrape.Article, entityNames []string) []Summary {
	tasks := make([]pool.Task[Summary], len(articles))
	for i, article := range articles {
		tasks[i] = s.task(article, entityNames)
	}

	results := pool.Run(ctx, pool.Config{
		MaxConcurrency: s.config.Concurrency,
		JitterMin:      s.config.JitterMin,
		JitterMax:      s.config.JitterMax,
		Logger:         s.logger,
	}, tasks)

	summaries := make([]Summary, 0, len(results))
	for _, r := range results {
		if r != nil {
			summaries = append(summaries, *r)
		}
	}
	s.logger.Info("summarize: stage done", "articles", len(articles), "summaries", len(summaries))
	return summaries
}

func (s *Stage) task(article *scrape.Article, entityNames []string) pool.Task[Summary] {
	return func(ctx context.Context) (*Summary, error) {
		log := s.logger.With("url", article.URL)

		var result analysisResult
		err := textmodel.CompleteInto(ctx, s.model, textmodel.Request{
			System: analysisSystemPrompt(entityNames),
			Prompt: analysisInput(article),
			Schema: analysisSchema,
		}, &result)
		if err != nil {
			log.Warn("summarize: analysis failed, dropping article", "error", err)
			return nil, err
		}
		if result.RelevanceScore < 1 || result.RelevanceScore > 10 || len(result.KeyPoints) == 0 {
			log.Warn("summarize: malformed analysis, dropping article",
				"score", result.RelevanceScore, "points", len(result.KeyPoints))
			return nil, fmt.Errorf("summarize: malformed analysis for %s", article.URL)
		}
		if result.RelevanceScore < s.config.RelevanceFloor {
			log.Debug("summarize: below relevance floor", "score", result.RelevanceScore)
			return nil, fmt.Errorf("summarize: relevance %d below floor", result.RelevanceScore)
		}

		summary := &Summary{
			Title:          result.Title,
			PrimaryEntity:  result.PrimaryEntity,
			RelevanceScore: result.RelevanceScore,
			KeyPoints:      result.KeyPoints,
			SourceURL:      article.URL,
		}
		if !article.PublishedAt.IsZero() {
			summary.PublishedAt = article.PublishedAt.Format("2006-01-02")
		}
		log.Debug("summarize: article analyzed", "entity", summary.PrimaryEntity, "score", summary.RelevanceScore)
		return summary, nil
	}
}

// analysisInput prefixes the article text with the publish date so the model
// anchors relative time references to the article, not to its own training
// cutoff.
func analysisInput(article *scrape.Article) string {
	date := time.Now().UTC().Format("2006-01-02")
	if !article.PublishedAt.IsZero() {
		date = article.PublishedAt.UTC().Format("2006-01-02")
	}
	return fmt.Sprintf("METADATA_DATE: %s\n\nTITLE: %s\n\n%s", date, article.Title, article.Text)
}
