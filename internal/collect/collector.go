// CLAUDE:SUMMARY Candidate collection: per-entity search, dedup against seen set, blacklist/date/score/keyword filters, top-K.
// Package collect builds the per-entity candidate set from raw search hits.
//
// Collection is deliberately serial across entities with a fixed delay
// between queries, respecting provider rate limits. Everything downstream
// of it fans out.
package collect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/hazyhaar/presswatch/internal/search"
)

// ErrNoCandidates distinguishes "ran but found nothing" from "did not run".
var ErrNoCandidates = errors.New("collect: no candidates for any entity")

// Entity is one watched organisation: a display name plus the keywords a
// hit must mention to count as being about it. Immutable for a run.
type Entity struct {
	Name     string   `json:"name" yaml:"name"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// Candidate is a search hit that survived filtering, eligible for
// extraction. Never mutated after creation.
type Candidate struct {
	Entity      Entity
	URL         string
	Title       string
	Snippet     string
	PublishedAt time.Time // zero when the provider gave no parseable date
	Score       float64
}

// Config configures the collector.
type Config struct {
	// MaxPerEntity caps each entity's bucket, bounding downstream extraction
	// cost independent of entity count or search noise. Default: 2.
	MaxPerEntity int
	// MinScore is the floor on the provider's relevance score. Default: 0.3.
	MinScore float64
	// Slack absorbs timezone skew on publish dates. Default: 24h.
	Slack time.Duration
	// Delay between per-entity queries. Default: 2s.
	Delay time.Duration
	// Blacklist lists domains whose hits are always rejected.
	Blacklist []string
	// QueryTemplate builds the per-entity query; {entity} is replaced by the
	// entity name.
	QueryTemplate string

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.MaxPerEntity <= 0 {
		c.MaxPerEntity = 2
	}
	if c.MinScore <= 0 {
		c.MinScore = 0.3
	}
	if c.Slack <= 0 {
		c.Slack = 24 * time.Hour
	}
	if c.QueryTemplate == "" {
		c.QueryTemplate = `Latest important news, updates and developments involving "{entity}".`
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Collector turns watched entities into scored, deduplicated candidates.
type Collector struct {
	provider search.Provider
	config   Config
	logger   *slog.Logger
}

// New creates a Collector.
func New(provider search.Provider, cfg Config) *Collector {
	cfg.defaults()
	return &Collector{provider: provider, config: cfg, logger: cfg.Logger}
}

// Collect queries the provider once per entity, filters and ranks the hits,
// and returns at most MaxPerEntity candidates per entity plus the URLs
// newly added to seen. cutoff is the oldest acceptable publish date; hits
// older than cutoff minus Slack are rejected.
//
// A per-entity search failure is logged and skipped, never fatal. When every
// entity yields zero candidates the ErrNoCandidates sentinel is returned.
func (c *Collector) Collect(ctx context.Context, entities []Entity, seen *SeenSet, cutoff time.Time) ([]Candidate, []string, error) {
	var candidates []Candidate
	var newURLs []string

	for i, entity := range entities {
		if i > 0 && c.config.Delay > 0 {
			if !sleepCtx(ctx, c.config.Delay) {
				return candidates, newURLs, ctx.Err()
			}
		}

		bucket := c.collectEntity(ctx, entity, seen, cutoff)
		if len(bucket) > c.config.MaxPerEntity {
			bucket = bucket[:c.config.MaxPerEntity]
		}
		for _, cand := range bucket {
			seen.Add(cand.URL)
			newURLs = append(newURLs, cand.URL)
			candidates = append(candidates, cand)
		}
		c.logger.Debug("collect: entity done", "entity", entity.Name, "picked", len(bucket))
	}

	if len(candidates) == 0 {
		return nil, nil, ErrNoCandidates
	}
	return candidates, newURLs, nil
}

// collectEntity returns the entity's filtered bucket sorted by (score,
// recency) descending, not yet truncated.
func (c *Collector) collectEntity(ctx context.Context, entity Entity, seen *SeenSet, cutoff time.Time) []Candidate {
	log := c.logger.With("entity", entity.Name)

	query := strings.ReplaceAll(c.config.QueryTemplate, "{entity}", entity.Name)
	hits, err := c.provider.Search(ctx, query, cutoff)
	if err != nil {
		log.Warn("collect: search failed", "error", err)
		return nil
	}

	oldest := cutoff.Add(-c.config.Slack)
	inBucket := make(map[string]bool)
	var bucket []Candidate

	for _, hit := range hits {
		normalized, err := NormalizeURL(hit.URL)
		if err != nil {
			log.Debug("collect: malformed hit URL", "url", hit.URL, "error", err)
			continue
		}
		if seen.Has(normalized) || inBucket[normalized] {
			continue
		}
		if c.blacklisted(normalized) {
			continue
		}
		if hit.Score < c.config.MinScore {
			log.Debug("collect: low score", "url", normalized, "score", hit.Score)
			continue
		}

		published, hasDate := parseDate(hit.PublishedAt)
		if hasDate && published.Before(oldest) {
			continue
		}

		if !matchesKeywords(entity.Keywords, hit.Title+" "+hit.Snippet) {
			continue
		}

		inBucket[normalized] = true
		bucket = append(bucket, Candidate{
			Entity:      entity,
			URL:         normalized,
			Title:       hit.Title,
			Snippet:     hit.Snippet,
			PublishedAt: published,
			Score:       hit.Score,
		})
	}

	// Score is primary, recency breaks ties. Zero dates sort last.
	sort.SliceStable(bucket, func(i, j int) bool {
		if bucket[i].Score != bucket[j].Score {
			return bucket[i].Score > bucket[j].Score
		}
		return bucket[i].PublishedAt.After(bucket[j].PublishedAt)
	})
	return bucket
}

// blacklisted reports whether the URL's host is, or is a subdomain of, a
// blacklisted domain.
func (c *Collector) blacklisted(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return true
	}
	host := strings.ToLower(parsed.Hostname())
	for _, bad := range c.config.Blacklist {
		bad = strings.ToLower(bad)
		if host == bad || strings.HasSuffix(host, "."+bad) {
			return true
		}
	}
	return false
}

// matchesKeywords reports whether any keyword appears in text,
// case-insensitively. An entity with no keywords matches everything.
func matchesKeywords(keywords []string, text string) bool {
	if len(keywords) == 0 {
		return true
	}
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// dateLayouts cover the formats news APIs actually emit.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123,
	time.RFC1123Z,
	"Mon, 2 Jan 2006 15:04:05 MST",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

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

// String implements fmt.Stringer for log readability.
func (c Candidate) String() string {
	date := "unknown date"
	if !c.PublishedAt.IsZero() {
		date = c.PublishedAt.Format("2006-01-02")
	}
	return fmt.Sprintf("[%s] %s | %s | %s", c.Entity.Name, date, c.URL, c.Title)
}
