// CLAUDE:SUMMARY Aggregation stage: group summaries by watch-list entity, one synthesis call per bucket, assemble the report.
// Package report groups article summaries by watched entity and synthesizes
// the final report, one narrative per entity bucket.
package report

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/hazyhaar/presswatch/internal/collect"
	"github.com/hazyhaar/presswatch/internal/summarize"
	"github.com/hazyhaar/presswatch/internal/textmodel"
)

// unclassified is the reserved bucket for summaries whose primary entity
// matches no watch-list entry.
const unclassified = "Unclassified"

// otherNewsHeading labels the unclassified bucket's section in the report.
const otherNewsHeading = "Other industry news"

// noNewsPlaceholder appears when a run produced nothing reportable.
const noNewsPlaceholder = "No significant news for the watch-list this period."

// Section is one entity's narrative in the report.
type Section struct {
	Entity    string `json:"entity"`
	Narrative string `json:"narrative"`
}

// Report is the terminal artifact of a run. Immutable once returned.
type Report struct {
	ID               string    `json:"id"`
	GeneratedAt      time.Time `json:"generated_at"`
	ExecutiveSummary []string  `json:"executive_summary"`
	Sections         []Section `json:"sections"`
}

// Config configures the builder.
type Config struct {
	// MinSectionChars drops synthesized sections shorter than this. Default: 50.
	MinSectionChars int

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.MinSectionChars <= 0 {
		c.MinSectionChars = 50
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Builder assembles reports. newID is swappable for deterministic tests.
type Builder struct {
	model  textmodel.Model
	config Config
	logger *slog.Logger
	newID  func() string
	now    func() time.Time
}

// New creates a Builder.
func New(model textmodel.Model, cfg Config) *Builder {
	cfg.defaults()
	return &Builder{
		model:  model,
		config: cfg,
		logger: cfg.Logger,
		newID:  uuid.NewString,
		now:    time.Now,
	}
}

// synthesisResult is the model's per-bucket output.
type synthesisResult struct {
	Bullet    string `json:"bullet"`
	Narrative string `json:"narrative"`
}

var synthesisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"bullet":    {Type: genai.TypeString, Description: "One executive-summary bullet for this entity"},
		"narrative": {Type: genai.TypeString, Description: "One cohesive paragraph covering all key points, with inline citations"},
	},
	Required: []string{"bullet", "narrative"},
}

// bucket pairs an entity heading with its summaries, in watch-list order.
type bucket struct {
	entity    string
	summaries []summarize.Summary
}

// Build groups summaries by entity and synthesizes one section per non-empty
// bucket. Buckets are processed serially; there are at most a handful per
// run. A failed synthesis call drops that bucket only. A run with nothing
// reportable still returns a Report, with an explicit placeholder.
func (b *Builder) Build(ctx context.Context, summaries []summarize.Summary, entities []collect.Entity) (*Report, error) {
	report := &Report{ID: b.newID(), GeneratedAt: b.now().UTC()}

	buckets := group(summaries, entities)
	for _, bk := range buckets {
		result, err := b.synthesize(ctx, bk)
		if err != nil {
			b.logger.Warn("report: synthesis failed, dropping bucket", "entity", bk.entity, "error", err)
			continue
		}

		narrative := NormalizeCitations(strings.TrimSpace(result.Narrative))
		if dropSection(narrative, b.config.MinSectionChars) {
			b.logger.Debug("report: section dropped", "entity", bk.entity, "chars", len(narrative))
			continue
		}

		if bk.entity == unclassified {
			report.Sections = append(report.Sections, Section{Entity: otherNewsHeading, Narrative: narrative})
			continue
		}
		report.Sections = append(report.Sections, Section{Entity: bk.entity, Narrative: narrative})
		if bullet := strings.TrimSpace(result.Bullet); bullet != "" {
			report.ExecutiveSummary = append(report.ExecutiveSummary, NormalizeCitations(bullet))
		}
	}

	if len(report.Sections) == 0 {
		report.ExecutiveSummary = []string{noNewsPlaceholder}
	}
	b.logger.Info("report: built", "id", report.ID, "sections", len(report.Sections))
	return report, nil
}

// group assigns each summary to the first watch-list entity whose name is a
// case-insensitive substring of the summary's primary entity, preserving
// watch-list order for the output. The loose match absorbs the model's
// phrasing variance ("Google DeepMind Labs" lands in "Google DeepMind").
func group(summaries []summarize.Summary, entities []collect.Entity) []bucket {
	byName := make(map[string][]summarize.Summary)
	for _, s := range summaries {
		name := classify(s.PrimaryEntity, entities)
		byName[name] = append(byName[name], s)
	}

	var buckets []bucket
	for _, e := range entities {
		if group := byName[e.Name]; len(group) > 0 {
			buckets = append(buckets, bucket{entity: e.Name, summaries: group})
		}
	}
	if group := byName[unclassified]; len(group) > 0 {
		buckets = append(buckets, bucket{entity: unclassified, summaries: group})
	}
	return buckets
}

// classify returns the first matching watch-list name in list order.
func classify(primary string, entities []collect.Entity) string {
	lower := strings.ToLower(primary)
	for _, e := range entities {
		if strings.Contains(lower, strings.ToLower(e.Name)) {
			return e.Name
		}
	}
	return unclassified
}

func (b *Builder) synthesize(ctx context.Context, bk bucket) (*synthesisResult, error) {
	var result synthesisResult
	err := textmodel.CompleteInto(ctx, b.model, textmodel.Request{
		System: synthesisSystemPrompt(b.now().UTC().Format("2006-01-02"), bk.entity == unclassified),
		Prompt: bucketInput(bk),
		Schema: synthesisSchema,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// bucketInput concatenates the bucket's summaries into one labeled block so
// the model writes a single section per entity instead of one per article.
func bucketInput(bk bucket) string {
	var sb strings.Builder
	sb.WriteString("ENTITY: " + bk.entity + "\n\n")
	for _, s := range bk.summaries {
		sb.WriteString("### " + s.Title + "\n")
		if s.PublishedAt != "" {
			sb.WriteString("Published: " + s.PublishedAt + "\n")
		}
		sb.WriteString("Source: " + s.SourceURL + "\n")
		for _, p := range s.KeyPoints {
			sb.WriteString("- " + p + "\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// dropSection rejects narratives too short to be real news or containing an
// explicit no-news disclaimer from the model.
func dropSection(narrative string, minChars int) bool {
	if len(narrative) < minChars {
		return true
	}
	return strings.Contains(strings.ToLower(narrative), "no significant news")
}
