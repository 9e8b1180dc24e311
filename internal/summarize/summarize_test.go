package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hazyhaar/presswatch/internal/scrape"
	"github.com/hazyhaar/presswatch/internal/textmodel"
)

// scriptedModel answers by matching a substring of the prompt, so tests can
// route per-article replies without depending on call order.
type scriptedModel struct {
	replies map[string]string // prompt substring -> JSON reply
	err     error
}

func (m *scriptedModel) Complete(ctx context.Context, req textmodel.Request) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	for sub, reply := range m.replies {
		if strings.Contains(req.Prompt, sub) {
			return reply, nil
		}
	}
	return "", errors.New("no scripted reply")
}

func reply(t *testing.T, r analysisResult) string {
	t.Helper()
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func testArticle(url, marker string) *scrape.Article {
	return &scrape.Article{
		URL:   url,
		Title: "headline",
		Text:  marker + " body text with enough substance to analyze.",
	}
}

func fastConfig() Config {
	return Config{JitterMin: time.Nanosecond, JitterMax: 2 * time.Nanosecond}
}

func TestRun_FloorAndFailureIsolation(t *testing.T) {
	// WHAT: Three articles: one scores above the floor, one below, one gets a
	// malformed reply. Exactly one Summary comes back.
	// WHY: Per-item failure must shrink the output, never abort the stage.
	model := &scriptedModel{replies: map[string]string{
		"good": reply(t, analysisResult{Title: "Acme ships", KeyPoints: []string{"a", "b", "c"}, RelevanceScore: 8, PrimaryEntity: "Acme"}),
		"dull": reply(t, analysisResult{Title: "Acme blog", KeyPoints: []string{"x"}, RelevanceScore: 2, PrimaryEntity: "Acme"}),
		"junk": "not json at all",
	}}

	s := New(model, fastConfig())
	summaries := s.Run(context.Background(), []*scrape.Article{
		testArticle("https://n.example/good", "good"),
		testArticle("https://n.example/dull", "dull"),
		testArticle("https://n.example/junk", "junk"),
	}, []string{"Acme"})

	if len(summaries) != 1 {
		t.Fatalf("summaries: got %d, want 1", len(summaries))
	}
	got := summaries[0]
	if got.SourceURL != "https://n.example/good" || got.PrimaryEntity != "Acme" || got.RelevanceScore != 8 {
		t.Errorf("summary: %+v", got)
	}
}

func TestRun_MetadataDateFromArticle(t *testing.T) {
	// WHAT: The model input carries the article's publish date, not today's.
	var seenPrompt string
	model := capture(&seenPrompt, reply(t, analysisResult{
		Title: "t", KeyPoints: []string{"k"}, RelevanceScore: 5, PrimaryEntity: "Acme",
	}))

	article := testArticle("https://n.example/a", "dated")
	article.PublishedAt = time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)

	s := New(model, fastConfig())
	summaries := s.Run(context.Background(), []*scrape.Article{article}, []string{"Acme"})
	if len(summaries) != 1 {
		t.Fatalf("summaries: got %d, want 1", len(summaries))
	}
	if !strings.HasPrefix(seenPrompt, "METADATA_DATE: 2026-08-20\n") {
		t.Errorf("prompt head: %q", seenPrompt[:min(60, len(seenPrompt))])
	}
	if summaries[0].PublishedAt != "2026-08-20" {
		t.Errorf("published_at: got %q", summaries[0].PublishedAt)
	}
}

func TestRun_EntityOptionsInSystemPrompt(t *testing.T) {
	// WHAT: The watch-list names appear verbatim as classification options.
	var seenSystem string
	model := textmodel.Model(modelFunc(func(ctx context.Context, req textmodel.Request) (string, error) {
		seenSystem = req.System
		return reply(t, analysisResult{Title: "t", KeyPoints: []string{"k"}, RelevanceScore: 5, PrimaryEntity: "Industry"}), nil
	}))

	s := New(model, fastConfig())
	s.Run(context.Background(), []*scrape.Article{testArticle("https://n.example/a", "x")}, []string{"Acme Robotics", "Globex"})
	if !strings.Contains(seenSystem, "[Acme Robotics, Globex]") {
		t.Error("entity options missing from system prompt")
	}
}

func TestRun_OutOfRangeScoreDropped(t *testing.T) {
	// WHAT: A score of 0 or 11 is malformed output, dropped like any failure.
	model := &scriptedModel{replies: map[string]string{
		"x": reply(t, analysisResult{Title: "t", KeyPoints: []string{"k"}, RelevanceScore: 11, PrimaryEntity: "Acme"}),
	}}
	s := New(model, fastConfig())
	summaries := s.Run(context.Background(), []*scrape.Article{testArticle("https://n.example/a", "x")}, []string{"Acme"})
	if len(summaries) != 0 {
		t.Errorf("summaries: got %d, want 0", len(summaries))
	}
}

type modelFunc func(ctx context.Context, req textmodel.Request) (string, error)

func (f modelFunc) Complete(ctx context.Context, req textmodel.Request) (string, error) {
	return f(ctx, req)
}

func capture(dst *string, reply string) textmodel.Model {
	return modelFunc(func(ctx context.Context, req textmodel.Request) (string, error) {
		*dst = req.Prompt
		return reply, nil
	})
}
