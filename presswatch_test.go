package presswatch_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	presswatch "github.com/hazyhaar/presswatch"
	"github.com/hazyhaar/presswatch/dbopen"
	"github.com/hazyhaar/presswatch/internal/search"
	"github.com/hazyhaar/presswatch/internal/store"
	"github.com/hazyhaar/presswatch/internal/textmodel"
)

type fakeSearcher struct {
	hits map[string][]search.Hit // query substring -> hits
}

func (f *fakeSearcher) Search(ctx context.Context, query string, since time.Time) ([]search.Hit, error) {
	for sub, hits := range f.hits {
		if strings.Contains(query, sub) {
			return hits, nil
		}
	}
	return nil, nil
}

type fakeExtractor struct {
	texts map[string]string // URL substring -> article text
}

func (f *fakeExtractor) Extract(ctx context.Context, pageURL string) (*presswatch.Article, error) {
	for sub, text := range f.texts {
		if strings.Contains(pageURL, sub) {
			return &presswatch.Article{URL: pageURL, Title: "extracted " + sub, Text: text}, nil
		}
	}
	return nil, errors.New("extraction failed")
}

// fakeModel answers analysis requests (input starts with METADATA_DATE) from
// the article text, and synthesis requests (input starts with ENTITY) with a
// fixed section.
type fakeModel struct{}

func (fakeModel) Complete(ctx context.Context, req textmodel.Request) (string, error) {
	if strings.HasPrefix(req.Prompt, "METADATA_DATE:") {
		if strings.Contains(req.Prompt, "acme") {
			return `{"title":"Acme ships robots","key_points":["shipped model X","raised series B","hired CTO"],"relevance_score":8,"primary_entity":"Acme Robotics"}`, nil
		}
		return `{"title":"Globex blog post","key_points":["minor update"],"relevance_score":2,"primary_entity":"Globex"}`, nil
	}
	return `{"bullet":"Acme Robotics shipped model X and raised a series B.","narrative":"Acme Robotics shipped model X and closed a series B round, expanding its robotics line. https://news.example/acme-launch"}`, nil
}

func testConfig() *presswatch.Config {
	cfg := &presswatch.Config{
		Watchlist: []presswatch.Entity{
			{Name: "Acme Robotics", Keywords: []string{"acme"}},
			{Name: "Globex", Keywords: []string{"globex"}},
		},
	}
	cfg.Collect.Delay = time.Nanosecond
	cfg.Analyze.JitterMin = time.Nanosecond
	cfg.Analyze.JitterMax = 2 * time.Nanosecond
	return cfg
}

func testService(t *testing.T, cfg *presswatch.Config) *presswatch.Service {
	t.Helper()
	db := dbopen.OpenMemory(t, dbopen.WithSchema(store.Schema))
	svc, err := presswatch.New(context.Background(), cfg, slog.New(slog.DiscardHandler),
		presswatch.WithSearcher(&fakeSearcher{hits: map[string][]search.Hit{
			"Acme Robotics": {
				{URL: "https://news.example/acme-launch", Title: "Acme launch", Score: 0.9},
				{URL: "https://news.example/acme-noise", Title: "acme mention", Score: 0.1},
			},
			"Globex": {
				{URL: "https://news.example/globex-blog", Title: "Globex blog", Score: 0.8},
			},
		}}),
		presswatch.WithExtractor(&fakeExtractor{texts: map[string]string{
			"acme":   "acme body text with details about the launch",
			"globex": "globex body text with a minor update",
		}}),
		presswatch.WithModel(fakeModel{}),
		presswatch.WithDB(db),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestRun_EndToEnd(t *testing.T) {
	// WHAT: Full pipeline over fakes: two entities, one low-score hit
	// filtered at collection, one summary filtered at the relevance floor.
	// One section survives, the report is persisted, and a second run finds
	// everything already seen.
	svc := testService(t, testConfig())
	ctx := context.Background()

	rep, err := svc.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(rep.Sections) != 1 || rep.Sections[0].Entity != "Acme Robotics" {
		t.Fatalf("sections: %+v", rep.Sections)
	}
	if len(rep.ExecutiveSummary) != 1 {
		t.Fatalf("executive summary: %v", rep.ExecutiveSummary)
	}
	if !strings.Contains(rep.Sections[0].Narrative, "[News.example](https://news.example/acme-launch)") {
		t.Errorf("citation not normalized: %q", rep.Sections[0].Narrative)
	}

	stored, err := svc.GetReport(ctx, rep.ID)
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if stored.ID != rep.ID || len(stored.Sections) != 1 {
		t.Errorf("stored report: %+v", stored)
	}

	metas, err := svc.ListReports(ctx, 10)
	if err != nil || len(metas) != 1 {
		t.Fatalf("list reports: %v, %+v", err, metas)
	}

	// Second run: same hits, all URLs now seen, so the pipeline produces
	// the placeholder report instead of failing.
	rep2, err := svc.Run(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(rep2.Sections) != 0 {
		t.Errorf("second run sections: %+v", rep2.Sections)
	}
	if len(rep2.ExecutiveSummary) != 1 || !strings.Contains(rep2.ExecutiveSummary[0], "No significant news") {
		t.Errorf("second run summary: %v", rep2.ExecutiveSummary)
	}
}

func TestRun_EmptyWatchlist(t *testing.T) {
	cfg := testConfig()
	cfg.Watchlist = nil
	svc := testService(t, cfg)

	if _, err := svc.Run(context.Background()); !errors.Is(err, presswatch.ErrEmptyWatchlist) {
		t.Errorf("got %v, want ErrEmptyWatchlist", err)
	}
}

func TestGetReport_NotFound(t *testing.T) {
	svc := testService(t, testConfig())
	if _, err := svc.GetReport(context.Background(), "nope"); !errors.Is(err, presswatch.ErrReportNotFound) {
		t.Errorf("got %v, want ErrReportNotFound", err)
	}
}
