package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/presswatch/dbopen"
	"github.com/hazyhaar/presswatch/internal/report"
	"github.com/hazyhaar/presswatch/internal/store"
)

func testStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(dbopen.OpenMemory(t, dbopen.WithSchema(store.Schema)))
}

func TestSeenURLs_RoundTrip(t *testing.T) {
	// WHAT: URLs persist across loads and re-adding is a no-op.
	s := testStore(t)
	ctx := context.Background()

	if err := s.AddSeenURLs(ctx, []string{"https://a.example/1", "https://a.example/2"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.AddSeenURLs(ctx, []string{"https://a.example/2", "https://a.example/3"}); err != nil {
		t.Fatalf("re-add: %v", err)
	}

	urls, err := s.LoadSeenURLs(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(urls) != 3 {
		t.Errorf("urls: got %d (%v), want 3", len(urls), urls)
	}
}

func TestReports_SaveListGet(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first := &report.Report{
		ID:               "r1",
		GeneratedAt:      time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC),
		ExecutiveSummary: []string{"Acme shipped."},
		Sections:         []report.Section{{Entity: "Acme Robotics", Narrative: "Details."}},
	}
	second := &report.Report{
		ID:          "r2",
		GeneratedAt: time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC),
	}
	for _, r := range []*report.Report{first, second} {
		if err := s.SaveReport(ctx, r); err != nil {
			t.Fatalf("save %s: %v", r.ID, err)
		}
	}

	metas, err := s.ListReports(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(metas) != 2 || metas[0].ID != "r2" || metas[1].ID != "r1" {
		t.Fatalf("list order: %+v", metas)
	}
	if metas[1].Sections != 1 {
		t.Errorf("sections: got %d, want 1", metas[1].Sections)
	}

	got, err := s.GetReport(ctx, "r1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Sections[0].Entity != "Acme Robotics" || got.ExecutiveSummary[0] != "Acme shipped." {
		t.Errorf("report: %+v", got)
	}

	md, err := s.GetReportMarkdown(ctx, "r1")
	if err != nil {
		t.Fatalf("markdown: %v", err)
	}
	if md == "" {
		t.Error("empty markdown")
	}
}

func TestGetReport_NotFound(t *testing.T) {
	s := testStore(t)
	if _, err := s.GetReport(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
	if _, err := s.GetReportMarkdown(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("markdown: got %v, want ErrNotFound", err)
	}
}
