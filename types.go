// CLAUDE:SUMMARY Public aliases for the pipeline's data types so callers never import internal packages.
package presswatch

import (
	"github.com/hazyhaar/presswatch/internal/collect"
	"github.com/hazyhaar/presswatch/internal/report"
	"github.com/hazyhaar/presswatch/internal/scrape"
	"github.com/hazyhaar/presswatch/internal/store"
	"github.com/hazyhaar/presswatch/internal/summarize"
)

// Entity is one watched organisation.
type Entity = collect.Entity

// Article is the extracted full text of one page.
type Article = scrape.Article

// Summary is the structured analysis of one article.
type Summary = summarize.Summary

// Report is the terminal artifact of a run.
type Report = report.Report

// Section is one entity's narrative within a Report.
type Section = report.Section

// ReportMeta is the listing row for a stored report.
type ReportMeta = store.ReportMeta
