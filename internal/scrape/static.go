// CLAUDE:SUMMARY Static extraction: goquery DOM pruning, bluemonday sanitation, HTML→markdown conversion, meta lookup.
package scrape

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// boilerplateSelectors name DOM subtrees that never carry article text.
const boilerplateSelectors = "script, style, noscript, template, nav, footer, header, aside, form, iframe, svg, button"

// pageMeta is metadata pulled from the document head before pruning.
type pageMeta struct {
	Title       string
	PublishedAt string
}

// extractHTML turns a raw HTML document into main-content markdown plus
// head metadata. An empty string means nothing article-like was found.
func (e *Engine) extractHTML(body []byte, pageURL string) (string, pageMeta) {
	// Sniff the document charset; plenty of news sites still serve
	// non-UTF-8 encodings.
	var reader io.Reader = bytes.NewReader(body)
	if decoded, err := charset.NewReader(reader, ""); err == nil {
		reader = decoded
	}
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return "", pageMeta{}
	}

	meta := readMeta(doc)

	doc.Find(boilerplateSelectors).Remove()

	// Prefer semantic main-content containers over the whole body.
	sel := doc.Find("article").First()
	if sel.Length() == 0 {
		sel = doc.Find("main").First()
	}
	if sel.Length() == 0 {
		sel = doc.Find("body").First()
	}
	if sel.Length() == 0 {
		return "", meta
	}

	inner, err := sel.Html()
	if err != nil || strings.TrimSpace(inner) == "" {
		return "", meta
	}

	sanitized := e.sanitizer.Sanitize(inner)

	md, err := e.converter.ConvertString(sanitized, converter.WithDomain(pageURL))
	if err != nil {
		return "", meta
	}
	return collapseBlankLines(strings.TrimSpace(md)), meta
}

// readMeta pulls the title and publish date from head metadata.
func readMeta(doc *goquery.Document) pageMeta {
	var m pageMeta

	if v, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		m.Title = strings.TrimSpace(v)
	}
	if m.Title == "" {
		m.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	for _, sel := range []string{
		`meta[property="article:published_time"]`,
		`meta[name="date"]`,
		`meta[itemprop="datePublished"]`,
	} {
		if v, ok := doc.Find(sel).Attr("content"); ok && strings.TrimSpace(v) != "" {
			m.PublishedAt = strings.TrimSpace(v)
			break
		}
	}
	if m.PublishedAt == "" {
		if v, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
			m.PublishedAt = strings.TrimSpace(v)
		}
	}
	return m
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

func collapseBlankLines(s string) string {
	return blankRuns.ReplaceAllString(s, "\n\n")
}
