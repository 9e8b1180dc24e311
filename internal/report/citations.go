// CLAUDE:SUMMARY Citation normalization: bare URLs become labeled markdown links, "Source" labels get real names. Idempotent.
package report

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	markdownLinkRe = regexp.MustCompile(`\[([^\]]*)\]\((https?://[^)\s]+)\)`)
	bareURLRe      = regexp.MustCompile(`https?://[^\s()\[\]<>]+`)
)

// NormalizeCitations rewrites citations in synthesized text to labeled
// markdown links. Bare URLs are wrapped, and existing links whose text is
// empty or the word "Source" get a label derived from the URL's domain.
// Running it twice yields the same output.
func NormalizeCitations(text string) string {
	// Lift existing links out first so the bare-URL pass cannot touch their
	// targets, then relabel and restore them.
	var links []string
	text = markdownLinkRe.ReplaceAllStringFunc(text, func(m string) string {
		parts := markdownLinkRe.FindStringSubmatch(m)
		label, target := parts[1], parts[2]
		if label == "" || strings.EqualFold(label, "source") {
			label = domainLabel(target)
		}
		links = append(links, fmt.Sprintf("[%s](%s)", label, target))
		return placeholder(len(links) - 1)
	})

	text = bareURLRe.ReplaceAllStringFunc(text, func(m string) string {
		trimmed := strings.TrimRight(m, ".,;:")
		suffix := m[len(trimmed):]
		return fmt.Sprintf("[%s](%s)%s", domainLabel(trimmed), trimmed, suffix)
	})

	for i, link := range links {
		text = strings.Replace(text, placeholder(i), link, 1)
	}
	return text
}

func placeholder(i int) string { return fmt.Sprintf("\x00link:%d\x00", i) }

// domainLabel derives a readable publication label from a URL: the host
// without its www prefix, first letter upper-cased.
func domainLabel(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return "Link"
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	if host == "" {
		return "Link"
	}
	return strings.ToUpper(host[:1]) + host[1:]
}
