// CLAUDE:SUMMARY Quality gate heuristics: block markers, paywall triggers, paragraph-structure check, truncation.
package scrape

import (
	"fmt"
	"strings"
)

// blockMarkers indicate an anti-bot interstitial rather than an article.
// Their presence anywhere in the text forces the rendered tier (and rejects
// a rendered result that still carries them).
var blockMarkers = []string{
	"cloudflare ray id",
	"security service",
	"checking your browser",
	"enable javascript and cookies",
}

// paywallTriggers are checked against the head of the text only; article
// bodies legitimately mention subscriptions further down.
var paywallTriggers = []string{
	"subscription required",
	"subscribe to read",
	"log in to continue",
	"access this article",
	"create an account",
	"verify you are human",
	"turn on javascript",
}

const headSample = 1000

// hasBlockMarker reports whether text looks like an anti-bot interstitial.
func hasBlockMarker(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range blockMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// gate validates extracted text as a real article body. It returns an error
// wrapping ErrRejected describing the first failed check.
func (e *Engine) gate(text string) error {
	if text == "" {
		return fmt.Errorf("%w: empty", ErrRejected)
	}
	if len(text) < e.config.MinChars {
		return fmt.Errorf("%w: %d chars, need %d", ErrRejected, len(text), e.config.MinChars)
	}

	head := text
	if len(head) > headSample {
		head = head[:headSample]
	}
	head = strings.ToLower(head)
	for _, trigger := range paywallTriggers {
		if strings.Contains(head, trigger) {
			return fmt.Errorf("%w: paywall trigger %q", ErrRejected, trigger)
		}
	}

	if hasBlockMarker(text) {
		return fmt.Errorf("%w: block marker", ErrRejected)
	}

	// Headlines and nav items rarely exceed ~100 chars; real paragraphs do.
	// Requiring two substantial lines separates an article body from a
	// navigation/sidebar dump that happens to be long in aggregate.
	long := 0
	for _, line := range strings.Split(text, "\n") {
		if len(strings.TrimSpace(line)) >= e.config.MinParagraphChars {
			long++
		}
	}
	if long < e.config.MinParagraphs {
		return fmt.Errorf("%w: %d substantial paragraphs, need %d", ErrRejected, long, e.config.MinParagraphs)
	}

	return nil
}

// truncate caps text at MaxChars with an explicit marker. Oversized content
// is kept, never rejected.
func (e *Engine) truncate(text string) (string, bool) {
	if len(text) <= e.config.MaxChars {
		return text, false
	}
	return text[:e.config.MaxChars] + "... [truncated]", true
}
