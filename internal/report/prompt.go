package report

import "fmt"

// synthesisSystemPrompt instructs the model to merge one bucket's key points
// into a single cohesive section. Citations carry the publication name, not
// the word "Source".
func synthesisSystemPrompt(today string, isUnclassified bool) string {
	scope := "The input is the grouped news for ONE watched entity."
	if isUnclassified {
		scope = "The input is miscellaneous industry news not tied to any watched entity. Write a brief roundup."
	}
	return fmt.Sprintf(`You are the editor of a market intelligence report. Today is %s. %s

Write:
- "bullet": one executive-summary bullet stating the single most significant development, naming the entity.
- "narrative": ONE cohesive paragraph combining all the key points below. Use specific figures, dates and names from the input. Do not write one paragraph per article; merge them.

CITATIONS:
- Cite the source URL inline, at the end of the sentence it supports, as a markdown link.
- Link text must be the publication name (for techcrunch.com write [TechCrunch](url)). Never use the word "Source" as link text.

If the input contains nothing significant, write exactly "no significant news" as the narrative.`, today, scope)
}
