package extract

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docsections/internal/doctree"
)

const SectionPrompt = `You are a document parser. Given the following page, extract its main sections and for each section, provide:
- subject_title (section header)
- section_type (guess if not explicit)
- starting_page_no
- ending_page_no
- entities (list of key named entities, e.g. company names, dates, financial figures, etc.)
- subsections (leave empty for now)

Format your output as a JSON list, as in this example:
[
  {
    "subject_title": "<section_header>",
    "section_type": "Document Title",
    "starting_page_no": 1,
    "ending_page_no": 1,
    "entities": [{"company name": "Amazon", "publication year": "2024"}],
    "subsections": []
  },
  ...
]`

// BuildPagePrompt appends the page number and the page text, verbatim, to SectionPrompt.
func BuildPagePrompt(page doctree.Page) string {
	var sb strings.Builder
	sb.WriteString(SectionPrompt)
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Page %d:\n", page.PageNum))
	sb.WriteString(page.Text)
	sb.WriteString("\n")
	return sb.String()
}

// EstimateTokens gives a rough token count using a words-based heuristic.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	tokens := int(float64(words) * 1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}
