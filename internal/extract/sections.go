package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/docsections/internal/doctree"
)

// Warning reports a page whose request failed.
type Warning struct {
	Page    int    `json:"page"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("Error parsing page %d: %s", w.Page, w.Message)
}

// Result is the flat output of one Parse call.
type Result struct {
	Records  []doctree.Record
	Warnings []Warning
}

// SectionParser turns pages into section records, one model call per non-empty page.
type SectionParser struct {
	completer Completer
	log       *slog.Logger
}

func NewSectionParser(completer Completer, log *slog.Logger) *SectionParser {
	if log == nil {
		log = slog.Default()
	}
	return &SectionParser{completer: completer, log: log}
}

// Parse processes pages strictly in order. A failure on one page becomes a
// fallback record for that page and never stops the rest.
func (p *SectionParser) Parse(ctx context.Context, pages []doctree.Page) Result {
	var res Result
	for _, page := range pages {
		recs, warn := p.parsePage(ctx, page)
		res.Records = append(res.Records, recs...)
		if warn != nil {
			res.Warnings = append(res.Warnings, *warn)
		}
	}
	return res
}

func (p *SectionParser) parsePage(ctx context.Context, page doctree.Page) (recs []doctree.Record, warn *Warning) {
	log := p.log.With("page", page.PageNum)

	if strings.TrimSpace(page.Text) == "" {
		log.Debug("empty page, skipping model call")
		return []doctree.Record{doctree.MustRecord(doctree.Fallback(doctree.SectionNoContent, page, ""))}, nil
	}

	defer func() {
		if r := recover(); r != nil {
			recs, warn = p.pageError(log, page, fmt.Errorf("panic: %v", r))
		}
	}()

	prompt := BuildPagePrompt(page)
	log.Debug("requesting sections", "prompt_tokens_est", EstimateTokens(prompt))

	content, err := p.completer.Complete(ctx, prompt)
	if err != nil {
		return p.pageError(log, page, err)
	}

	rec := RecoverSections(content)
	switch rec.Kind {
	case Malformed:
		return p.pageError(log, page, rec.Err)
	case Unparseable:
		log.Info("no sections recovered from model output", "response_len", len(content))
		return []doctree.Record{doctree.MustRecord(doctree.Fallback(doctree.SectionNotDetected, page, page.Text))}, nil
	}

	log.Debug("sections recovered", "count", len(rec.Records), "stage", rec.Stage)
	return rec.Records, nil
}

func (p *SectionParser) pageError(log *slog.Logger, page doctree.Page, err error) ([]doctree.Record, *Warning) {
	log.Warn("page parsing failed", "error", err)
	return []doctree.Record{doctree.MustRecord(doctree.Fallback(doctree.SectionParsingError, page, page.Text))},
		&Warning{Page: page.PageNum, Message: err.Error()}
}
