package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docsections/internal/doctree"
	"github.com/dgallion1/docsections/internal/extract"
	"github.com/dgallion1/docsections/internal/parser"
)

// Pipeline runs extraction and section parsing for one file at a time.
type Pipeline struct {
	sections *extract.SectionParser
	extract  func(path string) ([]doctree.Page, error)
	log      *slog.Logger
}

func New(sections *extract.SectionParser, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		sections: sections,
		extract:  parser.Extract,
		log:      log,
	}
}

// Extract returns the pages of the file at path. Errors are file-fatal.
func (p *Pipeline) Extract(path string) ([]doctree.Page, error) {
	pages, err := p.extract(path)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", filepath.Base(path), err)
	}
	return pages, nil
}

// Process extracts the file at path and parses every page. Extraction
// failures abort with no partial output; page failures are recorded as
// fallback records and warnings on the returned document.
func (p *Pipeline) Process(ctx context.Context, path string) (*Document, error) {
	filename := filepath.Base(path)
	log := p.log.With("filename", filename)

	pages, err := p.Extract(path)
	if err != nil {
		log.Error("extraction failed", "error", err)
		return nil, err
	}
	log.Info("extracted text", "pages", len(pages))

	start := time.Now()
	res := p.sections.Parse(ctx, pages)
	log.Info("parsing complete",
		"records", len(res.Records),
		"warnings", len(res.Warnings),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Document{
		ID:          uuid.NewString(),
		Filename:    filename,
		Pages:       len(pages),
		ContentHash: ContentHashHex([]byte(joinPages(pages))),
		Records:     res.Records,
		Warnings:    res.Warnings,
		CreatedAt:   time.Now(),
	}, nil
}

func joinPages(pages []doctree.Page) string {
	var sb strings.Builder
	for i, pg := range pages {
		if i > 0 {
			sb.WriteString("\f")
		}
		sb.WriteString(pg.Text)
	}
	return sb.String()
}
