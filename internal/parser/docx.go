package parser

import (
	"fmt"
	"os"
	"strings"

	"github.com/dgallion1/docsections/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files as a single page of newline-joined paragraphs.
type DOCXParser struct{}

func (p *DOCXParser) Extract(path string) ([]doctree.Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat docx: %w", err)
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var paragraphs []string
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		paragraphs = append(paragraphs, docxParagraphText(para))
	}

	return []doctree.Page{{PageNum: 1, Text: strings.Join(paragraphs, "\n")}}, nil
}

// docxParagraphText concatenates the text runs of a paragraph as written.
func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return buf.String()
}
