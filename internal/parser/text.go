package parser

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/dgallion1/docsections/internal/doctree"
)

// ErrInvalidUTF8 is returned for text files that are not valid UTF-8.
var ErrInvalidUTF8 = errors.New("file is not valid UTF-8")

// TextParser handles plain text files as a single page.
type TextParser struct{}

func (p *TextParser) Extract(path string) ([]doctree.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read text file: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("read text file: %w", ErrInvalidUTF8)
	}
	return []doctree.Page{{PageNum: 1, Text: string(data)}}, nil
}
