package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docsections/internal/doctree"
)

// Extractor turns a file on disk into an ordered list of pages.
type Extractor interface {
	Extract(path string) ([]doctree.Page, error)
}

// UnsupportedFileTypeError is returned for any extension without an extractor.
type UnsupportedFileTypeError struct {
	Ext string
}

func (e *UnsupportedFileTypeError) Error() string {
	if e.Ext == "" {
		return "unsupported file type: no extension"
	}
	return fmt.Sprintf("unsupported file type: %s", e.Ext)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
}

// ForFile returns the appropriate extractor for a filename.
func ForFile(filename string) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	default:
		return nil, &UnsupportedFileTypeError{Ext: ext}
	}
}

// Extract reads the file at path and returns its pages.
func Extract(path string) ([]doctree.Page, error) {
	x, err := ForFile(path)
	if err != nil {
		return nil, err
	}
	return x.Extract(path)
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
