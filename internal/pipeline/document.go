package pipeline

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dgallion1/docsections/internal/doctree"
	"github.com/dgallion1/docsections/internal/extract"
)

// OutputFilename is the name offered for the downloadable JSON artifact.
const OutputFilename = "parsed_document.json"

// Document is the outcome of processing one uploaded file.
type Document struct {
	ID          string            `json:"id"`
	Filename    string            `json:"filename"`
	Pages       int               `json:"pages"`
	ContentHash string            `json:"content_hash"`
	Records     []doctree.Record  `json:"sections"`
	Warnings    []extract.Warning `json:"warnings"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Summary counts records by section_type.
func (d *Document) Summary() map[string]int {
	out := make(map[string]int)
	for _, r := range d.Records {
		t := r.SectionType()
		if t == "" {
			t = "(untyped)"
		}
		out[t]++
	}
	return out
}

// EncodeRecords writes records as a 2-space indented JSON array. Non-ASCII
// and HTML-significant characters are written as-is.
func EncodeRecords(w io.Writer, records []doctree.Record) error {
	if records == nil {
		records = []doctree.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
