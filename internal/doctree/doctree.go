package doctree

import (
	"encoding/json"
	"errors"
)

// Fallback section types emitted when a page cannot be turned into model output.
const (
	SectionNoContent    = "No Content"
	SectionNotDetected  = "No Section Detected"
	SectionParsingError = "Parsing Error"
)

// Page is one unit of extracted text.
type Page struct {
	PageNum int    `json:"page_num"` // 1-based
	Text    string `json:"text"`     // may be empty
}

// Section is the record shape the model is asked to produce.
type Section struct {
	SubjectTitle   *string          `json:"subject_title"`
	SectionType    string           `json:"section_type"`
	StartingPageNo int              `json:"starting_page_no"`
	EndingPageNo   int              `json:"ending_page_no"`
	Entities       []map[string]any `json:"entities"`
	Subsections    []Section        `json:"subsections"`
	RawText        string           `json:"raw_text,omitempty"`
}

// Fallback builds a placeholder section bounded to a single page.
func Fallback(sectionType string, page Page, rawText string) Section {
	return Section{
		SectionType:    sectionType,
		StartingPageNo: page.PageNum,
		EndingPageNo:   page.PageNum,
		Entities:       []map[string]any{},
		Subsections:    []Section{},
		RawText:        rawText,
	}
}

// Record is one element of the output list, kept as the exact JSON value it
// was produced as. Model output is never reshaped into a Section.
type Record json.RawMessage

// NewRecord encodes a section as a record.
func NewRecord(s Section) (Record, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return Record(b), nil
}

// MustRecord is NewRecord for sections known to encode.
func MustRecord(s Section) Record {
	r, err := NewRecord(s)
	if err != nil {
		panic(err)
	}
	return r
}

func (r Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	return r, nil
}

func (r *Record) UnmarshalJSON(b []byte) error {
	if r == nil {
		return errors.New("doctree.Record: UnmarshalJSON on nil pointer")
	}
	*r = append((*r)[0:0], b...)
	return nil
}

// Section decodes the record. Records from the model may not have the
// expected shape, in which case an error is returned.
func (r Record) Section() (Section, error) {
	var s Section
	err := json.Unmarshal(r, &s)
	return s, err
}

// SectionType returns the record's section_type, or "" when absent or not a string.
func (r Record) SectionType() string {
	var probe struct {
		SectionType any `json:"section_type"`
	}
	if err := json.Unmarshal(r, &probe); err != nil {
		return ""
	}
	s, _ := probe.SectionType.(string)
	return s
}
