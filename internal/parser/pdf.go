package parser

import (
	"fmt"

	"github.com/dgallion1/docsections/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files, one page record per physical page.
type PDFParser struct{}

func (p *PDFParser) Extract(path string) ([]doctree.Page, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages := make([]doctree.Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		pages = append(pages, doctree.Page{PageNum: i, Text: pageText(reader, i)})
	}
	return pages, nil
}

// pageText returns "" for any page the library cannot read.
func pageText(reader *pdflib.Reader, num int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	page := reader.Page(num)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}
