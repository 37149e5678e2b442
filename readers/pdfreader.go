package readers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Page is a single page of extracted document text. Number is 1-based and
// carried through to chunk metadata unmodified.
type Page struct {
	Number int
	Text   string
}

type PdfFileReader struct {
}

func (r *PdfFileReader) CanRead(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".pdf"
}

func (r *PdfFileReader) ReadPages(path string) ([]Page, error) {
	f, doc, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf document: %w", err)
	}
	defer f.Close()

	var pages []Page
	for i := 1; i <= doc.NumPage(); i++ {
		p := doc.Page(i)
		if p.V.IsNull() {
			continue
		}

		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d: %w", i, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		pages = append(pages, Page{Number: i, Text: text})
	}

	return pages, nil
}
