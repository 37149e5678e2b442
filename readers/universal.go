package readers

import (
	"fmt"
	"path/filepath"

	"code.sajari.com/docconv/v2"
)

// UniversalFileReader handles office formats through docconv. It has no page
// awareness, so the whole document surfaces as one page.
type UniversalFileReader struct {
}

func (r *UniversalFileReader) CanRead(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".docx" || ext == ".odt" || ext == ".xml"
}

func (r *UniversalFileReader) ReadPages(path string) ([]Page, error) {
	res, err := docconv.ConvertPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	return []Page{{Number: 1, Text: res.Body}}, nil
}
