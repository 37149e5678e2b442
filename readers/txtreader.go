package readers

import (
	"fmt"
	"os"
	"path/filepath"
)

type TxtFileReader struct{}

func (r *TxtFileReader) CanRead(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".txt"
}

func (r *TxtFileReader) ReadPages(path string) ([]Page, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading text file: %w", err)
	}

	return []Page{{Number: 1, Text: string(buf)}}, nil
}
