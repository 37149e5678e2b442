package main

import (
	"fmt"
	"strings"

	"github.com/Pushpachoudary/Qurey-Stream/docstore"
	"github.com/Pushpachoudary/Qurey-Stream/readers"
)

// RecursiveSplitter splits text on a priority-ordered separator list,
// preferring the earliest separator that is present, and merges the pieces
// into chunks of at most chunkSize bytes with chunkOverlap bytes carried
// between consecutive chunks. A separator-free run longer than chunkSize is
// hard-split at the character level.
type RecursiveSplitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

func NewRecursiveSplitter(chunkSize, chunkOverlap int) *RecursiveSplitter {
	return &RecursiveSplitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   []string{"\n\n", "\n", ".", "?", "!", " ", ""},
	}
}

func (s *RecursiveSplitter) Split(text string) []string {
	if len(text) == 0 {
		return []string{}
	}

	return s.split(text, s.separators)
}

// SplitPages chunks every page, carrying its page number forward, and assigns
// ids sequentially across the whole document.
func (s *RecursiveSplitter) SplitPages(pages []readers.Page, docName string, crc uint32) []docstore.Chunk {
	var chunks []docstore.Chunk
	idx := 0
	for _, page := range pages {
		for _, text := range s.Split(page.Text) {
			chunks = append(chunks, docstore.Chunk{
				ID:   fmt.Sprintf("%s_%d", docName, idx),
				Text: text,
				Doc:  docName,
				Page: page.Number,
				Crc:  crc,
			})
			idx++
		}
	}

	return chunks
}

func (s *RecursiveSplitter) split(text string, separators []string) []string {
	if len(text) <= s.chunkSize {
		return []string{text}
	}

	sep := ""
	var rest []string
	for i, candidate := range separators {
		if candidate == "" || strings.Contains(text, candidate) {
			sep = candidate
			rest = separators[i+1:]
			break
		}
	}

	if sep == "" {
		return chunkify(text, s.chunkSize, s.chunkOverlap)
	}

	// Separators stay attached to the preceding piece, so concatenating the
	// pieces reproduces the input exactly.
	var pieces []string
	for _, p := range strings.SplitAfter(text, sep) {
		if p == "" {
			continue
		}
		if len(p) > s.chunkSize {
			pieces = append(pieces, s.split(p, rest)...)
		} else {
			pieces = append(pieces, p)
		}
	}

	return s.merge(pieces)
}

// merge greedily packs pieces into chunks of at most chunkSize bytes. When a
// chunk fills up, its trailing pieces totaling at most chunkOverlap bytes seed
// the next chunk.
func (s *RecursiveSplitter) merge(pieces []string) []string {
	var chunks []string
	var cur []string
	curLen := 0

	for _, p := range pieces {
		if curLen+len(p) > s.chunkSize && curLen > 0 {
			chunks = append(chunks, strings.Join(cur, ""))

			var keep []string
			keepLen := 0
			for i := len(cur) - 1; i >= 0; i-- {
				if keepLen+len(cur[i]) > s.chunkOverlap {
					break
				}
				keep = append([]string{cur[i]}, keep...)
				keepLen += len(cur[i])
			}
			cur, curLen = keep, keepLen

			// The overlap itself may leave no room for the next piece.
			for curLen+len(p) > s.chunkSize && len(cur) > 0 {
				curLen -= len(cur[0])
				cur = cur[1:]
			}
		}

		cur = append(cur, p)
		curLen += len(p)
	}

	if curLen > 0 {
		chunks = append(chunks, strings.Join(cur, ""))
	}

	return chunks
}

// chunkify hard-splits text into a sliding window of size bytes advancing by
// size-overlap, the last resort when no separator can keep a run within the
// size bound.
func chunkify(text string, size int, overlap int) []string {
	l := len(text)
	if l == 0 {
		return []string{}
	}

	step := size - overlap
	pos := 0
	res := make([]string, 0, l/step+1)

	for {
		end := min(pos+size, l)
		res = append(res, text[pos:end])
		if end >= l {
			break
		}

		pos += step
	}

	return res
}
