package main

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Pushpachoudary/Qurey-Stream/readers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Chunkify(t *testing.T) {
	var cases = []struct {
		input   string
		size    int
		overlap int
		output  []string
	}{
		{input: "abcdefg", size: 3, overlap: 0, output: []string{"abc", "def", "g"}},
		{input: "abcdefg", size: 3, overlap: 1, output: []string{"abc", "cde", "efg"}},
		{input: "abcdefg", size: 9, overlap: 5, output: []string{"abcdefg"}},
		{input: "", size: 9, overlap: 5, output: []string{}},
	}

	for i, c := range cases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			out := chunkify(c.input, c.size, c.overlap)
			assert.Equal(t, c.output, out)
		})
	}
}

func Test_Split_ShortTextIsOneChunk(t *testing.T) {
	s := NewRecursiveSplitter(400, 100)
	out := s.Split("A short page.")
	assert.Equal(t, []string{"A short page."}, out)
}

func Test_Split_EmptyText(t *testing.T) {
	s := NewRecursiveSplitter(400, 100)
	assert.Empty(t, s.Split(""))
}

func Test_Split_PrefersParagraphBreaks(t *testing.T) {
	s := NewRecursiveSplitter(30, 10)
	text := "first paragraph here\n\nsecond paragraph here\n\nthird one"

	out := s.Split(text)

	require.Greater(t, len(out), 1)
	for _, chunk := range out {
		assert.LessOrEqual(t, len(chunk), 30)
	}
	assert.Equal(t, "first paragraph here\n\n", out[0])
}

func Test_Split_FallsBackToSentences(t *testing.T) {
	s := NewRecursiveSplitter(30, 10)
	text := "One sentence. Another one? A third! And more words here."

	for _, chunk := range s.Split(text) {
		assert.LessOrEqual(t, len(chunk), 30)
	}
}

func Test_Split_HardSplitsSeparatorFreeRuns(t *testing.T) {
	s := NewRecursiveSplitter(10, 2)
	text := strings.Repeat("x", 35)

	out := s.Split(text)

	require.Greater(t, len(out), 1)
	for _, chunk := range out {
		assert.LessOrEqual(t, len(chunk), 10)
	}
	assert.Equal(t, "xxxxxxxxxx", out[0])
}

// Chunks must appear in document order and cover the whole input: the first
// chunk starts the text, every chunk begins inside or right after the previous
// one, and the last chunk ends the text.
func assertCovers(t *testing.T, text string, chunks []string) {
	t.Helper()

	require.NotEmpty(t, chunks)
	assert.True(t, strings.HasPrefix(text, chunks[0]))
	assert.True(t, strings.HasSuffix(text, chunks[len(chunks)-1]))

	pos := 0
	end := 0
	for i, chunk := range chunks {
		at := strings.Index(text[pos:], chunk)
		require.GreaterOrEqual(t, at, 0, "chunk %d not found in order: %q", i, chunk)
		start := pos + at
		require.LessOrEqual(t, start, end, "gap before chunk %d", i)
		end = start + len(chunk)
		pos = start
	}
	assert.Equal(t, len(text), end)
}

func Test_Split_NoContentLoss(t *testing.T) {
	words := make([]string, 0, 60)
	for i := range 60 {
		words = append(words, fmt.Sprintf("w%02d", i))
	}

	var digits strings.Builder
	for i := range 40 {
		fmt.Fprintf(&digits, "%03d", i)
	}

	var cases = []string{
		"Paris is the capital of France. Berlin is the capital of Germany. Madrid is the capital of Spain. Rome is the capital of Italy. Lisbon is the capital of Portugal.",
		"alpha\n\nbeta\n\ngamma delta epsilon zeta eta theta iota kappa\n\n" + strings.Join(words, " "),
		digits.String(),
	}

	for i, text := range cases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			s := NewRecursiveSplitter(50, 10)
			assertCovers(t, text, s.Split(text))
		})
	}
}

func Test_SplitPages(t *testing.T) {
	s := NewRecursiveSplitter(400, 100)
	pages := []readers.Page{
		{Number: 1, Text: strings.Repeat("First page. ", 30)},
		{Number: 2, Text: "Second page."},
		{Number: 3, Text: strings.Repeat("Third page. ", 25)},
	}

	chunks := s.SplitPages(pages, "report", 777)

	require.GreaterOrEqual(t, len(chunks), 2)
	for i, c := range chunks {
		assert.Equal(t, fmt.Sprintf("report_%d", i), c.ID)
		assert.Equal(t, "report", c.Doc)
		assert.Equal(t, uint32(777), c.Crc)
		assert.Contains(t, []int{1, 2, 3}, c.Page)
	}
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, 3, chunks[len(chunks)-1].Page)
}
