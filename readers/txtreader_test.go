package readers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_TxtFileReader_CanRead(t *testing.T) {
	r := TxtFileReader{}
	assert.True(t, r.CanRead("some/file.txt"))
	assert.False(t, r.CanRead("some/file.pdf"))
}

func Test_TxtFileReader_ReadPages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	r := TxtFileReader{}
	pages, err := r.ReadPages(path)
	require.NoError(t, err)

	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, "hello world", pages[0].Text)
}
