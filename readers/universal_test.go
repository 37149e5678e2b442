package readers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_UniversalFileReader_CanRead(t *testing.T) {
	r := UniversalFileReader{}
	assert.True(t, r.CanRead("some/file.docx"))
	assert.True(t, r.CanRead("some/file.odt"))
	assert.True(t, r.CanRead("some/file.xml"))
	assert.False(t, r.CanRead("some/file.pdf"))
	assert.False(t, r.CanRead("some/file.txt"))
}

func Test_PdfFileReader_CanRead(t *testing.T) {
	r := PdfFileReader{}
	assert.True(t, r.CanRead("some/file.pdf"))
	assert.False(t, r.CanRead("some/file.docx"))
}
