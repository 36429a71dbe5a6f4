package document

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtract_Text(t *testing.T) {
	doc, err := Extract("cv.TXT", []byte("\xef\xbb\xbfJane Doe\r\nBackend Engineer\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nBackend Engineer", doc.Text)
	assert.Equal(t, "txt", doc.Format)
	assert.Equal(t, len("Jane Doe\nBackend Engineer"), doc.Chars)
	assert.False(t, doc.Truncated)
}

func TestExtract_Markdown(t *testing.T) {
	doc, err := Extract("cv.md", []byte("# Jane Doe\n\n**Go** developer"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nGo developer", doc.Text)
	assert.Equal(t, "md", doc.Format)
}

func TestExtract_Docx(t *testing.T) {
	data := buildDocx(t, `<w:p><w:r><w:t>Jane</w:t></w:r><w:r><w:t xml:space="preserve"> Doe</w:t></w:r></w:p>`+
		`<w:p><w:r><w:t>Go</w:t><w:tab/><w:t>Kubernetes</w:t></w:r></w:p>`)

	doc, err := Extract("cv.docx", data)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nGo\tKubernetes", doc.Text)
	assert.Equal(t, "docx", doc.Format)
}

func TestExtract_Unsupported(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"cv.pdf", []byte("%PDF-1.4")},
		{"cv", []byte("text")},
		{"cv.docx", []byte("not a zip")},
		{"cv.txt", []byte{0xff, 0xfe, 'a'}},
		{"big.txt", bytes.Repeat([]byte("a"), MaxUploadBytes+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.name, tt.data)
			var ue *UnsupportedInputError
			require.True(t, errors.As(err, &ue), "got %v", err)
			assert.Equal(t, tt.name, ue.Name)
		})
	}
}

func TestExtract_Empty(t *testing.T) {
	_, err := Extract("cv.txt", []byte("  \n\t "))
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestExtract_Truncates(t *testing.T) {
	text := strings.Repeat("ş", MaxDocumentChars+10)
	doc, err := Extract("cv.txt", []byte(text))
	require.NoError(t, err)
	assert.True(t, doc.Truncated)
	assert.True(t, strings.HasSuffix(doc.Text, "[... TRUNCATED]"))
	assert.Equal(t, strings.Repeat("ş", MaxDocumentChars), strings.TrimSuffix(doc.Text, TruncationMarker))
}

func TestLimits_MaxChars(t *testing.T) {
	limits := Limits{MaxChars: 8}
	doc, err := limits.Extract("cv.txt", []byte("Jane Doe, Backend Engineer"))
	require.NoError(t, err)
	assert.True(t, doc.Truncated)
	assert.Equal(t, "Jane Doe"+TruncationMarker, doc.Text)
}

func TestLimits_MaxBytes(t *testing.T) {
	limits := Limits{MaxBytes: 4}
	_, err := limits.Extract("cv.txt", []byte("Jane Doe"))
	var ue *UnsupportedInputError
	require.True(t, errors.As(err, &ue), "got %v", err)
	assert.Contains(t, ue.Reason, "4 bytes")

	path := filepath.Join(t.TempDir(), "cv.txt")
	require.NoError(t, os.WriteFile(path, []byte("Jane Doe"), 0o644))
	_, err = limits.ReadFile(path)
	require.True(t, errors.As(err, &ue), "got %v", err)
}

func TestLimits_Formats(t *testing.T) {
	limits := Limits{Formats: []string{"txt", "MD"}}

	_, err := limits.Extract("cv.docx", buildDocx(t, `<w:p><w:r><w:t>Jane</w:t></w:r></w:p>`))
	var ue *UnsupportedInputError
	require.True(t, errors.As(err, &ue), "got %v", err)

	doc, err := limits.Extract("cv.markdown", []byte("# Jane"))
	require.NoError(t, err)
	assert.Equal(t, "Jane", doc.Text)

	_, err = Limits{Formats: []string{".pdf"}}.Extract("cv.pdf", []byte("%PDF"))
	require.True(t, errors.As(err, &ue), "got %v", err)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.txt")
	require.NoError(t, os.WriteFile(path, []byte("Jane Doe"), 0o644))

	doc, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "cv.txt", doc.Name)
	assert.Equal(t, "Jane Doe", doc.Text)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestExtractContact(t *testing.T) {
	c := ExtractContact(`Jane Doe
jane.doe@example.com | +90 532 123 45 67
linkedin.com/in/jane-doe · https://github.com/janedoe`)

	assert.Equal(t, Contact{
		Email:    "jane.doe@example.com",
		Phone:    "+90 532 123 45 67",
		LinkedIn: "https://linkedin.com/in/jane-doe",
		GitHub:   "https://github.com/janedoe",
	}, c)

	assert.Equal(t, Contact{}, ExtractContact("no contact details"))
}
