// Package document extracts plain text from uploaded CV files.
package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/erenakay1/CV-Analizer/internal/markdown"
)

const (
	// MaxDocumentChars caps the text handed to the reasoning stages.
	MaxDocumentChars = 20000
	TruncationMarker = "\n\n[... TRUNCATED]"
	// MaxUploadBytes is the largest file accepted for extraction.
	MaxUploadBytes = 5 << 20
)

// Formats lists the accepted file extensions.
var Formats = []string{".txt", ".md", ".docx"}

// UnsupportedInputError is returned for files that cannot be read as a CV.
type UnsupportedInputError struct {
	Name   string
	Reason string
}

func (e *UnsupportedInputError) Error() string {
	return fmt.Sprintf("unsupported input %q: %s", e.Name, e.Reason)
}

var ErrEmptyDocument = errors.New("document contains no text")

type Document struct {
	Name      string `json:"name"`
	Format    string `json:"format"`
	Text      string `json:"text"`
	Chars     int    `json:"chars"`
	Truncated bool   `json:"truncated"`
}

// Limits bound what Extract accepts and how much text it keeps. Zero fields
// take the package defaults. Formats are extensions with or without the
// leading dot; only .txt, .md and .docx can ever be read.
type Limits struct {
	MaxChars int
	MaxBytes int
	Formats  []string
}

func DefaultLimits() Limits {
	return Limits{MaxChars: MaxDocumentChars, MaxBytes: MaxUploadBytes, Formats: Formats}
}

func (l Limits) withDefaults() Limits {
	if l.MaxChars <= 0 {
		l.MaxChars = MaxDocumentChars
	}
	if l.MaxBytes <= 0 {
		l.MaxBytes = MaxUploadBytes
	}
	if len(l.Formats) == 0 {
		l.Formats = Formats
	}
	return l
}

func (l Limits) allows(ext string) bool {
	if ext == ".markdown" {
		ext = ".md"
	}
	for _, f := range l.Formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if !strings.HasPrefix(f, ".") {
			f = "." + f
		}
		if f == ext {
			return true
		}
	}
	return false
}

func (l Limits) tooLarge(name string) error {
	return &UnsupportedInputError{Name: name, Reason: fmt.Sprintf("larger than %d bytes", l.MaxBytes)}
}

// ReadFile extracts the document at path with the default limits.
func ReadFile(path string) (*Document, error) {
	return DefaultLimits().ReadFile(path)
}

// Extract reads data with the default limits.
func Extract(name string, data []byte) (*Document, error) {
	return DefaultLimits().Extract(name, data)
}

// ReadFile extracts the document at path.
func (l Limits) ReadFile(path string) (*Document, error) {
	l = l.withDefaults()
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > int64(l.MaxBytes) {
		return nil, l.tooLarge(filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return l.Extract(filepath.Base(path), data)
}

// Extract reads data according to the extension of name.
func (l Limits) Extract(name string, data []byte) (*Document, error) {
	l = l.withDefaults()
	if len(data) > l.MaxBytes {
		return nil, l.tooLarge(name)
	}

	ext := strings.ToLower(filepath.Ext(name))
	if !l.allows(ext) {
		return nil, &UnsupportedInputError{Name: name, Reason: fmt.Sprintf("format %q is not one of %s", ext, strings.Join(l.Formats, ", "))}
	}
	var (
		text string
		err  error
	)
	switch ext {
	case ".txt":
		text, err = plainText(name, data)
	case ".md", ".markdown":
		text, err = plainText(name, data)
		if err == nil {
			text = markdown.ToPlainText([]byte(text))
		}
	case ".docx":
		text, err = docxText(data)
		if err != nil {
			err = &UnsupportedInputError{Name: name, Reason: err.Error()}
		}
	default:
		return nil, &UnsupportedInputError{Name: name, Reason: fmt.Sprintf("format %q cannot be read", ext)}
	}
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(norm.NFC.String(text))
	if text == "" {
		return nil, ErrEmptyDocument
	}

	doc := &Document{Name: name, Format: strings.TrimPrefix(ext, ".")}
	doc.Text, doc.Truncated = truncate(text, l.MaxChars)
	doc.Chars = utf8.RuneCountInString(doc.Text)
	return doc, nil
}

func plainText(name string, data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", &UnsupportedInputError{Name: name, Reason: "text is not valid UTF-8"}
	}
	return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
}

func truncate(text string, max int) (string, bool) {
	runes := []rune(text)
	if len(runes) <= max {
		return text, false
	}
	return string(runes[:max]) + TruncationMarker, true
}

// docxText returns the paragraphs of word/document.xml, one per line.
func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("not a docx archive: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		return wordText(io.LimitReader(rc, 8*MaxUploadBytes))
	}
	return "", fmt.Errorf("word/document.xml not found")
}

func wordText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		sb     strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("malformed document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}
