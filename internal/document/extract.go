// Package document turns an uploaded file into plain text ready to be
// summarized.
package document

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// MaxChars caps the text handed to the model.
const MaxChars = 10000

const truncatedSuffix = "... (content truncated)"

var (
	ErrUnsupported = errors.New("unsupported file type")
	ErrEmpty       = errors.New("no readable content extracted from file")
)

// Supported lists the accepted extensions.
var Supported = []string{".pdf", ".docx", ".txt", ".md"}

var controlChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)

// Extract returns the sanitized text of a file named name. The extension
// decides the format.
func Extract(name string, data []byte) (string, error) {
	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md":
		text = string(data)
	case ".pdf":
		text, err = pdfText(data)
	case ".docx":
		text, err = docxText(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupported, filepath.Ext(name))
	}
	if err != nil {
		return "", err
	}

	text = Sanitize(text)
	if text == "" {
		return "", ErrEmpty
	}
	return text, nil
}

// Sanitize strips control characters, collapses whitespace runs to one
// space and truncates to MaxChars characters.
func Sanitize(text string) string {
	text = strings.ToValidUTF8(text, "")
	text = controlChars.ReplaceAllString(text, "")
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) > MaxChars {
		text = string([]rune(text)[:MaxChars]) + truncatedSuffix
	}
	return text
}

// pdfText concatenates the plain text of every page.
func pdfText(data []byte) (text string, err error) {
	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("read pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	return string(b), nil
}

// docxText reads the paragraphs of the main document part.
func docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer doc.Close()
	return wordprocessingText(strings.NewReader(doc.Editable().GetContent()))
}

// wordprocessingText collects <w:t> runs, breaking lines at paragraphs,
// tabs and explicit breaks.
func wordprocessingText(r io.Reader) (string, error) {
	var (
		sb     strings.Builder
		inText bool
	)
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse docx body: %w", err)
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
