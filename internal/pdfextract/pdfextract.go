// Package pdfextract turns PDF byte streams into page-ordered plain text,
// injecting markdown-style headers at spans whose font size or weight marks
// them as titles so the semantic chunker downstream can detect them as
// ordinary header lines.
//
// Built on github.com/ledongthuc/pdf, the only PDF library available in the
// reference corpus; no example usage of it was found there, so its calling
// convention below is written from the library's published API rather than
// from a grounded usage example.
package pdfextract

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	sentinelerrors "github.com/sentinel-rag/sentinel/internal/errors"
)

const (
	headerFontSizeMajor = 16.0
	headerFontSizeMinor = 14.0
	boldFontSizeMinor   = 12.0
	minHeaderSpanChars  = 3
)

var (
	runOfNewlines  = regexp.MustCompile(`\n{4,}`)
	runOfSpaces    = regexp.MustCompile(` {3,}`)
	hyphenatedWrap = regexp.MustCompile(`(\w)-\n(\w)`)
)

// Page is one extracted page's ordinal (1-indexed) and its normalized,
// header-annotated text.
type Page struct {
	Number int
	Text   string
}

// ExtractPages parses a PDF byte stream and returns its non-empty pages in
// page order. Pages whose trimmed text is empty are dropped.
func ExtractPages(data []byte) ([]Page, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, sentinelerrors.Extraction(sentinelerrors.ErrCodePDFOpenFailed, "failed to open PDF stream", err)
	}

	numPages := reader.NumPage()
	pages := make([]Page, 0, numPages)

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := extractPageText(page)
		if err != nil {
			return nil, sentinelerrors.Extraction(sentinelerrors.ErrCodePDFPageFailed, "failed to extract page text", err).
				WithDetail("page", strconv.Itoa(i))
		}

		text = normalizeWhitespace(text)
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, Page{Number: i, Text: text})
	}

	return pages, nil
}

// extractPageText renders a page's linearised plain text, then injects a
// header marker at every span whose font size/weight crosses the heading
// threshold.
func extractPageText(page pdf.Page) (string, error) {
	linear, err := page.GetPlainText(nil)
	if err != nil {
		return "", err
	}

	content := page.Content()
	for _, span := range content.Text {
		text := strings.TrimSpace(span.S)
		if len(text) < minHeaderSpanChars {
			continue
		}
		if !isHeaderSpan(span) {
			continue
		}
		level := "###"
		if span.FontSize > headerFontSizeMajor {
			level = "##"
		}
		linear = strings.Replace(linear, span.S, "\n"+level+" "+text+"\n", 1)
	}

	return linear, nil
}

func isHeaderSpan(span pdf.Text) bool {
	if span.FontSize > headerFontSizeMinor {
		return true
	}
	return span.FontSize > boldFontSizeMinor && isBoldFont(span.Font)
}

func isBoldFont(font string) bool {
	return strings.Contains(strings.ToLower(font), "bold")
}

// normalizeWhitespace collapses runs of blank lines and spaces and rejoins
// hyphenated line breaks produced by column justification.
func normalizeWhitespace(text string) string {
	text = runOfNewlines.ReplaceAllString(text, "\n\n\n")
	text = runOfSpaces.ReplaceAllString(text, "  ")
	text = hyphenatedWrap.ReplaceAllString(text, "$1$2")
	return text
}
