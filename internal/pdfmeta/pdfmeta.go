// Package pdfmeta extracts seed document metadata (DOI, title) straight
// from a PDF file, for callers that have the original document but no
// OCR payload for it.
package pdfmeta

import (
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/dzhu8/GoFetch-sub002/internal/refextract"
)

// maxScanPages bounds the scan; front matter carries the identifiers.
const maxScanPages = 3

// Extract reads the first few pages of the PDF and returns whatever
// title and DOI it can find. Missing fields are empty, not errors; only
// an unreadable file fails.
func Extract(filePath string) (refextract.DocumentMetadata, error) {
	var meta refextract.DocumentMetadata

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return meta, err
	}
	defer f.Close()

	pages := r.NumPage()
	if pages > maxScanPages {
		pages = maxScanPages
	}

	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		if meta.DOI == "" {
			meta.DOI = refextract.ExtractDOI(text)
		}
		if meta.Title == "" && i == 1 {
			meta.Title = firstTitleLine(text)
		}
		if meta.DOI != "" && meta.Title != "" {
			break
		}
	}

	return meta, nil
}

// firstTitleLine picks the first substantial line of the first page,
// skipping obvious running heads.
func firstTitleLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if len(line) > 20 && !isHeaderLine(line) {
			return line
		}
	}
	return ""
}

func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "journal"):
		return true
	case strings.Contains(lower, "volume") && strings.Contains(lower, "issue"):
		return true
	case strings.Contains(lower, "copyright"):
		return true
	case strings.Contains(lower, "preprint"):
		return true
	}
	return false
}
