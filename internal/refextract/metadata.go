package refextract

import (
	"strings"

	"github.com/dzhu8/GoFetch-sub002/internal/ocr"
)

// metadataPageLimit bounds the metadata scan: titles and DOIs live on
// the front matter, not deep in the document.
const metadataPageLimit = 3

// minTitleLength filters out running heads and page furniture that OCR
// sometimes labels as a title.
const minTitleLength = 10

// ExtractMetadata derives the source document's own title and DOI from
// the first few pages. Both fields degrade to empty when absent.
func ExtractMetadata(doc *ocr.Document) DocumentMetadata {
	var meta DocumentMetadata
	if doc == nil {
		return meta
	}
	pages := doc.Pages
	if len(pages) > metadataPageLimit {
		pages = pages[:metadataPageLimit]
	}

	meta.Title = findTitle(pages)
	meta.DOI = findDocumentDOI(pages)
	return meta
}

// findTitle locates the earliest page carrying a qualifying
// title-labeled block. Multiple title blocks on that page are
// concatenated with a single space (OCR splits long titles).
func findTitle(pages []ocr.Page) string {
	for _, page := range pages {
		var parts []string
		walkBlocks(page.Blocks, func(b ocr.Block) {
			if b.Label != ocr.LabelTitle {
				return
			}
			text := strings.Join(strings.Fields(b.Text), " ")
			if len(text) > minTitleLength {
				parts = append(parts, text)
			}
		})
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
	}
	return ""
}

// findDocumentDOI scans blocks of any label in document order and stops
// at the first DOI hit.
func findDocumentDOI(pages []ocr.Page) string {
	for _, page := range pages {
		found := ""
		walkBlocks(page.Blocks, func(b ocr.Block) {
			if found != "" {
				return
			}
			if doi := ExtractDOI(b.Text); doi != "" {
				found = doi
			}
		})
		if found != "" {
			return found
		}
	}
	return ""
}
