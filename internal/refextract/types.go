// Package refextract reconstructs bibliography entries from block-level
// OCR output and derives a search key (DOI or title) for each entry.
package refextract

// RawBlock is one bibliography-labeled OCR block, normalized and tagged
// with provenance. Produced and consumed within a single extraction pass.
type RawBlock struct {
	Page  int
	ID    string
	Order int // ocr.OrderUnknown when the provider reported no order
	X     float64
	Y     float64
	Text  string
}

// BlockRef records which OCR block a piece of stitched text came from.
type BlockRef struct {
	Page  int     `json:"page"`
	ID    string  `json:"blockId,omitempty"`
	Order int     `json:"order"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// ParsedReference is one fully stitched bibliography entry.
//
// RefNum is the 1-based number parsed from the page; entries are ordered
// by stitching position, not by RefNum, so callers must not assume the
// numbers are contiguous or sorted. Index is the 0-based output position.
type ParsedReference struct {
	RefNum     int        `json:"refNum"`
	Index      int        `json:"index"`
	Text       string     `json:"text"`
	SearchTerm string     `json:"searchTerm"`
	IsDOI      bool       `json:"isDoi"`
	Fragments  []string   `json:"fragments"`
	Blocks     []BlockRef `json:"blocks"`
}

// DocumentMetadata is the source document's own title and DOI. Empty
// strings mean the field was not found; that is not an error.
type DocumentMetadata struct {
	Title string `json:"title,omitempty"`
	DOI   string `json:"doi,omitempty"`
}
