// Package ocr defines the typed schema for OCR service output and the
// adapters that parse known provider payload shapes into it.
package ocr

// Block labels recognized by the extraction pipeline. Providers use
// different vocabularies; adapters normalize to these two.
const (
	LabelReference = "reference"
	LabelTitle     = "title"
)

// OrderUnknown marks a block whose reading order was not reported.
const OrderUnknown = -1

// Document is a parsed OCR payload: an ordered sequence of pages.
type Document struct {
	Pages []Page `json:"pages"`
}

// Page holds the blocks detected on a single page. Index is 0-based.
type Page struct {
	Index  int     `json:"index"`
	Blocks []Block `json:"blocks"`
}

// Block is one OCR-detected text region. Order is the provider's reading
// order within the page (OrderUnknown when absent). X and Y are the
// bounding-box origin. Children holds nested sub-blocks for providers
// that emit hierarchical layouts.
type Block struct {
	Label    string  `json:"label"`
	Text     string  `json:"text"`
	ID       string  `json:"id,omitempty"`
	Order    int     `json:"order"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Children []Block `json:"children,omitempty"`
}
