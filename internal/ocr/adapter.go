package ocr

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnrecognizedShape indicates the payload matched none of the known
// OCR provider shapes. Callers can distinguish this from plain JSON
// syntax errors with errors.Is.
var ErrUnrecognizedShape = errors.New("unrecognized OCR payload shape")

// adapter attempts to parse raw payload bytes into a Document. It
// returns false when the payload does not match the shape it knows.
type adapter func(data []byte) (*Document, bool)

// adapters in match order: the native shape first, then provider shapes.
var adapters = []adapter{parseNative, parseLayout}

// ParseDocument parses an untrusted OCR payload into a Document, trying
// each known provider shape in turn. An empty document (pages present
// but no recognized blocks) is valid; a payload that matches no shape
// returns ErrUnrecognizedShape so the condition stays observable.
func ParseDocument(data []byte) (*Document, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("invalid OCR JSON: %w", ErrUnrecognizedShape)
	}
	for _, parse := range adapters {
		if doc, ok := parse(data); ok {
			return doc, nil
		}
	}
	return nil, ErrUnrecognizedShape
}

// parseNative handles the canonical shape: {"pages":[{"index":N,"blocks":[...]}]}.
func parseNative(data []byte) (*Document, bool) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false
	}
	if doc.Pages == nil {
		return nil, false
	}
	// Reject payloads that decoded but carry none of the native markers:
	// a native page has an explicit blocks array.
	hasBlocks := false
	for i := range doc.Pages {
		if doc.Pages[i].Blocks != nil {
			hasBlocks = true
		}
		if doc.Pages[i].Index == 0 && i > 0 {
			doc.Pages[i].Index = i
		}
		normalizeLabels(doc.Pages[i].Blocks)
	}
	if !hasBlocks {
		return nil, false
	}
	return &doc, true
}

// layoutPayload is the layout-analysis provider shape: bbox arrays,
// block_type labels, optional nested children.
type layoutPayload struct {
	Pages []struct {
		Page   int           `json:"page"`
		Blocks []layoutBlock `json:"items"`
	} `json:"pages"`
}

type layoutBlock struct {
	BlockType string        `json:"block_type"`
	Text      string        `json:"text"`
	ID        string        `json:"id"`
	Order     *int          `json:"order"`
	BBox      []float64     `json:"bbox"`
	Children  []layoutBlock `json:"children"`
}

// parseLayout handles the layout-analysis shape:
// {"pages":[{"page":N,"items":[{"block_type":...,"bbox":[x0,y0,x1,y1],...}]}]}.
func parseLayout(data []byte) (*Document, bool) {
	var payload layoutPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, false
	}
	if len(payload.Pages) == 0 {
		return nil, false
	}
	matched := false
	doc := &Document{Pages: make([]Page, 0, len(payload.Pages))}
	for i, p := range payload.Pages {
		if p.Blocks != nil {
			matched = true
		}
		page := Page{Index: p.Page}
		if page.Index == 0 && i > 0 {
			page.Index = i
		}
		for _, b := range p.Blocks {
			page.Blocks = append(page.Blocks, convertLayoutBlock(b))
		}
		doc.Pages = append(doc.Pages, page)
	}
	if !matched {
		return nil, false
	}
	return doc, true
}

func convertLayoutBlock(b layoutBlock) Block {
	blk := Block{
		Label: canonicalLabel(b.BlockType),
		Text:  b.Text,
		ID:    b.ID,
		Order: OrderUnknown,
	}
	if b.Order != nil {
		blk.Order = *b.Order
	}
	if len(b.BBox) >= 2 {
		blk.X = b.BBox[0]
		blk.Y = b.BBox[1]
	}
	for _, c := range b.Children {
		blk.Children = append(blk.Children, convertLayoutBlock(c))
	}
	return blk
}

// referenceLabels and titleLabels map provider vocabularies onto the two
// labels the pipeline recognizes.
var referenceLabels = map[string]bool{
	"reference":    true,
	"references":   true,
	"bibliography": true,
	"citation":     true,
	"ref":          true,
}

var titleLabels = map[string]bool{
	"title":          true,
	"document_title": true,
	"documenttitle":  true,
	"doc_title":      true,
}

func canonicalLabel(raw string) string {
	l := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case referenceLabels[l]:
		return LabelReference
	case titleLabels[l]:
		return LabelTitle
	default:
		return l
	}
}

func normalizeLabels(blocks []Block) {
	for i := range blocks {
		blocks[i].Label = canonicalLabel(blocks[i].Label)
		normalizeLabels(blocks[i].Children)
	}
}
