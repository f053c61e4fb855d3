package refextract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/dzhu8/GoFetch-sub002/internal/ocr"
)

// starterRe recognizes the opening line of a numbered bibliography
// entry: up to two non-digit noise characters (OCR artifacts), a 1-4
// digit number, a literal period, optional whitespace, then the entry
// text. One pattern covers clean and noisy variants.
var starterRe = regexp.MustCompile(`^[^0-9]{0,2}([0-9]{1,4})\.\s*(.*)$`)

// citationMarkerRe matches bare "Citation:" lines, an OCR artifact that
// is dropped rather than stitched.
var citationMarkerRe = regexp.MustCompile(`(?i)^\s*citation:?\s*$`)

// urlTailRe reports whether text ends mid-URL or mid-DOI, in which case
// a wrapped continuation concatenates with no inserted space.
var urlTailRe = regexp.MustCompile(`(?i)(https?://\S*|www\.\S*|doi\.org/\S*|\b10\.\d{4,9}/\S*)$`)

// doiLineRe recognizes a line opening with a bare DOI. Such a line also
// satisfies starterRe ("10" + period), but it is a wrapped identifier
// continuation, never a new entry.
var doiLineRe = regexp.MustCompile(`^10\.\d{4,9}/`)

// Extract turns an OCR document into the ordered list of parsed
// bibliography entries. It is deterministic and never fails: malformed
// or bibliography-free input yields an empty slice.
func Extract(doc *ocr.Document) []ParsedReference {
	if doc == nil {
		return nil
	}
	blocks := collectBlocks(doc)
	orderBlocks(blocks)

	var segments []segment
	for _, b := range blocks {
		segments = append(segments, splitBlock(b)...)
	}
	return stitch(segments)
}

// collectBlocks gathers reference-labeled blocks from all pages, with
// whitespace normalized and provenance recorded.
func collectBlocks(doc *ocr.Document) []RawBlock {
	var out []RawBlock
	for _, page := range doc.Pages {
		walkBlocks(page.Blocks, func(b ocr.Block) {
			if b.Label != ocr.LabelReference {
				return
			}
			text := normalizeText(b.Text)
			if text == "" {
				return
			}
			out = append(out, RawBlock{
				Page:  page.Index,
				ID:    b.ID,
				Order: b.Order,
				X:     b.X,
				Y:     b.Y,
				Text:  text,
			})
		})
	}
	return out
}

func walkBlocks(blocks []ocr.Block, fn func(ocr.Block)) {
	for _, b := range blocks {
		fn(b)
		walkBlocks(b.Children, fn)
	}
}

// normalizeText unifies line endings, collapses whitespace runs within
// each line, and drops empty lines. Line boundaries are preserved
// because starter detection is line-based.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// orderBlocks sorts by (page, block order) when the provider reported a
// reading order for every block; otherwise by (page, bbox top, bbox
// left). Reported order wins because visual position is unreliable for
// multi-column layouts.
func orderBlocks(blocks []RawBlock) {
	ordered := true
	for _, b := range blocks {
		if b.Order == ocr.OrderUnknown {
			ordered = false
			break
		}
	}
	sort.SliceStable(blocks, func(i, j int) bool {
		a, b := blocks[i], blocks[j]
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		if ordered {
			return a.Order < b.Order
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
}

// segment is a run of lines within one block that belongs to a single
// entry: either it opens an entry (starter) or continues the previous
// one. A block containing N starters yields at least N segments.
type segment struct {
	block   RawBlock
	index   int // segment position within its block
	starter bool
	refNum  int
	lines   []string // starter line already stripped of its number marker
	raw     []string // original lines, kept as fragments
}

func splitBlock(b RawBlock) []segment {
	var segs []segment
	cur := segment{block: b}
	flush := func() {
		if len(cur.lines) > 0 || len(cur.raw) > 0 {
			cur.index = len(segs)
			segs = append(segs, cur)
		}
	}
	for _, line := range strings.Split(b.Text, "\n") {
		if citationMarkerRe.MatchString(line) {
			continue
		}
		if m := starterRe.FindStringSubmatch(line); m != nil && !doiLineRe.MatchString(line) {
			flush()
			cur = segment{block: b, starter: true, refNum: atoiSafe(m[1])}
			cur.raw = append(cur.raw, line)
			if m[2] != "" {
				cur.lines = append(cur.lines, m[2])
			}
			continue
		}
		cur.raw = append(cur.raw, line)
		cur.lines = append(cur.lines, line)
	}
	flush()
	return segs
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

// entryBuilder is the mutable accumulator for one in-progress entry,
// finalized into an immutable ParsedReference when the next entry opens.
type entryBuilder struct {
	refNum    int
	parts     []string
	fragments []string
	blocks    []BlockRef
}

func (e *entryBuilder) add(seg segment) {
	for _, line := range seg.lines {
		if len(e.parts) == 0 {
			e.parts = append(e.parts, line)
		} else {
			e.parts[len(e.parts)-1] = joinFragment(e.parts[len(e.parts)-1], line)
		}
	}
	e.fragments = append(e.fragments, seg.raw...)
	e.blocks = append(e.blocks, blockRef(seg.block))
}

// prepend attaches orphan fragments (text stitched before any entry
// existed) to the front of the entry.
func (e *entryBuilder) prepend(orphans []orphan) {
	var parts []string
	var frags []string
	var blocks []BlockRef
	for _, o := range orphans {
		parts = append(parts, o.text)
		frags = append(frags, o.raw...)
		blocks = append(blocks, o.block)
	}
	e.parts = append(parts, e.parts...)
	e.fragments = append(frags, e.fragments...)
	e.blocks = append(blocks, e.blocks...)
}

func (e *entryBuilder) finalize(index int) (ParsedReference, bool) {
	text := strings.TrimSpace(strings.Join(e.parts, " "))
	key, isDOI := ExtractKey(text)
	if len(key) <= MinSearchTermLength {
		return ParsedReference{}, false
	}
	return ParsedReference{
		RefNum:     e.refNum,
		Index:      index,
		Text:       text,
		SearchTerm: key,
		IsDOI:      isDOI,
		Fragments:  e.fragments,
		Blocks:     e.blocks,
	}, true
}

// orphan is a continuation fragment seen before any entry exists. It is
// held in a pending queue and prepended to the first entry that opens.
type orphan struct {
	text  string
	raw   []string
	block BlockRef
}

func blockRef(b RawBlock) BlockRef {
	return BlockRef{Page: b.Page, ID: b.ID, Order: b.Order, X: b.X, Y: b.Y}
}

// joinFragment appends a wrapped line to accumulated text. A trailing
// hyphen followed by a letter is a soft line wrap and de-hyphenates; a
// trailing URL/DOI continues with no inserted space; everything else
// joins with a single space.
func joinFragment(cur, frag string) string {
	if cur == "" {
		return frag
	}
	if frag == "" {
		return cur
	}
	if strings.HasSuffix(cur, "-") && startsWithLetter(frag) {
		return strings.TrimSuffix(cur, "-") + frag
	}
	if urlTailRe.MatchString(cur) {
		return cur + frag
	}
	return cur + " " + frag
}

func startsWithLetter(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// stitch walks segments in order, maintaining the current entry and the
// pending orphan queue, and flushes completed entries to the output.
func stitch(segments []segment) []ParsedReference {
	var out []ParsedReference
	var cur *entryBuilder
	var orphans []orphan

	flush := func() {
		if cur == nil {
			return
		}
		if ref, ok := cur.finalize(len(out)); ok {
			out = append(out, ref)
		}
		cur = nil
	}

	for _, seg := range segments {
		if seg.starter {
			flush()
			cur = &entryBuilder{refNum: seg.refNum}
			if len(orphans) > 0 {
				cur.prepend(orphans)
				orphans = nil
			}
			cur.add(seg)
			continue
		}
		if cur != nil {
			cur.add(seg)
			continue
		}
		orphans = append(orphans, orphan{
			text:  joinLines(seg.lines),
			raw:   seg.raw,
			block: blockRef(seg.block),
		})
	}

	// Orphans still pending at end of document attach to the last entry.
	if len(orphans) > 0 && cur != nil {
		for _, o := range orphans {
			cur.parts = append(cur.parts, o.text)
			cur.fragments = append(cur.fragments, o.raw...)
			cur.blocks = append(cur.blocks, o.block)
		}
	}
	flush()
	return out
}

func joinLines(lines []string) string {
	joined := ""
	for _, l := range lines {
		joined = joinFragment(joined, l)
	}
	return joined
}
