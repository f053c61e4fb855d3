package refextract

import (
	"reflect"
	"testing"

	"github.com/dzhu8/GoFetch-sub002/internal/ocr"
)

// refDoc builds a single-page document whose reference blocks contain
// the given texts, in order.
func refDoc(texts ...string) *ocr.Document {
	page := ocr.Page{Index: 0}
	for i, t := range texts {
		page.Blocks = append(page.Blocks, ocr.Block{
			Label: ocr.LabelReference,
			Text:  t,
			Order: i,
		})
	}
	return &ocr.Document{Pages: []ocr.Page{page}}
}

func TestExtractStarterSplit(t *testing.T) {
	doc := refDoc("1. Smith, A. Title one.\n2. Jones, B. Title two.")

	refs := Extract(doc)
	if len(refs) != 2 {
		t.Fatalf("got %d references, want 2", len(refs))
	}
	if refs[0].RefNum != 1 || refs[1].RefNum != 2 {
		t.Errorf("refNums = %d, %d; want 1, 2", refs[0].RefNum, refs[1].RefNum)
	}
	if refs[0].Index != 0 || refs[1].Index != 1 {
		t.Errorf("indexes = %d, %d; want 0, 1", refs[0].Index, refs[1].Index)
	}
	if refs[0].SearchTerm != "Title one" {
		t.Errorf("refs[0].SearchTerm = %q, want %q", refs[0].SearchTerm, "Title one")
	}
	if refs[1].SearchTerm != "Title two" {
		t.Errorf("refs[1].SearchTerm = %q, want %q", refs[1].SearchTerm, "Title two")
	}
}

func TestExtractDeHyphenation(t *testing.T) {
	doc := refDoc("12. Smith, A. A study of continu-\nation of work in progress.")

	refs := Extract(doc)
	if len(refs) != 1 {
		t.Fatalf("got %d references, want 1", len(refs))
	}
	want := "Smith, A. A study of continuation of work in progress."
	if refs[0].Text != want {
		t.Errorf("Text = %q, want %q", refs[0].Text, want)
	}
}

func TestExtractURLContinuation(t *testing.T) {
	doc := refDoc("3. Doe, J. Data pipelines. https://doi.org/\n10.1234/abcd.5678")

	refs := Extract(doc)
	if len(refs) != 1 {
		t.Fatalf("got %d references, want 1", len(refs))
	}
	if !refs[0].IsDOI {
		t.Fatalf("IsDOI = false, want true; text %q", refs[0].Text)
	}
	if refs[0].SearchTerm != "10.1234/abcd.5678" {
		t.Errorf("SearchTerm = %q, want %q", refs[0].SearchTerm, "10.1234/abcd.5678")
	}
}

func TestExtractDOIWrapNotMistakenForStarter(t *testing.T) {
	// A wrapped bare DOI opens with "10." and would read as entry number
	// ten; it must join the open entry while a real tenth entry still
	// starts one.
	doc := refDoc("9. Roe, K. Graph methods survey. doi.org/\n10.9999/survey.42\n10. Poe, L. Tenth entry title.")

	refs := Extract(doc)
	if len(refs) != 2 {
		t.Fatalf("got %d references, want 2", len(refs))
	}
	if !refs[0].IsDOI || refs[0].SearchTerm != "10.9999/survey.42" {
		t.Errorf("refs[0] = (%v, %q), want DOI 10.9999/survey.42", refs[0].IsDOI, refs[0].SearchTerm)
	}
	if refs[1].RefNum != 10 {
		t.Errorf("refs[1].RefNum = %d, want 10", refs[1].RefNum)
	}
}

func TestExtractDOIPrecedence(t *testing.T) {
	doc := refDoc(`7. Smith, A. "A quoted title here". DOI:10.1000/xyz123.`)

	refs := Extract(doc)
	if len(refs) != 1 {
		t.Fatalf("got %d references, want 1", len(refs))
	}
	if !refs[0].IsDOI {
		t.Error("IsDOI = false, want true (DOI wins over quoted title)")
	}
	if refs[0].SearchTerm != "10.1000/xyz123" {
		t.Errorf("SearchTerm = %q, want %q", refs[0].SearchTerm, "10.1000/xyz123")
	}
}

func TestExtractOrphanPrefixAttachesToNextEntry(t *testing.T) {
	// The first block opens mid-entry: its text belongs in front of the
	// entry opened by the following starter... but with no prior entry it
	// is held and prepended to the first one that appears.
	doc := refDoc(
		"continued fragment from previous page",
		"4. Brown, C. Fresh entry title text.",
	)

	refs := Extract(doc)
	if len(refs) != 1 {
		t.Fatalf("got %d references, want 1", len(refs))
	}
	want := "continued fragment from previous page Brown, C. Fresh entry title text."
	if refs[0].Text != want {
		t.Errorf("Text = %q, want %q", refs[0].Text, want)
	}
	if len(refs[0].Blocks) != 2 {
		t.Errorf("provenance blocks = %d, want 2", len(refs[0].Blocks))
	}
}

func TestExtractContinuationBlockJoinsCurrentEntry(t *testing.T) {
	doc := refDoc(
		"8. Green, D. An extremely long reference entry that",
		"wraps into the following OCR block entirely.",
	)

	refs := Extract(doc)
	if len(refs) != 1 {
		t.Fatalf("got %d references, want 1", len(refs))
	}
	want := "Green, D. An extremely long reference entry that wraps into the following OCR block entirely."
	if refs[0].Text != want {
		t.Errorf("Text = %q, want %q", refs[0].Text, want)
	}
}

func TestExtractDropsCitationMarkerLines(t *testing.T) {
	doc := refDoc("5. White, E. Some reference title.\nCitation:\nmore of the entry text.")

	refs := Extract(doc)
	if len(refs) != 1 {
		t.Fatalf("got %d references, want 1", len(refs))
	}
	want := "White, E. Some reference title. more of the entry text."
	if refs[0].Text != want {
		t.Errorf("Text = %q, want %q", refs[0].Text, want)
	}
}

func TestExtractNoisyStarter(t *testing.T) {
	// Up to two non-digit noise characters before the number.
	doc := refDoc("| 9. Black, F. Noise resistant entry title.")

	refs := Extract(doc)
	if len(refs) != 1 {
		t.Fatalf("got %d references, want 1", len(refs))
	}
	if refs[0].RefNum != 9 {
		t.Errorf("RefNum = %d, want 9", refs[0].RefNum)
	}
}

func TestExtractFiltersShortSearchTerms(t *testing.T) {
	doc := refDoc("1. Ab.\n2. Jones, B. A perfectly usable reference title.")

	refs := Extract(doc)
	if len(refs) != 1 {
		t.Fatalf("got %d references, want 1", len(refs))
	}
	for _, r := range refs {
		if len(r.SearchTerm) <= MinSearchTermLength {
			t.Errorf("SearchTerm %q violates length invariant", r.SearchTerm)
		}
	}
}

func TestExtractIgnoresNonReferenceBlocks(t *testing.T) {
	doc := &ocr.Document{Pages: []ocr.Page{{
		Index: 0,
		Blocks: []ocr.Block{
			{Label: ocr.LabelTitle, Text: "1. Not a reference despite the number.", Order: 0},
			{Label: "text", Text: "2. Body text with a numbered list.", Order: 1},
			{Label: ocr.LabelReference, Text: "3. Real, R. The only actual reference entry.", Order: 2},
		},
	}}}

	refs := Extract(doc)
	if len(refs) != 1 {
		t.Fatalf("got %d references, want 1", len(refs))
	}
	if refs[0].RefNum != 3 {
		t.Errorf("RefNum = %d, want 3", refs[0].RefNum)
	}
}

func TestExtractBBoxFallbackOrdering(t *testing.T) {
	// No block order reported: sort by page, then bbox top, then left.
	doc := &ocr.Document{Pages: []ocr.Page{{
		Index: 0,
		Blocks: []ocr.Block{
			{Label: ocr.LabelReference, Text: "2. Second, S. Lower block entry text.", Order: ocr.OrderUnknown, Y: 500},
			{Label: ocr.LabelReference, Text: "1. First, F. Upper block entry text.", Order: ocr.OrderUnknown, Y: 100},
		},
	}}}

	refs := Extract(doc)
	if len(refs) != 2 {
		t.Fatalf("got %d references, want 2", len(refs))
	}
	if refs[0].RefNum != 1 || refs[1].RefNum != 2 {
		t.Errorf("order = %d, %d; want 1, 2", refs[0].RefNum, refs[1].RefNum)
	}
}

func TestExtractDeterministic(t *testing.T) {
	doc := refDoc(
		"1. Smith, A. First title of interest. Journal of Things 12(3), 45-67.",
		"2. Jones, B. Second title of inter-\nest. DOI:10.5555/98765.",
		"stray continuation text",
	)

	first := Extract(doc)
	second := Extract(doc)
	if !reflect.DeepEqual(first, second) {
		t.Error("identical input produced different outputs")
	}
}

func TestExtractMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		doc  *ocr.Document
	}{
		{name: "nil document", doc: nil},
		{name: "no pages", doc: &ocr.Document{}},
		{name: "empty pages", doc: &ocr.Document{Pages: []ocr.Page{{Index: 0}}}},
		{name: "no reference blocks", doc: &ocr.Document{Pages: []ocr.Page{{
			Blocks: []ocr.Block{{Label: "text", Text: "body"}},
		}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if refs := Extract(tt.doc); len(refs) != 0 {
				t.Errorf("got %d references, want 0", len(refs))
			}
		})
	}
}

func TestJoinFragment(t *testing.T) {
	tests := []struct {
		name string
		cur  string
		frag string
		want string
	}{
		{"hyphen wrap", "continu-", "ation", "continuation"},
		{"hyphen before digit keeps hyphen", "figure 3-", "4", "figure 3- 4"},
		{"url continuation", "see https://example.org/a", "b/c", "see https://example.org/ab/c"},
		{"doi continuation", "10.1234/ab", "cd", "10.1234/abcd"},
		{"plain join", "first part", "second part", "first part second part"},
		{"empty current", "", "text", "text"},
		{"empty fragment", "text", "", "text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := joinFragment(tt.cur, tt.frag); got != tt.want {
				t.Errorf("joinFragment(%q, %q) = %q, want %q", tt.cur, tt.frag, got, tt.want)
			}
		})
	}
}
