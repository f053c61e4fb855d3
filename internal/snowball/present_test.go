package snowball

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dzhu8/GoFetch-sub002/internal/scholar"
)

func TestDeriveURLPreference(t *testing.T) {
	tests := []struct {
		name       string
		paper      scholar.Paper
		wantURL    string
		wantDomain string
	}{
		{
			name: "arxiv wins over doi and pubmed",
			paper: scholar.Paper{
				URL:         "https://example.com/p",
				ExternalIDs: scholar.ExternalIDs{ArXiv: "2101.00001", DOI: "10.1/x", PubMed: "12345"},
			},
			wantURL:    "https://arxiv.org/abs/2101.00001",
			wantDomain: "arxiv.org",
		},
		{
			name: "doi wins over pubmed",
			paper: scholar.Paper{
				ExternalIDs: scholar.ExternalIDs{DOI: "10.1/x", PubMed: "12345"},
			},
			wantURL:    "https://doi.org/10.1/x",
			wantDomain: "doi.org",
		},
		{
			name: "pubmed",
			paper: scholar.Paper{
				ExternalIDs: scholar.ExternalIDs{PubMed: "12345"},
			},
			wantURL:    "https://pubmed.ncbi.nlm.nih.gov/12345/",
			wantDomain: "pubmed.ncbi.nlm.nih.gov",
		},
		{
			name:       "raw url fallback strips www",
			paper:      scholar.Paper{URL: "https://www.nature.com/articles/xyz"},
			wantURL:    "https://www.nature.com/articles/xyz",
			wantDomain: "nature.com",
		},
		{
			name:  "nothing available",
			paper: scholar.Paper{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotURL, gotDomain := deriveURL(tt.paper)
			assert.Equal(t, tt.wantURL, gotURL)
			assert.Equal(t, tt.wantDomain, gotDomain)
		})
	}
}

func TestIsAcademic(t *testing.T) {
	assert.True(t, isAcademic("arxiv.org", "https://arxiv.org/abs/1"))
	assert.True(t, isAcademic("dl.acm.org", "https://dl.acm.org/doi/1"))
	assert.True(t, isAcademic("journals.plos.org", "https://journals.plos.org/x"))
	assert.False(t, isAcademic("example.com", "https://example.com/paper"))
	assert.False(t, isAcademic("", ""))
}

func TestSnippetTruncation(t *testing.T) {
	short := "A short abstract."
	assert.Equal(t, short, snippet(short))

	long := strings.Repeat("x", snippetMaxLength+40)
	got := snippet(long)
	assert.Len(t, got, snippetMaxLength+3)
	assert.True(t, strings.HasSuffix(got, "..."))

	// Truncation counts runes, never splitting a multibyte character.
	wide := strings.Repeat("é", snippetMaxLength+1)
	assert.Equal(t, strings.Repeat("é", snippetMaxLength)+"...", snippet(wide))
}

func TestAuthorLine(t *testing.T) {
	tests := []struct {
		name    string
		authors []scholar.Author
		want    string
	}{
		{"empty", nil, ""},
		{"single", []scholar.Author{{Name: "A. Smith"}}, "A. Smith"},
		{
			"three exact",
			[]scholar.Author{{Name: "A"}, {Name: "B"}, {Name: "C"}},
			"A, B, C",
		},
		{
			"truncated with et al",
			[]scholar.Author{{Name: "A"}, {Name: "B"}, {Name: "C"}, {Name: "D"}},
			"A, B, C et al.",
		},
		{
			"blank names skipped",
			[]scholar.Author{{Name: ""}, {Name: "B"}},
			"B",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, authorLine(tt.authors))
		})
	}
}

func TestPresentCarriesScores(t *testing.T) {
	p := scholar.Paper{
		Title:    "T",
		Abstract: "An abstract.",
		Year:     2021,
		Venue:    "VLDB",
		Authors:  []scholar.Author{{Name: "A. Smith"}},
	}
	rp := present("id-1", p, 0.5, 0.25, 0.375)

	assert.Equal(t, "id-1", rp.ID)
	assert.Equal(t, "T", rp.Title)
	assert.Equal(t, 2021, rp.Year)
	assert.InDelta(t, 0.5, rp.BCScore, 1e-9)
	assert.InDelta(t, 0.25, rp.CCScore, 1e-9)
	assert.InDelta(t, 0.375, rp.Score, 1e-9)
}
