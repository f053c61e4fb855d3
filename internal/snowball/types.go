// Package snowball builds a bounded two-hop citation neighborhood
// around a source document and ranks the pooled candidates by a
// bibliographic-coupling / co-citation blend.
package snowball

import (
	"context"

	"github.com/dzhu8/GoFetch-sub002/internal/scholar"
)

// Request is the engine entry point input. SearchTerms[i] is a DOI when
// IsDOI[i] is true, otherwise a title to search for. SeedTitle/SeedDOI
// identify the source document itself.
type Request struct {
	SearchTerms []string `json:"searchTerms"`
	IsDOI       []bool   `json:"isDoiFlags"`
	SeedTitle   string   `json:"seedTitle"`
	SeedDOI     string   `json:"seedDoi,omitempty"`
}

// RankedPaper is one recommended paper, ready for display. All three
// scores are in [0,1] and Score = 0.5*BCScore + 0.5*CCScore.
type RankedPaper struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Snippet    string  `json:"snippet,omitempty"`
	Authors    string  `json:"authors,omitempty"`
	Year       int     `json:"year,omitempty"`
	Venue      string  `json:"venue,omitempty"`
	Domain     string  `json:"domain,omitempty"`
	IsAcademic bool    `json:"isAcademic"`
	Score      float64 `json:"score"`
	BCScore    float64 `json:"bcScore"`
	CCScore    float64 `json:"ccScore"`
}

// Result is the engine output. RankedPapers is score-descending and
// holds at most the configured top N. Counters report how much of the
// graph the run managed to resolve; a degenerate run has all zeros.
type Result struct {
	SeedID          string        `json:"seedId,omitempty"`
	RankedPapers    []RankedPaper `json:"rankedPapers"`
	TotalCandidates int           `json:"totalCandidates"`
	ResolvedCount   int           `json:"resolvedCount"`
}

// GraphAPI is the slice of the graph client the builder consumes. All
// methods degrade to empty results on failure; none of them block past
// the rate limiter's schedule and the per-request timeout.
type GraphAPI interface {
	ResolveDOI(ctx context.Context, doi string) (*scholar.Paper, bool)
	ResolveTitle(ctx context.Context, title string) (*scholar.Paper, bool)
	Edges(ctx context.Context, nodeID string, dir scholar.Direction) []string
	BatchMetadata(ctx context.Context, nodeIDs []string) map[string]scholar.Paper
}
