package snowball

import "sort"

// scoredCandidate accumulates hit counts for one candidate during
// scoring. Lifetime is a single run; nothing is shared across runs.
type scoredCandidate struct {
	id      string
	bcHits  int
	ccHits  int
	bcScore float64
	ccScore float64
	score   float64
}

// scoreCandidates computes the bibliographic-coupling / co-citation
// blend for every pooled candidate and returns them score-descending,
// ties broken by pooling order.
//
// bcHits counts depth-1 nodes whose citing set contains the candidate;
// ccHits counts depth-1 nodes whose cited set contains it, plus one for
// citing the seed directly, clamped so one highly connected candidate
// cannot dominate on volume alone. This hit-counting is kept exactly as
// shipped rather than normalized to textbook coupling definitions.
func scoreCandidates(candidates, depth1 []string, expansions []expansion, seedCitations map[string]bool) []scoredCandidate {
	refSets := make([]map[string]bool, len(depth1))
	citeSets := make([]map[string]bool, len(depth1))
	for i := range depth1 {
		refSets[i] = toSet(expansions[i].refs)
		citeSets[i] = toSet(expansions[i].cites)
	}

	denom := len(depth1)
	if denom < 1 {
		denom = 1
	}

	scored := make([]scoredCandidate, 0, len(candidates))
	for _, id := range candidates {
		c := scoredCandidate{id: id}
		for i := range depth1 {
			if citeSets[i][id] {
				c.bcHits++
			}
			if refSets[i][id] {
				c.ccHits++
			}
		}
		if seedCitations[id] {
			c.ccHits++
		}
		if c.ccHits > denom {
			c.ccHits = denom
		}
		c.bcScore = float64(c.bcHits) / float64(denom)
		c.ccScore = float64(c.ccHits) / float64(denom)
		c.score = 0.5*c.bcScore + 0.5*c.ccScore
		scored = append(scored, c)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	return scored
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
