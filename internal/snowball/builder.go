package snowball

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/dzhu8/GoFetch-sub002/internal/scholar"
)

// ErrEmptyRequest is the one failure surfaced to callers: an invocation
// with nothing to work from. Network and parsing failures never
// propagate; they fold into the output counters.
var ErrEmptyRequest = errors.New("snowball: no search terms and no seed document")

// Defaults for the engine tunables.
const (
	DefaultResolveBatchSize = 5
	DefaultExpandBatchSize  = 3
	DefaultTopN             = 50
)

// Options are the engine tunables. Zero values take the defaults.
type Options struct {
	// ResolveBatchSize bounds concurrent reference-resolution calls.
	ResolveBatchSize int
	// ExpandBatchSize bounds concurrent frontier nodes per expansion
	// batch (two edge calls per node).
	ExpandBatchSize int
	// TopN caps the ranked output.
	TopN int
}

func (o Options) withDefaults() Options {
	if o.ResolveBatchSize <= 0 {
		o.ResolveBatchSize = DefaultResolveBatchSize
	}
	if o.ExpandBatchSize <= 0 {
		o.ExpandBatchSize = DefaultExpandBatchSize
	}
	if o.TopN <= 0 {
		o.TopN = DefaultTopN
	}
	return o
}

// Engine runs the snowball phases against a graph API. One Engine is
// safe for concurrent Run calls: all accumulation state is local to a
// run.
type Engine struct {
	api  GraphAPI
	log  *zap.Logger
	opts Options
}

// NewEngine creates an Engine. A nil logger disables logging.
func NewEngine(api GraphAPI, log *zap.Logger, opts Options) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{api: api, log: log, opts: opts.withDefaults()}
}

// expansion holds one depth-1 node's two edge sets.
type expansion struct {
	refs  []string // outgoing: what the node cites
	cites []string // incoming: what cites the node
}

// Run executes the ordered phases: seed resolution, depth-1 resolution,
// seed citations, frontier expansion, candidate pooling, scoring, top-N
// selection, metadata hydration, presentation mapping. No phase starts
// before the prior one's calls have all settled.
func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	if len(req.SearchTerms) == 0 && req.SeedTitle == "" && req.SeedDOI == "" {
		return nil, ErrEmptyRequest
	}

	res := &Result{RankedPapers: []RankedPaper{}}

	// Phase 1: seed resolution. A missing seed is tolerated; the
	// co-citation score just loses its direct cites-seed contribution.
	seedID := e.resolveSeed(ctx, req)
	res.SeedID = seedID

	// Phase 2: depth-1 resolution in bounded concurrent batches.
	depth1, resolvedCount := e.resolveDepth1(ctx, req)
	res.ResolvedCount = resolvedCount
	e.log.Info("depth-1 resolved",
		zap.Int("terms", len(req.SearchTerms)),
		zap.Int("resolved", resolvedCount),
		zap.Int("unique", len(depth1)))

	// Phase 3: nodes citing the seed (secondary co-citation signal).
	seedCitations := make(map[string]bool)
	if seedID != "" {
		for _, id := range e.api.Edges(ctx, seedID, scholar.Citations) {
			seedCitations[id] = true
		}
	}

	// Phase 4: frontier expansion, both directions per depth-1 node.
	expansions := e.expandFrontier(ctx, depth1)

	// Phase 5: candidate pooling. Depth-1 nodes and the seed are
	// excluded: an already-cited work is never recommended back.
	depth1Set := make(map[string]bool, len(depth1))
	for _, id := range depth1 {
		depth1Set[id] = true
	}
	var candidates []string
	seen := make(map[string]bool)
	for i := range depth1 {
		exp := expansions[i]
		for _, id := range append(append([]string{}, exp.refs...), exp.cites...) {
			if seen[id] || depth1Set[id] || id == seedID {
				continue
			}
			seen[id] = true
			candidates = append(candidates, id)
		}
	}
	res.TotalCandidates = len(candidates)
	if len(candidates) == 0 {
		e.log.Info("no candidates pooled", zap.String("seed", seedID))
		return res, nil
	}

	// Phase 6: scoring.
	scored := scoreCandidates(candidates, depth1, expansions, seedCitations)

	// Phase 7: top-N selection.
	if len(scored) > e.opts.TopN {
		scored = scored[:e.opts.TopN]
	}

	// Phase 8: metadata hydration for exactly the selected ids.
	ids := make([]string, len(scored))
	for i, s := range scored {
		ids[i] = s.id
	}
	meta := e.api.BatchMetadata(ctx, ids)

	// Phase 9: presentation mapping. A candidate without a title cannot
	// be displayed and is dropped.
	for _, s := range scored {
		p, ok := meta[s.id]
		if !ok || p.Title == "" {
			continue
		}
		res.RankedPapers = append(res.RankedPapers, present(s.id, p, s.bcScore, s.ccScore, s.score))
	}

	e.log.Info("snowball run complete",
		zap.String("seed", seedID),
		zap.Int("candidates", res.TotalCandidates),
		zap.Int("ranked", len(res.RankedPapers)))
	return res, nil
}

func (e *Engine) resolveSeed(ctx context.Context, req Request) string {
	if req.SeedDOI != "" {
		if p, ok := e.api.ResolveDOI(ctx, req.SeedDOI); ok {
			return p.PaperID
		}
		e.log.Debug("seed DOI did not resolve", zap.String("doi", req.SeedDOI))
	}
	if req.SeedTitle != "" {
		if p, ok := e.api.ResolveTitle(ctx, req.SeedTitle); ok {
			return p.PaperID
		}
		e.log.Debug("seed title did not resolve", zap.String("title", req.SeedTitle))
	}
	return ""
}

// resolveDepth1 resolves every search term to a node id in fixed-size
// concurrent batches, returning the deduplicated id list in term order
// and the count of terms that resolved.
func (e *Engine) resolveDepth1(ctx context.Context, req Request) ([]string, int) {
	terms := req.SearchTerms
	resolved := make([]string, len(terms))

	for start := 0; start < len(terms); start += e.opts.ResolveBatchSize {
		end := start + e.opts.ResolveBatchSize
		if end > len(terms) {
			end = len(terms)
		}
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				var p *scholar.Paper
				var ok bool
				if i < len(req.IsDOI) && req.IsDOI[i] {
					p, ok = e.api.ResolveDOI(ctx, terms[i])
				} else {
					p, ok = e.api.ResolveTitle(ctx, terms[i])
				}
				if ok {
					resolved[i] = p.PaperID
				}
			}(i)
		}
		wg.Wait()
	}

	var depth1 []string
	seen := make(map[string]bool)
	count := 0
	for _, id := range resolved {
		if id == "" {
			continue
		}
		count++
		if !seen[id] {
			seen[id] = true
			depth1 = append(depth1, id)
		}
	}
	return depth1, count
}

// expandFrontier fetches both edge directions for every depth-1 node,
// a bounded number of nodes at a time. Results align with depth1 by
// index, so goroutines never share accumulators.
func (e *Engine) expandFrontier(ctx context.Context, depth1 []string) []expansion {
	expansions := make([]expansion, len(depth1))
	for start := 0; start < len(depth1); start += e.opts.ExpandBatchSize {
		end := start + e.opts.ExpandBatchSize
		if end > len(depth1) {
			end = len(depth1)
		}
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				expansions[i] = expansion{
					refs:  e.api.Edges(ctx, depth1[i], scholar.References),
					cites: e.api.Edges(ctx, depth1[i], scholar.Citations),
				}
			}(i)
		}
		wg.Wait()
	}
	return expansions
}
