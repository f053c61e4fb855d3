// Package scholar wraps the bibliographic graph API behind the four
// call shapes the relevance engine needs. Every request is gated by the
// shared rate limiter, and every failure degrades to an empty result:
// one unresolved reference must not abort a whole relevance run.
package scholar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/dzhu8/GoFetch-sub002/internal/throttle"
)

const (
	// BaseURL is the Semantic Scholar Graph API base URL.
	BaseURL = "https://api.semanticscholar.org/graph/v1"

	// DefaultTimeout bounds a single request so one slow call cannot
	// stall a whole expansion batch.
	DefaultTimeout = 15 * time.Second

	// EdgePageSize caps edge listings. Only the first page is fetched;
	// deeper pagination is an accepted approximation loss.
	EdgePageSize = 100

	// BatchChunkSize is the API's maximum ids per batch-metadata call.
	BatchChunkSize = 500

	// searchLimit is how many ranked hits a title search requests
	// before secondary-identifier deduplication.
	searchLimit = 10

	resolveFields  = "paperId,title,externalIds"
	metadataFields = "paperId,title,abstract,authors,year,venue,url,externalIds"
)

// Client is a rate-limited HTTP client for the graph API.
type Client struct {
	httpClient *http.Client
	limiter    *throttle.Limiter
	log        *zap.Logger
	apiKey     string
	baseURL    string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the API key for authenticated requests.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) { c.apiKey = key }
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithLimiter shares an externally owned rate limiter.
func WithLimiter(l *throttle.Limiter) ClientOption {
	return func(c *Client) { c.limiter = l }
}

// WithLogger sets the logger for swallowed failures.
func WithLogger(log *zap.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// NewClient creates a graph API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    throttle.New(throttle.DefaultPerSecond),
		log:        zap.NewNop(),
		baseURL:    BaseURL,
	}

	if key := os.Getenv("SEMANTIC_SCHOLAR_API_KEY"); key != "" {
		c.apiKey = key
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ResolveDOI resolves a DOI to a graph node. Returns nil, false when
// the DOI is unknown or the call fails.
func (c *Client) ResolveDOI(ctx context.Context, doi string) (*Paper, bool) {
	var paper Paper
	path := "/paper/DOI:" + url.PathEscape(doi)
	query := url.Values{"fields": {resolveFields}}
	if err := c.get(ctx, path, query, &paper); err != nil {
		c.log.Warn("DOI resolution failed", zap.String("doi", doi), zap.Error(err))
		return nil, false
	}
	if paper.PaperID == "" {
		return nil, false
	}
	return &paper, true
}

// ResolveTitle resolves a title to a graph node via the search
// endpoint. Ranked hits are deduplicated by DOI before the top hit is
// taken: the same work indexed twice must not be double-counted.
func (c *Client) ResolveTitle(ctx context.Context, title string) (*Paper, bool) {
	var resp searchResponse
	query := url.Values{
		"query":  {title},
		"fields": {resolveFields},
		"limit":  {strconv.Itoa(searchLimit)},
	}
	if err := c.get(ctx, "/paper/search", query, &resp); err != nil {
		c.log.Warn("title resolution failed", zap.String("title", title), zap.Error(err))
		return nil, false
	}

	seenDOI := make(map[string]bool)
	for i := range resp.Data {
		p := resp.Data[i]
		if doi := p.ExternalIDs.DOI; doi != "" {
			if seenDOI[doi] {
				continue
			}
			seenDOI[doi] = true
		}
		if p.PaperID == "" {
			continue
		}
		return &p, true
	}
	return nil, false
}

// Edges lists one hop of the citation graph from a node. The result is
// first-page only, capped at EdgePageSize. Failures yield an empty set.
func (c *Client) Edges(ctx context.Context, nodeID string, dir Direction) []string {
	var resp edgeResponse
	path := fmt.Sprintf("/paper/%s/%s", url.PathEscape(nodeID), dir)
	query := url.Values{
		"fields": {"paperId"},
		"limit":  {strconv.Itoa(EdgePageSize)},
	}
	if err := c.get(ctx, path, query, &resp); err != nil {
		c.log.Warn("edge listing failed",
			zap.String("node", nodeID), zap.String("direction", string(dir)), zap.Error(err))
		return nil
	}

	ids := make([]string, 0, len(resp.Data))
	for _, e := range resp.Data {
		var p *Paper
		switch dir {
		case References:
			p = e.CitedPaper
		case Citations:
			p = e.CitingPaper
		}
		if p != nil && p.PaperID != "" {
			ids = append(ids, p.PaperID)
		}
	}
	return ids
}

// BatchMetadata fetches metadata for the given nodes in chunks of at
// most BatchChunkSize. A failed chunk contributes no entries; the
// remaining chunks still run.
func (c *Client) BatchMetadata(ctx context.Context, nodeIDs []string) map[string]Paper {
	out := make(map[string]Paper, len(nodeIDs))
	for start := 0; start < len(nodeIDs); start += BatchChunkSize {
		end := start + BatchChunkSize
		if end > len(nodeIDs) {
			end = len(nodeIDs)
		}
		chunk := nodeIDs[start:end]

		var papers []*Paper
		body := map[string]any{"ids": chunk}
		query := url.Values{"fields": {metadataFields}}
		if err := c.post(ctx, "/paper/batch", query, body, &papers); err != nil {
			c.log.Warn("batch metadata chunk failed",
				zap.Int("offset", start), zap.Int("size", len(chunk)), zap.Error(err))
			continue
		}

		// The response array is aligned with the request ids; null
		// entries mark ids the API could not find.
		for i, p := range papers {
			if p == nil || p.PaperID == "" {
				continue
			}
			key := p.PaperID
			if i < len(chunk) {
				key = chunk[i]
			}
			out[key] = *p
		}
	}
	return out
}

func (c *Client) get(ctx context.Context, path string, query url.Values, v any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, v)
}

func (c *Client) post(ctx context.Context, path string, query url.Values, body, v any) error {
	return c.do(ctx, http.MethodPost, path, query, body, v)
}

// do issues one rate-limited request and decodes the JSON response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode >= 400:
		return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}
