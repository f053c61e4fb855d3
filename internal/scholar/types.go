package scholar

// Paper is the graph API's paper record. PaperID is the opaque node
// identifier; no structure is assumed beyond string equality.
type Paper struct {
	PaperID     string      `json:"paperId"`
	Title       string      `json:"title"`
	Abstract    string      `json:"abstract,omitempty"`
	Year        int         `json:"year,omitempty"`
	Venue       string      `json:"venue,omitempty"`
	URL         string      `json:"url,omitempty"`
	Authors     []Author    `json:"authors,omitempty"`
	ExternalIDs ExternalIDs `json:"externalIds,omitempty"`
}

// Author is a paper author as returned by the graph API.
type Author struct {
	Name string `json:"name"`
}

// ExternalIDs carries the secondary identifiers used for deduplication
// and URL derivation. Field names match the API's JSON keys.
type ExternalIDs struct {
	DOI    string `json:"DOI,omitempty"`
	ArXiv  string `json:"ArXiv,omitempty"`
	PubMed string `json:"PubMed,omitempty"`
}

// Direction selects which edge set of a node to list.
type Direction string

const (
	// References lists the nodes this paper cites (outgoing edges).
	References Direction = "references"
	// Citations lists the nodes citing this paper (incoming edges).
	Citations Direction = "citations"
)

// searchResponse is the title-search endpoint payload.
type searchResponse struct {
	Total int     `json:"total"`
	Data  []Paper `json:"data"`
}

// edgeResponse covers both edge endpoints; exactly one of the nested
// papers is populated per element depending on direction.
type edgeResponse struct {
	Data []struct {
		CitedPaper  *Paper `json:"citedPaper"`
		CitingPaper *Paper `json:"citingPaper"`
	} `json:"data"`
}
