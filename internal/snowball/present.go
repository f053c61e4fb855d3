package snowball

import (
	"net/url"
	"strings"

	"github.com/dzhu8/GoFetch-sub002/internal/scholar"
)

// snippetMaxLength caps abstracts for display.
const snippetMaxLength = 250

// maxDisplayAuthors is how many author names appear before "et al.".
const maxDisplayAuthors = 3

// URL templates for the external identifiers we can derive a display
// URL from, in preference order.
const (
	urlTemplateArXiv  = "https://arxiv.org/abs/"
	urlTemplateDOI    = "https://doi.org/"
	urlTemplatePubMed = "https://pubmed.ncbi.nlm.nih.gov/"
)

// academicDomains is the allow-list of scholarly-publisher domains used
// for the isAcademic flag. Matching is by domain suffix or URL
// substring.
var academicDomains = []string{
	"arxiv.org",
	"doi.org",
	"ncbi.nlm.nih.gov",
	"pubmed.ncbi.nlm.nih.gov",
	"semanticscholar.org",
	"springer.com",
	"link.springer.com",
	"sciencedirect.com",
	"ieee.org",
	"ieeexplore.ieee.org",
	"acm.org",
	"dl.acm.org",
	"nature.com",
	"science.org",
	"wiley.com",
	"onlinelibrary.wiley.com",
	"tandfonline.com",
	"oup.com",
	"academic.oup.com",
	"cambridge.org",
	"jstor.org",
	"biorxiv.org",
	"medrxiv.org",
	"plos.org",
	"pnas.org",
	"cell.com",
	"mdpi.com",
	"frontiersin.org",
	"sagepub.com",
	"elifesciences.org",
}

// present maps a hydrated graph record onto the display entity.
func present(id string, p scholar.Paper, bcScore, ccScore, score float64) RankedPaper {
	displayURL, domain := deriveURL(p)
	return RankedPaper{
		ID:         id,
		Title:      p.Title,
		URL:        displayURL,
		Snippet:    snippet(p.Abstract),
		Authors:    authorLine(p.Authors),
		Year:       p.Year,
		Venue:      p.Venue,
		Domain:     domain,
		IsAcademic: isAcademic(domain, displayURL),
		Score:      score,
		BCScore:    bcScore,
		CCScore:    ccScore,
	}
}

// deriveURL picks the display URL by identifier preference: arXiv
// abstract page, then DOI resolver, then PubMed, then whatever raw URL
// the API returned. The domain follows the same choice.
func deriveURL(p scholar.Paper) (string, string) {
	switch {
	case p.ExternalIDs.ArXiv != "":
		return urlTemplateArXiv + p.ExternalIDs.ArXiv, "arxiv.org"
	case p.ExternalIDs.DOI != "":
		return urlTemplateDOI + p.ExternalIDs.DOI, "doi.org"
	case p.ExternalIDs.PubMed != "":
		return urlTemplatePubMed + p.ExternalIDs.PubMed + "/", "pubmed.ncbi.nlm.nih.gov"
	default:
		return p.URL, domainFromURL(p.URL)
	}
}

func domainFromURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

func isAcademic(domain, displayURL string) bool {
	lowerURL := strings.ToLower(displayURL)
	for _, d := range academicDomains {
		if domain == d || strings.HasSuffix(domain, "."+d) || strings.Contains(lowerURL, d) {
			return true
		}
	}
	return false
}

// snippet truncates an abstract to snippetMaxLength characters, marking
// the cut with an ellipsis.
func snippet(abstract string) string {
	runes := []rune(abstract)
	if len(runes) <= snippetMaxLength {
		return abstract
	}
	return string(runes[:snippetMaxLength]) + "..."
}

// authorLine joins the first three author names, appending "et al."
// when more exist.
func authorLine(authors []scholar.Author) string {
	names := make([]string, 0, maxDisplayAuthors)
	for _, a := range authors {
		if a.Name == "" {
			continue
		}
		names = append(names, a.Name)
		if len(names) == maxDisplayAuthors {
			break
		}
	}
	line := strings.Join(names, ", ")
	if len(authors) > maxDisplayAuthors {
		line += " et al."
	}
	return line
}
