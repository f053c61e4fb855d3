package refextract

import (
	"regexp"
	"strings"
)

// MinSearchTermLength is the exclusive lower bound on a usable search
// key. Shorter keys carry no discriminative power for lookup and the
// entry is discarded.
const MinSearchTermLength = 3

// DOI patterns in priority order: resolver URL, labeled DOI, bare DOI.
var (
	doiURLRe   = regexp.MustCompile(`(?i)doi\.org/(10\.[^\s"<>]+)`)
	doiLabelRe = regexp.MustCompile(`(?i)\bdoi:\s*(10\.[^\s"<>]+)`)
	doiBareRe  = regexp.MustCompile(`\b10\.\d{4,9}/[^\s"<>]+`)
)

// Title heuristics, in the priority order applied by deriveTitle.
var (
	quotedTitleRe = regexp.MustCompile(`["“”]([^"“”]{4,300})["“”]`)
	apaYearRe     = regexp.MustCompile(`\((?:1[89]|20)\d{2}[a-z]?\)\.?`)
	journalVolRe  = regexp.MustCompile(`(?:[A-Z][A-Za-z&.\-]+\s+){1,6}(?:[Vv]ol\.?\s*)?\d{1,4}\s*(?:\(\d+\))?\s*[,:]\s*(?:pp?\.\s*)?\d+`)
	authorListRe  = regexp.MustCompile(`^(?:[A-Z][\p{L}'’\-]+,\s*(?:[A-Z]\.[\s\-]*)+(?:(?:,|;|and|&)\s*)?)+`)
)

// ExtractKey derives a search key from stitched entry text. DOIs win
// over titles; the boolean reports which kind was found.
func ExtractKey(text string) (string, bool) {
	if doi := ExtractDOI(text); doi != "" {
		return doi, true
	}
	return deriveTitle(text), false
}

// ExtractDOI returns the first DOI found in text, or "".
func ExtractDOI(text string) string {
	for _, re := range []*regexp.Regexp{doiURLRe, doiLabelRe, doiBareRe} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		doi := m[len(m)-1]
		doi = trimTrailingPunct(doi)
		if isValidDOI(doi) {
			return doi
		}
	}
	return ""
}

// trimTrailingPunct strips trailing punctuation one character at a time;
// OCR routinely glues sentence punctuation onto identifiers.
func trimTrailingPunct(s string) string {
	for len(s) > 0 {
		switch s[len(s)-1] {
		case '.', ',', ';', ':', ')', ']', '}', '>', '"', '\'':
			s = s[:len(s)-1]
		default:
			return s
		}
	}
	return s
}

func isValidDOI(doi string) bool {
	if len(doi) < 7 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slash := strings.Index(doi, "/")
	return slash > 0 && slash < len(doi)-1
}

// deriveTitle applies title heuristics in priority order:
// quoted substring, APA year marker, journal-plus-volume prefix,
// author-list prefix, period-split fallback, first 150 characters.
func deriveTitle(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if m := quotedTitleRe.FindStringSubmatch(text); m != nil {
		return cleanTitle(m[1])
	}

	if loc := apaYearRe.FindStringIndex(text); loc != nil {
		if s := firstSentence(text[loc[1]:]); len(s) > MinSearchTermLength {
			return cleanTitle(s)
		}
	}

	if loc := journalVolRe.FindStringIndex(text); loc != nil {
		prefix := cleanTitle(text[:loc[0]])
		if len(prefix) >= 10 && len(prefix) <= 300 {
			return prefix
		}
	}

	if loc := authorListRe.FindStringIndex(text); loc != nil && loc[1] > 0 {
		rest := text[loc[1]:]
		// Skip a year marker sitting between authors and title.
		if yloc := apaYearRe.FindStringIndex(rest); yloc != nil && yloc[0] < 5 {
			rest = rest[yloc[1]:]
		}
		if s := firstSentence(rest); len(s) > MinSearchTermLength {
			return cleanTitle(s)
		}
	}

	for _, seg := range strings.Split(text, ". ") {
		seg = cleanTitle(seg)
		if len(seg) >= 10 && len(seg) <= 300 {
			return seg
		}
	}

	if runes := []rune(text); len(runes) > 150 {
		return cleanTitle(string(runes[:150]))
	}
	return cleanTitle(text)
}

// firstSentence returns the text up to the first period that ends a
// sentence (followed by a space or end of string).
func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	for i := 0; i < len(s); i++ {
		if s[i] != '.' {
			continue
		}
		if i == len(s)-1 || s[i+1] == ' ' {
			return strings.TrimSpace(s[:i])
		}
	}
	return s
}

func cleanTitle(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'“”`)
	s = trimTrailingPunct(s)
	return strings.TrimSpace(s)
}
