package edgar

import (
	"regexp"
	"strings"
)

// fulltextRequest is the POST body for the full-text search endpoint.
type fulltextRequest struct {
	Query     string `json:"q"`
	Forms     string `json:"forms"`
	DateRange string `json:"dateRange"`
	StartDate string `json:"startdt"`
	EndDate   string `json:"enddt"`
}

// fulltextResponse mirrors the slice of the search response we consume.
type fulltextResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source struct {
				AccessionNo  string   `json:"adsh"`
				FileDate     string   `json:"file_date"`
				DisplayNames []string `json:"display_names"`
				CIKs         []string `json:"ciks"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// atomFeed is the browse-edgar Atom output, reduced to what filer extraction
// needs.
type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title   string `xml:"title"`
	Updated string `xml:"updated"`
}

// companyRecord is one entry in the company_tickers.json universe file. The
// file is a JSON object keyed by size ordinal ("0" is the largest filer).
type companyRecord struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// Display names look like "KLAPPA GALE E (CIK 0001264731)" for people and
// "WEC ENERGY GROUP, INC. (WEC) (CIK 0000783325)" for issuers.
var displayNameRe = regexp.MustCompile(`^(.*?)(?:\s+\(([A-Z][A-Z0-9.\-]*)\))?\s+\(CIK (\d+)\)$`)

// Ownership feed entry titles: "4 - KLAPPA GALE E (0001264731) (Reporting)".
var reportingTitleRe = regexp.MustCompile(`^[345](?:/A)? - (.+?) \(\d+\) \(Reporting\)$`)

type displayName struct {
	Name   string
	Ticker string
	CIK    string
}

func parseDisplayName(s string) (displayName, bool) {
	m := displayNameRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return displayName{}, false
	}
	return displayName{
		Name:   strings.TrimSpace(m[1]),
		Ticker: m[2],
		CIK:    NormalizeCIK(m[3]),
	}, true
}

// NormalizeCIK left-pads a numeric CIK to the canonical 10-digit form.
func NormalizeCIK(cik string) string {
	cik = strings.TrimSpace(cik)
	if len(cik) >= 10 {
		return cik
	}
	return strings.Repeat("0", 10-len(cik)) + cik
}
