package discogs

import "strings"

// SearchQuery holds the identifiers submitted to the catalog search.
type SearchQuery struct {
	CatalogNumber string
	Barcode       string
	Artist        string
	Title         string
	Format        string
	PerPage       int
}

func (q SearchQuery) isEmpty() bool {
	return strings.TrimSpace(q.CatalogNumber) == "" &&
		strings.TrimSpace(q.Barcode) == "" &&
		strings.TrimSpace(q.Artist) == "" &&
		strings.TrimSpace(q.Title) == ""
}

// SearchResult is one release entry in a catalog search response.
type SearchResult struct {
	ID      int64    `json:"id"`
	Title   string   `json:"title"`
	CatNo   string   `json:"catno"`
	Barcode []string `json:"barcode"`
	Country string   `json:"country"`
	Year    string   `json:"year"`
	Label   []string `json:"label"`
	Format  []string `json:"format"`
}

// Pagination models the paginated envelope on search responses.
type Pagination struct {
	Page    int `json:"page"`
	Pages   int `json:"pages"`
	PerPage int `json:"per_page"`
	Items   int `json:"items"`
}

// SearchResponse models a catalog database search response.
type SearchResponse struct {
	Pagination Pagination     `json:"pagination"`
	Results    []SearchResult `json:"results"`
}

// ReleaseLabel carries label attribution on a release, including the catalog
// number assigned by that label.
type ReleaseLabel struct {
	Name  string `json:"name"`
	CatNo string `json:"catno"`
}

// ReleaseIdentifier carries a typed identifier printed or etched on the
// physical item: "Barcode", "Matrix / Runout", "Rights Society".
type ReleaseIdentifier struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// ReleaseArtist carries artist attribution on a release.
type ReleaseArtist struct {
	Name string `json:"name"`
}

// Release is the full detail payload for a single release.
type Release struct {
	ID          int64               `json:"id"`
	Title       string              `json:"title"`
	Country     string              `json:"country"`
	Year        int                 `json:"year"`
	Artists     []ReleaseArtist     `json:"artists"`
	Labels      []ReleaseLabel      `json:"labels"`
	Identifiers []ReleaseIdentifier `json:"identifiers"`
}

// RightsSocieties extracts rights-society identifiers from the release
// identifier list.
func (r *Release) RightsSocieties() []string {
	var societies []string
	for _, identifier := range r.Identifiers {
		if strings.EqualFold(strings.TrimSpace(identifier.Type), "Rights Society") {
			value := strings.TrimSpace(identifier.Value)
			if value != "" {
				societies = append(societies, value)
			}
		}
	}
	return societies
}

// Price is a monetary amount in the client's configured currency.
type Price struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
}

// PriceStats models marketplace price statistics for one release.
type PriceStats struct {
	Lowest     *Price `json:"lowest_price"`
	Median     *Price `json:"median_price"`
	Highest    *Price `json:"highest_price"`
	NumForSale int    `json:"num_for_sale"`
}
