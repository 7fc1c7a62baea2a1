package domain

// ReviewRecord is one review as rendered on the map page. Every field carries
// a non-empty default so callers never see half-filled records.
type ReviewRecord struct {
	Name      string  `json:"name"`
	Rating    float64 `json:"rating"`
	Text      string  `json:"text"`
	Date      string  `json:"date"` // free-form, e.g. "2 weeks ago"
	PhotoURL  string  `json:"photoUrl,omitempty"`
	Synthetic bool    `json:"synthetic,omitempty"`
}

const (
	DefaultName = "Anonymous"
	DefaultText = "No review text"
	DefaultDate = "Unknown date"

	MaxRating = 5.0
)

// ExtractionResult is what a single scrape produced.
type ExtractionResult struct {
	Records   []ReviewRecord
	Strategy  string // empty when nothing matched
	Synthetic bool
	TargetURL string
	NavErr    string // navigation failure, if any; not fatal
}

// Source labels the provenance of a result.
func (r ExtractionResult) Source() string {
	if r.Synthetic {
		return "fallback"
	}
	return "scraped"
}
