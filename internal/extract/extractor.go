// Package extract turns a rendered map page into review records. Layouts are
// described by an ordered list of Strategy values; the first one whose
// container locator matches wins for the whole page.
package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"review_scraper/internal/domain"
)

// MaxRecords caps extraction to the first page of visible reviews.
const MaxRecords = 10

type Extractor struct {
	strategies Strategies
	max        int
}

func New(ss Strategies) *Extractor {
	return &Extractor{strategies: ss, max: MaxRecords}
}

func (e *Extractor) Strategies() Strategies { return e.strategies }

// Extract evaluates strategies in priority order against html and returns up
// to MaxRecords records in document order, with the name of the strategy
// used. No match is not an error: it yields an empty slice and "".
func (e *Extractor) Extract(html, pageURL string) ([]domain.ReviewRecord, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, "", fmt.Errorf("parse rendered page: %w", err)
	}
	base, _ := url.Parse(pageURL)

	for _, s := range e.strategies.List {
		containers := doc.Find(s.Container)
		if containers.Length() == 0 {
			continue
		}
		out := make([]domain.ReviewRecord, 0, min(containers.Length(), e.max))
		containers.EachWithBreak(func(_ int, c *goquery.Selection) bool {
			out = append(out, e.record(s, c, base))
			return len(out) < e.max
		})
		return out, s.Name, nil
	}
	return []domain.ReviewRecord{}, "", nil
}

func (e *Extractor) record(s Strategy, c *goquery.Selection, base *url.URL) domain.ReviewRecord {
	return domain.ReviewRecord{
		Name:     textOr(c, s.Author, domain.DefaultName),
		Rating:   rating(c, s.Rating),
		Text:     textOr(c, s.Text, domain.DefaultText),
		Date:     textOr(c, s.Date, domain.DefaultDate),
		PhotoURL: photo(c, base),
	}
}

func textOr(c *goquery.Selection, sel, def string) string {
	if t := strings.TrimSpace(c.Find(sel).First().Text()); t != "" {
		return t
	}
	return def
}

// rating prefers the accessibility label; star widgets usually carry the
// value only there ("4 stars") with no visible text.
func rating(c *goquery.Selection, sel string) float64 {
	el := c.Find(sel).First()
	if el.Length() == 0 {
		return 0
	}
	if label, ok := el.Attr("aria-label"); ok && strings.TrimSpace(label) != "" {
		return ParseRating(label)
	}
	return ParseRating(el.Text())
}

func photo(c *goquery.Selection, base *url.URL) string {
	src, ok := c.Find("img").First().Attr("src")
	src = strings.TrimSpace(src)
	if !ok || src == "" {
		return ""
	}
	if base == nil {
		return src
	}
	ref, err := url.Parse(src)
	if err != nil {
		return src
	}
	return base.ResolveReference(ref).String()
}
