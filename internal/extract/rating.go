package extract

import (
	"regexp"
	"strconv"

	"review_scraper/internal/domain"
)

var numberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParseRating returns the first number in s, clamped to [0, 5]. Labels like
// "stars: 5 of 5" therefore yield the first number, not necessarily the one
// a reader would pick.
func ParseRating(s string) float64 {
	m := numberRe.FindString(s)
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	if f > domain.MaxRating {
		return domain.MaxRating
	}
	return f
}
