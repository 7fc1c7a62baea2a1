package domain

import (
	"fmt"
	"net/url"
	"strings"
)

const placeURLPrefix = "https://www.google.com/maps/place/?q=place_id:"

type ScrapeRequest struct {
	Link    string `json:"link,omitempty"`
	PlaceID string `json:"placeId,omitempty"`
}

// TargetURL resolves the page to scrape. Link wins over PlaceID.
func (r ScrapeRequest) TargetURL() (string, error) {
	link := strings.TrimSpace(r.Link)
	pid := strings.TrimSpace(r.PlaceID)
	switch {
	case link != "":
		u, err := url.Parse(link)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return "", fmt.Errorf("%w: link must be an absolute http(s) URL", ErrInvalidRequest)
		}
		return u.String(), nil
	case pid != "":
		return placeURLPrefix + url.QueryEscape(pid), nil
	default:
		return "", fmt.Errorf("%w: either link or placeId is required", ErrInvalidRequest)
	}
}
