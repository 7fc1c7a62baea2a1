package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"review_scraper/internal/domain"
)

type PlacesService struct {
	client   domain.PlacesClient
	cache    domain.Cache
	cacheTTL time.Duration
}

// NewPlacesService wires the suggestion proxy. cache may be nil.
func NewPlacesService(c domain.PlacesClient, cache domain.Cache, ttl time.Duration) *PlacesService {
	return &PlacesService{client: c, cache: cache, cacheTTL: ttl}
}

// Autocomplete returns the upstream suggestion payload for input verbatim.
func (s *PlacesService) Autocomplete(ctx context.Context, input string) (json.RawMessage, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("%w: input query is required", domain.ErrInvalidRequest)
	}

	key := "autocomplete:" + strings.ToLower(input)
	if s.cache != nil {
		var hit json.RawMessage
		ok, err := s.cache.Get(ctx, key, &hit)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("autocomplete cache read failed")
		}
		if ok && len(hit) > 0 {
			return hit, nil
		}
	}

	body, err := s.client.Autocomplete(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	if s.cache != nil && cacheable(body) {
		if err := s.cache.Set(ctx, key, json.RawMessage(body), int(s.cacheTTL.Seconds())); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("autocomplete cache write failed")
		}
	}
	return body, nil
}

// cacheable keeps quota and key errors, which arrive as 200s, out of the cache.
func cacheable(body []byte) bool {
	var p struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &p); err != nil {
		return false
	}
	return p.Status == "OK" || p.Status == "ZERO_RESULTS"
}
