// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries a scholarly search provider (SerpAPI's Google
// Scholar engine) and maps its hits to types.WebResult.
//
// Search never fails from the caller's point of view: a missing key, a
// transport error, an HTTP error, or an unexpected body all yield an empty
// result list so the research pipeline can continue without web context.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/pdiddy/research-supervisor/internal/httputil"
	"github.com/pdiddy/research-supervisor/pkg/types"
)

// Placeholders for fields the provider leaves out.
const (
	NoTitle   = "No Title"
	NoLink    = "No Link"
	NoSnippet = "No Description Available"
)

// maxResults bounds the hits kept per query; it is also the default.
const maxResults = 5

// errNoResultsField marks a response without organic_results.
var errNoResultsField = errors.New("response has no organic_results field")

// Scholar is the SerpAPI client.
type Scholar struct {
	cfg    types.SearchConfig
	http   *http.Client
	logger *zap.Logger
}

// NewScholar returns a Scholar for cfg.
func NewScholar(cfg types.SearchConfig, logger *zap.Logger) *Scholar {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxResults <= 0 || cfg.MaxResults > maxResults {
		cfg.MaxResults = maxResults
	}
	return &Scholar{
		cfg:    cfg,
		http:   httputil.NewClient(cfg.HTTPConfig),
		logger: logger.Named("search"),
	}
}

// Search returns up to MaxResults hits for query. The slice is never nil.
func (s *Scholar) Search(ctx context.Context, query string) []types.WebResult {
	if s.cfg.APIKey == "" {
		s.logger.Debug("search skipped: no API key configured")
		return []types.WebResult{}
	}

	results, err := s.fetch(ctx, query)
	if err != nil {
		s.logger.Warn("search failed", zap.String("query", query), zap.Error(err))
		return []types.WebResult{}
	}
	return results
}

func (s *Scholar) fetch(ctx context.Context, query string) ([]types.WebResult, error) {
	params := url.Values{
		"q":       {query},
		"engine":  {s.cfg.Engine},
		"api_key": {s.cfg.APIKey},
		"num":     {strconv.Itoa(s.cfg.MaxResults)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("SerpAPI request: %w", err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(resp); err != nil {
		return nil, fmt.Errorf("SerpAPI: %w", err)
	}

	var sr serpResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing SerpAPI response: %w", err)
	}
	if sr.OrganicResults == nil {
		return nil, errNoResultsField
	}

	hits := *sr.OrganicResults
	if len(hits) > s.cfg.MaxResults {
		hits = hits[:s.cfg.MaxResults]
	}

	results := make([]types.WebResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, types.WebResult{
			Title:   valueOr(h.Title, NoTitle),
			Link:    valueOr(h.Link, NoLink),
			Snippet: valueOr(h.Snippet, NoSnippet),
		})
	}
	return results, nil
}

func valueOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

// SerpAPI JSON structures. Pointers distinguish absent fields from empty ones.
type serpResponse struct {
	OrganicResults *[]serpResult `json:"organic_results"`
}

type serpResult struct {
	Title   *string `json:"title"`
	Link    *string `json:"link"`
	Snippet *string `json:"snippet"`
}
