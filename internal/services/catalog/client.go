// Copyright (c) 2025, Falcaol and the ledflix contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package catalog talks to the animeschedule API: the weekly timetable,
// title search with a persistent cache, and per-show details.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/Falcaol/ledflix/internal/buildinfo"
	"github.com/Falcaol/ledflix/internal/cache"
)

// searchThreshold is the minimum similarity for accepting a search hit
// as the show we asked for.
const searchThreshold = 0.8

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	cache      *cache.Cache
}

func NewClient(baseURL, token string, store *cache.Cache) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		cache:      store,
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, dest any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.Wrap(err, "failed to build catalog request")
	}

	req.Header.Set("User-Agent", buildinfo.UserAgent)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "catalog request failed: %s", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("catalog returned status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return errors.Wrapf(err, "failed to decode catalog response: %s", path)
	}

	return nil
}

// Timetable fetches the current week's subbed release schedule.
func (c *Client) Timetable(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	if err := c.get(ctx, "/timetables/sub", nil, &entries); err != nil {
		return nil, err
	}

	log.Debug().Int("entries", len(entries)).Msg("Fetched catalog timetable")
	return entries, nil
}

// Search resolves a scraped title to a catalog entry, consulting the
// persistent cache first. A nil entry with nil error means the catalog
// has no show close enough to the title.
func (c *Client) Search(ctx context.Context, title string) (*Entry, error) {
	key := cacheKey(title)

	var cached Entry
	if c.cache != nil && c.cache.GetJSON(key, &cached) {
		log.Trace().Str("title", title).Str("route", cached.Route).Msg("Catalog search cache hit")
		return &cached, nil
	}

	query := url.Values{}
	query.Set("q", title)

	var resp searchResponse
	if err := c.get(ctx, "/anime", query, &resp); err != nil {
		return nil, err
	}

	match := BestMatch(title, resp.Anime, searchThreshold)
	if match == nil {
		log.Debug().Str("title", title).Int("candidates", len(resp.Anime)).Msg("No catalog match above threshold")
		return nil, nil
	}

	if c.cache != nil {
		c.cache.Set(key, match)
	}

	return match, nil
}

// AnimeDetail fetches the full catalog record for a show route.
func (c *Client) AnimeDetail(ctx context.Context, route string) (*Detail, error) {
	var detail Detail
	if err := c.get(ctx, "/anime/"+url.PathEscape(route), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func cacheKey(title string) string {
	return fmt.Sprintf("anime_%s", strings.ToLower(title))
}
