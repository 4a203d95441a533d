// Copyright (c) 2025, Falcaol and the ledflix contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Falcaol/ledflix/internal/cache"
	"github.com/Falcaol/ledflix/internal/services/catalog"
)

func TestBestMatchExactWins(t *testing.T) {
	entries := []catalog.Entry{
		{Route: "close", English: "Frieren Beyond"},
		{Route: "exact", English: "Frieren - Episode 3 VOSTFR"},
	}

	match := catalog.BestMatch("Frieren", entries, 0.8)
	require.NotNil(t, match)
	// "Frieren - Episode 3 VOSTFR" normalizes to exactly "frieren".
	assert.Equal(t, "exact", match.Route)
}

func TestBestMatchRejectsBelowThreshold(t *testing.T) {
	entries := []catalog.Entry{
		{Route: "other", English: "Completely Different Show"},
	}

	assert.Nil(t, catalog.BestMatch("Frieren", entries, 0.8))
}

func TestBestMatchTieKeepsFirst(t *testing.T) {
	entries := []catalog.Entry{
		{Route: "first", English: "One Piece Film"},
		{Route: "second", Romaji: "One Piece Film"},
	}

	match := catalog.BestMatch("One Piece Films", entries, 0.6)
	require.NotNil(t, match)
	assert.Equal(t, "first", match.Route)
}

func TestBestMatchEmptyTarget(t *testing.T) {
	entries := []catalog.Entry{{Route: "any", English: "Anything"}}
	assert.Nil(t, catalog.BestMatch("VOSTFR", entries, 0.1))
}

func newTestCache(t *testing.T) *cache.Cache {
	t.Helper()
	return cache.New(filepath.Join(t.TempDir(), "cache.json"), time.Hour)
}

func TestClientTimetable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/timetables/sub", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode([]catalog.Entry{
			{Route: "frieren", English: "Frieren", EpisodeNumber: 12},
		})
	}))
	defer srv.Close()

	client := catalog.NewClient(srv.URL, "test-token", newTestCache(t))

	entries, err := client.Timetable(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "frieren", entries[0].Route)
	assert.Equal(t, 12, entries[0].EpisodeNumber)
}

func TestClientTimetableServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := catalog.NewClient(srv.URL, "", newTestCache(t))

	_, err := client.Timetable(context.Background())
	assert.ErrorContains(t, err, "status 500")
}

func TestClientSearchCachesMatches(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/anime", r.URL.Path)
		assert.Equal(t, "Frieren", r.URL.Query().Get("q"))

		json.NewEncoder(w).Encode(map[string]any{
			"anime": []catalog.Entry{
				{Route: "frieren", English: "Frieren"},
				{Route: "other", English: "Something Else Entirely"},
			},
		})
	}))
	defer srv.Close()

	client := catalog.NewClient(srv.URL, "", newTestCache(t))
	ctx := context.Background()

	first, err := client.Search(ctx, "Frieren")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "frieren", first.Route)

	second, err := client.Search(ctx, "Frieren")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, "frieren", second.Route)

	assert.Equal(t, 1, calls, "second lookup must come from the cache")
}

func TestClientSearchNoMatchIsNotCached(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(map[string]any{
			"anime": []catalog.Entry{
				{Route: "other", English: "Completely Different Show"},
			},
		})
	}))
	defer srv.Close()

	client := catalog.NewClient(srv.URL, "", newTestCache(t))
	ctx := context.Background()

	match, err := client.Search(ctx, "Frieren")
	require.NoError(t, err)
	assert.Nil(t, match)

	_, err = client.Search(ctx, "Frieren")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestClientAnimeDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/anime/frieren", r.URL.Path)

		json.NewEncoder(w).Encode(catalog.Detail{
			Route:  "frieren",
			Title:  "Sousou no Frieren",
			Genres: []catalog.Genre{{Name: "Adventure"}, {Name: "Fantasy"}},
		})
	}))
	defer srv.Close()

	client := catalog.NewClient(srv.URL, "", newTestCache(t))

	detail, err := client.AnimeDetail(context.Background(), "frieren")
	require.NoError(t, err)
	assert.Equal(t, []string{"Adventure", "Fantasy"}, detail.GenreNames())
}

func TestEntryHelpers(t *testing.T) {
	e := catalog.Entry{
		Route:             "frieren",
		Romaji:            "Sousou no Frieren",
		English:           "Frieren: Beyond Journey's End",
		ImageVersionRoute: "assets/frieren.jpg",
		Streams:           map[string]string{"crunchyroll": "https://crunchyroll.com/frieren"},
	}

	assert.Equal(t, []string{"Frieren: Beyond Journey's End", "Sousou no Frieren"}, e.Names())
	assert.Equal(t, "Frieren: Beyond Journey's End", e.CanonicalTitle())
	assert.Equal(t, "https://img.animeschedule.net/production/assets/public/assets/frieren.jpg", e.ImageURL())
	assert.Equal(t, "https://crunchyroll.com/frieren", e.Crunchyroll())

	withPrimary := catalog.Entry{Title: "Sousou no Frieren", English: "Frieren: Beyond Journey's End"}
	assert.Equal(t, "Sousou no Frieren", withPrimary.CanonicalTitle())

	empty := catalog.Entry{Route: "fallback"}
	assert.Empty(t, empty.ImageURL())
	assert.Equal(t, "fallback", empty.CanonicalTitle())
}
