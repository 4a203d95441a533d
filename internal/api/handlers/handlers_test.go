// Copyright (c) 2025, Falcaol and the ledflix contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Falcaol/ledflix/internal/api/handlers"
	"github.com/Falcaol/ledflix/internal/database"
	"github.com/Falcaol/ledflix/internal/models"
)

type fixture struct {
	router *chi.Mux
	db     *database.DB
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	animeStore := models.NewAnimeStore(db)
	episodeStore := models.NewEpisodeStore(db)
	genreStore := models.NewGenreStore(db)

	r := chi.NewRouter()
	r.Route("/api/animes", handlers.NewAnimesHandler(animeStore, episodeStore, genreStore).Routes)
	r.Route("/api/episodes", handlers.NewEpisodesHandler(episodeStore).Routes)

	return &fixture{router: r, db: db}
}

func (f *fixture) seed(t *testing.T) *models.Anime {
	t.Helper()
	ctx := context.Background()

	anime, _, err := models.NewAnimeStore(f.db).Create(ctx, &models.Anime{Title: "Frieren"})
	require.NoError(t, err)

	require.NoError(t, models.NewGenreStore(f.db).EnsureLinked(ctx, anime.ID, []string{"Fantasy"}))

	for _, title := range []string{"Frieren - Episode 1 VOSTFR", "Frieren - Episode 2 VOSTFR"} {
		_, _, err := models.NewEpisodeStore(f.db).Create(ctx, &models.Episode{
			Title:   title,
			AnimeID: anime.ID,
			Link:    "https://example.org/" + title,
		})
		require.NoError(t, err)
	}

	return anime
}

func (f *fixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestListAnimes(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	rec := f.get(t, "/api/animes")
	require.Equal(t, http.StatusOK, rec.Code)

	var animes []models.Anime
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &animes))
	require.Len(t, animes, 1)
	assert.Equal(t, "Frieren", animes[0].Title)
}

func TestListAnimesEmpty(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/api/animes")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestSearchAnimes(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	rec := f.get(t, "/api/animes?q=frie")
	require.Equal(t, http.StatusOK, rec.Code)

	var animes []models.Anime
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &animes))
	assert.Len(t, animes, 1)

	rec = f.get(t, "/api/animes?q=naruto")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestGetAnime(t *testing.T) {
	f := newFixture(t)
	anime := f.seed(t)

	rec := f.get(t, "/api/animes/"+strconv.Itoa(anime.ID))
	require.Equal(t, http.StatusOK, rec.Code)

	var detail struct {
		models.Anime
		Episodes []models.Episode `json:"episodes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "Frieren", detail.Title)
	assert.Equal(t, []string{"Fantasy"}, detail.Genres)
	assert.Len(t, detail.Episodes, 2)
}

func TestGetAnimeNotFound(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/api/animes/999")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetAnimeBadID(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/api/animes/not-a-number")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLatestEpisodes(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	rec := f.get(t, "/api/episodes?limit=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Episodes   []models.Episode `json:"episodes"`
		Page       int              `json:"page"`
		TotalPages int              `json:"totalPages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Episodes, 1)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 2, resp.TotalPages)

	rec = f.get(t, "/api/episodes?limit=1&page=3")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Episodes)
	assert.Equal(t, 3, resp.Page)
}

type fakeRunner struct {
	created int
}

func (f *fakeRunner) Run(ctx context.Context) int {
	return f.created
}

func TestUpdateTrigger(t *testing.T) {
	r := chi.NewRouter()
	r.Route("/api/update", handlers.NewUpdateHandler(&fakeRunner{created: 3}).Routes)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/update", nil)
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"created": 3}`, rec.Body.String())
}
