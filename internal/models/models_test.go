// Copyright (c) 2025, Falcaol and the ledflix contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Falcaol/ledflix/internal/database"
	"github.com/Falcaol/ledflix/internal/models"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func TestAnimeStoreCreateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	store := models.NewAnimeStore(db)
	ctx := context.Background()

	first, created, err := store.Create(ctx, &models.Anime{Title: "Frieren", Image: "frieren.jpg"})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := store.Create(ctx, &models.Anime{Title: "Frieren", Image: "other.jpg"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "frieren.jpg", second.Image, "duplicate insert must not overwrite the original row")

	animes, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, animes, 1)
}

func TestAnimeStoreSearch(t *testing.T) {
	db := newTestDB(t)
	store := models.NewAnimeStore(db)
	ctx := context.Background()

	for _, title := range []string{"One Piece", "One Punch Man", "Bleach"} {
		_, _, err := store.Create(ctx, &models.Anime{Title: title})
		require.NoError(t, err)
	}

	results, err := store.Search(ctx, "one p")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "One Piece", results[0].Title)

	results, err = store.Search(ctx, "BLEACH")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Bleach", results[0].Title)

	results, err = store.Search(ctx, "naruto")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestAnimeStoreGetByIDMissing(t *testing.T) {
	db := newTestDB(t)
	store := models.NewAnimeStore(db)

	_, err := store.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestEpisodeStoreCreateDeduplicatesByTitle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	anime, _, err := models.NewAnimeStore(db).Create(ctx, &models.Anime{Title: "Frieren"})
	require.NoError(t, err)

	store := models.NewEpisodeStore(db)

	first, created, err := store.Create(ctx, &models.Episode{
		Title:      "Frieren - Episode 12 VOSTFR",
		AnimeID:    anime.ID,
		Number:     12,
		Link:       "https://example.org/frieren-12",
		VideoLinks: []string{"https://player.example.org/a"},
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 1, first.Season)

	_, created, err = store.Create(ctx, &models.Episode{
		Title:   "Frieren - Episode 12 VOSTFR",
		AnimeID: anime.ID,
		Number:  12,
	})
	require.NoError(t, err)
	assert.False(t, created)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestEpisodeStoreLatestJoinsAnimeTitle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	anime, _, err := models.NewAnimeStore(db).Create(ctx, &models.Anime{Title: "Frieren"})
	require.NoError(t, err)

	store := models.NewEpisodeStore(db)
	for _, title := range []string{"Frieren - Episode 1", "Frieren - Episode 2"} {
		_, _, err := store.Create(ctx, &models.Episode{Title: title, AnimeID: anime.ID})
		require.NoError(t, err)
	}

	episodes, err := store.Latest(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, episodes, 2)
	assert.Equal(t, "Frieren", episodes[0].AnimeTitle)
	assert.NotNil(t, episodes[0].VideoLinks)
}

func TestGenreStoreEnsureLinked(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	anime, _, err := models.NewAnimeStore(db).Create(ctx, &models.Anime{Title: "Frieren"})
	require.NoError(t, err)

	store := models.NewGenreStore(db)

	linked, err := store.HasAny(ctx, anime.ID)
	require.NoError(t, err)
	assert.False(t, linked)

	require.NoError(t, store.EnsureLinked(ctx, anime.ID, []string{"Adventure", "Fantasy"}))
	require.NoError(t, store.EnsureLinked(ctx, anime.ID, []string{"Fantasy", "Drama"}))

	// Casing variants collapse onto the stored spelling.
	require.NoError(t, store.EnsureLinked(ctx, anime.ID, []string{"FANTASY"}))

	names, err := store.ListByAnime(ctx, anime.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Adventure", "Drama", "Fantasy"}, names)

	linked, err = store.HasAny(ctx, anime.ID)
	require.NoError(t, err)
	assert.True(t, linked)
}
