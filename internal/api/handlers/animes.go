// Copyright (c) 2025, Falcaol and the ledflix contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/Falcaol/ledflix/internal/models"
)

type AnimesHandler struct {
	animeStore   *models.AnimeStore
	episodeStore *models.EpisodeStore
	genreStore   *models.GenreStore
}

func NewAnimesHandler(animeStore *models.AnimeStore, episodeStore *models.EpisodeStore, genreStore *models.GenreStore) *AnimesHandler {
	return &AnimesHandler{
		animeStore:   animeStore,
		episodeStore: episodeStore,
		genreStore:   genreStore,
	}
}

func (h *AnimesHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{animeID}", h.get)
}

func (h *AnimesHandler) list(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	var (
		animes []*models.Anime
		err    error
	)
	if query != "" {
		animes, err = h.animeStore.Search(r.Context(), query)
	} else {
		animes, err = h.animeStore.List(r.Context())
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to list animes")
		writeError(w, http.StatusInternalServerError, "failed to list animes")
		return
	}

	if animes == nil {
		animes = []*models.Anime{}
	}

	writeJSON(w, http.StatusOK, animes)
}

type animeDetailResponse struct {
	*models.Anime
	Episodes []*models.Episode `json:"episodes"`
}

func (h *AnimesHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "animeID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid anime id")
		return
	}

	anime, err := h.animeStore.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "anime not found")
			return
		}
		log.Error().Err(err).Int("id", id).Msg("Failed to get anime")
		writeError(w, http.StatusInternalServerError, "failed to get anime")
		return
	}

	if anime.Genres, err = h.genreStore.ListByAnime(r.Context(), id); err != nil {
		log.Error().Err(err).Int("id", id).Msg("Failed to list genres")
		writeError(w, http.StatusInternalServerError, "failed to get anime")
		return
	}

	episodes, err := h.episodeStore.ListByAnime(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Int("id", id).Msg("Failed to list episodes")
		writeError(w, http.StatusInternalServerError, "failed to get anime")
		return
	}

	if episodes == nil {
		episodes = []*models.Episode{}
	}

	writeJSON(w, http.StatusOK, animeDetailResponse{Anime: anime, Episodes: episodes})
}
