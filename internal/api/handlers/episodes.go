// Copyright (c) 2025, Falcaol and the ledflix contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/Falcaol/ledflix/internal/models"
)

const defaultPageSize = 24

type EpisodesHandler struct {
	episodeStore *models.EpisodeStore
}

func NewEpisodesHandler(episodeStore *models.EpisodeStore) *EpisodesHandler {
	return &EpisodesHandler{episodeStore: episodeStore}
}

func (h *EpisodesHandler) Routes(r chi.Router) {
	r.Get("/", h.latest)
}

type episodesResponse struct {
	Episodes   []*models.Episode `json:"episodes"`
	Page       int               `json:"page"`
	TotalPages int               `json:"totalPages"`
}

func (h *EpisodesHandler) latest(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}

	perPage := queryInt(r, "limit", defaultPageSize)
	if perPage < 1 || perPage > 100 {
		perPage = defaultPageSize
	}

	episodes, err := h.episodeStore.Latest(r.Context(), perPage, (page-1)*perPage)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list episodes")
		writeError(w, http.StatusInternalServerError, "failed to list episodes")
		return
	}

	total, err := h.episodeStore.Count(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to count episodes")
		writeError(w, http.StatusInternalServerError, "failed to list episodes")
		return
	}

	if episodes == nil {
		episodes = []*models.Episode{}
	}

	writeJSON(w, http.StatusOK, episodesResponse{
		Episodes:   episodes,
		Page:       page,
		TotalPages: (total + perPage - 1) / perPage,
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
