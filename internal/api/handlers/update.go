// Copyright (c) 2025, Falcaol and the ledflix contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Runner triggers one ingestion pass and reports new episodes.
type Runner interface {
	Run(ctx context.Context) int
}

type UpdateHandler struct {
	runner Runner
}

func NewUpdateHandler(runner Runner) *UpdateHandler {
	return &UpdateHandler{runner: runner}
}

func (h *UpdateHandler) Routes(r chi.Router) {
	r.Post("/", h.update)
}

func (h *UpdateHandler) update(w http.ResponseWriter, r *http.Request) {
	created := h.runner.Run(r.Context())
	writeJSON(w, http.StatusOK, map[string]int{"created": created})
}
