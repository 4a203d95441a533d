// Copyright (c) 2025, Falcaol and the ledflix contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package handlers holds the JSON endpoints exposed to downstream
// consumers: anime and episode queries plus the manual update trigger.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
