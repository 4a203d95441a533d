// Copyright (c) 2025, Falcaol and the ledflix contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Falcaol/ledflix/internal/api/handlers"
	"github.com/Falcaol/ledflix/internal/config"
	"github.com/Falcaol/ledflix/internal/models"
	"github.com/Falcaol/ledflix/internal/services/ingest"
)

type Server struct {
	server  *http.Server
	logger  zerolog.Logger
	config  *config.AppConfig
	version string

	animeStore    *models.AnimeStore
	episodeStore  *models.EpisodeStore
	genreStore    *models.GenreStore
	ingestService *ingest.Service
}

type Dependencies struct {
	Config        *config.AppConfig
	Version       string
	AnimeStore    *models.AnimeStore
	EpisodeStore  *models.EpisodeStore
	GenreStore    *models.GenreStore
	IngestService *ingest.Service
}

func NewServer(deps *Dependencies) *Server {
	return &Server{
		server: &http.Server{
			ReadHeaderTimeout: 15 * time.Second,
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      120 * time.Second,
			IdleTimeout:       180 * time.Second,
		},
		logger:        log.Logger.With().Str("module", "api").Logger(),
		config:        deps.Config,
		version:       deps.Version,
		animeStore:    deps.AnimeStore,
		episodeStore:  deps.EpisodeStore,
		genreStore:    deps.GenreStore,
		ingestService: deps.IngestService,
	}
}

func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.config.Config.Host, s.config.Config.Port)

	var lastErr error
	for _, proto := range []string{"tcp", "tcp4", "tcp6"} {
		err := s.tryToServe(addr, proto)
		if err == nil {
			return nil
		}

		if errors.Is(err, http.ErrServerClosed) {
			return err
		}

		s.logger.Error().Err(err).Str("addr", addr).Str("proto", proto).Msg("Failed to start server")
		lastErr = err
	}

	return lastErr
}

func (s *Server) tryToServe(addr, protocol string) error {
	listener, err := net.Listen(protocol, addr)
	if err != nil {
		return err
	}

	host := listener.Addr().String()
	// Replace 0.0.0.0 or :: with localhost for clickable links
	if strings.HasPrefix(host, "0.0.0.0:") || strings.HasPrefix(host, "[::]:") {
		host = strings.Replace(host, "0.0.0.0:", "localhost:", 1)
		host = strings.Replace(host, "[::]:", "localhost:", 1)
	}

	s.logger.Info().
		Str("protocol", protocol).
		Str("addr", listener.Addr().String()).
		Msgf("Starting API server - Open: http://%s", host)

	s.server.Handler = s.Handler()

	return s.server.Serve(listener)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) Handler() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	corsMiddleware := cors.New(cors.Options{
		AllowedMethods:  []string{"HEAD", "OPTIONS", "GET", "POST"},
		AllowedHeaders:  []string{"Accept", "Authorization", "Content-Type"},
		AllowOriginFunc: func(origin string) bool { return true },
		MaxAge:          300,
	})
	r.Use(corsMiddleware.Handler)

	healthHandler := handlers.NewHealthHandler(s.version)
	animesHandler := handlers.NewAnimesHandler(s.animeStore, s.episodeStore, s.genreStore)
	episodesHandler := handlers.NewEpisodesHandler(s.episodeStore)
	updateHandler := handlers.NewUpdateHandler(s.ingestService)

	r.Route("/health", healthHandler.Routes)

	r.Route("/api", func(r chi.Router) {
		r.Route("/animes", animesHandler.Routes)
		r.Route("/episodes", episodesHandler.Routes)
		r.Route("/update", updateHandler.Routes)
	})

	return r
}
