// Copyright (c) 2025, Falcaol and the ledflix contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Falcaol/ledflix/internal/api"
	"github.com/Falcaol/ledflix/internal/buildinfo"
	"github.com/Falcaol/ledflix/internal/cache"
	"github.com/Falcaol/ledflix/internal/config"
	"github.com/Falcaol/ledflix/internal/database"
	"github.com/Falcaol/ledflix/internal/models"
	"github.com/Falcaol/ledflix/internal/services/catalog"
	"github.com/Falcaol/ledflix/internal/services/ingest"
	"github.com/Falcaol/ledflix/internal/services/scraper"
)

func main() {
	config.InitDefaultLogger(buildinfo.Version)

	var rootCmd = &cobra.Command{
		Use:   "ledflix",
		Short: "Anime episode ingestion and title resolution service",
		Long: `ledflix - scrapes episode releases from the source site, reconciles
them against the animeschedule catalog and serves the resolved shows
and episodes over a small JSON API.`,
	}

	rootCmd.Version = buildinfo.Version

	rootCmd.AddCommand(RunServeCommand())
	rootCmd.AddCommand(RunUpdateCommand())
	rootCmd.AddCommand(RunVersionCommand(buildinfo.Version))
	rootCmd.AddCommand(RunGenerateConfigCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func RunServeCommand() *cobra.Command {
	var (
		configDir string
		dataDir   string
		logPath   string
	)

	var command = &cobra.Command{
		Use:   "serve",
		Short: "Start the server and the ingestion scheduler",
	}

	command.Flags().StringVar(&configDir, "config-dir", "", "config directory path (default is OS-specific: ~/.config/ledflix/). Can also be a direct path to a .toml file")
	command.Flags().StringVar(&dataDir, "data-dir", "", "data directory for the database and cache file (default is next to the config file)")
	command.Flags().StringVar(&logPath, "log-path", "", "log file path (default is stdout)")

	command.Run = func(cmd *cobra.Command, args []string) {
		app := &Application{
			configDir: configDir,
			dataDir:   dataDir,
			logPath:   logPath,
		}
		app.runServer()
	}

	return command
}

func RunUpdateCommand() *cobra.Command {
	var configDir string

	var command = &cobra.Command{
		Use:   "update",
		Short: "Run a single ingestion pass and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New(configDir, buildinfo.Version)
			if err != nil {
				return errors.Wrap(err, "failed to initialize configuration")
			}
			cfg.ApplyLogConfig()

			db, err := database.New(cfg.GetDatabasePath())
			if err != nil {
				return errors.Wrap(err, "failed to initialize database")
			}
			defer db.Close()

			service := newIngestService(cfg, db)
			created := service.Run(cmd.Context())

			cmd.Printf("%d new episodes\n", created)
			return nil
		},
	}

	command.Flags().StringVar(&configDir, "config-dir", "", "config directory or file path (defaults to OS-specific location)")

	return command
}

func RunVersionCommand(version string) *cobra.Command {
	var command = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("ledflix %s (%s) built on %s\n", version, buildinfo.Commit, buildinfo.Date)
		},
	}

	return command
}

func RunGenerateConfigCommand() *cobra.Command {
	var configDir string

	command := &cobra.Command{
		Use:   "generate-config",
		Short: "Generate a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			var configPath string
			if configDir != "" {
				if strings.HasSuffix(strings.ToLower(configDir), ".toml") {
					configPath = configDir
				} else if info, err := os.Stat(configDir); err == nil && !info.IsDir() {
					configPath = configDir
				} else {
					configPath = filepath.Join(configDir, "config.toml")
				}
			} else {
				configPath = filepath.Join(config.GetDefaultConfigDir(), "config.toml")
			}

			if _, err := os.Stat(configPath); err == nil {
				cmd.Printf("Configuration file already exists at: %s\n", configPath)
				cmd.Println("Skipping generation to avoid overwriting existing configuration.")
				return nil
			}

			if err := config.WriteDefaultConfig(configPath); err != nil {
				return errors.Wrap(err, "failed to create configuration file")
			}

			cmd.Printf("Configuration file created successfully at: %s\n", configPath)
			return nil
		},
	}

	command.Flags().StringVar(&configDir, "config-dir", "",
		"config directory or file path (defaults to OS-specific location)")

	return command
}

type Application struct {
	configDir string
	dataDir   string
	logPath   string
}

func newIngestService(cfg *config.AppConfig, db *database.DB) *ingest.Service {
	searchCache := cache.New(cfg.GetCachePath(), cfg.CacheExpiry())
	catalogClient := catalog.NewClient(cfg.Config.CatalogURL, cfg.Config.CatalogToken, searchCache)
	sourceScraper := scraper.New(cfg.Config.SourceURL, cfg.Config.SourceMaxItems)

	return ingest.NewService(db, catalogClient, sourceScraper)
}

func (app *Application) runServer() {
	cfg, err := config.New(app.configDir, buildinfo.Version)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize configuration")
	}

	// Override with CLI flags if provided
	if app.dataDir != "" {
		os.Setenv("LEDFLIX__DATA_DIR", app.dataDir)
		cfg.SetDataDir(app.dataDir)
	}
	if app.logPath != "" {
		os.Setenv("LEDFLIX__LOG_PATH", app.logPath)
		cfg.Config.LogPath = app.logPath
	}

	cfg.ApplyLogConfig()

	log.Info().Str("version", buildinfo.Version).Msg("Starting ledflix")

	db, err := database.New(cfg.GetDatabasePath())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	ingestService := newIngestService(cfg, db)

	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()

	if interval := cfg.UpdateInterval(); interval > 0 {
		ingest.NewScheduler(ingestService, interval).Start(schedulerCtx)
	} else {
		log.Warn().Msg("Ingestion scheduler disabled, episodes only update via the manual trigger")
	}

	httpServer := api.NewServer(&api.Dependencies{
		Config:        cfg,
		Version:       buildinfo.Version,
		AnimeStore:    models.NewAnimeStore(db),
		EpisodeStore:  models.NewEpisodeStore(db),
		GenreStore:    models.NewGenreStore(db),
		IngestService: ingestService,
	})

	errorChannel := make(chan error)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorChannel <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Msgf("got signal %v, shutting down server", sig.String())
	case err := <-errorChannel:
		log.Error().Err(err).Msg("got unexpected error from server")
	}

	stopScheduler()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("got error during graceful http shutdown")
		os.Exit(1)
	}
}
