// Copyright (c) 2025, Falcaol and the ledflix contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package ingest runs the scrape-match-persist pipeline: raw episode
// items from the source site are reconciled against the catalog's
// timetable and stored without creating duplicate shows or episodes.
package ingest

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/Falcaol/ledflix/internal/database"
	"github.com/Falcaol/ledflix/internal/dbinterface"
	"github.com/Falcaol/ledflix/internal/models"
	"github.com/Falcaol/ledflix/internal/services/catalog"
	"github.com/Falcaol/ledflix/internal/services/scraper"
	"github.com/Falcaol/ledflix/internal/titles"
)

// timetableThreshold is looser than the catalog search threshold:
// timetable entries are a small, current set, so a weaker match is
// still trustworthy.
const timetableThreshold = 0.6

// minContainmentLength guards the substring fallback in anime lookup;
// very short normalized titles contain each other far too easily.
const minContainmentLength = 4

type Source interface {
	LatestEpisodes(ctx context.Context) ([]scraper.Item, error)
}

type Catalog interface {
	Timetable(ctx context.Context) ([]catalog.Entry, error)
	Search(ctx context.Context, title string) (*catalog.Entry, error)
	AnimeDetail(ctx context.Context, route string) (*catalog.Detail, error)
}

type Service struct {
	db      *database.DB
	catalog Catalog
	source  Source

	// runMu serializes pipeline runs; the scheduler and the manual
	// trigger may fire at the same time.
	runMu sync.Mutex
}

func NewService(db *database.DB, cat Catalog, src Source) *Service {
	return &Service{
		db:      db,
		catalog: cat,
		source:  src,
	}
}

// Run executes one full pipeline pass and returns the number of newly
// created episodes. It never fails: an unreachable source yields 0,
// and a bad item is skipped, not fatal. Concurrent calls are
// serialized.
func (s *Service) Run(ctx context.Context) int {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	start := time.Now()

	timetable, err := s.catalog.Timetable(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Catalog timetable unavailable, matching against search only")
		timetable = nil
	}

	items, err := s.source.LatestEpisodes(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Source scrape failed, ending run")
		return 0
	}

	created := 0
	for _, item := range items {
		ok, err := s.ingestItem(ctx, item, timetable)
		if err != nil {
			log.Warn().Err(err).Str("title", item.Title).Msg("Failed to ingest episode, skipping")
			continue
		}
		if ok {
			created++
		}
	}

	log.Info().
		Int("scraped", len(items)).
		Int("created", created).
		Dur("elapsed", time.Since(start)).
		Msg("Ingestion run finished")

	return created
}

// ingestItem resolves and persists one raw episode. The returned bool
// reports whether a new episode row was created.
func (s *Service) ingestItem(ctx context.Context, item scraper.Item, timetable []catalog.Entry) (bool, error) {
	if item.Title == "" || item.Link == "" {
		log.Debug().Str("title", item.Title).Msg("Skipping item with missing title or link")
		return false, nil
	}

	entry := catalog.BestMatch(item.Title, timetable, timetableThreshold)
	if entry == nil {
		// Not airing this week, or the timetable was unavailable. Try
		// the stricter cached catalog search before giving up on
		// enrichment.
		found, err := s.catalog.Search(ctx, titles.AnimeTitle(item.Title))
		if err != nil {
			log.Debug().Err(err).Str("title", item.Title).Msg("Catalog search failed, ingesting without enrichment")
		} else {
			entry = found
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	animeStore := models.NewAnimeStore(tx)
	episodeStore := models.NewEpisodeStore(tx)

	anime, animeCreated, err := s.resolveAnime(ctx, animeStore, item, entry)
	if err != nil {
		return false, err
	}

	episode, created, err := episodeStore.Create(ctx, buildEpisode(item, entry, anime))
	if err != nil {
		return false, err
	}

	if entry != nil {
		// Fetch genre tags for newly discovered shows, and backfill
		// shows that were first ingested without a catalog match.
		needGenres := animeCreated
		if !needGenres {
			linked, err := models.NewGenreStore(tx).HasAny(ctx, anime.ID)
			if err != nil {
				return false, err
			}
			needGenres = !linked
		}
		if needGenres {
			if err := s.attachGenres(ctx, tx, anime.ID, entry.Route); err != nil {
				log.Debug().Err(err).Str("route", entry.Route).Msg("Failed to fetch genre tags")
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}

	if created {
		log.Info().Str("episode", episode.Title).Str("anime", anime.Title).Msg("New episode ingested")
	}

	return created, nil
}

// resolveAnime finds or creates the show a raw item belongs to. The
// identity key prefers the catalog's title; unmatched items fall back
// to the cleaned scraped title.
func (s *Service) resolveAnime(ctx context.Context, store *models.AnimeStore, item scraper.Item, entry *catalog.Entry) (*models.Anime, bool, error) {
	key := titles.AnimeTitle(item.Title)
	record := &models.Anime{
		Title: key,
		Image: item.Image,
	}

	if entry != nil {
		key = entry.CanonicalTitle()
		record = &models.Anime{
			Title:         key,
			EnglishTitle:  entry.English,
			RomajiTitle:   entry.Romaji,
			NativeTitle:   entry.Native,
			Image:         entry.ImageURL(),
			TotalEpisodes: entry.Episodes,
		}
		if record.Image == "" {
			record.Image = item.Image
		}
	}

	if existing, err := findAnime(ctx, store, key); err != nil {
		return nil, false, err
	} else if existing != nil {
		return existing, false, nil
	}

	anime, created, err := store.Create(ctx, record)
	return anime, created, err
}

// findAnime looks the key up by exact title first, then by normalized
// substring containment to absorb formatting drift between sources.
func findAnime(ctx context.Context, store *models.AnimeStore, key string) (*models.Anime, error) {
	if anime, err := store.GetByTitle(ctx, key); err == nil {
		return anime, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	normalized := titles.Normalize(key)
	if utf8.RuneCountInString(normalized) < minContainmentLength {
		return nil, nil
	}

	animes, err := store.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, a := range animes {
		candidate := titles.Normalize(a.Title)
		if utf8.RuneCountInString(candidate) < minContainmentLength {
			continue
		}
		if strings.Contains(candidate, normalized) || strings.Contains(normalized, candidate) {
			return a, nil
		}
	}

	return nil, nil
}

func buildEpisode(item scraper.Item, entry *catalog.Entry, anime *models.Anime) *models.Episode {
	episode := &models.Episode{
		Title:      item.Title,
		AnimeID:    anime.ID,
		Number:     titles.ExtractEpisode(item.Title, anime.TotalEpisodes),
		Season:     titles.ExtractSeason(item.Title),
		Link:       item.Link,
		VideoLinks: item.VideoLinks,
		Image:      item.Image,
	}

	if entry != nil {
		if episode.Number == 0 {
			episode.Number = float64(entry.EpisodeNumber)
		}
		episode.Crunchyroll = entry.Crunchyroll()
		episode.AirDate = entry.EpisodeDate
	}

	if episode.AirDate == nil {
		now := time.Now().UTC()
		episode.AirDate = &now
	}

	return episode
}

func (s *Service) attachGenres(ctx context.Context, q dbinterface.Querier, animeID int, route string) error {
	detail, err := s.catalog.AnimeDetail(ctx, route)
	if err != nil {
		return err
	}

	return models.NewGenreStore(q).EnsureLinked(ctx, animeID, detail.GenreNames())
}
