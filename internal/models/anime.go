// Copyright (c) 2025, Falcaol and the ledflix contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/Falcaol/ledflix/internal/dbinterface"
)

type Anime struct {
	ID            int       `json:"id"`
	Title         string    `json:"title"`
	EnglishTitle  string    `json:"englishTitle,omitempty"`
	RomajiTitle   string    `json:"romajiTitle,omitempty"`
	NativeTitle   string    `json:"nativeTitle,omitempty"`
	Image         string    `json:"image"`
	TotalEpisodes int       `json:"totalEpisodes,omitempty"`
	Genres        []string  `json:"genres,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

type AnimeStore struct {
	db dbinterface.Querier
}

func NewAnimeStore(db dbinterface.Querier) *AnimeStore {
	return &AnimeStore{db: db}
}

const animeColumns = `id, title, english_title, romaji_title, native_title, image, total_episodes, created_at`

func scanAnime(row interface{ Scan(...any) error }) (*Anime, error) {
	var a Anime
	var english, romaji, native sql.NullString
	var total sql.NullInt64

	if err := row.Scan(&a.ID, &a.Title, &english, &romaji, &native, &a.Image, &total, &a.CreatedAt); err != nil {
		return nil, err
	}

	a.EnglishTitle = english.String
	a.RomajiTitle = romaji.String
	a.NativeTitle = native.String
	a.TotalEpisodes = int(total.Int64)
	return &a, nil
}

func (s *AnimeStore) List(ctx context.Context) ([]*Anime, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+animeColumns+`
		FROM animes
		ORDER BY title COLLATE NOCASE ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var animes []*Anime
	for rows.Next() {
		a, err := scanAnime(rows)
		if err != nil {
			return nil, err
		}
		animes = append(animes, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return animes, nil
}

// Search matches the query as a case-insensitive substring against every
// stored title, then orders results by fuzzy closeness to the query.
func (s *AnimeStore) Search(ctx context.Context, query string) ([]*Anime, error) {
	pattern := "%" + query + "%"

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+animeColumns+`
		FROM animes
		WHERE title LIKE ? COLLATE NOCASE
		   OR english_title LIKE ? COLLATE NOCASE
		   OR romaji_title LIKE ? COLLATE NOCASE
	`, pattern, pattern, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var animes []*Anime
	for rows.Next() {
		a, err := scanAnime(rows)
		if err != nil {
			return nil, err
		}
		animes = append(animes, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(animes, func(i, j int) bool {
		return searchRank(query, animes[i].Title) < searchRank(query, animes[j].Title)
	})

	return animes, nil
}

// searchRank maps a non-match to a large rank instead of fuzzy's -1 so
// LIKE hits that fuzzy rejects sort last rather than first.
func searchRank(query, title string) int {
	rank := fuzzy.RankMatchNormalizedFold(query, title)
	if rank < 0 {
		return 1 << 30
	}
	return rank
}

func (s *AnimeStore) GetByID(ctx context.Context, id int) (*Anime, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+animeColumns+`
		FROM animes
		WHERE id = ?
	`, id)

	return scanAnime(row)
}

func (s *AnimeStore) GetByTitle(ctx context.Context, title string) (*Anime, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+animeColumns+`
		FROM animes
		WHERE title = ?
	`, title)

	return scanAnime(row)
}

// Create inserts the anime, treating a duplicate title as an existing row.
// The returned bool reports whether a new row was inserted.
func (s *AnimeStore) Create(ctx context.Context, a *Anime) (*Anime, bool, error) {
	if a == nil {
		return nil, false, errors.New("anime is nil")
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO animes (title, english_title, romaji_title, native_title, image, total_episodes)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.Title, nullString(a.EnglishTitle), nullString(a.RomajiTitle), nullString(a.NativeTitle), a.Image, nullInt(a.TotalEpisodes))
	if err != nil {
		return nil, false, err
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}

	stored, err := s.GetByTitle(ctx, a.Title)
	if err != nil {
		return nil, false, err
	}

	return stored, inserted > 0, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
