// Copyright (c) 2025, Falcaol and the ledflix contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Falcaol/ledflix/internal/dbinterface"
)

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type GenreStore struct {
	db dbinterface.Querier
}

func NewGenreStore(db dbinterface.Querier) *GenreStore {
	return &GenreStore{db: db}
}

var genreCaser = cases.Title(language.Und)

// canonicalGenre folds catalog casing variants ("SLICE OF LIFE",
// "slice of life") onto one stored spelling.
func canonicalGenre(name string) string {
	return genreCaser.String(strings.ToLower(strings.TrimSpace(name)))
}

// EnsureLinked creates any missing genres and links them to the anime.
// Existing genres and links are left untouched.
func (s *GenreStore) EnsureLinked(ctx context.Context, animeID int, names []string) error {
	for _, name := range names {
		name = canonicalGenre(name)
		if name == "" {
			continue
		}

		if _, err := s.db.ExecContext(ctx, `
			INSERT OR IGNORE INTO genres (name) VALUES (?)
		`, name); err != nil {
			return err
		}

		var genreID int
		if err := s.db.QueryRowContext(ctx, `
			SELECT id FROM genres WHERE name = ?
		`, name).Scan(&genreID); err != nil {
			return err
		}

		if _, err := s.db.ExecContext(ctx, `
			INSERT OR IGNORE INTO anime_genres (anime_id, genre_id) VALUES (?, ?)
		`, animeID, genreID); err != nil {
			return err
		}
	}

	return nil
}

// HasAny reports whether the anime has at least one linked genre.
func (s *GenreStore) HasAny(ctx context.Context, animeID int) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM anime_genres WHERE anime_id = ?
	`, animeID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GenreStore) ListByAnime(ctx context.Context, animeID int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.name
		FROM genres g
		JOIN anime_genres ag ON ag.genre_id = g.id
		WHERE ag.anime_id = ?
		ORDER BY g.name ASC
	`, animeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return names, nil
}
