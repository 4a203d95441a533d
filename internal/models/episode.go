// Copyright (c) 2025, Falcaol and the ledflix contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/Falcaol/ledflix/internal/dbinterface"
)

type Episode struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	AnimeID     int        `json:"animeId"`
	AnimeTitle  string     `json:"animeTitle,omitempty"`
	Number      float64    `json:"number"`
	Season      int        `json:"season"`
	Link        string     `json:"link"`
	VideoLinks  []string   `json:"videoLinks"`
	Image       string     `json:"image"`
	Crunchyroll string     `json:"crunchyroll,omitempty"`
	AirDate     *time.Time `json:"airDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type EpisodeStore struct {
	db dbinterface.Querier
}

func NewEpisodeStore(db dbinterface.Querier) *EpisodeStore {
	return &EpisodeStore{db: db}
}

const episodeColumns = `e.id, e.title, e.anime_id, e.number, e.season, e.link, e.video_links, e.image, e.crunchyroll, e.air_date, e.created_at`

func scanEpisode(row interface{ Scan(...any) error }) (*Episode, error) {
	var e Episode
	var videoLinks string
	var crunchyroll sql.NullString
	var airDate sql.NullTime

	if err := row.Scan(&e.ID, &e.Title, &e.AnimeID, &e.Number, &e.Season, &e.Link, &videoLinks, &e.Image, &crunchyroll, &airDate, &e.CreatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(videoLinks), &e.VideoLinks); err != nil {
		return nil, err
	}

	e.Crunchyroll = crunchyroll.String
	if airDate.Valid {
		e.AirDate = &airDate.Time
	}

	return &e, nil
}

// Latest returns the most recently ingested episodes, newest first, with
// the owning anime's title attached.
func (s *EpisodeStore) Latest(ctx context.Context, limit, offset int) ([]*Episode, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+episodeColumns+`, a.title
		FROM episodes e
		JOIN animes a ON a.id = e.anime_id
		ORDER BY e.created_at DESC, e.id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var episodes []*Episode
	for rows.Next() {
		var e Episode
		var videoLinks string
		var crunchyroll sql.NullString
		var airDate sql.NullTime

		if err := rows.Scan(&e.ID, &e.Title, &e.AnimeID, &e.Number, &e.Season, &e.Link, &videoLinks, &e.Image, &crunchyroll, &airDate, &e.CreatedAt, &e.AnimeTitle); err != nil {
			return nil, err
		}

		if err := json.Unmarshal([]byte(videoLinks), &e.VideoLinks); err != nil {
			return nil, err
		}

		e.Crunchyroll = crunchyroll.String
		if airDate.Valid {
			e.AirDate = &airDate.Time
		}

		episodes = append(episodes, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return episodes, nil
}

func (s *EpisodeStore) ListByAnime(ctx context.Context, animeID int) ([]*Episode, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+episodeColumns+`
		FROM episodes e
		WHERE e.anime_id = ?
		ORDER BY e.season ASC, e.number ASC
	`, animeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var episodes []*Episode
	for rows.Next() {
		e, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return episodes, nil
}

func (s *EpisodeStore) GetByTitle(ctx context.Context, title string) (*Episode, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+episodeColumns+`
		FROM episodes e
		WHERE e.title = ?
	`, title)

	return scanEpisode(row)
}

func (s *EpisodeStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM episodes`).Scan(&count)
	return count, err
}

// Create inserts the episode, treating a duplicate title as an existing
// row. The returned bool reports whether a new row was inserted.
func (s *EpisodeStore) Create(ctx context.Context, e *Episode) (*Episode, bool, error) {
	if e == nil {
		return nil, false, errors.New("episode is nil")
	}

	videoLinks := e.VideoLinks
	if videoLinks == nil {
		videoLinks = []string{}
	}

	linksJSON, err := json.Marshal(videoLinks)
	if err != nil {
		return nil, false, err
	}

	season := e.Season
	if season == 0 {
		season = 1
	}

	var airDate any
	if e.AirDate != nil {
		airDate = *e.AirDate
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO episodes (title, anime_id, number, season, link, video_links, image, crunchyroll, air_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.Title, e.AnimeID, e.Number, season, e.Link, string(linksJSON), e.Image, nullString(e.Crunchyroll), airDate)
	if err != nil {
		return nil, false, err
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}

	stored, err := s.GetByTitle(ctx, e.Title)
	if err != nil {
		return nil, false, err
	}

	return stored, inserted > 0, nil
}
