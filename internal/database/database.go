// Copyright (c) 2025, Falcaol and the ledflix contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// DB wraps the sqlite handle and satisfies dbinterface.TxBeginner.
type DB struct {
	*sql.DB
}

// New opens (creating if needed) the sqlite database at path and applies
// pending migrations. Use ":memory:" for tests.
func New(path string) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// modernc/sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY churn between the scheduler and the API.
	sqlDB.SetMaxOpenConns(1)

	db := &DB{DB: sqlDB}

	if err := db.migrate(context.Background()); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return db, nil
}

var migrations = []string{
	`CREATE TABLE animes (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		title          TEXT NOT NULL,
		english_title  TEXT,
		romaji_title   TEXT,
		native_title   TEXT,
		image          TEXT NOT NULL DEFAULT '',
		total_episodes INTEGER,
		created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE UNIQUE INDEX idx_animes_title ON animes (title);

	CREATE TABLE episodes (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		title       TEXT NOT NULL,
		anime_id    INTEGER NOT NULL REFERENCES animes (id) ON DELETE CASCADE,
		number      REAL NOT NULL DEFAULT 0,
		season      INTEGER NOT NULL DEFAULT 1,
		link        TEXT NOT NULL DEFAULT '',
		video_links TEXT NOT NULL DEFAULT '[]',
		image       TEXT NOT NULL DEFAULT '',
		crunchyroll TEXT,
		air_date    TIMESTAMP,
		created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE UNIQUE INDEX idx_episodes_title ON episodes (title);
	CREATE INDEX idx_episodes_anime_id ON episodes (anime_id);
	CREATE INDEX idx_episodes_created_at ON episodes (created_at DESC);

	CREATE TABLE genres (
		id   INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL
	);

	CREATE UNIQUE INDEX idx_genres_name ON genres (name);

	CREATE TABLE anime_genres (
		anime_id INTEGER NOT NULL REFERENCES animes (id) ON DELETE CASCADE,
		genre_id INTEGER NOT NULL REFERENCES genres (id) ON DELETE CASCADE,
		PRIMARY KEY (anime_id, genre_id)
	);`,
}

func (db *DB) migrate(ctx context.Context) error {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version > len(migrations) {
		return fmt.Errorf("database schema version %d is newer than this build supports (%d)", version, len(migrations))
	}

	if version == len(migrations) {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i := version; i < len(migrations); i++ {
		if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
	}

	// PRAGMA does not accept bind parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", len(migrations))); err != nil {
		return fmt.Errorf("update schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	log.Debug().Int("from", version).Int("to", len(migrations)).Msg("Applied database migrations")
	return nil
}
