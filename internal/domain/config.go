// Copyright (c) 2025, Falcaol and the ledflix contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

// Config holds the application configuration, loaded from TOML and
// LEDFLIX__ environment variables.
type Config struct {
	Version string

	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	BaseURL string `mapstructure:"baseUrl"`

	LogLevel      string `mapstructure:"logLevel"`
	LogPath       string `mapstructure:"logPath"`
	LogMaxSize    int    `mapstructure:"logMaxSize"`
	LogMaxBackups int    `mapstructure:"logMaxBackups"`

	DataDir string `mapstructure:"dataDir"`

	// Raw episode source site.
	SourceURL string `mapstructure:"sourceUrl"`
	// Maximum episode cards consumed from the source per run.
	SourceMaxItems int `mapstructure:"sourceMaxItems"`

	// External schedule catalog.
	CatalogURL   string `mapstructure:"catalogUrl"`
	CatalogToken string `mapstructure:"catalogToken"`

	// Catalog response cache expiry in seconds.
	CacheExpirySeconds int `mapstructure:"cacheExpirySeconds"`

	// Background ingestion interval in minutes. 0 disables the scheduler.
	UpdateIntervalMinutes int `mapstructure:"updateIntervalMinutes"`
}
