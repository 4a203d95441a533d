// Copyright (c) 2025, Falcaol and the ledflix contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"text/template"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Falcaol/ledflix/internal/domain"
)

var envPrefix = "LEDFLIX__"

type AppConfig struct {
	Config  *domain.Config
	viper   *viper.Viper
	dataDir string
	version string
}

func New(configDirOrPath string, versions ...string) (*AppConfig, error) {
	version := "dev"
	if len(versions) > 0 && strings.TrimSpace(versions[0]) != "" {
		version = versions[0]
	}

	c := &AppConfig{
		viper:   viper.New(),
		Config:  &domain.Config{},
		version: version,
	}

	c.defaults()

	if err := c.load(configDirOrPath); err != nil {
		return nil, err
	}

	c.loadFromEnv()

	if err := c.viper.Unmarshal(c.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	c.Config.Version = c.version

	c.resolveDataDir()

	c.watchConfig()

	return c, nil
}

func (c *AppConfig) defaults() {
	host := "localhost"
	if detectContainer() {
		host = "0.0.0.0"
	}

	c.viper.SetDefault("host", host)
	c.viper.SetDefault("port", 7480)
	c.viper.SetDefault("baseUrl", "/")
	c.viper.SetDefault("logLevel", "INFO")
	c.viper.SetDefault("logPath", "")
	c.viper.SetDefault("logMaxSize", 50)
	c.viper.SetDefault("logMaxBackups", 3)
	c.viper.SetDefault("dataDir", "") // Empty means auto-detect (next to config file)

	c.viper.SetDefault("sourceUrl", "https://mavanimes.co/")
	c.viper.SetDefault("sourceMaxItems", 100)
	c.viper.SetDefault("catalogUrl", "https://animeschedule.net/api/v3")
	c.viper.SetDefault("catalogToken", "")
	c.viper.SetDefault("cacheExpirySeconds", 3600)
	c.viper.SetDefault("updateIntervalMinutes", 15)
}

func (c *AppConfig) load(configDirOrPath string) error {
	c.viper.SetConfigType("toml")

	if configDirOrPath != "" {
		configPath := c.resolveConfigPath(configDirOrPath)
		c.viper.SetConfigFile(configPath)

		if err := c.viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				if err := c.writeDefaultConfig(configPath); err != nil {
					return err
				}
				if err := c.viper.ReadInConfig(); err != nil {
					return fmt.Errorf("failed to read newly created config: %w", err)
				}
				return nil
			}
			return fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		c.viper.SetConfigName("config")
		c.viper.AddConfigPath(".")
		c.viper.AddConfigPath(GetDefaultConfigDir())

		if err := c.viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				defaultConfigPath := filepath.Join(GetDefaultConfigDir(), "config.toml")
				if err := c.writeDefaultConfig(defaultConfigPath); err != nil {
					return err
				}
				c.viper.SetConfigFile(defaultConfigPath)
				if err := c.viper.ReadInConfig(); err != nil {
					return fmt.Errorf("failed to read newly created config: %w", err)
				}
				c.dataDir = filepath.Dir(defaultConfigPath)
				return nil
			}
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	return nil
}

func (c *AppConfig) loadFromEnv() {
	// Explicit bindings only; AutomaticEnv reads ALL env vars and conflicts
	// with orchestrator-injected variables.
	c.viper.BindEnv("host", envPrefix+"HOST")
	c.viper.BindEnv("port", envPrefix+"PORT")
	c.viper.BindEnv("baseUrl", envPrefix+"BASE_URL")
	c.viper.BindEnv("logLevel", envPrefix+"LOG_LEVEL")
	c.viper.BindEnv("logPath", envPrefix+"LOG_PATH")
	c.viper.BindEnv("logMaxSize", envPrefix+"LOG_MAX_SIZE")
	c.viper.BindEnv("logMaxBackups", envPrefix+"LOG_MAX_BACKUPS")
	c.viper.BindEnv("dataDir", envPrefix+"DATA_DIR")
	c.viper.BindEnv("sourceUrl", envPrefix+"SOURCE_URL")
	c.viper.BindEnv("sourceMaxItems", envPrefix+"SOURCE_MAX_ITEMS")
	c.viper.BindEnv("catalogUrl", envPrefix+"CATALOG_URL")
	c.bindOrReadFromFile("catalogToken", envPrefix+"CATALOG_TOKEN")
	c.viper.BindEnv("cacheExpirySeconds", envPrefix+"CACHE_EXPIRY_SECONDS")
	c.viper.BindEnv("updateIntervalMinutes", envPrefix+"UPDATE_INTERVAL_MINUTES")
}

func (c *AppConfig) watchConfig() {
	c.viper.WatchConfig()
	c.viper.OnConfigChange(func(e fsnotify.Event) {
		log.Info().Msgf("Config file changed: %s", e.Name)

		if err := c.viper.Unmarshal(c.Config); err != nil {
			log.Error().Err(err).Msg("Failed to reload configuration")
			return
		}

		c.Config.Version = c.version
		c.ApplyLogConfig()
	})
}

func (c *AppConfig) writeDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		log.Debug().Msgf("Config file already exists at: %s", path)
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}

	configTemplate := `# config.toml - Auto-generated on first run

# Hostname / IP
# Default: "localhost" (or "0.0.0.0" in containers)
host = "{{ .host }}"

# Port
# Default: 7480
port = {{ .port }}

# Base URL
# Set custom baseUrl eg /ledflix/ to serve in subdirectory.
# Optional
#baseUrl = "/ledflix/"

# Log file path
# If not defined, logs to stdout
# Optional
#logPath = "log/ledflix.log"

# Log rotation
# Maximum log file size in megabytes before rotation
# Default: {{ .logMaxSize }}
#logMaxSize = {{ .logMaxSize }}

# Number of rotated log files to retain (0 keeps all)
# Default: {{ .logMaxBackups }}
#logMaxBackups = {{ .logMaxBackups }}

# Data directory (default: next to config file)
# Database file (ledflix.db) and the catalog cache file live inside it
#dataDir = "/var/db/ledflix"

# Log level
# Default: "INFO"
# Options: "ERROR", "DEBUG", "INFO", "WARN", "TRACE"
logLevel = "{{ .logLevel }}"

# Episode source site scraped for new releases
# Default: "{{ .sourceUrl }}"
#sourceUrl = "{{ .sourceUrl }}"

# Maximum episode cards consumed from the source per ingestion run
# Default: {{ .sourceMaxItems }}
#sourceMaxItems = {{ .sourceMaxItems }}

# Schedule catalog API base URL
# Default: "{{ .catalogUrl }}"
#catalogUrl = "{{ .catalogUrl }}"

# Schedule catalog bearer token
# Required for catalog enrichment; without it episodes are ingested with
# source data only.
catalogToken = ""

# Catalog response cache expiry in seconds
# Default: {{ .cacheExpirySeconds }}
#cacheExpirySeconds = {{ .cacheExpirySeconds }}

# Background ingestion interval in minutes (0 disables the scheduler)
# Default: {{ .updateIntervalMinutes }}
#updateIntervalMinutes = {{ .updateIntervalMinutes }}
`

	data := map[string]any{
		"host":                  c.viper.GetString("host"),
		"port":                  c.viper.GetInt("port"),
		"logLevel":              c.viper.GetString("logLevel"),
		"logMaxSize":            c.viper.GetInt("logMaxSize"),
		"logMaxBackups":         c.viper.GetInt("logMaxBackups"),
		"sourceUrl":             c.viper.GetString("sourceUrl"),
		"sourceMaxItems":        c.viper.GetInt("sourceMaxItems"),
		"catalogUrl":            c.viper.GetString("catalogUrl"),
		"cacheExpirySeconds":    c.viper.GetInt("cacheExpirySeconds"),
		"updateIntervalMinutes": c.viper.GetInt("updateIntervalMinutes"),
	}

	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse config template: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	log.Info().Msgf("Created default config file: %s", path)
	return nil
}

// Helper functions

// GetDefaultConfigDir returns the OS-specific config directory
func GetDefaultConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if xdgConfig == "/config" {
			return xdgConfig
		}
		return filepath.Join(xdgConfig, "ledflix")
	}

	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "ledflix")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "AppData", "Roaming", "ledflix")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "ledflix")
	}
}

func detectContainer() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	if _, err := os.Stat("/dev/.lxc-boot-id"); err == nil {
		return true
	}
	if os.Getpid() == 1 {
		return true
	}
	return false
}

func (c *AppConfig) ApplyLogConfig() {
	zerolog.TimeFieldFormat = time.RFC3339

	setLogLevel(c.Config.LogLevel)

	writer := c.baseLogWriter()

	if c.Config.LogPath != "" {
		multiWriter, err := setupLogFile(c.Config.LogPath, writer, c.Config.LogMaxSize, c.Config.LogMaxBackups)
		if err != nil {
			log.Error().Err(err).Msg("Failed to setup log file")
		} else {
			writer = multiWriter
		}
	}

	log.Logger = log.Logger.Output(writer)
}

func setLogLevel(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Logger.Level(lvl)
}

func setupLogFile(path string, base io.Writer, maxSize, maxBackups int) (io.Writer, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	if maxSize <= 0 {
		maxSize = 50
	}

	if maxBackups < 0 {
		maxBackups = 0
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
	}

	return io.MultiWriter(base, rotator), nil
}

func baseLogWriter(version string) io.Writer {
	if isDevBuild(version) {
		writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		writer.PartsOrder = []string{zerolog.TimestampFieldName, zerolog.LevelFieldName, zerolog.MessageFieldName}
		return writer
	}
	return os.Stderr
}

func (c *AppConfig) baseLogWriter() io.Writer {
	return baseLogWriter(c.version)
}

// InitDefaultLogger configures zerolog with the default writer for this version.
// This is used by CLI entry points before a configuration file is loaded.
func InitDefaultLogger(version string) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Logger.Output(baseLogWriter(version))
}

func isDevBuild(version string) bool {
	v := strings.ToLower(strings.TrimSpace(version))
	return v == "" || v == "dev" || strings.HasSuffix(v, "-dev")
}

// resolveConfigPath determines the actual config file path from the provided directory or file path
func (c *AppConfig) resolveConfigPath(configDirOrPath string) string {
	if strings.HasSuffix(strings.ToLower(configDirOrPath), ".toml") {
		return configDirOrPath
	}

	if info, err := os.Stat(configDirOrPath); err == nil && !info.IsDir() {
		return configDirOrPath
	}

	return filepath.Join(configDirOrPath, "config.toml")
}

// resolveDataDir sets the data directory based on configuration
func (c *AppConfig) resolveDataDir() {
	switch {
	case c.Config.DataDir != "":
		c.dataDir = c.Config.DataDir
	case c.viper.ConfigFileUsed() != "":
		c.dataDir = filepath.Dir(c.viper.ConfigFileUsed())
	default:
		c.dataDir = "."
	}
}

// GetDatabasePath returns the path to the database file
func (c *AppConfig) GetDatabasePath() string {
	return filepath.Join(c.dataDir, "ledflix.db")
}

// GetCachePath returns the path to the catalog cache file
func (c *AppConfig) GetCachePath() string {
	return filepath.Join(c.dataDir, "anime_cache.json")
}

// GetDataDir returns the resolved data directory path.
func (c *AppConfig) GetDataDir() string {
	return c.dataDir
}

// SetDataDir sets the data directory (used by CLI flags)
func (c *AppConfig) SetDataDir(dir string) {
	c.dataDir = dir
}

// CacheExpiry returns the catalog cache expiry as a duration.
func (c *AppConfig) CacheExpiry() time.Duration {
	secs := c.Config.CacheExpirySeconds
	if secs <= 0 {
		secs = 3600
	}
	return time.Duration(secs) * time.Second
}

// UpdateInterval returns the background ingestion interval. Zero disables it.
func (c *AppConfig) UpdateInterval() time.Duration {
	if c.Config.UpdateIntervalMinutes <= 0 {
		return 0
	}
	return time.Duration(c.Config.UpdateIntervalMinutes) * time.Minute
}

func WriteDefaultConfig(path string) error {
	c := &AppConfig{
		viper: viper.New(),
	}

	c.defaults()

	return c.writeDefaultConfig(path)
}

// Sets viper variable if environment variable with _FILE suffix is present
func (c *AppConfig) bindOrReadFromFile(viperVar string, envVar string) {
	envVarFile := envVar + "_FILE"
	if filePath := os.Getenv(envVarFile); filePath != "" {
		content, err := os.ReadFile(filePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", filePath).Msg("Could not read " + envVarFile)
		}
		c.viper.Set(viperVar, strings.TrimSpace(string(content)))
	} else {
		c.viper.BindEnv(viperVar, envVar)
	}
}
