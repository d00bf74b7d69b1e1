// Package config resolves where desk keeps its files and how it starts up.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Defaults
const (
	AppName           = "desk"
	DefaultTasksFile  = "tasks.json"
	DefaultNotesFile  = "notes.json"
	DefaultSettingsDB = "settings.db"
	DefaultLogFile    = "desk.log"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "json"
	DefaultTheme      = "light"
)

// Config holds the runtime settings
type Config struct {
	DataDir    string    `toml:"data_dir" validate:"required"`
	TasksFile  string    `toml:"tasks_file" validate:"required"`
	NotesFile  string    `toml:"notes_file" validate:"required"`
	SettingsDB string    `toml:"settings_db" validate:"required"`
	ExportDir  string    `toml:"export_dir"`
	Theme      string    `toml:"theme" validate:"oneof=light dark"`
	Log        LogConfig `toml:"log"`
}

// LogConfig configures the file logger
type LogConfig struct {
	File   string `toml:"file" validate:"required"`
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
	Format string `toml:"format" validate:"oneof=json console"`
}

// Load builds the config in priority order:
// 1. Defaults
// 2. Config file (path, or the user config dir when path is empty)
// 3. .env in the working directory, then DESK_* environment variables
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := setDefaults(cfg); err != nil {
		return nil, err
	}

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	if path != "" {
		if err := loadFile(cfg, path, explicit); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	loadFromEnv(cfg)

	finalize(cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setDefaults(cfg *Config) error {
	dataDir, err := defaultDataDir()
	if err != nil {
		return fmt.Errorf("resolving data dir: %w", err)
	}
	cfg.DataDir = dataDir
	cfg.TasksFile = DefaultTasksFile
	cfg.NotesFile = DefaultNotesFile
	cfg.SettingsDB = DefaultSettingsDB
	cfg.Theme = DefaultTheme
	cfg.Log = LogConfig{
		File:   DefaultLogFile,
		Level:  DefaultLogLevel,
		Format: DefaultLogFormat,
	}
	return nil
}

func loadFile(cfg *Config, path string, required bool) error {
	_, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading config file %s: %w", path, err)
	}
	return nil
}

func loadFromEnv(cfg *Config) {
	setFromEnv(&cfg.DataDir, "DESK_DATA_DIR")
	setFromEnv(&cfg.TasksFile, "DESK_TASKS_FILE")
	setFromEnv(&cfg.NotesFile, "DESK_NOTES_FILE")
	setFromEnv(&cfg.SettingsDB, "DESK_SETTINGS_DB")
	setFromEnv(&cfg.ExportDir, "DESK_EXPORT_DIR")
	setFromEnv(&cfg.Theme, "DESK_THEME")
	setFromEnv(&cfg.Log.File, "DESK_LOG_FILE")
	setFromEnv(&cfg.Log.Level, "DESK_LOG_LEVEL")
	setFromEnv(&cfg.Log.Format, "DESK_LOG_FORMAT")
}

func setFromEnv(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// finalize expands ~ and resolves relative file names against the data dir
func finalize(cfg *Config) {
	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.TasksFile = resolve(cfg.DataDir, cfg.TasksFile)
	cfg.NotesFile = resolve(cfg.DataDir, cfg.NotesFile)
	cfg.SettingsDB = resolve(cfg.DataDir, cfg.SettingsDB)
	cfg.Log.File = resolve(cfg.DataDir, cfg.Log.File)
	if cfg.ExportDir != "" {
		cfg.ExportDir = expandHome(cfg.ExportDir)
	}
	cfg.Theme = strings.ToLower(cfg.Theme)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
}

func resolve(dir, p string) string {
	p = expandHome(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}

// defaultDataDir uses the XDG data directory or falls back to ~/.local/share
func defaultDataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, AppName), nil
}

// DefaultConfigPath returns the user config file location, or "" when no
// config directory can be determined.
func DefaultConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, AppName, "config.toml")
}
