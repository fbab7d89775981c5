package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
)

const minSecretKeyLength = 16

var placeholderSecretKeys = map[string]bool{
	"change_me_in_production":        true,
	"replace_with_a_long_random_key": true,
}

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Time     TimeConfig     `toml:"time"`
	Logging  LoggingConfig  `toml:"logging"`
	TextGen  TextGenConfig  `toml:"textgen"`
}

type ServerConfig struct {
	Host      string        `toml:"host"`
	Port      int           `toml:"port"`
	SecretKey string        `toml:"secret_key"`
	TokenTTL  time.Duration `toml:"token_ttl"`
	// Dev relaxes the secret key checks for local runs.
	Dev bool `toml:"dev"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type TimeConfig struct {
	Zone string `toml:"zone"`
}

type LoggingConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// TextGenConfig points at an HTTP text-generation endpoint. An empty URL
// disables generation and every assistant call uses its fallback.
type TextGenConfig struct {
	URL             string        `toml:"url"`
	Token           string        `toml:"token"`
	Timeout         time.Duration `toml:"timeout"`
	MaxTokens       int           `toml:"max_tokens"`
	CacheMaxEntries int64         `toml:"cache_max_entries"`
	CacheTTL        time.Duration `toml:"cache_ttl"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:     "0.0.0.0",
			Port:     8080,
			TokenTTL: 7 * 24 * time.Hour,
		},
		Database: DatabaseConfig{
			Path: filepath.Join("data", "ascend.db"),
		},
		Time: TimeConfig{
			Zone: "UTC",
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		TextGen: TextGenConfig{
			Timeout:         10 * time.Second,
			MaxTokens:       500,
			CacheMaxEntries: 1000,
			CacheTTL:        time.Hour,
		},
	}
}

// Load applies defaults, then the optional TOML file, then environment
// overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookupEnv func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path = strings.TrimSpace(path); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, lookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookupEnv func(string) (string, bool)) error {
	stringVars := map[string]*string{
		"ASCEND_HOST":          &cfg.Server.Host,
		"ASCEND_SECRET_KEY":    &cfg.Server.SecretKey,
		"ASCEND_DB_PATH":       &cfg.Database.Path,
		"TZ":                   &cfg.Time.Zone,
		"ASCEND_LOG_LEVEL":     &cfg.Logging.Level,
		"ASCEND_LOG_FILE":      &cfg.Logging.File,
		"ASCEND_TEXTGEN_URL":   &cfg.TextGen.URL,
		"ASCEND_TEXTGEN_TOKEN": &cfg.TextGen.Token,
	}
	for key, target := range stringVars {
		if value, ok := lookupEnv(key); ok && strings.TrimSpace(value) != "" {
			*target = strings.TrimSpace(value)
		}
	}

	if value, ok := lookupEnv("ASCEND_PORT"); ok && strings.TrimSpace(value) != "" {
		port, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("parse ASCEND_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if value, ok := lookupEnv("ASCEND_DEV"); ok && strings.TrimSpace(value) != "" {
		dev, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("parse ASCEND_DEV: %w", err)
		}
		cfg.Server.Dev = dev
	}
	return nil
}

func (cfg Config) Validate() error {
	var problems []error
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		problems = append(problems, fmt.Errorf("server.port %d out of range", cfg.Server.Port))
	}
	if !cfg.Server.Dev && len(cfg.Server.SecretKey) < minSecretKeyLength {
		problems = append(problems, fmt.Errorf("server.secret_key must be at least %d characters", minSecretKeyLength))
	}
	if !cfg.Server.Dev && placeholderSecretKeys[cfg.Server.SecretKey] {
		problems = append(problems, errors.New("server.secret_key is a placeholder"))
	}
	if cfg.Server.TokenTTL <= 0 {
		problems = append(problems, errors.New("server.token_ttl must be positive"))
	}
	if strings.TrimSpace(cfg.Database.Path) == "" {
		problems = append(problems, errors.New("database.path is required"))
	}
	if _, err := time.LoadLocation(cfg.Time.Zone); err != nil {
		problems = append(problems, fmt.Errorf("time.zone: %w", err))
	}
	if cfg.TextGen.Timeout <= 0 {
		problems = append(problems, errors.New("textgen.timeout must be positive"))
	}
	if cfg.TextGen.MaxTokens <= 0 {
		problems = append(problems, errors.New("textgen.max_tokens must be positive"))
	}
	return errors.Join(problems...)
}

// Location falls back to UTC for an unknown zone; Validate reports it.
func (cfg Config) Location() *time.Location {
	location, err := time.LoadLocation(cfg.Time.Zone)
	if err != nil {
		return time.UTC
	}
	return location
}

// SecretKey returns a fixed development key when none is configured in dev
// mode.
func (cfg Config) SecretKey() string {
	if cfg.Server.SecretKey == "" && cfg.Server.Dev {
		return "ascend-development-secret"
	}
	return cfg.Server.SecretKey
}

func (cfg Config) Address() string {
	return fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
}
