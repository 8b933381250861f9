// Package config loads lineage settings from the global and repository
// configuration files. Repository values override global ones.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/javanhut/lineage/internal/lineage"
	"github.com/javanhut/lineage/internal/logview"
)

var (
	ErrUnknownKey   = errors.New("unknown config key")
	ErrInvalidValue = errors.New("invalid config value")
	ErrNoIdentity   = errors.New("user.name and user.email not configured")
)

// Config represents lineage configuration
type Config struct {
	User  UserConfig  `json:"user"`
	Log   LogConfig   `json:"log"`
	Color ColorConfig `json:"color"`
	Cache CacheConfig `json:"cache"`
}

// UserConfig holds user identity information
type UserConfig struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LogConfig holds defaults for the log command
type LogConfig struct {
	Limit     int  `json:"limit"`
	Oneline   bool `json:"oneline"`
	Nicknames bool `json:"nicknames"`
}

type ColorConfig struct {
	UI bool `json:"ui"`
}

type CacheConfig struct {
	Size int `json:"size"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Log:   LogConfig{Limit: logview.DefaultBound},
		Color: ColorConfig{UI: true},
		Cache: CacheConfig{Size: lineage.DefaultCacheSize},
	}
}

// Author returns the formatted author string "Name <email>".
func (c *Config) Author() (string, error) {
	if c.User.Name == "" || c.User.Email == "" {
		return "", fmt.Errorf("%w. Run: lineage config user.name \"Your Name\" && lineage config user.email \"you@example.com\"", ErrNoIdentity)
	}
	return fmt.Sprintf("%s <%s>", c.User.Name, c.User.Email), nil
}

type setting struct {
	parse func(string) (any, error)
	get   func(*Config) any
}

var settings = map[string]setting{
	"user.name":     {parseString, func(c *Config) any { return c.User.Name }},
	"user.email":    {parseString, func(c *Config) any { return c.User.Email }},
	"log.limit":     {parseInt(0), func(c *Config) any { return c.Log.Limit }},
	"log.oneline":   {parseBool, func(c *Config) any { return c.Log.Oneline }},
	"log.nicknames": {parseBool, func(c *Config) any { return c.Log.Nicknames }},
	"color.ui":      {parseBool, func(c *Config) any { return c.Color.UI }},
	"cache.size":    {parseInt(1), func(c *Config) any { return c.Cache.Size }},
}

func parseString(v string) (any, error) { return v, nil }

func parseBool(v string) (any, error) {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, v)
	}
	return b, nil
}

func parseInt(lo int) func(string) (any, error) {
	return func(v string) (any, error) {
		n, err := strconv.Atoi(v)
		if err != nil || n < lo {
			return nil, fmt.Errorf("%w: %q must be an integer >= %d", ErrInvalidValue, v, lo)
		}
		return n, nil
	}
}

// Keys lists the supported configuration keys.
func Keys() []string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Loader reads and writes the configuration files. An empty path disables
// that layer.
type Loader struct {
	GlobalPath string
	RepoPath   string
}

// DefaultLoader uses ~/.lineageconfig and <repoDir>/config.
func DefaultLoader(repoDir string) Loader {
	l := Loader{RepoPath: filepath.Join(repoDir, "config")}
	if home, err := os.UserHomeDir(); err == nil {
		l.GlobalPath = filepath.Join(home, ".lineageconfig")
	}
	return l
}

// Load merges defaults, the global file and the repository file.
func (l Loader) Load() (*Config, error) {
	cfg := DefaultConfig()
	for _, path := range []string{l.GlobalPath, l.RepoPath} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		// Unmarshal onto the merged value so absent fields keep lower layers.
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	return cfg, nil
}

// Get returns the effective value of key.
func (l Loader) Get(key string) (string, error) {
	s, ok := settings[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	cfg, err := l.Load()
	if err != nil {
		return "", err
	}
	return fmt.Sprint(s.get(cfg)), nil
}

// Set stores key in the global or repository file. Only keys written
// explicitly appear in a file, so a repository file never masks global
// values it does not mention.
func (l Loader) Set(key, value string, global bool) error {
	s, ok := settings[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	parsed, err := s.parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}

	path := l.RepoPath
	if global {
		path = l.GlobalPath
	}
	if path == "" {
		return fmt.Errorf("no config file available for %s", key)
	}

	doc := map[string]map[string]any{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("read config %s: %w", path, err)
	}

	section, field, _ := strings.Cut(key, ".")
	if doc[section] == nil {
		doc[section] = map[string]any{}
	}
	doc[section][field] = parsed

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, append(out, '\n'), 0o644)
}
