// Package config provides layered configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the resolved configuration.
type Config struct {
	// Slack settings
	BaseURL  string `yaml:"base_url"`
	Token    string `yaml:"token"`
	PageSize int    `yaml:"page_size"`

	// OmniFocus settings
	DefaultProject string   `yaml:"default_project"`
	DefaultTags    []string `yaml:"default_tags"`

	// Import formatting
	TitlePrefix       string `yaml:"title_prefix"`
	IncludePermalink  *bool  `yaml:"include_permalink"`
	RemoveAfterImport bool   `yaml:"remove_after_import"`

	// Output settings
	Format string `yaml:"format"`

	// Sources tracks where each value came from (for debugging).
	Sources map[string]string `yaml:"-"`
}

// Source indicates where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceGlobal  Source = "global"
	SourceLocal   Source = "local"
	SourceFile    Source = "file"
	SourceEnv     Source = "env"
	SourceFlag    Source = "flag"
)

// FlagOverrides holds command-line flag values.
type FlagOverrides struct {
	ConfigPath string
	Project    string
	Format     string
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		BaseURL:     "https://slack.com/api",
		PageSize:    100,
		TitlePrefix: "Slack:",
		Format:      "auto",
		Sources:     make(map[string]string),
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence: flags > env > local > global > defaults.
// When overrides.ConfigPath is set, that file replaces the global and local
// layers and must exist.
func Load(overrides FlagOverrides) (*Config, error) {
	cfg := Default()

	if overrides.ConfigPath != "" {
		if err := loadFromFile(cfg, overrides.ConfigPath, SourceFile); err != nil {
			return nil, fmt.Errorf("config file %s: %w", overrides.ConfigPath, err)
		}
	} else {
		// Missing layer files are skipped silently.
		_ = loadFromFile(cfg, GlobalConfigPath(), SourceGlobal)
		for _, path := range localConfigPaths() {
			_ = loadFromFile(cfg, path, SourceLocal)
		}
	}

	LoadFromEnv(cfg)
	ApplyOverrides(cfg, overrides)

	return cfg, nil
}

// fileConfig mirrors Config with pointer fields so absent keys can be told
// apart from zero values.
type fileConfig struct {
	BaseURL           *string  `yaml:"base_url"`
	Token             *string  `yaml:"token"`
	PageSize          *int     `yaml:"page_size"`
	DefaultProject    *string  `yaml:"default_project"`
	DefaultTags       []string `yaml:"default_tags"`
	TitlePrefix       *string  `yaml:"title_prefix"`
	IncludePermalink  *bool    `yaml:"include_permalink"`
	RemoveAfterImport *bool    `yaml:"remove_after_import"`
	Format            *string  `yaml:"format"`
}

func loadFromFile(cfg *Config, path string, source Source) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is a trusted config location
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("malformed yaml: %w", err)
	}

	if fc.BaseURL != nil && *fc.BaseURL != "" {
		cfg.BaseURL = NormalizeBaseURL(*fc.BaseURL)
		cfg.Sources["base_url"] = string(source)
	}
	if fc.Token != nil && *fc.Token != "" {
		cfg.Token = *fc.Token
		cfg.Sources["token"] = string(source)
	}
	if fc.PageSize != nil && *fc.PageSize > 0 {
		cfg.PageSize = *fc.PageSize
		cfg.Sources["page_size"] = string(source)
	}
	if fc.DefaultProject != nil {
		cfg.DefaultProject = *fc.DefaultProject
		cfg.Sources["default_project"] = string(source)
	}
	if fc.DefaultTags != nil {
		cfg.DefaultTags = fc.DefaultTags
		cfg.Sources["default_tags"] = string(source)
	}
	if fc.TitlePrefix != nil {
		cfg.TitlePrefix = *fc.TitlePrefix
		cfg.Sources["title_prefix"] = string(source)
	}
	if fc.IncludePermalink != nil {
		cfg.IncludePermalink = fc.IncludePermalink
		cfg.Sources["include_permalink"] = string(source)
	}
	if fc.RemoveAfterImport != nil {
		cfg.RemoveAfterImport = *fc.RemoveAfterImport
		cfg.Sources["remove_after_import"] = string(source)
	}
	if fc.Format != nil && *fc.Format != "" {
		cfg.Format = *fc.Format
		cfg.Sources["format"] = string(source)
	}

	return nil
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("SLACKFOCUS_BASE_URL"); v != "" {
		cfg.BaseURL = NormalizeBaseURL(v)
		cfg.Sources["base_url"] = string(SourceEnv)
	}
	if v := os.Getenv("SLACK_USER_TOKEN"); v != "" {
		cfg.Token = v
		cfg.Sources["token"] = string(SourceEnv)
	}
	if v := os.Getenv("SLACKFOCUS_PROJECT"); v != "" {
		cfg.DefaultProject = v
		cfg.Sources["default_project"] = string(SourceEnv)
	}
	if v := os.Getenv("SLACKFOCUS_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PageSize = n
			cfg.Sources["page_size"] = string(SourceEnv)
		}
	}
	if v := os.Getenv("SLACKFOCUS_FORMAT"); v != "" {
		cfg.Format = v
		cfg.Sources["format"] = string(SourceEnv)
	}
}

// ApplyOverrides applies non-empty flag overrides to cfg.
func ApplyOverrides(cfg *Config, o FlagOverrides) {
	if o.Project != "" {
		cfg.DefaultProject = o.Project
		cfg.Sources["default_project"] = string(SourceFlag)
	}
	if o.Format != "" {
		cfg.Format = o.Format
		cfg.Sources["format"] = string(SourceFlag)
	}
}

// AppendPermalink reports whether permalinks should be included in task
// notes. Defaults to true when unset.
func (cfg *Config) AppendPermalink() bool {
	if cfg.IncludePermalink == nil {
		return true
	}
	return *cfg.IncludePermalink
}

// Path helpers

// GlobalConfigPath returns the global config file path.
func GlobalConfigPath() string {
	return filepath.Join(GlobalConfigDir(), "config.yml")
}

// GlobalConfigDir returns the global config directory path.
func GlobalConfigDir() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "slackfocus")
}

// localConfigPaths returns .slackfocus.yml paths from the furthest ancestor
// to the current directory, so closer configs override. The walk is bounded
// by $HOME: a config outside the home tree is never trusted.
func localConfigPaths() []string {
	dir, err := os.Getwd()
	if err != nil {
		return nil
	}
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	home, _ := os.UserHomeDir()
	if resolved, err := filepath.EvalSymlinks(home); err == nil {
		home = resolved
	}
	if home == "" || !isInsideDir(dir, home) {
		return nil
	}

	var paths []string
	for {
		cfgPath := filepath.Join(dir, ".slackfocus.yml")
		if _, err := os.Stat(cfgPath); err == nil {
			paths = append(paths, cfgPath)
		}
		if dir == home {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	// Reverse so paths go from home to current (closer overrides)
	for i, j := 0, len(paths)-1; i < j; i, j = i+1, j-1 {
		paths[i], paths[j] = paths[j], paths[i]
	}

	return paths
}

// isInsideDir reports whether child is the same as or a subdirectory of parent.
func isInsideDir(child, parent string) bool {
	if child == parent {
		return true
	}
	prefix := parent
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(child, prefix)
}

// NormalizeBaseURL ensures consistent URL format (no trailing slash).
func NormalizeBaseURL(url string) string {
	return strings.TrimSuffix(url, "/")
}
