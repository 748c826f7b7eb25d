package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/slackfocus/slackfocus/internal/appctx"
	"github.com/slackfocus/slackfocus/internal/config"
	"github.com/slackfocus/slackfocus/internal/output"
)

// configKeys are the keys accepted by config set/unset, with a parser per
// typed key.
var configKeys = map[string]func(string) (any, error){
	"base_url":        func(v string) (any, error) { return config.NormalizeBaseURL(v), nil },
	"default_project": asString,
	"title_prefix":    asString,
	"format":          asString,
	"page_size": func(v string) (any, error) {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("page_size must be a positive integer")
		}
		return n, nil
	},
	"include_permalink":   asBool,
	"remove_after_import": asBool,
	"default_tags": func(v string) (any, error) {
		var tags []string
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
		return tags, nil
	},
}

func asString(v string) (any, error) { return v, nil }

func asBool(v string) (any, error) {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, fmt.Errorf("expected true or false, got %q", v)
	}
	return b, nil
}

// NewConfigCmd creates the config command and its subcommands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Show or change configuration.

Values are resolved in precedence order: flags, then environment, then the
nearest .slackfocus.yml, then the global config file, then built-in
defaults.`,
	}

	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigPathCmd(),
		newConfigSetCmd(),
		newConfigUnsetCmd(),
	)

	return cmd
}

// configView is the redacted form of the effective config.
type configView struct {
	BaseURL           string            `json:"base_url"`
	Token             string            `json:"token,omitempty"`
	PageSize          int               `json:"page_size"`
	DefaultProject    string            `json:"default_project,omitempty"`
	DefaultTags       []string          `json:"default_tags,omitempty"`
	TitlePrefix       string            `json:"title_prefix"`
	IncludePermalink  bool              `json:"include_permalink"`
	RemoveAfterImport bool              `json:"remove_after_import"`
	Format            string            `json:"format"`
	Sources           map[string]string `json:"sources,omitempty"`
}

// RenderLines implements output.LineRenderer.
func (v configView) RenderLines() []string {
	lines := []string{
		"base_url: " + v.BaseURL,
		"page_size: " + strconv.Itoa(v.PageSize),
		"default_project: " + orUnset(v.DefaultProject),
		"default_tags: " + orUnset(strings.Join(v.DefaultTags, ", ")),
		"title_prefix: " + v.TitlePrefix,
		"include_permalink: " + strconv.FormatBool(v.IncludePermalink),
		"remove_after_import: " + strconv.FormatBool(v.RemoveAfterImport),
		"format: " + v.Format,
	}
	if v.Token != "" {
		lines = append(lines, "token: "+v.Token)
	}
	return lines
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}

func newConfigShowCmd() *cobra.Command {
	var sources bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			cfg := app.Config

			view := configView{
				BaseURL:           cfg.BaseURL,
				Token:             redactToken(cfg.Token),
				PageSize:          cfg.PageSize,
				DefaultProject:    cfg.DefaultProject,
				DefaultTags:       cfg.DefaultTags,
				TitlePrefix:       cfg.TitlePrefix,
				IncludePermalink:  cfg.AppendPermalink(),
				RemoveAfterImport: cfg.RemoveAfterImport,
				Format:            cfg.Format,
			}
			if sources {
				view.Sources = cfg.Sources
			}

			return app.OK(view, output.WithSummary("Effective configuration"))
		},
	}

	cmd.Flags().BoolVar(&sources, "sources", false, "Show where each value came from")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the global config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			return app.OK(map[string]string{"path": config.GlobalConfigPath()},
				output.WithSummary(config.GlobalConfigPath()))
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a value in the global config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			key, raw := args[0], args[1]

			parse, ok := configKeys[key]
			if !ok {
				return output.ErrUsageHint(
					fmt.Sprintf("Unknown config key %q", key),
					"Valid keys: "+strings.Join(knownKeys(), ", "),
				)
			}
			value, err := parse(raw)
			if err != nil {
				return output.ErrUsage(err.Error())
			}

			if err := updateGlobalConfig(func(doc map[string]any) {
				doc[key] = value
			}); err != nil {
				return err
			}

			return app.OK(map[string]any{"key": key, "value": value},
				output.WithSummary(fmt.Sprintf("Set %s in %s", key, config.GlobalConfigPath())))
		},
	}
}

func newConfigUnsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a value from the global config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appctx.FromContext(cmd.Context())
			key := args[0]

			if _, ok := configKeys[key]; !ok {
				return output.ErrUsageHint(
					fmt.Sprintf("Unknown config key %q", key),
					"Valid keys: "+strings.Join(knownKeys(), ", "),
				)
			}

			if err := updateGlobalConfig(func(doc map[string]any) {
				delete(doc, key)
			}); err != nil {
				return err
			}

			return app.OK(map[string]string{"key": key},
				output.WithSummary(fmt.Sprintf("Unset %s in %s", key, config.GlobalConfigPath())))
		},
	}
}

func knownKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// updateGlobalConfig reads the global config file as a YAML document,
// applies fn, and writes it back atomically. Unknown keys already in the
// file are preserved.
func updateGlobalConfig(fn func(doc map[string]any)) error {
	path := config.GlobalConfigPath()

	doc := make(map[string]any)
	if data, err := os.ReadFile(path); err == nil { //nolint:gosec // G304: trusted config location
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return output.ErrUsageHint(
				fmt.Sprintf("Config file %s is not valid YAML", path),
				"Fix or remove the file, then retry",
			)
		}
	}

	fn(doc)

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return os.Rename(tmp, path)
}

// redactToken keeps enough of the token to recognize it.
func redactToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "********"
	}
	return token[:8] + "..." + token[len(token)-4:]
}
