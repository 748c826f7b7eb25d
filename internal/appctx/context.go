// Package appctx provides application context helpers.
package appctx

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/slackfocus/slackfocus/internal/auth"
	"github.com/slackfocus/slackfocus/internal/config"
	"github.com/slackfocus/slackfocus/internal/names"
	"github.com/slackfocus/slackfocus/internal/observability"
	"github.com/slackfocus/slackfocus/internal/omnifocus"
	"github.com/slackfocus/slackfocus/internal/output"
	"github.com/slackfocus/slackfocus/internal/slack"
)

// contextKey is a private type for context keys.
type contextKey string

const appKey contextKey = "app"

// App holds the shared application context for all commands.
type App struct {
	Config *config.Config
	Auth   *auth.Manager
	Slack  *slack.Client
	Names  *names.Resolver
	Store  omnifocus.Store
	Output *output.Writer

	Collector *observability.SessionCollector

	// Flags holds the global flag values
	Flags GlobalFlags
}

// GlobalFlags holds values for global CLI flags.
type GlobalFlags struct {
	// Output format flags
	JSON   bool
	Quiet  bool
	Styled bool // Force ANSI styled output (even when piped)

	// Context flags
	Project    string
	ConfigPath string

	// Behavior flags
	Verbose bool
	Stats   bool
}

// NewApp creates a new App with the given configuration.
func NewApp(cfg *config.Config) *App {
	store := auth.NewStore(config.GlobalConfigDir())
	authMgr := auth.NewManager(cfg, store)

	// Collector always runs; --stats controls whether the summary is shown.
	collector := observability.NewSessionCollector()

	slackClient := slack.NewClient(cfg.BaseURL, authMgr, collector)
	nameResolver := names.NewResolver(slackClient)

	format := output.FormatAuto
	switch cfg.Format {
	case "json":
		format = output.FormatJSON
	case "quiet":
		format = output.FormatQuiet
	case "styled":
		format = output.FormatStyled
	}

	return &App{
		Config:    cfg,
		Auth:      authMgr,
		Slack:     slackClient,
		Names:     nameResolver,
		Store:     omnifocus.NewAppStore(nil),
		Collector: collector,
		Output: output.New(output.Options{
			Format: format,
			Writer: os.Stdout,
		}),
	}
}

// ApplyFlags applies global flag values to the app configuration.
func (a *App) ApplyFlags() {
	// Specific modes win over config-driven format.
	if a.Flags.Quiet {
		a.Output = output.New(output.Options{
			Format: output.FormatQuiet,
			Writer: os.Stdout,
		})
	} else if a.Flags.JSON {
		a.Output = output.New(output.Options{
			Format: output.FormatJSON,
			Writer: os.Stdout,
		})
	} else if a.Flags.Styled {
		a.Output = output.New(output.Options{
			Format: output.FormatStyled,
			Writer: os.Stdout,
		})
	}

	verbose := a.Flags.Verbose
	if env := os.Getenv("SLACKFOCUS_DEBUG"); env == "1" || env == "true" {
		verbose = true
	}

	if verbose {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
		a.Slack.SetVerbose(true)
	}
}

// OK outputs a success response, attaching session stats if --stats is set.
func (a *App) OK(data any, opts ...output.ResponseOption) error {
	if a.Flags.Stats && a.Collector != nil {
		opts = append(opts, output.WithMeta("stats", a.Collector.Summary()))
	}
	return a.Output.OK(data, opts...)
}

// Err outputs an error response, printing stats to stderr if --stats is set.
func (a *App) Err(err error) error {
	if outputErr := a.Output.Err(err); outputErr != nil {
		return outputErr
	}

	// Quiet mode is meant for programmatic consumption; keep stderr clean.
	if a.Flags.Stats && a.Collector != nil && !a.Flags.Quiet {
		fmt.Fprintf(os.Stderr, "\nStats: %s\n", a.Collector.Summary().Line())
	}
	return nil
}

// WithApp stores the app in the context.
func WithApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appKey, app)
}

// FromContext retrieves the app from the context.
func FromContext(ctx context.Context) *App {
	app, _ := ctx.Value(appKey).(*App)
	return app
}
