// Package importer copies saved Slack items into OmniFocus as tasks.
// The run is per-item resilient: one bad item is recorded and skipped,
// the rest of the batch still lands.
package importer

import (
	"context"
	"fmt"

	"github.com/slackfocus/slackfocus/internal/omnifocus"
	"github.com/slackfocus/slackfocus/internal/slack"
)

// Source lists and unsaves Slack saved items.
type Source interface {
	ListAllStars(ctx context.Context, pageSize int) ([]slack.SavedItem, error)
	RemoveStar(ctx context.Context, item slack.SavedItem) error
}

// TaskStore creates tasks. Satisfied by omnifocus.Store.
type TaskStore interface {
	CreateTask(ctx context.Context, task omnifocus.NewTask) error
}

// Options control one import run.
type Options struct {
	PageSize int
	Limit    int  // 0 means no cap
	DryRun   bool // format and count, create nothing
	Remove   bool // unsave each item after its task is created
}

// ItemError records a failure against one item without aborting the run.
type ItemError struct {
	Item  string `json:"item"`
	Error string `json:"error"`
}

// Stats is the outcome of one run.
type Stats struct {
	ItemsFound   int         `json:"items_found"`
	ItemsSkipped int         `json:"items_skipped,omitempty"`
	TasksCreated int         `json:"tasks_created"`
	ItemsRemoved int         `json:"items_removed,omitempty"`
	DryRun       bool        `json:"dry_run,omitempty"`
	Errors       []ItemError `json:"errors,omitempty"`
}

// RenderLines implements output.LineRenderer.
func (s Stats) RenderLines() []string {
	verb := "Created"
	if s.DryRun {
		verb = "Would create"
	}
	lines := []string{fmt.Sprintf("%s %d task(s) from %d saved item(s).", verb, s.TasksCreated, s.ItemsFound)}
	if s.ItemsRemoved > 0 {
		lines = append(lines, fmt.Sprintf("Unsaved %d item(s) in Slack.", s.ItemsRemoved))
	}
	for _, e := range s.Errors {
		lines = append(lines, fmt.Sprintf("  failed %s: %s", e.Item, e.Error))
	}
	return lines
}

// Importer drives one Slack to OmniFocus import.
type Importer struct {
	source    Source
	store     TaskStore
	formatter *Formatter
	opts      Options
}

// New returns an Importer.
func New(source Source, store TaskStore, formatter *Formatter, opts Options) *Importer {
	return &Importer{source: source, store: store, formatter: formatter, opts: opts}
}

// Run fetches every saved item and creates one task per item. Listing
// failures are fatal only when nothing was fetched; with a partial page set
// the run continues on what arrived and the failure is recorded. Creation
// and removal failures never abort the run.
func (im *Importer) Run(ctx context.Context) (Stats, error) {
	stats := Stats{DryRun: im.opts.DryRun}

	items, listErr := im.source.ListAllStars(ctx, im.opts.PageSize)
	if listErr != nil && len(items) == 0 {
		return stats, listErr
	}
	if listErr != nil {
		stats.Errors = append(stats.Errors, ItemError{
			Item:  "stars.list",
			Error: "partial listing: " + listErr.Error(),
		})
	}

	if im.opts.Limit > 0 && len(items) > im.opts.Limit {
		stats.ItemsSkipped = len(items) - im.opts.Limit
		items = items[:im.opts.Limit]
	}
	stats.ItemsFound = len(items)

	for _, item := range items {
		task := im.formatter.Task(ctx, item)

		if im.opts.DryRun {
			stats.TasksCreated++
			continue
		}

		if err := im.store.CreateTask(ctx, task); err != nil {
			stats.Errors = append(stats.Errors, ItemError{Item: item.Describe(), Error: err.Error()})
			continue
		}
		stats.TasksCreated++

		if !im.opts.Remove {
			continue
		}
		// The task already exists at this point. A failed removal leaves the
		// item starred in Slack, which a later run will import again.
		if err := im.source.RemoveStar(ctx, item); err != nil {
			stats.Errors = append(stats.Errors, ItemError{
				Item:  item.Describe(),
				Error: "task created but unsave failed: " + err.Error(),
			})
			continue
		}
		stats.ItemsRemoved++
	}

	return stats, nil
}
