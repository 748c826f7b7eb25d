// Package omnifocus is the task-store boundary. All access goes through the
// OmniFocus scripting interface via osascript; the application must be
// running and reachable.
package omnifocus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/slackfocus/slackfocus/internal/output"
)

// Store is the narrow read/write surface the pipelines need from the task
// store. Tests substitute a fake; the live implementation is AppStore.
type Store interface {
	// FindContainer returns the first project whose name matches exactly,
	// searching the flattened project tree depth-first. Duplicate names are
	// not disambiguated: first match wins.
	FindContainer(ctx context.Context, name string) (*Container, error)

	// SetDeferDate reassigns one task's defer date.
	SetDeferDate(ctx context.Context, itemID string, date time.Time) error

	// CreateTask creates a task in the inbox or a named project.
	CreateTask(ctx context.Context, task NewTask) error
}

// AppStore talks to the running OmniFocus application.
type AppStore struct {
	runner Runner
}

// NewAppStore creates a store backed by the given script runner.
func NewAppStore(runner Runner) *AppStore {
	if runner == nil {
		runner = OsascriptRunner{}
	}
	return &AppStore{runner: runner}
}

// wire mirrors of the JXA snapshot, with defer dates as epoch milliseconds.

type wireItem struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	DeferDate *int64      `json:"deferDate"`
	Completed bool        `json:"completed"`
	Children  []*wireItem `json:"children"`
}

type wireContainer struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Items    []*wireItem      `json:"items"`
	Children []*wireContainer `json:"children"`
}

func (w *wireItem) toItem() *Item {
	item := &Item{
		ID:        w.ID,
		Name:      w.Name,
		Completed: w.Completed,
	}
	if w.DeferDate != nil {
		t := time.UnixMilli(*w.DeferDate)
		item.DeferDate = &t
	}
	for _, child := range w.Children {
		item.Children = append(item.Children, child.toItem())
	}
	return item
}

func (w *wireContainer) toContainer() *Container {
	c := &Container{ID: w.ID, Name: w.Name}
	for _, item := range w.Items {
		c.Items = append(c.Items, item.toItem())
	}
	for _, child := range w.Children {
		c.Children = append(c.Children, child.toContainer())
	}
	return c
}

// FindContainer implements Store.
func (s *AppStore) FindContainer(ctx context.Context, name string) (*Container, error) {
	out, err := s.runner.Run(ctx, langJavaScript, containerTreeScript)
	if err != nil {
		return nil, output.ErrStore("Cannot read projects from OmniFocus", err)
	}

	var roots []*wireContainer
	if err := json.Unmarshal([]byte(out), &roots); err != nil {
		return nil, output.ErrStore("Unexpected response from OmniFocus", fmt.Errorf("parse project tree: %w", err))
	}

	for _, root := range roots {
		if found := findByName(root.toContainer(), name); found != nil {
			return found, nil
		}
	}
	return nil, output.ErrNotFound("Project", name)
}

// findByName searches c and its sub-containers depth-first for an exact,
// case-sensitive name match.
func findByName(c *Container, name string) *Container {
	if c.Name == name {
		return c
	}
	for _, child := range c.Children {
		if found := findByName(child, name); found != nil {
			return found
		}
	}
	return nil
}

// SetDeferDate implements Store.
func (s *AppStore) SetDeferDate(ctx context.Context, itemID string, date time.Time) error {
	if _, err := s.runner.Run(ctx, langAppleScript, buildSetDeferDateScript(itemID, date)); err != nil {
		return output.ErrStore("Cannot update defer date", err)
	}
	return nil
}

// CreateTask implements Store.
func (s *AppStore) CreateTask(ctx context.Context, task NewTask) error {
	if _, err := s.runner.Run(ctx, langAppleScript, buildCreateTaskScript(task)); err != nil {
		return output.ErrStore("Cannot create task", err)
	}
	return nil
}

// Ping checks that the scripting bridge and the application respond.
func (s *AppStore) Ping(ctx context.Context) error {
	script := `tell application "OmniFocus" to get name of default document`
	if _, err := s.runner.Run(ctx, langAppleScript, script); err != nil {
		return output.ErrStore("OmniFocus is not reachable", err)
	}
	return nil
}
