// Package reschedule pushes overdue deferred tasks in an OmniFocus project
// forward to a new date. The top-level operation never propagates a failure;
// it always hands back a structured result the caller can render or log.
package reschedule

import (
	"context"
	"fmt"
	"time"

	"github.com/slackfocus/slackfocus/internal/dateparse"
	"github.com/slackfocus/slackfocus/internal/omnifocus"
)

// Result is the outcome of one reschedule run.
type Result struct {
	Success          bool     `json:"success"`
	RescheduledCount int      `json:"rescheduled_count"`
	RescheduledNames []string `json:"rescheduled_names"`
	Error            string   `json:"error,omitempty"`

	// Err carries the typed failure for callers that map errors to exit
	// codes. Error above is its rendered form.
	Err error `json:"-"`
}

// RenderLines implements output.LineRenderer.
func (r Result) RenderLines() []string {
	if !r.Success {
		return []string{"Reschedule failed: " + r.Error}
	}
	if r.RescheduledCount == 0 {
		return []string{"No overdue tasks to reschedule."}
	}
	lines := []string{fmt.Sprintf("Rescheduled %d task(s):", r.RescheduledCount)}
	for _, name := range r.RescheduledNames {
		lines = append(lines, "  "+name)
	}
	return lines
}

// Engine finds overdue tasks and moves their defer dates.
type Engine struct {
	store omnifocus.Store
	now   func() time.Time
}

// New returns an Engine reading and writing through store. nowFn may be nil,
// in which case time.Now is used.
func New(store omnifocus.Store, nowFn func() time.Time) *Engine {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Engine{store: store, now: nowFn}
}

// Reschedule moves every overdue task under the named project to target.
// A task is overdue when it has a defer date strictly before the start of
// today and is not completed. Errors from lookup, traversal, or individual
// writes are folded into the result rather than returned.
func (e *Engine) Reschedule(ctx context.Context, containerName string, target time.Time) Result {
	container, err := e.store.FindContainer(ctx, containerName)
	if err != nil {
		return Result{Error: err.Error(), Err: err}
	}

	items, err := Collect(container)
	if err != nil {
		return Result{Error: err.Error(), Err: err}
	}

	// One cutoff for the whole run so a pass that straddles midnight stays
	// consistent.
	cutoff := dateparse.Midnight(e.now())

	var names []string
	for _, item := range items {
		if !isOverdue(item, cutoff) {
			continue
		}
		if err := e.store.SetDeferDate(ctx, item.ID, target); err != nil {
			wrapped := fmt.Errorf("setting defer date on %q: %w", item.Name, err)
			return Result{
				RescheduledCount: len(names),
				RescheduledNames: names,
				Error:            wrapped.Error(),
				Err:              wrapped,
			}
		}
		names = append(names, item.Name)
	}

	return Result{
		Success:          true,
		RescheduledCount: len(names),
		RescheduledNames: names,
	}
}

func isOverdue(item *omnifocus.Item, cutoff time.Time) bool {
	return item.DeferDate != nil && item.DeferDate.Before(cutoff) && !item.Completed
}
