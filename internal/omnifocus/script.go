package omnifocus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Runner executes a script against the scripting bridge. The concrete
// implementation shells out to osascript; tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, lang string, script string) (string, error)
}

// Script languages understood by osascript.
const (
	langAppleScript = "AppleScript"
	langJavaScript  = "JavaScript"
)

const scriptTimeout = 30 * time.Second

// OsascriptRunner runs scripts through the osascript binary.
type OsascriptRunner struct{}

// Run executes the script and returns trimmed stdout. A non-zero exit wraps
// stderr into the error so callers can surface what the app reported.
func (OsascriptRunner) Run(ctx context.Context, lang, script string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, scriptTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "osascript", "-l", lang, "-e", script)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("osascript timed out after %s", scriptTimeout)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("osascript failed: exit code %d: %s",
				exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("osascript failed: %w", err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// buildCreateTaskScript renders the AppleScript that creates one task.
// All dynamic values are escaped; the script shape follows the OmniFocus
// scripting dictionary (inbox task vs. task at end of a named project,
// then tag assignment).
func buildCreateTaskScript(task NewTask) string {
	var b strings.Builder

	b.WriteString("tell application \"OmniFocus\"\n")
	b.WriteString("  tell default document\n")

	props := fmt.Sprintf(`{name:"%s", note:"%s"}`, Escape(task.Name), Escape(task.Note))
	if task.Project != "" {
		fmt.Fprintf(&b, "    set targetProject to first flattened project whose name is \"%s\"\n",
			Escape(task.Project))
		fmt.Fprintf(&b, "    set newTask to make new task at end of tasks of targetProject with properties %s\n", props)
	} else {
		fmt.Fprintf(&b, "    set newTask to make new inbox task with properties %s\n", props)
	}

	if task.DeferDate != nil {
		fmt.Fprintf(&b, "    set defer date of newTask to date \"%s\"\n",
			task.DeferDate.Format("January 2, 2006 3:04:05 PM"))
	}

	for _, tag := range task.Tags {
		fmt.Fprintf(&b, "    set tagObj to first flattened tag whose name is \"%s\"\n", Escape(tag))
		b.WriteString("    add tagObj to tags of newTask\n")
	}

	b.WriteString("  end tell\n")
	b.WriteString("end tell")

	return b.String()
}

// buildSetDeferDateScript renders the AppleScript that moves one task's
// defer date. The task is addressed by its stable ID, not its name.
func buildSetDeferDateScript(itemID string, date time.Time) string {
	return fmt.Sprintf(`tell application "OmniFocus"
  tell default document
    set theTask to first flattened task whose id is "%s"
    set defer date of theTask to date "%s"
  end tell
end tell`, Escape(itemID), date.Format("January 2, 2006 3:04:05 PM"))
}

// containerTreeScript is the JXA program that snapshots a project tree as
// JSON: the project's tasks (recursively, with defer dates as epoch millis)
// and its sub-projects. JXA is used for reads because it can emit JSON
// directly; writes stay in AppleScript per the scripting dictionary.
const containerTreeScript = `
(() => {
  const of = Application("OmniFocus");
  const doc = of.defaultDocument;

  const taskJSON = (t) => ({
    id: t.id(),
    name: t.name(),
    deferDate: t.deferDate() ? t.deferDate().getTime() : null,
    completed: t.completed(),
    children: t.tasks().map(taskJSON),
  });

  const projectJSON = (p) => ({
    id: p.id(),
    name: p.name(),
    items: p.tasks().map(taskJSON),
    children: p.projects ? p.projects().map(projectJSON) : [],
  });

  const roots = doc.projects().map(projectJSON);
  return JSON.stringify(roots);
})()
`
