package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/slackfocus/slackfocus/internal/omnifocus"
	"github.com/slackfocus/slackfocus/internal/slack"
)

// titleMaxLen caps how much of a message makes it into the task name.
// The rest lives in the note.
const titleMaxLen = 100

// Resolver turns Slack user and channel IDs into display names.
type Resolver interface {
	ResolveUser(ctx context.Context, userID string) string
	ResolveChannel(ctx context.Context, channelID string) string
}

// Formatter builds OmniFocus tasks from saved Slack items.
type Formatter struct {
	names      Resolver
	prefix     string
	project    string
	tags       []string
	permalinks bool
}

// NewFormatter returns a Formatter. prefix is prepended to every task name.
func NewFormatter(names Resolver, prefix, project string, tags []string, permalinks bool) *Formatter {
	return &Formatter{
		names:      names,
		prefix:     prefix,
		project:    project,
		tags:       tags,
		permalinks: permalinks,
	}
}

// Task renders one saved item as a new task.
func (f *Formatter) Task(ctx context.Context, item slack.SavedItem) omnifocus.NewTask {
	var title string
	var note []string

	switch item.Type {
	case slack.TypeMessage:
		title, note = f.formatMessage(ctx, item)
	case slack.TypeFile:
		title, note = f.formatFile(ctx, item)
	case slack.TypeChannel:
		title = "Channel #" + f.names.ResolveChannel(ctx, item.Channel)
	default:
		title = "Saved " + item.Type + " item"
	}

	if item.DateCreate > 0 {
		saved := time.Unix(item.DateCreate, 0)
		note = append(note, "Saved: "+saved.Format("2006-01-02 15:04"))
	}

	return omnifocus.NewTask{
		Name:    f.prefix + " " + title,
		Note:    strings.Join(note, "\n"),
		Project: f.project,
		Tags:    f.tags,
	}
}

func (f *Formatter) formatMessage(ctx context.Context, item slack.SavedItem) (string, []string) {
	msg := item.Message
	if msg == nil {
		return "Message in #" + f.names.ResolveChannel(ctx, item.Channel), nil
	}

	title := firstLine(msg.Text, titleMaxLen)
	if title == "" {
		title = "Message from " + f.names.ResolveUser(ctx, msg.User)
	}

	var note []string
	if msg.User != "" {
		note = append(note, "From: "+f.names.ResolveUser(ctx, msg.User))
	}
	if item.Channel != "" {
		note = append(note, "Channel: #"+f.names.ResolveChannel(ctx, item.Channel))
	}
	if msg.Text != "" {
		note = append(note, "", msg.Text)
	}
	if f.permalinks && msg.Permalink != "" {
		note = append(note, "", msg.Permalink)
	}
	return title, note
}

func (f *Formatter) formatFile(ctx context.Context, item slack.SavedItem) (string, []string) {
	file := item.File
	if file == nil {
		return "File", nil
	}

	name := file.Title
	if name == "" {
		name = file.Name
	}
	title := fmt.Sprintf("File: %s", firstLine(name, titleMaxLen))

	var note []string
	if file.User != "" {
		note = append(note, "From: "+f.names.ResolveUser(ctx, file.User))
	}
	if f.permalinks && file.Permalink != "" {
		note = append(note, "", file.Permalink)
	}
	return title, note
}

// firstLine returns the first line of s truncated to max runes, with an
// ellipsis when anything was cut.
func firstLine(s string, max int) string {
	s = strings.TrimSpace(s)
	cut := false
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = strings.TrimSpace(s[:i])
		cut = true
	}
	if runes := []rune(s); len(runes) > max {
		s = strings.TrimSpace(string(runes[:max]))
		cut = true
	}
	if cut && s != "" {
		s += "…"
	}
	return s
}
