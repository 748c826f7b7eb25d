// Package names resolves Slack user and channel IDs to display names,
// memoized for the lifetime of one run.
package names

import (
	"context"
	"sync"
)

// Lookups is the subset of the Slack client the resolver needs.
type Lookups interface {
	UserName(ctx context.Context, userID string) (string, error)
	ChannelName(ctx context.Context, channelID string) (string, error)
}

// Resolver caches name lookups per run. A failed lookup is cached too (the
// ID itself is stored as the name) so each ID costs at most one API call.
// Names can change on the service side, so nothing persists across runs.
type Resolver struct {
	client Lookups

	mu       sync.Mutex
	users    map[string]string
	channels map[string]string
}

// NewResolver creates a name resolver backed by the given client.
func NewResolver(client Lookups) *Resolver {
	return &Resolver{
		client:   client,
		users:    make(map[string]string),
		channels: make(map[string]string),
	}
}

// ResolveUser returns the display name for a user ID, falling back to the
// ID when the lookup fails or the ID is empty.
func (r *Resolver) ResolveUser(ctx context.Context, userID string) string {
	if userID == "" {
		return ""
	}

	r.mu.Lock()
	if name, ok := r.users[userID]; ok {
		r.mu.Unlock()
		return name
	}
	r.mu.Unlock()

	name, err := r.client.UserName(ctx, userID)
	if err != nil || name == "" {
		name = userID
	}

	r.mu.Lock()
	r.users[userID] = name
	r.mu.Unlock()
	return name
}

// ResolveChannel returns the name for a channel ID, falling back to the ID
// when the lookup fails or the ID is empty.
func (r *Resolver) ResolveChannel(ctx context.Context, channelID string) string {
	if channelID == "" {
		return ""
	}

	r.mu.Lock()
	if name, ok := r.channels[channelID]; ok {
		r.mu.Unlock()
		return name
	}
	r.mu.Unlock()

	name, err := r.client.ChannelName(ctx, channelID)
	if err != nil || name == "" {
		name = channelID
	}

	r.mu.Lock()
	r.channels[channelID] = name
	r.mu.Unlock()
	return name
}
