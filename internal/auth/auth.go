// Package auth manages the Slack user token.
package auth

import (
	"os"
	"sync"

	"github.com/slackfocus/slackfocus/internal/config"
	"github.com/slackfocus/slackfocus/internal/output"
)

// Manager resolves the Slack token for API requests.
// Resolution order: SLACK_USER_TOKEN env var > credential store > config file.
type Manager struct {
	cfg   *config.Config
	store *Store

	mu    sync.Mutex
	token string
}

// NewManager creates an auth manager backed by the given credential store.
func NewManager(cfg *config.Config, store *Store) *Manager {
	return &Manager{cfg: cfg, store: store}
}

// Token returns the Slack user token, or an auth error when none is
// configured. The resolved value is cached for the run.
func (m *Manager) Token() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != "" {
		return m.token, nil
	}

	if v := os.Getenv("SLACK_USER_TOKEN"); v != "" {
		m.token = v
		return m.token, nil
	}

	if creds, err := m.store.Load(); err == nil && creds.Token != "" {
		m.token = creds.Token
		return m.token, nil
	}

	if m.cfg != nil && m.cfg.Token != "" {
		m.token = m.cfg.Token
		return m.token, nil
	}

	return "", output.ErrAuth("No Slack token configured")
}

// Login stores the given credentials.
func (m *Manager) Login(creds *Credentials) error {
	if err := m.store.Save(creds); err != nil {
		return err
	}
	m.mu.Lock()
	m.token = creds.Token
	m.mu.Unlock()
	return nil
}

// Logout removes stored credentials.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	return m.store.Delete()
}

// Stored returns the persisted credentials, if any.
func (m *Manager) Stored() (*Credentials, error) {
	return m.store.Load()
}
