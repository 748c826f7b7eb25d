package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/zalando/go-keyring"
)

const serviceName = "slackfocus"

// Credentials holds the Slack user token and metadata captured at login.
type Credentials struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id,omitempty"`
	Team      string `json:"team,omitempty"`
	SavedAt   int64  `json:"saved_at,omitempty"`
	Workspace string `json:"workspace_url,omitempty"`
}

// Store handles credential storage, preferring the system keychain with a
// plaintext file fallback guarded by a file lock.
type Store struct {
	useKeyring  bool
	fallbackDir string
}

// NewStore creates a credential store.
func NewStore(fallbackDir string) *Store {
	// Skip keyring for tests or when explicitly disabled
	if os.Getenv("SLACKFOCUS_NO_KEYRING") != "" {
		return &Store{useKeyring: false, fallbackDir: fallbackDir}
	}

	// Probe keyring availability
	testKey := "slackfocus::test"
	if err := keyring.Set(serviceName, testKey, "test"); err == nil {
		_ = keyring.Delete(serviceName, testKey) // Best-effort cleanup
		return &Store{useKeyring: true, fallbackDir: fallbackDir}
	}
	fmt.Fprintf(os.Stderr, "warning: system keyring unavailable, credentials stored in plaintext at %s\n",
		filepath.Join(fallbackDir, "credentials.json"))
	return &Store{useKeyring: false, fallbackDir: fallbackDir}
}

const credentialsKey = "slackfocus::slack"

// Load retrieves the stored credentials.
func (s *Store) Load() (*Credentials, error) {
	if s.useKeyring {
		data, err := keyring.Get(serviceName, credentialsKey)
		if err != nil {
			return nil, fmt.Errorf("credentials not found: %w", err)
		}
		var creds Credentials
		if err := json.Unmarshal([]byte(data), &creds); err != nil {
			return nil, fmt.Errorf("invalid credentials: %w", err)
		}
		return &creds, nil
	}
	return s.loadFromFile()
}

// Save stores the credentials.
func (s *Store) Save(creds *Credentials) error {
	if creds.SavedAt == 0 {
		creds.SavedAt = time.Now().Unix()
	}
	if s.useKeyring {
		data, err := json.Marshal(creds)
		if err != nil {
			return err
		}
		return keyring.Set(serviceName, credentialsKey, string(data))
	}
	return s.saveToFile(creds)
}

// Delete removes the stored credentials.
func (s *Store) Delete() error {
	if s.useKeyring {
		return keyring.Delete(serviceName, credentialsKey)
	}
	return s.deleteFile()
}

// File fallback methods. The lock guards against concurrent CLI runs
// rewriting the file; acquisition is bounded so a stale lock cannot hang
// the command.

const lockTimeout = 100 * time.Millisecond

func (s *Store) credentialsPath() string {
	return filepath.Join(s.fallbackDir, "credentials.json")
}

func (s *Store) lockPath() string {
	return filepath.Join(s.fallbackDir, "credentials.lock")
}

// withLock runs fn holding the credentials file lock. If the lock cannot be
// acquired within lockTimeout, fn runs unlocked (fail-open; a brief race is
// preferable to a hung CLI).
func (s *Store) withLock(fn func() error) error {
	if err := os.MkdirAll(s.fallbackDir, 0o700); err != nil {
		return err
	}

	fl := flock.New(s.lockPath())
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, 10*time.Millisecond)
	if err == nil && locked {
		defer func() { _ = fl.Unlock() }()
	}
	return fn()
}

func (s *Store) loadFromFile() (*Credentials, error) {
	var creds *Credentials
	err := s.withLock(func() error {
		data, err := os.ReadFile(s.credentialsPath())
		if err != nil {
			return err
		}
		var c Credentials
		if err := json.Unmarshal(data, &c); err != nil {
			return fmt.Errorf("invalid credentials: %w", err)
		}
		creds = &c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return creds, nil
}

func (s *Store) saveToFile(creds *Credentials) error {
	return s.withLock(func() error {
		data, err := json.MarshalIndent(creds, "", "  ")
		if err != nil {
			return err
		}

		// Atomic write with randomized temp file name
		tmpFile, err := os.CreateTemp(s.fallbackDir, "credentials-*.json.tmp")
		if err != nil {
			return err
		}
		tmpPath := tmpFile.Name()

		if _, err := tmpFile.Write(data); err != nil {
			tmpFile.Close()
			os.Remove(tmpPath)
			return err
		}
		if err := tmpFile.Chmod(0o600); err != nil {
			tmpFile.Close()
			os.Remove(tmpPath)
			return err
		}
		if err := tmpFile.Close(); err != nil {
			os.Remove(tmpPath)
			return err
		}
		if err := os.Rename(tmpPath, s.credentialsPath()); err != nil {
			os.Remove(tmpPath)
			return err
		}
		return nil
	})
}

func (s *Store) deleteFile() error {
	return s.withLock(func() error {
		err := os.Remove(s.credentialsPath())
		if os.IsNotExist(err) {
			return nil
		}
		return err
	})
}
