package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// FileStore persists the token inside a JSON auth file. Fields other than the
// ones it manages survive updates, so callers may keep sibling metadata in the
// same file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by the JSON file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Get reads the access token from the auth file. A missing file or a file
// without a token yields ErrNoToken.
func (s *FileStore) Get(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("token store: read %s failed: %w", s.path, err)
	}

	token := strings.TrimSpace(gjson.GetBytes(data, "access_token").String())
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Set writes the token into the auth file, creating the parent directory when
// needed. Unrelated fields already present in the file are preserved.
func (s *FileStore) Set(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("token store: read %s failed: %w", s.path, err)
		}
		existing = []byte("{}")
	}

	updated, err := sjson.SetBytes(existing, "access_token", token)
	if err != nil {
		return fmt.Errorf("token store: update token field failed: %w", err)
	}
	if updated, err = sjson.SetBytes(updated, "type", "vk"); err != nil {
		return fmt.Errorf("token store: update type field failed: %w", err)
	}
	if updated, err = sjson.SetBytes(updated, "last_update", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("token store: update timestamp failed: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("token store: create directory failed: %w", err)
	}
	if err = os.WriteFile(s.path, updated, 0o600); err != nil {
		return fmt.Errorf("token store: write %s failed: %w", s.path, err)
	}
	return nil
}
