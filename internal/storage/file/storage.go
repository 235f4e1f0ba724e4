package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/mcoot/ccpubsub/internal/model"
	"github.com/mcoot/ccpubsub/internal/storage"
)

// DefaultPath is the token file used when none is configured
const DefaultPath = "creds.jwt"

// Storage keeps the token in a single text file. The file is read trimmed
// and overwritten whole.
type Storage struct {
	path string
}

// New creates a file storage for the given path
func New(path string) *Storage {
	if path == "" {
		path = DefaultPath
	}
	return &Storage{path: path}
}

// Ensure Storage implements the interface
var _ storage.TokenStore = (*Storage)(nil)

// Path returns the token file path
func (s *Storage) Path() string {
	return s.path
}

func (s *Storage) LoadToken(ctx context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", model.ErrTokenNotFound
		}
		return "", err
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", model.ErrTokenNotFound
	}
	return token, nil
}

func (s *Storage) SaveToken(ctx context.Context, token string) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}

	// Write to a sibling temp file and rename so readers never see a partial token
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".token-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.WriteString(token); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *Storage) DeleteToken(ctx context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
