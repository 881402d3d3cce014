// Package storage provides the blob store backing media URLs in chat
// transcripts and the client's download directory.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrInvalidName = errors.New("blob name must not contain path separators")

// Local stores blobs as plain files under a root directory.
type Local struct {
	root string
}

// NewLocal creates the root directory if needed and returns the store.
func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", root, err)
	}
	return &Local{root: root}, nil
}

// Save writes the blob and returns its path, which doubles as the URL
// recorded in chat history.
func (l *Local) Save(name string, data []byte) (string, error) {
	path, err := l.path(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save blob %s: %w", name, err)
	}
	return path, nil
}

// Get reads a blob back.
func (l *Local) Get(name string) ([]byte, error) {
	path, err := l.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", name, err)
	}
	return data, nil
}

// Delete removes a blob. Deleting a missing blob is not an error.
func (l *Local) Delete(name string) error {
	path, err := l.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob %s: %w", name, err)
	}
	return nil
}

// path rejects names that would escape the root directory.
func (l *Local) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return "", ErrInvalidName
	}
	return filepath.Join(l.root, name), nil
}
