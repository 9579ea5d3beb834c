package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	apperrors "github.com/campuscash/campuscash-go/pkg/errors"
)

// Backend persists store snapshots between process runs. Write replaces the
// value under name; Read returns apperrors.ErrCacheMiss when nothing was
// persisted yet.
type Backend interface {
	Write(name string, data []byte) error
	Read(name string) ([]byte, error)
	Delete(name string) error
}

// FileBackend keeps snapshots as files under a state directory. Snapshots
// carry credentials, so files are created owner-only.
type FileBackend struct {
	baseDir string
}

// NewFileBackend ensures the state directory exists and returns a handle.
func NewFileBackend(baseDir string) (*FileBackend, error) {
	if baseDir == "" {
		baseDir = "./.campuscash"
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	return &FileBackend{baseDir: baseDir}, nil
}

// Write replaces the snapshot under name.
func (b *FileBackend) Write(name string, data []byte) error {
	if err := os.WriteFile(b.resolve(name), data, 0o600); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

// Read returns the snapshot under name.
func (b *FileBackend) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(b.resolve(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}
	return data, nil
}

// Delete removes the snapshot under name if present.
func (b *FileBackend) Delete(name string) error {
	if err := os.Remove(b.resolve(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete state file: %w", err)
	}
	return nil
}

// Path exposes the absolute path of a snapshot, for diagnostics.
func (b *FileBackend) Path(name string) string {
	return b.resolve(name)
}

func (b *FileBackend) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(b.baseDir, name)
}

// MemoryBackend keeps snapshots in memory. Tests use it so they never touch
// disk.
type MemoryBackend struct {
	entries map[string][]byte
}

// NewMemoryBackend constructs an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string][]byte)}
}

func (b *MemoryBackend) Write(name string, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	b.entries[name] = cp
	return nil
}

func (b *MemoryBackend) Read(name string) ([]byte, error) {
	data, ok := b.entries[name]
	if !ok {
		return nil, apperrors.ErrCacheMiss
	}
	return data, nil
}

func (b *MemoryBackend) Delete(name string) error {
	delete(b.entries, name)
	return nil
}

func marshalSnapshot(v interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode state snapshot: %w", err)
	}
	return data, nil
}
