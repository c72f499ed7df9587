// Package storage provides the local key-value storage area jotter persists to.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// TempFilePrefix is the prefix used for temporary atomic write files.
const TempFilePrefix = ".jotter-tmp-"

// ErrInvalidKey is returned for keys that are empty or would escape the area.
var ErrInvalidKey = errors.New("invalid storage key")

// Area is a synchronous key-value store backed by one directory.
// Each key maps to a single file holding the whole value.
type Area struct {
	dir string
}

// Open creates the directory if needed and returns an Area rooted at it.
func Open(dir string) (*Area, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory: %w", err)
	}
	if err := os.MkdirAll(absPath, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &Area{dir: absPath}, nil
}

// Dir returns the absolute directory of the area.
func (a *Area) Dir() string {
	return a.dir
}

// resolveKey maps a key to its file and rejects anything outside the area.
func (a *Area) resolveKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.HasPrefix(key, ".") || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	fullPath := filepath.Join(a.dir, key)
	relPath, err := filepath.Rel(a.dir, fullPath)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(relPath, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	return fullPath, nil
}

// Get returns the value stored under key. ok is false when the key is absent.
func (a *Area) Get(key string) (value []byte, ok bool, err error) {
	fullPath, err := a.resolveKey(key)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		if errors.Is(err, fs.ErrPermission) {
			return nil, false, fmt.Errorf("permission denied: %s", key)
		}
		return nil, false, fmt.Errorf("failed to read key: %s - %w", key, err)
	}

	return data, true, nil
}

// Set replaces the value stored under key.
func (a *Area) Set(key string, value []byte) error {
	fullPath, err := a.resolveKey(key)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(fullPath, value, 0o600); err != nil {
		return fmt.Errorf("failed to write key: %s - %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (a *Area) Remove(key string) error {
	fullPath, err := a.resolveKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove key: %s - %w", key, err)
	}
	return nil
}

// writeFileAtomic writes data to a temp file in the same directory, then
// renames it over filename.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(filename), TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpFile.Name(), perm); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmpFile.Name(), filename); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}
