// Package workspace is the filesystem side of a sync run.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Entry is one directory entry.
type Entry struct {
	Name  string
	IsDir bool
}

// FileStore is the set of filesystem operations the sync needs.
type FileStore interface {
	List(dir string) ([]Entry, error)
	Read(path string) (string, error)
	Write(path, content string) error
	Delete(path string) error
	Rename(oldPath, newPath string) error
	Exists(path string) (bool, error)
}

// OSFileStore implements FileStore on the local disk.
type OSFileStore struct {
	perm fs.FileMode
}

var _ FileStore = (*OSFileStore)(nil)

func NewOSFileStore() *OSFileStore {
	return &OSFileStore{perm: 0644}
}

func (s *OSFileStore) List(dir string) ([]Entry, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading directory %s: %w", dir, err)
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, Entry{Name: item.Name(), IsDir: item.IsDir()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (s *OSFileStore) Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("error reading %s: %w", path, err)
	}
	return string(data), nil
}

// Write replaces the file through a temporary sibling so a failed write never
// leaves a truncated issue file behind.
func (s *OSFileStore) Write(path, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("error creating temporary file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("error closing %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, s.perm); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("error setting permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("error replacing %s: %w", path, err)
	}
	return nil
}

func (s *OSFileStore) Delete(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error deleting %s: %w", path, err)
	}
	return nil
}

func (s *OSFileStore) Rename(oldPath, newPath string) error {
	if err := os.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("error renaming %s to %s: %w", oldPath, newPath, err)
	}
	return nil
}

func (s *OSFileStore) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
