// Package file provides filesystem-backed stores.
//
// Each target gets its own JSON file so incremental runs load and save
// records independently. Writes are atomic: temp file, fsync, rename.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/cairn/pkg/domain"
)

// RecordStore implements ports.RecordStore on the local filesystem.
type RecordStore struct {
	BasePath string
}

// NewRecordStore creates a record store rooted at basePath.
// If basePath is empty, it defaults to ".cairn/records".
func NewRecordStore(basePath string) *RecordStore {
	if basePath == "" {
		basePath = filepath.Join(".cairn", "records")
	}
	return &RecordStore{BasePath: basePath}
}

// Save persists the record to a JSON file atomically.
func (s *RecordStore) Save(ctx context.Context, name string, record *domain.RunRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	return writeAtomic(s.BasePath, name, data)
}

// Load retrieves the record from its JSON file.
// Undecodable data is reported as domain.ErrRecordCorrupt so the scheduler
// can treat the target as stale instead of aborting.
func (s *RecordStore) Load(ctx context.Context, name string) (*domain.RunRecord, error) {
	path, err := storePath(s.BasePath, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}

	var record domain.RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrRecordCorrupt, name, err)
	}
	return &record, nil
}

// Delete removes the record file.
func (s *RecordStore) Delete(ctx context.Context, name string) error {
	path, err := storePath(s.BasePath, name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete record file: %w", err)
	}
	return nil
}

// List returns all recorded target names.
func (s *RecordStore) List(ctx context.Context) ([]string, error) {
	return listJSON(s.BasePath)
}

// ResultStore implements ports.ResultStore on the local filesystem.
// Values must be JSON round-trippable.
type ResultStore struct {
	BasePath string
}

// NewResultStore creates a result store rooted at basePath.
// If basePath is empty, it defaults to ".cairn/results".
func NewResultStore(basePath string) *ResultStore {
	if basePath == "" {
		basePath = filepath.Join(".cairn", "results")
	}
	return &ResultStore{BasePath: basePath}
}

// Put persists the value as JSON atomically.
func (s *ResultStore) Put(ctx context.Context, name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	return writeAtomic(s.BasePath, name, data)
}

// Get retrieves a stored value.
func (s *ResultStore) Get(ctx context.Context, name string) (any, error) {
	path, err := storePath(s.BasePath, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to read result file: %w", err)
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result %s: %w", name, err)
	}
	return value, nil
}

// Delete removes a stored value.
func (s *ResultStore) Delete(ctx context.Context, name string) error {
	path, err := storePath(s.BasePath, name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete result file: %w", err)
	}
	return nil
}

// Clear removes all stored values.
func (s *ResultStore) Clear(ctx context.Context) error {
	names, err := listJSON(s.BasePath)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := s.Delete(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// storePath maps a target name to its JSON file. Names that fail validation
// are rejected so a crafted name can never resolve outside the store
// directory.
func storePath(dir, name string) (string, error) {
	if err := domain.ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(dir, name+".json"), nil
}

// writeAtomic writes data to dir/name.json via a temp file, fsync and
// rename, so a crash never leaves a partial file behind.
func writeAtomic(dir, name string, data []byte) error {
	destPath, err := storePath(dir, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure store directory: %w", err)
	}

	// Same directory, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(dir, "tmp-"+name+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists. Remove first; the brief
	// window is acceptable compared to a partial write.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func listJSON(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list store directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if strings.HasPrefix(entry.Name(), "tmp-") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	return names, nil
}
