package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileRepository persists the whole repository as one JSON document.
// Every mutation is flushed with a write-then-rename so a failed save
// never leaves a partially written file behind.
type FileRepository struct {
	*MemoryRepository
	path string
}

// NewFileRepository opens (or creates) a JSON-backed repository at
// path. The parent directory is created if needed. Files written by a
// different schema version are refused rather than migrated.
func NewFileRepository(path string) (*FileRepository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	fr := &FileRepository{
		MemoryRepository: NewMemoryRepository(),
		path:             path,
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Fresh store; first mutation creates the file.
	case err != nil:
		return nil, fmt.Errorf("failed to read store file: %w", err)
	default:
		var doc document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse store file %s: %w", path, err)
		}
		if doc.SchemaVersion != schemaVersion {
			return nil, fmt.Errorf("store file %s has schema_version %d, want %d", path, doc.SchemaVersion, schemaVersion)
		}
		if doc.Players == nil {
			doc.Players = make(map[string]*PlayerRecord)
		}
		if doc.Games == nil {
			doc.Games = make(map[string]*GameRecord)
		}
		fr.doc = doc
	}

	fr.persist = fr.writeFile
	return fr, nil
}

// Path returns the location of the backing file.
func (fr *FileRepository) Path() string {
	return fr.path
}

// writeFile flushes the document atomically. Called with the repository
// lock held.
func (fr *FileRepository) writeFile(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}

	tmp := fr.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := os.Rename(tmp, fr.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}
