package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"medals/internal"
)

// MetadataStore persists RunMetadata between runs as a single JSON file.
type MetadataStore struct {
	path      string
	sourceURL string
}

func NewMetadataStore(path, sourceURL string) *MetadataStore {
	return &MetadataStore{path: path, sourceURL: sourceURL}
}

// Load returns defaults when the file is absent.
func (s *MetadataStore) Load() (internal.RunMetadata, error) {
	meta := internal.RunMetadata{SourceURL: s.sourceURL, UnmappedCountries: []string{}}
	blob, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return meta, nil
	}
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(blob, &meta); err != nil {
		return meta, err
	}
	if meta.SourceURL == "" {
		meta.SourceURL = s.sourceURL
	}
	if meta.UnmappedCountries == nil {
		meta.UnmappedCountries = []string{}
	}
	return meta, nil
}

func (s *MetadataStore) Save(meta internal.RunMetadata) error {
	if meta.UnmappedCountries == nil {
		meta.UnmappedCountries = []string{}
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	blob, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, append(blob, '\n'), 0o644)
}
