package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"medals/internal"
	"medals/internal/util"
)

func TestMetadataStoreDefaults(t *testing.T) {
	store := NewMetadataStore(filepath.Join(t.TempDir(), "medals_meta.json"), "https://example.org/medals")

	meta, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "https://example.org/medals", meta.SourceURL)
	require.NotNil(t, meta.UnmappedCountries)
	require.Empty(t, meta.UnmappedCountries)
	require.Nil(t, meta.LastETag)
}

func TestMetadataStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "medals_meta.json")
	store := NewMetadataStore(path, "https://example.org/medals")

	require.NoError(t, store.Save(internal.RunMetadata{
		LastETag:          util.StringPtr(`W/"123"`),
		LastUpdateUTC:     util.StringPtr("2026-08-01T10:00:00Z"),
		SourceURL:         "https://example.org/medals",
		UnmappedCountries: []string{"Atlantis"},
	}))

	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(blob), `"last_modified": null`)
	require.Contains(t, string(blob), `"unmapped_countries": [`)

	meta, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, `W/"123"`, util.Deref(meta.LastETag))
	require.Equal(t, []string{"Atlantis"}, meta.UnmappedCountries)
}

func TestMetadataStoreSavesEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "medals_meta.json")
	store := NewMetadataStore(path, "u")

	require.NoError(t, store.Save(internal.RunMetadata{SourceURL: "u"}))
	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(blob), `"unmapped_countries": []`)
}
