package registry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"medals/internal"
	"medals/internal/fetch"
)

const referencePage = `<html><body>
<table><tr><th>Unrelated</th></tr><tr><td>x</td></tr></table>
<table class="wikitable sortable">
<tr><th>Code</th><th>National Olympic Committee</th><th>Other codes used</th></tr>
<tr><td>NOR</td><td>Norway</td><td></td></tr>
<tr><td>TUR</td><td>Turkey[a]</td><td>TRK</td></tr>
<tr><td>CZE</td><td>Czech Republic</td><td>TCH</td></tr>
<tr><td>NOR</td><td>Norway</td><td></td></tr>
<tr><td>—</td><td>Former team</td><td></td></tr>
</table>
</body></html>`

type stubFetcher struct {
	body  string
	err   error
	calls int
}

func (s *stubFetcher) Get(_ context.Context, url string) (fetch.Page, error) {
	s.calls++
	if s.err != nil {
		return fetch.Page{}, s.err
	}
	return fetch.Page{URL: url, Body: []byte(s.body)}, nil
}

func TestBuildSkipsIncompleteRows(t *testing.T) {
	reg := Build([]internal.ReferenceEntry{
		{NOC: "NOR", CountryName: "Norway"},
		{NOC: "", CountryName: "Nowhere"},
		{NOC: "XXX", CountryName: ""},
		{NOC: "TUR", CountryName: "Turkey"},
	})

	require.Equal(t, 2, reg.Len())
	name, ok := reg.Name("TUR")
	require.True(t, ok)
	require.Equal(t, "Turkey", name)

	noc, ok := reg.Lookup("Türkiye")
	require.True(t, ok)
	require.Equal(t, "TUR", noc)

	_, ok = reg.Lookup("Nowhere")
	require.False(t, ok)
	_, ok = reg.Lookup("")
	require.False(t, ok)
}

func TestParseReferencePage(t *testing.T) {
	entries, err := ParseReferencePage([]byte(referencePage))
	require.NoError(t, err)
	require.Equal(t, []internal.ReferenceEntry{
		{NOC: "CZE", CountryName: "Czech Republic"},
		{NOC: "NOR", CountryName: "Norway"},
		{NOC: "TUR", CountryName: "Turkey"},
	}, entries)
}

func TestParseReferencePageWithoutSignature(t *testing.T) {
	_, err := ParseReferencePage([]byte(`<table><tr><th>Code</th><th>Name</th></tr><tr><td>NOR</td><td>Norway</td></tr></table>`))
	require.True(t, errors.Is(err, internal.ErrReferenceUnavailable))
}

func TestLoaderRebuildsMissingTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "ioc_codes.csv")
	fetcher := &stubFetcher{body: referencePage}
	loader := NewLoader(path, "https://example.test/ioc", fetcher, zap.NewNop())

	reg, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, reg.Len())
	require.Equal(t, 1, fetcher.calls)

	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "noc,country_name\nCZE,Czech Republic\nNOR,Norway\nTUR,Turkey\n", string(blob))

	// Second load reuses the persisted table verbatim.
	reg, err = loader.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, reg.Len())
	require.Equal(t, 1, fetcher.calls)
}

func TestLoaderRebuildsHeaderOnlyTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ioc_codes.csv")
	require.NoError(t, os.WriteFile(path, []byte("noc,country_name\n"), 0o644))
	fetcher := &stubFetcher{body: referencePage}

	reg, err := NewLoader(path, "https://example.test/ioc", fetcher, zap.NewNop()).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, reg.Len())
	require.Equal(t, 1, fetcher.calls)
}

func TestLoaderRebuildsTableWithoutNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ioc_codes.csv")
	require.NoError(t, os.WriteFile(path, []byte("noc,country_name\nNOR,\nTUR, \n"), 0o644))
	fetcher := &stubFetcher{body: referencePage}

	reg, err := NewLoader(path, "https://example.test/ioc", fetcher, zap.NewNop()).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, reg.Len())
	require.Equal(t, 1, fetcher.calls)

	name, ok := reg.Name("NOR")
	require.True(t, ok)
	require.Equal(t, "Norway", name)
}

func TestLoaderPropagatesFetchFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ioc_codes.csv")
	fetcher := &stubFetcher{err: internal.ErrFetchFailure}

	_, err := NewLoader(path, "https://example.test/ioc", fetcher, zap.NewNop()).Load(context.Background())
	require.ErrorIs(t, err, internal.ErrFetchFailure)
	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))
}
