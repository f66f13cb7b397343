package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"medals/internal"
	"medals/internal/util"
)

func sampleRows() []internal.MedalRow {
	return []internal.MedalRow{
		{Rank: 1, CountryName: "Österreich", NOC: "AUT", ISO2: util.StringPtr("AT"), FlagURL: util.StringPtr("https://flags.test/at.png"), Gold: 2, Silver: 1, Total: 3, IsEU: true},
		{Rank: 2, CountryName: "Individual Neutral Athletes", NOC: "AIN", Bronze: 1, Total: 1},
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "medals.csv")
	require.NoError(t, WriteCSV(sampleRows(), path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Equal(t, [][]string{
		{"rank", "country", "noc", "iso2", "flag_url", "gold", "silver", "bronze", "total", "is_eu"},
		{"1", "Österreich", "AUT", "AT", "https://flags.test/at.png", "2", "1", "0", "3", "true"},
		{"2", "Individual Neutral Athletes", "AIN", "", "", "0", "0", "1", "1", "false"},
	}, records)
}

func TestPayloadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "medals.json")
	payload := internal.MedalPayload{
		LastUpdatedUTC:   "2026-02-20T12:00:00Z",
		SourceURL:        "https://example.org/medals",
		SourceRevisionID: util.StringPtr(`"rev-1"`),
		Rows:             sampleRows(),
	}
	require.NoError(t, WriteJSON(payload, path))

	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(blob)
	require.True(t, strings.HasSuffix(text, "}\n"))
	require.Contains(t, text, `"iso2": null`)
	require.Contains(t, text, `"flag_url": null`)
	require.Contains(t, text, `"source_retrieved_at_utc": null`)
	require.Contains(t, text, "Österreich")
	require.Contains(t, text, `"gold": 2,`)

	got, err := ReadPayload(path)
	require.NoError(t, err)
	if diff := cmp.Diff(payload, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "medals.xlsx")
	require.NoError(t, WriteXLSX(sampleRows(), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "country", rows[0][1])
	require.Equal(t, "Österreich", rows[1][1])
	require.Equal(t, "AIN", rows[2][2])
	require.Equal(t, "is_eu", rows[0][9])
}
