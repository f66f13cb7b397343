package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"medals/internal"
	"medals/internal/util"
)

var outputHeaders = []string{"rank", "country", "noc", "iso2", "flag_url", "gold", "silver", "bronze", "total", "is_eu"}

func WriteCSV(rows []internal.MedalRow, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	_ = w.Write(outputHeaders)
	for _, r := range rows {
		_ = w.Write([]string{
			strconv.Itoa(r.Rank),
			r.CountryName,
			r.NOC,
			util.Deref(r.ISO2),
			util.Deref(r.FlagURL),
			strconv.Itoa(r.Gold),
			strconv.Itoa(r.Silver),
			strconv.Itoa(r.Bronze),
			strconv.Itoa(r.Total),
			strconv.FormatBool(r.IsEU),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WriteJSON writes v indented with a trailing newline, leaving non-ASCII text unescaped.
func WriteJSON(v any, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func ReadPayload(path string) (internal.MedalPayload, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return internal.MedalPayload{}, err
	}
	var payload internal.MedalPayload
	if err := json.Unmarshal(blob, &payload); err != nil {
		return internal.MedalPayload{}, err
	}
	return payload, nil
}

func WriteXLSX(rows []internal.MedalRow, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, h := range outputHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.Rank)
		set(2, row.CountryName)
		set(3, row.NOC)
		set(4, util.Deref(row.ISO2))
		set(5, util.Deref(row.FlagURL))
		set(6, row.Gold)
		set(7, row.Silver)
		set(8, row.Bronze)
		set(9, row.Total)
		set(10, row.IsEU)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
