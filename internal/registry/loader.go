package registry

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"medals/internal"
	"medals/internal/fetch"
	"medals/internal/htmltable"
	"medals/internal/util"
)

type PageFetcher interface {
	Get(ctx context.Context, url string) (fetch.Page, error)
}

// Loader reads the persisted reference CSV and rebuilds it from the live
// reference page when it is absent or has no usable rows.
type Loader struct {
	path    string
	url     string
	fetcher PageFetcher
	log     *zap.Logger
}

func NewLoader(path, url string, fetcher PageFetcher, log *zap.Logger) *Loader {
	return &Loader{path: path, url: url, fetcher: fetcher, log: log}
}

func (l *Loader) Load(ctx context.Context) (*Registry, error) {
	entries, err := ReadCSV(l.path)
	if err != nil {
		return nil, err
	}
	if hasCodes(entries) {
		return Build(entries), nil
	}

	l.log.Info("reference table missing or empty, rebuilding", zap.String("path", l.path), zap.String("url", l.url))
	entries, err = l.refresh(ctx)
	if err != nil {
		return nil, err
	}
	reg := Build(entries)
	l.log.Info("reference table rebuilt", zap.Int("entries", reg.Len()))
	return reg, nil
}

func (l *Loader) refresh(ctx context.Context) ([]internal.ReferenceEntry, error) {
	page, err := l.fetcher.Get(ctx, l.url)
	if err != nil {
		return nil, err
	}
	entries, err := ParseReferencePage(page.Body)
	if err != nil {
		return nil, err
	}
	if err := WriteCSV(l.path, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ParseReferencePage finds the table headed {code, national olympic committee}
// and returns its three-letter rows sorted and de-duplicated.
func ParseReferencePage(html []byte) ([]internal.ReferenceEntry, error) {
	tables, err := htmltable.Parse(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", internal.ErrReferenceUnavailable, err)
	}

	for _, t := range tables {
		codeIdx := t.Column("code")
		nameIdx := -1
		for i, h := range t.Headers {
			if strings.Contains(strings.ToLower(h), "national olympic committee") {
				nameIdx = i
				break
			}
		}
		if codeIdx < 0 || nameIdx < 0 {
			continue
		}

		seen := map[internal.ReferenceEntry]struct{}{}
		out := []internal.ReferenceEntry{}
		for _, row := range t.Rows {
			entry := internal.ReferenceEntry{
				NOC:         util.Normalize(row[codeIdx]),
				CountryName: util.Normalize(row[nameIdx]),
			}
			if utf8.RuneCountInString(entry.NOC) != 3 {
				continue
			}
			if _, dup := seen[entry]; dup {
				continue
			}
			seen[entry] = struct{}{}
			out = append(out, entry)
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].NOC != out[j].NOC {
				return out[i].NOC < out[j].NOC
			}
			return out[i].CountryName < out[j].CountryName
		})
		return out, nil
	}

	return nil, fmt.Errorf("%w: no table with code and national olympic committee columns", internal.ErrReferenceUnavailable)
}

// ReadCSV returns nil without error when the file does not exist.
func ReadCSV(path string) ([]internal.ReferenceEntry, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	nocIdx, nameIdx := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case "noc":
			nocIdx = i
		case "country_name":
			nameIdx = i
		}
	}
	if nocIdx < 0 {
		return nil, nil
	}

	out := []internal.ReferenceEntry{}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		entry := internal.ReferenceEntry{NOC: field(record, nocIdx), CountryName: field(record, nameIdx)}
		out = append(out, entry)
	}
	return out, nil
}

func WriteCSV(path string, entries []internal.ReferenceEntry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	_ = w.Write([]string{"noc", "country_name"})
	for _, e := range entries {
		_ = w.Write([]string{e.NOC, e.CountryName})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// hasCodes reports whether at least one row carries both a code and a name.
func hasCodes(entries []internal.ReferenceEntry) bool {
	for _, e := range entries {
		if util.Normalize(e.NOC) != "" && util.Normalize(e.CountryName) != "" {
			return true
		}
	}
	return false
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}
