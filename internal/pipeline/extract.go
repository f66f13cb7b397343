package pipeline

import (
	"strings"
	"unicode/utf8"

	"medals/internal"
	"medals/internal/htmltable"
	"medals/internal/util"
)

var requiredMedalHeaders = []string{"gold", "silver", "bronze", "total"}

var nationHeaderHints = []string{"nation", "country", "team", "noc"}

type columnRule struct {
	field  string
	probes []string
}

// Evaluated in order; within a rule the first probe that matches any header wins.
var columnRules = []columnRule{
	{field: "rank", probes: []string{"rank", "rk"}},
	{field: "nation", probes: []string{"nation", "team", "country"}},
	{field: "noc", probes: []string{"noc"}},
	{field: "gold", probes: []string{"gold"}},
	{field: "silver", probes: []string{"silver"}},
	{field: "bronze", probes: []string{"bronze"}},
	{field: "total", probes: []string{"total"}},
}

const nocSampleRows = 5

type Columns struct {
	Rank   int
	Nation int
	NOC    int
	Gold   int
	Silver int
	Bronze int
	Total  int
}

// PickMedalTable returns the first table carrying gold/silver/bronze/total headers,
// preferring one that also names the nation column.
func PickMedalTable(tables []htmltable.Table) (htmltable.Table, error) {
	fallback := -1
	for i, t := range tables {
		headers := lowerHeaders(t.Headers)
		if !hasAll(headers, requiredMedalHeaders) {
			continue
		}
		if findHeaderIndex(headers, nationHeaderHints) >= 0 {
			return t, nil
		}
		if fallback < 0 {
			fallback = i
		}
	}
	if fallback >= 0 {
		return tables[fallback], nil
	}
	return htmltable.Table{}, internal.ErrNoMedalTable
}

func IdentifyColumns(t htmltable.Table) Columns {
	headers := lowerHeaders(t.Headers)
	found := map[string]int{}
	for _, rule := range columnRules {
		found[rule.field] = findHeaderIndex(headers, rule.probes)
	}

	cols := Columns{
		Rank:   found["rank"],
		Nation: found["nation"],
		NOC:    found["noc"],
		Gold:   found["gold"],
		Silver: found["silver"],
		Bronze: found["bronze"],
		Total:  found["total"],
	}

	if cols.Nation < 0 {
		claimed := map[int]bool{cols.Rank: true, cols.NOC: true, cols.Gold: true, cols.Silver: true, cols.Bronze: true, cols.Total: true}
		for i := range t.Headers {
			if !claimed[i] {
				cols.Nation = i
				break
			}
		}
	}

	// A "NOC" header sometimes holds full team names rather than codes.
	if cols.Nation < 0 && cols.NOC >= 0 && nocColumnHoldsNames(t, cols.NOC) {
		cols.Nation = cols.NOC
		cols.NOC = -1
	}
	return cols
}

// ExtractRows reads one row per table entry, dropping unnamed and grand-total rows.
func ExtractRows(t htmltable.Table) []internal.ExtractedRow {
	cols := IdentifyColumns(t)
	out := make([]internal.ExtractedRow, 0, len(t.Rows))
	for _, cells := range t.Rows {
		label := util.Normalize(pickCell(cells, cols.Nation))
		if label == "" || strings.HasPrefix(strings.ToLower(label), "total") {
			continue
		}

		row := internal.ExtractedRow{
			Label:  label,
			NOC:    util.Normalize(pickCell(cells, cols.NOC)),
			Gold:   util.ParseCount(pickCell(cells, cols.Gold)),
			Silver: util.ParseCount(pickCell(cells, cols.Silver)),
			Bronze: util.ParseCount(pickCell(cells, cols.Bronze)),
			Total:  util.ParseCount(pickCell(cells, cols.Total)),
		}
		if row.Total == 0 {
			row.Total = row.Gold + row.Silver + row.Bronze
		}
		out = append(out, row)
	}
	return out
}

func nocColumnHoldsNames(t htmltable.Table, idx int) bool {
	for i, cells := range t.Rows {
		if i >= nocSampleRows {
			break
		}
		if utf8.RuneCountInString(util.Normalize(pickCell(cells, idx))) > 3 {
			return true
		}
	}
	return false
}

func findHeaderIndex(headers []string, probes []string) int {
	for _, probe := range probes {
		for i, h := range headers {
			if strings.Contains(h, probe) {
				return i
			}
		}
	}
	return -1
}

func pickCell(cells []string, idx int) string {
	if idx >= 0 && idx < len(cells) {
		return cells[idx]
	}
	return ""
}

func lowerHeaders(headers []string) []string {
	out := make([]string, 0, len(headers))
	for _, h := range headers {
		out = append(out, strings.ToLower(strings.TrimSpace(h)))
	}
	return out
}

func hasAll(headers []string, required []string) bool {
	set := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		set[h] = struct{}{}
	}
	for _, r := range required {
		if _, ok := set[r]; !ok {
			return false
		}
	}
	return true
}
