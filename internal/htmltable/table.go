// Package htmltable turns the <table> elements of an HTML page into header-labelled
// rows, resolving rowspan and colspan the way a reader sees the rendered grid.
package htmltable

import (
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"medals/internal/util"
)

type Table struct {
	Headers []string
	Rows    [][]string
}

// Column returns the index of the first header equal to name (case-insensitive), or -1.
func (t Table) Column(name string) int {
	for i, h := range t.Headers {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

type gridCell struct {
	text   string
	header bool
}

type carried struct {
	cell gridCell
	left int
}

func Parse(r io.Reader) ([]Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	out := []Table{}
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := []*goquery.Selection{}
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			if row.Closest("table").IsSelection(table) {
				rows = append(rows, row)
			}
		})
		if len(rows) == 0 {
			return
		}
		out = append(out, fromGrid(readGrid(rows)))
	})
	return out, nil
}

func readGrid(rows []*goquery.Selection) [][]gridCell {
	grid := make([][]gridCell, 0, len(rows))
	carry := map[int]*carried{}

	for _, row := range rows {
		line := []gridCell{}
		col := 0
		takeCarried := func() {
			for {
				c, ok := carry[col]
				if !ok {
					return
				}
				line = append(line, c.cell)
				c.left--
				if c.left == 0 {
					delete(carry, col)
				}
				col++
			}
		}

		row.ChildrenFiltered("th,td").Each(func(_ int, cell *goquery.Selection) {
			takeCarried()
			gc := gridCell{text: cellText(cell), header: goquery.NodeName(cell) == "th"}
			rowspan := spanAttr(cell, "rowspan")
			for i := 0; i < spanAttr(cell, "colspan"); i++ {
				line = append(line, gc)
				if rowspan > 1 {
					carry[col] = &carried{cell: gc, left: rowspan - 1}
				}
				col++
			}
		})

		maxCol := -1
		for c := range carry {
			if c > maxCol {
				maxCol = c
			}
		}
		for ; col <= maxCol; col++ {
			if c, ok := carry[col]; ok {
				line = append(line, c.cell)
				c.left--
				if c.left == 0 {
					delete(carry, col)
				}
				continue
			}
			line = append(line, gridCell{})
		}

		grid = append(grid, line)
	}
	return grid
}

// fromGrid treats the leading all-<th> rows as the header. Stacked header rows are
// flattened to the last non-empty label per column.
func fromGrid(grid [][]gridCell) Table {
	width := 0
	for _, line := range grid {
		if len(line) > width {
			width = len(line)
		}
	}

	headerRows := 0
	for _, line := range grid {
		if !allHeader(line) {
			break
		}
		headerRows++
	}

	t := Table{Headers: make([]string, width)}
	for _, line := range grid[:headerRows] {
		for i, c := range line {
			if label := util.Normalize(c.text); label != "" {
				t.Headers[i] = label
			}
		}
	}

	for _, line := range grid[headerRows:] {
		cells := make([]string, width)
		for i, c := range line {
			cells[i] = c.text
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func allHeader(line []gridCell) bool {
	if len(line) == 0 {
		return false
	}
	for _, c := range line {
		if !c.header {
			return false
		}
	}
	return true
}

func cellText(cell *goquery.Selection) string {
	clone := cell.Clone()
	clone.Find("style,script").Remove()
	return strings.TrimSpace(clone.Text())
}

func spanAttr(cell *goquery.Selection, name string) int {
	raw, ok := cell.Attr(name)
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	if n > 1000 {
		return 1000
	}
	return n
}
