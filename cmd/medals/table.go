package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"medals/internal"
	"medals/internal/storage"
	"medals/internal/util"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

func renderRows(w io.Writer, payload internal.MedalPayload) {
	t := newTable(w)
	t.SetTitle("%s (revision %s)", payload.LastUpdatedUTC, orDash(util.Deref(payload.SourceRevisionID)))
	t.AppendHeader(table.Row{"#", "Country", "NOC", "ISO2", "Gold", "Silver", "Bronze", "Total", "EU"})
	for _, r := range payload.Rows {
		eu := ""
		if r.IsEU {
			eu = "*"
		}
		t.AppendRow(table.Row{r.Rank, r.CountryName, r.NOC, orDash(util.Deref(r.ISO2)), r.Gold, r.Silver, r.Bronze, r.Total, eu})
	}
	t.Render()
}

func renderRuns(w io.Writer, runs []internal.RunRecord) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Trace", "Started", "Finished", "Revision", "Rows", "Unmapped"})
	for _, run := range runs {
		t.AppendRow(table.Row{run.ID, run.TraceID, run.StartedAt, run.FinishedAt, orDash(util.Deref(run.RevisionID)), strconv.Itoa(run.RowCount), strconv.Itoa(run.UnmappedCount)})
	}
	t.Render()
}

func showRun(w io.Writer, db *storage.DB, id int) error {
	run, err := db.GetRun(id)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run not found: id=%d", id)
	}
	rows, err := db.RunRows(id)
	if err != nil {
		return err
	}
	renderRows(w, internal.MedalPayload{
		LastUpdatedUTC:   run.FinishedAt,
		SourceRevisionID: run.RevisionID,
		Rows:             rows,
	})
	return nil
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
