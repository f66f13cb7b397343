package pipeline

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"medals/internal"
	"medals/internal/config"
	"medals/internal/fetch"
	"medals/internal/htmltable"
	"medals/internal/metrics"
	"medals/internal/registry"
	"medals/internal/storage"
	"medals/internal/util"
)

const timestampLayout = "2006-01-02T15:04:05Z"

// RefreshService runs one fetch, reconcile, rank and write cycle.
type RefreshService struct {
	cfg     config.Config
	fetcher registry.PageFetcher
	meta    *storage.MetadataStore
	db      *storage.DB
	metrics *metrics.Recorder
	iso2    ISO2Resolver
	log     *zap.Logger
	now     func() time.Time
}

// NewRefreshService wires a run. db and rec may be nil to disable run history and metrics.
func NewRefreshService(cfg config.Config, fetcher registry.PageFetcher, meta *storage.MetadataStore, db *storage.DB, rec *metrics.Recorder, iso2 ISO2Resolver, log *zap.Logger) *RefreshService {
	return &RefreshService{
		cfg:     cfg,
		fetcher: fetcher,
		meta:    meta,
		db:      db,
		metrics: rec,
		iso2:    iso2,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

type RefreshResult struct {
	Changed bool
	RunID   int
	Payload internal.MedalPayload
}

func (s *RefreshService) Run(ctx context.Context, force bool) (RefreshResult, error) {
	start := s.now()
	trace := traceID()
	log := s.log.With(zap.String("trace_id", trace))

	res, err := s.run(ctx, log, trace, start, force)
	took := s.now().Sub(start)

	var unmapped *internal.UnmappedError
	switch {
	case errors.As(err, &unmapped):
		s.observe(func(r *metrics.Recorder) { r.ObserveUnmapped(len(unmapped.Labels), took) })
	case err != nil:
		s.observe(func(r *metrics.Recorder) { r.ObserveOutcome(metrics.OutcomeFailed, took) })
	case !res.Changed:
		s.observe(func(r *metrics.Recorder) { r.ObserveOutcome(metrics.OutcomeUnchanged, took) })
	default:
		s.observe(func(r *metrics.Recorder) { r.ObserveSuccess(len(res.Payload.Rows), start, took) })
	}
	if err != nil {
		log.Error("refresh failed", zap.Error(err), zap.Duration("took", took))
	}
	return res, err
}

func (s *RefreshService) run(ctx context.Context, log *zap.Logger, trace string, start time.Time, force bool) (RefreshResult, error) {
	meta, err := s.meta.Load()
	if err != nil {
		return RefreshResult{}, fmt.Errorf("load metadata: %w", err)
	}

	page, err := s.fetcher.Get(ctx, s.cfg.SourceURL)
	if err != nil {
		return RefreshResult{}, err
	}
	if !force && !fetch.Changed(meta, page.ETag, page.LastModified) {
		log.Info("no changes detected", zap.String("etag", page.ETag), zap.String("last_modified", page.LastModified))
		return RefreshResult{}, nil
	}

	previous := meta
	meta.LastETag = optional(page.ETag)
	meta.LastModified = optional(page.LastModified)
	if page.ETag != "" {
		meta.LastRevisionID = util.StringPtr(page.ETag)
	}
	meta.LastUpdateUTC = util.StringPtr(start.Format(timestampLayout))
	meta.SourceURL = s.cfg.SourceURL

	reg, err := registry.NewLoader(s.cfg.ReferenceCSV, s.cfg.ReferenceURL, s.fetcher, log).Load(ctx)
	if err != nil {
		return RefreshResult{}, err
	}

	tables, err := htmltable.Parse(bytes.NewReader(page.Body))
	if err != nil {
		return RefreshResult{}, fmt.Errorf("parse source page: %w", err)
	}
	table, err := PickMedalTable(tables)
	if err != nil {
		return RefreshResult{}, err
	}
	extracted := ExtractRows(table)
	log.Debug("medal table extracted", zap.Int("tables", len(tables)), zap.Int("rows", len(extracted)))

	rec := NewReconciler(reg, s.iso2, s.cfg.FlagURLTemplate).Reconcile(extracted)
	if len(rec.Duplicates) > 0 {
		log.Warn("duplicate NOC rows dropped", zap.Strings("labels", rec.Duplicates))
	}
	if len(rec.Unmapped) > 0 {
		// Keep the previous change markers so the next run retries this revision.
		previous.UnmappedCountries = rec.Unmapped
		previous.SourceURL = s.cfg.SourceURL
		if err := s.meta.Save(previous); err != nil {
			log.Error("save metadata failed", zap.Error(err))
		}
		if s.db != nil {
			if _, err := s.db.InsertRun(internal.RunRecord{
				TraceID:       trace,
				StartedAt:     start.Format(timestampLayout),
				FinishedAt:    s.now().Format(timestampLayout),
				RevisionID:    optional(page.ETag),
				UnmappedCount: len(rec.Unmapped),
			}, nil); err != nil {
				log.Error("record run failed", zap.Error(err))
			}
		}
		return RefreshResult{}, &internal.UnmappedError{Labels: rec.Unmapped}
	}

	members, err := LoadMembers(s.cfg.MembersJSON)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("load members: %w", err)
	}
	agg := Aggregate{NOC: s.cfg.AggregateNOC, Name: s.cfg.AggregateName, ISO2: s.cfg.AggregateISO2}
	if agg.ISO2 != "" {
		agg.FlagURL = fmt.Sprintf(s.cfg.FlagURLTemplate, strings.ToLower(agg.ISO2))
	}
	rows := ComputeRank(AddAggregateRow(rec.Rows, members, agg))

	payload := internal.MedalPayload{
		LastUpdatedUTC:       s.now().Format(timestampLayout),
		SourceURL:            s.cfg.SourceURL,
		SourceRevisionID:     meta.LastRevisionID,
		SourceRetrievedAtUTC: meta.LastUpdateUTC,
		Rows:                 rows,
	}
	if err := s.write(payload); err != nil {
		return RefreshResult{}, err
	}

	// History goes in before the metadata so a failed insert leaves the
	// revision unrecorded and the next run retries it.
	result := RefreshResult{Changed: true, Payload: payload}
	if s.db != nil {
		id, err := s.db.InsertRun(internal.RunRecord{
			TraceID:    trace,
			StartedAt:  start.Format(timestampLayout),
			FinishedAt: s.now().Format(timestampLayout),
			RevisionID: meta.LastRevisionID,
			RowCount:   len(rows),
		}, rows)
		if err != nil {
			return RefreshResult{}, fmt.Errorf("record run: %w", err)
		}
		result.RunID = id
	}

	meta.UnmappedCountries = []string{}
	if err := s.meta.Save(meta); err != nil {
		return RefreshResult{}, fmt.Errorf("save metadata: %w", err)
	}

	log.Info("medal table updated",
		zap.Int("rows", len(rows)),
		zap.Int("members", len(members)),
		zap.String("revision", util.Deref(meta.LastRevisionID)),
	)
	return result, nil
}

type sink struct {
	name  string
	path  string
	write func(path string) error
}

// write stages every output next to its target and only renames once all of
// them were written, so a failed sink leaves the previous outputs in place.
func (s *RefreshService) write(payload internal.MedalPayload) error {
	sinks := []sink{
		{name: "csv", path: s.cfg.OutputCSV, write: func(p string) error { return WriteCSV(payload.Rows, p) }},
		{name: "json", path: s.cfg.OutputJSON, write: func(p string) error { return WriteJSON(payload, p) }},
	}
	if s.cfg.OutputXLSX != "" {
		sinks = append(sinks, sink{name: "xlsx", path: s.cfg.OutputXLSX, write: func(p string) error { return WriteXLSX(payload.Rows, p) }})
	}

	staged := make([]string, 0, len(sinks))
	discard := func() {
		for _, p := range staged {
			_ = os.Remove(p)
		}
	}
	for _, out := range sinks {
		tmp := stagingPath(out.path)
		if err := out.write(tmp); err != nil {
			_ = os.Remove(tmp)
			discard()
			return fmt.Errorf("write %s: %w", out.name, err)
		}
		staged = append(staged, tmp)
	}
	for i, out := range sinks {
		if err := os.Rename(staged[i], out.path); err != nil {
			discard()
			return fmt.Errorf("replace %s: %w", out.name, err)
		}
	}
	return nil
}

// stagingPath keeps the extension, which the xlsx writer checks.
func stagingPath(path string) string {
	return filepath.Join(filepath.Dir(path), ".tmp-"+filepath.Base(path))
}

func (s *RefreshService) observe(fn func(r *metrics.Recorder)) {
	if s.metrics == nil {
		return
	}
	fn(s.metrics)
	if err := s.metrics.WriteFile(s.cfg.MetricsPath); err != nil {
		s.log.Warn("write metrics failed", zap.Error(err))
	}
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return util.StringPtr(v)
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
