package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"medals/internal/config"
	"medals/internal/fetch"
	"medals/internal/listener"
	"medals/internal/logger"
	"medals/internal/metrics"
	"medals/internal/pipeline"
	"medals/internal/storage"
	"medals/internal/util"
)

var rootCmd = &cobra.Command{
	Use:           "medals",
	Short:         "medals keeps an EU-aggregated Olympic medal table in sync with Wikipedia.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	refreshCmd.Flags().Bool("force", false, "ignore ETag/Last-Modified and rebuild the outputs")
	historyCmd.Flags().Int("limit", 20, "number of runs to list")
	historyCmd.Flags().Int("run", 0, "print the ranked rows stored for one run id")
	exportCmd.Flags().String("out", "", "output xlsx path")
	_ = exportCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(refreshCmd, watchCmd, checkCmd, showCmd, historyCmd, exportCmd)
}

func main() {
	must(rootCmd.ExecuteContext(context.Background()))
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch the medal table and rewrite the CSV/JSON outputs when the source changed.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		force, _ := cmd.Flags().GetBool("force")
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		svc, closeDB, err := newRefreshService(cfg, log)
		if err != nil {
			return err
		}
		defer closeDB()

		res, err := svc.Run(cmd.Context(), force)
		if err != nil {
			return err
		}
		if !res.Changed {
			fmt.Println("No changes detected.")
			return nil
		}
		fmt.Printf("Medal table updated: %d rows, revision %s\n", len(res.Payload.Rows), orDash(util.Deref(res.Payload.SourceRevisionID)))
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Refresh on every MEDALS_WATCH_INTERVAL_SEC until interrupted.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		svc, closeDB, err := newRefreshService(cfg, log)
		if err != nil {
			return err
		}
		defer closeDB()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		log.Info("watching source", zap.String("url", cfg.SourceURL), zap.Duration("interval", cfg.WatchInterval()))
		return listener.NewService(svc, cfg.WatchInterval(), log).Run(ctx)
	},
}

func newRefreshService(cfg config.Config, log *zap.Logger) (*pipeline.RefreshService, func(), error) {
	var db *storage.DB
	closeDB := func() {}
	if cfg.DBPath != "" {
		var err error
		db, err = storage.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		closeDB = func() { _ = db.Close() }
	}
	var rec *metrics.Recorder
	if cfg.MetricsPath != "" {
		rec = metrics.NewRecorder()
	}

	client := fetch.NewClient(cfg.UserAgent, cfg.HTTPTimeout(), cfg.RateLimitRPS)
	svc := pipeline.NewRefreshService(
		cfg,
		client,
		storage.NewMetadataStore(cfg.MetaJSON, cfg.SourceURL),
		db,
		rec,
		pipeline.NewCountryResolver(),
		log,
	)
	return svc, closeDB, nil
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report whether the source page changed since the last refresh.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		meta, err := storage.NewMetadataStore(cfg.MetaJSON, cfg.SourceURL).Load()
		if err != nil {
			return err
		}
		client := fetch.NewClient(cfg.UserAgent, cfg.CheckTimeout(), cfg.RateLimitRPS)
		changed, err := client.CheckChanged(cmd.Context(), cfg.SourceURL, meta)
		if err != nil {
			return err
		}
		if err := fetch.WriteCIOutput(cfg.GitHubOutput, changed); err != nil {
			return err
		}
		log.Debug("change check", zap.Bool("changed", changed), zap.String("url", cfg.SourceURL))
		fmt.Printf("changed=%t\n", changed)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current medal table.",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		payload, err := pipeline.ReadPayload(cfg.OutputJSON)
		if err != nil {
			return err
		}
		renderRows(os.Stdout, payload)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent refreshes, or the rows of one with --run.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		runID, _ := cmd.Flags().GetInt("run")
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := cfg.Require("MEDALS_DB_PATH", cfg.DBPath); err != nil {
			return err
		}
		db, err := storage.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		if runID > 0 {
			return showRun(os.Stdout, db, runID)
		}
		runs, err := db.ListRuns(limit)
		if err != nil {
			return err
		}
		renderRuns(os.Stdout, runs)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export:xlsx",
	Short: "Write the current medal table to an xlsx workbook.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		out, _ := cmd.Flags().GetString("out")
		if strings.TrimSpace(out) == "" {
			return fmt.Errorf("--out is required")
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		payload, err := pipeline.ReadPayload(cfg.OutputJSON)
		if err != nil {
			return err
		}
		if len(payload.Rows) == 0 {
			return fmt.Errorf("no rows in %s", cfg.OutputJSON)
		}
		if err := pipeline.WriteXLSX(payload.Rows, out); err != nil {
			return err
		}
		fmt.Printf("exported %d rows to %s\n", len(payload.Rows), out)
		return nil
	},
}

func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := logger.New(cfg.Debug)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}

func must(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
