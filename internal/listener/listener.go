// Package listener polls the source page and refreshes the outputs whenever it changes.
package listener

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"medals/internal"
	"medals/internal/pipeline"
)

type Refresher interface {
	Run(ctx context.Context, force bool) (pipeline.RefreshResult, error)
}

type Service struct {
	refresher Refresher
	interval  time.Duration
	log       *zap.Logger
}

func NewService(refresher Refresher, interval time.Duration, log *zap.Logger) *Service {
	return &Service{refresher: refresher, interval: interval, log: log}
}

// Run refreshes once per interval until ctx is cancelled. Cycle errors are
// logged and do not stop the loop.
func (s *Service) Run(ctx context.Context) error {
	for {
		s.runCycle(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.interval):
		}
	}
}

func (s *Service) runCycle(ctx context.Context) {
	res, err := s.refresher.Run(ctx, false)
	var unmapped *internal.UnmappedError
	switch {
	case errors.As(err, &unmapped):
		s.log.Warn("watch cycle blocked on unmapped countries", zap.Strings("labels", unmapped.Labels))
	case err != nil:
		s.log.Error("watch cycle failed", zap.Error(err))
	case res.Changed:
		s.log.Info("watch cycle refreshed", zap.Int("rows", len(res.Payload.Rows)), zap.Int("run_id", res.RunID))
	default:
		s.log.Debug("watch cycle unchanged")
	}
}
