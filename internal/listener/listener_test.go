package listener

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"medals/internal"
	"medals/internal/pipeline"
)

type countingRefresher struct {
	calls  atomic.Int32
	cancel context.CancelFunc
	stopAt int32
	errs   []error
}

func (r *countingRefresher) Run(_ context.Context, force bool) (pipeline.RefreshResult, error) {
	n := r.calls.Add(1)
	if force {
		return pipeline.RefreshResult{}, errors.New("watch must not force")
	}
	if n >= r.stopAt {
		r.cancel()
	}
	if int(n) <= len(r.errs) {
		return pipeline.RefreshResult{}, r.errs[n-1]
	}
	return pipeline.RefreshResult{Changed: true}, nil
}

func TestServiceKeepsPollingAfterErrors(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r := &countingRefresher{
		cancel: cancel,
		stopAt: 3,
		errs: []error{
			&internal.UnmappedError{Labels: []string{"Atlantis"}},
			internal.ErrFetchFailure,
		},
	}
	svc := NewService(r, time.Millisecond, zap.NewNop())

	require.NoError(t, svc.Run(ctx))
	require.Equal(t, int32(3), r.calls.Load())
	require.ErrorIs(t, ctx.Err(), context.Canceled)
}
