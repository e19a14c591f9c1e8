package jobs_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"reschedule-service/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingTarget struct {
	calls atomic.Int32
	n     int
	err   error
}

func (c *countingTarget) ExpireStaleRequests(ctx context.Context) (int, error) {
	c.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("sweep ran without deadline")
	}
	return c.n, c.err
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewExpirer_InvalidSchedule(t *testing.T) {
	_, err := jobs.NewExpirer(&countingTarget{}, "every tuesday-ish", discard())
	require.Error(t, err)
}

func TestRunOnce(t *testing.T) {
	target := &countingTarget{n: 3}

	e, err := jobs.NewExpirer(target, "@every 1h", discard())
	require.NoError(t, err)

	assert.Equal(t, 3, e.RunOnce(context.Background()))
	assert.EqualValues(t, 1, target.calls.Load())
}

func TestRunOnce_ErrorIsSwallowed(t *testing.T) {
	target := &countingTarget{err: errors.New("db down")}

	e, err := jobs.NewExpirer(target, "@every 1h", discard())
	require.NoError(t, err)

	assert.Zero(t, e.RunOnce(context.Background()))
}

func TestStartStop(t *testing.T) {
	target := &countingTarget{}

	e, err := jobs.NewExpirer(target, "@every 1s", discard())
	require.NoError(t, err)

	e.Start()

	require.Eventually(t, func() bool { return target.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	e.Stop(ctx)
}
