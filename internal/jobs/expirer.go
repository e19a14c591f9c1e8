// Package jobs runs periodic maintenance against the service.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"reschedule-service/pkg/sl"

	"github.com/robfig/cron/v3"
)

type StaleRequestExpirer interface {
	ExpireStaleRequests(ctx context.Context) (int, error)
}

// Expirer cancels PENDING reschedule requests whose proposed time has passed.
type Expirer struct {
	cron    *cron.Cron
	target  StaleRequestExpirer
	log     *slog.Logger
	timeout time.Duration
}

// NewExpirer registers the sweep on schedule, a standard five-field cron
// expression or a descriptor such as "@every 1m".
func NewExpirer(target StaleRequestExpirer, schedule string, log *slog.Logger) (*Expirer, error) {
	const op = "jobs.NewExpirer"

	e := &Expirer{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		target:  target,
		log:     log.With(slog.String("job", "expire_stale_requests")),
		timeout: 30 * time.Second,
	}

	if _, err := e.cron.AddFunc(schedule, func() { e.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("%s: schedule %q: %w", op, schedule, err)
	}

	return e, nil
}

// RunOnce performs a single sweep and returns how many requests it expired.
func (e *Expirer) RunOnce(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	n, err := e.target.ExpireStaleRequests(ctx)
	if err != nil {
		e.log.Error("sweep failed", sl.Err(err))
		return n
	}

	e.log.Debug("sweep finished", slog.Int("expired", n))
	return n
}

func (e *Expirer) Start() {
	e.cron.Start()
}

// Stop waits for a running sweep or until ctx is done.
func (e *Expirer) Stop(ctx context.Context) {
	done := e.cron.Stop()

	select {
	case <-done.Done():
	case <-ctx.Done():
		e.log.Warn("stop timed out waiting for sweep")
	}
}
