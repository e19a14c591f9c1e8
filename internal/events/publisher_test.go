package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"reschedule-service/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPublisher struct {
	calls int
	err   error
}

func (p *failingPublisher) Publish(context.Context, string, []byte) error {
	p.calls++
	return p.err
}

func (p *failingPublisher) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBreakerPublisher_OpensAfterThreshold(t *testing.T) {
	inner := &failingPublisher{err: errors.New("connection reset")}
	pub := events.NewBreakerPublisher(inner, events.BreakerSettings{
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		Interval:         time.Minute,
	}, discardLogger())

	ctx := context.Background()
	require.Error(t, pub.Publish(ctx, events.RescheduleProposed, nil))
	require.Error(t, pub.Publish(ctx, events.RescheduleProposed, nil))

	err := pub.Publish(ctx, events.RescheduleProposed, nil)
	assert.ErrorIs(t, err, events.ErrBrokerUnavailable)
	assert.Equal(t, 2, inner.calls)
}

func TestBreakerPublisher_PassesThroughSuccess(t *testing.T) {
	inner := &failingPublisher{}
	pub := events.NewBreakerPublisher(inner, events.DefaultBreakerSettings(), discardLogger())

	require.NoError(t, pub.Publish(context.Background(), events.RescheduleAccepted, []byte("{}")))
	assert.Equal(t, 1, inner.calls)
}

func TestNoopPublisher(t *testing.T) {
	pub := events.NewNoopPublisher(discardLogger())

	assert.NoError(t, pub.Publish(context.Background(), events.BookingCancelled, []byte("{}")))
	assert.NoError(t, pub.Close())
}

func TestEvent_Encode(t *testing.T) {
	proposed := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	e := events.Event{
		Type:         events.RescheduleProposed,
		BookingID:    "b-1",
		RequestID:    "r-1",
		Status:       "PENDING",
		ProposedTime: &proposed,
		OccurredAt:   proposed.Add(-time.Hour),
	}

	b, err := e.Encode()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "reschedule.proposed", decoded["type"])
	assert.Equal(t, "2026-03-04T10:00:00Z", decoded["proposed_time"])
	assert.NotContains(t, decoded, "actor_id")
}
