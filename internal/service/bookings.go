package service

import (
	"context"
	"fmt"
	"log/slog"

	"reschedule-service/api"
	"reschedule-service/internal/events"
	"reschedule-service/internal/models"
	"reschedule-service/pkg/response"
)

// Bookings

func (s *Service) GetBooking(ctx context.Context, actor models.Actor, id string) (*api.BookingResponse, error) {
	const op = "service.GetBooking"

	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := participantOf(booking, actor); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toBookingResponse(booking), nil
}

// CancelBooking cancels an active booking and, in the same transaction,
// every PENDING reschedule request attached to it.
func (s *Service) CancelBooking(ctx context.Context, actor models.Actor, id string) (*api.BookingResponse, error) {
	const op = "service.CancelBooking"

	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := participantOf(booking, actor); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.clock.Now()
	var cancelled []string

	err = s.store.InTx(ctx, func(ctx context.Context) error {
		ok, err := s.store.UpdateBookingStatus(ctx, id,
			[]models.BookingStatus{models.BookingPending, models.BookingConfirmed},
			models.BookingCancelled,
		)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("booking is not active: %w", response.ErrInvalidState)
		}

		cancelled, err = s.store.CancelPendingRequests(ctx, id, now)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	booking.Status = models.BookingCancelled

	s.log.Info("Booking cancelled",
		slog.String("booking_id", id),
		slog.Int("requests_cancelled", len(cancelled)),
	)

	s.publish(ctx, events.Event{
		Type:       events.BookingCancelled,
		BookingID:  id,
		Status:     string(models.BookingCancelled),
		ActorID:    actor.UserID,
		ActorRole:  string(actor.Role),
		OccurredAt: now,
	})
	for _, reqID := range cancelled {
		s.publish(ctx, events.Event{
			Type:       events.RescheduleCancelled,
			BookingID:  id,
			RequestID:  reqID,
			Status:     string(models.RequestCancelled),
			ActorID:    actor.UserID,
			ActorRole:  string(actor.Role),
			OccurredAt: now,
		})
	}

	return toBookingResponse(booking), nil
}
