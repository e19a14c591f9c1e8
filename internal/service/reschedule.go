package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"reschedule-service/api"
	"reschedule-service/internal/events"
	"reschedule-service/internal/models"
	"reschedule-service/pkg/response"
	"reschedule-service/pkg/sl"

	"github.com/google/uuid"
)

// Propose opens a PENDING request to move the booking to proposedTime.
func (s *Service) Propose(ctx context.Context, actor models.Actor, bookingID string, proposedTime time.Time) (*api.RescheduleRequestResponse, error) {
	const op = "service.Propose"

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p, err := participantOf(booking, actor)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !booking.Status.Active() {
		return nil, fmt.Errorf("%s: booking is %s: %w", op, booking.Status, response.ErrInvalidState)
	}

	now := s.clock.Now()
	if !proposedTime.After(now) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrInvalidTime)
	}

	ok, err := s.slotAvailable(ctx, booking, proposedTime)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, response.ErrSlotNotAvailable)
	}

	lockKey := fmt.Sprintf("booking:%s:reschedule", bookingID)

	token, locked, err := s.locker.Lock(ctx, lockKey, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: lock error: %w", op, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: proposal in progress: %w", op, response.ErrConflict)
	}
	defer func() {
		if err := s.locker.Unlock(context.WithoutCancel(ctx), lockKey, token); err != nil {
			s.log.Warn("Failed to release lock", slog.String("key", lockKey), sl.Err(err))
		}
	}()

	req := &models.RescheduleRequest{
		ID:            uuid.NewString(),
		BookingID:     booking.ID,
		ProposedTime:  proposedTime.UTC(),
		Status:        models.RequestPending,
		RequestedBy:   p.UserID,
		RequesterRole: p.Kind,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// The booking row is locked before the insert so a concurrent
	// CancelBooking either sees this request or wins and rejects it.
	err = s.store.InTx(ctx, func(ctx context.Context) error {
		active, err := s.store.LockActiveBooking(ctx, booking.ID)
		if err != nil {
			return err
		}
		if !active {
			return fmt.Errorf("booking is no longer active: %w", response.ErrInvalidState)
		}

		return s.store.InsertRescheduleRequest(ctx, req)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("Reschedule proposed",
		slog.String("request_id", req.ID),
		slog.String("booking_id", booking.ID),
		slog.String("requested_by", string(p.Kind)),
	)
	s.publish(ctx, requestEvent(events.RescheduleProposed, req, &actor, now))

	return toRequestResponse(req), nil
}

func (s *Service) Accept(ctx context.Context, actor models.Actor, requestID string) (*api.RescheduleRequestResponse, error) {
	return s.transition(ctx, "service.Accept", actor, requestID, models.RequestAccepted)
}

func (s *Service) Decline(ctx context.Context, actor models.Actor, requestID string) (*api.RescheduleRequestResponse, error) {
	return s.transition(ctx, "service.Decline", actor, requestID, models.RequestDeclined)
}

func (s *Service) Cancel(ctx context.Context, actor models.Actor, requestID string) (*api.RescheduleRequestResponse, error) {
	return s.transition(ctx, "service.Cancel", actor, requestID, models.RequestCancelled)
}

var transitionEvents = map[models.RequestStatus]string{
	models.RequestAccepted:  events.RescheduleAccepted,
	models.RequestDeclined:  events.RescheduleDeclined,
	models.RequestCancelled: events.RescheduleCancelled,
}

// transition moves a PENDING request to next with a conditional update, so
// the loser of two concurrent transitions gets ErrInvalidState.
func (s *Service) transition(ctx context.Context, op string, actor models.Actor, requestID string, next models.RequestStatus) (*api.RescheduleRequestResponse, error) {
	req, err := s.store.GetRescheduleRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	booking, err := s.store.GetBooking(ctx, req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p, err := participantOf(booking, actor)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if req.Status.Terminal() {
		return nil, fmt.Errorf("%s: request is %s: %w", op, req.Status, response.ErrInvalidState)
	}

	if !p.mayApply(req, next) {
		return nil, fmt.Errorf("%s: %s may not move request to %s: %w", op, p.Kind, next, response.ErrUnauthorized)
	}

	now := s.clock.Now()
	if next == models.RequestAccepted {
		if !booking.Status.Active() {
			return nil, fmt.Errorf("%s: booking is %s: %w", op, booking.Status, response.ErrInvalidState)
		}
		if !req.ProposedTime.After(now) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrInvalidTime)
		}
	}

	// Accept touches the booking row before the request row, the same order
	// CancelBooking uses.
	err = s.store.InTx(ctx, func(ctx context.Context) error {
		if next == models.RequestAccepted {
			moved, err := s.store.UpdateBookingScheduledAt(ctx, booking.ID, req.ProposedTime)
			if err != nil {
				return err
			}
			if !moved {
				return fmt.Errorf("booking is no longer active: %w", response.ErrInvalidState)
			}
		}

		ok, err := s.store.UpdateRescheduleRequestStatus(ctx, req.ID, models.RequestPending, next, now)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("request changed concurrently: %w", response.ErrInvalidState)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req.Status = next
	req.UpdatedAt = now

	s.log.Info("Reschedule request updated",
		slog.String("request_id", req.ID),
		slog.String("booking_id", req.BookingID),
		slog.String("status", string(next)),
	)
	s.publish(ctx, requestEvent(transitionEvents[next], req, &actor, now))

	return toRequestResponse(req), nil
}

func (s *Service) ListRequests(ctx context.Context, actor models.Actor, bookingID string) ([]*api.RescheduleRequestResponse, error) {
	const op = "service.ListRequests"

	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := participantOf(booking, actor); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	requests, err := s.store.ListRescheduleRequests(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.RescheduleRequestResponse, 0, len(requests))
	for i := range requests {
		result = append(result, toRequestResponse(&requests[i]))
	}

	return result, nil
}

// ExpireStaleRequests cancels PENDING requests whose proposed time has
// passed. It returns how many were expired.
func (s *Service) ExpireStaleRequests(ctx context.Context) (int, error) {
	const op = "service.ExpireStaleRequests"

	now := s.clock.Now()

	stale, err := s.store.ListStalePendingRequests(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	expired := 0
	for i := range stale {
		req := &stale[i]

		ok, err := s.store.UpdateRescheduleRequestStatus(ctx, req.ID, models.RequestPending, models.RequestCancelled, now)
		if err != nil {
			return expired, fmt.Errorf("%s: %w", op, err)
		}
		if !ok {
			continue
		}

		expired++
		req.Status = models.RequestCancelled
		req.UpdatedAt = now
		s.publish(ctx, requestEvent(events.RescheduleExpired, req, nil, now))
	}

	if expired > 0 {
		s.log.Info("Stale reschedule requests expired", slog.Int("count", expired))
	}

	return expired, nil
}
