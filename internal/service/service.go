package service

import (
	"context"
	"log/slog"
	"time"

	"reschedule-service/internal/events"
	"reschedule-service/internal/lock"
	"reschedule-service/internal/models"
	"reschedule-service/pkg/sl"
)

type Service struct {
	store     Store
	locker    lock.Locker
	publisher events.Publisher
	log       *slog.Logger
	clock     Clock
	lockTTL   time.Duration
}

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

type Option func(*Service)

func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithLockTTL(ttl time.Duration) Option {
	return func(s *Service) { s.lockTTL = ttl }
}

func NewService(store Store, locker lock.Locker, publisher events.Publisher, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		locker:    locker,
		publisher: publisher,
		log:       log,
		clock:     ClockFunc(time.Now),
		lockTTL:   10 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Store is the persistence collaborator. Lookups return response.ErrNotFound
// for unknown ids; InsertRescheduleRequest returns response.ErrConflict when
// the booking already has a PENDING request.
type Store interface {
	// InTx runs fn in a transaction carried by the context passed to fn.
	InTx(ctx context.Context, fn func(ctx context.Context) error) error

	// Availability
	GetAvailabilityRules(ctx context.Context, tutorID string) ([]models.AvailabilityRule, error)
	ReplaceAvailabilityRules(ctx context.Context, tutorID string, rules []models.AvailabilityRule) error

	// Time off
	CreateTimeOff(ctx context.Context, off *models.TimeOff) error
	GetTimeOff(ctx context.Context, id string) (*models.TimeOff, error)
	ListTimeOff(ctx context.Context, tutorID string, from, to time.Time) ([]models.TimeOff, error)
	DeleteTimeOff(ctx context.Context, id string) error

	// Bookings
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	// ListBookings returns pending and confirmed bookings overlapping [from, to).
	ListBookings(ctx context.Context, tutorID string, from, to time.Time) ([]models.Booking, error)
	// LockActiveBooking row-locks the booking inside a transaction and
	// reports false when it is no longer active.
	LockActiveBooking(ctx context.Context, id string) (bool, error)
	// UpdateBookingScheduledAt moves an active booking; false when inactive.
	UpdateBookingScheduledAt(ctx context.Context, id string, scheduledAt time.Time) (bool, error)
	UpdateBookingStatus(ctx context.Context, id string, expected []models.BookingStatus, next models.BookingStatus) (bool, error)

	// Reschedule requests
	InsertRescheduleRequest(ctx context.Context, req *models.RescheduleRequest) error
	GetRescheduleRequest(ctx context.Context, id string) (*models.RescheduleRequest, error)
	// ListRescheduleRequests orders by created_at descending.
	ListRescheduleRequests(ctx context.Context, bookingID string) ([]models.RescheduleRequest, error)
	UpdateRescheduleRequestStatus(ctx context.Context, id string, expected, next models.RequestStatus, at time.Time) (bool, error)
	CancelPendingRequests(ctx context.Context, bookingID string, at time.Time) ([]string, error)
	ListStalePendingRequests(ctx context.Context, now time.Time) ([]models.RescheduleRequest, error)
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	payload, err := e.Encode()
	if err != nil {
		s.log.Error("Failed to encode event", slog.String("type", e.Type), sl.Err(err))
		return
	}

	if err := s.publisher.Publish(ctx, e.Type, payload); err != nil {
		s.log.Warn("Failed to publish event",
			slog.String("type", e.Type),
			slog.String("booking_id", e.BookingID),
			sl.Err(err),
		)
	}
}

func requestEvent(eventType string, req *models.RescheduleRequest, actor *models.Actor, at time.Time) events.Event {
	proposed := req.ProposedTime
	e := events.Event{
		Type:         eventType,
		BookingID:    req.BookingID,
		RequestID:    req.ID,
		Status:       string(req.Status),
		ProposedTime: &proposed,
		OccurredAt:   at,
	}
	if actor != nil {
		e.ActorID = actor.UserID
		e.ActorRole = string(actor.Role)
	}
	return e
}
