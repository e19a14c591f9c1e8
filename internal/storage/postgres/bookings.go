package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"reschedule-service/internal/models"

	"github.com/lib/pq"
)

// #### bookings ####

const bookingColumns = `id, class_id, tutor_id, student_id, scheduled_at, duration_minutes, status`

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(row scanner) (*models.Booking, error) {
	var b models.Booking
	var status string

	if err := row.Scan(&b.ID, &b.ClassID, &b.TutorID, &b.StudentID, &b.ScheduledAt, &b.DurationMinutes, &status); err != nil {
		return nil, err
	}

	b.Status = models.BookingStatus(status)
	b.ScheduledAt = b.ScheduledAt.UTC()

	return &b, nil
}

func (s *Storage) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	const op = "storage.postgres.GetBooking"

	row := s.conn(ctx).QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)

	b, err := scanBooking(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return b, nil
}

// ListBookings returns the tutor's pending and confirmed bookings that
// overlap [from, to).
func (s *Storage) ListBookings(ctx context.Context, tutorID string, from, to time.Time) ([]models.Booking, error) {
	const op = "storage.postgres.ListBookings"

	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE tutor_id = $1
			AND status IN ('pending', 'confirmed')
			AND scheduled_at < $3
			AND scheduled_at + make_interval(mins => duration_minutes) > $2
		ORDER BY scheduled_at`, tutorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		bookings = append(bookings, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return bookings, nil
}

// activeStatuses are the booking states that may still be rescheduled.
var activeStatuses = pq.Array([]string{string(models.BookingPending), string(models.BookingConfirmed)})

// LockActiveBooking takes a row lock on the booking for the rest of the
// transaction. It reports false when the booking is no longer active.
func (s *Storage) LockActiveBooking(ctx context.Context, id string) (bool, error) {
	const op = "storage.postgres.LockActiveBooking"

	var one int
	err := s.conn(ctx).QueryRowContext(ctx,
		`SELECT 1 FROM bookings WHERE id = $1 AND status = ANY($2) FOR UPDATE`,
		id, activeStatuses,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return true, nil
}

// UpdateBookingScheduledAt moves an active booking. It reports false when
// the booking is no longer active.
func (s *Storage) UpdateBookingScheduledAt(ctx context.Context, id string, scheduledAt time.Time) (bool, error) {
	const op = "storage.postgres.UpdateBookingScheduledAt"

	res, err := s.conn(ctx).ExecContext(ctx,
		`UPDATE bookings SET scheduled_at = $2 WHERE id = $1 AND status = ANY($3)`,
		id, scheduledAt, activeStatuses,
	)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	ok, err := affected(res)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return ok, nil
}

// UpdateBookingStatus sets next only while the booking is in one of the
// expected states. It reports whether a row changed.
func (s *Storage) UpdateBookingStatus(ctx context.Context, id string, expected []models.BookingStatus, next models.BookingStatus) (bool, error) {
	const op = "storage.postgres.UpdateBookingStatus"

	from := make([]string, 0, len(expected))
	for _, st := range expected {
		from = append(from, string(st))
	}

	res, err := s.conn(ctx).ExecContext(ctx,
		`UPDATE bookings SET status = $2 WHERE id = $1 AND status = ANY($3)`,
		id, string(next), pq.Array(from),
	)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	ok, err := affected(res)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return ok, nil
}
