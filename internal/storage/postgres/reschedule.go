package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"reschedule-service/internal/models"
)

// #### reschedule requests ####

const requestColumns = `id, booking_id, proposed_time, status, requested_by, requester_role, created_at, updated_at`

func scanRequest(row scanner) (*models.RescheduleRequest, error) {
	var r models.RescheduleRequest
	var status, role string

	if err := row.Scan(&r.ID, &r.BookingID, &r.ProposedTime, &status, &r.RequestedBy, &role, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}

	r.Status = models.RequestStatus(status)
	r.RequesterRole = models.Role(role)
	r.ProposedTime = r.ProposedTime.UTC()
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()

	return &r, nil
}

func collectRequests(op string, rows *sql.Rows) ([]models.RescheduleRequest, error) {
	var out []models.RescheduleRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, *r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// InsertRescheduleRequest fails with response.ErrConflict when the booking
// already has a PENDING request.
func (s *Storage) InsertRescheduleRequest(ctx context.Context, req *models.RescheduleRequest) error {
	const op = "storage.postgres.InsertRescheduleRequest"

	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO reschedule_requests (`+requestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		req.ID, req.BookingID, req.ProposedTime, string(req.Status),
		req.RequestedBy, string(req.RequesterRole), req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return nil
}

func (s *Storage) GetRescheduleRequest(ctx context.Context, id string) (*models.RescheduleRequest, error) {
	const op = "storage.postgres.GetRescheduleRequest"

	row := s.conn(ctx).QueryRowContext(ctx, `SELECT `+requestColumns+` FROM reschedule_requests WHERE id = $1`, id)

	r, err := scanRequest(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return r, nil
}

func (s *Storage) ListRescheduleRequests(ctx context.Context, bookingID string) ([]models.RescheduleRequest, error) {
	const op = "storage.postgres.ListRescheduleRequests"

	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT `+requestColumns+`
		FROM reschedule_requests
		WHERE booking_id = $1
		ORDER BY created_at DESC, id`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	return collectRequests(op, rows)
}

// UpdateRescheduleRequestStatus is a compare-and-set on status. It reports
// false when the row was not in the expected state.
func (s *Storage) UpdateRescheduleRequestStatus(ctx context.Context, id string, expected, next models.RequestStatus, at time.Time) (bool, error) {
	const op = "storage.postgres.UpdateRescheduleRequestStatus"

	res, err := s.conn(ctx).ExecContext(ctx, `
		UPDATE reschedule_requests
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2`,
		id, string(expected), string(next), at,
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

// CancelPendingRequests cancels every PENDING request of the booking and
// returns their ids.
func (s *Storage) CancelPendingRequests(ctx context.Context, bookingID string, at time.Time) ([]string, error) {
	const op = "storage.postgres.CancelPendingRequests"

	rows, err := s.conn(ctx).QueryContext(ctx, `
		UPDATE reschedule_requests
		SET status = 'CANCELLED', updated_at = $2
		WHERE booking_id = $1 AND status = 'PENDING'
		RETURNING id`, bookingID, at)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return ids, nil
}

// ListStalePendingRequests returns PENDING requests whose proposed time is
// not after now.
func (s *Storage) ListStalePendingRequests(ctx context.Context, now time.Time) ([]models.RescheduleRequest, error) {
	const op = "storage.postgres.ListStalePendingRequests"

	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT `+requestColumns+`
		FROM reschedule_requests
		WHERE status = 'PENDING' AND proposed_time <= $1
		ORDER BY proposed_time`, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	return collectRequests(op, rows)
}
