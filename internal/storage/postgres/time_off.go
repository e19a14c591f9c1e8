package postgres

import (
	"context"
	"fmt"
	"time"

	"reschedule-service/internal/models"
	"reschedule-service/pkg/response"
)

// #### time off ####

func (s *Storage) CreateTimeOff(ctx context.Context, off *models.TimeOff) error {
	const op = "storage.postgres.CreateTimeOff"

	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO time_off (id, tutor_id, start_at, end_at, reason, type)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		off.ID, off.TutorID, off.Start, off.End, off.Reason, string(off.Type),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return nil
}

func (s *Storage) GetTimeOff(ctx context.Context, id string) (*models.TimeOff, error) {
	const op = "storage.postgres.GetTimeOff"

	var off models.TimeOff
	var offType string

	err := s.conn(ctx).QueryRowContext(ctx, `
		SELECT id, tutor_id, start_at, end_at, reason, type
		FROM time_off
		WHERE id = $1`, id,
	).Scan(&off.ID, &off.TutorID, &off.Start, &off.End, &off.Reason, &offType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapErr(err))
	}

	off.Type = models.TimeOffType(offType)
	off.Start = off.Start.UTC()
	off.End = off.End.UTC()

	return &off, nil
}

// ListTimeOff returns entries overlapping [from, to) ordered by start.
func (s *Storage) ListTimeOff(ctx context.Context, tutorID string, from, to time.Time) ([]models.TimeOff, error) {
	const op = "storage.postgres.ListTimeOff"

	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT id, tutor_id, start_at, end_at, reason, type
		FROM time_off
		WHERE tutor_id = $1 AND start_at < $3 AND end_at > $2
		ORDER BY start_at`, tutorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var offs []models.TimeOff
	for rows.Next() {
		var off models.TimeOff
		var offType string
		if err := rows.Scan(&off.ID, &off.TutorID, &off.Start, &off.End, &off.Reason, &offType); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		off.Type = models.TimeOffType(offType)
		off.Start = off.Start.UTC()
		off.End = off.End.UTC()
		offs = append(offs, off)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return offs, nil
}

func (s *Storage) DeleteTimeOff(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteTimeOff"

	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM time_off WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	ok, err := affected(res)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}
