package postgres

import (
	"context"
	"fmt"

	"reschedule-service/internal/models"
)

// #### availability rules ####

func (s *Storage) GetAvailabilityRules(ctx context.Context, tutorID string) ([]models.AvailabilityRule, error) {
	const op = "storage.postgres.GetAvailabilityRules"

	rows, err := s.conn(ctx).QueryContext(ctx, `
		SELECT id, tutor_id, day_of_week, start_time, end_time, timezone, buffer_minutes
		FROM availability_rules
		WHERE tutor_id = $1
		ORDER BY day_of_week, start_time`, tutorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var rules []models.AvailabilityRule
	for rows.Next() {
		var r models.AvailabilityRule
		if err := rows.Scan(&r.ID, &r.TutorID, &r.DayOfWeek, &r.StartTime, &r.EndTime, &r.Timezone, &r.BufferMinutes); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		rules = append(rules, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rules, nil
}

// ReplaceAvailabilityRules deletes the tutor's rules and inserts the new set.
// Callers run it inside InTx so readers never see a partial set.
func (s *Storage) ReplaceAvailabilityRules(ctx context.Context, tutorID string, rules []models.AvailabilityRule) error {
	const op = "storage.postgres.ReplaceAvailabilityRules"

	db := s.conn(ctx)

	if _, err := db.ExecContext(ctx, `DELETE FROM availability_rules WHERE tutor_id = $1`, tutorID); err != nil {
		return fmt.Errorf("%s: delete: %w", op, err)
	}

	for _, r := range rules {
		_, err := db.ExecContext(ctx, `
			INSERT INTO availability_rules (id, tutor_id, day_of_week, start_time, end_time, timezone, buffer_minutes)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			r.ID, tutorID, r.DayOfWeek, r.StartTime, r.EndTime, r.Timezone, r.BufferMinutes,
		)
		if err != nil {
			return fmt.Errorf("%s: insert: %w", op, mapErr(err))
		}
	}

	return nil
}
