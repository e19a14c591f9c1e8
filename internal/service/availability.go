package service

import (
	"context"
	"fmt"
	"time"

	"reschedule-service/api"
	"reschedule-service/internal/availability"
	"reschedule-service/internal/models"
	"reschedule-service/pkg/response"

	"github.com/google/uuid"
)

// Availability Rules

func (s *Service) GetAvailabilityRules(ctx context.Context, tutorID string) (*api.AvailabilityResponse, error) {
	const op = "service.GetAvailabilityRules"

	rules, err := s.store.GetAvailabilityRules(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := &api.AvailabilityResponse{
		TutorID: tutorID,
		Rules:   make([]api.AvailabilityRule, 0, len(rules)),
	}
	for _, r := range rules {
		result.Rules = append(result.Rules, toRuleDTO(r))
	}

	return result, nil
}

// ReplaceAvailabilityRules swaps the tutor's whole rule set. Only the tutor
// themself may do this.
func (s *Service) ReplaceAvailabilityRules(ctx context.Context, actor models.Actor, tutorID string, req *api.AvailabilityReplaceRequest) (*api.AvailabilityResponse, error) {
	const op = "service.ReplaceAvailabilityRules"

	if !isTutor(actor, tutorID) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrUnauthorized)
	}

	rules := make([]models.AvailabilityRule, 0, len(req.Rules))
	for i, dto := range req.Rules {
		rule := models.AvailabilityRule{
			ID:            uuid.NewString(),
			TutorID:       tutorID,
			DayOfWeek:     dto.DayOfWeek,
			StartTime:     dto.StartTime,
			EndTime:       dto.EndTime,
			Timezone:      dto.Timezone,
			BufferMinutes: dto.BufferMinutes,
		}
		if err := availability.ValidateRule(rule); err != nil {
			return nil, fmt.Errorf("%s: %w", op, response.Validation("rule %d: %s", i, err))
		}
		rules = append(rules, rule)
	}

	err := s.store.InTx(ctx, func(ctx context.Context) error {
		return s.store.ReplaceAvailabilityRules(ctx, tutorID, rules)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetAvailabilityRules(ctx, tutorID)
}

// Slots

func (s *Service) ResolveSlots(ctx context.Context, tutorID string, date time.Time) ([]api.SlotResponse, error) {
	const op = "service.ResolveSlots"

	rules, err := s.store.GetAvailabilityRules(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	slots, err := s.resolve(ctx, tutorID, rules, date, "")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]api.SlotResponse, 0, len(slots))
	for _, slot := range slots {
		result = append(result, toSlotResponse(slot))
	}

	return result, nil
}

// resolve loads the bookings and time off that can touch date and runs the
// resolver. A booking with id ignoreBookingID does not count as busy.
func (s *Service) resolve(ctx context.Context, tutorID string, rules []models.AvailabilityRule, date time.Time, ignoreBookingID string) ([]availability.Slot, error) {
	span, ok := availability.BusyWindow(date, rules)
	if !ok {
		return []availability.Slot{}, nil
	}

	bookings, err := s.store.ListBookings(ctx, tutorID, span.Start, span.End)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	busy := make([]availability.Interval, 0, len(bookings))
	for i := range bookings {
		b := &bookings[i]
		if b.ID == ignoreBookingID || !b.Status.Active() {
			continue
		}
		busy = append(busy, availability.Interval{Start: b.ScheduledAt, End: b.End()})
	}

	offs, err := s.store.ListTimeOff(ctx, tutorID, span.Start, span.End)
	if err != nil {
		return nil, fmt.Errorf("list time off: %w", err)
	}

	blocked := make([]availability.Interval, 0, len(offs))
	for _, off := range offs {
		blocked = append(blocked, availability.Interval{Start: off.Start, End: off.End})
	}

	return availability.Resolve(date, rules, busy, blocked), nil
}

// slotAvailable reports whether t lies in a free slot of the booking's tutor
// on t's local date, not counting the booking itself as busy.
func (s *Service) slotAvailable(ctx context.Context, booking *models.Booking, t time.Time) (bool, error) {
	rules, err := s.store.GetAvailabilityRules(ctx, booking.TutorID)
	if err != nil {
		return false, err
	}

	for _, date := range availability.LocalDates(t, rules) {
		slots, err := s.resolve(ctx, booking.TutorID, rules, date, booking.ID)
		if err != nil {
			return false, err
		}
		for _, slot := range slots {
			if slot.Contains(t) {
				return true, nil
			}
		}
	}

	return false, nil
}

// Time Off

func (s *Service) CreateTimeOff(ctx context.Context, actor models.Actor, tutorID string, req *api.TimeOffRequest) (*api.TimeOffResponse, error) {
	const op = "service.CreateTimeOff"

	if !isTutor(actor, tutorID) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrUnauthorized)
	}

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, response.Validation("invalid start: %s", req.Start))
	}

	end, err := time.Parse(time.RFC3339, req.End)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, response.Validation("invalid end: %s", req.End))
	}

	if !end.After(start) {
		return nil, fmt.Errorf("%s: %w", op, response.Validation("end must be after start"))
	}

	offType := models.TimeOffType(req.Type)
	if offType != models.TimeOffVacation && offType != models.TimeOffSick && offType != models.TimeOffOther {
		return nil, fmt.Errorf("%s: %w", op, response.Validation("invalid type: %s", req.Type))
	}

	off := &models.TimeOff{
		ID:      uuid.NewString(),
		TutorID: tutorID,
		Start:   start.UTC(),
		End:     end.UTC(),
		Reason:  req.Reason,
		Type:    offType,
	}

	if err := s.store.CreateTimeOff(ctx, off); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toTimeOffResponse(off), nil
}

func (s *Service) ListTimeOff(ctx context.Context, tutorID string, from, to time.Time) ([]*api.TimeOffResponse, error) {
	const op = "service.ListTimeOff"

	offs, err := s.store.ListTimeOff(ctx, tutorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.TimeOffResponse, 0, len(offs))
	for i := range offs {
		result = append(result, toTimeOffResponse(&offs[i]))
	}

	return result, nil
}

func (s *Service) DeleteTimeOff(ctx context.Context, actor models.Actor, id string) error {
	const op = "service.DeleteTimeOff"

	off, err := s.store.GetTimeOff(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !isTutor(actor, off.TutorID) {
		return fmt.Errorf("%s: %w", op, response.ErrUnauthorized)
	}

	if err := s.store.DeleteTimeOff(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func isTutor(actor models.Actor, tutorID string) bool {
	return actor.Role == models.RoleTutor && actor.UserID == tutorID
}
