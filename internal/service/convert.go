package service

import (
	"reschedule-service/api"
	"reschedule-service/internal/availability"
	"reschedule-service/internal/models"
)

func toRuleDTO(r models.AvailabilityRule) api.AvailabilityRule {
	return api.AvailabilityRule{
		ID:            r.ID,
		DayOfWeek:     r.DayOfWeek,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		Timezone:      r.Timezone,
		BufferMinutes: r.BufferMinutes,
	}
}

func toSlotResponse(s availability.Slot) api.SlotResponse {
	return api.SlotResponse{
		Date:      s.Date,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Timezone:  s.Timezone,
		Start:     s.Start,
		End:       s.End,
	}
}

func toTimeOffResponse(t *models.TimeOff) *api.TimeOffResponse {
	return &api.TimeOffResponse{
		ID:      t.ID,
		TutorID: t.TutorID,
		Start:   t.Start,
		End:     t.End,
		Reason:  t.Reason,
		Type:    string(t.Type),
	}
}

func toBookingResponse(b *models.Booking) *api.BookingResponse {
	return &api.BookingResponse{
		ID:              b.ID,
		ClassID:         b.ClassID,
		TutorID:         b.TutorID,
		StudentID:       b.StudentID,
		ScheduledAt:     b.ScheduledAt,
		DurationMinutes: b.DurationMinutes,
		Status:          string(b.Status),
	}
}

func toRequestResponse(r *models.RescheduleRequest) *api.RescheduleRequestResponse {
	return &api.RescheduleRequestResponse{
		ID:           r.ID,
		BookingID:    r.BookingID,
		ProposedTime: r.ProposedTime,
		Status:       string(r.Status),
		RequestedBy: api.RequestedBy{
			UserID: r.RequestedBy,
			Role:   string(r.RequesterRole),
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
