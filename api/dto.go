package api

import "time"

type AvailabilityRule struct {
	ID            string `json:"id,omitempty"`
	DayOfWeek     int    `json:"day_of_week" validate:"min=0,max=6"`
	StartTime     string `json:"start_time" validate:"required"`
	EndTime       string `json:"end_time" validate:"required"`
	Timezone      string `json:"timezone" validate:"required"`
	BufferMinutes int    `json:"buffer_minutes" validate:"min=0"`
}

type AvailabilityReplaceRequest struct {
	Rules []AvailabilityRule `json:"rules" validate:"dive"`
}

type AvailabilityResponse struct {
	TutorID string             `json:"tutor_id"`
	Rules   []AvailabilityRule `json:"rules"`
}

type SlotResponse struct {
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Timezone  string    `json:"timezone"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

type TimeOffRequest struct {
	Start  string `json:"start" validate:"required"`
	End    string `json:"end" validate:"required"`
	Reason string `json:"reason" validate:"max=500"`
	Type   string `json:"type" validate:"required,oneof=vacation sick other"`
}

type TimeOffResponse struct {
	ID      string    `json:"id"`
	TutorID string    `json:"tutor_id"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Reason  string    `json:"reason,omitempty"`
	Type    string    `json:"type"`
}

type BookingResponse struct {
	ID              string    `json:"id"`
	ClassID         string    `json:"class_id"`
	TutorID         string    `json:"tutor_id"`
	StudentID       string    `json:"student_id"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          string    `json:"status"`
}

type RescheduleProposeRequest struct {
	ProposedTime string `json:"proposed_time" validate:"required"`
}

type RequestedBy struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type RescheduleRequestResponse struct {
	ID           string      `json:"id"`
	BookingID    string      `json:"booking_id"`
	ProposedTime time.Time   `json:"proposed_time"`
	Status       string      `json:"status"`
	RequestedBy  RequestedBy `json:"requested_by"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}
