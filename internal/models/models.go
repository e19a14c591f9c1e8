package models

import "time"

type Role string

const (
	RoleTutor   Role = "TUTOR"
	RoleStudent Role = "STUDENT"
)

// Actor is the authenticated caller as supplied by the identity layer.
type Actor struct {
	UserID string
	Role   Role
}

type AvailabilityRule struct {
	ID            string `db:"id"`
	TutorID       string `db:"tutor_id"`
	DayOfWeek     int    `db:"day_of_week"` // 0 = Sunday
	StartTime     string `db:"start_time"`  // HH:MM, local to Timezone
	EndTime       string `db:"end_time"`
	Timezone      string `db:"timezone"`
	BufferMinutes int    `db:"buffer_minutes"`
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// Active bookings occupy tutor time and may be rescheduled.
func (s BookingStatus) Active() bool {
	return s == BookingPending || s == BookingConfirmed
}

const DefaultBookingDuration = 60

type Booking struct {
	ID              string        `db:"id"`
	ClassID         string        `db:"class_id"`
	TutorID         string        `db:"tutor_id"`
	StudentID       string        `db:"student_id"`
	ScheduledAt     time.Time     `db:"scheduled_at"`
	DurationMinutes int           `db:"duration_minutes"`
	Status          BookingStatus `db:"status"`
}

func (b *Booking) End() time.Time {
	d := b.DurationMinutes
	if d <= 0 {
		d = DefaultBookingDuration
	}
	return b.ScheduledAt.Add(time.Duration(d) * time.Minute)
}

type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDING"
	RequestAccepted  RequestStatus = "ACCEPTED"
	RequestDeclined  RequestStatus = "DECLINED"
	RequestCancelled RequestStatus = "CANCELLED"
)

func (s RequestStatus) Terminal() bool {
	return s != RequestPending
}

type RescheduleRequest struct {
	ID            string        `db:"id"`
	BookingID     string        `db:"booking_id"`
	ProposedTime  time.Time     `db:"proposed_time"`
	Status        RequestStatus `db:"status"`
	RequestedBy   string        `db:"requested_by"`
	RequesterRole Role          `db:"requester_role"`
	CreatedAt     time.Time     `db:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at"`
}

type TimeOffType string

const (
	TimeOffVacation TimeOffType = "vacation"
	TimeOffSick     TimeOffType = "sick"
	TimeOffOther    TimeOffType = "other"
)

type TimeOff struct {
	ID      string      `db:"id"`
	TutorID string      `db:"tutor_id"`
	Start   time.Time   `db:"start_at"`
	End     time.Time   `db:"end_at"`
	Reason  string      `db:"reason"`
	Type    TimeOffType `db:"type"`
}
