package service

import (
	"reschedule-service/internal/models"
	"reschedule-service/pkg/response"
)

// Participant is the booking side an actor acts as: Kind is either
// models.RoleTutor or models.RoleStudent.
type Participant struct {
	Kind   models.Role
	UserID string
}

// participantOf resolves actor against the booking's tutor and student. Both
// id and role have to match.
func participantOf(b *models.Booking, actor models.Actor) (Participant, error) {
	switch {
	case actor.Role == models.RoleTutor && actor.UserID == b.TutorID:
		return Participant{Kind: models.RoleTutor, UserID: b.TutorID}, nil
	case actor.Role == models.RoleStudent && actor.UserID == b.StudentID:
		return Participant{Kind: models.RoleStudent, UserID: b.StudentID}, nil
	default:
		return Participant{}, response.ErrUnauthorized
	}
}

func (p Participant) originated(req *models.RescheduleRequest) bool {
	return req.RequestedBy == p.UserID && req.RequesterRole == p.Kind
}

// mayApply reports whether p is allowed to move req into next. The side
// that did not propose accepts or declines; only the proposer cancels.
func (p Participant) mayApply(req *models.RescheduleRequest, next models.RequestStatus) bool {
	switch next {
	case models.RequestAccepted, models.RequestDeclined:
		return !p.originated(req)
	case models.RequestCancelled:
		return p.originated(req)
	default:
		return false
	}
}
