package assignment

import (
	"fmt"
	"time"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
)

// Event is an input of the assignment lifecycle.
type Event string

// List of lifecycle events
const (
	EventAccept   Event = "accept"
	EventReject   Event = "reject"
	EventTimeout  Event = "timeout"
	EventStart    Event = "start"
	EventComplete Event = "complete"
	EventCancel   Event = "cancel"
)

// ReasonTimeout is recorded on offers that expired without an answer.
const ReasonTimeout = "timeout"

var transitions = map[domain.AssignmentStatus]map[Event]domain.AssignmentStatus{
	domain.AssignmentPendingAcceptance: {
		EventAccept:  domain.AssignmentAccepted,
		EventReject:  domain.AssignmentRejected,
		EventTimeout: domain.AssignmentRejected,
		EventCancel:  domain.AssignmentCancelled,
	},
	domain.AssignmentAccepted: {
		EventStart:  domain.AssignmentInProgress,
		EventCancel: domain.AssignmentCancelled,
	},
	domain.AssignmentInProgress: {
		EventComplete: domain.AssignmentCompleted,
		EventCancel:   domain.AssignmentCancelled,
	},
}

// Can reports whether ev is legal from status.
func Can(status domain.AssignmentStatus, ev Event) bool {
	_, ok := transitions[status][ev]
	return ok
}

// Transition applies ev to a and stamps the matching timestamp with at.
// The input is not modified; on an illegal combination it returns apperr.ErrInvalidState.
func Transition(a domain.Assignment, ev Event, at time.Time) (domain.Assignment, error) {
	next, ok := transitions[a.Status][ev]
	if !ok {
		return a, fmt.Errorf("%w: cannot %s assignment in status %s", apperr.ErrInvalidState, ev, a.Status)
	}

	out := a
	out.Status = next
	switch ev {
	case EventAccept:
		out.AcceptedAt = at
	case EventReject:
		out.RejectedAt = at
	case EventTimeout:
		out.RejectedAt = at
		out.Reason = ReasonTimeout
	case EventStart:
		out.StartedAt = at
	case EventComplete:
		out.CompletedAt = at
	case EventCancel:
		out.CancelledAt = at
	}
	return out, nil
}
