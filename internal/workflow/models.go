// Package workflow is the journey governance state machine. The transition
// table below is the single source of truth for which roles may move a
// journey between statuses. Everything here is pure: no store, no clock.
package workflow

import (
	"fmt"
	"strings"

	dErrors "elan/pkg/domain-errors"
)

// Status is a journey's governance state.
type Status string

const (
	StatusDraft            Status = "draft"
	StatusRMReview         Status = "rm_review"
	StatusComplianceReview Status = "compliance_review"
	StatusApproved         Status = "approved"
	StatusPresented        Status = "presented"
	StatusExecuted         Status = "executed"
	StatusArchived         Status = "archived"
)

// InitialStatus is the status every journey is created in.
const InitialStatus = StatusDraft

// AllStatuses lists statuses in lifecycle order.
var AllStatuses = []Status{
	StatusDraft, StatusRMReview, StatusComplianceReview, StatusApproved,
	StatusPresented, StatusExecuted, StatusArchived,
}

func (s Status) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no event leaves this status.
func (s Status) IsTerminal() bool { return s == StatusArchived }

func (s Status) String() string { return string(s) }

// Event is a named trigger that moves a journey between statuses.
type Event string

const (
	EventSubmit         Event = "submit"
	EventApprove        Event = "approve"
	EventReject         Event = "reject"
	EventRequestChanges Event = "request_changes"
	EventPresent        Event = "present"
	EventExecute        Event = "execute"
	EventArchive        Event = "archive"
)

// AllEvents lists every event.
var AllEvents = []Event{
	EventSubmit, EventApprove, EventReject, EventRequestChanges,
	EventPresent, EventExecute, EventArchive,
}

func (e Event) IsValid() bool {
	for _, known := range AllEvents {
		if e == known {
			return true
		}
	}
	return false
}

func (e Event) String() string { return string(e) }

// RequiresReason reports whether the event must carry a non-empty reason.
func RequiresReason(e Event) bool {
	return e == EventReject || e == EventRequestChanges
}

// IsRejection reports whether the event sends the journey backwards.
func (e Event) IsRejection() bool { return RequiresReason(e) }

// ParseStatus validates a status from an untrusted source.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown journey status %q", s))
	}
	return st, nil
}

// ParseEvent validates an event from an untrusted source.
func ParseEvent(s string) (Event, error) {
	e := Event(strings.ToLower(strings.TrimSpace(s)))
	if !e.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown workflow event %q", s))
	}
	return e, nil
}
