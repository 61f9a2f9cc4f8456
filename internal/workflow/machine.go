package workflow

import (
	"fmt"

	"elan/internal/rbac"
	dErrors "elan/pkg/domain-errors"
)

// AvailableTransitions returns the events role may trigger from status while
// acting in domain, in table order. A row is offered only when the role is
// listed for it and also holds the row's action on journey in the matrix.
// Unknown inputs and terminal statuses yield an empty list.
func AvailableTransitions(status Status, role rbac.Role, domain rbac.Domain) []Event {
	events := []Event{}
	for _, t := range table {
		if t.From != status {
			continue
		}
		if !t.Allows(role, domain) {
			continue
		}
		if !rbac.HasPermission(role, t.Action, rbac.ResourceJourney, domain) {
			continue
		}
		events = append(events, t.Event)
	}
	return events
}

// ExecuteTransition returns the status reached by event from status. It fails
// with CodeIllegalTransition when event is not in AvailableTransitions for
// the same (status, role, domain).
func ExecuteTransition(status Status, event Event, role rbac.Role, domain rbac.Domain) (Status, error) {
	for _, t := range table {
		if t.From != status || t.Event != event {
			continue
		}
		if !t.Allows(role, domain) || !rbac.HasPermission(role, t.Action, rbac.ResourceJourney, domain) {
			break
		}
		return t.To, nil
	}
	return "", dErrors.New(dErrors.CodeIllegalTransition,
		fmt.Sprintf("event %s is not available from %s for role %s in %s context", event, status, role, domain))
}

// Next returns the target status for (status, event) regardless of role.
func Next(status Status, event Event) (Status, bool) {
	for _, t := range table {
		if t.From == status && t.Event == event {
			return t.To, true
		}
	}
	return "", false
}

// Lookup returns the table row for (status, event).
func Lookup(status Status, event Event) (Transition, bool) {
	for _, t := range table {
		if t.From == status && t.Event == event {
			return t, true
		}
	}
	return Transition{}, false
}
