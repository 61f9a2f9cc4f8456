package rbac

import (
	"fmt"
	"slices"

	dErrors "elan/pkg/domain-errors"
)

// HasPermission reports whether role may perform action on resource in the
// given domain context. Total over all inputs; anything not in the matrix is
// denied.
func HasPermission(role Role, action Action, resource Resource, domain Domain) bool {
	table := tableFor(role, domain)
	if table == nil {
		return false
	}
	return slices.Contains(table[resource], action)
}

// Require returns a PermissionDenied error when HasPermission is false.
func Require(role Role, action Action, resource Resource, domain Domain) error {
	if HasPermission(role, action, resource, domain) {
		return nil
	}
	return dErrors.New(dErrors.CodePermissionDenied,
		fmt.Sprintf("role %s may not %s %s in %s context", role, action, resource, domain))
}

// Permissions returns a copy of the resolved permission set for (role,
// domain), in AllResources/AllActions order. Empty when the role holds
// nothing in that domain.
func Permissions(role Role, domain Domain) map[Resource][]Action {
	table := tableFor(role, domain)
	out := make(map[Resource][]Action, len(table))
	for _, resource := range AllResources {
		granted := table[resource]
		if len(granted) == 0 {
			continue
		}
		var ordered []Action
		for _, action := range AllActions {
			if slices.Contains(granted, action) {
				ordered = append(ordered, action)
			}
		}
		out[resource] = ordered
	}
	return out
}
