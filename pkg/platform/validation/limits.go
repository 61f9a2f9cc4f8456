package validation

import (
	"fmt"

	dErrors "elan/pkg/domain-errors"
)

// Slice element count limits
const (
	// MaxAssignedClients is the maximum number of clients per advisor assignment.
	MaxAssignedClients = 500

	// MaxScopeEntities is the maximum number of entity ids in a visibility grant.
	MaxScopeEntities = 1000
)

// String element length limits
const (
	// MaxTitleLength is the maximum length of a journey or memory title.
	MaxTitleLength = 200

	// MaxNarrativeLength is the maximum length of a journey narrative or memory body.
	MaxNarrativeLength = 20000

	// MaxLabelLength is the maximum length of short labels (category, objective).
	MaxLabelLength = 100

	// MaxReasonLength is the maximum length of a rejection or change-request reason.
	MaxReasonLength = 2000

	// MaxNameLength is the maximum length of an institution or display name.
	MaxNameLength = 128

	// MaxInviteCodeLength is the maximum length of an invite code.
	MaxInviteCodeLength = 256
)

// CheckSliceCount validates that a slice does not exceed the maximum count.
func CheckSliceCount(fieldName string, count, max int) error {
	if count > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("too many %s: max %d allowed", fieldName, max))
	}
	return nil
}

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}

// CheckEachStringLength validates that each string in a slice does not exceed the maximum length.
func CheckEachStringLength(fieldName string, values []string, max int) error {
	for _, v := range values {
		if len(v) > max {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
		}
	}
	return nil
}
