package models

import (
	"fmt"
	"strings"
	"time"

	"elan/internal/workflow"
	id "elan/pkg/domain"
	dErrors "elan/pkg/domain-errors"
)

// DiscretionLevel is the privacy tier attached to a journey.
type DiscretionLevel string

const (
	DiscretionStandard DiscretionLevel = "standard"
	DiscretionHigh     DiscretionLevel = "high"
	DiscretionMaximum  DiscretionLevel = "maximum"
)

func (d DiscretionLevel) IsValid() bool {
	switch d {
	case DiscretionStandard, DiscretionHigh, DiscretionMaximum:
		return true
	}
	return false
}

// ParseDiscretionLevel defaults an empty value to standard.
func ParseDiscretionLevel(s string) (DiscretionLevel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DiscretionStandard, nil
	}
	d := DiscretionLevel(s)
	if !d.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown discretion level %q", s))
	}
	return d, nil
}

// Sharing controls what family members linked to the owner can see.
type Sharing struct {
	Spouse    bool `json:"spouse"`
	Heirs     bool `json:"heirs"`
	Invisible bool `json:"invisible"`
	Locked    bool `json:"locked"`
}

// Journey is the governed entity. Status always equals the status of the
// version numbered CurrentVersion.
type Journey struct {
	ID                 id.JourneyID
	OwnerID            id.UserID
	InstitutionID      id.InstitutionID
	AssignedRM         id.UserID
	Title              string
	Narrative          string
	Category           string
	EmotionalObjective string
	Discretion         DiscretionLevel
	Status             workflow.Status
	CurrentVersion     int
	Sharing            Sharing
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Clone returns a copy safe to hand to callers.
func (j *Journey) Clone() *Journey {
	if j == nil {
		return nil
	}
	c := *j
	return &c
}

// Version is an immutable snapshot appended on every transition and every
// content edit. Numbers start at 1 and increase by one.
type Version struct {
	JourneyID       id.JourneyID
	Number          int
	Title           string
	Narrative       string
	Status          workflow.Status
	Event           workflow.Event
	ModifiedBy      id.UserID
	ApprovedBy      id.UserID
	RejectedBy      id.UserID
	RejectionReason string
	CreatedAt       time.Time
}

// NextVersion builds the snapshot that follows j once status is applied.
// The journey itself is not modified.
func (j *Journey) NextVersion(status workflow.Status, event workflow.Event, by id.UserID, at time.Time) *Version {
	return &Version{
		JourneyID:  j.ID,
		Number:     j.CurrentVersion + 1,
		Title:      j.Title,
		Narrative:  j.Narrative,
		Status:     status,
		Event:      event,
		ModifiedBy: by,
		CreatedAt:  at,
	}
}

// Apply moves the journey's pointer to v.
func (j *Journey) Apply(v *Version) error {
	if v.JourneyID != j.ID {
		return dErrors.New(dErrors.CodeInvariantViolation, "version belongs to another journey")
	}
	if v.Number != j.CurrentVersion+1 {
		return dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("version %d does not follow %d", v.Number, j.CurrentVersion))
	}
	j.Status = v.Status
	j.CurrentVersion = v.Number
	j.UpdatedAt = v.CreatedAt
	return nil
}
