package models

import (
	"strings"
	"time"

	id "elan/pkg/domain"
	dErrors "elan/pkg/domain-errors"
	"elan/pkg/platform/validation"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Institution is a bank or family office whose staff work in the b2b portal.
type Institution struct {
	ID        id.InstitutionID
	Name      string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (i *Institution) IsActive() bool {
	return i.Status == StatusActive
}

// Deactivate closes the institution to new invites. Existing users keep
// their accounts.
func (i *Institution) Deactivate(now time.Time) error {
	if !i.IsActive() {
		return dErrors.New(dErrors.CodeInvariantViolation, "institution is already inactive")
	}
	i.Status = StatusInactive
	i.UpdatedAt = now
	return nil
}

func NewInstitution(institutionID id.InstitutionID, name string, now time.Time) (*Institution, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "institution name cannot be empty")
	}
	if len(name) > validation.MaxNameLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "institution name must be 128 characters or less")
	}
	return &Institution{
		ID:        institutionID,
		Name:      name,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

type CreateRequest struct {
	Name string `json:"name"`
}

func (r *CreateRequest) Sanitize() {
	if r != nil {
		r.Name = strings.TrimSpace(r.Name)
	}
}

func (r *CreateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return validation.CheckStringLength("name", r.Name, validation.MaxNameLength)
}
