package models

import (
	"elan/internal/rbac"
	id "elan/pkg/domain"
	dErrors "elan/pkg/domain-errors"
	pstrings "elan/pkg/platform/strings"
	"elan/pkg/platform/validation"
	structvalidation "elan/pkg/validation"
)

func init() {
	structvalidation.RegisterValidation("role", "is not a known role", func(v string) bool {
		_, err := rbac.ParseRole(v)
		return err == nil
	})
}

// IssueInviteRequest asks for an invite into role. InstitutionID is only
// read from super admins inviting an institutional admin; everyone else
// invites into their own institution or family.
type IssueInviteRequest struct {
	Email         string `json:"email" validate:"required,email,max=255"`
	Role          string `json:"role" validate:"required,role"`
	InstitutionID string `json:"institution_id,omitempty" validate:"omitempty,uuid"`
}

func (r *IssueInviteRequest) Sanitize() {
	if r != nil {
		pstrings.TrimAll(&r.Email, &r.Role, &r.InstitutionID)
	}
}

func (r *IssueInviteRequest) Normalize() {
	if r != nil {
		r.Email = NormalizeEmail(r.Email)
	}
}

func (r *IssueInviteRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return structvalidation.Validate(r)
}

// ParsedRole returns the validated role.
func (r *IssueInviteRequest) ParsedRole() rbac.Role {
	role, _ := rbac.ParseRole(r.Role)
	return role
}

// AcceptInviteRequest redeems an invite code. The email must match the one
// the invite was issued to.
type AcceptInviteRequest struct {
	Code  string `json:"code" validate:"required"`
	Email string `json:"email" validate:"required,email,max=255"`
	Name  string `json:"name" validate:"required,notblank,max=128"`
}

func (r *AcceptInviteRequest) Sanitize() {
	if r != nil {
		pstrings.TrimAll(&r.Code, &r.Email, &r.Name)
	}
}

func (r *AcceptInviteRequest) Normalize() {
	if r != nil {
		r.Email = NormalizeEmail(r.Email)
	}
}

func (r *AcceptInviteRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.CheckStringLength("code", r.Code, validation.MaxInviteCodeLength); err != nil {
		return err
	}
	return structvalidation.Validate(r)
}

// AssignClientsRequest replaces an advisor's client book.
type AssignClientsRequest struct {
	ClientIDs []string `json:"client_ids"`
}

func (r *AssignClientsRequest) Sanitize() {
	if r != nil {
		pstrings.TrimEach(r.ClientIDs)
	}
}

func (r *AssignClientsRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.CheckSliceCount("client_ids", len(r.ClientIDs), validation.MaxAssignedClients); err != nil {
		return err
	}
	for _, raw := range r.ClientIDs {
		if _, err := id.ParseUserID(raw); err != nil {
			return dErrors.New(dErrors.CodeValidation, "client_ids must be user ids")
		}
	}
	return nil
}

// ParsedClientIDs returns the validated ids without duplicates, in request
// order.
func (r *AssignClientsRequest) ParsedClientIDs() []id.UserID {
	seen := make(map[id.UserID]struct{}, len(r.ClientIDs))
	out := make([]id.UserID, 0, len(r.ClientIDs))
	for _, raw := range r.ClientIDs {
		clientID, err := id.ParseUserID(raw)
		if err != nil {
			continue
		}
		if _, dup := seen[clientID]; dup {
			continue
		}
		seen[clientID] = struct{}{}
		out = append(out, clientID)
	}
	return out
}
