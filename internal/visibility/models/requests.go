package models

import (
	"strings"

	id "elan/pkg/domain"
	dErrors "elan/pkg/domain-errors"
	pstrings "elan/pkg/platform/strings"
	"elan/pkg/platform/validation"
)

// GrantRequest gives an advisor visibility over everything or a list of
// journey and memory ids.
type GrantRequest struct {
	AdvisorID string   `json:"advisor_id"`
	All       bool     `json:"all"`
	EntityIDs []string `json:"entity_ids,omitempty"`
}

func (r *GrantRequest) Sanitize() {
	if r == nil {
		return
	}
	r.AdvisorID = strings.TrimSpace(r.AdvisorID)
	r.EntityIDs = pstrings.DedupeAndTrim(r.EntityIDs)
}

func (r *GrantRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if _, err := id.ParseUserID(r.AdvisorID); err != nil {
		return dErrors.New(dErrors.CodeValidation, "advisor_id must be a valid user id")
	}
	if r.All && len(r.EntityIDs) > 0 {
		return dErrors.New(dErrors.CodeValidation, "entity_ids must be empty when all is set")
	}
	if !r.All && len(r.EntityIDs) == 0 {
		return dErrors.New(dErrors.CodeValidation, "either all or entity_ids is required")
	}
	if err := validation.CheckSliceCount("entity_ids", len(r.EntityIDs), validation.MaxScopeEntities); err != nil {
		return err
	}
	for _, e := range r.EntityIDs {
		if _, err := id.ParseJourneyID(e); err != nil {
			return dErrors.New(dErrors.CodeValidation, "entity_ids must be journey or memory ids")
		}
	}
	return nil
}

// RevokeRequest removes an advisor's visibility.
type RevokeRequest struct {
	AdvisorID string `json:"advisor_id"`
}

func (r *RevokeRequest) Sanitize() {
	if r != nil {
		r.AdvisorID = strings.TrimSpace(r.AdvisorID)
	}
}

func (r *RevokeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if _, err := id.ParseUserID(r.AdvisorID); err != nil {
		return dErrors.New(dErrors.CodeValidation, "advisor_id must be a valid user id")
	}
	return nil
}
