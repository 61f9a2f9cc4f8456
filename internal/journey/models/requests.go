package models

import (
	"strings"

	id "elan/pkg/domain"
	dErrors "elan/pkg/domain-errors"
	pstrings "elan/pkg/platform/strings"
	"elan/pkg/platform/validation"
)

// CreateRequest carries a new journey's content. OwnerID is required when the
// caller is acting on behalf of a client.
type CreateRequest struct {
	OwnerID            string  `json:"owner_id,omitempty"`
	Title              string  `json:"title"`
	Narrative          string  `json:"narrative"`
	Category           string  `json:"category"`
	EmotionalObjective string  `json:"emotional_objective"`
	Discretion         string  `json:"discretion_level"`
	Sharing            Sharing `json:"sharing"`
}

func (r *CreateRequest) Sanitize() {
	if r == nil {
		return
	}
	pstrings.TrimAll(&r.OwnerID, &r.Title, &r.Narrative, &r.Category, &r.EmotionalObjective)
}

func (r *CreateRequest) Normalize() {
	if r == nil {
		return
	}
	r.Category = strings.ToLower(r.Category)
	r.Discretion = strings.ToLower(strings.TrimSpace(r.Discretion))
	if r.Discretion == "" {
		r.Discretion = string(DiscretionStandard)
	}
}

func (r *CreateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Title == "" {
		return dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if err := validation.CheckStringLength("title", r.Title, validation.MaxTitleLength); err != nil {
		return err
	}
	if err := validation.CheckStringLength("narrative", r.Narrative, validation.MaxNarrativeLength); err != nil {
		return err
	}
	if err := validation.CheckEachStringLength("label", []string{r.Category, r.EmotionalObjective}, validation.MaxLabelLength); err != nil {
		return err
	}
	if _, err := ParseDiscretionLevel(r.Discretion); err != nil {
		return err
	}
	if r.OwnerID != "" {
		if _, err := id.ParseUserID(r.OwnerID); err != nil {
			return dErrors.New(dErrors.CodeValidation, "owner_id must be a valid user id")
		}
	}
	return nil
}

// UpdateRequest patches a draft's content. Nil fields are left unchanged.
type UpdateRequest struct {
	Title              *string `json:"title,omitempty"`
	Narrative          *string `json:"narrative,omitempty"`
	Category           *string `json:"category,omitempty"`
	EmotionalObjective *string `json:"emotional_objective,omitempty"`
	Discretion         *string `json:"discretion_level,omitempty"`
}

func (r *UpdateRequest) Sanitize() {
	if r == nil {
		return
	}
	for _, f := range []*string{r.Title, r.Narrative, r.Category, r.EmotionalObjective, r.Discretion} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

func (r *UpdateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Title == nil && r.Narrative == nil && r.Category == nil && r.EmotionalObjective == nil && r.Discretion == nil {
		return dErrors.New(dErrors.CodeValidation, "at least one field must be provided")
	}
	if r.Title != nil && (*r.Title == "" || len(*r.Title) > validation.MaxTitleLength) {
		return dErrors.New(dErrors.CodeValidation, "title must be non-empty and within length limits")
	}
	if r.Narrative != nil {
		if err := validation.CheckStringLength("narrative", *r.Narrative, validation.MaxNarrativeLength); err != nil {
			return err
		}
	}
	if r.Discretion != nil {
		if _, err := ParseDiscretionLevel(*r.Discretion); err != nil {
			return err
		}
	}
	return nil
}

// ApplyTo writes the patch onto j.
func (r *UpdateRequest) ApplyTo(j *Journey) {
	if r.Title != nil {
		j.Title = *r.Title
	}
	if r.Narrative != nil {
		j.Narrative = *r.Narrative
	}
	if r.Category != nil {
		j.Category = strings.ToLower(*r.Category)
	}
	if r.EmotionalObjective != nil {
		j.EmotionalObjective = *r.EmotionalObjective
	}
	if r.Discretion != nil {
		// validated already
		j.Discretion, _ = ParseDiscretionLevel(*r.Discretion)
	}
}

// TransitionRequest triggers a workflow event.
type TransitionRequest struct {
	Event  string `json:"event"`
	Reason string `json:"reason,omitempty"`
}

func (r *TransitionRequest) Sanitize() {
	if r == nil {
		return
	}
	r.Event = strings.ToLower(strings.TrimSpace(r.Event))
	r.Reason = strings.TrimSpace(r.Reason)
}

func (r *TransitionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Event == "" {
		return dErrors.New(dErrors.CodeValidation, "event is required")
	}
	if err := validation.CheckStringLength("reason", r.Reason, validation.MaxReasonLength); err != nil {
		return err
	}
	return nil
}

// SharingRequest replaces a journey's sharing flags.
type SharingRequest struct {
	Sharing Sharing `json:"sharing"`
}
