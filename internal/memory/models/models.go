package models

import (
	"strings"
	"time"

	id "elan/pkg/domain"
	dErrors "elan/pkg/domain-errors"
	"elan/pkg/platform/validation"
)

// Sharing controls which linked family members can see a memory.
type Sharing struct {
	Spouse    bool `json:"spouse"`
	Heirs     bool `json:"heirs"`
	Invisible bool `json:"invisible"`
	Locked    bool `json:"locked"`
}

// Memory is a vault item owned by a UHNI.
type Memory struct {
	ID            id.MemoryID
	OwnerID       id.UserID
	InstitutionID id.InstitutionID
	Title         string
	Body          string
	Sharing       Sharing
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (m *Memory) Clone() *Memory {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

type CreateRequest struct {
	Title   string  `json:"title"`
	Body    string  `json:"body"`
	Sharing Sharing `json:"sharing"`
}

func (r *CreateRequest) Sanitize() {
	if r == nil {
		return
	}
	r.Title = strings.TrimSpace(r.Title)
	r.Body = strings.TrimSpace(r.Body)
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
	return validation.CheckStringLength("body", r.Body, validation.MaxNarrativeLength)
}

type SharingRequest struct {
	Sharing Sharing `json:"sharing"`
}
