package handler

import (
	"time"

	"elan/internal/journey/models"
	id "elan/pkg/domain"
)

type JourneyResponse struct {
	ID                 string         `json:"id"`
	OwnerID            string         `json:"owner_id"`
	InstitutionID      string         `json:"institution_id,omitempty"`
	AssignedRM         string         `json:"assigned_rm,omitempty"`
	Title              string         `json:"title"`
	Narrative          string         `json:"narrative"`
	Category           string         `json:"category,omitempty"`
	EmotionalObjective string         `json:"emotional_objective,omitempty"`
	Discretion         string         `json:"discretion_level"`
	Status             string         `json:"status"`
	CurrentVersion     int            `json:"current_version"`
	Sharing            models.Sharing `json:"sharing"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

type VersionResponse struct {
	Number          int       `json:"number"`
	Title           string    `json:"title"`
	Narrative       string    `json:"narrative"`
	Status          string    `json:"status"`
	Event           string    `json:"event,omitempty"`
	ModifiedBy      string    `json:"modified_by"`
	ApprovedBy      string    `json:"approved_by,omitempty"`
	RejectedBy      string    `json:"rejected_by,omitempty"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type ListResponse struct {
	Journeys []JourneyResponse `json:"journeys"`
}

type VersionsResponse struct {
	Versions []VersionResponse `json:"versions"`
}

type AvailableTransitionsResponse struct {
	Events []string `json:"events"`
}

type TransitionResponse struct {
	Journey  JourneyResponse `json:"journey"`
	Version  VersionResponse `json:"version"`
	Previous string          `json:"previous_status"`
}

func toJourneyResponse(j *models.Journey) JourneyResponse {
	resp := JourneyResponse{
		ID:                 j.ID.String(),
		OwnerID:            j.OwnerID.String(),
		Title:              j.Title,
		Narrative:          j.Narrative,
		Category:           j.Category,
		EmotionalObjective: j.EmotionalObjective,
		Discretion:         string(j.Discretion),
		Status:             string(j.Status),
		CurrentVersion:     j.CurrentVersion,
		Sharing:            j.Sharing,
		CreatedAt:          j.CreatedAt,
		UpdatedAt:          j.UpdatedAt,
	}
	if !j.InstitutionID.IsNil() {
		resp.InstitutionID = j.InstitutionID.String()
	}
	resp.AssignedRM = optionalUser(j.AssignedRM)
	return resp
}

func toVersionResponse(v *models.Version) VersionResponse {
	return VersionResponse{
		Number:          v.Number,
		Title:           v.Title,
		Narrative:       v.Narrative,
		Status:          string(v.Status),
		Event:           string(v.Event),
		ModifiedBy:      v.ModifiedBy.String(),
		ApprovedBy:      optionalUser(v.ApprovedBy),
		RejectedBy:      optionalUser(v.RejectedBy),
		RejectionReason: v.RejectionReason,
		CreatedAt:       v.CreatedAt,
	}
}

func optionalUser(u id.UserID) string {
	if u.IsNil() {
		return ""
	}
	return u.String()
}
