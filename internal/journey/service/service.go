package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"elan/internal/access"
	"elan/internal/audit"
	"elan/internal/journey/metrics"
	"elan/internal/journey/models"
	"elan/internal/rbac"
	"elan/internal/workflow"
	id "elan/pkg/domain"
	dErrors "elan/pkg/domain-errors"
	"elan/pkg/platform/sentinel"
	"elan/pkg/requestcontext"
)

// Store defines the persistence interface for journeys and their history.
// Error Contract:
// - FindByID, Versions, UpdateSharing and Delete return sentinel.ErrNotFound for unknown ids
// - AppendVersion returns sentinel.ErrConflict when the history moved since the journey was read
// - Create and AppendVersion write the journey and its version atomically
type Store interface {
	Create(ctx context.Context, journey *models.Journey, first *models.Version) error
	FindByID(ctx context.Context, journeyID id.JourneyID) (*models.Journey, error)
	List(ctx context.Context) ([]*models.Journey, error)
	ListByOwner(ctx context.Context, ownerID id.UserID) ([]*models.Journey, error)
	AppendVersion(ctx context.Context, journey *models.Journey, next *models.Version) error
	UpdateSharing(ctx context.Context, journeyID id.JourneyID, sharing models.Sharing) error
	Versions(ctx context.Context, journeyID id.JourneyID) ([]*models.Version, error)
	Delete(ctx context.Context, journeyID id.JourneyID) error
	DeleteByOwner(ctx context.Context, ownerID id.UserID) (int, error)
}

type Option func(*Service)

// Service orchestrates the journey lifecycle: every mutation is gated by the
// permission matrix and the caller's visibility, versioned and audited.
type Service struct {
	store   Store
	tx      StoreTx
	auditor *audit.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
}

func NewService(store Store, auditor *audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:   store,
		auditor: auditor,
		logger:  logger,
		tracer:  otel.Tracer("elan/journey"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.tx == nil {
		svc.tx = NewShardedTx(store, svc.metrics)
	}
	return svc
}

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTx replaces the default in-memory sharded transaction, e.g. with a
// PostgreSQL-backed one.
func WithTx(tx StoreTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

// WithTracer overrides the global OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// Create stores a new draft with version 1.
func (s *Service) Create(ctx context.Context, viewer access.Viewer, req *models.CreateRequest) (*models.Journey, error) {
	if err := viewer.Require(rbac.ActionWrite, rbac.ResourceJourney); err != nil {
		return nil, err
	}
	discretion, err := models.ParseDiscretionLevel(req.Discretion)
	if err != nil {
		return nil, err
	}

	var requested id.UserID
	if req.OwnerID != "" {
		if requested, err = id.ParseUserID(req.OwnerID); err != nil {
			return nil, dErrors.New(dErrors.CodeValidation, "owner_id must be a valid user id")
		}
	}
	owner := viewer.OwnerOnBehalf(requested)
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "owner_id is required when acting for a client")
	}

	now := requestcontext.Now(ctx)
	journey := &models.Journey{
		ID:                 id.NewJourneyID(),
		OwnerID:            owner,
		InstitutionID:      viewer.InstitutionID,
		Title:              req.Title,
		Narrative:          req.Narrative,
		Category:           req.Category,
		EmotionalObjective: req.EmotionalObjective,
		Discretion:         discretion,
		Status:             workflow.InitialStatus,
		CurrentVersion:     1,
		Sharing:            req.Sharing,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if viewer.Role == rbac.RoleRelationshipManager || viewer.Role == rbac.RolePrivateBanker {
		if !viewer.IsAssigned(owner) {
			return nil, dErrors.New(dErrors.CodePermissionDenied, "client is not assigned to the caller")
		}
		journey.AssignedRM = viewer.UserID
	}
	// The creator must be able to see what they create.
	if !access.CanSeeJourney(journey, viewer) {
		return nil, dErrors.New(dErrors.CodePermissionDenied, "journey would be outside the caller's visibility")
	}

	first := &models.Version{
		JourneyID:  journey.ID,
		Number:     1,
		Title:      journey.Title,
		Narrative:  journey.Narrative,
		Status:     journey.Status,
		ModifiedBy: viewer.UserID,
		CreatedAt:  now,
	}
	if err := s.store.Create(ctx, journey, first); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save journey")
	}
	if s.metrics != nil {
		s.metrics.JourneysCreated.Inc()
		s.metrics.VersionsAppended.Inc()
	}

	s.emit(ctx, viewer, audit.EventJourneyCreated, journey.ID, rbac.ActionWrite, "", string(journey.Status), "", map[string]string{
		"owner_id": owner.String(),
		"version":  "1",
	})
	s.logger.InfoContext(ctx, "journey created",
		"journey_id", journey.ID.String(),
		"owner_id", owner.String(),
		"role", viewer.Role,
		"request_id", requestcontext.RequestID(ctx),
	)
	return journey, nil
}

// Get returns the journey when it is visible to the viewer. Invisible and
// missing journeys are indistinguishable.
func (s *Service) Get(ctx context.Context, viewer access.Viewer, journeyID id.JourneyID) (*models.Journey, error) {
	journey, err := s.store.FindByID(ctx, journeyID)
	if err != nil {
		return nil, translateStoreErr(err, "failed to load journey")
	}
	if !access.CanSeeJourney(journey, viewer) {
		return nil, journeyNotFound()
	}
	return journey, nil
}

// List returns every journey visible to the viewer, oldest first.
func (s *Service) List(ctx context.Context, viewer access.Viewer) ([]*models.Journey, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list journeys")
	}
	return access.FilterJourneys(all, viewer), nil
}

// UpdateContent edits a draft and appends a version with unchanged status.
func (s *Service) UpdateContent(ctx context.Context, viewer access.Viewer, journeyID id.JourneyID, patch *models.UpdateRequest) (*models.Journey, error) {
	if err := viewer.Require(rbac.ActionWrite, rbac.ResourceJourney); err != nil {
		return nil, err
	}

	var updated *models.Journey
	err := s.tx.RunInTx(ctx, journeyID.String(), func(ctx context.Context, store Store) error {
		current, err := store.FindByID(ctx, journeyID)
		if err != nil {
			return translateStoreErr(err, "failed to load journey")
		}
		if !access.CanSeeJourney(current, viewer) {
			return journeyNotFound()
		}
		if current.Status != workflow.StatusDraft {
			return dErrors.New(dErrors.CodeConflict, fmt.Sprintf("journey content can only change in draft, current status is %s", current.Status))
		}

		next := current.Clone()
		patch.ApplyTo(next)
		version := next.NextVersion(current.Status, "", viewer.UserID, requestcontext.Now(ctx))
		if err := next.Apply(version); err != nil {
			return err
		}
		if err := store.AppendVersion(ctx, next, version); err != nil {
			return translateStoreErr(err, "failed to save journey version")
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.VersionsAppended.Inc()
	}

	s.emit(ctx, viewer, audit.EventJourneyUpdated, journeyID, rbac.ActionWrite,
		string(updated.Status), string(updated.Status), "",
		map[string]string{"version": strconv.Itoa(updated.CurrentVersion)})
	return updated, nil
}

// AvailableTransitions lists the events the viewer may trigger on a visible
// journey right now.
func (s *Service) AvailableTransitions(ctx context.Context, viewer access.Viewer, journeyID id.JourneyID) ([]workflow.Event, error) {
	journey, err := s.Get(ctx, viewer, journeyID)
	if err != nil {
		return nil, err
	}
	return workflow.AvailableTransitions(journey.Status, viewer.Role, viewer.Domain), nil
}

// TransitionResult is the journey after a transition and the version that
// recorded it.
type TransitionResult struct {
	Journey  *models.Journey
	Version  *models.Version
	Previous workflow.Status
}

// Transition applies a workflow event. Reasons are checked before the state
// machine runs; on any error nothing is written.
func (s *Service) Transition(ctx context.Context, viewer access.Viewer, journeyID id.JourneyID, event workflow.Event, reason string) (*TransitionResult, error) {
	ctx, span := s.tracer.Start(ctx, "journey.Transition", trace.WithAttributes(
		attribute.String("journey.id", journeyID.String()),
		attribute.String("workflow.event", string(event)),
		attribute.String("rbac.role", string(viewer.Role)),
		attribute.String("rbac.domain", string(viewer.Domain)),
	))
	defer span.End()
	start := time.Now()

	result, err := s.transition(ctx, viewer, journeyID, event, strings.TrimSpace(reason))
	if s.metrics != nil {
		s.metrics.ObserveTransitionLatency(time.Since(start).Seconds())
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.recordDenial(ctx, viewer, journeyID, event, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("workflow.from", string(result.Previous)),
		attribute.String("workflow.to", string(result.Journey.Status)),
		attribute.Int("journey.version", result.Version.Number),
	)
	if s.metrics != nil {
		s.metrics.IncrementTransition(string(result.Previous), string(event), string(result.Journey.Status))
		s.metrics.VersionsAppended.Inc()
	}

	row, _ := workflow.Lookup(result.Previous, event)
	s.emit(ctx, viewer, audit.EventJourneyTransitioned, journeyID, row.Action,
		string(result.Previous), string(result.Journey.Status), result.Version.RejectionReason,
		map[string]string{
			"event":   string(event),
			"version": strconv.Itoa(result.Version.Number),
		})
	s.logger.InfoContext(ctx, "journey transitioned",
		"journey_id", journeyID.String(),
		"event", event,
		"from", result.Previous,
		"to", result.Journey.Status,
		"role", viewer.Role,
		"request_id", requestcontext.RequestID(ctx),
	)
	return result, nil
}

func (s *Service) transition(ctx context.Context, viewer access.Viewer, journeyID id.JourneyID, event workflow.Event, reason string) (*TransitionResult, error) {
	if !event.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown workflow event %q", event))
	}
	if workflow.RequiresReason(event) && reason == "" {
		return nil, dErrors.New(dErrors.CodeMissingReason, fmt.Sprintf("a reason is required to %s a journey", event))
	}

	var result *TransitionResult
	err := s.tx.RunInTx(ctx, journeyID.String(), func(ctx context.Context, store Store) error {
		current, err := store.FindByID(ctx, journeyID)
		if err != nil {
			return translateStoreErr(err, "failed to load journey")
		}
		if !access.CanSeeJourney(current, viewer) {
			return journeyNotFound()
		}

		to, err := workflow.ExecuteTransition(current.Status, event, viewer.Role, viewer.Domain)
		if err != nil {
			return err
		}

		next := current.Clone()
		version := next.NextVersion(to, event, viewer.UserID, requestcontext.Now(ctx))
		switch {
		case event == workflow.EventApprove:
			version.ApprovedBy = viewer.UserID
		case event.IsRejection():
			version.RejectedBy = viewer.UserID
			version.RejectionReason = reason
		}
		if err := next.Apply(version); err != nil {
			return err
		}
		if err := store.AppendVersion(ctx, next, version); err != nil {
			return translateStoreErr(err, "failed to save journey version")
		}
		result = &TransitionResult{Journey: next, Version: version, Previous: current.Status}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateSharing replaces the family sharing flags. Only the owner may.
func (s *Service) UpdateSharing(ctx context.Context, viewer access.Viewer, journeyID id.JourneyID, sharing models.Sharing) (*models.Journey, error) {
	if err := viewer.Require(rbac.ActionShare, rbac.ResourceJourney); err != nil {
		return nil, err
	}

	var updated *models.Journey
	err := s.tx.RunInTx(ctx, journeyID.String(), func(ctx context.Context, store Store) error {
		current, err := store.FindByID(ctx, journeyID)
		if err != nil {
			return translateStoreErr(err, "failed to load journey")
		}
		if !access.CanSeeJourney(current, viewer) {
			return journeyNotFound()
		}
		if current.OwnerID != viewer.UserID {
			return dErrors.New(dErrors.CodePermissionDenied, "only the owner can change sharing")
		}
		if err := store.UpdateSharing(ctx, journeyID, sharing); err != nil {
			return translateStoreErr(err, "failed to update sharing")
		}
		updated = current.Clone()
		updated.Sharing = sharing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, viewer, audit.EventJourneyShared, journeyID, rbac.ActionShare, "", "", "", map[string]string{
		"spouse":    strconv.FormatBool(sharing.Spouse),
		"heirs":     strconv.FormatBool(sharing.Heirs),
		"invisible": strconv.FormatBool(sharing.Invisible),
		"locked":    strconv.FormatBool(sharing.Locked),
	})
	return updated, nil
}

// Versions returns the full history of a visible journey, oldest first.
func (s *Service) Versions(ctx context.Context, viewer access.Viewer, journeyID id.JourneyID) ([]*models.Version, error) {
	if _, err := s.Get(ctx, viewer, journeyID); err != nil {
		return nil, err
	}
	versions, err := s.store.Versions(ctx, journeyID)
	if err != nil {
		return nil, translateStoreErr(err, "failed to load journey history")
	}
	return versions, nil
}

// Delete removes the journey and all its versions in one step. The owner may
// always delete; anyone else needs delete on journey.
func (s *Service) Delete(ctx context.Context, viewer access.Viewer, journeyID id.JourneyID) error {
	canDelete := viewer.Can(rbac.ActionDelete, rbac.ResourceJourney)

	var previous workflow.Status
	err := s.tx.RunInTx(ctx, journeyID.String(), func(ctx context.Context, store Store) error {
		current, err := store.FindByID(ctx, journeyID)
		if err != nil {
			return translateStoreErr(err, "failed to load journey")
		}
		if !access.CanSeeJourney(current, viewer) {
			return journeyNotFound()
		}
		if !canDelete && current.OwnerID != viewer.UserID {
			return dErrors.New(dErrors.CodePermissionDenied, "only the owner or a delete holder can delete a journey")
		}
		previous = current.Status
		if err := store.Delete(ctx, journeyID); err != nil {
			return translateStoreErr(err, "failed to delete journey")
		}
		return nil
	})
	if err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.JourneysDeleted.Inc()
	}

	s.emit(ctx, viewer, audit.EventJourneyDeleted, journeyID, rbac.ActionDelete, string(previous), "", "", nil)
	return nil
}

// DeleteByOwner removes every journey of one owner. Used by erasure, which
// performs its own authorization and audit.
func (s *Service) DeleteByOwner(ctx context.Context, ownerID id.UserID) (int, error) {
	n, err := s.store.DeleteByOwner(ctx, ownerID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete journeys")
	}
	if s.metrics != nil {
		s.metrics.JourneysDeleted.Add(float64(n))
	}
	return n, nil
}

func (s *Service) emit(ctx context.Context, viewer access.Viewer, name audit.EventName, journeyID id.JourneyID,
	action rbac.Action, previous, next, reason string, metadata map[string]string) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Name:          name,
		ResourceType:  rbac.ResourceJourney,
		ResourceID:    journeyID.String(),
		Action:        action,
		PreviousState: previous,
		NewState:      next,
		Reason:        reason,
		Metadata:      metadata,
	}.WithActor(viewer.Actor()))
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"event", name,
			"journey_id", journeyID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func (s *Service) recordDenial(ctx context.Context, viewer access.Viewer, journeyID id.JourneyID, event workflow.Event, err error) {
	var domainErr *dErrors.Error
	code := string(dErrors.CodeInternal)
	if errors.As(err, &domainErr) {
		code = string(domainErr.Code)
	}
	if s.metrics != nil {
		s.metrics.IncrementDenial(code)
	}
	s.logger.WarnContext(ctx, "journey transition rejected",
		"journey_id", journeyID.String(),
		"event", event,
		"role", viewer.Role,
		"domain", viewer.Domain,
		"code", code,
		"request_id", requestcontext.RequestID(ctx),
	)
}

func journeyNotFound() error {
	return dErrors.New(dErrors.CodeNotFound, "journey not found")
}

// translateStoreErr maps store sentinels to domain errors exactly once.
func translateStoreErr(err error, msg string) error {
	var domainErr *dErrors.Error
	switch {
	case errors.As(err, &domainErr):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return journeyNotFound()
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "journey was modified concurrently, reload and retry")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
