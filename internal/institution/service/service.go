package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"errors"
	"log/slog"

	"elan/internal/access"
	"elan/internal/audit"
	"elan/internal/institution/metrics"
	"elan/internal/institution/models"
	"elan/internal/rbac"
	id "elan/pkg/domain"
	dErrors "elan/pkg/domain-errors"
	"elan/pkg/platform/sentinel"
	"elan/pkg/requestcontext"
)

// Store persists institutions.
// Error Contract:
// - CreateIfNameAvailable returns sentinel.ErrAlreadyUsed when the name is taken
// - FindByID and Update return sentinel.ErrNotFound for unknown ids
type Store interface {
	CreateIfNameAvailable(ctx context.Context, inst *models.Institution) error
	FindByID(ctx context.Context, institutionID id.InstitutionID) (*models.Institution, error)
	List(ctx context.Context) ([]*models.Institution, error)
	Update(ctx context.Context, inst *models.Institution) error
}

type Option func(*Service)

// Service manages the institutions b2b staff belong to.
type Service struct {
	store   Store
	auditor *audit.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewService(store Store, auditor *audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{store: store, auditor: auditor, logger: logger}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// Create registers an institution. Super admins only.
func (s *Service) Create(ctx context.Context, viewer access.Viewer, req *models.CreateRequest) (*models.Institution, error) {
	if err := requireSuperAdmin(viewer, rbac.ActionConfigure); err != nil {
		return nil, err
	}
	inst, err := models.NewInstitution(id.NewInstitutionID(), req.Name, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateIfNameAvailable(ctx, inst); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "institution name must be unique")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create institution")
	}
	if s.metrics != nil {
		s.metrics.InstitutionsCreated.Inc()
	}
	s.emit(ctx, viewer, audit.EventInstitutionCreated, inst, "", string(inst.Status))
	s.logger.InfoContext(ctx, "institution created",
		"institution_id", inst.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return inst, nil
}

// Get returns an institution to super admins and to its own members.
func (s *Service) Get(ctx context.Context, viewer access.Viewer, institutionID id.InstitutionID) (*models.Institution, error) {
	if err := viewer.Require(rbac.ActionRead, rbac.ResourceInstitution); err != nil {
		return nil, err
	}
	if viewer.Role != rbac.RoleSuperAdmin && viewer.InstitutionID != institutionID {
		return nil, institutionNotFound()
	}
	inst, err := s.store.FindByID(ctx, institutionID)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to load institution")
	}
	return inst, nil
}

// List returns every institution. Super admins only.
func (s *Service) List(ctx context.Context, viewer access.Viewer) ([]*models.Institution, error) {
	if err := requireSuperAdmin(viewer, rbac.ActionRead); err != nil {
		return nil, err
	}
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list institutions")
	}
	return all, nil
}

// Deactivate closes an institution to new invites.
func (s *Service) Deactivate(ctx context.Context, viewer access.Viewer, institutionID id.InstitutionID) (*models.Institution, error) {
	if err := requireSuperAdmin(viewer, rbac.ActionConfigure); err != nil {
		return nil, err
	}
	inst, err := s.store.FindByID(ctx, institutionID)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to load institution")
	}
	previous := inst.Status
	if err := inst.Deactivate(requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, inst); err != nil {
		return nil, wrapStoreErr(err, "failed to deactivate institution")
	}
	if s.metrics != nil {
		s.metrics.InstitutionsDeactivated.Inc()
	}
	s.emit(ctx, viewer, audit.EventInstitutionDeactivated, inst, string(previous), string(inst.Status))
	return inst, nil
}

// RequireActive fails unless the institution exists and is active.
func (s *Service) RequireActive(ctx context.Context, institutionID id.InstitutionID) error {
	inst, err := s.store.FindByID(ctx, institutionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeValidation, "institution does not exist")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load institution")
	}
	if !inst.IsActive() {
		return dErrors.New(dErrors.CodeConflict, "institution is inactive")
	}
	return nil
}

func requireSuperAdmin(viewer access.Viewer, action rbac.Action) error {
	if err := viewer.Require(action, rbac.ResourceInstitution); err != nil {
		return err
	}
	if viewer.Role != rbac.RoleSuperAdmin {
		return dErrors.New(dErrors.CodePermissionDenied, "only super admins manage institutions")
	}
	return nil
}

func (s *Service) emit(ctx context.Context, viewer access.Viewer, name audit.EventName, inst *models.Institution, previous, next string) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Name:          name,
		ResourceType:  rbac.ResourceInstitution,
		ResourceID:    inst.ID.String(),
		Action:        rbac.ActionConfigure,
		PreviousState: previous,
		NewState:      next,
		Metadata:      map[string]string{"name": inst.Name},
	}.WithActor(viewer.Actor()))
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"event", name,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func institutionNotFound() error {
	return dErrors.New(dErrors.CodeNotFound, "institution not found")
}

func wrapStoreErr(err error, msg string) error {
	var domainErr *dErrors.Error
	switch {
	case errors.As(err, &domainErr):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return institutionNotFound()
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
