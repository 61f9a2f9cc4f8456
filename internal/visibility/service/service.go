package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store Advisors

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"elan/internal/access"
	"elan/internal/audit"
	"elan/internal/rbac"
	"elan/internal/visibility/metrics"
	"elan/internal/visibility/models"
	id "elan/pkg/domain"
	dErrors "elan/pkg/domain-errors"
	"elan/pkg/platform/sentinel"
	"elan/pkg/requestcontext"
)

// Store persists grants.
// Error Contract:
// - Find and Update return sentinel.ErrNotFound when the pair has no grant
// - Save returns sentinel.ErrConflict when the pair already has one
type Store interface {
	Save(ctx context.Context, grant *models.Grant) error
	Update(ctx context.Context, grant *models.Grant) error
	Find(ctx context.Context, ownerID, advisorID id.UserID) (*models.Grant, error)
	ListByOwner(ctx context.Context, ownerID id.UserID) ([]*models.Grant, error)
	DeleteByUser(ctx context.Context, userID id.UserID) (int, error)
}

// Advisors confirms that a user is an advisor linked to the owner. Returns a
// domain error when not.
type Advisors interface {
	RequireLinkedAdvisor(ctx context.Context, ownerID, advisorID id.UserID) error
}

type Option func(*Service)

// Service lets owners decide what their advisors may see.
type Service struct {
	store    Store
	advisors Advisors
	auditor  *audit.Publisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
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

// WithAdvisors enables checking that grantees are linked advisors.
func WithAdvisors(a Advisors) Option {
	return func(s *Service) {
		s.advisors = a
	}
}

// Grant gives an advisor visibility, replacing any earlier grant to them.
func (s *Service) Grant(ctx context.Context, viewer access.Viewer, req *models.GrantRequest) (*models.Grant, error) {
	if err := s.requireOwner(viewer); err != nil {
		return nil, err
	}
	advisorID, err := id.ParseUserID(req.AdvisorID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "advisor_id must be a valid user id")
	}
	if s.advisors != nil {
		if err := s.advisors.RequireLinkedAdvisor(ctx, viewer.UserID, advisorID); err != nil {
			return nil, err
		}
	}

	now := requestcontext.Now(ctx)
	existing, err := s.store.Find(ctx, viewer.UserID, advisorID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read visibility grant")
	}

	var grant *models.Grant
	if existing != nil {
		wasActive := existing.IsActive()
		fresh, err := models.NewGrant(existing.ID, viewer.UserID, advisorID, req.All, req.EntityIDs, now)
		if err != nil {
			return nil, err
		}
		if err := s.store.Update(ctx, fresh); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to renew visibility grant")
		}
		if !wasActive && s.metrics != nil {
			s.metrics.ActiveGrants.Inc()
		}
		grant = fresh
	} else {
		grant, err = models.NewGrant(id.NewScopeID(), viewer.UserID, advisorID, req.All, req.EntityIDs, now)
		if err != nil {
			return nil, err
		}
		if err := s.store.Save(ctx, grant); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return nil, dErrors.New(dErrors.CodeConflict, "visibility grant changed concurrently, retry")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save visibility grant")
		}
		if s.metrics != nil {
			s.metrics.ActiveGrants.Inc()
		}
	}

	kind := "list"
	if grant.All {
		kind = "all"
	}
	if s.metrics != nil {
		s.metrics.GrantsIssued.WithLabelValues(kind).Inc()
	}
	s.emit(ctx, viewer, audit.EventVisibilityGranted, advisorID, map[string]string{
		"scope":        kind,
		"entity_count": strconv.Itoa(len(grant.EntityIDs)),
	})
	return grant, nil
}

// Revoke clears an advisor's visibility. Revoking twice is a no-op.
func (s *Service) Revoke(ctx context.Context, viewer access.Viewer, advisorID id.UserID) (*models.Grant, error) {
	if err := s.requireOwner(viewer); err != nil {
		return nil, err
	}
	grant, err := s.store.Find(ctx, viewer.UserID, advisorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no visibility grant for this advisor")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read visibility grant")
	}
	if !grant.IsActive() {
		return grant, nil
	}

	now := requestcontext.Now(ctx)
	grant.RevokedAt = &now
	if err := s.store.Update(ctx, grant); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke visibility grant")
	}
	if s.metrics != nil {
		s.metrics.GrantsRevoked.Inc()
		s.metrics.ActiveGrants.Dec()
	}
	s.emit(ctx, viewer, audit.EventVisibilityRevoked, advisorID, nil)
	return grant, nil
}

// List returns the caller's grants, active and revoked.
func (s *Service) List(ctx context.Context, viewer access.Viewer) ([]*models.Grant, error) {
	if err := s.requireOwner(viewer); err != nil {
		return nil, err
	}
	grants, err := s.store.ListByOwner(ctx, viewer.UserID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list visibility grants")
	}
	return grants, nil
}

// Scope returns what advisorID may see of ownerID's entities. No grant means
// an empty scope.
func (s *Service) Scope(ctx context.Context, ownerID, advisorID id.UserID) (access.AdvisorScope, error) {
	grant, err := s.store.Find(ctx, ownerID, advisorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return access.AdvisorScope{}, nil
		}
		return access.AdvisorScope{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read visibility grant")
	}
	return grant.Scope(), nil
}

// DeleteByUser removes every grant the user gave or received. Used by erasure.
func (s *Service) DeleteByUser(ctx context.Context, userID id.UserID) (int, error) {
	n, err := s.store.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete visibility grants")
	}
	return n, nil
}

func (s *Service) requireOwner(viewer access.Viewer) error {
	if err := viewer.Require(rbac.ActionShare, rbac.ResourceJourney); err != nil {
		return err
	}
	if !viewer.Role.IsOwner() {
		return dErrors.New(dErrors.CodePermissionDenied, "only owners manage advisor visibility")
	}
	return nil
}

func (s *Service) emit(ctx context.Context, viewer access.Viewer, name audit.EventName, advisorID id.UserID, metadata map[string]string) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Name:         name,
		ResourceType: rbac.ResourceUser,
		ResourceID:   advisorID.String(),
		Action:       rbac.ActionShare,
		Metadata:     metadata,
	}.WithActor(viewer.Actor()))
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"event", name,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}
