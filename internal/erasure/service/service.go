package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Journeys Memories Scopes Directory

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"elan/internal/access"
	"elan/internal/audit"
	"elan/internal/erasure/metrics"
	"elan/internal/rbac"
	id "elan/pkg/domain"
	dErrors "elan/pkg/domain-errors"
	"elan/pkg/requestcontext"
)

// Journeys removes every journey of an owner together with its history.
type Journeys interface {
	DeleteByOwner(ctx context.Context, ownerID id.UserID) (int, error)
}

// Memories removes every memory of an owner.
type Memories interface {
	DeleteByOwner(ctx context.Context, ownerID id.UserID) (int, error)
}

// Scopes removes every visibility grant the user gave or received.
type Scopes interface {
	DeleteByUser(ctx context.Context, userID id.UserID) (int, error)
}

// Directory removes the user's directory entry.
type Directory interface {
	DeleteUser(ctx context.Context, userID id.UserID) error
}

const eraseTimeout = 30 * time.Second

type Option func(*Service)

// Service erases one user's personal data across every context. The audit
// trail is kept and gains one user_erased event.
type Service struct {
	journeys  Journeys
	memories  Memories
	scopes    Scopes
	directory Directory
	auditor   *audit.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewService(journeys Journeys, memories Memories, scopes Scopes, directory Directory,
	auditor *audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		journeys:  journeys,
		memories:  memories,
		scopes:    scopes,
		directory: directory,
		auditor:   auditor,
		logger:    logger,
	}
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

// Report counts what an erasure removed.
type Report struct {
	UserID   id.UserID
	Journeys int
	Memories int
	Grants   int
	// DirectoryEntry is false when the user was already gone, e.g. on a retry.
	DirectoryEntry bool
}

// EraseUser deletes everything owned by userID. Callers are the user
// themselves or a super admin. Erasure is idempotent: retrying after a
// partial failure finishes the job.
func (s *Service) EraseUser(ctx context.Context, viewer access.Viewer, userID id.UserID) (*Report, error) {
	if err := authorize(viewer, userID); err != nil {
		return nil, err
	}

	report, err := s.erase(ctx, userID)
	if err != nil {
		s.countOutcome("failed")
		s.logger.ErrorContext(ctx, "user erasure failed",
			"error", err,
			"user_id", userID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, err
	}
	s.countOutcome("erased")

	s.emit(ctx, viewer, report)
	s.logger.InfoContext(ctx, "user erased",
		"user_id", userID.String(),
		"journeys", report.Journeys,
		"memories", report.Memories,
		"grants", report.Grants,
		"request_id", requestcontext.RequestID(ctx),
	)
	return report, nil
}

func authorize(viewer access.Viewer, userID id.UserID) error {
	if viewer.UserID == userID {
		return nil
	}
	if err := viewer.Require(rbac.ActionDelete, rbac.ResourceUser); err != nil {
		return err
	}
	if viewer.Role != rbac.RoleSuperAdmin {
		return dErrors.New(dErrors.CodePermissionDenied, "only super admins erase other users")
	}
	return nil
}

// erase fans out one goroutine per context. Each writes only its own field
// of the report.
func (s *Service) erase(ctx context.Context, userID id.UserID) (*Report, error) {
	ctx, cancel := context.WithTimeout(ctx, eraseTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	report := &Report{UserID: userID}

	g.Go(func() error {
		n, err := s.step(ctx, "journeys", func(ctx context.Context) (int, error) {
			return s.journeys.DeleteByOwner(ctx, userID)
		})
		report.Journeys = n
		return err
	})
	g.Go(func() error {
		n, err := s.step(ctx, "memories", func(ctx context.Context) (int, error) {
			return s.memories.DeleteByOwner(ctx, userID)
		})
		report.Memories = n
		return err
	})
	g.Go(func() error {
		n, err := s.step(ctx, "visibility", func(ctx context.Context) (int, error) {
			return s.scopes.DeleteByUser(ctx, userID)
		})
		report.Grants = n
		return err
	})
	g.Go(func() error {
		n, err := s.step(ctx, "directory", func(ctx context.Context) (int, error) {
			err := s.directory.DeleteUser(ctx, userID)
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				return 0, nil
			}
			if err != nil {
				return 0, err
			}
			return 1, nil
		})
		report.DirectoryEntry = n == 1
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to erase user")
	}
	return report, nil
}

func (s *Service) step(ctx context.Context, name string, fn func(ctx context.Context) (int, error)) (int, error) {
	start := time.Now()
	n, err := fn(ctx)
	if s.metrics != nil {
		s.metrics.ObserveStep(name, time.Since(start))
		if err == nil {
			s.metrics.EntitiesErased.WithLabelValues(name).Add(float64(n))
		}
	}
	return n, err
}

func (s *Service) countOutcome(outcome string) {
	if s.metrics != nil {
		s.metrics.Erasures.WithLabelValues(outcome).Inc()
	}
}

func (s *Service) emit(ctx context.Context, viewer access.Viewer, report *Report) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Name:         audit.EventUserErased,
		ResourceType: rbac.ResourceUser,
		ResourceID:   report.UserID.String(),
		Action:       rbac.ActionDelete,
		Metadata: map[string]string{
			"journeys": strconv.Itoa(report.Journeys),
			"memories": strconv.Itoa(report.Memories),
			"grants":   strconv.Itoa(report.Grants),
		},
	}.WithActor(viewer.Actor()))
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"event", audit.EventUserErased,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}
