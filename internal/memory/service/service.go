package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"elan/internal/access"
	"elan/internal/audit"
	"elan/internal/memory/models"
	"elan/internal/rbac"
	id "elan/pkg/domain"
	dErrors "elan/pkg/domain-errors"
	"elan/pkg/platform/sentinel"
	"elan/pkg/requestcontext"
)

// Store defines the persistence interface for memories.
// Error Contract:
// - FindByID, UpdateSharing and Delete return sentinel.ErrNotFound for unknown ids
// - Save returns sentinel.ErrConflict for a duplicate id
type Store interface {
	Save(ctx context.Context, memory *models.Memory) error
	FindByID(ctx context.Context, memoryID id.MemoryID) (*models.Memory, error)
	List(ctx context.Context) ([]*models.Memory, error)
	UpdateSharing(ctx context.Context, memoryID id.MemoryID, sharing models.Sharing) error
	Delete(ctx context.Context, memoryID id.MemoryID) error
	DeleteByOwner(ctx context.Context, ownerID id.UserID) (int, error)
}

// Service manages the memory vault of UHNI owners.
type Service struct {
	store   Store
	auditor *audit.Publisher
	logger  *slog.Logger
}

func NewService(store Store, auditor *audit.Publisher, logger *slog.Logger) *Service {
	return &Service{store: store, auditor: auditor, logger: logger}
}

// Create stores a memory owned by the caller.
func (s *Service) Create(ctx context.Context, viewer access.Viewer, req *models.CreateRequest) (*models.Memory, error) {
	if err := viewer.Require(rbac.ActionWrite, rbac.ResourceMemory); err != nil {
		return nil, err
	}
	if !viewer.Role.IsOwner() {
		return nil, dErrors.New(dErrors.CodePermissionDenied, "only owners keep memories")
	}

	now := requestcontext.Now(ctx)
	memory := &models.Memory{
		ID:            id.NewMemoryID(),
		OwnerID:       viewer.UserID,
		InstitutionID: viewer.InstitutionID,
		Title:         req.Title,
		Body:          req.Body,
		Sharing:       req.Sharing,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Save(ctx, memory); err != nil {
		return nil, translateStoreErr(err, "failed to save memory")
	}

	s.emit(ctx, viewer, audit.EventMemoryCreated, memory.ID, rbac.ActionWrite, nil)
	return memory, nil
}

// Get returns a memory visible to the viewer. Invisible memories look missing.
func (s *Service) Get(ctx context.Context, viewer access.Viewer, memoryID id.MemoryID) (*models.Memory, error) {
	memory, err := s.store.FindByID(ctx, memoryID)
	if err != nil {
		return nil, translateStoreErr(err, "failed to load memory")
	}
	if !access.CanSeeMemory(memory, viewer) {
		return nil, memoryNotFound()
	}
	return memory, nil
}

// List returns every memory visible to the viewer.
func (s *Service) List(ctx context.Context, viewer access.Viewer) ([]*models.Memory, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list memories")
	}
	return access.FilterMemories(all, viewer), nil
}

// UpdateSharing replaces the family sharing flags. Only the owner may.
func (s *Service) UpdateSharing(ctx context.Context, viewer access.Viewer, memoryID id.MemoryID, sharing models.Sharing) (*models.Memory, error) {
	if err := viewer.Require(rbac.ActionShare, rbac.ResourceMemory); err != nil {
		return nil, err
	}
	memory, err := s.ownedBy(ctx, viewer, memoryID)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateSharing(ctx, memoryID, sharing); err != nil {
		return nil, translateStoreErr(err, "failed to update sharing")
	}
	memory.Sharing = sharing

	s.emit(ctx, viewer, audit.EventMemoryShared, memoryID, rbac.ActionShare, map[string]string{
		"spouse":    strconv.FormatBool(sharing.Spouse),
		"heirs":     strconv.FormatBool(sharing.Heirs),
		"invisible": strconv.FormatBool(sharing.Invisible),
		"locked":    strconv.FormatBool(sharing.Locked),
	})
	return memory, nil
}

// Delete removes a memory. Only the owner may.
func (s *Service) Delete(ctx context.Context, viewer access.Viewer, memoryID id.MemoryID) error {
	if err := viewer.Require(rbac.ActionDelete, rbac.ResourceMemory); err != nil {
		return err
	}
	if _, err := s.ownedBy(ctx, viewer, memoryID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, memoryID); err != nil {
		return translateStoreErr(err, "failed to delete memory")
	}
	s.emit(ctx, viewer, audit.EventMemoryDeleted, memoryID, rbac.ActionDelete, nil)
	return nil
}

// DeleteByOwner removes every memory of one owner. Used by erasure.
func (s *Service) DeleteByOwner(ctx context.Context, ownerID id.UserID) (int, error) {
	n, err := s.store.DeleteByOwner(ctx, ownerID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete memories")
	}
	return n, nil
}

func (s *Service) ownedBy(ctx context.Context, viewer access.Viewer, memoryID id.MemoryID) (*models.Memory, error) {
	memory, err := s.Get(ctx, viewer, memoryID)
	if err != nil {
		return nil, err
	}
	if memory.OwnerID != viewer.UserID {
		return nil, dErrors.New(dErrors.CodePermissionDenied, "only the owner can change a memory")
	}
	return memory, nil
}

func (s *Service) emit(ctx context.Context, viewer access.Viewer, name audit.EventName, memoryID id.MemoryID, action rbac.Action, metadata map[string]string) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Name:         name,
		ResourceType: rbac.ResourceMemory,
		ResourceID:   memoryID.String(),
		Action:       action,
		Metadata:     metadata,
	}.WithActor(viewer.Actor()))
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"event", name,
			"memory_id", memoryID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func memoryNotFound() error {
	return dErrors.New(dErrors.CodeNotFound, "memory not found")
}

func translateStoreErr(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return memoryNotFound()
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "memory already exists")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
