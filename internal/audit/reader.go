package audit

import (
	"context"

	"elan/internal/rbac"
	id "elan/pkg/domain"
	dErrors "elan/pkg/domain-errors"
)

// Reader serves the audit trail to callers holding read on audit.
type Reader struct {
	store Store
}

func NewReader(store Store) *Reader {
	return &Reader{store: store}
}

func (r *Reader) ListByResource(ctx context.Context, actor rbac.Actor, resource rbac.Resource, resourceID string) ([]Event, error) {
	if err := actor.Require(rbac.ActionRead, rbac.ResourceAudit); err != nil {
		return nil, err
	}
	if !resource.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown resource type")
	}
	events, err := r.store.ListByResource(ctx, resource, resourceID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read audit trail")
	}
	return events, nil
}

func (r *Reader) ListByActor(ctx context.Context, actor rbac.Actor, actorID id.UserID) ([]Event, error) {
	if err := actor.Require(rbac.ActionRead, rbac.ResourceAudit); err != nil {
		return nil, err
	}
	events, err := r.store.ListByActor(ctx, actorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read audit trail")
	}
	return events, nil
}
