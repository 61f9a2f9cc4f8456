package audit

import (
	"context"

	"elan/internal/rbac"
	id "elan/pkg/domain"
)

// Store persists audit events. Lists return events in append order.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByResource(ctx context.Context, resource rbac.Resource, resourceID string) ([]Event, error)
	ListByActor(ctx context.Context, actorID id.UserID) ([]Event, error)
}
