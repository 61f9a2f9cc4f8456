package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elan/internal/rbac"
	id "elan/pkg/domain"
	dErrors "elan/pkg/domain-errors"
)

func TestReader(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, Event{ID: "1", ResourceType: rbac.ResourceJourney, ResourceID: "j"}))
	reader := NewReader(store)

	t.Run("compliance officer reads trail", func(t *testing.T) {
		actor := rbac.Actor{UserID: id.NewUserID(), Role: rbac.RoleComplianceOfficer, Domain: rbac.DomainB2B}
		events, err := reader.ListByResource(ctx, actor, rbac.ResourceJourney, "j")
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("uhni is denied", func(t *testing.T) {
		actor := rbac.Actor{UserID: id.NewUserID(), Role: rbac.RoleUHNI, Domain: rbac.DomainB2C}
		_, err := reader.ListByResource(ctx, actor, rbac.ResourceJourney, "j")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodePermissionDenied))

		_, err = reader.ListByActor(ctx, actor, actor.UserID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})

	t.Run("unknown resource type", func(t *testing.T) {
		actor := rbac.Actor{UserID: id.NewUserID(), Role: rbac.RoleSuperAdmin, Domain: rbac.DomainAdmin}
		_, err := reader.ListByResource(ctx, actor, "yacht", "j")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}
