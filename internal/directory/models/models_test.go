package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elan/internal/rbac"
	id "elan/pkg/domain"
	dErrors "elan/pkg/domain-errors"
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestNewInvite(t *testing.T) {
	t.Run("family invites name a principal", func(t *testing.T) {
		_, err := NewInvite(id.NewInviteID(), "a@b.com", rbac.RoleSpouse, id.UserID{}, id.InstitutionID{}, "hash", id.NewUserID(), now, DefaultInviteTTL)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("institutional invites name an institution", func(t *testing.T) {
		_, err := NewInvite(id.NewInviteID(), "a@b.com", rbac.RoleRelationshipManager, id.UserID{}, id.InstitutionID{}, "hash", id.NewUserID(), now, DefaultInviteTTL)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("email is normalized and expiry follows the ttl", func(t *testing.T) {
		inv, err := NewInvite(id.NewInviteID(), " Ana@Example.COM ", rbac.RoleUHNI, id.UserID{}, id.InstitutionID{}, "hash", id.NewUserID(), now, DefaultInviteTTL)
		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", inv.Email)
		assert.Equal(t, now.Add(7*24*time.Hour), inv.ExpiresAt)
	})
}

func TestInviteAccept(t *testing.T) {
	newInvite := func() *Invite {
		inv, err := NewInvite(id.NewInviteID(), "a@b.com", rbac.RoleUHNI, id.UserID{}, id.InstitutionID{}, "hash", id.NewUserID(), now, time.Hour)
		require.NoError(t, err)
		return inv
	}

	t.Run("expired", func(t *testing.T) {
		inv := newInvite()
		err := inv.Accept(id.NewUserID(), now.Add(time.Hour))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.False(t, inv.IsAccepted())
	})

	t.Run("single use", func(t *testing.T) {
		inv := newInvite()
		userID := id.NewUserID()
		require.NoError(t, inv.Accept(userID, now.Add(time.Minute)))
		assert.Equal(t, userID, inv.AcceptedBy)
		err := inv.Accept(id.NewUserID(), now.Add(2*time.Minute))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func TestInviteCode(t *testing.T) {
	inviteID := id.NewInviteID()
	code := FormatCode(inviteID, "s3cret-_x")

	parsedID, secret, err := ParseCode(code)
	require.NoError(t, err)
	assert.Equal(t, inviteID, parsedID)
	assert.Equal(t, "s3cret-_x", secret)

	for _, bad := range []string{"", "nodot", inviteID.String() + ".", "not-a-uuid.secret"} {
		_, _, err := ParseCode(bad)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), bad)
	}
}

func TestIssueInviteRequest(t *testing.T) {
	req := &IssueInviteRequest{Email: "  Ana@Example.com ", Role: " Spouse "}
	req.Sanitize()
	req.Normalize()
	require.NoError(t, req.Validate())
	assert.Equal(t, rbac.RoleSpouse, req.ParsedRole())
	assert.Equal(t, "ana@example.com", req.Email)

	bad := &IssueInviteRequest{Email: "nope", Role: "uhni"}
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email must be a valid email")

	unknown := &IssueInviteRequest{Email: "a@b.com", Role: "butler"}
	assert.True(t, dErrors.HasCode(unknown.Validate(), dErrors.CodeValidation))
}

func TestAssignClientsRequest(t *testing.T) {
	a, b := id.NewUserID(), id.NewUserID()
	req := &AssignClientsRequest{ClientIDs: []string{" " + a.String(), b.String(), a.String()}}
	req.Sanitize()
	require.NoError(t, req.Validate())
	assert.Equal(t, []id.UserID{a, b}, req.ParsedClientIDs())

	bad := &AssignClientsRequest{ClientIDs: []string{"x"}}
	assert.True(t, dErrors.HasCode(bad.Validate(), dErrors.CodeValidation))
}
