package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "elan/pkg/domain-errors"
)

func TestRoleDomain(t *testing.T) {
	assert.Equal(t, DomainB2C, RoleSpouse.Domain())
	assert.Equal(t, DomainB2B, RoleUHNIPortal.Domain())
	assert.Equal(t, DomainAdmin, RoleSuperAdmin.Domain())
	assert.Equal(t, Domain(""), Role("ghost").Domain())
	assert.Len(t, AllRoles, 11)
}

func TestRoleClassifiers(t *testing.T) {
	assert.True(t, RoleUHNIPortal.IsOwner())
	assert.True(t, RoleLegacyHeir.IsSharedViewer())
	assert.True(t, RoleComplianceOfficer.IsInstitutional())
	assert.False(t, RoleUHNIPortal.IsInstitutional())
	assert.False(t, RoleElanAdvisor.IsInstitutional())
}

func TestParse(t *testing.T) {
	role, err := ParseRole(" Private_Banker ")
	require.NoError(t, err)
	assert.Equal(t, RolePrivateBanker, role)

	_, err = ParseRole("butler")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	domain, err := ParseDomain("B2B")
	require.NoError(t, err)
	assert.Equal(t, DomainB2B, domain)

	_, err = ParseDomain("b2x")
	require.Error(t, err)

	resource, err := ParseResource("memory")
	require.NoError(t, err)
	assert.Equal(t, ResourceMemory, resource)

	_, err = ParseAction("fly")
	require.Error(t, err)
}

func TestActorCan(t *testing.T) {
	advisor := Actor{Role: RoleElanAdvisor, Domain: DomainB2C}
	assert.True(t, advisor.Can(ActionApprove, ResourceJourney))
	require.NoError(t, advisor.Require(ActionRead, ResourceMemory))

	misplaced := Actor{Role: RoleElanAdvisor, Domain: DomainB2B}
	assert.False(t, misplaced.Can(ActionRead, ResourceJourney))
	assert.True(t, dErrors.HasCode(misplaced.Require(ActionRead, ResourceJourney), dErrors.CodeForbidden))
}
