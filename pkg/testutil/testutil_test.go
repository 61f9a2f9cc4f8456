package testutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"elan/internal/rbac"
	dErrors "elan/pkg/domain-errors"
	"elan/pkg/platform/sentinel"
)

func TestRunConcurrentClassifies(t *testing.T) {
	outcomes := []error{
		nil,
		sentinel.ErrConflict,
		sentinel.ErrAlreadyUsed,
		dErrors.New(dErrors.CodeIllegalTransition, "no"),
		sentinel.ErrNotFound,
		dErrors.New(dErrors.CodeForbidden, "no"),
		errors.New("boom"),
	}
	res := RunConcurrent(len(outcomes), func(i int) error { return outcomes[i] })

	assert.Equal(t, int32(1), res.Successes)
	assert.Equal(t, int32(3), res.Conflicts)
	assert.Equal(t, int32(1), res.NotFounds)
	assert.Equal(t, int32(1), res.Denied)
	assert.Equal(t, int32(1), res.Errors)
	assert.Equal(t, int32(len(outcomes)), res.Total())
}

func TestViewerBuilder(t *testing.T) {
	v := NewViewer(rbac.RoleElanAdvisor).LinkedTo(TestIDs.UHNI).Scoped("j-1").Build()
	assert.Equal(t, rbac.DomainB2C, v.Domain)
	assert.Equal(t, TestIDs.UHNI, v.PrincipalID)
	assert.False(t, v.Scope.All)
	assert.True(t, v.Scope.Covers("j-1"))

	rm := NewViewer(rbac.RoleRelationshipManager).AtInstitution(TestIDs.Institution).WithClients(TestIDs.UHNI).Build()
	assert.Equal(t, rbac.DomainB2B, rm.Domain)
	assert.Equal(t, TestIDs.Institution, rm.InstitutionID)
	assert.Len(t, rm.AssignedClients, 1)

	all := NewViewer(rbac.RoleElanAdvisor).Scoped().Build()
	assert.True(t, all.Scope.All)
}
