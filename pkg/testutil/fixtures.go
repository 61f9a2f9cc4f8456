// Package testutil holds fixtures shared by service and handler tests.
package testutil

import (
	"github.com/google/uuid"

	"elan/internal/access"
	"elan/internal/rbac"
	id "elan/pkg/domain"
)

// TestIDs are fixed identifiers for tests that compare rendered output.
var TestIDs = struct {
	UHNI        id.UserID
	Spouse      id.UserID
	Advisor     id.UserID
	RM          id.UserID
	Institution id.InstitutionID
}{
	UHNI:        id.UserID(uuid.MustParse("11111111-1111-1111-1111-111111111111")),
	Spouse:      id.UserID(uuid.MustParse("22222222-2222-2222-2222-222222222222")),
	Advisor:     id.UserID(uuid.MustParse("33333333-3333-3333-3333-333333333333")),
	RM:          id.UserID(uuid.MustParse("44444444-4444-4444-4444-444444444444")),
	Institution: id.InstitutionID(uuid.MustParse("aaaa0000-0000-0000-0000-000000000001")),
}

// ViewerBuilder builds access.Viewer values for tests. The domain defaults to
// the role's home domain and the user id to a fresh one.
type ViewerBuilder struct {
	viewer access.Viewer
}

func NewViewer(role rbac.Role) *ViewerBuilder {
	return &ViewerBuilder{viewer: access.Viewer{
		UserID: id.NewUserID(),
		Role:   role,
		Domain: role.Domain(),
	}}
}

func (b *ViewerBuilder) WithID(userID id.UserID) *ViewerBuilder {
	b.viewer.UserID = userID
	return b
}

func (b *ViewerBuilder) InDomain(domain rbac.Domain) *ViewerBuilder {
	b.viewer.Domain = domain
	return b
}

// LinkedTo sets the UHNI a family member or advisor belongs to.
func (b *ViewerBuilder) LinkedTo(principal id.UserID) *ViewerBuilder {
	b.viewer.PrincipalID = principal
	return b
}

func (b *ViewerBuilder) AtInstitution(institutionID id.InstitutionID) *ViewerBuilder {
	b.viewer.InstitutionID = institutionID
	return b
}

func (b *ViewerBuilder) WithClients(clients ...id.UserID) *ViewerBuilder {
	b.viewer.AssignedClients = append(b.viewer.AssignedClients, clients...)
	return b
}

// Scoped sets an advisor's visibility; no ids means everything.
func (b *ViewerBuilder) Scoped(entityIDs ...string) *ViewerBuilder {
	b.viewer.Scope = access.AdvisorScope{All: len(entityIDs) == 0, EntityIDs: entityIDs}
	return b
}

func (b *ViewerBuilder) Build() access.Viewer {
	v := b.viewer
	v.AssignedClients = append([]id.UserID(nil), v.AssignedClients...)
	return v
}
