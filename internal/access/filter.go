package access

import (
	journey "elan/internal/journey/models"
	memory "elan/internal/memory/models"
	"elan/internal/rbac"
	id "elan/pkg/domain"
)

// subject is the projection of an entity the relationship rules look at.
type subject struct {
	entityID      string
	ownerID       id.UserID
	institutionID id.InstitutionID
	assignedRM    id.UserID
	spouse        bool
	heirs         bool
	invisible     bool
	locked        bool
}

func journeySubject(j *journey.Journey) subject {
	return subject{
		entityID:      j.ID.String(),
		ownerID:       j.OwnerID,
		institutionID: j.InstitutionID,
		assignedRM:    j.AssignedRM,
		spouse:        j.Sharing.Spouse,
		heirs:         j.Sharing.Heirs,
		invisible:     j.Sharing.Invisible,
		locked:        j.Sharing.Locked,
	}
}

func memorySubject(m *memory.Memory) subject {
	return subject{
		entityID:      m.ID.String(),
		ownerID:       m.OwnerID,
		institutionID: m.InstitutionID,
		spouse:        m.Sharing.Spouse,
		heirs:         m.Sharing.Heirs,
		invisible:     m.Sharing.Invisible,
		locked:        m.Sharing.Locked,
	}
}

// related applies the relationship rules for the viewer's role. The read
// gate is checked by the callers.
func related(v Viewer, s subject) bool {
	if v.UserID.IsNil() {
		return false
	}
	switch v.Role {
	case rbac.RoleUHNI, rbac.RoleUHNIPortal:
		return s.ownerID == v.UserID
	case rbac.RoleSpouse:
		return linked(v, s) && s.spouse && !s.invisible
	case rbac.RoleLegacyHeir:
		return linked(v, s) && s.heirs && !s.invisible && !s.locked
	case rbac.RoleElanAdvisor:
		return linked(v, s) && v.Scope.Covers(s.entityID)
	case rbac.RoleRelationshipManager, rbac.RolePrivateBanker:
		if !s.assignedRM.IsNil() && s.assignedRM == v.UserID {
			return true
		}
		return v.IsAssigned(s.ownerID)
	case rbac.RoleFamilyOfficeDirector, rbac.RoleComplianceOfficer, rbac.RoleInstitutionalAdmin:
		return !v.InstitutionID.IsNil() && s.institutionID == v.InstitutionID
	case rbac.RoleSuperAdmin:
		return true
	}
	return false
}

// unscoped is an advisor whose principal granted nothing yet.
func unscoped(v Viewer) bool {
	return v.Role == rbac.RoleElanAdvisor && v.Scope.IsEmpty()
}

func linked(v Viewer, s subject) bool {
	return !v.PrincipalID.IsNil() && s.ownerID == v.PrincipalID
}

// CanSeeJourney reports whether a single journey is visible to v.
func CanSeeJourney(j *journey.Journey, v Viewer) bool {
	if j == nil || !v.Can(rbac.ActionRead, rbac.ResourceJourney) {
		return false
	}
	return related(v, journeySubject(j))
}

// CanSeeMemory reports whether a single memory is visible to v.
func CanSeeMemory(m *memory.Memory, v Viewer) bool {
	if m == nil || !v.Can(rbac.ActionRead, rbac.ResourceMemory) {
		return false
	}
	return related(v, memorySubject(m))
}

// FilterJourneys returns the journeys visible to v in input order. The input
// slice is not modified.
func FilterJourneys(journeys []*journey.Journey, v Viewer) []*journey.Journey {
	out := make([]*journey.Journey, 0, len(journeys))
	if !v.Can(rbac.ActionRead, rbac.ResourceJourney) || unscoped(v) {
		return out
	}
	for _, j := range journeys {
		if j != nil && related(v, journeySubject(j)) {
			out = append(out, j)
		}
	}
	return out
}

// FilterMemories returns the memories visible to v in input order. The input
// slice is not modified.
func FilterMemories(memories []*memory.Memory, v Viewer) []*memory.Memory {
	out := make([]*memory.Memory, 0, len(memories))
	if !v.Can(rbac.ActionRead, rbac.ResourceMemory) || unscoped(v) {
		return out
	}
	for _, m := range memories {
		if m != nil && related(v, memorySubject(m)) {
			out = append(out, m)
		}
	}
	return out
}
