// Package rbac holds the platform's permission matrix and the resolver that
// answers "may this role perform this action on this resource in this domain".
//
// The matrix is data compiled into the binary. Resolution is a pure function:
// no I/O, no ambient state, deny-by-default for every tuple not listed.
package rbac

import (
	"fmt"
	"strings"

	id "elan/pkg/domain"
	dErrors "elan/pkg/domain-errors"
)

// Domain is the portal partition a request is served from.
type Domain string

const (
	DomainB2C   Domain = "b2c"
	DomainB2B   Domain = "b2b"
	DomainAdmin Domain = "admin"
)

// AllDomains lists every domain context in a stable order.
var AllDomains = []Domain{DomainB2C, DomainB2B, DomainAdmin}

func (d Domain) IsValid() bool {
	switch d {
	case DomainB2C, DomainB2B, DomainAdmin:
		return true
	}
	return false
}

func (d Domain) String() string { return string(d) }

// Role is one of the eleven platform roles. A role belongs to exactly one
// home domain and is fixed once the user accepts their invite.
type Role string

const (
	// B2C
	RoleUHNI        Role = "uhni"
	RoleSpouse      Role = "spouse"
	RoleLegacyHeir  Role = "legacy_heir"
	RoleElanAdvisor Role = "elan_advisor"

	// B2B
	RoleRelationshipManager  Role = "relationship_manager"
	RolePrivateBanker        Role = "private_banker"
	RoleFamilyOfficeDirector Role = "family_office_director"
	RoleComplianceOfficer    Role = "compliance_officer"
	RoleInstitutionalAdmin   Role = "institutional_admin"
	RoleUHNIPortal           Role = "uhni_portal"

	// Admin
	RoleSuperAdmin Role = "super_admin"
)

// AllRoles lists every role in a stable order.
var AllRoles = []Role{
	RoleUHNI, RoleSpouse, RoleLegacyHeir, RoleElanAdvisor,
	RoleRelationshipManager, RolePrivateBanker, RoleFamilyOfficeDirector,
	RoleComplianceOfficer, RoleInstitutionalAdmin, RoleUHNIPortal,
	RoleSuperAdmin,
}

// Domain returns the role's home domain, or "" for unknown roles.
func (r Role) Domain() Domain {
	switch r {
	case RoleUHNI, RoleSpouse, RoleLegacyHeir, RoleElanAdvisor:
		return DomainB2C
	case RoleRelationshipManager, RolePrivateBanker, RoleFamilyOfficeDirector,
		RoleComplianceOfficer, RoleInstitutionalAdmin, RoleUHNIPortal:
		return DomainB2B
	case RoleSuperAdmin:
		return DomainAdmin
	}
	return ""
}

func (r Role) IsValid() bool { return r.Domain() != "" }

func (r Role) String() string { return string(r) }

// IsOwner reports whether the role holds entities of its own.
func (r Role) IsOwner() bool {
	return r == RoleUHNI || r == RoleUHNIPortal
}

// IsSharedViewer reports whether the role only sees what an owner shared.
func (r Role) IsSharedViewer() bool {
	return r == RoleSpouse || r == RoleLegacyHeir
}

// IsInstitutional reports whether the role is scoped to an institution.
func (r Role) IsInstitutional() bool {
	return r.Domain() == DomainB2B && r != RoleUHNIPortal
}

// Resource names a protectable entity type.
type Resource string

const (
	ResourceJourney     Resource = "journey"
	ResourceClient      Resource = "client"
	ResourceVault       Resource = "vault"
	ResourceRisk        Resource = "risk"
	ResourceContract    Resource = "contract"
	ResourceInstitution Resource = "institution"
	ResourceMemory      Resource = "memory"
	ResourceAudit       Resource = "audit"
	ResourceUser        Resource = "user"
	ResourceReport      Resource = "report"
	ResourceSettings    Resource = "settings"
	ResourceMessage     Resource = "message"
)

// AllResources lists every resource in a stable order.
var AllResources = []Resource{
	ResourceJourney, ResourceClient, ResourceVault, ResourceRisk,
	ResourceContract, ResourceInstitution, ResourceMemory, ResourceAudit,
	ResourceUser, ResourceReport, ResourceSettings, ResourceMessage,
}

func (r Resource) IsValid() bool {
	for _, known := range AllResources {
		if r == known {
			return true
		}
	}
	return false
}

// Action is a verb a role may be granted on a resource.
type Action string

const (
	ActionRead      Action = "read"
	ActionWrite     Action = "write"
	ActionApprove   Action = "approve"
	ActionConfigure Action = "configure"
	ActionShare     Action = "share"
	ActionDelete    Action = "delete"
	ActionExport    Action = "export"
)

// AllActions lists every action in a stable order.
var AllActions = []Action{
	ActionRead, ActionWrite, ActionApprove, ActionConfigure,
	ActionShare, ActionDelete, ActionExport,
}

func (a Action) IsValid() bool {
	for _, known := range AllActions {
		if a == known {
			return true
		}
	}
	return false
}

// ParseRole validates a role name from an untrusted source.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown role %q", s))
	}
	return r, nil
}

// ParseDomain validates a domain context from an untrusted source.
func ParseDomain(s string) (Domain, error) {
	d := Domain(strings.ToLower(strings.TrimSpace(s)))
	if !d.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown domain context %q", s))
	}
	return d, nil
}

// ParseResource validates a resource name from an untrusted source.
func ParseResource(s string) (Resource, error) {
	r := Resource(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown resource %q", s))
	}
	return r, nil
}

// ParseAction validates an action name from an untrusted source.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if !a.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown action %q", s))
	}
	return a, nil
}

// Actor is the caller of a governed operation. It is always passed
// explicitly; nothing in this module reads the current role from context.
type Actor struct {
	UserID        id.UserID
	Role          Role
	Domain        Domain
	InstitutionID id.InstitutionID
}

// Can reports whether the actor's role may perform action on resource in
// the actor's current domain context.
func (a Actor) Can(action Action, resource Resource) bool {
	return HasPermission(a.Role, action, resource, a.Domain)
}

// Require is Can with a PermissionDenied error.
func (a Actor) Require(action Action, resource Resource) error {
	return Require(a.Role, action, resource, a.Domain)
}
