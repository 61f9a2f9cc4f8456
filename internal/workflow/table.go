package workflow

import (
	"slices"

	"elan/internal/rbac"
)

// Transition is one row of the governance table.
type Transition struct {
	From   Status
	Event  Event
	To     Status
	Action rbac.Action // matrix action on journey the actor must also hold
	Roles  map[rbac.Domain][]rbac.Role
}

// Allows reports whether role acting in domain is listed for this row.
func (t Transition) Allows(role rbac.Role, domain rbac.Domain) bool {
	return slices.Contains(t.Roles[domain], role)
}

var (
	submitters = map[rbac.Domain][]rbac.Role{
		rbac.DomainB2C: {rbac.RoleUHNI, rbac.RoleElanAdvisor},
		rbac.DomainB2B: {rbac.RoleUHNIPortal, rbac.RoleRelationshipManager, rbac.RolePrivateBanker},
	}
	firstLineReviewers = map[rbac.Domain][]rbac.Role{
		rbac.DomainB2C: {rbac.RoleElanAdvisor},
		rbac.DomainB2B: {rbac.RoleRelationshipManager, rbac.RolePrivateBanker},
	}
	complianceReviewers = map[rbac.Domain][]rbac.Role{
		rbac.DomainB2B:   {rbac.RoleComplianceOfficer},
		rbac.DomainAdmin: {rbac.RoleSuperAdmin},
	}
	presenters = map[rbac.Domain][]rbac.Role{
		rbac.DomainB2C: {rbac.RoleElanAdvisor},
		rbac.DomainB2B: {rbac.RoleRelationshipManager, rbac.RolePrivateBanker},
	}
	executors = map[rbac.Domain][]rbac.Role{
		rbac.DomainB2C: {rbac.RoleUHNI, rbac.RoleElanAdvisor},
		rbac.DomainB2B: {rbac.RoleUHNIPortal, rbac.RoleRelationshipManager, rbac.RolePrivateBanker},
	}
	archivers = map[rbac.Domain][]rbac.Role{
		rbac.DomainB2C:   {rbac.RoleUHNI, rbac.RoleElanAdvisor},
		rbac.DomainB2B:   {rbac.RoleRelationshipManager, rbac.RolePrivateBanker, rbac.RoleInstitutionalAdmin},
		rbac.DomainAdmin: {rbac.RoleSuperAdmin},
	}
)

// table is ordered; AvailableTransitions preserves this order.
var table = []Transition{
	{From: StatusDraft, Event: EventSubmit, To: StatusRMReview, Action: rbac.ActionWrite, Roles: submitters},

	{From: StatusRMReview, Event: EventApprove, To: StatusComplianceReview, Action: rbac.ActionApprove, Roles: firstLineReviewers},
	{From: StatusRMReview, Event: EventReject, To: StatusDraft, Action: rbac.ActionApprove, Roles: firstLineReviewers},
	{From: StatusRMReview, Event: EventRequestChanges, To: StatusDraft, Action: rbac.ActionApprove, Roles: firstLineReviewers},

	{From: StatusComplianceReview, Event: EventApprove, To: StatusApproved, Action: rbac.ActionApprove, Roles: complianceReviewers},
	{From: StatusComplianceReview, Event: EventReject, To: StatusDraft, Action: rbac.ActionApprove, Roles: complianceReviewers},
	{From: StatusComplianceReview, Event: EventRequestChanges, To: StatusRMReview, Action: rbac.ActionApprove, Roles: complianceReviewers},

	{From: StatusApproved, Event: EventPresent, To: StatusPresented, Action: rbac.ActionWrite, Roles: presenters},

	{From: StatusPresented, Event: EventExecute, To: StatusExecuted, Action: rbac.ActionWrite, Roles: executors},

	{From: StatusExecuted, Event: EventArchive, To: StatusArchived, Action: rbac.ActionWrite, Roles: archivers},
}

// Table returns a copy of the transition rows in table order.
func Table() []Transition {
	return slices.Clone(table)
}
