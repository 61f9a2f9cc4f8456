package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"elan/internal/access"
	"elan/internal/audit"
	"elan/internal/journey/metrics"
	"elan/internal/journey/models"
	"elan/internal/journey/service/mocks"
	"elan/internal/journey/store"
	"elan/internal/rbac"
	"elan/internal/workflow"
	id "elan/pkg/domain"
	dErrors "elan/pkg/domain-errors"
	"elan/pkg/platform/sentinel"
	elantest "elan/pkg/testutil"
)

type ServiceSuite struct {
	suite.Suite
	store      *store.InMemoryStore
	auditStore *audit.InMemoryStore
	metrics    *metrics.Metrics
	service    *Service

	institution id.InstitutionID
	client      access.Viewer // uhni_portal, b2b
	rm          access.Viewer
	compliance  access.Viewer
	uhni        access.Viewer // b2c
	advisor     access.Viewer
	superAdmin  access.Viewer
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = store.NewInMemoryStore()
	s.auditStore = audit.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.service = NewService(
		s.store,
		audit.NewPublisher(s.auditStore),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithMetrics(s.metrics),
	)

	s.institution = id.NewInstitutionID()
	s.client = access.Viewer{UserID: id.NewUserID(), Role: rbac.RoleUHNIPortal, Domain: rbac.DomainB2B, InstitutionID: s.institution}
	s.rm = access.Viewer{UserID: id.NewUserID(), Role: rbac.RoleRelationshipManager, Domain: rbac.DomainB2B,
		InstitutionID: s.institution, AssignedClients: []id.UserID{s.client.UserID}}
	s.compliance = access.Viewer{UserID: id.NewUserID(), Role: rbac.RoleComplianceOfficer, Domain: rbac.DomainB2B, InstitutionID: s.institution}
	s.uhni = access.Viewer{UserID: id.NewUserID(), Role: rbac.RoleUHNI, Domain: rbac.DomainB2C}
	s.advisor = access.Viewer{UserID: id.NewUserID(), Role: rbac.RoleElanAdvisor, Domain: rbac.DomainB2C,
		PrincipalID: s.uhni.UserID, Scope: access.AdvisorScope{All: true}}
	s.superAdmin = access.Viewer{UserID: id.NewUserID(), Role: rbac.RoleSuperAdmin, Domain: rbac.DomainAdmin}
}

func (s *ServiceSuite) create(viewer access.Viewer, req *models.CreateRequest) *models.Journey {
	if req == nil {
		req = &models.CreateRequest{Title: "Kyoto in autumn", Narrative: "Private temple visits", Discretion: "high"}
	}
	j, err := s.service.Create(context.Background(), viewer, req)
	s.Require().NoError(err)
	return j
}

func (s *ServiceSuite) transition(viewer access.Viewer, j *models.Journey, event workflow.Event, reason string) *TransitionResult {
	res, err := s.service.Transition(context.Background(), viewer, j.ID, event, reason)
	s.Require().NoError(err)
	return res
}

// =============================================================================
// Create
// =============================================================================

func (s *ServiceSuite) TestCreate() {
	s.Run("uhni creates a draft with version 1", func() {
		j := s.create(s.uhni, nil)
		s.Equal(workflow.StatusDraft, j.Status)
		s.Equal(1, j.CurrentVersion)
		s.Equal(s.uhni.UserID, j.OwnerID)
		s.Equal(models.DiscretionHigh, j.Discretion)

		versions, err := s.service.Versions(context.Background(), s.uhni, j.ID)
		s.Require().NoError(err)
		s.Require().Len(versions, 1)
		s.Equal(workflow.StatusDraft, versions[0].Status)

		events, _ := s.auditStore.ListByResource(context.Background(), rbac.ResourceJourney, j.ID.String())
		s.Require().Len(events, 1)
		s.Equal(audit.EventJourneyCreated, events[0].Name)
	})

	s.Run("spouse is denied", func() {
		spouse := access.Viewer{UserID: id.NewUserID(), Role: rbac.RoleSpouse, Domain: rbac.DomainB2C, PrincipalID: s.uhni.UserID}
		_, err := s.service.Create(context.Background(), spouse, &models.CreateRequest{Title: "x"})
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})

	s.Run("rm creates for assigned client only", func() {
		j := s.create(s.rm, &models.CreateRequest{Title: "Antarctic charter", OwnerID: s.client.UserID.String()})
		s.Equal(s.client.UserID, j.OwnerID)
		s.Equal(s.rm.UserID, j.AssignedRM)
		s.Equal(s.institution, j.InstitutionID)

		_, err := s.service.Create(context.Background(), s.rm, &models.CreateRequest{Title: "x", OwnerID: id.NewUserID().String()})
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})

	s.Run("rm without owner is a validation error", func() {
		_, err := s.service.Create(context.Background(), s.rm, &models.CreateRequest{Title: "x"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("advisor with allow-list scope cannot create outside it", func() {
		limited := s.advisor
		limited.Scope = access.AdvisorScope{EntityIDs: []string{"something-else"}}
		_, err := s.service.Create(context.Background(), limited, &models.CreateRequest{Title: "x"})
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))

		j := s.create(s.advisor, nil)
		s.Equal(s.uhni.UserID, j.OwnerID)
	})
}

// =============================================================================
// Transition
// =============================================================================

// TestTransition_FullB2BLifecycle drives a journey from draft to archived.
// Invariant: each transition appends exactly one version and one audit event,
// and status always equals the status of the current version.
func (s *ServiceSuite) TestTransition_FullB2BLifecycle() {
	ctx := context.Background()
	j := s.create(s.client, nil)

	steps := []struct {
		viewer access.Viewer
		event  workflow.Event
		want   workflow.Status
	}{
		{s.client, workflow.EventSubmit, workflow.StatusRMReview},
		{s.rm, workflow.EventApprove, workflow.StatusComplianceReview},
		{s.compliance, workflow.EventApprove, workflow.StatusApproved},
		{s.rm, workflow.EventPresent, workflow.StatusPresented},
		{s.client, workflow.EventExecute, workflow.StatusExecuted},
		{s.rm, workflow.EventArchive, workflow.StatusArchived},
	}
	for i, step := range steps {
		res := s.transition(step.viewer, j, step.event, "")
		s.Equal(step.want, res.Journey.Status)
		s.Equal(i+2, res.Version.Number)

		versions, err := s.service.Versions(ctx, s.client, j.ID)
		s.Require().NoError(err)
		s.Len(versions, i+2)
		s.Equal(res.Journey.Status, versions[len(versions)-1].Status)

		events, _ := s.auditStore.ListByResource(ctx, rbac.ResourceJourney, j.ID.String())
		s.Len(events, i+2)
	}

	for _, viewer := range []access.Viewer{s.client, s.rm, s.compliance} {
		events, err := s.service.AvailableTransitions(ctx, viewer, j.ID)
		s.Require().NoError(err)
		s.Empty(events)
	}
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Transitions.WithLabelValues("rm_review", "approve", "compliance_review")))
}

func (s *ServiceSuite) TestTransition_RMApproveMovesToCompliance() {
	j := s.create(s.client, nil)
	s.transition(s.client, j, workflow.EventSubmit, "")

	res := s.transition(s.rm, j, workflow.EventApprove, "")
	s.Equal(workflow.StatusComplianceReview, res.Journey.Status)
	s.Equal(s.rm.UserID, res.Version.ApprovedBy)
}

// TestTransition_ComplianceRejectRecordsReason
// Invariant: a rejection returns to draft and its version carries the reason.
func (s *ServiceSuite) TestTransition_ComplianceRejectRecordsReason() {
	ctx := context.Background()
	j := s.create(s.client, nil)
	s.transition(s.client, j, workflow.EventSubmit, "")
	s.transition(s.rm, j, workflow.EventApprove, "")

	res := s.transition(s.compliance, j, workflow.EventReject, "  Insufficient KYC ")
	s.Equal(workflow.StatusDraft, res.Journey.Status)
	s.Equal(workflow.StatusComplianceReview, res.Previous)
	s.Equal("Insufficient KYC", res.Version.RejectionReason)
	s.Equal(s.compliance.UserID, res.Version.RejectedBy)

	versions, err := s.service.Versions(ctx, s.client, j.ID)
	s.Require().NoError(err)
	last := versions[len(versions)-1]
	s.Equal("Insufficient KYC", last.RejectionReason)
	s.Equal(workflow.EventReject, last.Event)

	events, _ := s.auditStore.ListByResource(ctx, rbac.ResourceJourney, j.ID.String())
	lastEvent := events[len(events)-1]
	s.Equal(audit.EventJourneyTransitioned, lastEvent.Name)
	s.Equal("compliance_review", lastEvent.PreviousState)
	s.Equal("draft", lastEvent.NewState)
	s.Equal("Insufficient KYC", lastEvent.Reason)
	s.Equal(rbac.RoleComplianceOfficer, lastEvent.ActorRole)
}

func (s *ServiceSuite) TestTransition_RequestChangesFromComplianceReturnsToRMReview() {
	j := s.create(s.client, nil)
	s.transition(s.client, j, workflow.EventSubmit, "")
	s.transition(s.rm, j, workflow.EventApprove, "")

	res := s.transition(s.compliance, j, workflow.EventRequestChanges, "Source of funds letter")
	s.Equal(workflow.StatusRMReview, res.Journey.Status)
}

// TestTransition_B2CUsesSuperAdminForCompliance covers the b2c path where
// the second-line review is done from the admin back-office.
func (s *ServiceSuite) TestTransition_B2CUsesSuperAdminForCompliance() {
	j := s.create(s.uhni, nil)
	s.transition(s.uhni, j, workflow.EventSubmit, "")
	s.transition(s.advisor, j, workflow.EventApprove, "")
	res := s.transition(s.superAdmin, j, workflow.EventApprove, "")
	s.Equal(workflow.StatusApproved, res.Journey.Status)
}

// TestTransition_FailuresDoNotMutate
// Invariant: a rejected operation leaves status, history and audit unchanged.
func (s *ServiceSuite) TestTransition_FailuresDoNotMutate() {
	ctx := context.Background()
	j := s.create(s.client, nil)
	s.transition(s.client, j, workflow.EventSubmit, "")

	assertUnchanged := func() {
		current, err := s.service.Get(ctx, s.client, j.ID)
		s.Require().NoError(err)
		s.Equal(workflow.StatusRMReview, current.Status)
		versions, _ := s.service.Versions(ctx, s.client, j.ID)
		s.Len(versions, 2)
		events, _ := s.auditStore.ListByResource(ctx, rbac.ResourceJourney, j.ID.String())
		s.Len(events, 2)
	}

	s.Run("missing reason", func() {
		_, err := s.service.Transition(ctx, s.rm, j.ID, workflow.EventReject, "   ")
		s.True(dErrors.HasCode(err, dErrors.CodeMissingReason))
		assertUnchanged()
	})

	s.Run("missing reason is reported even for roles that could not reject", func() {
		_, err := s.service.Transition(ctx, s.client, j.ID, workflow.EventRequestChanges, "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		assertUnchanged()
	})

	s.Run("illegal transition", func() {
		_, err := s.service.Transition(ctx, s.client, j.ID, workflow.EventApprove, "")
		s.True(dErrors.HasCode(err, dErrors.CodeIllegalTransition))
		assertUnchanged()
	})

	s.Run("event from another state", func() {
		_, err := s.service.Transition(ctx, s.rm, j.ID, workflow.EventArchive, "")
		s.True(dErrors.HasCode(err, dErrors.CodeIllegalTransition))
		assertUnchanged()
	})

	s.Run("unknown event", func() {
		_, err := s.service.Transition(ctx, s.rm, j.ID, "teleport", "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		assertUnchanged()
	})

	s.Run("invisible journey looks missing", func() {
		outsider := access.Viewer{UserID: id.NewUserID(), Role: rbac.RoleRelationshipManager, Domain: rbac.DomainB2B}
		_, err := s.service.Transition(ctx, outsider, j.ID, workflow.EventApprove, "")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		assertUnchanged()
	})

	s.Equal(2.0, testutil.ToFloat64(s.metrics.TransitionDenials.WithLabelValues("illegal_transition")))
	s.Equal(2.0, testutil.ToFloat64(s.metrics.TransitionDenials.WithLabelValues("validation_failed")))
}

// TestTransition_ConcurrentSubmitsSerialize
// Invariant: concurrent transitions on one journey are serialized, so only
// one of many identical submits can succeed.
func (s *ServiceSuite) TestTransition_ConcurrentSubmitsSerialize() {
	j := s.create(s.client, nil)

	const attempts = 16
	res := elantest.RunConcurrent(attempts, func(int) error {
		_, err := s.service.Transition(context.Background(), s.client, j.ID, workflow.EventSubmit, "")
		return err
	})

	s.Equal(int32(1), res.Successes)
	s.Equal(int32(attempts-1), res.Conflicts)
	versions, _ := s.service.Versions(context.Background(), s.client, j.ID)
	s.Len(versions, 2)
}

// =============================================================================
// Content, sharing and deletion
// =============================================================================

func (s *ServiceSuite) TestUpdateContent() {
	ctx := context.Background()
	j := s.create(s.uhni, nil)
	title := "Kyoto and Naoshima"

	updated, err := s.service.UpdateContent(ctx, s.uhni, j.ID, &models.UpdateRequest{Title: &title})
	s.Require().NoError(err)
	s.Equal(title, updated.Title)
	s.Equal(2, updated.CurrentVersion)
	s.Equal(workflow.StatusDraft, updated.Status)

	s.transition(s.uhni, j, workflow.EventSubmit, "")
	_, err = s.service.UpdateContent(ctx, s.uhni, j.ID, &models.UpdateRequest{Title: &title})
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ServiceSuite) TestUpdateSharingOwnerOnly() {
	ctx := context.Background()
	j := s.create(s.uhni, nil)
	spouse := access.Viewer{UserID: id.NewUserID(), Role: rbac.RoleSpouse, Domain: rbac.DomainB2C, PrincipalID: s.uhni.UserID}

	_, err := s.service.Get(ctx, spouse, j.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.service.UpdateSharing(ctx, s.uhni, j.ID, models.Sharing{Spouse: true})
	s.Require().NoError(err)

	visible, err := s.service.List(ctx, spouse)
	s.Require().NoError(err)
	s.Len(visible, 1)

	_, err = s.service.UpdateSharing(ctx, spouse, j.ID, models.Sharing{Spouse: true, Heirs: true})
	s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
}

func (s *ServiceSuite) TestDelete() {
	ctx := context.Background()
	j := s.create(s.uhni, nil)
	s.transition(s.uhni, j, workflow.EventSubmit, "")

	s.Run("advisor lacks delete", func() {
		err := s.service.Delete(ctx, s.advisor, j.ID)
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))
	})

	s.Run("owner deletes journey and history", func() {
		s.Require().NoError(s.service.Delete(ctx, s.uhni, j.ID))
		_, err := s.store.Versions(ctx, j.ID)
		s.ErrorIs(err, sentinel.ErrNotFound)
		_, err = s.service.Get(ctx, s.uhni, j.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("portal owner deletes without holding delete on journey", func() {
		s.Require().False(s.client.Can(rbac.ActionDelete, rbac.ResourceJourney))
		own := s.create(s.client, nil)

		s.Require().NoError(s.service.Delete(ctx, s.client, own.ID))
		_, err := s.service.Get(ctx, s.client, own.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		events, _ := s.auditStore.ListByResource(ctx, rbac.ResourceJourney, own.ID.String())
		s.Equal(audit.EventJourneyDeleted, events[len(events)-1].Name)
	})

	s.Run("assigned rm cannot delete a client's journey", func() {
		clients := s.create(s.rm, &models.CreateRequest{Title: "Patagonia", OwnerID: s.client.UserID.String()})
		err := s.service.Delete(ctx, s.rm, clients.ID)
		s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))

		_, err = s.service.Get(ctx, s.client, clients.ID)
		s.NoError(err)
	})
}

// =============================================================================
// Store error propagation
// =============================================================================

func TestStoreErrorPropagation(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := mocks.NewMockStore(ctrl)
	svc := NewService(mockStore, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	owner := id.NewUserID()
	viewer := access.Viewer{UserID: owner, Role: rbac.RoleUHNI, Domain: rbac.DomainB2C}
	journey := &models.Journey{ID: id.NewJourneyID(), OwnerID: owner, Status: workflow.StatusDraft, CurrentVersion: 1}

	t.Run("find failure surfaces as internal", func(t *testing.T) {
		mockStore.EXPECT().FindByID(gomock.Any(), journey.ID).Return(nil, assert.AnError)

		_, err := svc.Transition(context.Background(), viewer, journey.ID, workflow.EventSubmit, "")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})

	t.Run("missing journey surfaces as not found", func(t *testing.T) {
		mockStore.EXPECT().FindByID(gomock.Any(), journey.ID).Return(nil, sentinel.ErrNotFound)

		_, err := svc.Get(context.Background(), viewer, journey.ID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("concurrent append surfaces as conflict", func(t *testing.T) {
		mockStore.EXPECT().FindByID(gomock.Any(), journey.ID).Return(journey.Clone(), nil)
		mockStore.EXPECT().AppendVersion(gomock.Any(), gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict)

		_, err := svc.Transition(context.Background(), viewer, journey.ID, workflow.EventSubmit, "")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("reason is checked before the store is touched", func(t *testing.T) {
		_, err := svc.Transition(context.Background(), viewer, journey.ID, workflow.EventReject, "")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeMissingReason))
	})
}
