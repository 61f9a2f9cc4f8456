package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"elan/internal/access"
	"elan/internal/audit"
	dirmodels "elan/internal/directory/models"
	dirservice "elan/internal/directory/service"
	dirstore "elan/internal/directory/store"
	"elan/internal/erasure/metrics"
	"elan/internal/erasure/service/mocks"
	journeymodels "elan/internal/journey/models"
	journeyservice "elan/internal/journey/service"
	journeystore "elan/internal/journey/store"
	memorymodels "elan/internal/memory/models"
	memoryservice "elan/internal/memory/service"
	memorystore "elan/internal/memory/store"
	"elan/internal/rbac"
	vismodels "elan/internal/visibility/models"
	visservice "elan/internal/visibility/service"
	visstore "elan/internal/visibility/store"
	id "elan/pkg/domain"
	dErrors "elan/pkg/domain-errors"
	"elan/pkg/requestcontext"
)

// ErasureSuite wires the real services over in-memory stores.
type ErasureSuite struct {
	suite.Suite
	ctx        context.Context
	auditStore *audit.InMemoryStore
	metrics    *metrics.Metrics

	directory  *dirservice.Service
	journeys   *journeyservice.Service
	memories   *memoryservice.Service
	visibility *visservice.Service
	service    *Service

	root, uhni, advisor, other *dirmodels.User
}

func TestErasureSuite(t *testing.T) {
	suite.Run(t, new(ErasureSuite))
}

func (s *ErasureSuite) SetupTest() {
	s.ctx = context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.auditStore = audit.NewInMemoryStore()
	publisher := audit.NewPublisher(s.auditStore)
	s.metrics = metrics.New(prometheus.NewRegistry())

	scopes := dirservice.ScopeSourceFunc(func(ctx context.Context, ownerID, advisorID id.UserID) (access.AdvisorScope, error) {
		return s.visibility.Scope(ctx, ownerID, advisorID)
	})
	s.directory = dirservice.NewService(dirstore.NewInMemoryStore(), publisher, logger, dirservice.WithScopes(scopes))
	s.visibility = visservice.NewService(visstore.NewInMemoryStore(), publisher, logger, visservice.WithAdvisors(s.directory))
	s.journeys = journeyservice.NewService(journeystore.NewInMemoryStore(), publisher, logger)
	s.memories = memoryservice.NewService(memorystore.NewInMemoryStore(), publisher, logger)
	s.service = NewService(s.journeys, s.memories, s.visibility, s.directory, publisher, logger, WithMetrics(s.metrics))

	var err error
	s.root, err = s.directory.Bootstrap(s.ctx, "root@elan.example", "Root")
	s.Require().NoError(err)
	s.uhni = s.join(s.root, "ana@example.com", rbac.RoleUHNI)
	s.other = s.join(s.root, "bob@example.com", rbac.RoleUHNI)
	s.advisor = s.join(s.uhni, "advisor@example.com", rbac.RoleElanAdvisor)
}

func (s *ErasureSuite) viewer(u *dirmodels.User) access.Viewer {
	v, err := s.directory.Viewer(s.ctx, requestcontext.Principal{UserID: u.ID})
	s.Require().NoError(err)
	return v
}

func (s *ErasureSuite) join(issuer *dirmodels.User, email string, role rbac.Role) *dirmodels.User {
	issued, err := s.directory.IssueInvite(s.ctx, s.viewer(issuer), &dirmodels.IssueInviteRequest{Email: email, Role: string(role)})
	s.Require().NoError(err)
	user, err := s.directory.AcceptInvite(s.ctx, &dirmodels.AcceptInviteRequest{Code: issued.Code, Email: email, Name: "Test"})
	s.Require().NoError(err)
	return user
}

func (s *ErasureSuite) seed(owner *dirmodels.User) {
	v := s.viewer(owner)
	j, err := s.journeys.Create(s.ctx, v, &journeymodels.CreateRequest{Title: "Kyoto", Narrative: "Temples", Category: "travel", Discretion: "standard"})
	s.Require().NoError(err)
	_, err = s.journeys.Transition(s.ctx, v, j.ID, "submit", "")
	s.Require().NoError(err)
	_, err = s.memories.Create(s.ctx, v, &memorymodels.CreateRequest{Title: "Wedding", Body: "Lake Como"})
	s.Require().NoError(err)
}

// TestEraseUser
// Invariant: erasure removes exactly one user's journeys (with history),
// memories, grants and directory entry, and never removes audit events.
func (s *ErasureSuite) TestEraseUser() {
	s.seed(s.uhni)
	s.seed(s.other)
	_, err := s.visibility.Grant(s.ctx, s.viewer(s.uhni), &vismodels.GrantRequest{AdvisorID: s.advisor.ID.String(), All: true})
	s.Require().NoError(err)
	auditBefore := len(s.auditStore.All())

	report, err := s.service.EraseUser(s.ctx, s.viewer(s.root), s.uhni.ID)
	s.Require().NoError(err)
	s.Equal(1, report.Journeys)
	s.Equal(1, report.Memories)
	s.Equal(1, report.Grants)
	s.True(report.DirectoryEntry)

	otherView := s.viewer(s.other)
	journeys, err := s.journeys.List(s.ctx, otherView)
	s.Require().NoError(err)
	s.Len(journeys, 1, "other users keep their journeys")
	memories, err := s.memories.List(s.ctx, otherView)
	s.Require().NoError(err)
	s.Len(memories, 1)

	_, err = s.directory.Viewer(s.ctx, requestcontext.Principal{UserID: s.uhni.ID})
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	events := s.auditStore.All()
	s.Len(events, auditBefore+1)
	last := events[len(events)-1]
	s.Equal(audit.EventUserErased, last.Name)
	s.Equal(s.uhni.ID.String(), last.ResourceID)
	s.Equal(s.root.ID, last.ActorID)

	s.Equal(1.0, testutil.ToFloat64(s.metrics.Erasures.WithLabelValues("erased")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.EntitiesErased.WithLabelValues("journeys")))
}

func (s *ErasureSuite) TestSelfErasureAndRetry() {
	s.seed(s.uhni)
	self := s.viewer(s.uhni)

	_, err := s.service.EraseUser(s.ctx, self, s.uhni.ID)
	s.Require().NoError(err)

	again, err := s.service.EraseUser(s.ctx, self, s.uhni.ID)
	s.Require().NoError(err)
	s.False(again.DirectoryEntry)
	s.Zero(again.Journeys)
}

func (s *ErasureSuite) TestOnlySelfOrSuperAdmin() {
	_, err := s.service.EraseUser(s.ctx, s.viewer(s.other), s.uhni.ID)
	s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))

	_, err = s.service.EraseUser(s.ctx, s.viewer(s.advisor), s.uhni.ID)
	s.True(dErrors.HasCode(err, dErrors.CodePermissionDenied))

	_, err = s.directory.Viewer(s.ctx, requestcontext.Principal{UserID: s.uhni.ID})
	s.NoError(err, "denied erasure changes nothing")
}

func TestEraseUserStepFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	journeys := mocks.NewMockJourneys(ctrl)
	memories := mocks.NewMockMemories(ctrl)
	scopes := mocks.NewMockScopes(ctrl)
	directory := mocks.NewMockDirectory(ctrl)
	auditStore := audit.NewInMemoryStore()
	m := metrics.New(prometheus.NewRegistry())
	svc := NewService(journeys, memories, scopes, directory, audit.NewPublisher(auditStore),
		slog.New(slog.NewTextHandler(io.Discard, nil)), WithMetrics(m))

	userID := id.NewUserID()
	self := access.Viewer{UserID: userID, Role: rbac.RoleUHNI, Domain: rbac.DomainB2C}
	journeys.EXPECT().DeleteByOwner(gomock.Any(), userID).Return(0, errors.New("db down"))
	memories.EXPECT().DeleteByOwner(gomock.Any(), userID).Return(2, nil).MaxTimes(1)
	scopes.EXPECT().DeleteByUser(gomock.Any(), userID).Return(0, nil).MaxTimes(1)
	directory.EXPECT().DeleteUser(gomock.Any(), userID).Return(nil).MaxTimes(1)

	_, err := svc.EraseUser(context.Background(), self, userID)
	if !dErrors.HasCode(err, dErrors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if len(auditStore.All()) != 0 {
		t.Fatal("failed erasure must not be recorded as done")
	}
	if got := testutil.ToFloat64(m.Erasures.WithLabelValues("failed")); got != 1 {
		t.Fatalf("expected one failed erasure, got %v", got)
	}
}
