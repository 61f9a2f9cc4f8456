package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store ScopeSource Institutions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"elan/internal/access"
	"elan/internal/audit"
	"elan/internal/directory/metrics"
	"elan/internal/directory/models"
	"elan/internal/rbac"
	id "elan/pkg/domain"
	dErrors "elan/pkg/domain-errors"
	"elan/pkg/platform/sentinel"
	"elan/pkg/requestcontext"
	"elan/pkg/secrets"
)

// Store persists users and invites.
// Error Contract:
// - FindUser, FindUserByEmail, FindInvite, SetAssignedClients and DeleteUser return sentinel.ErrNotFound for unknown ids
// - CreateUser and AcceptInvite return sentinel.ErrConflict when the email is taken
// - AcceptInvite returns sentinel.ErrAlreadyUsed when the invite was claimed first
// - AcceptInvite creates the user and claims the invite atomically
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUser(ctx context.Context, userID id.UserID) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListByInstitution(ctx context.Context, institutionID id.InstitutionID) ([]*models.User, error)
	SetAssignedClients(ctx context.Context, userID id.UserID, clients []id.UserID, at time.Time) error
	DeleteUser(ctx context.Context, userID id.UserID) error
	CreateInvite(ctx context.Context, inv *models.Invite) error
	FindInvite(ctx context.Context, inviteID id.InviteID) (*models.Invite, error)
	AcceptInvite(ctx context.Context, inv *models.Invite, user *models.User) error
}

// ScopeSource returns the visibility an owner granted an advisor.
type ScopeSource interface {
	Scope(ctx context.Context, ownerID, advisorID id.UserID) (access.AdvisorScope, error)
}

// ScopeSourceFunc adapts a function to ScopeSource. It lets the directory and
// the visibility service, which depend on each other, be wired in any order.
type ScopeSourceFunc func(ctx context.Context, ownerID, advisorID id.UserID) (access.AdvisorScope, error)

func (f ScopeSourceFunc) Scope(ctx context.Context, ownerID, advisorID id.UserID) (access.AdvisorScope, error) {
	return f(ctx, ownerID, advisorID)
}

// Institutions confirms an institution exists and is active. Returns a
// domain error when not.
type Institutions interface {
	RequireActive(ctx context.Context, institutionID id.InstitutionID) error
}

type Option func(*Service)

// Service owns who exists on the platform, with which immutable role, and
// turns authenticated principals into viewers.
type Service struct {
	store        Store
	scopes       ScopeSource
	institutions Institutions
	auditor      *audit.Publisher
	metrics      *metrics.Metrics
	logger       *slog.Logger
	inviteTTL    time.Duration
}

func NewService(store Store, auditor *audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:     store,
		auditor:   auditor,
		logger:    logger,
		inviteTTL: models.DefaultInviteTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithScopes enables loading advisor visibility into resolved viewers.
// Without it advisors see nothing of their principal.
func WithScopes(src ScopeSource) Option {
	return func(s *Service) {
		s.scopes = src
	}
}

// WithInstitutions enables rejecting invites into inactive institutions.
func WithInstitutions(i Institutions) Option {
	return func(s *Service) {
		s.institutions = i
	}
}

func WithInviteTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.inviteTTL = ttl
		}
	}
}

// IssuedInvite carries the cleartext code. It is returned once and never
// stored.
type IssuedInvite struct {
	Invite *models.Invite
	Code   string
}

// IssueInvite creates an invite into a role the viewer may hand out.
// Institutional admins invite b2b roles into their own institution. UHNI
// invite family members and advisors linked to themselves. Super admins
// invite the root of each domain: super admins, UHNI and the first
// institutional admin of an institution.
func (s *Service) IssueInvite(ctx context.Context, viewer access.Viewer, req *models.IssueInviteRequest) (*IssuedInvite, error) {
	if err := viewer.Require(rbac.ActionConfigure, rbac.ResourceUser); err != nil {
		return nil, err
	}
	role := req.ParsedRole()
	principal, institution, err := inviteTarget(viewer, role, req)
	if err != nil {
		return nil, err
	}
	if !institution.IsNil() && s.institutions != nil {
		if err := s.institutions.RequireActive(ctx, institution); err != nil {
			return nil, err
		}
	}

	email := models.NormalizeEmail(req.Email)
	if _, err := s.store.FindUserByEmail(ctx, email); err == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "a user with this email already exists")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check email")
	}

	secret, err := secrets.Generate()
	if err != nil {
		return nil, err
	}
	hash, err := secrets.Hash(secret)
	if err != nil {
		return nil, err
	}
	inv, err := models.NewInvite(id.NewInviteID(), email, role, principal, institution, hash,
		viewer.UserID, requestcontext.Now(ctx), s.inviteTTL)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateInvite(ctx, inv); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save invite")
	}
	if s.metrics != nil {
		s.metrics.InvitesIssued.WithLabelValues(string(role)).Inc()
	}

	s.emit(ctx, viewer.Actor(), audit.EventInviteIssued, inv.ID.String(), rbac.ActionConfigure, map[string]string{
		"role":       string(role),
		"expires_at": inv.ExpiresAt.Format(time.RFC3339),
	})
	s.logger.InfoContext(ctx, "invite issued",
		"invite_id", inv.ID.String(),
		"role", role,
		"issuer_role", viewer.Role,
		"request_id", requestcontext.RequestID(ctx),
	)
	return &IssuedInvite{Invite: inv, Code: models.FormatCode(inv.ID, secret)}, nil
}

func inviteTarget(viewer access.Viewer, role rbac.Role, req *models.IssueInviteRequest) (id.UserID, id.InstitutionID, error) {
	var none id.UserID
	switch viewer.Role {
	case rbac.RoleSuperAdmin:
		switch role {
		case rbac.RoleSuperAdmin, rbac.RoleUHNI:
			return none, id.InstitutionID{}, nil
		case rbac.RoleInstitutionalAdmin:
			institution, err := id.ParseInstitutionID(req.InstitutionID)
			if err != nil {
				return none, id.InstitutionID{}, dErrors.New(dErrors.CodeValidation, "institution_id is required to invite an institutional admin")
			}
			return none, institution, nil
		}
	case rbac.RoleInstitutionalAdmin:
		if role.Domain() == rbac.DomainB2B && !viewer.InstitutionID.IsNil() {
			return none, viewer.InstitutionID, nil
		}
	case rbac.RoleUHNI:
		if role.IsSharedViewer() || role == rbac.RoleElanAdvisor {
			return viewer.UserID, id.InstitutionID{}, nil
		}
	}
	return none, id.InstitutionID{}, dErrors.New(dErrors.CodePermissionDenied,
		fmt.Sprintf("%s cannot invite %s", viewer.Role, role))
}

// AcceptInvite redeems a code and creates the user with the invite's role.
// Unknown ids and wrong secrets are reported the same way.
func (s *Service) AcceptInvite(ctx context.Context, req *models.AcceptInviteRequest) (*models.User, error) {
	inviteID, secret, err := models.ParseCode(req.Code)
	if err != nil {
		s.rejected("malformed")
		return nil, err
	}
	inv, err := s.store.FindInvite(ctx, inviteID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.rejected("invalid_code")
			return nil, invalidCode()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load invite")
	}
	if err := secrets.Verify(secret, inv.SecretHash); err != nil {
		s.rejected("invalid_code")
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			return nil, invalidCode()
		}
		return nil, err
	}
	if inv.Email != models.NormalizeEmail(req.Email) {
		s.rejected("email_mismatch")
		return nil, dErrors.New(dErrors.CodeValidation, "email does not match the invite")
	}

	now := requestcontext.Now(ctx)
	user, err := models.NewUser(id.NewUserID(), inv, req.Email, req.Name, now)
	if err != nil {
		return nil, err
	}
	if err := inv.Accept(user.ID, now); err != nil {
		if inv.IsAccepted() {
			s.rejected("already_used")
		} else {
			s.rejected("expired")
		}
		return nil, err
	}
	if err := s.store.AcceptInvite(ctx, inv, user); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			s.rejected("already_used")
			return nil, dErrors.New(dErrors.CodeConflict, "invite has already been used")
		case errors.Is(err, sentinel.ErrConflict):
			s.rejected("email_taken")
			return nil, dErrors.New(dErrors.CodeConflict, "a user with this email already exists")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to accept invite")
		}
	}
	if s.metrics != nil {
		s.metrics.InvitesAccepted.WithLabelValues(string(user.Role)).Inc()
	}

	s.emit(ctx, actorOf(user), audit.EventInviteAccepted, inv.ID.String(), rbac.ActionWrite, map[string]string{
		"user_id":   user.ID.String(),
		"role":      string(user.Role),
		"issued_by": inv.IssuedBy.String(),
	})
	s.logger.InfoContext(ctx, "invite accepted",
		"invite_id", inv.ID.String(),
		"user_id", user.ID.String(),
		"role", user.Role,
		"request_id", requestcontext.RequestID(ctx),
	)
	return user, nil
}

// AssignClients replaces the client book of a relationship manager or
// private banker. Every client must be a portal client of the same
// institution.
func (s *Service) AssignClients(ctx context.Context, viewer access.Viewer, advisorID id.UserID, req *models.AssignClientsRequest) (*models.User, error) {
	if err := viewer.Require(rbac.ActionConfigure, rbac.ResourceUser); err != nil {
		return nil, err
	}
	if viewer.Role != rbac.RoleInstitutionalAdmin && viewer.Role != rbac.RoleSuperAdmin {
		return nil, dErrors.New(dErrors.CodePermissionDenied, "only institutional admins assign clients")
	}
	advisor, err := s.store.FindUser(ctx, advisorID)
	if err != nil {
		return nil, translateStoreErr(err, "failed to load advisor")
	}
	if viewer.Role == rbac.RoleInstitutionalAdmin && advisor.InstitutionID != viewer.InstitutionID {
		return nil, userNotFound()
	}
	if !advisor.CanBeAssigned() {
		return nil, dErrors.New(dErrors.CodeValidation, "only relationship managers and private bankers carry clients")
	}

	clients := req.ParsedClientIDs()
	for _, clientID := range clients {
		client, err := s.store.FindUser(ctx, clientID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("client %s does not exist", clientID))
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load client")
		}
		if client.Role != rbac.RoleUHNIPortal || client.InstitutionID != advisor.InstitutionID {
			return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("client %s is not a portal client of the institution", clientID))
		}
	}

	now := requestcontext.Now(ctx)
	if err := s.store.SetAssignedClients(ctx, advisorID, clients, now); err != nil {
		return nil, translateStoreErr(err, "failed to assign clients")
	}
	advisor.AssignedClients = clients
	advisor.UpdatedAt = now

	s.emit(ctx, viewer.Actor(), audit.EventClientsAssigned, advisorID.String(), rbac.ActionConfigure, map[string]string{
		"clients": strconv.Itoa(len(clients)),
	})
	return advisor, nil
}

// GetUser returns a directory entry the viewer may read: themselves, their
// family and advisors, or anyone in their institution. Super admins read
// everyone.
func (s *Service) GetUser(ctx context.Context, viewer access.Viewer, userID id.UserID) (*models.User, error) {
	user, err := s.store.FindUser(ctx, userID)
	if err != nil {
		return nil, translateStoreErr(err, "failed to load user")
	}
	if user.ID == viewer.UserID {
		return user, nil
	}
	if !viewer.Can(rbac.ActionRead, rbac.ResourceUser) {
		return nil, userNotFound()
	}
	switch {
	case viewer.Role == rbac.RoleSuperAdmin:
	case viewer.Role.IsOwner() && user.PrincipalID == viewer.UserID:
	case !viewer.InstitutionID.IsNil() && user.InstitutionID == viewer.InstitutionID:
	default:
		return nil, userNotFound()
	}
	return user, nil
}

// ListInstitutionUsers returns everyone in the viewer's institution.
func (s *Service) ListInstitutionUsers(ctx context.Context, viewer access.Viewer) ([]*models.User, error) {
	if err := viewer.Require(rbac.ActionRead, rbac.ResourceUser); err != nil {
		return nil, err
	}
	if viewer.InstitutionID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "caller does not belong to an institution")
	}
	users, err := s.store.ListByInstitution(ctx, viewer.InstitutionID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return users, nil
}

// Viewer resolves an authenticated principal. The token's role must match
// the directory; the domain context comes from the token, so a role used
// outside its home domain resolves but holds no permissions.
func (s *Service) Viewer(ctx context.Context, principal requestcontext.Principal) (access.Viewer, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ViewerResolveDuration.Observe(time.Since(start).Seconds())
		}
	}()

	user, err := s.store.FindUser(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return access.Viewer{}, dErrors.New(dErrors.CodeUnauthorized, "unknown user")
		}
		return access.Viewer{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if principal.Role != "" && principal.Role != string(user.Role) {
		return access.Viewer{}, dErrors.New(dErrors.CodeUnauthorized, "token role does not match the directory")
	}
	domain := user.Domain()
	if principal.Domain != "" {
		if domain, err = rbac.ParseDomain(principal.Domain); err != nil {
			return access.Viewer{}, dErrors.New(dErrors.CodeUnauthorized, "token carries an unknown domain")
		}
	}

	viewer := access.Viewer{
		UserID:          user.ID,
		Role:            user.Role,
		Domain:          domain,
		PrincipalID:     user.PrincipalID,
		InstitutionID:   user.InstitutionID,
		AssignedClients: user.AssignedClients,
	}
	if user.Role == rbac.RoleElanAdvisor && s.scopes != nil {
		scope, err := s.scopes.Scope(ctx, user.PrincipalID, user.ID)
		if err != nil {
			return access.Viewer{}, err
		}
		viewer.Scope = scope
	}
	return viewer, nil
}

// RequireLinkedAdvisor fails unless advisorID is an elan advisor working for
// ownerID.
func (s *Service) RequireLinkedAdvisor(ctx context.Context, ownerID, advisorID id.UserID) error {
	advisor, err := s.store.FindUser(ctx, advisorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeValidation, "advisor does not exist")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load advisor")
	}
	if !advisor.IsLinkedAdvisorOf(ownerID) {
		return dErrors.New(dErrors.CodeValidation, "user is not an advisor linked to the owner")
	}
	return nil
}

// DeleteUser removes the directory entry. Used by erasure, which performs
// its own authorization and audit.
func (s *Service) DeleteUser(ctx context.Context, userID id.UserID) error {
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return translateStoreErr(err, "failed to delete user")
	}
	return nil
}

// Bootstrap makes sure a super admin with email exists so the first invites
// can be issued. Returns the existing user when there is one.
func (s *Service) Bootstrap(ctx context.Context, email, name string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	existing, err := s.store.FindUserByEmail(ctx, email)
	if err == nil {
		if existing.Role != rbac.RoleSuperAdmin {
			return nil, dErrors.New(dErrors.CodeConflict, "bootstrap email belongs to a non-admin user")
		}
		return existing, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check bootstrap user")
	}
	now := requestcontext.Now(ctx)
	user := &models.User{
		ID:        id.NewUserID(),
		Email:     email,
		Name:      name,
		Role:      rbac.RoleSuperAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, translateStoreErr(err, "failed to create bootstrap user")
	}
	s.logger.InfoContext(ctx, "bootstrap super admin created", "user_id", user.ID.String())
	return user, nil
}

func (s *Service) rejected(reason string) {
	if s.metrics != nil {
		s.metrics.InvitesRejected.WithLabelValues(reason).Inc()
	}
}

func (s *Service) emit(ctx context.Context, actor rbac.Actor, name audit.EventName, resourceID string, action rbac.Action, metadata map[string]string) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Name:         name,
		ResourceType: rbac.ResourceUser,
		ResourceID:   resourceID,
		Action:       action,
		Metadata:     metadata,
	}.WithActor(actor))
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"event", name,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func actorOf(user *models.User) rbac.Actor {
	return rbac.Actor{
		UserID:        user.ID,
		Role:          user.Role,
		Domain:        user.Domain(),
		InstitutionID: user.InstitutionID,
	}
}

func invalidCode() error {
	return dErrors.New(dErrors.CodeValidation, "invite code is invalid")
}

func userNotFound() error {
	return dErrors.New(dErrors.CodeNotFound, "user not found")
}

func translateStoreErr(err error, msg string) error {
	var domainErr *dErrors.Error
	switch {
	case errors.As(err, &domainErr):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return userNotFound()
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "a user with this email already exists")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
