package jwttoken

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elan/internal/rbac"
	id "elan/pkg/domain"
	dErrors "elan/pkg/domain-errors"
	"elan/pkg/requestcontext"
)

const tokenTTL = time.Hour

func newService() *JWTService {
	return NewJWTService("test-signing-key", "elan-test", "elan-api", tokenTTL)
}

func Test_GenerateAccessToken(t *testing.T) {
	svc := newService()
	userID := id.NewUserID()
	institutionID := id.NewInstitutionID()

	token, err := svc.GenerateAccessToken(context.Background(), Subject{
		UserID:        userID,
		Role:          rbac.RoleRelationshipManager,
		InstitutionID: institutionID,
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, "relationship_manager", claims.Role)
	assert.Equal(t, "b2b", claims.Domain, "domain defaults to the role's home domain")
	assert.Equal(t, institutionID.String(), claims.InstitutionID)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(tokenTTL), claims.ExpiresAt.Time, time.Minute)
}

func Test_GenerateAccessToken_ExplicitDomain(t *testing.T) {
	svc := newService()
	token, err := svc.GenerateAccessToken(context.Background(), Subject{
		UserID: id.NewUserID(),
		Role:   rbac.RoleSuperAdmin,
		Domain: rbac.DomainB2C,
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "b2c", claims.Domain)
	assert.Empty(t, claims.InstitutionID)
}

func Test_GenerateAccessToken_RejectsBadSubject(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.GenerateAccessToken(ctx, Subject{Role: rbac.RoleUHNI})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = svc.GenerateAccessToken(ctx, Subject{UserID: id.NewUserID(), Role: "butler"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = svc.GenerateAccessToken(ctx, Subject{UserID: id.NewUserID(), Role: rbac.RoleUHNI, Domain: "moon"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := newService().ValidateToken("invalid-token-string")
	require.ErrorContains(t, err, "invalid token")
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	svc := newService()
	past := requestcontext.WithTime(context.Background(), time.Now().Add(-2*tokenTTL))
	token, err := svc.GenerateAccessToken(past, Subject{UserID: id.NewUserID(), Role: rbac.RoleUHNI})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.ErrorContains(t, err, "token expired")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_WrongKeyIssuerAudience(t *testing.T) {
	subject := Subject{UserID: id.NewUserID(), Role: rbac.RoleUHNI}
	ctx := context.Background()

	for name, other := range map[string]*JWTService{
		"key":      NewJWTService("other-key", "elan-test", "elan-api", tokenTTL),
		"issuer":   NewJWTService("test-signing-key", "someone-else", "elan-api", tokenTTL),
		"audience": NewJWTService("test-signing-key", "elan-test", "other-api", tokenTTL),
	} {
		t.Run(name, func(t *testing.T) {
			token, err := other.GenerateAccessToken(ctx, subject)
			require.NoError(t, err)
			_, err = newService().ValidateToken(token)
			assert.Error(t, err)
		})
	}
}

func Test_ValidateToken_RejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, AccessTokenClaims{
		UserID: id.NewUserID().String(),
		Role:   "super_admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "elan-test",
			Audience:  []string{"elan-api"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newService().ValidateToken(signed)
	assert.Error(t, err)
}

func Test_Adapter(t *testing.T) {
	svc := newService()
	userID := id.NewUserID()
	token, err := svc.GenerateAccessToken(context.Background(), Subject{UserID: userID, Role: rbac.RoleSpouse})
	require.NoError(t, err)

	claims, err := NewJWTServiceAdapter(svc).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "spouse", claims.Role)
	assert.Equal(t, "b2c", claims.Domain)
}
