package jwttoken

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"elan/internal/rbac"
	id "elan/pkg/domain"
	dErrors "elan/pkg/domain-errors"
	"elan/pkg/requestcontext"
)

// AccessTokenClaims is the signed payload of an access token. Role and
// domain are asserted by the token but re-checked against the directory when
// the caller is resolved, so a stale token cannot escalate.
type AccessTokenClaims struct {
	UserID        string `json:"user_id"`
	Role          string `json:"role"`
	Domain        string `json:"domain"`
	InstitutionID string `json:"institution_id,omitempty"`
	Env           string `json:"env,omitempty"`
	jwt.RegisteredClaims
}

// Subject is what a token is minted for.
type Subject struct {
	UserID        id.UserID
	Role          rbac.Role
	Domain        rbac.Domain
	InstitutionID id.InstitutionID
}

// JWTService handles JWT creation and validation
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
	tokenTTL   time.Duration
	env        string
}

func NewJWTService(signingKey, issuer, audience string, tokenTTL time.Duration) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		tokenTTL:   tokenTTL,
	}
}

// SetEnv annotates issued tokens with an environment string (e.g. "demo").
func (s *JWTService) SetEnv(env string) {
	s.env = env
}

// GenerateAccessToken signs an HS256 token for subject. An empty domain
// defaults to the role's home domain.
func (s *JWTService) GenerateAccessToken(ctx context.Context, subject Subject) (string, error) {
	if subject.UserID.IsNil() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "user id is required")
	}
	if !subject.Role.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown role")
	}
	domain := subject.Domain
	if domain == "" {
		domain = subject.Role.Domain()
	}
	if !domain.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown domain")
	}

	jti, err := newJTI()
	if err != nil {
		return "", err
	}
	now := requestcontext.Now(ctx)

	claims := AccessTokenClaims{
		UserID: subject.UserID.String(),
		Role:   subject.Role.String(),
		Domain: domain.String(),
		Env:    s.env,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        jti,
		},
	}
	if !subject.InstitutionID.IsNil() {
		claims.InstitutionID = subject.InstitutionID.String()
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

func newJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// ValidateToken checks signature, algorithm, expiry, issuer and audience.
func (s *JWTService) ValidateToken(tokenString string) (*AccessTokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &AccessTokenClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*AccessTokenClaims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}
