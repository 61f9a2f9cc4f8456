package jwttoken

import (
	"elan/pkg/platform/middleware/auth"
)

func ToMiddlewareClaims(claims *AccessTokenClaims) *auth.Claims {
	return &auth.Claims{
		UserID:        claims.UserID,
		Role:          claims.Role,
		Domain:        claims.Domain,
		InstitutionID: claims.InstitutionID,
	}
}

// JWTServiceAdapter exposes JWTService as an auth.TokenValidator.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*auth.Claims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}
