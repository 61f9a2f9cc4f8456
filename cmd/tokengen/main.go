// Package main mints access tokens for local testing. It signs with the same
// JWT_SIGNING_KEY, issuer and audience the server reads, so tokens minted
// against the dev defaults do not work in production.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	jwttoken "elan/internal/jwt_token"
	"elan/internal/platform/config"
	"elan/internal/rbac"
	id "elan/pkg/domain"
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Type      string            `json:"type"`
	ExpiresIn string            `json:"expires_in"`
	Claims    map[string]string `json:"claims"`
}

func main() {
	cfg := config.FromEnv()

	fs := flag.NewFlagSet("tokengen", flag.ExitOnError)
	userID := fs.String("user-id", "", "User ID (UUID) as stored in the directory. Generated if empty.")
	role := fs.String("role", "uhni", "Role: one of the b2c, b2b or admin roles")
	domain := fs.String("domain", "", "Domain context (b2c, b2b, admin). Defaults to the role's domain.")
	institutionID := fs.String("institution-id", "", "Institution ID (UUID) for b2b roles")
	ttl := fs.Duration("ttl", cfg.TokenTTL, "Token time-to-live")
	asJSON := fs.Bool("json", false, "Output as JSON")
	_ = fs.Parse(os.Args[1:]) //nolint:errcheck // ExitOnError

	out, err := generate(context.Background(), cfg, *userID, *role, *domain, *institutionID, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tokengen: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out) //nolint:errcheck // stdout
		return
	}
	fmt.Println(out.Token)
	if cfg.UsesDevSigningKey() {
		fmt.Fprintln(os.Stderr, "signed with the development key; set JWT_SIGNING_KEY to match a deployed server")
	}
	fmt.Fprintf(os.Stderr, "curl -H 'Authorization: Bearer %s' http://localhost%s/v1/users/me\n", out.Token, cfg.Addr)
}

func generate(ctx context.Context, cfg config.Server, rawUser, rawRole, rawDomain, rawInstitution string, ttl time.Duration) (*tokenOutput, error) {
	subject := jwttoken.Subject{UserID: id.NewUserID()}
	var err error
	if rawUser != "" {
		if subject.UserID, err = id.ParseUserID(rawUser); err != nil {
			return nil, err
		}
	}
	if subject.Role, err = rbac.ParseRole(rawRole); err != nil {
		return nil, err
	}
	if rawDomain != "" {
		if subject.Domain, err = rbac.ParseDomain(rawDomain); err != nil {
			return nil, err
		}
	}
	if rawInstitution != "" {
		if subject.InstitutionID, err = id.ParseInstitutionID(rawInstitution); err != nil {
			return nil, err
		}
	}

	svc := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience, ttl)
	svc.SetEnv(cfg.Environment)
	token, err := svc.GenerateAccessToken(ctx, subject)
	if err != nil {
		return nil, err
	}
	claims, err := svc.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	return &tokenOutput{
		Token:     token,
		Type:      "Bearer",
		ExpiresIn: ttl.String(),
		Claims: map[string]string{
			"user_id":        claims.UserID,
			"role":           claims.Role,
			"domain":         claims.Domain,
			"institution_id": claims.InstitutionID,
			"jti":            claims.ID,
		},
	}, nil
}
