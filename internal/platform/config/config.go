package config

import (
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process level configuration read once at startup.
type Server struct {
	Addr            string
	Environment     string
	DatabaseURL     string
	JWTSigningKey   string
	JWTIssuer       string
	JWTAudience     string
	TokenTTL        time.Duration
	InviteTTL       time.Duration
	AuditBufferSize int
	KafkaBrokers    string
	KafkaAuditTopic string
	BootstrapEmail  string
	BootstrapName   string
	TrustedProxies  []netip.Prefix
	MaxBodyBytes    int64
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

const (
	DefaultAddr            = ":8080"
	DefaultTokenTTL        = 15 * time.Minute
	DefaultInviteTTL       = 7 * 24 * time.Hour
	DefaultAuditBufferSize = 1024
	DefaultAuditTopic      = "elan.audit"
	DefaultMaxBodyBytes    = 1 << 20
	DefaultRequestTimeout  = 15 * time.Second
	DefaultShutdownTimeout = 10 * time.Second

	devSigningKey = "dev-secret-key-change-in-production"
)

// FromEnv builds a Server config from environment variables so main stays
// lean. Unparseable values fall back to defaults.
func FromEnv() Server {
	return fromLookup(os.Getenv)
}

func fromLookup(getenv func(string) string) Server {
	cfg := Server{
		Addr:            orDefault(getenv("ELAN_ADDR"), DefaultAddr),
		Environment:     orDefault(getenv("ELAN_ENV"), "dev"),
		DatabaseURL:     getenv("DATABASE_URL"),
		JWTSigningKey:   orDefault(getenv("JWT_SIGNING_KEY"), devSigningKey),
		JWTIssuer:       orDefault(getenv("JWT_ISSUER"), "elan"),
		JWTAudience:     orDefault(getenv("JWT_AUDIENCE"), "elan-api"),
		TokenTTL:        durationOr(getenv("TOKEN_TTL"), DefaultTokenTTL),
		InviteTTL:       durationOr(getenv("INVITE_TTL"), DefaultInviteTTL),
		AuditBufferSize: intOr(getenv("AUDIT_BUFFER_SIZE"), DefaultAuditBufferSize),
		KafkaBrokers:    getenv("KAFKA_BROKERS"),
		KafkaAuditTopic: orDefault(getenv("KAFKA_AUDIT_TOPIC"), DefaultAuditTopic),
		BootstrapEmail:  getenv("ELAN_BOOTSTRAP_ADMIN_EMAIL"),
		BootstrapName:   orDefault(getenv("ELAN_BOOTSTRAP_ADMIN_NAME"), "Platform Administrator"),
		TrustedProxies:  prefixes(getenv("TRUSTED_PROXIES")),
		MaxBodyBytes:    int64(intOr(getenv("MAX_BODY_BYTES"), DefaultMaxBodyBytes)),
		RequestTimeout:  durationOr(getenv("REQUEST_TIMEOUT"), DefaultRequestTimeout),
		ShutdownTimeout: durationOr(getenv("SHUTDOWN_TIMEOUT"), DefaultShutdownTimeout),
	}
	return cfg
}

// IsProduction reports whether dev conveniences must be disabled.
func (s Server) IsProduction() bool {
	return s.Environment == "prod" || s.Environment == "production"
}

// UsesDevSigningKey is true when JWT_SIGNING_KEY was not provided.
func (s Server) UsesDevSigningKey() bool {
	return s.JWTSigningKey == devSigningKey
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func durationOr(v string, def time.Duration) time.Duration {
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func intOr(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func prefixes(raw string) []netip.Prefix {
	var out []netip.Prefix
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if p, err := netip.ParsePrefix(part); err == nil {
			out = append(out, p)
		}
	}
	return out
}
