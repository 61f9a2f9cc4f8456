package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"elan/internal/access"
	"elan/internal/audit"
	audithandler "elan/internal/audit/handler"
	dirhandler "elan/internal/directory/handler"
	dirmetrics "elan/internal/directory/metrics"
	dirservice "elan/internal/directory/service"
	dirstore "elan/internal/directory/store"
	erasurehandler "elan/internal/erasure/handler"
	erasuremetrics "elan/internal/erasure/metrics"
	erasureservice "elan/internal/erasure/service"
	insthandler "elan/internal/institution/handler"
	instmetrics "elan/internal/institution/metrics"
	instservice "elan/internal/institution/service"
	inststore "elan/internal/institution/store"
	journeyhandler "elan/internal/journey/handler"
	journeymetrics "elan/internal/journey/metrics"
	journeyservice "elan/internal/journey/service"
	journeystore "elan/internal/journey/store"
	jwttoken "elan/internal/jwt_token"
	memoryhandler "elan/internal/memory/handler"
	memoryservice "elan/internal/memory/service"
	memorystore "elan/internal/memory/store"
	"elan/internal/platform/config"
	"elan/internal/platform/database"
	"elan/internal/platform/health"
	"elan/internal/platform/kafka"
	"elan/internal/platform/metrics"
	rbachandler "elan/internal/rbac/handler"
	vishandler "elan/internal/visibility/handler"
	vismetrics "elan/internal/visibility/metrics"
	visservice "elan/internal/visibility/service"
	visstore "elan/internal/visibility/store"
	"elan/migrations"
	id "elan/pkg/domain"
	"elan/pkg/platform/circuit"
	"elan/pkg/platform/middleware/auth"
	"elan/pkg/platform/middleware/request"
)

// app owns every long-lived resource main must release on shutdown.
type app struct {
	router    http.Handler
	pool      *database.Pool
	producer  *kafka.Producer
	publisher *audit.Publisher
	log       *slog.Logger
}

func (a *app) Close() {
	a.publisher.Close()
	if a.producer != nil {
		_ = a.producer.Close() //nolint:errcheck // Close logs unflushed records itself
	}
	if err := a.pool.Close(); err != nil {
		a.log.Error("failed to close database", "error", err)
	}
}

// stores groups the persistence choice so services are built once.
type stores struct {
	audit       audit.Store
	journeys    journeyservice.Store
	memories    memoryservice.Store
	visibility  visservice.Store
	directory   dirservice.Store
	institution instservice.Store
}

func build(ctx context.Context, cfg config.Server, log *slog.Logger) (*app, error) {
	reg := metrics.NewRegistry()
	healthHandler := health.New(cfg.Environment)
	a := &app{log: log}

	pool, err := database.Open(ctx, database.DefaultConfig(cfg.DatabaseURL))
	if err != nil {
		return nil, err
	}
	a.pool = pool

	var st stores
	if pool != nil {
		applied, err := database.Migrate(ctx, pool.DB(), migrations.FS)
		if err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		log.Info("database ready", "migrations_applied", applied)
		metrics.RegisterDB(reg, pool.DB(), "elan")
		healthHandler.RegisterCheck("postgres", pool.Health)
		st = postgresStores(pool)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		st = memoryStores()
	}

	auditStore := st.audit
	if cfg.KafkaBrokers != "" {
		producer, err := kafka.New(kafka.DefaultConfig(cfg.KafkaBrokers), log)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		a.producer = producer
		breaker := circuit.New("audit-stream")
		auditStore = audit.NewStreamStore(st.audit, producer, cfg.KafkaAuditTopic, log, audit.WithBreaker(breaker))
		healthHandler.RegisterCheck("kafka", kafka.NewHealthChecker(cfg.KafkaBrokers).Check)
	}
	a.publisher = audit.NewPublisher(auditStore,
		audit.WithAsyncBuffer(cfg.AuditBufferSize),
		audit.WithPublisherLogger(log),
	)

	journeyMetrics := journeymetrics.New(reg)
	journeyOpts := []journeyservice.Option{journeyservice.WithMetrics(journeyMetrics)}
	if pool != nil {
		journeyOpts = append(journeyOpts, journeyservice.WithTx(newJourneyPostgresTx(pool.DB())))
	}
	journeys := journeyservice.NewService(st.journeys, a.publisher, log, journeyOpts...)
	memories := memoryservice.NewService(st.memories, a.publisher, log)
	institutions := instservice.NewService(st.institution, a.publisher, log,
		instservice.WithMetrics(instmetrics.New(reg)))

	// Directory and visibility depend on each other: the directory resolves
	// advisor scopes, visibility checks advisor links.
	var visibility *visservice.Service
	directory := dirservice.NewService(st.directory, a.publisher, log,
		dirservice.WithMetrics(dirmetrics.New(reg)),
		dirservice.WithInstitutions(institutions),
		dirservice.WithInviteTTL(cfg.InviteTTL),
		dirservice.WithScopes(dirservice.ScopeSourceFunc(func(ctx context.Context, ownerID, advisorID id.UserID) (access.AdvisorScope, error) {
			return visibility.Scope(ctx, ownerID, advisorID)
		})),
	)
	visibility = visservice.NewService(st.visibility, a.publisher, log,
		visservice.WithMetrics(vismetrics.New(reg)),
		visservice.WithAdvisors(directory),
	)
	erasure := erasureservice.NewService(journeys, memories, visibility, directory, a.publisher, log,
		erasureservice.WithMetrics(erasuremetrics.New(reg)))

	if cfg.BootstrapEmail != "" {
		admin, err := directory.Bootstrap(ctx, cfg.BootstrapEmail, cfg.BootstrapName)
		if err != nil {
			return nil, fmt.Errorf("bootstrap super admin: %w", err)
		}
		log.Info("super admin ready", "user_id", admin.ID.String())
	}

	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.TokenTTL)
	tokens.SetEnv(cfg.Environment)

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.RequestTime)
	r.Use(request.ClientMetadata(cfg.TrustedProxies))
	r.Use(request.Logger(log))
	r.Use(request.Recovery(log))
	r.Use(request.Latency(request.NewMetrics(reg)))
	r.Use(request.BodyLimit(cfg.MaxBodyBytes))
	r.Use(request.ContentTypeJSON)

	healthHandler.Register(r)
	r.Handle("/metrics", metrics.Handler(reg))

	r.Route("/v1", func(r chi.Router) {
		r.Use(request.Timeout(cfg.RequestTimeout))
		directoryHandler := dirhandler.New(directory, directory, log)
		directoryHandler.RegisterPublic(r)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(jwttoken.NewJWTServiceAdapter(tokens), log))
			journeyhandler.New(journeys, directory, log).Register(r)
			memoryhandler.New(memories, directory, log).Register(r)
			vishandler.New(visibility, directory, log).Register(r)
			directoryHandler.Register(r)
			insthandler.New(institutions, directory, log).Register(r)
			erasurehandler.New(erasure, directory, log).Register(r)
			audithandler.New(audit.NewReader(st.audit), directory, log).Register(r)
			rbachandler.New(directory, log).Register(r)
		})
	})

	a.router = r
	return a, nil
}

func memoryStores() stores {
	return stores{
		audit:       audit.NewInMemoryStore(),
		journeys:    journeystore.NewInMemoryStore(),
		memories:    memorystore.NewInMemoryStore(),
		visibility:  visstore.NewInMemoryStore(),
		directory:   dirstore.NewInMemoryStore(),
		institution: inststore.NewInMemoryStore(),
	}
}

func postgresStores(pool *database.Pool) stores {
	db := pool.DB()
	return stores{
		audit:       audit.NewPostgresStore(db),
		journeys:    journeystore.NewPostgres(db),
		memories:    memorystore.NewPostgres(db),
		visibility:  visstore.NewPostgres(db),
		directory:   dirstore.NewPostgres(db),
		institution: inststore.NewPostgres(db),
	}
}
