package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recordgate/internal/audit"
	audithandler "recordgate/internal/audit/handler"
	auditmemory "recordgate/internal/audit/store/memory"
	auditpostgres "recordgate/internal/audit/store/postgres"
	"recordgate/internal/enforcement"
	"recordgate/internal/platform/config"
	"recordgate/internal/platform/database"
	"recordgate/internal/platform/httpserver"
	"recordgate/internal/platform/logger"
	"recordgate/internal/platform/metrics"
	"recordgate/internal/platform/redis"
	"recordgate/internal/policy"
	"recordgate/internal/records"
	httptransport "recordgate/internal/transport/http"
)

const shutdownGrace = 10 * time.Second

// auditStore is what both audit backends provide.
type auditStore interface {
	audit.Sink
	audit.Reader
}

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	reg := metrics.NewRegistry()
	checks := map[string]httptransport.HealthCheck{}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	var sink auditStore = auditmemory.NewInMemoryStore()
	if db != nil {
		defer closeDB(db, log)
		sink = auditpostgres.New(db)
		checks["postgres"] = db.PingContext
		log.Info("audit sink: postgres")
	} else {
		log.Warn("DATABASE_URL not set, audit events are kept in memory only")
	}

	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	var store records.Store = records.NewInMemoryStore()
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
		store = records.NewRedisStore(rdb.Client)
		checks["redis"] = rdb.Health
		log.Info("record store: redis")
	}

	checker := policy.New(cfg.Policy.PDPURL,
		policy.WithLogger(log),
		policy.WithMetrics(policy.NewMetrics(reg)),
	)
	if !checker.Enforcing() {
		log.Warn("PDP_URL not set, policy enforcement is disabled and every action is allowed")
	}

	recorder, err := audit.NewRecorder(sink,
		audit.Defaults{SchemaVersion: cfg.Audit.SchemaVersion, PolicyVersion: cfg.Audit.PolicyVersion},
		audit.WithLogger(log),
		audit.WithMetrics(audit.NewMetrics(reg)),
	)
	if err != nil {
		return err
	}
	guard, err := enforcement.New(checker, recorder)
	if err != nil {
		return err
	}

	if cfg.InternalAuth.SharedSecret == "" {
		log.Warn("INTERNAL_SHARED_SECRET not set, internal routes reject every request")
	}
	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		InternalSecret: cfg.InternalAuth.SharedSecret,
		Metrics:        metrics.Handler(reg),
		Instrument:     metrics.NewHTTP(reg).Middleware,
		HealthChecks:   checks,
		Internal: []httptransport.RouteRegistrar{
			records.NewHandler(store, guard, log),
			audithandler.New(sink, log),
		},
	})

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Server.Addr, err)
	}
	return httpserver.Run(ctx, httpserver.New(cfg.Server.Addr, router), ln, shutdownGrace, log)
}

func closeDB(db *sql.DB, log *slog.Logger) {
	if err := db.Close(); err != nil {
		log.Warn("closing postgres pool", "error", err)
	}
}
