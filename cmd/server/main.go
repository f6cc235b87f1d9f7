package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"zorgsites/internal/audit"
	"zorgsites/internal/domains"
	"zorgsites/internal/domains/metrics"
	"zorgsites/internal/domains/service"
	"zorgsites/internal/domains/store/record"
	"zorgsites/internal/hosting"
	"zorgsites/internal/jwttoken"
	"zorgsites/internal/platform/config"
	"zorgsites/internal/platform/httpserver"
	"zorgsites/internal/platform/kafka/producer"
	"zorgsites/internal/platform/logger"
	"zorgsites/internal/platform/middleware"
	"zorgsites/internal/platform/postgres"
	"zorgsites/internal/platform/redis"
	"zorgsites/internal/registrar"
	"zorgsites/internal/sites/store/site"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages.
func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Connect(ctx, cfg.Database.URL)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	auditProducer, err := producer.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic, log)
	if err != nil {
		log.Error("failed to start kafka producer", "error", err)
		os.Exit(1)
	}
	var auditSink audit.Sink
	if auditProducer != nil {
		defer auditProducer.Close()
		auditSink = auditProducer
	}

	registrarKey, err := cfg.Registrar.RegistrarKey()
	if err != nil {
		log.Error("failed to load registrar key", "error", err)
		os.Exit(1)
	}
	signer, err := registrar.NewSigner(registrarKey)
	if err != nil {
		log.Error("failed to parse registrar key", "error", err)
		os.Exit(1)
	}

	registrarHTTP := &http.Client{Timeout: cfg.Registrar.Timeout}
	broker := registrar.NewCredentialBroker(registrarHTTP, cfg.Registrar.BaseURL, cfg.Registrar.Login, cfg.Registrar.KeyLabel, signer, log)
	registrarClient := registrar.NewClient(registrarHTTP, cfg.Registrar.BaseURL, broker, log)

	hostingHTTP := &http.Client{Timeout: cfg.Hosting.Timeout}
	hostingClient := hosting.NewClient(hostingHTTP, cfg.Hosting.BaseURL, cfg.Hosting.Token, cfg.Hosting.ProjectID, log)

	recordStore := record.NewPostgres(db.Pool)
	siteStore := site.NewPostgres(db.Pool)

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(metrics.New()),
		service.WithAuditPublisher(audit.NewPublisher(auditSink)),
	}
	if cache := service.NewRedisAvailabilityCache(redisClient, log); cache != nil {
		opts = append(opts, service.WithAvailabilityCache(cache))
	}

	svc := domains.NewService(recordStore, siteStore, registrarClient, hostingClient,
		service.DNSTargets{ApexIP: cfg.Hosting.ApexIP, CNAMETarget: cfg.Hosting.CNAMETarget},
		opts...,
	)

	tokens := jwttoken.NewService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Health(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(tokens, log))
		domains.NewHandler(svc, log).Register(r)
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	go func() {
		log.Info("starting zorgsites server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
