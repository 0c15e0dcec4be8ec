package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	authhandler "projecthub/internal/auth/handler"
	authservice "projecthub/internal/auth/service"
	authstore "projecthub/internal/auth/store"
	"projecthub/internal/cache"
	"projecthub/internal/events"
	"projecthub/internal/platform/config"
	"projecthub/internal/platform/httpserver"
	"projecthub/internal/platform/logger"
	"projecthub/internal/platform/metrics"
	"projecthub/internal/platform/postgres"
	redisplatform "projecthub/internal/platform/redis"
	projecthandler "projecthub/internal/project/handler"
	projectservice "projecthub/internal/project/service"
	projectstore "projecthub/internal/project/store"
	taskhandler "projecthub/internal/task/handler"
	taskservice "projecthub/internal/task/service"
	taskstore "projecthub/internal/task/store"
	"projecthub/internal/token"
	httptransport "projecthub/internal/transport/http"
)

// main wires dependencies and owns the server lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient, err := redisplatform.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	publisher, err := events.NewKafka(cfg.KafkaBrokers, log, m)
	if err != nil {
		log.Error("failed to create kafka producer", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	codec := token.NewCodec(cfg.JWTSigningKey)
	listCache := cache.NewRedis(redisClient.Client)

	users := authstore.NewPostgresUsers(db)
	authSvc := authservice.New(users, authstore.NewPostgresTx(db),
		codec, publisher, log, m, cfg.TokenTTL, cfg.BcryptCost)

	projects := projectstore.NewPostgres(db)
	projectSvc := projectservice.New(projects, listCache, publisher, log, m).
		WithCacheTTL(cfg.CacheTTL)

	tasks := taskstore.NewPostgres(db)
	taskSvc := taskservice.New(tasks, projects, publisher, log)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:   log,
		Metrics:  m,
		Verifier: codec,
		Auth:     authhandler.New(authSvc, log),
		Projects: projecthandler.New(projectSvc, log),
		Tasks:    taskhandler.New(taskSvc, log),
		Checks: []httptransport.HealthCheck{
			{Name: "postgres", Check: db.PingContext},
			{Name: "redis", Check: redisClient.Health},
		},
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting projecthub", "addr", cfg.Addr)
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
		os.Exit(1)
	}
}
