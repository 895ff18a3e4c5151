package main

import (
	"context"
	"log"

	"lifeos/internal/config"
	"lifeos/internal/events"
	"lifeos/internal/handler"
	"lifeos/internal/inference"
	"lifeos/internal/insights"
	"lifeos/internal/interpreter"
	"lifeos/internal/outbox"
	"lifeos/internal/redis"
	"lifeos/internal/repository"
	"lifeos/internal/server"
	"lifeos/internal/services"
	"lifeos/pkg/database"
	"lifeos/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	l := logger.New(cfg.Server.Environment)
	logger.SetGlobalLogger(l)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.ApplyMigrations(db, "migrations"); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	// Repositories
	outboxRepo := repository.NewOutboxRepository(db)
	insightRepo := repository.NewInsightRepository(db)
	interpRepo := repository.NewInterpretationRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	userRepo := repository.NewUserRepository(db)
	domainRecordRepo := repository.NewDomainRecordRepository()

	// Event pipeline
	bus := events.NewBus()
	telemetry := insights.NewTelemetry()
	engine := insights.NewEngine(insightRepo, insights.NewOutboxHistory(outboxRepo), telemetry, l)
	engine.Register(bus)

	emitter := inference.NewEmitter(outboxRepo, telemetry)
	domainSvc := services.NewDomainRecordService(db, domainRecordRepo)
	adapters := interpreter.NewAdapterRegistry(domainSvc, domainSvc, domainSvc, domainSvc, domainSvc, domainSvc)
	interp := interpreter.NewInterpreter(db, calendarRepo, interpRepo, outboxRepo, interpreter.NewClassifier(), adapters, emitter, l)
	interp.Register(bus)

	// Outbox dispatcher
	busAdapter := outbox.NewBusAdapter(bus)
	dispatcher := outbox.NewDispatcher(outboxRepo, busAdapter, l, cfg.Outbox.BatchSize, cfg.Outbox.RetryBackoff, cfg.Outbox.MaxAttempts)
	runner := outbox.NewRunner(dispatcher, cfg.Outbox.PollInterval, l)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner.Start(ctx)

	// Rate limiting is best effort: a missing Redis disables it.
	var limiter *redis.RateLimiter
	redisClient := redis.NewClient(cfg.Redis)
	if err := redis.Ping(ctx, redisClient); err != nil {
		l.Warnf("Redis unavailable, rate limiting disabled: %s", err)
	} else {
		limiter = redis.NewRateLimiter(redisClient, redis.DefaultRateLimitConfig())
	}

	// Services and handlers
	authService := services.NewAuthService(userRepo, cfg)
	calendarService := services.NewCalendarService(db, calendarRepo, outboxRepo)

	handlers := &server.Handlers{
		Auth:           handler.NewAuthHandler(authService),
		Calendar:       handler.NewCalendarHandler(calendarService),
		Interpretation: handler.NewInterpretationHandler(interp),
		Insight:        handler.NewInsightHandler(insightRepo, telemetry, emitter),
	}

	srv := server.New(cfg, l, db)
	srv.SetupRoutes(handlers, authService, limiter)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped with error: %v", err)
	}
}
