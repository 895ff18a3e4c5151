package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"lifeos/internal/config"
	"lifeos/internal/events"
	"lifeos/internal/inference"
	"lifeos/internal/insights"
	"lifeos/internal/interpreter"
	"lifeos/internal/outbox"
	"lifeos/internal/repository"
	"lifeos/internal/services"
	"lifeos/pkg/database"
	"lifeos/pkg/logger"
)

// Standalone outbox dispatcher. Runs the same event pipeline as the API
// process but without the HTTP surface, for deployments that separate web
// serving from event processing.
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

	outboxRepo := repository.NewOutboxRepository(db)
	insightRepo := repository.NewInsightRepository(db)
	interpRepo := repository.NewInterpretationRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)

	bus := events.NewBus()
	telemetry := insights.NewTelemetry()
	engine := insights.NewEngine(insightRepo, insights.NewOutboxHistory(outboxRepo), telemetry, l)
	engine.Register(bus)

	emitter := inference.NewEmitter(outboxRepo, telemetry)
	domainSvc := services.NewDomainRecordService(db, repository.NewDomainRecordRepository())
	adapters := interpreter.NewAdapterRegistry(domainSvc, domainSvc, domainSvc, domainSvc, domainSvc, domainSvc)
	interp := interpreter.NewInterpreter(db, calendarRepo, interpRepo, outboxRepo, interpreter.NewClassifier(), adapters, emitter, l)
	interp.Register(bus)

	dispatcher := outbox.NewDispatcher(outboxRepo, outbox.NewBusAdapter(bus), l, cfg.Outbox.BatchSize, cfg.Outbox.RetryBackoff, cfg.Outbox.MaxAttempts)
	runner := outbox.NewRunner(dispatcher, cfg.Outbox.PollInterval, l)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner.Start(ctx)

	l.Infof("Outbox dispatcher running (batch %d, every %s)", cfg.Outbox.BatchSize, cfg.Outbox.PollInterval)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	l.Infof("Dispatcher shutting down")
}
