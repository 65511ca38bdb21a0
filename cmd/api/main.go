package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"studioboard/config"
	"studioboard/internal/handler"
	"studioboard/internal/httpserver"
	"studioboard/internal/realtime"
	"studioboard/internal/repository"
	"studioboard/internal/service/access"
	"studioboard/internal/service/auth"
	"studioboard/internal/service/board"
	"studioboard/internal/service/budget"
	"studioboard/internal/service/pitch"
	"studioboard/internal/service/project"
	"studioboard/internal/service/team"
	"studioboard/pkg/db"
	"studioboard/pkg/logger"
	"studioboard/pkg/mq"
	"studioboard/pkg/otel"
	"studioboard/pkg/outbox"
	redisclient "studioboard/pkg/redis"
)

func main() {
	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Sync()

	shutdown, err := otel.Init(otel.Config{
		ServiceName:    "studioboard-api",
		ServiceVersion: "1.0.0",
		Endpoint:       cfg.Otel.Endpoint,
		Enabled:        cfg.Otel.Enabled,
	}, log)
	if err != nil {
		log.Fatal("Failed to init tracing", zap.Error(err))
	}
	defer shutdown()

	pool, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	rdb := redisclient.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to connect to MQ", zap.Error(err))
	}
	defer publisher.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Outbox dispatcher：把事务内落库的事件推到 MQ
	outboxRepo := outbox.NewRepository(pool)
	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, log).
		WithMaxRetries(5).
		WithInterval(1 * time.Second).
		WithBatchSize(100)
	go dispatcher.Start(ctx)

	userRepo := repository.NewUserRepository(pool, log)
	projectRepo := repository.NewProjectRepository(pool, log)
	memberRepo := repository.NewMemberRepository(pool, log)
	categoryRepo := repository.NewCategoryRepository(pool, log)
	taskRepo := repository.NewTaskRepository(pool, log)
	checklistRepo := repository.NewChecklistRepository(pool, log)
	transactionRepo := repository.NewTransactionRepository(pool, log)
	activityRepo := repository.NewActivityRepository(pool, log)
	notificationRepo := repository.NewNotificationRepository(pool, log)

	checker := access.NewChecker(memberRepo)
	hub := realtime.NewHub(rdb, log)

	authService := auth.NewService(userRepo, cfg.JWT.Secret)
	projectService := project.NewService(pool, projectRepo, memberRepo, categoryRepo, userRepo, outboxRepo, checker, log)
	boardService := board.NewService(pool, taskRepo, checklistRepo, outboxRepo, checker, log)
	budgetService := budget.NewService(pool, projectRepo, categoryRepo, transactionRepo, outboxRepo, checker, log)
	teamService := team.NewService(pool, memberRepo, userRepo, outboxRepo, checker, log)
	pitchClient := pitch.NewClient(cfg.Agent.URL, projectRepo, checker, log)
	replayService := outbox.NewReplayService(outboxRepo, publisher, log)

	handlers := httpserver.Handlers{
		Auth:         handler.NewAuthHandler(authService, log),
		Project:      handler.NewProjectHandler(projectService, log),
		Task:         handler.NewTaskHandler(boardService, log),
		Budget:       handler.NewBudgetHandler(budgetService, log),
		Team:         handler.NewTeamHandler(teamService, log),
		Activity:     handler.NewActivityHandler(activityRepo, checker, log),
		Notification: handler.NewNotificationHandler(notificationRepo, log),
		Pitch:        handler.NewPitchHandler(pitchClient, log),
		Stream:       handler.NewStreamHandler(hub, checker, log),
		Admin:        handler.NewAdminHandler(replayService, log),
	}

	router := httpserver.NewRouter(handlers, pool, publisher, cfg.JWT.Secret, userRepo.FindByID, pitchClient.BreakerState, log)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("API server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}
