package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"studioboard/config"
	mqcontracts "studioboard/contracts/mq"
	"studioboard/internal/mqhandler"
	"studioboard/internal/realtime"
	"studioboard/internal/repository"
	"studioboard/pkg/db"
	"studioboard/pkg/logger"
	"studioboard/pkg/mq"
	"studioboard/pkg/otel"
	redisclient "studioboard/pkg/redis"
	"studioboard/pkg/util"
)

const maxHandlerRetries = 5

func main() {
	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Sync()

	shutdown, err := otel.Init(otel.Config{
		ServiceName:    "studioboard-worker",
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

	// DLQ 发布复用 publisher 连接
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to connect to MQ", zap.Error(err))
	}
	defer publisher.Close()

	dlqKeys := []string{
		mqcontracts.RoutingProjectCreated,
		mqcontracts.RoutingTaskCreated,
		mqcontracts.RoutingTaskUpdated,
		mqcontracts.RoutingTaskDeleted,
		mqcontracts.RoutingChecklistChanged,
		mqcontracts.RoutingTransactionRecorded,
		mqcontracts.RoutingMemberAdded,
		mqcontracts.RoutingMemberRemoved,
	}
	if err := mq.SetupDLQ(cfg.MQ.URL, dlqKeys); err != nil {
		log.Fatal("Failed to set up DLQ", zap.Error(err))
	}

	projectRepo := repository.NewProjectRepository(pool, log)
	taskRepo := repository.NewTaskRepository(pool, log)
	checklistRepo := repository.NewChecklistRepository(pool, log)
	categoryRepo := repository.NewCategoryRepository(pool, log)
	transactionRepo := repository.NewTransactionRepository(pool, log)
	activityRepo := repository.NewActivityRepository(pool, log)
	notificationRepo := repository.NewNotificationRepository(pool, log)

	hub := realtime.NewHub(rdb, log)
	deduper := util.NewDeduper(rdb, 1*time.Hour)
	retries := util.NewRetryCounter(rdb, 1*time.Hour)
	guard := mqhandler.NewGuard(deduper, retries, publisher, maxHandlerRetries, log)

	boardHandler := mqhandler.NewBoardProgressHandler(guard, projectRepo, taskRepo, checklistRepo, activityRepo, notificationRepo, hub, log)
	checklistHandler := mqhandler.NewChecklistHandler(guard, taskRepo, checklistRepo, hub, log)
	budgetHandler := mqhandler.NewBudgetRollupHandler(guard, projectRepo, categoryRepo, transactionRepo, activityRepo, notificationRepo, hub, log)
	teamHandler := mqhandler.NewTeamActivityHandler(guard, projectRepo, activityRepo, notificationRepo, hub, log)
	projectHandler := mqhandler.NewProjectCreatedHandler(guard, activityRepo, hub, log)

	bindings := []struct {
		queue      string
		routingKey string
		handler    mq.MessageHandler
	}{
		{"board.progress.q", "task.*", boardHandler.Handle},
		{"task.checklist.q", mqcontracts.RoutingChecklistChanged, checklistHandler.Handle},
		{"budget.rollup.q", mqcontracts.RoutingTransactionRecorded, budgetHandler.Handle},
		{"team.roster.q", "member.*", teamHandler.Handle},
		{"project.lifecycle.q", mqcontracts.RoutingProjectCreated, projectHandler.Handle},
	}

	consumers := make([]*mq.Consumer, 0, len(bindings))
	for _, b := range bindings {
		consumer, err := mq.NewConsumer(cfg.MQ.URL, b.queue, b.routingKey, log)
		if err != nil {
			log.Fatal("Failed to create consumer",
				zap.String("queue", b.queue),
				zap.Error(err),
			)
		}
		consumer.SetHandler(b.handler)
		consumers = append(consumers, consumer)

		go func(c *mq.Consumer, queue string) {
			if err := c.StartConsuming(); err != nil {
				log.Error("Consumer stopped", zap.String("queue", queue), zap.Error(err))
			}
		}(consumer, b.queue)
	}
	defer func() {
		for _, c := range consumers {
			c.Close()
		}
	}()

	// 指标与健康检查端口
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	go func() {
		if err := http.ListenAndServe(":9091", mux); err != nil && err != http.ErrServerClosed {
			log.Error("Metrics server failed", zap.Error(err))
		}
	}()

	log.Info("Derived worker started", zap.Int("consumers", len(consumers)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	log.Info("Shutting down")
}
