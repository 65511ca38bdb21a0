package httpserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"studioboard/internal/handler"
	"studioboard/internal/model"
	"studioboard/pkg/circuitbreaker"
	"studioboard/pkg/mq"
	"studioboard/pkg/otel"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	Project      *handler.ProjectHandler
	Task         *handler.TaskHandler
	Budget       *handler.BudgetHandler
	Team         *handler.TeamHandler
	Activity     *handler.ActivityHandler
	Notification *handler.NotificationHandler
	Pitch        *handler.PitchHandler
	Stream       *handler.StreamHandler
	Admin        *handler.AdminHandler
}

func NewRouter(
	h Handlers,
	db *pgxpool.Pool,
	publisher *mq.Publisher,
	jwtSecret string,
	findUser func(ctx context.Context, id int) (*model.User, error),
	breakerState func() circuitbreaker.State,
	logger *zap.Logger,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TraceMiddleware())
	r.Use(otel.GinMiddleware())
	r.Use(LoggingMiddleware(logger))
	r.Use(MetricsMiddleware())

	// 健康检查
	healthz := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	r.GET("/healthz", healthz)
	r.HEAD("/healthz", healthz)
	r.GET("/health", healthz)
	r.HEAD("/health", healthz)

	r.GET("/readyz", func(c *gin.Context) {
		if err := db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unreachable"})
			return
		}
		if !publisher.IsConnected() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "mq unreachable"})
			return
		}
		// agent 熔断器只上报不拉闸：外部服务抖动不该让 pod 下线
		c.JSON(http.StatusOK, gin.H{
			"status":        "ready",
			"agent_breaker": breakerState().String(),
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/register", h.Auth.Register)
	r.POST("/login", h.Auth.Login)

	api := r.Group("/")
	api.Use(AuthMiddleware(jwtSecret))
	{
		api.GET("/projects", h.Project.List)
		api.POST("/projects", h.Project.Create)
		api.GET("/projects/:id", h.Project.Get)
		api.PATCH("/projects/:id", h.Project.Update)
		api.DELETE("/projects/:id", h.Project.Delete)

		api.GET("/projects/:id/tasks", h.Task.List)
		api.POST("/projects/:id/tasks", h.Task.Create)
		api.PATCH("/tasks/:taskId", h.Task.Update)
		api.POST("/tasks/:taskId/move", h.Task.Move)
		api.DELETE("/tasks/:taskId", h.Task.Delete)

		api.GET("/tasks/:taskId/checklist", h.Task.ListChecklist)
		api.POST("/tasks/:taskId/checklist", h.Task.AddChecklistItem)
		api.PATCH("/checklist/:itemId", h.Task.UpdateChecklistItem)
		api.DELETE("/checklist/:itemId", h.Task.DeleteChecklistItem)

		api.GET("/projects/:id/budget", h.Budget.Summary)
		api.POST("/projects/:id/categories", h.Budget.AddCategory)
		api.PATCH("/categories/:categoryId", h.Budget.UpdateCategory)
		api.DELETE("/categories/:categoryId", h.Budget.DeleteCategory)
		api.GET("/projects/:id/transactions", h.Budget.ListTransactions)
		api.POST("/projects/:id/transactions", h.Budget.RecordTransaction)
		api.DELETE("/transactions/:transactionId", h.Budget.DeleteTransaction)

		api.GET("/projects/:id/members", h.Team.List)
		api.POST("/projects/:id/members", h.Team.Add)
		api.DELETE("/projects/:id/members/:memberId", h.Team.Remove)

		api.GET("/projects/:id/activity", h.Activity.List)

		api.GET("/notifications", h.Notification.List)
		api.POST("/notifications/:notificationId/read", h.Notification.MarkRead)

		api.POST("/projects/:id/pitch", h.Pitch.Generate)

		api.GET("/projects/:id/events", h.Stream.Events)
	}

	admin := api.Group("/admin")
	admin.Use(AdminMiddleware(findUser))
	{
		admin.POST("/outbox/replay", h.Admin.ReplayOutboxEvent)
		admin.POST("/outbox/replay-failed", h.Admin.ReplayFailedEvents)
	}

	return r
}
