package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gopherai-pdfqa/internal/bootstrap"
	mysqlClient "gopherai-pdfqa/internal/platform/mysql"
	rabbitmqClient "gopherai-pdfqa/internal/platform/rabbitmq"
	redisClient "gopherai-pdfqa/internal/platform/redis"
)

type HealthHandler struct {
	app *bootstrap.App
}

type dependencyStatus struct {
	Enabled bool   `json:"enabled"`
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func NewHealthHandler(app *bootstrap.App) *HealthHandler {
	return &HealthHandler{app: app}
}

// Check reports 503 when any enabled dependency is unreachable. Disabled
// dependencies are reported but never fail the check.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	deps := map[string]dependencyStatus{
		"mysql":    h.checkMySQL(ctx),
		"redis":    h.checkRedis(ctx),
		"rabbitmq": h.checkRabbitMQ(),
	}
	statusCode := http.StatusOK
	for _, d := range deps {
		if d.Enabled && !d.OK {
			statusCode = http.StatusServiceUnavailable
		}
	}

	cfg := h.app.Config
	c.JSON(statusCode, gin.H{
		"app":        cfg.App.Name,
		"env":        cfg.App.Env,
		"uptime_sec": int(time.Since(h.app.StartedAt).Seconds()),
		"models": gin.H{
			"chat":      cfg.LLM.ChatModel,
			"embedding": cfg.LLM.EmbeddingModel,
		},
		"dependencies": deps,
	})
}

func (h *HealthHandler) checkMySQL(ctx context.Context) dependencyStatus {
	if h.app.MySQL == nil {
		return dependencyStatus{}
	}
	if err := mysqlClient.Ping(ctx, h.app.MySQL); err != nil {
		return dependencyStatus{Enabled: true, Message: err.Error()}
	}
	return dependencyStatus{Enabled: true, OK: true}
}

func (h *HealthHandler) checkRedis(ctx context.Context) dependencyStatus {
	if h.app.Redis == nil {
		return dependencyStatus{}
	}
	if err := redisClient.Ping(ctx, h.app.Redis); err != nil {
		return dependencyStatus{Enabled: true, Message: err.Error()}
	}
	return dependencyStatus{Enabled: true, OK: true}
}

func (h *HealthHandler) checkRabbitMQ() dependencyStatus {
	if h.app.MQConn == nil {
		return dependencyStatus{}
	}
	if err := rabbitmqClient.Ping(h.app.MQConn); err != nil {
		return dependencyStatus{Enabled: true, Message: err.Error()}
	}
	return dependencyStatus{Enabled: true, OK: true}
}
