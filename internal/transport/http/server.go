package http

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"gopherai-pdfqa/internal/bootstrap"
	"gopherai-pdfqa/internal/config"
	"gopherai-pdfqa/internal/transport/http/handler"
	"gopherai-pdfqa/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) (*gin.Engine, error) {
	cfg := app.Config
	if cfg.App.GinMode != "" {
		gin.SetMode(cfg.App.GinMode)
	}
	router := gin.New()
	router.MaxMultipartMemory = cfg.MaxUploadBytes()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(), corsMiddleware(cfg.HTTP))

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	protected := []gin.HandlerFunc{}
	if cfg.HTTP.RateLimit != "" {
		limit, err := middleware.RateLimit(cfg.HTTP.RateLimit, app.Redis)
		if err != nil {
			return nil, fmt.Errorf("configure rate limit failed: %w", err)
		}
		protected = append(protected, limit)
	}
	if cfg.Auth.Enabled {
		protected = append(protected, middleware.AuthJWT(cfg.Auth.JWTSecret))
	}

	api := router.Group("/", protected...)

	uploadHandler := handler.NewUploadHandler(app.QA, cfg.MaxUploadBytes())
	api.POST("/upload-pdf", uploadHandler.UploadPDF)

	if app.AuditRepo != nil {
		auditHandler := handler.NewAuditHandler(app.AuditRepo)
		api.GET("/audit/queries", auditHandler.ListQueries)
	}

	return router, nil
}

func corsMiddleware(cfg config.HTTPConfig) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders: []string{middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.CORSAllowedOrigins) == 0 || (len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.CORSAllowedOrigins
		c.AllowCredentials = true
	}
	return cors.New(c)
}
