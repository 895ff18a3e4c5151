package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"lifeos/internal/config"
	"lifeos/internal/handler"
	"lifeos/internal/middleware"
	"lifeos/internal/redis"
	"lifeos/internal/services"
	"lifeos/internal/transport/httpdto"
	"lifeos/pkg/database"
	"lifeos/pkg/logger"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
	db         *sql.DB
}

var (
	ReleaseMode = "production"
	TestMode    = "test"
)

type Handlers struct {
	Auth           *handler.AuthHandler
	Calendar       *handler.CalendarHandler
	Interpretation *handler.InterpretationHandler
	Insight        *handler.InsightHandler
}

func New(cfg *config.Config, l *logger.Logger, db *sql.DB) *Server {
	if cfg.Server.Environment == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.Server.Environment == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
		db:     db,
	}
}

func (s *Server) SetupRoutes(handlers *Handlers, authService *services.AuthService, limiter *redis.RateLimiter) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))
	if limiter != nil {
		s.engine.Use(middleware.RateLimitMiddleware(limiter))
	}

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(s.db); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	auth := s.engine.Group("/api/auth")
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
	}

	api := s.engine.Group("/api", middleware.AuthMiddleware(authService))
	if limiter != nil {
		api.Use(middleware.WriteRateLimitMiddleware(limiter))
	}
	{
		api.POST("/calendar/events", handlers.Calendar.CreateEvent)
		api.GET("/calendar/events", handlers.Calendar.ListEvents)
		api.GET("/calendar/events/:id", handlers.Calendar.GetEvent)
		api.PUT("/calendar/events/:id", handlers.Calendar.UpdateEvent)

		api.GET("/calendar/interpretations/pending", handlers.Interpretation.ListPending)
		api.PATCH("/calendar/interpretations/:id", handlers.Interpretation.Review)

		api.GET("/insights", handlers.Insight.List)
	}

	admin := s.engine.Group("/admin", middleware.AuthMiddleware(authService), middleware.AdminMiddleware())
	{
		admin.GET("/debug/insight-telemetry", handlers.Insight.Telemetry)
		admin.GET("/debug/inference-feedback", handlers.Insight.InferenceFeedback)
	}
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.Server.Port)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.Server.Port)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
