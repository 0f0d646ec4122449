package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ai-mapper/backend/analyzer"
	"github.com/ai-mapper/backend/config"
	"github.com/ai-mapper/backend/middleware"
	"github.com/ai-mapper/backend/monitoring"
	"github.com/ai-mapper/backend/recommend"
	"github.com/ai-mapper/backend/stats"
)

type server struct {
	cfg      config.Config
	analyzer *analyzer.Service
	usage    *stats.Storage
	metrics  *monitoring.Metrics
	logger   *zap.Logger
}

func (s *server) routes() *gin.Engine {
	var (
		requests middleware.RequestRecorder
		rejected middleware.RejectionRecorder
	)
	if s.metrics != nil {
		requests, rejected = s.metrics, s.metrics
	}

	rateLimiter := middleware.NewRateLimiter(s.cfg.RateLimitRPS, s.cfg.RateLimitBurst, rejected)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler(s.logger))
	r.Use(middleware.StatsMiddleware(requests, s.logger))
	r.Use(middleware.CORS(s.cfg.AllowedOrigins))

	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := r.Group("/api")
	api.Use(rateLimiter.RateLimit())
	{
		api.GET("/health", s.health)
		api.GET("/benchmarks", s.benchmarks)
		api.GET("/statistics", s.statistics)
		api.POST("/analyze", middleware.Quota(s.usage, s.cfg.MonthlyQuota, rejected), s.analyze)
	}
	return r
}

func (s *server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UnixMilli(),
	})
}

func (s *server) benchmarks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"industries": recommend.Benchmarks()})
}

func (s *server) statistics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"current": s.usage.GetCurrentStats(),
		"months":  s.usage.GetAllMonths(),
	})
}

func (s *server) analyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxBodyBytes)

	var req analyzer.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Payload too large."})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body."})
		return
	}

	rep, err := s.analyzer.Analyze(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rep)
}

// statusFor maps analysis errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, analyzer.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, analyzer.ErrFetch):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
