package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/resumematch-web/internal/config"
	"github.com/yourusername/resumematch-web/internal/handler"
	"github.com/yourusername/resumematch-web/internal/middleware"
	"github.com/yourusername/resumematch-web/internal/repository"
	"github.com/yourusername/resumematch-web/internal/service"
	"github.com/yourusername/resumematch-web/internal/web"
)

func main() {
	// ── Logging ──────────────────────────────────────────
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// ── Config ───────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Str("matcher", cfg.MatcherBaseURL).
		Msg("Starting ResumeMatch gateway")

	// ── Database (optional) ──────────────────────────────
	ctx := context.Background()
	var historyRepo *repository.HistoryRepo
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to ping database")
		}
		log.Info().Msg("Database connected; operation history enabled")

		historyRepo = repository.NewHistoryRepo(pool)
	} else {
		log.Info().Msg("No DATABASE_URL set; running stateless")
	}

	// ── Service client ───────────────────────────────────
	matcher := service.NewMatcherClient(cfg.MatcherBaseURL, time.Duration(cfg.MatcherTimeout)*time.Second)

	// ── Handlers ─────────────────────────────────────────
	resumeHandler := handler.NewResumeHandler(matcher, historyRepo, cfg.MaxUploadBytes(), cfg.DefaultMinScore)

	// ── Middleware ────────────────────────────────────────
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS)
	inflight := middleware.NewInflightGuard()

	// ── Router ───────────────────────────────────────────
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())
	r.MaxMultipartMemory = cfg.MaxUploadBytes()

	// CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "resumematch-web",
			"time":    time.Now().UTC(),
		})
	})

	// ── API Routes ───────────────────────────────────────
	api := r.Group("/api", rateLimiter.Limit())
	{
		api.POST("/upload-resume", inflight.Guard("parse"), resumeHandler.Parse)
		api.POST("/match-resume-jd", inflight.Guard("match"), resumeHandler.Match)
		api.POST("/bulk-match", inflight.Guard("bulk-match"), resumeHandler.BulkMatch)

		if historyRepo != nil {
			historyHandler := handler.NewHistoryHandler(historyRepo)
			api.GET("/history", historyHandler.Recent)
		}
	}

	// ── Embedded UI ──────────────────────────────────────
	if err := web.Register(r); err != nil {
		log.Fatal().Err(err).Msg("Failed to mount embedded UI")
	}

	// ── Server ───────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Msg("ResumeMatch gateway running")

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

// requestLogger logs every request with zerolog
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= 400 {
			event = log.Warn()
		}
		if status >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", latency).
			Str("ip", c.ClientIP()).
			Msg(fmt.Sprintf("%s %s", c.Request.Method, path))
	}
}
