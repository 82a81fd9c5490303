package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Alexander2005-rgb/attendance-backend/internal/attendance"
	"github.com/Alexander2005-rgb/attendance-backend/internal/auth"
	"github.com/Alexander2005-rgb/attendance-backend/internal/config"
	"github.com/Alexander2005-rgb/attendance-backend/internal/handler"
	"github.com/Alexander2005-rgb/attendance-backend/internal/httpmiddleware"
	"github.com/Alexander2005-rgb/attendance-backend/internal/photo"
	"github.com/Alexander2005-rgb/attendance-backend/internal/queue"
	"github.com/Alexander2005-rgb/attendance-backend/internal/store"
	"github.com/Alexander2005-rgb/attendance-backend/internal/user"
)

func main() {
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "attendance:marks")
	}

	photos, err := photo.New(cfg.UploadDir)
	if err != nil {
		return err
	}

	users := user.NewRepository(db.Client)
	records := attendance.NewRepository(db.Client)
	ledger := attendance.NewService(records, users)
	h := handler.New(ledger, users, photos, q, cfg.JWTSigningKey, cfg.JWTIssuer, cfg.TokenTTL)

	r := gin.New()

	// Recovery middleware
	r.Use(gin.Recovery())

	// Custom logger
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))

	// CORS middleware
	r.Use(corsMiddleware())

	// Security headers
	r.Use(securityHeaders())

	// Rate limiting
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	api := r.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.POST("/register", h.Register)
	authRoutes.POST("/login", h.Login)
	authRoutes.PUT("/users/:id",
		auth.Bearer(cfg.JWTSigningKey, cfg.JWTIssuer),
		auth.Require(auth.OpUpdateUser),
		h.UpdateUser)

	att := api.Group("/attendance")

	// Capture-device endpoint: the device holds no credentials, only roll
	// numbers it recognized.
	att.POST("/mark", h.Mark)

	authed := att.Group("", auth.Bearer(cfg.JWTSigningKey, cfg.JWTIssuer))
	authed.GET("", auth.Require(auth.OpQueryAttendance), h.ListAttendance)
	authed.POST("", auth.Require(auth.OpMarkAttendance), h.CreateAttendance)
	authed.PUT("/:id", auth.Require(auth.OpUpdateAttendance), h.UpdateAttendance)
	authed.GET("/students", auth.Require(auth.OpListStudents), h.ListStudents)
	authed.GET("/student/:rollNumber", auth.Require(auth.OpQueryAttendance), h.History)

	r.Static("/uploads", photos.Dir())

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
