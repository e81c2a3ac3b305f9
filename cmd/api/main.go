package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"attendance/internal/auth"
	"attendance/internal/checkin"
	"attendance/internal/config"
	"attendance/internal/httpmiddleware"
	"attendance/internal/queue"
	"attendance/internal/report"
	"attendance/internal/store"
	"attendance/internal/timeutil"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "attendance:checkins")
	}

	repo := checkin.NewRepository(db.Client, db.Driver)
	svc := checkin.NewService(repo, q)
	engine := report.NewEngine(repo, repo, 0)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

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

	r.POST("/v1/kiosks/register", func(c *gin.Context) {
		var req struct {
			KioskID string `json:"kiosk_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := svc.RegisterKiosk(c.Request.Context(), req.KioskID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		token, err := auth.Issue(req.KioskID, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"access_token": token.Value,
			"expires_at":   token.ExpiresAt.Unix(),
		})
	})

	authGroup := r.Group("/v1", auth.KioskAuth(cfg.JWTSigningKey, cfg.JWTIssuer))

	authGroup.POST("/checkins", func(c *gin.Context) {
		var req struct {
			IDNumber string `json:"id_number" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		evt, err := svc.RecordCheckin(c.Request.Context(), req.IDNumber)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, checkin.ErrInvalidIDNumber) {
				status = http.StatusBadRequest
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, evt)
	})

	authGroup.PUT("/students", func(c *gin.Context) {
		var req struct {
			IDNumber  string `json:"id_number" binding:"required"`
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := svc.UpsertStudent(c.Request.Context(), req.IDNumber, req.FirstName, req.LastName); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, checkin.ErrInvalidIDNumber) {
				status = http.StatusBadRequest
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	})

	authGroup.GET("/stats/today", func(c *gin.Context) {
		ctx := c.Request.Context()
		date := timeutil.Today()
		key := "attendance:stats:" + date

		if data, err := redisClient.Client.Get(ctx, key).Bytes(); err == nil {
			var stats report.Stats
			if json.Unmarshal(data, &stats) == nil {
				c.JSON(http.StatusOK, stats)
				return
			}
		}
		stats, err := engine.StatsForDate(ctx, date)
		if err != nil {
			reportError(c, err)
			return
		}
		if data, err := json.Marshal(stats); err == nil {
			redisClient.Client.Set(ctx, key, data, cfg.StatsCacheTTL)
		}
		c.JSON(http.StatusOK, stats)
	})

	authGroup.GET("/reports/attendance", reportHandler(cfg, func(ctx context.Context, r report.Range, threshold int) (string, error) {
		rep, err := engine.AttendanceReport(ctx, r, threshold)
		if err != nil {
			return "", err
		}
		return rep.CSV(), nil
	}, "attendance-report"))

	authGroup.GET("/reports/meeting", reportHandler(cfg, func(ctx context.Context, r report.Range, threshold int) (string, error) {
		rep, err := engine.MeetingReport(ctx, r, threshold)
		if err != nil {
			return "", err
		}
		return rep.CSV(), nil
	}, "meeting-report"))

	authGroup.GET("/reports/checkins", reportHandler(cfg, func(ctx context.Context, r report.Range, threshold int) (string, error) {
		rep, err := engine.CheckinDetail(ctx, r, threshold)
		if err != nil {
			return "", err
		}
		return rep.CSV(), nil
	}, "checkins"))

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}
	log.Println("Server exited")
	return nil
}

// reportHandler parses the shared query parameters, runs one builder,
// and writes the CSV as a download.
func reportHandler(cfg config.App, build func(ctx context.Context, r report.Range, threshold int) (string, error), prefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		r := report.Range{
			Start: c.Query("start_date"),
			End:   c.Query("end_date"),
		}
		threshold := cfg.MeetingThreshold
		if v := c.Query("meeting_threshold"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "meeting_threshold must be an integer"})
				return
			}
			threshold = parsed
		}
		csv, err := build(c.Request.Context(), r, threshold)
		if err != nil {
			reportError(c, err)
			return
		}
		c.Header("Content-Disposition", "attachment; filename="+timeutil.CSVFilename(prefix, time.Now()))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(csv))
	}
}

// reportError maps engine errors to status codes: rejected parameters
// are the caller's fault, store failures are ours.
func reportError(c *gin.Context, err error) {
	var verr *report.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
		return
	}
	log.Printf("report query failed: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "report generation failed"})
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}
