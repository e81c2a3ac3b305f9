package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"attendance/internal/checkin"
	"attendance/internal/config"
	"attendance/internal/queue"
	"attendance/internal/report"
	"attendance/internal/store"
	"attendance/internal/timeutil"
)

// Worker keeps the live stats snapshot fresh as scans arrive and runs
// the nightly report export.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
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
	engine := report.NewEngine(repo, repo, 0)

	go runDailyExport(ctx, engine, cfg)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for messages...")
	for msg := range messages {
		if msg.Type != "checkin" {
			continue
		}
		date := string(msg.Body)
		stats, err := engine.StatsForDate(ctx, date)
		if err != nil {
			log.Printf("stats refresh for %s failed: %v", date, err)
			continue
		}
		data, err := json.Marshal(stats)
		if err != nil {
			continue
		}
		if err := redisClient.Client.Set(ctx, "attendance:stats:"+date, data, 24*time.Hour).Err(); err != nil {
			log.Printf("stats cache write failed: %v", err)
		}
	}

	log.Println("worker stopped")
}

// runDailyExport fires once per day at REPORT_HOUR local time. Days
// that did not reach the meeting threshold are skipped, so quiet days
// produce no files.
func runDailyExport(ctx context.Context, engine *report.Engine, cfg config.App) {
	for {
		select {
		case <-time.After(untilNextRun(time.Now(), cfg.ReportHour)):
		case <-ctx.Done():
			return
		}
		if err := exportReports(ctx, engine, cfg); err != nil {
			log.Printf("daily export failed: %v", err)
		}
	}
}

// untilNextRun returns the wait until the next occurrence of hour
// o'clock local time.
func untilNextRun(now time.Time, hour int) time.Duration {
	now = now.Local()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.Local)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// exportReports writes the season-to-date CSV bundle into EXPORT_DIR.
func exportReports(ctx context.Context, engine *report.Engine, cfg config.App) error {
	now := time.Now()
	today := timeutil.Date(now)

	meeting, err := engine.IsMeetingDate(ctx, today, cfg.MeetingThreshold)
	if err != nil {
		return err
	}
	if !meeting {
		log.Printf("%s was not a meeting day, skipping export", today)
		return nil
	}

	r := report.Range{Start: timeutil.SeasonStart(now), End: today}
	bundle, err := engine.GenerateBundle(ctx, r, cfg.MeetingThreshold)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.ExportDir, 0o755); err != nil {
		return err
	}
	files := map[string]string{
		timeutil.CSVFilename("attendance-report", now): bundle.Attendance,
		timeutil.CSVFilename("meeting-report", now):    bundle.Meeting,
		timeutil.CSVFilename("checkins", now):          bundle.Checkins,
	}
	for name, data := range files {
		path := filepath.Join(cfg.ExportDir, name)
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			return err
		}
		log.Printf("wrote %s", path)
	}
	return nil
}
