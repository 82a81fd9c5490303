package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alexander2005-rgb/attendance-backend/internal/attendance"
	"github.com/Alexander2005-rgb/attendance-backend/internal/config"
	"github.com/Alexander2005-rgb/attendance-backend/internal/queue"
	"github.com/Alexander2005-rgb/attendance-backend/internal/store"
	"github.com/Alexander2005-rgb/attendance-backend/internal/user"
)

// Worker consumes mark events and maintains per-(day, period) roster
// summaries in Redis for dashboards. Tallies are best-effort: a re-mark
// counts again rather than reclassifying the earlier mark.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "attendance:marks")
	}

	records := attendance.NewRepository(db.Client)
	users := user.NewRepository(db.Client)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for messages...")
	for msg := range messages {
		if msg.Type != "mark" {
			continue
		}

		id := string(msg.Body)
		log.Printf("processing mark %s", id)

		rec, err := records.GetByID(ctx, id)
		if err != nil || rec == nil {
			log.Printf("fetch record %s failed: %v", id, err)
			continue
		}

		student, err := users.GetByID(ctx, rec.StudentID)
		if err != nil || student == nil {
			log.Printf("fetch student for %s failed: %v", id, err)
			continue
		}

		year := 0
		if student.Year != nil {
			year = *student.Year
		}
		key := fmt.Sprintf("attendance:summary:%s:%d", rec.Day.Format("2006-01-02"), rec.ClassPeriod)
		field := fmt.Sprintf("%s:%d:%s", student.Class, year, rec.Status)
		if err := redisClient.Client.HIncrBy(ctx, key, field, 1).Err(); err != nil {
			log.Printf("summary update failed for %s: %v", id, err)
			continue
		}
		// Summaries are only interesting for a few days either side of the mark.
		_ = redisClient.Client.Expire(ctx, key, 7*24*time.Hour).Err()

		log.Printf("mark %s tallied into %s", id, key)
	}

	log.Println("worker stopped")
}
