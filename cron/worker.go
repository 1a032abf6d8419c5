package cron

import (
	"context"
	"errors"
	"log"
	"time"

	"autodeel/config"
	"autodeel/services/payment"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	cronlib "github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const TypePaymentSync = "payment:sync"

// InitSyncWorker runs the async worker in background. It drains payment:sync
// tasks, each of which reconciles every outstanding payment against the
// gateway.
func InitSyncWorker(paymentSvc payment.PaymentService, logger *zap.Logger) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			// Reconciliation is rate-limited against the gateway, so one
			// task at a time is enough.
			Concurrency: 1,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypePaymentSync, handleSyncTask(paymentSvc, logger))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[SyncWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[SyncWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[SyncWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleSyncTask(paymentSvc payment.PaymentService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		report, err := paymentSvc.SyncOutstanding(ctx)
		if err != nil {
			logger.Error("payment status sync failed", zap.Error(err))
			return err
		}
		if len(report.Errors) > 0 {
			logger.Warn("payment status sync finished with errors",
				zap.Int("updated", report.UpdatedCount),
				zap.Strings("errors", report.Errors))
			return nil
		}
		logger.Info("payment status sync finished", zap.Int("updated", report.UpdatedCount))
		return nil
	}
}

// NewEnqueuer builds the asynq client used to fire sync tasks.
func NewEnqueuer() *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
}

// EnqueueStatusSync fires a payment:sync task. Best-effort: read endpoints
// call this fire-and-forget and must never fail because the queue is down.
func EnqueueStatusSync(client *asynq.Client, logger *zap.Logger) {
	task := asynq.NewTask(TypePaymentSync, nil)
	// Dedupe bursts: many page loads within a minute collapse into one run.
	if _, err := client.Enqueue(task, asynq.TaskID(TypePaymentSync), asynq.Retention(time.Minute)); err != nil {
		if !errors.Is(err, asynq.ErrDuplicateTask) && !errors.Is(err, asynq.ErrTaskIDConflict) {
			logger.Warn("failed to enqueue payment sync", zap.Error(err))
		}
	}
}

// StartScheduler enqueues a bulk sync on a fixed schedule so payments get
// reconciled even when nobody opens the app.
func StartScheduler(client *asynq.Client, logger *zap.Logger) *cronlib.Cron {
	c := cronlib.New()
	if _, err := c.AddFunc("@every 15m", func() {
		EnqueueStatusSync(client, logger)
	}); err != nil {
		logger.Error("failed to schedule payment sync", zap.Error(err))
		return c
	}
	c.Start()
	return c
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[SyncWorker] redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
