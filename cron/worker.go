package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	appointmentRepo "appointly/database/repository/appointment"
	"appointly/metrics"
	"appointly/models"
	"appointly/services/payment"
	"appointly/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// RefundWorkerDeps are the collaborators the refund worker needs.
type RefundWorkerDeps struct {
	Payments     payment.Gateway
	Appointments appointmentRepo.AppointmentRepository
	Metrics      *metrics.BookingMetrics
	Logger       *zap.Logger
}

// InitRefundWorker runs the async worker in background and returns the
// server so the caller can shut it down.
func InitRefundWorker(redisOpts asynq.RedisClientOpt, deps RefundWorkerDeps) *asynq.Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeRefundRetry, handleRefundTask(deps, logger))

	go monitorRedisConnection(redisOpts, logger)

	go func() {
		logger.Info("starting refund worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				break
			}
			logger.Error("refund worker failed to start", zap.Int("attempt", attempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Fatal("refund worker gave up after max attempts")
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

func handleRefundTask(deps RefundWorkerDeps, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.RefundRetryPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("invalid refund payload", zap.Error(err))
			return fmt.Errorf("invalid refund payload: %v: %w", err, asynq.SkipRetry)
		}

		res, err := deps.Payments.RefundPayment(ctx, models.RefundInput{
			AppointmentID:  p.AppointmentID,
			PaymentID:      p.PaymentID,
			AmountCents:    p.AmountCents,
			Reason:         p.Reason,
			IdempotencyKey: "cancel-refund:" + p.AppointmentID,
		})
		if err != nil {
			logger.Warn("refund retry failed", zap.String("appointmentId", p.AppointmentID), zap.Error(err))
			return err
		}
		deps.Metrics.ObserveRefund(res.Status)

		if err := deps.Appointments.SetRefund(ctx, p.AppointmentID, models.RefundRecord{
			RefundID:    res.RefundID,
			AmountCents: p.AmountCents,
			Status:      res.Status,
			UpdatedAt:   time.Now().UTC(),
		}); err != nil {
			// The refund went through; a retry would hit the same idempotency key.
			logger.Error("refund issued but not recorded", zap.String("appointmentId", p.AppointmentID), zap.String("refundId", res.RefundID), zap.Error(err))
			return err
		}
		logger.Info("queued refund issued", zap.String("appointmentId", p.AppointmentID), zap.String("refundId", res.RefundID))
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection(opts asynq.RedisClientOpt, logger *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx := context.Background()
	for {
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("refund worker lost its redis connection", zap.Error(err))
		}
		time.Sleep(10 * time.Second)
	}
}
