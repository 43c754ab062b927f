package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"appointly/models"

	"github.com/hibiken/asynq"
)

const TypeRefundRetry = "refund:retry"

func NewRefundRetryTask(payload models.RefundRetryPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeRefundRetry, b)
	opts := []asynq.Option{
		asynq.MaxRetry(10),
		asynq.ProcessIn(30 * time.Second),
		asynq.TaskID("refund:" + payload.AppointmentID),
	}
	return task, opts, nil
}

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqRefundQueue hands failed refunds to the background worker.
type AsynqRefundQueue struct {
	Client Enqueuer
}

func (q *AsynqRefundQueue) EnqueueRefundRetry(ctx context.Context, payload models.RefundRetryPayload) error {
	task, opts, err := NewRefundRetryTask(payload)
	if err != nil {
		return fmt.Errorf("failed to build refund task: %w", err)
	}
	if _, err := q.Client.EnqueueContext(ctx, task, opts...); err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		return fmt.Errorf("failed to enqueue refund task: %w", err)
	}
	return nil
}
