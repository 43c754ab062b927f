package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"appointly/models"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (e *recordingEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.tasks = append(e.tasks, task)
	return &asynq.TaskInfo{ID: "t1", Type: task.Type()}, nil
}

func TestEnqueueRefundRetry(t *testing.T) {
	enq := &recordingEnqueuer{}
	q := &AsynqRefundQueue{Client: enq}
	payload := models.RefundRetryPayload{AppointmentID: "a1", PaymentID: "pi_1", AmountCents: 4000, Reason: "sick"}

	require.NoError(t, q.EnqueueRefundRetry(context.Background(), payload))
	require.Len(t, enq.tasks, 1)
	assert.Equal(t, TypeRefundRetry, enq.tasks[0].Type())

	var got models.RefundRetryPayload
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &got))
	assert.Equal(t, payload, got)
}

func TestEnqueueRefundRetryDuplicateIsIgnored(t *testing.T) {
	q := &AsynqRefundQueue{Client: &recordingEnqueuer{err: asynq.ErrTaskIDConflict}}
	assert.NoError(t, q.EnqueueRefundRetry(context.Background(), models.RefundRetryPayload{AppointmentID: "a1"}))
}

func TestEnqueueRefundRetryError(t *testing.T) {
	q := &AsynqRefundQueue{Client: &recordingEnqueuer{err: errors.New("redis down")}}
	assert.Error(t, q.EnqueueRefundRetry(context.Background(), models.RefundRetryPayload{AppointmentID: "a1"}))
}
