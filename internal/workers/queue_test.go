// internal/workers/queue_test.go
package workers_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/poultry-storefront/internal/workers"
	"github.com/ammerola/poultry-storefront/test/helpers"
)

type recordingEnqueuer struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
	err   error
}

func (r *recordingEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.tasks = append(r.tasks, task)
	r.opts = append(r.opts, opts)

	info := &asynq.TaskInfo{Type: task.Type(), Payload: task.Payload()}
	for _, opt := range opts {
		switch opt.Type() {
		case asynq.TaskIDOpt:
			info.ID = opt.Value().(string)
		case asynq.QueueOpt:
			info.Queue = opt.Value().(string)
		case asynq.MaxRetryOpt:
			info.MaxRetry = opt.Value().(int)
		}
	}
	return info, nil
}

func TestTaskClient_EnqueueReportArchive(t *testing.T) {
	tests := []struct {
		name          string
		queue         string
		maxRetry      int
		expectedQueue string
		expectedRetry int
	}{
		{name: "defaults", expectedQueue: "default", expectedRetry: 3},
		{name: "configured_queue", queue: "reports", maxRetry: 5, expectedQueue: "reports", expectedRetry: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingEnqueuer{}
			client := workers.NewTaskClient(rec, tt.queue, tt.maxRetry, helpers.TestLogger())

			first, err := client.EnqueueReportArchive(context.Background(), 17)
			require.NoError(t, err)
			second, err := client.EnqueueReportArchive(context.Background(), 17)
			require.NoError(t, err)

			assert.NotEmpty(t, first)
			assert.NotEqual(t, first, second)
			require.Len(t, rec.tasks, 2)
			assert.Equal(t, workers.TypeReportArchive, rec.tasks[0].Type())

			var payload workers.ReportArchivePayload
			require.NoError(t, json.Unmarshal(rec.tasks[0].Payload(), &payload))
			assert.Equal(t, int64(17), payload.ReportID)

			values := map[asynq.OptionType]any{}
			for _, opt := range rec.opts[0] {
				values[opt.Type()] = opt.Value()
			}
			assert.Equal(t, tt.expectedQueue, values[asynq.QueueOpt])
			assert.Equal(t, tt.expectedRetry, values[asynq.MaxRetryOpt])
			assert.Contains(t, values, asynq.TimeoutOpt)
		})
	}
}

func TestTaskClient_Errors(t *testing.T) {
	t.Run("invalid_report", func(t *testing.T) {
		rec := &recordingEnqueuer{}
		client := workers.NewTaskClient(rec, "", 0, helpers.TestLogger())

		_, err := client.EnqueueReportArchive(context.Background(), -1)
		assert.Error(t, err)
		assert.Empty(t, rec.tasks)
	})

	t.Run("redis_unavailable", func(t *testing.T) {
		rec := &recordingEnqueuer{err: errors.New("dial tcp: connection refused")}
		client := workers.NewTaskClient(rec, "", 0, helpers.TestLogger())

		_, err := client.EnqueueReportArchive(context.Background(), 3)
		assert.ErrorContains(t, err, "connection refused")
	})
}
