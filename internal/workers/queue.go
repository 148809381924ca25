// internal/workers/queue.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	defaultQueue    = "default"
	defaultMaxRetry = 3
	archiveTimeout  = 2 * time.Minute
)

// Enqueuer is the subset of *asynq.Client used for scheduling
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TaskClient schedules storefront background tasks on asynq
type TaskClient struct {
	client   Enqueuer
	queue    string
	maxRetry int
	logger   *slog.Logger
}

// NewTaskClient wraps an asynq client. An empty queue selects "default";
// maxRetry <= 0 selects 3.
func NewTaskClient(client Enqueuer, queue string, maxRetry int, logger *slog.Logger) *TaskClient {
	if queue == "" {
		queue = defaultQueue
	}
	if maxRetry <= 0 {
		maxRetry = defaultMaxRetry
	}
	return &TaskClient{
		client:   client,
		queue:    queue,
		maxRetry: maxRetry,
		logger:   logger.With(slog.String("component", "task_client")),
	}
}

// EnqueueReportArchive schedules a report:archive task and returns its id
func (c *TaskClient) EnqueueReportArchive(ctx context.Context, reportID int64) (string, error) {
	task, err := NewReportArchiveTask(reportID)
	if err != nil {
		return "", err
	}

	info, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.MaxRetry(c.maxRetry),
		asynq.Timeout(archiveTimeout),
		asynq.TaskID(uuid.NewString()),
	)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue report archive: %w", err)
	}

	c.logger.InfoContext(ctx, "report archive enqueued",
		slog.Int64("report_id", reportID),
		slog.String("task_id", info.ID),
		slog.String("queue", info.Queue))
	return info.ID, nil
}
