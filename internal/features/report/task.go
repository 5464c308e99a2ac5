package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Task is a queued report run.
type Task struct {
	ID         string    `json:"id"`
	Params     Params    `json:"params"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

func NewTask(params Params) *Task {
	return &Task{
		ID:         uuid.NewString(),
		Params:     params,
		EnqueuedAt: time.Now().UTC(),
	}
}

// Executor runs a report from its params.
type Executor interface {
	Execute(ctx context.Context, params Params) (*SavedReport, error)
}

type Queue interface {
	Enqueue(ctx context.Context, task *Task) error
}

// InlineQueue runs tasks as soon as they are enqueued.
type InlineQueue struct {
	exec   Executor
	logger *zap.Logger
}

func NewInlineQueue(exec Executor, logger *zap.Logger) *InlineQueue {
	return &InlineQueue{exec: exec, logger: logger}
}

// Enqueue returns nil when the run fails; the executor reports failures.
func (q *InlineQueue) Enqueue(ctx context.Context, task *Task) error {
	if _, err := q.exec.Execute(ctx, task.Params); err != nil {
		q.logger.Debug("Inline report task failed", zap.String("task_id", task.ID), zap.Error(err))
	}
	return nil
}

// RedisQueue is a FIFO list: LPUSH to enqueue, BRPOP to consume.
type RedisQueue struct {
	client *redis.Client
	key    string
}

func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	return &RedisQueue{client: client, key: key}
}

func (q *RedisQueue) Enqueue(ctx context.Context, task *Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}
	return q.client.LPush(ctx, q.key, data).Err()
}

// Dequeue waits up to timeout for a task. It returns nil, nil on timeout.
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Task, error) {
	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply of %d items", len(res))
	}
	var task Task
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		return nil, fmt.Errorf("decode task: %w", err)
	}
	return &task, nil
}

func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

type TaskSource interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*Task, error)
}

// Worker executes queued tasks until its context ends.
type Worker struct {
	source  TaskSource
	exec    Executor
	logger  *zap.Logger
	poll    time.Duration
	backoff time.Duration
}

func NewWorker(source TaskSource, exec Executor, logger *zap.Logger) *Worker {
	return &Worker{
		source:  source,
		exec:    exec,
		logger:  logger,
		poll:    5 * time.Second,
		backoff: time.Second,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("Report worker started")
	for {
		if ctx.Err() != nil {
			w.logger.Info("Report worker stopped")
			return nil
		}
		task, err := w.source.Dequeue(ctx, w.poll)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			w.logger.Error("Failed to dequeue report task", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(w.backoff):
			}
			continue
		}
		if task == nil {
			continue
		}
		w.process(ctx, task)
	}
}

func (w *Worker) process(ctx context.Context, task *Task) {
	log := w.logger.With(
		zap.String("task_id", task.ID),
		zap.String("report", task.Params.Report),
		zap.Duration("queued_for", time.Since(task.EnqueuedAt)),
	)
	log.Info("Running report task")
	if _, err := w.exec.Execute(ctx, task.Params); err != nil {
		log.Warn("Report task failed", zap.Error(err))
	}
}
