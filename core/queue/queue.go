package queue

import (
	"context"
	"errors"
	"time"

	"calendar-service/core/logger"

	"github.com/hibiken/asynq"
)

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c RedisConfig) opt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: c.Addr, Password: c.Password, DB: c.DB}
}

func NewClient(cfg RedisConfig) *asynq.Client {
	return asynq.NewClient(cfg.opt())
}

// NewServer builds a worker server consuming queue with the given
// concurrency.
func NewServer(cfg RedisConfig, queue string, concurrency int) *asynq.Server {
	if concurrency <= 0 {
		concurrency = 1
	}
	return asynq.NewServer(cfg.opt(), asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{queue: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error("Queue:Task:Failed", err, "type", task.Type())
		}),
		ShutdownTimeout: 10 * time.Second,
	})
}

// EnqueueUnique enqueues task under id. A task already holding id counts
// as success, so repeating a scan never duplicates work.
func EnqueueUnique(ctx context.Context, q Enqueuer, task *asynq.Task, queue, id string, processAt time.Time) (bool, error) {
	opts := []asynq.Option{
		asynq.Queue(queue),
		asynq.TaskID(id),
		asynq.MaxRetry(3),
		asynq.Retention(24 * time.Hour),
	}
	if !processAt.IsZero() {
		opts = append(opts, asynq.ProcessAt(processAt))
	}

	_, err := q.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
