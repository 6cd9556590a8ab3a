package reminder

import (
	"context"
	"encoding/json"
	"time"

	"calendar-service/core/constants"
	"calendar-service/core/errors"
	"calendar-service/core/logger"
	"calendar-service/core/queue"
	"calendar-service/modules/event/dto"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
)

// UpcomingSource lists occurrences starting in [from, to).
type UpcomingSource interface {
	Upcoming(ctx context.Context, from, to time.Time) ([]dto.UpcomingOccurrence, *errors.AppError)
}

// Scanner plans reminders once per tick and hands them to the queue.
type Scanner struct {
	source UpcomingSource
	queue  queue.Enqueuer
	cron   *cron.Cron
	spec   string
	now    func() time.Time
}

func NewScanner(source UpcomingSource, q queue.Enqueuer, spec string) *Scanner {
	if spec == "" {
		spec = "@every 1m"
	}
	return &Scanner{
		source: source,
		queue:  q,
		cron:   cron.New(cron.WithLocation(time.UTC)),
		spec:   spec,
		now:    time.Now,
	}
}

func (s *Scanner) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.run); err != nil {
		return err
	}
	s.cron.Start()
	logger.Info("ReminderScanner:Start", "spec", s.spec)
	return nil
}

func (s *Scanner) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scanner) run() {
	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultRequestTimeout)
	defer cancel()

	tick := s.now().UTC().Truncate(time.Minute)
	if _, err := s.Scan(ctx, tick); err != nil {
		logger.Error("ReminderScanner:Run", err, "tick", tick)
	}
}

// Scan enqueues every reminder due at tick and returns how many were new.
func (s *Scanner) Scan(ctx context.Context, tick time.Time) (int, error) {
	tick = tick.UTC().Truncate(time.Minute)
	occurrences, appErr := s.source.Upcoming(ctx, tick, tick.Add(constants.ReminderScanLookahead))
	if appErr != nil {
		return 0, appErr
	}

	enqueued := 0
	for _, r := range Plan(occurrences, tick) {
		task, err := NewDeliverTask(r)
		if err != nil {
			return enqueued, err
		}
		ok, err := queue.EnqueueUnique(ctx, s.queue, task, constants.ReminderQueue, r.TaskID(), r.FireAt)
		if err != nil {
			logger.Error("ReminderScanner:Enqueue", err, "task_id", r.TaskID())
			return enqueued, err
		}
		if ok {
			enqueued++
		}
	}
	if enqueued > 0 {
		logger.Info("ReminderScanner:Scan", "tick", tick, "enqueued", enqueued)
	}
	return enqueued, nil
}

func NewDeliverTask(r Reminder) (*asynq.Task, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(constants.TaskReminderDeliver, payload), nil
}
