package reminder

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"testing"
	"time"

	"calendar-service/core/errors"
	"calendar-service/modules/event/dto"

	"github.com/hibiken/asynq"
)

type staticSource []dto.UpcomingOccurrence

func (s staticSource) Upcoming(_ context.Context, from, to time.Time) ([]dto.UpcomingOccurrence, *errors.AppError) {
	var out []dto.UpcomingOccurrence
	for _, o := range s {
		if !o.Start.Before(from) && o.Start.Before(to) {
			out = append(out, o)
		}
	}
	return out, nil
}

type recordingQueue struct {
	mu    sync.Mutex
	tasks map[string]*asynq.Task
}

func (q *recordingQueue) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var id string
	for _, o := range opts {
		if o.Type() == asynq.TaskIDOpt {
			id, _ = o.Value().(string)
		}
	}
	if _, ok := q.tasks[id]; ok {
		return nil, asynq.ErrTaskIDConflict
	}
	q.tasks[id] = task
	return &asynq.TaskInfo{ID: id}, nil
}

func TestScanEnqueuesOncePerReminder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	q := &recordingQueue{tasks: map[string]*asynq.Task{}}
	s := NewScanner(staticSource{occurrence()}, q, "")

	n, err := s.Scan(ctx, at(6, 9, 45))
	if err != nil || n != 2 {
		t.Fatalf("first scan = %d, %v; want 2", n, err)
	}
	n, err = s.Scan(ctx, at(6, 9, 45).Add(20*time.Second))
	if err != nil || n != 0 {
		t.Fatalf("repeated scan = %d, %v; want 0", n, err)
	}

	task := q.tasks["personal:ev1:u2:"+strconv.FormatInt(at(6, 10, 0).Unix(), 10)]
	if task == nil || task.Type() != "reminder:deliver" {
		t.Fatalf("personal task missing: %v", q.tasks)
	}
	var r Reminder
	if err := json.Unmarshal(task.Payload(), &r); err != nil || r.UserID != "u2" || r.Setting != "15_minutes_before" {
		t.Fatalf("payload = %+v, %v", r, err)
	}
}

func TestScanLooksAheadOneWeek(t *testing.T) {
	t.Parallel()

	occ := occurrence()
	occ.Alert = "1_week_before"
	occ.Preferences = nil
	q := &recordingQueue{tasks: map[string]*asynq.Task{}}
	s := NewScanner(staticSource{occ}, q, "")

	n, err := s.Scan(context.Background(), occ.Start.Add(-7*24*time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("scan = %d, %v; want the week-ahead alert", n, err)
	}
}
