package reminder

import (
	"context"
	"encoding/json"
	"fmt"

	"calendar-service/core/constants"
	"calendar-service/core/errors"
	"calendar-service/core/logger"
	"calendar-service/core/platform"
	notificationDto "calendar-service/modules/notification/dto"
	notificationEntity "calendar-service/modules/notification/entity"

	"github.com/hibiken/asynq"
)

// Inbox stores a notification for one user.
type Inbox interface {
	Create(ctx context.Context, req *notificationDto.CreateNotificationRequest) *errors.AppError
}

// Publisher pushes realtime events to connected clients.
type Publisher interface {
	Publish(ctx context.Context, channel string, value any) error
}

// OccurEvent is pushed to every recipient when an event starts.
type OccurEvent struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data"`
}

// Worker delivers reminder tasks to the chat platform and the inbox.
type Worker struct {
	platform  platform.Client
	inbox     Inbox
	events    Publisher
	botUserID string
}

// NewWorker builds a worker. client and events may be nil.
func NewWorker(client platform.Client, inbox Inbox, events Publisher, botUserID string) *Worker {
	return &Worker{platform: client, inbox: inbox, events: events, botUserID: botUserID}
}

// Register mounts the worker on mux.
func (w *Worker) Register(mux *asynq.ServeMux, taskType string) {
	mux.HandleFunc(taskType, w.HandleDeliver)
}

func (w *Worker) HandleDeliver(ctx context.Context, t *asynq.Task) error {
	var r Reminder
	if err := json.Unmarshal(t.Payload(), &r); err != nil {
		return fmt.Errorf("reminder payload: %v: %w", err, asynq.SkipRetry)
	}
	return w.Deliver(ctx, r)
}

// Deliver posts the reminder, then records it in each recipient's inbox.
func (w *Worker) Deliver(ctx context.Context, r Reminder) error {
	recipients := r.Recipients()
	if len(recipients) == 0 {
		return nil
	}

	if err := w.post(ctx, r, recipients); err != nil {
		logger.Error("ReminderWorker:Deliver:Post", err, "task_id", r.TaskID())
		return err
	}

	kind := notificationEntity.TypeEventReminder
	if r.Kind != KindStart {
		kind = notificationEntity.TypeEventAlert
	}
	for _, user := range recipients {
		appErr := w.inbox.Create(ctx, &notificationDto.CreateNotificationRequest{
			UserID:  user,
			Title:   r.Title,
			Message: r.Message(),
			Type:    kind,
			Data: map[string]any{
				"event_id": r.EventID,
				"kind":     string(r.Kind),
				"start":    r.Start,
			},
		})
		if appErr != nil {
			logger.Warn("ReminderWorker:Deliver:Inbox", "user_id", user, "error", appErr.Error())
		}
	}

	if r.Kind == KindStart {
		w.publishOccur(ctx, r, recipients)
	}

	logger.Info("ReminderWorker:Deliver", "task_id", r.TaskID(), "recipients", len(recipients))
	return nil
}

func (w *Worker) publishOccur(ctx context.Context, r Reminder, recipients []string) {
	if w.events == nil {
		return
	}
	var channel any
	if r.Channel != "" {
		channel = r.Channel
	}
	msg := OccurEvent{
		Event: constants.WSEventOccur,
		Data:  map[string]any{"id": r.EventID, "title": r.Title, "channel": channel},
	}
	for _, user := range recipients {
		if err := w.events.Publish(ctx, constants.RedisChannelUserEvents+user, msg); err != nil {
			logger.Warn("ReminderWorker:PublishOccur", "user_id", user, "error", err.Error())
		}
	}
}

func (w *Worker) post(ctx context.Context, r Reminder, recipients []string) error {
	if w.platform == nil {
		return nil
	}

	channelID := r.Channel
	if r.Kind == KindPersonal || channelID == "" {
		users := recipients
		if len(users) > 1 && w.botUserID != "" {
			users = append(append([]string{}, users...), w.botUserID)
		}
		id, err := w.platform.DirectChannel(ctx, users)
		if err == platform.ErrNotConfigured {
			logger.Warn("ReminderWorker:Post:NotConfigured", "event_id", r.EventID)
			return nil
		}
		if err != nil {
			return err
		}
		channelID = id
	}

	err := w.platform.CreatePost(ctx, channelID, r.Message())
	if err == platform.ErrNotConfigured {
		logger.Warn("ReminderWorker:Post:NotConfigured", "event_id", r.EventID)
		return nil
	}
	return err
}
