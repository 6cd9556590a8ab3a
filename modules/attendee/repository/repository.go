package repository

import (
	"context"

	"calendar-service/modules/attendee/entity"
)

// AttendanceRepository stores attendance and notification preference rows,
// both keyed by (event id, user id).
type AttendanceRepository interface {
	Invite(ctx context.Context, eventID string, userIDs []string) error
	SetAccepted(ctx context.Context, eventID, userID string, accepted bool) error
	Accepted(ctx context.Context, eventID string) ([]string, error)
	ToggleInterested(ctx context.Context, eventID, userID string) (bool, error)
	Interested(ctx context.Context, eventID, userID string) (bool, error)
	ListByEvent(ctx context.Context, eventID string) ([]entity.Attendance, error)
	ListByEvents(ctx context.Context, eventIDs []string) ([]entity.Attendance, error)
	EventIDsForUser(ctx context.Context, userID string) ([]string, error)

	SetNotification(ctx context.Context, eventID, userID string, setting entity.NotificationSetting) error
	// GetNotification returns nil when no preference is stored.
	GetNotification(ctx context.Context, eventID, userID string) (*entity.Preference, error)
	PreferencesForEvents(ctx context.Context, eventIDs []string) ([]entity.Preference, error)

	// DeleteByEvent removes every attendance and preference row of the event.
	DeleteByEvent(ctx context.Context, eventID string) error
}
