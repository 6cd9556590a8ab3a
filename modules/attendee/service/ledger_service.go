package service

import (
	"context"

	"calendar-service/core/errors"
	"calendar-service/core/logger"
	"calendar-service/modules/attendee/entity"
	"calendar-service/modules/attendee/repository"
)

// Ledger keeps attendance and reminder preferences per (event, user).
// Every write is a single keyed upsert in the repository, so concurrent
// RSVPs on one row never lose updates.
type Ledger struct {
	repo repository.AttendanceRepository
}

func NewLedger(repo repository.AttendanceRepository) *Ledger {
	return &Ledger{repo: repo}
}

// Invite is idempotent: users already present keep their answers.
func (l *Ledger) Invite(ctx context.Context, eventID string, userIDs []string) *errors.AppError {
	users := uniqueNonEmpty(userIDs)
	if len(users) == 0 {
		return nil
	}
	if err := l.repo.Invite(ctx, eventID, users); err != nil {
		logger.Error("Ledger:Invite:Error", err, "event_id", eventID)
		return errors.NewAppError(errors.ErrCreateFailed, "failed to invite attendees", err)
	}
	return nil
}

// SetAccepted records an answer and returns the users who have accepted.
func (l *Ledger) SetAccepted(ctx context.Context, eventID, userID string, accepted bool) ([]string, *errors.AppError) {
	if err := l.repo.SetAccepted(ctx, eventID, userID, accepted); err != nil {
		logger.Error("Ledger:SetAccepted:Error", err, "event_id", eventID)
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "failed to record answer", err)
	}
	return l.Accepted(ctx, eventID)
}

func (l *Ledger) Accepted(ctx context.Context, eventID string) ([]string, *errors.AppError) {
	users, err := l.repo.Accepted(ctx, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to load accepted users", err)
	}
	return users, nil
}

// ToggleInterested flips the user's interest and returns the new value.
func (l *Ledger) ToggleInterested(ctx context.Context, eventID, userID string) (bool, *errors.AppError) {
	v, err := l.repo.ToggleInterested(ctx, eventID, userID)
	if err != nil {
		logger.Error("Ledger:ToggleInterested:Error", err, "event_id", eventID)
		return false, errors.NewAppError(errors.ErrUpdateFailed, "failed to toggle interest", err)
	}
	return v, nil
}

func (l *Ledger) Interested(ctx context.Context, eventID, userID string) (bool, *errors.AppError) {
	v, err := l.repo.Interested(ctx, eventID, userID)
	if err != nil {
		return false, errors.NewAppError(errors.ErrGetFailed, "failed to load interest", err)
	}
	return v, nil
}

func (l *Ledger) SetNotification(ctx context.Context, eventID, userID string, setting entity.NotificationSetting) *errors.AppError {
	if !setting.Valid() {
		return errors.NewAppError(errors.ErrInvalidInput, "unknown notification setting "+string(setting), nil)
	}
	if err := l.repo.SetNotification(ctx, eventID, userID, setting); err != nil {
		logger.Error("Ledger:SetNotification:Error", err, "event_id", eventID)
		return errors.NewAppError(errors.ErrUpdateFailed, "failed to save notification setting", err)
	}
	return nil
}

// GetNotification returns NotificationNone when nothing is stored.
func (l *Ledger) GetNotification(ctx context.Context, eventID, userID string) (entity.NotificationSetting, *errors.AppError) {
	pref, err := l.repo.GetNotification(ctx, eventID, userID)
	if err != nil {
		return entity.NotificationNone, errors.NewAppError(errors.ErrGetFailed, "failed to load notification setting", err)
	}
	if pref == nil {
		return entity.NotificationNone, nil
	}
	return pref.Setting, nil
}

// Forget deletes every row of the event.
func (l *Ledger) Forget(ctx context.Context, eventID string) *errors.AppError {
	if err := l.repo.DeleteByEvent(ctx, eventID); err != nil {
		logger.Error("Ledger:Forget:Error", err, "event_id", eventID)
		return errors.NewAppError(errors.ErrDeleteFailed, "failed to remove attendees", err)
	}
	return nil
}

func (l *Ledger) Attendees(ctx context.Context, eventID string) ([]entity.Attendance, *errors.AppError) {
	rows, err := l.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to load attendees", err)
	}
	return rows, nil
}

// AttendeesByEvent groups attendee ids per event.
func (l *Ledger) AttendeesByEvent(ctx context.Context, eventIDs []string) (map[string][]string, *errors.AppError) {
	rows, err := l.repo.ListByEvents(ctx, eventIDs)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to load attendees", err)
	}
	out := make(map[string][]string, len(eventIDs))
	for _, r := range rows {
		out[r.EventID] = append(out[r.EventID], r.UserID)
	}
	return out, nil
}

func (l *Ledger) EventIDsForUser(ctx context.Context, userID string) ([]string, *errors.AppError) {
	ids, err := l.repo.EventIDsForUser(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to load user events", err)
	}
	return ids, nil
}

// PreferencesForEvents returns the non-empty reminder preferences of the
// events, grouped by event id.
func (l *Ledger) PreferencesForEvents(ctx context.Context, eventIDs []string) (map[string][]entity.Preference, *errors.AppError) {
	prefs, err := l.repo.PreferencesForEvents(ctx, eventIDs)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to load notification settings", err)
	}
	out := make(map[string][]entity.Preference)
	for _, p := range prefs {
		out[p.EventID] = append(out[p.EventID], p)
	}
	return out, nil
}

func uniqueNonEmpty(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
