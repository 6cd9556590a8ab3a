package repository

import (
	"context"
	"database/sql"

	"calendar-service/core/database"
	"calendar-service/core/logger"
	"calendar-service/modules/attendee/entity"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type attendanceRepository struct {
	db database.Database
}

func NewAttendanceRepository(db database.Database) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) Invite(ctx context.Context, eventID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	query := `
		INSERT INTO calendar_members (event_id, user_id)
		SELECT $1, u FROM unnest($2::text[]) AS u
		ON CONFLICT (event_id, user_id) DO NOTHING
	`
	if err := r.db.ExecContext(ctx, query, eventID, pq.Array(userIDs)); err != nil {
		logger.Error("AttendanceRepository:Invite", err)
		return err
	}
	return nil
}

func (r *attendanceRepository) SetAccepted(ctx context.Context, eventID, userID string, accepted bool) error {
	query := `
		INSERT INTO calendar_members (event_id, user_id, accepted)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id, user_id)
		DO UPDATE SET accepted = EXCLUDED.accepted, updated_at = NOW()
	`
	if err := r.db.ExecContext(ctx, query, eventID, userID, accepted); err != nil {
		logger.Error("AttendanceRepository:SetAccepted", err)
		return err
	}
	return nil
}

func (r *attendanceRepository) Accepted(ctx context.Context, eventID string) ([]string, error) {
	query := `SELECT user_id FROM calendar_members WHERE event_id = $1 AND accepted = true ORDER BY user_id`
	users := []string{}
	if err := r.db.SelectContext(ctx, &users, query, eventID); err != nil {
		logger.Error("AttendanceRepository:Accepted", err)
		return nil, err
	}
	return users, nil
}

func (r *attendanceRepository) ToggleInterested(ctx context.Context, eventID, userID string) (bool, error) {
	query := `
		INSERT INTO calendar_members (event_id, user_id, interested)
		VALUES ($1, $2, true)
		ON CONFLICT (event_id, user_id)
		DO UPDATE SET interested = NOT calendar_members.interested, updated_at = NOW()
		RETURNING interested
	`
	var interested bool
	if err := r.db.GetContext(ctx, &interested, query, eventID, userID); err != nil {
		logger.Error("AttendanceRepository:ToggleInterested", err)
		return false, err
	}
	return interested, nil
}

func (r *attendanceRepository) Interested(ctx context.Context, eventID, userID string) (bool, error) {
	query := `SELECT interested FROM calendar_members WHERE event_id = $1 AND user_id = $2`
	var interested bool
	err := r.db.GetContext(ctx, &interested, query, eventID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		logger.Error("AttendanceRepository:Interested", err)
		return false, err
	}
	return interested, nil
}

func (r *attendanceRepository) ListByEvent(ctx context.Context, eventID string) ([]entity.Attendance, error) {
	return r.ListByEvents(ctx, []string{eventID})
}

func (r *attendanceRepository) ListByEvents(ctx context.Context, eventIDs []string) ([]entity.Attendance, error) {
	rows := []entity.Attendance{}
	if len(eventIDs) == 0 {
		return rows, nil
	}
	query := `
		SELECT event_id, user_id, accepted, interested, created_at, updated_at
		FROM calendar_members
		WHERE event_id = ANY($1)
		ORDER BY event_id, created_at, user_id
	`
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(eventIDs)); err != nil {
		logger.Error("AttendanceRepository:ListByEvents", err)
		return nil, err
	}
	return rows, nil
}

func (r *attendanceRepository) EventIDsForUser(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	query := `SELECT event_id FROM calendar_members WHERE user_id = $1`
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		logger.Error("AttendanceRepository:EventIDsForUser", err)
		return nil, err
	}
	return ids, nil
}

func (r *attendanceRepository) SetNotification(ctx context.Context, eventID, userID string, setting entity.NotificationSetting) error {
	query := `
		INSERT INTO calendar_notification_settings (event_id, user_id, setting)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id, user_id)
		DO UPDATE SET setting = EXCLUDED.setting, updated_at = NOW()
	`
	if err := r.db.ExecContext(ctx, query, eventID, userID, string(setting)); err != nil {
		logger.Error("AttendanceRepository:SetNotification", err)
		return err
	}
	return nil
}

func (r *attendanceRepository) GetNotification(ctx context.Context, eventID, userID string) (*entity.Preference, error) {
	query := `SELECT event_id, user_id, setting FROM calendar_notification_settings WHERE event_id = $1 AND user_id = $2`
	var pref entity.Preference
	err := r.db.GetContext(ctx, &pref, query, eventID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("AttendanceRepository:GetNotification", err)
		return nil, err
	}
	return &pref, nil
}

func (r *attendanceRepository) PreferencesForEvents(ctx context.Context, eventIDs []string) ([]entity.Preference, error) {
	prefs := []entity.Preference{}
	if len(eventIDs) == 0 {
		return prefs, nil
	}
	query := `
		SELECT event_id, user_id, setting
		FROM calendar_notification_settings
		WHERE event_id = ANY($1) AND setting <> ''
	`
	if err := r.db.SelectContext(ctx, &prefs, query, pq.Array(eventIDs)); err != nil {
		logger.Error("AttendanceRepository:PreferencesForEvents", err)
		return nil, err
	}
	return prefs, nil
}

func (r *attendanceRepository) DeleteByEvent(ctx context.Context, eventID string) error {
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM calendar_notification_settings WHERE event_id = $1`, eventID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM calendar_members WHERE event_id = $1`, eventID)
		return err
	})
	if err != nil {
		logger.Error("AttendanceRepository:DeleteByEvent", err)
		return err
	}
	return nil
}
