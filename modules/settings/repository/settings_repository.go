package repository

import (
	"context"
	"database/sql"

	"calendar-service/core/database"
	"calendar-service/core/logger"
	"calendar-service/modules/settings/entity"
)

type settingsRepository struct {
	db database.Database
}

func NewSettingsRepository(db database.Database) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context, userID string) (*entity.Settings, error) {
	query := `
		SELECT user_id, is_open_calendar_left_bar, first_day_of_week, hide_non_working_days, updated_at
		FROM calendar_settings
		WHERE user_id = $1
	`
	var settings entity.Settings
	if err := r.db.GetContext(ctx, &settings, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("SettingsRepository:Get", err)
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepository) Upsert(ctx context.Context, settings *entity.Settings) error {
	query := `
		INSERT INTO calendar_settings (user_id, is_open_calendar_left_bar, first_day_of_week, hide_non_working_days, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			is_open_calendar_left_bar = EXCLUDED.is_open_calendar_left_bar,
			first_day_of_week = EXCLUDED.first_day_of_week,
			hide_non_working_days = EXCLUDED.hide_non_working_days,
			updated_at = NOW()
	`
	err := r.db.ExecContext(ctx, query,
		settings.UserID,
		settings.IsOpenCalendarLeftBar,
		settings.FirstDayOfWeek,
		settings.HideNonWorkingDays,
	)
	if err != nil {
		logger.Error("SettingsRepository:Upsert", err)
		return err
	}
	return nil
}
