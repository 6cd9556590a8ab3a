package entity

import "time"

// Settings are the per-user calendar display preferences.
type Settings struct {
	UserID                string    `db:"user_id"`
	IsOpenCalendarLeftBar bool      `db:"is_open_calendar_left_bar"`
	FirstDayOfWeek        int       `db:"first_day_of_week"`
	HideNonWorkingDays    bool      `db:"hide_non_working_days"`
	UpdatedAt             time.Time `db:"updated_at"`
}

// Default is what a user who never saved settings sees.
func Default(userID string) *Settings {
	return &Settings{
		UserID:                userID,
		IsOpenCalendarLeftBar: true,
		FirstDayOfWeek:        1,
		HideNonWorkingDays:    false,
	}
}
