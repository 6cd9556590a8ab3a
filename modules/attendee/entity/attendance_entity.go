package entity

import "time"

// Attendance is one user's relationship to an event. A row exists for
// every invited user; Accepted is nil until the user answers.
type Attendance struct {
	EventID    string    `db:"event_id" json:"event_id"`
	UserID     string    `db:"user_id" json:"user_id"`
	Accepted   *bool     `db:"accepted" json:"accepted"`
	Interested bool      `db:"interested" json:"interested"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

type Preference struct {
	EventID string              `db:"event_id" json:"event_id"`
	UserID  string              `db:"user_id" json:"user_id"`
	Setting NotificationSetting `db:"setting" json:"setting"`
}
