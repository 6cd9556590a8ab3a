package entity

import (
	"time"

	attendeeEntity "calendar-service/modules/attendee/entity"
	"calendar-service/modules/recurrence"
)

type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityChannel Visibility = "channel"
)

// Event is the stored record of a single or recurring event. Occurrences
// of a recurring event are derived from it and never stored.
type Event struct {
	ID          string                             `db:"id" json:"id"`
	Title       string                             `db:"title" json:"title"`
	Description string                             `db:"description" json:"description"`
	Start       time.Time                          `db:"start_at" json:"start"`
	End         time.Time                          `db:"end_at" json:"end"`
	Owner       string                             `db:"owner" json:"owner"`
	Team        string                             `db:"team" json:"team"`
	Visibility  Visibility                         `db:"visibility" json:"visibility"`
	Channel     *string                            `db:"channel" json:"channel,omitempty"`
	Color       string                             `db:"color" json:"color"`
	Alert       attendeeEntity.NotificationSetting `db:"alert" json:"alert"`
	Recurrence  string                             `db:"recurrence" json:"recurrence"`
	CreatedAt   time.Time                          `db:"created_at" json:"created"`
	UpdatedAt   time.Time                          `db:"updated_at" json:"updated_at"`
}

func (e *Event) Series() recurrence.Series {
	return recurrence.Series{ID: e.ID, Start: e.Start, End: e.End, Recurrence: e.Recurrence}
}

func (e *Event) ChannelID() string {
	if e.Channel == nil {
		return ""
	}
	return *e.Channel
}

func (e *Event) IsRecurring() bool {
	return e.Recurrence != ""
}

// Clone returns a deep copy.
func (e *Event) Clone() *Event {
	c := *e
	if e.Channel != nil {
		ch := *e.Channel
		c.Channel = &ch
	}
	return &c
}
