package reminder

import (
	"fmt"
	"sort"
	"strings"
	"time"

	attendeeEntity "calendar-service/modules/attendee/entity"
	"calendar-service/modules/event/dto"
)

type Kind string

const (
	// KindStart fires when an occurrence begins.
	KindStart Kind = "start"
	// KindAlert fires at the event's own alert lead time.
	KindAlert Kind = "alert"
	// KindPersonal fires at one attendee's notification setting.
	KindPersonal Kind = "personal"
)

// Reminder is one planned delivery. It is also the task payload.
type Reminder struct {
	Kind        Kind      `json:"kind"`
	EventID     string    `json:"event_id"`
	UserID      string    `json:"user_id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Owner       string    `json:"owner"`
	Channel     string    `json:"channel,omitempty"`
	Attendees   []string  `json:"attendees,omitempty"`
	Setting     string    `json:"setting,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	FireAt      time.Time `json:"fire_at"`
}

// TaskID identifies a reminder across scans: kind, event, recipient and
// occurrence start.
func (r Reminder) TaskID() string {
	user := r.UserID
	if user == "" {
		user = "*"
	}
	return fmt.Sprintf("%s:%s:%s:%d", r.Kind, r.EventID, user, r.Start.UTC().Unix())
}

// Recipients are the users a reminder is addressed to.
func (r Reminder) Recipients() []string {
	if r.Kind == KindPersonal {
		return []string{r.UserID}
	}
	out := make([]string, 0, len(r.Attendees)+1)
	seen := map[string]bool{}
	for _, u := range append([]string{r.Owner}, r.Attendees...) {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// Message renders the post body.
func (r Reminder) Message() string {
	var b strings.Builder
	if r.Kind == KindStart {
		fmt.Fprintf(&b, ":dart: *%s* :dart:\n", r.Title)
	} else {
		fmt.Fprintf(&b, ":alarm_clock: **%s** *%s* :alarm_clock:\n",
			attendeeEntity.NotificationSetting(r.Setting).Title(), r.Title)
	}
	if len(r.Attendees) > 0 {
		mentions := make([]string, len(r.Attendees))
		for i, a := range r.Attendees {
			mentions[i] = "@" + a
		}
		fmt.Fprintf(&b, "**members:** %s\n", strings.Join(mentions, ", "))
	}
	if r.Description != "" {
		fmt.Fprintf(&b, "**description:**\n%s", r.Description)
	}
	return b.String()
}

// Plan returns the reminders due in the minute starting at tick.
func Plan(occurrences []dto.UpcomingOccurrence, tick time.Time) []Reminder {
	tick = tick.UTC().Truncate(time.Minute)
	due := func(at time.Time) bool {
		return at.UTC().Truncate(time.Minute).Equal(tick)
	}

	var out []Reminder
	for _, occ := range occurrences {
		base := Reminder{
			EventID:     occ.EventID,
			Title:       occ.Title,
			Description: occ.Description,
			Owner:       occ.Owner,
			Channel:     occ.Channel,
			Attendees:   occ.Attendees,
			Start:       occ.Start.UTC(),
			End:         occ.End.UTC(),
		}

		if due(occ.Start) {
			r := base
			r.Kind = KindStart
			r.FireAt = tick
			out = append(out, r)
		}

		if alert := attendeeEntity.NotificationSetting(occ.Alert); !alert.IsNone() && alert.Valid() {
			if due(occ.Start.Add(-alert.LeadTime())) {
				r := base
				r.Kind = KindAlert
				r.Setting = occ.Alert
				r.FireAt = tick
				out = append(out, r)
			}
		}

		for user, raw := range occ.Preferences {
			setting := attendeeEntity.NotificationSetting(raw)
			if setting.IsNone() || !setting.Valid() {
				continue
			}
			if due(occ.Start.Add(-setting.LeadTime())) {
				r := base
				r.Kind = KindPersonal
				r.UserID = user
				r.Setting = raw
				r.FireAt = tick
				out = append(out, r)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].TaskID() < out[j].TaskID()
	})
	return out
}
