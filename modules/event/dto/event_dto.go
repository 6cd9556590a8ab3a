package dto

import (
	"slices"
	"time"
)

// Caller is the authenticated user behind a request.
type Caller struct {
	UserID      string
	SystemAdmin bool
	TeamAdminOf []string
}

func (c Caller) IsTeamAdmin(team string) bool {
	return team != "" && slices.Contains(c.TeamAdminOf, team)
}

// ===================== Request DTOs =====================

// EventRequest is the body of both create and update. ID is only read on
// update.
type EventRequest struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Attendees   []string  `json:"attendees"`
	Team        string    `json:"team"`
	Visibility  string    `json:"visibility"`
	Channel     *string   `json:"channel"`
	Recurrence  string    `json:"recurrence"`
	Color       string    `json:"color"`
	Alert       string    `json:"alert"`
}

type ListEventsQuery struct {
	Start time.Time
	End   time.Time
	Team  string
}

type ScheduleQuery struct {
	Users       []string
	SlotMinutes int
	Start       time.Time
	End         time.Time
}

type NotificationSettingRequest struct {
	NotificationSetting string `json:"notification_setting"`
}

type AcceptedRequest struct {
	Accepted *bool `json:"accepted"`
}

// ===================== Response DTOs =====================

type EventResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Attendees   []string  `json:"attendees"`
	Created     time.Time `json:"created"`
	Owner       string    `json:"owner"`
	Team        string    `json:"team"`
	Visibility  string    `json:"visibility"`
	Channel     *string   `json:"channel,omitempty"`
	Recurrence  string    `json:"recurrence"`
	Color       string    `json:"color,omitempty"`
	Alert       string    `json:"alert"`
	Accepted    []string  `json:"accepted,omitempty"`
}

type EventDetailResponse struct {
	Event    EventResponse `json:"event"`
	Accepted []string      `json:"accepted"`
}

type BusyInterval struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Duration int       `json:"duration"` // minutes
}

type ScheduleResponse struct {
	Users          map[string][]BusyInterval `json:"users"`
	BusyMinutes    map[string]int            `json:"busy_minutes"`
	AvailableTimes []time.Time               `json:"available_times"`
	Warnings       []string                  `json:"warnings,omitempty"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type NotificationSettingResponse struct {
	NotificationSetting string `json:"notification_setting"`
}

type InterestedResponse struct {
	Interested bool `json:"interested"`
}

type AcceptedResponse struct {
	Accepted []string `json:"accepted"`
}

// UpcomingOccurrence is one occurrence handed to the reminder planner,
// with the attendee state needed to address it.
type UpcomingOccurrence struct {
	EventID     string
	Title       string
	Description string
	Owner       string
	Channel     string
	Alert       string
	Start       time.Time
	End         time.Time
	Attendees   []string
	// Preferences maps attendee id to a non-empty reminder setting.
	Preferences map[string]string
}
