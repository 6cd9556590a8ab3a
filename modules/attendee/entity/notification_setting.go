package entity

import "time"

// NotificationSetting is a reminder lead time. The empty value means no
// reminder.
type NotificationSetting string

const (
	NotificationNone           NotificationSetting = ""
	NotificationFiveMinutes    NotificationSetting = "5_minutes_before"
	NotificationFifteenMinutes NotificationSetting = "15_minutes_before"
	NotificationThirtyMinutes  NotificationSetting = "30_minutes_before"
	NotificationOneHour        NotificationSetting = "1_hour_before"
	NotificationTwoHours       NotificationSetting = "2_hours_before"
	NotificationOneDay         NotificationSetting = "1_day_before"
	NotificationTwoDays        NotificationSetting = "2_days_before"
	NotificationOneWeek        NotificationSetting = "1_week_before"
)

var leadTimes = map[NotificationSetting]time.Duration{
	NotificationNone:           0,
	NotificationFiveMinutes:    5 * time.Minute,
	NotificationFifteenMinutes: 15 * time.Minute,
	NotificationThirtyMinutes:  30 * time.Minute,
	NotificationOneHour:        time.Hour,
	NotificationTwoHours:       2 * time.Hour,
	NotificationOneDay:         24 * time.Hour,
	NotificationTwoDays:        48 * time.Hour,
	NotificationOneWeek:        7 * 24 * time.Hour,
}

var titles = map[NotificationSetting]string{
	NotificationFiveMinutes:    "5 minutes",
	NotificationFifteenMinutes: "15 minutes",
	NotificationThirtyMinutes:  "30 minutes",
	NotificationOneHour:        "1 hour",
	NotificationTwoHours:       "2 hours",
	NotificationOneDay:         "1 day",
	NotificationTwoDays:        "2 days",
	NotificationOneWeek:        "1 week",
}

func (s NotificationSetting) Valid() bool {
	_, ok := leadTimes[s]
	return ok
}

func (s NotificationSetting) IsNone() bool {
	return s == NotificationNone
}

// LeadTime is how long before the occurrence start the reminder fires.
func (s NotificationSetting) LeadTime() time.Duration {
	return leadTimes[s]
}

// Title is the human form used in reminder messages, e.g. "15 minutes".
func (s NotificationSetting) Title() string {
	return titles[s]
}
