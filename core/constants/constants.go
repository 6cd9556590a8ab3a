package constants

import "time"

// Database
const (
	DatabaseSSLMode         = "disable"
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 10
	DatabaseConnMaxLifetime = 30 // minutes
	DatabaseDriverPostgres  = "postgres"
	DatabaseDriverMemory    = "memory"
	MigrationTableName      = "calendar_db_migrations"
)

// Request handling
const (
	DefaultRequestTimeout = 10 * time.Second
	ContextTokenData      = "token_data"
	HeaderRequestID       = "X-Request-ID"
)

// Redis keys
const (
	RedisKeySettings       = "calendar:settings:"
	RedisKeyChannelMember  = "calendar:member:"
	RedisChannelUserEvents = "calendar:ws:" // per-user pub/sub, suffixed with the user id
)

// Websocket events
const (
	WSEventOccur = "event_occur"
)

// Scheduling defaults
const (
	DefaultMaxScheduleUsers       = 50
	DefaultMaxScheduleWindowDays  = 31
	DefaultMaxOccurrencesPerEvent = 5000
	DefaultScheduleWorkers        = 8
	DefaultEventColor             = "#D0D0D0"
)

// Reminder tasks
const (
	TaskReminderDeliver   = "reminder:deliver"
	ReminderQueue         = "reminders"
	ReminderScanLookahead = 7*24*time.Hour + time.Minute
)
