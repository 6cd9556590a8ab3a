package repository

import (
	"context"
	"time"

	"calendar-service/modules/event/entity"
)

// EventFilter selects events that may have an occurrence in
// [WindowStart, WindowEnd). Recurring events are always candidates once
// their series has started.
type EventFilter struct {
	Owners      []string
	IDs         []string
	AllUsers    bool
	Team        string
	WindowStart time.Time
	WindowEnd   time.Time
}

type EventRepository interface {
	Create(ctx context.Context, event *entity.Event) error
	// GetByID returns nil when the event does not exist.
	GetByID(ctx context.Context, id string) (*entity.Event, error)
	// Update loads the event under a per-key lock, applies fn and saves the
	// result. fn sees a copy; returning an error aborts without writing.
	// The result is nil when the event does not exist.
	Update(ctx context.Context, id string, fn func(*entity.Event) error) (*entity.Event, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filter EventFilter) ([]entity.Event, error)
}
