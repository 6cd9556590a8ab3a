package repository

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"calendar-service/modules/event/entity"
)

type memoryRepository struct {
	mu     sync.RWMutex
	events map[string]*entity.Event
	locks  sync.Map // event id -> *sync.Mutex
}

// NewMemoryRepository returns a process-local store. Writes to one event
// are serialized by a mutex per event id.
func NewMemoryRepository() EventRepository {
	return &memoryRepository{events: make(map[string]*entity.Event)}
}

func (r *memoryRepository) lock(id string) *sync.Mutex {
	m, _ := r.locks.LoadOrStore(id, &sync.Mutex{})
	return m.(*sync.Mutex)
}

func (r *memoryRepository) Create(_ context.Context, event *entity.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	r.events[event.ID] = event.Clone()
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id string) (*entity.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.events[id]; ok {
		return e.Clone(), nil
	}
	return nil, nil
}

func (r *memoryRepository) Update(ctx context.Context, id string, fn func(*entity.Event) error) (*entity.Event, error) {
	l := r.lock(id)
	l.Lock()
	defer l.Unlock()

	current, _ := r.GetByID(ctx, id)
	if current == nil {
		return nil, nil
	}
	if err := fn(current); err != nil {
		return nil, err
	}
	current.ID = id
	current.UpdatedAt = time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return nil, nil
	}
	r.events[id] = current.Clone()
	return current, nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) (bool, error) {
	l := r.lock(id)
	l.Lock()
	defer l.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.events[id]
	delete(r.events, id)
	return ok, nil
}

func (r *memoryRepository) List(_ context.Context, filter EventFilter) ([]entity.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []entity.Event{}
	for _, e := range r.events {
		if !filter.AllUsers && !slices.Contains(filter.Owners, e.Owner) && !slices.Contains(filter.IDs, e.ID) {
			continue
		}
		if filter.Team != "" && e.Team != filter.Team {
			continue
		}
		if !filter.WindowEnd.IsZero() && !e.Start.Before(filter.WindowEnd) {
			continue
		}
		if !filter.WindowStart.IsZero() && !e.IsRecurring() && !e.End.After(filter.WindowStart) {
			continue
		}
		out = append(out, *e.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
