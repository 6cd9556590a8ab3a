package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"calendar-service/modules/attendee/entity"
)

type memberKey struct {
	eventID string
	userID  string
}

type memoryRepository struct {
	mu          sync.RWMutex
	attendance  map[memberKey]*entity.Attendance
	preferences map[memberKey]entity.NotificationSetting
	now         func() time.Time
}

// NewMemoryRepository returns a process-local store.
func NewMemoryRepository() AttendanceRepository {
	return &memoryRepository{
		attendance:  make(map[memberKey]*entity.Attendance),
		preferences: make(map[memberKey]entity.NotificationSetting),
		now:         time.Now,
	}
}

// row returns the attendance row for k, creating it. Callers hold mu.
func (r *memoryRepository) row(k memberKey) *entity.Attendance {
	a, ok := r.attendance[k]
	if !ok {
		now := r.now()
		a = &entity.Attendance{EventID: k.eventID, UserID: k.userID, CreatedAt: now, UpdatedAt: now}
		r.attendance[k] = a
	}
	return a
}

func (r *memoryRepository) Invite(_ context.Context, eventID string, userIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range userIDs {
		r.row(memberKey{eventID, u})
	}
	return nil
}

func (r *memoryRepository) SetAccepted(_ context.Context, eventID, userID string, accepted bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.row(memberKey{eventID, userID})
	a.Accepted = &accepted
	a.UpdatedAt = r.now()
	return nil
}

func (r *memoryRepository) Accepted(_ context.Context, eventID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := []string{}
	for k, a := range r.attendance {
		if k.eventID == eventID && a.Accepted != nil && *a.Accepted {
			users = append(users, k.userID)
		}
	}
	sort.Strings(users)
	return users, nil
}

func (r *memoryRepository) ToggleInterested(_ context.Context, eventID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.row(memberKey{eventID, userID})
	a.Interested = !a.Interested
	a.UpdatedAt = r.now()
	return a.Interested, nil
}

func (r *memoryRepository) Interested(_ context.Context, eventID, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if a, ok := r.attendance[memberKey{eventID, userID}]; ok {
		return a.Interested, nil
	}
	return false, nil
}

func (r *memoryRepository) ListByEvent(ctx context.Context, eventID string) ([]entity.Attendance, error) {
	return r.ListByEvents(ctx, []string{eventID})
}

func (r *memoryRepository) ListByEvents(_ context.Context, eventIDs []string) ([]entity.Attendance, error) {
	want := make(map[string]bool, len(eventIDs))
	for _, id := range eventIDs {
		want[id] = true
	}

	r.mu.RLock()
	rows := []entity.Attendance{}
	for k, a := range r.attendance {
		if want[k.eventID] {
			rows = append(rows, *a)
		}
	}
	r.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].EventID != rows[j].EventID {
			return rows[i].EventID < rows[j].EventID
		}
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.Before(rows[j].CreatedAt)
		}
		return rows[i].UserID < rows[j].UserID
	})
	return rows, nil
}

func (r *memoryRepository) EventIDsForUser(_ context.Context, userID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := []string{}
	for k := range r.attendance {
		if k.userID == userID {
			ids = append(ids, k.eventID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *memoryRepository) SetNotification(_ context.Context, eventID, userID string, setting entity.NotificationSetting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.preferences[memberKey{eventID, userID}] = setting
	return nil
}

func (r *memoryRepository) GetNotification(_ context.Context, eventID, userID string) (*entity.Preference, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	setting, ok := r.preferences[memberKey{eventID, userID}]
	if !ok {
		return nil, nil
	}
	return &entity.Preference{EventID: eventID, UserID: userID, Setting: setting}, nil
}

func (r *memoryRepository) PreferencesForEvents(_ context.Context, eventIDs []string) ([]entity.Preference, error) {
	want := make(map[string]bool, len(eventIDs))
	for _, id := range eventIDs {
		want[id] = true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	prefs := []entity.Preference{}
	for k, s := range r.preferences {
		if want[k.eventID] && !s.IsNone() {
			prefs = append(prefs, entity.Preference{EventID: k.eventID, UserID: k.userID, Setting: s})
		}
	}
	sort.Slice(prefs, func(i, j int) bool {
		if prefs[i].EventID != prefs[j].EventID {
			return prefs[i].EventID < prefs[j].EventID
		}
		return prefs[i].UserID < prefs[j].UserID
	})
	return prefs, nil
}

func (r *memoryRepository) DeleteByEvent(_ context.Context, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.attendance {
		if k.eventID == eventID {
			delete(r.attendance, k)
		}
	}
	for k := range r.preferences {
		if k.eventID == eventID {
			delete(r.preferences, k)
		}
	}
	return nil
}
