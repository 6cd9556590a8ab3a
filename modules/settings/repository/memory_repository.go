package repository

import (
	"context"
	"sync"
	"time"

	"calendar-service/modules/settings/entity"
)

type memoryRepository struct {
	mu       sync.RWMutex
	settings map[string]entity.Settings
}

func NewMemoryRepository() SettingsRepository {
	return &memoryRepository{settings: make(map[string]entity.Settings)}
}

func (r *memoryRepository) Get(_ context.Context, userID string) (*entity.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.settings[userID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *memoryRepository) Upsert(_ context.Context, settings *entity.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := *settings
	s.UpdatedAt = time.Now().UTC()
	r.settings[s.UserID] = s
	return nil
}
