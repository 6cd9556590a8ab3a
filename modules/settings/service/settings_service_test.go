package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"calendar-service/core/cache"
	"calendar-service/core/errors"
	"calendar-service/modules/settings/dto"
	"calendar-service/modules/settings/repository"
)

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
}

func newMapCache() *mapCache { return &mapCache{data: make(map[string][]byte)} }

func (c *mapCache) GetJSON(_ context.Context, key string, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	raw, ok := c.data[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *mapCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *mapCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *mapCache) Publish(context.Context, string, any) error { return nil }

func (c *mapCache) Ping(context.Context) error { return nil }
func (c *mapCache) Close() error               { return nil }

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func TestGetSettingsDefaults(t *testing.T) {
	t.Parallel()

	s := NewSettingsService(repository.NewMemoryRepository(), nil, time.Minute)
	got, appErr := s.GetSettings(context.Background(), "u1")
	if appErr != nil {
		t.Fatalf("GetSettings: %v", appErr)
	}
	want := dto.SettingsResponse{IsOpenCalendarLeftBar: true, FirstDayOfWeek: 1, HideNonWorkingDays: false}
	if *got != want {
		t.Fatalf("got %+v, want %+v", *got, want)
	}
}

func TestUpdateSettingsMergesAndInvalidates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newMapCache()
	s := NewSettingsService(repository.NewMemoryRepository(), c, time.Minute)

	if _, appErr := s.GetSettings(ctx, "u1"); appErr != nil {
		t.Fatalf("GetSettings: %v", appErr)
	}
	if len(c.data) != 1 {
		t.Fatalf("settings not cached")
	}

	got, appErr := s.UpdateSettings(ctx, "u1", &dto.SettingsRequest{HideNonWorkingDays: boolPtr(true)})
	if appErr != nil {
		t.Fatalf("UpdateSettings: %v", appErr)
	}
	if !got.HideNonWorkingDays || !got.IsOpenCalendarLeftBar || got.FirstDayOfWeek != 1 {
		t.Fatalf("merge lost fields: %+v", got)
	}
	if len(c.data) != 0 {
		t.Fatalf("cache not invalidated")
	}

	again, _ := s.GetSettings(ctx, "u1")
	if !again.HideNonWorkingDays {
		t.Fatalf("stale read after update: %+v", again)
	}

	other, _ := s.GetSettings(ctx, "u2")
	if other.HideNonWorkingDays {
		t.Fatalf("settings leaked across users")
	}
}

func TestUpdateSettingsRejectsBadWeekday(t *testing.T) {
	t.Parallel()

	s := NewSettingsService(repository.NewMemoryRepository(), nil, time.Minute)
	_, appErr := s.UpdateSettings(context.Background(), "u1", &dto.SettingsRequest{FirstDayOfWeek: intPtr(7)})
	if appErr == nil || appErr.Code != errors.ErrInvalidInput {
		t.Fatalf("err = %v, want InvalidInput", appErr)
	}
}
