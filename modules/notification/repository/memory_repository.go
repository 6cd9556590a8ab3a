package repository

import (
	"context"
	"slices"
	"sort"
	"sync"

	"calendar-service/core/params"
	"calendar-service/modules/notification/entity"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu    sync.RWMutex
	items []entity.Notification
}

func NewMemoryRepository() NotificationRepository {
	return &memoryRepository{}
}

func (r *memoryRepository) Create(_ context.Context, notification *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	r.items = append(r.items, *notification)
	return nil
}

func (r *memoryRepository) GetByUserID(_ context.Context, userID string, params params.QueryParams) (*entity.PaginatedNotificationEntity, error) {
	r.mu.RLock()
	mine := []entity.Notification{}
	for _, n := range r.items {
		if n.UserID == userID {
			mine = append(mine, n)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].CreatedAt.After(mine[j].CreatedAt)
	})

	start := min(params.Offset(), len(mine))
	end := min(start+params.PageSize, len(mine))
	return &entity.PaginatedNotificationEntity{
		Items:      mine[start:end],
		TotalItems: len(mine),
		PageNumber: params.PageNumber,
		PageSize:   params.PageSize,
	}, nil
}

func (r *memoryRepository) MarkAsRead(_ context.Context, userID string, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].UserID == userID && slices.Contains(ids, r.items[i].ID.String()) {
			r.items[i].IsRead = true
		}
	}
	return nil
}

func (r *memoryRepository) MarkAllAsRead(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].UserID == userID {
			r.items[i].IsRead = true
		}
	}
	return nil
}

func (r *memoryRepository) CountUnread(_ context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, n := range r.items {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}
