package dto

import (
	"time"

	"github.com/google/uuid"
)

type NotificationResponse struct {
	ID        uuid.UUID      `json:"id"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Type      string         `json:"type"`
	Data      map[string]any `json:"data"`
	IsRead    bool           `json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
}

type PaginatedNotificationResponse struct {
	Items      []NotificationResponse `json:"items"`
	TotalItems int                    `json:"total_items"`
	PageNumber int                    `json:"page_number"`
	PageSize   int                    `json:"page_size"`
}

type MarkAsReadRequest struct {
	IDs []string `json:"ids"`
}

type CreateNotificationRequest struct {
	UserID  string         `json:"user_id"`
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Type    string         `json:"type"`
	Data    map[string]any `json:"data"`
}
