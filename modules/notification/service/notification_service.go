package service

import (
	"context"
	"time"

	coreEntity "calendar-service/core/entity"
	"calendar-service/core/errors"
	"calendar-service/core/logger"
	"calendar-service/core/params"
	"calendar-service/modules/notification/dto"
	"calendar-service/modules/notification/entity"
	"calendar-service/modules/notification/repository"
)

type NotificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) Create(ctx context.Context, req *dto.CreateNotificationRequest) *errors.AppError {
	if req.UserID == "" {
		return errors.NewAppError(errors.ErrInvalidInput, "user_id is required", nil)
	}
	now := time.Now().UTC()
	notif := &entity.Notification{
		UserID:  req.UserID,
		Title:   req.Title,
		Message: req.Message,
		Type:    req.Type,
		Data:    entity.JSONB(req.Data),
		IsRead:  false,
		BaseEntity: coreEntity.BaseEntity{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	if err := s.repo.Create(ctx, notif); err != nil {
		logger.Error("NotificationService:Create:Error", err, "user_id", req.UserID)
		return errors.NewAppError(errors.ErrCreateFailed, "failed to create notification", err)
	}
	return nil
}

func (s *NotificationService) GetMyNotifications(ctx context.Context, userID string, queryParams params.QueryParams) (*dto.PaginatedNotificationResponse, *errors.AppError) {
	page, err := s.repo.GetByUserID(ctx, userID, queryParams)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to get notifications", err)
	}

	items := make([]dto.NotificationResponse, len(page.Items))
	for i, n := range page.Items {
		items[i] = dto.NotificationResponse{
			ID:        n.ID,
			Title:     n.Title,
			Message:   n.Message,
			Type:      n.Type,
			Data:      n.Data,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		}
	}
	return &dto.PaginatedNotificationResponse{
		Items:      items,
		TotalItems: page.TotalItems,
		PageNumber: page.PageNumber,
		PageSize:   page.PageSize,
	}, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID string, ids []string) *errors.AppError {
	if err := s.repo.MarkAsRead(ctx, userID, ids); err != nil {
		return errors.NewAppError(errors.ErrUpdateFailed, "failed to mark as read", err)
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string) *errors.AppError {
	if err := s.repo.MarkAllAsRead(ctx, userID); err != nil {
		return errors.NewAppError(errors.ErrUpdateFailed, "failed to mark all as read", err)
	}
	return nil
}

func (s *NotificationService) CountUnread(ctx context.Context, userID string) (int, *errors.AppError) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, errors.NewAppError(errors.ErrGetFailed, "failed to count unread", err)
	}
	return count, nil
}
