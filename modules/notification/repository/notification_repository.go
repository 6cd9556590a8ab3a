package repository

import (
	"context"

	"calendar-service/core/database"
	"calendar-service/core/logger"
	"calendar-service/core/params"
	"calendar-service/modules/notification/entity"

	"github.com/jmoiron/sqlx"
)

type notificationRepository struct {
	db database.Database
}

func NewNotificationRepository(db database.Database) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	query := `
		INSERT INTO calendar_notifications (title, message, type, data, user_id, is_read, created_at, updated_at)
		VALUES (:title, :message, :type, :data, :user_id, :is_read, :created_at, :updated_at)
		RETURNING id
	`
	rows, err := r.db.NamedQueryContext(ctx, query, notification)
	if err != nil {
		logger.Error("NotificationRepository:Create:Error:", err)
		return err
	}
	defer rows.Close()

	if rows.Next() {
		return rows.Scan(&notification.ID)
	}
	return rows.Err()
}

func (r *notificationRepository) GetByUserID(ctx context.Context, userID string, params params.QueryParams) (*entity.PaginatedNotificationEntity, error) {
	baseQuery := `FROM calendar_notifications WHERE user_id = $1`

	var totalItems int
	err := r.db.GetContext(ctx, &totalItems, "SELECT COUNT(*) "+baseQuery, userID)
	if err != nil {
		logger.Error("NotificationRepository:GetByUserID:Count:Error:", err)
		return nil, err
	}

	query := `
		SELECT id, user_id, title, message, type, data, is_read, created_at, updated_at ` + baseQuery + `
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	notifications := []entity.Notification{}
	err = r.db.SelectContext(ctx, &notifications, query, userID, params.PageSize, params.Offset())
	if err != nil {
		logger.Error("NotificationRepository:GetByUserID:Select:Error:", err)
		return nil, err
	}

	return &entity.PaginatedNotificationEntity{
		Items:      notifications,
		TotalItems: totalItems,
		PageNumber: params.PageNumber,
		PageSize:   params.PageSize,
	}, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`UPDATE calendar_notifications SET is_read = true, updated_at = NOW() WHERE user_id = ? AND id IN (?)`, userID, ids)
	if err != nil {
		return err
	}

	query = r.db.SQLx().Rebind(query)
	if err := r.db.ExecContext(ctx, query, args...); err != nil {
		logger.Error("NotificationRepository:MarkAsRead:Error:", err)
		return err
	}
	return nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID string) error {
	query := `UPDATE calendar_notifications SET is_read = true, updated_at = NOW() WHERE user_id = $1 AND is_read = false`
	if err := r.db.ExecContext(ctx, query, userID); err != nil {
		logger.Error("NotificationRepository:MarkAllAsRead:Error:", err)
		return err
	}
	return nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM calendar_notifications WHERE user_id = $1 AND is_read = false`
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		logger.Error("NotificationRepository:CountUnread:Error:", err)
		return 0, err
	}
	return count, nil
}
