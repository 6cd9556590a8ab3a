package controller

import (
	"calendar-service/core/controller"
	"calendar-service/core/errors"
	"calendar-service/core/middleware"
	"calendar-service/core/params"
	"calendar-service/modules/notification/dto"
	"calendar-service/modules/notification/service"

	"github.com/labstack/echo/v4"
)

type NotificationController struct {
	service *service.NotificationService
	controller.BaseController
}

func NewNotificationController(service *service.NotificationService) *NotificationController {
	return &NotificationController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// GetMyNotifications lists the caller's inbox, newest first.
// GET /notifications?page=&limit=
func (c *NotificationController) GetMyNotifications(ctx echo.Context) error {
	claims, appErr := middleware.ClaimsFromContext(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	queryParams := params.NewQueryParams(ctx)
	result, appErr := c.service.GetMyNotifications(ctx.Request().Context(), claims.UserID, *queryParams)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Notifications retrieved successfully")
}

// PUT /notifications/mark-read
func (c *NotificationController) MarkAsRead(ctx echo.Context) error {
	claims, appErr := middleware.ClaimsFromContext(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	req := new(dto.MarkAsReadRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}

	if appErr := c.service.MarkAsRead(ctx.Request().Context(), claims.UserID, req.IDs); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, nil, "Marked as read successfully")
}

// PUT /notifications/mark-all-read
func (c *NotificationController) MarkAllAsRead(ctx echo.Context) error {
	claims, appErr := middleware.ClaimsFromContext(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	if appErr := c.service.MarkAllAsRead(ctx.Request().Context(), claims.UserID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, nil, "Marked all as read successfully")
}

// GET /notifications/unread-count
func (c *NotificationController) CountUnread(ctx echo.Context) error {
	claims, appErr := middleware.ClaimsFromContext(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	count, appErr := c.service.CountUnread(ctx.Request().Context(), claims.UserID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, map[string]int{"count": count}, "Unread count retrieved")
}
