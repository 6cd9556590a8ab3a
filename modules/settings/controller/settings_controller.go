package controller

import (
	"calendar-service/core/controller"
	"calendar-service/core/errors"
	"calendar-service/core/middleware"
	"calendar-service/modules/settings/dto"
	"calendar-service/modules/settings/service"

	"github.com/labstack/echo/v4"
)

type SettingsController struct {
	service *service.SettingsService
	controller.BaseController
}

func NewSettingsController(service *service.SettingsService) *SettingsController {
	return &SettingsController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

func (c *SettingsController) GetSettings(ctx echo.Context) error {
	claims, appErr := middleware.ClaimsFromContext(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	result, appErr := c.service.GetSettings(ctx.Request().Context(), claims.UserID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Settings retrieved successfully")
}

func (c *SettingsController) UpdateSettings(ctx echo.Context) error {
	claims, appErr := middleware.ClaimsFromContext(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	req := new(dto.SettingsRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}

	result, appErr := c.service.UpdateSettings(ctx.Request().Context(), claims.UserID, req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Settings updated successfully")
}
