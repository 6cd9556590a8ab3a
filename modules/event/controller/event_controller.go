package controller

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"calendar-service/core/controller"
	"calendar-service/core/errors"
	"calendar-service/core/middleware"
	"calendar-service/modules/event/dto"
	"calendar-service/modules/event/service"

	"github.com/labstack/echo/v4"
)

type EventController struct {
	service service.EventServiceInterface
	controller.BaseController
}

func NewEventController(service service.EventServiceInterface) *EventController {
	return &EventController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// ListEvents returns the caller's occurrences in [start, end).
// GET /events?start=&end=&team=
func (c *EventController) ListEvents(ctx echo.Context) error {
	caller, appErr := callerFrom(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	start, end, appErr := parseWindow(ctx, errors.ErrInvalidWindow)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	result, appErr := c.service.ListEvents(ctx.Request().Context(), caller, dto.ListEventsQuery{
		Start: start,
		End:   end,
		Team:  ctx.QueryParam("team"),
	})
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Events retrieved successfully")
}

func (c *EventController) GetEvent(ctx echo.Context) error {
	caller, appErr := callerFrom(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	result, appErr := c.service.GetEvent(ctx.Request().Context(), caller, ctx.Param("id"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Event retrieved successfully")
}

func (c *EventController) CreateEvent(ctx echo.Context) error {
	caller, appErr := callerFrom(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	req := new(dto.EventRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}

	result, appErr := c.service.CreateEvent(ctx.Request().Context(), caller, req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Event created successfully")
}

// UpdateEvent takes the id from the path when present.
func (c *EventController) UpdateEvent(ctx echo.Context) error {
	caller, appErr := callerFrom(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	req := new(dto.EventRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}
	if id := ctx.Param("id"); id != "" {
		req.ID = id
	}

	result, appErr := c.service.UpdateEvent(ctx.Request().Context(), caller, req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Event updated successfully")
}

func (c *EventController) RemoveEvent(ctx echo.Context) error {
	caller, appErr := callerFrom(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	if appErr := c.service.RemoveEvent(ctx.Request().Context(), caller, ctx.Param("id")); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, dto.SuccessResponse{Success: true}, "Event removed successfully")
}

func (c *EventController) ExportICS(ctx echo.Context) error {
	caller, appErr := callerFrom(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	file, appErr := c.service.ExportICS(ctx.Request().Context(), caller, ctx.Param("id"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+file.Name+`"`)
	return ctx.Blob(http.StatusOK, "text/calendar; charset=utf-8", file.Body)
}

// GetSchedule reports busy time per user and the common free slots.
// GET /schedule?users=a,b&slot_time=30&start=&end=
func (c *EventController) GetSchedule(ctx echo.Context) error {
	caller, appErr := callerFrom(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	var users []string
	for _, u := range strings.Split(ctx.QueryParam("users"), ",") {
		if u = strings.TrimSpace(u); u != "" {
			users = append(users, u)
		}
	}

	slot, err := strconv.Atoi(ctx.QueryParam("slot_time"))
	if err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidSlotSize, "slot_time must be an integer", err))
	}

	start, end, appErr := parseWindow(ctx, errors.ErrInvalidInput)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	result, appErr := c.service.GetSchedule(ctx.Request().Context(), caller, dto.ScheduleQuery{
		Users:       users,
		SlotMinutes: slot,
		Start:       start,
		End:         end,
	})
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Schedule retrieved successfully")
}

func (c *EventController) GetNotificationSetting(ctx echo.Context) error {
	caller, appErr := callerFrom(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	result, appErr := c.service.GetNotificationSetting(ctx.Request().Context(), caller, ctx.Param("id"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Notification setting retrieved successfully")
}

func (c *EventController) SetNotificationSetting(ctx echo.Context) error {
	caller, appErr := callerFrom(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	req := new(dto.NotificationSettingRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}

	if appErr := c.service.SetNotificationSetting(ctx.Request().Context(), caller, ctx.Param("id"), req.NotificationSetting); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, dto.SuccessResponse{Success: true}, "Notification setting saved successfully")
}

func (c *EventController) GetInterested(ctx echo.Context) error {
	caller, appErr := callerFrom(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	result, appErr := c.service.GetInterested(ctx.Request().Context(), caller, ctx.Param("id"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Interest retrieved successfully")
}

func (c *EventController) ToggleInterested(ctx echo.Context) error {
	caller, appErr := callerFrom(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	result, appErr := c.service.ToggleInterested(ctx.Request().Context(), caller, ctx.Param("id"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Interest updated successfully")
}

func (c *EventController) SetAccepted(ctx echo.Context) error {
	caller, appErr := callerFrom(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	req := new(dto.AcceptedRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}
	if req.Accepted == nil {
		return c.BadRequest(errors.ErrInvalidInput, "accepted is required", nil)
	}

	result, appErr := c.service.SetAccepted(ctx.Request().Context(), caller, ctx.Param("id"), *req.Accepted)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Answer recorded successfully")
}

func callerFrom(ctx echo.Context) (dto.Caller, *errors.AppError) {
	claims, appErr := middleware.ClaimsFromContext(ctx)
	if appErr != nil {
		return dto.Caller{}, appErr
	}
	return dto.Caller{
		UserID:      claims.UserID,
		SystemAdmin: claims.SystemAdmin,
		TeamAdminOf: claims.TeamAdminOf,
	}, nil
}

// parseWindow reads RFC 3339 start and end query parameters.
func parseWindow(ctx echo.Context, code errors.ErrorCode) (time.Time, time.Time, *errors.AppError) {
	start, err := time.Parse(time.RFC3339, ctx.QueryParam("start"))
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewAppError(code, "start must be an RFC 3339 time", err)
	}
	end, err := time.Parse(time.RFC3339, ctx.QueryParam("end"))
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewAppError(code, "end must be an RFC 3339 time", err)
	}
	return start.UTC(), end.UTC(), nil
}
