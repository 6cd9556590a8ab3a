package router

import (
	"calendar-service/core/middleware"
	"calendar-service/modules/event/controller"

	"github.com/labstack/echo/v4"
)

type EventRouter struct {
	controller *controller.EventController
}

func NewEventRouter(controller *controller.EventController) *EventRouter {
	return &EventRouter{controller: controller}
}

func (r *EventRouter) Register(e *echo.Group, mw *middleware.Middleware) {
	e.GET("/schedule", r.controller.GetSchedule, mw.AuthMiddleware())

	group := e.Group("/events", mw.AuthMiddleware())
	group.GET("", r.controller.ListEvents)
	group.POST("", r.controller.CreateEvent)
	group.PUT("", r.controller.UpdateEvent)
	group.GET("/:id", r.controller.GetEvent)
	group.PUT("/:id", r.controller.UpdateEvent)
	group.DELETE("/:id", r.controller.RemoveEvent)
	group.GET("/:id/ics", r.controller.ExportICS)
	group.GET("/:id/notification_setting", r.controller.GetNotificationSetting)
	group.POST("/:id/notification_setting", r.controller.SetNotificationSetting)
	group.GET("/:id/interested", r.controller.GetInterested)
	group.POST("/:id/interested", r.controller.ToggleInterested)
	group.POST("/:id/accepted", r.controller.SetAccepted)
}
