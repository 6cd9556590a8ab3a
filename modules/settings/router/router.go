package router

import (
	"calendar-service/core/middleware"
	"calendar-service/modules/settings/controller"

	"github.com/labstack/echo/v4"
)

type SettingsRouter struct {
	controller *controller.SettingsController
}

func NewSettingsRouter(controller *controller.SettingsController) *SettingsRouter {
	return &SettingsRouter{controller: controller}
}

func (r *SettingsRouter) Register(e *echo.Group, mw *middleware.Middleware) {
	group := e.Group("/settings", mw.AuthMiddleware())
	group.GET("", r.controller.GetSettings)
	group.PUT("", r.controller.UpdateSettings)
}
