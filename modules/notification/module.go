package notification

import (
	"calendar-service/core/database"
	"calendar-service/core/middleware"
	"calendar-service/modules/notification/controller"
	"calendar-service/modules/notification/repository"
	"calendar-service/modules/notification/router"
	"calendar-service/modules/notification/service"

	"github.com/labstack/echo/v4"
)

// Init wires the inbox. A nil db selects the in-memory store.
func Init(e *echo.Group, db *database.Database, mw *middleware.Middleware) *service.NotificationService {
	var repo repository.NotificationRepository
	if db != nil {
		repo = repository.NewNotificationRepository(*db)
	} else {
		repo = repository.NewMemoryRepository()
	}
	svc := service.NewNotificationService(repo)
	ctrl := controller.NewNotificationController(svc)

	router.NewNotificationRouter(ctrl).Register(e, mw)

	return svc
}
