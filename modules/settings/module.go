package settings

import (
	"time"

	"calendar-service/core/cache"
	"calendar-service/core/database"
	"calendar-service/core/middleware"
	"calendar-service/modules/settings/controller"
	"calendar-service/modules/settings/repository"
	"calendar-service/modules/settings/router"
	"calendar-service/modules/settings/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Group, db *database.Database, c cache.Cache, ttl time.Duration, mw *middleware.Middleware) *service.SettingsService {
	var repo repository.SettingsRepository
	if db != nil {
		repo = repository.NewSettingsRepository(*db)
	} else {
		repo = repository.NewMemoryRepository()
	}

	svc := service.NewSettingsService(repo, c, ttl)
	ctrl := controller.NewSettingsController(svc)

	router.NewSettingsRouter(ctrl).Register(e, mw)

	return svc
}
