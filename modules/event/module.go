package event

import (
	"calendar-service/core/config"
	"calendar-service/core/database"
	"calendar-service/core/middleware"
	attendeeRepo "calendar-service/modules/attendee/repository"
	attendeeService "calendar-service/modules/attendee/service"
	"calendar-service/modules/event/controller"
	"calendar-service/modules/event/repository"
	"calendar-service/modules/event/router"
	"calendar-service/modules/event/service"

	"github.com/labstack/echo/v4"
)

// Init wires the event module. A nil db selects the in-memory stores.
func Init(e *echo.Group, db *database.Database, members service.MembershipChecker, cfg config.SchedulingConfig, mw *middleware.Middleware) *service.EventService {
	var (
		events    repository.EventRepository
		attendees attendeeRepo.AttendanceRepository
	)
	if db != nil {
		events = repository.NewEventRepository(*db)
		attendees = attendeeRepo.NewAttendanceRepository(*db)
	} else {
		events = repository.NewMemoryRepository()
		attendees = attendeeRepo.NewMemoryRepository()
	}

	svc := service.NewEventService(events, attendeeService.NewLedger(attendees), members, cfg)
	ctrl := controller.NewEventController(svc)

	router.NewEventRouter(ctrl).Register(e, mw)

	return svc
}
