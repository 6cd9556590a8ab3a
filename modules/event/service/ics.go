package service

import (
	"context"
	"strconv"
	"strings"

	"calendar-service/core/errors"
	"calendar-service/modules/event/dto"
	"calendar-service/modules/event/entity"

	ics "github.com/arran4/golang-ical"
	"github.com/gosimple/slug"
)

const icsProductID = "-//calendar-service//EN"

type ICSFile struct {
	Name string
	Body []byte
}

// ExportICS renders a visible event, including its rule and alert, as an
// iCalendar file.
func (s *EventService) ExportICS(ctx context.Context, caller dto.Caller, id string) (*ICSFile, *errors.AppError) {
	event, attendees, appErr := s.loadVisible(ctx, caller, id)
	if appErr != nil {
		return nil, appErr
	}

	name := slug.Make(event.Title)
	if name == "" {
		name = "event"
	}
	return &ICSFile{Name: name + ".ics", Body: []byte(renderICS(event, attendees))}, nil
}

func renderICS(event *entity.Event, attendees []string) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)

	ve := cal.AddEvent(event.ID)
	ve.SetCreatedTime(event.CreatedAt.UTC())
	ve.SetDtStampTime(event.CreatedAt.UTC())
	ve.SetModifiedAt(event.UpdatedAt.UTC())
	ve.SetStartAt(event.Start.UTC())
	ve.SetEndAt(event.End.UTC())
	ve.SetSummary(event.Title)
	if event.Description != "" {
		ve.SetDescription(event.Description)
	}
	ve.SetOrganizer(event.Owner)
	for _, a := range attendees {
		ve.AddAttendee(a)
	}
	if event.IsRecurring() {
		ve.AddRrule(strings.TrimPrefix(event.Recurrence, "RRULE:"))
	}
	if lead := event.Alert.LeadTime(); lead > 0 {
		alarm := ve.AddAlarm()
		alarm.SetAction(ics.ActionDisplay)
		alarm.SetTrigger("-" + isoDuration(int(lead.Minutes())))
	}
	return cal.Serialize()
}

// isoDuration formats whole minutes as an RFC 5545 duration.
func isoDuration(minutes int) string {
	switch {
	case minutes%(7*24*60) == 0:
		return "P" + strconv.Itoa(minutes/(7*24*60)) + "W"
	case minutes%(24*60) == 0:
		return "P" + strconv.Itoa(minutes/(24*60)) + "D"
	case minutes%60 == 0:
		return "PT" + strconv.Itoa(minutes/60) + "H"
	default:
		return "PT" + strconv.Itoa(minutes) + "M"
	}
}

