package mapper

import (
	"strings"
	"time"

	attendeeEntity "calendar-service/modules/attendee/entity"
	"calendar-service/modules/event/dto"
	"calendar-service/modules/event/entity"
)

func ToEventResponse(e *entity.Event, attendees []string) dto.EventResponse {
	if attendees == nil {
		attendees = []string{}
	}
	return dto.EventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Start:       e.Start.UTC(),
		End:         e.End.UTC(),
		Attendees:   attendees,
		Created:     e.CreatedAt.UTC(),
		Owner:       e.Owner,
		Team:        e.Team,
		Visibility:  string(e.Visibility),
		Channel:     e.Channel,
		Recurrence:  e.Recurrence,
		Color:       e.Color,
		Alert:       string(e.Alert),
	}
}

// ToOccurrenceResponse renders one occurrence of e.
func ToOccurrenceResponse(e *entity.Event, start, end time.Time, attendees []string) dto.EventResponse {
	resp := ToEventResponse(e, attendees)
	resp.Start = start.UTC()
	resp.End = end.UTC()
	return resp
}

// ToEntity copies the request fields an owner may set. Recurrence must
// already be normalized.
func ToEntity(req *dto.EventRequest, target *entity.Event) {
	target.Title = strings.TrimSpace(req.Title)
	target.Description = req.Description
	target.Start = req.Start.UTC()
	target.End = req.End.UTC()
	target.Team = req.Team
	target.Visibility = entity.Visibility(req.Visibility)
	target.Channel = nil
	if req.Channel != nil && *req.Channel != "" {
		ch := *req.Channel
		target.Channel = &ch
	}
	target.Color = req.Color
	target.Alert = attendeeEntity.NotificationSetting(req.Alert)
	target.Recurrence = req.Recurrence
}
