package service

import (
	"context"
	stderrors "errors"
	"iter"
	"sort"
	"strings"
	"sync"
	"time"

	"calendar-service/core/config"
	"calendar-service/core/constants"
	"calendar-service/core/errors"
	"calendar-service/core/logger"
	"calendar-service/core/platform"
	"calendar-service/core/utils"
	attendeeEntity "calendar-service/modules/attendee/entity"
	attendeeService "calendar-service/modules/attendee/service"
	"calendar-service/modules/availability"
	"calendar-service/modules/event/dto"
	"calendar-service/modules/event/entity"
	"calendar-service/modules/event/mapper"
	"calendar-service/modules/event/repository"
	"calendar-service/modules/recurrence"

	"golang.org/x/sync/errgroup"
)

// MembershipChecker answers channel membership questions. Answers are a
// point-in-time snapshot.
type MembershipChecker interface {
	IsChannelMember(ctx context.Context, channelID, userID string) (bool, error)
}

type EventServiceInterface interface {
	CreateEvent(ctx context.Context, caller dto.Caller, req *dto.EventRequest) (*dto.EventResponse, *errors.AppError)
	UpdateEvent(ctx context.Context, caller dto.Caller, req *dto.EventRequest) (*dto.EventResponse, *errors.AppError)
	RemoveEvent(ctx context.Context, caller dto.Caller, id string) *errors.AppError
	GetEvent(ctx context.Context, caller dto.Caller, id string) (*dto.EventDetailResponse, *errors.AppError)
	ListEvents(ctx context.Context, caller dto.Caller, q dto.ListEventsQuery) ([]dto.EventResponse, *errors.AppError)
	GetSchedule(ctx context.Context, caller dto.Caller, q dto.ScheduleQuery) (*dto.ScheduleResponse, *errors.AppError)
	GetNotificationSetting(ctx context.Context, caller dto.Caller, id string) (*dto.NotificationSettingResponse, *errors.AppError)
	SetNotificationSetting(ctx context.Context, caller dto.Caller, id, setting string) *errors.AppError
	GetInterested(ctx context.Context, caller dto.Caller, id string) (*dto.InterestedResponse, *errors.AppError)
	ToggleInterested(ctx context.Context, caller dto.Caller, id string) (*dto.InterestedResponse, *errors.AppError)
	SetAccepted(ctx context.Context, caller dto.Caller, id string, accepted bool) (*dto.AcceptedResponse, *errors.AppError)
	ExportICS(ctx context.Context, caller dto.Caller, id string) (*ICSFile, *errors.AppError)
	Upcoming(ctx context.Context, from, to time.Time) ([]dto.UpcomingOccurrence, *errors.AppError)
}

type EventService struct {
	repo     repository.EventRepository
	ledger   *attendeeService.Ledger
	members  MembershipChecker
	expander *recurrence.Expander
	engine   *availability.Engine
	cfg      config.SchedulingConfig
	now      func() time.Time
}

func NewEventService(
	repo repository.EventRepository,
	ledger *attendeeService.Ledger,
	members MembershipChecker,
	cfg config.SchedulingConfig,
) *EventService {
	expander := recurrence.NewExpander(cfg.MaxOccurrencesPerEvent)
	return &EventService{
		repo:     repo,
		ledger:   ledger,
		members:  members,
		expander: expander,
		engine:   availability.NewEngine(expander),
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *EventService) CreateEvent(ctx context.Context, caller dto.Caller, req *dto.EventRequest) (*dto.EventResponse, *errors.AppError) {
	in := *req
	if appErr := validateEvent(&in); appErr != nil {
		return nil, appErr
	}

	now := s.now()
	event := &entity.Event{
		ID:        utils.GenerateID(),
		Owner:     caller.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	mapper.ToEntity(&in, event)

	if err := s.repo.Create(ctx, event); err != nil {
		logger.Error("EventService:CreateEvent:Error", err)
		return nil, errors.NewAppError(errors.ErrCreateFailed, "failed to create event", err)
	}
	if appErr := s.ledger.Invite(ctx, event.ID, in.Attendees); appErr != nil {
		return nil, appErr
	}

	attendees, appErr := s.attendeeIDs(ctx, event.ID)
	if appErr != nil {
		return nil, appErr
	}

	logger.Info("EventService:CreateEvent", "event_id", event.ID, "owner", event.Owner, "recurring", event.IsRecurring())
	resp := mapper.ToEventResponse(event, attendees)
	return &resp, nil
}

// UpdateEvent replaces the editable fields of an event. The owner never
// changes and attendees are only ever added.
func (s *EventService) UpdateEvent(ctx context.Context, caller dto.Caller, req *dto.EventRequest) (*dto.EventResponse, *errors.AppError) {
	if strings.TrimSpace(req.ID) == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "event id is required", nil)
	}
	in := *req
	if appErr := validateEvent(&in); appErr != nil {
		return nil, appErr
	}

	var denied *entity.Event
	updated, err := s.repo.Update(ctx, in.ID, func(event *entity.Event) error {
		if !canEdit(caller, event) {
			denied = event.Clone()
			return errors.NewAppError(errors.ErrPermissionDenied, "not allowed to edit this event", nil)
		}
		mapper.ToEntity(&in, event)
		return nil
	})
	if denied != nil {
		return nil, s.denyEdit(ctx, caller, denied)
	}
	if err != nil {
		logger.Error("EventService:UpdateEvent:Error", err, "event_id", in.ID)
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "failed to update event", err)
	}
	if updated == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "event not found", nil)
	}

	if appErr := s.ledger.Invite(ctx, updated.ID, in.Attendees); appErr != nil {
		return nil, appErr
	}
	attendees, appErr := s.attendeeIDs(ctx, updated.ID)
	if appErr != nil {
		return nil, appErr
	}

	logger.Info("EventService:UpdateEvent", "event_id", updated.ID, "by", caller.UserID)
	resp := mapper.ToEventResponse(updated, attendees)
	return &resp, nil
}

func (s *EventService) RemoveEvent(ctx context.Context, caller dto.Caller, id string) *errors.AppError {
	event, appErr := s.getEvent(ctx, id)
	if appErr != nil {
		return appErr
	}
	if !canEdit(caller, event) {
		return s.denyEdit(ctx, caller, event)
	}

	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		logger.Error("EventService:RemoveEvent:Error", err, "event_id", id)
		return errors.NewAppError(errors.ErrDeleteFailed, "failed to remove event", err)
	}
	if !found {
		return errors.NewAppError(errors.ErrNotFound, "event not found", nil)
	}
	if appErr := s.ledger.Forget(ctx, id); appErr != nil {
		return appErr
	}

	logger.Info("EventService:RemoveEvent", "event_id", id, "by", caller.UserID)
	return nil
}

func (s *EventService) GetEvent(ctx context.Context, caller dto.Caller, id string) (*dto.EventDetailResponse, *errors.AppError) {
	event, attendees, appErr := s.loadVisible(ctx, caller, id)
	if appErr != nil {
		return nil, appErr
	}
	accepted, appErr := s.ledger.Accepted(ctx, id)
	if appErr != nil {
		return nil, appErr
	}

	resp := mapper.ToEventResponse(event, attendees)
	resp.Accepted = accepted
	return &dto.EventDetailResponse{Event: resp, Accepted: accepted}, nil
}

// ListEvents returns the occurrences, inside the window, of every event the
// caller owns or is invited to.
func (s *EventService) ListEvents(ctx context.Context, caller dto.Caller, q dto.ListEventsQuery) ([]dto.EventResponse, *errors.AppError) {
	if appErr := s.checkWindow(q.Start, q.End); appErr != nil {
		return nil, appErr
	}

	events, appErr := s.eventsForUser(ctx, caller.UserID, q.Team, q.Start, q.End)
	if appErr != nil {
		return nil, appErr
	}

	ids := make([]string, len(events))
	for i := range events {
		ids[i] = events[i].ID
	}
	attendees, appErr := s.ledger.AttendeesByEvent(ctx, ids)
	if appErr != nil {
		return nil, appErr
	}

	out := []dto.EventResponse{}
	for i := range events {
		event := &events[i]
		for occ := range s.occurrences(event, q.Start, q.End) {
			out = append(out, mapper.ToOccurrenceResponse(event, occ.Start, occ.End, attendees[event.ID]))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}

func (s *EventService) GetSchedule(ctx context.Context, caller dto.Caller, q dto.ScheduleQuery) (*dto.ScheduleResponse, *errors.AppError) {
	users := uniqueUsers(q.Users)
	if len(users) > s.cfg.MaxUsers {
		return nil, errors.NewAppError(errors.ErrQueryTooLarge, "too many users in schedule query", nil)
	}
	if q.SlotMinutes <= 0 {
		return nil, errors.NewAppError(errors.ErrInvalidSlotSize, "slot_time must be a positive number of minutes", nil)
	}
	if appErr := s.checkWindow(q.Start, q.End); appErr != nil {
		return nil, appErr
	}

	series := make(map[string][]recurrence.Series, len(users))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.cfg.Workers, 1))
	for _, user := range users {
		g.Go(func() error {
			events, appErr := s.eventsForUser(gctx, user, "", q.Start, q.End)
			if appErr != nil {
				return appErr
			}
			list := make([]recurrence.Series, len(events))
			for i := range events {
				list[i] = events[i].Series()
			}
			mu.Lock()
			series[user] = list
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("EventService:GetSchedule:Error", err, "users", len(users))
		if appErr, ok := err.(*errors.AppError); ok {
			return nil, appErr
		}
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to load events", err)
	}

	result, appErr := s.engine.Schedule(availability.Request{
		Users:       users,
		Events:      series,
		WindowStart: q.Start,
		WindowEnd:   q.End,
		SlotSize:    time.Duration(q.SlotMinutes) * time.Minute,
	})
	if appErr != nil {
		return nil, appErr
	}
	for _, w := range result.Warnings {
		logger.Warn("EventService:GetSchedule:Warning", "caller", caller.UserID, "warning", w)
	}

	resp := &dto.ScheduleResponse{
		Users:          make(map[string][]dto.BusyInterval, len(result.Busy)),
		BusyMinutes:    make(map[string]int, len(result.Busy)),
		AvailableTimes: result.FreeSlots,
		Warnings:       result.Warnings,
	}
	for user, timeline := range result.Busy {
		intervals := make([]dto.BusyInterval, len(timeline.Intervals))
		for i, iv := range timeline.Intervals {
			intervals[i] = dto.BusyInterval{
				Start:    iv.Start.UTC(),
				End:      iv.End.UTC(),
				Duration: int(iv.Duration() / time.Minute),
			}
		}
		resp.Users[user] = intervals
		resp.BusyMinutes[user] = int(timeline.Total / time.Minute)
	}
	return resp, nil
}

func (s *EventService) GetNotificationSetting(ctx context.Context, caller dto.Caller, id string) (*dto.NotificationSettingResponse, *errors.AppError) {
	if _, _, appErr := s.loadVisible(ctx, caller, id); appErr != nil {
		return nil, appErr
	}
	setting, appErr := s.ledger.GetNotification(ctx, id, caller.UserID)
	if appErr != nil {
		return nil, appErr
	}
	return &dto.NotificationSettingResponse{NotificationSetting: string(setting)}, nil
}

func (s *EventService) SetNotificationSetting(ctx context.Context, caller dto.Caller, id, setting string) *errors.AppError {
	if _, _, appErr := s.loadVisible(ctx, caller, id); appErr != nil {
		return appErr
	}
	return s.ledger.SetNotification(ctx, id, caller.UserID, attendeeEntity.NotificationSetting(setting))
}

func (s *EventService) GetInterested(ctx context.Context, caller dto.Caller, id string) (*dto.InterestedResponse, *errors.AppError) {
	if _, _, appErr := s.loadVisible(ctx, caller, id); appErr != nil {
		return nil, appErr
	}
	v, appErr := s.ledger.Interested(ctx, id, caller.UserID)
	if appErr != nil {
		return nil, appErr
	}
	return &dto.InterestedResponse{Interested: v}, nil
}

func (s *EventService) ToggleInterested(ctx context.Context, caller dto.Caller, id string) (*dto.InterestedResponse, *errors.AppError) {
	if _, _, appErr := s.loadVisible(ctx, caller, id); appErr != nil {
		return nil, appErr
	}
	v, appErr := s.ledger.ToggleInterested(ctx, id, caller.UserID)
	if appErr != nil {
		return nil, appErr
	}
	return &dto.InterestedResponse{Interested: v}, nil
}

func (s *EventService) SetAccepted(ctx context.Context, caller dto.Caller, id string, accepted bool) (*dto.AcceptedResponse, *errors.AppError) {
	if _, _, appErr := s.loadVisible(ctx, caller, id); appErr != nil {
		return nil, appErr
	}
	users, appErr := s.ledger.SetAccepted(ctx, id, caller.UserID, accepted)
	if appErr != nil {
		return nil, appErr
	}
	return &dto.AcceptedResponse{Accepted: users}, nil
}

// Upcoming returns every occurrence of any event starting in [from, to),
// with attendees and reminder preferences attached.
func (s *EventService) Upcoming(ctx context.Context, from, to time.Time) ([]dto.UpcomingOccurrence, *errors.AppError) {
	events, err := s.repo.List(ctx, repository.EventFilter{AllUsers: true, WindowStart: from, WindowEnd: to})
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to load events", err)
	}
	if len(events) == 0 {
		return nil, nil
	}

	ids := make([]string, len(events))
	for i := range events {
		ids[i] = events[i].ID
	}
	attendees, appErr := s.ledger.AttendeesByEvent(ctx, ids)
	if appErr != nil {
		return nil, appErr
	}
	prefs, appErr := s.ledger.PreferencesForEvents(ctx, ids)
	if appErr != nil {
		return nil, appErr
	}

	var out []dto.UpcomingOccurrence
	for i := range events {
		event := &events[i]
		byUser := make(map[string]string, len(prefs[event.ID]))
		for _, p := range prefs[event.ID] {
			byUser[p.UserID] = string(p.Setting)
		}
		for occ := range s.occurrences(event, from, to) {
			if occ.Start.Before(from) {
				continue
			}
			out = append(out, dto.UpcomingOccurrence{
				EventID:     event.ID,
				Title:       event.Title,
				Description: event.Description,
				Owner:       event.Owner,
				Channel:     event.ChannelID(),
				Alert:       string(event.Alert),
				Start:       occ.Start,
				End:         occ.End,
				Attendees:   attendees[event.ID],
				Preferences: byUser,
			})
		}
	}
	return out, nil
}

// ===================== helpers =====================

func validateEvent(req *dto.EventRequest) *errors.AppError {
	if strings.TrimSpace(req.Title) == "" {
		return errors.NewAppError(errors.ErrInvalidInput, "title is required", nil)
	}
	if req.Start.IsZero() || req.End.IsZero() {
		return errors.NewAppError(errors.ErrInvalidInput, "start and end are required", nil)
	}
	if !req.End.After(req.Start) {
		return errors.NewAppError(errors.ErrInvalidInput, "end must be after start", nil)
	}

	hasChannel := req.Channel != nil && *req.Channel != ""
	if req.Visibility == "" {
		req.Visibility = string(entity.VisibilityPrivate)
	}
	switch entity.Visibility(req.Visibility) {
	case entity.VisibilityPrivate:
		if hasChannel {
			return errors.NewAppError(errors.ErrInvalidVisibility, "private events cannot have a channel", nil)
		}
	case entity.VisibilityChannel:
		if !hasChannel {
			return errors.NewAppError(errors.ErrInvalidVisibility, "channel events need a channel", nil)
		}
	default:
		return errors.NewAppError(errors.ErrInvalidVisibility, "visibility must be private or channel", nil)
	}

	rule, err := recurrence.Normalize(req.Recurrence)
	if err != nil {
		return errors.NewAppError(errors.ErrInvalidRecurrenceRule, err.Error(), err)
	}
	req.Recurrence = rule

	if !attendeeEntity.NotificationSetting(req.Alert).Valid() {
		return errors.NewAppError(errors.ErrInvalidInput, "unknown alert "+req.Alert, nil)
	}
	if req.Color == "" {
		req.Color = constants.DefaultEventColor
	}
	return nil
}

func canEdit(caller dto.Caller, event *entity.Event) bool {
	return caller.UserID == event.Owner || caller.SystemAdmin || caller.IsTeamAdmin(event.Team)
}

func (s *EventService) canView(ctx context.Context, caller dto.Caller, event *entity.Event, attendees []string) (bool, *errors.AppError) {
	if canEdit(caller, event) {
		return true, nil
	}
	for _, a := range attendees {
		if a == caller.UserID {
			return true, nil
		}
	}
	if event.Visibility != entity.VisibilityChannel || s.members == nil {
		return false, nil
	}
	member, err := s.members.IsChannelMember(ctx, event.ChannelID(), caller.UserID)
	if stderrors.Is(err, platform.ErrNotConfigured) {
		logger.Warn("EventService:canView:MembershipUnavailable", "event_id", event.ID)
		return false, nil
	}
	if err != nil {
		logger.Error("EventService:canView:Membership", err, "event_id", event.ID)
		return false, errors.NewAppError(errors.ErrInternalServer, "failed to check channel membership", err)
	}
	return member, nil
}

// denyRead hides private events entirely when configured to.
func (s *EventService) denyRead(event *entity.Event) *errors.AppError {
	if s.cfg.HidePrivateEvents && event.Visibility == entity.VisibilityPrivate {
		return errors.NewAppError(errors.ErrNotFound, "event not found", nil)
	}
	return errors.NewAppError(errors.ErrPermissionDenied, "not allowed to view this event", nil)
}

func (s *EventService) denyEdit(ctx context.Context, caller dto.Caller, event *entity.Event) *errors.AppError {
	if s.cfg.HidePrivateEvents && event.Visibility == entity.VisibilityPrivate {
		attendees, appErr := s.attendeeIDs(ctx, event.ID)
		if appErr != nil {
			return appErr
		}
		if ok, _ := s.canView(ctx, caller, event, attendees); !ok {
			return errors.NewAppError(errors.ErrNotFound, "event not found", nil)
		}
	}
	return errors.NewAppError(errors.ErrPermissionDenied, "not allowed to edit this event", nil)
}

func (s *EventService) getEvent(ctx context.Context, id string) (*entity.Event, *errors.AppError) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to load event", err)
	}
	if event == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "event not found", nil)
	}
	return event, nil
}

func (s *EventService) loadVisible(ctx context.Context, caller dto.Caller, id string) (*entity.Event, []string, *errors.AppError) {
	event, appErr := s.getEvent(ctx, id)
	if appErr != nil {
		return nil, nil, appErr
	}
	attendees, appErr := s.attendeeIDs(ctx, id)
	if appErr != nil {
		return nil, nil, appErr
	}
	ok, appErr := s.canView(ctx, caller, event, attendees)
	if appErr != nil {
		return nil, nil, appErr
	}
	if !ok {
		return nil, nil, s.denyRead(event)
	}
	return event, attendees, nil
}

func (s *EventService) attendeeIDs(ctx context.Context, eventID string) ([]string, *errors.AppError) {
	rows, appErr := s.ledger.Attendees(ctx, eventID)
	if appErr != nil {
		return nil, appErr
	}
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.UserID
	}
	return ids, nil
}

// eventsForUser loads events the user owns or is invited to that may occur
// in the window.
func (s *EventService) eventsForUser(ctx context.Context, userID, team string, start, end time.Time) ([]entity.Event, *errors.AppError) {
	invited, appErr := s.ledger.EventIDsForUser(ctx, userID)
	if appErr != nil {
		return nil, appErr
	}
	events, err := s.repo.List(ctx, repository.EventFilter{
		Owners:      []string{userID},
		IDs:         invited,
		Team:        team,
		WindowStart: start,
		WindowEnd:   end,
	})
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to load events", err)
	}
	return events, nil
}

// occurrences expands event, falling back to its first occurrence when the
// stored rule no longer parses.
func (s *EventService) occurrences(event *entity.Event, start, end time.Time) iter.Seq[recurrence.Occurrence] {
	seq, err := s.expander.Expand(event.Series(), start, end)
	if err != nil {
		logger.Warn("EventService:occurrences:InvalidRule", "event_id", event.ID, "error", err.Error())
		seq, _ = s.expander.ExpandRule(event.Series(), recurrence.Rule{Freq: recurrence.Once}, start, end)
	}
	return seq
}

func (s *EventService) checkWindow(start, end time.Time) *errors.AppError {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return errors.NewAppError(errors.ErrInvalidWindow, "end must be after start", nil)
	}
	if end.Sub(start) > s.cfg.MaxWindow() {
		return errors.NewAppError(errors.ErrQueryTooLarge, "window is longer than allowed", nil)
	}
	return nil
}

func uniqueUsers(users []string) []string {
	seen := make(map[string]bool, len(users))
	out := make([]string, 0, len(users))
	for _, u := range users {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
