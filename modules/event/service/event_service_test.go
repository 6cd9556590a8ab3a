package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"calendar-service/core/config"
	"calendar-service/core/errors"
	"calendar-service/core/platform"
	attendeeRepo "calendar-service/modules/attendee/repository"
	attendeeService "calendar-service/modules/attendee/service"
	"calendar-service/modules/event/dto"
	"calendar-service/modules/event/repository"
)

type fakeMembers map[string][]string

func (f fakeMembers) IsChannelMember(_ context.Context, channelID, userID string) (bool, error) {
	for _, u := range f[channelID] {
		if u == userID {
			return true, nil
		}
	}
	return false, nil
}

func testConfig() config.SchedulingConfig {
	return config.SchedulingConfig{
		MaxUsers:               5,
		MaxWindowDays:          31,
		MaxOccurrencesPerEvent: 5000,
		Workers:                2,
	}
}

func newTestService(cfg config.SchedulingConfig) *EventService {
	ledger := attendeeService.NewLedger(attendeeRepo.NewMemoryRepository())
	members := fakeMembers{"town-square": {"member"}}
	return NewEventService(repository.NewMemoryRepository(), ledger, members, cfg)
}

func ts(day, hour, min int) time.Time {
	return time.Date(2024, time.May, day, hour, min, 0, 0, time.UTC)
}

func strPtr(s string) *string { return &s }

var (
	owner     = dto.Caller{UserID: "owner"}
	stranger  = dto.Caller{UserID: "stranger"}
	sysAdmin  = dto.Caller{UserID: "root", SystemAdmin: true}
	teamAdmin = dto.Caller{UserID: "lead", TeamAdminOf: []string{"team1"}}
)

func createEvent(t *testing.T, s *EventService, req dto.EventRequest) *dto.EventResponse {
	t.Helper()
	if req.Title == "" {
		req.Title = "Standup"
	}
	if req.Start.IsZero() {
		req.Start, req.End = ts(6, 9, 0), ts(6, 10, 0)
	}
	resp, appErr := s.CreateEvent(context.Background(), owner, &req)
	if appErr != nil {
		t.Fatalf("CreateEvent: %v", appErr)
	}
	return resp
}

func TestCreateEventDefaultsAndAttendees(t *testing.T) {
	t.Parallel()

	s := newTestService(testConfig())
	resp := createEvent(t, s, dto.EventRequest{Attendees: []string{"u1", "u2", "u1"}, Team: "team1"})

	if resp.ID == "" || resp.Owner != "owner" {
		t.Fatalf("unexpected event %+v", resp)
	}
	if resp.Visibility != "private" || resp.Color == "" {
		t.Fatalf("defaults not applied: %+v", resp)
	}
	if len(resp.Attendees) != 2 {
		t.Fatalf("attendees = %v", resp.Attendees)
	}
}

func TestCreateEventValidation(t *testing.T) {
	t.Parallel()

	s := newTestService(testConfig())
	cases := []struct {
		name string
		req  dto.EventRequest
		code errors.ErrorCode
	}{
		{"no title", dto.EventRequest{Start: ts(6, 9, 0), End: ts(6, 10, 0)}, errors.ErrInvalidInput},
		{"end before start", dto.EventRequest{Title: "x", Start: ts(6, 10, 0), End: ts(6, 9, 0)}, errors.ErrInvalidInput},
		{"private with channel", dto.EventRequest{Title: "x", Start: ts(6, 9, 0), End: ts(6, 10, 0), Visibility: "private", Channel: strPtr("c1")}, errors.ErrInvalidVisibility},
		{"channel without channel", dto.EventRequest{Title: "x", Start: ts(6, 9, 0), End: ts(6, 10, 0), Visibility: "channel"}, errors.ErrInvalidVisibility},
		{"unknown visibility", dto.EventRequest{Title: "x", Start: ts(6, 9, 0), End: ts(6, 10, 0), Visibility: "public"}, errors.ErrInvalidVisibility},
		{"bad rule", dto.EventRequest{Title: "x", Start: ts(6, 9, 0), End: ts(6, 10, 0), Recurrence: "FREQ=HOURLY"}, errors.ErrInvalidRecurrenceRule},
		{"bad alert", dto.EventRequest{Title: "x", Start: ts(6, 9, 0), End: ts(6, 10, 0), Alert: "whenever"}, errors.ErrInvalidInput},
	}
	for _, tc := range cases {
		_, appErr := s.CreateEvent(context.Background(), owner, &tc.req)
		if appErr == nil || appErr.Code != tc.code {
			t.Fatalf("%s: err = %v, want %s", tc.name, appErr, tc.code)
		}
	}
}

func TestCreateEventNormalizesLegacyRule(t *testing.T) {
	t.Parallel()

	s := newTestService(testConfig())
	resp := createEvent(t, s, dto.EventRequest{Recurrence: "[0,4]"})
	if resp.Recurrence != "RRULE:FREQ=WEEKLY;INTERVAL=1;BYDAY=MO,FR" {
		t.Fatalf("recurrence = %q", resp.Recurrence)
	}
}

func TestUpdateByStrangerDeniedAndUnchanged(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestService(testConfig())
	created := createEvent(t, s, dto.EventRequest{Team: "team1"})

	_, appErr := s.UpdateEvent(ctx, stranger, &dto.EventRequest{
		ID: created.ID, Title: "Hijacked", Start: ts(7, 9, 0), End: ts(7, 10, 0),
	})
	if appErr == nil || appErr.Code != errors.ErrPermissionDenied {
		t.Fatalf("err = %v, want PermissionDenied", appErr)
	}

	got, appErr := s.GetEvent(ctx, owner, created.ID)
	if appErr != nil {
		t.Fatalf("GetEvent: %v", appErr)
	}
	if got.Event.Title != "Standup" || !got.Event.Start.Equal(ts(6, 9, 0)) {
		t.Fatalf("event changed after denied update: %+v", got.Event)
	}
}

func TestUpdateByAdmins(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestService(testConfig())
	created := createEvent(t, s, dto.EventRequest{Team: "team1"})

	for _, caller := range []dto.Caller{teamAdmin, sysAdmin} {
		resp, appErr := s.UpdateEvent(ctx, caller, &dto.EventRequest{
			ID: created.ID, Title: "Renamed by " + caller.UserID, Start: ts(7, 9, 0), End: ts(7, 10, 0),
			Team: "team1", Attendees: []string{"u3"},
		})
		if appErr != nil {
			t.Fatalf("%s: UpdateEvent: %v", caller.UserID, appErr)
		}
		if resp.Owner != "owner" {
			t.Fatalf("owner changed to %q", resp.Owner)
		}
	}

	other := dto.Caller{UserID: "lead2", TeamAdminOf: []string{"team2"}}
	_, appErr := s.UpdateEvent(ctx, other, &dto.EventRequest{ID: created.ID, Title: "x", Start: ts(7, 9, 0), End: ts(7, 10, 0)})
	if appErr == nil || appErr.Code != errors.ErrPermissionDenied {
		t.Fatalf("admin of another team: err = %v", appErr)
	}
}

func TestUpdateMissingEvent(t *testing.T) {
	t.Parallel()

	s := newTestService(testConfig())
	_, appErr := s.UpdateEvent(context.Background(), owner, &dto.EventRequest{ID: "nope", Title: "x", Start: ts(7, 9, 0), End: ts(7, 10, 0)})
	if appErr == nil || appErr.Code != errors.ErrNotFound {
		t.Fatalf("err = %v, want NotFound", appErr)
	}
}

func TestRemoveEventCascades(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestService(testConfig())
	created := createEvent(t, s, dto.EventRequest{Attendees: []string{"u1"}})
	u1 := dto.Caller{UserID: "u1"}

	if appErr := s.SetNotificationSetting(ctx, u1, created.ID, "15_minutes_before"); appErr != nil {
		t.Fatalf("SetNotificationSetting: %v", appErr)
	}
	if appErr := s.RemoveEvent(ctx, stranger, created.ID); appErr == nil || appErr.Code != errors.ErrPermissionDenied {
		t.Fatalf("stranger remove err = %v", appErr)
	}
	if appErr := s.RemoveEvent(ctx, owner, created.ID); appErr != nil {
		t.Fatalf("RemoveEvent: %v", appErr)
	}

	if _, appErr := s.GetEvent(ctx, owner, created.ID); appErr == nil || appErr.Code != errors.ErrNotFound {
		t.Fatalf("GetEvent after remove err = %v", appErr)
	}
	setting, appErr := s.ledger.GetNotification(ctx, created.ID, "u1")
	if appErr != nil || setting != "" {
		t.Fatalf("stale setting %q, %v", setting, appErr)
	}
}

func TestReadVisibility(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestService(testConfig())
	private := createEvent(t, s, dto.EventRequest{Attendees: []string{"u1"}})
	channel := createEvent(t, s, dto.EventRequest{Visibility: "channel", Channel: strPtr("town-square")})

	if _, appErr := s.GetEvent(ctx, dto.Caller{UserID: "u1"}, private.ID); appErr != nil {
		t.Fatalf("attendee read private: %v", appErr)
	}
	if _, appErr := s.GetEvent(ctx, stranger, private.ID); appErr == nil || appErr.Code != errors.ErrPermissionDenied {
		t.Fatalf("stranger read private err = %v", appErr)
	}
	if _, appErr := s.GetEvent(ctx, dto.Caller{UserID: "member"}, channel.ID); appErr != nil {
		t.Fatalf("channel member read: %v", appErr)
	}
	if _, appErr := s.GetEvent(ctx, stranger, channel.ID); appErr == nil || appErr.Code != errors.ErrPermissionDenied {
		t.Fatalf("non member read channel err = %v", appErr)
	}
}

func TestChannelEventWithoutPlatform(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ledger := attendeeService.NewLedger(attendeeRepo.NewMemoryRepository())
	s := NewEventService(repository.NewMemoryRepository(), ledger, platform.NewClient(platform.Config{}, nil), testConfig())
	channel := createEvent(t, s, dto.EventRequest{Visibility: "channel", Channel: strPtr("town-square"), Attendees: []string{"u1"}})

	if _, appErr := s.GetEvent(ctx, stranger, channel.ID); appErr == nil || appErr.Code != errors.ErrPermissionDenied {
		t.Fatalf("stranger read err = %v, want PermissionDenied", appErr)
	}
	if _, appErr := s.ExportICS(ctx, stranger, channel.ID); appErr == nil || appErr.Code != errors.ErrPermissionDenied {
		t.Fatalf("stranger export err = %v, want PermissionDenied", appErr)
	}
	if _, appErr := s.GetEvent(ctx, dto.Caller{UserID: "u1"}, channel.ID); appErr != nil {
		t.Fatalf("attendee read: %v", appErr)
	}
}

func TestHidePrivateEventsPolicy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := testConfig()
	cfg.HidePrivateEvents = true
	s := newTestService(cfg)
	private := createEvent(t, s, dto.EventRequest{})
	channel := createEvent(t, s, dto.EventRequest{Visibility: "channel", Channel: strPtr("town-square")})

	if _, appErr := s.GetEvent(ctx, stranger, private.ID); appErr == nil || appErr.Code != errors.ErrNotFound {
		t.Fatalf("hidden private read err = %v, want NotFound", appErr)
	}
	if appErr := s.RemoveEvent(ctx, stranger, private.ID); appErr == nil || appErr.Code != errors.ErrNotFound {
		t.Fatalf("hidden private remove err = %v, want NotFound", appErr)
	}
	if _, appErr := s.GetEvent(ctx, stranger, channel.ID); appErr == nil || appErr.Code != errors.ErrPermissionDenied {
		t.Fatalf("channel event read err = %v, want PermissionDenied", appErr)
	}
}

func TestInterestAndAccept(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestService(testConfig())
	created := createEvent(t, s, dto.EventRequest{Attendees: []string{"u1", "u2"}})
	u1 := dto.Caller{UserID: "u1"}

	first, _ := s.ToggleInterested(ctx, u1, created.ID)
	second, _ := s.ToggleInterested(ctx, u1, created.ID)
	if !first.Interested || second.Interested {
		t.Fatalf("toggle = %v then %v", first.Interested, second.Interested)
	}

	resp, appErr := s.SetAccepted(ctx, u1, created.ID, true)
	if appErr != nil || len(resp.Accepted) != 1 || resp.Accepted[0] != "u1" {
		t.Fatalf("SetAccepted = %+v, %v", resp, appErr)
	}
	detail, _ := s.GetEvent(ctx, owner, created.ID)
	if len(detail.Accepted) != 1 {
		t.Fatalf("accepted on read = %v", detail.Accepted)
	}

	if _, appErr := s.ToggleInterested(ctx, stranger, created.ID); appErr == nil {
		t.Fatalf("stranger toggled interest on a private event")
	}
}

func TestListEventsExpandsOccurrences(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestService(testConfig())
	createEvent(t, s, dto.EventRequest{Title: "Daily", Start: ts(1, 9, 0), End: ts(1, 9, 15), Recurrence: "FREQ=DAILY"})
	createEvent(t, s, dto.EventRequest{Title: "Once", Start: ts(3, 12, 0), End: ts(3, 13, 0)})
	createEvent(t, s, dto.EventRequest{Title: "Later", Start: ts(20, 12, 0), End: ts(20, 13, 0)})

	got, appErr := s.ListEvents(ctx, owner, dto.ListEventsQuery{Start: ts(2, 0, 0), End: ts(5, 0, 0)})
	if appErr != nil {
		t.Fatalf("ListEvents: %v", appErr)
	}
	if len(got) != 4 {
		t.Fatalf("got %d occurrences, want 4 (3 daily + 1 once)", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Start.Before(got[i-1].Start) {
			t.Fatalf("occurrences not ordered: %v", got)
		}
	}

	if got, _ := s.ListEvents(ctx, dto.Caller{UserID: "u9"}, dto.ListEventsQuery{Start: ts(2, 0, 0), End: ts(5, 0, 0)}); len(got) != 0 {
		t.Fatalf("unrelated user sees %d occurrences", len(got))
	}
}

func TestGetScheduleScenario(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestService(testConfig())
	createEvent(t, s, dto.EventRequest{Title: "A", Start: ts(6, 9, 0), End: ts(6, 10, 0), Attendees: []string{"U1"}})

	resp, appErr := s.GetSchedule(ctx, owner, dto.ScheduleQuery{
		Users: []string{"U1"}, SlotMinutes: 30, Start: ts(6, 8, 0), End: ts(6, 12, 0),
	})
	if appErr != nil {
		t.Fatalf("GetSchedule: %v", appErr)
	}

	var free []string
	for _, f := range resp.AvailableTimes {
		free = append(free, f.Format("15:04"))
	}
	if strings.Join(free, ",") != "08:00,08:30,10:00,10:30,11:00,11:30" {
		t.Fatalf("free = %v", free)
	}
	busy := resp.Users["U1"]
	if len(busy) != 1 || !busy[0].Start.Equal(ts(6, 9, 0)) || !busy[0].End.Equal(ts(6, 10, 0)) || busy[0].Duration != 60 {
		t.Fatalf("busy = %+v", busy)
	}
	if resp.BusyMinutes["U1"] != 60 {
		t.Fatalf("busy minutes = %d", resp.BusyMinutes["U1"])
	}
}

func TestGetScheduleLimits(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestService(testConfig())

	_, appErr := s.GetSchedule(ctx, owner, dto.ScheduleQuery{
		Users: []string{"a", "b", "c", "d", "e", "f"}, SlotMinutes: 30, Start: ts(6, 8, 0), End: ts(6, 12, 0),
	})
	if appErr == nil || appErr.Code != errors.ErrQueryTooLarge {
		t.Fatalf("too many users err = %v", appErr)
	}

	_, appErr = s.GetSchedule(ctx, owner, dto.ScheduleQuery{
		Users: []string{"a"}, SlotMinutes: 30, Start: ts(1, 0, 0), End: ts(1, 0, 0).AddDate(0, 2, 0),
	})
	if appErr == nil || appErr.Code != errors.ErrQueryTooLarge {
		t.Fatalf("long window err = %v", appErr)
	}

	_, appErr = s.GetSchedule(ctx, owner, dto.ScheduleQuery{Users: []string{"a"}, SlotMinutes: 0, Start: ts(6, 8, 0), End: ts(6, 12, 0)})
	if appErr == nil || appErr.Code != errors.ErrInvalidSlotSize {
		t.Fatalf("zero slot err = %v", appErr)
	}

	_, appErr = s.GetSchedule(ctx, owner, dto.ScheduleQuery{Users: []string{"a"}, SlotMinutes: 30, Start: ts(6, 12, 0), End: ts(6, 8, 0)})
	if appErr == nil || appErr.Code != errors.ErrInvalidWindow {
		t.Fatalf("inverted window err = %v", appErr)
	}
}

func TestUpcomingCarriesPreferences(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestService(testConfig())
	created := createEvent(t, s, dto.EventRequest{Start: ts(6, 9, 0), End: ts(6, 10, 0), Recurrence: "FREQ=DAILY;COUNT=3", Attendees: []string{"u1"}})
	_ = s.SetNotificationSetting(ctx, dto.Caller{UserID: "u1"}, created.ID, "1_hour_before")

	got, appErr := s.Upcoming(ctx, ts(6, 0, 0), ts(9, 0, 0))
	if appErr != nil {
		t.Fatalf("Upcoming: %v", appErr)
	}
	if len(got) != 3 {
		t.Fatalf("got %d occurrences, want 3", len(got))
	}
	if got[0].Preferences["u1"] != "1_hour_before" || len(got[0].Attendees) != 1 {
		t.Fatalf("occurrence = %+v", got[0])
	}
}

func TestExportICS(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestService(testConfig())
	created := createEvent(t, s, dto.EventRequest{Title: "Sprint Review!", Recurrence: "FREQ=WEEKLY;BYDAY=MO", Alert: "15_minutes_before"})

	file, appErr := s.ExportICS(ctx, owner, created.ID)
	if appErr != nil {
		t.Fatalf("ExportICS: %v", appErr)
	}
	if file.Name != "sprint-review.ics" {
		t.Fatalf("name = %q", file.Name)
	}
	body := string(file.Body)
	for _, want := range []string{"BEGIN:VCALENDAR", "SUMMARY:Sprint Review!", "RRULE:FREQ=WEEKLY;INTERVAL=1;BYDAY=MO", "TRIGGER:-PT15M"} {
		if !strings.Contains(body, want) {
			t.Fatalf("ics missing %q:\n%s", want, body)
		}
	}
}
