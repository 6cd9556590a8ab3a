package service

import (
	"context"
	"sync"
	"testing"

	"calendar-service/core/errors"
	"calendar-service/modules/attendee/entity"
	"calendar-service/modules/attendee/repository"
)

func newLedger() *Ledger {
	return NewLedger(repository.NewMemoryRepository())
}

func TestInviteIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := newLedger()

	if appErr := l.Invite(ctx, "e1", []string{"u1", "u2", "u1", ""}); appErr != nil {
		t.Fatalf("Invite: %v", appErr)
	}
	if _, appErr := l.SetAccepted(ctx, "e1", "u1", true); appErr != nil {
		t.Fatalf("SetAccepted: %v", appErr)
	}
	if _, appErr := l.ToggleInterested(ctx, "e1", "u2"); appErr != nil {
		t.Fatalf("ToggleInterested: %v", appErr)
	}

	if appErr := l.Invite(ctx, "e1", []string{"u1", "u2"}); appErr != nil {
		t.Fatalf("second Invite: %v", appErr)
	}

	rows, _ := l.Attendees(ctx, "e1")
	if len(rows) != 2 {
		t.Fatalf("attendees = %d, want 2", len(rows))
	}
	accepted, _ := l.Accepted(ctx, "e1")
	if len(accepted) != 1 || accepted[0] != "u1" {
		t.Fatalf("accepted = %v", accepted)
	}
	if v, _ := l.Interested(ctx, "e1", "u2"); !v {
		t.Fatalf("interest of u2 was reset by re-invite")
	}
}

func TestToggleInterestedTwiceRestores(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := newLedger()
	_ = l.Invite(ctx, "e1", []string{"u1"})

	before, _ := l.Interested(ctx, "e1", "u1")
	first, _ := l.ToggleInterested(ctx, "e1", "u1")
	second, _ := l.ToggleInterested(ctx, "e1", "u1")
	if first == before || second != before {
		t.Fatalf("before=%v first=%v second=%v", before, first, second)
	}
}

func TestSetAcceptedReturnsAcceptedUsers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := newLedger()
	_ = l.Invite(ctx, "e1", []string{"u1", "u2", "u3"})

	_, _ = l.SetAccepted(ctx, "e1", "u3", true)
	_, _ = l.SetAccepted(ctx, "e1", "u2", false)
	got, appErr := l.SetAccepted(ctx, "e1", "u1", true)
	if appErr != nil {
		t.Fatalf("SetAccepted: %v", appErr)
	}
	if len(got) != 2 || got[0] != "u1" || got[1] != "u3" {
		t.Fatalf("accepted = %v, want [u1 u3]", got)
	}
}

func TestNotificationDefaultsAndValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := newLedger()

	got, appErr := l.GetNotification(ctx, "e1", "u1")
	if appErr != nil || got != entity.NotificationNone {
		t.Fatalf("default = %q, %v", got, appErr)
	}

	if appErr := l.SetNotification(ctx, "e1", "u1", entity.NotificationFifteenMinutes); appErr != nil {
		t.Fatalf("SetNotification: %v", appErr)
	}
	if got, _ := l.GetNotification(ctx, "e1", "u1"); got != entity.NotificationFifteenMinutes {
		t.Fatalf("got %q", got)
	}

	appErr = l.SetNotification(ctx, "e1", "u1", "3_minutes_before")
	if appErr == nil || appErr.Code != errors.ErrInvalidInput {
		t.Fatalf("invalid setting err = %v", appErr)
	}
	if got, _ := l.GetNotification(ctx, "e1", "u1"); got != entity.NotificationFifteenMinutes {
		t.Fatalf("invalid write changed setting to %q", got)
	}
}

func TestForgetCascades(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := newLedger()
	_ = l.Invite(ctx, "e1", []string{"u1", "u2"})
	_ = l.Invite(ctx, "e2", []string{"u1"})
	_ = l.SetNotification(ctx, "e1", "u1", entity.NotificationOneHour)
	_, _ = l.SetAccepted(ctx, "e1", "u2", true)

	if appErr := l.Forget(ctx, "e1"); appErr != nil {
		t.Fatalf("Forget: %v", appErr)
	}

	if rows, _ := l.Attendees(ctx, "e1"); len(rows) != 0 {
		t.Fatalf("attendees left: %+v", rows)
	}
	if got, _ := l.GetNotification(ctx, "e1", "u1"); got != entity.NotificationNone {
		t.Fatalf("stale notification setting %q", got)
	}
	if rows, _ := l.Attendees(ctx, "e2"); len(rows) != 1 {
		t.Fatalf("other event touched: %+v", rows)
	}
}

func TestConcurrentTogglesAreSerialized(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := newLedger()
	_ = l.Invite(ctx, "e1", []string{"u1"})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.ToggleInterested(ctx, "e1", "u1")
		}()
	}
	wg.Wait()

	if v, _ := l.Interested(ctx, "e1", "u1"); v {
		t.Fatalf("even number of toggles should leave interest off")
	}
}

func TestPreferencesForEventsSkipsNone(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := newLedger()
	_ = l.SetNotification(ctx, "e1", "u1", entity.NotificationFiveMinutes)
	_ = l.SetNotification(ctx, "e1", "u2", entity.NotificationNone)
	_ = l.SetNotification(ctx, "e2", "u1", entity.NotificationOneDay)

	got, appErr := l.PreferencesForEvents(ctx, []string{"e1"})
	if appErr != nil {
		t.Fatalf("PreferencesForEvents: %v", appErr)
	}
	if len(got["e1"]) != 1 || got["e1"][0].UserID != "u1" || len(got["e2"]) != 0 {
		t.Fatalf("got %+v", got)
	}
}
