package reminder

import (
	"strings"
	"testing"
	"time"

	"calendar-service/modules/event/dto"
)

func at(day, hour, min int) time.Time {
	return time.Date(2024, time.May, day, hour, min, 0, 0, time.UTC)
}

func occurrence() dto.UpcomingOccurrence {
	return dto.UpcomingOccurrence{
		EventID:     "ev1",
		Title:       "Retro",
		Description: "bring notes",
		Owner:       "owner",
		Alert:       "15_minutes_before",
		Start:       at(6, 10, 0),
		End:         at(6, 11, 0),
		Attendees:   []string{"u1", "u2"},
		Preferences: map[string]string{"u1": "1_hour_before", "u2": "15_minutes_before"},
	}
}

func kinds(rs []Reminder) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = string(r.Kind) + "/" + r.UserID
	}
	return strings.Join(parts, ",")
}

func TestPlanAtEachTick(t *testing.T) {
	t.Parallel()

	occs := []dto.UpcomingOccurrence{occurrence()}
	cases := []struct {
		tick time.Time
		want string
	}{
		{at(6, 9, 0), "personal/u1"},
		{at(6, 9, 45), "alert/,personal/u2"},
		{at(6, 10, 0), "start/"},
		{at(6, 9, 30), ""},
	}
	for _, tc := range cases {
		if got := kinds(Plan(occs, tc.tick)); got != tc.want {
			t.Fatalf("Plan at %s = %q, want %q", tc.tick.Format("15:04"), got, tc.want)
		}
	}
}

func TestPlanTruncatesTick(t *testing.T) {
	t.Parallel()

	got := Plan([]dto.UpcomingOccurrence{occurrence()}, at(6, 10, 0).Add(42*time.Second))
	if len(got) != 1 || got[0].Kind != KindStart || !got[0].FireAt.Equal(at(6, 10, 0)) {
		t.Fatalf("got %+v", got)
	}
}

func TestPlanSkipsInvalidSettings(t *testing.T) {
	t.Parallel()

	occ := occurrence()
	occ.Alert = "sometime"
	occ.Preferences = map[string]string{"u1": "", "u2": "bogus"}
	if got := Plan([]dto.UpcomingOccurrence{occ}, at(6, 9, 45)); len(got) != 0 {
		t.Fatalf("got %+v", got)
	}
}

func TestTaskIDIsStable(t *testing.T) {
	t.Parallel()

	a := Plan([]dto.UpcomingOccurrence{occurrence()}, at(6, 10, 0))
	b := Plan([]dto.UpcomingOccurrence{occurrence()}, at(6, 10, 0).Add(30*time.Second))
	if a[0].TaskID() != b[0].TaskID() {
		t.Fatalf("ids differ: %s vs %s", a[0].TaskID(), b[0].TaskID())
	}
	if want := "start:ev1:*:"; !strings.HasPrefix(a[0].TaskID(), want) {
		t.Fatalf("id = %s", a[0].TaskID())
	}
}

func TestRecipientsAndMessage(t *testing.T) {
	t.Parallel()

	r := Reminder{Kind: KindAlert, Title: "Retro", Owner: "owner", Attendees: []string{"u1", "owner"}, Setting: "15_minutes_before", Description: "notes"}
	if got := strings.Join(r.Recipients(), ","); got != "owner,u1" {
		t.Fatalf("recipients = %s", got)
	}
	msg := r.Message()
	for _, want := range []string{"**15 minutes** *Retro*", "**members:** @u1, @owner", "**description:**\nnotes"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message %q missing %q", msg, want)
		}
	}

	personal := Reminder{Kind: KindPersonal, UserID: "u2", Owner: "owner", Attendees: []string{"u1"}}
	if got := personal.Recipients(); len(got) != 1 || got[0] != "u2" {
		t.Fatalf("personal recipients = %v", got)
	}
}
