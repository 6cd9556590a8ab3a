package recurrence

import (
	"errors"
	"testing"
	"time"
)

func at(day, hour, min int) time.Time {
	return time.Date(2024, time.January, day, hour, min, 0, 0, time.UTC)
}

func TestExpandSingle(t *testing.T) {
	t.Parallel()

	s := Series{ID: "e1", Start: at(10, 9, 0), End: at(10, 10, 0)}
	cases := []struct {
		name   string
		ws, we time.Time
		want   int
	}{
		{"inside", at(10, 0, 0), at(11, 0, 0), 1},
		{"touching end", at(10, 10, 0), at(10, 12, 0), 0},
		{"touching start", at(10, 8, 0), at(10, 9, 0), 0},
		{"partial", at(10, 9, 30), at(10, 12, 0), 1},
		{"before", at(1, 0, 0), at(2, 0, 0), 0},
	}
	for _, tc := range cases {
		seq, err := Expand(s, tc.ws, tc.we)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		got := Collect(seq)
		if len(got) != tc.want {
			t.Fatalf("%s: got %d occurrences, want %d", tc.name, len(got), tc.want)
		}
		if tc.want == 1 && (!got[0].Start.Equal(s.Start) || !got[0].End.Equal(s.End)) {
			t.Fatalf("%s: occurrence %+v does not match event", tc.name, got[0])
		}
	}
}

func TestExpandDailyCount(t *testing.T) {
	t.Parallel()

	s := Series{ID: "e1", Start: at(1, 9, 0), End: at(1, 9, 30), Recurrence: "RRULE:FREQ=DAILY;COUNT=5"}
	seq, err := Expand(s, at(1, 0, 0), at(31, 0, 0))
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	got := Collect(seq)
	if len(got) != 5 {
		t.Fatalf("got %d occurrences, want 5", len(got))
	}
	for i, o := range got {
		if !o.Start.Equal(at(1+i, 9, 0)) || o.End.Sub(o.Start) != 30*time.Minute {
			t.Fatalf("occurrence %d = %+v", i, o)
		}
	}
}

func TestExpandUnboundedStopsAtWindow(t *testing.T) {
	t.Parallel()

	s := Series{ID: "e1", Start: at(1, 9, 0), End: at(1, 10, 0), Recurrence: "FREQ=DAILY"}
	seq, err := Expand(s, at(5, 0, 0), at(8, 0, 0))
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	got := Collect(seq)
	if len(got) != 3 {
		t.Fatalf("got %d occurrences, want 3", len(got))
	}
	for _, o := range got {
		if !Intersects(o.Start, o.End, at(5, 0, 0), at(8, 0, 0)) {
			t.Fatalf("occurrence %+v outside window", o)
		}
	}

	// Restartable.
	if again := Collect(seq); len(again) != 3 {
		t.Fatalf("second pass got %d occurrences", len(again))
	}
}

func TestExpandWeeklyByDay(t *testing.T) {
	t.Parallel()

	// 2024-01-01 is a Monday.
	s := Series{ID: "e1", Start: at(1, 14, 0), End: at(1, 15, 0), Recurrence: "RRULE:FREQ=WEEKLY;BYDAY=MO,WE"}
	seq, err := Expand(s, at(1, 0, 0), at(15, 0, 0))
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	got := Collect(seq)
	want := []time.Time{at(1, 14, 0), at(3, 14, 0), at(8, 14, 0), at(10, 14, 0)}
	if len(got) != len(want) {
		t.Fatalf("got %d occurrences, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Start.Equal(want[i]) {
			t.Fatalf("occurrence %d start = %s, want %s", i, got[i].Start, want[i])
		}
	}
}

func TestExpandWeekStart(t *testing.T) {
	t.Parallel()

	aug := func(day int) time.Time { return time.Date(1997, time.August, day, 9, 0, 0, 0, time.UTC) }
	cases := []struct {
		name  string
		rrule string
		want  []int
	}{
		{"sunday week start", "RRULE:FREQ=WEEKLY;INTERVAL=2;COUNT=4;BYDAY=TU,SU;WKST=SU", []int{5, 17, 19, 31}},
		{"monday week start", "RRULE:FREQ=WEEKLY;INTERVAL=2;COUNT=4;BYDAY=TU,SU;WKST=MO", []int{5, 10, 19, 24}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rule, err := Parse(tc.rrule)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			// The stored form must expand the same way as the input.
			for _, rec := range []string{tc.rrule, rule.String()} {
				s := Series{ID: "e1", Start: aug(5), End: aug(5).Add(time.Hour), Recurrence: rec}
				seq, err := Expand(s, aug(1), aug(1).AddDate(0, 1, 0))
				if err != nil {
					t.Fatalf("Expand(%q): %v", rec, err)
				}
				got := Collect(seq)
				if len(got) != len(tc.want) {
					t.Fatalf("Expand(%q) got %d occurrences, want %d", rec, len(got), len(tc.want))
				}
				for i, day := range tc.want {
					if !got[i].Start.Equal(aug(day)) {
						t.Fatalf("Expand(%q) occurrence %d = %s, want %s", rec, i, got[i].Start, aug(day))
					}
				}
			}
		})
	}
}

func TestExpandUntilBound(t *testing.T) {
	t.Parallel()

	s := Series{ID: "e1", Start: at(1, 9, 0), End: at(1, 10, 0), Recurrence: "FREQ=DAILY;UNTIL=20240103T090000Z"}
	seq, err := Expand(s, at(1, 0, 0), at(31, 0, 0))
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if got := Collect(seq); len(got) != 3 {
		t.Fatalf("got %d occurrences, want 3", len(got))
	}
}

func TestExpandOccurrenceSpanningWindowStart(t *testing.T) {
	t.Parallel()

	// Overnight event starting before the window still counts.
	s := Series{ID: "e1", Start: at(1, 22, 0), End: at(2, 2, 0), Recurrence: "FREQ=DAILY"}
	seq, err := Expand(s, at(3, 0, 0), at(3, 12, 0))
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	got := Collect(seq)
	if len(got) != 1 || !got[0].Start.Equal(at(2, 22, 0)) {
		t.Fatalf("got %+v", got)
	}
}

func TestExpandMaxOccurrences(t *testing.T) {
	t.Parallel()

	x := NewExpander(2)
	s := Series{ID: "e1", Start: at(1, 9, 0), End: at(1, 10, 0), Recurrence: "FREQ=DAILY"}
	seq, err := x.Expand(s, at(1, 0, 0), at(31, 0, 0))
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if got := Collect(seq); len(got) != 2 {
		t.Fatalf("got %d occurrences, want 2", len(got))
	}
}

func TestExpandInvalidRule(t *testing.T) {
	t.Parallel()

	s := Series{ID: "e1", Start: at(1, 9, 0), End: at(1, 10, 0), Recurrence: "FREQ=FORTNIGHTLY"}
	if _, err := Expand(s, at(1, 0, 0), at(2, 0, 0)); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("err = %v, want ErrInvalidRule", err)
	}
}
