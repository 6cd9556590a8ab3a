package recurrence

import (
	"errors"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	t.Parallel()

	until := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		in   string
		want Rule
	}{
		{"empty", "", Rule{Freq: Once}},
		{"blank", "   ", Rule{Freq: Once}},
		{"prefixed weekly", "RRULE:FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,FR", Rule{Freq: Weekly, Interval: 2, ByDay: []time.Weekday{time.Monday, time.Friday}}},
		{"bare daily", "FREQ=DAILY;COUNT=5", Rule{Freq: Daily, Interval: 1, Count: 5}},
		{"monthly until", "RRULE:FREQ=MONTHLY;UNTIL=20240301T000000Z", Rule{Freq: Monthly, Interval: 1, Until: until}},
		{"yearly", "FREQ=YEARLY", Rule{Freq: Yearly, Interval: 1}},
		{"sunday", "FREQ=WEEKLY;BYDAY=SU", Rule{Freq: Weekly, Interval: 1, ByDay: []time.Weekday{time.Sunday}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tc.in)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tc.in, err)
			}
			if got.Freq != tc.want.Freq || got.Interval != tc.want.Interval || got.Count != tc.want.Count || !got.Until.Equal(tc.want.Until) {
				t.Fatalf("Parse(%q) = %+v, want %+v", tc.in, got, tc.want)
			}
			if len(got.ByDay) != len(tc.want.ByDay) {
				t.Fatalf("ByDay = %v, want %v", got.ByDay, tc.want.ByDay)
			}
			for i := range got.ByDay {
				if got.ByDay[i] != tc.want.ByDay[i] {
					t.Fatalf("ByDay = %v, want %v", got.ByDay, tc.want.ByDay)
				}
			}
		})
	}
}

func TestParseRejects(t *testing.T) {
	t.Parallel()

	for _, in := range []string{
		"FREQ=HOURLY",
		"FREQ=SOMETIMES",
		"INTERVAL=2",
		"FREQ=DAILY;COUNT=3;UNTIL=20240301T000000Z",
		"FREQ=DAILY;BYHOUR=9",
		"FREQ=MONTHLY;BYDAY=+1MO",
		"FREQ=DAILY;FREQ=WEEKLY",
		"FREQ=DAILY;COUNT=0",
		"FREQ=WEEKLY;INTERVAL=0",
		"FREQ=DAILY;COUNT=-2",
		"not a rule",
	} {
		if _, err := Parse(in); !errors.Is(err, ErrInvalidRule) {
			t.Fatalf("Parse(%q) err = %v, want ErrInvalidRule", in, err)
		}
	}
}

func TestRuleStringRoundTrip(t *testing.T) {
	t.Parallel()

	for _, in := range []string{
		"RRULE:FREQ=WEEKLY;INTERVAL=1;BYDAY=MO,WE,FR",
		"RRULE:FREQ=DAILY;INTERVAL=3;COUNT=10",
		"RRULE:FREQ=MONTHLY;INTERVAL=1;UNTIL=20241231T000000Z",
		"RRULE:FREQ=WEEKLY;INTERVAL=2;COUNT=4;BYDAY=TU,SU;WKST=SU",
	} {
		rule, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if got := rule.String(); got != in {
			t.Fatalf("String() = %q, want %q", got, in)
		}
	}
	if got := (Rule{Freq: Once}).String(); got != "" {
		t.Fatalf("once String() = %q", got)
	}
}

func TestParseLegacy(t *testing.T) {
	t.Parallel()

	rule, err := ParseLegacy("[4,0,2,2]")
	if err != nil {
		t.Fatalf("ParseLegacy: %v", err)
	}
	if got, want := rule.String(), "RRULE:FREQ=WEEKLY;INTERVAL=1;BYDAY=MO,WE,FR"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}

	for _, in := range []string{"[]", "null", ""} {
		rule, err := ParseLegacy(in)
		if err != nil || !rule.IsOnce() {
			t.Fatalf("ParseLegacy(%q) = %+v, %v; want once", in, rule, err)
		}
	}

	if _, err := ParseLegacy("[7]"); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("out of range weekday err = %v", err)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	got, err := Normalize("[6]")
	if err != nil || got != "RRULE:FREQ=WEEKLY;INTERVAL=1;BYDAY=SU" {
		t.Fatalf("Normalize legacy = %q, %v", got, err)
	}
	got, err = Normalize("FREQ=DAILY")
	if err != nil || got != "RRULE:FREQ=DAILY;INTERVAL=1" {
		t.Fatalf("Normalize bare = %q, %v", got, err)
	}
}

func TestParseWeekStart(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want time.Weekday
		set  bool
	}{
		{"FREQ=WEEKLY;BYDAY=TU", time.Monday, false},
		{"FREQ=WEEKLY;BYDAY=TU;WKST=MO", time.Monday, false},
		{"FREQ=WEEKLY;BYDAY=TU;WKST=SU", time.Sunday, true},
		{"FREQ=WEEKLY;BYDAY=TU;WKST=SA", time.Saturday, true},
	}
	for _, tc := range cases {
		rule, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.in, err)
		}
		if (rule.WeekStart != nil) != tc.set {
			t.Fatalf("Parse(%q) WeekStart = %v, set want %v", tc.in, rule.WeekStart, tc.set)
		}
		if tc.set && *rule.WeekStart != tc.want {
			t.Fatalf("Parse(%q) WeekStart = %s, want %s", tc.in, *rule.WeekStart, tc.want)
		}
	}
}
