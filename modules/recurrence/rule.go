package recurrence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// ErrInvalidRule wraps every rule parsing failure.
var ErrInvalidRule = errors.New("invalid recurrence rule")

type Frequency string

const (
	Once    Frequency = "once"
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

const untilLayout = "20060102T150405Z"

// Rule is the parsed form of an event's recurrence string. A zero Until
// and zero Count mean the series never ends. A nil WeekStart means Monday.
type Rule struct {
	Freq      Frequency
	Interval  int
	Count     int
	Until     time.Time
	ByDay     []time.Weekday
	WeekStart *time.Weekday
}

func (r Rule) IsOnce() bool {
	return r.Freq == "" || r.Freq == Once
}

func (r Rule) Bounded() bool {
	return r.IsOnce() || r.Count > 0 || !r.Until.IsZero()
}

var supportedParts = map[string]bool{
	"FREQ":     true,
	"INTERVAL": true,
	"COUNT":    true,
	"UNTIL":    true,
	"BYDAY":    true,
	"WKST":     true,
}

// Parse accepts "", "RRULE:FREQ=..." or a bare "FREQ=..." string.
func Parse(s string) (Rule, error) {
	body := strings.TrimSpace(s)
	if body == "" {
		return Rule{Freq: Once}, nil
	}
	if len(body) >= 6 && strings.EqualFold(body[:6], "RRULE:") {
		body = body[6:]
	}

	seen := make(map[string]bool)
	for _, part := range strings.Split(body, ";") {
		if part == "" {
			continue
		}
		key, _, ok := strings.Cut(part, "=")
		if !ok {
			return Rule{}, fmt.Errorf("%w: malformed part %q", ErrInvalidRule, part)
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		if !supportedParts[key] {
			return Rule{}, fmt.Errorf("%w: unsupported part %s", ErrInvalidRule, key)
		}
		if seen[key] {
			return Rule{}, fmt.Errorf("%w: duplicate part %s", ErrInvalidRule, key)
		}
		seen[key] = true
	}
	if !seen["FREQ"] {
		return Rule{}, fmt.Errorf("%w: FREQ is required", ErrInvalidRule)
	}
	if seen["COUNT"] && seen["UNTIL"] {
		return Rule{}, fmt.Errorf("%w: COUNT and UNTIL are mutually exclusive", ErrInvalidRule)
	}

	opt, err := rrule.StrToROption(body)
	if err != nil {
		return Rule{}, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}

	rule := Rule{Interval: opt.Interval, Count: opt.Count}
	switch opt.Freq {
	case rrule.DAILY:
		rule.Freq = Daily
	case rrule.WEEKLY:
		rule.Freq = Weekly
	case rrule.MONTHLY:
		rule.Freq = Monthly
	case rrule.YEARLY:
		rule.Freq = Yearly
	default:
		return Rule{}, fmt.Errorf("%w: unsupported frequency %s", ErrInvalidRule, opt.Freq)
	}
	if rule.Interval < 0 || rule.Count < 0 || (seen["INTERVAL"] && rule.Interval == 0) || (seen["COUNT"] && rule.Count == 0) {
		return Rule{}, fmt.Errorf("%w: INTERVAL and COUNT must be positive", ErrInvalidRule)
	}
	if rule.Interval == 0 {
		rule.Interval = 1
	}
	if !opt.Until.IsZero() {
		rule.Until = opt.Until.UTC()
	}
	for _, wd := range opt.Byweekday {
		if wd.N() != 0 {
			return Rule{}, fmt.Errorf("%w: ordinal BYDAY is not supported", ErrInvalidRule)
		}
		rule.ByDay = append(rule.ByDay, toWeekday(wd))
	}
	if seen["WKST"] {
		if wd := toWeekday(opt.Wkst); wd != time.Monday {
			rule.WeekStart = &wd
		}
	}
	return rule, nil
}

// String renders the canonical wire form; a once rule renders as "".
func (r Rule) String() string {
	if r.IsOnce() {
		return ""
	}
	var b strings.Builder
	b.WriteString("RRULE:FREQ=")
	b.WriteString(strings.ToUpper(string(r.Freq)))
	b.WriteString(";INTERVAL=")
	b.WriteString(strconv.Itoa(max(r.Interval, 1)))
	if r.Count > 0 {
		b.WriteString(";COUNT=")
		b.WriteString(strconv.Itoa(r.Count))
	}
	if !r.Until.IsZero() {
		b.WriteString(";UNTIL=")
		b.WriteString(r.Until.UTC().Format(untilLayout))
	}
	if len(r.ByDay) > 0 {
		days := make([]string, len(r.ByDay))
		for i, d := range r.ByDay {
			wd := fromWeekday(d)
			days[i] = wd.String()
		}
		b.WriteString(";BYDAY=")
		b.WriteString(strings.Join(days, ","))
	}
	if r.WeekStart != nil && *r.WeekStart != time.Monday {
		b.WriteString(";WKST=")
		b.WriteString(fromWeekday(*r.WeekStart).String())
	}
	return b.String()
}

// option builds the rrule-go option for a series starting at dtstart.
func (r Rule) option(dtstart time.Time) rrule.ROption {
	opt := rrule.ROption{
		Dtstart:  dtstart,
		Interval: max(r.Interval, 1),
		Count:    r.Count,
		Until:    r.Until,
	}
	switch r.Freq {
	case Daily:
		opt.Freq = rrule.DAILY
	case Weekly:
		opt.Freq = rrule.WEEKLY
	case Monthly:
		opt.Freq = rrule.MONTHLY
	default:
		opt.Freq = rrule.YEARLY
	}
	for _, d := range r.ByDay {
		opt.Byweekday = append(opt.Byweekday, fromWeekday(d))
	}
	if r.WeekStart != nil {
		opt.Wkst = fromWeekday(*r.WeekStart)
	}
	return opt
}

// rrule numbers weekdays from Monday, time from Sunday.
func toWeekday(wd rrule.Weekday) time.Weekday {
	return time.Weekday((wd.Day() + 1) % 7)
}

func fromWeekday(d time.Weekday) rrule.Weekday {
	return []rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}[d%7]
}
