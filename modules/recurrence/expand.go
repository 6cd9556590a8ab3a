package recurrence

import (
	"fmt"
	"iter"
	"time"

	"calendar-service/core/constants"

	"github.com/teambition/rrule-go"
)

// Series is the part of an event the expander needs.
type Series struct {
	ID         string
	Start      time.Time
	End        time.Time
	Recurrence string
}

type Occurrence struct {
	EventID string
	Start   time.Time
	End     time.Time
}

// Intersects reports whether [start, end) overlaps [windowStart, windowEnd).
func Intersects(start, end, windowStart, windowEnd time.Time) bool {
	return start.Before(windowEnd) && end.After(windowStart)
}

type Expander struct {
	// MaxOccurrences bounds how many occurrences a single series may
	// yield for one window. Zero means no bound.
	MaxOccurrences int
}

func NewExpander(maxOccurrences int) *Expander {
	return &Expander{MaxOccurrences: maxOccurrences}
}

var defaultExpander = NewExpander(constants.DefaultMaxOccurrencesPerEvent)

// Expand uses the default occurrence bound.
func Expand(s Series, windowStart, windowEnd time.Time) (iter.Seq[Occurrence], error) {
	return defaultExpander.Expand(s, windowStart, windowEnd)
}

// Expand returns the occurrences of s that intersect the window, in start
// order. The sequence is lazy and can be ranged over more than once. The
// error is non-nil only when the recurrence string does not parse.
func (x *Expander) Expand(s Series, windowStart, windowEnd time.Time) (iter.Seq[Occurrence], error) {
	rule, err := Parse(s.Recurrence)
	if err != nil {
		return nil, err
	}
	return x.ExpandRule(s, rule, windowStart, windowEnd)
}

func (x *Expander) ExpandRule(s Series, rule Rule, windowStart, windowEnd time.Time) (iter.Seq[Occurrence], error) {
	if rule.IsOnce() {
		return func(yield func(Occurrence) bool) {
			if Intersects(s.Start, s.End, windowStart, windowEnd) {
				yield(Occurrence{EventID: s.ID, Start: s.Start, End: s.End})
			}
		}, nil
	}

	duration := s.End.Sub(s.Start)
	start := s.Start.UTC()
	r, err := rrule.NewRRule(rule.option(start))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}

	limit := x.MaxOccurrences
	return func(yield func(Occurrence) bool) {
		next := r.Iterator()
		var last time.Time
		yielded := 0
		for {
			t, ok := next()
			if !ok || !t.Before(windowEnd) {
				return
			}
			if !last.IsZero() && !t.After(last) {
				continue
			}
			last = t
			end := t.Add(duration)
			if !end.After(windowStart) {
				continue
			}
			if limit > 0 && yielded >= limit {
				return
			}
			yielded++
			if !yield(Occurrence{EventID: s.ID, Start: t, End: end}) {
				return
			}
		}
	}, nil
}

// Collect drains seq into a slice.
func Collect(seq iter.Seq[Occurrence]) []Occurrence {
	var out []Occurrence
	for o := range seq {
		out = append(out, o)
	}
	return out
}
