package availability

import (
	"fmt"
	"sort"
	"time"

	"calendar-service/core/errors"
	"calendar-service/modules/recurrence"
)

type Interval struct {
	Start time.Time
	End   time.Time
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Timeline is one user's merged busy intervals over a window.
type Timeline struct {
	Intervals []Interval
	Total     time.Duration
}

type Request struct {
	Users       []string
	Events      map[string][]recurrence.Series
	WindowStart time.Time
	WindowEnd   time.Time
	SlotSize    time.Duration
}

type Result struct {
	Busy      map[string]Timeline
	FreeSlots []time.Time
	Warnings  []string
}

// Engine computes free/busy timelines and the slots free for everyone.
type Engine struct {
	expander *recurrence.Expander
}

func NewEngine(expander *recurrence.Expander) *Engine {
	if expander == nil {
		expander = recurrence.NewExpander(0)
	}
	return &Engine{expander: expander}
}

func (e *Engine) Schedule(req Request) (*Result, *errors.AppError) {
	if req.SlotSize <= 0 {
		return nil, errors.NewAppError(errors.ErrInvalidSlotSize, "slot size must be positive", nil)
	}
	if !req.WindowEnd.After(req.WindowStart) {
		return nil, errors.NewAppError(errors.ErrInvalidWindow, "window end must be after window start", nil)
	}

	result := &Result{Busy: make(map[string]Timeline)}
	var all []Interval

	seen := make(map[string]bool, len(req.Users))
	for _, user := range req.Users {
		if seen[user] {
			continue
		}
		seen[user] = true

		busy, warnings := e.Busy(req.Events[user], req.WindowStart, req.WindowEnd)
		for _, w := range warnings {
			result.Warnings = append(result.Warnings, fmt.Sprintf("user %s: %s", user, w))
		}
		timeline := Timeline{Intervals: busy}
		for _, iv := range busy {
			timeline.Total += iv.Duration()
		}
		result.Busy[user] = timeline
		all = append(all, busy...)
	}

	union := mergeOverlapping(all)
	result.FreeSlots = freeSlots(req.WindowStart, req.WindowEnd, req.SlotSize, union)
	return result, nil
}

// Busy expands series over the window, clips each occurrence to it and
// merges the result. A series whose rule does not parse is treated as a
// single event and reported in the warnings.
func (e *Engine) Busy(series []recurrence.Series, windowStart, windowEnd time.Time) ([]Interval, []string) {
	var (
		intervals []Interval
		warnings  []string
	)
	for _, s := range series {
		seq, err := e.expander.Expand(s, windowStart, windowEnd)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("event %s: %v; treated as non-recurring", s.ID, err))
			seq, _ = e.expander.ExpandRule(s, recurrence.Rule{Freq: recurrence.Once}, windowStart, windowEnd)
		}
		for occ := range seq {
			if iv, ok := clip(occ.Start, occ.End, windowStart, windowEnd); ok {
				intervals = append(intervals, iv)
			}
		}
	}
	return mergeOverlapping(intervals), warnings
}

func clip(start, end, windowStart, windowEnd time.Time) (Interval, bool) {
	if start.Before(windowStart) {
		start = windowStart
	}
	if end.After(windowEnd) {
		end = windowEnd
	}
	if !end.After(start) {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

// mergeOverlapping sorts by start and coalesces overlapping or adjacent
// intervals. The input slice is not modified.
func mergeOverlapping(slots []Interval) []Interval {
	if len(slots) == 0 {
		return nil
	}

	sorted := make([]Interval, len(slots))
	copy(sorted, slots)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	merged := []Interval{sorted[0]}
	for _, current := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !current.Start.After(last.End) {
			if current.End.After(last.End) {
				last.End = current.End
			}
			continue
		}
		merged = append(merged, current)
	}
	return merged
}

// freeSlots walks the window in slot steps and keeps every slot that
// fits the window and overlaps no busy interval. busy must be merged.
func freeSlots(windowStart, windowEnd time.Time, size time.Duration, busy []Interval) []time.Time {
	slots := []time.Time{}
	b := 0
	for slot := windowStart; !slot.Add(size).After(windowEnd); slot = slot.Add(size) {
		slotEnd := slot.Add(size)
		for b < len(busy) && !busy[b].End.After(slot) {
			b++
		}
		if b < len(busy) && busy[b].Start.Before(slotEnd) {
			continue
		}
		slots = append(slots, slot)
	}
	return slots
}
