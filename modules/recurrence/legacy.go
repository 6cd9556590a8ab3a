package recurrence

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ParseLegacy converts the old weekday-array recurrence format, where 0 is
// Monday, into a weekly rule. An empty array or null is a once rule.
func ParseLegacy(raw string) (Rule, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return Rule{Freq: Once}, nil
	}

	var days []int
	if err := json.Unmarshal([]byte(raw), &days); err != nil {
		return Rule{}, fmt.Errorf("%w: legacy value %q: %v", ErrInvalidRule, raw, err)
	}
	if len(days) == 0 {
		return Rule{Freq: Once}, nil
	}

	seen := make(map[int]bool, len(days))
	ordered := make([]int, 0, len(days))
	for _, d := range days {
		if d < 0 || d > 6 {
			return Rule{}, fmt.Errorf("%w: legacy weekday %d out of range", ErrInvalidRule, d)
		}
		if !seen[d] {
			seen[d] = true
			ordered = append(ordered, d)
		}
	}
	sort.Ints(ordered)

	rule := Rule{Freq: Weekly, Interval: 1}
	for _, d := range ordered {
		rule.ByDay = append(rule.ByDay, time.Weekday((d+1)%7))
	}
	return rule, nil
}

// IsLegacy reports whether s looks like the old JSON array format.
func IsLegacy(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "[") || s == "null"
}

// Normalize returns the canonical form of s, converting the legacy
// format when needed.
func Normalize(s string) (string, error) {
	var (
		rule Rule
		err  error
	)
	if IsLegacy(s) {
		rule, err = ParseLegacy(s)
	} else {
		rule, err = Parse(s)
	}
	if err != nil {
		return "", err
	}
	return rule.String(), nil
}
