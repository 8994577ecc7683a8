// Package schedule parses five-field cron expressions and computes fire
// times for the daemon's recurring sweeps.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CronSpec is a parsed "minute hour day-of-month month day-of-week"
// expression. Fields are bitmasks; bit n set means value n is allowed.
type CronSpec struct {
	minute uint64
	hour   uint32
	dom    uint32
	month  uint16
	dow    uint8
}

func Parse(expr string) (CronSpec, error) {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return CronSpec{}, fmt.Errorf("expected 5 fields, got %d", len(fields))
	}

	minute, err := parseField(fields[0], 0, 59)
	if err != nil {
		return CronSpec{}, fmt.Errorf("minute: %w", err)
	}
	hour, err := parseField(fields[1], 0, 23)
	if err != nil {
		return CronSpec{}, fmt.Errorf("hour: %w", err)
	}
	dom, err := parseField(fields[2], 1, 31)
	if err != nil {
		return CronSpec{}, fmt.Errorf("day-of-month: %w", err)
	}
	month, err := parseField(fields[3], 1, 12)
	if err != nil {
		return CronSpec{}, fmt.Errorf("month: %w", err)
	}
	dow, err := parseField(fields[4], 0, 6)
	if err != nil {
		return CronSpec{}, fmt.Errorf("day-of-week: %w", err)
	}

	return CronSpec{
		minute: minute,
		hour:   uint32(hour),
		dom:    uint32(dom),
		month:  uint16(month),
		dow:    uint8(dow),
	}, nil
}

// Matches reports whether the spec fires at t, truncated to the minute.
func (s CronSpec) Matches(t time.Time) bool {
	return s.minute&(1<<uint(t.Minute())) != 0 &&
		s.hour&(1<<uint(t.Hour())) != 0 &&
		s.dom&(1<<uint(t.Day())) != 0 &&
		s.month&(1<<uint(int(t.Month()))) != 0 &&
		s.dow&(1<<uint(int(t.Weekday()))) != 0
}

// Next returns the first fire time strictly after t. The scan is bounded to
// two years; every valid five-field expression fires within that window.
func (s CronSpec) Next(t time.Time) (time.Time, bool) {
	cur := t.Truncate(time.Minute).Add(time.Minute)
	limit := t.AddDate(2, 0, 0)
	for cur.Before(limit) {
		if s.Matches(cur) {
			return cur, true
		}
		cur = cur.Add(time.Minute)
	}
	return time.Time{}, false
}

func parseField(token string, min, max int) (uint64, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, fmt.Errorf("empty field")
	}
	if token == "*" {
		return rangeMask(min, max, 1), nil
	}

	var mask uint64
	for _, part := range strings.Split(token, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return 0, fmt.Errorf("empty list element")
		}

		if strings.HasPrefix(part, "*/") {
			step, err := strconv.Atoi(strings.TrimPrefix(part, "*/"))
			if err != nil || step <= 0 {
				return 0, fmt.Errorf("invalid step %q", part)
			}
			mask |= rangeMask(min, max, step)
			continue
		}

		if strings.Contains(part, "-") {
			ends := strings.SplitN(part, "-", 2)
			start, errA := strconv.Atoi(strings.TrimSpace(ends[0]))
			end, errB := strconv.Atoi(strings.TrimSpace(ends[1]))
			if errA != nil || errB != nil {
				return 0, fmt.Errorf("invalid range %q", part)
			}
			if start > end || start < min || end > max {
				return 0, fmt.Errorf("range out of bounds %q", part)
			}
			mask |= rangeMask(start, end, 1)
			continue
		}

		v, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("invalid value %q", part)
		}
		if v < min || v > max {
			return 0, fmt.Errorf("value out of bounds %d", v)
		}
		mask |= 1 << uint(v)
	}

	if mask == 0 {
		return 0, fmt.Errorf("no values")
	}
	return mask, nil
}

func rangeMask(from, to, step int) uint64 {
	var mask uint64
	for v := from; v <= to; v += step {
		mask |= 1 << uint(v)
	}
	return mask
}
