package models

import (
	"database/sql/driver"
	"fmt"
	"sort"
	"strings"
	"time"
)

const clockLayout = "15:04"

var weekdayKeys = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// TimeRange is a half-open [Start, End) range of wall-clock time, "HH:MM" in 24h.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (r TimeRange) minutes() (int, int, error) {
	start, err := time.Parse(clockLayout, r.Start)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid start time %q", r.Start)
	}
	end, err := time.Parse(clockLayout, r.End)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid end time %q", r.End)
	}
	return start.Hour()*60 + start.Minute(), end.Hour()*60 + end.Minute(), nil
}

// WeeklySchedule maps a lowercase weekday name to its ordered availability ranges.
type WeeklySchedule map[string][]TimeRange

// Validate checks day names, HH:MM format, start < end and that ranges are ordered without overlap.
func (s WeeklySchedule) Validate() error {
	for day, ranges := range s {
		if _, ok := weekdayKeys[strings.ToLower(day)]; !ok {
			return fmt.Errorf("unknown day %q", day)
		}
		prevEnd := -1
		for _, r := range ranges {
			start, end, err := r.minutes()
			if err != nil {
				return fmt.Errorf("%s: %w", day, err)
			}
			if start >= end {
				return fmt.Errorf("%s: range %s-%s must start before it ends", day, r.Start, r.End)
			}
			if start < prevEnd {
				return fmt.Errorf("%s: range %s-%s overlaps or is out of order", day, r.Start, r.End)
			}
			prevEnd = end
		}
	}
	return nil
}

// Ranges returns the ranges configured for a weekday.
func (s WeeklySchedule) Ranges(day time.Weekday) []TimeRange {
	for key, ranges := range s {
		if wd, ok := weekdayKeys[strings.ToLower(key)]; ok && wd == day {
			return ranges
		}
	}
	return nil
}

// SlotsOn lists the slot start times of the given calendar date (interpreted in date's location).
// A slot is emitted only when it fits entirely inside a range.
func (s WeeklySchedule) SlotsOn(date time.Time, slotDuration time.Duration) []time.Time {
	if slotDuration <= 0 {
		return nil
	}
	y, m, d := date.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	step := int(slotDuration / time.Minute)

	var slots []time.Time
	for _, r := range s.Ranges(date.Weekday()) {
		start, end, err := r.minutes()
		if err != nil {
			continue
		}
		for at := start; at+step <= end; at += step {
			slots = append(slots, midnight.Add(time.Duration(at)*time.Minute))
		}
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Before(slots[j]) })
	return slots
}

// Covers reports whether t falls within one of the ranges of its weekday.
func (s WeeklySchedule) Covers(t time.Time) bool {
	at := t.Hour()*60 + t.Minute()
	for _, r := range s.Ranges(t.Weekday()) {
		start, end, err := r.minutes()
		if err != nil {
			continue
		}
		if at >= start && at < end {
			return true
		}
	}
	return false
}

func (s WeeklySchedule) Value() (driver.Value, error) {
	if s == nil {
		return "{}", nil
	}
	return jsonValue(s)
}

func (s *WeeklySchedule) Scan(value any) error {
	return scanJSON(value, s)
}
