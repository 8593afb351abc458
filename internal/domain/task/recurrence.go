package task

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PatternType is the unit of a recurring schedule.
type PatternType string

const (
	PatternHourly  PatternType = "HOURLY"
	PatternDaily   PatternType = "DAILY"
	PatternWeekly  PatternType = "WEEKLY"
	PatternMonthly PatternType = "MONTHLY"
)

// RecurringPattern describes how often a new task instance is produced.
type RecurringPattern struct {
	Type      PatternType
	Interval  int          // count of units, must be positive
	TimeOfDay string       // optional "HH:MM" applied to the computed due date
	EndDate   sql.NullTime // once passed, recurrence stops
}

// Validate checks the pattern for data-integrity problems. Engines log a
// warning and treat invalid patterns as "never recurs".
func (p RecurringPattern) Validate() error {
	switch p.Type {
	case PatternHourly, PatternDaily, PatternWeekly, PatternMonthly:
	default:
		return fmt.Errorf("unknown pattern type %q", p.Type)
	}
	if p.Interval <= 0 {
		return fmt.Errorf("pattern interval must be positive, got %d", p.Interval)
	}
	if p.TimeOfDay != "" {
		if _, _, err := parseTimeOfDay(p.TimeOfDay); err != nil {
			return err
		}
	}
	return nil
}

// NextDue computes the due date of the next instance of a recurring task.
// It is pure: the result depends only on the arguments.
//
// The second return value is false when no instance is due yet: fewer than
// Interval whole units have elapsed since lastDue, the pattern's end date
// has passed, or the pattern is malformed. Exactly Interval elapsed units
// count as due.
//
// Monthly recurrence uses calendar months via time.AddDate, which rolls
// over rather than clamping: Jan 31 + 1 month lands in early March. The
// elapsed-month count uses the same anniversary arithmetic so the two stay
// consistent.
func NextDue(p RecurringPattern, lastDue, now time.Time) (time.Time, bool) {
	if p.Interval <= 0 {
		return time.Time{}, false
	}
	if p.EndDate.Valid && now.After(p.EndDate.Time) {
		return time.Time{}, false
	}

	var elapsed int
	var next time.Time
	switch p.Type {
	case PatternHourly:
		elapsed = int(now.Sub(lastDue) / time.Hour)
		next = lastDue.Add(time.Duration(p.Interval) * time.Hour)
	case PatternDaily:
		elapsed = int(now.Sub(lastDue) / (24 * time.Hour))
		next = lastDue.Add(time.Duration(p.Interval) * 24 * time.Hour)
	case PatternWeekly:
		elapsed = int(now.Sub(lastDue) / (7 * 24 * time.Hour))
		next = lastDue.Add(time.Duration(p.Interval) * 7 * 24 * time.Hour)
	case PatternMonthly:
		elapsed = monthsBetween(lastDue, now)
		next = lastDue.AddDate(0, p.Interval, 0)
	default:
		return time.Time{}, false
	}
	if elapsed < p.Interval {
		return time.Time{}, false
	}

	if p.TimeOfDay != "" {
		hour, minute, err := parseTimeOfDay(p.TimeOfDay)
		if err == nil {
			next = time.Date(next.Year(), next.Month(), next.Day(), hour, minute, 0, 0, next.Location())
		}
	}
	return next, true
}

// monthsBetween counts whole calendar months from 'from' to 'to', using
// AddDate anniversaries so normalization (e.g. Jan 31 anniversaries landing
// in March) is accounted for.
func monthsBetween(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	for months > 0 && from.AddDate(0, months, 0).After(to) {
		months--
	}
	return months
}

func parseTimeOfDay(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time of day %q, expected HH:MM", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}
