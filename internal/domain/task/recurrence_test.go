package task

import (
	"database/sql"
	"testing"
	"time"
)

func TestNextDueIntervalUnits(t *testing.T) {
	base := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		pattern  RecurringPattern
		lastDue  time.Time
		now      time.Time
		wantOK   bool
		wantNext time.Time
	}{
		{
			name:    "hourly just under one interval",
			pattern: RecurringPattern{Type: PatternHourly, Interval: 1},
			lastDue: base.Add(-59 * time.Minute),
			now:     base,
			wantOK:  false,
		},
		{
			name:     "hourly exactly one interval",
			pattern:  RecurringPattern{Type: PatternHourly, Interval: 1},
			lastDue:  base.Add(-1 * time.Hour),
			now:      base,
			wantOK:   true,
			wantNext: base,
		},
		{
			name:     "daily 26h elapsed spawns one day after last due",
			pattern:  RecurringPattern{Type: PatternDaily, Interval: 1},
			lastDue:  base.Add(-26 * time.Hour),
			now:      base,
			wantOK:   true,
			wantNext: base.Add(-2 * time.Hour),
		},
		{
			name:    "daily interval 2 with only one day elapsed",
			pattern: RecurringPattern{Type: PatternDaily, Interval: 2},
			lastDue: base.Add(-47 * time.Hour),
			now:     base,
			wantOK:  false,
		},
		{
			name:     "daily interval 2 boundary",
			pattern:  RecurringPattern{Type: PatternDaily, Interval: 2},
			lastDue:  base.Add(-48 * time.Hour),
			now:      base,
			wantOK:   true,
			wantNext: base,
		},
		{
			name:    "weekly six days elapsed",
			pattern: RecurringPattern{Type: PatternWeekly, Interval: 1},
			lastDue: base.Add(-6 * 24 * time.Hour),
			now:     base,
			wantOK:  false,
		},
		{
			name:     "weekly boundary",
			pattern:  RecurringPattern{Type: PatternWeekly, Interval: 1},
			lastDue:  base.Add(-7 * 24 * time.Hour),
			now:      base,
			wantOK:   true,
			wantNext: base,
		},
		{
			name:    "monthly not yet reached",
			pattern: RecurringPattern{Type: PatternMonthly, Interval: 1},
			lastDue: time.Date(2025, time.February, 15, 9, 0, 0, 0, time.UTC),
			now:     time.Date(2025, time.March, 14, 9, 0, 0, 0, time.UTC),
			wantOK:  false,
		},
		{
			name:     "monthly plain month",
			pattern:  RecurringPattern{Type: PatternMonthly, Interval: 1},
			lastDue:  time.Date(2025, time.February, 15, 9, 0, 0, 0, time.UTC),
			now:      time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC),
			wantOK:   true,
			wantNext: time.Date(2025, time.March, 15, 9, 0, 0, 0, time.UTC),
		},
		{
			name:    "zero interval never recurs",
			pattern: RecurringPattern{Type: PatternDaily, Interval: 0},
			lastDue: base.Add(-72 * time.Hour),
			now:     base,
			wantOK:  false,
		},
		{
			name: "end date passed stops recurrence",
			pattern: RecurringPattern{
				Type: PatternDaily, Interval: 1,
				EndDate: sql.NullTime{Time: base.Add(-time.Hour), Valid: true},
			},
			lastDue: base.Add(-26 * time.Hour),
			now:     base,
			wantOK:  false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, ok := NextDue(tc.pattern, tc.lastDue, tc.now)
			if ok != tc.wantOK {
				t.Fatalf("NextDue ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && !next.Equal(tc.wantNext) {
				t.Fatalf("NextDue = %s, want %s", next, tc.wantNext)
			}
		})
	}
}

// Jan 31 + 1 calendar month normalizes into early March (2025 is not a leap
// year, so Feb 31 rolls over to Mar 3). The elapsed-month count must agree
// with that anniversary, not with a naive month-number subtraction.
func TestNextDueMonthlyRollover(t *testing.T) {
	lastDue := time.Date(2025, time.January, 31, 10, 0, 0, 0, time.UTC)
	pattern := RecurringPattern{Type: PatternMonthly, Interval: 1}

	// Before the normalized anniversary: nothing due.
	now := time.Date(2025, time.March, 2, 10, 0, 0, 0, time.UTC)
	if _, ok := NextDue(pattern, lastDue, now); ok {
		t.Fatal("expected no spawn before the Mar 3 anniversary")
	}

	now = time.Date(2025, time.March, 5, 10, 0, 0, 0, time.UTC)
	next, ok := NextDue(pattern, lastDue, now)
	if !ok {
		t.Fatal("expected a spawn after the anniversary")
	}
	want := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("next = %s, want %s", next, want)
	}
}

func TestNextDueTimeOfDayOverride(t *testing.T) {
	base := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	pattern := RecurringPattern{Type: PatternDaily, Interval: 1, TimeOfDay: "09:30"}

	next, ok := NextDue(pattern, base.Add(-26*time.Hour), base)
	if !ok {
		t.Fatal("expected a spawn")
	}
	if next.Hour() != 9 || next.Minute() != 30 {
		t.Fatalf("time of day not applied, got %s", next)
	}
	wantDay := base.Add(-2 * time.Hour)
	if next.Year() != wantDay.Year() || next.YearDay() != wantDay.YearDay() {
		t.Fatalf("date component changed, got %s", next)
	}
}

func TestPatternValidate(t *testing.T) {
	good := RecurringPattern{Type: PatternWeekly, Interval: 2, TimeOfDay: "08:00"}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid pattern rejected: %v", err)
	}

	bad := []RecurringPattern{
		{Type: "YEARLY", Interval: 1},
		{Type: PatternDaily, Interval: -1},
		{Type: PatternDaily, Interval: 1, TimeOfDay: "25:00"},
		{Type: PatternDaily, Interval: 1, TimeOfDay: "noon"},
	}
	for i, p := range bad {
		if err := p.Validate(); err == nil {
			t.Errorf("case %d: invalid pattern accepted", i)
		}
	}
}
