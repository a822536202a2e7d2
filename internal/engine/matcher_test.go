package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TestEvaluate verifies the three matching rules in isolation and combined.
func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		rec    PersonRecord
		today  time.Time
		expect []Event
	}{
		{
			name:   "Same day without year",
			rec:    PersonRecord{Name: "Ana", Date: "15/6"},
			today:  day(2025, time.June, 15),
			expect: []Event{{Kind: EventBirthday}},
		},
		{
			name:   "Same day in any year",
			rec:    PersonRecord{Name: "Ana", Date: "15/6"},
			today:  day(1999, time.June, 15),
			expect: []Event{{Kind: EventBirthday}},
		},
		{
			name:   "Other day",
			rec:    PersonRecord{Name: "Ana", Date: "15/6"},
			today:  day(2025, time.June, 14),
			expect: nil,
		},
		{
			name:   "Advance warning",
			rec:    PersonRecord{Name: "Ben", Date: "20/6", NotificationBefore: 5},
			today:  day(2025, time.June, 15),
			expect: []Event{{Kind: EventAdvance, Date: "20/6"}},
		},
		{
			name:   "Advance payload keeps the year",
			rec:    PersonRecord{Name: "Ben", Date: "20/6/1990", NotificationBefore: 5},
			today:  day(2025, time.June, 15),
			expect: []Event{{Kind: EventAdvance, Date: "20/6/1990"}},
		},
		{
			name:   "Advance rolls over month boundary",
			rec:    PersonRecord{Name: "Cleo", Date: "2/2", NotificationBefore: 3},
			today:  day(2025, time.January, 30),
			expect: []Event{{Kind: EventAdvance, Date: "2/2"}},
		},
		{
			name:   "Advance rolls over year boundary",
			rec:    PersonRecord{Name: "Dan", Date: "3/1", NotificationBefore: 7},
			today:  day(2025, time.December, 27),
			expect: []Event{{Kind: EventAdvance, Date: "3/1"}},
		},
		{
			name:   "Zero lead time disables advance",
			rec:    PersonRecord{Name: "Eve", Date: "20/6", NotificationBefore: 0},
			today:  day(2025, time.June, 20),
			expect: []Event{{Kind: EventBirthday}},
		},
		{
			name:   "Missing date yields nothing",
			rec:    PersonRecord{Name: "Fay"},
			today:  day(2025, time.June, 20),
			expect: nil,
		},
		{
			name:   "Padded components",
			rec:    PersonRecord{Name: "Gus", Date: "05/06"},
			today:  day(2025, time.June, 5),
			expect: []Event{{Kind: EventBirthday}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := Evaluate(tt.rec, tt.today)
			require.NoError(t, err)
			assert.Equal(t, tt.expect, events)
		})
	}
}

// TestEvaluate_Milestone checks the 1000-day rule around the 9000th day.
func TestEvaluate_Milestone(t *testing.T) {
	birth := day(2000, time.January, 1)
	rec := PersonRecord{Name: "Milo", Date: "1/1/2000"}

	// 9000 days after 2000-01-01 is 2024-08-22.
	target := birth.AddDate(0, 0, 9000)
	require.Equal(t, day(2024, time.August, 22), target)

	events, err := Evaluate(rec, target)
	require.NoError(t, err)
	assert.Equal(t, []Event{{Kind: EventMilestone, Days: 9000}}, events)

	events, err = Evaluate(rec, target.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, events, "9001 days is not a milestone")

	// Day 0 is the birthday itself, never a milestone.
	events, err = Evaluate(rec, birth)
	require.NoError(t, err)
	assert.Equal(t, []Event{{Kind: EventBirthday}}, events)

	// Before birth the difference is negative.
	events, err = Evaluate(rec, birth.AddDate(0, 0, -1000))
	require.NoError(t, err)
	assert.Empty(t, events)
}

// TestEvaluate_MultipleEvents verifies that independent rules can fire together.
func TestEvaluate_MultipleEvents(t *testing.T) {
	// 2024-08-22 is day 9000 since 2000-01-01, and 132 days before 2025-01-01.
	rec := PersonRecord{Name: "Zoe", Date: "1/1/2000", NotificationBefore: 132}

	events, err := Evaluate(rec, day(2024, time.August, 22))
	require.NoError(t, err)
	assert.Equal(t, []Event{
		{Kind: EventAdvance, Date: "1/1/2000"},
		{Kind: EventMilestone, Days: 9000},
	}, events)
}

// TestDaysBetween_DST ensures daylight-saving transitions do not skew the count.
func TestDaysBetween_DST(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skip("tzdata not available")
	}

	// The range spans the spring-forward (23h day) and fall-back (25h day) transitions.
	a := time.Date(2024, time.March, 1, 0, 0, 0, 0, paris)
	b := time.Date(2024, time.November, 1, 0, 0, 0, 0, paris)
	assert.Equal(t, 245, DaysBetween(a, b))

	birth := time.Date(2000, time.January, 1, 0, 0, 0, 0, paris)
	target := birth.AddDate(0, 0, 9000)
	assert.Equal(t, 9000, DaysBetween(birth, target))

	events, err := Evaluate(PersonRecord{Name: "Milo", Date: "1/1/2000"}, target)
	require.NoError(t, err)
	assert.Equal(t, []Event{{Kind: EventMilestone, Days: 9000}}, events)
}

func TestEvaluate_MalformedDate(t *testing.T) {
	tests := []string{"15", "abc/6", "15/june", "15/6/year", "/"}

	for _, value := range tests {
		t.Run(value, func(t *testing.T) {
			_, err := Evaluate(PersonRecord{Name: "Bad", Date: value}, day(2025, time.June, 15))
			assert.Error(t, err)
		})
	}
}

func TestParseRecordDate(t *testing.T) {
	d, err := parseRecordDate("3/4")
	require.NoError(t, err)
	assert.Equal(t, recordDate{day: 3, month: time.April}, d)

	d, err = parseRecordDate("3/4/1987")
	require.NoError(t, err)
	assert.Equal(t, recordDate{day: 3, month: time.April, year: 1987, yearKnown: true}, d)

	// A trailing separator leaves the year unknown.
	d, err = parseRecordDate("3/4/")
	require.NoError(t, err)
	assert.False(t, d.yearKnown)
}

func TestFormatDayMonth(t *testing.T) {
	assert.Equal(t, "20/6", FormatDayMonth("20/6/1990"))
	assert.Equal(t, "20/6", FormatDayMonth("20/6"))
	assert.Equal(t, "20", FormatDayMonth("20"))
}

func TestMidnight(t *testing.T) {
	in := time.Date(2025, time.June, 15, 23, 59, 59, 999, time.UTC)
	assert.Equal(t, day(2025, time.June, 15), Midnight(in))
}

func TestEventKind_String(t *testing.T) {
	assert.Equal(t, "birthday", EventBirthday.String())
	assert.Equal(t, "advance", EventAdvance.String())
	assert.Equal(t, "milestone", EventMilestone.String())
	assert.Equal(t, "unknown", EventKind(42).String())
}
