package billing

import (
	"fmt"
	"time"
)

// dateKey normalizes a time to its calendar day for map lookups.
func dateKey(t time.Time) string { return t.Format("2006-01-02") }

// isoWeekday maps time.Weekday (Sunday=0) onto Monday=0 .. Sunday=6.
func isoWeekday(t time.Time) int { return (int(t.Weekday()) + 6) % 7 }

// day strips the clock from a time, keeping the calendar date.
func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Segment groups daily time entries over [start, end] into ordered invoice
// line items. Consecutive days at the same hourly rate merge into one item;
// a rate change, a day without an entry, or a Sunday->Monday boundary closes
// the current run. A week with no entries at all yields a single
// zero-quantity item spanning the whole week, priced at the rate of the
// earliest entry in the input (0 when the input is empty), so idle weeks
// stay visible on the invoice.
//
// Entries dated outside [start, end] are ignored. Segment does no I/O and is
// deterministic for a given input.
func Segment(start, end time.Time, entries []TimeEntry) ([]LineItem, error) {
	start, end = day(start), day(end)
	if start.After(end) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange, dateKey(start), dateKey(end))
	}

	byDate := make(map[string]TimeEntry, len(entries))
	var first *TimeEntry
	for _, e := range entries {
		if e.Hours < 0 || e.HourlyRate < 0 {
			return nil, fmt.Errorf("%w: %s", ErrInvalidEntry, dateKey(e.Date))
		}
		e.Date = day(e.Date)
		byDate[dateKey(e.Date)] = e
		if first == nil || e.Date.Before(first.Date) {
			c := e
			first = &c
		}
	}
	// Rate applied to entirely idle weeks.
	var idleRate float64
	if first != nil {
		idleRate = first.HourlyRate
	}

	var items []LineItem
	cursor := start
	for !cursor.After(end) {
		weekEnd := cursor.AddDate(0, 0, 6-isoWeekday(cursor))
		if weekEnd.After(end) {
			weekEnd = end
		}

		var (
			open             bool
			sawEntry         bool
			rate, hours      float64
			segStart, segEnd time.Time
		)
		for d := cursor; !d.After(weekEnd); d = d.AddDate(0, 0, 1) {
			e, ok := byDate[dateKey(d)]
			if !ok {
				// Gap day: close any open run.
				if open {
					items = append(items, LineItem{rate, hours, segStart, segEnd})
					open = false
				}
				continue
			}
			sawEntry = true
			switch {
			case !open:
				open = true
				rate, hours = e.HourlyRate, e.Hours
				segStart, segEnd = d, d
			case e.HourlyRate == rate:
				hours += e.Hours
				segEnd = d
			default:
				items = append(items, LineItem{rate, hours, segStart, segEnd})
				rate, hours = e.HourlyRate, e.Hours
				segStart, segEnd = d, d
			}
		}
		if open {
			items = append(items, LineItem{rate, hours, segStart, segEnd})
		} else if !sawEntry {
			items = append(items, LineItem{HourlyRate: idleRate, StartDate: cursor, EndDate: weekEnd})
		}

		cursor = weekEnd.AddDate(0, 0, 1)
	}
	return items, nil
}
