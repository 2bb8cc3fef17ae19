package shared

import (
	"time"
)

// Period presets accepted by the dashboard endpoints.
const (
	PeriodToday  = "today"
	PeriodWeek   = "week"
	PeriodMonth  = "month"
	PeriodCustom = "custom"
)

// DateRange is a closed interval aligned to local calendar day boundaries:
// Start at 00:00:00.000 and End at 23:59:59.999.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// StartOfDay truncates t to midnight in its location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay moves t to the last represented millisecond of its day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// ResolvePeriod maps a period preset to a concrete range relative to now.
// Unknown or empty presets fall back to fallback (callers pass PeriodWeek
// for the revenue dashboard and PeriodToday for profit, matching the
// documented defaults).
func ResolvePeriod(period string, now time.Time, fallback string) DateRange {
	switch period {
	case PeriodToday:
		return DateRange{Start: StartOfDay(now), End: EndOfDay(now)}
	case PeriodWeek:
		return DateRange{Start: StartOfDay(now.AddDate(0, 0, -7)), End: EndOfDay(now)}
	case PeriodMonth:
		return DateRange{Start: StartOfDay(now.AddDate(0, -1, 0)), End: EndOfDay(now)}
	default:
		if fallback != "" && fallback != period {
			return ResolvePeriod(fallback, now, "")
		}
		return DateRange{Start: StartOfDay(now.AddDate(0, 0, -7)), End: EndOfDay(now)}
	}
}

// CustomRange builds a range from explicit bounds. The end day must not
// precede the start day.
func CustomRange(start, end time.Time) (DateRange, error) {
	s := StartOfDay(start)
	e := EndOfDay(end)
	if e.Before(s) {
		return DateRange{}, Validationf("invalid date range: end %s before start %s", end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	return DateRange{Start: s, End: e}, nil
}
