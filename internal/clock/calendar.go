// internal/clock/calendar.go
package clock

// DateTime mirrors the device calendar store: civil date/time plus the
// day of week (0 = Sunday .. 6 = Saturday).
type DateTime struct {
	Year  int
	Month int // 1..12
	Day   int // 1..31
	DOW   int // 0..6, 0 = Sunday; derived, never authoritative
	Hour  int
	Min   int
	Sec   int
}

// Carry-field indices for the limits tables and ApplyDelta,
// smallest unit first.
const (
	fieldSec = iota
	fieldMin
	fieldHour
	fieldDay
	fieldMonth
	fieldCount
)

var limitMin = [fieldCount]int{0, 0, 0, 1, 1}

// limitMax[fieldDay] is unused; see fieldMax.
var limitMax = [fieldCount]int{60, 60, 24, 31, 12}

var monthDays = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// IsLeapYear implements the Gregorian rule.
func IsLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

func fieldMax(field, month, year int) int {
	if field == fieldDay {
		// The day field is normalized before the month field, so month
		// may still be outside 1..12 here; wrap it for the table lookup.
		m := ((month-1)%12+12)%12 + 1
		max := monthDays[m-1]
		if m == 2 && IsLeapYear(year) {
			max++
		}
		return max
	}
	return limitMax[field]
}

// monthKey drives the day-of-week computation below.
var monthKey = [12]int{1, 4, 4, 0, 2, 5, 0, 3, 6, 1, 4, 6}

// DayOfWeek returns 0=Sunday..6=Saturday for a date in 2000..2099.
// Fixed-table algorithm; the century anchor is baked in, so dates
// outside that range come back wrong, not erroneous.
func DayOfWeek(day, month, year int) int {
	d := day + monthKey[month-1] - 2
	if (month == 1 || month == 2) && IsLeapYear(year) {
		d--
	}
	yy := year % 100
	d += yy + yy/4
	return ((d % 7) + 7) % 7
}

// ApplyDelta adds signed per-field deltas to dt and propagates carry and
// borrow through sec -> min -> hour -> day -> month, and past month into
// the year. years is added directly; DOW is recomputed from the final
// date, never carried.
//
// Each field is adjusted at most once, after all deltas have been added,
// matching the discrete step corrections this protocol delivers.
func ApplyDelta(dt DateTime, deltas [fieldCount]int, years int) DateTime {
	dt.Year += years
	dt.Sec += deltas[fieldSec]
	dt.Min += deltas[fieldMin]
	dt.Hour += deltas[fieldHour]
	dt.Day += deltas[fieldDay]
	dt.Month += deltas[fieldMonth]

	fields := [fieldCount]*int{&dt.Sec, &dt.Min, &dt.Hour, &dt.Day, &dt.Month}

	for i := 0; i < fieldCount; i++ {
		min := limitMin[i]
		max := fieldMax(i, dt.Month, dt.Year)

		if *fields[i] < min {
			if i < fieldMonth {
				*fields[i+1]--
			} else {
				dt.Year--
			}
			*fields[i] += max
		} else if *fields[i] >= max+min {
			if i < fieldMonth {
				*fields[i+1]++
			} else {
				dt.Year++
			}
			*fields[i] -= max
		}
	}

	dt.DOW = DayOfWeek(dt.Day, dt.Month, dt.Year)
	return dt
}

// SecondsOfDay returns seconds past midnight, the 17-bit half of the
// wire timestamp.
func SecondsOfDay(dt DateTime) int {
	return dt.Hour*3600 + dt.Min*60 + dt.Sec
}
