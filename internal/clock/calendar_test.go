// internal/clock/calendar_test.go
package clock

import "testing"

func TestIsLeapYear(t *testing.T) {
	cases := []struct {
		year int
		want bool
	}{
		{2000, true},
		{1900, false},
		{2023, false},
		{2024, true},
		{2096, true},
		{2100, false},
	}

	for _, c := range cases {
		if got := IsLeapYear(c.year); got != c.want {
			t.Fatalf("IsLeapYear(%d) = %v, want %v", c.year, got, c.want)
		}
	}
}

func TestDayOfWeek_ReferenceDates(t *testing.T) {
	cases := []struct {
		day, month, year int
		want             int
	}{
		{1, 1, 2000, 6},   // Saturday
		{26, 2, 2023, 0},  // Sunday
		{29, 2, 2024, 4},  // Thursday
		{1, 3, 2024, 5},   // Friday
		{15, 6, 2021, 2},  // Tuesday
		{31, 12, 2099, 4}, // Thursday
	}

	for _, c := range cases {
		if got := DayOfWeek(c.day, c.month, c.year); got != c.want {
			t.Fatalf("DayOfWeek(%d, %d, %d) = %d, want %d",
				c.day, c.month, c.year, got, c.want)
		}
	}
}

func TestDayOfWeek_LeapBoundaryContinuity(t *testing.T) {
	feb29 := DayOfWeek(29, 2, 2024)
	mar1 := DayOfWeek(1, 3, 2024)

	if (feb29+1)%7 != mar1 {
		t.Fatalf("leap boundary not continuous: feb29=%d mar1=%d", feb29, mar1)
	}
}

func TestApplyDelta_CarryChainEndOfFebruary(t *testing.T) {
	dt := DateTime{Year: 2023, Month: 2, Day: 28, Hour: 23, Min: 59, Sec: 59}
	dt.DOW = DayOfWeek(dt.Day, dt.Month, dt.Year)
	before := dt.DOW

	got := ApplyDelta(dt, [fieldCount]int{1, 0, 0, 0, 0}, 0)

	want := DateTime{Year: 2023, Month: 3, Day: 1, DOW: DayOfWeek(1, 3, 2023)}
	if got != want {
		t.Fatalf("carry chain: got %+v want %+v", got, want)
	}
	if got.DOW != (before+1)%7 {
		t.Fatalf("dow not advanced by one: before=%d after=%d", before, got.DOW)
	}
}

func TestApplyDelta_LeapFebruaryHolds(t *testing.T) {
	dt := DateTime{Year: 2024, Month: 2, Day: 28, Hour: 23, Min: 59, Sec: 59}

	got := ApplyDelta(dt, [fieldCount]int{1, 0, 0, 0, 0}, 0)

	if got.Year != 2024 || got.Month != 2 || got.Day != 29 {
		t.Fatalf("expected 2024-02-29, got %+v", got)
	}
	if got.Hour != 0 || got.Min != 0 || got.Sec != 0 {
		t.Fatalf("expected midnight, got %+v", got)
	}
}

func TestApplyDelta_BorrowThroughMidnight(t *testing.T) {
	dt := DateTime{Year: 2023, Month: 5, Day: 10}

	got := ApplyDelta(dt, [fieldCount]int{-1, 0, 0, 0, 0}, 0)

	want := DateTime{Year: 2023, Month: 5, Day: 9, Hour: 23, Min: 59, Sec: 59}
	want.DOW = DayOfWeek(9, 5, 2023)
	if got != want {
		t.Fatalf("borrow: got %+v want %+v", got, want)
	}
}

func TestApplyDelta_MonthCarryIntoYear(t *testing.T) {
	dt := DateTime{Year: 2023, Month: 12, Day: 15, Hour: 6}

	got := ApplyDelta(dt, [fieldCount]int{0, 0, 0, 0, 1}, 0)

	if got.Year != 2024 || got.Month != 1 || got.Day != 15 {
		t.Fatalf("month carry: got %+v", got)
	}
}

func TestApplyDelta_YearsDirect(t *testing.T) {
	dt := DateTime{Year: 2000, Month: 1, Day: 1}

	got := ApplyDelta(dt, [fieldCount]int{0, 0, 0, 0, 0}, 23)

	if got.Year != 2023 {
		t.Fatalf("year delta: got %d want 2023", got.Year)
	}
	if got.DOW != DayOfWeek(1, 1, 2023) {
		t.Fatalf("dow not recomputed: got %d", got.DOW)
	}
}

func TestSecondsOfDay(t *testing.T) {
	dt := DateTime{Hour: 13, Min: 45, Sec: 12}

	if got := SecondsOfDay(dt); got != 13*3600+45*60+12 {
		t.Fatalf("SecondsOfDay = %d", got)
	}
}

func TestSystemRTC_SetThenNow(t *testing.T) {
	start := DateTime{Year: 2023, Month: 2, Day: 26}
	rtc := NewSystemRTC(start)

	now, err := rtc.Now()
	if err != nil {
		t.Fatalf("Now err=%v", err)
	}
	if now.Year != 2023 || now.Month != 2 || now.Day != 26 {
		t.Fatalf("clock not at start: %+v", now)
	}
	if now.DOW != DayOfWeek(now.Day, now.Month, now.Year) {
		t.Fatalf("dow mismatch: %+v", now)
	}
}
