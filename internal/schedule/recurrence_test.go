package schedule

import (
	"errors"
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func datesEqual(a []time.Time, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if FormatDate(a[i]) != b[i] {
			return false
		}
	}
	return true
}

//
// Тесты для Occurrences
//

func TestOccurrences_Once(t *testing.T) {
	anchor := mustDate(t, "2025-03-10")

	got, err := Occurrences(FreqOnce, anchor, 0, mustDate(t, "2025-03-01"), mustDate(t, "2025-03-31"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !datesEqual(got, []string{"2025-03-10"}) {
		t.Fatalf("expected single anchor date, got %v", got)
	}

	// Якорь вне интервала — пустой результат.
	got, err = Occurrences(FreqOnce, anchor, 0, mustDate(t, "2025-04-01"), mustDate(t, "2025-04-30"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no dates for anchor outside range, got %v", got)
	}
}

func TestOccurrences_Daily(t *testing.T) {
	got, err := Occurrences(FreqDaily, mustDate(t, "2025-01-01"), 0, mustDate(t, "2025-01-06"), mustDate(t, "2025-01-09"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !datesEqual(got, []string{"2025-01-06", "2025-01-07", "2025-01-08", "2025-01-09"}) {
		t.Fatalf("unexpected daily dates: %v", got)
	}
}

func TestOccurrences_WeeklyMondayWednesday(t *testing.T) {
	// 2025-01-06 — понедельник.
	weekdays := NewWeekdaySet([]int{1, 3})

	got, err := Occurrences(FreqWeekly, mustDate(t, "2025-01-01"), weekdays, mustDate(t, "2025-01-06"), mustDate(t, "2025-01-15"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !datesEqual(got, []string{"2025-01-06", "2025-01-08", "2025-01-13", "2025-01-15"}) {
		t.Fatalf("unexpected weekly dates: %v", got)
	}
}

func TestOccurrences_WeeklyEmptySet(t *testing.T) {
	_, err := Occurrences(FreqWeekly, mustDate(t, "2025-01-01"), 0, mustDate(t, "2025-01-01"), mustDate(t, "2025-01-31"))
	if !errors.Is(err, ErrEmptyWeekdaySet) {
		t.Fatalf("expected ErrEmptyWeekdaySet, got %v", err)
	}
}

func TestOccurrences_MonthlyClampsShortMonths(t *testing.T) {
	// Якорь на 31-е: февраль и апрель дают последний день месяца.
	got, err := Occurrences(FreqMonthly, mustDate(t, "2025-01-31"), 0, mustDate(t, "2025-01-01"), mustDate(t, "2025-04-30"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !datesEqual(got, []string{"2025-01-31", "2025-02-28", "2025-03-31", "2025-04-30"}) {
		t.Fatalf("unexpected monthly dates: %v", got)
	}
}

func TestOccurrences_MonthlyLeapFebruary(t *testing.T) {
	got, err := Occurrences(FreqMonthly, mustDate(t, "2024-01-31"), 0, mustDate(t, "2024-02-01"), mustDate(t, "2024-02-29"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !datesEqual(got, []string{"2024-02-29"}) {
		t.Fatalf("expected leap-year 2024-02-29, got %v", got)
	}
}

func TestOccurrences_EmptyRange(t *testing.T) {
	got, err := Occurrences(FreqDaily, mustDate(t, "2025-01-01"), 0, mustDate(t, "2025-01-10"), mustDate(t, "2025-01-05"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no dates for reversed range, got %v", got)
	}
}

//
// Тесты для WeekdaySet
//

func TestNewWeekdaySet_IgnoresOutOfRange(t *testing.T) {
	s := NewWeekdaySet([]int{-1, 0, 7, 6})
	if !s.Has(time.Sunday) || !s.Has(time.Saturday) {
		t.Fatalf("expected sunday and saturday in set")
	}
	if s.Has(time.Monday) {
		t.Fatalf("monday must not be in set")
	}
}

//
// Тесты для дат
//

func TestDateOnly_NormalizesToUTCMidnight(t *testing.T) {
	loc := time.FixedZone("MSK", 3*3600)
	src := time.Date(2025, 5, 20, 23, 45, 0, 0, loc)

	got := DateOnly(src)
	want := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("DateOnly = %v, want %v", got, want)
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, s := range []string{"", "2025-13-01", "20250101", "2025-01-32"} {
		if _, err := ParseDate(s); err == nil {
			t.Fatalf("ParseDate(%q): expected error, got nil", s)
		}
	}
}
