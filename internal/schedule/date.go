package schedule

import (
	"fmt"
	"time"
)

// Обмен датами идёт строками ISO "YYYY-MM-DD".
const DateLayout = "2006-01-02"

// DateOnly нормализует момент к полуночи UTC.
// Все сравнения дат в ядре делаются только над такими значениями,
// иначе локальные смещения дают дрейф на границах суток.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate разбирает "YYYY-MM-DD" в полночь UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q: %w", s, err)
	}
	return DateOnly(t), nil
}

// FormatDate — обратная операция к ParseDate.
func FormatDate(t time.Time) string {
	return DateOnly(t).Format(DateLayout)
}

// MaxDate / MinDate — выбор границ при обрезке интервала запроса
// к окну действия шаблона.
func MaxDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func MinDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
