package schedule

import (
	"errors"
	"time"
)

var ErrEmptyWeekdaySet = errors.New("weekly recurrence requires a weekday set")

// Частота повторения шаблона.
type Frequency string

const (
	FreqOnce    Frequency = "once"
	FreqDaily   Frequency = "daily"
	FreqWeekly  Frequency = "weekly"
	FreqMonthly Frequency = "monthly"
)

// WeekdaySet — набор дней недели (битовая маска по time.Weekday).
type WeekdaySet uint8

// NewWeekdaySet собирает набор из числовых дней недели
// (0 = воскресенье ... 6 = суббота; значения вне диапазона игнорируются).
func NewWeekdaySet(days []int) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		if d >= 0 && d <= 6 {
			s |= 1 << uint(d)
		}
	}
	return s
}

func (s WeekdaySet) Has(w time.Weekday) bool {
	return s&(1<<uint(w)) != 0
}

func (s WeekdaySet) Empty() bool {
	return s == 0
}

// Occurrences перечисляет даты-кандидаты правила повторения внутри
// интервала [from, to] (границы включительно, полночь UTC).
// anchor — собственная стартовая дата шаблона: для once это единственный
// кандидат, для monthly она задаёт день месяца.
//
// Перечисление нарочно отделено от фильтров допуска: кандидаты дальше
// проходят рабочие дни, исключения, конфликты и окно доступности,
// и каждая отбраковка фиксируется с причиной.
func Occurrences(freq Frequency, anchor time.Time, weekdays WeekdaySet, from, to time.Time) ([]time.Time, error) {
	from, to = DateOnly(from), DateOnly(to)
	anchor = DateOnly(anchor)

	if to.Before(from) {
		return []time.Time{}, nil
	}

	switch freq {
	case FreqOnce:
		if anchor.Before(from) || anchor.After(to) {
			return []time.Time{}, nil
		}
		return []time.Time{anchor}, nil

	case FreqDaily:
		var dates []time.Time
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			dates = append(dates, d)
		}
		return dates, nil

	case FreqWeekly:
		if weekdays.Empty() {
			return nil, ErrEmptyWeekdaySet
		}
		var dates []time.Time
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			if weekdays.Has(d.Weekday()) {
				dates = append(dates, d)
			}
		}
		return dates, nil

	case FreqMonthly:
		return monthlyOccurrences(anchor, from, to), nil

	default:
		return nil, errors.New("unknown recurrence: " + string(freq))
	}
}

// monthlyOccurrences даёт день месяца anchor-даты по одному разу на каждый
// пересекаемый месяц. В коротких месяцах день прижимается к последнему
// числу: шаблон от 31 января даёт 28/29 февраля и 30 апреля.
func monthlyOccurrences(anchor, from, to time.Time) []time.Time {
	day := anchor.Day()

	var dates []time.Time
	cur := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(to) {
		d := day
		if last := lastDayOfMonth(cur.Year(), cur.Month()); d > last {
			d = last
		}
		c := time.Date(cur.Year(), cur.Month(), d, 0, 0, 0, 0, time.UTC)
		if !c.Before(from) && !c.After(to) {
			dates = append(dates, c)
		}
		cur = cur.AddDate(0, 1, 0)
	}
	return dates
}

func lastDayOfMonth(year int, month time.Month) int {
	// Нулевой день следующего месяца — последний день текущего.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
