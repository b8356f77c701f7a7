package schedule

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrBadClock         = errors.New("time must match HH:mm")
	ErrInvalidClockSpan = errors.New("start must be before end")
)

// Формат времени суток: 24 часа, ведущие нули обязательны.
var clockRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// ClockTime — время суток в минутах от полуночи.
// Сессии привязаны к дате отдельно, поэтому здесь time.Time избыточен.
type ClockTime int

// ParseClock разбирает строку "HH:mm".
func ParseClock(s string) (ClockTime, error) {
	if !clockRe.MatchString(s) {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	return ClockTime(h*60 + m), nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// ClockSpan — полуоткрытый интервал [Start, End) внутри суток.
type ClockSpan struct {
	Start ClockTime
	End   ClockTime
}

// ParseClockSpan разбирает пару "HH:mm" и проверяет порядок границ.
func ParseClockSpan(start, end string) (ClockSpan, error) {
	s, err := ParseClock(start)
	if err != nil {
		return ClockSpan{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return ClockSpan{}, err
	}
	if s >= e {
		return ClockSpan{}, fmt.Errorf("%w: %s >= %s", ErrInvalidClockSpan, start, end)
	}
	return ClockSpan{Start: s, End: e}, nil
}

// Overlaps проверяет пересечение полуоткрытых интервалов:
// a и b пересекаются, если a.Start < b.End && b.Start < a.End.
// Касание концами пересечением не считается.
func (a ClockSpan) Overlaps(b ClockSpan) bool {
	return a.Start < b.End && b.Start < a.End
}

// Within сообщает, лежит ли интервал a целиком внутри b.
func (a ClockSpan) Within(b ClockSpan) bool {
	return a.Start >= b.Start && a.End <= b.End
}

// ValidateOrdered — общая проверка start < end для пары строк "HH:mm".
// Используется и для рабочих часов, и для перерывов, и для custom_hours.
func ValidateOrdered(start, end string) error {
	_, err := ParseClockSpan(start, end)
	return err
}
