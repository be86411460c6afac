package valueobject

import (
	"strings"
	"time"

	"github.com/datatwine/CreateScale/internal/pkg/apperror"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04:05"
)

// Дата события хранится как полночь UTC, время суток - как 0000-01-01 в UTC
// (так же их отдаёт lib/pq для колонок DATE и TIME).

// ParseDate разбирает календарную дату в формате YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, apperror.Wrap(err, apperror.ErrCodeValidation, "дата должна быть в формате ГГГГ-ММ-ДД")
	}
	return d, nil
}

// ParseClock разбирает время суток в формате HH:MM или HH:MM:SS.
func ParseClock(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{ClockLayout, "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperror.New(apperror.ErrCodeValidation, "время должно быть в формате ЧЧ:ММ")
}

// DateOf возвращает календарную дату момента t в зоне loc.
func DateOf(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// NormalizeDate отбрасывает время и зону, оставляя календарную дату.
func NormalizeDate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// NormalizeClock отбрасывает дату, оставляя время суток.
func NormalizeClock(c time.Time) time.Time {
	return time.Date(0, time.January, 1, c.Hour(), c.Minute(), c.Second(), 0, time.UTC)
}

// Combine собирает момент события из даты и времени суток в зоне loc.
func Combine(date, clock time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), clock.Hour(), clock.Minute(), clock.Second(), 0, loc)
}

func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

func FormatClock(c time.Time) string {
	return c.Format(ClockLayout)
}
