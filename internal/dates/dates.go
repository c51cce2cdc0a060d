// Package dates maps a start date and a day count to calendar-day keys and
// renders those keys as Spanish display labels.
package dates

import (
	"fmt"
	"time"
)

// KeyLayout is the layout of a calendar-day key (ISO 8601 date).
const KeyLayout = "2006-01-02"

var weekdays = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}

var months = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// ExpandRange returns days consecutive keys starting at start's calendar day.
// Calendar arithmetic is done on the date itself so daylight saving
// transitions never skip or repeat a day.
func ExpandRange(start time.Time, days int) []string {
	if days <= 0 {
		return []string{}
	}
	y, m, d := start.Date()
	keys := make([]string, days)
	for i := range keys {
		keys[i] = time.Date(y, m, d+i, 12, 0, 0, 0, time.UTC).Format(KeyLayout)
	}
	return keys
}

// ParseKey parses a key as local midnight.
func ParseKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(KeyLayout, key, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	return t, nil
}

// FormatDisplay renders key as "jueves, 4 de septiembre".
func FormatDisplay(key string) (string, error) {
	t, err := ParseKey(key)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s, %d de %s", weekdays[t.Weekday()], t.Day(), months[t.Month()-1]), nil
}

// MustFormatDisplay is FormatDisplay for keys already validated; an invalid
// key is returned unchanged.
func MustFormatDisplay(key string) string {
	s, err := FormatDisplay(key)
	if err != nil {
		return key
	}
	return s
}

// Tomorrow returns the key of the day after now in now's location.
func Tomorrow(now time.Time) string {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 12, 0, 0, 0, time.UTC).Format(KeyLayout)
}
