// Package dateutil parses stored article timestamps and formats them for display.
package dateutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDate indicates a timestamp matched none of the accepted layouts.
var ErrInvalidDate = errors.New("invalid date")

// UnknownDate is displayed when a timestamp is missing or unparsable.
const UnknownDate = "Unknown Date"

// StorageLayout is the layout used when writing timestamps.
const StorageLayout = time.RFC3339

// acceptedLayouts are tried in order when reading timestamps. Layouts without
// an offset are interpreted in the local time zone.
var acceptedLayouts = []struct {
	layout string
	local  bool
}{
	{time.RFC3339Nano, false},
	{"2006-01-02T15:04:05.999999999", true},
	{"2006-01-02T15:04:05", true},
	{"2006-01-02 15:04:05.999999999Z07:00", false},
	{"2006-01-02 15:04:05.999999999", true},
	{"2006-01-02 15:04:05", true},
	{"2006-01-02T15:04", true},
	{"2006-01-02", true},
}

// ParseTimestamp reads a stored timestamp. It accepts RFC 3339, ISO 8601
// with or without fractional seconds and offset, "YYYY-MM-DD HH:MM:SS" and
// bare dates.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}
	for _, l := range acceptedLayouts {
		var (
			t   time.Time
			err error
		)
		if l.local {
			t, err = time.ParseInLocation(l.layout, value, time.Local)
		} else {
			t, err = time.Parse(l.layout, value)
		}
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

// FormatTimestamp renders t in the storage layout.
func FormatTimestamp(t time.Time) string {
	return t.Format(StorageLayout)
}

// Ordinal returns n with its English ordinal suffix: 1st, 2nd, 3rd, 11th.
func Ordinal(n int) string {
	suffix := "th"
	if mod := n % 100; mod < 11 || mod > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

// FormatArticleDate renders t as "3rd December 2025, 14:05".
func FormatArticleDate(t time.Time) string {
	return Ordinal(t.Day()) + " " + t.Format("January 2006, 15:04")
}

// DisplayDate parses a stored timestamp and formats it for display. Missing
// or invalid values yield UnknownDate.
func DisplayDate(value string) string {
	t, err := ParseTimestamp(value)
	if err != nil {
		return UnknownDate
	}
	return FormatArticleDate(t)
}
