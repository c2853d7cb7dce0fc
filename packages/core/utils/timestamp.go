package utils

import (
	"fmt"
	"time"
)

// TimestampLayout is the persisted format of game and stats timestamps.
// Lexical order of formatted values is chronological order.
const TimestampLayout = "2006-01-02 15:04:05"

// FirstTimestamp marks entries created by a full recomputation so they sort
// before any game.
const FirstTimestamp = "2000-01-01 00:00:00"

func FormatTimestamp(t time.Time) string {
	return t.In(time.Local).Format(TimestampLayout)
}

func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

// FormatDuration renders a duration as H:MM:SS, negative values as -H:MM:SS
func FormatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%s%d:%02d:%02d", sign, total/3600, (total/60)%60, total%60)
}
