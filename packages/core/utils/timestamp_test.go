package utils

import (
	"testing"
	"time"

	"github.com/bmizerany/assert"
)

func TestFormatAndParseTimestamp(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 7, 9, 0, time.Local)

	formatted := FormatTimestamp(at)
	assert.Equal(t, "2024-03-05 14:07:09", formatted)

	parsed, err := ParseTimestamp(formatted)
	assert.Equal(t, nil, err)
	assert.T(t, parsed.Equal(at))
}

func TestParseTimestampRejectsOtherLayouts(t *testing.T) {
	for _, s := range []string{"", "2024-03-05", "2024-03-05T14:07:09Z", "05/03/2024 14:07:09"} {
		_, err := ParseTimestamp(s)
		assert.NotEqual(t, nil, err, s)
	}
}

func TestTimestampsSortChronologically(t *testing.T) {
	earlier := FormatTimestamp(time.Date(2024, 9, 30, 23, 59, 59, 0, time.Local))
	later := FormatTimestamp(time.Date(2024, 10, 1, 0, 0, 0, 0, time.Local))

	assert.T(t, FirstTimestamp < earlier)
	assert.T(t, earlier < later)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00:00"},
		{90 * time.Second, "0:01:30"},
		{30 * time.Minute, "0:30:00"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
		{-(time.Hour + 2*time.Minute + 3*time.Second), "-1:02:03"},
		{1500 * time.Millisecond, "0:00:02"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.d))
	}
}
