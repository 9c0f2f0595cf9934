package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "rfc3339 with nanoseconds",
			input: "2026-08-30T10:15:30.123456789Z",
			want:  time.Date(2026, 8, 30, 10, 15, 30, 123456789, time.UTC),
		},
		{
			name:  "sqlite datetime with offset",
			input: "2026-08-30 10:15:30.5+02:00",
			want:  time.Date(2026, 8, 30, 10, 15, 30, 500000000, time.FixedZone("", 2*60*60)),
		},
		{
			name:  "plain datetime",
			input: "2026-08-30 10:15:30",
			want:  time.Date(2026, 8, 30, 10, 15, 30, 0, time.UTC),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseTimestamp(tc.input)
			require.NoError(t, err)
			assert.True(t, got.Equal(tc.want), "got %v, want %v", got, tc.want)
		})
	}
}

func TestParseTimestampRejectsUnknownFormat(t *testing.T) {
	_, err := parseTimestamp("30/08/2026 10:15")
	assert.Error(t, err)
}
