package dateparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slackfocus/slackfocus/internal/output"
)

// Reference: Sunday June 15 2025, 14:45 local time.
var refNow = time.Date(2025, 6, 15, 14, 45, 30, 0, time.Local)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want time.Time
	}{
		{"today", "today", time.Date(2025, 6, 15, 0, 0, 0, 0, time.Local)},
		{"today uppercase", "TODAY", time.Date(2025, 6, 15, 0, 0, 0, 0, time.Local)},
		{"today padded", "  today ", time.Date(2025, 6, 15, 0, 0, 0, 0, time.Local)},
		{"tomorrow", "tomorrow", time.Date(2025, 6, 16, 0, 0, 0, 0, time.Local)},
		{"plus zero days", "+0d", time.Date(2025, 6, 15, 0, 0, 0, 0, time.Local)},
		{"plus three days", "+3d", time.Date(2025, 6, 18, 0, 0, 0, 0, time.Local)},
		{"plus days across month", "+20d", time.Date(2025, 7, 5, 0, 0, 0, 0, time.Local)},
		{"explicit date", "2025-07-01", time.Date(2025, 7, 1, 0, 0, 0, 0, time.Local)},
		{"explicit date in past", "2024-01-02", time.Date(2024, 1, 2, 0, 0, 0, 0, time.Local)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.expr, refNow)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
		})
	}
}

func TestResolveRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"empty", ""},
		{"garbage", "not-a-date"},
		{"month out of range", "2025-13-45"},
		{"day out of range", "2025-02-30"},
		{"negative days", "-3d"},
		{"missing day suffix", "+3"},
		{"wrong separator", "2025/07/01"},
		{"partial date", "2025-07"},
		{"yesterday unsupported", "yesterday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.expr, refNow)
			require.Error(t, err)
			apiErr := output.AsError(err)
			assert.Equal(t, output.CodeUsage, apiErr.Code)
			assert.Contains(t, apiErr.Message, tt.expr)
		})
	}
}

func TestResolveNormalizesToMidnight(t *testing.T) {
	got, err := Resolve("today", refNow)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Hour())
	assert.Equal(t, 0, got.Minute())
	assert.Equal(t, 0, got.Second())
	assert.Equal(t, refNow.Location(), got.Location())
}

func TestFormatRoundTrip(t *testing.T) {
	got, err := Resolve("2025-07-01", refNow)
	require.NoError(t, err)
	assert.Equal(t, "2025-07-01", Format(got))
}

func TestMidnight(t *testing.T) {
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.Local), Midnight(refNow))
}
