package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCivilDate(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{
			name: "afternoon UTC maps to same date",
			in:   time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
			want: "2024-01-15",
		},
		{
			name: "late UTC evening rolls into next local day",
			in:   time.Date(2024, 1, 15, 20, 0, 0, 0, time.UTC),
			want: "2024-01-16",
		},
		{
			name: "exactly local midnight",
			in:   time.Date(2024, 1, 15, 16, 0, 0, 0, time.UTC),
			want: "2024-01-16",
		},
		{
			name: "one second before local midnight",
			in:   time.Date(2024, 1, 15, 15, 59, 59, 0, time.UTC),
			want: "2024-01-15",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CivilDate(tt.in))
		})
	}
}

func TestDayBounds(t *testing.T) {
	in := time.Date(2024, 3, 10, 2, 30, 0, 0, time.UTC) // 10:30 local
	start, end := DayBounds(in)

	assert.Equal(t, "2024-03-10", start.Format(DateLayout))
	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, 24*time.Hour, end.Sub(start))
	assert.True(t, !in.Before(start) && in.Before(end))
}

func TestRollingWindow(t *testing.T) {
	now := time.Date(2024, 3, 10, 2, 30, 0, 0, time.UTC)
	start, end := RollingWindow(now, 7)

	// Seven civil days total: today plus the previous six.
	assert.Equal(t, "2024-03-04", start.In(Ulaanbaatar).Format(DateLayout))
	assert.Equal(t, 7*24*time.Hour, end.Sub(start))
}

func TestRangeBounds(t *testing.T) {
	t.Run("single day", func(t *testing.T) {
		start, end, err := RangeBounds("2024-01-01", "2024-01-01")
		require.NoError(t, err)
		assert.Equal(t, 24*time.Hour, end.Sub(start))
		assert.Equal(t, "2024-01-01", start.Format(DateLayout))
	})

	t.Run("inclusive range", func(t *testing.T) {
		start, end, err := RangeBounds("2024-01-01", "2024-01-03")
		require.NoError(t, err)
		assert.Equal(t, 3*24*time.Hour, end.Sub(start))
	})

	t.Run("reversed range rejected", func(t *testing.T) {
		_, _, err := RangeBounds("2024-01-03", "2024-01-01")
		assert.Error(t, err)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, _, err := RangeBounds("01/03/2024", "2024-01-05")
		assert.Error(t, err)
	})
}
