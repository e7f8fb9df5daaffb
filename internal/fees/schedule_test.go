package fees

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildScheduleMonthly(t *testing.T) {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	schedule, err := BuildSchedule(12000, FrequencyMonthly, start)
	require.NoError(t, err)
	require.Len(t, schedule, 12)

	var sum float64
	for i, item := range schedule {
		require.Equal(t, 1000.0, item.Amount)
		require.Equal(t, start.AddDate(0, i, 0), item.DueDate)
		sum += item.Amount
	}
	require.Equal(t, 12000.0, sum)
	require.Equal(t, "Apr", schedule[0].Name)
	require.Equal(t, "May", schedule[1].Name)
	require.Equal(t, "Mar", schedule[11].Name)
}

func TestBuildScheduleMonthlyAbsorbsRounding(t *testing.T) {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	schedule, err := BuildSchedule(10000, FrequencyMonthly, start)
	require.NoError(t, err)
	require.Len(t, schedule, 12)

	var sum float64
	for _, item := range schedule {
		sum += item.Amount
	}
	require.InDelta(t, 10000, sum, 0.001)

	// 10000/12 rounds to 833.33, so the final installment picks up the slack.
	require.Equal(t, 833.33, schedule[0].Amount)
	require.Equal(t, 833.37, schedule[11].Amount)
}

func TestBuildScheduleQuarterly(t *testing.T) {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	schedule, err := BuildSchedule(9000, FrequencyQuarterly, start)
	require.NoError(t, err)
	require.Len(t, schedule, 4)

	for i, item := range schedule {
		require.Equal(t, 2250.0, item.Amount)
		require.Equal(t, start.AddDate(0, i*3, 0), item.DueDate)
	}
	require.Equal(t, "Q1", schedule[0].Name)
	require.Equal(t, "Q4", schedule[3].Name)
}

func TestBuildScheduleYearly(t *testing.T) {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	schedule, err := BuildSchedule(5000, FrequencyYearly, start)
	require.NoError(t, err)
	require.Len(t, schedule, 1)
	require.Equal(t, "Annual", schedule[0].Name)
	require.Equal(t, 5000.0, schedule[0].Amount)
	require.Equal(t, start, schedule[0].DueDate)
}

func TestBuildScheduleUnknownFrequency(t *testing.T) {
	_, err := BuildSchedule(1000, "weekly", time.Now())
	require.Error(t, err)
}

func TestBuildScheduleZeroTotal(t *testing.T) {
	schedule, err := BuildSchedule(0, FrequencyMonthly, time.Now())
	require.NoError(t, err)
	require.Len(t, schedule, 12)
	for _, item := range schedule {
		require.Equal(t, 0.0, item.Amount)
	}
}
