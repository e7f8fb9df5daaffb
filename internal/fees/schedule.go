package fees

import (
	"fmt"
	"math"
	"time"
)

// ScheduledInstallment is one row of a generated schedule before persistence.
type ScheduledInstallment struct {
	Name    string
	Amount  float64
	DueDate time.Time
}

// BuildSchedule splits total into dated installments per the frequency.
// Per-installment amounts are rounded to two decimals; the final
// installment absorbs the rounding remainder so the schedule sums
// exactly to total.
func BuildSchedule(total float64, frequency FeeFrequency, start time.Time) ([]ScheduledInstallment, error) {
	switch frequency {
	case FrequencyMonthly:
		return splitSchedule(total, 12, 1, start, monthName), nil
	case FrequencyQuarterly:
		return splitSchedule(total, 4, 3, start, quarterName), nil
	case FrequencyYearly:
		return []ScheduledInstallment{{Name: "Annual", Amount: round2(total), DueDate: start}}, nil
	default:
		return nil, fmt.Errorf("unknown frequency %q", frequency)
	}
}

func splitSchedule(total float64, count, monthStep int, start time.Time, name func(int, time.Time) string) []ScheduledInstallment {
	each := round2(total / float64(count))
	out := make([]ScheduledInstallment, 0, count)
	var allocated float64
	for i := 0; i < count; i++ {
		due := start.AddDate(0, i*monthStep, 0)
		amount := each
		if i == count-1 {
			amount = round2(total - allocated)
		}
		allocated += amount
		out = append(out, ScheduledInstallment{Name: name(i, due), Amount: amount, DueDate: due})
	}
	return out
}

func monthName(_ int, due time.Time) string {
	return due.Format("Jan")
}

func quarterName(i int, _ time.Time) string {
	return fmt.Sprintf("Q%d", i+1)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
