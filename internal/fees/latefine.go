package fees

import (
	"math"
	"time"
)

// LateFine returns the accrued fine for a late installment as of now.
// Installments that are not late carry no fine.
func LateFine(inst FeeInstallment, finePerDay float64, now time.Time) float64 {
	if inst.Status != InstallmentLate {
		return 0
	}
	diffDays := math.Ceil(now.Sub(inst.DueDate).Hours() / 24)
	if diffDays <= 0 {
		return 0
	}
	return diffDays * finePerDay
}
