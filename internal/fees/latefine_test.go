package fees

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLateFineZeroUnlessLate(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	inst := FeeInstallment{Status: InstallmentPending, DueDate: now.AddDate(0, 0, -5)}
	require.Equal(t, 0.0, LateFine(inst, 10, now))

	inst.Status = InstallmentPaid
	require.Equal(t, 0.0, LateFine(inst, 10, now))
}

func TestLateFineAccruesPerDay(t *testing.T) {
	now := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	inst := FeeInstallment{Status: InstallmentLate, DueDate: now.AddDate(0, 0, -5)}
	require.Equal(t, 50.0, LateFine(inst, 10, now))
}

func TestLateFineRoundsPartialDaysUp(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	inst := FeeInstallment{Status: InstallmentLate, DueDate: now.Add(-36 * time.Hour)}
	require.Equal(t, 20.0, LateFine(inst, 10, now))
}

func TestLateFineNotDueYet(t *testing.T) {
	now := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	inst := FeeInstallment{Status: InstallmentLate, DueDate: now.AddDate(0, 0, 2)}
	require.Equal(t, 0.0, LateFine(inst, 10, now))
}
