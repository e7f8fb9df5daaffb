package fees

import (
	"fmt"

	"github.com/scholaris-erp/scholaris-erp/internal/platform/httpx"
)

// Domain errors, wrapping the httpx sentinels so handlers can map them
// to HTTP statuses with errors.Is.
var (
	ErrStructureExists     = fmt.Errorf("%w: fee structure already exists for this school, class, year and fee head", httpx.ErrConflict)
	ErrStructureNotFound   = fmt.Errorf("%w: fee structure", httpx.ErrNotFound)
	ErrStudentFeeNotFound  = fmt.Errorf("%w: student fee", httpx.ErrNotFound)
	ErrInstallmentNotFound = fmt.Errorf("%w: installment", httpx.ErrNotFound)
	ErrAlreadyGenerated    = fmt.Errorf("%w: installments already generated for this student fee", httpx.ErrConflict)
	ErrInstallmentPaid     = fmt.Errorf("%w: installment already paid", httpx.ErrState)
	ErrOverPayment         = fmt.Errorf("%w: amount exceeds remaining balance", httpx.ErrConflict)
)

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", httpx.ErrValidation, msg)
}

func overPaymentError(remaining float64) error {
	return fmt.Errorf("%w (%.2f remaining)", ErrOverPayment, remaining)
}
