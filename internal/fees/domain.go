package fees

import (
	"time"
)

// FeeFrequency enumerates installment frequencies for a fee structure.
type FeeFrequency string

const (
	FrequencyMonthly   FeeFrequency = "monthly"
	FrequencyQuarterly FeeFrequency = "quarterly"
	FrequencyYearly    FeeFrequency = "yearly"
)

// Valid reports whether the frequency is a known value.
func (f FeeFrequency) Valid() bool {
	switch f {
	case FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// StudentFeeStatus enumerates ledger statuses.
type StudentFeeStatus string

const (
	StudentFeePending StudentFeeStatus = "pending"
	StudentFeePartial StudentFeeStatus = "partial"
	StudentFeePaid    StudentFeeStatus = "paid"
)

// InstallmentStatus enumerates installment statuses.
type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "pending"
	InstallmentPartial InstallmentStatus = "partial"
	InstallmentPaid    InstallmentStatus = "paid"
	InstallmentLate    InstallmentStatus = "late"
)

// PaymentMode enumerates accepted payment channels.
type PaymentMode string

const (
	ModeCash   PaymentMode = "cash"
	ModeOnline PaymentMode = "online"
	ModeCheque PaymentMode = "cheque"
)

// Valid reports whether the payment mode is a known value.
func (m PaymentMode) Valid() bool {
	switch m {
	case ModeCash, ModeOnline, ModeCheque:
		return true
	}
	return false
}

// DiscountType enumerates discount kinds.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFlat       DiscountType = "flat"
)

// FeeStructure prices a fee head for a school, class and academic year.
// At most one structure exists per (school, class, year, feeHead) tuple.
type FeeStructure struct {
	ID             int64        `json:"id"`
	SchoolID       int64        `json:"schoolId"`
	ClassID        int64        `json:"classId"`
	AcademicYearID int64        `json:"academicYearId"`
	FeeHeadID      int64        `json:"feeHeadId"`
	Amount         float64      `json:"amount"`
	Frequency      FeeFrequency `json:"frequency"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// FeeStructureDetail carries a structure with joined display names.
type FeeStructureDetail struct {
	FeeStructure
	FeeHeadName      string `json:"feeHeadName"`
	ClassName        string `json:"className"`
	AcademicYearName string `json:"academicYearName"`
}

// Discount reduces a payable amount for selected fee heads.
// An empty FeeHeadIDs set means the discount applies to every head.
type Discount struct {
	ID         int64        `json:"id"`
	SchoolID   int64        `json:"schoolId"`
	Name       string       `json:"name"`
	Type       DiscountType `json:"type"`
	Value      float64      `json:"value"`
	FeeHeadIDs []int64      `json:"applicableFeeHeads"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// StudentFee is one student's instantiation of a FeeStructure.
// Invariant: PaidAmount + DueAmount == TotalAmount.
type StudentFee struct {
	ID             int64            `json:"id"`
	StudentID      int64            `json:"studentId"`
	FeeStructureID int64            `json:"feeStructureId"`
	AcademicYearID int64            `json:"academicYearId"`
	SchoolID       int64            `json:"schoolId"`
	TotalAmount    float64          `json:"totalAmount"`
	PaidAmount     float64          `json:"paidAmount"`
	DueAmount      float64          `json:"dueAmount"`
	Status         StudentFeeStatus `json:"status"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// FeeInstallment is a dated partial obligation of a StudentFee.
type FeeInstallment struct {
	ID           int64             `json:"id"`
	StudentFeeID int64             `json:"studentFeeId"`
	Name         string            `json:"installmentName"`
	Amount       float64           `json:"amount"`
	PaidAmount   float64           `json:"paidAmount"`
	DueDate      time.Time         `json:"dueDate"`
	Status       InstallmentStatus `json:"status"`
	LateFine     float64           `json:"lateFine"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// Remaining returns the unpaid balance of the installment.
func (i FeeInstallment) Remaining() float64 {
	return i.Amount - i.PaidAmount
}

// Payment is an immutable record of one transaction against an installment.
type Payment struct {
	ID            int64       `json:"id"`
	InstallmentID int64       `json:"installmentId"`
	StudentFeeID  int64       `json:"studentFeeId"`
	AmountPaid    float64     `json:"amountPaid"`
	Mode          PaymentMode `json:"paymentMode"`
	TransactionID string      `json:"transactionId,omitempty"`
	ReceiptNo     string      `json:"receiptNo"`
	PaidAt        time.Time   `json:"paidAt"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// CreateFeeStructureInput for creating fee structures.
type CreateFeeStructureInput struct {
	SchoolID       int64
	ClassID        int64
	AcademicYearID int64
	FeeHeadID      int64
	Amount         float64
	Frequency      FeeFrequency
}

// ListFeeStructuresFilter narrows structure listings.
type ListFeeStructuresFilter struct {
	SchoolID       int64
	ClassID        int64
	AcademicYearID int64
}

// CreateDiscountInput for creating discounts.
type CreateDiscountInput struct {
	SchoolID   int64
	Name       string
	Type       DiscountType
	Value      float64
	FeeHeadIDs []int64
}

// AssignInput assigns a structure to one student or a batch of students.
// Exactly one of StudentID or StudentIDs must be set.
type AssignInput struct {
	FeeStructureID int64
	StudentID      int64
	StudentIDs     []int64
	AcademicYearID int64
	SchoolID       int64
	CustomAmount   *float64
}

// AssignResult reports the outcome of a bulk assignment.
type AssignResult struct {
	AssignedCount int `json:"assignedCount"`
	SkippedCount  int `json:"skippedCount"`
}

// PayInput records a payment against an installment.
type PayInput struct {
	InstallmentID int64
	Amount        float64
	Mode          PaymentMode
	TransactionID string
}

// PayResult carries all records touched by a payment.
type PayResult struct {
	Installment FeeInstallment `json:"installment"`
	Payment     Payment        `json:"payment"`
	StudentFee  StudentFee     `json:"studentFee"`
}
