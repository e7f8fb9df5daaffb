package reports

import "time"

// DailyRow aggregates collections for one calendar day.
type DailyRow struct {
	Date           time.Time `json:"date"`
	TotalCollected float64   `json:"totalCollected"`
	PaymentCount   int64     `json:"paymentCount"`
}

// MonthlyRow aggregates collections for one month of a year.
type MonthlyRow struct {
	Month          int     `json:"month"`
	TotalCollected float64 `json:"totalCollected"`
	PaymentCount   int64   `json:"paymentCount"`
}

// ClassRow aggregates one student's balance within a class.
type ClassRow struct {
	StudentID   int64   `json:"studentId"`
	TotalAmount float64 `json:"totalAmount"`
	PaidAmount  float64 `json:"paidAmount"`
	DueAmount   float64 `json:"dueAmount"`
	Status      string  `json:"status"`
}

// PendingRow is one unpaid installment obligation.
type PendingRow struct {
	StudentFeeID    int64     `json:"studentFeeId"`
	StudentID       int64     `json:"studentId"`
	InstallmentID   int64     `json:"installmentId"`
	InstallmentName string    `json:"installmentName"`
	Amount          float64   `json:"amount"`
	Remaining       float64   `json:"remaining"`
	DueDate         time.Time `json:"dueDate"`
	Status          string    `json:"status"`
}

// Summary totals a report payload. FormattedTotal carries the
// locale-formatted currency string for display.
type Summary struct {
	Total          float64 `json:"total"`
	FormattedTotal string  `json:"formattedTotal"`
}

// DailyReport is the daily collection projection.
type DailyReport struct {
	From    time.Time  `json:"from"`
	To      time.Time  `json:"to"`
	Rows    []DailyRow `json:"rows"`
	Summary Summary    `json:"summary"`
}

// MonthlyReport is the per-month collection projection for a year.
type MonthlyReport struct {
	Year    int          `json:"year"`
	Rows    []MonthlyRow `json:"rows"`
	Summary Summary      `json:"summary"`
}

// ClassReport is the class-wise balance projection.
type ClassReport struct {
	ClassID int64      `json:"classId"`
	Rows    []ClassRow `json:"rows"`
	Summary Summary    `json:"summary"`
}

// PendingReport lists outstanding installments across the school.
type PendingReport struct {
	Rows    []PendingRow `json:"rows"`
	Summary Summary      `json:"summary"`
}
