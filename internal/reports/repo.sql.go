package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository runs read-only aggregation queries over payments and
// installments.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// DailyCollections groups payments by calendar day within the range.
func (r *Repository) DailyCollections(ctx context.Context, from, to time.Time) ([]DailyRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT date_trunc('day', paid_at) AS day, COALESCE(SUM(amount_paid), 0), COUNT(*)
FROM payments WHERE paid_at >= $1 AND paid_at < $2
GROUP BY day ORDER BY day`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DailyRow
	for rows.Next() {
		var row DailyRow
		if err := rows.Scan(&row.Date, &row.TotalCollected, &row.PaymentCount); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// MonthlyCollections groups payments by month for one year.
func (r *Repository) MonthlyCollections(ctx context.Context, year int) ([]MonthlyRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT EXTRACT(MONTH FROM paid_at)::int AS month, COALESCE(SUM(amount_paid), 0), COUNT(*)
FROM payments WHERE EXTRACT(YEAR FROM paid_at)::int = $1
GROUP BY month ORDER BY month`, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []MonthlyRow
	for rows.Next() {
		var row MonthlyRow
		if err := rows.Scan(&row.Month, &row.TotalCollected, &row.PaymentCount); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ClassBalances sums ledger balances per student for one class.
func (r *Repository) ClassBalances(ctx context.Context, classID int64) ([]ClassRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT sf.student_id, SUM(sf.total_amount), SUM(sf.paid_amount), SUM(sf.due_amount),
	CASE WHEN SUM(sf.due_amount) <= 0 THEN 'paid' WHEN SUM(sf.paid_amount) > 0 THEN 'partial' ELSE 'pending' END
FROM student_fees sf
JOIN fee_structures fs ON fs.id = sf.fee_structure_id
WHERE fs.class_id = $1
GROUP BY sf.student_id ORDER BY sf.student_id`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ClassRow
	for rows.Next() {
		var row ClassRow
		if err := rows.Scan(&row.StudentID, &row.TotalAmount, &row.PaidAmount, &row.DueAmount, &row.Status); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// PendingInstallments lists unpaid installments. Pending rows already
// past due are reported as late even before the overdue sweep runs.
func (r *Repository) PendingInstallments(ctx context.Context, asOf time.Time) ([]PendingRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT fi.student_fee_id, sf.student_id, fi.id, fi.name, fi.amount, fi.amount - fi.paid_amount,
	fi.due_date,
	CASE WHEN fi.status = 'pending' AND fi.due_date < $1 THEN 'late' ELSE fi.status END
FROM fee_installments fi
JOIN student_fees sf ON sf.id = fi.student_fee_id
WHERE fi.status IN ('pending', 'partial', 'late')
ORDER BY fi.due_date, fi.id`, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PendingRow
	for rows.Next() {
		var row PendingRow
		if err := rows.Scan(&row.StudentFeeID, &row.StudentID, &row.InstallmentID, &row.InstallmentName, &row.Amount, &row.Remaining, &row.DueDate, &row.Status); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
