package fees

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scholaris-erp/scholaris-erp/internal/platform/db"
)

const uniqueViolation = "23505"

// Repository provides PostgreSQL backed persistence for the fee core.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateFeeStructure inserts a structure. The unique index on
// (school_id, class_id, academic_year_id, fee_head_id) enforces the
// one-structure-per-tuple invariant.
func (r *Repository) CreateFeeStructure(ctx context.Context, input CreateFeeStructureInput) (*FeeStructure, error) {
	now := time.Now()
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO fee_structures (school_id, class_id, academic_year_id, fee_head_id, amount, frequency, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		input.SchoolID, input.ClassID, input.AcademicYearID, input.FeeHeadID, input.Amount, input.Frequency, now, now).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrStructureExists
		}
		return nil, err
	}
	return &FeeStructure{
		ID:             id,
		SchoolID:       input.SchoolID,
		ClassID:        input.ClassID,
		AcademicYearID: input.AcademicYearID,
		FeeHeadID:      input.FeeHeadID,
		Amount:         input.Amount,
		Frequency:      input.Frequency,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// GetFeeStructure loads a structure by ID.
func (r *Repository) GetFeeStructure(ctx context.Context, id int64) (*FeeStructure, error) {
	var fs FeeStructure
	err := r.pool.QueryRow(ctx, `SELECT id, school_id, class_id, academic_year_id, fee_head_id, amount, frequency, created_at, updated_at
FROM fee_structures WHERE id = $1`, id).Scan(
		&fs.ID, &fs.SchoolID, &fs.ClassID, &fs.AcademicYearID, &fs.FeeHeadID, &fs.Amount, &fs.Frequency, &fs.CreatedAt, &fs.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStructureNotFound
		}
		return nil, err
	}
	return &fs, nil
}

// ListFeeStructures returns structures matching the filter with the fee
// head, class and academic year names joined in.
func (r *Repository) ListFeeStructures(ctx context.Context, filter ListFeeStructuresFilter) ([]FeeStructureDetail, error) {
	rows, err := r.pool.Query(ctx, `SELECT fs.id, fs.school_id, fs.class_id, fs.academic_year_id, fs.fee_head_id, fs.amount, fs.frequency, fs.created_at, fs.updated_at,
	fh.name, c.name, ay.name
FROM fee_structures fs
JOIN fee_heads fh ON fh.id = fs.fee_head_id
JOIN classes c ON c.id = fs.class_id
JOIN academic_years ay ON ay.id = fs.academic_year_id
WHERE ($1 = 0 OR fs.school_id = $1)
  AND ($2 = 0 OR fs.class_id = $2)
  AND ($3 = 0 OR fs.academic_year_id = $3)
ORDER BY fs.id`, filter.SchoolID, filter.ClassID, filter.AcademicYearID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []FeeStructureDetail
	for rows.Next() {
		var d FeeStructureDetail
		if err := rows.Scan(&d.ID, &d.SchoolID, &d.ClassID, &d.AcademicYearID, &d.FeeHeadID, &d.Amount, &d.Frequency, &d.CreatedAt, &d.UpdatedAt,
			&d.FeeHeadName, &d.ClassName, &d.AcademicYearName); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// CreateDiscount inserts a discount policy.
func (r *Repository) CreateDiscount(ctx context.Context, input CreateDiscountInput) (*Discount, error) {
	now := time.Now()
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO discounts (school_id, name, kind, value, fee_head_ids, created_at)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		input.SchoolID, input.Name, input.Type, input.Value, input.FeeHeadIDs, now).Scan(&id)
	if err != nil {
		return nil, err
	}
	return &Discount{
		ID:         id,
		SchoolID:   input.SchoolID,
		Name:       input.Name,
		Type:       input.Type,
		Value:      input.Value,
		FeeHeadIDs: input.FeeHeadIDs,
		CreatedAt:  now,
	}, nil
}

// ListDiscounts returns a school's discounts.
func (r *Repository) ListDiscounts(ctx context.Context, schoolID int64) ([]Discount, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, school_id, name, kind, value, fee_head_ids, created_at
FROM discounts WHERE school_id = $1 ORDER BY id`, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Discount
	for rows.Next() {
		var d Discount
		if err := rows.Scan(&d.ID, &d.SchoolID, &d.Name, &d.Type, &d.Value, &d.FeeHeadIDs, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// InsertStudentFees inserts ledger records in one transaction,
// skipping (student, structure) pairs that already exist. Returns the
// number of rows actually inserted.
func (r *Repository) InsertStudentFees(ctx context.Context, records []StudentFee) (int, error) {
	inserted := 0
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, sf := range records {
			tag, err := tx.Exec(ctx, `INSERT INTO student_fees (student_id, fee_structure_id, academic_year_id, school_id, total_amount, paid_amount, due_amount, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (student_id, fee_structure_id) DO NOTHING`,
				sf.StudentID, sf.FeeStructureID, sf.AcademicYearID, sf.SchoolID, sf.TotalAmount, sf.PaidAmount, sf.DueAmount, sf.Status, sf.CreatedAt, sf.UpdatedAt)
			if err != nil {
				return err
			}
			inserted += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// GetStudentFee loads a ledger record by ID.
func (r *Repository) GetStudentFee(ctx context.Context, id int64) (*StudentFee, error) {
	sf, err := scanStudentFee(r.pool.QueryRow(ctx, `SELECT id, student_id, fee_structure_id, academic_year_id, school_id, total_amount, paid_amount, due_amount, status, created_at, updated_at
FROM student_fees WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentFeeNotFound
		}
		return nil, err
	}
	return sf, nil
}

// FindActiveStudentFee returns the student's most recent unpaid ledger
// record.
func (r *Repository) FindActiveStudentFee(ctx context.Context, studentID int64) (*StudentFee, error) {
	sf, err := scanStudentFee(r.pool.QueryRow(ctx, `SELECT id, student_id, fee_structure_id, academic_year_id, school_id, total_amount, paid_amount, due_amount, status, created_at, updated_at
FROM student_fees WHERE student_id = $1 AND status <> 'paid' ORDER BY created_at DESC LIMIT 1`, studentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentFeeNotFound
		}
		return nil, err
	}
	return sf, nil
}

// CountInstallments returns how many installments exist for a student fee.
func (r *Repository) CountInstallments(ctx context.Context, studentFeeID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM fee_installments WHERE student_fee_id = $1`, studentFeeID).Scan(&count)
	return count, err
}

// InsertInstallments persists a generated schedule as one atomic batch.
// The unique index on (student_fee_id, name) backstops the
// create-once guard against concurrent generation.
func (r *Repository) InsertInstallments(ctx context.Context, studentFeeID int64, schedule []ScheduledInstallment) ([]FeeInstallment, error) {
	now := time.Now()
	out := make([]FeeInstallment, 0, len(schedule))
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, s := range schedule {
			var id int64
			err := tx.QueryRow(ctx, `INSERT INTO fee_installments (student_fee_id, name, amount, paid_amount, due_date, status, created_at, updated_at)
VALUES ($1, $2, $3, 0, $4, $5, $6, $6) RETURNING id`,
				studentFeeID, s.Name, s.Amount, s.DueDate, InstallmentPending, now).Scan(&id)
			if err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
					return ErrAlreadyGenerated
				}
				return err
			}
			out = append(out, FeeInstallment{
				ID:           id,
				StudentFeeID: studentFeeID,
				Name:         s.Name,
				Amount:       s.Amount,
				DueDate:      s.DueDate,
				Status:       InstallmentPending,
				CreatedAt:    now,
				UpdatedAt:    now,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListInstallments returns a student fee's installments in due-date order.
func (r *Repository) ListInstallments(ctx context.Context, studentFeeID int64) ([]FeeInstallment, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, student_fee_id, name, amount, paid_amount, due_date, status, created_at, updated_at
FROM fee_installments WHERE student_fee_id = $1 ORDER BY due_date, id`, studentFeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []FeeInstallment
	for rows.Next() {
		var inst FeeInstallment
		if err := rows.Scan(&inst.ID, &inst.StudentFeeID, &inst.Name, &inst.Amount, &inst.PaidAmount, &inst.DueDate, &inst.Status, &inst.CreatedAt, &inst.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

// RecordPayment applies the three payment effects in one transaction:
// installment update, student fee cascade, payment insert. The
// installment and student fee rows are locked first so concurrent
// payments cannot race past the remaining-balance check.
func (r *Repository) RecordPayment(ctx context.Context, input PayInput, receiptNo string, now time.Time) (*PayResult, error) {
	var result PayResult
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var inst FeeInstallment
		err := tx.QueryRow(ctx, `SELECT id, student_fee_id, name, amount, paid_amount, due_date, status, created_at, updated_at
FROM fee_installments WHERE id = $1 FOR UPDATE`, input.InstallmentID).Scan(
			&inst.ID, &inst.StudentFeeID, &inst.Name, &inst.Amount, &inst.PaidAmount, &inst.DueDate, &inst.Status, &inst.CreatedAt, &inst.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrInstallmentNotFound
			}
			return err
		}

		sf, err := scanStudentFee(tx.QueryRow(ctx, `SELECT id, student_id, fee_structure_id, academic_year_id, school_id, total_amount, paid_amount, due_amount, status, created_at, updated_at
FROM student_fees WHERE id = $1 FOR UPDATE`, inst.StudentFeeID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrStudentFeeNotFound
			}
			return err
		}

		updatedInst, updatedFee, err := applyPayment(inst, *sf, input.Amount, now)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `UPDATE fee_installments SET paid_amount = $1, status = $2, updated_at = $3 WHERE id = $4`,
			updatedInst.PaidAmount, updatedInst.Status, updatedInst.UpdatedAt, updatedInst.ID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE student_fees SET paid_amount = $1, due_amount = $2, status = $3, updated_at = $4 WHERE id = $5`,
			updatedFee.PaidAmount, updatedFee.DueAmount, updatedFee.Status, updatedFee.UpdatedAt, updatedFee.ID); err != nil {
			return err
		}

		payment := Payment{
			InstallmentID: updatedInst.ID,
			StudentFeeID:  updatedFee.ID,
			AmountPaid:    input.Amount,
			Mode:          input.Mode,
			TransactionID: input.TransactionID,
			ReceiptNo:     receiptNo,
			PaidAt:        now,
			CreatedAt:     now,
		}
		if err := tx.QueryRow(ctx, `INSERT INTO payments (installment_id, student_fee_id, amount_paid, mode, transaction_id, receipt_no, paid_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
			payment.InstallmentID, payment.StudentFeeID, payment.AmountPaid, payment.Mode, payment.TransactionID, payment.ReceiptNo, payment.PaidAt, payment.CreatedAt).Scan(&payment.ID); err != nil {
			return err
		}

		result = PayResult{Installment: updatedInst, Payment: payment, StudentFee: updatedFee}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// MarkLateInstallments flips pending installments past their due date
// to late. Used by the overdue sweep job.
func (r *Repository) MarkLateInstallments(ctx context.Context, asOf time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE fee_installments SET status = $1, updated_at = $2
WHERE status = $3 AND due_date < $2`, InstallmentLate, asOf, InstallmentPending)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanStudentFee(row pgx.Row) (*StudentFee, error) {
	var sf StudentFee
	if err := row.Scan(&sf.ID, &sf.StudentID, &sf.FeeStructureID, &sf.AcademicYearID, &sf.SchoolID, &sf.TotalAmount, &sf.PaidAmount, &sf.DueAmount, &sf.Status, &sf.CreatedAt, &sf.UpdatedAt); err != nil {
		return nil, err
	}
	return &sf, nil
}
