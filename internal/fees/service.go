package fees

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RepositoryPort defines data access methods for the fee core.
type RepositoryPort interface {
	CreateFeeStructure(ctx context.Context, input CreateFeeStructureInput) (*FeeStructure, error)
	GetFeeStructure(ctx context.Context, id int64) (*FeeStructure, error)
	ListFeeStructures(ctx context.Context, filter ListFeeStructuresFilter) ([]FeeStructureDetail, error)

	CreateDiscount(ctx context.Context, input CreateDiscountInput) (*Discount, error)
	ListDiscounts(ctx context.Context, schoolID int64) ([]Discount, error)

	InsertStudentFees(ctx context.Context, records []StudentFee) (int, error)
	GetStudentFee(ctx context.Context, id int64) (*StudentFee, error)
	FindActiveStudentFee(ctx context.Context, studentID int64) (*StudentFee, error)

	CountInstallments(ctx context.Context, studentFeeID int64) (int, error)
	InsertInstallments(ctx context.Context, studentFeeID int64, schedule []ScheduledInstallment) ([]FeeInstallment, error)
	ListInstallments(ctx context.Context, studentFeeID int64) ([]FeeInstallment, error)

	RecordPayment(ctx context.Context, input PayInput, receiptNo string, now time.Time) (*PayResult, error)
}

// CacheInvalidator drops derived report caches after ledger writes.
type CacheInvalidator interface {
	Bump(ctx context.Context) error
}

// ServiceConfig carries tunables for the fee core.
type ServiceConfig struct {
	// LateFinePerDay accrues on late installments per full day overdue.
	LateFinePerDay float64
}

// Service handles fee business logic.
type Service struct {
	repo        RepositoryPort
	invalidator CacheInvalidator
	finePerDay  float64
	now         func() time.Time
}

// NewService builds a Service instance. The invalidator may be nil.
func NewService(repo RepositoryPort, invalidator CacheInvalidator, cfg ServiceConfig) *Service {
	return &Service{repo: repo, invalidator: invalidator, finePerDay: cfg.LateFinePerDay, now: time.Now}
}

func (s *Service) bumpCaches(ctx context.Context) {
	if s.invalidator != nil {
		_ = s.invalidator.Bump(ctx)
	}
}

// CreateFeeStructure creates a priced fee definition. Duplicate
// (school, class, year, feeHead) tuples are rejected.
func (s *Service) CreateFeeStructure(ctx context.Context, input CreateFeeStructureInput) (*FeeStructure, error) {
	if input.SchoolID == 0 {
		return nil, validationError("school ID required")
	}
	if input.ClassID == 0 {
		return nil, validationError("class ID required")
	}
	if input.AcademicYearID == 0 {
		return nil, validationError("academic year ID required")
	}
	if input.FeeHeadID == 0 {
		return nil, validationError("fee head ID required")
	}
	if input.Amount < 0 {
		return nil, validationError("amount must not be negative")
	}
	if !input.Frequency.Valid() {
		return nil, validationError("frequency must be monthly, quarterly or yearly")
	}
	return s.repo.CreateFeeStructure(ctx, input)
}

// ListFeeStructures returns structures matching the filter with joined names.
func (s *Service) ListFeeStructures(ctx context.Context, filter ListFeeStructuresFilter) ([]FeeStructureDetail, error) {
	return s.repo.ListFeeStructures(ctx, filter)
}

// CreateDiscount creates a discount policy for a school.
func (s *Service) CreateDiscount(ctx context.Context, input CreateDiscountInput) (*Discount, error) {
	if input.SchoolID == 0 {
		return nil, validationError("school ID required")
	}
	if input.Name == "" {
		return nil, validationError("name required")
	}
	switch input.Type {
	case DiscountPercentage:
		if input.Value < 0 || input.Value > 100 {
			return nil, validationError("percentage discount must be between 0 and 100")
		}
	case DiscountFlat:
		if input.Value < 0 {
			return nil, validationError("flat discount must not be negative")
		}
	default:
		return nil, validationError("discount type must be percentage or flat")
	}
	return s.repo.CreateDiscount(ctx, input)
}

// ListDiscounts returns a school's discount policies.
func (s *Service) ListDiscounts(ctx context.Context, schoolID int64) ([]Discount, error) {
	if schoolID == 0 {
		return nil, validationError("school ID required")
	}
	return s.repo.ListDiscounts(ctx, schoolID)
}

// Assign instantiates a fee structure for one student or a batch.
// Existing (student, structure) pairs are skipped; everything else is
// inserted. The result reports inserted and skipped counts.
func (s *Service) Assign(ctx context.Context, input AssignInput) (*AssignResult, error) {
	if input.FeeStructureID == 0 {
		return nil, validationError("fee structure ID required")
	}
	if input.AcademicYearID == 0 {
		return nil, validationError("academic year ID required")
	}
	if input.SchoolID == 0 {
		return nil, validationError("school ID required")
	}
	if input.StudentID != 0 && len(input.StudentIDs) > 0 {
		return nil, validationError("provide either studentId or studentIds, not both")
	}
	targets := input.StudentIDs
	if input.StudentID != 0 {
		targets = []int64{input.StudentID}
	}
	if len(targets) == 0 {
		return nil, validationError("at least one student required")
	}
	if input.CustomAmount != nil && *input.CustomAmount < 0 {
		return nil, validationError("custom amount must not be negative")
	}

	structure, err := s.repo.GetFeeStructure(ctx, input.FeeStructureID)
	if err != nil {
		return nil, err
	}

	total := structure.Amount
	if input.CustomAmount != nil {
		total = *input.CustomAmount
	}

	now := s.now()
	records := make([]StudentFee, 0, len(targets))
	for _, studentID := range targets {
		records = append(records, StudentFee{
			StudentID:      studentID,
			FeeStructureID: structure.ID,
			AcademicYearID: input.AcademicYearID,
			SchoolID:       input.SchoolID,
			TotalAmount:    total,
			PaidAmount:     0,
			DueAmount:      total,
			Status:         StudentFeePending,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	inserted, err := s.repo.InsertStudentFees(ctx, records)
	if err != nil {
		return nil, err
	}
	if inserted > 0 {
		s.bumpCaches(ctx)
	}
	return &AssignResult{AssignedCount: inserted, SkippedCount: len(targets) - inserted}, nil
}

// Generate creates the installment schedule for a student fee. The
// operation is create-once: a second call conflicts.
func (s *Service) Generate(ctx context.Context, studentFeeID int64) ([]FeeInstallment, error) {
	if studentFeeID == 0 {
		return nil, validationError("student fee ID required")
	}
	sf, err := s.repo.GetStudentFee(ctx, studentFeeID)
	if err != nil {
		return nil, err
	}
	structure, err := s.repo.GetFeeStructure(ctx, sf.FeeStructureID)
	if err != nil {
		return nil, err
	}
	if !structure.Frequency.Valid() {
		return nil, validationError("fee structure has no valid frequency")
	}
	existing, err := s.repo.CountInstallments(ctx, sf.ID)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrAlreadyGenerated
	}
	schedule, err := BuildSchedule(sf.TotalAmount, structure.Frequency, s.now())
	if err != nil {
		return nil, validationError(err.Error())
	}
	installments, err := s.repo.InsertInstallments(ctx, sf.ID, schedule)
	if err != nil {
		return nil, err
	}
	s.bumpCaches(ctx)
	return installments, nil
}

// GenerateForStudent resolves the student's active fee and generates
// its schedule.
func (s *Service) GenerateForStudent(ctx context.Context, studentID int64) ([]FeeInstallment, error) {
	if studentID == 0 {
		return nil, validationError("student ID required")
	}
	sf, err := s.repo.FindActiveStudentFee(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.Generate(ctx, sf.ID)
}

// ListInstallments returns a student fee's installments in due-date
// order, with the accrued late fine computed at read time.
func (s *Service) ListInstallments(ctx context.Context, studentFeeID int64) ([]FeeInstallment, error) {
	if studentFeeID == 0 {
		return nil, validationError("student fee ID required")
	}
	if _, err := s.repo.GetStudentFee(ctx, studentFeeID); err != nil {
		return nil, err
	}
	installments, err := s.repo.ListInstallments(ctx, studentFeeID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range installments {
		installments[i].LateFine = LateFine(installments[i], s.finePerDay, now)
	}
	return installments, nil
}

// Pay records a payment against an installment and cascades the balance
// to the owning student fee. All three effects happen in one
// transaction; precondition violations abort before any mutation.
func (s *Service) Pay(ctx context.Context, input PayInput) (*PayResult, error) {
	if input.InstallmentID == 0 {
		return nil, validationError("installment ID required")
	}
	if input.Amount <= 0 {
		return nil, validationError("amount must be positive")
	}
	if !input.Mode.Valid() {
		return nil, validationError("payment mode must be cash, online or cheque")
	}
	receiptNo := "RCP-" + uuid.NewString()
	result, err := s.repo.RecordPayment(ctx, input, receiptNo, s.now())
	if err != nil {
		return nil, err
	}
	s.bumpCaches(ctx)
	return result, nil
}

const amountEpsilon = 1e-6

// applyPayment computes the post-payment state of an installment and
// its student fee. It is the single place the settlement rules live;
// both the SQL and in-memory repositories call it after loading rows.
func applyPayment(inst FeeInstallment, sf StudentFee, amount float64, now time.Time) (FeeInstallment, StudentFee, error) {
	if inst.Status == InstallmentPaid {
		return inst, sf, ErrInstallmentPaid
	}
	remaining := inst.Amount - inst.PaidAmount
	if amount > remaining+amountEpsilon {
		return inst, sf, overPaymentError(remaining)
	}

	inst.PaidAmount += amount
	if inst.PaidAmount >= inst.Amount-amountEpsilon {
		inst.Status = InstallmentPaid
	} else {
		inst.Status = InstallmentPartial
	}
	inst.UpdatedAt = now

	sf.PaidAmount += amount
	sf.DueAmount -= amount
	if sf.DueAmount <= amountEpsilon {
		sf.Status = StudentFeePaid
	} else {
		sf.Status = StudentFeePartial
	}
	sf.UpdatedAt = now

	return inst, sf, nil
}
