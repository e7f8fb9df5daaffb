package fees

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryFeesRepo struct {
	structures   map[int64]*FeeStructure
	discounts    map[int64]*Discount
	studentFees  map[int64]*StudentFee
	installments map[int64]*FeeInstallment
	payments     map[int64]*Payment

	nextStructureID   int64
	nextDiscountID    int64
	nextStudentFeeID  int64
	nextInstallmentID int64
	nextPaymentID     int64
}

func newMemoryFeesRepo() *memoryFeesRepo {
	return &memoryFeesRepo{
		structures:   make(map[int64]*FeeStructure),
		discounts:    make(map[int64]*Discount),
		studentFees:  make(map[int64]*StudentFee),
		installments: make(map[int64]*FeeInstallment),
		payments:     make(map[int64]*Payment),
	}
}

func (r *memoryFeesRepo) CreateFeeStructure(ctx context.Context, input CreateFeeStructureInput) (*FeeStructure, error) {
	for _, fs := range r.structures {
		if fs.SchoolID == input.SchoolID && fs.ClassID == input.ClassID &&
			fs.AcademicYearID == input.AcademicYearID && fs.FeeHeadID == input.FeeHeadID {
			return nil, ErrStructureExists
		}
	}
	r.nextStructureID++
	now := time.Now()
	fs := &FeeStructure{
		ID:             r.nextStructureID,
		SchoolID:       input.SchoolID,
		ClassID:        input.ClassID,
		AcademicYearID: input.AcademicYearID,
		FeeHeadID:      input.FeeHeadID,
		Amount:         input.Amount,
		Frequency:      input.Frequency,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	r.structures[fs.ID] = fs
	return fs, nil
}

func (r *memoryFeesRepo) GetFeeStructure(ctx context.Context, id int64) (*FeeStructure, error) {
	fs, ok := r.structures[id]
	if !ok {
		return nil, ErrStructureNotFound
	}
	return fs, nil
}

func (r *memoryFeesRepo) ListFeeStructures(ctx context.Context, filter ListFeeStructuresFilter) ([]FeeStructureDetail, error) {
	var out []FeeStructureDetail
	for _, fs := range r.structures {
		if filter.SchoolID != 0 && fs.SchoolID != filter.SchoolID {
			continue
		}
		if filter.ClassID != 0 && fs.ClassID != filter.ClassID {
			continue
		}
		if filter.AcademicYearID != 0 && fs.AcademicYearID != filter.AcademicYearID {
			continue
		}
		out = append(out, FeeStructureDetail{FeeStructure: *fs})
	}
	return out, nil
}

func (r *memoryFeesRepo) CreateDiscount(ctx context.Context, input CreateDiscountInput) (*Discount, error) {
	r.nextDiscountID++
	d := &Discount{
		ID:         r.nextDiscountID,
		SchoolID:   input.SchoolID,
		Name:       input.Name,
		Type:       input.Type,
		Value:      input.Value,
		FeeHeadIDs: input.FeeHeadIDs,
		CreatedAt:  time.Now(),
	}
	r.discounts[d.ID] = d
	return d, nil
}

func (r *memoryFeesRepo) ListDiscounts(ctx context.Context, schoolID int64) ([]Discount, error) {
	var out []Discount
	for _, d := range r.discounts {
		if d.SchoolID == schoolID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *memoryFeesRepo) InsertStudentFees(ctx context.Context, records []StudentFee) (int, error) {
	inserted := 0
	for _, rec := range records {
		exists := false
		for _, sf := range r.studentFees {
			if sf.StudentID == rec.StudentID && sf.FeeStructureID == rec.FeeStructureID {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		r.nextStudentFeeID++
		rec.ID = r.nextStudentFeeID
		copied := rec
		r.studentFees[copied.ID] = &copied
		inserted++
	}
	return inserted, nil
}

func (r *memoryFeesRepo) GetStudentFee(ctx context.Context, id int64) (*StudentFee, error) {
	sf, ok := r.studentFees[id]
	if !ok {
		return nil, ErrStudentFeeNotFound
	}
	return sf, nil
}

func (r *memoryFeesRepo) FindActiveStudentFee(ctx context.Context, studentID int64) (*StudentFee, error) {
	var latest *StudentFee
	for _, sf := range r.studentFees {
		if sf.StudentID != studentID || sf.Status == StudentFeePaid {
			continue
		}
		if latest == nil || sf.ID > latest.ID {
			latest = sf
		}
	}
	if latest == nil {
		return nil, ErrStudentFeeNotFound
	}
	return latest, nil
}

func (r *memoryFeesRepo) CountInstallments(ctx context.Context, studentFeeID int64) (int, error) {
	count := 0
	for _, inst := range r.installments {
		if inst.StudentFeeID == studentFeeID {
			count++
		}
	}
	return count, nil
}

func (r *memoryFeesRepo) InsertInstallments(ctx context.Context, studentFeeID int64, schedule []ScheduledInstallment) ([]FeeInstallment, error) {
	existing, _ := r.CountInstallments(ctx, studentFeeID)
	if existing > 0 {
		return nil, ErrAlreadyGenerated
	}
	now := time.Now()
	out := make([]FeeInstallment, 0, len(schedule))
	for _, item := range schedule {
		r.nextInstallmentID++
		inst := FeeInstallment{
			ID:           r.nextInstallmentID,
			StudentFeeID: studentFeeID,
			Name:         item.Name,
			Amount:       item.Amount,
			DueDate:      item.DueDate,
			Status:       InstallmentPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		copied := inst
		r.installments[inst.ID] = &copied
		out = append(out, inst)
	}
	return out, nil
}

func (r *memoryFeesRepo) ListInstallments(ctx context.Context, studentFeeID int64) ([]FeeInstallment, error) {
	var out []FeeInstallment
	for _, inst := range r.installments {
		if inst.StudentFeeID == studentFeeID {
			out = append(out, *inst)
		}
	}
	return out, nil
}

func (r *memoryFeesRepo) RecordPayment(ctx context.Context, input PayInput, receiptNo string, now time.Time) (*PayResult, error) {
	inst, ok := r.installments[input.InstallmentID]
	if !ok {
		return nil, ErrInstallmentNotFound
	}
	sf, ok := r.studentFees[inst.StudentFeeID]
	if !ok {
		return nil, ErrStudentFeeNotFound
	}
	updatedInst, updatedSF, err := applyPayment(*inst, *sf, input.Amount, now)
	if err != nil {
		return nil, err
	}
	*inst = updatedInst
	*sf = updatedSF

	r.nextPaymentID++
	payment := Payment{
		ID:            r.nextPaymentID,
		InstallmentID: inst.ID,
		StudentFeeID:  sf.ID,
		AmountPaid:    input.Amount,
		Mode:          input.Mode,
		TransactionID: input.TransactionID,
		ReceiptNo:     receiptNo,
		PaidAt:        now,
		CreatedAt:     now,
	}
	copied := payment
	r.payments[payment.ID] = &copied
	return &PayResult{Installment: updatedInst, Payment: payment, StudentFee: updatedSF}, nil
}

type countingInvalidator struct {
	bumps int
}

func (c *countingInvalidator) Bump(ctx context.Context) error {
	c.bumps++
	return nil
}

func newTestService(repo *memoryFeesRepo) (*Service, *countingInvalidator) {
	inv := &countingInvalidator{}
	svc := NewService(repo, inv, ServiceConfig{LateFinePerDay: 10})
	return svc, inv
}

func seedStructure(t *testing.T, repo *memoryFeesRepo, amount float64, freq FeeFrequency) *FeeStructure {
	t.Helper()
	fs, err := repo.CreateFeeStructure(context.Background(), CreateFeeStructureInput{
		SchoolID:       1,
		ClassID:        2,
		AcademicYearID: 3,
		FeeHeadID:      4,
		Amount:         amount,
		Frequency:      freq,
	})
	require.NoError(t, err)
	return fs
}

func TestCreateFeeStructureRejectsInvalidFrequency(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryFeesRepo()
	svc, _ := newTestService(repo)

	_, err := svc.CreateFeeStructure(ctx, CreateFeeStructureInput{
		SchoolID:       1,
		ClassID:        2,
		AcademicYearID: 3,
		FeeHeadID:      4,
		Amount:         1000,
		Frequency:      "weekly",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "frequency")
}

func TestCreateFeeStructureDuplicateTuple(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryFeesRepo()
	svc, _ := newTestService(repo)

	input := CreateFeeStructureInput{
		SchoolID:       1,
		ClassID:        2,
		AcademicYearID: 3,
		FeeHeadID:      4,
		Amount:         1000,
		Frequency:      FrequencyMonthly,
	}
	_, err := svc.CreateFeeStructure(ctx, input)
	require.NoError(t, err)

	_, err = svc.CreateFeeStructure(ctx, input)
	require.ErrorIs(t, err, ErrStructureExists)
}

func TestCreateDiscountValidation(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryFeesRepo()
	svc, _ := newTestService(repo)

	_, err := svc.CreateDiscount(ctx, CreateDiscountInput{
		SchoolID: 1,
		Name:     "Sibling",
		Type:     DiscountPercentage,
		Value:    150,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "between 0 and 100")

	_, err = svc.CreateDiscount(ctx, CreateDiscountInput{
		SchoolID: 1,
		Name:     "Scholarship",
		Type:     DiscountFlat,
		Value:    -5,
	})
	require.Error(t, err)

	d, err := svc.CreateDiscount(ctx, CreateDiscountInput{
		SchoolID: 1,
		Name:     "Sibling",
		Type:     DiscountPercentage,
		Value:    10,
	})
	require.NoError(t, err)
	require.Equal(t, 10.0, d.Value)
}

func TestAssignRejectsBothSingleAndBatch(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryFeesRepo()
	svc, _ := newTestService(repo)
	fs := seedStructure(t, repo, 12000, FrequencyMonthly)

	_, err := svc.Assign(ctx, AssignInput{
		FeeStructureID: fs.ID,
		StudentID:      7,
		StudentIDs:     []int64{8, 9},
		AcademicYearID: 3,
		SchoolID:       1,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "not both")
}

func TestAssignSingleStudent(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryFeesRepo()
	svc, inv := newTestService(repo)
	fs := seedStructure(t, repo, 12000, FrequencyMonthly)

	result, err := svc.Assign(ctx, AssignInput{
		FeeStructureID: fs.ID,
		StudentID:      7,
		AcademicYearID: 3,
		SchoolID:       1,
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.AssignedCount)
	require.Equal(t, 0, result.SkippedCount)
	require.Equal(t, 1, inv.bumps)

	sf, err := repo.FindActiveStudentFee(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, 12000.0, sf.TotalAmount)
	require.Equal(t, 12000.0, sf.DueAmount)
	require.Equal(t, 0.0, sf.PaidAmount)
	require.Equal(t, StudentFeePending, sf.Status)
}

func TestAssignBatchSkipsExisting(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryFeesRepo()
	svc, _ := newTestService(repo)
	fs := seedStructure(t, repo, 9000, FrequencyQuarterly)

	result, err := svc.Assign(ctx, AssignInput{
		FeeStructureID: fs.ID,
		StudentIDs:     []int64{7, 8},
		AcademicYearID: 3,
		SchoolID:       1,
	})
	require.NoError(t, err)
	require.Equal(t, 2, result.AssignedCount)

	result, err = svc.Assign(ctx, AssignInput{
		FeeStructureID: fs.ID,
		StudentIDs:     []int64{7, 8, 9},
		AcademicYearID: 3,
		SchoolID:       1,
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.AssignedCount)
	require.Equal(t, 2, result.SkippedCount)
}

func TestAssignCustomAmountOverridesStructure(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryFeesRepo()
	svc, _ := newTestService(repo)
	fs := seedStructure(t, repo, 12000, FrequencyMonthly)

	custom := 6000.0
	_, err := svc.Assign(ctx, AssignInput{
		FeeStructureID: fs.ID,
		StudentID:      7,
		AcademicYearID: 3,
		SchoolID:       1,
		CustomAmount:   &custom,
	})
	require.NoError(t, err)

	sf, err := repo.FindActiveStudentFee(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, 6000.0, sf.TotalAmount)
}

func assignAndGenerate(t *testing.T, svc *Service, repo *memoryFeesRepo, amount float64, freq FeeFrequency) (*StudentFee, []FeeInstallment) {
	t.Helper()
	ctx := context.Background()
	fs := seedStructure(t, repo, amount, freq)
	_, err := svc.Assign(ctx, AssignInput{
		FeeStructureID: fs.ID,
		StudentID:      7,
		AcademicYearID: 3,
		SchoolID:       1,
	})
	require.NoError(t, err)
	sf, err := repo.FindActiveStudentFee(ctx, 7)
	require.NoError(t, err)
	installments, err := svc.Generate(ctx, sf.ID)
	require.NoError(t, err)
	return sf, installments
}

func TestGenerateMonthlySchedule(t *testing.T) {
	repo := newMemoryFeesRepo()
	svc, _ := newTestService(repo)

	_, installments := assignAndGenerate(t, svc, repo, 12000, FrequencyMonthly)
	require.Len(t, installments, 12)

	var sum float64
	for _, inst := range installments {
		require.Equal(t, InstallmentPending, inst.Status)
		sum += inst.Amount
	}
	require.InDelta(t, 12000, sum, 0.001)
}

func TestGenerateTwiceConflicts(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryFeesRepo()
	svc, _ := newTestService(repo)

	sf, _ := assignAndGenerate(t, svc, repo, 9000, FrequencyQuarterly)

	_, err := svc.Generate(ctx, sf.ID)
	require.ErrorIs(t, err, ErrAlreadyGenerated)
}

func TestGenerateForStudentResolvesActiveFee(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryFeesRepo()
	svc, _ := newTestService(repo)
	fs := seedStructure(t, repo, 5000, FrequencyYearly)

	_, err := svc.Assign(ctx, AssignInput{
		FeeStructureID: fs.ID,
		StudentID:      7,
		AcademicYearID: 3,
		SchoolID:       1,
	})
	require.NoError(t, err)

	installments, err := svc.GenerateForStudent(ctx, 7)
	require.NoError(t, err)
	require.Len(t, installments, 1)
	require.Equal(t, 5000.0, installments[0].Amount)
}

func TestGenerateForStudentWithoutFee(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryFeesRepo()
	svc, _ := newTestService(repo)

	_, err := svc.GenerateForStudent(ctx, 99)
	require.ErrorIs(t, err, ErrStudentFeeNotFound)
}

func TestPayPartialThenFull(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryFeesRepo()
	svc, inv := newTestService(repo)

	sf, installments := assignAndGenerate(t, svc, repo, 12000, FrequencyMonthly)
	first := installments[0]
	bumpsBefore := inv.bumps

	result, err := svc.Pay(ctx, PayInput{InstallmentID: first.ID, Amount: 400, Mode: ModeCash})
	require.NoError(t, err)
	require.Equal(t, InstallmentPartial, result.Installment.Status)
	require.Equal(t, 400.0, result.Installment.PaidAmount)
	require.Equal(t, StudentFeePartial, result.StudentFee.Status)
	require.Equal(t, 400.0, result.StudentFee.PaidAmount)
	require.Equal(t, 11600.0, result.StudentFee.DueAmount)
	require.NotEmpty(t, result.Payment.ReceiptNo)
	require.Equal(t, inv.bumps, bumpsBefore+1)

	result, err = svc.Pay(ctx, PayInput{InstallmentID: first.ID, Amount: 600, Mode: ModeOnline})
	require.NoError(t, err)
	require.Equal(t, InstallmentPaid, result.Installment.Status)
	require.Equal(t, first.Amount, result.Installment.PaidAmount)

	stored := repo.studentFees[sf.ID]
	require.InDelta(t, stored.TotalAmount, stored.PaidAmount+stored.DueAmount, 0.001)
}

func TestPayRejectsOverpayment(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryFeesRepo()
	svc, _ := newTestService(repo)

	_, installments := assignAndGenerate(t, svc, repo, 12000, FrequencyMonthly)
	first := installments[0]

	_, err := svc.Pay(ctx, PayInput{InstallmentID: first.ID, Amount: first.Amount + 1, Mode: ModeCash})
	require.ErrorIs(t, err, ErrOverPayment)
	require.Contains(t, err.Error(), "remaining")

	stored := repo.installments[first.ID]
	require.Equal(t, 0.0, stored.PaidAmount)
	require.Equal(t, InstallmentPending, stored.Status)
}

func TestPayRejectsSettledInstallment(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryFeesRepo()
	svc, _ := newTestService(repo)

	_, installments := assignAndGenerate(t, svc, repo, 12000, FrequencyMonthly)
	first := installments[0]

	_, err := svc.Pay(ctx, PayInput{InstallmentID: first.ID, Amount: first.Amount, Mode: ModeCash})
	require.NoError(t, err)

	_, err = svc.Pay(ctx, PayInput{InstallmentID: first.ID, Amount: 1, Mode: ModeCash})
	require.ErrorIs(t, err, ErrInstallmentPaid)
}

func TestPayValidatesMode(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryFeesRepo()
	svc, _ := newTestService(repo)

	_, err := svc.Pay(ctx, PayInput{InstallmentID: 1, Amount: 100, Mode: "barter"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "payment mode")
}

func TestPayFullScheduleSettlesStudentFee(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryFeesRepo()
	svc, _ := newTestService(repo)

	sf, installments := assignAndGenerate(t, svc, repo, 9000, FrequencyQuarterly)
	for _, inst := range installments {
		_, err := svc.Pay(ctx, PayInput{InstallmentID: inst.ID, Amount: inst.Amount, Mode: ModeCheque})
		require.NoError(t, err)
	}

	stored := repo.studentFees[sf.ID]
	require.Equal(t, StudentFeePaid, stored.Status)
	require.InDelta(t, 0, stored.DueAmount, 0.001)
	require.InDelta(t, stored.TotalAmount, stored.PaidAmount, 0.001)
}

func TestListInstallmentsComputesLateFine(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryFeesRepo()
	svc, _ := newTestService(repo)

	sf, installments := assignAndGenerate(t, svc, repo, 12000, FrequencyMonthly)
	first := repo.installments[installments[0].ID]
	first.Status = InstallmentLate
	first.DueDate = time.Now().AddDate(0, 0, -3).Add(time.Hour)

	listed, err := svc.ListInstallments(ctx, sf.ID)
	require.NoError(t, err)

	var found bool
	for _, inst := range listed {
		if inst.ID == first.ID {
			found = true
			require.Equal(t, 30.0, inst.LateFine)
		} else {
			require.Equal(t, 0.0, inst.LateFine)
		}
	}
	require.True(t, found)
}
