package masterdata

import (
	"context"
	"fmt"

	"github.com/scholaris-erp/scholaris-erp/internal/platform/httpx"
)

// Repository defines data access for the masterdata catalog.
type Repository interface {
	CreateSchool(ctx context.Context, school School) (School, error)
	GetSchool(ctx context.Context, id int64) (School, error)
	ListSchools(ctx context.Context) ([]School, error)

	CreateAcademicYear(ctx context.Context, year AcademicYear) (AcademicYear, error)
	ListAcademicYears(ctx context.Context, schoolID int64) ([]AcademicYear, error)

	CreateClass(ctx context.Context, class SchoolClass) (SchoolClass, error)
	ListClasses(ctx context.Context, schoolID int64) ([]SchoolClass, error)

	CreateFeeHead(ctx context.Context, head FeeHead) (FeeHead, error)
	ListFeeHeads(ctx context.Context, schoolID int64) ([]FeeHead, error)

	CreateStudent(ctx context.Context, student Student) (Student, error)
	GetStudent(ctx context.Context, id int64) (Student, error)
	ListStudents(ctx context.Context, filter StudentFilter) ([]Student, error)
}

// Service handles masterdata business logic.
type Service struct {
	repo Repository
}

// NewService creates a masterdata service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", httpx.ErrValidation, msg)
}

// CreateSchool registers a new school tenant.
func (s *Service) CreateSchool(ctx context.Context, school School) (School, error) {
	if school.Name == "" {
		return School{}, validationError("school name required")
	}
	if school.Code == "" {
		return School{}, validationError("school code required")
	}
	return s.repo.CreateSchool(ctx, school)
}

// GetSchool loads a school by ID.
func (s *Service) GetSchool(ctx context.Context, id int64) (School, error) {
	if id <= 0 {
		return School{}, validationError("invalid school ID")
	}
	return s.repo.GetSchool(ctx, id)
}

// ListSchools returns all schools.
func (s *Service) ListSchools(ctx context.Context) ([]School, error) {
	return s.repo.ListSchools(ctx)
}

// CreateAcademicYear adds a session to a school.
func (s *Service) CreateAcademicYear(ctx context.Context, year AcademicYear) (AcademicYear, error) {
	if year.SchoolID <= 0 {
		return AcademicYear{}, validationError("school ID required")
	}
	if year.Name == "" {
		return AcademicYear{}, validationError("academic year name required")
	}
	if !year.EndDate.After(year.StartDate) {
		return AcademicYear{}, validationError("end date must be after start date")
	}
	return s.repo.CreateAcademicYear(ctx, year)
}

// ListAcademicYears returns a school's sessions.
func (s *Service) ListAcademicYears(ctx context.Context, schoolID int64) ([]AcademicYear, error) {
	if schoolID <= 0 {
		return nil, validationError("invalid school ID")
	}
	return s.repo.ListAcademicYears(ctx, schoolID)
}

// CreateClass adds a class to a school.
func (s *Service) CreateClass(ctx context.Context, class SchoolClass) (SchoolClass, error) {
	if class.SchoolID <= 0 {
		return SchoolClass{}, validationError("school ID required")
	}
	if class.Name == "" {
		return SchoolClass{}, validationError("class name required")
	}
	return s.repo.CreateClass(ctx, class)
}

// ListClasses returns a school's classes.
func (s *Service) ListClasses(ctx context.Context, schoolID int64) ([]SchoolClass, error) {
	if schoolID <= 0 {
		return nil, validationError("invalid school ID")
	}
	return s.repo.ListClasses(ctx, schoolID)
}

// CreateFeeHead adds a charge category to a school.
func (s *Service) CreateFeeHead(ctx context.Context, head FeeHead) (FeeHead, error) {
	if head.SchoolID <= 0 {
		return FeeHead{}, validationError("school ID required")
	}
	if head.Name == "" {
		return FeeHead{}, validationError("fee head name required")
	}
	return s.repo.CreateFeeHead(ctx, head)
}

// ListFeeHeads returns a school's charge categories.
func (s *Service) ListFeeHeads(ctx context.Context, schoolID int64) ([]FeeHead, error) {
	if schoolID <= 0 {
		return nil, validationError("invalid school ID")
	}
	return s.repo.ListFeeHeads(ctx, schoolID)
}

// CreateStudent registers a student.
func (s *Service) CreateStudent(ctx context.Context, student Student) (Student, error) {
	if student.SchoolID <= 0 {
		return Student{}, validationError("school ID required")
	}
	if student.FullName == "" {
		return Student{}, validationError("full name required")
	}
	if student.AdmissionNo == "" {
		return Student{}, validationError("admission number required")
	}
	return s.repo.CreateStudent(ctx, student)
}

// GetStudent loads a student by ID.
func (s *Service) GetStudent(ctx context.Context, id int64) (Student, error) {
	if id <= 0 {
		return Student{}, validationError("invalid student ID")
	}
	return s.repo.GetStudent(ctx, id)
}

// ListStudents returns students matching the filter.
func (s *Service) ListStudents(ctx context.Context, filter StudentFilter) ([]Student, error) {
	if filter.SchoolID <= 0 {
		return nil, validationError("school ID required")
	}
	return s.repo.ListStudents(ctx, filter)
}
