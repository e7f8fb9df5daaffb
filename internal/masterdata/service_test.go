package masterdata

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/scholaris-erp/scholaris-erp/internal/platform/httpx"
)

type memoryMasterRepo struct {
	schools  map[int64]*School
	years    map[int64]*AcademicYear
	classes  map[int64]*SchoolClass
	heads    map[int64]*FeeHead
	students map[int64]*Student
	nextID   int64
}

func newMemoryMasterRepo() *memoryMasterRepo {
	return &memoryMasterRepo{
		schools:  make(map[int64]*School),
		years:    make(map[int64]*AcademicYear),
		classes:  make(map[int64]*SchoolClass),
		heads:    make(map[int64]*FeeHead),
		students: make(map[int64]*Student),
	}
}

func (r *memoryMasterRepo) id() int64 {
	r.nextID++
	return r.nextID
}

func (r *memoryMasterRepo) CreateSchool(ctx context.Context, school School) (School, error) {
	for _, s := range r.schools {
		if s.Code == school.Code {
			return School{}, fmt.Errorf("%w: school code already exists", httpx.ErrConflict)
		}
	}
	school.ID = r.id()
	school.CreatedAt = time.Now()
	r.schools[school.ID] = &school
	return school, nil
}

func (r *memoryMasterRepo) GetSchool(ctx context.Context, id int64) (School, error) {
	s, ok := r.schools[id]
	if !ok {
		return School{}, fmt.Errorf("%w: school", httpx.ErrNotFound)
	}
	return *s, nil
}

func (r *memoryMasterRepo) ListSchools(ctx context.Context) ([]School, error) {
	var out []School
	for _, s := range r.schools {
		out = append(out, *s)
	}
	return out, nil
}

func (r *memoryMasterRepo) CreateAcademicYear(ctx context.Context, year AcademicYear) (AcademicYear, error) {
	year.ID = r.id()
	r.years[year.ID] = &year
	return year, nil
}

func (r *memoryMasterRepo) ListAcademicYears(ctx context.Context, schoolID int64) ([]AcademicYear, error) {
	var out []AcademicYear
	for _, y := range r.years {
		if y.SchoolID == schoolID {
			out = append(out, *y)
		}
	}
	return out, nil
}

func (r *memoryMasterRepo) CreateClass(ctx context.Context, class SchoolClass) (SchoolClass, error) {
	class.ID = r.id()
	r.classes[class.ID] = &class
	return class, nil
}

func (r *memoryMasterRepo) ListClasses(ctx context.Context, schoolID int64) ([]SchoolClass, error) {
	var out []SchoolClass
	for _, c := range r.classes {
		if c.SchoolID == schoolID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memoryMasterRepo) CreateFeeHead(ctx context.Context, head FeeHead) (FeeHead, error) {
	head.ID = r.id()
	r.heads[head.ID] = &head
	return head, nil
}

func (r *memoryMasterRepo) ListFeeHeads(ctx context.Context, schoolID int64) ([]FeeHead, error) {
	var out []FeeHead
	for _, h := range r.heads {
		if h.SchoolID == schoolID {
			out = append(out, *h)
		}
	}
	return out, nil
}

func (r *memoryMasterRepo) CreateStudent(ctx context.Context, student Student) (Student, error) {
	for _, s := range r.students {
		if s.SchoolID == student.SchoolID && s.AdmissionNo == student.AdmissionNo {
			return Student{}, fmt.Errorf("%w: admission number already exists", httpx.ErrConflict)
		}
	}
	student.ID = r.id()
	r.students[student.ID] = &student
	return student, nil
}

func (r *memoryMasterRepo) GetStudent(ctx context.Context, id int64) (Student, error) {
	s, ok := r.students[id]
	if !ok {
		return Student{}, fmt.Errorf("%w: student", httpx.ErrNotFound)
	}
	return *s, nil
}

func (r *memoryMasterRepo) ListStudents(ctx context.Context, filter StudentFilter) ([]Student, error) {
	var out []Student
	for _, s := range r.students {
		if s.SchoolID != filter.SchoolID {
			continue
		}
		if filter.ClassID != 0 && s.ClassID != filter.ClassID {
			continue
		}
		if filter.Active != nil && s.Active != *filter.Active {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func TestCreateSchoolValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryMasterRepo())

	_, err := svc.CreateSchool(ctx, School{Code: "GHS"})
	require.Error(t, err)
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.CreateSchool(ctx, School{Name: "Greenwood High"})
	require.Error(t, err)

	school, err := svc.CreateSchool(ctx, School{Code: "GHS", Name: "Greenwood High"})
	require.NoError(t, err)
	require.NotZero(t, school.ID)
}

func TestCreateSchoolDuplicateCode(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryMasterRepo())

	_, err := svc.CreateSchool(ctx, School{Code: "GHS", Name: "Greenwood High"})
	require.NoError(t, err)

	_, err = svc.CreateSchool(ctx, School{Code: "GHS", Name: "Another School"})
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestCreateAcademicYearRequiresOrderedDates(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryMasterRepo())

	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.CreateAcademicYear(ctx, AcademicYear{
		SchoolID:  1,
		Name:      "2026-27",
		StartDate: start,
		EndDate:   start,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "end date")

	year, err := svc.CreateAcademicYear(ctx, AcademicYear{
		SchoolID:  1,
		Name:      "2026-27",
		StartDate: start,
		EndDate:   start.AddDate(1, 0, 0),
	})
	require.NoError(t, err)
	require.NotZero(t, year.ID)
}

func TestCreateStudentValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryMasterRepo())

	_, err := svc.CreateStudent(ctx, Student{SchoolID: 1, FullName: "Asha Verma"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "admission number")

	student, err := svc.CreateStudent(ctx, Student{
		SchoolID:    1,
		ClassID:     2,
		AdmissionNo: "ADM-001",
		FullName:    "Asha Verma",
		Active:      true,
	})
	require.NoError(t, err)
	require.NotZero(t, student.ID)
}

func TestListStudentsFiltersByClassAndActive(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryMasterRepo()
	svc := NewService(repo)

	_, err := svc.CreateStudent(ctx, Student{SchoolID: 1, ClassID: 2, AdmissionNo: "A1", FullName: "One", Active: true})
	require.NoError(t, err)
	_, err = svc.CreateStudent(ctx, Student{SchoolID: 1, ClassID: 3, AdmissionNo: "A2", FullName: "Two", Active: true})
	require.NoError(t, err)
	_, err = svc.CreateStudent(ctx, Student{SchoolID: 1, ClassID: 2, AdmissionNo: "A3", FullName: "Three", Active: false})
	require.NoError(t, err)

	students, err := svc.ListStudents(ctx, StudentFilter{SchoolID: 1, ClassID: 2})
	require.NoError(t, err)
	require.Len(t, students, 2)

	active := true
	students, err = svc.ListStudents(ctx, StudentFilter{SchoolID: 1, ClassID: 2, Active: &active})
	require.NoError(t, err)
	require.Len(t, students, 1)
	require.Equal(t, "One", students[0].FullName)

	_, err = svc.ListStudents(ctx, StudentFilter{})
	require.Error(t, err)
}
