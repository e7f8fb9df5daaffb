package masterdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scholaris-erp/scholaris-erp/internal/platform/httpx"
)

const uniqueViolation = "23505"

// PGRepository provides PostgreSQL backed persistence for masterdata.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func translateUnique(err error, what string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s already exists", httpx.ErrConflict, what)
	}
	return err
}

// CreateSchool inserts a school. School codes are globally unique.
func (r *PGRepository) CreateSchool(ctx context.Context, school School) (School, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `INSERT INTO schools (code, name, address, created_at, updated_at)
VALUES ($1, $2, $3, $4, $4) RETURNING id`,
		school.Code, school.Name, school.Address, now).Scan(&school.ID)
	if err != nil {
		return School{}, translateUnique(err, "school code")
	}
	school.CreatedAt = now
	school.UpdatedAt = now
	return school, nil
}

// GetSchool loads a school by ID.
func (r *PGRepository) GetSchool(ctx context.Context, id int64) (School, error) {
	var s School
	err := r.pool.QueryRow(ctx, `SELECT id, code, name, address, created_at, updated_at FROM schools WHERE id = $1`, id).
		Scan(&s.ID, &s.Code, &s.Name, &s.Address, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return School{}, fmt.Errorf("%w: school", httpx.ErrNotFound)
		}
		return School{}, err
	}
	return s, nil
}

// ListSchools returns all schools.
func (r *PGRepository) ListSchools(ctx context.Context) ([]School, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, code, name, address, created_at, updated_at FROM schools ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []School
	for rows.Next() {
		var s School
		if err := rows.Scan(&s.ID, &s.Code, &s.Name, &s.Address, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CreateAcademicYear inserts a session. Names are unique per school.
func (r *PGRepository) CreateAcademicYear(ctx context.Context, year AcademicYear) (AcademicYear, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `INSERT INTO academic_years (school_id, name, start_date, end_date, active, created_at)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		year.SchoolID, year.Name, year.StartDate, year.EndDate, year.Active, now).Scan(&year.ID)
	if err != nil {
		return AcademicYear{}, translateUnique(err, "academic year")
	}
	year.CreatedAt = now
	return year, nil
}

// ListAcademicYears returns a school's sessions, newest first.
func (r *PGRepository) ListAcademicYears(ctx context.Context, schoolID int64) ([]AcademicYear, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, school_id, name, start_date, end_date, active, created_at
FROM academic_years WHERE school_id = $1 ORDER BY start_date DESC`, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AcademicYear
	for rows.Next() {
		var y AcademicYear
		if err := rows.Scan(&y.ID, &y.SchoolID, &y.Name, &y.StartDate, &y.EndDate, &y.Active, &y.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, y)
	}
	return out, rows.Err()
}

// CreateClass inserts a class. (Name, section) is unique per school.
func (r *PGRepository) CreateClass(ctx context.Context, class SchoolClass) (SchoolClass, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `INSERT INTO classes (school_id, name, section, created_at)
VALUES ($1, $2, $3, $4) RETURNING id`,
		class.SchoolID, class.Name, class.Section, now).Scan(&class.ID)
	if err != nil {
		return SchoolClass{}, translateUnique(err, "class")
	}
	class.CreatedAt = now
	return class, nil
}

// ListClasses returns a school's classes.
func (r *PGRepository) ListClasses(ctx context.Context, schoolID int64) ([]SchoolClass, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, school_id, name, section, created_at
FROM classes WHERE school_id = $1 ORDER BY name, section`, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SchoolClass
	for rows.Next() {
		var c SchoolClass
		if err := rows.Scan(&c.ID, &c.SchoolID, &c.Name, &c.Section, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateFeeHead inserts a charge category. Names are unique per school.
func (r *PGRepository) CreateFeeHead(ctx context.Context, head FeeHead) (FeeHead, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `INSERT INTO fee_heads (school_id, name, created_at)
VALUES ($1, $2, $3) RETURNING id`,
		head.SchoolID, head.Name, now).Scan(&head.ID)
	if err != nil {
		return FeeHead{}, translateUnique(err, "fee head")
	}
	head.CreatedAt = now
	return head, nil
}

// ListFeeHeads returns a school's charge categories.
func (r *PGRepository) ListFeeHeads(ctx context.Context, schoolID int64) ([]FeeHead, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, school_id, name, created_at
FROM fee_heads WHERE school_id = $1 ORDER BY name`, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []FeeHead
	for rows.Next() {
		var h FeeHead
		if err := rows.Scan(&h.ID, &h.SchoolID, &h.Name, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// CreateStudent inserts a student. Admission numbers are unique per school.
func (r *PGRepository) CreateStudent(ctx context.Context, student Student) (Student, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `INSERT INTO students (school_id, class_id, admission_no, full_name, guardian_name, guardian_phone, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8) RETURNING id`,
		student.SchoolID, student.ClassID, student.AdmissionNo, student.FullName, student.GuardianName, student.GuardianPhone, student.Active, now).Scan(&student.ID)
	if err != nil {
		return Student{}, translateUnique(err, "admission number")
	}
	student.CreatedAt = now
	student.UpdatedAt = now
	return student, nil
}

// GetStudent loads a student by ID.
func (r *PGRepository) GetStudent(ctx context.Context, id int64) (Student, error) {
	var s Student
	err := r.pool.QueryRow(ctx, `SELECT id, school_id, class_id, admission_no, full_name, guardian_name, guardian_phone, active, created_at, updated_at
FROM students WHERE id = $1`, id).
		Scan(&s.ID, &s.SchoolID, &s.ClassID, &s.AdmissionNo, &s.FullName, &s.GuardianName, &s.GuardianPhone, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Student{}, fmt.Errorf("%w: student", httpx.ErrNotFound)
		}
		return Student{}, err
	}
	return s, nil
}

// ListStudents returns students matching the filter.
func (r *PGRepository) ListStudents(ctx context.Context, filter StudentFilter) ([]Student, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, school_id, class_id, admission_no, full_name, guardian_name, guardian_phone, active, created_at, updated_at
FROM students
WHERE school_id = $1
  AND ($2 = 0 OR class_id = $2)
  AND ($3::boolean IS NULL OR active = $3)
ORDER BY full_name`, filter.SchoolID, filter.ClassID, filter.Active)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Student
	for rows.Next() {
		var s Student
		if err := rows.Scan(&s.ID, &s.SchoolID, &s.ClassID, &s.AdmissionNo, &s.FullName, &s.GuardianName, &s.GuardianPhone, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
