package masterdata

import (
	"time"
)

// School represents one tenant of the platform.
type School struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AcademicYear is the yearly scoping unit (session) within a school.
type AcademicYear struct {
	ID        int64     `json:"id"`
	SchoolID  int64     `json:"schoolId"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// SchoolClass is a class (grade level) within a school.
type SchoolClass struct {
	ID        int64     `json:"id"`
	SchoolID  int64     `json:"schoolId"`
	Name      string    `json:"name"`
	Section   string    `json:"section"`
	CreatedAt time.Time `json:"createdAt"`
}

// FeeHead is a named category of charge, e.g. "Tuition Fee".
type FeeHead struct {
	ID        int64     `json:"id"`
	SchoolID  int64     `json:"schoolId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Student represents a learner registered in a school.
type Student struct {
	ID             int64     `json:"id"`
	SchoolID       int64     `json:"schoolId"`
	ClassID        int64     `json:"classId"`
	AdmissionNo    string    `json:"admissionNo"`
	FullName       string    `json:"fullName"`
	GuardianName   string    `json:"guardianName"`
	GuardianPhone  string    `json:"guardianPhone"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// StudentFilter narrows student listings.
type StudentFilter struct {
	SchoolID int64
	ClassID  int64
	Active   *bool
}
