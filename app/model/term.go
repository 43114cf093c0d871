package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Semester akademik.
const (
	SemesterGanjil = "Ganjil"
	SemesterGenap  = "Genap"
	SemesterPendek = "Pendek"
)

var academicYearPattern = regexp.MustCompile(`^(\d{4})/(\d{4})$`)

// Term adalah pasangan (semester, tahun akademik), contoh "Ganjil 2025/2026".
type Term struct {
	Semester     string `gorm:"column:semester;type:varchar(10)" json:"semester"`
	AcademicYear string `gorm:"column:academic_year;type:varchar(9)" json:"academicYear"`
}

func (t Term) String() string {
	return t.Semester + " " + t.AcademicYear
}

func (t Term) IsZero() bool { return t.Semester == "" && t.AcademicYear == "" }

// ValidSemester mengecek nama semester.
func ValidSemester(s string) bool {
	switch s {
	case SemesterGanjil, SemesterGenap, SemesterPendek:
		return true
	}
	return false
}

// ValidAcademicYear mengecek format "YYYY/YYYY+1".
func ValidAcademicYear(s string) bool {
	m := academicYearPattern.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	a, _ := strconv.Atoi(m[1])
	b, _ := strconv.Atoi(m[2])
	return b == a+1
}

func (t Term) Validate() error {
	if !ValidSemester(t.Semester) {
		return fmt.Errorf("invalid semester %q", t.Semester)
	}
	if !ValidAcademicYear(t.AcademicYear) {
		return fmt.Errorf("invalid academic year %q", t.AcademicYear)
	}
	return nil
}

// ParseTerm membaca format "Ganjil 2025/2026".
func ParseTerm(s string) (Term, error) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return Term{}, fmt.Errorf("invalid term %q", s)
	}
	t := Term{Semester: parts[0], AcademicYear: parts[1]}
	return t, t.Validate()
}
