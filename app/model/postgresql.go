package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User merepresentasikan akun (superadmin, admin, dekan, kaprodi, dosen, mahasiswa).
// Role adalah primary role, role tambahan ada di UserRoles.
type User struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username      string     `gorm:"unique;not null" json:"username"`
	Email         string     `gorm:"unique;not null" json:"email"`
	PasswordHash  string     `gorm:"not null" json:"-"`
	FullName      string     `gorm:"not null" json:"fullName"`
	Role          string     `gorm:"type:varchar(50);not null" json:"role"`
	InstitutionID *int64     `gorm:"index" json:"institutionId,omitempty"`
	FacultyID     *int64     `gorm:"index" json:"facultyId,omitempty"`
	ProgramID     *int64     `gorm:"index" json:"programId,omitempty"`
	Angkatan      *int       `json:"angkatan,omitempty"`
	IsActive      bool       `gorm:"default:true" json:"isActive"`
	UserRoles     []UserRole `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// UserRole menyimpan role tambahan yang boleh dipakai lewat switch-role.
type UserRole struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Role   Role      `gorm:"type:varchar(50);primaryKey"`
}

// CustomRole memetakan nama role buatan institusi ke salah satu role bawaan.
type CustomRole struct {
	Name      string    `gorm:"primaryKey;type:varchar(50)"`
	BaseRole  Role      `gorm:"type:varchar(50);not null"`
	Note      string
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// HasRole true jika r adalah primary role atau salah satu role tambahan.
func (u *User) HasRole(r Role) bool {
	if Role(u.Role) == r {
		return true
	}
	for _, ur := range u.UserRoles {
		if ur.Role == r {
			return true
		}
	}
	return false
}

// AvailableRoles mengembalikan daftar role tambahan.
func (u *User) AvailableRoles() []Role {
	out := make([]Role, 0, len(u.UserRoles))
	for _, ur := range u.UserRoles {
		out = append(out, ur.Role)
	}
	return out
}

// CanTeach: dosen aktif (termasuk kaprodi yang juga mengajar).
func (u *User) CanTeach() bool {
	return u.IsActive && (u.HasRole(RoleLecturer) || u.HasRole(RoleProgramHead))
}

// =======================
// ORGANISASI
// =======================

type Institution struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Code      string    `gorm:"unique;not null" json:"code"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

type Faculty struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	InstitutionID int64     `gorm:"not null;index" json:"institutionId"`
	Code          string    `gorm:"unique;not null" json:"code"`
	Name          string    `gorm:"not null" json:"name"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// Program adalah program studi (prodi), unit organisasi terendah.
type Program struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	FacultyID int64     `gorm:"not null;index" json:"facultyId"`
	Code      string    `gorm:"unique;not null" json:"code"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// =======================
// KURIKULUM
// =======================

// Course (mata kuliah) dimiliki tepat satu unit organisasi.
type Course struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Code           string    `gorm:"unique;not null" json:"code"`
	Name           string    `gorm:"not null" json:"name"`
	Credits        int       `gorm:"not null;default:2" json:"credits"`
	SemesterNumber int       `json:"semesterNumber"`
	OrgOwner       `gorm:"embedded"`
	IsActive       bool      `gorm:"default:true" json:"isActive"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (c *Course) BeforeSave(tx *gorm.DB) error {
	return c.OrgOwner.Validate()
}

// OutcomeLevel: CPL -> CPMK -> SubCPMK.
type OutcomeLevel string

const (
	LevelCPL     OutcomeLevel = "cpl"
	LevelCPMK    OutcomeLevel = "cpmk"
	LevelSubCPMK OutcomeLevel = "subcpmk"
)

func (l OutcomeLevel) Valid() bool {
	return l == LevelCPL || l == LevelCPMK || l == LevelSubCPMK
}

// ParentLevel mengembalikan level induk yang wajib, "" untuk CPL.
func (l OutcomeLevel) ParentLevel() OutcomeLevel {
	switch l {
	case LevelCPMK:
		return LevelCPL
	case LevelSubCPMK:
		return LevelCPMK
	}
	return ""
}

// CurriculumOutcome menyimpan CPL, CPMK dan SubCPMK dalam satu tabel.
type CurriculumOutcome struct {
	ID          int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	Level       OutcomeLevel `gorm:"type:varchar(10);not null;index" json:"level"`
	ParentID    *int64       `gorm:"index" json:"parentId,omitempty"`
	CourseID    *int64       `gorm:"index" json:"courseId,omitempty"`
	Code        string       `gorm:"not null" json:"code"`
	Description string       `gorm:"type:text" json:"description"`
	OrgOwner    `gorm:"embedded"`
	IsActive    bool         `gorm:"default:true" json:"isActive"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (o *CurriculumOutcome) BeforeSave(tx *gorm.DB) error {
	return o.OrgOwner.Validate()
}

// =======================
// PENUGASAN DOSEN
// =======================

// TeachingAssignment: dosen pengampu mata kuliah untuk satu term.
// Unik per (dosen, mata kuliah, term) agar baris lama bisa diaktifkan kembali.
type TeachingAssignment struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	LecturerID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_assignment_key,priority:1" json:"lecturerId"`
	CourseID     int64     `gorm:"not null;uniqueIndex:idx_assignment_key,priority:2;index:idx_assignment_course_term,priority:1" json:"courseId"`
	Semester     string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_assignment_key,priority:3;index:idx_assignment_course_term,priority:2" json:"semester"`
	AcademicYear string    `gorm:"type:varchar(9);not null;uniqueIndex:idx_assignment_key,priority:4;index:idx_assignment_course_term,priority:3" json:"academicYear"`
	IsActive     bool      `gorm:"not null;default:true" json:"isActive"`
	AssignedBy   uuid.UUID `gorm:"type:uuid;not null" json:"assignedBy"`
	Note         string    `json:"note"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (a TeachingAssignment) Term() Term {
	return Term{Semester: a.Semester, AcademicYear: a.AcademicYear}
}

// =======================
// RPS (SYLLABUS)
// =======================

type SyllabusStatus string

const (
	StatusDraft    SyllabusStatus = "draft"
	StatusPending  SyllabusStatus = "pending"
	StatusApproved SyllabusStatus = "approved"
	StatusRejected SyllabusStatus = "rejected"
)

func (s SyllabusStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// SyllabusContent adalah field isi yang boleh diubah penulis selama draft.
type SyllabusContent struct {
	Description  string        `gorm:"type:text" json:"description"`
	Methods      string        `gorm:"type:text" json:"methods"`
	Assessment   string        `gorm:"type:text" json:"assessment"`
	References   string        `gorm:"type:text" json:"references"`
	WeeklyPlan   string        `gorm:"type:text" json:"weeklyPlan"`
	SelectedCPL  SelectionList `gorm:"column:selected_cpl" json:"selectedCpl"`
	SelectedCPMK SelectionList `gorm:"column:selected_cpmk" json:"selectedCpmk"`
}

// Syllabus (RPS). Template tidak punya term dan assignment,
// instance selalu terikat ke TeachingAssignment milik penulisnya.
// Revisi dalam satu lineage unik per nomor revisi.
type Syllabus struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CourseID        int64           `gorm:"not null;index" json:"courseId"`
	Course          *Course         `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	IsTemplate      bool            `gorm:"not null;default:false" json:"isTemplate"`
	TemplateID      *uuid.UUID      `gorm:"type:uuid" json:"templateId,omitempty"`
	LineageID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_syllabus_lineage_revision,priority:1" json:"lineageId"`
	PreviousID      *uuid.UUID      `gorm:"type:uuid" json:"previousId,omitempty"`
	AssignmentID    *int64          `gorm:"index" json:"assignmentId,omitempty"`
	AuthorID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"authorId"`
	Revision        int             `gorm:"not null;default:1;uniqueIndex:idx_syllabus_lineage_revision,priority:2" json:"revision"`
	Status          SyllabusStatus  `gorm:"type:varchar(20);not null;check:status IN ('draft','pending','approved','rejected')" json:"status"`
	Semester        *string         `gorm:"type:varchar(10)" json:"semester,omitempty"`
	AcademicYear    *string         `gorm:"type:varchar(9)" json:"academicYear,omitempty"`
	SyllabusContent `gorm:"embedded"`
	SubmittedAt     *time.Time `json:"submittedAt,omitempty"`
	ApprovedBy      *uuid.UUID `gorm:"type:uuid" json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	ApprovalNote    *string    `json:"approvalNote,omitempty"`
	RejectionNote   *string    `json:"rejectionNote,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Syllabus) TableName() string { return "syllabi" }

// Term mengembalikan term instance, nil untuk template.
func (s *Syllabus) Term() *Term {
	if s.Semester == nil || s.AcademicYear == nil {
		return nil
	}
	return &Term{Semester: *s.Semester, AcademicYear: *s.AcademicYear}
}

// ClearApproval mengosongkan semua field persetujuan (dipakai saat revisi).
func (s *Syllabus) ClearApproval() {
	s.SubmittedAt = nil
	s.ApprovedBy = nil
	s.ApprovedAt = nil
	s.ApprovalNote = nil
	s.RejectionNote = nil
}
