package repository

import (
	"context"
	"errors"

	"rps-backend/app/model"

	"github.com/google/uuid"
)

var (
	// ErrNotFound dikembalikan saat baris tidak ada.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate dikembalikan saat unique constraint dilanggar.
	ErrDuplicate = errors.New("duplicate record")
)

// Store mengelompokkan seluruh repository relasional.
// Transaction menjalankan fn dalam satu transaksi, Store yang diterima fn
// terikat ke transaksi tersebut. Error dari fn me-rollback semuanya.
type Store interface {
	Users() UserRepository
	Org() OrgRepository
	Courses() CourseRepository
	Outcomes() OutcomeRepository
	Assignments() AssignmentRepository
	Syllabi() SyllabusRepository
	Reports() ReportRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// UserRepository mendefinisikan operasi ke tabel users, user_roles dan custom_roles.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// FindByIDs mengembalikan user yang ditemukan saja, id yang tidak ada dilewati.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error)
	// FindProgramHeads mencari kaprodi aktif untuk program tertentu.
	FindProgramHeads(ctx context.Context, programID int64) ([]model.User, error)
	Count(ctx context.Context) (int64, error)
	CreateCustomRole(ctx context.Context, cr *model.CustomRole) error
	// ResolveCustomRole memetakan nama custom role ke role bawaan.
	ResolveCustomRole(ctx context.Context, name string) (model.Role, error)
}

// OrgRepository adalah API baca pohon organisasi.
type OrgRepository interface {
	CreateInstitution(ctx context.Context, i *model.Institution) error
	CreateFaculty(ctx context.Context, f *model.Faculty) error
	CreateProgram(ctx context.Context, p *model.Program) error
	FindInstitution(ctx context.Context, id int64) (*model.Institution, error)
	FindFaculty(ctx context.Context, id int64) (*model.Faculty, error)
	FindProgram(ctx context.Context, id int64) (*model.Program, error)
}

// CourseFilter untuk listing mata kuliah.
type CourseFilter struct {
	ProgramID     *int64
	IncludeShared bool
	ActiveOnly    bool
}

type CourseRepository interface {
	Create(ctx context.Context, c *model.Course) error
	FindByID(ctx context.Context, id int64) (*model.Course, error)
	// FindByIDForUpdate mengunci baris course di dalam transaksi. Allocator
	// memakainya untuk menyerialkan penugasan per mata kuliah.
	FindByIDForUpdate(ctx context.Context, id int64) (*model.Course, error)
	List(ctx context.Context, scope model.Scope, f CourseFilter) ([]model.Course, error)
	Deactivate(ctx context.Context, id int64) error
}

type OutcomeFilter struct {
	Level         model.OutcomeLevel
	CourseID      *int64
	IncludeShared bool
	ActiveOnly    bool
}

type OutcomeRepository interface {
	Create(ctx context.Context, o *model.CurriculumOutcome) error
	FindByID(ctx context.Context, id int64) (*model.CurriculumOutcome, error)
	// FindByIDs mengembalikan capaian pada level tertentu, id yang tidak ada dilewati.
	FindByIDs(ctx context.Context, level model.OutcomeLevel, ids []int64) ([]model.CurriculumOutcome, error)
	List(ctx context.Context, scope model.Scope, f OutcomeFilter) ([]model.CurriculumOutcome, error)
	Deactivate(ctx context.Context, id int64) error
}

type AssignmentFilter struct {
	CourseID   *int64
	LecturerID *uuid.UUID
	Term       *model.Term
	ActiveOnly bool
}

// AssignmentRepository mengelola tabel teaching_assignments.
type AssignmentRepository interface {
	FindByID(ctx context.Context, id int64) (*model.TeachingAssignment, error)
	// FindActiveByCourseTerm mengunci baris (FOR UPDATE) saat dipanggil di dalam transaksi.
	FindActiveByCourseTerm(ctx context.Context, courseID int64, term model.Term) ([]model.TeachingAssignment, error)
	FindByKey(ctx context.Context, lecturerID uuid.UUID, courseID int64, term model.Term) (*model.TeachingAssignment, error)
	Create(ctx context.Context, a *model.TeachingAssignment) error
	Save(ctx context.Context, a *model.TeachingAssignment) error
	// DeactivateByCourseTerm menonaktifkan semua assignment aktif untuk (course, term).
	DeactivateByCourseTerm(ctx context.Context, courseID int64, term model.Term) (int64, error)
	List(ctx context.Context, scope model.Scope, f AssignmentFilter) ([]model.TeachingAssignment, error)
}

type SyllabusFilter struct {
	Status        *model.SyllabusStatus
	ProgramID     *int64
	Term          *model.Term
	AuthorID      *uuid.UUID
	IsTemplate    *bool
	IncludeShared bool
}

// SyllabusRepository mengelola tabel syllabi (RPS).
type SyllabusRepository interface {
	// Create mengembalikan ErrDuplicate jika (lineage_id, revision) sudah ada.
	Create(ctx context.Context, s *model.Syllabus) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Syllabus, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Syllabus, error)
	FindLatestInLineage(ctx context.Context, lineageID uuid.UUID) (*model.Syllabus, error)
	ExistsForAssignment(ctx context.Context, assignmentID int64) (bool, error)
	Save(ctx context.Context, s *model.Syllabus) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, scope model.Scope, f SyllabusFilter) ([]model.Syllabus, error)
}

// ReportResult adalah hasil agregasi statistik RPS.
type ReportResult struct {
	Total     int64            `json:"total"`
	ByStatus  map[string]int64 `json:"byStatus"`
	ByProgram map[string]int64 `json:"byProgram"` // key: kode prodi, "shared" untuk non-prodi
	ByTerm    map[string]int64 `json:"byTerm"`    // key: "Ganjil 2025/2026", "template"
}

func NewReportResult() *ReportResult {
	return &ReportResult{
		ByStatus:  make(map[string]int64),
		ByProgram: make(map[string]int64),
		ByTerm:    make(map[string]int64),
	}
}

type ReportRepository interface {
	SyllabusStatistics(ctx context.Context, scope model.Scope) (*ReportResult, error)
}

// NotificationRepository adalah inbox notifikasi per user (MongoDB).
type NotificationRepository interface {
	Insert(ctx context.Context, n *model.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID uuid.UUID, id string) error
}

// ResolveOrgRef melengkapi owner dengan id leluhurnya lewat OrgRepository.
func ResolveOrgRef(ctx context.Context, org OrgRepository, owner model.OrgOwner) (model.OrgRef, error) {
	ref := model.OrgRef{Level: owner.Scope}
	switch owner.Scope {
	case model.OwnerProgram:
		prog, err := org.FindProgram(ctx, *owner.ProgramID)
		if err != nil {
			return ref, err
		}
		fac, err := org.FindFaculty(ctx, prog.FacultyID)
		if err != nil {
			return ref, err
		}
		ref.ProgramID = &prog.ID
		ref.FacultyID = &fac.ID
		ref.InstitutionID = &fac.InstitutionID
	case model.OwnerFaculty:
		fac, err := org.FindFaculty(ctx, *owner.FacultyID)
		if err != nil {
			return ref, err
		}
		ref.FacultyID = &fac.ID
		ref.InstitutionID = &fac.InstitutionID
	case model.OwnerInstitution:
		inst, err := org.FindInstitution(ctx, *owner.InstitutionID)
		if err != nil {
			return ref, err
		}
		ref.InstitutionID = &inst.ID
	default:
		return ref, model.ErrOwnerLevelInvalid
	}
	return ref, nil
}
