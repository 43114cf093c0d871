package service

import (
	"context"
	"fmt"
	"strings"

	"rps-backend/app/apperror"
	"rps-backend/app/model"
	"rps-backend/app/notification"
	"rps-backend/app/repository"
	"rps-backend/utils"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// TeamTeachingPrefix ditambahkan ke catatan jika lebih dari satu dosen diminta.
const TeamTeachingPrefix = "[Team Teaching] "

// AssignOutcome membedakan baris baru dan baris lama yang diaktifkan kembali.
type AssignOutcome string

const (
	OutcomeCreated     AssignOutcome = "created"
	OutcomeReactivated AssignOutcome = "reactivated"
)

type AssignInput struct {
	CourseID    int64
	LecturerIDs []uuid.UUID
	Term        model.Term
	Force       bool
	Note        string
}

type AssignedLecturer struct {
	Outcome    AssignOutcome            `json:"outcome"`
	Assignment model.TeachingAssignment `json:"assignment"`
}

// AssignWarning: dosen yang dilewati, tidak menggagalkan batch.
type AssignWarning struct {
	LecturerID uuid.UUID `json:"lecturerId"`
	Reason     string    `json:"reason"`
}

type AssignResult struct {
	Created  []AssignedLecturer         `json:"created"`
	Warnings []AssignWarning            `json:"warnings"`
	Replaced []model.TeachingAssignment `json:"replaced"`
}

// Partial true jika sebagian dosen gagal ditugaskan.
func (r *AssignResult) Partial() bool { return len(r.Warnings) > 0 }

type AssignmentQuery struct {
	CourseID   *int64
	Term       *model.Term
	ActiveOnly bool
}

// AssignmentService adalah alokator dosen pengampu.
type AssignmentService interface {
	Assign(ctx context.Context, p model.Principal, in AssignInput) (*AssignResult, error)
	Unassign(ctx context.Context, p model.Principal, id int64) (*model.TeachingAssignment, error)
	List(ctx context.Context, p model.Principal, q AssignmentQuery) ([]model.TeachingAssignment, error)
	ListMine(ctx context.Context, p model.Principal) ([]model.TeachingAssignment, error)
}

type assignmentService struct {
	store    repository.Store
	notifier notification.Notifier
	logger   *zap.Logger
}

func NewAssignmentService(store repository.Store, notifier notification.Notifier, logger *zap.Logger) AssignmentService {
	return &assignmentService{store: store, notifier: notifier, logger: logger}
}

func canAllocate(r model.Role) bool {
	return r.In(model.RoleProgramHead, model.RoleDean, model.RoleAdmin, model.RoleSuperAdmin, model.RoleInstitutionAdmin)
}

// authorizeCourse: kaprodi hanya untuk mata kuliah prodinya sendiri.
func authorizeCourse(p model.Principal, c *model.Course) error {
	if p.EffectiveRole() != model.RoleProgramHead {
		return nil
	}
	if p.ProgramID == nil || c.ProgramID == nil || *c.ProgramID != *p.ProgramID {
		return apperror.Forbidden("mata kuliah bukan milik prodi anda")
	}
	return nil
}

func dedupIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// Assign menjalankan deteksi konflik, penggantian (force) dan
// create-or-reactivate untuk semua dosen dalam satu transaksi.
func (s *assignmentService) Assign(ctx context.Context, p model.Principal, in AssignInput) (*AssignResult, error) {
	if !canAllocate(p.EffectiveRole()) {
		return nil, apperror.Forbidden("anda tidak berhak menugaskan dosen")
	}
	ids := dedupIDs(in.LecturerIDs)
	if len(ids) == 0 {
		return nil, apperror.Validation("minimal satu dosen harus dipilih",
			apperror.FieldError{Field: "lecturer_ids", Error: "required"})
	}
	if err := in.Term.Validate(); err != nil {
		return nil, apperror.Validation("term tidak valid", apperror.FieldError{Field: "term", Error: err.Error()})
	}

	note := strings.TrimSpace(in.Note)
	if len(ids) > 1 && !strings.HasPrefix(note, TeamTeachingPrefix) {
		note = TeamTeachingPrefix + note
	}

	result := &AssignResult{
		Created:  []AssignedLecturer{},
		Warnings: []AssignWarning{},
		Replaced: []model.TeachingAssignment{},
	}
	var course *model.Course
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		// kunci course dulu: FOR UPDATE pada assignment tidak mengunci apa pun
		// saat belum ada baris aktif untuk (course, term)
		course, err = tx.Courses().FindByIDForUpdate(ctx, in.CourseID)
		if err != nil {
			return notFoundOr(err, "mata kuliah")
		}
		if err := authorizeCourse(p, course); err != nil {
			return err
		}
		if !course.IsActive {
			return apperror.Validation("mata kuliah tidak aktif",
				apperror.FieldError{Field: "course_id", Error: "inactive"})
		}

		existing, err := tx.Assignments().FindActiveByCourseTerm(ctx, course.ID, in.Term)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			if !in.Force {
				return apperror.Conflict("mata kuliah sudah memiliki dosen pengampu untuk term ini", existing)
			}
			if _, err := tx.Assignments().DeactivateByCourseTerm(ctx, course.ID, in.Term); err != nil {
				return err
			}
		}

		users, err := tx.Users().FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]*model.User, len(users))
		for i := range users {
			byID[users[i].ID] = &users[i]
		}

		assigned := make(map[uuid.UUID]bool, len(ids))
		for _, id := range ids {
			u, ok := byID[id]
			switch {
			case !ok:
				result.Warnings = append(result.Warnings, AssignWarning{LecturerID: id, Reason: "dosen tidak ditemukan"})
				continue
			case !u.CanTeach():
				result.Warnings = append(result.Warnings, AssignWarning{LecturerID: id, Reason: "akun bukan dosen aktif"})
				continue
			}
			row, outcome, err := upsertAssignment(ctx, tx.Assignments(), id, course.ID, in.Term, p.ID, note)
			if err != nil {
				return err
			}
			assigned[id] = true
			result.Created = append(result.Created, AssignedLecturer{Outcome: outcome, Assignment: *row})
		}
		if len(result.Created) == 0 {
			fields := make([]apperror.FieldError, 0, len(result.Warnings))
			for _, w := range result.Warnings {
				fields = append(fields, apperror.FieldError{Field: w.LecturerID.String(), Error: w.Reason})
			}
			return apperror.Validation("tidak ada dosen yang dapat ditugaskan", fields...)
		}
		for _, old := range existing {
			if !assigned[old.LecturerID] {
				old.IsActive = false
				result.Replaced = append(result.Replaced, old)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("lecturers assigned",
		zap.Int64("course_id", course.ID),
		zap.String("term", in.Term.String()),
		zap.Int("assigned", len(result.Created)),
		zap.Int("warnings", len(result.Warnings)),
		zap.Int("replaced", len(result.Replaced)),
		zap.String("actor_id", p.ID.String()))
	for _, w := range result.Warnings {
		utils.Assignments.WithLabelValues("warning").Inc()
		s.logger.Warn("lecturer skipped", zap.String("lecturer_id", w.LecturerID.String()), zap.String("reason", w.Reason))
	}

	for _, old := range result.Replaced {
		s.notifier.Notify(ctx, old.LecturerID, "Penugasan dicabut",
			fmt.Sprintf("Penugasan anda untuk %s %s telah digantikan", course.Code, in.Term),
			model.SeverityWarning, nil)
	}
	for _, a := range result.Created {
		utils.Assignments.WithLabelValues(string(a.Outcome)).Inc()
		s.notifier.Notify(ctx, a.Assignment.LecturerID, "Penugasan mengajar",
			fmt.Sprintf("Anda ditugaskan mengampu %s %s", course.Code, in.Term),
			model.SeverityInfo, nil)
	}
	return result, nil
}

// upsertAssignment mengaktifkan kembali baris (dosen, mata kuliah, term) yang
// sudah ada, atau membuat baris baru.
func upsertAssignment(ctx context.Context, repo repository.AssignmentRepository, lecturerID uuid.UUID, courseID int64, term model.Term, actor uuid.UUID, note string) (*model.TeachingAssignment, AssignOutcome, error) {
	row, err := repo.FindByKey(ctx, lecturerID, courseID, term)
	switch {
	case err == nil:
		row.IsActive = true
		row.AssignedBy = actor
		row.Note = note
		if err := repo.Save(ctx, row); err != nil {
			return nil, "", err
		}
		return row, OutcomeReactivated, nil
	case errors.Is(err, repository.ErrNotFound):
		row = &model.TeachingAssignment{
			LecturerID:   lecturerID,
			CourseID:     courseID,
			Semester:     term.Semester,
			AcademicYear: term.AcademicYear,
			IsActive:     true,
			AssignedBy:   actor,
			Note:         note,
		}
		if err := repo.Create(ctx, row); err != nil {
			return nil, "", err
		}
		return row, OutcomeCreated, nil
	default:
		return nil, "", err
	}
}

// Unassign menonaktifkan satu penugasan (soft delete).
func (s *assignmentService) Unassign(ctx context.Context, p model.Principal, id int64) (*model.TeachingAssignment, error) {
	if !canAllocate(p.EffectiveRole()) {
		return nil, apperror.Forbidden("anda tidak berhak mengubah penugasan")
	}
	var out *model.TeachingAssignment
	changed := false
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		a, err := tx.Assignments().FindByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "penugasan")
		}
		course, err := tx.Courses().FindByID(ctx, a.CourseID)
		if err != nil {
			return notFoundOr(err, "mata kuliah")
		}
		if err := authorizeCourse(p, course); err != nil {
			return err
		}
		out = a
		if !a.IsActive {
			return nil
		}
		a.IsActive = false
		changed = true
		return tx.Assignments().Save(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.notifier.Notify(ctx, out.LecturerID, "Penugasan dicabut",
			fmt.Sprintf("Penugasan anda untuk term %s telah dinonaktifkan", out.Term()),
			model.SeverityWarning, nil)
	}
	return out, nil
}

func (s *assignmentService) List(ctx context.Context, p model.Principal, q AssignmentQuery) ([]model.TeachingAssignment, error) {
	return s.store.Assignments().List(ctx, model.ResolveScope(p), repository.AssignmentFilter{
		CourseID:   q.CourseID,
		Term:       q.Term,
		ActiveOnly: q.ActiveOnly,
	})
}

// ListMine: penugasan aktif milik pemanggil, tanpa filter organisasi.
func (s *assignmentService) ListMine(ctx context.Context, p model.Principal) ([]model.TeachingAssignment, error) {
	id := p.ID
	return s.store.Assignments().List(ctx, model.Scope{}, repository.AssignmentFilter{
		LecturerID: &id,
		ActiveOnly: true,
	})
}
