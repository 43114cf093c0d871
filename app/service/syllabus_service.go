package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rps-backend/app/apperror"
	"rps-backend/app/model"
	"rps-backend/app/notification"
	"rps-backend/app/repository"
	"rps-backend/utils"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// SyllabusService adalah state machine RPS.
//
//	draft   -> pending | approved
//	pending -> approved | rejected
//	approved, rejected: terminal untuk revisi tersebut (lanjut lewat Revise)
type SyllabusService interface {
	Create(ctx context.Context, p model.Principal, in CreateSyllabusInput) (*model.Syllabus, error)
	Update(ctx context.Context, p model.Principal, id uuid.UUID, in UpdateSyllabusInput) (*model.Syllabus, error)
	Submit(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Syllabus, error)
	Approve(ctx context.Context, p model.Principal, id uuid.UUID, note *string) (*model.Syllabus, error)
	Reject(ctx context.Context, p model.Principal, id uuid.UUID, note string) (*model.Syllabus, error)
	Delete(ctx context.Context, p model.Principal, id uuid.UUID) error
	Revise(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Syllabus, error)
	Get(ctx context.Context, p model.Principal, id uuid.UUID) (*SyllabusView, error)
	List(ctx context.Context, p model.Principal, q SyllabusQuery) ([]model.Syllabus, error)
}

// CreateSyllabusInput memilih jalur template atau instance lewat IsTemplate.
type CreateSyllabusInput struct {
	IsTemplate   bool
	CourseID     int64
	AssignmentID *int64
	TemplateID   *uuid.UUID
	Content      model.SyllabusContent
}

// UpdateSyllabusInput hanya berisi field yang boleh diubah penulis.
// Field nil tidak diubah.
type UpdateSyllabusInput struct {
	Description  *string
	Methods      *string
	Assessment   *string
	References   *string
	WeeklyPlan   *string
	SelectedCPL  *model.SelectionList
	SelectedCPMK *model.SelectionList
}

type SyllabusQuery struct {
	Status    *model.SyllabusStatus
	ProgramID *int64
	Term      *model.Term
}

// SyllabusView adalah RPS beserta capaian terpilih yang sudah di-resolve.
type SyllabusView struct {
	*model.Syllabus
	CPLOutcomes  []model.CurriculumOutcome `json:"cplOutcomes"`
	CPMKOutcomes []model.CurriculumOutcome `json:"cpmkOutcomes"`
}

type syllabusService struct {
	store    repository.Store
	notifier notification.Notifier
	logger   *zap.Logger
	now      Clock
}

func NewSyllabusService(store repository.Store, notifier notification.Notifier, logger *zap.Logger, now Clock) SyllabusService {
	if now == nil {
		now = time.Now
	}
	return &syllabusService{store: store, notifier: notifier, logger: logger, now: now}
}

// =======================
// CREATE
// =======================

func (s *syllabusService) Create(ctx context.Context, p model.Principal, in CreateSyllabusInput) (*model.Syllabus, error) {
	if in.IsTemplate {
		return s.createTemplate(ctx, p, in)
	}
	return s.createInstance(ctx, p, in)
}

func (s *syllabusService) createTemplate(ctx context.Context, p model.Principal, in CreateSyllabusInput) (*model.Syllabus, error) {
	role := p.EffectiveRole()
	if !role.In(model.RoleProgramHead, model.RoleAdmin, model.RoleSuperAdmin, model.RoleInstitutionAdmin) {
		return nil, apperror.Forbidden("hanya kaprodi atau admin yang dapat membuat template RPS")
	}
	if in.AssignmentID != nil {
		return nil, apperror.Validation("template tidak boleh terikat penugasan",
			apperror.FieldError{Field: "assignment_id", Error: "must be empty for template"})
	}
	if in.TemplateID != nil {
		return nil, apperror.Validation("template tidak dapat dibuat dari template lain",
			apperror.FieldError{Field: "template_id", Error: "must be empty for template"})
	}
	if in.CourseID <= 0 {
		return nil, apperror.Validation("course_id wajib diisi",
			apperror.FieldError{Field: "course_id", Error: "required"})
	}

	syl := &model.Syllabus{
		CourseID:        in.CourseID,
		IsTemplate:      true,
		AuthorID:        p.ID,
		Revision:        1,
		Status:          model.StatusDraft,
		SyllabusContent: normalizeContent(in.Content),
	}
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		course, err := tx.Courses().FindByID(ctx, in.CourseID)
		if err != nil {
			return notFoundOr(err, "mata kuliah")
		}
		if !course.IsActive {
			return apperror.Validation("mata kuliah tidak aktif",
				apperror.FieldError{Field: "course_id", Error: "inactive"})
		}
		ref, err := courseRef(ctx, tx.Org(), course)
		if err != nil {
			return err
		}
		if !writable(model.ResolveScope(p), ref) {
			return apperror.Forbidden("mata kuliah di luar cakupan anda")
		}
		if err := tx.Syllabi().Create(ctx, syl); err != nil {
			return errors.Wrap(err, "create template")
		}
		syl.Course = course
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("syllabus template created",
		zap.String("syllabus_id", syl.ID.String()), zap.Int64("course_id", syl.CourseID))
	return syl, nil
}

func (s *syllabusService) createInstance(ctx context.Context, p model.Principal, in CreateSyllabusInput) (*model.Syllabus, error) {
	if !p.EffectiveRole().In(model.RoleLecturer, model.RoleProgramHead) {
		return nil, apperror.Forbidden("hanya dosen pengampu yang dapat membuat RPS")
	}
	if in.AssignmentID == nil {
		return nil, apperror.Validation("assignment_id wajib diisi untuk RPS non-template",
			apperror.FieldError{Field: "assignment_id", Error: "required"})
	}

	var syl *model.Syllabus
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		a, err := tx.Assignments().FindByID(ctx, *in.AssignmentID)
		if err != nil {
			return notFoundOr(err, "penugasan")
		}
		if a.LecturerID != p.ID {
			return apperror.Forbidden("penugasan bukan milik anda")
		}
		if !a.IsActive {
			return apperror.Validation("penugasan sudah tidak aktif",
				apperror.FieldError{Field: "assignment_id", Error: "inactive"})
		}
		if in.CourseID != 0 && in.CourseID != a.CourseID {
			return apperror.Validation("course_id tidak sesuai dengan penugasan",
				apperror.FieldError{Field: "course_id", Error: "does not match assignment"})
		}
		exists, err := tx.Syllabi().ExistsForAssignment(ctx, a.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperror.Conflict("RPS untuk penugasan ini sudah ada, gunakan revisi", map[string]int64{"assignment_id": a.ID})
		}
		course, err := tx.Courses().FindByID(ctx, a.CourseID)
		if err != nil {
			return notFoundOr(err, "mata kuliah")
		}

		content := normalizeContent(in.Content)
		if in.TemplateID != nil {
			tpl, err := tx.Syllabi().FindByID(ctx, *in.TemplateID)
			if err != nil {
				return notFoundOr(err, "template RPS")
			}
			if !tpl.IsTemplate || tpl.CourseID != a.CourseID {
				return apperror.Validation("template tidak valid untuk mata kuliah ini",
					apperror.FieldError{Field: "template_id", Error: "not a template of this course"})
			}
			content = mergeContent(tpl.SyllabusContent, content)
		}

		term := a.Term()
		syl = &model.Syllabus{
			CourseID:        a.CourseID,
			TemplateID:      in.TemplateID,
			AssignmentID:    &a.ID,
			AuthorID:        p.ID,
			Revision:        1,
			Status:          model.StatusDraft,
			Semester:        strPtr(term.Semester),
			AcademicYear:    strPtr(term.AcademicYear),
			SyllabusContent: content,
		}
		if err := tx.Syllabi().Create(ctx, syl); err != nil {
			return errors.Wrap(err, "create instance")
		}
		syl.Course = course
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("syllabus instance created",
		zap.String("syllabus_id", syl.ID.String()),
		zap.Int64("assignment_id", *syl.AssignmentID),
		zap.String("author_id", p.ID.String()))
	return syl, nil
}

// =======================
// UPDATE / DELETE (draft only)
// =======================

func (s *syllabusService) Update(ctx context.Context, p model.Principal, id uuid.UUID, in UpdateSyllabusInput) (*model.Syllabus, error) {
	var out *model.Syllabus
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		syl, err := s.loadVisible(ctx, tx, p, id)
		if err != nil {
			return err
		}
		if syl.Status != model.StatusDraft {
			return apperror.State("RPS hanya dapat diubah saat draft", string(syl.Status))
		}
		if syl.AuthorID != p.ID {
			return apperror.Forbidden("hanya penulis yang dapat mengubah RPS")
		}
		if err := requireActiveAssignment(ctx, tx, syl); err != nil {
			return err
		}
		applyUpdate(&syl.SyllabusContent, in)
		if err := tx.Syllabi().Save(ctx, syl); err != nil {
			return err
		}
		out = syl
		return nil
	})
	return out, err
}

func (s *syllabusService) Delete(ctx context.Context, p model.Principal, id uuid.UUID) error {
	return s.store.Transaction(ctx, func(tx repository.Store) error {
		syl, err := s.loadVisible(ctx, tx, p, id)
		if err != nil {
			return err
		}
		if syl.Status != model.StatusDraft {
			return apperror.State("RPS hanya dapat dihapus saat draft", string(syl.Status))
		}
		if syl.AuthorID != p.ID {
			return apperror.Forbidden("hanya penulis yang dapat menghapus RPS")
		}
		return tx.Syllabi().Delete(ctx, syl.ID)
	})
}

// =======================
// TRANSISI STATUS
// =======================

func (s *syllabusService) Submit(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Syllabus, error) {
	var out *model.Syllabus
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		syl, err := s.loadVisible(ctx, tx, p, id)
		if err != nil {
			return err
		}
		if syl.AuthorID != p.ID {
			return apperror.Forbidden("hanya penulis yang dapat mengajukan RPS")
		}
		if syl.Status != model.StatusDraft {
			return apperror.State("hanya RPS draft yang dapat diajukan", string(syl.Status))
		}
		if err := requireActiveAssignment(ctx, tx, syl); err != nil {
			return err
		}
		selfApprove := false
		if p.EffectiveRole() == model.RoleProgramHead {
			ref, err := courseRef(ctx, tx.Org(), syl.Course)
			if err != nil {
				return err
			}
			selfApprove = model.ResolveScope(p).Covers(ref)
		}
		now := s.now()
		syl.SubmittedAt = &now
		if selfApprove {
			// kaprodi mengajukan RPS prodinya sendiri: langsung disetujui.
			// Mata kuliah prodi lain tetap lewat pending.
			syl.Status = model.StatusApproved
			syl.ApprovedBy = &p.ID
			syl.ApprovedAt = &now
		} else {
			syl.Status = model.StatusPending
		}
		if err := tx.Syllabi().Save(ctx, syl); err != nil {
			return err
		}
		out = syl
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.WorkflowTransitions.WithLabelValues("submit", string(out.Status)).Inc()
	if out.Status == model.StatusPending {
		s.notifyProgramHeads(ctx, out)
	}
	return out, nil
}

func (s *syllabusService) Approve(ctx context.Context, p model.Principal, id uuid.UUID, note *string) (*model.Syllabus, error) {
	if note != nil && strings.TrimSpace(*note) == "" {
		note = nil
	}
	out, err := s.review(ctx, p, id, true, func(syl *model.Syllabus, now time.Time) {
		syl.Status = model.StatusApproved
		syl.ApprovedBy = &p.ID
		syl.ApprovedAt = &now
		syl.ApprovalNote = note
		if syl.SubmittedAt == nil {
			syl.SubmittedAt = &now
		}
	})
	if err != nil {
		return nil, err
	}
	utils.WorkflowTransitions.WithLabelValues("approve", string(out.Status)).Inc()
	s.notifier.Notify(ctx, out.AuthorID, "RPS disetujui",
		fmt.Sprintf("RPS %s revisi %d telah disetujui", courseLabel(out), out.Revision),
		model.SeveritySuccess, syllabusLink(out))
	return out, nil
}

func (s *syllabusService) Reject(ctx context.Context, p model.Principal, id uuid.UUID, note string) (*model.Syllabus, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, apperror.Validation("catatan penolakan wajib diisi",
			apperror.FieldError{Field: "note", Error: "required"})
	}
	out, err := s.review(ctx, p, id, false, func(syl *model.Syllabus, now time.Time) {
		syl.Status = model.StatusRejected
		syl.RejectionNote = &note
		if syl.SubmittedAt == nil {
			syl.SubmittedAt = &now
		}
	})
	if err != nil {
		return nil, err
	}
	utils.WorkflowTransitions.WithLabelValues("reject", string(out.Status)).Inc()
	s.notifier.Notify(ctx, out.AuthorID, "RPS ditolak",
		fmt.Sprintf("RPS %s revisi %d ditolak: %s", courseLabel(out), out.Revision, note),
		model.SeverityDanger, syllabusLink(out))
	return out, nil
}

// review menjalankan approve/reject: hanya kaprodi, hanya untuk mata kuliah
// di prodinya sendiri, dan hanya dari status pending atau draft.
// Approve juga menuntut penugasan instance masih aktif; reject tidak,
// supaya RPS milik dosen yang sudah diganti tetap bisa dikeluarkan dari antrean.
func (s *syllabusService) review(ctx context.Context, p model.Principal, id uuid.UUID, approving bool, apply func(*model.Syllabus, time.Time)) (*model.Syllabus, error) {
	if p.EffectiveRole() != model.RoleProgramHead {
		return nil, apperror.Forbidden("hanya kaprodi yang dapat menyetujui atau menolak RPS")
	}
	var out *model.Syllabus
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		syl, err := tx.Syllabi().FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFoundOr(err, "RPS")
		}
		ref, err := courseRef(ctx, tx.Org(), syl.Course)
		if err != nil {
			return err
		}
		if !model.ResolveScope(p).Covers(ref) {
			return apperror.Forbidden("mata kuliah RPS di luar prodi anda")
		}
		if syl.Status != model.StatusPending && syl.Status != model.StatusDraft {
			return apperror.State("RPS sudah diproses", string(syl.Status))
		}
		if approving {
			if err := requireActiveAssignment(ctx, tx, syl); err != nil {
				return err
			}
		}
		apply(syl, s.now())
		if err := tx.Syllabi().Save(ctx, syl); err != nil {
			return err
		}
		out = syl
		return nil
	})
	return out, err
}

// =======================
// REVISI
// =======================

// Revise membuat draft baru dari revisi terakhir lineage yang sudah tidak draft.
func (s *syllabusService) Revise(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Syllabus, error) {
	var out *model.Syllabus
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		syl, err := s.loadVisible(ctx, tx, p, id)
		if err != nil {
			return err
		}
		latest, err := tx.Syllabi().FindLatestInLineage(ctx, syl.LineageID)
		if err != nil {
			return notFoundOr(err, "RPS")
		}
		if latest.AuthorID != p.ID {
			return apperror.Forbidden("hanya penulis yang dapat merevisi RPS")
		}
		if latest.Status == model.StatusDraft {
			return apperror.State("revisi terakhir masih draft", string(latest.Status))
		}
		if err := requireActiveAssignment(ctx, tx, latest); err != nil {
			return err
		}

		next := &model.Syllabus{
			CourseID:        latest.CourseID,
			IsTemplate:      latest.IsTemplate,
			TemplateID:      latest.TemplateID,
			LineageID:       latest.LineageID,
			PreviousID:      &latest.ID,
			AssignmentID:    latest.AssignmentID,
			AuthorID:        latest.AuthorID,
			Revision:        latest.Revision + 1,
			Status:          model.StatusDraft,
			Semester:        latest.Semester,
			AcademicYear:    latest.AcademicYear,
			SyllabusContent: copyContent(latest.SyllabusContent),
		}
		next.ClearApproval()
		if err := tx.Syllabi().Create(ctx, next); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperror.Conflict("revisi sudah dibuat oleh permintaan lain", map[string]int{"revision": next.Revision})
			}
			return err
		}
		next.Course = syl.Course
		out = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	utils.WorkflowTransitions.WithLabelValues("revise", string(out.Status)).Inc()
	return out, nil
}

// =======================
// READ
// =======================

func (s *syllabusService) Get(ctx context.Context, p model.Principal, id uuid.UUID) (*SyllabusView, error) {
	syl, err := s.loadVisible(ctx, s.store, p, id)
	if err != nil {
		return nil, err
	}
	return &SyllabusView{
		Syllabus:     syl,
		CPLOutcomes:  s.resolveOutcomes(ctx, model.LevelCPL, syl.SelectedCPL),
		CPMKOutcomes: s.resolveOutcomes(ctx, model.LevelCPMK, syl.SelectedCPMK),
	}, nil
}

func (s *syllabusService) List(ctx context.Context, p model.Principal, q SyllabusQuery) ([]model.Syllabus, error) {
	scope := model.ResolveScope(p).NarrowProgram(q.ProgramID)
	f := repository.SyllabusFilter{
		Status:        q.Status,
		Term:          q.Term,
		IncludeShared: !scope.IsUnrestricted(),
	}
	if p.EffectiveRole() == model.RoleStudent {
		if q.Status != nil && *q.Status != model.StatusApproved {
			return []model.Syllabus{}, nil
		}
		approved := model.StatusApproved
		f.Status = &approved
	}
	return s.store.Syllabi().List(ctx, scope, f)
}

// resolveOutcomes: id yang sudah tidak ada dilewati, error baca
// menghasilkan daftar kosong.
func (s *syllabusService) resolveOutcomes(ctx context.Context, level model.OutcomeLevel, ids model.SelectionList) []model.CurriculumOutcome {
	if len(ids) == 0 {
		return []model.CurriculumOutcome{}
	}
	items, err := s.store.Outcomes().FindByIDs(ctx, level, ids)
	if err != nil {
		s.logger.Warn("resolve selected outcomes failed",
			zap.String("level", string(level)), zap.Error(err))
		return []model.CurriculumOutcome{}
	}
	if len(items) < len(ids) {
		s.logger.Debug("dangling outcome ids in selection",
			zap.String("level", string(level)), zap.Int("requested", len(ids)), zap.Int("found", len(items)))
	}
	return items
}

// loadVisible mengembalikan NotFound untuk RPS di luar cakupan pembaca.
// Penulis selalu bisa melihat RPS miliknya, mahasiswa hanya yang approved.
func (s *syllabusService) loadVisible(ctx context.Context, st repository.Store, p model.Principal, id uuid.UUID) (*model.Syllabus, error) {
	syl, err := st.Syllabi().FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "RPS")
	}
	if syl.AuthorID == p.ID {
		return syl, nil
	}
	if p.EffectiveRole() == model.RoleStudent && syl.Status != model.StatusApproved {
		return nil, apperror.NotFound("RPS")
	}
	ref, err := courseRef(ctx, st.Org(), syl.Course)
	if err != nil {
		return nil, err
	}
	if !readable(model.ResolveScope(p), ref) {
		return nil, apperror.NotFound("RPS")
	}
	return syl, nil
}

// requireActiveAssignment: instance harus menempel pada penugasan aktif
// milik penulisnya. Template (tanpa assignment) dilewati.
func requireActiveAssignment(ctx context.Context, tx repository.Store, syl *model.Syllabus) error {
	if syl.AssignmentID == nil {
		return nil
	}
	a, err := tx.Assignments().FindByID(ctx, *syl.AssignmentID)
	if err != nil {
		return notFoundOr(err, "penugasan")
	}
	if a.LecturerID != syl.AuthorID {
		return apperror.Forbidden("penugasan bukan milik penulis RPS")
	}
	if !a.IsActive {
		return apperror.Validation("penugasan sudah tidak aktif",
			apperror.FieldError{Field: "assignment_id", Error: "inactive"})
	}
	return nil
}

func (s *syllabusService) notifyProgramHeads(ctx context.Context, syl *model.Syllabus) {
	if syl.Course == nil || syl.Course.ProgramID == nil {
		return
	}
	heads, err := s.store.Users().FindProgramHeads(ctx, *syl.Course.ProgramID)
	if err != nil {
		s.logger.Warn("lookup program heads failed", zap.Error(err))
		return
	}
	for _, h := range heads {
		if h.ID == syl.AuthorID {
			continue
		}
		s.notifier.Notify(ctx, h.ID, "RPS menunggu persetujuan",
			fmt.Sprintf("RPS %s revisi %d diajukan untuk disetujui", courseLabel(syl), syl.Revision),
			model.SeverityInfo, syllabusLink(syl))
	}
}

// =======================
// HELPER KONTEN
// =======================

func normalizeContent(c model.SyllabusContent) model.SyllabusContent {
	c.SelectedCPL = c.SelectedCPL.Dedup()
	c.SelectedCPMK = c.SelectedCPMK.Dedup()
	return c
}

func copyContent(c model.SyllabusContent) model.SyllabusContent {
	c.SelectedCPL = append(model.SelectionList(nil), c.SelectedCPL...)
	c.SelectedCPMK = append(model.SelectionList(nil), c.SelectedCPMK...)
	return c
}

// mergeContent: field yang diisi di overlay menimpa isi template.
func mergeContent(base, overlay model.SyllabusContent) model.SyllabusContent {
	out := copyContent(base)
	if overlay.Description != "" {
		out.Description = overlay.Description
	}
	if overlay.Methods != "" {
		out.Methods = overlay.Methods
	}
	if overlay.Assessment != "" {
		out.Assessment = overlay.Assessment
	}
	if overlay.References != "" {
		out.References = overlay.References
	}
	if overlay.WeeklyPlan != "" {
		out.WeeklyPlan = overlay.WeeklyPlan
	}
	if len(overlay.SelectedCPL) > 0 {
		out.SelectedCPL = overlay.SelectedCPL
	}
	if len(overlay.SelectedCPMK) > 0 {
		out.SelectedCPMK = overlay.SelectedCPMK
	}
	return out
}

func applyUpdate(c *model.SyllabusContent, in UpdateSyllabusInput) {
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.Methods != nil {
		c.Methods = *in.Methods
	}
	if in.Assessment != nil {
		c.Assessment = *in.Assessment
	}
	if in.References != nil {
		c.References = *in.References
	}
	if in.WeeklyPlan != nil {
		c.WeeklyPlan = *in.WeeklyPlan
	}
	if in.SelectedCPL != nil {
		c.SelectedCPL = in.SelectedCPL.Dedup()
	}
	if in.SelectedCPMK != nil {
		c.SelectedCPMK = in.SelectedCPMK.Dedup()
	}
}

func courseLabel(s *model.Syllabus) string {
	if s.Course != nil {
		return s.Course.Code
	}
	return fmt.Sprintf("#%d", s.CourseID)
}

func syllabusLink(s *model.Syllabus) *string {
	return strPtr("/syllabi/" + s.ID.String())
}
