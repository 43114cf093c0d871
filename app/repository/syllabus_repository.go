package repository

import (
	"context"

	"rps-backend/app/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// syllabusRepository mengelola tabel syllabi.
// Di dalam transaksi, pembacaan untuk transisi status mengunci baris (FOR UPDATE).
type syllabusRepository struct {
	db   *gorm.DB
	lock bool
}

func (r *syllabusRepository) Create(ctx context.Context, s *model.Syllabus) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.LineageID == uuid.Nil {
		s.LineageID = s.ID
	}
	return translate(r.db.WithContext(ctx).Omit("Course").Create(s).Error, "syllabus.create")
}

// FindByID mengambil RPS beserta mata kuliahnya.
func (r *syllabusRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Syllabus, error) {
	var s model.Syllabus
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, translate(err, "syllabus.find")
	}
	return &s, nil
}

func (r *syllabusRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Syllabus, error) {
	var s model.Syllabus
	err := forUpdate(r.db.WithContext(ctx), r.lock).
		Where("id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, translate(err, "syllabus.find_for_update")
	}
	var c model.Course
	if err := r.db.WithContext(ctx).First(&c, "id = ?", s.CourseID).Error; err != nil {
		return nil, translate(err, "syllabus.find_course")
	}
	s.Course = &c
	return &s, nil
}

// FindLatestInLineage mengambil revisi tertinggi dari satu lineage.
func (r *syllabusRepository) FindLatestInLineage(ctx context.Context, lineageID uuid.UUID) (*model.Syllabus, error) {
	var s model.Syllabus
	err := forUpdate(r.db.WithContext(ctx), r.lock).
		Where("lineage_id = ?", lineageID).
		Order("revision DESC").
		First(&s).Error
	if err != nil {
		return nil, translate(err, "syllabus.find_latest")
	}
	return &s, nil
}

func (r *syllabusRepository) ExistsForAssignment(ctx context.Context, assignmentID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Syllabus{}).
		Where("assignment_id = ?", assignmentID).
		Count(&count).Error
	return count > 0, translate(err, "syllabus.exists_for_assignment")
}

func (r *syllabusRepository) Save(ctx context.Context, s *model.Syllabus) error {
	return translate(r.db.WithContext(ctx).Omit("Course").Save(s).Error, "syllabus.save")
}

// Delete menghapus permanen (hanya dipanggil untuk status draft).
func (r *syllabusRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Syllabus{})
	if res.Error != nil {
		return translate(res.Error, "syllabus.delete")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *syllabusRepository) List(ctx context.Context, scope model.Scope, f SyllabusFilter) ([]model.Syllabus, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Syllabus{}).
		Joins("JOIN courses ON courses.id = syllabi.course_id").
		Preload("Course")
	if cond, args := buildScope(scope, "courses", f.IncludeShared); cond != "" {
		q = q.Where(cond, args...)
	}
	if f.Status != nil {
		q = q.Where("syllabi.status = ?", *f.Status)
	}
	if f.ProgramID != nil {
		q = q.Where("courses.program_id = ?", *f.ProgramID)
	}
	if f.Term != nil {
		q = q.Where("syllabi.semester = ? AND syllabi.academic_year = ?", f.Term.Semester, f.Term.AcademicYear)
	}
	if f.AuthorID != nil {
		q = q.Where("syllabi.author_id = ?", *f.AuthorID)
	}
	if f.IsTemplate != nil {
		q = q.Where("syllabi.is_template = ?", *f.IsTemplate)
	}
	var out []model.Syllabus
	err := q.Order("syllabi.updated_at DESC").Find(&out).Error
	return out, translate(err, "syllabus.list")
}
