package repository

import (
	"context"

	"rps-backend/app/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// assignmentRepository mengelola penugasan dosen pengampu.
// lock=true jika repository dibuat di dalam transaksi.
type assignmentRepository struct {
	db   *gorm.DB
	lock bool
}

func (r *assignmentRepository) FindByID(ctx context.Context, id int64) (*model.TeachingAssignment, error) {
	var a model.TeachingAssignment
	if err := forUpdate(r.db.WithContext(ctx), r.lock).First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err, "assignment.find")
	}
	return &a, nil
}

func (r *assignmentRepository) FindActiveByCourseTerm(ctx context.Context, courseID int64, term model.Term) ([]model.TeachingAssignment, error) {
	var out []model.TeachingAssignment
	err := forUpdate(r.db.WithContext(ctx), r.lock).
		Where("course_id = ? AND semester = ? AND academic_year = ? AND is_active = ?",
			courseID, term.Semester, term.AcademicYear, true).
		Order("id ASC").
		Find(&out).Error
	return out, translate(err, "assignment.find_active")
}

func (r *assignmentRepository) FindByKey(ctx context.Context, lecturerID uuid.UUID, courseID int64, term model.Term) (*model.TeachingAssignment, error) {
	var a model.TeachingAssignment
	err := forUpdate(r.db.WithContext(ctx), r.lock).
		Where("lecturer_id = ? AND course_id = ? AND semester = ? AND academic_year = ?",
			lecturerID, courseID, term.Semester, term.AcademicYear).
		First(&a).Error
	if err != nil {
		return nil, translate(err, "assignment.find_by_key")
	}
	return &a, nil
}

func (r *assignmentRepository) Create(ctx context.Context, a *model.TeachingAssignment) error {
	return translate(r.db.WithContext(ctx).Create(a).Error, "assignment.create")
}

func (r *assignmentRepository) Save(ctx context.Context, a *model.TeachingAssignment) error {
	return translate(r.db.WithContext(ctx).Save(a).Error, "assignment.save")
}

func (r *assignmentRepository) DeactivateByCourseTerm(ctx context.Context, courseID int64, term model.Term) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.TeachingAssignment{}).
		Where("course_id = ? AND semester = ? AND academic_year = ? AND is_active = ?",
			courseID, term.Semester, term.AcademicYear, true).
		Update("is_active", false)
	return res.RowsAffected, translate(res.Error, "assignment.deactivate")
}

// List menampilkan assignment yang mata kuliahnya berada di dalam scope.
func (r *assignmentRepository) List(ctx context.Context, scope model.Scope, f AssignmentFilter) ([]model.TeachingAssignment, error) {
	q := r.db.WithContext(ctx).
		Model(&model.TeachingAssignment{}).
		Joins("JOIN courses ON courses.id = teaching_assignments.course_id")
	if cond, args := scopeCondition(scope, "courses"); cond != "" {
		q = q.Where(cond, args...)
	}
	if f.CourseID != nil {
		q = q.Where("teaching_assignments.course_id = ?", *f.CourseID)
	}
	if f.LecturerID != nil {
		q = q.Where("teaching_assignments.lecturer_id = ?", *f.LecturerID)
	}
	if f.Term != nil {
		q = q.Where("teaching_assignments.semester = ? AND teaching_assignments.academic_year = ?",
			f.Term.Semester, f.Term.AcademicYear)
	}
	if f.ActiveOnly {
		q = q.Where("teaching_assignments.is_active = ?", true)
	}
	var out []model.TeachingAssignment
	err := q.Order("teaching_assignments.id ASC").Find(&out).Error
	return out, translate(err, "assignment.list")
}
