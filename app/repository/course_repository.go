package repository

import (
	"context"

	"rps-backend/app/model"

	"gorm.io/gorm"
)

type courseRepository struct {
	db   *gorm.DB
	lock bool
}

// Create memvalidasi owner lewat hook BeforeSave sebelum insert.
func (r *courseRepository) Create(ctx context.Context, c *model.Course) error {
	return translate(r.db.WithContext(ctx).Create(c).Error, "course.create")
}

func (r *courseRepository) FindByID(ctx context.Context, id int64) (*model.Course, error) {
	var c model.Course
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err, "course.find")
	}
	return &c, nil
}

func (r *courseRepository) FindByIDForUpdate(ctx context.Context, id int64) (*model.Course, error) {
	var c model.Course
	if err := forUpdate(r.db.WithContext(ctx), r.lock).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err, "course.find_for_update")
	}
	return &c, nil
}

func (r *courseRepository) List(ctx context.Context, scope model.Scope, f CourseFilter) ([]model.Course, error) {
	q := r.db.WithContext(ctx).Model(&model.Course{})
	if cond, args := buildScope(scope, "courses", f.IncludeShared); cond != "" {
		q = q.Where(cond, args...)
	}
	if f.ProgramID != nil {
		q = q.Where("courses.program_id = ?", *f.ProgramID)
	}
	if f.ActiveOnly {
		q = q.Where("courses.is_active = ?", true)
	}
	var out []model.Course
	err := q.Order("courses.code ASC").Find(&out).Error
	return out, translate(err, "course.list")
}

// Deactivate adalah soft delete, mata kuliah tidak pernah dihapus permanen.
func (r *courseRepository) Deactivate(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Model(&model.Course{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return translate(res.Error, "course.deactivate")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
