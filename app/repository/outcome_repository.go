package repository

import (
	"context"

	"rps-backend/app/model"

	"gorm.io/gorm"
)

type outcomeRepository struct {
	db *gorm.DB
}

func (r *outcomeRepository) Create(ctx context.Context, o *model.CurriculumOutcome) error {
	return translate(r.db.WithContext(ctx).Create(o).Error, "outcome.create")
}

func (r *outcomeRepository) FindByID(ctx context.Context, id int64) (*model.CurriculumOutcome, error) {
	var o model.CurriculumOutcome
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, translate(err, "outcome.find")
	}
	return &o, nil
}

func (r *outcomeRepository) FindByIDs(ctx context.Context, level model.OutcomeLevel, ids []int64) ([]model.CurriculumOutcome, error) {
	if len(ids) == 0 {
		return []model.CurriculumOutcome{}, nil
	}
	var out []model.CurriculumOutcome
	err := r.db.WithContext(ctx).
		Where("level = ? AND id IN ?", level, ids).
		Find(&out).Error
	return out, translate(err, "outcome.find_by_ids")
}

func (r *outcomeRepository) List(ctx context.Context, scope model.Scope, f OutcomeFilter) ([]model.CurriculumOutcome, error) {
	q := r.db.WithContext(ctx).Model(&model.CurriculumOutcome{})
	if cond, args := buildScope(scope, "curriculum_outcomes", f.IncludeShared); cond != "" {
		q = q.Where(cond, args...)
	}
	if f.Level != "" {
		q = q.Where("curriculum_outcomes.level = ?", f.Level)
	}
	if f.CourseID != nil {
		q = q.Where("curriculum_outcomes.course_id = ?", *f.CourseID)
	}
	if f.ActiveOnly {
		q = q.Where("curriculum_outcomes.is_active = ?", true)
	}
	var out []model.CurriculumOutcome
	err := q.Order("curriculum_outcomes.code ASC").Find(&out).Error
	return out, translate(err, "outcome.list")
}

func (r *outcomeRepository) Deactivate(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Model(&model.CurriculumOutcome{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return translate(res.Error, "outcome.deactivate")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
