package repository

import (
	"context"

	"rps-backend/app/model"

	"gorm.io/gorm"
)

// orgRepository membaca pohon Institusi -> Fakultas -> Prodi.
// Operasi create dipakai endpoint admin dan bootstrap.
type orgRepository struct {
	db *gorm.DB
}

func (r *orgRepository) CreateInstitution(ctx context.Context, i *model.Institution) error {
	return translate(r.db.WithContext(ctx).Create(i).Error, "institution.create")
}

// CreateFaculty mengembalikan ErrNotFound jika institusinya tidak ada.
func (r *orgRepository) CreateFaculty(ctx context.Context, f *model.Faculty) error {
	if _, err := r.FindInstitution(ctx, f.InstitutionID); err != nil {
		return err
	}
	return translate(r.db.WithContext(ctx).Create(f).Error, "faculty.create")
}

func (r *orgRepository) CreateProgram(ctx context.Context, p *model.Program) error {
	if _, err := r.FindFaculty(ctx, p.FacultyID); err != nil {
		return err
	}
	return translate(r.db.WithContext(ctx).Create(p).Error, "program.create")
}

func (r *orgRepository) FindInstitution(ctx context.Context, id int64) (*model.Institution, error) {
	var i model.Institution
	if err := r.db.WithContext(ctx).First(&i, "id = ?", id).Error; err != nil {
		return nil, translate(err, "institution.find")
	}
	return &i, nil
}

func (r *orgRepository) FindFaculty(ctx context.Context, id int64) (*model.Faculty, error) {
	var f model.Faculty
	if err := r.db.WithContext(ctx).First(&f, "id = ?", id).Error; err != nil {
		return nil, translate(err, "faculty.find")
	}
	return &f, nil
}

func (r *orgRepository) FindProgram(ctx context.Context, id int64) (*model.Program, error) {
	var p model.Program
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err, "program.find")
	}
	return &p, nil
}
