package inmem

import (
	"context"

	"rps-backend/app/model"
	"rps-backend/app/repository"
)

type orgRepo struct{ s *Store }

func (r *orgRepo) CreateInstitution(ctx context.Context, i *model.Institution) error {
	return r.s.write(func(d *data) error {
		for _, x := range d.institutions {
			if x.Code == i.Code {
				return repository.ErrDuplicate
			}
		}
		if i.ID == 0 {
			i.ID = d.nextID()
		}
		d.institutions[i.ID] = *i
		return nil
	})
}

func (r *orgRepo) CreateFaculty(ctx context.Context, f *model.Faculty) error {
	return r.s.write(func(d *data) error {
		if _, ok := d.institutions[f.InstitutionID]; !ok {
			return repository.ErrNotFound
		}
		for _, x := range d.faculties {
			if x.Code == f.Code {
				return repository.ErrDuplicate
			}
		}
		if f.ID == 0 {
			f.ID = d.nextID()
		}
		d.faculties[f.ID] = *f
		return nil
	})
}

func (r *orgRepo) CreateProgram(ctx context.Context, p *model.Program) error {
	return r.s.write(func(d *data) error {
		if _, ok := d.faculties[p.FacultyID]; !ok {
			return repository.ErrNotFound
		}
		for _, x := range d.programs {
			if x.Code == p.Code {
				return repository.ErrDuplicate
			}
		}
		if p.ID == 0 {
			p.ID = d.nextID()
		}
		d.programs[p.ID] = *p
		return nil
	})
}

func (r *orgRepo) FindInstitution(ctx context.Context, id int64) (*model.Institution, error) {
	var out *model.Institution
	err := r.s.read(func(d *data) error {
		v, ok := d.institutions[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &v
		return nil
	})
	return out, err
}

func (r *orgRepo) FindFaculty(ctx context.Context, id int64) (*model.Faculty, error) {
	var out *model.Faculty
	err := r.s.read(func(d *data) error {
		v, ok := d.faculties[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &v
		return nil
	})
	return out, err
}

func (r *orgRepo) FindProgram(ctx context.Context, id int64) (*model.Program, error) {
	var out *model.Program
	err := r.s.read(func(d *data) error {
		v, ok := d.programs[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &v
		return nil
	})
	return out, err
}
