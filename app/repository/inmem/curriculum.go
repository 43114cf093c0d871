package inmem

import (
	"context"

	"rps-backend/app/model"
	"rps-backend/app/repository"
)

type courseRepo struct{ s *Store }

func (r *courseRepo) Create(ctx context.Context, c *model.Course) error {
	if err := c.OrgOwner.Validate(); err != nil {
		return err
	}
	return r.s.write(func(d *data) error {
		for _, x := range d.courses {
			if x.Code == c.Code {
				return repository.ErrDuplicate
			}
		}
		if c.ID == 0 {
			c.ID = d.nextID()
		}
		d.courses[c.ID] = *c
		return nil
	})
}

// FindByIDForUpdate: transaksi inmem sudah serial lewat txMu.
func (r *courseRepo) FindByIDForUpdate(ctx context.Context, id int64) (*model.Course, error) {
	return r.FindByID(ctx, id)
}

func (r *courseRepo) FindByID(ctx context.Context, id int64) (*model.Course, error) {
	var out *model.Course
	err := r.s.read(func(d *data) error {
		c, ok := d.courses[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *courseRepo) List(ctx context.Context, scope model.Scope, f repository.CourseFilter) ([]model.Course, error) {
	out := []model.Course{}
	err := r.s.read(func(d *data) error {
		for _, c := range d.courses {
			if !d.inScope(scope, c.OrgOwner, f.IncludeShared) {
				continue
			}
			if f.ProgramID != nil && (c.ProgramID == nil || *c.ProgramID != *f.ProgramID) {
				continue
			}
			if f.ActiveOnly && !c.IsActive {
				continue
			}
			out = append(out, c)
		}
		return nil
	})
	sortByID(out, func(c model.Course) int64 { return c.ID })
	return out, err
}

func (r *courseRepo) Deactivate(ctx context.Context, id int64) error {
	return r.s.write(func(d *data) error {
		c, ok := d.courses[id]
		if !ok {
			return repository.ErrNotFound
		}
		c.IsActive = false
		d.courses[id] = c
		return nil
	})
}

type outcomeRepo struct{ s *Store }

func (r *outcomeRepo) Create(ctx context.Context, o *model.CurriculumOutcome) error {
	if err := o.OrgOwner.Validate(); err != nil {
		return err
	}
	return r.s.write(func(d *data) error {
		if o.ID == 0 {
			o.ID = d.nextID()
		}
		d.outcomes[o.ID] = *o
		return nil
	})
}

func (r *outcomeRepo) FindByID(ctx context.Context, id int64) (*model.CurriculumOutcome, error) {
	var out *model.CurriculumOutcome
	err := r.s.read(func(d *data) error {
		o, ok := d.outcomes[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &o
		return nil
	})
	return out, err
}

func (r *outcomeRepo) FindByIDs(ctx context.Context, level model.OutcomeLevel, ids []int64) ([]model.CurriculumOutcome, error) {
	out := []model.CurriculumOutcome{}
	err := r.s.read(func(d *data) error {
		for _, id := range ids {
			if o, ok := d.outcomes[id]; ok && o.Level == level {
				out = append(out, o)
			}
		}
		return nil
	})
	return out, err
}

func (r *outcomeRepo) List(ctx context.Context, scope model.Scope, f repository.OutcomeFilter) ([]model.CurriculumOutcome, error) {
	out := []model.CurriculumOutcome{}
	err := r.s.read(func(d *data) error {
		for _, o := range d.outcomes {
			if !d.inScope(scope, o.OrgOwner, f.IncludeShared) {
				continue
			}
			if f.Level != "" && o.Level != f.Level {
				continue
			}
			if f.CourseID != nil && (o.CourseID == nil || *o.CourseID != *f.CourseID) {
				continue
			}
			if f.ActiveOnly && !o.IsActive {
				continue
			}
			out = append(out, o)
		}
		return nil
	})
	sortByID(out, func(o model.CurriculumOutcome) int64 { return o.ID })
	return out, err
}

func (r *outcomeRepo) Deactivate(ctx context.Context, id int64) error {
	return r.s.write(func(d *data) error {
		o, ok := d.outcomes[id]
		if !ok {
			return repository.ErrNotFound
		}
		o.IsActive = false
		d.outcomes[id] = o
		return nil
	})
}
