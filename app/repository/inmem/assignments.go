package inmem

import (
	"context"
	"time"

	"rps-backend/app/model"
	"rps-backend/app/repository"

	"github.com/google/uuid"
)

type assignmentRepo struct{ s *Store }

func sameKey(a model.TeachingAssignment, courseID int64, term model.Term) bool {
	return a.CourseID == courseID && a.Semester == term.Semester && a.AcademicYear == term.AcademicYear
}

func (r *assignmentRepo) FindByID(ctx context.Context, id int64) (*model.TeachingAssignment, error) {
	var out *model.TeachingAssignment
	err := r.s.read(func(d *data) error {
		a, ok := d.assignments[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &a
		return nil
	})
	return out, err
}

func (r *assignmentRepo) FindActiveByCourseTerm(ctx context.Context, courseID int64, term model.Term) ([]model.TeachingAssignment, error) {
	out := []model.TeachingAssignment{}
	err := r.s.read(func(d *data) error {
		for _, a := range d.assignments {
			if a.IsActive && sameKey(a, courseID, term) {
				out = append(out, a)
			}
		}
		return nil
	})
	sortByID(out, func(a model.TeachingAssignment) int64 { return a.ID })
	return out, err
}

func (r *assignmentRepo) FindByKey(ctx context.Context, lecturerID uuid.UUID, courseID int64, term model.Term) (*model.TeachingAssignment, error) {
	var out *model.TeachingAssignment
	err := r.s.read(func(d *data) error {
		for _, a := range d.assignments {
			if a.LecturerID == lecturerID && sameKey(a, courseID, term) {
				a := a
				out = &a
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r *assignmentRepo) Create(ctx context.Context, a *model.TeachingAssignment) error {
	return r.s.write(func(d *data) error {
		for _, x := range d.assignments {
			if x.LecturerID == a.LecturerID && sameKey(x, a.CourseID, a.Term()) {
				return repository.ErrDuplicate
			}
		}
		now := time.Now()
		a.ID = d.nextID()
		a.CreatedAt, a.UpdatedAt = now, now
		d.assignments[a.ID] = *a
		return nil
	})
}

func (r *assignmentRepo) Save(ctx context.Context, a *model.TeachingAssignment) error {
	return r.s.write(func(d *data) error {
		if _, ok := d.assignments[a.ID]; !ok {
			return repository.ErrNotFound
		}
		a.UpdatedAt = time.Now()
		d.assignments[a.ID] = *a
		return nil
	})
}

func (r *assignmentRepo) DeactivateByCourseTerm(ctx context.Context, courseID int64, term model.Term) (int64, error) {
	var n int64
	err := r.s.write(func(d *data) error {
		for id, a := range d.assignments {
			if a.IsActive && sameKey(a, courseID, term) {
				a.IsActive = false
				a.UpdatedAt = time.Now()
				d.assignments[id] = a
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *assignmentRepo) List(ctx context.Context, scope model.Scope, f repository.AssignmentFilter) ([]model.TeachingAssignment, error) {
	out := []model.TeachingAssignment{}
	err := r.s.read(func(d *data) error {
		for _, a := range d.assignments {
			c, ok := d.courses[a.CourseID]
			if !ok || !d.inScope(scope, c.OrgOwner, false) {
				continue
			}
			if f.CourseID != nil && a.CourseID != *f.CourseID {
				continue
			}
			if f.LecturerID != nil && a.LecturerID != *f.LecturerID {
				continue
			}
			if f.Term != nil && !sameKey(a, a.CourseID, *f.Term) {
				continue
			}
			if f.ActiveOnly && !a.IsActive {
				continue
			}
			out = append(out, a)
		}
		return nil
	})
	sortByID(out, func(a model.TeachingAssignment) int64 { return a.ID })
	return out, err
}
