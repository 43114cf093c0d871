package inmem

import (
	"context"
	"sort"
	"time"

	"rps-backend/app/model"
	"rps-backend/app/repository"

	"github.com/google/uuid"
)

type syllabusRepo struct{ s *Store }

// withCourse mengisi relasi Course seperti Preload pada gorm.
func (d *data) withCourse(s model.Syllabus) model.Syllabus {
	if c, ok := d.courses[s.CourseID]; ok {
		s.Course = &c
	}
	return s
}

func (r *syllabusRepo) Create(ctx context.Context, s *model.Syllabus) error {
	return r.s.write(func(d *data) error {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		if s.LineageID == uuid.Nil {
			s.LineageID = s.ID
		}
		if s.Revision == 0 {
			s.Revision = 1
		}
		if _, ok := d.syllabi[s.ID]; ok {
			return repository.ErrDuplicate
		}
		for _, x := range d.syllabi {
			if x.LineageID == s.LineageID && x.Revision == s.Revision {
				return repository.ErrDuplicate
			}
		}
		now := time.Now()
		s.CreatedAt, s.UpdatedAt = now, now
		row := *s
		row.Course = nil
		d.syllabi[s.ID] = row
		return nil
	})
}

func (r *syllabusRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Syllabus, error) {
	var out *model.Syllabus
	err := r.s.read(func(d *data) error {
		s, ok := d.syllabi[id]
		if !ok {
			return repository.ErrNotFound
		}
		s = d.withCourse(s)
		out = &s
		return nil
	})
	return out, err
}

func (r *syllabusRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Syllabus, error) {
	return r.FindByID(ctx, id)
}

func (r *syllabusRepo) FindLatestInLineage(ctx context.Context, lineageID uuid.UUID) (*model.Syllabus, error) {
	var out *model.Syllabus
	err := r.s.read(func(d *data) error {
		for _, s := range d.syllabi {
			if s.LineageID != lineageID {
				continue
			}
			if out == nil || s.Revision > out.Revision {
				s := s
				out = &s
			}
		}
		if out == nil {
			return repository.ErrNotFound
		}
		return nil
	})
	return out, err
}

func (r *syllabusRepo) ExistsForAssignment(ctx context.Context, assignmentID int64) (bool, error) {
	found := false
	err := r.s.read(func(d *data) error {
		for _, s := range d.syllabi {
			if s.AssignmentID != nil && *s.AssignmentID == assignmentID {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r *syllabusRepo) Save(ctx context.Context, s *model.Syllabus) error {
	return r.s.write(func(d *data) error {
		if _, ok := d.syllabi[s.ID]; !ok {
			return repository.ErrNotFound
		}
		s.UpdatedAt = time.Now()
		row := *s
		row.Course = nil
		d.syllabi[s.ID] = row
		return nil
	})
}

func (r *syllabusRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.s.write(func(d *data) error {
		if _, ok := d.syllabi[id]; !ok {
			return repository.ErrNotFound
		}
		delete(d.syllabi, id)
		return nil
	})
}

func (r *syllabusRepo) List(ctx context.Context, scope model.Scope, f repository.SyllabusFilter) ([]model.Syllabus, error) {
	out := []model.Syllabus{}
	err := r.s.read(func(d *data) error {
		for _, s := range d.syllabi {
			c, ok := d.courses[s.CourseID]
			if !ok || !d.inScope(scope, c.OrgOwner, f.IncludeShared) {
				continue
			}
			if f.Status != nil && s.Status != *f.Status {
				continue
			}
			if f.ProgramID != nil && (c.ProgramID == nil || *c.ProgramID != *f.ProgramID) {
				continue
			}
			if f.Term != nil {
				t := s.Term()
				if t == nil || *t != *f.Term {
					continue
				}
			}
			if f.AuthorID != nil && s.AuthorID != *f.AuthorID {
				continue
			}
			if f.IsTemplate != nil && s.IsTemplate != *f.IsTemplate {
				continue
			}
			out = append(out, d.withCourse(s))
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, err
}
