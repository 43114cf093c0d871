package inmem

import (
	"context"
	"strings"

	"rps-backend/app/model"
	"rps-backend/app/repository"

	"github.com/google/uuid"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	return r.s.write(func(d *data) error {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		if _, ok := d.users[u.ID]; ok {
			return repository.ErrDuplicate
		}
		for _, x := range d.users {
			if strings.EqualFold(x.Email, u.Email) || x.Username == u.Username {
				return repository.ErrDuplicate
			}
		}
		for i := range u.UserRoles {
			u.UserRoles[i].UserID = u.ID
		}
		d.users[u.ID] = *u
		return nil
	})
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var out *model.User
	err := r.s.read(func(d *data) error {
		u, ok := d.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var out *model.User
	err := r.s.read(func(d *data) error {
		for _, u := range d.users {
			if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
				u := u
				out = &u
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r *userRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error) {
	out := []model.User{}
	err := r.s.read(func(d *data) error {
		for _, id := range ids {
			if u, ok := d.users[id]; ok {
				out = append(out, u)
			}
		}
		return nil
	})
	return out, err
}

func (r *userRepo) FindProgramHeads(ctx context.Context, programID int64) ([]model.User, error) {
	out := []model.User{}
	err := r.s.read(func(d *data) error {
		for _, u := range d.users {
			if u.IsActive && u.ProgramID != nil && *u.ProgramID == programID && u.HasRole(model.RoleProgramHead) {
				out = append(out, u)
			}
		}
		return nil
	})
	return out, err
}

func (r *userRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.s.read(func(d *data) error {
		n = int64(len(d.users))
		return nil
	})
	return n, err
}

func (r *userRepo) CreateCustomRole(ctx context.Context, cr *model.CustomRole) error {
	return r.s.write(func(d *data) error {
		if _, ok := d.customRoles[cr.Name]; ok {
			return repository.ErrDuplicate
		}
		d.customRoles[cr.Name] = *cr
		return nil
	})
}

func (r *userRepo) ResolveCustomRole(ctx context.Context, name string) (model.Role, error) {
	role := model.RoleGuest
	err := r.s.read(func(d *data) error {
		cr, ok := d.customRoles[name]
		if !ok {
			return repository.ErrNotFound
		}
		role = cr.BaseRole
		return nil
	})
	return role, err
}
