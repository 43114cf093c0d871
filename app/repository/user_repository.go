package repository

import (
	"context"
	"strings"

	"rps-backend/app/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// userRepository adalah implementasi konkret UserRepository berbasis GORM.
type userRepository struct {
	db *gorm.DB
}

// Create menyimpan user baru beserta role tambahannya.
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error, "user.create")
}

// FindByID mengambil user berdasarkan ID lengkap dengan role tambahan.
func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("UserRoles").
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, translate(err, "user.find_by_id")
	}
	return &user, nil
}

// FindByEmail dipakai saat login.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("UserRoles").
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, translate(err, "user.find_by_email")
	}
	return &user, nil
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	var users []model.User
	err := r.db.WithContext(ctx).
		Preload("UserRoles").
		Where("id IN ?", ids).
		Find(&users).Error
	return users, translate(err, "user.find_by_ids")
}

// FindProgramHeads: kaprodi aktif, baik sebagai primary role maupun role tambahan.
func (r *userRepository) FindProgramHeads(ctx context.Context, programID int64) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Preload("UserRoles").
		Where("program_id = ? AND is_active = ?", programID, true).
		Where("role = ? OR id IN (SELECT user_id FROM user_roles WHERE role = ?)",
			model.RoleProgramHead, model.RoleProgramHead).
		Find(&users).Error
	return users, translate(err, "user.find_program_heads")
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Count(&n).Error
	return n, translate(err, "user.count")
}

func (r *userRepository) CreateCustomRole(ctx context.Context, cr *model.CustomRole) error {
	return translate(r.db.WithContext(ctx).Create(cr).Error, "custom_role.create")
}

// ResolveCustomRole mencari pemetaan custom role, ErrNotFound jika tidak ada.
func (r *userRepository) ResolveCustomRole(ctx context.Context, name string) (model.Role, error) {
	var cr model.CustomRole
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&cr).Error
	if err != nil {
		return model.RoleGuest, translate(err, "custom_role.resolve")
	}
	return cr.BaseRole, nil
}
