package database

import (
	"context"
	"strings"

	"rps-backend/app/model"
	"rps-backend/app/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// EnsureBootstrapAdmin membuat satu superadmin jika tabel users masih kosong
// dan BOOTSTRAP_ADMIN_EMAIL / BOOTSTRAP_ADMIN_PASSWORD diisi.
// Mengembalikan true jika user baru dibuat.
func EnsureBootstrapAdmin(ctx context.Context, users repository.UserRepository, email, password string, logger *zap.Logger) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return false, nil
	}

	count, err := users.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		logger.Debug("[SEEDER] user sudah ada, skip bootstrap admin")
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	username := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		username = email[:i]
	}
	admin := &model.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FullName:     "Super Admin",
		Role:         string(model.RoleSuperAdmin),
		IsActive:     true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return false, err
	}
	logger.Info("[SEEDER] bootstrap superadmin dibuat", zap.String("email", email))
	return true, nil
}
