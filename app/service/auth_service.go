package service

import (
	"context"
	"strings"

	"rps-backend/app/apperror"
	"rps-backend/app/model"
	"rps-backend/app/repository"
	"rps-backend/utils"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService menerbitkan credential: login, switch role dan impersonation.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Me(ctx context.Context, p model.Principal) (*MeResult, error)
	SwitchRole(ctx context.Context, p model.Principal, role string) (*LoginResult, error)
	Impersonate(ctx context.Context, admin model.Principal, targetID uuid.UUID) (*ImpersonationResult, error)
	EndImpersonation(ctx context.Context, restoreToken string) (*LoginResult, error)
}

type LoginResult struct {
	Credential utils.Issued    `json:"credential"`
	Principal  model.Principal `json:"principal"`
}

type MeResult struct {
	User      *model.User     `json:"user"`
	Principal model.Principal `json:"principal"`
}

type ImpersonationResult struct {
	Credential        utils.Issued    `json:"credential"`
	RestoreCredential utils.Issued    `json:"restoreCredential"`
	Principal         model.Principal `json:"principal"`
}

type authService struct {
	users  repository.UserRepository
	tokens *utils.TokenIssuer
	logger *zap.Logger
}

func NewAuthService(users repository.UserRepository, tokens *utils.TokenIssuer, logger *zap.Logger) AuthService {
	return &authService{users: users, tokens: tokens, logger: logger}
}

// Login: cek email dan password lalu terbitkan credential standar.
func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.Unauthenticated("email atau password salah")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.Unauthenticated("email atau password salah")
	}
	if !user.IsActive {
		return nil, apperror.Forbidden("akun anda dinonaktifkan")
	}

	p, err := s.principalFor(ctx, user)
	if err != nil {
		return nil, err
	}
	issued, err := s.tokens.IssueAccess(p)
	if err != nil {
		return nil, errors.Wrap(err, "issue access token")
	}
	s.logger.Info("user logged in", zap.String("user_id", user.ID.String()), zap.String("role", string(p.PrimaryRole)))
	return &LoginResult{Credential: issued, Principal: p}, nil
}

func (s *authService) Me(ctx context.Context, p model.Principal) (*MeResult, error) {
	user, err := s.users.FindByID(ctx, p.ID)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &MeResult{User: user, Principal: p}, nil
}

// SwitchRole menerbitkan ulang credential dengan active role baru.
// Daftar role dibaca ulang dari database, bukan dari token lama.
func (s *authService) SwitchRole(ctx context.Context, p model.Principal, role string) (*LoginResult, error) {
	if p.IsImpersonating() {
		return nil, apperror.Forbidden("akhiri impersonation sebelum berganti role")
	}
	requested, ok := model.ParseRole(role)
	if !ok {
		return nil, apperror.Validation("role tidak dikenal", apperror.FieldError{Field: "role", Error: "unknown role"})
	}
	user, err := s.users.FindByID(ctx, p.ID)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	if !user.IsActive {
		return nil, apperror.Forbidden("akun anda dinonaktifkan")
	}
	fresh, err := s.principalFor(ctx, user)
	if err != nil {
		return nil, err
	}
	if !fresh.CanAssume(requested) {
		return nil, apperror.Forbidden("role tidak tersedia untuk akun anda")
	}
	fresh.ActiveRole = requested

	issued, err := s.tokens.IssueAccess(fresh)
	if err != nil {
		return nil, errors.Wrap(err, "issue access token")
	}
	s.logger.Info("role switched",
		zap.String("user_id", p.ID.String()),
		zap.String("from", string(p.EffectiveRole())),
		zap.String("to", string(requested)))
	return &LoginResult{Credential: issued, Principal: fresh}, nil
}

// Impersonate: hanya superadmin, tidak boleh menyamar sebagai superadmin lain.
func (s *authService) Impersonate(ctx context.Context, admin model.Principal, targetID uuid.UUID) (*ImpersonationResult, error) {
	if admin.EffectiveRole() != model.RoleSuperAdmin || admin.IsImpersonating() {
		return nil, apperror.Forbidden("hanya superadmin yang dapat melakukan impersonation")
	}
	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	if !target.IsActive {
		return nil, apperror.Validation("user target tidak aktif", apperror.FieldError{Field: "userId", Error: "inactive"})
	}

	p, err := s.principalFor(ctx, target)
	if err != nil {
		return nil, err
	}
	if p.PrimaryRole == model.RoleSuperAdmin && target.ID != admin.ID {
		return nil, apperror.Forbidden("tidak dapat melakukan impersonation terhadap superadmin lain")
	}
	p.Impersonation = &model.Impersonation{OriginalAdminID: admin.ID}

	issued, err := s.tokens.IssueAccess(p)
	if err != nil {
		return nil, errors.Wrap(err, "issue impersonation token")
	}
	p.Impersonation.ExpiresAt = issued.ExpiresAt
	restore, err := s.tokens.IssueRestore(admin.ID)
	if err != nil {
		return nil, errors.Wrap(err, "issue restore token")
	}

	s.logger.Warn("impersonation started",
		zap.String("admin_id", admin.ID.String()),
		zap.String("target_id", target.ID.String()))
	return &ImpersonationResult{Credential: issued, RestoreCredential: restore, Principal: p}, nil
}

// EndImpersonation menukar restore credential dengan credential superadmin baru.
func (s *authService) EndImpersonation(ctx context.Context, restoreToken string) (*LoginResult, error) {
	claims, err := s.tokens.Parse(restoreToken, utils.PurposeRestore)
	if err != nil {
		return nil, apperror.Unauthenticated("restore credential tidak valid atau kedaluwarsa")
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	if !user.IsActive {
		return nil, apperror.Forbidden("akun anda dinonaktifkan")
	}
	p, err := s.principalFor(ctx, user)
	if err != nil {
		return nil, err
	}
	if p.PrimaryRole != model.RoleSuperAdmin {
		return nil, apperror.Forbidden("restore credential bukan milik superadmin")
	}
	issued, err := s.tokens.IssueAccess(p)
	if err != nil {
		return nil, errors.Wrap(err, "issue access token")
	}
	s.logger.Info("impersonation ended", zap.String("admin_id", user.ID.String()))
	return &LoginResult{Credential: issued, Principal: p}, nil
}

// principalFor membangun Principal dari baris user.
// Role yang bukan role bawaan dipetakan lewat tabel custom role,
// nama yang tidak terdaftar menjadi guest.
func (s *authService) principalFor(ctx context.Context, u *model.User) (model.Principal, error) {
	primary, err := ResolveRole(ctx, s.users, u.Role)
	if err != nil {
		return model.Principal{}, err
	}
	var available []model.Role
	for _, r := range u.AvailableRoles() {
		if r.Valid() && r != primary {
			available = append(available, r)
		}
	}
	return model.Principal{
		ID:             u.ID,
		PrimaryRole:    primary,
		InstitutionID:  u.InstitutionID,
		FacultyID:      u.FacultyID,
		ProgramID:      u.ProgramID,
		Angkatan:       u.Angkatan,
		AvailableRoles: available,
	}, nil
}

// ResolveRole memetakan nama role tersimpan ke Role bawaan.
func ResolveRole(ctx context.Context, users repository.UserRepository, name string) (model.Role, error) {
	if r, ok := model.ParseRole(name); ok {
		return r, nil
	}
	r, err := users.ResolveCustomRole(ctx, strings.TrimSpace(name))
	if errors.Is(err, repository.ErrNotFound) {
		return model.RoleGuest, nil
	}
	if err != nil {
		return model.RoleGuest, err
	}
	if !r.Valid() {
		return model.RoleGuest, nil
	}
	return r, nil
}
