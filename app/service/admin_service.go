package service

import (
	"context"
	"strings"

	"rps-backend/app/apperror"
	"rps-backend/app/model"
	"rps-backend/app/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AdminService adalah CRUD administratif: akun, pohon organisasi, custom role.
type AdminService interface {
	CreateUser(ctx context.Context, p model.Principal, in CreateUserInput) (*model.User, error)
	GetUser(ctx context.Context, p model.Principal, id uuid.UUID) (*model.User, error)
	CreateInstitution(ctx context.Context, p model.Principal, in *model.Institution) error
	CreateFaculty(ctx context.Context, p model.Principal, in *model.Faculty) error
	CreateProgram(ctx context.Context, p model.Principal, in *model.Program) error
	CreateCustomRole(ctx context.Context, p model.Principal, name string, base model.Role, note string) (*model.CustomRole, error)
}

type CreateUserInput struct {
	Username      string
	Email         string
	Password      string
	FullName      string
	Role          string
	ExtraRoles    []model.Role
	InstitutionID *int64
	FacultyID     *int64
	ProgramID     *int64
	Angkatan      *int
}

type adminService struct {
	store  repository.Store
	logger *zap.Logger
}

func NewAdminService(store repository.Store, logger *zap.Logger) AdminService {
	return &adminService{store: store, logger: logger}
}

// helper: cek admin
func ensureAdmin(p model.Principal) error {
	if !p.EffectiveRole().IsAdministrative() {
		return apperror.Forbidden("hanya admin yang dapat mengakses fitur ini")
	}
	return nil
}

// HashPassword membuat bcrypt hash dengan cost default.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}

func (s *adminService) CreateUser(ctx context.Context, p model.Principal, in CreateUserInput) (*model.User, error) {
	if err := ensureAdmin(p); err != nil {
		return nil, err
	}
	var fields []apperror.FieldError
	if strings.TrimSpace(in.Username) == "" {
		fields = append(fields, apperror.FieldError{Field: "username", Error: "required"})
	}
	if strings.TrimSpace(in.Email) == "" {
		fields = append(fields, apperror.FieldError{Field: "email", Error: "required"})
	}
	if len(in.Password) < 8 {
		fields = append(fields, apperror.FieldError{Field: "password", Error: "min 8 characters"})
	}
	if len(fields) > 0 {
		return nil, apperror.Validation("data user tidak valid", fields...)
	}

	role, builtin := model.ParseRole(in.Role)
	if !builtin {
		if _, err := s.store.Users().ResolveCustomRole(ctx, strings.TrimSpace(in.Role)); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperror.Validation("role tidak dikenal", apperror.FieldError{Field: "role", Error: "unknown role"})
			}
			return nil, err
		}
		role = model.Role(strings.TrimSpace(in.Role))
	}
	if role == model.RoleSuperAdmin && p.EffectiveRole() != model.RoleSuperAdmin {
		return nil, apperror.Forbidden("hanya superadmin yang dapat membuat superadmin")
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		ID:            uuid.New(),
		Username:      strings.TrimSpace(in.Username),
		Email:         strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash:  hash,
		FullName:      in.FullName,
		Role:          string(role),
		InstitutionID: in.InstitutionID,
		FacultyID:     in.FacultyID,
		ProgramID:     in.ProgramID,
		Angkatan:      in.Angkatan,
		IsActive:      true,
	}
	for _, r := range in.ExtraRoles {
		if !r.Valid() {
			return nil, apperror.Validation("role tambahan tidak dikenal", apperror.FieldError{Field: "extraRoles", Error: string(r)})
		}
		if r == model.RoleSuperAdmin {
			return nil, apperror.Validation("superadmin tidak bisa menjadi role tambahan", apperror.FieldError{Field: "extraRoles", Error: string(r)})
		}
		user.UserRoles = append(user.UserRoles, model.UserRole{UserID: user.ID, Role: r})
	}

	if err := s.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict("username atau email sudah terdaftar", nil)
		}
		return nil, err
	}
	s.logger.Info("user created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", user.Role),
		zap.String("actor_id", p.ID.String()))
	return user, nil
}

func (s *adminService) GetUser(ctx context.Context, p model.Principal, id uuid.UUID) (*model.User, error) {
	if err := ensureAdmin(p); err != nil {
		return nil, err
	}
	u, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	return u, nil
}

func (s *adminService) CreateInstitution(ctx context.Context, p model.Principal, in *model.Institution) error {
	if err := ensureAdmin(p); err != nil {
		return err
	}
	return orgConflict(s.store.Org().CreateInstitution(ctx, in))
}

func (s *adminService) CreateFaculty(ctx context.Context, p model.Principal, in *model.Faculty) error {
	if err := ensureAdmin(p); err != nil {
		return err
	}
	return notFoundOr(orgConflict(s.store.Org().CreateFaculty(ctx, in)), "institusi")
}

func (s *adminService) CreateProgram(ctx context.Context, p model.Principal, in *model.Program) error {
	if err := ensureAdmin(p); err != nil {
		return err
	}
	return notFoundOr(orgConflict(s.store.Org().CreateProgram(ctx, in)), "fakultas")
}

func orgConflict(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperror.Conflict("kode unit organisasi sudah dipakai", nil)
	}
	return err
}

// CreateCustomRole mendaftarkan nama role institusi yang dipetakan ke role bawaan.
func (s *adminService) CreateCustomRole(ctx context.Context, p model.Principal, name string, base model.Role, note string) (*model.CustomRole, error) {
	if err := ensureAdmin(p); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validation("nama role wajib diisi", apperror.FieldError{Field: "name", Error: "required"})
	}
	if _, builtin := model.ParseRole(name); builtin {
		return nil, apperror.Validation("nama role bentrok dengan role bawaan", apperror.FieldError{Field: "name", Error: "reserved"})
	}
	if !base.Valid() || base == model.RoleSuperAdmin {
		return nil, apperror.Validation("base role tidak valid", apperror.FieldError{Field: "baseRole", Error: "invalid"})
	}
	cr := &model.CustomRole{Name: name, BaseRole: base, Note: note}
	if err := s.store.Users().CreateCustomRole(ctx, cr); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict("custom role sudah ada", nil)
		}
		return nil, err
	}
	return cr, nil
}
