package service

import (
	"context"
	"strings"

	"rps-backend/app/apperror"
	"rps-backend/app/model"
	"rps-backend/app/repository"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// CurriculumService mengelola katalog mata kuliah dan CPL/CPMK/SubCPMK.
type CurriculumService interface {
	CreateCourse(ctx context.Context, p model.Principal, in CourseInput) (*model.Course, error)
	ListCourses(ctx context.Context, p model.Principal, programID *int64, includeInactive bool) ([]model.Course, error)
	DeactivateCourse(ctx context.Context, p model.Principal, id int64) error
	CreateOutcome(ctx context.Context, p model.Principal, in OutcomeInput) (*model.CurriculumOutcome, error)
	ListOutcomes(ctx context.Context, p model.Principal, level model.OutcomeLevel, courseID *int64) ([]model.CurriculumOutcome, error)
	DeactivateOutcome(ctx context.Context, p model.Principal, id int64) error
}

type CourseInput struct {
	Code           string
	Name           string
	Credits        int
	SemesterNumber int
	Scope          model.OwnerLevel
	OwnerID        int64
}

type OutcomeInput struct {
	Level       model.OutcomeLevel
	ParentID    *int64
	CourseID    *int64
	Code        string
	Description string
	Scope       model.OwnerLevel
	OwnerID     int64
}

type curriculumService struct {
	store  repository.Store
	logger *zap.Logger
}

func NewCurriculumService(store repository.Store, logger *zap.Logger) CurriculumService {
	return &curriculumService{store: store, logger: logger}
}

func canManageCurriculum(r model.Role) bool {
	return r.In(model.RoleProgramHead, model.RoleDean, model.RoleAdmin, model.RoleSuperAdmin, model.RoleInstitutionAdmin)
}

// ownerFor memvalidasi owner dan memastikan unit tersebut boleh ditulis pemanggil.
func (s *curriculumService) ownerFor(ctx context.Context, p model.Principal, scope model.OwnerLevel, id int64) (model.OrgOwner, error) {
	owner, err := model.NewOrgOwner(scope, id)
	if err != nil {
		return owner, apperror.Validation("pemilik tidak valid", apperror.FieldError{Field: "scope", Error: err.Error()})
	}
	if err := s.authorizeOwner(ctx, p, owner); err != nil {
		return owner, err
	}
	return owner, nil
}

func (s *curriculumService) authorizeOwner(ctx context.Context, p model.Principal, owner model.OrgOwner) error {
	ref, err := repository.ResolveOrgRef(ctx, s.store.Org(), owner)
	if err != nil {
		return notFoundOr(err, "unit organisasi")
	}
	if !writable(model.ResolveScope(p), ref) {
		return apperror.Forbidden("unit organisasi di luar cakupan anda")
	}
	return nil
}

func (s *curriculumService) CreateCourse(ctx context.Context, p model.Principal, in CourseInput) (*model.Course, error) {
	if !canManageCurriculum(p.EffectiveRole()) {
		return nil, apperror.Forbidden("anda tidak berhak mengelola mata kuliah")
	}
	var fields []apperror.FieldError
	if strings.TrimSpace(in.Code) == "" {
		fields = append(fields, apperror.FieldError{Field: "code", Error: "required"})
	}
	if strings.TrimSpace(in.Name) == "" {
		fields = append(fields, apperror.FieldError{Field: "name", Error: "required"})
	}
	if in.Credits <= 0 {
		fields = append(fields, apperror.FieldError{Field: "credits", Error: "must be positive"})
	}
	if len(fields) > 0 {
		return nil, apperror.Validation("data mata kuliah tidak lengkap", fields...)
	}
	owner, err := s.ownerFor(ctx, p, in.Scope, in.OwnerID)
	if err != nil {
		return nil, err
	}

	c := &model.Course{
		Code:           strings.TrimSpace(in.Code),
		Name:           strings.TrimSpace(in.Name),
		Credits:        in.Credits,
		SemesterNumber: in.SemesterNumber,
		OrgOwner:       owner,
		IsActive:       true,
	}
	if err := s.store.Courses().Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict("kode mata kuliah sudah dipakai", map[string]string{"code": c.Code})
		}
		return nil, err
	}
	s.logger.Info("course created", zap.Int64("course_id", c.ID), zap.String("code", c.Code))
	return c, nil
}

func (s *curriculumService) ListCourses(ctx context.Context, p model.Principal, programID *int64, includeInactive bool) ([]model.Course, error) {
	scope := model.ResolveScope(p).NarrowProgram(programID)
	return s.store.Courses().List(ctx, scope, repository.CourseFilter{
		IncludeShared: !scope.IsUnrestricted(),
		ActiveOnly:    !includeInactive,
	})
}

// DeactivateCourse adalah soft delete, baris tetap ada untuk RPS yang mereferensikannya.
func (s *curriculumService) DeactivateCourse(ctx context.Context, p model.Principal, id int64) error {
	if !canManageCurriculum(p.EffectiveRole()) {
		return apperror.Forbidden("anda tidak berhak mengelola mata kuliah")
	}
	c, err := s.store.Courses().FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "mata kuliah")
	}
	if err := s.authorizeOwner(ctx, p, c.OrgOwner); err != nil {
		return err
	}
	return s.store.Courses().Deactivate(ctx, id)
}

// CreateOutcome: CPL tanpa induk, CPMK berinduk CPL, SubCPMK berinduk CPMK.
func (s *curriculumService) CreateOutcome(ctx context.Context, p model.Principal, in OutcomeInput) (*model.CurriculumOutcome, error) {
	if !canManageCurriculum(p.EffectiveRole()) {
		return nil, apperror.Forbidden("anda tidak berhak mengelola capaian pembelajaran")
	}
	if !in.Level.Valid() {
		return nil, apperror.Validation("level tidak valid", apperror.FieldError{Field: "level", Error: "must be cpl, cpmk or subcpmk"})
	}
	if strings.TrimSpace(in.Code) == "" {
		return nil, apperror.Validation("kode wajib diisi", apperror.FieldError{Field: "code", Error: "required"})
	}

	want := in.Level.ParentLevel()
	switch {
	case want == "" && in.ParentID != nil:
		return nil, apperror.Validation("CPL tidak boleh memiliki induk", apperror.FieldError{Field: "parent_id", Error: "must be empty"})
	case want != "" && in.ParentID == nil:
		return nil, apperror.Validation("induk wajib diisi", apperror.FieldError{Field: "parent_id", Error: "required"})
	case want != "":
		parent, err := s.store.Outcomes().FindByID(ctx, *in.ParentID)
		if err != nil {
			return nil, notFoundOr(err, "capaian induk")
		}
		if parent.Level != want {
			return nil, apperror.Validation("level induk tidak sesuai",
				apperror.FieldError{Field: "parent_id", Error: "parent must be " + string(want)})
		}
	}
	if in.CourseID != nil {
		if _, err := s.store.Courses().FindByID(ctx, *in.CourseID); err != nil {
			return nil, notFoundOr(err, "mata kuliah")
		}
	}

	owner, err := s.ownerFor(ctx, p, in.Scope, in.OwnerID)
	if err != nil {
		return nil, err
	}
	o := &model.CurriculumOutcome{
		Level:       in.Level,
		ParentID:    in.ParentID,
		CourseID:    in.CourseID,
		Code:        strings.TrimSpace(in.Code),
		Description: in.Description,
		OrgOwner:    owner,
		IsActive:    true,
	}
	if err := s.store.Outcomes().Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *curriculumService) ListOutcomes(ctx context.Context, p model.Principal, level model.OutcomeLevel, courseID *int64) ([]model.CurriculumOutcome, error) {
	if level != "" && !level.Valid() {
		return nil, apperror.Validation("level tidak valid", apperror.FieldError{Field: "level", Error: "must be cpl, cpmk or subcpmk"})
	}
	scope := model.ResolveScope(p)
	return s.store.Outcomes().List(ctx, scope, repository.OutcomeFilter{
		Level:         level,
		CourseID:      courseID,
		IncludeShared: !scope.IsUnrestricted(),
		ActiveOnly:    true,
	})
}

func (s *curriculumService) DeactivateOutcome(ctx context.Context, p model.Principal, id int64) error {
	if !canManageCurriculum(p.EffectiveRole()) {
		return apperror.Forbidden("anda tidak berhak mengelola capaian pembelajaran")
	}
	o, err := s.store.Outcomes().FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "capaian")
	}
	if err := s.authorizeOwner(ctx, p, o.OrgOwner); err != nil {
		return err
	}
	return s.store.Outcomes().Deactivate(ctx, id)
}
