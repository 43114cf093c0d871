package routes

import (
	"net/http"

	"rps-backend/app/model"
	"rps-backend/app/service"
	"rps-backend/utils"

	"github.com/gin-gonic/gin"
)

// AdminHandler menangani impersonation dan CRUD administratif.
type AdminHandler struct {
	admin service.AdminService
	auth  service.AuthService
}

func NewAdminHandler(admin service.AdminService, auth service.AuthService) *AdminHandler {
	return &AdminHandler{admin: admin, auth: auth}
}

// SetupAdminRoutes: end-impersonation diautentikasi oleh restore credential
// di body, bukan oleh access token (yang saat itu milik user target).
func (h *AdminHandler) SetupAdminRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	r.POST("/admin/end-impersonation", h.EndImpersonation)

	admin := r.Group("/admin")
	admin.Use(auth)
	{
		admin.POST("/impersonate/:userId", h.Impersonate)

		admin.POST("/users", h.CreateUser)
		admin.GET("/users/:id", h.GetUser)
		admin.POST("/institutions", h.CreateInstitution)
		admin.POST("/faculties", h.CreateFaculty)
		admin.POST("/programs", h.CreateProgram)
		admin.POST("/custom-roles", h.CreateCustomRole)
	}
}

func (h *AdminHandler) Impersonate(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	target, ok := uuidParam(c, "userId")
	if !ok {
		return
	}
	res, err := h.auth.Impersonate(c.Request.Context(), p, target)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.BuildResponseSuccess("Impersonation dimulai", res))
}

func (h *AdminHandler) EndImpersonation(c *gin.Context) {
	var input struct {
		RestoreToken string `json:"restore_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, bindError(err))
		return
	}
	res, err := h.auth.EndImpersonation(c.Request.Context(), input.RestoreToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.BuildResponseSuccess("Impersonation diakhiri", res))
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var input struct {
		Username      string       `json:"username" binding:"required"`
		Email         string       `json:"email" binding:"required,email"`
		Password      string       `json:"password" binding:"required,min=8"`
		FullName      string       `json:"fullName" binding:"required"`
		Role          string       `json:"role" binding:"required"`
		ExtraRoles    []model.Role `json:"extraRoles"`
		InstitutionID *int64       `json:"institutionId"`
		FacultyID     *int64       `json:"facultyId"`
		ProgramID     *int64       `json:"programId"`
		Angkatan      *int         `json:"angkatan"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, bindError(err))
		return
	}
	user, err := h.admin.CreateUser(c.Request.Context(), p, service.CreateUserInput{
		Username:      input.Username,
		Email:         input.Email,
		Password:      input.Password,
		FullName:      input.FullName,
		Role:          input.Role,
		ExtraRoles:    input.ExtraRoles,
		InstitutionID: input.InstitutionID,
		FacultyID:     input.FacultyID,
		ProgramID:     input.ProgramID,
		Angkatan:      input.Angkatan,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.BuildResponseSuccess("User berhasil dibuat", user))
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	user, err := h.admin.GetUser(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.BuildResponseSuccess("Detail user", user))
}

type orgUnitRequest struct {
	ParentID int64  `json:"parentId"`
	Code     string `json:"code" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

func (h *AdminHandler) CreateInstitution(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var input orgUnitRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, bindError(err))
		return
	}
	inst := &model.Institution{Code: input.Code, Name: input.Name}
	if err := h.admin.CreateInstitution(c.Request.Context(), p, inst); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.BuildResponseSuccess("Institusi berhasil dibuat", inst))
}

func (h *AdminHandler) CreateFaculty(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var input orgUnitRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, bindError(err))
		return
	}
	fac := &model.Faculty{InstitutionID: input.ParentID, Code: input.Code, Name: input.Name}
	if err := h.admin.CreateFaculty(c.Request.Context(), p, fac); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.BuildResponseSuccess("Fakultas berhasil dibuat", fac))
}

func (h *AdminHandler) CreateProgram(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var input orgUnitRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, bindError(err))
		return
	}
	prog := &model.Program{FacultyID: input.ParentID, Code: input.Code, Name: input.Name}
	if err := h.admin.CreateProgram(c.Request.Context(), p, prog); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.BuildResponseSuccess("Prodi berhasil dibuat", prog))
}

func (h *AdminHandler) CreateCustomRole(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var input struct {
		Name     string     `json:"name" binding:"required"`
		BaseRole model.Role `json:"baseRole" binding:"required"`
		Note     string     `json:"note"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, bindError(err))
		return
	}
	cr, err := h.admin.CreateCustomRole(c.Request.Context(), p, input.Name, input.BaseRole, input.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.BuildResponseSuccess("Custom role berhasil dibuat", cr))
}
