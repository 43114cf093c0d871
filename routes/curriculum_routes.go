package routes

import (
	"net/http"

	"rps-backend/app/model"
	"rps-backend/app/service"
	"rps-backend/utils"

	"github.com/gin-gonic/gin"
)

// CurriculumHandler menangani katalog mata kuliah dan capaian pembelajaran.
type CurriculumHandler struct {
	curriculum service.CurriculumService
}

func NewCurriculumHandler(curriculum service.CurriculumService) *CurriculumHandler {
	return &CurriculumHandler{curriculum: curriculum}
}

func (h *CurriculumHandler) SetupCurriculumRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	courses := r.Group("/courses")
	courses.Use(auth)
	{
		courses.POST("", h.CreateCourse)
		courses.GET("", h.ListCourses)
		courses.DELETE("/:id", h.DeactivateCourse)
	}

	outcomes := r.Group("/outcomes")
	outcomes.Use(auth)
	{
		outcomes.POST("", h.CreateOutcome)
		outcomes.GET("", h.ListOutcomes)
		outcomes.DELETE("/:id", h.DeactivateOutcome)
	}
}

func (h *CurriculumHandler) CreateCourse(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var input struct {
		Code           string           `json:"code" binding:"required"`
		Name           string           `json:"name" binding:"required"`
		Credits        int              `json:"credits" binding:"required,gt=0"`
		SemesterNumber int              `json:"semester_number" binding:"gte=0"`
		Scope          model.OwnerLevel `json:"scope" binding:"required,oneof=institution faculty program"`
		OwnerID        int64            `json:"owner_id" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, bindError(err))
		return
	}
	course, err := h.curriculum.CreateCourse(c.Request.Context(), p, service.CourseInput{
		Code:           input.Code,
		Name:           input.Name,
		Credits:        input.Credits,
		SemesterNumber: input.SemesterNumber,
		Scope:          input.Scope,
		OwnerID:        input.OwnerID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.BuildResponseSuccess("Mata kuliah berhasil dibuat", course))
}

func (h *CurriculumHandler) ListCourses(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	program, err := int64Query(c, "program")
	if err != nil {
		respondError(c, err)
		return
	}
	items, err := h.curriculum.ListCourses(c.Request.Context(), p, program, c.Query("include_inactive") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.BuildResponseSuccess("Daftar mata kuliah", items))
}

func (h *CurriculumHandler) DeactivateCourse(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	if err := h.curriculum.DeactivateCourse(c.Request.Context(), p, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.BuildResponseSuccess("Mata kuliah dinonaktifkan", nil))
}

func (h *CurriculumHandler) CreateOutcome(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var input struct {
		Level       model.OutcomeLevel `json:"level" binding:"required,oneof=cpl cpmk subcpmk"`
		ParentID    *int64             `json:"parent_id"`
		CourseID    *int64             `json:"course_id"`
		Code        string             `json:"code" binding:"required"`
		Description string             `json:"description"`
		Scope       model.OwnerLevel   `json:"scope" binding:"required,oneof=institution faculty program"`
		OwnerID     int64              `json:"owner_id" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, bindError(err))
		return
	}
	o, err := h.curriculum.CreateOutcome(c.Request.Context(), p, service.OutcomeInput{
		Level:       input.Level,
		ParentID:    input.ParentID,
		CourseID:    input.CourseID,
		Code:        input.Code,
		Description: input.Description,
		Scope:       input.Scope,
		OwnerID:     input.OwnerID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.BuildResponseSuccess("Capaian berhasil dibuat", o))
}

func (h *CurriculumHandler) ListOutcomes(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	courseID, err := int64Query(c, "course_id")
	if err != nil {
		respondError(c, err)
		return
	}
	items, err := h.curriculum.ListOutcomes(c.Request.Context(), p, model.OutcomeLevel(c.Query("level")), courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.BuildResponseSuccess("Daftar capaian", items))
}

func (h *CurriculumHandler) DeactivateOutcome(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	if err := h.curriculum.DeactivateOutcome(c.Request.Context(), p, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.BuildResponseSuccess("Capaian dinonaktifkan", nil))
}
