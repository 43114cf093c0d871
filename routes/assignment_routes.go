package routes

import (
	"net/http"

	"rps-backend/app/apperror"
	"rps-backend/app/service"
	"rps-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AssignmentHandler menangani penugasan dosen pengampu.
type AssignmentHandler struct {
	assignments service.AssignmentService
}

func NewAssignmentHandler(assignments service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

func (h *AssignmentHandler) SetupAssignmentRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	g := r.Group("/assignments")
	g.Use(auth)
	{
		g.POST("", h.Assign)
		g.GET("", h.List)
		g.GET("/mine", h.ListMine)
		g.DELETE("/:id", h.Unassign)
	}
}

type assignRequest struct {
	CourseID     int64       `json:"course_id" binding:"required,gt=0"`
	LecturerID   *uuid.UUID  `json:"lecturer_id"`
	LecturerIDs  []uuid.UUID `json:"lecturer_ids"`
	Term         string      `json:"term"`
	Semester     string      `json:"semester" binding:"omitempty,semester"`
	AcademicYear string      `json:"academic_year" binding:"omitempty,academic_year"`
	Force        bool        `json:"force"`
	Note         string      `json:"note"`
}

// Assign: 409 jika ada penugasan aktif dan force=false.
// Sukses sebagian dibalas 200 dengan daftar errors.
func (h *AssignmentHandler) Assign(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var input assignRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, bindError(err))
		return
	}
	term, err := termFrom(input.Term, input.Semester, input.AcademicYear)
	if err != nil {
		respondError(c, err)
		return
	}
	if term == nil {
		respondError(c, apperror.Validation("term wajib diisi", apperror.FieldError{Field: "term", Error: "required"}))
		return
	}
	ids := input.LecturerIDs
	if input.LecturerID != nil {
		ids = append([]uuid.UUID{*input.LecturerID}, ids...)
	}

	result, err := h.assignments.Assign(c.Request.Context(), p, service.AssignInput{
		CourseID:    input.CourseID,
		LecturerIDs: ids,
		Term:        *term,
		Force:       input.Force,
		Note:        input.Note,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if result.Partial() {
		c.JSON(http.StatusOK, utils.BuildResponsePartial("Sebagian dosen berhasil ditugaskan", result, result.Warnings))
		return
	}
	c.JSON(http.StatusCreated, utils.BuildResponseSuccess("Dosen berhasil ditugaskan", result))
}

func (h *AssignmentHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	courseID, err := int64Query(c, "course_id")
	if err != nil {
		respondError(c, err)
		return
	}
	term, err := termFrom(c.Query("term"), c.Query("semester"), c.Query("academic_year"))
	if err != nil {
		respondError(c, err)
		return
	}
	items, err := h.assignments.List(c.Request.Context(), p, service.AssignmentQuery{
		CourseID:   courseID,
		Term:       term,
		ActiveOnly: c.Query("active") == "true",
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.BuildResponseSuccess("Daftar penugasan", items))
}

func (h *AssignmentHandler) ListMine(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	items, err := h.assignments.ListMine(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.BuildResponseSuccess("Penugasan saya", items))
}

func (h *AssignmentHandler) Unassign(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	a, err := h.assignments.Unassign(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.BuildResponseSuccess("Penugasan dinonaktifkan", a))
}
