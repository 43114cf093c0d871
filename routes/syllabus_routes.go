package routes

import (
	"net/http"

	"rps-backend/app/apperror"
	"rps-backend/app/model"
	"rps-backend/app/service"
	"rps-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SyllabusHandler menangani endpoint RPS.
type SyllabusHandler struct {
	syllabi service.SyllabusService
}

func NewSyllabusHandler(syllabi service.SyllabusService) *SyllabusHandler {
	return &SyllabusHandler{syllabi: syllabi}
}

func (h *SyllabusHandler) SetupSyllabusRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	g := r.Group("/syllabi")
	g.Use(auth)
	{
		g.POST("", h.Create)
		g.GET("", h.List)
		g.GET("/:id", h.Get)
		g.PUT("/:id", h.Update)
		g.DELETE("/:id", h.Delete)
		g.PUT("/:id/submit", h.Submit)
		g.PUT("/:id/approve", h.Approve)
		g.PUT("/:id/reject", h.Reject)
		g.POST("/:id/revise", h.Revise)
	}
}

type syllabusContentRequest struct {
	Description  string              `json:"description"`
	Methods      string              `json:"methods"`
	Assessment   string              `json:"assessment"`
	References   string              `json:"references"`
	WeeklyPlan   string              `json:"weekly_plan"`
	SelectedCPL  model.SelectionList `json:"selected_cpl"`
	SelectedCPMK model.SelectionList `json:"selected_cpmk"`
}

func (r syllabusContentRequest) content() model.SyllabusContent {
	return model.SyllabusContent{
		Description:  r.Description,
		Methods:      r.Methods,
		Assessment:   r.Assessment,
		References:   r.References,
		WeeklyPlan:   r.WeeklyPlan,
		SelectedCPL:  r.SelectedCPL,
		SelectedCPMK: r.SelectedCPMK,
	}
}

// Create: is_template memilih jalur template atau instance.
func (h *SyllabusHandler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var input struct {
		IsTemplate   bool       `json:"is_template"`
		CourseID     int64      `json:"course_id"`
		AssignmentID *int64     `json:"assignment_id"`
		TemplateID   *uuid.UUID `json:"template_id"`
		syllabusContentRequest
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, bindError(err))
		return
	}
	syl, err := h.syllabi.Create(c.Request.Context(), p, service.CreateSyllabusInput{
		IsTemplate:   input.IsTemplate,
		CourseID:     input.CourseID,
		AssignmentID: input.AssignmentID,
		TemplateID:   input.TemplateID,
		Content:      input.content(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.BuildResponseSuccess("RPS berhasil dibuat", syl))
}

func (h *SyllabusHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var q service.SyllabusQuery
	if raw := c.Query("status"); raw != "" {
		st := model.SyllabusStatus(raw)
		if !st.Valid() {
			respondError(c, apperror.Validation("status tidak valid", apperror.FieldError{Field: "status", Error: "unknown status"}))
			return
		}
		q.Status = &st
	}
	program, err := int64Query(c, "program")
	if err != nil {
		respondError(c, err)
		return
	}
	q.ProgramID = program
	term, err := termFrom(c.Query("term"), c.Query("semester"), c.Query("academic_year"))
	if err != nil {
		respondError(c, err)
		return
	}
	q.Term = term

	items, err := h.syllabi.List(c.Request.Context(), p, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.BuildResponseSuccess("Daftar RPS", items))
}

func (h *SyllabusHandler) Get(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	view, err := h.syllabi.Get(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.BuildResponseSuccess("Detail RPS", view))
}

// Update hanya menerima field isi. Field status/approval di body diabaikan.
func (h *SyllabusHandler) Update(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var input struct {
		Description  *string              `json:"description"`
		Methods      *string              `json:"methods"`
		Assessment   *string              `json:"assessment"`
		References   *string              `json:"references"`
		WeeklyPlan   *string              `json:"weekly_plan"`
		SelectedCPL  *model.SelectionList `json:"selected_cpl"`
		SelectedCPMK *model.SelectionList `json:"selected_cpmk"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, bindError(err))
		return
	}
	syl, err := h.syllabi.Update(c.Request.Context(), p, id, service.UpdateSyllabusInput{
		Description:  input.Description,
		Methods:      input.Methods,
		Assessment:   input.Assessment,
		References:   input.References,
		WeeklyPlan:   input.WeeklyPlan,
		SelectedCPL:  input.SelectedCPL,
		SelectedCPMK: input.SelectedCPMK,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.BuildResponseSuccess("RPS berhasil diperbarui", syl))
}

func (h *SyllabusHandler) Delete(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.syllabi.Delete(c.Request.Context(), p, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.BuildResponseSuccess("RPS berhasil dihapus", nil))
}

func (h *SyllabusHandler) Submit(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	syl, err := h.syllabi.Submit(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.BuildResponseSuccess("RPS berhasil diajukan", syl))
}

type reviewRequest struct {
	Note *string `json:"note"`
}

func (h *SyllabusHandler) Approve(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var input reviewRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, bindError(err))
			return
		}
	}
	syl, err := h.syllabi.Approve(c.Request.Context(), p, id, input.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.BuildResponseSuccess("RPS disetujui", syl))
}

func (h *SyllabusHandler) Reject(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var input reviewRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, bindError(err))
		return
	}
	note := ""
	if input.Note != nil {
		note = *input.Note
	}
	syl, err := h.syllabi.Reject(c.Request.Context(), p, id, note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.BuildResponseSuccess("RPS ditolak", syl))
}

func (h *SyllabusHandler) Revise(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	syl, err := h.syllabi.Revise(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.BuildResponseSuccess("Revisi RPS dibuat", syl))
}
