package routes

import (
	"net/http"

	"rps-backend/app/service"
	"rps-backend/utils"

	"github.com/gin-gonic/gin"
)

// ReportHandler menangani statistik RPS.
type ReportHandler struct {
	reports service.ReportService
}

func NewReportHandler(reports service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func (h *ReportHandler) SetupReportRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	g := r.Group("/reports")
	g.Use(auth)
	{
		g.GET("/syllabi", h.SyllabusStatistics)
	}
}

func (h *ReportHandler) SyllabusStatistics(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	res, err := h.reports.SyllabusStatistics(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.BuildResponseSuccess("Statistik RPS", res))
}
