package routes

import (
	"strconv"
	"strings"

	"rps-backend/app/apperror"
	"rps-backend/app/model"
	"rps-backend/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// principal mengambil Principal dari context. AuthMiddleware selalu
// memasangnya, jadi ketiadaannya berarti route salah dirakit.
func principal(c *gin.Context) (model.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		respondError(c, apperror.Unauthenticated("credential tidak ditemukan"))
	}
	return p, ok
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, apperror.Validation("id tidak valid", apperror.FieldError{Field: name, Error: "must be a uuid"}))
		return uuid.Nil, false
	}
	return id, true
}

func int64Param(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, apperror.Validation("id tidak valid", apperror.FieldError{Field: name, Error: "must be a positive integer"}))
		return 0, false
	}
	return id, true
}

// int64Query membaca query opsional, nil jika kosong.
func int64Query(c *gin.Context, name string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, apperror.Validation("query tidak valid", apperror.FieldError{Field: name, Error: "must be an integer"})
	}
	return &v, nil
}

// termFrom menerima "Ganjil 2025/2026" atau pasangan semester + academic_year.
func termFrom(term, semester, academicYear string) (*model.Term, error) {
	term = strings.TrimSpace(term)
	if term != "" {
		t, err := model.ParseTerm(term)
		if err != nil {
			return nil, apperror.Validation("term tidak valid", apperror.FieldError{Field: "term", Error: err.Error()})
		}
		return &t, nil
	}
	if semester == "" && academicYear == "" {
		return nil, nil
	}
	t := model.Term{Semester: semester, AcademicYear: academicYear}
	if err := t.Validate(); err != nil {
		return nil, apperror.Validation("term tidak valid", apperror.FieldError{Field: "term", Error: err.Error()})
	}
	return &t, nil
}
