package routes

import (
	"net/http"

	"rps-backend/app/apperror"
	"rps-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// statusFor memetakan Kind ke HTTP status.
func statusFor(k apperror.Kind) int {
	switch k {
	case apperror.KindValidation, apperror.KindState:
		return http.StatusBadRequest
	case apperror.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperror.KindAuthorization:
		return http.StatusForbidden
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError menulis error dalam envelope APIResponse.
// Error di luar taksonomi apperror dicatat lewat c.Error dan dibalas 500 tanpa detail.
func respondError(c *gin.Context, err error) {
	e, ok := apperror.As(err)
	if !ok {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError,
			utils.BuildResponseFailed("Terjadi kesalahan pada server", "internal_error", nil))
		return
	}

	resp := utils.BuildResponseFailed(e.Message, e.Kind.String(), nil)
	switch {
	case len(e.Fields) > 0:
		resp.Errors = e.Fields
	case e.Detail != nil:
		resp.Errors = e.Detail
	}
	resp.CurrentState = e.CurrentState
	c.JSON(statusFor(e.Kind), resp)
}

// bindError mengubah error binding gin menjadi ValidationError.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]apperror.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apperror.FieldError{Field: fe.Field(), Error: fe.Tag()})
		}
		return apperror.Validation("Input tidak valid", fields...)
	}
	return apperror.Validation("Input tidak valid", apperror.FieldError{Field: "body", Error: err.Error()})
}
