package routes

import (
	"reflect"
	"strings"
	"sync"

	"rps-backend/app/model"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators memasang tag custom ke validator milik gin:
//   - semester      : Ganjil | Genap | Pendek
//   - academic_year : YYYY/YYYY+1
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		// nama field di error mengikuti tag json
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
		_ = v.RegisterValidation("semester", func(fl validator.FieldLevel) bool {
			return model.ValidSemester(fl.Field().String())
		})
		_ = v.RegisterValidation("academic_year", func(fl validator.FieldLevel) bool {
			return model.ValidAcademicYear(fl.Field().String())
		})
	})
}
