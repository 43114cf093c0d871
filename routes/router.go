package routes

import (
	"net/http"

	"rps-backend/app/service"
	"rps-backend/middleware"
	"rps-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Services adalah semua dependency yang dibutuhkan router.
type Services struct {
	Auth          service.AuthService
	Admin         service.AdminService
	Syllabi       service.SyllabusService
	Assignments   service.AssignmentService
	Curriculum    service.CurriculumService
	Reports       service.ReportService
	Notifications service.NotificationService
}

// NewRouter merakit gin engine beserta middleware dan semua route.
func NewRouter(svc Services, tokens *utils.TokenIssuer, logger *zap.Logger) *gin.Engine {
	RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger), middleware.Metrics())

	auth := middleware.AuthMiddleware(tokens)

	NewAuthHandler(svc.Auth).SetupAuthRoutes(r, auth)
	NewAdminHandler(svc.Admin, svc.Auth).SetupAdminRoutes(r, auth)
	NewSyllabusHandler(svc.Syllabi).SetupSyllabusRoutes(r, auth)
	NewAssignmentHandler(svc.Assignments).SetupAssignmentRoutes(r, auth)
	NewCurriculumHandler(svc.Curriculum).SetupCurriculumRoutes(r, auth)
	NewReportHandler(svc.Reports).SetupReportRoutes(r, auth)
	NewNotificationHandler(svc.Notifications).SetupNotificationRoutes(r, auth)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "RPS API RUNNING",
			"version": "1.0.0",
		})
	})
	return r
}
