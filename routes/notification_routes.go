package routes

import (
	"net/http"

	"rps-backend/app/service"
	"rps-backend/utils"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notifications service.NotificationService
}

func NewNotificationHandler(notifications service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) SetupNotificationRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	g := r.Group("/notifications")
	g.Use(auth)
	{
		g.GET("", h.List)
		g.PUT("/:id/read", h.MarkRead)
	}
}

func (h *NotificationHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	items, err := h.notifications.List(c.Request.Context(), p, c.Query("unread") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.BuildResponseSuccess("Notifikasi", items))
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), p, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.BuildResponseSuccess("Notifikasi ditandai dibaca", nil))
}
