package routes

import (
	"net/http"

	"rps-backend/app/service"
	"rps-backend/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler adalah struct pengelola request untuk fitur Autentikasi.
type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SetupAuthRoutes: /auth/login terbuka, sisanya wajib credential.
func (h *AuthHandler) SetupAuthRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.GET("/me", auth, h.Me)
		authGroup.POST("/switch-role", auth, h.SwitchRole)
	}
}

// Login menukar email dan password dengan credential standar.
func (h *AuthHandler) Login(ctx *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondError(ctx, bindError(err))
		return
	}
	res, err := h.authService.Login(ctx.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, utils.BuildResponseSuccess("Login berhasil", res))
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	res, err := h.authService.Me(ctx.Request.Context(), p)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, utils.BuildResponseSuccess("Profil pengguna", res))
}

// SwitchRole menerbitkan credential baru dengan active role yang diminta.
func (h *AuthHandler) SwitchRole(ctx *gin.Context) {
	p, ok := principal(ctx)
	if !ok {
		return
	}
	var input struct {
		Role string `json:"role" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondError(ctx, bindError(err))
		return
	}
	res, err := h.authService.SwitchRole(ctx.Request.Context(), p, input.Role)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, utils.BuildResponseSuccess("Role berhasil diganti", res))
}
