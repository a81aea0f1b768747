package api

import (
	"net/http"

	"github.com/Domenick1991/travelstore/internal/domain"
	"github.com/Domenick1991/travelstore/internal/service/auth"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service auth.AuthUseCase
}

type registerRequest struct {
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileRequest struct {
	DisplayName string `json:"displayName" binding:"required,max=80"`
}

type profileResponse struct {
	SessionID string       `json:"sid"`
	User      *domain.User `json:"user"`
}

func NewAuthHandler(service auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) RegisterPublic(router *gin.RouterGroup) {
	router.POST("/register", h.register)
	router.POST("/login", h.login)
}

func (h *AuthHandler) RegisterPrivate(router *gin.RouterGroup) {
	router.POST("/logout", h.logout)
	router.GET("/me", h.me)
	router.PUT("/me", h.updateMe)
}

// register always creates a user account; admins come from the seed only.
func (h *AuthHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.service.Register(c.Request.Context(), auth.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.RoleUser,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, token)
}

func (h *AuthHandler) logout(c *gin.Context) {
	if err := h.service.Logout(c.Request.Context(), currentSession(c).ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) me(c *gin.Context) {
	sess := currentSession(c)
	user, err := h.service.Profile(c.Request.Context(), sess)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profileResponse{SessionID: sess.ID, User: user})
}

func (h *AuthHandler) updateMe(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess := currentSession(c)
	user, err := h.service.UpdateProfile(c.Request.Context(), sess, req.DisplayName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profileResponse{SessionID: sess.ID, User: user})
}
