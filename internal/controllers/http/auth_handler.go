package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	user, token, err := h.users.Register(c.Request.Context(), req.toInput())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{Message: "User registered successfully", User: user, Token: token})
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	user, token, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Message: "Login successful", User: user, Token: token})
}

func (h *Handler) GetProfile(c *gin.Context) {
	user, err := h.users.GetProfile(c.Request.Context(), mustPrincipal(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), mustPrincipal(c).UserID, req.toUpdate())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "user": user})
}
