package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-api/internal/application"
	"github.com/oksasatya/go-social-api/pkg/response"
)

type AuthHandler struct {
	Svc    *application.AuthService
	Logger logrus.FieldLogger
}

func NewAuthHandler(svc *application.AuthService, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,personname"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Bio      string `json:"bio" binding:"omitempty,bio"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Bio:      req.Bio,
	})
	if err != nil {
		fail(c, h.Logger, err, "Server error during registration")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"message":   "User registered successfully",
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
		"user":      toUserView(res.User),
	})
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, h.Logger, err, "Server error during login")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"message":   "Login successful",
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
		"user":      toUserView(res.User),
	})
}

// Verify GET /api/auth/verify (auth required)
func (h *AuthHandler) Verify(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{"valid": true, "user": toUserView(u)})
}
