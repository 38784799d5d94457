package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"portal-backend/internal/config"
	"portal-backend/internal/models"
	"portal-backend/internal/utils"
)

type AuthHandler struct {
	DB  *gorm.DB
	Cfg config.Config
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func NewAuthHandler(db *gorm.DB, cfg config.Config) *AuthHandler {
	return &AuthHandler{DB: db, Cfg: cfg}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	accessToken, err := utils.GenerateAccessToken(user.ID.String(), user.Role, h.Cfg.JwtSecret, h.Cfg.JwtAccessMinutes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken": accessToken,
		"user": gin.H{
			"id":                 user.ID,
			"email":              user.Email,
			"name":               user.Name,
			"role":               user.Role,
			"monitoringRequired": user.MonitoringRequired,
		},
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":                 user.ID,
		"email":              user.Email,
		"name":               user.Name,
		"role":               user.Role,
		"monitoringRequired": user.MonitoringRequired,
	})
}
