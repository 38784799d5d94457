package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"portal-backend/internal/attendance"
	"portal-backend/internal/middleware"
	"portal-backend/internal/models"
)

func currentUser(c *gin.Context, db *gorm.DB) (*models.User, bool) {
	userID, ok := c.Get(middleware.ContextUserID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	parsed, err := uuid.Parse(userID.(string))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}

	var user models.User
	if err := db.First(&user, "id = ?", parsed).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	return &user, true
}

// parseSessionID reads the :id route param. Returns true if the response
// was already written.
func parseSessionID(c *gin.Context) (uuid.UUID, bool) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, true
	}
	return sessionID, false
}

// writeEngineError maps session engine errors onto HTTP responses. Every
// blocked transition tells the user why.
func writeEngineError(c *gin.Context, err error) {
	var early *attendance.EarlyClockOutError
	if errors.As(err, &early) {
		c.JSON(http.StatusConflict, gin.H{
			"error":        early.Error(),
			"confirmation": "required",
			"decision":     early.Decision,
		})
		return
	}

	switch {
	case errors.Is(err, attendance.ErrDuplicateSession),
		errors.Is(err, attendance.ErrOnBreak),
		errors.Is(err, attendance.ErrNoActiveBreak),
		errors.Is(err, attendance.ErrConsentNotPending):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, attendance.ErrNoActiveSession):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, attendance.ErrMissingEodReport):
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": err.Error()})
	case errors.Is(err, attendance.ErrInvalidBreakType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, attendance.ErrSourceDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "request failed"})
	}
}
