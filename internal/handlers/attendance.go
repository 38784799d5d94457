package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"portal-backend/internal/attendance"
	"portal-backend/internal/middleware"
	"portal-backend/internal/store"
)

type AttendanceHandler struct {
	DB      *gorm.DB
	Service *attendance.Service
	Store   *store.Gorm
}

func NewAttendanceHandler(db *gorm.DB, service *attendance.Service, st *store.Gorm) *AttendanceHandler {
	return &AttendanceHandler{DB: db, Service: service, Store: st}
}

type clockOutRequest struct {
	ConfirmEarly bool `json:"confirmEarly"`
}

type breakStartRequest struct {
	BreakType string `json:"breakType" binding:"required"`
}

func (h *AttendanceHandler) ClockIn(c *gin.Context) {
	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}

	session, err := h.Service.ClockIn(c.Request.Context(), user)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *AttendanceHandler) ClockOut(c *gin.Context) {
	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}

	var req clockOutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
			return
		}
	}

	session, err := h.Service.ClockOut(c.Request.Context(), user, req.ConfirmEarly)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *AttendanceHandler) BreakStart(c *gin.Context) {
	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}

	var req breakStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	entry, err := h.Service.StartBreak(c.Request.Context(), user, req.BreakType)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *AttendanceHandler) BreakEnd(c *gin.Context) {
	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}

	entry, err := h.Service.EndBreak(c.Request.Context(), user)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *AttendanceHandler) List(c *gin.Context) {
	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}

	sessions, err := h.Store.SessionsForUser(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load attendance"})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// Current returns the live elapsed-time snapshot for the active session.
func (h *AttendanceHandler) Current(c *gin.Context) {
	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}

	snapshot, err := h.Service.Current(c.Request.Context(), user.ID)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (h *AttendanceHandler) Delete(c *gin.Context) {
	role, _ := c.Get(middleware.ContextRole)
	if role == "employee" {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.Store.DeleteSession(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
