package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"portal-backend/internal/attendance"
	"portal-backend/internal/capture"
	"portal-backend/internal/middleware"
	"portal-backend/internal/store"
)

// Frames arrive as raw JPEG bodies; anything past this is rejected.
const maxFrameBytes = 8 << 20

type MonitoringHandler struct {
	DB      *gorm.DB
	Service *attendance.Service
	Manager *capture.Manager
	Store   *store.Gorm
}

func NewMonitoringHandler(db *gorm.DB, service *attendance.Service, manager *capture.Manager, st *store.Gorm) *MonitoringHandler {
	return &MonitoringHandler{DB: db, Service: service, Manager: manager, Store: st}
}

// Grant records screen-share consent and starts the capture cycle.
func (h *MonitoringHandler) Grant(c *gin.Context) {
	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}

	session, err := h.Service.GrantMonitoring(c.Request.Context(), user)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	if err := h.Manager.Grant(session.ID, user.ID); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "monitoring started"})
}

func (h *MonitoringHandler) Deny(c *gin.Context) {
	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}

	if err := h.Service.DenyMonitoring(c.Request.Context(), user); err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "monitoring declined"})
}

// PushFrame stores the latest client screen frame for the session source.
func (h *MonitoringHandler) PushFrame(c *gin.Context) {
	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}

	session, err := h.Store.ActiveSession(c.Request.Context(), user.ID)
	if err != nil || session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": attendance.ErrNoActiveSession.Error()})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxFrameBytes+1))
	if err != nil || len(body) == 0 || len(body) > maxFrameBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid frame"})
		return
	}

	if err := h.Manager.PushFrame(session.ID, body); err != nil {
		if errors.Is(err, capture.ErrNoMonitoring) || errors.Is(err, capture.ErrSourceEnded) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "frame not decodable"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "frame accepted"})
}

// Revoke is the user ending screen share mid-session. With mandatory
// monitoring this cancels the session and discards the worked time.
func (h *MonitoringHandler) Revoke(c *gin.Context) {
	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}

	session, err := h.Store.ActiveSession(c.Request.Context(), user.ID)
	if err != nil || session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": attendance.ErrNoActiveSession.Error()})
		return
	}

	if err := h.Manager.Revoke(session.ID); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "screen share ended"})
}

// ListCaptures returns the capture records of one of the user's sessions.
func (h *MonitoringHandler) ListCaptures(c *gin.Context) {
	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}

	sessionID, parseErr := parseSessionID(c)
	if parseErr {
		return
	}

	session, err := h.Store.SessionByID(c.Request.Context(), sessionID)
	if err != nil || session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	role, _ := c.Get(middleware.ContextRole)
	if session.UserID != user.ID && role == "employee" {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	captures, err := h.Store.CapturesForSession(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load captures"})
		return
	}
	c.JSON(http.StatusOK, captures)
}
