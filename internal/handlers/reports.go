package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"portal-backend/internal/models"
	"portal-backend/internal/reports"
	"portal-backend/internal/store"
)

type ReportsHandler struct {
	DB      *gorm.DB
	Reports *reports.Store
	Store   *store.Gorm
}

func NewReportsHandler(db *gorm.DB, rep *reports.Store, st *store.Gorm) *ReportsHandler {
	return &ReportsHandler{DB: db, Reports: rep, Store: st}
}

type submitReportRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Summary   string `json:"summary" binding:"required,min=10"`
}

func (h *ReportsHandler) Submit(c *gin.Context) {
	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}

	var req submitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sessionId"})
		return
	}

	session, err := h.Store.SessionByID(c.Request.Context(), sessionID)
	if err != nil || session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	if session.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	report := &models.EodReport{
		SessionID: sessionID,
		UserID:    user.ID,
		Summary:   req.Summary,
	}
	if err := h.Reports.Submit(c.Request.Context(), report); err != nil {
		if errors.Is(err, reports.ErrAlreadySubmitted) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report submission failed"})
		return
	}
	c.JSON(http.StatusCreated, report)
}

func (h *ReportsHandler) ForSession(c *gin.Context) {
	user, ok := currentUser(c, h.DB)
	if !ok {
		return
	}

	sessionID, done := parseSessionID(c)
	if done {
		return
	}

	report, err := h.Reports.ForSession(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load report"})
		return
	}
	if report == nil || report.UserID != user.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	c.JSON(http.StatusOK, report)
}
