package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"portal-backend/internal/attendance"
	"portal-backend/internal/capture"
	"portal-backend/internal/config"
	"portal-backend/internal/handlers"
	"portal-backend/internal/middleware"
	"portal-backend/internal/reports"
	"portal-backend/internal/store"
)

type Deps struct {
	DB      *gorm.DB
	Cfg     config.Config
	Store   *store.Gorm
	Service *attendance.Service
	Manager *capture.Manager
	Reports *reports.Store
}

func Register(router *gin.Engine, deps Deps) {
	router.Use(corsMiddleware(deps.Cfg.AllowedOriginsRaw))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "portal-backend"})
	})
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := handlers.NewAuthHandler(deps.DB, deps.Cfg)
	attendanceHandler := handlers.NewAttendanceHandler(deps.DB, deps.Service, deps.Store)
	monitoringHandler := handlers.NewMonitoringHandler(deps.DB, deps.Service, deps.Manager, deps.Store)
	reportsHandler := handlers.NewReportsHandler(deps.DB, deps.Reports, deps.Store)

	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthRequired(deps.Cfg.JwtSecret))
	{
		protected.GET("/me", authHandler.Me)

		protected.GET("/attendance", attendanceHandler.List)
		protected.GET("/attendance/current", attendanceHandler.Current)
		protected.POST("/attendance/clockin", attendanceHandler.ClockIn)
		protected.POST("/attendance/clockout", attendanceHandler.ClockOut)
		protected.POST("/attendance/break/start", attendanceHandler.BreakStart)
		protected.POST("/attendance/break/end", attendanceHandler.BreakEnd)
		protected.DELETE("/attendance/:id", middleware.RequireAnyRole("admin", "manager"), attendanceHandler.Delete)

		protected.POST("/monitoring/grant", monitoringHandler.Grant)
		protected.POST("/monitoring/deny", monitoringHandler.Deny)
		protected.POST("/monitoring/frames", monitoringHandler.PushFrame)
		protected.POST("/monitoring/revoke", monitoringHandler.Revoke)
		protected.GET("/monitoring/captures/:id", monitoringHandler.ListCaptures)

		protected.POST("/reports", reportsHandler.Submit)
		protected.GET("/reports/session/:id", reportsHandler.ForSession)
	}
}

func corsMiddleware(allowed string) gin.HandlerFunc {
	origins := []string{}
	for _, origin := range strings.Split(allowed, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}

	allowAll := len(origins) == 0

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowAll {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowedOrigin := range origins {
				if origin == allowedOrigin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					c.Writer.Header().Set("Vary", "Origin")
					break
				}
			}
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
