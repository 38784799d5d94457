package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"portal-backend/internal/attendance"
	"portal-backend/internal/capture"
	"portal-backend/internal/config"
	"portal-backend/internal/db"
	"portal-backend/internal/models"
	"portal-backend/internal/notify"
	"portal-backend/internal/reports"
	"portal-backend/internal/routes"
	"portal-backend/internal/storage"
	"portal-backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	database, err := db.Open(cfg.DbDsn)
	if err != nil {
		log.Fatalf("db error: %v", err)
	}

	gormStore := store.New(database)
	reportStore := reports.New(database)
	blobs := storage.NewDir(cfg.CaptureDir)

	var sink notify.Sink = notify.NewLogSink(nil)
	if cfg.EmailEnabled() {
		emailSink := notify.NewEmailSink(notify.SMTPConfig{
			Host:     cfg.SmtpHost,
			Port:     cfg.SmtpPort,
			Username: cfg.SmtpUser,
			Password: cfg.SmtpPass,
			From:     cfg.SmtpFrom,
		}, func(userID uuid.UUID) (string, error) {
			var user models.User
			if err := database.First(&user, "id = ?", userID).Error; err != nil {
				return "", err
			}
			return user.Email, nil
		}, nil)
		sink = notify.Fanout{notify.NewLogSink(nil), emailSink}
	}

	manager := capture.NewManager(blobs, gormStore,
		capture.WithCaptureInterval(time.Duration(cfg.CaptureIntervalSec)*time.Second))

	service := attendance.NewService(gormStore, reportStore, manager, sink)

	manager.SetRevokedHandler(func(sessionID, userID uuid.UUID) {
		if err := service.CancelSession(context.Background(), userID, sessionID); err != nil {
			log.Printf("session cancellation failed: session=%s: %v", sessionID, err)
		}
	})

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	routes.Register(router, routes.Deps{
		DB:      database,
		Cfg:     cfg,
		Store:   gormStore,
		Service: service,
		Manager: manager,
		Reports: reportStore,
	})

	if err := router.Run(cfg.Addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
