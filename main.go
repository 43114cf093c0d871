package main

import (
	"context"
	"log"

	"rps-backend/app/notification"
	"rps-backend/app/repository"
	"rps-backend/app/repository/inmem"
	"rps-backend/app/service"
	"rps-backend/config"
	"rps-backend/database"
	"rps-backend/routes"
	"rps-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	// =================================================================
	// LOAD CONFIG + LOGGER
	// =================================================================
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("gagal membaca konfigurasi: %v", err)
	}

	logger, err := utils.NewLogger(cfg.LogLevel, cfg.LogFormat, "rps-backend")
	if err != nil {
		log.Fatalf("gagal membuat logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	tokens, err := utils.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL, cfg.ImpersonationTTL, cfg.RestoreTTL)
	if err != nil {
		logger.Fatal("gagal membuat token issuer", zap.Error(err))
	}

	// =================================================================
	// STORE (POSTGRES / MEMORY) + INBOX (MONGODB / MEMORY)
	// =================================================================
	var (
		store repository.Store
		inbox repository.NotificationRepository
		sinks []notification.Sink
	)

	switch cfg.StoreDriver {
	case "memory":
		logger.Warn("STORE_DRIVER=memory, data hilang saat proses berhenti")
		store = inmem.NewStore()
		inbox = inmem.NewInbox()
		if cfg.RedisAddr != "" {
			client, err := database.ConnectRedis(ctx, cfg)
			if err != nil {
				logger.Fatal("gagal koneksi redis", zap.Error(err))
			}
			defer client.Close()
			sinks = append(sinks, notification.NewStreamSink(client, cfg.NotificationStream))
		}
	default:
		dbConn, err := database.InitDB(ctx, cfg, logger)
		if err != nil {
			logger.Fatal("gagal koneksi database", zap.Error(err))
		}
		defer dbConn.Close(ctx)

		store = repository.NewStore(dbConn.Postgres)
		if dbConn.Mongo != nil {
			inbox = repository.NewNotificationRepository(dbConn.Mongo)
		} else {
			logger.Warn("MONGO_URI kosong, inbox notifikasi disimpan di memori")
			inbox = inmem.NewInbox()
		}
		if dbConn.Redis != nil {
			sinks = append(sinks, notification.NewStreamSink(dbConn.Redis, cfg.NotificationStream))
		}
	}
	sinks = append([]notification.Sink{notification.NewInboxSink(inbox)}, sinks...)
	notifier := notification.NewDispatcher(logger, sinks...)

	// =================================================================
	// SEED BOOTSTRAP ADMIN
	// =================================================================
	if _, err := database.EnsureBootstrapAdmin(ctx, store.Users(), cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword, logger); err != nil {
		logger.Fatal("gagal membuat bootstrap admin", zap.Error(err))
	}

	// =================================================================
	// SERVICES
	// =================================================================
	svc := routes.Services{
		Auth:          service.NewAuthService(store.Users(), tokens, logger),
		Admin:         service.NewAdminService(store, logger),
		Syllabi:       service.NewSyllabusService(store, notifier, logger, nil),
		Assignments:   service.NewAssignmentService(store, notifier, logger),
		Curriculum:    service.NewCurriculumService(store, logger),
		Reports:       service.NewReportService(store.Reports()),
		Notifications: service.NewNotificationService(inbox),
	}

	// =================================================================
	// ROUTER + START SERVER
	// =================================================================
	r := routes.NewRouter(svc, tokens, logger)

	logger.Info("server running", zap.String("addr", "http://localhost:"+cfg.AppPort))
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logger.Fatal("gagal menjalankan server", zap.Error(err))
	}
}
