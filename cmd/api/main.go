package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/tripdesk/crm-backend/internal/http/handlers"
	"github.com/tripdesk/crm-backend/internal/platform/blob"
	"github.com/tripdesk/crm-backend/internal/platform/mailer"
	"github.com/tripdesk/crm-backend/internal/platform/pdf"
	"github.com/tripdesk/crm-backend/internal/platform/push"
	"github.com/tripdesk/crm-backend/internal/repository"
	"github.com/tripdesk/crm-backend/internal/service"
	"github.com/tripdesk/crm-backend/pkg/config"
	"github.com/tripdesk/crm-backend/pkg/database"
	"github.com/tripdesk/crm-backend/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, using environment")
	}

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	adminPool, err := database.Connect(ctx, cfg.Database.AdminURL, cfg.Database.MinConns, cfg.Database.MaxConns, cfg.Database.MaxLifetime)
	if err != nil {
		logger.Error("connect admin database", "error", err)
		os.Exit(1)
	}
	defer adminPool.Close()

	employeePool, err := database.Connect(ctx, cfg.Database.EmployeeURL, cfg.Database.MinConns, cfg.Database.MaxConns, cfg.Database.MaxLifetime)
	if err != nil {
		logger.Error("connect employee database", "error", err)
		os.Exit(1)
	}
	defer employeePool.Close()

	partnerPool, err := database.Connect(ctx, cfg.Database.PartnerURL, cfg.Database.MinConns, cfg.Database.MaxConns, cfg.Database.MaxLifetime)
	if err != nil {
		logger.Error("connect partner database", "error", err)
		os.Exit(1)
	}
	defer partnerPool.Close()

	partitions := repository.NewPartitions(adminPool, employeePool, partnerPool)

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Error("parse redis url", "error", err)
		os.Exit(1)
	}
	if cfg.Redis.Password != "" {
		redisOpts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		redisOpts.DB = cfg.Redis.DB
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()
	rateLimits := repository.NewRateLimitRepository(redisClient)

	var notifier push.Notifier
	if natsNotifier, err := push.NewNATSNotifier(cfg.NATS.URL); err != nil {
		logger.Warn("nats unavailable, realtime push disabled", "error", err)
		notifier = push.NewNoopNotifier()
	} else {
		notifier = natsNotifier
	}
	defer notifier.Close()

	var mail mailer.Service
	switch {
	case cfg.Email.DevMode:
		mail = mailer.NewDevMailer()
	case cfg.Email.MailerSendKey != "":
		ms, err := mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.SMTPFrom)
		if err != nil {
			logger.Error("configure mailersend", "error", err)
			os.Exit(1)
		}
		mail = ms
	default:
		mail = mailer.NewSMTPMailer(cfg.Email.SMTPHost, cfg.Email.SMTPPort,
			cfg.Email.SMTPFrom, cfg.Email.SMTPUser, cfg.Email.SMTPPass, cfg.Email.SMTPUseTLS)
	}

	blobs, err := blob.NewFSStore(cfg.Blob.Dir, cfg.Blob.BaseURL)
	if err != nil {
		logger.Error("open blob store", "error", err)
		os.Exit(1)
	}

	renderer := pdf.NewChromiumRenderer(cfg.PDF.ChromiumPath, cfg.PDF.RenderTimeout)

	identities := service.NewIdentityService(partitions, blobs, mail, notifier,
		cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.ResetTokenTTL, cfg.App.FrontendURL)
	quotations := service.NewQuotationService(partitions, blobs, renderer, notifier)
	taxis := service.NewTaxiService(partitions)
	notifications := service.NewNotificationService(partitions, blobs, notifier)
	admin := service.NewAdminService(partitions, mail, notifier)

	sweeper := service.NewSweeper(partitions, cfg.App.SweepInterval)
	go sweeper.Run(ctx)

	h := handlers.New(identities, quotations, taxis, notifications, admin, rateLimits, cfg.Auth.JWTSecret)
	router := handlers.NewRouter(h, blobs.Handler(), []string{cfg.App.FrontendURL})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}
