package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/thesuite/booking-api/internal/audit"
	"github.com/thesuite/booking-api/internal/config"
	dbpkg "github.com/thesuite/booking-api/internal/db"
	"github.com/thesuite/booking-api/internal/logging"
	"github.com/thesuite/booking-api/internal/media"
	"github.com/thesuite/booking-api/internal/notify"
	"github.com/thesuite/booking-api/internal/payments"
	"github.com/thesuite/booking-api/internal/routes"
	"github.com/thesuite/booking-api/internal/tracking"
	"github.com/thesuite/booking-api/internal/validators"
)

func main() {

	cfg := config.Load()

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	if err := validators.Register(); err != nil {
		logger.Fatal("failed to register validators", zap.Error(err))
	}

	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ======================================================
	// OPTIONAL INFRA
	// ======================================================
	var rdb redis.Cmdable
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unavailable, tracking disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			_ = client.Close()
		} else {
			rdb = client
			defer client.Close()
		}
		cancel()
	}

	var mail *notify.Dispatcher
	if cfg.SMTPUser != "" {
		mail = notify.NewDispatcher(notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		}), logger.Named("notify"))
	} else {
		logger.Warn("SMTP not configured, emails disabled")
	}

	var uploader *media.Uploader
	if cfg.S3AccessKey != "" && cfg.S3PublicBaseURL != "" {
		uploader = media.NewUploader(media.NewS3Store(media.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		}), cfg.S3PublicBaseURL)
	}

	gateway := payments.NewStripeGateway(payments.StripeConfig{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		SuccessURL:    cfg.CheckoutSuccessURL,
		CancelURL:     cfg.CheckoutCancelURL,
	}, logger.Named("payments"))

	auditDispatcher := audit.NewDispatcher(audit.New(db), logger.Named("audit"))

	// ======================================================
	// HTTP
	// ======================================================
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, routes.Infra{
		DB:       db,
		Config:   cfg,
		Log:      logger,
		Audit:    auditDispatcher,
		Mail:     mail,
		Gateway:  gateway,
		Tracker:  tracking.NewTracker(rdb),
		Uploader: uploader,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server running", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}

	// drain queued side effects after the last request finished
	mail.Close()
	auditDispatcher.Close()
}
