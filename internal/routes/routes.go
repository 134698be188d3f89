package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/thesuite/booking-api/internal/audit"
	"github.com/thesuite/booking-api/internal/config"
	"github.com/thesuite/booking-api/internal/handlers"
	infraRepo "github.com/thesuite/booking-api/internal/infra/repository"
	"github.com/thesuite/booking-api/internal/media"
	"github.com/thesuite/booking-api/internal/middleware"
	"github.com/thesuite/booking-api/internal/notify"
	"github.com/thesuite/booking-api/internal/payments"
	"github.com/thesuite/booking-api/internal/tracking"
	ucBooking "github.com/thesuite/booking-api/internal/usecase/booking"
)

// Infra holds the long-lived collaborators built in main.
type Infra struct {
	DB       *gorm.DB
	Config   *config.Config
	Log      *zap.Logger
	Audit    *audit.Dispatcher
	Mail     *notify.Dispatcher
	Gateway  payments.Gateway
	Tracker  *tracking.Tracker
	Uploader *media.Uploader
}

func RegisterRoutes(r *gin.Engine, in Infra) {
	cfg := in.Config

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(middleware.RequestLogger(in.Log))
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ======================================================
	// INFRA
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(in.DB)
	limiter := middleware.NewIPRateLimiter(cfg.RateLimitPerMin)

	// ======================================================
	// USE CASES
	// ======================================================
	availabilityUC := ucBooking.NewGetAvailability(bookingRepo)

	createBookingUC := ucBooking.NewCreateBooking(
		bookingRepo,
		in.Gateway,
		in.Audit,
		in.Mail,
		in.Log,
		cfg.Currency,
	)

	confirmPaymentUC := ucBooking.NewConfirmPayment(
		bookingRepo,
		in.Audit,
		in.Mail,
		in.Log,
	)

	quoteCancellationUC := ucBooking.NewQuoteCancellation(bookingRepo)

	cancelBookingUC := ucBooking.NewCancelBooking(
		bookingRepo,
		in.Gateway,
		in.Audit,
		in.Mail,
		in.Log,
	)

	completeBookingUC := ucBooking.NewCompleteBooking(bookingRepo, in.Audit)
	listByDateUC := ucBooking.NewListByDate(bookingRepo)
	listByMonthUC := ucBooking.NewListByMonth(bookingRepo)

	// ======================================================
	// HANDLERS
	// ======================================================
	publicHandler := handlers.NewPublicHandler(handlers.PublicDeps{
		DB:           in.DB,
		Repo:         bookingRepo,
		Availability: availabilityUC,
		Create:       createBookingUC,
		Quote:        quoteCancellationUC,
		Cancel:       cancelBookingUC,
		Tracker:      in.Tracker,
		Sessions:     tracking.NewCookieSessions(cfg.IsProduction()),
		Log:          in.Log,
	})
	webhookHandler := handlers.NewWebhookHandler(in.Gateway, confirmPaymentUC, in.Log)

	professionalHandler := handlers.NewProfessionalHandler(in.DB, in.Uploader, in.Audit, cfg.Currency, in.Log)
	serviceHandler := handlers.NewServiceHandler(in.DB)
	workingHoursHandler := handlers.NewWorkingHoursHandler(in.DB)
	clientHandler := handlers.NewClientHandler(in.DB)
	auditLogsHandler := handlers.NewAuditLogsHandler(in.DB)
	statsHandler := handlers.NewStatsHandler(in.Tracker, in.Log)

	appointmentHandler := handlers.NewAppointmentHandler(
		listByDateUC,
		listByMonthUC,
		quoteCancellationUC,
		cancelBookingUC,
		completeBookingUC,
		in.Log,
	)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		publicAPI := api.Group("/public")
		publicAPI.Use(middleware.RateLimitMiddleware(limiter, in.Log))
		{
			publicAPI.GET("/bookings/:id/cancellation-quote", publicHandler.CancellationQuote)
			publicAPI.POST("/bookings/:id/cancel", publicHandler.Cancel)

			publicAPI.GET("/:slug", publicHandler.Profile)
			publicAPI.GET("/:slug/services", publicHandler.Services)
			publicAPI.GET("/:slug/availability", publicHandler.Availability)
			publicAPI.POST("/:slug/bookings", publicHandler.CreateBooking)
		}

		// ------------------------------
		// WEBHOOKS
		// ------------------------------
		api.POST("/webhooks/stripe", webhookHandler.Stripe)

		// ------------------------------
		// SECURED
		// ------------------------------
		me := api.Group("/me")
		me.Use(middleware.AuthMiddleware(cfg.JWTSecret, bookingRepo.LookupProfessional, in.Log))
		{
			// onboarding works before a profile exists
			me.GET("", professionalHandler.Me)
			me.POST("", professionalHandler.Onboard)

			pro := me.Group("")
			pro.Use(middleware.RequireProfessional())

			pro.GET("/profile", professionalHandler.GetProfile)
			pro.PATCH("/profile", professionalHandler.UpdateProfile)
			pro.POST("/avatar", professionalHandler.UploadAvatar)

			pro.GET("/cancellation-policy", professionalHandler.GetPolicy)
			pro.PUT("/cancellation-policy", professionalHandler.PutPolicy)

			pro.GET("/services", serviceHandler.List)
			pro.POST("/services", serviceHandler.Create)
			pro.PATCH("/services/:id", serviceHandler.Update)
			pro.DELETE("/services/:id", serviceHandler.Delete)
			pro.POST("/services/:id/addons", serviceHandler.CreateAddon)
			pro.PUT("/services/:id/addons/:addonId", serviceHandler.UpdateAddon)
			pro.DELETE("/services/:id/addons/:addonId", serviceHandler.DeleteAddon)

			pro.GET("/working-hours", workingHoursHandler.Get)
			pro.PUT("/working-hours", workingHoursHandler.Update)

			pro.GET("/clients", clientHandler.List)
			pro.GET("/clients/:id", clientHandler.Get)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			pro.GET("/appointments", appointmentHandler.List)
			pro.GET("/appointments/:id/cancellation-quote", appointmentHandler.CancellationQuote)
			pro.PATCH("/appointments/:id/cancel", appointmentHandler.Cancel)
			pro.PATCH("/appointments/:id/complete", appointmentHandler.Complete)

			pro.GET("/audit-logs", auditLogsHandler.List)
			pro.GET("/stats", statsHandler.Get)
		}
	}
}
