package router

import (
	"github.com/edupay/backend/internal/domain/identity"
	"github.com/edupay/backend/internal/infrastructure/auth"
	"github.com/edupay/backend/internal/infrastructure/config"
	"github.com/edupay/backend/internal/infrastructure/logger"
	"github.com/edupay/backend/internal/interfaces/http/handler"
	"github.com/edupay/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers bundles every HTTP handler the router wires up
type Handlers struct {
	System       *handler.SystemHandler
	Auth         *handler.AuthHandler
	Student      *handler.StudentHandler
	Fee          *handler.FeeHandler
	Payment      *handler.PaymentHandler
	Callback     *handler.CallbackHandler
	Portal       *handler.PortalHandler
	Announcement *handler.AnnouncementHandler
}

// New builds the gin engine with middleware and all routes registered.
//
// Route surface:
//   - /api/v1/auth/*           login and token refresh (unauthenticated)
//   - /api/v1/payment/callback gateway callbacks (signature-verified, unauthenticated)
//   - /api/v1/admin/*          school administration (admin role)
//   - /api/v1/portal/*         student self-service (student token)
func New(cfg *config.Config, jwtService *auth.JWTService, h Handlers, log *zap.Logger) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Health endpoints outside the versioned API
	engine.GET("/health", h.System.Health)
	engine.GET("/healthz", h.System.Health)

	api := engine.Group("/api/v1")

	api.GET("/system/info", h.System.Info)

	// Authentication (unauthenticated)
	authRoutes := api.Group("/auth")
	authRoutes.POST("/login", h.Auth.Login)
	authRoutes.POST("/refresh", h.Auth.Refresh)

	// Gateway callbacks carry their own HMAC credential instead of a JWT
	api.POST("/payment/callback", h.Callback.Handle)

	// Authenticated routes
	authed := api.Group("")
	authed.Use(middleware.JWTAuth(jwtService, log))
	authed.POST("/auth/change-password", h.Auth.ChangePassword)

	// Admin surface
	admin := authed.Group("/admin")
	admin.Use(middleware.RequireAdmin())

	admin.POST("/students", h.Student.Onboard)
	admin.GET("/students", h.Student.List)
	admin.GET("/students/:id", h.Student.Get)
	admin.PUT("/students/:id", h.Student.Update)
	admin.POST("/students/:id/deactivate", h.Student.Deactivate)
	admin.POST("/students/:id/reactivate", h.Student.Reactivate)
	admin.GET("/students/:id/fees", h.Fee.ListForStudent)
	admin.GET("/students/:id/outstanding", h.Fee.Outstanding)
	admin.GET("/students/:id/payments", h.Fee.PaymentHistory)

	admin.POST("/fees", h.Fee.Create)
	admin.GET("/fees", h.Fee.List)
	admin.GET("/fees/:id", h.Fee.Get)
	admin.GET("/fees/:id/payments", h.Fee.PaymentsForFee)

	admin.POST("/payments/cash", h.Payment.RecordCash)
	admin.POST("/payments/orders", h.Payment.CreateOrder)
	admin.GET("/payments/transactions/:transactionID", h.Payment.GetByTransactionID)

	admin.POST("/announcements", h.Announcement.Post)
	admin.GET("/announcements", h.Announcement.List)
	admin.DELETE("/announcements/:id", h.Announcement.Delete)

	// Student portal surface
	portal := authed.Group("/portal")
	portal.Use(middleware.RequireRole(string(identity.RoleStudent)))
	portal.GET("/me", h.Portal.Profile)
	portal.GET("/fees", h.Portal.Fees)
	portal.GET("/outstanding", h.Portal.Outstanding)
	portal.GET("/payments", h.Portal.Payments)
	portal.GET("/announcements", h.Portal.Announcements)

	return engine
}
