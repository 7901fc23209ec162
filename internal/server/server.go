// Package server assembles the echo router from the feature handlers.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sudo-init-do/coderr/internal/admin"
	"github.com/sudo-init-do/coderr/internal/alerts"
	"github.com/sudo-init-do/coderr/internal/apperr"
	"github.com/sudo-init-do/coderr/internal/auth"
	"github.com/sudo-init-do/coderr/internal/logging"
	"github.com/sudo-init-do/coderr/internal/marketplace"
	"github.com/sudo-init-do/coderr/internal/media"
	"github.com/sudo-init-do/coderr/internal/messaging"
	mware "github.com/sudo-init-do/coderr/internal/middleware"
	"github.com/sudo-init-do/coderr/internal/models"
	"github.com/sudo-init-do/coderr/internal/repository"
	"github.com/sudo-init-do/coderr/internal/user"
	"github.com/sudo-init-do/coderr/internal/validation"
)

// Deps is everything the router needs. Offers may be a cached wrapper
// around Store.Offers.
type Deps struct {
	Store    *repository.Store
	Offers   repository.OfferRepository
	Notifier alerts.Notifier
	Media    media.Store
	Hub      *messaging.Hub
	Logger   *zap.Logger

	JWTSecret       []byte
	ResetExpiry     time.Duration
	AppURL          string
	BootstrapSecret string

	// AuthRateLimit is requests per second per IP on the credential routes.
	AuthRateLimit float64
	UploadLimit   string
}

func New(d Deps) *echo.Echo {
	if d.Offers == nil {
		d.Offers = d.Store.Offers
	}
	if d.Notifier == nil {
		d.Notifier = alerts.Noop{}
	}
	if d.AuthRateLimit <= 0 {
		d.AuthRateLimit = 20
	}
	if d.UploadLimit == "" {
		d.UploadLimit = "10M"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(d.Logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(d.Logger))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	authH := &auth.Handler{
		Users:           d.Store.Users,
		Tokens:          d.Store.Tokens,
		Notifier:        d.Notifier,
		Logger:          d.Logger,
		JWTSecret:       d.JWTSecret,
		ResetExpiry:     d.ResetExpiry,
		AppURL:          d.AppURL,
		BootstrapSecret: d.BootstrapSecret,
	}
	userH := &user.Handler{Profiles: d.Store.Profiles}
	marketH := &marketplace.Handler{
		Users:    d.Store.Users,
		Offers:   d.Offers,
		Orders:   d.Store.Orders,
		Reviews:  d.Store.Reviews,
		Notifier: d.Notifier,
		Logger:   d.Logger,
	}
	if d.Hub != nil {
		marketH.Live = d.Hub
	}
	adminH := &admin.Handler{Users: d.Store.Users, Stats: d.Store.Stats}
	mediaH := &media.Handler{Store: d.Media, Logger: d.Logger}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/ready", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := d.Store.Ping(ctx); err != nil {
			d.Logger.Warn("readiness check failed", zap.Error(err))
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "not_ready", "error": "database unreachable"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
	})

	// Public routes
	limiter := middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(d.AuthRateLimit)))
	e.POST("/api/registration/", authH.Register, limiter)
	e.POST("/api/login/", authH.Login, limiter)
	e.POST("/api/password/request/", authH.RequestPasswordReset, limiter)
	e.POST("/api/password/reset/", authH.ResetPassword, limiter)
	e.POST("/api/staff/bootstrap/", authH.BootstrapStaff, limiter)

	e.GET("/api/offers/", marketH.ListOffers)
	e.GET("/api/base-info/", adminH.BaseInfo)
	e.GET("/media/:name", mediaH.Serve)

	// Protected routes
	api := e.Group("/api", mware.TokenAuth(d.Store.Tokens))

	api.GET("/me/", authH.Me)

	api.GET("/profile/:pk/", userH.GetProfile)
	api.PATCH("/profile/:pk/", userH.UpdateProfile)
	api.GET("/profiles/business/", userH.ListBusinessProfiles)
	api.GET("/profiles/customer/", userH.ListCustomerProfiles)

	api.POST("/offers/", marketH.CreateOffer, mware.RequireType(marketplace.MsgOfferBusinessOnly, models.Business))
	api.GET("/offers/:id/", marketH.GetOffer)
	api.PATCH("/offers/:id/", marketH.UpdateOffer)
	api.DELETE("/offers/:id/", marketH.DeleteOffer)
	api.GET("/offerdetails/:id/", marketH.GetOfferDetail)

	api.GET("/orders/", marketH.ListOrders)
	api.POST("/orders/", marketH.CreateOrder, mware.RequireType(marketplace.MsgOrderCustomerOnly, models.Customer))
	api.PATCH("/orders/:id/", marketH.UpdateOrderStatus)
	api.DELETE("/orders/:id/", marketH.DeleteOrder)
	if d.Hub != nil {
		api.GET("/orders/:id/ws", d.Hub.OrderWS)
	}
	api.GET("/order-count/:business_user_id/", marketH.CountInProgressOrders)
	api.GET("/completed-order-count/:business_user_id/", marketH.CountCompletedOrders)

	api.GET("/reviews/", marketH.ListReviews)
	api.POST("/reviews/", marketH.CreateReview, mware.RequireType(marketplace.MsgReviewCustomerOnly, models.Customer))
	api.PATCH("/reviews/:id/", marketH.UpdateReview)
	api.DELETE("/reviews/:id/", marketH.DeleteReview)

	api.POST("/upload/", mediaH.Upload, middleware.BodyLimit(d.UploadLimit))

	// Staff routes
	staff := api.Group("/admin", mware.StaffGuard)
	staff.POST("/users/:id/suspend", adminH.SuspendUser)
	staff.POST("/users/:id/activate", adminH.ActivateUser)

	return e
}
