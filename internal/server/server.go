package server

import (
	"errors"
	"net/http"

	"pos-service/internal/handler"
	"pos-service/internal/middleware"
	"pos-service/internal/repository"
	"pos-service/internal/service"
	"pos-service/pkg/config"
	"pos-service/pkg/jwtutil"
	"pos-service/pkg/logger"
	"pos-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the collaborators the HTTP server is built from
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Logger   *zap.Logger
	Metrics  *prometheus.Metrics
	Gatherer prom.Gatherer
	// Stores overrides the store repository, e.g. with the redis cache
	Stores repository.StoreRepository
}

// New builds the echo instance with middleware and routes
func New(d Deps) *echo.Echo {
	if d.Logger == nil {
		d.Logger = logger.GetLogger()
	}
	if d.Gatherer == nil {
		d.Gatherer = prom.DefaultGatherer
	}
	stores := d.Stores
	if stores == nil {
		stores = repository.NewStoreRepository(d.DB)
	}

	jwt := jwtutil.NewJWTUtil(&d.Config.JWT)

	syncHandler := handler.NewSyncHandler(service.NewSyncService(d.DB, d.Metrics))
	storeHandler := handler.NewStoreHandler(stores, d.Metrics)
	authHandler := handler.NewAuthHandler(repository.NewUserRepository(d.DB), jwt, d.Metrics)
	feedbackHandler := handler.NewFeedbackHandler(repository.NewFeedbackRepository(d.DB))
	healthHandler := handler.NewHealthHandler(d.Config.ServiceName, d.DB)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.HTTPErrorHandler = HTTPErrorHandler

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: d.Config.Server.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderXRequestID},
	}))
	e.Use(middleware.RequestIDMiddleware(d.Logger))
	e.Use(middleware.MetricsMiddleware(d.Metrics))

	// Public routes
	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))

	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// API routes - all require a bearer token
	api := e.Group("/api", middleware.AuthMiddleware(jwt))

	syncAPI := api.Group("/sync")
	syncAPI.POST("/pull", syncHandler.Pull)
	syncAPI.POST("/push", syncHandler.Push)

	storeAPI := api.Group("/stores")
	storeAPI.GET("/:userId", storeHandler.ListStores)
	storeAPI.POST("", storeHandler.CreateStore)

	feedbackAPI := api.Group("/feedback")
	feedbackAPI.POST("", feedbackHandler.CreateFeedback)
	feedbackAPI.GET("/:userId", feedbackHandler.ListFeedback)

	return e
}

// HTTPErrorHandler writes echo errors in the {"error": "..."} shape used by every handler
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		if m, ok := httpErr.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	} else {
		logger.FromContext(c).Error("Unhandled error", zap.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, echo.Map{"error": msg})
	}
	if err != nil {
		logger.FromContext(c).Error("Failed to write error response", zap.Error(err))
	}
}
