package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"retreat/internal/infra/config"
	"retreat/internal/infra/obs"
)

type AvailabilityHTTP interface {
	Calendar(c *gin.Context)
	Quote(c *gin.Context)
}

type BookingHTTP interface {
	Create(c *gin.Context)
}

type WebhookHTTP interface {
	Payment(c *gin.Context)
}

type AdminHTTP interface {
	SyncCalendars(c *gin.Context)
	CreateBlock(c *gin.Context)
	DeleteBlock(c *gin.Context)
	CurrentRate(c *gin.Context)
	CreateRate(c *gin.Context)
	Reconcile(c *gin.Context)
}

type Handlers struct {
	Availability    AvailabilityHTTP
	Booking         BookingHTTP
	Webhook         WebhookHTTP
	Admin           AdminHTTP
	AdminMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Availability != nil {
		api.GET("/availability", h.Availability.Calendar)
		api.GET("/quote", h.Availability.Quote)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
	}
	if h.Webhook != nil {
		api.POST("/webhooks/payment", h.Webhook.Payment)
	}
	if h.Admin != nil {
		adminGroup := api.Group("/admin")
		if h.AdminMiddleware != nil {
			adminGroup.Use(h.AdminMiddleware)
		}
		adminGroup.POST("/calendar/sync", h.Admin.SyncCalendars)
		adminGroup.POST("/blocks", h.Admin.CreateBlock)
		adminGroup.DELETE("/blocks", h.Admin.DeleteBlock)
		adminGroup.GET("/rates/current", h.Admin.CurrentRate)
		adminGroup.POST("/rates", h.Admin.CreateRate)
		adminGroup.POST("/reconcile", h.Admin.Reconcile)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
