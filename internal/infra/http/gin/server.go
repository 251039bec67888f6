package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"gearshare/internal/infra/config"
	"gearshare/internal/infra/obs"
)

type Handlers struct {
	Auth           AuthHTTP
	Item           ItemHTTP
	Rental         RentalHTTP
	Condition      ConditionHTTP
	Dispute        DisputeHTTP
	Deposit        DepositHTTP
	Review         ReviewHTTP
	Profile        ProfileHTTP
	AuthMiddleware gin.HandlerFunc
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
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	registerSwaggerRoutes(router)

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Item != nil {
		api.GET("/items", h.Item.Search)
		api.POST("/items", h.Item.Create)
		api.GET("/items/:id", h.Item.Get)
		api.POST("/photos", h.Item.UploadPhoto)
	}
	if h.Review != nil {
		api.GET("/items/:id/reviews", h.Review.ListByItem)
	}
	if h.Rental != nil {
		api.POST("/rentals", h.Rental.Submit)
		api.GET("/rentals", h.Rental.List)
		api.GET("/rentals/:id", h.Rental.Get)
		api.POST("/rentals/:id/status", h.Rental.SetStatus)
	}
	if h.Condition != nil {
		api.POST("/rentals/:id/condition-reports", h.Condition.Create)
		api.GET("/rentals/:id/condition-reports", h.Condition.List)
		api.POST("/condition-reports/:reportId/verify", h.Condition.Verify)
	}
	if h.Dispute != nil {
		api.POST("/rentals/:id/disputes", h.Dispute.Open)
		api.GET("/rentals/:id/disputes", h.Dispute.ListByRental)
		api.GET("/disputes/:id", h.Dispute.Get)
		api.POST("/disputes/:id/review", h.Dispute.StartReview)
		api.POST("/disputes/:id/resolve", h.Dispute.Resolve)
		api.POST("/disputes/:id/close", h.Dispute.Close)
		api.POST("/disputes/:id/messages", h.Dispute.AddMessage)
	}
	if h.Deposit != nil {
		api.GET("/rentals/:id/deposit", h.Deposit.GetByRental)
	}
	if h.Review != nil {
		api.POST("/rentals/:id/reviews", h.Review.Submit)
	}
	if h.Profile != nil {
		api.GET("/profiles/:id", h.Profile.Get)
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
