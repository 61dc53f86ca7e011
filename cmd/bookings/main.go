package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sahalat/booking-engine/internal/bookings"
	"github.com/sahalat/booking-engine/internal/catalog"
	"github.com/sahalat/booking-engine/internal/coupons"
	"github.com/sahalat/booking-engine/internal/payments"
	"github.com/sahalat/booking-engine/internal/pricing"
	"github.com/sahalat/booking-engine/internal/reviews"
	"github.com/sahalat/booking-engine/migrations"
	"github.com/sahalat/booking-engine/pkg/cache"
	"github.com/sahalat/booking-engine/pkg/config"
	"github.com/sahalat/booking-engine/pkg/database"
	"github.com/sahalat/booking-engine/pkg/logger"
	"github.com/sahalat/booking-engine/pkg/middleware"
	redisclient "github.com/sahalat/booking-engine/pkg/redis"
)

func main() {
	cfg, err := config.Load("bookings")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := database.Migrate(cfg.Database.URL(), migrations.FS); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Cache is best effort; the service runs without Redis.
	var cacheManager *cache.Manager
	redis, err := redisclient.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, running without cache")
	} else {
		defer redis.Close()
		cacheManager = cache.NewManager(redis)
	}

	catalogRepo := catalog.NewRepository(db)
	catalogService := catalog.NewService(catalogRepo)
	if cacheManager != nil {
		catalogService.SetCache(cacheManager)
	}
	catalogHandler := catalog.NewHandler(catalogService)

	couponsRepo := coupons.NewRepository(db)
	couponsService := coupons.NewService(couponsRepo)
	couponsHandler := coupons.NewHandler(couponsService)

	pricingService := pricing.NewService(catalogService, couponsService)
	pricingHandler := pricing.NewHandler(pricingService)

	var gateway payments.Gateway = payments.NewStripeGateway(cfg.Stripe.APIKey)

	bookingsRepo := bookings.NewRepository(db)
	bookingsService := bookings.NewService(bookingsRepo, pricingService, catalogService, couponsService, gateway, cfg.Stripe.Currency)
	bookingsHandler := bookings.NewHandler(bookingsService)

	reviewsRepo := reviews.NewRepository(db)
	reviewsService := reviews.NewService(reviewsRepo)
	reviewsHandler := reviews.NewHandler(reviewsService)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger("bookings"))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.Server.CORSOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "bookings"})
	})
	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "alive", "service": "bookings"})
	})
	router.GET("/health/ready", func(c *gin.Context) {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(pingCtx); err != nil {
			c.JSON(503, gin.H{"status": "not ready", "failed_check": "database"})
			return
		}
		c.JSON(200, gin.H{"status": "ready", "service": "bookings"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		// Public endpoints
		catalogHandler.RegisterRoutes(api)
		pricingHandler.RegisterRoutes(api)
		reviewsHandler.RegisterPublicRoutes(api)

		// Authenticated endpoints
		authenticated := api.Group("")
		authenticated.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
		{
			couponsHandler.RegisterRoutes(authenticated)
			bookingsHandler.RegisterRoutes(authenticated)
			reviewsHandler.RegisterRoutes(authenticated)
		}

		// Payment gateway callbacks
		internal := api.Group("/internal")
		internal.Use(middleware.InternalAPIKey(cfg.Internal.APIKey))
		{
			bookingsHandler.RegisterInternalRoutes(internal)
		}
	}

	addr := ":" + cfg.Server.Port
	logger.Info("Bookings service starting on " + addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
