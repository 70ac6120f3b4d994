// internal/router/router.go
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/javajoker/storefront/internal/config"
	"github.com/javajoker/storefront/internal/database"
	"github.com/javajoker/storefront/internal/handlers"
	"github.com/javajoker/storefront/internal/middleware"
	"github.com/javajoker/storefront/internal/services"
	"github.com/javajoker/storefront/internal/utils"
)

const version = "1.0.0"

// Initialize wires services and routes. Background work started here stops
// when ctx is done.
func Initialize(ctx context.Context, repos *database.Repositories, gateway services.PaymentGateway, cfg *config.Config) *gin.Engine {
	// Initialize services
	authService := services.NewAuthService(repos.Users, cfg.Session)
	productService := services.NewProductService(repos.Products)
	cartService := services.NewCartService(repos.Cart, repos.Products)
	checkoutService := services.NewCheckoutService(cartService, gateway, cfg.Payment.Currency)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, cfg.Session)
	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)

	utils.SetJWTSecret(cfg.Session.SecretKey)

	generalLimiter := middleware.NewRateLimiter(limit(cfg.RateLimit.GeneralPerSecond, time.Second), cfg.RateLimit.GeneralBurst)
	authLimiter := middleware.NewRateLimiter(limit(cfg.RateLimit.AuthPerMinute, time.Minute), cfg.RateLimit.AuthBurst)
	go generalLimiter.Cleanup(ctx.Done())
	go authLimiter.Cleanup(ctx.Done())

	authRequired := middleware.AuthRequired(cfg.Session.CookieName)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.AllowedOrigins))
	r.Use(middleware.I18nMiddleware())
	r.Use(generalLimiter.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": version,
		})
	})

	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authLimiter.Middleware(), authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", authRequired, authHandler.Me)
		}

		products := v1.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/:id", productHandler.GetProduct)
		}

		cart := v1.Group("/cart")
		cart.Use(authRequired)
		{
			cart.GET("", cartHandler.GetCart)
			cart.POST("", cartHandler.AddItem)
			cart.DELETE("", cartHandler.ClearCart)
			cart.GET("/count", cartHandler.Count)
			cart.PUT("/:id", cartHandler.UpdateItem)
			cart.DELETE("/:id", cartHandler.RemoveItem)
		}

		v1.POST("/checkout", authRequired, checkoutHandler.Checkout)
	}

	return r
}

// limit converts "n per interval" into a token rate; n <= 0 disables limiting.
func limit(n float64, interval time.Duration) rate.Limit {
	if n <= 0 {
		return rate.Inf
	}
	return rate.Limit(n / interval.Seconds())
}
