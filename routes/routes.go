package routes

import (
	"strings"
	"time"

	"traceaq/handlers"
	"traceaq/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterCheckoutRoutes registers the checkout session endpoints. A checkout is
// anonymous until its sign up step creates the account.
func RegisterCheckoutRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/checkout/sessions")
	{
		api.POST("", hb.StartCheckoutSession)
		api.GET("/:id", hb.GetCheckoutSession)
		api.DELETE("/:id", hb.EndCheckoutSession)
		api.PATCH("/:id/fields", hb.UpdateCheckoutFields)
		api.POST("/:id/advance", hb.AdvanceCheckout)
		api.POST("/:id/navigate", hb.NavigateCheckout)
		api.POST("/:id/cancel-edit", hb.CancelCheckoutEdit)
		api.POST("/:id/discount", hb.ApplyCheckoutDiscount)
		api.DELETE("/:id/discount", hb.RemoveCheckoutDiscount)
		api.PUT("/:id/seats", hb.SetCheckoutSeats)
		api.POST("/:id/purchase", hb.PurchaseCheckout)
	}
}

// RegisterOrderRoutes registers order and saved payment method endpoints.
func RegisterOrderRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		// Protected routes (Require Authentication)
		api.Use(middleware.JWTAuthMiddleware(hb.Auth))
		api.POST("/orders", hb.CreateOrder)
		api.GET("/orders", hb.ListOrders)
		api.GET("/orders/:id", hb.GetOrder)

		api.GET("/payment-methods", hb.ListPaymentMethods)
		api.POST("/payment-methods", hb.CreatePaymentMethod)
		api.PUT("/payment-methods/:id/default", hb.SetDefaultPaymentMethod)
		api.DELETE("/payment-methods/:id", hb.DeletePaymentMethod)
	}
}

// RegisterPaymentRoutes registers the processor endpoints.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/coupons/verify", hb.VerifyCoupon)

	api := r.Group("/api")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.Auth))
		api.POST("/create-payment-intent", hb.CreatePaymentIntent)
		api.POST("/payments/confirm", hb.ConfirmPayment)
	}
}

// RegisterAuthRoutes registers sign in and password reset endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/login", hb.Login)
		api.POST("/logout", hb.Logout)
		api.POST("/reset-code", hb.SendResetCode)
		api.POST("/verify-reset-code", hb.VerifyResetCode)
		api.GET("/user", middleware.JWTAuthMiddleware(hb.Auth), hb.CurrentUser)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.Health)
}

// AllowedOrigins splits a comma-separated origin list.
func AllowedOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, origins []string) {
	corsConfig := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	r.Use(cors.New(corsConfig))

	RegisterHealthRoute(r, hb)
	RegisterAuthRoutes(r, hb)
	RegisterCheckoutRoutes(r, hb)
	RegisterOrderRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
}
