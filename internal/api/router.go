package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zunayedTheCreator/property-prospect-server/internal/api/handlers"
	"github.com/zunayedTheCreator/property-prospect-server/internal/api/middleware"
	"github.com/zunayedTheCreator/property-prospect-server/internal/config"
	"github.com/zunayedTheCreator/property-prospect-server/internal/models"
	"github.com/zunayedTheCreator/property-prospect-server/internal/services"
	"github.com/zunayedTheCreator/property-prospect-server/internal/storage"
)

// Services are the dependencies of the public API. main builds them once.
type Services struct {
	Ledger     services.IPurchaseLedger
	Users      services.IUserService
	Properties services.IPropertyService
	Reviews    services.IReviewService
	Wishlists  services.IWishlistService
	Payments   services.IPaymentService
	Storage    storage.IS3Storage
	FraudPurge handlers.FraudPurgeScheduler
}

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, svc Services) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.CORSMiddleware(cfg.CorsAllowedOrigins))

	purchaseHandler := handlers.NewRestPurchaseHandler(svc.Ledger)
	userHandler := handlers.NewRestUserHandler(cfg, svc.Users, svc.FraudPurge)
	propertyHandler := handlers.NewRestPropertyHandler(cfg, svc.Properties, svc.Users, svc.Storage)
	reviewHandler := handlers.NewRestReviewHandler(svc.Reviews)
	wishlistHandler := handlers.NewRestWishlistHandler(svc.Wishlists)
	paymentHandler := handlers.NewRestPaymentHandler(svc.Payments)

	authenticated := middleware.AuthMiddleware(cfg.JwtSecret)
	anyUser := middleware.RequireRole(svc.Users, models.RoleNormal)
	agentOnly := middleware.RequireRole(svc.Users, models.RoleAgent)
	adminOnly := middleware.RequireRole(svc.Users, models.RoleAdmin)

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "property is waiting!!!")
	})
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	// Tokens and users
	r.POST("/jwt", userHandler.IssueToken)
	r.POST("/user", userHandler.CreateUser)
	r.GET("/user", authenticated, userHandler.ListUsers)
	r.GET("/user/role/:email", authenticated, userHandler.GetRole)
	r.PATCH("/user/admin/:id", authenticated, adminOnly, userHandler.MakeAdmin)
	r.PATCH("/user/agent/:id", authenticated, adminOnly, userHandler.MakeAgent)
	r.PATCH("/user/fraud/:id", authenticated, adminOnly, userHandler.MarkFraud)
	r.DELETE("/user/:id", authenticated, adminOnly, userHandler.DeleteUser)

	// Purchase requests
	bp := r.Group("/brought-property")
	{
		bp.GET("", purchaseHandler.ListAll)
		bp.GET("/:id", purchaseHandler.Get)
		bp.POST("", authenticated, purchaseHandler.Create)
		bp.GET("/normal/:email", authenticated, agentOnly, purchaseHandler.ListByAgent)
		bp.PATCH("/accepted/:id/:main_id", authenticated, agentOnly, purchaseHandler.Accept)
		bp.PATCH("/rejected/:id", authenticated, agentOnly, purchaseHandler.Reject)
		bp.PATCH("/bought/:id", authenticated, purchaseHandler.MarkBought)
		bp.DELETE("/fraud/:agent_email", authenticated, adminOnly, purchaseHandler.PurgeByAgent)
	}

	// Listings
	r.GET("/property", propertyHandler.ListProperties)
	r.GET("/property/:id", propertyHandler.GetProperty)
	r.GET("/advertisement", propertyHandler.ListAdvertised)
	r.POST("/property", authenticated, agentOnly, propertyHandler.CreateProperty)
	r.GET("/property/agent/:email", authenticated, agentOnly, propertyHandler.ListByAgent)
	r.PATCH("/property/verify/:id", authenticated, adminOnly, propertyHandler.VerifyProperty)
	r.PATCH("/property/reject/:id", authenticated, adminOnly, propertyHandler.RejectProperty)
	r.PATCH("/property/advertise/:id", authenticated, adminOnly, propertyHandler.AdvertiseProperty)
	r.DELETE("/property/:id", authenticated, agentOnly, propertyHandler.DeleteProperty)
	r.POST("/property/:id/image", authenticated, agentOnly, propertyHandler.UploadImage)

	// Reviews and wishlists
	r.GET("/review", reviewHandler.ListReviews)
	r.POST("/review", authenticated, reviewHandler.CreateReview)
	r.DELETE("/review/:id", authenticated, anyUser, reviewHandler.DeleteReview)

	r.GET("/wishlist", wishlistHandler.ListWishlist)
	r.GET("/wishlist/:id", wishlistHandler.GetWishlistItem)
	r.POST("/wishlist", authenticated, wishlistHandler.AddToWishlist)
	r.DELETE("/wishlist/:id", authenticated, wishlistHandler.RemoveFromWishlist)

	r.POST("/create-payment-intent", authenticated, paymentHandler.CreatePaymentIntent)

	return r
}

// SetupServiceRouter configures and returns the service Gin engine.
// mailbox may be nil when emails are not mocked.
func SetupServiceRouter(mailbox handlers.MockMailbox, emails handlers.EmailScheduler, shutdownChan chan<- struct{}) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	serviceHandler := handlers.NewServiceApiHandler(mailbox, emails, shutdownChan)
	r.POST("/api", serviceHandler.HandleRequest)
	return r
}
