package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/swarajb-778/StockPilot/config"
	"github.com/swarajb-778/StockPilot/controllers"
	"github.com/swarajb-778/StockPilot/middleware"
	"github.com/swarajb-778/StockPilot/services"
	"github.com/swarajb-778/StockPilot/utils"
	"github.com/swarajb-778/StockPilot/ws"
)

// Deps are the process-wide collaborators shared by every handler.
type Deps struct {
	Config        config.Config
	DB            *gorm.DB
	Hub           *ws.Hub
	Verifier      utils.TokenVerifier
	Notifications *services.NotificationService
	Products      *services.ProductService
	Dashboard     *services.DashboardService
	Users         *services.UserService
}

func SetupRouter(r *gin.Engine, d Deps) *gin.Engine {
	if err := controllers.RegisterValidators(); err != nil {
		panic(err)
	}

	var clients controllers.ClientCounter
	if d.Hub != nil {
		clients = d.Hub
	}
	health := controllers.NewHealthController(d.DB, clients)
	r.GET("/health", health.Check)

	api := r.Group("/")
	api.Use(middleware.AuthMiddleware(d.Verifier))

	notifications := controllers.NewNotificationController(d.Notifications, d.Config.LowStockThreshold)
	n := api.Group("/notifications")
	{
		n.GET("", notifications.List)
		n.POST("", notifications.Create)
		n.GET("/unread-count", notifications.UnreadCount)
		n.POST("/mark-all-read", notifications.MarkAllRead)
		n.DELETE("/read", notifications.DeleteAllRead)
		n.GET("/check-low-stock", notifications.CheckLowStock)
		n.POST("/check-low-stock", notifications.CheckLowStock)
		n.PATCH("/:id/read", notifications.MarkRead)
		n.DELETE("/:id", notifications.Delete)
	}

	products := controllers.NewProductController(d.Products, d.Config.MaxImageBytes)
	p := api.Group("/products")
	{
		p.GET("", products.List)
		p.POST("", products.Create)
		p.GET("/:id", products.Get)
		p.PUT("/:id", products.Update)
		p.PATCH("/:id", products.Update)
		p.POST("/:id/image", products.UploadImage)
		p.DELETE("/:id", products.Delete)
	}

	dashboard := controllers.NewDashboardController(d.Dashboard)
	api.GET("/dashboard", dashboard.Metrics)
	api.GET("/dashboard/:series/summary", dashboard.Summary)
	api.GET("/expenses", dashboard.ExpensesByCategory)

	users := controllers.NewUserController(d.Users)
	api.GET("/users", users.List)

	if d.Hub != nil {
		upgrader := ws.NewUpgrader(d.Config.CORSOrigins)
		api.GET("/ws/notifications", d.Hub.HandleNotifications(upgrader, d.Notifications))
	}

	return r
}
