package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-ordering/controllers"
	"github.com/yeremiapane/restaurant-ordering/events"
	"github.com/yeremiapane/restaurant-ordering/kds"
	"github.com/yeremiapane/restaurant-ordering/middlewares"
	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

// Deps are the long-lived collaborators the HTTP layer is built from.
type Deps struct {
	DB                 *gorm.DB
	Tokens             *utils.TokenManager
	Sessions           services.SessionStore
	Hub                *kds.Hub
	Publisher          events.Publisher
	CookieSecure       bool
	CORSOrigin         string
	RateLimitPerSecond float64
}

func SetupRouter(d Deps) *gin.Engine {
	utils.RegisterValidators()
	if d.Publisher == nil {
		d.Publisher = events.Nop{}
	}

	r := gin.New()
	r.Use(middlewares.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(d.CORSOrigin))
	if d.RateLimitPerSecond > 0 {
		burst := int(d.RateLimitPerSecond)
		r.Use(middlewares.NewRateLimiter(d.RateLimitPerSecond, burst).RateLimit())
	}
	r.NoRoute(func(c *gin.Context) {
		utils.RespondError(c, utils.NotFoundError("Route not found"))
	})

	orderSvc := services.NewOrderService(d.DB, d.Publisher)
	cartSvc := services.NewCartService(d.DB)
	checkoutSvc := services.NewCheckoutService(d.DB, cartSvc, orderSvc)
	addressSvc := services.NewAddressService(d.DB)

	auth := middlewares.NewAuthenticator(d.Tokens, d.Sessions)
	userCtrl := controllers.NewUserController(d.DB, d.Tokens, d.Sessions, cartSvc, d.CookieSecure)
	addressCtrl := controllers.NewAddressController(addressSvc)
	cartCtrl := controllers.NewCartController(cartSvc, d.CookieSecure)
	orderCtrl := controllers.NewOrderController(orderSvc, checkoutSvc)
	categoryCtrl := controllers.NewMenuCategoryController(d.DB)
	menuCtrl := controllers.NewMenuController(d.DB, d.Publisher)
	tableCtrl := controllers.NewTableController(d.DB, d.Publisher)
	adminCtrl := controllers.NewAdminController(d.DB, d.Hub)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		utils.RespondJSON(c, http.StatusOK, "pong", nil)
	})

	public := r.Group("/auth")
	public.Use(middlewares.NoStore(), middlewares.NewStrictRateLimiter().RateLimit())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	session := r.Group("/auth")
	session.Use(middlewares.NoStore(), auth.RequireAuth())
	{
		session.POST("/logout", userCtrl.Logout)
		session.POST("/refresh", userCtrl.Refresh)
		session.GET("/me", userCtrl.GetProfile)
	}

	r.GET("/categories", categoryCtrl.GetAllCategories)
	r.GET("/menu-items", menuCtrl.GetAllMenus)
	r.GET("/menu-items/:id", menuCtrl.GetMenuByID)
	r.GET("/tables", tableCtrl.GetAllTables)

	// -- CART (user or guest) --
	cart := r.Group("/cart")
	cart.Use(auth.OptionalAuth())
	{
		cart.GET("", cartCtrl.GetCart)
		cart.GET("/summary", cartCtrl.GetSummary)
		cart.POST("/items", cartCtrl.AddItem)
		cart.PATCH("/items/:id", cartCtrl.UpdateItem)
		cart.DELETE("/items/:id", cartCtrl.RemoveItem)
		cart.DELETE("", cartCtrl.ClearCart)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	addresses := r.Group("/addresses")
	addresses.Use(auth.RequireAuth())
	{
		addresses.GET("", addressCtrl.ListAddresses)
		addresses.POST("", addressCtrl.CreateAddress)
		addresses.PUT("/:id", addressCtrl.UpdateAddress)
		addresses.DELETE("/:id", addressCtrl.DeleteAddress)
		addresses.PATCH("/:id/default", addressCtrl.SetDefaultAddress)
	}

	orders := r.Group("/orders")
	orders.Use(auth.RequireAuth())
	{
		orders.POST("/checkout", orderCtrl.CreateOrder)
		orders.GET("/mine", orderCtrl.GetMyOrders)
		orders.GET("/:id", orderCtrl.GetOrderByID)
		orders.PATCH("/status",
			middlewares.RequireRoles(models.RoleAdmin, models.RoleCashier, models.RoleWaiter),
			middlewares.AuditTrail("order.status"),
			orderCtrl.UpdateOrderStatus)
		orders.PATCH("/payment",
			middlewares.RequireRoles(models.RoleAdmin, models.RoleCashier),
			middlewares.NoStore(),
			middlewares.AuditTrail("order.payment"),
			orderCtrl.UpdateOrderPayment)
	}

	staff := r.Group("/admin")
	staff.Use(auth.RequireAuth(), middlewares.RequireStaff())
	{
		staff.GET("/orders", orderCtrl.GetAllOrders)
		staff.PATCH("/order-items/:id/ready", orderCtrl.MarkItemReady)
		staff.GET("/kitchen/stations/:station/items", orderCtrl.GetStationQueue)
		staff.PATCH("/tables/:id/availability",
			middlewares.RequireRoles(models.RoleAdmin, models.RoleWaiter),
			tableCtrl.UpdateTableAvailability)
	}

	admin := r.Group("/admin")
	admin.Use(auth.RequireAuth(), middlewares.RequireRoles(models.RoleAdmin), middlewares.AuditTrail("admin"))
	{
		admin.POST("/categories", categoryCtrl.CreateCategory)
		admin.PUT("/categories/:id", categoryCtrl.UpdateCategory)
		admin.DELETE("/categories/:id", categoryCtrl.DeleteCategory)

		admin.POST("/menu-items", menuCtrl.CreateMenu)
		admin.PUT("/menu-items/:id", menuCtrl.UpdateMenu)
		admin.DELETE("/menu-items/:id", menuCtrl.DeleteMenu)
		admin.PATCH("/menu-items/:id/availability", menuCtrl.UpdateAvailability)

		admin.POST("/tables", tableCtrl.CreateTable)
		admin.PUT("/tables/:id", tableCtrl.UpdateTable)
		admin.DELETE("/tables/:id", tableCtrl.DeleteTable)

		admin.GET("/users", userCtrl.GetAllUsers)
		admin.POST("/users", userCtrl.CreateUser)
		admin.PATCH("/users/:id/role", userCtrl.UpdateUserRole)
		admin.DELETE("/users/:id", userCtrl.DeleteUser)

		admin.GET("/dashboard/stats", adminCtrl.GetDashboardStats)
	}

	if d.Hub != nil {
		kdsCtrl := controllers.NewKDSController(d.Hub, d.CORSOrigin)
		r.GET("/ws/kds", middlewares.QueryTokenFallback(), auth.RequireAuth(), kdsCtrl.KDSHandler)
	}

	return r
}
