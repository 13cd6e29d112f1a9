package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/encontrar/shopping-api/internal/handlers"
	"github.com/encontrar/shopping-api/internal/middleware/auth"
	"github.com/encontrar/shopping-api/internal/models"
	"github.com/encontrar/shopping-api/internal/session"
)

type Deps struct {
	DB               *gorm.DB
	Sessions         *session.Manager
	AuthHandler      *handlers.AuthHandler
	ProductHandler   *handlers.ProductHandler
	PromotionHandler *handlers.PromotionHandler
	SalesHandler     *handlers.SalesHandler
	DashboardHandler *handlers.DashboardHandler
	SearchHandler    *handlers.SearchHandler
}

// Register declares every route together with its required-role set, so the
// whole access policy is inspectable in one place.
func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	staffOnly := auth.RequireRoles(d.Sessions, models.RoleAdmin, models.RoleManager, models.RoleSales)
	loggedIn := auth.RequireLogin(d.Sessions)
	withSession := auth.Session(d.Sessions)

	a := e.Group("/auth")
	a.POST("/register", d.AuthHandler.Register)
	a.POST("/send-verification-code", d.AuthHandler.SendVerificationCode)
	a.POST("/verify-code", d.AuthHandler.VerifyCode)
	a.POST("/login", d.AuthHandler.Login)
	a.POST("/logout", d.AuthHandler.Logout, loggedIn)

	products := e.Group("/products", withSession)
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/paginated", d.ProductHandler.GetProductsPaginated)
	products.GET("/by-shop/:shopId", d.ProductHandler.GetProductsByShop)
	products.GET("/dashboard/low-stock", d.ProductHandler.GetLowStockCount, loggedIn)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.POST("", d.ProductHandler.CreateProduct, staffOnly)
	products.PATCH("/:id", d.ProductHandler.PatchProduct, staffOnly)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct, staffOnly)
	products.PATCH("/:id/attributes", d.ProductHandler.PatchProductAttributes, staffOnly)

	promotions := e.Group("/promotions", withSession)
	promotions.GET("", d.PromotionHandler.GetPromotions)
	promotions.GET("/:id", d.PromotionHandler.GetPromotion)
	promotions.POST("", d.PromotionHandler.CreatePromotion, staffOnly)
	promotions.PATCH("/:id", d.PromotionHandler.PatchPromotion, staffOnly)
	promotions.DELETE("/:id", d.PromotionHandler.DeletePromotion, staffOnly)

	sales := e.Group("/shopkeepersales")
	sales.POST("/my/create", d.SalesHandler.CreateMySale, loggedIn)
	sales.GET("/my/findAllForUser", d.SalesHandler.GetMySales, loggedIn)
	sales.POST("", d.SalesHandler.CreateSale, staffOnly)
	sales.GET("", d.SalesHandler.GetSales, staffOnly)
	sales.GET("/:id", d.SalesHandler.GetSale, staffOnly)
	sales.PATCH("/:id", d.SalesHandler.PatchSale, staffOnly)
	sales.DELETE("/:id", d.SalesHandler.DeleteSale, staffOnly)

	e.GET("/dashboard", d.DashboardHandler.GetDashboard, loggedIn)

	if d.SearchHandler != nil {
		e.GET("/search", d.SearchHandler.Search, withSession)
	}
}
