package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/ishu34311-maker/Sales/internal/handlers"
	"github.com/ishu34311-maker/Sales/internal/service/token"
)

type Deps struct {
	AuthHandler   *handlers.AuthHandler
	AdminHandler  *handlers.AdminHandler
	ShopHandler   *handlers.ShopHandler
	SearchHandler *handlers.SearchHandler
	TokenService  *token.TokenService
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.GET("/about", d.AuthHandler.About)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/logout", d.AuthHandler.LogOut)
	v1.GET("/search", d.SearchHandler.Search)

	admin := v1.Group("/admin", d.TokenService.AutoRefreshMiddlewareAdmin)

	admin.POST("/users", d.AdminHandler.CreateUser)
	admin.POST("/products", d.AdminHandler.AddProduct)
	admin.GET("/sales-report", d.AdminHandler.SalesReport)

	shop := v1.Group("", d.TokenService.AutoRefreshMiddleware)

	shop.GET("/menu", d.ShopHandler.Menu)
	shop.GET("/cart", d.ShopHandler.GetCart)
	shop.POST("/cart", d.ShopHandler.AddToCart)
	shop.POST("/cart/order", d.ShopHandler.BuyNow)
	shop.GET("/orders", d.ShopHandler.MyOrders)
}
