package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"storefront/controllers"
	"storefront/middleware"
)

type Handlers struct {
	Auth    *controllers.AuthController
	Product *controllers.ProductController
	Cart    *controllers.CartController
	Order   *controllers.OrderController
}

func SetupRoutes(router *gin.Engine, h Handlers, tokens middleware.TokenValidator) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	router.POST("/auth/register", h.Auth.Register)
	router.POST("/auth/login", h.Auth.Login)
	router.GET("/products", h.Product.GetProducts)
	router.GET("/products/:id", h.Product.GetProduct)

	router.POST("/cart/guest/add", h.Cart.AddGuestItem)
	router.GET("/cart/guest", h.Cart.GetGuestCart)

	auth := router.Group("/")
	auth.Use(middleware.AuthMiddleware(tokens))
	{
		auth.POST("/cart/add", h.Cart.AddToCart)
		auth.GET("/cart", h.Cart.GetCart)
		auth.PATCH("/cart/item", h.Cart.UpdateItem)
		auth.DELETE("/cart/item", h.Cart.RemoveItem)

		auth.POST("/order/place", h.Order.PlaceOrder)
		auth.GET("/order/my", h.Order.GetMyOrders)
		auth.GET("/order/:id", h.Order.GetOrder)
	}

	admin := router.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokens), middleware.AdminMiddleware())
	{
		admin.POST("/products", h.Product.CreateProduct)
		admin.PATCH("/orders/:id/status", h.Order.UpdateOrderStatus)
	}
}
