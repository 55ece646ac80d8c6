package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/chaudhary-hadi27/usman-fast-food/controllers"
	"github.com/chaudhary-hadi27/usman-fast-food/middleware"
	"github.com/chaudhary-hadi27/usman-fast-food/services"
)

// Register wires every route group. The general API tier is rate limited as
// a whole; order submission and login carry tighter buckets on top.
func Register(
	r *gin.Engine,
	menuController *controllers.MenuController,
	cartController *controllers.CartController,
	orderController *controllers.OrderController,
	authController *controllers.AuthController,
	auth *services.AuthService,
) {
	api := r.Group("/api")
	api.Use(middleware.APIRateLimit())

	api.GET("/menu", menuController.GetMenu)
	api.GET("/menu/:id", menuController.GetMenuItem)

	cart := api.Group("/cart")
	cart.GET("", cartController.GetCart)
	cart.DELETE("", cartController.ClearCart)
	cart.POST("/items", cartController.AddItem)
	cart.PATCH("/items/:menu_item_id", cartController.SetQuantity)
	cart.POST("/items/:menu_item_id/increment", cartController.Increment)
	cart.POST("/items/:menu_item_id/decrement", cartController.Decrement)
	cart.DELETE("/items/:menu_item_id", cartController.RemoveItem)

	orders := api.Group("/orders")
	orders.POST("", middleware.OrderRateLimit(), orderController.CreateOrder)
	orders.GET("", orderController.OrderHistory)
	orders.GET("/:order_id", orderController.TrackOrder)
	orders.POST("/:order_id/cancel", orderController.CancelOrder)

	authGroup := api.Group("/auth")
	authGroup.POST("/login", middleware.LoginRateLimit(), authController.Login)
	authGroup.POST("/logout", authController.Logout)
	authGroup.GET("/me", middleware.AdminRequired(auth), authController.Me)

	admin := api.Group("/admin")
	admin.Use(middleware.AdminRequired(auth))
	admin.GET("/orders", orderController.ListOrders)
	admin.PUT("/orders/:order_id/status", orderController.UpdateStatus)
	admin.POST("/menu", menuController.CreateMenuItem)
	admin.PUT("/menu/:id", menuController.UpdateMenuItem)
	admin.DELETE("/menu/:id", menuController.DeleteMenuItem)
}
