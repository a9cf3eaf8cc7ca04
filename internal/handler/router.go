package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/greengrocer/grocery-api/internal/middleware"
	"github.com/greengrocer/grocery-api/internal/service"
)

type Services struct {
	Auth       *service.AuthService
	Categories *service.CategoryService
	Products   *service.ProductService
	Carts      *service.CartService
	Favorites  *service.FavoriteService
	Orders     *service.OrderService
	Admin      *service.AdminService
}

type RouterConfig struct {
	Cookie         CookieConfig
	AllowedOrigins []string
	Logger         *slog.Logger
	Store          Pinger
	Sessions       Pinger
}

func NewRouter(svc Services, cfg RouterConfig) *gin.Engine {
	RegisterValidation()

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(cfg.Logger))
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	authH := NewAuthHandler(svc.Auth, cfg.Cookie)
	categoryH := NewCategoryHandler(svc.Categories)
	productH := NewProductHandler(svc.Products)
	cartH := NewCartHandler(svc.Carts)
	favoriteH := NewFavoriteHandler(svc.Favorites)
	orderH := NewOrderHandler(svc.Orders)
	adminH := NewAdminHandler(svc.Admin)
	healthH := NewHealthHandler(cfg.Store, cfg.Sessions)

	router.GET("/healthz", healthH.Healthz)
	router.GET("/readyz", healthH.Readyz)

	authRequired := middleware.AuthMiddleware(svc.Auth, cfg.Cookie.Name)
	adminOnly := []gin.HandlerFunc{authRequired, middleware.AdminOnly()}

	api := router.Group("/api")
	{
		api.POST("/register", authH.Register)
		api.POST("/login", authH.Login)
		api.POST("/logout", authRequired, authH.Logout)
		api.GET("/user", authRequired, authH.Me)
		api.PUT("/user", authRequired, authH.UpdateProfile)

		categories := api.Group("/categories")
		categories.GET("", categoryH.List)
		categoriesAdmin := categories.Group("", adminOnly...)
		categoriesAdmin.POST("", categoryH.Create)
		categoriesAdmin.PUT("/:id", categoryH.Update)
		categoriesAdmin.DELETE("/:id", categoryH.Delete)

		products := api.Group("/products")
		products.GET("", productH.List)
		products.GET("/:id", productH.GetByID)
		productsAdmin := products.Group("", adminOnly...)
		productsAdmin.POST("", productH.Create)
		productsAdmin.PUT("/:id", productH.Update)
		productsAdmin.DELETE("/:id", productH.Delete)

		cart := api.Group("/cart", authRequired)
		cart.GET("", cartH.GetCart)
		cart.DELETE("", cartH.Clear)
		cart.POST("/items", cartH.AddItem)
		cart.PUT("/items/:id", cartH.UpdateItem)
		cart.DELETE("/items/:id", cartH.DeleteItem)

		favorites := api.Group("/favorites", authRequired)
		favorites.GET("", favoriteH.List)
		favorites.POST("", favoriteH.Add)
		favorites.DELETE("/:id", favoriteH.Remove)

		orders := api.Group("/orders", authRequired)
		orders.GET("", orderH.ListOrders)
		orders.POST("", orderH.CreateOrder)
		orders.GET("/:id", orderH.GetOrder)
		orders.PUT("/:id/status", middleware.AdminOnly(), orderH.UpdateStatus)

		admin := api.Group("/admin", adminOnly...)
		admin.GET("/stats", adminH.Stats)
		admin.GET("/orders/recent", orderH.RecentOrders)
	}

	return router
}
