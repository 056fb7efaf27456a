package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/example/dukan/internal/config"
	"github.com/example/dukan/internal/handlers"
	"github.com/example/dukan/internal/middleware"
	"github.com/example/dukan/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, rdb *redis.Client) {
	telegramService := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)
	mailer := services.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.DevMode)

	authHandler := handlers.NewAuthHandler(db, cfg, mailer)
	productHandler := handlers.NewProductHandler(db)
	orderHandler := handlers.NewOrderHandler(db, cfg, telegramService)
	favoriteHandler := handlers.NewFavoriteHandler(db, orderHandler)
	profileHandler := handlers.NewProfileHandler(db)
	adminHandler := handlers.NewAdminHandler(db)

	api := app.Group("/api")

	// Auth routes, rate limited per client.
	auth := api.Group("/auth", middleware.NewTokenBucket(cfg.RateLimit, rdb))
	auth.Post("/login", authHandler.Login)
	auth.Post("/verify", authHandler.Verify)
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/signup/verify", authHandler.SignupVerify)
	auth.Post("/admin/login", authHandler.AdminLogin)
	auth.Post("/logout", authHandler.Logout)

	// Public catalog.
	products := api.Group("/products")
	products.Get("/", productHandler.ListProducts)
	products.Get("/:id", productHandler.GetProduct)

	// Customer routes.
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	protected.Get("/auth/me", authHandler.Me)

	protected.Post("/orders", orderHandler.CreateOrder)
	protected.Get("/orders", orderHandler.ListOrders)
	protected.Get("/orders/:id", orderHandler.GetOrder)
	protected.Put("/orders/:id", orderHandler.UpdateOrder)
	protected.Post("/orders/:id/cancel", orderHandler.CancelOrder)

	protected.Post("/favorites", favoriteHandler.SaveFavorite)
	protected.Get("/favorites", favoriteHandler.ListFavorites)
	protected.Delete("/favorites/:id", favoriteHandler.DeleteFavorite)
	protected.Post("/favorites/:id/order", favoriteHandler.OrderFromFavorite)

	protected.Get("/profile", profileHandler.GetProfile)
	protected.Put("/profile", profileHandler.UpdateProfile)

	// Back office.
	admin := api.Group("/admin", middleware.AuthMiddleware(cfg), middleware.AdminRequired())
	admin.Get("/dashboard", adminHandler.DashboardStats)
	admin.Get("/orders", adminHandler.ListAllOrders)
	admin.Put("/orders/:id/status", adminHandler.UpdateOrderStatus)
	admin.Get("/users", adminHandler.ListAllUsers)
	admin.Put("/users/:id/active", adminHandler.SetUserActive)
	admin.Get("/reports/revenue", adminHandler.RevenueReport)
	admin.Post("/products", productHandler.CreateProduct)
	admin.Put("/products/:id", productHandler.UpdateProduct)
	admin.Delete("/products/:id", productHandler.DeleteProduct)
}
