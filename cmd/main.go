package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"property-market/internal/auth"
	"property-market/internal/config"
	"property-market/internal/database"
	"property-market/internal/handlers"
	"property-market/internal/jobs"
	"property-market/internal/realtime"
	"property-market/internal/repository"
	"property-market/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repository
	repo := repository.NewRepository(database.GetDB())

	// Realtime hub for auction topics
	hub := realtime.NewHub()

	// Initialize services
	authService := services.NewAuthService(repo)
	propertyService := services.NewPropertyService(repo)
	adminService := services.NewAdminService(repo)
	auctionService := services.NewAuctionService(repo, hub, cfg.Auction.BidRetries)
	bookingService := services.NewBookingService(repo)
	inquiryService := services.NewInquiryService(repo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	propertyHandler := handlers.NewPropertyHandler(propertyService)
	adminHandler := handlers.NewAdminHandler(adminService)
	auctionHandler := handlers.NewAuctionHandler(auctionService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	inquiryHandler := handlers.NewInquiryHandler(inquiryService)

	// Start settlement sweeper
	sweeper := jobs.NewAuctionSweeper(auctionService, cfg.Auction.SweepInterval)
	go sweeper.Start()

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With", "X-Socket-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Authentication routes (public)
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	// Public browse routes
	router.GET("/api/properties", propertyHandler.BrowseProperties)
	router.GET("/api/properties/:id", propertyHandler.GetProperty)
	router.GET("/api/auctions", auctionHandler.ListAuctions)
	router.GET("/api/auctions/:id", auctionHandler.GetAuction)

	// Realtime subscription (public topic, no authorization by design)
	router.GET("/ws/auctions/:id", hub.ServeAuctionWS)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		api.GET("/profile", authHandler.GetProfile)

		// Owner listing management
		owner := api.Group("/owner")
		{
			owner.GET("/properties", propertyHandler.ListOwnerProperties)
			owner.POST("/properties", propertyHandler.CreateProperty)
			owner.PUT("/properties/:id", propertyHandler.UpdateProperty)
			owner.DELETE("/properties/:id", propertyHandler.DeleteProperty)
			owner.GET("/bookings", bookingHandler.ListOwnerBookings)
			owner.GET("/inquiries", inquiryHandler.ListOwnerInquiries)
		}

		// Saved listings
		api.GET("/favorites", propertyHandler.ListFavorites)
		api.POST("/properties/:id/favorite", propertyHandler.FavoriteProperty)
		api.DELETE("/properties/:id/favorite", propertyHandler.UnfavoriteProperty)

		// Auction endpoints
		api.POST("/auctions", auctionHandler.CreateAuction)
		api.POST("/auctions/:id/bid", auctionHandler.PlaceBid)

		// Booking endpoints
		api.GET("/bookings", bookingHandler.ListGuestBookings)
		api.POST("/bookings", bookingHandler.RequestBooking)
		api.POST("/bookings/:id/confirm", bookingHandler.ConfirmBooking)
		api.POST("/bookings/:id/decline", bookingHandler.DeclineBooking)
		api.POST("/bookings/:id/cancel", bookingHandler.CancelBooking)

		// Inquiry threads
		api.GET("/inquiries", inquiryHandler.ListBuyerInquiries)
		api.POST("/inquiries", inquiryHandler.OpenInquiry)
		api.GET("/inquiries/:id", inquiryHandler.GetInquiry)
		api.POST("/inquiries/:id/messages", inquiryHandler.Reply)
		api.POST("/inquiries/:id/close", inquiryHandler.CloseInquiry)

		// Admin moderation
		admin := api.Group("/admin")
		admin.Use(auth.AdminMiddleware())
		{
			admin.GET("/properties/pending", adminHandler.ListPendingProperties)
			admin.POST("/properties/:id/approve", adminHandler.ApproveProperty)
			admin.POST("/properties/:id/reject", adminHandler.RejectProperty)
			admin.GET("/moderation-logs", adminHandler.ListModerationLogs)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Forced shutdown: %v", err)
	}

	log.Println("Server stopped")
}
