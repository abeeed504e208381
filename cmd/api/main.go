package main

import (
	_ "crm-backend/api/swagger" // swagger docs
	"crm-backend/internal/authz"
	"crm-backend/internal/config"
	"crm-backend/internal/database"
	"crm-backend/internal/handler"
	"crm-backend/internal/middleware"
	"crm-backend/internal/model"
	"crm-backend/internal/repository"
	"crm-backend/internal/service"
	"crm-backend/internal/websocket"
	"crm-backend/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Ticket CRM API
// @version         1.0
// @description     Backend for a ticket brokerage CRM: leads, inventory, orders, GST invoicing and delivery.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	if err := logger.Initialize(cfg.Log); err != nil {
		logger.Get().WithError(err).Warn("falling back to default logging")
	}
	log := logger.Get()

	gin.SetMode(cfg.Server.Mode)

	db, err := database.NewConnection(cfg.Database.DSN())
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	log.Info("connected to PostgreSQL")

	if err := handler.RegisterValidators(); err != nil {
		log.WithError(err).Fatal("validator registration failed")
	}

	// Shared authorization state
	matrix := authz.DefaultMatrix()
	graph := model.DefaultStatusGraph()
	auth := middleware.NewAuth([]byte(cfg.JWT.Secret), matrix)

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	deliveryRepo := repository.NewDeliveryRepository(db)
	counterRepo := repository.NewCounterRepository(db)

	auditService := service.NewAuditService(db)
	userService := service.NewUserService(userRepo, db, matrix, auditService, cfg.JWT)
	leadService := service.NewLeadService(leadRepo, graph, auditService, wsHub)
	inventoryService := service.NewInventoryService(inventoryRepo, txManager, auditService, wsHub)
	orderService := service.NewOrderService(orderRepo, inventoryRepo, leadRepo, counterRepo, txManager, graph, cfg.Company, auditService, wsHub)
	invoiceService := service.NewInvoiceService(invoiceRepo, orderRepo, counterRepo, txManager, cfg.Company, auditService)
	deliveryService := service.NewDeliveryService(deliveryRepo, orderRepo, auditService)
	statisticsService := service.NewStatisticsService(leadRepo, orderRepo, deliveryRepo, invoiceRepo, inventoryRepo, graph)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService, auth)
	leadHandler := handler.NewLeadHandler(leadService, auth)
	inventoryHandler := handler.NewInventoryHandler(inventoryService, auth)
	orderHandler := handler.NewOrderHandler(orderService, auth)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, auth)
	deliveryHandler := handler.NewDeliveryHandler(deliveryService, auth)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService, auth)
	auditHandler := handler.NewAuditHandler(auditService, auth)

	// Follow-up sweep
	sweeper := service.NewFollowUpSweeper(leadRepo, graph, wsHub)
	if err := sweeper.Start(cfg.Server.FollowUpSchedule); err != nil {
		log.WithError(err).Fatal("follow-up sweep schedule invalid")
	}
	defer sweeper.Stop()

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORS.AllowOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, auth.Secret(), matrix)
	})

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	leadHandler.RegisterRoutes(router.Group(""))
	inventoryHandler.RegisterRoutes(router.Group(""))
	orderHandler.RegisterRoutes(router.Group(""))
	invoiceHandler.RegisterRoutes(router.Group(""))
	deliveryHandler.RegisterRoutes(router.Group(""))
	statisticsHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	log.WithField("port", cfg.Server.Port).Info("server listening")
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.WithError(err).Fatal("server failed")
	}
}
