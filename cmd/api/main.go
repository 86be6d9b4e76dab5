package main

import (
	"log"
	"os"

	_ "portal/api/swagger" // swagger docs
	"portal/internal/database"
	"portal/internal/handler"
	"portal/internal/mailer"
	"portal/internal/middleware"
	"portal/internal/repository"
	"portal/internal/service"
	"portal/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Back-Office Portal API
// @version         1.0
// @description     Internal portal: sales pipeline, monthly commission calculation, payments, tasks and fleet.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	mail := mailer.NewFromEnv()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	ruleRepo := repository.NewCommissionRuleRepository(db)
	summaryRepo := repository.NewCommissionSummaryRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, wsHub)
	userService := service.NewUserService(userRepo, mail, notificationService)
	saleService := service.NewSaleService(saleRepo, userRepo)
	commissionService := service.NewCommissionService(userRepo, ruleRepo, saleRepo, summaryRepo, txManager)
	paymentService := service.NewPaymentService(paymentRepo, summaryRepo, txManager)
	taskService := service.NewTaskService(db, notificationService)
	groupService := service.NewGroupService(db)
	contactService := service.NewContactService(db)
	companyService := service.NewCompanyService(db)
	carService := service.NewCarService(db)
	eventService := service.NewEventService(db)
	projectService := service.NewProjectService(db)
	reportService := service.NewReportService(db)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	saleHandler := handler.NewSaleHandler(saleService)
	commissionHandler := handler.NewCommissionHandler(commissionService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	taskHandler := handler.NewTaskHandler(taskService)
	groupHandler := handler.NewGroupHandler(groupService)
	contactHandler := handler.NewContactHandler(contactService)
	companyHandler := handler.NewCompanyHandler(companyService)
	carHandler := handler.NewCarHandler(carService)
	eventHandler := handler.NewEventHandler(eventService)
	projectHandler := handler.NewProjectHandler(projectService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	reportHandler := handler.NewReportHandler(reportService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000", "http://localhost:5173"} // Frontend URL
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
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Static uploads (profile pictures, receipts)
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	router.Static("/static", uploadDir)

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	saleHandler.RegisterRoutes(router.Group(""))
	commissionHandler.RegisterRoutes(router.Group(""))
	paymentHandler.RegisterRoutes(router.Group(""))
	taskHandler.RegisterRoutes(router.Group(""))
	groupHandler.RegisterRoutes(router.Group(""))
	contactHandler.RegisterRoutes(router.Group(""))
	companyHandler.RegisterRoutes(router.Group(""))
	carHandler.RegisterRoutes(router.Group(""))
	eventHandler.RegisterRoutes(router.Group(""))
	projectHandler.RegisterRoutes(router.Group(""))
	notificationHandler.RegisterRoutes(router.Group(""))
	reportHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
