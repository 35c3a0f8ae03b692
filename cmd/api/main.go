package main

import (
	"fmt"
	"net/http"
	"os"

	"clinicore/internal/config"
	"clinicore/internal/database"
	"clinicore/internal/handlers"
	"clinicore/internal/logger"
	"clinicore/internal/middleware"
	"clinicore/internal/services"
	"clinicore/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Clinicore API
// @version         1.0
// @description     Clinicore is a clinic management application for doctors to track patients, visits, appointments, finances, and budgets.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Register custom binding validators
	validator.Register()

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	doctorService := services.NewDoctorService(db)
	adminService := services.NewAdminService(db)
	budgetService := services.NewBudgetService(db)
	ledgerService := services.NewLedgerService(db, budgetService)
	appointmentService := services.NewAppointmentService(db)
	visitService := services.NewVisitService(db, ledgerService, appointmentService)
	patientService := services.NewPatientService(db)
	categoryService := services.NewCategoryService(db)
	reportService := services.NewReportService(db)
	calendarService := services.NewCalendarService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(doctorService, adminService)
	patientHandler := handlers.NewPatientHandler(patientService)
	visitHandler := handlers.NewVisitHandler(visitService)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService)
	transactionHandler := handlers.NewTransactionHandler(ledgerService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	budgetHandler := handlers.NewBudgetHandler(budgetService)
	reportHandler := handlers.NewReportHandler(reportService)
	calendarHandler := handlers.NewCalendarHandler(calendarService)
	adminHandler := handlers.NewAdminHandler(adminService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	v1.POST("/admin/auth/login", adminHandler.Login)

	// Protected doctor routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// Doctor profile
	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile", authHandler.UpdateProfile)
	protected.PUT("/profile/password", authHandler.ChangePassword)

	// Patient routes
	patients := protected.Group("/patients")
	patients.POST("", patientHandler.CreatePatient)
	patients.GET("", patientHandler.GetPatients)
	patients.GET("/:id", patientHandler.GetPatient)
	patients.PUT("/:id", patientHandler.UpdatePatient)
	patients.DELETE("/:id", patientHandler.DeletePatient)
	patients.GET("/:id/visits", visitHandler.GetPatientVisits)
	patients.GET("/:id/appointments", appointmentHandler.GetPatientAppointments)
	patients.GET("/:id/appointments/upcoming", appointmentHandler.GetUpcomingAppointments)
	patients.GET("/:id/appointments/missed", appointmentHandler.GetMissedAppointments)

	// Visit routes
	visits := protected.Group("/visits")
	visits.POST("", visitHandler.CreateVisit)
	visits.GET("/:id", visitHandler.GetVisit)
	visits.PUT("/:id", visitHandler.UpdateVisit)
	visits.DELETE("/:id", visitHandler.DeleteVisit)
	visits.POST("/:id/attachments", visitHandler.AddAttachment)
	visits.DELETE("/:id/attachments/:filename", visitHandler.RemoveAttachment)

	// Appointment routes
	appointments := protected.Group("/appointments")
	appointments.POST("", appointmentHandler.CreateAppointment)
	appointments.PUT("/:id", appointmentHandler.UpdateAppointment)
	appointments.DELETE("/:id", appointmentHandler.DeleteAppointment)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/filters", transactionHandler.GetFilterOptions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Category routes
	categories := protected.Group("/categories")
	categories.GET("", categoryHandler.ListCategories)
	categories.POST("", categoryHandler.CreateCategory)
	categories.POST("/convert", categoryHandler.ConvertDefaultCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.PUT("/:id/active", categoryHandler.SetCategoryActive)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Budget routes
	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetCurrentBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.PUT("/:id/active", budgetHandler.SetBudgetActive)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	// Report routes
	reports := protected.Group("/reports")
	reports.GET("/summary", reportHandler.GetSummary)
	reports.GET("/export", reportHandler.ExportCSV)
	reports.GET("/finance", reportHandler.GetFinanceOverview)
	reports.GET("/clinic", reportHandler.GetClinicStats)

	// Calendar routes
	protected.GET("/calendar/events", calendarHandler.GetEvents)

	// Super admin routes
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireSuperAdmin())
	admin.GET("/overview", adminHandler.GetPlatformOverview)
	admin.POST("/clinics", adminHandler.CreateClinic)
	admin.GET("/clinics", adminHandler.GetClinics)
	admin.GET("/clinics/:id", adminHandler.GetClinic)
	admin.PUT("/clinics/:id/active", adminHandler.SetClinicActive)
	admin.POST("/doctors", adminHandler.CreateDoctor)
	admin.GET("/doctors", adminHandler.GetDoctors)
	admin.PUT("/doctors/:id", adminHandler.UpdateDoctor)
	admin.PUT("/doctors/:id/active", adminHandler.SetDoctorActive)
	admin.PUT("/doctors/:id/password", adminHandler.ResetDoctorPassword)
	admin.PUT("/doctors/:id/clinic", adminHandler.AssignDoctorToClinic)

	log.Infof("Starting Clinicore backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
