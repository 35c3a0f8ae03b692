package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"clinicore/internal/handlers"
	"clinicore/internal/logger"
	"clinicore/internal/middleware"
	"clinicore/internal/models"
	"clinicore/internal/services"
	"clinicore/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

// accountCounter keeps seeded emails, usernames, and phones unique.
var accountCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.Clinic{},
		&models.SuperAdmin{},
		&models.Doctor{},
		&models.Patient{},
		&models.Visit{},
		&models.Appointment{},
		&models.Transaction{},
		&models.ExpenseCategory{},
		&models.Budget{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
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

	// Handlers
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

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	v1.POST("/admin/auth/login", adminHandler.Login)

	// Protected doctor routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile", authHandler.UpdateProfile)
	protected.PUT("/profile/password", authHandler.ChangePassword)

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

	visits := protected.Group("/visits")
	visits.POST("", visitHandler.CreateVisit)
	visits.GET("/:id", visitHandler.GetVisit)
	visits.PUT("/:id", visitHandler.UpdateVisit)
	visits.DELETE("/:id", visitHandler.DeleteVisit)
	visits.POST("/:id/attachments", visitHandler.AddAttachment)
	visits.DELETE("/:id/attachments/:filename", visitHandler.RemoveAttachment)

	appointments := protected.Group("/appointments")
	appointments.POST("", appointmentHandler.CreateAppointment)
	appointments.PUT("/:id", appointmentHandler.UpdateAppointment)
	appointments.DELETE("/:id", appointmentHandler.DeleteAppointment)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/filters", transactionHandler.GetFilterOptions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	categories := protected.Group("/categories")
	categories.GET("", categoryHandler.ListCategories)
	categories.POST("", categoryHandler.CreateCategory)
	categories.POST("/convert", categoryHandler.ConvertDefaultCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.PUT("/:id/active", categoryHandler.SetCategoryActive)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetCurrentBudgets)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.PUT("/:id/active", budgetHandler.SetBudgetActive)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	reports := protected.Group("/reports")
	reports.GET("/summary", reportHandler.GetSummary)
	reports.GET("/export", reportHandler.ExportCSV)
	reports.GET("/finance", reportHandler.GetFinanceOverview)
	reports.GET("/clinic", reportHandler.GetClinicStats)

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

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// seedDoctor inserts a verified active doctor directly and returns it with
// the plaintext password "password123".
func (app *testApp) seedDoctor(t *testing.T) *models.Doctor {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	n := accountCounter.Add(1)
	doctor := &models.Doctor{
		FirstName: "Test",
		LastName:  fmt.Sprintf("Doctor%d", n),
		Email:     fmt.Sprintf("doctor%d@test.com", n),
		Phone:     fmt.Sprintf("+1555%07d", n),
		Password:  string(hash),
		Verified:  true,
		IsActive:  true,
		Role:      models.DoctorRoleDoctor,
	}
	if err := app.DB.Create(doctor).Error; err != nil {
		t.Fatalf("failed to seed doctor: %v", err)
	}
	return doctor
}

// seedSuperAdmin inserts an active super admin with password "password123".
func (app *testApp) seedSuperAdmin(t *testing.T) *models.SuperAdmin {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	n := accountCounter.Add(1)
	admin := &models.SuperAdmin{
		Username: fmt.Sprintf("admin%d", n),
		Email:    fmt.Sprintf("admin%d@test.com", n),
		Password: string(hash),
		IsActive: true,
	}
	if err := app.DB.Create(admin).Error; err != nil {
		t.Fatalf("failed to seed super admin: %v", err)
	}
	return admin
}

// loginDoctor logs in a seeded doctor and returns the access and refresh tokens.
func (app *testApp) loginDoctor(t *testing.T, email string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":"password123"}`, email)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// loginAdmin logs in a seeded super admin and returns the access token.
func (app *testApp) loginAdmin(t *testing.T, username string) string {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":"password123"}`, username)
	rec := app.request("POST", "/api/v1/admin/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("admin login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string)
}

// createPatient creates a patient through the API and returns its ID.
func (app *testApp) createPatient(t *testing.T, token, name string) float64 {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"phone":"+15550001","age":40}`, name)
	rec := app.request("POST", "/api/v1/patients", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create patient failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	patient := result["patient"].(map[string]interface{})
	return patient["id"].(float64)
}
