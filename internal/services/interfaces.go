package services

import (
	"time"

	"gorm.io/gorm"

	"clinicore/internal/models"
	"clinicore/internal/pagination"
)

// DoctorServicer defines the contract for doctor account business logic.
type DoctorServicer interface {
	GetDoctorByEmail(email string) (*models.Doctor, error)
	GetDoctorByID(id uint) (*models.Doctor, error)
	VerifyPassword(doctor *models.Doctor, password string) bool
	AttemptLogin(email, password string) (*models.Doctor, error)
	StoreRefreshTokenHash(doctorID uint, tokenHash string) error
	GetRefreshTokenHash(doctorID uint) (string, error)
	UpdateProfile(doctorID uint, firstName, lastName, phone string) (*models.Doctor, error)
	ChangePassword(doctorID uint, currentPassword, newPassword string) error
}

// PlatformOverview aggregates platform-wide counts for the admin dashboard.
type PlatformOverview struct {
	TotalClinics     int64            `json:"total_clinics"`
	ActiveClinics    int64            `json:"active_clinics"`
	TotalDoctors     int64            `json:"total_doctors"`
	ActiveDoctors    int64            `json:"active_doctors"`
	TotalPatients    int64            `json:"total_patients"`
	BySubscription   map[string]int64 `json:"by_subscription"`
	UnassignedDoctor int64            `json:"unassigned_doctors"`
}

// ClinicInput carries clinic create/update fields.
type ClinicInput struct {
	Name              string
	Address           string
	Phone             string
	Email             string
	SubscriptionType  models.SubscriptionType
	SubscriptionStart time.Time
	SubscriptionEnd   *time.Time
	MaxDoctors        int
	MaxPatients       int
}

// DoctorInput carries doctor create/update fields used by the admin surface.
type DoctorInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
	ClinicID  *uint
}

// AdminServicer defines the contract for the super-admin surface.
type AdminServicer interface {
	AttemptLogin(username, password string) (*models.SuperAdmin, error)
	GetAdminByID(id uint) (*models.SuperAdmin, error)
	StoreRefreshTokenHash(adminID uint, tokenHash string) error
	GetRefreshTokenHash(adminID uint) (string, error)
	GetPlatformOverview() (*PlatformOverview, error)

	CreateClinic(input ClinicInput) (*models.Clinic, error)
	GetClinics(page pagination.PageRequest, search string) (*pagination.PageResponse[models.Clinic], error)
	GetClinicByID(clinicID uint) (*models.Clinic, error)
	SetClinicActive(clinicID uint, active bool) (*models.Clinic, error)

	CreateDoctor(input DoctorInput) (*models.Doctor, error)
	GetDoctors(page pagination.PageRequest, search string) (*pagination.PageResponse[models.Doctor], error)
	UpdateDoctor(doctorID uint, firstName, lastName, phone string) (*models.Doctor, error)
	SetDoctorActive(doctorID uint, active bool) (*models.Doctor, error)
	ResetDoctorPassword(doctorID uint, newPassword string) error
	AssignDoctorToClinic(doctorID uint, clinicID *uint) (*models.Doctor, error)
}

// PatientInput carries patient create/update fields.
type PatientInput struct {
	Name      string
	Phone     string
	Age       int
	Diagnosis string
	Medicines string
	Completed *bool
}

// PatientBilling aggregates billing amounts across the patient row and its
// visits. Patient-level and visit-level amounts are independent accumulators
// and are summed, never reconciled against each other.
type PatientBilling struct {
	TotalDue    float64 `json:"total_due"`
	TotalPaid   float64 `json:"total_paid"`
	TotalUnpaid float64 `json:"total_unpaid"`
}

// PatientDetail is the full patient read shape with billing totals.
type PatientDetail struct {
	Patient models.Patient `json:"patient"`
	Billing PatientBilling `json:"billing"`
}

// PatientServicer defines the contract for patient business logic.
type PatientServicer interface {
	CreatePatient(doctorID uint, input PatientInput) (*models.Patient, error)
	GetDoctorPatients(doctorID uint, page pagination.PageRequest, search string) (*pagination.PageResponse[models.Patient], error)
	GetPatientByID(doctorID, patientID uint) (*models.Patient, error)
	GetPatientDetail(doctorID, patientID uint) (*PatientDetail, error)
	UpdatePatient(doctorID, patientID uint, input PatientInput) (*models.Patient, error)
	DeletePatient(doctorID, patientID uint) error
}

// VisitInput carries visit create/update fields.
type VisitInput struct {
	PatientID   uint
	VisitDate   time.Time
	Diagnosis   string
	AmountDue   float64
	AmountPaid  float64
	Medications string
}

// VisitServicer defines the contract for visit business logic, including the
// payment reconciliation that derives ledger entries from paid amounts.
type VisitServicer interface {
	CreateVisit(doctorID uint, input VisitInput) (*models.Visit, error)
	GetPatientVisits(doctorID, patientID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Visit], error)
	GetVisitByID(doctorID, visitID uint) (*models.Visit, error)
	UpdateVisit(doctorID, visitID uint, input VisitInput) (*models.Visit, error)
	DeleteVisit(doctorID, visitID uint) error
	AddAttachment(doctorID, visitID uint, filename string) (*models.Visit, error)
	RemoveAttachment(doctorID, visitID uint, filename string) (*models.Visit, error)
}

// AppointmentInput carries appointment create/update fields.
type AppointmentInput struct {
	PatientID       uint
	AppointmentDate time.Time
	Type            string
	Status          models.AppointmentStatus
	Duration        int
	Priority        models.AppointmentPriority
	Notes           string
}

// AppointmentServicer defines the contract for appointment business logic and
// the next-visit rollup derived from scheduled appointments.
type AppointmentServicer interface {
	CreateAppointment(doctorID uint, input AppointmentInput) (*models.Appointment, error)
	GetPatientAppointments(doctorID, patientID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Appointment], error)
	GetUpcomingAppointments(doctorID, patientID uint) ([]models.Appointment, error)
	GetMissedAppointments(doctorID, patientID uint) ([]models.Appointment, error)
	GetAppointmentByID(doctorID, appointmentID uint) (*models.Appointment, error)
	UpdateAppointment(doctorID, appointmentID uint, input AppointmentInput) (*models.Appointment, error)
	DeleteAppointment(doctorID, appointmentID uint) error
	// RefreshNextVisit recomputes a patient's next_visit from scheduled
	// future appointments inside the caller's transaction.
	RefreshNextVisit(tx *gorm.DB, patientID uint) error
}

// TransactionInput carries ledger entry create/update fields.
type TransactionInput struct {
	Type            models.TransactionType
	Category        string
	Subcategory     string
	Amount          float64
	Description     string
	TransactionDate time.Time
	PaymentMethod   models.PaymentMethod
	ReferenceType   models.ReferenceType
	ReferenceID     *uint
	Notes           string
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate      *time.Time
	ToDate        *time.Time
	Type          *models.TransactionType
	Category      *string
	PaymentMethod *models.PaymentMethod
	MinAmount     *float64
	MaxAmount     *float64
}

// Empty reports whether no filter parameter is set.
func (f TransactionFilter) Empty() bool {
	return f.FromDate == nil && f.ToDate == nil && f.Type == nil &&
		f.Category == nil && f.PaymentMethod == nil &&
		f.MinAmount == nil && f.MaxAmount == nil
}

// TransactionFilterOptions lists the distinct values usable as filters.
type TransactionFilterOptions struct {
	Categories     []string `json:"categories"`
	PaymentMethods []string `json:"payment_methods"`
}

// TransactionTotals aggregates a filtered transaction set.
type TransactionTotals struct {
	TotalIncome   float64 `json:"total_income"`
	TotalExpenses float64 `json:"total_expenses"`
	NetProfit     float64 `json:"net_profit"`
	Count         int64   `json:"count"`
}

// LedgerServicer defines the contract for the financial ledger. Expense
// writes recompute the affected budget inside the same database transaction.
type LedgerServicer interface {
	RecordTransaction(doctorID uint, input TransactionInput) (*models.Transaction, error)
	// RecordTransactionTx records an entry inside the caller's transaction,
	// for services that derive ledger entries from their own writes.
	RecordTransactionTx(tx *gorm.DB, doctorID uint, input TransactionInput) (*models.Transaction, error)
	UpdateTransaction(doctorID, transactionID uint, input TransactionInput) (*models.Transaction, error)
	DeleteTransaction(doctorID, transactionID uint) error
	GetTransactionByID(doctorID, transactionID uint) (*models.Transaction, error)
	GetDoctorTransactions(doctorID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetFilterOptions(doctorID uint) (*TransactionFilterOptions, error)
	GetFilteredTotals(doctorID uint, filter TransactionFilter) (*TransactionTotals, error)
}

// BudgetInput carries budget create/update fields.
type BudgetInput struct {
	Category       string
	Year           int
	Month          int
	MonthlyLimit   float64
	AlertThreshold float64
}

// BudgetStatus is a budget row with its derived display properties.
type BudgetStatus struct {
	models.Budget
	SpentPercentage float64 `json:"spent_percentage"`
	RemainingAmount float64 `json:"remaining_amount"`
	OverThreshold   bool    `json:"over_threshold"`
	StatusColor     string  `json:"status_color"`
}

// BudgetServicer defines the contract for budget tracking.
type BudgetServicer interface {
	CreateBudget(doctorID uint, input BudgetInput) (*models.Budget, error)
	GetCurrentBudgets(doctorID uint) ([]BudgetStatus, error)
	GetBudgetByID(doctorID, budgetID uint) (*models.Budget, error)
	UpdateBudget(doctorID, budgetID uint, monthlyLimit, alertThreshold float64) (*models.Budget, error)
	DeleteBudget(doctorID, budgetID uint) error
	SetBudgetActive(doctorID, budgetID uint, active bool) (*models.Budget, error)
	// RecomputeSpent resums matching expense transactions into
	// current_month_spent inside the caller's transaction. No-op when no
	// budget exists for the scope.
	RecomputeSpent(tx *gorm.DB, doctorID uint, category string, year, month int) error
}

// CategoryServicer defines the contract for category business logic over the
// unified default-plus-custom category view.
type CategoryServicer interface {
	ListCategories(doctorID uint, categoryType *models.TransactionType) ([]models.CategoryView, error)
	CreateCategory(doctorID uint, name string, categoryType models.TransactionType, description, color string) (*models.ExpenseCategory, error)
	UpdateCategory(doctorID, categoryID uint, name, description, color string) (*models.ExpenseCategory, error)
	DeleteCategory(doctorID, categoryID uint) error
	SetCategoryActive(doctorID, categoryID uint, active bool) (*models.ExpenseCategory, error)
	ConvertDefaultCategory(doctorID uint, name string, categoryType models.TransactionType) (*models.ExpenseCategory, error)
}

// FinancialSummary aggregates ledger activity over a date range.
type FinancialSummary struct {
	TotalIncome        float64            `json:"total_income"`
	TotalExpenses      float64            `json:"total_expenses"`
	NetProfit          float64            `json:"net_profit"`
	TransactionCount   int64              `json:"transaction_count"`
	IncomeByCategory   map[string]float64 `json:"income_by_category"`
	ExpensesByCategory map[string]float64 `json:"expenses_by_category"`
}

// FinanceOverview is the finance dashboard read shape.
type FinanceOverview struct {
	TotalIncome        float64              `json:"total_income"`
	TotalExpenses      float64              `json:"total_expenses"`
	NetProfit          float64              `json:"net_profit"`
	MonthIncome        float64              `json:"month_income"`
	MonthExpenses      float64              `json:"month_expenses"`
	MonthProfit        float64              `json:"month_profit"`
	PatientRevenue     float64              `json:"patient_revenue"`
	RecentTransactions []models.Transaction `json:"recent_transactions"`
}

// ClinicStats is the clinic dashboard read shape.
type ClinicStats struct {
	TotalPatients         int64   `json:"total_patients"`
	CompletedPatients     int64   `json:"completed_patients"`
	ActivePatients        int64   `json:"active_patients"`
	NewPatientsThisMonth  int64   `json:"new_patients_this_month"`
	AppointmentsToday     int64   `json:"appointments_today"`
	AppointmentsThisWeek  int64   `json:"appointments_this_week"`
	AppointmentsThisMonth int64   `json:"appointments_this_month"`
	CompletedToday        int64   `json:"completed_today"`
	PendingToday          int64   `json:"pending_today"`
	RevenueToday          float64 `json:"revenue_today"`
	RevenueThisMonth      float64 `json:"revenue_this_month"`
	RevenueThisYear       float64 `json:"revenue_this_year"`
	UpcomingThisWeek      int64   `json:"upcoming_this_week"`
}

// ReportServicer defines the contract for reporting and aggregation.
type ReportServicer interface {
	Summarize(doctorID uint, from, to time.Time) (*FinancialSummary, error)
	ExportCSV(doctorID uint, from, to time.Time) ([]byte, error)
	GetFinanceOverview(doctorID uint) (*FinanceOverview, error)
	GetClinicStats(doctorID uint) (*ClinicStats, error)
}

// CalendarEvent is a single entry in the calendar feed.
type CalendarEvent struct {
	ID              string                 `json:"id"`
	Title           string                 `json:"title"`
	Start           time.Time              `json:"start"`
	AllDay          bool                   `json:"allDay"`
	Type            string                 `json:"type"`
	BackgroundColor string                 `json:"backgroundColor"`
	BorderColor     string                 `json:"borderColor"`
	TextColor       string                 `json:"textColor"`
	ExtendedProps   map[string]interface{} `json:"extendedProps"`
}

// CalendarServicer defines the contract for the calendar event feed.
type CalendarServicer interface {
	GetEvents(doctorID uint, from, to time.Time) ([]CalendarEvent, error)
}
